package drawing

import "math"

// Geometry is an axis-aligned placement in drawing units. Width and
// Height are optional for authoritative entities; zero means the extent
// is unknown and the position is treated as a point.
type Geometry struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty"`
}

// Point is a bare coordinate, used for connection endpoints.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Center returns the center of the bounding box.
func (g Geometry) Center() Point {
	return Point{X: g.X + g.Width/2, Y: g.Y + g.Height/2}
}

// Distance returns the Euclidean distance between the centers of two
// geometries.
func (g Geometry) Distance(other Geometry) float64 {
	a := g.Center()
	b := other.Center()
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// DistanceToPoint returns the Euclidean distance from the geometry
// center to p.
func (g Geometry) DistanceToPoint(p Point) float64 {
	c := g.Center()
	return math.Hypot(c.X-p.X, c.Y-p.Y)
}
