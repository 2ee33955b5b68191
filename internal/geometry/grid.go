// Package geometry provides a coarse spatial index used to bucket
// extracted tags before the pairwise similarity loop, keeping candidate
// scoring near-linear on large drawings.
package geometry

import (
	"math"

	"github.com/plantsight/drawcheck/pkg/drawing"
)

// Grid is an immutable cell index over tag center points. The cell
// size equals the query radius, so every point within radius of a query
// center lies in the 3x3 cell neighborhood around it.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]int
}

type cellKey struct {
	col int
	row int
}

// NewGrid indexes the tag centers with the given cell size. A
// non-positive cell size falls back to 1 to keep the key math sane.
func NewGrid(tags []drawing.Tag, cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	g := &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]int),
	}
	for i, t := range tags {
		key := g.keyFor(t.Geometry.Center())
		g.cells[key] = append(g.cells[key], i)
	}
	return g
}

// Near returns the indices of all tags whose cell is within one cell of
// the query center. Callers still apply the exact distance check; Near
// only narrows the candidate set and never drops a point within the
// cell size radius of center.
func (g *Grid) Near(center drawing.Point) []int {
	key := g.keyFor(center)
	var out []int
	for dc := -1; dc <= 1; dc++ {
		for dr := -1; dr <= 1; dr++ {
			k := cellKey{col: key.col + dc, row: key.row + dr}
			out = append(out, g.cells[k]...)
		}
	}
	return out
}

func (g *Grid) keyFor(p drawing.Point) cellKey {
	return cellKey{
		col: int(math.Floor(p.X / g.cellSize)),
		row: int(math.Floor(p.Y / g.cellSize)),
	}
}
