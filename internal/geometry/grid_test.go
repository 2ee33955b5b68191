package geometry

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/plantsight/drawcheck/pkg/drawing"
)

func tagAt(x, y float64) drawing.Tag {
	return drawing.Tag{
		RawText:    "T",
		Confidence: 1,
		Geometry:   drawing.Geometry{X: x, Y: y, Width: 0, Height: 0},
	}
}

func TestGridNearCoversRadius(t *testing.T) {
	const radius = 50.0

	tags := []drawing.Tag{
		tagAt(0, 0),
		tagAt(49, 0),   // inside radius
		tagAt(51, 0), // outside radius but adjacent cell
		tagAt(200, 200),
	}
	grid := NewGrid(tags, radius)

	near := grid.Near(drawing.Point{X: 0, Y: 0})
	sort.Ints(near)

	want := map[int]bool{0: true, 1: true, 2: true}
	for _, idx := range near {
		if !want[idx] {
			t.Errorf("Near returned unexpected index %d", idx)
		}
	}
	for idx := range want {
		found := false
		for _, got := range near {
			if got == idx {
				found = true
			}
		}
		if !found {
			t.Errorf("Near missed index %d within radius neighborhood", idx)
		}
	}
}

func TestGridMatchesLinearScan(t *testing.T) {
	const radius = 50.0
	rng := rand.New(rand.NewSource(7))

	tags := make([]drawing.Tag, 400)
	for i := range tags {
		tags[i] = tagAt(rng.Float64()*1000, rng.Float64()*1000)
	}
	grid := NewGrid(tags, radius)

	for trial := 0; trial < 50; trial++ {
		center := drawing.Point{X: rng.Float64() * 1000, Y: rng.Float64() * 1000}
		probe := drawing.Geometry{X: center.X, Y: center.Y}

		// Every tag within radius must appear in the grid candidates.
		candidates := map[int]bool{}
		for _, idx := range grid.Near(center) {
			candidates[idx] = true
		}
		for i, tag := range tags {
			if probe.Distance(tag.Geometry) <= radius && !candidates[i] {
				t.Fatalf("grid dropped tag %d within radius of (%f,%f)", i, center.X, center.Y)
			}
		}
	}
}

func TestGridNegativeCoordinates(t *testing.T) {
	tags := []drawing.Tag{tagAt(-10, -10), tagAt(-60, -60)}
	grid := NewGrid(tags, 50)

	near := grid.Near(drawing.Point{X: -10, Y: -10})
	if len(near) != 2 {
		t.Errorf("Near returned %d candidates, want 2 (both within one cell)", len(near))
	}
}

func TestGridZeroCellSize(t *testing.T) {
	tags := []drawing.Tag{tagAt(0.25, 0.25)}
	grid := NewGrid(tags, 0)
	if got := grid.Near(drawing.Point{X: 0.5, Y: 0.5}); len(got) != 1 {
		t.Errorf("Near with fallback cell size returned %d candidates, want 1", len(got))
	}
}
