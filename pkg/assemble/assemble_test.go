package assemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantsight/drawcheck/pkg/drawing"
)

func fragment(text string, x, width, y float64, conf float64) drawing.Fragment {
	return drawing.Fragment{
		Text:       text,
		Confidence: conf,
		Geometry:   drawing.Geometry{X: x, Y: y, Width: width, Height: 8},
		FontSize:   3.5,
		Layer:      "PROC-150",
	}
}

func TestAssembleMergesRow(t *testing.T) {
	a := New()

	fragments := []drawing.Fragment{
		fragment(`6"`, 0, 10, 100, 0.9),
		fragment(`-CS`, 12, 15, 100, 0.8),
		fragment(`-150#`, 30, 20, 100, 1.0),
	}

	result := a.Assemble(fragments, nil)

	require.Len(t, result.Specs, 1)
	spec := result.Specs[0]
	assert.Equal(t, `6"-CS-150#`, spec.Text)
	assert.Equal(t, 3, spec.FragmentCount)
	assert.Empty(t, spec.Issues)
	// Mean confidence 0.9 discounted for the widest merged gap (3 of 10).
	assert.InDelta(t, 0.873, spec.Confidence, 1e-9)
}

func TestAssembleDictionaryNormalization(t *testing.T) {
	a := New()

	fragments := []drawing.Fragment{
		fragment("6 inch", 0, 20, 100, 1.0),
		fragment(" carbon steel", 22, 40, 100, 1.0),
		fragment(" 150 psi", 64, 25, 100, 1.0),
	}

	result := a.Assemble(fragments, nil)

	require.Len(t, result.Specs, 1)
	assert.Equal(t, `6" CS 150 PSI`, result.Specs[0].Text)
}

func TestAssembleSplitsRowsAndLayers(t *testing.T) {
	a := New()

	fragments := []drawing.Fragment{
		fragment(`6"-CS-150#`, 0, 40, 100, 1.0),
		fragment(`4"-SS-300#`, 0, 40, 200, 1.0), // different baseline
		{
			Text: `2"-PVC-150#`, Confidence: 1.0, FontSize: 3.5,
			Geometry: drawing.Geometry{X: 0, Y: 100, Width: 40, Height: 8},
			Layer:    "UTIL-150", // different layer, same baseline
		},
	}

	result := a.Assemble(fragments, nil)

	require.Len(t, result.Specs, 3)
	layers := []string{result.Specs[0].Layer, result.Specs[1].Layer, result.Specs[2].Layer}
	assert.Equal(t, []string{"PROC-150", "PROC-150", "UTIL-150"}, layers)
}

func TestAssembleSplitsAtWideGap(t *testing.T) {
	a := New()

	fragments := []drawing.Fragment{
		fragment(`6"-CS`, 0, 20, 100, 1.0),
		fragment(`-150#`, 45, 20, 100, 1.0), // gap 25, beyond MaxGap
	}

	result := a.Assemble(fragments, nil)

	require.Len(t, result.Specs, 2)
	assert.Equal(t, `6"-CS`, result.Specs[0].Text)
	assert.Equal(t, 1, result.Specs[0].FragmentCount)
	assert.Equal(t, `-150#`, result.Specs[1].Text)
	assert.Equal(t, 1, result.Specs[1].FragmentCount)
}

func TestAssembleSplitsAtFontMismatch(t *testing.T) {
	a := New()

	title := fragment("DRAWING TITLE", 22, 60, 100, 1.0)
	title.FontSize = 7

	result := a.Assemble([]drawing.Fragment{
		fragment(`6"-CS-150#`, 0, 20, 100, 1.0),
		title,
	}, nil)

	require.Len(t, result.Specs, 2)
	assert.Equal(t, `6"-CS-150#`, result.Specs[0].Text)
	assert.Equal(t, "DRAWING TITLE", result.Specs[1].Text)
}

func TestAssembleTwoCallOutsOneBaseline(t *testing.T) {
	a := New()

	// Two complete call-outs share a baseline, separated by a wide gap.
	// Both must be reconstructed; neither loses fragments to the other.
	fragments := []drawing.Fragment{
		fragment(`6"`, 0, 10, 100, 0.9),
		fragment(`-CS-150#`, 12, 30, 100, 0.9),
		fragment(`4"`, 120, 10, 100, 0.8),
		fragment(`-SS-300#`, 132, 30, 100, 0.8),
	}

	result := a.Assemble(fragments, nil)

	require.Len(t, result.Specs, 2)
	assert.Equal(t, `6"-CS-150#`, result.Specs[0].Text)
	assert.Equal(t, 2, result.Specs[0].FragmentCount)
	assert.Equal(t, `4"-SS-300#`, result.Specs[1].Text)
	assert.Equal(t, 2, result.Specs[1].FragmentCount)
}

func TestAssembleCrossValidatesLayerDefaults(t *testing.T) {
	a := New()

	layers := []drawing.Layer{
		{Name: "PROC-150", DefaultMaterial: "CS", DefaultRating: "150#"},
	}
	fragments := []drawing.Fragment{
		fragment(`6"-SS-300#`, 0, 40, 100, 1.0),
	}

	result := a.Assemble(fragments, layers)

	require.Len(t, result.Specs, 1)
	issues := result.Specs[0].Issues
	require.Len(t, issues, 2)
	assert.Contains(t, issues[0], "material SS")
	assert.Contains(t, issues[1], "rating 300")
	require.Len(t, result.Recommendations, 1)
	assert.Contains(t, result.Recommendations[0], "PROC-150")
}

func TestAssembleAgreesWithLayerDefaults(t *testing.T) {
	a := New()

	layers := []drawing.Layer{
		{Name: "PROC-150", DefaultMaterial: "CS", DefaultRating: "CL150"},
	}
	fragments := []drawing.Fragment{
		fragment(`6"-CS-150#`, 0, 40, 100, 1.0),
	}

	result := a.Assemble(fragments, layers)

	require.Len(t, result.Specs, 1)
	assert.Empty(t, result.Specs[0].Issues)
	assert.Empty(t, result.Recommendations)
}

func TestAssembleEmptyInput(t *testing.T) {
	a := New()
	result := a.Assemble(nil, nil)
	assert.Empty(t, result.Specs)
	assert.Equal(t, 1.0, result.Confidence)
}
