package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantsight/drawcheck/pkg/drawing"
)

func instrument(tag, typ string, x, y float64) drawing.Instrument {
	return drawing.Instrument{
		Tag: tag, Type: typ,
		Geometry: drawing.Geometry{X: x, Y: y, Width: 10, Height: 10},
	}
}

func line(id string, class drawing.ConnectionClass, points ...drawing.Point) drawing.Line {
	return drawing.Line{ID: id, Class: class, Endpoints: points}
}

func TestRequiredClasses(t *testing.T) {
	tests := []struct {
		name string
		in   drawing.Instrument
		want []drawing.ConnectionClass
	}{
		{
			name: "transmitter profile",
			in:   drawing.Instrument{Tag: "FT-201", Type: "FT"},
			want: []drawing.ConnectionClass{drawing.ConnectionProcess, drawing.ConnectionSignal},
		},
		{
			name: "control valve profile",
			in:   drawing.Instrument{Tag: "FCV-201", Type: "FCV"},
			want: []drawing.ConnectionClass{drawing.ConnectionProcess, drawing.ConnectionSignal, drawing.ConnectionPower},
		},
		{
			name: "relief valve is mechanical only",
			in:   drawing.Instrument{Tag: "PSV-110", Type: "PSV"},
			want: []drawing.ConnectionClass{drawing.ConnectionProcess},
		},
		{
			name: "unknown type falls back",
			in:   drawing.Instrument{Tag: "XZ-1", Type: "XZ"},
			want: []drawing.ConnectionClass{drawing.ConnectionProcess, drawing.ConnectionSignal},
		},
		{
			name: "explicit requirement wins",
			in:   drawing.Instrument{Tag: "FT-9", Type: "FT", Required: []drawing.ConnectionClass{drawing.ConnectionPower}},
			want: []drawing.ConnectionClass{drawing.ConnectionPower},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RequiredClasses(tt.in))
		})
	}
}

func TestValidateSatisfiedInstrument(t *testing.T) {
	v := New()

	// FT at center (105,105) with both required connections in reach.
	ft := instrument("FT-201", "FT", 100, 100)
	lines := []drawing.Line{
		line("p1", drawing.ConnectionProcess, drawing.Point{X: 110, Y: 110}),
		line("s1", drawing.ConnectionSignal, drawing.Point{X: 90, Y: 105}),
	}

	result := v.Validate([]drawing.Instrument{ft}, nil, lines)

	require.Len(t, result.Items, 1)
	assert.True(t, result.Items[0].IsValid)
	assert.Empty(t, result.Items[0].MissingOn)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Empty(t, result.Recommendations)
}

func TestValidateMissingClass(t *testing.T) {
	v := New()

	ft := instrument("FT-201", "FT", 100, 100)
	lines := []drawing.Line{
		line("p1", drawing.ConnectionProcess, drawing.Point{X: 110, Y: 110}),
		// Signal line exists but terminates far away.
		line("s1", drawing.ConnectionSignal, drawing.Point{X: 500, Y: 500}),
	}

	result := v.Validate([]drawing.Instrument{ft}, nil, lines)

	require.Len(t, result.Items, 1)
	item := result.Items[0]
	assert.False(t, item.IsValid)
	assert.Equal(t, []drawing.ConnectionClass{drawing.ConnectionSignal}, item.MissingOn)
	require.Len(t, result.Recommendations, 1)
	assert.Contains(t, result.Recommendations[0], "FT-201")
	assert.Contains(t, result.Recommendations[0], "signal")
}

func TestValidateProcessViaEquipmentPoint(t *testing.T) {
	v := New()

	psv := instrument("PSV-110", "PSV", 100, 100)
	equipment := []drawing.Equipment{
		{
			Tag:              "V-301",
			Geometry:         drawing.Geometry{X: 80, Y: 80, Width: 60, Height: 60},
			ConnectionPoints: []drawing.Point{{X: 108, Y: 112}},
		},
	}

	result := v.Validate([]drawing.Instrument{psv}, equipment, nil)

	require.Len(t, result.Items, 1)
	assert.True(t, result.Items[0].IsValid, "equipment connection point should satisfy the process class")
}

func TestValidateEquipmentPointDoesNotSatisfySignal(t *testing.T) {
	v := New()

	in := instrument("FT-201", "FT", 100, 100)
	equipment := []drawing.Equipment{
		{Tag: "V-301", ConnectionPoints: []drawing.Point{{X: 105, Y: 105}}},
	}

	result := v.Validate([]drawing.Instrument{in}, equipment, nil)

	item := result.Items[0]
	assert.False(t, item.IsValid)
	assert.Contains(t, item.MissingOn, drawing.ConnectionSignal)
	assert.Contains(t, item.Satisfied, drawing.ConnectionProcess)
}

func TestValidateAggregate(t *testing.T) {
	v := New()

	instruments := []drawing.Instrument{
		instrument("FT-201", "FT", 100, 100),
		instrument("FT-202", "FT", 500, 500),
	}
	lines := []drawing.Line{
		line("p1", drawing.ConnectionProcess, drawing.Point{X: 105, Y: 105}),
		line("s1", drawing.ConnectionSignal, drawing.Point{X: 105, Y: 110}),
	}

	result := v.Validate(instruments, nil, lines)

	assert.Equal(t, 1, result.Valid)
	assert.Equal(t, 1, result.Invalid)
	assert.Equal(t, 0.5, result.Confidence)
}

func TestValidateEmptyInput(t *testing.T) {
	v := New()
	result := v.Validate(nil, nil, nil)
	assert.Equal(t, 1.0, result.Confidence)
}
