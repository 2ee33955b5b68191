package drawcheck

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantsight/drawcheck/pkg/drawing"
	"github.com/plantsight/drawcheck/pkg/errors"
	"github.com/plantsight/drawcheck/pkg/logging"
)

func newTestEngine(t *testing.T, opts ...Option) Engine {
	t.Helper()
	opts = append([]Option{WithLogger(logging.NewNopLogger())}, opts...)
	e, err := New(opts...)
	require.NoError(t, err)
	return e
}

// pumpDocument is the canonical happy-path drawing: one pump block with
// its text call-out, and one extracted tag sitting on the call-out.
func pumpDocument() *drawing.Document {
	return &drawing.Document{
		Entities: []drawing.Entity{
			{ID: "e1", Kind: drawing.EntityKindBlock, Name: "PUMP_CENTRIFUGAL", Layer: "EQUIPMENT",
				Geometry: drawing.Geometry{X: 100, Y: 100, Width: 40, Height: 30}},
			{ID: "e2", Kind: drawing.EntityKindText, Text: "P-101A", Layer: "EQUIPMENT",
				Geometry: drawing.Geometry{X: 105, Y: 140, Width: 30, Height: 12}},
		},
		Tags: []drawing.Tag{
			{RawText: "P-101A", Confidence: 0.95, Source: drawing.SourceOCR,
				Geometry: drawing.Geometry{X: 107, Y: 142, Width: 28, Height: 10}},
		},
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProximityThreshold = -1

	_, err := New(WithConfig(cfg))

	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
}

func TestAnalyzeNilDocument(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Analyze(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestAnalyzeRejectsMalformedInput(t *testing.T) {
	e := newTestEngine(t)

	doc := pumpDocument()
	doc.Tags[0].Geometry.Width = 0

	_, err := e.Analyze(context.Background(), doc)

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestAnalyzeCanceledContext(t *testing.T) {
	e := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := e.Analyze(ctx, pumpDocument())

	assert.Nil(t, r)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeHappyPath(t *testing.T) {
	e := newTestEngine(t)

	r, err := e.Analyze(context.Background(), pumpDocument())

	require.NoError(t, err)
	require.NotNil(t, r.Matching)
	assert.Len(t, r.Matching.Matches, 1)
	assert.Empty(t, r.Matching.Missing)
	assert.Empty(t, r.Matching.FalsePositives)
	assert.Equal(t, 1.0, r.Scores.Matching)
	require.NotNil(t, r.Harness)
	assert.True(t, r.Harness.Extraction.Passed)
	assert.NotContains(t, r.Recommendations, "nothing to validate: the document has no entities and no extracted tags")
}

func TestAnalyzeEmptyDocument(t *testing.T) {
	e := newTestEngine(t)

	r, err := e.Analyze(context.Background(), &drawing.Document{})

	require.NoError(t, err)
	assert.Equal(t, 1.0, r.Scores.Matching)
	assert.Contains(t, r.Recommendations, "nothing to validate: the document has no entities and no extracted tags")
}

func TestAnalyzeWithoutHarness(t *testing.T) {
	e := newTestEngine(t, WithoutHarness())

	r, err := e.Analyze(context.Background(), pumpDocument())

	require.NoError(t, err)
	assert.Nil(t, r.Harness)
	assert.Zero(t, r.Scores.Overall)
}

func TestAnalyzeReportsMarkdown(t *testing.T) {
	e := newTestEngine(t)

	r, err := e.Analyze(context.Background(), pumpDocument())
	require.NoError(t, err)

	md := r.Markdown()
	assert.Contains(t, md, "- Matched: 1")
	assert.Contains(t, md, "Overall score:")
}
