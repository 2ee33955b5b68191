package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantsight/drawcheck/pkg/calibrate"
	"github.com/plantsight/drawcheck/pkg/drawing"
	"github.com/plantsight/drawcheck/pkg/match"
	"github.com/plantsight/drawcheck/pkg/topology"
)

func TestMergeRecommendations(t *testing.T) {
	merged := MergeRecommendations(
		[]string{"check layer visibility", "verify FT-201"},
		[]string{"check layer visibility", "recalibrate the extractor"},
		[]string{"", "verify FT-201"},
	)

	assert.Equal(t, []string{
		"check layer visibility",
		"verify FT-201",
		"recalibrate the extractor",
	}, merged)
}

func TestMergeRecommendationsEmpty(t *testing.T) {
	assert.Empty(t, MergeRecommendations(nil, []string{}))
}

func TestBuildAggregatesScoresAndRecommendations(t *testing.T) {
	matching := &match.Result{
		Confidence:      0.8,
		Recommendations: []string{"check layer visibility"},
	}
	topo := &topology.Result{
		Valid: 1, Invalid: 1, Confidence: 0.5,
		Recommendations: []string{"verify FT-201", "check layer visibility"},
	}
	harness := &calibrate.Result{OverallScore: 92.5}

	r := Build(matching, nil, topo, nil, harness)

	assert.Equal(t, 0.8, r.Scores.Matching)
	assert.Equal(t, 0.5, r.Scores.Topology)
	assert.Equal(t, 1.0, r.Scores.SymbolValidation, "nil component defaults to 1")
	assert.Equal(t, 92.5, r.Scores.Overall)
	assert.Equal(t, []string{"check layer visibility", "verify FT-201"}, r.Recommendations)
	assert.False(t, r.GeneratedAt.IsZero())
}

func TestMarkdownContainsCountsAndScore(t *testing.T) {
	matching := &match.Result{
		Matches: []match.Match{{}},
		Missing: []drawing.Entity{
			{ID: "e2", Kind: drawing.EntityKindText, Text: "P-102B"},
			{ID: "e3", Kind: drawing.EntityKindBlock, Name: "V-301"},
		},
		FalsePositives: []drawing.Tag{{RawText: "PHANTOM-TAG"}},
		Confidence:     0.25,
	}
	harness := &calibrate.Result{
		Extraction:   calibrate.ExtractionResult{Passed: true, DiscrepancyPct: 1.5},
		Calibration:  calibrate.CalibrationResult{Score: 0.95},
		OverallScore: 96.5,
		VisualDiff: []calibrate.DiffEntry{
			{Status: calibrate.StatusMissingInExtracted, DWGTag: "V-301"},
		},
	}

	md := Build(matching, nil, nil, nil, harness).Markdown()

	assert.Contains(t, md, "- Matched: 1")
	assert.Contains(t, md, "- Missing: 2")
	assert.Contains(t, md, "- False positives: 1")
	assert.Contains(t, md, "Overall score: 96.5%")
	assert.Contains(t, md, "PASS")
	assert.Contains(t, md, "Missing In Extracted")
	require.True(t, strings.HasPrefix(md, "# Drawing Validation Report"))
}

func TestMarkdownOmitsAbsentSections(t *testing.T) {
	md := Build(nil, nil, nil, nil, nil).Markdown()

	assert.NotContains(t, md, "## Entity Matching")
	assert.NotContains(t, md, "## Extraction Quality")
	assert.NotContains(t, md, "## Recommendations")
}
