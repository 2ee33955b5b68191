package match

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantsight/drawcheck/pkg/drawing"
)

func pumpBlock(id string, x, y float64) drawing.Entity {
	return drawing.Entity{
		ID: id, Kind: drawing.EntityKindBlock, Name: "PUMP_CENTRIFUGAL",
		Layer:    "EQUIPMENT",
		Geometry: drawing.Geometry{X: x, Y: y, Width: 40, Height: 30},
	}
}

func textEntity(id, text string, x, y float64) drawing.Entity {
	return drawing.Entity{
		ID: id, Kind: drawing.EntityKindText, Text: text,
		Layer:    "TEXT",
		Geometry: drawing.Geometry{X: x, Y: y, Width: 30, Height: 12},
	}
}

func ocrTag(text string, confidence, x, y float64) drawing.Tag {
	return drawing.Tag{
		RawText: text, Confidence: confidence, Source: drawing.SourceOCR,
		Geometry: drawing.Geometry{X: x, Y: y, Width: 28, Height: 10},
	}
}

func TestMatchExactScenario(t *testing.T) {
	m := New()

	entities := []drawing.Entity{
		pumpBlock("e1", 100, 100),
		textEntity("e2", "P-101A", 105, 140),
	}
	tags := []drawing.Tag{
		ocrTag("P-101A", 0.95, 107, 142),
	}

	result := m.Match(entities, tags)

	require.Len(t, result.Matches, 1)
	assert.Empty(t, result.Missing)
	assert.Empty(t, result.FalsePositives)
	assert.Equal(t, 1.0, result.Confidence)

	match := result.Matches[0]
	assert.Equal(t, "e2", match.Entity.ID)
	assert.Equal(t, "P-101A", match.Tag.RawText)
	assert.Equal(t, 1.0, match.TextSimilarity)
	assert.Less(t, match.SpatialDistance, 5.0)
}

func TestMatchFalsePositiveScenario(t *testing.T) {
	m := New()

	entities := []drawing.Entity{
		pumpBlock("e1", 100, 100),
		textEntity("e2", "P-101A", 105, 140),
	}
	tags := []drawing.Tag{
		ocrTag("P-101A", 0.95, 107, 142),
		ocrTag("PHANTOM-TAG", 0.65, 400, 200),
	}

	result := m.Match(entities, tags)

	require.Len(t, result.Matches, 1)
	assert.Empty(t, result.Missing)
	require.Len(t, result.FalsePositives, 1)
	assert.Equal(t, "PHANTOM-TAG", result.FalsePositives[0].RawText)
}

func TestMatchMissingScenario(t *testing.T) {
	m := New()

	entities := []drawing.Entity{
		textEntity("near", "P-101A", 105, 140),
		textEntity("far", "V-301", 900, 900),
	}
	tags := []drawing.Tag{
		ocrTag("P-101A", 0.95, 107, 142),
		// High confidence elsewhere must not rescue the far entity.
		ocrTag("V-301", 0.99, 100, 100),
	}

	result := m.Match(entities, tags)

	found := false
	for _, e := range result.Missing {
		if e.ID == "far" {
			found = true
		}
	}
	assert.True(t, found, "entity with no tag in range must be missing")
}

func TestMatchOneToOneInvariant(t *testing.T) {
	m := New()

	// Three near-identical callouts competing for two tags.
	var entities []drawing.Entity
	for i := 0; i < 3; i++ {
		entities = append(entities, textEntity(
			fmt.Sprintf("e%d", i), "P-101A", 100+float64(i)*8, 100))
	}
	tags := []drawing.Tag{
		ocrTag("P-101A", 0.95, 102, 101),
		ocrTag("P-101A", 0.90, 110, 101),
	}

	result := m.Match(entities, tags)

	seenEntity := map[string]bool{}
	seenTag := map[int]bool{}
	for _, match := range result.Matches {
		assert.False(t, seenEntity[match.Entity.ID], "entity %s matched twice", match.Entity.ID)
		seenEntity[match.Entity.ID] = true

		// Tags have no ID; identify by geometry.
		key := int(match.Tag.Geometry.X)
		assert.False(t, seenTag[key], "tag at x=%d matched twice", key)
		seenTag[key] = true
	}
	assert.Len(t, result.Matches, 2)
	assert.Len(t, result.Missing, 1)
}

func TestMatchDropsTagsBelowFloor(t *testing.T) {
	m := New()

	entities := []drawing.Entity{textEntity("e1", "P-101A", 105, 140)}
	tags := []drawing.Tag{ocrTag("P-101A", 0.05, 107, 142)}

	result := m.Match(entities, tags)

	assert.Empty(t, result.Matches)
	assert.Len(t, result.Missing, 1)
	assert.Len(t, result.FalsePositives, 1, "dropped tags still report as unmatched")
}

func TestMatchEmptyInput(t *testing.T) {
	m := New()

	result := m.Match(nil, nil)
	assert.Empty(t, result.Matches)
	assert.Equal(t, 1.0, result.Confidence, "no entities is a vacuous pass")
}

func TestMatchBlockWithoutCallout(t *testing.T) {
	m := New()

	// A bare pump block with a pump tag nearby: the category keyword
	// heuristic has to carry the text similarity.
	entities := []drawing.Entity{pumpBlock("e1", 100, 100)}
	tags := []drawing.Tag{ocrTag("P-101A", 0.95, 110, 130)}

	result := m.Match(entities, tags)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, "e1", result.Matches[0].Entity.ID)
	assert.Equal(t, 0.85, result.Matches[0].TextSimilarity)
}

func TestMatchRecommendations(t *testing.T) {
	m := New()

	entities := []drawing.Entity{
		textEntity("m1", "P-101A", 0, 0),
		textEntity("m2", "P-102A", 0, 200),
	}
	entities[0].Layer = "PIPING-TEXT"
	entities[1].Layer = "PIPING-TEXT"

	tags := []drawing.Tag{
		ocrTag("ZZGHOST", 0.2, 900, 900),
	}

	result := m.Match(entities, tags)

	require.Len(t, result.Recommendations, 2)
	assert.Contains(t, result.Recommendations[0], "PIPING-TEXT")
	assert.Contains(t, result.Recommendations[0], "layer visibility")
	assert.Contains(t, result.Recommendations[1], "confidence floor")
}

func TestMatchTagStats(t *testing.T) {
	m := New()

	result := m.Match(nil, []drawing.Tag{
		ocrTag("P-101A", 0.9, 0, 0),
		ocrTag("???", 0.4, 100, 100),
	})

	assert.Equal(t, 2, result.TagStats.Total)
	assert.Equal(t, 1, result.TagStats.Valid)
}

func TestGreedyResolveDeterministic(t *testing.T) {
	candidates := []Candidate{
		{UnitIndex: 0, TagIndex: 0, Confidence: 0.9},
		{UnitIndex: 1, TagIndex: 0, Confidence: 0.9}, // tie, same tag
		{UnitIndex: 2, TagIndex: 1, Confidence: 0.7},
	}

	accepted := Greedy{}.Resolve(candidates)

	require.Len(t, accepted, 2)
	// Discovery order breaks the tie: unit 0 wins tag 0.
	assert.Equal(t, 0, accepted[0].UnitIndex)
	assert.Equal(t, 2, accepted[1].UnitIndex)
}
