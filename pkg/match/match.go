// Package match pairs authoritative drawing entities with extracted
// tags using weighted spatial and textual similarity, then reports
// unmatched entities as missing equipment and unmatched tags as false
// positives. Resolution is strictly one-to-one: no entity and no tag
// appears in more than one accepted match.
package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/plantsight/drawcheck/internal/geometry"
	"github.com/plantsight/drawcheck/internal/textsim"
	"github.com/plantsight/drawcheck/pkg/drawing"
	"github.com/plantsight/drawcheck/pkg/normalize"
)

// Config tunes candidate generation and acceptance.
type Config struct {
	// ProximityThreshold is the maximum center-to-center distance, in
	// drawing units, for a tag to be considered for an entity.
	ProximityThreshold float64
	// AcceptThreshold is the minimum combined confidence for a
	// candidate pair to be eligible for acceptance.
	AcceptThreshold float64
	// MinTagConfidence drops extracted tags below this floor before
	// matching; dropped tags surface as false positives.
	MinTagConfidence float64
	// SpatialWeight, TextWeight and ConfidenceWeight combine the three
	// candidate scores. They should sum to 1.
	SpatialWeight    float64
	TextWeight       float64
	ConfidenceWeight float64
}

// DefaultConfig returns the standard matcher tuning.
func DefaultConfig() Config {
	return Config{
		ProximityThreshold: 50,
		AcceptThreshold:    0.5,
		MinTagConfidence:   0.1,
		SpatialWeight:      0.3,
		TextWeight:         0.4,
		ConfidenceWeight:   0.3,
	}
}

// Match pairs one authoritative entity with one extracted tag.
type Match struct {
	Entity          drawing.Entity `json:"entity"`
	Tag             drawing.Tag    `json:"tag"`
	Confidence      float64        `json:"confidence"`
	SpatialDistance float64        `json:"spatialDistance"`
	TextSimilarity  float64        `json:"textSimilarity"`
}

// Result is the matcher's full output for one drawing.
type Result struct {
	Matches         []Match          `json:"matches"`
	Missing         []drawing.Entity `json:"missing"`
	FalsePositives  []drawing.Tag    `json:"falsePositives"`
	Confidence      float64          `json:"confidence"`
	Recommendations []string         `json:"recommendations,omitempty"`
	TagStats        normalize.Stats  `json:"tagStats"`
}

// Matcher holds the constant tables and collaborators needed to run a
// match. It keeps no per-run state and is safe for concurrent use.
type Matcher struct {
	config     Config
	normalizer *normalize.Normalizer
	strategy   Strategy
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(m *Matcher) { m.config = cfg }
}

// WithNormalizer shares a prebuilt normalizer instead of constructing
// a fresh one.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(m *Matcher) { m.normalizer = n }
}

// WithStrategy substitutes the one-to-one resolution strategy.
func WithStrategy(s Strategy) Option {
	return func(m *Matcher) { m.strategy = s }
}

// New creates a Matcher.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		config:   DefaultConfig(),
		strategy: Greedy{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.normalizer == nil {
		m.normalizer = normalize.New()
	}
	return m
}

// Match reconciles the entity and tag sets. Every data-quality finding
// lands in the result; Match never fails on drawing content.
func (m *Matcher) Match(entities []drawing.Entity, tags []drawing.Tag) *Result {
	result := &Result{
		Matches:        []Match{},
		Missing:        []drawing.Entity{},
		FalsePositives: []drawing.Tag{},
	}

	units := m.buildUnits(m.filterEntities(entities))

	// Normalize every tag up front; tags under the confidence floor
	// are excluded from matching but still reported as unmatched.
	raws := make([]string, len(tags))
	for i, t := range tags {
		raws[i] = t.RawText
	}
	batch := m.normalizer.ParseAll(raws)
	result.TagStats = batch.Stats

	kept := make([]int, 0, len(tags))
	for i, t := range tags {
		if t.Confidence >= m.config.MinTagConfidence {
			kept = append(kept, i)
		}
	}

	keptTags := make([]drawing.Tag, len(kept))
	for i, idx := range kept {
		keptTags[i] = tags[idx]
	}
	grid := geometry.NewGrid(keptTags, m.config.ProximityThreshold)

	// Best candidate per unit, confidence >= the acceptance floor.
	var candidates []Candidate
	for ui, unit := range units {
		best := Candidate{UnitIndex: -1}
		for _, ki := range grid.Near(unit.anchor.Center()) {
			tagIdx := kept[ki]
			cand, ok := m.score(ui, unit, tagIdx, tags[tagIdx], batch.Results[tagIdx])
			if !ok {
				continue
			}
			if best.UnitIndex == -1 || cand.Confidence > best.Confidence {
				best = cand
			}
		}
		if best.UnitIndex != -1 && best.Confidence >= m.config.AcceptThreshold {
			candidates = append(candidates, best)
		}
	}

	accepted := m.strategy.Resolve(candidates)

	matchedUnit := make(map[int]bool, len(accepted))
	matchedTag := make(map[int]bool, len(accepted))
	for _, c := range accepted {
		matchedUnit[c.UnitIndex] = true
		matchedTag[c.TagIndex] = true
		result.Matches = append(result.Matches, Match{
			Entity:          units[c.UnitIndex].primary,
			Tag:             tags[c.TagIndex],
			Confidence:      c.Confidence,
			SpatialDistance: c.SpatialDistance,
			TextSimilarity:  c.TextSimilarity,
		})
	}

	for ui, unit := range units {
		if !matchedUnit[ui] {
			result.Missing = append(result.Missing, unit.primary)
		}
	}
	for i, t := range tags {
		if !matchedTag[i] {
			result.FalsePositives = append(result.FalsePositives, t)
		}
	}

	if len(units) == 0 {
		result.Confidence = 1
	} else {
		result.Confidence = float64(len(result.Matches)) / float64(len(units))
	}

	result.Recommendations = m.recommend(result)
	return result
}

// score builds the candidate for one unit/tag pairing, or reports that
// the tag is out of range.
func (m *Matcher) score(unitIdx int, u unit, tagIdx int, tag drawing.Tag, parsed normalize.ParseResult) (Candidate, bool) {
	distance := u.anchor.Distance(tag.Geometry)
	if distance > m.config.ProximityThreshold {
		return Candidate{}, false
	}

	spatial := 1 - distance/m.config.ProximityThreshold
	if spatial < 0 {
		spatial = 0
	}

	var similarity float64
	if u.label != "" {
		similarity = textsim.Similarity(u.label, parsed.Normalized)
	} else {
		similarity = keywordSimilarity(u.primary.Name, parsed.Category)
	}

	confidence := m.config.SpatialWeight*spatial +
		m.config.TextWeight*similarity +
		m.config.ConfidenceWeight*tag.Confidence

	return Candidate{
		UnitIndex:       unitIdx,
		TagIndex:        tagIdx,
		Confidence:      confidence,
		SpatialDistance: distance,
		TextSimilarity:  similarity,
	}, true
}

// recommend derives rule-driven follow-ups from the match outcome.
func (m *Matcher) recommend(r *Result) []string {
	var recs []string

	// Several unmatched items on one layer usually means the layer was
	// frozen or skipped during extraction, not that equipment is gone.
	byLayer := make(map[string]int)
	var layers []string
	for _, e := range r.Missing {
		if e.Layer == "" {
			continue
		}
		if byLayer[e.Layer] == 0 {
			layers = append(layers, e.Layer)
		}
		byLayer[e.Layer]++
	}
	sort.Strings(layers)
	for _, layer := range layers {
		if byLayer[layer] >= 2 {
			recs = append(recs, fmt.Sprintf(
				"%d unmatched equipment items on layer %s; check layer visibility and extraction coverage for that layer",
				byLayer[layer], layer))
		}
	}

	lowConf := 0
	for _, t := range r.FalsePositives {
		if t.Confidence < 0.5 {
			lowConf++
		}
	}
	if lowConf > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d low-confidence extracted tags have no drawing counterpart; consider raising the extraction confidence floor",
			lowConf))
	}

	return recs
}

// keywordSimilarity scores a block name against a tag's category when
// there is no label text to compare directly.
func keywordSimilarity(blockName string, category normalize.Category) float64 {
	name := strings.ToUpper(blockName)
	for _, kw := range categoryKeywords[category] {
		if strings.Contains(name, kw) {
			return 0.85
		}
	}
	return 0.2
}
