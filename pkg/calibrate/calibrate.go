// Package calibrate measures how trustworthy an extraction run is. It
// diffs the drawing's own text against the extracted tag set, scores
// how well declared confidences track observed validity, and renders a
// per-item visual diff for manual sampling.
package calibrate

import (
	"fmt"
	"math"
	"sort"

	"github.com/plantsight/drawcheck/internal/textsim"
	"github.com/plantsight/drawcheck/pkg/drawing"
	"github.com/plantsight/drawcheck/pkg/normalize"
)

// Config tunes the harness. Thresholds expressed as percentages keep
// the same unit as the report they gate.
type Config struct {
	// DWGToExtractedThreshold is the discrepancy percentage at or below
	// which the extraction test passes.
	DWGToExtractedThreshold float64
	// ConfidenceThreshold is the declared-confidence percentage at or
	// above which an invalid tag counts as over-confident.
	ConfidenceThreshold float64
	// SimilarityThreshold is the text similarity a DWG/extracted pair
	// must exceed to count as the same tag.
	SimilarityThreshold float64
	// SampleSize caps the visual diff length.
	SampleSize int
	// VisualDiffEnabled switches the visual diff off entirely.
	VisualDiffEnabled bool
	// SpatialSanityBound is the center distance beyond which a matched
	// pair is reported as a spatial mismatch.
	SpatialSanityBound float64
}

// DefaultConfig returns the standard harness tuning.
func DefaultConfig() Config {
	return Config{
		DWGToExtractedThreshold: 2.0,
		ConfidenceThreshold:     90.0,
		SimilarityThreshold:     0.8,
		SampleSize:              50,
		VisualDiffEnabled:       true,
		SpatialSanityBound:      50,
	}
}

// DiffStatus classifies one visual diff entry.
type DiffStatus string

const (
	StatusMatch              DiffStatus = "match"
	StatusMissingInExtracted DiffStatus = "missing_in_extracted"
	StatusMissingInDWG       DiffStatus = "missing_in_dwg"
	StatusMismatch           DiffStatus = "mismatch"
)

// DiffEntry is one row of the visual diff.
type DiffEntry struct {
	Status       DiffStatus `json:"status"`
	DWGTag       string     `json:"dwgTag,omitempty"`
	ExtractedTag string     `json:"extractedTag,omitempty"`
	Similarity   float64    `json:"similarity,omitempty"`
	Distance     float64    `json:"distance,omitempty"`
}

// ExtractionResult is the DWG-vs-extracted diff summary.
type ExtractionResult struct {
	DWGCount       int      `json:"dwgCount"`
	ExtractedCount int      `json:"extractedCount"`
	MatchedCount   int      `json:"matchedCount"`
	Missing        []string `json:"missing,omitempty"`
	Extra          []string `json:"extra,omitempty"`
	DiscrepancyPct float64  `json:"discrepancyPct"`
	Passed         bool     `json:"passed"`
}

// Bin is one 10%-wide confidence bucket.
type Bin struct {
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
	Count    int     `json:"count"`
	Valid    int     `json:"valid"`
	Accuracy float64 `json:"accuracy"`
}

// CalibrationResult summarizes declared-vs-observed confidence.
type CalibrationResult struct {
	Bins           []Bin   `json:"bins"`
	ECE            float64 `json:"ece"`
	Score          float64 `json:"score"`
	Overconfident  int     `json:"overconfident"`
	Underconfident int     `json:"underconfident"`
}

// Result is the full harness output.
type Result struct {
	Extraction      ExtractionResult  `json:"extraction"`
	Calibration     CalibrationResult `json:"calibration"`
	VisualDiff      []DiffEntry       `json:"visualDiff,omitempty"`
	OverallScore    float64           `json:"overallScore"`
	Recommendations []string          `json:"recommendations,omitempty"`
}

// Harness runs the calibration and diff passes. Stateless, safe for
// concurrent use.
type Harness struct {
	config     Config
	normalizer *normalize.Normalizer
}

// Option configures a Harness.
type Option func(*Harness)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(h *Harness) { h.config = cfg }
}

// WithNormalizer shares a prebuilt normalizer.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(h *Harness) { h.normalizer = n }
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{config: DefaultConfig()}
	for _, opt := range opts {
		opt(h)
	}
	if h.normalizer == nil {
		h.normalizer = normalize.New()
	}
	return h
}

// dwgTag is one ground-truth tag lifted from the drawing's own text.
type dwgTag struct {
	text     string
	geometry drawing.Geometry
}

// Run executes the harness over the authoritative entities and the
// extracted tag set.
func (h *Harness) Run(entities []drawing.Entity, tags []drawing.Tag) *Result {
	result := &Result{}

	dwg := h.dwgTagSet(entities)
	extracted := make([]string, len(tags))
	for i, t := range tags {
		extracted[i] = h.normalizer.Parse(t.RawText).Normalized
	}

	pairs := h.diff(dwg, tags, extracted, result)
	h.calibrate(tags, result)
	if h.config.VisualDiffEnabled {
		h.visualDiff(dwg, tags, pairs, result)
	}

	passFraction := 0.0
	if result.Extraction.Passed {
		passFraction = 1
	}
	overFraction := 0.0
	if len(tags) > 0 {
		overFraction = float64(result.Calibration.Overconfident) / float64(len(tags))
	}
	result.OverallScore = (0.4*passFraction + 0.3*result.Calibration.Score + 0.3*(1-overFraction)) * 100

	h.recommend(result)
	return result
}

// dwgTagSet filters the drawing's text and annotation entities down to
// the ones that normalize to a recognized tag category.
func (h *Harness) dwgTagSet(entities []drawing.Entity) []dwgTag {
	var dwg []dwgTag
	for _, e := range entities {
		if e.Kind != drawing.EntityKindText && e.Kind != drawing.EntityKindAnnotation {
			continue
		}
		parsed := h.normalizer.Parse(e.Text)
		if !parsed.Valid() {
			continue
		}
		dwg = append(dwg, dwgTag{text: parsed.Normalized, geometry: e.Geometry})
	}
	return dwg
}

// pair links a DWG tag index to an extracted tag index.
type pair struct {
	dwg, tag   int
	similarity float64
}

// diff fuzzy-matches the two tag sets one-to-one, best similarity
// first, and fills the extraction summary.
func (h *Harness) diff(dwg []dwgTag, tags []drawing.Tag, extracted []string, result *Result) []pair {
	var candidates []pair
	for i, d := range dwg {
		for j := range tags {
			sim := textsim.Similarity(d.text, extracted[j])
			if sim > h.config.SimilarityThreshold {
				candidates = append(candidates, pair{dwg: i, tag: j, similarity: sim})
			}
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].similarity > candidates[j].similarity
	})

	dwgClaimed := make([]bool, len(dwg))
	tagClaimed := make([]bool, len(tags))
	var matched []pair
	for _, c := range candidates {
		if dwgClaimed[c.dwg] || tagClaimed[c.tag] {
			continue
		}
		dwgClaimed[c.dwg] = true
		tagClaimed[c.tag] = true
		matched = append(matched, c)
	}

	ext := &result.Extraction
	ext.DWGCount = len(dwg)
	ext.ExtractedCount = len(tags)
	ext.MatchedCount = len(matched)
	for i, claimed := range dwgClaimed {
		if !claimed {
			ext.Missing = append(ext.Missing, dwg[i].text)
		}
	}
	for j, claimed := range tagClaimed {
		if !claimed {
			ext.Extra = append(ext.Extra, tags[j].RawText)
		}
	}

	// An empty ground-truth set is a vacuous pass.
	if len(dwg) > 0 {
		ext.DiscrepancyPct = float64(len(ext.Missing)+len(ext.Extra)) / float64(len(dwg)) * 100
	}
	ext.Passed = ext.DiscrepancyPct <= h.config.DWGToExtractedThreshold

	return matched
}

// calibrate buckets the extracted tags by declared confidence and
// compares each bucket's midpoint against its observed validity rate.
func (h *Harness) calibrate(tags []drawing.Tag, result *Result) {
	cal := &result.Calibration
	cal.Bins = make([]Bin, 10)
	for i := range cal.Bins {
		cal.Bins[i].Lower = float64(i) / 10
		cal.Bins[i].Upper = float64(i+1) / 10
	}

	overGate := h.config.ConfidenceThreshold / 100

	for _, t := range tags {
		valid := h.normalizer.Parse(t.RawText).Valid()

		idx := int(t.Confidence * 10)
		if idx > 9 {
			idx = 9
		}
		if idx < 0 {
			idx = 0
		}
		cal.Bins[idx].Count++
		if valid {
			cal.Bins[idx].Valid++
			if t.Confidence < 0.5 {
				cal.Underconfident++
			}
		} else if t.Confidence >= overGate {
			cal.Overconfident++
		}
	}

	total := len(tags)
	for i := range cal.Bins {
		bin := &cal.Bins[i]
		if bin.Count == 0 {
			continue
		}
		bin.Accuracy = float64(bin.Valid) / float64(bin.Count)
		midpoint := (bin.Lower + bin.Upper) / 2
		weight := float64(bin.Count) / float64(total)
		cal.ECE += weight * math.Abs(midpoint-bin.Accuracy)
	}
	cal.Score = 1 - cal.ECE
}

// visualDiff emits one row per DWG tag and per extracted tag, capped
// at the configured sample size.
func (h *Harness) visualDiff(dwg []dwgTag, tags []drawing.Tag, matched []pair, result *Result) {
	dwgToPair := make(map[int]pair, len(matched))
	tagMatched := make(map[int]bool, len(matched))
	for _, p := range matched {
		dwgToPair[p.dwg] = p
		tagMatched[p.tag] = true
	}

	add := func(e DiffEntry) bool {
		if len(result.VisualDiff) >= h.config.SampleSize {
			return false
		}
		result.VisualDiff = append(result.VisualDiff, e)
		return true
	}

	for i, d := range dwg {
		p, ok := dwgToPair[i]
		if !ok {
			if !add(DiffEntry{Status: StatusMissingInExtracted, DWGTag: d.text}) {
				return
			}
			continue
		}
		tag := tags[p.tag]
		dist := d.geometry.Distance(tag.Geometry)
		status := StatusMatch
		if dist > h.config.SpatialSanityBound {
			status = StatusMismatch
		}
		entry := DiffEntry{
			Status:       status,
			DWGTag:       d.text,
			ExtractedTag: tag.RawText,
			Similarity:   p.similarity,
			Distance:     dist,
		}
		if !add(entry) {
			return
		}
	}

	for j, t := range tags {
		if tagMatched[j] {
			continue
		}
		if !add(DiffEntry{Status: StatusMissingInDWG, ExtractedTag: t.RawText}) {
			return
		}
	}
}

// recommend appends threshold-breach recommendations in priority
// order: extraction first, calibration second, spatial mismatches
// last.
func (h *Harness) recommend(result *Result) {
	if !result.Extraction.Passed {
		result.Recommendations = append(result.Recommendations, fmt.Sprintf(
			"extraction discrepancy %.1f%% exceeds the %.1f%% threshold; re-run extraction before trusting downstream results",
			result.Extraction.DiscrepancyPct, h.config.DWGToExtractedThreshold))
	}
	if result.Calibration.ECE > 0.1 {
		result.Recommendations = append(result.Recommendations, fmt.Sprintf(
			"declared confidences are poorly calibrated (ECE %.2f); recalibrate the extractor's confidence output",
			result.Calibration.ECE))
	}
	mismatches := 0
	for _, e := range result.VisualDiff {
		if e.Status == StatusMismatch {
			mismatches++
		}
	}
	if mismatches > 0 {
		result.Recommendations = append(result.Recommendations, fmt.Sprintf(
			"%d matched tags sit far from their drawing entities; check the coordinate transform between sources",
			mismatches))
	}
}
