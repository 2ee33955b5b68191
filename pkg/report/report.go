// Package report aggregates the per-component results of one analysis
// run into a single ValidationReport, merges recommendations, and
// renders a human-readable markdown view. The structured report is
// authoritative; the markdown is a convenience rendering.
package report

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/plantsight/drawcheck/pkg/assemble"
	"github.com/plantsight/drawcheck/pkg/calibrate"
	"github.com/plantsight/drawcheck/pkg/crossval"
	"github.com/plantsight/drawcheck/pkg/match"
	"github.com/plantsight/drawcheck/pkg/topology"
)

// ComponentScores holds the scalar confidence each component reported,
// plus the harness's overall percentage.
type ComponentScores struct {
	Matching         float64 `json:"matching"`
	SymbolValidation float64 `json:"symbolValidation"`
	Topology         float64 `json:"topology"`
	Assembly         float64 `json:"assembly"`
	Overall          float64 `json:"overall"`
}

// ValidationReport is the complete output of one analysis run.
type ValidationReport struct {
	GeneratedAt     time.Time          `json:"generatedAt"`
	Matching        *match.Result      `json:"matching,omitempty"`
	Symbols         *crossval.Result   `json:"symbols,omitempty"`
	Topology        *topology.Result   `json:"topology,omitempty"`
	Assembly        *assemble.Result   `json:"assembly,omitempty"`
	Harness         *calibrate.Result  `json:"harness,omitempty"`
	Scores          ComponentScores    `json:"scores"`
	Recommendations []string           `json:"recommendations,omitempty"`
}

// Build assembles a ValidationReport from the component results. Nil
// results are allowed; their sections are omitted and their component
// confidences default to 1 (nothing examined, nothing wrong). Overall
// is a harness percentage and stays 0 when the harness did not run.
func Build(
	matching *match.Result,
	symbols *crossval.Result,
	topo *topology.Result,
	assembly *assemble.Result,
	harness *calibrate.Result,
) *ValidationReport {
	r := &ValidationReport{
		GeneratedAt: time.Now().UTC(),
		Matching:    matching,
		Symbols:     symbols,
		Topology:    topo,
		Assembly:    assembly,
		Harness:     harness,
		Scores: ComponentScores{
			Matching:         1,
			SymbolValidation: 1,
			Topology:         1,
			Assembly:         1,
		},
	}

	var recs [][]string
	if matching != nil {
		r.Scores.Matching = matching.Confidence
		recs = append(recs, matching.Recommendations)
	}
	if symbols != nil {
		r.Scores.SymbolValidation = symbols.Confidence
		recs = append(recs, symbols.Recommendations)
	}
	if topo != nil {
		r.Scores.Topology = topo.Confidence
		recs = append(recs, topo.Recommendations)
	}
	if assembly != nil {
		r.Scores.Assembly = assembly.Confidence
		recs = append(recs, assembly.Recommendations)
	}
	if harness != nil {
		r.Scores.Overall = harness.OverallScore
		recs = append(recs, harness.Recommendations)
	}

	r.Recommendations = MergeRecommendations(recs...)
	return r
}

// MergeRecommendations concatenates recommendation lists, dropping
// exact duplicates while preserving first-occurrence order.
func MergeRecommendations(lists ...[]string) []string {
	var merged []string
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, rec := range list {
			if rec == "" || seen[rec] {
				continue
			}
			seen[rec] = true
			merged = append(merged, rec)
		}
	}
	return merged
}

var titleCaser = cases.Title(language.English)

// Markdown renders the report for humans. Counts and scores mirror the
// structured fields exactly.
func (r *ValidationReport) Markdown() string {
	var b strings.Builder

	b.WriteString("# Drawing Validation Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339))

	if r.Matching != nil {
		b.WriteString("## Entity Matching\n\n")
		fmt.Fprintf(&b, "- Matched: %d\n", len(r.Matching.Matches))
		fmt.Fprintf(&b, "- Missing: %d\n", len(r.Matching.Missing))
		fmt.Fprintf(&b, "- False positives: %d\n", len(r.Matching.FalsePositives))
		fmt.Fprintf(&b, "- Confidence: %.2f\n\n", r.Matching.Confidence)
	}

	if r.Symbols != nil {
		b.WriteString("## Symbol Validation\n\n")
		fmt.Fprintf(&b, "- Valid: %d\n", r.Symbols.Valid)
		fmt.Fprintf(&b, "- Invalid: %d\n", r.Symbols.Invalid)
		fmt.Fprintf(&b, "- Ghost tags: %d\n", len(r.Symbols.GhostTags))
		fmt.Fprintf(&b, "- Confidence: %.2f\n\n", r.Symbols.Confidence)
	}

	if r.Topology != nil {
		b.WriteString("## Instrument Topology\n\n")
		fmt.Fprintf(&b, "- Valid: %d\n", r.Topology.Valid)
		fmt.Fprintf(&b, "- Invalid: %d\n", r.Topology.Invalid)
		fmt.Fprintf(&b, "- Confidence: %.2f\n\n", r.Topology.Confidence)
	}

	if r.Assembly != nil {
		b.WriteString("## Material & Rating Specs\n\n")
		for _, spec := range r.Assembly.Specs {
			flag := ""
			if len(spec.Issues) > 0 {
				flag = " ⚠"
			}
			fmt.Fprintf(&b, "- `%s` (layer %s, %.2f)%s\n", spec.Text, spec.Layer, spec.Confidence, flag)
		}
		fmt.Fprintf(&b, "- Confidence: %.2f\n\n", r.Assembly.Confidence)
	}

	if r.Harness != nil {
		b.WriteString("## Extraction Quality\n\n")
		ext := r.Harness.Extraction
		verdict := "FAIL"
		if ext.Passed {
			verdict = "PASS"
		}
		fmt.Fprintf(&b, "- Extraction test: %s (%.1f%% discrepancy)\n", verdict, ext.DiscrepancyPct)
		fmt.Fprintf(&b, "- Calibration score: %.2f\n", r.Harness.Calibration.Score)
		fmt.Fprintf(&b, "- Overall score: %.1f%%\n\n", r.Harness.OverallScore)

		if len(r.Harness.VisualDiff) > 0 {
			b.WriteString("### Visual Diff Sample\n\n")
			b.WriteString("| Status | DWG | Extracted | Distance |\n")
			b.WriteString("|--------|-----|-----------|----------|\n")
			for _, e := range r.Harness.VisualDiff {
				fmt.Fprintf(&b, "| %s | %s | %s | %.1f |\n",
					titleCaser.String(strings.ReplaceAll(string(e.Status), "_", " ")),
					e.DWGTag, e.ExtractedTag, e.Distance)
			}
			b.WriteString("\n")
		}
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for i, rec := range r.Recommendations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
		}
		b.WriteString("\n")
	}

	return b.String()
}
