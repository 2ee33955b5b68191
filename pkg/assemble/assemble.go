// Package assemble reconstructs material and pressure-rating call-outs
// that OCR split into fragments. Fragments are grouped by layer and
// baseline, merged left to right, normalized against call-out
// dictionaries, and cross-checked against the layer's declared
// defaults.
package assemble

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/plantsight/drawcheck/pkg/drawing"
)

// Config tunes fragment grouping and merging.
type Config struct {
	// MaxGap is the widest horizontal gap, in drawing units, merged
	// inside one call-out.
	MaxGap float64
	// RowTolerance is the vertical distance within which fragments
	// count as sharing a baseline.
	RowTolerance float64
	// FontTolerance is the largest font size difference merged inside
	// one call-out.
	FontTolerance float64
}

// DefaultConfig returns the standard assembler tuning.
func DefaultConfig() Config {
	return Config{
		MaxGap:        10,
		RowTolerance:  6,
		FontTolerance: 0.75,
	}
}

// Spec is one reconstructed specification string.
type Spec struct {
	Layer         string   `json:"layer"`
	Text          string   `json:"text"`
	FragmentCount int      `json:"fragmentCount"`
	Confidence    float64  `json:"confidence"`
	Issues        []string `json:"issues,omitempty"`
}

// Result aggregates the reconstructed specs for one drawing.
type Result struct {
	Specs           []Spec   `json:"specs"`
	Confidence      float64  `json:"confidence"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Assembler merges and normalizes fragments. Stateless, safe for
// concurrent use.
type Assembler struct {
	config Config
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(a *Assembler) { a.config = cfg }
}

// New creates an Assembler.
func New(opts ...Option) *Assembler {
	a := &Assembler{config: DefaultConfig()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Normalization dictionaries. Ordered; materials before units so
// "stainless steel" is rewritten before any unit handling.
var (
	materialSynonyms = []struct {
		re  *regexp.Regexp
		out string
	}{
		{regexp.MustCompile(`(?i)\bcarbon\s+steel\b`), "CS"},
		{regexp.MustCompile(`(?i)\bstainless\s+steel\b`), "SS"},
	}
	unitSynonyms = regexp.MustCompile(`(?i)\b(\d+)\s*(?:inches|inch|in)\b`)
	psiCasing    = regexp.MustCompile(`(?i)\bpsi\b`)
	ratingToken  = regexp.MustCompile(`(?:CL\s*(\d+)|(\d+)\s*#|(\d+)\s*PSI)`)
)

// knownMaterials are the material codes the cross-check recognizes.
var knownMaterials = []string{"CS", "SS", "HDPE", "PVC"}

// Assemble reconstructs specification strings from the fragments.
func (a *Assembler) Assemble(fragments []drawing.Fragment, layers []drawing.Layer) *Result {
	result := &Result{Specs: []Spec{}}

	layerDefaults := make(map[string]drawing.Layer, len(layers))
	for _, l := range layers {
		layerDefaults[l.Name] = l
	}

	for _, group := range a.groupFragments(fragments) {
		for _, spec := range a.mergeGroup(group) {
			a.crossValidate(&spec, layerDefaults)
			result.Specs = append(result.Specs, spec)
		}
	}

	if len(result.Specs) == 0 {
		result.Confidence = 1
	} else {
		var sum float64
		flagged := map[string]bool{}
		for _, s := range result.Specs {
			sum += s.Confidence
			if len(s.Issues) > 0 && !flagged[s.Layer] {
				flagged[s.Layer] = true
				result.Recommendations = append(result.Recommendations, fmt.Sprintf(
					"reconstructed call-outs on layer %s disagree with the layer standard; review them manually", s.Layer))
			}
		}
		result.Confidence = sum / float64(len(result.Specs))
	}

	return result
}

// groupFragments buckets fragments by layer and baseline, each bucket
// sorted left to right.
func (a *Assembler) groupFragments(fragments []drawing.Fragment) [][]drawing.Fragment {
	byLayer := make(map[string][]drawing.Fragment)
	var layerOrder []string
	for _, f := range fragments {
		if _, ok := byLayer[f.Layer]; !ok {
			layerOrder = append(layerOrder, f.Layer)
		}
		byLayer[f.Layer] = append(byLayer[f.Layer], f)
	}

	var groups [][]drawing.Fragment
	for _, layer := range layerOrder {
		frags := byLayer[layer]
		sort.SliceStable(frags, func(i, j int) bool {
			return frags[i].Geometry.Center().Y < frags[j].Geometry.Center().Y
		})

		// Sequential baseline clustering: a fragment joins the current
		// row while it stays within RowTolerance of the previous one.
		var row []drawing.Fragment
		for _, f := range frags {
			if len(row) > 0 {
				prev := row[len(row)-1].Geometry.Center().Y
				if f.Geometry.Center().Y-prev > a.config.RowTolerance {
					groups = append(groups, sortRow(row))
					row = nil
				}
			}
			row = append(row, f)
		}
		if len(row) > 0 {
			groups = append(groups, sortRow(row))
		}
	}
	return groups
}

func sortRow(row []drawing.Fragment) []drawing.Fragment {
	sort.SliceStable(row, func(i, j int) bool {
		return row[i].Geometry.X < row[j].Geometry.X
	})
	return row
}

// mergeGroup walks one baseline left to right, merging fragments whose
// gap and font size allow it. A merge break closes the current spec and
// opens a new one, so two call-outs sharing a baseline each survive as
// their own spec.
func (a *Assembler) mergeGroup(row []drawing.Fragment) []Spec {
	var specs []Spec

	var b strings.Builder
	var confSum, worstGap float64
	merged := 0

	flush := func() {
		if merged == 0 {
			return
		}
		specs = append(specs, Spec{
			Layer:         row[0].Layer,
			Text:          normalizeSpec(b.String()),
			FragmentCount: merged,
			// Mean fragment confidence, discounted by how uncertain the
			// widest merge decision was.
			Confidence: (confSum / float64(merged)) * (1 - 0.1*worstGap/a.config.MaxGap),
		})
		b.Reset()
		confSum, worstGap = 0, 0
		merged = 0
	}

	for i, f := range row {
		if i > 0 {
			prev := row[i-1]
			gap := f.Geometry.X - (prev.Geometry.X + prev.Geometry.Width)
			fontDelta := f.FontSize - prev.FontSize
			if fontDelta < 0 {
				fontDelta = -fontDelta
			}
			if gap > a.config.MaxGap || fontDelta > a.config.FontTolerance {
				flush()
			} else if gap > worstGap {
				worstGap = gap
			}
		}
		b.WriteString(f.Text)
		confSum += f.Confidence
		merged++
	}
	flush()
	return specs
}

// normalizeSpec rewrites a merged string against the call-out
// dictionaries.
func normalizeSpec(s string) string {
	s = strings.TrimSpace(s)
	for _, m := range materialSynonyms {
		s = m.re.ReplaceAllString(s, m.out)
	}
	s = unitSynonyms.ReplaceAllString(s, `$1"`)
	s = psiCasing.ReplaceAllString(s, "PSI")
	return s
}

// crossValidate flags disagreement between the reconstructed value and
// the layer's declared defaults.
func (a *Assembler) crossValidate(spec *Spec, layers map[string]drawing.Layer) {
	layer, ok := layers[spec.Layer]
	if !ok {
		return
	}
	upper := strings.ToUpper(spec.Text)

	if layer.DefaultMaterial != "" {
		for _, mat := range knownMaterials {
			if mat == strings.ToUpper(layer.DefaultMaterial) {
				continue
			}
			if containsToken(upper, mat) {
				spec.Issues = append(spec.Issues, fmt.Sprintf(
					"material %s disagrees with layer default %s", mat, layer.DefaultMaterial))
				break
			}
		}
	}

	if layer.DefaultRating != "" {
		if m := ratingToken.FindStringSubmatch(upper); m != nil {
			rating := m[1] + m[2] + m[3] // exactly one group is non-empty
			if rating != ratingDigits(layer.DefaultRating) {
				spec.Issues = append(spec.Issues, fmt.Sprintf(
					"rating %s disagrees with layer default %s", rating, layer.DefaultRating))
			}
		}
	}
}

// containsToken reports whether tok appears in s bounded by
// non-alphanumeric characters.
func containsToken(s, tok string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], tok)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(tok)
		beforeOK := start == 0 || !isAlnum(s[start-1])
		afterOK := end == len(s) || !isAlnum(s[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isAlnum(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}

// ratingDigits strips a declared rating down to its digits for
// comparison, so "150#", "CL150" and "150" all agree.
func ratingDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
