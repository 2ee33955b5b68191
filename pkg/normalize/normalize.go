// Package normalize corrects common character-recognition errors in
// equipment tag strings and classifies them into equipment categories.
// A Normalizer is a stateless value built from constant tables; build
// one at process start and share it freely across goroutines.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Category is the equipment class a tag string resolves to.
type Category string

const (
	// CategoryPump matches pump tags such as P-101A.
	CategoryPump Category = "pump"
	// CategoryInstrument matches ISA instrument tags such as FT-201.
	CategoryInstrument Category = "instrument"
	// CategoryVessel matches vessel and tank tags such as V-301.
	CategoryVessel Category = "vessel"
	// CategoryValve matches valve tags such as XV-401.
	CategoryValve Category = "valve"
	// CategoryLineSpec matches line specification call-outs such as 6"-CS-150.
	CategoryLineSpec Category = "line-spec"
	// CategoryUnknown is the fallback when no pattern matches.
	CategoryUnknown Category = "unknown"
)

const (
	// substitutionPenalty is subtracted from the confidence for every
	// character correction applied.
	substitutionPenalty = 0.05
	// unknownPenalty is subtracted when no category pattern matches.
	unknownPenalty = 0.3
)

// confusables maps characters OCR commonly misreads in numeric context
// to the digit that was almost certainly intended. Applied only inside
// tag segments that carry at least one real digit.
var confusables = map[rune]rune{
	'O': '0',
	'I': '1',
	'S': '5',
	'Z': '2',
	'l': '1',
	'|': '1',
}

// separators maps characters normalized to the canonical dash
// unconditionally.
var separators = map[rune]bool{
	'_':      true,
	'‐': true, // hyphen
	'–': true, // en dash
	'—': true, // em dash
}

// ParseResult is the outcome of normalizing one raw tag string.
type ParseResult struct {
	Original   string   `json:"original"`
	Normalized string   `json:"normalized"`
	Category   Category `json:"category"`
	Subtype    string   `json:"subtype,omitempty"` // ISA letter code for instruments
	Confidence float64  `json:"confidence"`
	Issues     []string `json:"issues,omitempty"`
}

// Valid reports whether the tag resolved to a known category.
func (r ParseResult) Valid() bool {
	return r.Category != CategoryUnknown
}

type pattern struct {
	category Category
	re       *regexp.Regexp
}

// Normalizer applies the correction tables and the ordered category
// patterns. The zero value is not usable; call New.
type Normalizer struct {
	patterns []pattern
	subtype  *regexp.Regexp
}

// New builds a Normalizer with all category patterns precompiled. The
// pattern list is evaluated in priority order and the first match wins.
func New() *Normalizer {
	return &Normalizer{
		patterns: []pattern{
			{CategoryPump, regexp.MustCompile(`^P-\d{3}[A-Z]?$`)},
			{CategoryInstrument, regexp.MustCompile(`^[FLPTA][TEICVSYGR]{1,2}-\d{3}[A-Z]?$`)},
			{CategoryVessel, regexp.MustCompile(`^(?:V|TK|D|C|R|E)-\d{3}[A-Z]?$`)},
			{CategoryValve, regexp.MustCompile(`^(?:XV|HV|MOV|SDV|BDV|CV)-\d{3}[A-Z]?$`)},
			{CategoryLineSpec, regexp.MustCompile(`^\d+"-[A-Z]{2,4}-\d{3}$`)},
		},
		subtype: regexp.MustCompile(`^[A-Z]{2,3}`),
	}
}

// Parse normalizes one raw tag string and classifies the result.
// Normalizing an already clean tag is the identity: the normalized text
// equals the input and Issues is empty.
func (n *Normalizer) Parse(raw string) ParseResult {
	result := ParseResult{Original: raw}

	text := strings.TrimSpace(raw)
	if text != raw {
		result.Issues = append(result.Issues, "trimmed surrounding whitespace")
	}

	// Separator characters normalize to '-' regardless of context.
	var b strings.Builder
	for _, r := range text {
		if separators[r] {
			result.Issues = append(result.Issues, fmt.Sprintf("normalized separator %q to '-'", r))
			b.WriteRune('-')
			continue
		}
		b.WriteRune(r)
	}
	text = b.String()

	// Confusable substitutions apply only inside digit-bearing
	// segments, so material codes like CS or PSV stay untouched. A
	// string that already classifies cleanly is left alone: the S in
	// P-101S is a legitimate suffix letter, not a misread 5.
	if n.classify(strings.ToUpper(text)) == CategoryUnknown {
		segments := strings.Split(text, "-")
		for si, seg := range segments {
			if !strings.ContainsFunc(seg, unicode.IsDigit) {
				continue
			}
			runes := []rune(seg)
			for i, r := range runes {
				rep, ok := confusables[r]
				if !ok {
					continue
				}
				// A segment-final letter after an all-digit run sits in
				// suffix position; keep it.
				if i == len(runes)-1 && i > 0 && unicode.IsLetter(r) && digitRun(runes[:i]) {
					continue
				}
				result.Issues = append(result.Issues, fmt.Sprintf("corrected %q to %q in segment %q", r, rep, seg))
				runes[i] = rep
			}
			segments[si] = string(runes)
		}
		text = strings.Join(segments, "-")
	}

	if upper := strings.ToUpper(text); upper != text {
		result.Issues = append(result.Issues, "uppercased tag text")
		text = upper
	}

	result.Normalized = text
	result.Category = n.classify(text)
	if result.Category == CategoryInstrument {
		result.Subtype = n.subtype.FindString(text)
	}

	confidence := 1.0 - substitutionPenalty*float64(len(result.Issues))
	if result.Category == CategoryUnknown {
		confidence -= unknownPenalty
	}
	result.Confidence = clamp01(confidence)

	return result
}

// classify returns the first category whose pattern matches, in
// priority order.
func (n *Normalizer) classify(text string) Category {
	for _, p := range n.patterns {
		if p.re.MatchString(text) {
			return p.category
		}
	}
	return CategoryUnknown
}

// digitRun reports whether every rune is a digit or resolves to one
// through the confusable table.
func digitRun(runes []rune) bool {
	for _, r := range runes {
		if unicode.IsDigit(r) {
			continue
		}
		if _, ok := confusables[r]; !ok {
			return false
		}
	}
	return true
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
