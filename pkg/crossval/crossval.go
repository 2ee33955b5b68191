// Package crossval validates template-matched symbol detections
// against the extracted tag set. A detection is accepted only when it
// clears the confidence gate and at least one nearby tag satisfies its
// template's expected-tag profile; extracted tags that never correlate
// with any valid detection are flagged as likely OCR noise.
package crossval

import (
	"fmt"
	"regexp"

	"github.com/plantsight/drawcheck/pkg/drawing"
	"github.com/plantsight/drawcheck/pkg/normalize"
)

// Config tunes the two validation passes.
type Config struct {
	// MinSymbolConfidence is the individual-confidence gate a
	// detection must clear before spatial correlation is consulted.
	MinSymbolConfidence float64
	// GhostConfidenceCeiling marks uncorrelated tags at or below this
	// confidence as probable ghost detections.
	GhostConfidenceCeiling float64
}

// DefaultConfig returns the standard cross-validation tuning.
func DefaultConfig() Config {
	return Config{
		MinSymbolConfidence:    0.85,
		GhostConfidenceCeiling: 0.5,
	}
}

// ItemResult is the verdict for one symbol detection.
type ItemResult struct {
	Symbol          drawing.Symbol `json:"symbol"`
	IsValid         bool           `json:"isValid"`
	Confidence      float64        `json:"confidence"`
	MatchedTag      string         `json:"matchedTag,omitempty"`
	Issues          []string       `json:"issues,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
}

// Result aggregates the per-detection verdicts.
type Result struct {
	Items           []ItemResult  `json:"items"`
	Valid           int           `json:"valid"`
	Invalid         int           `json:"invalid"`
	GhostTags       []drawing.Tag `json:"ghostTags,omitempty"`
	Confidence      float64       `json:"confidence"`
	Recommendations []string      `json:"recommendations,omitempty"`
}

// Validator cross-checks detections against tags. It is stateless and
// safe for concurrent use.
type Validator struct {
	config     Config
	normalizer *normalize.Normalizer
}

// Option configures a Validator.
type Option func(*Validator)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(v *Validator) { v.config = cfg }
}

// WithNormalizer shares a prebuilt normalizer.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(v *Validator) { v.normalizer = n }
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{config: DefaultConfig()}
	for _, opt := range opts {
		opt(v)
	}
	if v.normalizer == nil {
		v.normalizer = normalize.New()
	}
	return v
}

// Validate runs both passes over the detections. Pattern problems in
// the input templates are reported as item issues, never as errors.
func (v *Validator) Validate(symbols []drawing.Symbol, tags []drawing.Tag) *Result {
	result := &Result{Items: make([]ItemResult, 0, len(symbols))}

	// Normalized tag text is what the template patterns match against.
	normalized := make([]string, len(tags))
	for i, t := range tags {
		normalized[i] = v.normalizer.Parse(t.RawText).Normalized
	}

	patterns := make(map[string]*regexp.Regexp)
	correlated := make([]bool, len(tags))

	for _, sym := range symbols {
		item := v.validateOne(sym, tags, normalized, patterns, correlated)
		if item.IsValid {
			result.Valid++
		} else {
			result.Invalid++
		}
		result.Items = append(result.Items, item)
	}

	for i, t := range tags {
		if !correlated[i] && t.Confidence <= v.config.GhostConfidenceCeiling {
			result.GhostTags = append(result.GhostTags, t)
		}
	}

	if len(symbols) == 0 {
		result.Confidence = 1
	} else {
		result.Confidence = float64(result.Valid) / float64(len(symbols))
	}

	if result.Invalid > 0 {
		result.Recommendations = append(result.Recommendations, fmt.Sprintf(
			"%d symbol detections lack a corroborating tag; review template thresholds before trusting them",
			result.Invalid))
	}
	if len(result.GhostTags) > 0 {
		result.Recommendations = append(result.Recommendations, fmt.Sprintf(
			"%d uncorrelated low-confidence tags look like OCR noise; consider filtering them upstream",
			len(result.GhostTags)))
	}

	return result
}

func (v *Validator) validateOne(
	sym drawing.Symbol,
	tags []drawing.Tag,
	normalized []string,
	patterns map[string]*regexp.Regexp,
	correlated []bool,
) ItemResult {
	item := ItemResult{Symbol: sym, Confidence: sym.Confidence}

	confident := sym.Confidence >= v.config.MinSymbolConfidence
	if !confident {
		item.Issues = append(item.Issues, fmt.Sprintf(
			"detection confidence %.2f below the %.2f gate", sym.Confidence, v.config.MinSymbolConfidence))
	}

	// Spatial-correlation pass: any expected-tag profile satisfied by
	// any tag grounds the detection.
	grounded := false
	groundedIdx := -1
	for _, expected := range sym.Template.ExpectedTags {
		re, ok := patterns[expected.Pattern]
		if !ok {
			compiled, err := regexp.Compile(expected.Pattern)
			if err != nil {
				item.Issues = append(item.Issues, fmt.Sprintf(
					"template pattern %q does not compile: %v", expected.Pattern, err))
				patterns[expected.Pattern] = nil
				continue
			}
			re = compiled
			patterns[expected.Pattern] = compiled
		}
		if re == nil {
			continue
		}

		for i, tag := range tags {
			if sym.Geometry.Distance(tag.Geometry) > expected.Proximity {
				continue
			}
			if !re.MatchString(normalized[i]) {
				continue
			}
			if !positionSatisfied(expected.RelativePosition, sym.Geometry, tag.Geometry) {
				continue
			}
			grounded = true
			groundedIdx = i
			break
		}
		if grounded {
			break
		}
	}

	if grounded {
		item.MatchedTag = tags[groundedIdx].RawText
	} else {
		item.Issues = append(item.Issues, "no tag satisfies the template's expected-tag profile")
		item.Recommendations = append(item.Recommendations, fmt.Sprintf(
			"verify symbol %s manually; it has no plausible tag nearby", sym.ID))
	}

	item.IsValid = confident && grounded

	// Only a valid detection vouches for its tag. A tag whose sole
	// correlation is a rejected detection still counts as uncorrelated
	// for the ghost sweep.
	if item.IsValid {
		correlated[groundedIdx] = true
	}
	return item
}

// positionSatisfied checks the declared relative-position constraint
// between symbol and tag centers. Exact alignment on the constrained
// axis counts as satisfied.
func positionSatisfied(pos drawing.RelativePosition, sym, tag drawing.Geometry) bool {
	s := sym.Center()
	t := tag.Center()
	switch pos {
	case drawing.PositionAbove:
		return t.Y <= s.Y
	case drawing.PositionBelow:
		return t.Y >= s.Y
	case drawing.PositionLeft:
		return t.X <= s.X
	case drawing.PositionRight:
		return t.X >= s.X
	case drawing.PositionAny, "":
		return true
	default:
		return false
	}
}
