// Package topology checks that each instrument's required connection
// classes (process, signal, power) are actually present in the
// extracted connectivity graph, by looking for line endpoints (or
// equipment connection points, for process runs) within a proximity
// tolerance of the instrument.
package topology

import (
	"fmt"
	"strings"

	"github.com/plantsight/drawcheck/pkg/drawing"
)

// Config tunes the endpoint search.
type Config struct {
	// Tolerance is the maximum distance, in drawing units, between the
	// instrument center and a connection endpoint for the connection
	// to count as present.
	Tolerance float64
}

// DefaultConfig returns the standard topology tuning.
func DefaultConfig() Config {
	return Config{Tolerance: 25}
}

// profiles maps ISA instrument type codes to the connection classes an
// instrument of that type must carry. Types not listed fall back to
// process + signal.
var profiles = map[string][]drawing.ConnectionClass{
	"FT": {drawing.ConnectionProcess, drawing.ConnectionSignal},
	"PT": {drawing.ConnectionProcess, drawing.ConnectionSignal},
	"TT": {drawing.ConnectionProcess, drawing.ConnectionSignal},
	"LT": {drawing.ConnectionProcess, drawing.ConnectionSignal},

	"FIC": {drawing.ConnectionSignal, drawing.ConnectionPower},
	"PIC": {drawing.ConnectionSignal, drawing.ConnectionPower},
	"TIC": {drawing.ConnectionSignal, drawing.ConnectionPower},
	"LIC": {drawing.ConnectionSignal, drawing.ConnectionPower},

	"FCV": {drawing.ConnectionProcess, drawing.ConnectionSignal, drawing.ConnectionPower},
	"PCV": {drawing.ConnectionProcess, drawing.ConnectionSignal, drawing.ConnectionPower},
	"TCV": {drawing.ConnectionProcess, drawing.ConnectionSignal, drawing.ConnectionPower},
	"LCV": {drawing.ConnectionProcess, drawing.ConnectionSignal, drawing.ConnectionPower},

	// Relief devices are purely mechanical.
	"PSV": {drawing.ConnectionProcess},
	"PSE": {drawing.ConnectionProcess},
}

var defaultProfile = []drawing.ConnectionClass{drawing.ConnectionProcess, drawing.ConnectionSignal}

// RequiredClasses returns the connection profile for an instrument:
// its explicit Required list when set, otherwise the profile for its
// type code.
func RequiredClasses(in drawing.Instrument) []drawing.ConnectionClass {
	if len(in.Required) > 0 {
		return in.Required
	}
	if p, ok := profiles[strings.ToUpper(in.Type)]; ok {
		return p
	}
	return defaultProfile
}

// ItemResult is the verdict for one instrument.
type ItemResult struct {
	Instrument drawing.Instrument        `json:"instrument"`
	IsValid    bool                      `json:"isValid"`
	Satisfied  []drawing.ConnectionClass `json:"satisfied,omitempty"`
	MissingOn  []drawing.ConnectionClass `json:"missing,omitempty"`
	Issues     []string                  `json:"issues,omitempty"`
}

// Result aggregates per-instrument verdicts.
type Result struct {
	Items           []ItemResult `json:"items"`
	Valid           int          `json:"valid"`
	Invalid         int          `json:"invalid"`
	Confidence      float64      `json:"confidence"`
	Recommendations []string     `json:"recommendations,omitempty"`
}

// Validator runs topology checks. Stateless, safe for concurrent use.
type Validator struct {
	config Config
}

// Option configures a Validator.
type Option func(*Validator)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(v *Validator) { v.config = cfg }
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{config: DefaultConfig()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks every instrument against the connectivity graph.
func (v *Validator) Validate(
	instruments []drawing.Instrument,
	equipment []drawing.Equipment,
	lines []drawing.Line,
) *Result {
	result := &Result{Items: make([]ItemResult, 0, len(instruments))}

	for _, in := range instruments {
		item := ItemResult{Instrument: in}

		for _, class := range RequiredClasses(in) {
			if v.connected(in, class, equipment, lines) {
				item.Satisfied = append(item.Satisfied, class)
				continue
			}
			item.MissingOn = append(item.MissingOn, class)
			item.Issues = append(item.Issues, fmt.Sprintf(
				"no %s connection within %.0f units", class, v.config.Tolerance))
			result.Recommendations = append(result.Recommendations, fmt.Sprintf(
				"instrument %s has no %s connection; verify its wiring on the drawing", in.Tag, class))
		}

		item.IsValid = len(item.MissingOn) == 0
		if item.IsValid {
			result.Valid++
		} else {
			result.Invalid++
		}
		result.Items = append(result.Items, item)
	}

	if len(instruments) == 0 {
		result.Confidence = 1
	} else {
		result.Confidence = float64(result.Valid) / float64(len(instruments))
	}
	return result
}

// connected reports whether any endpoint of the right class lies within
// tolerance of the instrument. Process connections may also terminate
// on an equipment connection point.
func (v *Validator) connected(
	in drawing.Instrument,
	class drawing.ConnectionClass,
	equipment []drawing.Equipment,
	lines []drawing.Line,
) bool {
	for _, line := range lines {
		if line.Class != class {
			continue
		}
		for _, p := range line.Endpoints {
			if in.Geometry.DistanceToPoint(p) <= v.config.Tolerance {
				return true
			}
		}
	}

	if class == drawing.ConnectionProcess {
		for _, eq := range equipment {
			for _, p := range eq.ConnectionPoints {
				if in.Geometry.DistanceToPoint(p) <= v.config.Tolerance {
					return true
				}
			}
		}
	}

	return false
}
