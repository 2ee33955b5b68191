package drawcheck

import (
	"github.com/rs/zerolog"

	"github.com/plantsight/drawcheck/pkg/assemble"
	"github.com/plantsight/drawcheck/pkg/calibrate"
	"github.com/plantsight/drawcheck/pkg/crossval"
	"github.com/plantsight/drawcheck/pkg/errors"
	"github.com/plantsight/drawcheck/pkg/match"
	"github.com/plantsight/drawcheck/pkg/topology"
)

// Config carries the engine-level thresholds. Component packages keep
// their own finer-grained configs; this struct covers the knobs a
// caller normally tunes.
type Config struct {
	// ProximityThreshold is the maximum center-to-center distance, in
	// drawing units, considered for entity/tag candidate matching.
	ProximityThreshold float64 `json:"proximityThreshold" mapstructure:"proximity_threshold"`

	// SimilarityThreshold is the text similarity the harness requires
	// to fuzzy-match a DWG tag to an extracted tag.
	SimilarityThreshold float64 `json:"similarityThreshold" mapstructure:"similarity_threshold"`

	// DWGToExtractedThreshold is the extraction discrepancy percentage
	// at or below which the harness's extraction test passes.
	DWGToExtractedThreshold float64 `json:"dwgToExtractedThreshold" mapstructure:"dwg_to_extracted_threshold"`

	// ConfidenceThreshold is the declared-confidence percentage at or
	// above which an invalid extracted tag counts as over-confident.
	ConfidenceThreshold float64 `json:"confidenceThreshold" mapstructure:"confidence_threshold"`

	// SampleSize caps the harness's visual diff length.
	SampleSize int `json:"sampleSize" mapstructure:"sample_size"`

	// VisualDiffEnabled switches the harness's visual diff on or off.
	VisualDiffEnabled bool `json:"visualDiffEnabled" mapstructure:"visual_diff_enabled"`
}

// DefaultConfig returns the standard engine thresholds.
func DefaultConfig() Config {
	return Config{
		ProximityThreshold:      50,
		SimilarityThreshold:     0.8,
		DWGToExtractedThreshold: 2.0,
		ConfidenceThreshold:     90.0,
		SampleSize:              50,
		VisualDiffEnabled:       true,
	}
}

// Validate checks the configuration for out-of-range values.
func (c Config) Validate() error {
	if c.ProximityThreshold <= 0 {
		return errors.NewConfigError("proximityThreshold", "must be positive", nil)
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return errors.NewConfigError("similarityThreshold", "must be within [0, 1]", nil)
	}
	if c.DWGToExtractedThreshold < 0 {
		return errors.NewConfigError("dwgToExtractedThreshold", "must not be negative", nil)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 100 {
		return errors.NewConfigError("confidenceThreshold", "must be within [0, 100]", nil)
	}
	if c.SampleSize < 0 {
		return errors.NewConfigError("sampleSize", "must not be negative", nil)
	}
	return nil
}

// engineConfig is the resolved internal configuration, built from the
// public Config plus any component-level overrides.
type engineConfig struct {
	engine   Config
	strategy match.Strategy
	logger   *zerolog.Logger

	harness        calibrate.Config
	harnessSet     bool
	harnessEnabled bool
}

func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		engine:         DefaultConfig(),
		harnessEnabled: true,
	}
}

// matchConfig projects the engine thresholds onto the matcher.
func (c *engineConfig) matchConfig() match.Config {
	cfg := match.DefaultConfig()
	cfg.ProximityThreshold = c.engine.ProximityThreshold
	return cfg
}

// harnessConfig projects the engine thresholds onto the harness unless
// a full harness config was supplied.
func (c *engineConfig) harnessConfig() calibrate.Config {
	if c.harnessSet {
		return c.harness
	}
	cfg := calibrate.DefaultConfig()
	cfg.SimilarityThreshold = c.engine.SimilarityThreshold
	cfg.DWGToExtractedThreshold = c.engine.DWGToExtractedThreshold
	cfg.ConfidenceThreshold = c.engine.ConfidenceThreshold
	cfg.SampleSize = c.engine.SampleSize
	cfg.VisualDiffEnabled = c.engine.VisualDiffEnabled
	cfg.SpatialSanityBound = c.engine.ProximityThreshold
	return cfg
}

func (c *engineConfig) crossvalConfig() crossval.Config {
	return crossval.DefaultConfig()
}

func (c *engineConfig) topologyConfig() topology.Config {
	return topology.DefaultConfig()
}

func (c *engineConfig) assembleConfig() assemble.Config {
	return assemble.DefaultConfig()
}
