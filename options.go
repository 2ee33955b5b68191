package drawcheck

import (
	"github.com/rs/zerolog"

	"github.com/plantsight/drawcheck/pkg/calibrate"
	"github.com/plantsight/drawcheck/pkg/match"
)

// Option is a function that configures an Engine instance.
type Option func(*engineConfig) error

// WithConfig replaces the default engine thresholds. The configuration
// is validated when the engine is constructed.
func WithConfig(cfg Config) Option {
	return func(c *engineConfig) error {
		c.engine = cfg
		return nil
	}
}

// WithLogger sets the logger the engine uses. Defaults to the package
// logger from pkg/logging.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *engineConfig) error {
		c.logger = logger
		return nil
	}
}

// WithStrategy replaces the matcher's default greedy one-to-one
// resolution strategy.
func WithStrategy(s match.Strategy) Option {
	return func(c *engineConfig) error {
		c.strategy = s
		return nil
	}
}

// WithHarnessConfig supplies a full harness configuration, overriding
// the projection from the engine thresholds.
func WithHarnessConfig(cfg calibrate.Config) Option {
	return func(c *engineConfig) error {
		c.harness = cfg
		c.harnessSet = true
		return nil
	}
}

// WithoutHarness disables the calibration and diff harness; the report
// is produced without extraction-quality sections.
func WithoutHarness() Option {
	return func(c *engineConfig) error {
		c.harnessEnabled = false
		return nil
	}
}
