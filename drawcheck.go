// Package drawcheck reconciles three independently produced
// descriptions of one engineering drawing: the drawing's own entities,
// externally extracted text tags, and template-matched symbol
// detections. The result is a single validation report of confirmed,
// missing, and spurious equipment, instrument topology gaps, rebuilt
// material and rating call-outs, and a measure of how well the
// extraction's declared confidences can be trusted.
package drawcheck

import (
	"context"
	"fmt"

	"github.com/plantsight/drawcheck/pkg/assemble"
	"github.com/plantsight/drawcheck/pkg/calibrate"
	"github.com/plantsight/drawcheck/pkg/crossval"
	"github.com/plantsight/drawcheck/pkg/drawing"
	"github.com/plantsight/drawcheck/pkg/errors"
	"github.com/plantsight/drawcheck/pkg/logging"
	"github.com/plantsight/drawcheck/pkg/match"
	"github.com/plantsight/drawcheck/pkg/normalize"
	"github.com/plantsight/drawcheck/pkg/report"
	"github.com/plantsight/drawcheck/pkg/topology"
)

// Engine runs the full reconciliation pipeline over one drawing.
type Engine interface {
	// Analyze validates the document and runs every pipeline stage,
	// returning the aggregated report. Cancellation is checked between
	// stages; the engine imposes no timeouts of its own.
	Analyze(ctx context.Context, doc *drawing.Document) (*report.ValidationReport, error)
}

// engine is the internal implementation of the Engine interface. All
// components are stateless, so one engine may serve concurrent
// analyses.
type engine struct {
	config *engineConfig

	normalizer *normalize.Normalizer
	matcher    *match.Matcher
	crossval   *crossval.Validator
	topology   *topology.Validator
	assembler  *assemble.Assembler
	harness    *calibrate.Harness
}

// New creates a new Engine instance with the given options.
func New(opts ...Option) (Engine, error) {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}
	if err := cfg.engine.Validate(); err != nil {
		return nil, err
	}
	if cfg.logger == nil {
		cfg.logger = logging.Default()
	}

	normalizer := normalize.New()

	matchOpts := []match.Option{
		match.WithConfig(cfg.matchConfig()),
		match.WithNormalizer(normalizer),
	}
	if cfg.strategy != nil {
		matchOpts = append(matchOpts, match.WithStrategy(cfg.strategy))
	}

	e := &engine{
		config:     cfg,
		normalizer: normalizer,
		matcher:    match.New(matchOpts...),
		crossval: crossval.New(
			crossval.WithConfig(cfg.crossvalConfig()),
			crossval.WithNormalizer(normalizer),
		),
		topology:  topology.New(topology.WithConfig(cfg.topologyConfig())),
		assembler: assemble.New(assemble.WithConfig(cfg.assembleConfig())),
	}
	if cfg.harnessEnabled {
		e.harness = calibrate.New(
			calibrate.WithConfig(cfg.harnessConfig()),
			calibrate.WithNormalizer(normalizer),
		)
	}

	return e, nil
}

// Analyze runs the pipeline: match, cross-validate, topology, assemble,
// then the harness. Each stage consumes the same immutable snapshot.
func (e *engine) Analyze(ctx context.Context, doc *drawing.Document) (*report.ValidationReport, error) {
	if doc == nil {
		return nil, errors.NewValidationError("document", nil, "must not be nil")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	log := e.config.logger
	log.Debug().
		Int("entities", len(doc.Entities)).
		Int("tags", len(doc.Tags)).
		Int("symbols", len(doc.Symbols)).
		Msg("starting analysis")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matching := e.matcher.Match(doc.Entities, doc.Tags)
	log.Debug().
		Int("matched", len(matching.Matches)).
		Int("missing", len(matching.Missing)).
		Int("false_positives", len(matching.FalsePositives)).
		Msg("entity matching done")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbols := e.crossval.Validate(doc.Symbols, doc.Tags)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	topo := e.topology.Validate(doc.Instruments, doc.Equipment, doc.Lines)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	assembly := e.assembler.Assemble(doc.Fragments, doc.Layers)

	var harness *calibrate.Result
	if e.harness != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		harness = e.harness.Run(doc.Entities, doc.Tags)
	}

	r := report.Build(matching, symbols, topo, assembly, harness)

	// An empty drawing passes vacuously; say so instead of letting a
	// clean report suggest real coverage.
	if len(doc.Entities) == 0 && len(doc.Tags) == 0 {
		r.Recommendations = report.MergeRecommendations(
			r.Recommendations,
			[]string{"nothing to validate: the document has no entities and no extracted tags"},
		)
	}

	log.Info().
		Float64("matching_confidence", r.Scores.Matching).
		Float64("overall", r.Scores.Overall).
		Msg("analysis complete")

	return r, nil
}
