package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/blockprint/blockprint/pkg/blueprint"
	"github.com/blockprint/blockprint/pkg/observability"
	"github.com/blockprint/blockprint/pkg/render/structure"
)

// Runner executes render runs. Both the CLI and the HTTP server use it.
//
// The Runner is stateless except for the logger. Multiple goroutines can
// safely use the same Runner with different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute validates bp and opts, then renders every requested format.
// A nil blueprint renders like an empty one.
func (r *Runner) Execute(ctx context.Context, bp *blueprint.Blueprint, opts Options) (result *Result, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	// An empty blueprint is a valid input that draws only the clear.
	if len(bp.Segments()) > 0 {
		if err := bp.Validate(); err != nil {
			return nil, err
		}
	}
	logger := opts.Logger

	start := time.Now()
	hooks := observability.Render()
	hooks.OnRenderStart(ctx, opts.VizType, opts.Formats)
	defer func() {
		hooks.OnRenderComplete(ctx, opts.VizType, opts.Formats, time.Since(start), err)
	}()

	result = &Result{Stats: StatsFor(bp)}

	if opts.IsStructure() {
		result.DOT = structure.ToDOT(bp, structure.Options{Detailed: opts.Detailed})
		result.Artifacts, err = RenderStructure(ctx, result.DOT, opts)
	} else {
		result.Commands = Commands(bp, opts)
		result.Stats.Commands = len(result.Commands)
		logger.Debug("drew preview",
			"segments", result.Stats.Segments,
			"commands", result.Stats.Commands,
			"viewport", fmt.Sprintf("%gx%g@%g", opts.Width, opts.Height, opts.Density))
		result.Artifacts, err = RenderPreview(ctx, result.Commands, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Stats.RenderTime = time.Since(start)

	logger.Info("rendered outputs",
		"viz", opts.VizType,
		"formats", opts.Formats,
		"blocks", result.Stats.TotalBlocks,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
