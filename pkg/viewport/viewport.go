// Package viewport keeps a drawing surface in sync with a blueprint preview.
//
// An [Adapter] owns the lifecycle of one preview: [Attach] renders once and
// starts observing the surface size, every observed resize and every
// [Adapter.SetBlueprint] with a different blueprint triggers a full
// re-render, and [Adapter.Detach] releases the observation. Passes are
// serialized per adapter and each one delivers the complete command list in
// a single [Surface.Draw] call.
//
// Hosts that receive size changes as messages (terminal UIs, websocket
// sessions) use a [ManualSource], or a [Frame] which is both the surface
// and its resize source:
//
//	frame := viewport.NewFrame(viewport.Size{Width: 80, Height: 40, Density: 1}, paint)
//	a, err := viewport.Attach(frame, frame, bp)
//	defer a.Detach()
//	frame.Resize(viewport.Size{Width: 120, Height: 40, Density: 1})
package viewport

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/blockprint/blockprint/pkg/blueprint"
	"github.com/blockprint/blockprint/pkg/observability"
	"github.com/blockprint/blockprint/pkg/render/draw"
	"github.com/blockprint/blockprint/pkg/render/preview"
)

// Size is a surface size in CSS pixels plus its pixel density.
type Size = preview.Viewport

// Surface receives complete render passes.
type Surface interface {
	// Size reports the current surface size.
	Size() Size
	// Draw replaces the surface content with cmds.
	Draw(cmds []draw.Command) error
}

// ResizeSource notifies observers of surface size changes.
type ResizeSource interface {
	// Observe registers fn and returns a function that unregisters it.
	// The returned function is safe to call more than once.
	Observe(fn func(Size)) (release func())
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithRenderOptions passes options to every preview pass.
func WithRenderOptions(opts ...preview.Option) Option {
	return func(a *Adapter) { a.renderOpts = append(a.renderOpts, opts...) }
}

// WithLogger sets the logger for pass diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithErrorHandler is called with Draw errors from passes triggered by
// resizes, which have no caller to return them to.
func WithErrorHandler(fn func(error)) Option {
	return func(a *Adapter) { a.onError = fn }
}

// Adapter re-renders a blueprint onto a surface whenever its inputs change.
type Adapter struct {
	mu         sync.Mutex
	surface    Surface
	bp         *blueprint.Blueprint
	size       Size
	renderOpts []preview.Option
	logger     *log.Logger
	onError    func(error)
	release    func()
	detached   bool
	passes     int
}

// Attach renders bp onto surface at its current size, then subscribes to
// src. It returns the first pass's Draw error, in which case nothing is
// observed.
func Attach(surface Surface, src ResizeSource, bp *blueprint.Blueprint, opts ...Option) (*Adapter, error) {
	a := &Adapter{
		surface: surface,
		bp:      bp,
		size:    surface.Size(),
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.mu.Lock()
	err := a.pass("attach")
	a.mu.Unlock()
	if err != nil {
		return nil, err
	}

	release := src.Observe(a.resize)
	a.mu.Lock()
	a.release = release
	a.mu.Unlock()
	return a, nil
}

// SetBlueprint swaps the blueprint and re-renders if it is a different
// value than the current one. It is a no-op after Detach.
func (a *Adapter) SetBlueprint(bp *blueprint.Blueprint) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.detached || bp == a.bp {
		return nil
	}
	a.bp = bp
	return a.pass("blueprint")
}

// Refresh forces a pass with the current inputs.
func (a *Adapter) Refresh() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.detached {
		return nil
	}
	return a.pass("refresh")
}

// Detach stops observing size changes. Later calls are no-ops and no pass
// runs after Detach returns.
func (a *Adapter) Detach() {
	a.mu.Lock()
	release := a.release
	a.release = nil
	a.detached = true
	a.mu.Unlock()

	if release != nil {
		release()
	}
}

// Passes returns how many passes have been drawn.
func (a *Adapter) Passes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.passes
}

// Size returns the size used by the most recent pass.
func (a *Adapter) Size() Size {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.size
}

func (a *Adapter) resize(s Size) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.detached {
		return
	}
	a.size = s
	if err := a.pass("resize"); err != nil && a.onError != nil {
		a.onError(err)
	}
}

// pass must be called with mu held.
func (a *Adapter) pass(trigger string) error {
	start := time.Now()
	cmds := preview.Render(a.bp, a.size, a.renderOpts...)
	err := a.surface.Draw(cmds)
	observability.Viewport().OnPass(trigger, len(cmds), time.Since(start), err)
	if err != nil {
		a.logger.Warn("draw failed", "trigger", trigger, "error", err)
		return err
	}
	a.passes++
	a.logger.Debug("preview pass",
		"trigger", trigger,
		"width", a.size.Width,
		"height", a.size.Height,
		"density", a.size.Density,
		"commands", len(cmds))
	return nil
}
