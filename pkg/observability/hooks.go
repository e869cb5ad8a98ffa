// Package observability provides hooks for metrics, tracing, and logging.
//
// Consumers register hooks at startup to receive events about render passes,
// viewport passes, blueprint store operations, backend HTTP calls and build
// streams. The defaults are no-ops, so libraries emit events
// unconditionally:
//
//	observability.Render().OnRenderStart(ctx, "preview", formats)
//	// ... render ...
//	observability.Render().OnRenderComplete(ctx, "preview", formats, duration, err)
//
// [UseLogger] routes every event to a charmbracelet logger at debug level,
// which is what "blockprint --verbose" does.
package observability

import (
	"context"
	"sync"
	"time"
)

// RenderHooks receives events from the render pipeline.
type RenderHooks interface {
	OnRenderStart(ctx context.Context, vizType string, formats []string)
	OnRenderComplete(ctx context.Context, vizType string, formats []string, duration time.Duration, err error)
}

// ViewportHooks receives one event per preview pass drawn by a viewport
// adapter. trigger is what caused the pass: attach, resize, blueprint or
// refresh.
type ViewportHooks interface {
	OnPass(trigger string, commands int, duration time.Duration, err error)
}

// CacheHooks receives events from blueprint store backends.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from outgoing backend requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a transport failure; HTTP error statuses arrive
	// through OnResponse.
	OnError(ctx context.Context, method, host, path string, err error)
}

// BuildHooks receives events from build progress streams.
type BuildHooks interface {
	OnBuildEvent(ctx context.Context, status string, progress int)
	OnBuildComplete(ctx context.Context, status string, duration time.Duration, err error)
}

// NoopRenderHooks ignores render events.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, string, []string)                         {}
func (NoopRenderHooks) OnRenderComplete(context.Context, string, []string, time.Duration, error) {}

// NoopViewportHooks ignores viewport passes.
type NoopViewportHooks struct{}

func (NoopViewportHooks) OnPass(string, int, time.Duration, error) {}

// NoopCacheHooks ignores cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores HTTP events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// NoopBuildHooks ignores build events.
type NoopBuildHooks struct{}

func (NoopBuildHooks) OnBuildEvent(context.Context, string, int)                     {}
func (NoopBuildHooks) OnBuildComplete(context.Context, string, time.Duration, error) {}

// slot holds one registered hook implementation.
type slot[T any] struct {
	mu  sync.RWMutex
	cur T
	def T
}

func newSlot[T any](def T) *slot[T] { return &slot[T]{cur: def, def: def} }

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// set ignores a nil h.
func (s *slot[T]) set(h T) {
	if any(h) == nil {
		return
	}
	s.mu.Lock()
	s.cur = h
	s.mu.Unlock()
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	s.cur = s.def
	s.mu.Unlock()
}

var (
	renderSlot   = newSlot[RenderHooks](NoopRenderHooks{})
	viewportSlot = newSlot[ViewportHooks](NoopViewportHooks{})
	cacheSlot    = newSlot[CacheHooks](NoopCacheHooks{})
	httpSlot     = newSlot[HTTPHooks](NoopHTTPHooks{})
	buildSlot    = newSlot[BuildHooks](NoopBuildHooks{})
)

// SetRenderHooks registers render hooks. A nil h is ignored.
func SetRenderHooks(h RenderHooks) { renderSlot.set(h) }

// SetViewportHooks registers viewport hooks. A nil h is ignored.
func SetViewportHooks(h ViewportHooks) { viewportSlot.set(h) }

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) { cacheSlot.set(h) }

// SetHTTPHooks registers HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) { httpSlot.set(h) }

// SetBuildHooks registers build hooks. A nil h is ignored.
func SetBuildHooks(h BuildHooks) { buildSlot.set(h) }

// Render returns the registered render hooks.
func Render() RenderHooks { return renderSlot.get() }

// Viewport returns the registered viewport hooks.
func Viewport() ViewportHooks { return viewportSlot.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheSlot.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.get() }

// Build returns the registered build hooks.
func Build() BuildHooks { return buildSlot.get() }

// Reset restores every hook to its no-op default.
func Reset() {
	renderSlot.reset()
	viewportSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
	buildSlot.reset()
}
