package viewport

import (
	"sync"

	"github.com/blockprint/blockprint/pkg/render/draw"
)

// ManualSource is a ResizeSource driven by explicit Resize calls.
// The zero value is ready to use.
type ManualSource struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Size)
}

// Observe implements ResizeSource.
func (m *ManualSource) Observe(fn func(Size)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subs == nil {
		m.subs = make(map[int]func(Size))
	}
	id := m.next
	m.next++
	m.subs[id] = fn
	return sync.OnceFunc(func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	})
}

// Resize notifies every current observer. Observers run on the calling
// goroutine, outside the source's lock.
func (m *ManualSource) Resize(s Size) {
	m.mu.Lock()
	fns := make([]func(Size), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Observers returns the number of registered observers.
func (m *ManualSource) Observers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// Frame is an in-memory surface that is also its own resize source.
// It keeps the last pass and forwards every pass to an optional callback.
type Frame struct {
	src ManualSource

	mu     sync.Mutex
	size   Size
	last   []draw.Command
	onDraw func(Size, []draw.Command) error
}

// NewFrame returns a Frame of the given size. onDraw may be nil.
func NewFrame(size Size, onDraw func(Size, []draw.Command) error) *Frame {
	return &Frame{size: size, onDraw: onDraw}
}

// Size implements Surface.
func (f *Frame) Size() Size {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.size
}

// Draw implements Surface.
func (f *Frame) Draw(cmds []draw.Command) error {
	f.mu.Lock()
	f.last = cmds
	size, onDraw := f.size, f.onDraw
	f.mu.Unlock()

	if onDraw != nil {
		return onDraw(size, cmds)
	}
	return nil
}

// Observe implements ResizeSource.
func (f *Frame) Observe(fn func(Size)) func() {
	return f.src.Observe(fn)
}

// Resize records the new size and notifies observers.
func (f *Frame) Resize(s Size) {
	f.mu.Lock()
	f.size = s
	f.mu.Unlock()
	f.src.Resize(s)
}

// Last returns the most recent pass.
func (f *Frame) Last() []draw.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// Observers returns the number of adapters observing this frame.
func (f *Frame) Observers() int { return f.src.Observers() }
