package build

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/blockprint/blockprint/pkg/observability"
)

// Log lines the tracker adds on its own.
const (
	startAction    = "Initializing build..."
	startLog       = "Connecting to Minecraft server..."
	cancellingLog  = "Cancelling..."
	cancelledLog   = "Build cancelled."
	defaultFailure = "Build failed"
)

// Option configures a Tracker.
type Option func(*Tracker)

// WithOnComplete registers a callback for the completed state.
func WithOnComplete(fn func()) Option {
	return func(t *Tracker) { t.onComplete = fn }
}

// WithOnError registers a callback receiving the error message.
func WithOnError(fn func(msg string)) Option {
	return func(t *Tracker) { t.onError = fn }
}

// WithOnChange registers a callback receiving every new snapshot.
func WithOnChange(fn func(Status)) Option {
	return func(t *Tracker) { t.onChange = fn }
}

// WithLogger sets the logger for state transitions.
func WithLogger(l *log.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// Tracker folds progress events into the current build state. It is safe
// for concurrent use; callbacks run without the lock held.
type Tracker struct {
	mu      sync.Mutex
	status  Status
	cancel  context.CancelFunc
	started time.Time

	onComplete func()
	onError    func(string)
	onChange   func(Status)
	logger     *log.Logger
}

// NewTracker returns an idle tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		status: idle(),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func idle() Status {
	return Status{Status: StateIdle, Logs: []string{}}
}

// Start resets the state to building and returns a context that Cancel
// and Reset cancel. Any build already in flight is cancelled.
func (t *Tracker) Start(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.cancel = cancel
	t.started = time.Now()
	t.status = Status{
		Status:        StateBuilding,
		CurrentAction: startAction,
		Logs:          []string{startLog},
	}
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.logger.Info("build started")
	t.changed(snap)
	return ctx
}

// Apply folds one event into the state. Missing numbers reset to zero and
// logs are appended, keeping the last MaxLogs lines.
func (t *Tracker) Apply(ctx context.Context, ev Status) {
	t.mu.Lock()
	if ev.Status != "" {
		t.status.Status = ev.Status
	}
	t.status.Progress = ev.Progress
	t.status.BlocksPlaced = ev.BlocksPlaced
	t.status.TotalBlocks = ev.TotalBlocks
	t.status.CurrentAction = ev.CurrentAction
	t.status.Logs = appendLogs(t.status.Logs, ev.Logs...)
	if ev.Status == StateError {
		t.status.Error = ev.Error
		if t.status.Error == "" {
			t.status.Error = defaultFailure
		}
	}
	snap := t.snapshotLocked()
	elapsed := time.Since(t.started)
	t.mu.Unlock()

	observability.Build().OnBuildEvent(ctx, string(snap.Status), snap.Progress)
	t.logger.Debug("build progress",
		"status", snap.Status,
		"progress", snap.Progress,
		"blocks", snap.BlocksPlaced,
		"action", snap.CurrentAction)
	t.changed(snap)

	switch ev.Status {
	case StateCompleted:
		t.logger.Info("build completed", "blocks", snap.BlocksPlaced, "duration", elapsed)
		observability.Build().OnBuildComplete(ctx, string(StateCompleted), elapsed, nil)
		if t.onComplete != nil {
			t.onComplete()
		}
	case StateError:
		t.logger.Error("build failed", "err", snap.Error)
		observability.Build().OnBuildComplete(ctx, string(StateError), elapsed, errors.New(snap.Error))
		if t.onError != nil {
			t.onError(snap.Error)
		}
	}
}

// Fail records a transport failure. A cancelled context returns the
// tracker to idle; anything else moves it to the error state.
func (t *Tracker) Fail(ctx context.Context, err error) {
	if err == nil {
		return
	}
	t.mu.Lock()
	if errors.Is(err, context.Canceled) {
		t.status.Status = StateIdle
		t.status.Logs = appendLogs(t.status.Logs, cancelledLog)
		snap := t.snapshotLocked()
		t.mu.Unlock()
		t.logger.Info("build cancelled")
		t.changed(snap)
		return
	}
	msg := err.Error()
	t.status.Status = StateError
	t.status.Error = msg
	t.status.Logs = appendLogs(t.status.Logs, "Error: "+msg)
	snap := t.snapshotLocked()
	elapsed := time.Since(t.started)
	t.mu.Unlock()

	t.logger.Error("build failed", "err", err)
	observability.Build().OnBuildComplete(ctx, string(StateError), elapsed, err)
	t.changed(snap)
	if t.onError != nil {
		t.onError(msg)
	}
}

// Consume applies every event from an NDJSON stream until it ends. A read
// error is recorded with Fail and returned.
func (t *Tracker) Consume(ctx context.Context, r io.Reader) error {
	dec := NewDecoder(r, t.logger)
	for {
		ev, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			t.Fail(ctx, err)
			return err
		}
		t.Apply(ctx, ev)
	}
}

// Cancel aborts the build in flight and returns to idle.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.status.Status = StateIdle
	t.status.Logs = appendLogs(t.status.Logs, cancellingLog)
	snap := t.snapshotLocked()
	t.mu.Unlock()
	t.changed(snap)
}

// Reset aborts any build in flight and clears the state.
func (t *Tracker) Reset() {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.status = idle()
	snap := t.snapshotLocked()
	t.mu.Unlock()
	t.changed(snap)
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// IsBuilding reports whether a build is in flight.
func (t *Tracker) IsBuilding() bool { return t.Snapshot().Status == StateBuilding }

func (t *Tracker) snapshotLocked() Status {
	s := t.status
	s.Logs = slices.Clone(t.status.Logs)
	if s.Logs == nil {
		s.Logs = []string{}
	}
	return s
}

func (t *Tracker) changed(s Status) {
	if t.onChange != nil {
		t.onChange(s)
	}
}

func appendLogs(logs []string, lines ...string) []string {
	logs = append(logs, lines...)
	if n := len(logs); n > MaxLogs {
		logs = slices.Clone(logs[n-MaxLogs:])
	}
	return logs
}
