package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by logging at debug level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that write to logger under the "obs" prefix.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger.WithPrefix("obs")}
}

// UseLogger registers a LogHooks for every hook kind.
func UseLogger(logger *log.Logger) {
	h := NewLogHooks(logger)
	SetRenderHooks(h)
	SetViewportHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
	SetBuildHooks(h)
}

func (h *LogHooks) OnRenderStart(_ context.Context, vizType string, formats []string) {
	h.logger.Debug("render start", "type", vizType, "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, vizType string, formats []string, d time.Duration, err error) {
	h.logger.Debug("render done", "type", vizType, "formats", formats, "duration", d, "err", err)
}

func (h *LogHooks) OnPass(trigger string, commands int, d time.Duration, err error) {
	h.logger.Debug("viewport pass", "trigger", trigger, "commands", commands, "duration", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "key", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "key", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "key", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

func (h *LogHooks) OnBuildEvent(_ context.Context, status string, progress int) {
	h.logger.Debug("build event", "status", status, "progress", progress)
}

func (h *LogHooks) OnBuildComplete(_ context.Context, status string, d time.Duration, err error) {
	h.logger.Debug("build done", "status", status, "duration", d, "err", err)
}
