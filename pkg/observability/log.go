package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every hook event to a logger at debug level.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log through l.
func NewLogHooks(l *log.Logger) *LogHooks { return &LogHooks{Logger: l} }

func (h *LogHooks) OnNavigate(from, to string, depth int) {
	h.Logger.Debug("navigate", "from", from, "to", to, "depth", depth)
}

func (h *LogHooks) OnMutation(op, nodeID string, err error) {
	if err != nil {
		h.Logger.Debug("edit failed", "op", op, "node", nodeID, "err", err)
		return
	}
	h.Logger.Debug("edit", "op", op, "node", nodeID)
}

func (h *LogHooks) OnLoad(_ context.Context, backend, name string, d time.Duration, err error) {
	h.Logger.Debug("store load", "backend", backend, "name", name, "took", d.Round(time.Millisecond), "err", err)
}

func (h *LogHooks) OnSave(_ context.Context, backend, name string, size int, d time.Duration, err error) {
	h.Logger.Debug("store save", "backend", backend, "name", name, "bytes", size, "took", d.Round(time.Millisecond), "err", err)
}

func (h *LogHooks) OnRenderStart(_ context.Context, format string, nodeCount int) {
	h.Logger.Debug("render start", "format", format, "nodes", nodeCount)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	h.Logger.Debug("render done", "format", format, "took", d.Round(time.Millisecond), "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

var (
	_ SessionHooks = (*LogHooks)(nil)
	_ StoreHooks   = (*LogHooks)(nil)
	_ RenderHooks  = (*LogHooks)(nil)
	_ CacheHooks   = (*LogHooks)(nil)
	_ HTTPHooks    = (*LogHooks)(nil)
)
