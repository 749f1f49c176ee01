package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug-level log lines.
// The CLI registers it with --verbose.
type LogHooks struct {
	Logger *log.Logger
}

func (h LogHooks) logger() *log.Logger {
	if h.Logger == nil {
		return log.Default()
	}
	return h.Logger
}

func (h LogHooks) OnPlanStart(_ context.Context, modelID string, components int) {
	h.logger().Debug("plan start", "model", modelID, "components", components)
}

func (h LogHooks) OnPlanComplete(_ context.Context, modelID string, placements int, d time.Duration, err error) {
	if err != nil {
		h.logger().Debug("plan failed", "model", modelID, "duration", d, "err", err)
		return
	}
	h.logger().Debug("plan complete", "model", modelID, "placements", placements, "duration", d)
}

func (h LogHooks) OnDiagnostic(_ context.Context, modelID, kind, component string) {
	h.logger().Debug("plan diagnostic", "model", modelID, "kind", kind, "component", component)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger().Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger().Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger().Debug("cache set", "type", keyType, "bytes", size)
}

func (h LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger().Debug("request", "method", method, "route", route)
}

func (h LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger().Debug("response", "method", method, "route", route, "status", status, "duration", d)
}

func (h LogHooks) OnError(_ context.Context, method, route string, err error) {
	h.logger().Error("request failed", "method", method, "route", route, "err", err)
}

var (
	_ LayoutHooks = LogHooks{}
	_ CacheHooks  = LogHooks{}
	_ HTTPHooks   = LogHooks{}
)
