package layout

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// DiagnosticKind classifies a condition the engine recovered from.
type DiagnosticKind string

const (
	// DiagnosticMissingSettings: no record exists for the requested component.
	DiagnosticMissingSettings DiagnosticKind = "missing_settings"

	// DiagnosticMissingFollowTarget: a follower names a component that does
	// not exist.
	DiagnosticMissingFollowTarget DiagnosticKind = "missing_follow_target"

	// DiagnosticStrategyFallback: a positioning strategy was absent or invalid
	// and the model default position was used.
	DiagnosticStrategyFallback DiagnosticKind = "strategy_fallback"
)

// Diagnostic describes a degraded result. It never accompanies an error: the
// returned value is always usable.
type Diagnostic struct {
	Kind      DiagnosticKind `json:"kind"`
	Component string         `json:"component"`
	Target    string         `json:"target,omitempty"`
	Message   string         `json:"message"`
}

func (d Diagnostic) String() string {
	return d.Message
}

func missingSettings(id string) Diagnostic {
	return Diagnostic{
		Kind:      DiagnosticMissingSettings,
		Component: id,
		Message:   fmt.Sprintf("No settings found for component: %s", id),
	}
}

func missingFollowTarget(id, target string) Diagnostic {
	return Diagnostic{
		Kind:      DiagnosticMissingFollowTarget,
		Component: id,
		Target:    target,
		Message:   fmt.Sprintf("Component %q is set to follow %q, but it doesn't exist", id, target),
	}
}

// Reporter receives diagnostics. Implementations must be safe to call from
// the render loop at high frequency.
type Reporter interface {
	Report(Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Diagnostic)

// Report calls f(d).
func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Discard drops every diagnostic.
var Discard Reporter = ReporterFunc(func(Diagnostic) {})

// LogReporter writes diagnostics as warnings.
type LogReporter struct {
	Logger *log.Logger
}

// Report logs d at warn level.
func (r LogReporter) Report(d Diagnostic) {
	l := r.Logger
	if l == nil {
		l = log.Default()
	}
	kv := []any{"kind", d.Kind, "component", d.Component}
	if d.Target != "" {
		kv = append(kv, "target", d.Target)
	}
	l.Warn(d.Message, kv...)
}

// Collector accumulates diagnostics, dropping exact duplicates so a render
// pass that probes the same missing record many times reports it once.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
	seen  map[Diagnostic]struct{}
}

// Report records d.
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen == nil {
		c.seen = make(map[Diagnostic]struct{})
	}
	if _, ok := c.seen[d]; ok {
		return
	}
	c.seen[d] = struct{}{}
	c.items = append(c.items, d)
}

// Diagnostics returns the recorded diagnostics in report order.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Tee forwards each diagnostic to every non-nil reporter.
func Tee(reporters ...Reporter) Reporter {
	return ReporterFunc(func(d Diagnostic) {
		for _, r := range reporters {
			if r != nil {
				r.Report(d)
			}
		}
	})
}

var (
	defaultReporter Reporter = LogReporter{}
	reporterMu      sync.RWMutex
)

// SetDefaultReporter replaces the reporter used by the package-level
// functions. Passing nil restores the logging reporter.
func SetDefaultReporter(r Reporter) {
	reporterMu.Lock()
	defer reporterMu.Unlock()
	if r == nil {
		r = LogReporter{}
	}
	defaultReporter = r
}

// DefaultReporter returns the reporter used by the package-level functions.
func DefaultReporter() Reporter {
	reporterMu.RLock()
	defer reporterMu.RUnlock()
	return defaultReporter
}
