package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stairbuilder/pkg/cache"
	"github.com/matzehuels/stairbuilder/pkg/catalog"
	"github.com/matzehuels/stairbuilder/pkg/errors"
	"github.com/matzehuels/stairbuilder/pkg/layout"
	"github.com/matzehuels/stairbuilder/pkg/observability"
	"github.com/matzehuels/stairbuilder/pkg/pricing"
)

// Runner encapsulates plan execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// PlanTTL overrides cache.TTLPlan when positive.
	PlanTTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// settingsHash identifies a model definition together with the settings it
// runs on; custom models can change under the same id.
func settingsHash(m catalog.Model, settings layout.Settings) (string, error) {
	return cache.HashJSON(struct {
		Model    catalog.Model   `json:"model"`
		Settings layout.Settings `json:"settings"`
	}{m, settings})
}

// Key types reported to the cache hooks.
const (
	keyTypePlan  = "plan"
	keyTypeQuote = "quote"
	keyTypeGraph = "graph"
)

// cacheGet wraps Cache.Get with hooks. Cache errors count as misses.
func (r *Runner) cacheGet(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "key", key, "err", err)
		hit = false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	return nil, false
}

func (r *Runner) cacheSet(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// PlanWithCacheInfo computes a plan with caching. Result.CacheHit reports
// whether it came from cache.
func (r *Runner) PlanWithCacheInfo(ctx context.Context, req Request) (*Result, error) {
	if err := req.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	settings := req.EffectiveSettings()
	hash, err := settingsHash(req.Model, settings)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash settings")
	}
	cacheKey := r.Keyer.PlanKey(req.Model.ID, cache.PlanKeyOpts{
		SettingsHash: hash,
		Multiplier:   req.Multiplier,
		Fit:          req.Fit,
		BottomAngle:  string(req.BottomAngle),
		TopAngle:     string(req.TopAngle),
	})

	// Try cache first (unless refresh requested)
	if !req.Refresh {
		if data, hit := r.cacheGet(ctx, keyTypePlan, cacheKey); hit {
			var cached Result
			if err := json.Unmarshal(data, &cached); err == nil {
				cached.CacheHit = true
				return &cached, nil
			}
			// If deserialization fails, fall through to recompute
		}
	}

	hooks := observability.Layout()
	hooks.OnPlanStart(ctx, req.Model.ID, len(settings))

	rep := layout.Tee(
		layout.LogReporter{Logger: r.Logger},
		layout.ReporterFunc(func(d layout.Diagnostic) {
			hooks.OnDiagnostic(ctx, req.Model.ID, string(d.Kind), d.Component)
		}),
	)
	res := ComputePlan(req, rep)
	hooks.OnPlanComplete(ctx, req.Model.ID, len(res.Placements), res.Stats.Duration, nil)

	r.Logger.Debug("computed plan",
		"model", req.Model.ID,
		"placements", len(res.Placements),
		"diagnostics", len(res.Diagnostics),
		"duration", res.Stats.Duration)

	if data, err := json.Marshal(res); err == nil {
		r.cacheSet(ctx, keyTypePlan, cacheKey, data, r.planTTL())
	}
	return res, nil
}

func (r *Runner) planTTL() time.Duration {
	if r.PlanTTL > 0 {
		return r.PlanTTL
	}
	return cache.TTLPlan
}

// Plan is a convenience wrapper around PlanWithCacheInfo.
func (r *Runner) Plan(ctx context.Context, req Request) (*Result, error) {
	return r.PlanWithCacheInfo(ctx, req)
}

// QuoteWithCacheInfo prices a model under settings with caching and returns
// cache hit info. Empty settings use the model defaults.
func (r *Runner) QuoteWithCacheInfo(ctx context.Context, m catalog.Model, settings layout.Settings, multiplier float64) (pricing.Quote, bool, error) {
	req := Request{Model: m, Settings: settings, Multiplier: multiplier}
	if err := req.ValidateAndSetDefaults(); err != nil {
		return pricing.Quote{}, false, err
	}
	if err := m.Pricing.Validate(); err != nil {
		return pricing.Quote{}, false, err
	}

	eff := req.EffectiveSettings()
	hash, err := settingsHash(m, eff)
	if err != nil {
		return pricing.Quote{}, false, errors.Wrap(errors.ErrCodeInternal, err, "hash settings")
	}
	cacheKey := r.Keyer.QuoteKey(m.ID, cache.QuoteKeyOpts{SettingsHash: hash, Multiplier: req.Multiplier})

	if data, hit := r.cacheGet(ctx, keyTypeQuote, cacheKey); hit {
		var q pricing.Quote
		if err := json.Unmarshal(data, &q); err == nil {
			return q, true, nil
		}
	}

	q := quote(m, layout.Engine{Settings: eff, Multiplier: req.Multiplier, Reporter: layout.LogReporter{Logger: r.Logger}})
	if data, err := json.Marshal(q); err == nil {
		r.cacheSet(ctx, keyTypeQuote, cacheKey, data, cache.TTLQuote)
	}
	return q, false, nil
}

// Quote is a convenience wrapper that discards the cache hit info.
func (r *Runner) Quote(ctx context.Context, m catalog.Model, settings layout.Settings, multiplier float64) (pricing.Quote, error) {
	q, _, err := r.QuoteWithCacheInfo(ctx, m, settings, multiplier)
	return q, err
}

// GraphWithCacheInfo renders the component graph with caching and returns
// cache hit info.
func (r *Runner) GraphWithCacheInfo(ctx context.Context, settings layout.Settings, multiplier float64, format string) ([]byte, bool, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, false, err
	}
	if multiplier == 0 {
		multiplier = DefaultMultiplier
	}
	if err := errors.ValidateMultiplier(multiplier); err != nil {
		return nil, false, err
	}

	settings = settings.Normalize()
	hash, err := cache.HashJSON(settings)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash settings")
	}
	cacheKey := r.Keyer.GraphKey(hash, cache.GraphKeyOpts{Multiplier: multiplier, Format: format})

	if data, hit := r.cacheGet(ctx, keyTypeGraph, cacheKey); hit {
		return data, true, nil
	}

	data, err := RenderGraph(ctx, settings, multiplier, format)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "render %s graph", format)
	}
	r.cacheSet(ctx, keyTypeGraph, cacheKey, data, cache.TTLGraph)
	return data, false, nil
}

// Graph is a convenience wrapper that discards the cache hit info.
func (r *Runner) Graph(ctx context.Context, settings layout.Settings, multiplier float64, format string) ([]byte, error) {
	data, _, err := r.GraphWithCacheInfo(ctx, settings, multiplier, format)
	return data, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
