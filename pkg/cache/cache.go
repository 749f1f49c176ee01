// Package cache provides the caching layer for computed stair plans.
//
// Computing a plan is cheap for a single request but the HTTP API and the
// interactive configurator evaluate the same settings over and over, and the
// dependency graph SVG goes through Graphviz. Results are cached as opaque
// byte slices keyed by a hash of their inputs.
//
// # Backends
//
//   - [FileCache]: JSON envelopes on disk, for the CLI
//   - [RedisCache]: shared cache for the API server
//   - [NullCache]: caching disabled
//
// # Keys
//
// Keys are produced by a [Keyer] so that the key format lives in one place.
// [ScopedKeyer] prefixes every key, which keeps catalogs or tenants apart when
// they share one Redis instance.
package cache

import (
	"context"
	"time"
)

// TTLs for cached artifacts.
const (
	TTLPlan  = 24 * time.Hour
	TTLQuote = time.Hour
	TTLGraph = 7 * 24 * time.Hour
)

// Cache stores opaque values by key.
//
// Get reports a miss as (nil, false, nil). A zero ttl means the entry never
// expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry.
type Clearer interface {
	Clear(ctx context.Context) error
}
