// Package pkg provides the core libraries for Stairbuilder, a stair
// configurator backend.
//
// # Overview
//
// A stair model is a handful of 3D assets (base, support step, tread, top)
// that are repeated along straight arrays. Stairbuilder computes where every
// instance goes, what the stair costs, and keeps the catalog of models,
// categories, and textures the configurator offers. The pkg directory is
// organized into three areas:
//
//  1. Domain logic: [layout], [geom], [pricing]
//  2. Catalog and state: [catalog], [session], [store]
//  3. Orchestration: [pipeline], [cache], [observability], [errors]
//
// # Architecture
//
// The typical data flow of a plan request:
//
//	Model (catalog) + component settings
//	         ↓
//	    [layout] Fit (optional: centre the run, derive spacing)
//	         ↓
//	    [layout] Engine (effective counts, positions, end pieces)
//	         ↓
//	    [pricing] Compute (base price + price per drawn step)
//	         ↓
//	    JSON plan, price table, or DOT/SVG follow graph
//
// # Quick Start
//
// Plan the built-in model with a longer run:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/stairbuilder/pkg/cache"
//	    "github.com/matzehuels/stairbuilder/pkg/catalog"
//	    "github.com/matzehuels/stairbuilder/pkg/pipeline"
//	)
//
//	req := pipeline.Request{
//	    Model:      catalog.BuiltInModels()[0],
//	    Multiplier: 1.5,
//	}
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	res, _ := runner.Plan(context.Background(), req)
//	fmt.Println(res) // limon-central-droit-droit: 26 placements, 4300 EUR
//
// # Main Packages
//
// [layout] - The array layout engine. Effective counts under the global
// multiplier, per-instance positions, follow relationships between arrays,
// data-only positioning strategies, end pieces, and auto-fit.
//
// [catalog] - Built-in and custom models, categories, and textures over a
// document [store]. Models import and export as JSON, TOML, or YAML.
//
// [session] - Saved configurator state with file, memory, and Redis backends.
//
// [pipeline] - Plan, quote, and graph operations with caching, shared by the
// CLI and the HTTP server.
//
// [store] - Document storage: memory, JSON files, SQLite, and MongoDB.
//
// [cache] - Result caching with file, Redis, and null backends.
//
// # Testing
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/layout/...     # Specific package
//	go test -run Example ./pkg/...
//
// [layout]: https://pkg.go.dev/github.com/matzehuels/stairbuilder/pkg/layout
// [geom]: https://pkg.go.dev/github.com/matzehuels/stairbuilder/pkg/geom
// [pricing]: https://pkg.go.dev/github.com/matzehuels/stairbuilder/pkg/pricing
// [catalog]: https://pkg.go.dev/github.com/matzehuels/stairbuilder/pkg/catalog
// [session]: https://pkg.go.dev/github.com/matzehuels/stairbuilder/pkg/session
// [store]: https://pkg.go.dev/github.com/matzehuels/stairbuilder/pkg/store
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stairbuilder/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/stairbuilder/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/stairbuilder/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/stairbuilder/pkg/errors
package pkg
