// Package catalog manages the stair models, categories, and textures a
// configurator can offer.
//
// Built-in entries are compiled in and read-only; custom entries live in a
// [store.Store] and can be added, updated, and deleted. A [Repository] merges
// both views so callers never need to know where an entry came from.
//
// # Models
//
// A [Model] names its component assets, the texture applied to each
// component, a positioning [layout.Strategy] per component, the defaults that
// seed [layout.DefaultSettings], and a price table. Built-in models cannot be
// edited directly: saving a configuration for one stores a test
// configuration that [Repository.LoadModel] overlays on every load.
//
// # Textures
//
// Texture lookups go through a [TextureIndex], a read-through cache over the
// built-in and custom textures that is rebuilt lazily after [TextureIndex.Invalidate].
//
// # Import and export
//
// Model definitions can be exchanged as JSON, TOML, or YAML documents; see
// [DecodeModels] and [EncodeModels].
package catalog
