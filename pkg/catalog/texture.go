package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/matzehuels/stairbuilder/pkg/errors"
)

// TextureCategory is the material family of a texture.
type TextureCategory string

const (
	TextureWood  TextureCategory = "wood"
	TextureMetal TextureCategory = "metal"
)

// TextureFiles are the image maps of a texture. Custom textures may carry
// data: URLs instead of paths.
type TextureFiles struct {
	Diffuse    string `json:"diffuse,omitempty" toml:"diffuse,omitempty" yaml:"diffuse,omitempty"`
	Normal     string `json:"normal,omitempty" toml:"normal,omitempty" yaml:"normal,omitempty"`
	Roughness  string `json:"roughness,omitempty" toml:"roughness,omitempty" yaml:"roughness,omitempty"`
	Metalness  string `json:"metalness,omitempty" toml:"metalness,omitempty" yaml:"metalness,omitempty"`
	AO         string `json:"ao,omitempty" toml:"ao,omitempty" yaml:"ao,omitempty"`
	Specular   string `json:"specular,omitempty" toml:"specular,omitempty" yaml:"specular,omitempty"`
	Glossiness string `json:"glossiness,omitempty" toml:"glossiness,omitempty" yaml:"glossiness,omitempty"`
}

func (f TextureFiles) all() []string {
	return []string{f.Diffuse, f.Normal, f.Roughness, f.Metalness, f.AO, f.Specular, f.Glossiness}
}

// MaterialProps are the scalar material parameters.
type MaterialProps struct {
	Metalness float64 `json:"metalness" toml:"metalness" yaml:"metalness"`
	Roughness float64 `json:"roughness" toml:"roughness" yaml:"roughness"`
	Color     uint32  `json:"color" toml:"color" yaml:"color"`
}

// Texture is a named material.
type Texture struct {
	ID       string          `json:"id" toml:"id" yaml:"id"`
	Name     string          `json:"name" toml:"name" yaml:"name"`
	Category TextureCategory `json:"category" toml:"category" yaml:"category"`
	Maps     TextureFiles    `json:"maps" toml:"maps" yaml:"maps"`
	Material MaterialProps   `json:"materialProps" toml:"material_props" yaml:"materialProps"`
	IsCustom bool            `json:"isCustom,omitempty" toml:"is_custom,omitempty" yaml:"isCustom,omitempty"`
}

// Validate checks a custom texture before it is stored.
func (t Texture) Validate() error {
	if err := errors.ValidateTextureID(t.ID); err != nil {
		return err
	}
	if strings.TrimSpace(t.Name) == "" {
		return errors.New(errors.ErrCodeInvalidTexture, "texture name is required")
	}
	if t.Category != TextureWood && t.Category != TextureMetal {
		return errors.New(errors.ErrCodeInvalidTexture, "texture category must be wood or metal, got %q", t.Category)
	}
	if t.Maps.Diffuse == "" {
		return errors.New(errors.ErrCodeInvalidTexture, "texture %s needs a diffuse map", t.ID)
	}
	return nil
}

// TextureMaps maps the files of t onto renderer material slots: diffuse →
// map, normal → normalMap, ao → aoMap, roughness → roughnessMap, metalness →
// metalnessMap. Specular and glossiness fill metalnessMap and roughnessMap
// only when those are otherwise empty.
func TextureMaps(t *Texture) map[string]string {
	out := map[string]string{}
	if t == nil {
		return out
	}
	set := func(slot, path string) {
		if path != "" {
			out[slot] = path
		}
	}
	set("map", t.Maps.Diffuse)
	set("normalMap", t.Maps.Normal)
	set("aoMap", t.Maps.AO)
	set("roughnessMap", t.Maps.Roughness)
	set("metalnessMap", t.Maps.Metalness)
	if _, ok := out["metalnessMap"]; !ok {
		set("metalnessMap", t.Maps.Specular)
	}
	if _, ok := out["roughnessMap"]; !ok {
		set("roughnessMap", t.Maps.Glossiness)
	}
	return out
}

// TextureLoader returns every texture the index should serve.
type TextureLoader func(ctx context.Context) ([]Texture, error)

// TextureIndex is a read-through cache of textures by id and category. The
// lookups are built on first use and rebuilt after Invalidate.
type TextureIndex struct {
	load TextureLoader

	mu         sync.RWMutex
	dirty      bool
	all        []Texture
	byID       map[string]Texture
	byCategory map[TextureCategory][]Texture
}

// NewTextureIndex returns an index over load.
func NewTextureIndex(load TextureLoader) *TextureIndex {
	return &TextureIndex{load: load, dirty: true}
}

// Invalidate marks the index stale; the next lookup reloads it.
func (x *TextureIndex) Invalidate() {
	x.mu.Lock()
	x.dirty = true
	x.mu.Unlock()
}

func (x *TextureIndex) ensure(ctx context.Context) error {
	x.mu.RLock()
	dirty := x.dirty
	x.mu.RUnlock()
	if !dirty {
		return nil
	}

	textures, err := x.load(ctx)
	if err != nil {
		return err
	}

	byID := make(map[string]Texture, len(textures))
	byCategory := make(map[TextureCategory][]Texture)
	for _, t := range textures {
		byID[t.ID] = t
		byCategory[t.Category] = append(byCategory[t.Category], t)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.all = textures
	x.byID = byID
	x.byCategory = byCategory
	x.dirty = false
	return nil
}

// All returns every texture, built-ins first.
func (x *TextureIndex) All(ctx context.Context) ([]Texture, error) {
	if err := x.ensure(ctx); err != nil {
		return nil, err
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]Texture(nil), x.all...), nil
}

// ByID returns the texture or a TEXTURE_NOT_FOUND error.
func (x *TextureIndex) ByID(ctx context.Context, id string) (Texture, error) {
	if err := x.ensure(ctx); err != nil {
		return Texture{}, err
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	t, ok := x.byID[id]
	if !ok {
		return Texture{}, errors.New(errors.ErrCodeTextureNotFound, "texture not found: %s", id)
	}
	return t, nil
}

// ByCategory returns the textures of one family.
func (x *TextureIndex) ByCategory(ctx context.Context, c TextureCategory) ([]Texture, error) {
	if err := x.ensure(ctx); err != nil {
		return nil, err
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]Texture(nil), x.byCategory[c]...), nil
}

// Validate reports whether id names a known texture.
func (x *TextureIndex) Validate(ctx context.Context, id string) error {
	_, err := x.ByID(ctx, id)
	return err
}

// Paths returns every map path that can be fetched from the asset server;
// inline data: URLs are skipped.
func (x *TextureIndex) Paths(ctx context.Context) ([]string, error) {
	all, err := x.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, t := range all {
		for _, p := range t.Maps.all() {
			if p != "" && !strings.HasPrefix(p, "data:") {
				out = append(out, p)
			}
		}
	}
	return out, nil
}
