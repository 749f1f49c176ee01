package catalog

import (
	"context"
	stderrors "errors"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stairbuilder/pkg/errors"
	"github.com/matzehuels/stairbuilder/pkg/store"
)

// StorageLimit is the space budget reported for custom models.
const StorageLimit = 5 * 1024 * 1024

// StorageInfo summarizes custom model storage.
type StorageInfo struct {
	Used       int     `json:"used"`
	Available  int     `json:"available"`
	Percentage float64 `json:"percentage"`
	ModelCount int     `json:"modelCount"`
}

// Repository merges the built-in catalog with custom entries kept in a store.
type Repository struct {
	Store  store.Store
	Logger *log.Logger
	// Now stamps created/updated times. Defaults to time.Now.
	Now func() time.Time

	textures *TextureIndex
}

// NewRepository returns a repository over s.
func NewRepository(s store.Store, logger *log.Logger) *Repository {
	if logger == nil {
		logger = log.Default()
	}
	r := &Repository{Store: s, Logger: logger, Now: time.Now}
	r.textures = NewTextureIndex(r.loadTextures)
	return r
}

func (r *Repository) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func storageErr(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeStorage, err, format, args...)
}

// =============================================================================
// Models
// =============================================================================

// Models returns the built-in models followed by the custom ones.
func (r *Repository) Models(ctx context.Context) ([]Model, error) {
	custom, err := store.ListJSON[Model](ctx, r.Store, store.Models)
	if err != nil {
		return nil, storageErr(err, "list custom models")
	}
	return append(BuiltInModels(), custom...), nil
}

// CustomModels returns only the stored models.
func (r *Repository) CustomModels(ctx context.Context) ([]Model, error) {
	custom, err := store.ListJSON[Model](ctx, r.Store, store.Models)
	if err != nil {
		return nil, storageErr(err, "list custom models")
	}
	return custom, nil
}

// Model returns a model as defined, without test configuration overrides.
func (r *Repository) Model(ctx context.Context, id string) (Model, error) {
	if m, ok := builtInModel(id); ok {
		return m, nil
	}
	m, err := store.GetJSON[Model](ctx, r.Store, store.Models, id)
	if stderrors.Is(err, store.ErrNotFound) {
		return Model{}, errors.New(errors.ErrCodeModelNotFound, "model not found: %s", id)
	}
	if err != nil {
		return Model{}, storageErr(err, "load model %s", id)
	}
	return m, nil
}

// ModelExists reports whether id names a built-in or custom model.
func (r *Repository) ModelExists(ctx context.Context, id string) (bool, error) {
	_, err := r.Model(ctx, id)
	if errors.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// ModelsByCategory filters Models by category id.
func (r *Repository) ModelsByCategory(ctx context.Context, category string) ([]Model, error) {
	all, err := r.Models(ctx)
	if err != nil {
		return nil, err
	}
	var out []Model
	for _, m := range all {
		if m.Category == category {
			out = append(out, m)
		}
	}
	return out, nil
}

// AddModel stores a new custom model, stamping its metadata.
func (r *Repository) AddModel(ctx context.Context, m Model) (Model, error) {
	if err := m.Validate(); err != nil {
		return Model{}, err
	}
	exists, err := r.ModelExists(ctx, m.ID)
	if err != nil {
		return Model{}, err
	}
	if exists {
		return Model{}, errors.New(errors.ErrCodeAlreadyExists, "model already exists: %s", m.ID)
	}

	now := r.now()
	m.Metadata = Metadata{
		Version:     orDefault(m.Metadata.Version, "1.0.0"),
		Author:      orDefault(m.Metadata.Author, "User"),
		DateCreated: now.UTC().Format(time.RFC3339),
		IsCustom:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.PutJSON(ctx, r.Store, store.Models, m.ID, m); err != nil {
		return Model{}, storageErr(err, "save model %s", m.ID)
	}
	r.Logger.Debug("added model", "id", m.ID)
	return m, nil
}

// UpdateModel replaces a custom model, keeping its creation metadata.
func (r *Repository) UpdateModel(ctx context.Context, m Model) (Model, error) {
	if err := m.Validate(); err != nil {
		return Model{}, err
	}
	if _, ok := builtInModel(m.ID); ok {
		return Model{}, errors.New(errors.ErrCodeForbidden, "cannot update built-in model %s", m.ID)
	}
	prev, err := r.Model(ctx, m.ID)
	if err != nil {
		return Model{}, err
	}

	m.Metadata.IsCustom = true
	m.Metadata.Version = orDefault(m.Metadata.Version, prev.Metadata.Version)
	m.Metadata.Author = orDefault(m.Metadata.Author, prev.Metadata.Author)
	m.Metadata.DateCreated = prev.Metadata.DateCreated
	m.Metadata.CreatedAt = prev.Metadata.CreatedAt
	m.Metadata.UpdatedAt = r.now()
	if err := store.PutJSON(ctx, r.Store, store.Models, m.ID, m); err != nil {
		return Model{}, storageErr(err, "save model %s", m.ID)
	}
	return m, nil
}

// SaveModel adds m or updates it when it already exists.
func (r *Repository) SaveModel(ctx context.Context, m Model) (Model, error) {
	exists, err := r.ModelExists(ctx, m.ID)
	if err != nil {
		return Model{}, err
	}
	if exists {
		return r.UpdateModel(ctx, m)
	}
	return r.AddModel(ctx, m)
}

// DeleteModel removes a custom model and its test configuration.
func (r *Repository) DeleteModel(ctx context.Context, id string) error {
	if _, ok := builtInModel(id); ok {
		return errors.New(errors.ErrCodeForbidden, "Cannot delete built-in models")
	}
	err := r.Store.Delete(ctx, store.Models, id)
	if stderrors.Is(err, store.ErrNotFound) {
		return errors.New(errors.ErrCodeModelNotFound, "model not found: %s", id)
	}
	if err != nil {
		return storageErr(err, "delete model %s", id)
	}
	if err := r.ClearTestConfiguration(ctx, id); err != nil {
		r.Logger.Warn("test configuration left behind", "model", id, "err", err)
	}
	return nil
}

// ClearCustomModels deletes every custom model.
func (r *Repository) ClearCustomModels(ctx context.Context) (int, error) {
	records, err := r.Store.List(ctx, store.Models)
	if err != nil {
		return 0, storageErr(err, "list custom models")
	}
	for _, rec := range records {
		if err := r.Store.Delete(ctx, store.Models, rec.ID); err != nil && !stderrors.Is(err, store.ErrNotFound) {
			return 0, storageErr(err, "delete model %s", rec.ID)
		}
	}
	return len(records), nil
}

// StorageInfo reports how much of StorageLimit custom models occupy.
func (r *Repository) StorageInfo(ctx context.Context) (StorageInfo, error) {
	records, err := r.Store.List(ctx, store.Models)
	if err != nil {
		return StorageInfo{}, storageErr(err, "list custom models")
	}
	used := 0
	for _, rec := range records {
		used += len(rec.Data)
	}
	return StorageInfo{
		Used:       used,
		Available:  StorageLimit,
		Percentage: math.Min(float64(used)/StorageLimit*100, 100),
		ModelCount: len(records),
	}, nil
}

// =============================================================================
// Test configurations
// =============================================================================

// SaveTestConfiguration stores overrides for a model.
func (r *Repository) SaveTestConfiguration(ctx context.Context, modelID string, tc TestConfiguration) error {
	tc.SavedAt = r.now()
	if err := store.PutJSON(ctx, r.Store, store.TestConfigurations, modelID, tc); err != nil {
		return storageErr(err, "save test configuration for %s", modelID)
	}
	r.Logger.Debug("saved test configuration", "model", modelID)
	return nil
}

// LoadTestConfiguration returns the stored overrides, or nil when none exist.
func (r *Repository) LoadTestConfiguration(ctx context.Context, modelID string) (*TestConfiguration, error) {
	tc, err := store.GetJSON[TestConfiguration](ctx, r.Store, store.TestConfigurations, modelID)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(err, "load test configuration for %s", modelID)
	}
	return &tc, nil
}

// ClearTestConfiguration removes the overrides of a model. Clearing a model
// without overrides succeeds.
func (r *Repository) ClearTestConfiguration(ctx context.Context, modelID string) error {
	err := r.Store.Delete(ctx, store.TestConfigurations, modelID)
	if err != nil && !stderrors.Is(err, store.ErrNotFound) {
		return storageErr(err, "clear test configuration for %s", modelID)
	}
	return nil
}

// LoadModel returns a model with its test configuration applied.
func (r *Repository) LoadModel(ctx context.Context, id string) (Model, error) {
	m, err := r.Model(ctx, id)
	if err != nil {
		return Model{}, err
	}
	tc, err := r.LoadTestConfiguration(ctx, id)
	if err != nil {
		return Model{}, err
	}
	if tc == nil {
		return m, nil
	}
	r.Logger.Debug("loaded model with test configuration", "model", id)
	return tc.Apply(m), nil
}

// SaveModelConfiguration persists tuned defaults and textures. Built-in
// models get a test configuration; custom models are updated in place.
func (r *Repository) SaveModelConfiguration(ctx context.Context, id string, tc TestConfiguration) error {
	m, err := r.Model(ctx, id)
	if err != nil {
		return err
	}
	if !m.Metadata.IsCustom {
		return r.SaveTestConfiguration(ctx, id, tc)
	}
	_, err = r.UpdateModel(ctx, tc.Apply(m))
	return err
}

// =============================================================================
// Categories
// =============================================================================

// Categories returns the built-in categories followed by the custom ones.
func (r *Repository) Categories(ctx context.Context) ([]Category, error) {
	custom, err := store.ListJSON[Category](ctx, r.Store, store.Categories)
	if err != nil {
		return nil, storageErr(err, "list categories")
	}
	return append(BuiltInCategories(), custom...), nil
}

// CategoriesByType filters Categories by type.
func (r *Repository) CategoriesByType(ctx context.Context, t CategoryType) ([]Category, error) {
	all, err := r.Categories(ctx)
	if err != nil {
		return nil, err
	}
	var out []Category
	for _, c := range all {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out, nil
}

// Category returns one category.
func (r *Repository) Category(ctx context.Context, id string) (Category, error) {
	for _, c := range BuiltInCategories() {
		if c.ID == id {
			return c, nil
		}
	}
	c, err := store.GetJSON[Category](ctx, r.Store, store.Categories, id)
	if stderrors.Is(err, store.ErrNotFound) {
		return Category{}, errors.New(errors.ErrCodeCategoryNotFound, "Category not found: %s", id)
	}
	if err != nil {
		return Category{}, storageErr(err, "load category %s", id)
	}
	return c, nil
}

// CategoryExists reports whether id names a category.
func (r *Repository) CategoryExists(ctx context.Context, id string) (bool, error) {
	_, err := r.Category(ctx, id)
	if errors.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// AddCategory stores a new custom category.
func (r *Repository) AddCategory(ctx context.Context, c Category) (Category, error) {
	if err := c.Validate(); err != nil {
		return Category{}, err
	}
	exists, err := r.CategoryExists(ctx, c.ID)
	if err != nil {
		return Category{}, err
	}
	if exists {
		return Category{}, errors.New(errors.ErrCodeAlreadyExists, "Category with id %q already exists", c.ID)
	}
	now := r.now()
	c.IsCustom = true
	c.CreatedAt = &now
	if err := store.PutJSON(ctx, r.Store, store.Categories, c.ID, c); err != nil {
		return Category{}, storageErr(err, "save category %s", c.ID)
	}
	return c, nil
}

// UpdateCategory changes a custom category.
func (r *Repository) UpdateCategory(ctx context.Context, id string, u CategoryUpdate) (Category, error) {
	c, err := r.Category(ctx, id)
	if err != nil {
		return Category{}, err
	}
	if !c.IsCustom {
		return Category{}, errors.New(errors.ErrCodeForbidden, "Cannot update built-in category: %s", id)
	}
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.Type != nil {
		c.Type = *u.Type
	}
	if err := c.Validate(); err != nil {
		return Category{}, err
	}
	if err := store.PutJSON(ctx, r.Store, store.Categories, c.ID, c); err != nil {
		return Category{}, storageErr(err, "save category %s", c.ID)
	}
	return c, nil
}

// DeleteCategory removes a custom category.
func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	if IsBuiltInCategory(id) {
		return errors.New(errors.ErrCodeForbidden, "Cannot delete built-in category: %s", id)
	}
	err := r.Store.Delete(ctx, store.Categories, id)
	if stderrors.Is(err, store.ErrNotFound) {
		return errors.New(errors.ErrCodeCategoryNotFound, "Category not found: %s", id)
	}
	if err != nil {
		return storageErr(err, "delete category %s", id)
	}
	return nil
}

// ClearCustomCategories deletes every custom category.
func (r *Repository) ClearCustomCategories(ctx context.Context) error {
	records, err := r.Store.List(ctx, store.Categories)
	if err != nil {
		return storageErr(err, "list categories")
	}
	for _, rec := range records {
		if err := r.Store.Delete(ctx, store.Categories, rec.ID); err != nil && !stderrors.Is(err, store.ErrNotFound) {
			return storageErr(err, "delete category %s", rec.ID)
		}
	}
	return nil
}

// CategoryOptions returns every category as a select option.
func (r *Repository) CategoryOptions(ctx context.Context) ([]Option, error) {
	all, err := r.Categories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Option, len(all))
	for i, c := range all {
		out[i] = Option{Value: c.ID, Label: c.Name}
	}
	return out, nil
}

// =============================================================================
// Textures
// =============================================================================

// Textures returns the texture index.
func (r *Repository) Textures() *TextureIndex {
	return r.textures
}

func (r *Repository) loadTextures(ctx context.Context) ([]Texture, error) {
	custom, err := store.ListJSON[Texture](ctx, r.Store, store.Textures)
	if err != nil {
		return nil, storageErr(err, "list textures")
	}
	return append(BuiltInTextures(), custom...), nil
}

// AddTexture stores a custom texture, replacing one with the same id.
func (r *Repository) AddTexture(ctx context.Context, t Texture) (Texture, error) {
	if err := t.Validate(); err != nil {
		return Texture{}, err
	}
	for _, b := range BuiltInTextures() {
		if b.ID == t.ID {
			return Texture{}, errors.New(errors.ErrCodeForbidden, "cannot replace built-in texture %s", t.ID)
		}
	}
	t.IsCustom = true
	if err := store.PutJSON(ctx, r.Store, store.Textures, t.ID, t); err != nil {
		return Texture{}, storageErr(err, "save texture %s", t.ID)
	}
	r.textures.Invalidate()
	return t, nil
}

// DeleteTexture removes a custom texture.
func (r *Repository) DeleteTexture(ctx context.Context, id string) error {
	for _, b := range BuiltInTextures() {
		if b.ID == id {
			return errors.New(errors.ErrCodeForbidden, "cannot delete built-in texture %s", id)
		}
	}
	err := r.Store.Delete(ctx, store.Textures, id)
	if stderrors.Is(err, store.ErrNotFound) {
		return errors.New(errors.ErrCodeTextureNotFound, "texture not found: %s", id)
	}
	if err != nil {
		return storageErr(err, "delete texture %s", id)
	}
	r.textures.Invalidate()
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
