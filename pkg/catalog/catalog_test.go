package catalog

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stairbuilder/pkg/errors"
	"github.com/matzehuels/stairbuilder/pkg/geom"
	"github.com/matzehuels/stairbuilder/pkg/layout"
	"github.com/matzehuels/stairbuilder/pkg/pricing"
	"github.com/matzehuels/stairbuilder/pkg/store"
)

var testNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	r := NewRepository(store.NewMemory(), log.New(io.Discard))
	r.Now = func() time.Time { return testNow }
	return r
}

func customModel(id string) Model {
	m := BuiltInModels()[0]
	m.ID = id
	m.Name = "Oak Stair"
	m.Metadata = Metadata{}
	return m
}

func TestBuiltInModel(t *testing.T) {
	m := BuiltInModels()[0]
	if m.ID != BuiltInModelID {
		t.Fatalf("ID = %s", m.ID)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("built-in model invalid: %v", err)
	}
	if m.Metadata.IsCustom {
		t.Error("built-in model must not be custom")
	}
	if got := m.Components[layout.Step1].URL; got != "/models/limon_central/limon_central_droit_droit_step1.glb" {
		t.Errorf("step1 url = %s", got)
	}

	s := m.DefaultSettings()
	if s[layout.Step].Count != 8 || s[layout.Step].Spacing != geom.V(-10.133, 6.941, 0) {
		t.Errorf("step defaults = %+v", s[layout.Step])
	}
	if s[layout.Top].FollowComponent != layout.Step1 {
		t.Errorf("top follows %q", s[layout.Top].FollowComponent)
	}

	q := pricing.QuoteFor(m.Pricing, s, 1.0)
	if q.Total != 3700 {
		t.Errorf("default price = %v, want 3700", q.Total)
	}
}

func TestComponentPosition(t *testing.T) {
	m := BuiltInModels()[0]
	c := &layout.Collector{}

	got := m.ComponentPosition(layout.Step, 2, c)
	want := geom.V(-10.133*2, 6.941*2, 0)
	if !got.Close(want, 1e-9) {
		t.Errorf("step[2] = %v, want %v", got, want)
	}

	got = m.ComponentPosition(layout.Top, 0, c)
	want = geom.V(-10.133*8, 6.941*8, 0)
	if !got.Close(want, 1e-9) {
		t.Errorf("top = %v, want %v", got, want)
	}
	if len(c.Diagnostics()) != 0 {
		t.Errorf("unexpected diagnostics: %+v", c.Diagnostics())
	}

	m.Defaults.Positions["rail"] = geom.V(1, 2, 3)
	got = m.ComponentPosition("rail", 0, c)
	if got != geom.V(1, 2, 3) {
		t.Errorf("fallback = %v", got)
	}

	m.Positioning["broken"] = layout.Strategy{Kind: "spiral"}
	got = m.ComponentPosition("broken", 0, c)
	if got != geom.Zero {
		t.Errorf("invalid strategy fallback = %v", got)
	}

	diags := c.Diagnostics()
	if len(diags) != 2 || diags[0].Kind != layout.DiagnosticStrategyFallback {
		t.Errorf("diagnostics = %+v", diags)
	}
}

func TestModelProblems(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Model)
		want   int
	}{
		{"valid", func(*Model) {}, 0},
		{"missing id", func(m *Model) { m.ID = "" }, 1},
		{"bad id", func(m *Model) { m.ID = "Oak Stair" }, 1},
		{"missing name and category", func(m *Model) { m.Name = " "; m.Category = "" }, 2},
		{"no components", func(m *Model) { m.Components = nil }, 1},
		{"bad strategy", func(m *Model) { m.Positioning[layout.Top] = layout.Follow("rail", false) }, 1},
		{"negative price", func(m *Model) { m.Pricing.BasePrice = -5 }, 1},
		{"zero array", func(m *Model) { m.Defaults.ArraySize = 0 }, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := customModel("oak")
			tt.mutate(&m)
			if got := m.Problems(); len(got) != tt.want {
				t.Errorf("Problems() = %v, want %d problems", got, tt.want)
			}
			if err := m.Validate(); (err != nil) != (tt.want > 0) {
				t.Errorf("Validate() = %v", err)
			} else if err != nil && !errors.Is(err, errors.ErrCodeInvalidModel) {
				t.Errorf("code = %s", errors.GetCode(err))
			}
		})
	}
}

func TestGenerateIDs(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	if got := GenerateModelID("  Oak & Steel Stair! ", now); got != "oak-steel-stair-1700000000000" {
		t.Errorf("GenerateModelID = %s", got)
	}
	if got := GenerateCategoryID("Glass -- Balustrades"); got != "glass-balustrades" {
		t.Errorf("GenerateCategoryID = %s", got)
	}
	if got := GenerateTextureID("White Oak", TextureWood, now); got != "custom-wood-white-oak-1700000000000" {
		t.Errorf("GenerateTextureID = %s", got)
	}
	if err := errors.ValidateModelID(GenerateModelID("Any Name", now)); err != nil {
		t.Errorf("generated id invalid: %v", err)
	}
}

func TestRepositoryModels(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	all, err := r.Models(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("Models = %d, %v", len(all), err)
	}

	added, err := r.AddModel(ctx, customModel("oak"))
	if err != nil {
		t.Fatalf("AddModel: %v", err)
	}
	if !added.Metadata.IsCustom || added.Metadata.Author != "User" || !added.Metadata.CreatedAt.Equal(testNow) {
		t.Errorf("metadata = %+v", added.Metadata)
	}

	if _, err := r.AddModel(ctx, customModel("oak")); !errors.Is(err, errors.ErrCodeAlreadyExists) {
		t.Errorf("duplicate AddModel = %v", err)
	}

	got, err := r.Model(ctx, "oak")
	if err != nil || got.Name != "Oak Stair" {
		t.Errorf("Model(oak) = %+v, %v", got, err)
	}

	byCat, _ := r.ModelsByCategory(ctx, "central-stringer")
	if len(byCat) != 2 {
		t.Errorf("ModelsByCategory = %d, want 2", len(byCat))
	}

	later := testNow.Add(time.Hour)
	r.Now = func() time.Time { return later }
	upd := customModel("oak")
	upd.Name = "Oak Stair v2"
	updated, err := r.UpdateModel(ctx, upd)
	if err != nil {
		t.Fatalf("UpdateModel: %v", err)
	}
	if !updated.Metadata.CreatedAt.Equal(testNow) || !updated.Metadata.UpdatedAt.Equal(later) {
		t.Errorf("update metadata = %+v", updated.Metadata)
	}

	if _, err := r.UpdateModel(ctx, customModel("ghost")); !errors.Is(err, errors.ErrCodeModelNotFound) {
		t.Errorf("UpdateModel(ghost) = %v", err)
	}
	if _, err := r.UpdateModel(ctx, BuiltInModels()[0]); !errors.Is(err, errors.ErrCodeForbidden) {
		t.Errorf("UpdateModel(built-in) = %v", err)
	}

	info, err := r.StorageInfo(ctx)
	if err != nil || info.ModelCount != 1 || info.Used == 0 || info.Available != StorageLimit {
		t.Errorf("StorageInfo = %+v, %v", info, err)
	}

	if err := r.DeleteModel(ctx, BuiltInModelID); !errors.Is(err, errors.ErrCodeForbidden) {
		t.Errorf("DeleteModel(built-in) = %v", err)
	}
	if err := r.DeleteModel(ctx, "oak"); err != nil {
		t.Errorf("DeleteModel: %v", err)
	}
	if err := r.DeleteModel(ctx, "oak"); !errors.Is(err, errors.ErrCodeModelNotFound) {
		t.Errorf("second DeleteModel = %v", err)
	}
	if ok, _ := r.ModelExists(ctx, "oak"); ok {
		t.Error("model survived delete")
	}
}

func TestSaveModelUpserts(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	if _, err := r.SaveModel(ctx, customModel("a")); err != nil {
		t.Fatal(err)
	}
	m := customModel("a")
	m.Description = "changed"
	if _, err := r.SaveModel(ctx, m); err != nil {
		t.Fatal(err)
	}
	got, _ := r.Model(ctx, "a")
	if got.Description != "changed" {
		t.Errorf("Description = %q", got.Description)
	}

	n, err := r.ClearCustomModels(ctx)
	if err != nil || n != 1 {
		t.Errorf("ClearCustomModels = %d, %v", n, err)
	}
}

func TestTestConfigurationOverlay(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	size := 12
	spacing := geom.V(-9, 7, 0)
	tc := TestConfiguration{
		ArraySize:         &size,
		StepSpacing:       &spacing,
		ComponentTextures: map[string]string{layout.Step1: TexturePaintedMetal},
	}
	if err := r.SaveModelConfiguration(ctx, BuiltInModelID, tc); err != nil {
		t.Fatalf("SaveModelConfiguration: %v", err)
	}

	m, err := r.LoadModel(ctx, BuiltInModelID)
	if err != nil {
		t.Fatal(err)
	}
	if m.Defaults.ArraySize != 12 || m.Defaults.StepSpacing != spacing {
		t.Errorf("overlay defaults = %+v", m.Defaults)
	}
	if m.Defaults.Step1Spacing != geom.V(-10.133, 6.941, 0.3) {
		t.Errorf("unset fields must keep model values: %v", m.Defaults.Step1Spacing)
	}
	if m.ComponentTextures[layout.Step1] != TexturePaintedMetal || m.ComponentTextures[layout.Base] != TexturePaintedMetal {
		t.Errorf("textures = %v", m.ComponentTextures)
	}

	// The definition itself is untouched.
	def, _ := r.Model(ctx, BuiltInModelID)
	if def.Defaults.ArraySize != 8 {
		t.Errorf("built-in definition modified: %d", def.Defaults.ArraySize)
	}

	if err := r.ClearTestConfiguration(ctx, BuiltInModelID); err != nil {
		t.Fatal(err)
	}
	m, _ = r.LoadModel(ctx, BuiltInModelID)
	if m.Defaults.ArraySize != 8 {
		t.Errorf("after clear ArraySize = %d", m.Defaults.ArraySize)
	}
	if err := r.ClearTestConfiguration(ctx, BuiltInModelID); err != nil {
		t.Errorf("clearing twice: %v", err)
	}
}

func TestSaveModelConfigurationCustom(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	if _, err := r.AddModel(ctx, customModel("oak")); err != nil {
		t.Fatal(err)
	}

	size := 5
	if err := r.SaveModelConfiguration(ctx, "oak", TestConfiguration{ArraySize: &size}); err != nil {
		t.Fatal(err)
	}
	m, _ := r.Model(ctx, "oak")
	if m.Defaults.ArraySize != 5 {
		t.Errorf("custom model not updated: %d", m.Defaults.ArraySize)
	}
	if tc, _ := r.LoadTestConfiguration(ctx, "oak"); tc != nil {
		t.Error("custom models should not get a test configuration")
	}

	if err := r.SaveModelConfiguration(ctx, "ghost", TestConfiguration{}); !errors.IsNotFound(err) {
		t.Errorf("SaveModelConfiguration(ghost) = %v", err)
	}
}

func TestRepositoryCategories(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	all, _ := r.Categories(ctx)
	if len(all) != 4 {
		t.Fatalf("Categories = %d, want 4", len(all))
	}

	c, err := r.AddCategory(ctx, Category{ID: "glass", Name: "Glass", Type: CategoryAccessory})
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	if !c.IsCustom || c.CreatedAt == nil {
		t.Errorf("category = %+v", c)
	}
	if _, err := r.AddCategory(ctx, Category{ID: "spiral", Name: "Spiral", Type: CategoryStair}); !errors.Is(err, errors.ErrCodeAlreadyExists) {
		t.Errorf("duplicate AddCategory = %v", err)
	}
	if _, err := r.AddCategory(ctx, Category{ID: "Bad ID", Name: "x", Type: CategoryStair}); !errors.Is(err, errors.ErrCodeInvalidCategory) {
		t.Errorf("invalid AddCategory = %v", err)
	}

	acc, _ := r.CategoriesByType(ctx, CategoryAccessory)
	if len(acc) != 1 || acc[0].ID != "glass" {
		t.Errorf("CategoriesByType = %+v", acc)
	}

	name := "Glass Panels"
	if c, err := r.UpdateCategory(ctx, "glass", CategoryUpdate{Name: &name}); err != nil || c.Name != name {
		t.Errorf("UpdateCategory = %+v, %v", c, err)
	}
	if _, err := r.UpdateCategory(ctx, "spiral", CategoryUpdate{Name: &name}); !errors.Is(err, errors.ErrCodeForbidden) {
		t.Errorf("UpdateCategory(built-in) = %v", err)
	}

	opts, _ := r.CategoryOptions(ctx)
	if len(opts) != 5 || opts[4] != (Option{Value: "glass", Label: name}) {
		t.Errorf("CategoryOptions = %+v", opts)
	}

	if err := r.DeleteCategory(ctx, "floating"); !errors.Is(err, errors.ErrCodeForbidden) {
		t.Errorf("DeleteCategory(built-in) = %v", err)
	}
	if err := r.DeleteCategory(ctx, "glass"); err != nil {
		t.Errorf("DeleteCategory: %v", err)
	}
	if _, err := r.Category(ctx, "glass"); !errors.Is(err, errors.ErrCodeCategoryNotFound) {
		t.Errorf("Category after delete = %v", err)
	}
	if !IsBuiltInCategory("side-stringer") || IsBuiltInCategory("glass") {
		t.Error("IsBuiltInCategory")
	}
}

func TestCategoryProblems(t *testing.T) {
	c := Category{}
	if got := c.Problems(); len(got) != 3 {
		t.Errorf("Problems() = %v", got)
	}
	c = Category{ID: "Has Space", Name: "x", Type: CategoryStair}
	p := c.Problems()
	if len(p) != 1 || p[0] != "Category ID must contain only lowercase letters, numbers, and hyphens" {
		t.Errorf("Problems() = %v", p)
	}
	c = Category{ID: "x", Name: "x", Type: "ramp"}
	if len(c.Problems()) != 1 {
		t.Errorf("unknown type should be rejected")
	}
}

func TestCodecRoundTrip(t *testing.T) {
	models := []Model{customModel("oak"), customModel("ash")}
	models[0].Metadata.CreatedAt = testNow

	for _, f := range []Format{FormatJSON, FormatTOML, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			if err := EncodeModels(&buf, f, models); err != nil {
				t.Fatalf("EncodeModels: %v", err)
			}
			got, err := DecodeModels(&buf, f)
			if err != nil {
				t.Fatalf("DecodeModels: %v\n%s", err, buf.String())
			}
			if len(got) != 2 || got[0].ID != "oak" || got[1].ID != "ash" {
				t.Fatalf("decoded %+v", got)
			}
			m := got[0]
			if m.Defaults.StepSpacing != geom.V(-10.133, 6.941, 0) {
				t.Errorf("StepSpacing = %v", m.Defaults.StepSpacing)
			}
			if m.Positioning[layout.Top] != layout.Follow(layout.Step, true) {
				t.Errorf("top strategy = %+v", m.Positioning[layout.Top])
			}
			if m.Pricing.PricePerStep != 150 || m.Components[layout.Step1].DefaultTexture != TextureDarkCherryWood {
				t.Errorf("model = %+v", m)
			}
			if !m.Metadata.CreatedAt.Equal(testNow) {
				t.Errorf("CreatedAt = %v", m.Metadata.CreatedAt)
			}
		})
	}
}

func TestDecodeSingleModel(t *testing.T) {
	doc := `{"id":"solo","name":"Solo","category":"spiral","components":{"base":{"id":"base","name":"Base","url":"/b.glb","position":[0,0,0]}},"defaultSettings":{"arraySize":3}}`
	got, err := DecodeModels(bytes.NewBufferString(doc), FormatJSON)
	if err != nil || len(got) != 1 || got[0].ID != "solo" {
		t.Errorf("DecodeModels = %+v, %v", got, err)
	}

	if _, err := DecodeModels(bytes.NewBufferString("{"), FormatJSON); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("invalid JSON = %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"models.json": FormatJSON,
		"a/b.TOML":    FormatTOML,
		"x.yml":       FormatYAML,
		"x.yaml":      FormatYAML,
	}
	for path, want := range tests {
		if got, err := FormatFromPath(path); err != nil || got != want {
			t.Errorf("FormatFromPath(%s) = %s, %v", path, got, err)
		}
	}
	if _, err := FormatFromPath("x.xml"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("FormatFromPath(xml) = %v", err)
	}
}

func TestImportModels(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	res, err := r.ImportModels(ctx, []Model{customModel("a"), customModel("b")}, false)
	if err != nil || len(res.Added) != 2 {
		t.Fatalf("ImportModels = %+v, %v", res, err)
	}
	if _, err := r.ImportModels(ctx, []Model{customModel("a")}, false); !errors.Is(err, errors.ErrCodeAlreadyExists) {
		t.Errorf("re-import without overwrite = %v", err)
	}
	res, err = r.ImportModels(ctx, []Model{customModel("a")}, true)
	if err != nil || len(res.Updated) != 1 {
		t.Errorf("re-import with overwrite = %+v, %v", res, err)
	}
	builtIn := BuiltInModels()[0]
	if _, err := r.ImportModels(ctx, []Model{builtIn}, true); !errors.Is(err, errors.ErrCodeForbidden) {
		t.Errorf("import over built-in = %v", err)
	}
}

// failingDeletes rejects deletes in one collection.
type failingDeletes struct {
	store.Store
	collection string
}

func (s failingDeletes) Delete(ctx context.Context, collection, id string) error {
	if collection == s.collection {
		return stderrors.New("disk full")
	}
	return s.Store.Delete(ctx, collection, id)
}

func TestDeleteModelLogsLeftoverTestConfiguration(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	r := NewRepository(failingDeletes{Store: store.NewMemory(), collection: store.TestConfigurations}, log.New(&logs))
	r.Now = func() time.Time { return testNow }

	if _, err := r.AddModel(ctx, customModel("oak")); err != nil {
		t.Fatal(err)
	}
	if err := r.DeleteModel(ctx, "oak"); err != nil {
		t.Fatalf("DeleteModel: %v", err)
	}
	if ok, _ := r.ModelExists(ctx, "oak"); ok {
		t.Error("model survived delete")
	}
	if out := logs.String(); !strings.Contains(out, "test configuration left behind") || !strings.Contains(out, "disk full") {
		t.Errorf("log = %q", out)
	}
}
