package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stairbuilder/internal/config"
	"github.com/matzehuels/stairbuilder/pkg/catalog"
	"github.com/matzehuels/stairbuilder/pkg/layout"
	"github.com/matzehuels/stairbuilder/pkg/observability"
	"github.com/matzehuels/stairbuilder/pkg/pipeline"
	"github.com/matzehuels/stairbuilder/pkg/pricing"
	"github.com/matzehuels/stairbuilder/pkg/session"
	"github.com/matzehuels/stairbuilder/pkg/store"
)

// newTestCLI returns a CLI whose catalog, cache, and sessions live in a
// temp dir.
func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Store = config.StoreConfig{Driver: store.DriverFile, Path: filepath.Join(dir, "catalog")}
	cfg.Cache.Dir = filepath.Join(dir, "cache")
	cfg.Session.Dir = filepath.Join(dir, "sessions")

	c := New(io.Discard, LogInfo)
	c.Config = cfg
	return c
}

func execute(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustExecute(t *testing.T, c *CLI, args ...string) string {
	t.Helper()
	out, err := execute(t, c, args...)
	if err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return out
}

func decodeResult(t *testing.T, out string) pipeline.Result {
	t.Helper()
	var res pipeline.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode plan: %v\n%s", err, out)
	}
	return res
}

func TestLayoutCommand(t *testing.T) {
	c := newTestCLI(t)

	res := decodeResult(t, mustExecute(t, c, "layout", "--json"))
	if len(res.Placements) != 18 || res.Quote.Total != 3700 {
		t.Errorf("default plan = %d placements, total %v", len(res.Placements), res.Quote.Total)
	}
	if res.CacheHit {
		t.Error("first run should not be cached")
	}

	res = decodeResult(t, mustExecute(t, c, "layout", "--json"))
	if !res.CacheHit {
		t.Error("second run should hit the file cache")
	}

	res = decodeResult(t, mustExecute(t, c, "layout", "--json", "--steps", "10", "--top-angle", "right", "--no-cache"))
	if got := res.Counts()[layout.Step]; got != 10 {
		t.Errorf("step placements = %d, want 10", got)
	}
	if len(res.Angles) != 1 || res.Angles[0].End != "top" {
		t.Errorf("angles = %+v", res.Angles)
	}

	table := mustExecute(t, c, "layout", "--no-cache")
	for _, want := range []string{"Component", "step1", "Total"} {
		if !strings.Contains(table, want) {
			t.Errorf("table output missing %q", want)
		}
	}
}

func TestLayoutErrors(t *testing.T) {
	c := newTestCLI(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown model", []string{"layout", "--model", "nope"}},
		{"bad angle", []string{"layout", "--bottom-angle", "up"}},
		{"negative multiplier", []string{"layout", "--multiplier", "-2"}},
		{"no saved session", []string{"layout", "--from-session"}},
		{"bad settings extension", []string{"layout", "--settings", "settings.ini"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, c, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLayoutSettingsFile(t *testing.T) {
	c := newTestCLI(t)

	settings := withSteps(catalog.BuiltInModels()[0].DefaultSettings(), 4)
	path := filepath.Join(t.TempDir(), "settings.yaml")
	var buf bytes.Buffer
	if err := pipeline.EncodeSettings(&buf, catalog.FormatYAML, settings, 2); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	res := decodeResult(t, mustExecute(t, c, "layout", "--json", "--settings", path))
	if res.Quote.StepCount != 8 {
		t.Errorf("4 steps x2 = %d steps", res.Quote.StepCount)
	}
	// Flags win over the file.
	res = decodeResult(t, mustExecute(t, c, "layout", "--json", "--settings", path, "--multiplier", "1"))
	if res.Quote.StepCount != 4 {
		t.Errorf("flag multiplier ignored: %d steps", res.Quote.StepCount)
	}
}

func TestPriceCommand(t *testing.T) {
	c := newTestCLI(t)

	var q pricing.Quote
	out := mustExecute(t, c, "price", "--json", "--multiplier", "1.5")
	if err := json.Unmarshal([]byte(out), &q); err != nil {
		t.Fatal(err)
	}
	if q.StepCount != 12 || q.Total != 2500+150*12 {
		t.Errorf("quote = %+v", q)
	}

	out = mustExecute(t, c, "price")
	if !strings.Contains(out, "3700 EUR") {
		t.Errorf("price output = %q", out)
	}
}

func TestGraphCommand(t *testing.T) {
	c := newTestCLI(t)

	out := mustExecute(t, c, "graph")
	if !strings.HasPrefix(out, "digraph Components") || !strings.Contains(out, `"top" -> "step1"`) {
		t.Errorf("dot output = %q", out)
	}
	if _, err := execute(t, c, "graph", "--format", "png"); err == nil {
		t.Error("png should be rejected")
	}
}

func TestSessionCommands(t *testing.T) {
	c := newTestCLI(t)

	out := mustExecute(t, c, "session", "show")
	if out != "" {
		t.Errorf("show without a session wrote %q", out)
	}

	mustExecute(t, c, "session", "save", "--steps", "6", "--bottom-angle", "left",
		"--texture", "step1="+catalog.TexturePaintedMetal)

	var sess session.Session
	if err := json.Unmarshal([]byte(mustExecute(t, c, "session", "show", "--json")), &sess); err != nil {
		t.Fatal(err)
	}
	cfg := sess.Configuration
	if sess.ID != session.CurrentID || cfg.ModelID != catalog.BuiltInModelID {
		t.Errorf("session = %s / %s", sess.ID, cfg.ModelID)
	}
	if cfg.ComponentSettings[layout.Step].Count != 6 || cfg.SelectedBottomAngle != layout.AngleLeft {
		t.Errorf("configuration = %+v", cfg)
	}
	if cfg.ComponentTextures[layout.Step1] != catalog.TexturePaintedMetal {
		t.Errorf("step1 texture = %q", cfg.ComponentTextures[layout.Step1])
	}

	res := decodeResult(t, mustExecute(t, c, "layout", "--json", "--from-session", "--no-cache"))
	if res.Counts()[layout.Step] != 6 || len(res.Angles) != 1 {
		t.Errorf("layout from session = %v, %d angles", res.Counts(), len(res.Angles))
	}

	if _, err := execute(t, c, "session", "save", "--texture", "step=velvet"); err == nil {
		t.Error("unknown texture should be rejected")
	}

	mustExecute(t, c, "session", "clear")
	if _, err := execute(t, c, "layout", "--from-session"); err == nil {
		t.Error("layout --from-session should fail after clear")
	}
}

func TestModelsCommands(t *testing.T) {
	c := newTestCLI(t)
	dir := t.TempDir()

	oak := catalog.BuiltInModels()[0]
	oak.ID = "oak-stair"
	oak.Name = "Oak Stair"
	src := filepath.Join(dir, "models.toml")
	var buf bytes.Buffer
	if err := catalog.EncodeModels(&buf, catalog.FormatTOML, []catalog.Model{oak, catalog.BuiltInModels()[0]}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	mustExecute(t, c, "models", "validate", src)
	mustExecute(t, c, "models", "import", src)
	if _, err := execute(t, c, "models", "import", src); err == nil {
		t.Error("second import without --overwrite should fail")
	}
	mustExecute(t, c, "models", "import", "--overwrite", src)

	var models []catalog.Model
	if err := json.Unmarshal([]byte(mustExecute(t, c, "models", "list", "--json")), &models); err != nil {
		t.Fatal(err)
	}
	if len(models) != 2 {
		t.Fatalf("models = %d, want 2", len(models))
	}

	exported := filepath.Join(dir, "custom.yaml")
	mustExecute(t, c, "models", "export", "--custom", "-o", exported)
	data, err := os.ReadFile(exported)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Models []catalog.Model `yaml:"models"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Models) != 1 || doc.Models[0].ID != "oak-stair" {
		t.Errorf("exported = %+v", doc.Models)
	}

	show := mustExecute(t, c, "models", "show", "oak-stair")
	if !strings.Contains(show, "Oak Stair") || !strings.Contains(show, "follow step") {
		t.Errorf("show output = %q", show)
	}

	mustExecute(t, c, "models", "delete", "oak-stair")
	if _, err := execute(t, c, "models", "delete", catalog.BuiltInModelID); err == nil {
		t.Error("deleting the built-in model should fail")
	}
}

func TestModelsValidateReportsProblems(t *testing.T) {
	c := newTestCLI(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"models": [{"id": "Bad ID!"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, c, "models", "validate", path)
	if err == nil || !strings.Contains(err.Error(), "1 of 1") {
		t.Errorf("validate error = %v", err)
	}
}

func TestCategoryAndTextureCommands(t *testing.T) {
	c := newTestCLI(t)

	mustExecute(t, c, "categories", "add", "Glass Stairs", "-t", "stair")
	out := mustExecute(t, c, "categories", "list", "--options")
	if !strings.Contains(out, "Glass Stairs (glass-stairs)") {
		t.Errorf("options = %q", out)
	}
	if _, err := execute(t, c, "categories", "add", "Glass Stairs"); err == nil {
		t.Error("duplicate category should fail")
	}
	mustExecute(t, c, "categories", "delete", "glass-stairs")

	out = mustExecute(t, c, "textures", "maps", catalog.TextureDarkCherryWood)
	if !strings.Contains(out, "normalMap") {
		t.Errorf("maps output = %q", out)
	}
	var textures []catalog.Texture
	if err := json.Unmarshal([]byte(mustExecute(t, c, "textures", "list", "--json", "-c", "metal")), &textures); err != nil {
		t.Fatal(err)
	}
	for _, tx := range textures {
		if tx.Category != catalog.TextureMetal {
			t.Errorf("%s is %s", tx.ID, tx.Category)
		}
	}
}

func TestCacheCommands(t *testing.T) {
	c := newTestCLI(t)

	out := mustExecute(t, c, "cache", "path")
	if strings.TrimSpace(out) != c.Config.Cache.Dir {
		t.Errorf("cache path = %q, want %q", out, c.Config.Cache.Dir)
	}

	mustExecute(t, c, "layout", "--json")
	mustExecute(t, c, "cache", "clear")
	res := decodeResult(t, mustExecute(t, c, "layout", "--json"))
	if res.CacheHit {
		t.Error("plan should be recomputed after cache clear")
	}
}

func TestCacheDirDefault(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")
	c := New(io.Discard, LogInfo)
	c.Config = config.Default()

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != filepath.Join("/tmp/custom-cache", appName) {
		t.Errorf("cacheDir() = %q", dir)
	}
}

func TestVerboseFlag(t *testing.T) {
	t.Cleanup(observability.Reset)

	c := newTestCLI(t)
	root := c.RootCommand()
	addVerboseFlag(c, root)
	root.SetOut(io.Discard)
	root.SetArgs([]string{"cache", "path", "-v"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Logger.GetLevel() != LogDebug {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}
	if _, ok := observability.Cache().(observability.LogHooks); !ok {
		t.Error("verbose should route cache hooks to the logger")
	}
}

func TestConfigFileLoaded(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "[store]\ndriver = \"memory\"\n\n[cache]\ndriver = \"none\"\n\n[log]\nlevel = \"warn\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"--config", path, "price", "--json"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Config.Store.Driver != store.DriverMemory || c.Config.Cache.Driver != config.CacheNone {
		t.Errorf("config = %+v", c.Config)
	}
	if c.Logger.GetLevel().String() != "warn" {
		t.Errorf("level = %v, want warn", c.Logger.GetLevel())
	}
}

func TestExampleFiles(t *testing.T) {
	c := newTestCLI(t)
	examples := filepath.Join("..", "..", "examples")

	mustExecute(t, c, "models", "import", filepath.Join(examples, "models", "oak-stair.yaml"))
	res := decodeResult(t, mustExecute(t, c, "layout", "--json", "-m", "oak-stair"))
	if res.Quote.StepCount != 12 || res.Quote.Total != 3100+175*12 {
		t.Errorf("oak-stair quote = %+v", res.Quote)
	}

	res = decodeResult(t, mustExecute(t, c, "layout", "--json", "--settings", filepath.Join(examples, "settings", "short-run.toml")))
	if res.Quote.StepCount != 6 {
		t.Errorf("short run = %d steps, want 6", res.Quote.StepCount)
	}

	cfg, err := config.Load(filepath.Join(examples, "config.toml"))
	if err != nil {
		t.Fatalf("load example config: %v", err)
	}
	if cfg.Store.Driver != store.DriverSQLite {
		t.Errorf("store driver = %q", cfg.Store.Driver)
	}
}
