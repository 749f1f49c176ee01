package session

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/stairbuilder/pkg/errors"
	"github.com/matzehuels/stairbuilder/pkg/geom"
	"github.com/matzehuels/stairbuilder/pkg/layout"
)

func testConfig() Configuration {
	return Configuration{
		ModelID:               "limon-central-droit-droit",
		GlobalScale:           0.01,
		GlobalArrayMultiplier: 1.5,
		ComponentSettings: layout.Settings{
			layout.Step: {Enabled: true, Count: 8, Spacing: geom.V(-10.133, 6.941, 0)},
		},
		ComponentTextures:   map[string]string{layout.Step: "painted-metal"},
		SelectedAngleType:   DefaultAngleType,
		SelectedBottomAngle: layout.AngleLeft,
		SelectedTopAngle:    layout.AngleNone,
	}
}

func TestNew(t *testing.T) {
	sess := New(testConfig(), time.Hour)
	if len(sess.ID) != 36 {
		t.Errorf("ID = %q, want a uuid", sess.ID)
	}
	if sess.IsExpired() {
		t.Error("new session should not be expired")
	}
	if !sess.CreatedAt.Equal(sess.UpdatedAt) {
		t.Error("CreatedAt and UpdatedAt should match")
	}
	if other := New(testConfig(), time.Hour); other.ID == sess.ID {
		t.Error("ids should be unique")
	}
}

func TestTouch(t *testing.T) {
	sess := New(testConfig(), -time.Minute)
	if !sess.IsExpired() {
		t.Fatal("negative ttl should expire immediately")
	}
	created := sess.CreatedAt

	cfg := testConfig()
	cfg.GlobalArrayMultiplier = 2
	sess.Touch(cfg, time.Hour)
	if sess.IsExpired() || sess.Configuration.GlobalArrayMultiplier != 2 {
		t.Errorf("Touch did not refresh: %+v", sess)
	}
	if !sess.CreatedAt.Equal(created) {
		t.Error("Touch must keep CreatedAt")
	}
}

func TestConfigurationValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Configuration)
		code   errors.Code
	}{
		{"valid", func(*Configuration) {}, ""},
		{"empty sides", func(c *Configuration) { c.SelectedBottomAngle = ""; c.SelectedTopAngle = "" }, ""},
		{"bad model id", func(c *Configuration) { c.ModelID = "../etc" }, errors.ErrCodeInvalidModel},
		{"zero multiplier", func(c *Configuration) { c.GlobalArrayMultiplier = 0 }, errors.ErrCodeInvalidSettings},
		{"bad side", func(c *Configuration) { c.SelectedTopAngle = "middle" }, errors.ErrCodeInvalidSettings},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.code == "" {
				if err != nil {
					t.Errorf("Validate() = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}
}

func storeContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	got, err := s.Get(ctx, "00000000-0000-0000-0000-000000000000")
	if err != nil || got != nil {
		t.Fatalf("Get(missing) = %v, %v", got, err)
	}

	sess := New(testConfig(), time.Hour)
	if err := s.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err = s.Get(ctx, sess.ID)
	if err != nil || got == nil {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if got.Configuration.ComponentSettings[layout.Step].Count != 8 {
		t.Errorf("settings not preserved: %+v", got.Configuration)
	}
	if got.Configuration.SelectedBottomAngle != layout.AngleLeft {
		t.Errorf("SelectedBottomAngle = %q", got.Configuration.SelectedBottomAngle)
	}

	expired := New(testConfig(), -time.Minute)
	if err := s.Set(ctx, expired); err != nil {
		t.Fatalf("Set(expired): %v", err)
	}
	if got, _ := s.Get(ctx, expired.ID); got != nil {
		t.Error("expired session returned")
	}
	if err := s.Cleanup(ctx); err != nil {
		t.Errorf("Cleanup: %v", err)
	}

	if err := s.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := s.Get(ctx, sess.ID); got != nil {
		t.Error("deleted session returned")
	}
	if err := s.Delete(ctx, sess.ID); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if s.Path() != dir {
		t.Errorf("Path() = %s", s.Path())
	}
	storeContract(t, s)
}

func TestFileStoreCleanup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, _ := NewFileStore(dir)

	expired := New(testConfig(), -time.Minute)
	if err := s.Set(ctx, expired); err != nil {
		t.Fatal(err)
	}
	live := New(testConfig(), time.Hour)
	if err := s.Set(ctx, live); err != nil {
		t.Fatal(err)
	}
	if err := s.Cleanup(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, expired.ID+".json")); !os.IsNotExist(err) {
		t.Error("expired session file should be removed")
	}
	info, err := os.Stat(filepath.Join(dir, live.ID+".json"))
	if err != nil {
		t.Fatal("live session file removed")
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestFileStoreRejectsPaths(t *testing.T) {
	ctx := context.Background()
	s, _ := NewFileStore(t.TempDir())

	sess := New(testConfig(), time.Hour)
	sess.ID = "../escape"
	if err := s.Set(ctx, sess); err == nil {
		t.Error("Set should reject path ids")
	}
	if got, err := s.Get(ctx, "../escape"); got != nil || err != nil {
		t.Errorf("Get(path) = %v, %v", got, err)
	}
}

func TestCLIStore(t *testing.T) {
	ctx := context.Background()
	c, err := NewCLIStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if got, err := c.Load(ctx); got != nil || err != nil {
		t.Fatalf("Load(empty) = %v, %v", got, err)
	}

	first, err := c.Save(ctx, testConfig(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != CurrentID {
		t.Errorf("ID = %s", first.ID)
	}

	cfg := testConfig()
	cfg.GlobalArrayMultiplier = 3
	second, err := c.Save(ctx, cfg, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Error("Save must keep the creation time")
	}

	got, _ := c.Load(ctx)
	if got.Configuration.GlobalArrayMultiplier != 3 {
		t.Errorf("multiplier = %v", got.Configuration.GlobalArrayMultiplier)
	}
	if filepath.Base(c.Path()) != "current.json" {
		t.Errorf("Path() = %s", c.Path())
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if got, _ := c.Load(ctx); got != nil {
		t.Error("Clear did not remove the session")
	}
}

type fakeModels map[string]bool

func (f fakeModels) ModelExists(_ context.Context, id string) (bool, error) {
	return f[id], nil
}

type failingModels struct{}

func (failingModels) ModelExists(context.Context, string) (bool, error) {
	return false, stderrors.New("catalog offline")
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	sess := New(testConfig(), time.Hour)
	_ = s.Set(ctx, sess)

	tests := []struct {
		name    string
		id      string
		models  ModelChecker
		code    errors.Code
		wantErr bool
	}{
		{"ok", sess.ID, fakeModels{"limon-central-droit-droit": true}, "", false},
		{"missing session", "nope", fakeModels{}, errors.ErrCodeSessionNotFound, true},
		{"model deleted", sess.ID, fakeModels{}, errors.ErrCodeModelNotFound, true},
		{"catalog error", sess.ID, failingModels{}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Restore(ctx, s, tt.id, tt.models)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Restore() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.code != "" && !errors.Is(err, tt.code) {
				t.Errorf("code = %s, want %s", errors.GetCode(err), tt.code)
			}
			if err == nil && got.ID != sess.ID {
				t.Errorf("ID = %s", got.ID)
			}
		})
	}
	if !errors.IsNotFound(func() error { _, err := Restore(ctx, s, "nope", fakeModels{}); return err }()) {
		t.Error("missing session should be a not-found error")
	}
}

func TestRedisStoreRejectsExpired(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	s := NewRedisStore(client, "")
	if s.key("abc") != DefaultRedisPrefix+"abc" {
		t.Errorf("key = %s", s.key("abc"))
	}
	err := s.Set(context.Background(), New(testConfig(), -time.Second))
	if !stderrors.Is(err, ErrExpired) {
		t.Errorf("Set(expired) = %v, want ErrExpired", err)
	}
	if err := s.Cleanup(context.Background()); err != nil {
		t.Errorf("Cleanup = %v", err)
	}
}
