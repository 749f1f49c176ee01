package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the config file name inside Dir.
const FileName = "config.toml"

// Environment overrides.
const (
	EnvAddr        = "STAIRBUILDER_ADDR"
	EnvStoreDriver = "STAIRBUILDER_STORE_DRIVER"
	EnvStorePath   = "STAIRBUILDER_STORE_PATH"
	EnvStoreURI    = "STAIRBUILDER_STORE_URI"
	EnvCacheDriver = "STAIRBUILDER_CACHE_DRIVER"
	EnvRedisAddr   = "STAIRBUILDER_REDIS_ADDR"
	EnvLogLevel    = "STAIRBUILDER_LOG_LEVEL"
)

// Load loads configuration with priority: defaults < file < environment.
// An empty path reads Path() when that file exists; an explicit path must
// exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = Path()
	}
	if _, err := os.Stat(path); err == nil || explicit {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile loads config from a TOML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return nil
}

func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Server.Addr, EnvAddr)
	set(&cfg.Store.Driver, EnvStoreDriver)
	set(&cfg.Store.Path, EnvStorePath)
	set(&cfg.Store.URI, EnvStoreURI)
	set(&cfg.Cache.Driver, EnvCacheDriver)
	set(&cfg.Log.Level, EnvLogLevel)
	if v := os.Getenv(EnvRedisAddr); v != "" {
		cfg.Cache.RedisAddr = v
		cfg.Session.RedisAddr = v
	}
}

// Dir returns the config directory ($XDG_CONFIG_HOME/stairbuilder or
// ~/.config/stairbuilder).
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", AppName)
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), FileName)
}

// CacheDir returns the cache directory ($XDG_CACHE_HOME/stairbuilder or
// ~/.cache/stairbuilder).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// DataPath returns name inside the data directory
// ($XDG_DATA_HOME/stairbuilder or ~/.local/share/stairbuilder).
func DataPath(name string) string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName, name)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", AppName, name)
}
