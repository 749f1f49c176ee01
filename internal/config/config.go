// Package config handles stairbuilder configuration loading and management.
//
// Values are layered: built-in defaults, then the TOML file, then
// STAIRBUILDER_* environment variables, then command-line flags (applied by
// the CLI).
package config

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stairbuilder/pkg/store"
)

// AppName names the config, cache, and data directories.
const AppName = "stairbuilder"

// Cache drivers.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Session drivers.
const (
	SessionFile  = "file"
	SessionRedis = "redis"
)

// Config holds all settings.
type Config struct {
	Store   StoreConfig   `toml:"store"`
	Cache   CacheConfig   `toml:"cache"`
	Server  ServerConfig  `toml:"server"`
	Session SessionConfig `toml:"session"`
	Log     LogConfig     `toml:"log"`
}

// StoreConfig selects the catalog backend.
type StoreConfig struct {
	Driver   string `toml:"driver"`
	Path     string `toml:"path,omitempty"`
	URI      string `toml:"uri,omitempty"`
	Database string `toml:"database,omitempty"`
}

// CacheConfig selects the plan cache.
type CacheConfig struct {
	Driver    string   `toml:"driver"`
	Dir       string   `toml:"dir,omitempty"`
	RedisAddr string   `toml:"redis_addr,omitempty"`
	Prefix    string   `toml:"prefix,omitempty"`
	TTL       Duration `toml:"ttl"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// SessionConfig selects where saved configurations live.
type SessionConfig struct {
	Driver    string   `toml:"driver"`
	Dir       string   `toml:"dir,omitempty"`
	RedisAddr string   `toml:"redis_addr,omitempty"`
	TTL       Duration `toml:"ttl"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Driver: store.DriverFile,
		},
		Cache: CacheConfig{
			Driver: CacheFile,
			TTL:    Duration{24 * time.Hour},
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration{10 * time.Second},
			WriteTimeout: Duration{30 * time.Second},
		},
		Session: SessionConfig{
			Driver: SessionFile,
			TTL:    Duration{30 * 24 * time.Hour},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks driver names and the log level.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "", store.DriverFile, store.DriverMemory, store.DriverSQLite, store.DriverMongo:
	default:
		return fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver)
	}
	if c.Store.Driver == store.DriverMongo && c.Store.URI == "" {
		return fmt.Errorf("store.uri is required for the mongo driver")
	}
	switch c.Cache.Driver {
	case "", CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("cache.driver: unknown driver %q", c.Cache.Driver)
	}
	switch c.Session.Driver {
	case "", SessionFile:
	case SessionRedis:
		if c.Session.RedisAddr == "" {
			return fmt.Errorf("session.redis_addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("session.driver: unknown driver %q", c.Session.Driver)
	}
	if _, err := c.Log.ParseLevel(); err != nil {
		return err
	}
	return nil
}

// StoreOptions converts the store section for store.Open. The file and
// sqlite drivers default to the data directory.
func (c *Config) StoreOptions() store.Config {
	cfg := store.Config{
		Driver:   c.Store.Driver,
		Path:     c.Store.Path,
		URI:      c.Store.URI,
		Database: c.Store.Database,
	}
	if cfg.Path == "" {
		switch cfg.Driver {
		case "", store.DriverFile:
			cfg.Path = DataPath("catalog")
		case store.DriverSQLite:
			cfg.Path = DataPath("catalog.db")
		}
	}
	return cfg
}

// ParseLevel returns the charmbracelet/log level.
func (l LogConfig) ParseLevel() (log.Level, error) {
	if l.Level == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(l.Level)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// Duration is a time.Duration written as a string such as "24h" in TOML.
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}
