package store

import (
	"context"
	"fmt"
)

// Backend drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Driver string
	// Path is the directory for the file driver or the database file for
	// the sqlite driver.
	Path     string
	URI      string
	Database string
}

// Open constructs the backend named by cfg.Driver. An empty driver selects
// the file store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverFile:
		s, err := NewFileStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite store: path is required")
		}
		s, err := NewSQLiteStore(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverMongo:
		s, err := NewMongoStore(ctx, cfg.URI, cfg.Database)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q (want memory, file, sqlite, or mongo)", cfg.Driver)
	}
}
