// Package store provides document storage for the catalog.
//
// A [Store] keeps opaque JSON documents grouped into collections ("models",
// "categories", ...). The catalog layer owns the document shapes; backends
// only move bytes. Available backends:
//
//   - [Memory]: in-process, for tests and throwaway sessions
//   - [FileStore]: one JSON file per document, for the CLI
//   - [SQLiteStore]: a single SQLite database file
//   - [MongoStore]: MongoDB, for shared deployments
//
// Use [Open] to construct a backend from configuration.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidName is returned for collection or document ids that cannot be
// stored safely by every backend.
var ErrInvalidName = errors.New("invalid name")

// Collections used by the catalog.
const (
	Models             = "models"
	Categories         = "categories"
	Textures           = "textures"
	TestConfigurations = "test_configurations"
	Configurations     = "configurations"
)

// Record is a stored document.
type Record struct {
	ID   string
	Data []byte
}

// Store is a collection-scoped document store.
type Store interface {
	// Get returns the document or ErrNotFound.
	Get(ctx context.Context, collection, id string) ([]byte, error)

	// Put inserts or replaces a document.
	Put(ctx context.Context, collection, id string, data []byte) error

	// Delete removes a document. Deleting a missing document returns ErrNotFound.
	Delete(ctx context.Context, collection, id string) error

	// List returns every document of a collection ordered by id.
	List(ctx context.Context, collection string) ([]Record, error)

	// Close releases the backend.
	Close() error
}

var nameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateName checks a collection or document id.
func ValidateName(name string) error {
	if len(name) > 200 || !nameRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func validate(collection, id string) error {
	if err := ValidateName(collection); err != nil {
		return err
	}
	return ValidateName(id)
}

// GetJSON loads a document into a value of type T.
func GetJSON[T any](ctx context.Context, s Store, collection, id string) (T, error) {
	var v T
	data, err := s.Get(ctx, collection, id)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return v, nil
}

// PutJSON stores v as JSON.
func PutJSON(ctx context.Context, s Store, collection, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	return s.Put(ctx, collection, id, data)
}

// ListJSON decodes every document of a collection, in id order.
func ListJSON[T any](ctx context.Context, s Store, collection string) ([]T, error) {
	records, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		var v T
		if err := json.Unmarshal(r.Data, &v); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, r.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Size returns the total number of bytes stored in a collection.
func Size(ctx context.Context, s Store, collection string) (int, error) {
	records, err := s.List(ctx, collection)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range records {
		n += len(r.Data)
	}
	return n, nil
}
