package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stairbuilder/pkg/errors"
)

// Format is a model document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported model file %q (want .json, .toml, .yaml, or .yml)", path)
}

// modelFile is the document root. TOML requires a table at the top level so
// every format uses the same wrapper.
type modelFile struct {
	Models []Model `json:"models" toml:"models" yaml:"models"`
}

// EncodeModels writes models as one document.
func EncodeModels(w io.Writer, f Format, models []Model) error {
	doc := modelFile{Models: models}
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
}

// DecodeModels reads a document written by EncodeModels. JSON and YAML
// documents may also hold a single bare model.
func DecodeModels(r io.Reader, f Format) ([]Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read models: %w", err)
	}

	var doc modelFile
	var single Model
	switch f {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse JSON")
		}
		if len(doc.Models) == 0 {
			if err := json.Unmarshal(data, &single); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse JSON")
			}
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse TOML")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse YAML")
		}
		if len(doc.Models) == 0 {
			if err := yaml.Unmarshal(data, &single); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse YAML")
			}
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
	}

	if len(doc.Models) == 0 && single.ID != "" {
		doc.Models = []Model{single}
	}
	return doc.Models, nil
}

// ImportResult reports what ImportModels did.
type ImportResult struct {
	Added   []string `json:"added"`
	Updated []string `json:"updated"`
}

// ImportModels validates and stores models. Existing custom models are
// replaced only when overwrite is set; built-in ids are always refused.
func (r *Repository) ImportModels(ctx context.Context, models []Model, overwrite bool) (ImportResult, error) {
	var res ImportResult
	for _, m := range models {
		if err := m.Validate(); err != nil {
			return res, err
		}
		if _, ok := builtInModel(m.ID); ok {
			return res, errors.New(errors.ErrCodeForbidden, "cannot import over built-in model %s", m.ID)
		}
	}
	for _, m := range models {
		exists, err := r.ModelExists(ctx, m.ID)
		if err != nil {
			return res, err
		}
		switch {
		case exists && !overwrite:
			return res, errors.New(errors.ErrCodeAlreadyExists, "model already exists: %s", m.ID)
		case exists:
			if _, err := r.UpdateModel(ctx, m); err != nil {
				return res, err
			}
			res.Updated = append(res.Updated, m.ID)
		default:
			if _, err := r.AddModel(ctx, m); err != nil {
				return res, err
			}
			res.Added = append(res.Added, m.ID)
		}
	}
	return res, nil
}
