package pipeline

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stairbuilder/pkg/catalog"
	"github.com/matzehuels/stairbuilder/pkg/errors"
	"github.com/matzehuels/stairbuilder/pkg/layout"
)

// settingsFile is the on-disk shape of a settings document. TOML needs a
// top-level table, so settings are nested under "components".
type settingsFile struct {
	Multiplier float64         `json:"multiplier,omitempty" toml:"multiplier,omitempty" yaml:"multiplier,omitempty"`
	Components layout.Settings `json:"components" toml:"components" yaml:"components"`
}

// DecodeSettings reads component settings and an optional multiplier from a
// JSON, TOML, or YAML document. A zero multiplier means "not given".
func DecodeSettings(r io.Reader, f catalog.Format) (layout.Settings, float64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "read settings")
	}

	var doc settingsFile
	switch f {
	case catalog.FormatJSON:
		err = json.Unmarshal(data, &doc)
	case catalog.FormatTOML:
		_, err = toml.NewDecoder(bytes.NewReader(data)).Decode(&doc)
	case catalog.FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		return nil, 0, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
	}
	if err != nil {
		return nil, 0, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s settings", f)
	}
	if len(doc.Components) == 0 {
		return nil, 0, errors.New(errors.ErrCodeInvalidSettings, "settings document has no components")
	}
	return doc.Components, doc.Multiplier, nil
}

// EncodeSettings writes settings in the DecodeSettings format.
func EncodeSettings(w io.Writer, f catalog.Format, settings layout.Settings, multiplier float64) error {
	doc := settingsFile{Multiplier: multiplier, Components: settings}
	switch f {
	case catalog.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case catalog.FormatTOML:
		return toml.NewEncoder(w).Encode(doc)
	case catalog.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
}
