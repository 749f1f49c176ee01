package catalog

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/stairbuilder/pkg/errors"
	"github.com/matzehuels/stairbuilder/pkg/geom"
	"github.com/matzehuels/stairbuilder/pkg/layout"
	"github.com/matzehuels/stairbuilder/pkg/pricing"
)

// Component is one asset of a model.
type Component struct {
	ID             string    `json:"id" toml:"id" yaml:"id"`
	Name           string    `json:"name" toml:"name" yaml:"name"`
	URL            string    `json:"url" toml:"url" yaml:"url"`
	DefaultTexture string    `json:"defaultTexture,omitempty" toml:"default_texture,omitempty" yaml:"defaultTexture,omitempty"`
	Position       geom.Vec3 `json:"position" toml:"position" yaml:"position"`
}

// Defaults seed the initial settings of a model.
type Defaults struct {
	ArraySize    int                  `json:"arraySize" toml:"array_size" yaml:"arraySize"`
	Scale        geom.Vec3            `json:"scale" toml:"scale" yaml:"scale"`
	GlobalScale  float64              `json:"globalScale" toml:"global_scale" yaml:"globalScale"`
	Positions    map[string]geom.Vec3 `json:"positions" toml:"positions" yaml:"positions"`
	StepSpacing  geom.Vec3            `json:"stepSpacing" toml:"step_spacing" yaml:"stepSpacing"`
	Step1Spacing geom.Vec3            `json:"step1Spacing" toml:"step1_spacing" yaml:"step1Spacing"`
}

// Metadata records provenance.
type Metadata struct {
	Version     string    `json:"version" toml:"version" yaml:"version"`
	Author      string    `json:"author" toml:"author" yaml:"author"`
	DateCreated string    `json:"dateCreated" toml:"date_created" yaml:"dateCreated"`
	IsCustom    bool      `json:"isCustom" toml:"is_custom" yaml:"isCustom"`
	CreatedAt   time.Time `json:"createdAt" toml:"created_at" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" toml:"updated_at" yaml:"updatedAt"`
}

// Model is a configurable stair.
type Model struct {
	ID                string                     `json:"id" toml:"id" yaml:"id"`
	Name              string                     `json:"name" toml:"name" yaml:"name"`
	Description       string                     `json:"description" toml:"description" yaml:"description"`
	Category          string                     `json:"category" toml:"category" yaml:"category"`
	Components        map[string]Component       `json:"components" toml:"components" yaml:"components"`
	ComponentTextures map[string]string          `json:"componentTextures" toml:"component_textures" yaml:"componentTextures"`
	Positioning       map[string]layout.Strategy `json:"positioning" toml:"positioning" yaml:"positioning"`
	Defaults          Defaults                   `json:"defaultSettings" toml:"default_settings" yaml:"defaultSettings"`
	Pricing           pricing.Pricing            `json:"pricing" toml:"pricing" yaml:"pricing"`
	Metadata          Metadata                   `json:"metadata" toml:"metadata" yaml:"metadata"`
}

// ComponentIDs returns the component ids in render order.
func (m Model) ComponentIDs() []string {
	s := make(layout.Settings, len(m.Components))
	for id := range m.Components {
		s[id] = layout.ComponentSettings{}
	}
	return s.IDs()
}

// Seed returns the input for layout.DefaultSettings.
func (m Model) Seed() layout.Seed {
	return layout.Seed{
		Components:   slices.Sorted(maps.Keys(m.Components)),
		Positions:    m.Defaults.Positions,
		StepSpacing:  m.Defaults.StepSpacing,
		Step1Spacing: m.Defaults.Step1Spacing,
		ArraySize:    m.Defaults.ArraySize,
	}
}

// DefaultSettings returns the initial component settings of the model.
func (m Model) DefaultSettings() layout.Settings {
	return layout.DefaultSettings(m.Seed())
}

// ComponentPosition evaluates the positioning strategy of a component at
// instance index. A missing or invalid strategy falls back to the default
// position of the component and is reported to r (nil uses the layout
// default reporter).
func (m Model) ComponentPosition(id string, index int, r layout.Reporter) geom.Vec3 {
	if r == nil {
		r = layout.DefaultReporter()
	}
	fallback := m.Defaults.Positions[id]

	s, ok := m.Positioning[id]
	if !ok {
		r.Report(layout.Diagnostic{
			Kind:      layout.DiagnosticStrategyFallback,
			Component: id,
			Message:   "No positioning strategy for component: " + id,
		})
		return fallback
	}

	pos, err := s.Position(layout.StrategyParams{
		Index:        index,
		ArraySize:    m.Defaults.ArraySize,
		StepSpacing:  m.Defaults.StepSpacing,
		Step1Spacing: m.Defaults.Step1Spacing,
		GlobalScale:  m.Defaults.GlobalScale,
		BasePosition: m.Defaults.Positions[layout.Base],
	})
	if err != nil {
		r.Report(layout.Diagnostic{
			Kind:      layout.DiagnosticStrategyFallback,
			Component: id,
			Message:   "Error calculating position for " + id + ": " + errors.UserMessage(err),
		})
		return fallback
	}
	return pos
}

// Problems lists every validation failure of m, in a stable order.
func (m Model) Problems() []string {
	var out []string
	if m.ID == "" {
		out = append(out, "Model ID is required")
	} else if err := errors.ValidateModelID(m.ID); err != nil {
		out = append(out, errors.UserMessage(err))
	}
	if strings.TrimSpace(m.Name) == "" {
		out = append(out, "Model name is required")
	}
	if m.Category == "" {
		out = append(out, "Model category is required")
	}
	if len(m.Components) == 0 {
		out = append(out, "At least one component is required")
	}
	for _, id := range slices.Sorted(maps.Keys(m.Components)) {
		if err := errors.ValidateComponentID(id); err != nil {
			out = append(out, errors.UserMessage(err))
		}
	}
	for _, id := range slices.Sorted(maps.Keys(m.Positioning)) {
		if err := m.Positioning[id].Validate(); err != nil {
			out = append(out, id+": "+errors.UserMessage(err))
		}
	}
	if m.Defaults.ArraySize < 1 {
		out = append(out, "Array size must be at least 1")
	}
	if err := m.Pricing.Validate(); err != nil {
		out = append(out, errors.UserMessage(err))
	}
	return out
}

// Validate returns an INVALID_MODEL error listing every problem, or nil.
func (m Model) Validate() error {
	if p := m.Problems(); len(p) > 0 {
		return errors.New(errors.ErrCodeInvalidModel, "%s", strings.Join(p, "; "))
	}
	return nil
}

// Clone returns a deep copy.
func (m Model) Clone() Model {
	m.Components = maps.Clone(m.Components)
	m.ComponentTextures = maps.Clone(m.ComponentTextures)
	m.Positioning = maps.Clone(m.Positioning)
	m.Defaults.Positions = maps.Clone(m.Defaults.Positions)
	return m
}

// TestConfiguration overrides the defaults and textures of a model without
// editing the model itself. Nil fields keep the model value.
type TestConfiguration struct {
	ArraySize         *int                 `json:"arraySize,omitempty"`
	Scale             *geom.Vec3           `json:"scale,omitempty"`
	GlobalScale       *float64             `json:"globalScale,omitempty"`
	Positions         map[string]geom.Vec3 `json:"positions,omitempty"`
	StepSpacing       *geom.Vec3           `json:"stepSpacing,omitempty"`
	Step1Spacing      *geom.Vec3           `json:"step1Spacing,omitempty"`
	ComponentTextures map[string]string    `json:"componentTextures,omitempty"`
	SavedAt           time.Time            `json:"savedAt"`
}

// Apply returns m with the overrides applied. Positions are replaced as a
// whole; component textures are merged key by key.
func (tc TestConfiguration) Apply(m Model) Model {
	m = m.Clone()
	if tc.ArraySize != nil {
		m.Defaults.ArraySize = *tc.ArraySize
	}
	if tc.Scale != nil {
		m.Defaults.Scale = *tc.Scale
	}
	if tc.GlobalScale != nil {
		m.Defaults.GlobalScale = *tc.GlobalScale
	}
	if tc.Positions != nil {
		m.Defaults.Positions = maps.Clone(tc.Positions)
	}
	if tc.StepSpacing != nil {
		m.Defaults.StepSpacing = *tc.StepSpacing
	}
	if tc.Step1Spacing != nil {
		m.Defaults.Step1Spacing = *tc.Step1Spacing
	}
	if len(tc.ComponentTextures) > 0 {
		if m.ComponentTextures == nil {
			m.ComponentTextures = make(map[string]string, len(tc.ComponentTextures))
		}
		maps.Copy(m.ComponentTextures, tc.ComponentTextures)
	}
	return m
}
