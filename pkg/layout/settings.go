package layout

import (
	"maps"
	"slices"

	"github.com/matzehuels/stairbuilder/pkg/geom"
)

// Well-known component identifiers.
const (
	Base  = "base"
	Step  = "step"
	Step1 = "step1"
	Top   = "top"
	Angle = "angle"
)

// DefaultFollowComponent is followed when FollowComponent is empty.
const DefaultFollowComponent = Step

// ComponentSettings is the array configuration of one component.
type ComponentSettings struct {
	// Enabled renders the component as a repeated array; otherwise a single
	// instance is drawn.
	Enabled bool `json:"enabled" toml:"enabled" yaml:"enabled"`

	// Count is the repeat count before the global multiplier. Always >= 1
	// once normalized.
	Count int `json:"count" toml:"count" yaml:"count"`

	// Spacing is added once per increment of the instance index.
	Spacing geom.Vec3 `json:"spacing" toml:"spacing" yaml:"spacing"`

	// BasePosition is the position of index 0 before the base anchor is applied.
	BasePosition geom.Vec3 `json:"basePosition" toml:"base_position" yaml:"basePosition"`

	// FollowSteps positions a disabled component relative to another array.
	FollowSteps bool `json:"followSteps" toml:"follow_steps" yaml:"followSteps"`

	// PositionAtEnd places a follower one slot past the followed array
	// (index n) instead of on its last slot (index n-1).
	PositionAtEnd bool `json:"positionAtEnd" toml:"position_at_end" yaml:"positionAtEnd"`

	// FollowComponent names the followed array. Empty means "step".
	FollowComponent string `json:"followComponent,omitempty" toml:"follow_component,omitempty" yaml:"followComponent,omitempty"`
}

// Follows reports whether the component derives its position from another
// array (Case A of Position).
func (c ComponentSettings) Follows() bool {
	return c.FollowSteps && !c.Enabled
}

// FollowTarget returns the id of the followed component.
func (c ComponentSettings) FollowTarget() string {
	if c.FollowComponent == "" {
		return DefaultFollowComponent
	}
	return c.FollowComponent
}

// Settings maps component ids to their array configuration.
type Settings map[string]ComponentSettings

// Get returns the record for id and whether it exists.
func (s Settings) Get(id string) (ComponentSettings, bool) {
	cs, ok := s[id]
	return cs, ok
}

// BaseAnchor returns the base component's BasePosition, or the origin when
// the model has no base.
func (s Settings) BaseAnchor() geom.Vec3 {
	if b, ok := s[Base]; ok {
		return b.BasePosition
	}
	return geom.Zero
}

// IDs returns the component ids in render order: base, step, step1, top,
// then every other id sorted.
func (s Settings) IDs() []string {
	ids := make([]string, 0, len(s))
	for _, id := range []string{Base, Step, Step1, Top} {
		if _, ok := s[id]; ok {
			ids = append(ids, id)
		}
	}
	rest := slices.Sorted(maps.Keys(s))
	for _, id := range rest {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Clone returns an independent copy.
func (s Settings) Clone() Settings {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}

// Normalize returns a copy with every record fully populated: counts below
// one become one and followers without a target follow "step". Callers run
// this once when settings enter the system so the engine never has to guess.
func (s Settings) Normalize() Settings {
	out := make(Settings, len(s))
	for id, cs := range s {
		if cs.Count < 1 {
			cs.Count = 1
		}
		if cs.FollowSteps && cs.FollowComponent == "" {
			cs.FollowComponent = DefaultFollowComponent
		}
		out[id] = cs
	}
	return out
}

// Seed is the static part of a model that default settings derive from.
type Seed struct {
	Components   []string
	Positions    map[string]geom.Vec3
	StepSpacing  geom.Vec3
	Step1Spacing geom.Vec3
	ArraySize    int
}

// IsArrayComponent reports whether id is scaled by the global multiplier.
func IsArrayComponent(id string) bool {
	return id != Base && id != Top
}

// DefaultSettings builds the initial settings for a model: step and step1
// are enabled arrays of ArraySize, base and angle are enabled singletons, and
// top follows the last tread.
func DefaultSettings(seed Seed) Settings {
	arraySize := max(1, seed.ArraySize)
	settings := make(Settings, len(seed.Components))

	for _, id := range seed.Components {
		isArray := id == Step || id == Step1
		isTop := id == Top

		cs := ComponentSettings{
			Enabled:      id == Base || isArray || id == Angle,
			Count:        1,
			BasePosition: seed.Positions[id],
			FollowSteps:  isTop,
		}
		if isArray {
			cs.Count = arraySize
		}
		switch id {
		case Step:
			cs.Spacing = seed.StepSpacing
		case Step1:
			cs.Spacing = seed.Step1Spacing
		}
		if isTop {
			cs.FollowComponent = Step1
		}
		settings[id] = cs
	}
	return settings
}
