package layout

import (
	"github.com/matzehuels/stairbuilder/pkg/errors"
	"github.com/matzehuels/stairbuilder/pkg/geom"
)

// StrategyKind tags a positioning strategy.
type StrategyKind string

// Supported strategies. Positioning logic is data: a model names one of these
// per component and never ships executable code.
const (
	// StrategyAnchor places the component at the base position.
	StrategyAnchor StrategyKind = "anchor"

	// StrategyLinear places instance i at base + spacing*i.
	StrategyLinear StrategyKind = "linear"

	// StrategyFollow places the component after the last slot of another array.
	StrategyFollow StrategyKind = "follow"
)

// Strategy is a data-only positioning rule for one component of a model.
type Strategy struct {
	Kind StrategyKind `json:"kind" toml:"kind" yaml:"kind"`

	// Spacing names the model spacing vector used by linear strategies:
	// "step" or "step1".
	Spacing string `json:"spacing,omitempty" toml:"spacing,omitempty" yaml:"spacing,omitempty"`

	// Target names the array followed by follow strategies.
	Target string `json:"target,omitempty" toml:"target,omitempty" yaml:"target,omitempty"`

	// AtEnd selects slot arraySize instead of arraySize-1.
	AtEnd bool `json:"atEnd,omitempty" toml:"at_end,omitempty" yaml:"atEnd,omitempty"`
}

// Anchor returns an anchor strategy.
func Anchor() Strategy { return Strategy{Kind: StrategyAnchor} }

// Linear returns a linear strategy over the named spacing vector.
func Linear(spacing string) Strategy { return Strategy{Kind: StrategyLinear, Spacing: spacing} }

// Follow returns a follow strategy.
func Follow(target string, atEnd bool) Strategy {
	return Strategy{Kind: StrategyFollow, Target: target, AtEnd: atEnd}
}

// DefaultStrategies returns the positioning used by built-in models.
func DefaultStrategies() map[string]Strategy {
	return map[string]Strategy{
		Base:  Anchor(),
		Step:  Linear(Step),
		Step1: Linear(Step1),
		Top:   Follow(Step, true),
	}
}

// StrategyParams is the model-level input to a strategy.
type StrategyParams struct {
	Index        int
	ArraySize    int
	StepSpacing  geom.Vec3
	Step1Spacing geom.Vec3
	GlobalScale  float64
	BasePosition geom.Vec3
}

func (p StrategyParams) spacing(name string) (geom.Vec3, bool) {
	switch name {
	case Step:
		return p.StepSpacing, true
	case Step1:
		return p.Step1Spacing, true
	}
	return geom.Zero, false
}

// Validate checks that the strategy is well formed.
func (s Strategy) Validate() error {
	switch s.Kind {
	case StrategyAnchor:
		return nil
	case StrategyLinear:
		if _, ok := (StrategyParams{}).spacing(s.Spacing); !ok {
			return errors.New(errors.ErrCodeInvalidStrategy, "linear strategy has unknown spacing %q", s.Spacing)
		}
		return nil
	case StrategyFollow:
		if _, ok := (StrategyParams{}).spacing(s.Target); !ok {
			return errors.New(errors.ErrCodeInvalidStrategy, "follow strategy has unknown target %q", s.Target)
		}
		return nil
	case "":
		return errors.New(errors.ErrCodeInvalidStrategy, "strategy kind is required")
	default:
		return errors.New(errors.ErrCodeInvalidStrategy, "unknown strategy kind %q", s.Kind)
	}
}

// Position evaluates the strategy.
func (s Strategy) Position(p StrategyParams) (geom.Vec3, error) {
	if err := s.Validate(); err != nil {
		return geom.Zero, err
	}
	switch s.Kind {
	case StrategyLinear:
		spacing, _ := p.spacing(s.Spacing)
		return p.BasePosition.ScaleAdd(spacing, float64(p.Index)), nil
	case StrategyFollow:
		spacing, _ := p.spacing(s.Target)
		slot := p.ArraySize - 1
		if s.AtEnd {
			slot = p.ArraySize
		}
		return p.BasePosition.ScaleAdd(spacing, float64(slot)), nil
	default:
		return p.BasePosition, nil
	}
}
