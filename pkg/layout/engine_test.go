package layout

import (
	"testing"

	"github.com/matzehuels/stairbuilder/pkg/geom"
)

const eps = 1e-9

func assertVec(t *testing.T, name string, got, want geom.Vec3) {
	t.Helper()
	if !got.Close(want, eps) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func collecting(settings Settings, m float64) (Engine, *Collector) {
	c := &Collector{}
	return Engine{Settings: settings, Multiplier: m, Reporter: c}, c
}

func TestPositionIdentityAtIndexZero(t *testing.T) {
	settings := Settings{
		Base: {Enabled: true, Count: 1, BasePosition: geom.V(10, 0, 0)},
		Step: {Enabled: true, Count: 4, BasePosition: geom.V(1, 2, 3), Spacing: geom.V(5, 5, 5)},
	}

	assertVec(t, "step[0]", Position(Step, 0, settings, 1.0), geom.V(11, 2, 3))
	assertVec(t, "base[0]", Position(Base, 0, settings, 1.0), geom.V(10, 0, 0))
}

func TestPositionLinearInIndex(t *testing.T) {
	spacing := geom.V(1, 0.5, 0.25)
	settings := Settings{
		Base: {Enabled: true, Count: 1, BasePosition: geom.V(-3, 1, 0)},
		Step: {Enabled: true, Count: 4, BasePosition: geom.V(2, 0, 0), Spacing: spacing},
	}
	e := NewEngine(settings, 1.0)

	for i := -3; i <= 6; i++ {
		diff := e.Position(Step, i+1).Sub(e.Position(Step, i))
		if !diff.Close(spacing, eps) {
			t.Errorf("Position(%d)-Position(%d) = %v, want %v", i+1, i, diff, spacing)
		}
	}
}

func TestEffectiveCountMultiplier(t *testing.T) {
	settings := Settings{Step: {Enabled: true, Count: 8}}

	tests := []struct {
		name       string
		multiplier float64
		want       int
	}{
		{"identity", 1.0, 8},
		{"one and a half", 1.5, 12},
		{"rounds down", 0.3, 2},
		{"rounds to zero without clamping", 0.01, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveCount(Step, settings, tt.multiplier); got != tt.want {
				t.Errorf("EffectiveCount(step, %v) = %d, want %d", tt.multiplier, got, tt.want)
			}
		})
	}
}

func TestEffectiveCountRoundsHalfUp(t *testing.T) {
	settings := Settings{Step1: {Enabled: true, Count: 5}}
	if got := EffectiveCount(Step1, settings, 0.5); got != 3 {
		t.Errorf("EffectiveCount(step1, 0.5) = %d, want 3", got)
	}
}

func TestEffectiveCountSingletons(t *testing.T) {
	tests := []struct {
		name string
		id   string
		cs   ComponentSettings
		want int
	}{
		{"top enabled ignores multiplier", Top, ComponentSettings{Enabled: true, Count: 3}, 3},
		{"top disabled is one", Top, ComponentSettings{Enabled: false, Count: 3}, 1},
		{"base enabled", Base, ComponentSettings{Enabled: true, Count: 2}, 2},
		{"base disabled", Base, ComponentSettings{Count: 2}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := Settings{tt.id: tt.cs}
			if got := EffectiveCount(tt.id, settings, 5.0); got != tt.want {
				t.Errorf("EffectiveCount(%s) = %d, want %d", tt.id, got, tt.want)
			}
		})
	}
}

func TestEffectiveCountCallShapes(t *testing.T) {
	cs := ComponentSettings{Enabled: true, Count: 8}
	settings := Settings{Step: cs}

	if a, b := EffectiveCount(Step, settings, 1.5), EffectiveCountOf(Step, &cs, 1.5); a != b {
		t.Errorf("map shape = %d, record shape = %d", a, b)
	}

	e, c := collecting(nil, 1.0)
	if got := e.EffectiveCountOf(Step, nil); got != 1 {
		t.Errorf("EffectiveCountOf(nil) = %d, want 1", got)
	}
	if got := len(c.Diagnostics()); got != 1 {
		t.Errorf("diagnostics = %d, want 1", got)
	}
}

func TestEffectiveCountMissingRecord(t *testing.T) {
	e, c := collecting(Settings{}, 2.0)

	if got := e.EffectiveCount("ghost"); got != 1 {
		t.Errorf("EffectiveCount(ghost) = %d, want 1", got)
	}
	diags := c.Diagnostics()
	if len(diags) != 1 || diags[0].Kind != DiagnosticMissingSettings || diags[0].Component != "ghost" {
		t.Errorf("diagnostics = %+v", diags)
	}
}

func TestAutoPositionFollowAtLastAndEnd(t *testing.T) {
	settings := Settings{
		Step: {Enabled: true, Count: 4, BasePosition: geom.Zero, Spacing: geom.V(1, 0, 0)},
		Top:  {FollowSteps: true, PositionAtEnd: false, Count: 1},
	}
	assertVec(t, "at last", AutoPosition(Top, settings, 1.0), geom.V(3, 0, 0))

	top := settings[Top]
	top.PositionAtEnd = true
	settings[Top] = top
	assertVec(t, "at end", AutoPosition(Top, settings, 1.0), geom.V(4, 0, 0))
}

func TestAutoPositionAppliesMultiplierToTarget(t *testing.T) {
	settings := Settings{
		Step: {Enabled: true, Count: 4, Spacing: geom.V(1, 0, 0)},
		Top:  {FollowSteps: true, Count: 1},
	}
	// round(4*1.5) = 6 slots, the last is index 5.
	assertVec(t, "scaled", AutoPosition(Top, settings, 1.5), geom.V(5, 0, 0))
}

func TestAutoPositionNotFollowing(t *testing.T) {
	settings := Settings{
		Step: {Enabled: true, Count: 4, Spacing: geom.V(1, 0, 0)},
		Top:  {Count: 1, BasePosition: geom.V(7, 8, 9)},
	}
	assertVec(t, "verbatim", AutoPosition(Top, settings, 1.0), geom.V(7, 8, 9))
}

func TestAutoPositionMissingTarget(t *testing.T) {
	settings := Settings{
		Top: {FollowSteps: true, FollowComponent: "nonexistent", BasePosition: geom.V(1, 2, 3)},
	}
	e, c := collecting(settings, 1.0)

	assertVec(t, "fallback", e.AutoPosition(Top), geom.V(1, 2, 3))

	diags := c.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %d, want 1", len(diags))
	}
	if diags[0].Kind != DiagnosticMissingFollowTarget || diags[0].Target != "nonexistent" {
		t.Errorf("diagnostic = %+v", diags[0])
	}
}

func TestPositionBaseAnchorComposition(t *testing.T) {
	settings := Settings{
		Base: {Enabled: true, Count: 1, BasePosition: geom.V(10, 0, 0)},
		Step: {Enabled: true, Count: 8, BasePosition: geom.Zero, Spacing: geom.V(1, 0, 0)},
	}
	assertVec(t, "step[2]", Position(Step, 2, settings, 1.0), geom.V(12, 0, 0))
}

func TestPositionFollowerGetsBaseAnchor(t *testing.T) {
	settings := Settings{
		Base: {Enabled: true, Count: 1, BasePosition: geom.V(100, 0, 0)},
		Step: {Enabled: true, Count: 4, Spacing: geom.V(1, 1, 0)},
		Top:  {FollowSteps: true, Count: 1},
	}
	// auto = (3,3,0); anchor added once.
	assertVec(t, "top", Position(Top, 0, settings, 1.0), geom.V(103, 3, 0))
	// index is irrelevant for followers.
	assertVec(t, "top[5]", Position(Top, 5, settings, 1.0), geom.V(103, 3, 0))
}

func TestPositionEnabledFollowerUsesOwnArray(t *testing.T) {
	settings := Settings{
		Step: {Enabled: true, Count: 4, Spacing: geom.V(1, 0, 0)},
		Top:  {Enabled: true, Count: 2, FollowSteps: true, BasePosition: geom.V(0, 9, 0), Spacing: geom.V(0, 1, 0)},
	}
	assertVec(t, "top[1]", Position(Top, 1, settings, 1.0), geom.V(0, 10, 0))
}

func TestPositionFollowingBaseIsNotOffset(t *testing.T) {
	settings := Settings{
		Base: {FollowSteps: true, FollowComponent: Step, Count: 1},
		Step: {Enabled: true, Count: 3, BasePosition: geom.V(1, 0, 0), Spacing: geom.V(2, 0, 0)},
	}
	assertVec(t, "base", Position(Base, 0, settings, 1.0), geom.V(5, 0, 0))
}

func TestPositionMissingRecord(t *testing.T) {
	settings := Settings{
		Base: {Enabled: true, Count: 1, BasePosition: geom.V(4, 0, 0)},
	}
	e, c := collecting(settings, 1.0)

	assertVec(t, "ghost", e.Position("ghost", 3), geom.V(4, 0, 0))
	if len(c.Diagnostics()) != 1 {
		t.Errorf("expected one diagnostic, got %+v", c.Diagnostics())
	}

	e, _ = collecting(Settings{}, 1.0)
	assertVec(t, "missing base", e.Position(Base, 0), geom.Zero)
}

func TestPositionIsIdempotent(t *testing.T) {
	settings := Settings{
		Base: {Enabled: true, Count: 1, BasePosition: geom.V(1, 2, 3)},
		Step: {Enabled: true, Count: 8, Spacing: geom.V(-10.133, 6.941, 0)},
		Top:  {FollowSteps: true, FollowComponent: Step, Count: 1},
	}
	before := settings.Clone()

	first := Position(Top, 0, settings, 1.25)
	second := Position(Top, 0, settings, 1.25)
	if first != second {
		t.Errorf("repeated calls differ: %v vs %v", first, second)
	}
	for id, cs := range before {
		if settings[id] != cs {
			t.Errorf("settings[%s] mutated", id)
		}
	}
}

func TestEndToEndChainedFollow(t *testing.T) {
	seed := Seed{
		Components:   []string{Base, Step, Step1, Top},
		StepSpacing:  geom.V(-10.133, 6.941, 0.0),
		Step1Spacing: geom.V(-10.133, 6.941, 0.3),
		ArraySize:    8,
	}
	settings := DefaultSettings(seed)

	// One tread fewer than supports.
	tread := settings[Step1]
	tread.Count = 7
	settings[Step1] = tread

	e := NewEngine(settings, 1.0)
	if got := e.EffectiveCount(Step); got != 8 {
		t.Fatalf("EffectiveCount(step) = %d, want 8", got)
	}

	step := settings[Step]
	assertVec(t, "step[7]", e.Position(Step, 7), step.BasePosition.ScaleAdd(step.Spacing, 7))

	top := settings[Top]
	if !top.FollowSteps || top.FollowComponent != Step1 || top.PositionAtEnd {
		t.Fatalf("top defaults = %+v", top)
	}
	assertVec(t, "top", e.Position(Top, 0), e.Position(Step1, 6))
}
