package layout

import (
	"slices"
	"testing"

	"github.com/matzehuels/stairbuilder/pkg/geom"
)

func testSeed() Seed {
	return Seed{
		Components: []string{Base, Step, Step1, Top, Angle, "rail"},
		Positions: map[string]geom.Vec3{
			Base: geom.V(1, 0, 0),
		},
		StepSpacing:  geom.V(-10.133, 6.941, 0.0),
		Step1Spacing: geom.V(-10.133, 6.941, 0.3),
		ArraySize:    8,
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings(testSeed())

	tests := []struct {
		id      string
		enabled bool
		count   int
		follows bool
	}{
		{Base, true, 1, false},
		{Step, true, 8, false},
		{Step1, true, 8, false},
		{Top, false, 1, true},
		{Angle, true, 1, false},
		{"rail", false, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			cs, ok := s.Get(tt.id)
			if !ok {
				t.Fatalf("missing %s", tt.id)
			}
			if cs.Enabled != tt.enabled || cs.Count != tt.count || cs.FollowSteps != tt.follows {
				t.Errorf("%s = %+v", tt.id, cs)
			}
			if cs.PositionAtEnd {
				t.Errorf("%s should not position at end", tt.id)
			}
		})
	}

	if s[Step].Spacing != geom.V(-10.133, 6.941, 0) {
		t.Errorf("step spacing = %v", s[Step].Spacing)
	}
	if s[Step1].Spacing != geom.V(-10.133, 6.941, 0.3) {
		t.Errorf("step1 spacing = %v", s[Step1].Spacing)
	}
	if s[Top].FollowComponent != Step1 {
		t.Errorf("top follows %q, want step1", s[Top].FollowComponent)
	}
	if s[Base].BasePosition != geom.V(1, 0, 0) {
		t.Errorf("base position = %v", s[Base].BasePosition)
	}
	if s[Angle].Spacing != geom.Zero {
		t.Errorf("angle spacing = %v", s[Angle].Spacing)
	}
}

func TestDefaultSettingsClampsArraySize(t *testing.T) {
	seed := testSeed()
	seed.ArraySize = 0
	if got := DefaultSettings(seed)[Step].Count; got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
}

func TestNormalize(t *testing.T) {
	s := Settings{
		Step: {Enabled: true, Count: 0},
		Top:  {FollowSteps: true},
	}
	n := s.Normalize()

	if n[Step].Count != 1 {
		t.Errorf("count = %d, want 1", n[Step].Count)
	}
	if n[Top].FollowComponent != Step {
		t.Errorf("follow = %q, want step", n[Top].FollowComponent)
	}
	if s[Step].Count != 0 || s[Top].FollowComponent != "" {
		t.Error("Normalize modified its receiver")
	}
}

func TestFollowTargetDefault(t *testing.T) {
	if got := (ComponentSettings{}).FollowTarget(); got != Step {
		t.Errorf("FollowTarget() = %q, want step", got)
	}
	if got := (ComponentSettings{FollowComponent: Step1}).FollowTarget(); got != Step1 {
		t.Errorf("FollowTarget() = %q, want step1", got)
	}
}

func TestIDsOrder(t *testing.T) {
	s := Settings{"zeta": {}, Top: {}, "alpha": {}, Step: {}, Base: {}}
	want := []string{Base, Step, Top, "alpha", "zeta"}
	if got := s.IDs(); !slices.Equal(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := Settings{Step: {Count: 3}}
	c := s.Clone()
	cs := c[Step]
	cs.Count = 9
	c[Step] = cs
	if s[Step].Count != 3 {
		t.Error("Clone shares storage with the original")
	}
	if Settings(nil).Clone() != nil {
		t.Error("Clone(nil) should be nil")
	}
}

func TestIsArrayComponent(t *testing.T) {
	for id, want := range map[string]bool{Base: false, Top: false, Step: true, Step1: true, Angle: true} {
		if got := IsArrayComponent(id); got != want {
			t.Errorf("IsArrayComponent(%s) = %v, want %v", id, got, want)
		}
	}
}
