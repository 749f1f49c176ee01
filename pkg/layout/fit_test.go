package layout

import (
	"testing"

	"github.com/matzehuels/stairbuilder/pkg/geom"
)

func fitSeed() Seed {
	return Seed{
		Components:   []string{Base, Step, Step1, Top},
		Positions:    map[string]geom.Vec3{Step: geom.Zero},
		StepSpacing:  geom.V(-10, 7, 0.5),
		Step1Spacing: geom.V(-10, 7, 0.3),
		ArraySize:    5,
	}
}

func TestFitCentresRun(t *testing.T) {
	seed := fitSeed()
	settings := DefaultSettings(seed)

	got, changed := Fit(settings, seed, 1.0, FitOptions{})
	if !changed {
		t.Fatal("expected a change")
	}
	// span = -10*4, centred: 0 - (-40)/2.
	assertVec(t, "base", got[Base].BasePosition, geom.V(20, 0, 0))
	assertVec(t, "step spacing", got[Step].Spacing, geom.V(-10, 7, 0.5))
	assertVec(t, "step1 spacing", got[Step1].Spacing, geom.V(-10, 7, 0))
	assertVec(t, "step1 base", got[Step1].BasePosition, geom.Zero)

	if settings[Base].BasePosition != geom.Zero {
		t.Error("Fit modified its input")
	}
}

func TestFitIsStable(t *testing.T) {
	seed := fitSeed()
	once, _ := Fit(DefaultSettings(seed), seed, 1.0, FitOptions{})
	twice, changed := Fit(once, seed, 1.0, FitOptions{})
	if changed {
		t.Errorf("second Fit reported a change: %+v", twice)
	}
}

func TestFitBottomAngleRaisesRun(t *testing.T) {
	seed := fitSeed()
	got, changed := Fit(DefaultSettings(seed), seed, 1.0, FitOptions{BottomAngle: AngleLeft})
	if !changed {
		t.Fatal("expected a change")
	}
	assertVec(t, "step base", got[Step].BasePosition, geom.V(0, 20, 0))
	assertVec(t, "step1 base", got[Step1].BasePosition, geom.V(0, 20, 0))
}

func TestFitUsesEffectiveCount(t *testing.T) {
	seed := fitSeed()
	// round(5*2) = 10 steps, span = -90.
	got, _ := Fit(DefaultSettings(seed), seed, 2.0, FitOptions{})
	assertVec(t, "base", got[Base].BasePosition, geom.V(45, 0, 0))
}

func TestFitWithoutStep(t *testing.T) {
	settings := Settings{Top: {Count: 1, BasePosition: geom.V(1, 1, 1)}}
	got, changed := Fit(settings, Seed{}, 1.0, FitOptions{})
	if changed {
		t.Error("nothing to fit, expected no change")
	}
	if got[Top] != settings[Top] {
		t.Errorf("top = %+v", got[Top])
	}
}
