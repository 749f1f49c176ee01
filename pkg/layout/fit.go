package layout

import "github.com/matzehuels/stairbuilder/pkg/geom"

// VectorEpsilon is the tolerance used when deciding whether a fitted vector
// differs from the current one.
const VectorEpsilon = 1e-4

// Fit tuning.
const (
	fitFudge        = 1.0
	fitHorizontal   = 0.0
	bottomAngleRise = 20.0
)

// FitOptions controls Fit.
type FitOptions struct {
	// BottomAngle raises the run to make room for a bottom end piece.
	BottomAngle AngleSide
}

// Fit recomputes the anchors of a run from the model seed and returns the
// adjusted copy plus whether anything changed by more than VectorEpsilon.
//
//   - step uses the seed step spacing and sits at (0, rise, 0), where rise is
//     20 when a bottom end piece is selected;
//   - step1 shares the step spacing in x and y with z flattened, at the same
//     base position, when both arrays exist;
//   - base is shifted so the run is centred on the seed step position.
//
// The input is never modified.
func Fit(settings Settings, seed Seed, multiplier float64, opts FitOptions) (Settings, bool) {
	next := settings.Clone()
	changed := false

	stepSeed := seed.Positions[Step]
	spacing := geom.V(seed.StepSpacing[0]*fitFudge, seed.StepSpacing[1]*fitFudge, seed.StepSpacing[2])

	var rise float64
	if opts.BottomAngle == AngleLeft || opts.BottomAngle == AngleRight {
		rise = bottomAngleRise
	}

	n := 1
	if step, ok := next[Step]; ok {
		n = max(1, effectiveCount(Step, step, multiplier))
	}
	span := spacing[0] * float64(n-1)
	anchorX := (stepSeed[0] + fitHorizontal) - span/2

	if base, ok := next[Base]; ok {
		pos := geom.V(anchorX, 0, 0)
		if !base.BasePosition.Close(pos, VectorEpsilon) {
			base.BasePosition = pos
			next[Base] = base
			changed = true
		}
	}

	stepPos := geom.V(0, rise, 0)
	step, hasStep := next[Step]
	if hasStep {
		if !step.Spacing.Close(spacing, VectorEpsilon) || !step.BasePosition.Close(stepPos, VectorEpsilon) {
			step.Spacing = spacing
			step.BasePosition = stepPos
			next[Step] = step
			changed = true
		}
	}

	if tread, ok := next[Step1]; ok && hasStep {
		treadSpacing := geom.V(spacing[0], spacing[1], 0)
		if !tread.Spacing.Close(treadSpacing, VectorEpsilon) || !tread.BasePosition.Close(stepPos, VectorEpsilon) {
			tread.Spacing = treadSpacing
			tread.BasePosition = stepPos
			next[Step1] = tread
			changed = true
		}
	}

	if !changed {
		return settings, false
	}
	return next, true
}
