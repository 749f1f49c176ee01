package layout

import (
	"math"

	"github.com/matzehuels/stairbuilder/pkg/geom"
)

// Engine evaluates positions against one settings snapshot.
//
// An Engine holds no mutable state of its own; the same snapshot evaluated
// twice yields the same result. A nil Reporter uses [DefaultReporter].
type Engine struct {
	Settings   Settings
	Multiplier float64
	Reporter   Reporter
}

// NewEngine returns an engine over settings with the given global multiplier.
func NewEngine(settings Settings, multiplier float64) Engine {
	return Engine{Settings: settings, Multiplier: multiplier}
}

func (e Engine) report(d Diagnostic) {
	r := e.Reporter
	if r == nil {
		r = DefaultReporter()
	}
	r.Report(d)
}

// EffectiveCount returns the number of instances drawn for id.
func (e Engine) EffectiveCount(id string) int {
	cs, ok := e.Settings[id]
	if !ok {
		e.report(missingSettings(id))
		return 1
	}
	return effectiveCount(id, cs, e.Multiplier)
}

// EffectiveCountOf is EffectiveCount for an already-resolved record. A nil
// record counts as missing.
func (e Engine) EffectiveCountOf(id string, cs *ComponentSettings) int {
	if cs == nil {
		e.report(missingSettings(id))
		return 1
	}
	return effectiveCount(id, *cs, e.Multiplier)
}

func effectiveCount(id string, cs ComponentSettings, multiplier float64) int {
	if !IsArrayComponent(id) {
		if cs.Enabled {
			return cs.Count
		}
		return 1
	}
	return int(math.Round(float64(cs.Count) * multiplier))
}

// AutoPosition returns the anchor of id derived from the array it follows.
// A component that does not follow returns its own BasePosition.
func (e Engine) AutoPosition(id string) geom.Vec3 {
	cs, ok := e.Settings[id]
	if !ok {
		e.report(missingSettings(id))
		return geom.Zero
	}
	if !cs.FollowSteps {
		return cs.BasePosition
	}

	targetID := cs.FollowTarget()
	target, ok := e.Settings[targetID]
	if !ok {
		e.report(missingFollowTarget(id, targetID))
		return cs.BasePosition
	}

	n := effectiveCount(targetID, target, e.Multiplier)
	slot := n - 1
	if cs.PositionAtEnd {
		slot = n
	}
	return target.BasePosition.ScaleAdd(target.Spacing, float64(slot))
}

// Position returns the position of instance index of id. Any integer index is
// valid: -1 and EffectiveCount probe the slots just outside the array.
func (e Engine) Position(id string, index int) geom.Vec3 {
	anchor := e.Settings.BaseAnchor()

	cs, ok := e.Settings[id]
	if !ok {
		e.report(missingSettings(id))
		if id == Base {
			return geom.Zero
		}
		return anchor
	}

	var pos geom.Vec3
	if cs.Follows() {
		pos = e.AutoPosition(id)
	} else {
		pos = cs.BasePosition.ScaleAdd(cs.Spacing, float64(index))
	}

	if id == Base {
		return pos
	}
	return pos.Add(anchor)
}

// EffectiveCount returns the number of instances drawn for id, reporting to
// the default reporter.
//
// "base" and "top" are singletons: their Count is used as-is when enabled,
// otherwise exactly one instance is drawn. Every other component is an array
// whose Count is scaled by multiplier and rounded half away from zero. The
// result is not clamped; callers that need at least one instance wrap it in
// max(1, n). A missing record counts as 1.
func EffectiveCount(id string, settings Settings, multiplier float64) int {
	return Engine{Settings: settings, Multiplier: multiplier}.EffectiveCount(id)
}

// EffectiveCountOf is EffectiveCount for a single already-resolved record.
func EffectiveCountOf(id string, cs *ComponentSettings, multiplier float64) int {
	return Engine{Multiplier: multiplier}.EffectiveCountOf(id, cs)
}

// AutoPosition returns the anchor of a following component, reporting to the
// default reporter.
//
// With PositionAtEnd the anchor sits at slot n of the followed array (one
// past the last instance); otherwise at slot n-1, aligned with the last
// instance. A follow target that does not exist yields the component's own
// BasePosition.
func AutoPosition(id string, settings Settings, multiplier float64) geom.Vec3 {
	return Engine{Settings: settings, Multiplier: multiplier}.AutoPosition(id)
}

// Position returns the final position of instance index of id, reporting to
// the default reporter.
//
// A following component that is not itself enabled as an array uses
// AutoPosition; everything else is BasePosition + Spacing*index. The base
// component's BasePosition is then added as the global anchor, except for the
// base itself.
func Position(id string, index int, settings Settings, multiplier float64) geom.Vec3 {
	return Engine{Settings: settings, Multiplier: multiplier}.Position(id, index)
}
