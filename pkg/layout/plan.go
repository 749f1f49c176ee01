package layout

import "github.com/matzehuels/stairbuilder/pkg/geom"

// TreadYNudge lifts every tread placement slightly above its support step.
const TreadYNudge = 1.5

// renderOrder lists the components a stair draws from its settings. Other
// ids, such as "angle", are drawn as end pieces or not at all.
var renderOrder = []string{Base, Step, Step1, Top}

// Placement is one rendered instance of a component.
type Placement struct {
	Component string    `json:"component"`
	Index     int       `json:"index"`
	Position  geom.Vec3 `json:"position"`
}

// InstanceCount returns how many instances of id are drawn. The step and
// tread arrays always draw EffectiveCount instances, enabled or not, and
// draw nothing when the count rounds to zero. Other components draw
// EffectiveCount when enabled and a single instance otherwise.
func (e Engine) InstanceCount(id string) int {
	cs, ok := e.Settings[id]
	if !ok {
		e.report(missingSettings(id))
		return 0
	}
	if id == Step || id == Step1 || cs.Enabled {
		return max(0, effectiveCount(id, cs, e.Multiplier))
	}
	return 1
}

// DrawnIDs returns the components drawn from settings, in render order.
// A bottom end piece replaces the base, and a top end piece replaces a
// disabled top.
func (e Engine) DrawnIDs(bottom, top AngleSide) []string {
	var ids []string
	for _, id := range renderOrder {
		cs, ok := e.Settings[id]
		if !ok {
			continue
		}
		if id == Base && hasPiece(bottom) {
			continue
		}
		if id == Top && hasPiece(top) && !cs.Enabled {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func hasPiece(side AngleSide) bool {
	return side == AngleLeft || side == AngleRight
}

// Instances expands the given components into placements, in the order
// given. With no ids the components of DrawnIDs without end pieces are
// expanded. Unknown ids are reported and skipped. Tread placements are
// lifted by TreadYNudge.
func (e Engine) Instances(ids ...string) []Placement {
	if len(ids) == 0 {
		ids = e.DrawnIDs(AngleNone, AngleNone)
	}
	var out []Placement
	for _, id := range ids {
		n := e.InstanceCount(id)
		for i := range n {
			pos := e.Position(id, i)
			if id == Step1 {
				pos = pos.Add(geom.V(0, TreadYNudge, 0))
			}
			out = append(out, Placement{Component: id, Index: i, Position: pos})
		}
	}
	return out
}

// Instances expands settings into placements using the default reporter.
func Instances(settings Settings, multiplier float64, ids ...string) []Placement {
	return Engine{Settings: settings, Multiplier: multiplier}.Instances(ids...)
}
