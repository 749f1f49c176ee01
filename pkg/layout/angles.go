package layout

import (
	"fmt"
	"math"

	"github.com/matzehuels/stairbuilder/pkg/geom"
)

// AngleSide selects the optional end piece at the bottom or top of the run.
type AngleSide string

const (
	AngleNone  AngleSide = "none"
	AngleLeft  AngleSide = "left"
	AngleRight AngleSide = "right"
)

// ParseAngleSide parses a side name. The empty string is AngleNone.
func ParseAngleSide(s string) (AngleSide, error) {
	switch AngleSide(s) {
	case "", AngleNone:
		return AngleNone, nil
	case AngleLeft, AngleRight:
		return AngleSide(s), nil
	}
	return AngleNone, fmt.Errorf("invalid angle side %q (want none, left, or right)", s)
}

// Offsets applied to end pieces, in model units.
const (
	angleZOffset      = 29.1
	bottomYOffset     = -21.4
	bottomXOffset     = 13.0
	bottomRightXNudge = 47.0
	bottomRightZNudge = -58.1
	topRightXNudge    = 18.0
	topRightYNudge    = -8.0
	topRightZNudge    = 18.9
	topLeftXNudge     = 18.0
	topLeftYNudge     = -8.0
	topLeftZNudge     = -29.3
)

// AnglePiece is a placed end piece.
type AnglePiece struct {
	End      string    `json:"end"` // "bottom" or "top"
	Side     AngleSide `json:"side"`
	Asset    string    `json:"asset"`
	Position geom.Vec3 `json:"position"`
	// RotationY is the rotation about the vertical axis, in radians.
	RotationY float64 `json:"rotationY"`
}

func angleAsset(side AngleSide, end string) string {
	return fmt.Sprintf("/models/limon_central/angle_%s_%s_side.glb", side, end)
}

// BottomAngle places the bottom end piece on the slot just before the first
// step. ok is false when side is AngleNone.
func (e Engine) BottomAngle(side AngleSide) (piece AnglePiece, ok bool) {
	if side != AngleLeft && side != AngleRight {
		return AnglePiece{}, false
	}
	base := e.Position(Step, -1)

	offset := geom.V(bottomXOffset, bottomYOffset, angleZOffset)
	rotation := math.Pi/2 + math.Pi
	if side == AngleRight {
		offset = geom.V(bottomXOffset+bottomRightXNudge, bottomYOffset, angleZOffset+bottomRightZNudge)
		rotation = math.Pi / 2
	}

	return AnglePiece{
		End:       "bottom",
		Side:      side,
		Asset:     angleAsset(side, "bottom"),
		Position:  base.Add(offset),
		RotationY: rotation,
	}, true
}

// TopAngle places the top end piece on the slot just after the last step.
// ok is false when side is AngleNone.
func (e Engine) TopAngle(side AngleSide) (piece AnglePiece, ok bool) {
	if side != AngleLeft && side != AngleRight {
		return AnglePiece{}, false
	}
	base := e.Position(Step, e.EffectiveCount(Step))

	offset := geom.V(topRightXNudge, topRightYNudge, angleZOffset+topRightZNudge)
	rotation := 0.0
	if side == AngleLeft {
		offset = geom.V(topLeftXNudge, topLeftYNudge, angleZOffset+topLeftZNudge)
		rotation = math.Pi * 2
	}

	return AnglePiece{
		End:       "top",
		Side:      side,
		Asset:     angleAsset(side, "top"),
		Position:  base.Add(offset),
		RotationY: rotation,
	}, true
}

// BottomAngle places the bottom end piece using the default reporter.
func BottomAngle(settings Settings, multiplier float64, side AngleSide) (AnglePiece, bool) {
	return Engine{Settings: settings, Multiplier: multiplier}.BottomAngle(side)
}

// TopAngle places the top end piece using the default reporter.
func TopAngle(settings Settings, multiplier float64, side AngleSide) (AnglePiece, bool) {
	return Engine{Settings: settings, Multiplier: multiplier}.TopAngle(side)
}
