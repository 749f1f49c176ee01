package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/stairbuilder/pkg/geom"
)

func angleSettings() Settings {
	return Settings{
		Base: {Enabled: true, Count: 1},
		Step: {Enabled: true, Count: 8, Spacing: geom.V(-10, 7, 0)},
	}
}

func TestBottomAngle(t *testing.T) {
	tests := []struct {
		side     AngleSide
		pos      geom.Vec3
		rotation float64
	}{
		{AngleLeft, geom.V(23, -28.4, 29.1), 3 * math.Pi / 2},
		{AngleRight, geom.V(70, -28.4, -29.0), math.Pi / 2},
	}
	for _, tt := range tests {
		t.Run(string(tt.side), func(t *testing.T) {
			piece, ok := BottomAngle(angleSettings(), 1.0, tt.side)
			if !ok {
				t.Fatal("expected a piece")
			}
			assertVec(t, "position", piece.Position, tt.pos)
			if math.Abs(piece.RotationY-tt.rotation) > eps {
				t.Errorf("rotation = %v, want %v", piece.RotationY, tt.rotation)
			}
			if piece.End != "bottom" || piece.Side != tt.side {
				t.Errorf("piece = %+v", piece)
			}
		})
	}
}

func TestTopAngle(t *testing.T) {
	tests := []struct {
		side     AngleSide
		pos      geom.Vec3
		rotation float64
	}{
		{AngleRight, geom.V(-62, 48, 48), 0},
		{AngleLeft, geom.V(-62, 48, -0.2), 2 * math.Pi},
	}
	for _, tt := range tests {
		t.Run(string(tt.side), func(t *testing.T) {
			piece, ok := TopAngle(angleSettings(), 1.0, tt.side)
			if !ok {
				t.Fatal("expected a piece")
			}
			assertVec(t, "position", piece.Position, tt.pos)
			if math.Abs(piece.RotationY-tt.rotation) > eps {
				t.Errorf("rotation = %v, want %v", piece.RotationY, tt.rotation)
			}
			if piece.Asset != "/models/limon_central/angle_"+string(tt.side)+"_top_side.glb" {
				t.Errorf("asset = %q", piece.Asset)
			}
		})
	}
}

func TestTopAngleTracksMultiplier(t *testing.T) {
	// round(8*0.5) = 4 steps, so the piece sits at slot 4.
	piece, _ := TopAngle(angleSettings(), 0.5, AngleRight)
	assertVec(t, "position", piece.Position, geom.V(-40+18, 28-8, 48))
}

func TestAngleNone(t *testing.T) {
	if _, ok := BottomAngle(angleSettings(), 1.0, AngleNone); ok {
		t.Error("BottomAngle(none) should not place a piece")
	}
	if _, ok := TopAngle(angleSettings(), 1.0, ""); ok {
		t.Error("TopAngle(\"\") should not place a piece")
	}
}

func TestParseAngleSide(t *testing.T) {
	tests := []struct {
		in      string
		want    AngleSide
		wantErr bool
	}{
		{"", AngleNone, false},
		{"none", AngleNone, false},
		{"left", AngleLeft, false},
		{"right", AngleRight, false},
		{"up", AngleNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAngleSide(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
