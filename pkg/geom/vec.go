// Package geom provides the small vector type shared by the layout engine,
// the model catalog, and every serialization boundary.
//
// Vec3 is a fixed-length numeric triple so it round-trips through JSON, TOML,
// and YAML as a plain [x, y, z] array. Arithmetic is delegated to gonum's r3
// package.
package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a position or displacement in model space.
type Vec3 [3]float64

// Zero is the origin.
var Zero = Vec3{}

// V builds a Vec3 from its components.
func V(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// FromR3 converts a gonum vector.
func FromR3(p r3.Vec) Vec3 {
	return Vec3{p.X, p.Y, p.Z}
}

// R3 converts to a gonum vector.
func (v Vec3) R3() r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// X returns the first component.
func (v Vec3) X() float64 { return v[0] }

// Y returns the second component.
func (v Vec3) Y() float64 { return v[1] }

// Z returns the third component.
func (v Vec3) Z() float64 { return v[2] }

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return FromR3(r3.Add(v.R3(), w.R3()))
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return FromR3(r3.Sub(v.R3(), w.R3()))
}

// Scale returns v * f.
func (v Vec3) Scale(f float64) Vec3 {
	return FromR3(r3.Scale(f, v.R3()))
}

// ScaleAdd returns v + step*k, the position of slot k along a linear array
// anchored at v.
func (v Vec3) ScaleAdd(step Vec3, k float64) Vec3 {
	return v.Add(step.Scale(k))
}

// Norm returns the Euclidean length.
func (v Vec3) Norm() float64 {
	return r3.Norm(v.R3())
}

// Close reports whether every component of v and w differs by less than eps.
func (v Vec3) Close(w Vec3, eps float64) bool {
	return math.Abs(v[0]-w[0]) < eps &&
		math.Abs(v[1]-w[1]) < eps &&
		math.Abs(v[2]-w[2]) < eps
}

// String formats the vector as "(x, y, z)".
func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v[0], v[1], v[2])
}
