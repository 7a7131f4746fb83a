// Package math provides the vector, rotation and frame types used by the
// field baker and the query engine.
package math

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a 3D vector in world units (centimeters).
type Vec3 r3.Vec

// V3 is shorthand for Vec3{x, y, z}.
func V3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// R3 returns the gonum representation of v.
func (v Vec3) R3() r3.Vec {
	return r3.Vec(v)
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3(r3.Add(r3.Vec(v), r3.Vec(other)))
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3(r3.Sub(r3.Vec(v), r3.Vec(other)))
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3(r3.Scale(s, r3.Vec(v)))
}

// Div returns v / s. Division by zero yields the zero vector.
func (v Vec3) Div(s float64) Vec3 {
	if s == 0 {
		return Vec3{}
	}
	return v.Scale(1 / s)
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float64 {
	return r3.Dot(r3.Vec(v), r3.Vec(other))
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3(r3.Cross(r3.Vec(v), r3.Vec(other)))
}

// Length returns the magnitude.
func (v Vec3) Length() float64 {
	return r3.Norm(r3.Vec(v))
}

// LengthSq returns the squared magnitude.
func (v Vec3) LengthSq() float64 {
	return r3.Norm2(r3.Vec(v))
}

// Normalize returns a unit vector, or the zero vector for a zero input.
func (v Vec3) Normalize() Vec3 {
	if v.LengthSq() == 0 {
		return Vec3{}
	}
	return Vec3(r3.Unit(r3.Vec(v)))
}

// Distance returns the distance to another point.
func (v Vec3) Distance(other Vec3) float64 {
	return v.Sub(other).Length()
}

// DistanceSq returns the squared distance to another point.
func (v Vec3) DistanceSq(other Vec3) float64 {
	return v.Sub(other).LengthSq()
}

// Min returns the componentwise minimum.
func (v Vec3) Min(other Vec3) Vec3 {
	return Vec3{math.Min(v.X, other.X), math.Min(v.Y, other.Y), math.Min(v.Z, other.Z)}
}

// Max returns the componentwise maximum.
func (v Vec3) Max(other Vec3) Vec3 {
	return Vec3{math.Max(v.X, other.X), math.Max(v.Y, other.Y), math.Max(v.Z, other.Z)}
}

// Axis returns component i (0=X, 1=Y, 2=Z).
func (v Vec3) Axis(i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Clamp01 clamps x into [0, 1].
func Clamp01(x float64) float64 {
	return Clamp(x, 0, 1)
}

// Clamp clamps x into [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
