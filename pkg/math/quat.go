package math

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Quat is a unit quaternion describing a rotation.
type Quat r3.Rotation

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{Real: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	if axis.LengthSq() == 0 {
		return QuatIdentity()
	}
	return Quat(r3.NewRotation(angle, r3.Vec(axis)))
}

// Rotator is an orientation in degrees, Z-up.
// Yaw turns about Z, Pitch about Y, Roll about X; roll applies first.
type Rotator struct {
	Pitch float64 `yaml:"pitch"`
	Yaw   float64 `yaml:"yaw"`
	Roll  float64 `yaml:"roll"`
}

// IsZero reports whether r is the zero rotation.
func (r Rotator) IsZero() bool {
	return r.Pitch == 0 && r.Yaw == 0 && r.Roll == 0
}

// Quat converts r to a quaternion.
func (r Rotator) Quat() Quat {
	const deg2rad = math.Pi / 180
	yaw := QuatFromAxisAngle(V3(0, 0, 1), r.Yaw*deg2rad)
	pitch := QuatFromAxisAngle(V3(0, 1, 0), r.Pitch*deg2rad)
	roll := QuatFromAxisAngle(V3(1, 0, 0), r.Roll*deg2rad)
	return yaw.Mul(pitch).Mul(roll).Normalize()
}

// Mul returns q*other: other is applied first, then q.
func (q Quat) Mul(other Quat) Quat {
	return Quat(quat.Mul(quat.Number(q), quat.Number(other)))
}

// Normalize returns a unit quaternion. Degenerate input yields identity.
func (q Quat) Normalize() Quat {
	l := quat.Abs(quat.Number(q))
	if l < 1e-12 {
		return QuatIdentity()
	}
	return Quat(quat.Scale(1/l, quat.Number(q)))
}

// Inverse returns the inverse rotation.
func (q Quat) Inverse() Quat {
	return Quat(quat.Conj(quat.Number(q.Normalize())))
}

// Rotate rotates v by q.
func (q Quat) Rotate(v Vec3) Vec3 {
	if q == (Quat{}) {
		return v
	}
	return Vec3(r3.Rotation(q).Rotate(r3.Vec(v)))
}

// ApproxEqual reports whether q and other describe the same rotation within tol.
// q and -q are the same rotation.
func (q Quat) ApproxEqual(other Quat, tol float64) bool {
	a, b := q.Normalize(), other.Normalize()
	dot := a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
	return math.Abs(math.Abs(dot)-1) <= tol
}
