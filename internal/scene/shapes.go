// Package scene provides ray intersection backends and material densities
// that feed the occlusion sampler.
package scene

import (
	gomath "math"

	"github.com/Faultbox/thermoforge/pkg/math"
)

// Ray is a segment start plus a normalized direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// Shape is one piece of scene geometry.
type Shape interface {
	// IntersectRay returns the distance along r to the first surface, if any.
	IntersectRay(r Ray, maxDist float64) (t float64, hit bool)
	MaterialName() string
}

// Channeled is implemented by shapes that answer traces on one channel
// only. An empty channel answers every trace.
type Channeled interface {
	TraceChannel() string
}

// Detailer is implemented by shapes that have a slower, more precise
// variant used for complex traces.
type Detailer interface {
	Detailed() Shape
}

// BoxShape is an oriented solid box.
type BoxShape struct {
	Transform math.Transform
	Extent    math.Vec3 // half extents in local space
	Material  string
	Channel   string
}

// MaterialName implements Shape.
func (b BoxShape) MaterialName() string { return b.Material }

// TraceChannel implements Channeled.
func (b BoxShape) TraceChannel() string { return b.Channel }

// IntersectRay runs a slab test in the box's local frame. A ray starting
// inside the box reports the exit distance.
func (b BoxShape) IntersectRay(r Ray, maxDist float64) (float64, bool) {
	o := b.Transform.InverseTransformPosition(r.Origin)
	d := b.Transform.Rotation.Inverse().Rotate(r.Direction)

	tmin := -gomath.MaxFloat64
	tmax := gomath.MaxFloat64
	for axis := 0; axis < 3; axis++ {
		oa, da, ext := o.Axis(axis), d.Axis(axis), b.Extent.Axis(axis)
		if da == 0 {
			if oa < -ext || oa > ext {
				return 0, false
			}
			continue
		}
		t1 := (-ext - oa) / da
		t2 := (ext - oa) / da
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = gomath.Max(tmin, t1)
		tmax = gomath.Min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	t := tmin
	if t < 0 {
		t = tmax
	}
	if t > maxDist {
		return 0, false
	}
	return t, true
}

// PlaneShape is an infinite plane. Rays hit it from either side.
type PlaneShape struct {
	Point    math.Vec3
	Normal   math.Vec3
	Material string
	Channel  string
}

// MaterialName implements Shape.
func (p PlaneShape) MaterialName() string { return p.Material }

// TraceChannel implements Channeled.
func (p PlaneShape) TraceChannel() string { return p.Channel }

// IntersectRay intersects r with the plane. Rays parallel to it miss.
func (p PlaneShape) IntersectRay(r Ray, maxDist float64) (float64, bool) {
	n := p.Normal.Normalize()
	denom := n.Dot(r.Direction)
	if gomath.Abs(denom) < 1e-9 {
		return 0, false
	}
	t := p.Point.Sub(r.Origin).Dot(n) / denom
	if t < 0 || t > maxDist {
		return 0, false
	}
	return t, true
}

// SphereShape is a solid sphere.
type SphereShape struct {
	Center   math.Vec3
	Radius   float64
	Material string
	Channel  string
}

// MaterialName implements Shape.
func (s SphereShape) MaterialName() string { return s.Material }

// TraceChannel implements Channeled.
func (s SphereShape) TraceChannel() string { return s.Channel }

// IntersectRay solves the ray/sphere quadratic.
func (s SphereShape) IntersectRay(r Ray, maxDist float64) (float64, bool) {
	oc := r.Origin.Sub(s.Center)
	b := oc.Dot(r.Direction)
	c := oc.LengthSq() - s.Radius*s.Radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := gomath.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 || t > maxDist {
		return 0, false
	}
	return t, true
}

// DistanceFunc is a signed distance function: negative inside geometry.
type DistanceFunc func(p math.Vec3) float64

// SDFShape sphere-traces a signed distance function.
type SDFShape struct {
	Distance DistanceFunc
	Material string
	Channel  string
	MaxSteps int     // default 128
	Epsilon  float64 // surface threshold, default 0.01
}

// MaterialName implements Shape.
func (s SDFShape) MaterialName() string { return s.Material }

// TraceChannel implements Channeled.
func (s SDFShape) TraceChannel() string { return s.Channel }

// Detailed implements Detailer: four times the steps and a tenth of the
// surface threshold.
func (s SDFShape) Detailed() Shape {
	steps, eps := s.limits()
	s.MaxSteps = steps * 4
	s.Epsilon = eps / 10
	return s
}

func (s SDFShape) limits() (steps int, eps float64) {
	steps = s.MaxSteps
	if steps <= 0 {
		steps = 128
	}
	eps = s.Epsilon
	if eps <= 0 {
		eps = 0.01
	}
	return steps, eps
}

// IntersectRay marches along r until the distance drops below Epsilon.
func (s SDFShape) IntersectRay(r Ray, maxDist float64) (float64, bool) {
	if s.Distance == nil {
		return 0, false
	}
	steps, eps := s.limits()

	t := 0.0
	for i := 0; i < steps && t <= maxDist; i++ {
		d := s.Distance(r.Origin.Add(r.Direction.Scale(t)))
		if d < eps {
			return t, true
		}
		t += d
	}
	return 0, false
}

// SphereSDF returns the signed distance function of a sphere.
func SphereSDF(center math.Vec3, radius float64) DistanceFunc {
	return func(p math.Vec3) float64 {
		return p.Distance(center) - radius
	}
}

// HalfSpaceSDF returns the signed distance function of the half space below
// the plane through point with the given normal.
func HalfSpaceSDF(point, normal math.Vec3) DistanceFunc {
	n := normal.Normalize()
	return func(p math.Vec3) float64 {
		return p.Sub(point).Dot(n)
	}
}
