package math

import "math"

// Transform is a rigid frame: rotation followed by translation.
type Transform struct {
	Location Vec3
	Rotation Quat
}

// NewTransform creates a transform from a location and rotation.
func NewTransform(loc Vec3, rot Quat) Transform {
	return Transform{Location: loc, Rotation: rot.Normalize()}
}

// TransformIdentity returns the identity frame.
func TransformIdentity() Transform {
	return Transform{Rotation: QuatIdentity()}
}

// TransformPosition maps a local point into world space.
func (t Transform) TransformPosition(local Vec3) Vec3 {
	return t.Rotation.Rotate(local).Add(t.Location)
}

// InverseTransformPosition maps a world point into local space.
func (t Transform) InverseTransformPosition(world Vec3) Vec3 {
	return t.Rotation.Inverse().Rotate(world.Sub(t.Location))
}

// Inverse returns the inverse frame.
func (t Transform) Inverse() Transform {
	inv := t.Rotation.Inverse()
	return Transform{Location: inv.Rotate(t.Location).Scale(-1), Rotation: inv}
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max Vec3
}

// EmptyBox returns a box that contains nothing; Expand grows it.
func EmptyBox() Box {
	inf := math.Inf(1)
	return Box{Min: V3(inf, inf, inf), Max: V3(-inf, -inf, -inf)}
}

// BoxFromCenter returns the box centered at c with half extents e.
func BoxFromCenter(c, e Vec3) Box {
	return Box{Min: c.Sub(e), Max: c.Add(e)}
}

// IsEmpty reports whether the box has a negative extent on any axis.
func (b Box) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Expand returns b grown to include p.
func (b Box) Expand(p Vec3) Box {
	return Box{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Contains reports whether p lies inside b (faces inclusive).
func (b Box) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Corners returns the eight corners of b.
func (b Box) Corners() [8]Vec3 {
	return [8]Vec3{
		V3(b.Min.X, b.Min.Y, b.Min.Z),
		V3(b.Min.X, b.Min.Y, b.Max.Z),
		V3(b.Min.X, b.Max.Y, b.Min.Z),
		V3(b.Min.X, b.Max.Y, b.Max.Z),
		V3(b.Max.X, b.Min.Y, b.Min.Z),
		V3(b.Max.X, b.Min.Y, b.Max.Z),
		V3(b.Max.X, b.Max.Y, b.Min.Z),
		V3(b.Max.X, b.Max.Y, b.Max.Z),
	}
}

// TransformBox returns the world AABB enclosing local box b placed by t.
func TransformBox(t Transform, b Box) Box {
	out := EmptyBox()
	for _, c := range b.Corners() {
		out = out.Expand(t.TransformPosition(c))
	}
	return out
}
