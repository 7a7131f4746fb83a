// Package volume models the oriented regions that get baked into fields.
package volume

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/Faultbox/thermoforge/internal/field"
	"github.com/Faultbox/thermoforge/pkg/math"
)

// Volume is an oriented box (or an unbounded region) bound to a grid.
// Geometry is edited by tooling; the baked field is swapped atomically so
// readers see either the old field or the new one.
type Volume struct {
	ID        string
	Name      string
	Transform math.Transform
	Extent    math.Vec3 // local half extents
	Unbounded bool      // matches every point

	// CellSize overrides the configured default when positive.
	CellSize float64
	// GridOrigin pins the grid origin independently of Transform.Location so
	// that moving the box does not shift cell alignment.
	GridOrigin *math.Vec3

	baked atomic.Pointer[field.Field]
}

// New creates a bounded volume with a fresh ID.
func New(name string, t math.Transform, extent math.Vec3) *Volume {
	return &Volume{
		ID:        uuid.New().String(),
		Name:      name,
		Transform: t,
		Extent:    extent,
	}
}

// StableID derives a deterministic volume ID from a name.
func StableID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("thermoforge:volume:"+name)).String()
}

// NewUnbounded creates a volume that contains every point.
func NewUnbounded(name string, t math.Transform) *Volume {
	v := New(name, t, math.Vec3{})
	v.Unbounded = true
	return v
}

// EffectiveCellSize returns CellSize, or def when unset.
func (v *Volume) EffectiveCellSize(def float64) float64 {
	if v.CellSize > 0 {
		return v.CellSize
	}
	return def
}

// EffectiveGridOrigin returns GridOrigin, or the volume location when unset.
func (v *Volume) EffectiveGridOrigin() math.Vec3 {
	if v.GridOrigin != nil {
		return *v.GridOrigin
	}
	return v.Transform.Location
}

// Contains reports whether p lies in the volume's local box.
func (v *Volume) Contains(p math.Vec3) bool {
	if v == nil {
		return false
	}
	if v.Unbounded {
		return true
	}
	local := v.Transform.InverseTransformPosition(p)
	return math.BoxFromCenter(math.Vec3{}, v.Extent).Contains(local)
}

// WorldBounds returns the world AABB of the volume. Unbounded volumes bake
// a cube of half size unboundedExtent around their location.
func (v *Volume) WorldBounds(unboundedExtent float64) math.Box {
	if v.Unbounded {
		e := math.V3(unboundedExtent, unboundedExtent, unboundedExtent)
		return math.BoxFromCenter(v.Transform.Location, e)
	}
	return math.TransformBox(v.Transform, math.BoxFromCenter(math.Vec3{}, v.Extent))
}

// GridFrame returns the grid this volume bakes on.
func (v *Volume) GridFrame(defaultCell, unboundedExtent float64) field.GridFrame {
	frame := field.Frame{
		Origin:   v.EffectiveGridOrigin(),
		Rotation: v.Transform.Rotation,
		CellSize: v.EffectiveCellSize(defaultCell),
	}
	return field.NewGridFrame(v.WorldBounds(unboundedExtent), frame)
}

// Field returns the current baked field, or nil.
func (v *Volume) Field() *field.Field {
	if v == nil {
		return nil
	}
	return v.baked.Load()
}

// SetField publishes f and returns the field it replaced.
func (v *Volume) SetField(f *field.Field) *field.Field {
	return v.baked.Swap(f)
}

// HasField reports whether a usable field is published.
func (v *Volume) HasField() bool {
	return v.Field() != nil
}
