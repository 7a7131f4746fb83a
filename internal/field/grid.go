// Package field holds the grid discretization of a volume and the baked
// per-cell scalar arrays produced for it.
package field

import (
	gomath "math"

	"github.com/Faultbox/thermoforge/pkg/math"
)

// Frame is the oriented coordinate system of a grid: origin, rotation and
// cell size. It must be identical at bake time and at query time.
type Frame struct {
	Origin   math.Vec3
	Rotation math.Quat
	CellSize float64
}

// Transform returns the frame as a rigid transform.
func (f Frame) Transform() math.Transform {
	return math.NewTransform(f.Origin, f.Rotation)
}

// GridFrame is a Frame plus the integer index range it covers.
// Cell (0,0,0) is the cell at grid-local index I0.
type GridFrame struct {
	Frame
	I0  [3]int
	Dim [3]int
}

// NewGridFrame computes the minimal index range of frame that covers the
// world-space box bounds. A non-positive cell size or empty box yields a
// grid with zero cells.
func NewGridFrame(bounds math.Box, frame Frame) GridFrame {
	g := GridFrame{Frame: frame}
	if frame.CellSize <= 0 || bounds.IsEmpty() {
		return g
	}

	tr := frame.Transform()
	local := math.EmptyBox()
	for _, c := range bounds.Corners() {
		local = local.Expand(tr.InverseTransformPosition(c))
	}

	cell := frame.CellSize
	for axis := 0; axis < 3; axis++ {
		i0 := int(gomath.Floor(local.Min.Axis(axis) / cell))
		i1 := int(gomath.Ceil(local.Max.Axis(axis)/cell)) - 1
		g.I0[axis] = i0
		g.Dim[axis] = max(0, i1-i0+1)
	}
	return g
}

// Count returns the number of cells.
func (g GridFrame) Count() int {
	return g.Dim[0] * g.Dim[1] * g.Dim[2]
}

// Empty reports whether any axis has zero cells.
func (g GridFrame) Empty() bool {
	return g.Dim[0] <= 0 || g.Dim[1] <= 0 || g.Dim[2] <= 0
}

// InBounds reports whether (x, y, z) addresses a cell of the grid.
func (g GridFrame) InBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < g.Dim[0] && y < g.Dim[1] && z < g.Dim[2]
}

// Index returns the linear index (z*dimY + y)*dimX + x.
func (g GridFrame) Index(x, y, z int) int {
	return (z*g.Dim[1]+y)*g.Dim[0] + x
}

// Coords inverts Index.
func (g GridFrame) Coords(i int) (x, y, z int) {
	plane := g.Dim[0] * g.Dim[1]
	z = i / plane
	rem := i - z*plane
	y = rem / g.Dim[0]
	x = rem - y*g.Dim[0]
	return x, y, z
}

// CellCenter returns the world-space center of cell (x, y, z). Every
// cell-center computation in bake and query goes through here.
func (g GridFrame) CellCenter(x, y, z int) math.Vec3 {
	c := g.CellSize
	local := math.V3(
		(float64(g.I0[0]+x)+0.5)*c,
		(float64(g.I0[1]+y)+0.5)*c,
		(float64(g.I0[2]+z)+0.5)*c,
	)
	return g.Transform().TransformPosition(local)
}

// CornerOrigin returns the world-space position of the min corner of cell (0,0,0).
func (g GridFrame) CornerOrigin() math.Vec3 {
	c := g.CellSize
	return g.Transform().TransformPosition(math.V3(
		float64(g.I0[0])*c, float64(g.I0[1])*c, float64(g.I0[2])*c))
}

// Rebased returns an equivalent grid whose frame origin sits at the min
// corner of cell (0,0,0), so I0 is zero. Cell centers are unchanged.
func (g GridFrame) Rebased() GridFrame {
	return GridFrame{
		Frame: Frame{Origin: g.CornerOrigin(), Rotation: g.Rotation, CellSize: g.CellSize},
		Dim:   g.Dim,
	}
}

// NearestCell returns the cell whose center is nearest to the world point,
// clamped into the grid. Centers sit at local c+0.5, so the nearest center
// is floor(local). This intentionally differs from rounding local to the
// nearest integer, which would pick a cell corner rather than a center.
// ok is false for an empty grid.
func (g GridFrame) NearestCell(p math.Vec3) (x, y, z int, ok bool) {
	if g.Empty() || g.CellSize <= 0 {
		return 0, 0, 0, false
	}
	local := g.Transform().InverseTransformPosition(p).Div(g.CellSize)
	var idx [3]int
	for axis := 0; axis < 3; axis++ {
		c := int(gomath.Floor(local.Axis(axis))) - g.I0[axis]
		idx[axis] = min(max(c, 0), g.Dim[axis]-1)
	}
	return idx[0], idx[1], idx[2], true
}

// Neighbors6 calls fn for each axis neighbor of (x, y, z) inside the grid.
func (g GridFrame) Neighbors6(x, y, z int, fn func(nx, ny, nz int)) {
	offsets := [6][3]int{
		{-1, 0, 0}, {1, 0, 0},
		{0, -1, 0}, {0, 1, 0},
		{0, 0, -1}, {0, 0, 1},
	}
	for _, o := range offsets {
		nx, ny, nz := x+o[0], y+o[1], z+o[2]
		if g.InBounds(nx, ny, nz) {
			fn(nx, ny, nz)
		}
	}
}
