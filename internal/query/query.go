// Package query finds the nearest baked cell to a world point.
package query

import (
	gomath "math"
	"time"

	"github.com/Faultbox/thermoforge/internal/field"
	"github.com/Faultbox/thermoforge/internal/volume"
	"github.com/Faultbox/thermoforge/pkg/math"
)

// GridHit is the result of a nearest-cell lookup. A zero GridHit with
// Found == false means nothing was found.
type GridHit struct {
	Found       bool
	Volume      *volume.Volume
	Field       *field.Field // the field the hit was read from
	GridIndex   [3]int
	LinearIndex int
	CellCenter  math.Vec3
	DistanceSq  float64
	CellSize    float64

	Sky    float64
	Wall   float64
	Indoor float64

	QueryTime    time.Time
	TemperatureC float64
}

// Miss returns the not-found result.
func Miss() GridHit {
	return GridHit{LinearIndex: -1, DistanceSq: gomath.MaxFloat64}
}

// NearestInVolume returns the cell of v's baked field nearest to p. It
// reports false when v has no usable field.
func NearestInVolume(v *volume.Volume, p math.Vec3) (GridHit, bool) {
	f := v.Field()
	if f == nil || f.Validate() != nil {
		return Miss(), false
	}
	g := f.Grid()
	x, y, z, ok := g.NearestCell(p)
	if !ok {
		return Miss(), false
	}
	i := g.Index(x, y, z)
	center := g.CellCenter(x, y, z)
	return GridHit{
		Found:       true,
		Volume:      v,
		Field:       f,
		GridIndex:   [3]int{x, y, z},
		LinearIndex: i,
		CellCenter:  center,
		DistanceSq:  center.DistanceSq(p),
		CellSize:    f.CellSize,
		Sky:         f.ScalarOr(field.SkyView, i, 1),
		Wall:        f.ScalarOr(field.WallPermeability, i, 1),
		Indoor:      f.ScalarOr(field.Indoorness, i, 0),
	}, true
}

// Locate prefers volumes that contain p: among those, the nearest cell
// wins. Only when no baked volume contains p does it fall back to
// NearestAny.
func Locate(vols []*volume.Volume, p math.Vec3) GridHit {
	best := Miss()
	for _, v := range vols {
		if !v.Contains(p) {
			continue
		}
		if hit, ok := NearestInVolume(v, p); ok && (!best.Found || hit.DistanceSq < best.DistanceSq) {
			best = hit
		}
	}
	if best.Found {
		return best
	}
	return NearestAny(vols, p)
}

// NearestAny returns the globally nearest baked cell, ignoring containment.
// Ties keep the earlier volume.
func NearestAny(vols []*volume.Volume, p math.Vec3) GridHit {
	best := Miss()
	for _, v := range vols {
		if hit, ok := NearestInVolume(v, p); ok && (!best.Found || hit.DistanceSq < best.DistanceSq) {
			best = hit
		}
	}
	return best
}
