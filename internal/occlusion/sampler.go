// Package occlusion turns single-ray scene intersections into permeability
// scalars using a Beer–Lambert attenuation law.
package occlusion

import (
	gomath "math"

	"github.com/Faultbox/thermoforge/pkg/math"
)

// Hit describes the first surface a ray struck.
type Hit struct {
	Distance float64
	Point    math.Vec3
	Material string // empty when the surface carries no material
}

// Intersector casts a segment from origin to end and reports the first hit.
// Implementations need not be safe for concurrent use unless a bake runs
// with more than one worker.
type Intersector interface {
	Intersect(origin, end math.Vec3) (Hit, bool)
}

// TraceConfigurer is implemented by intersection backends that can filter
// geometry by collision channel and trace detailed geometry.
type TraceConfigurer interface {
	SetTrace(channel string, detailed bool)
}

// DensityResolver maps a material descriptor to a mass density in kg/m³.
// The same concurrency rule as Intersector applies.
type DensityResolver interface {
	DensityOf(material string) (float64, bool)
}

// Settings holds the attenuation constants.
type Settings struct {
	FaceThicknessFactor float64
	Coefficient         float64 // k in exp(-k * rho * Lfrac)
	UseMaterialDensity  bool
	TreatMissingAsAir   bool
	UnknownHitDensity   float64
	AirDensity          float64
}

// Sampler issues occlusion rays against a scene. It never mutates the scene
// or the density resolver.
type Sampler struct {
	Scene     Intersector
	Densities DensityResolver
	Settings  Settings
}

// NewSampler creates a sampler.
func NewSampler(scene Intersector, densities DensityResolver, s Settings) *Sampler {
	return &Sampler{Scene: scene, Densities: densities, Settings: s}
}

// Permeability returns exp(-k*rho*lfrac) clamped to [0, 1].
func Permeability(rho, lfrac, k float64) float64 {
	return math.Clamp01(gomath.Exp(-k * rho * lfrac))
}

// AmbientRay casts from p along dir for maxLen and treats a hit as one thin
// surface of FaceThicknessFactor. A miss returns exactly 1.
func (s *Sampler) AmbientRay(p, dir math.Vec3, maxLen float64) float64 {
	if s == nil || s.Scene == nil {
		return 1
	}
	hit, ok := s.Scene.Intersect(p, p.Add(dir.Normalize().Scale(maxLen)))
	if !ok {
		return 1
	}
	return Permeability(s.density(hit), s.Settings.FaceThicknessFactor, s.Settings.Coefficient)
}

// Between casts from a to b. The optical path grows with the span measured
// in cells, so longer spans reflect more accumulated material.
func (s *Sampler) Between(a, b math.Vec3, cellSize float64) float64 {
	if s == nil || s.Scene == nil {
		return 1
	}
	hit, ok := s.Scene.Intersect(a, b)
	if !ok {
		return 1
	}
	cell := gomath.Max(1, cellSize)
	lfrac := (a.Distance(b) / cell) * s.Settings.FaceThicknessFactor
	return Permeability(s.density(hit), lfrac, s.Settings.Coefficient)
}

func (s *Sampler) density(hit Hit) float64 {
	if s.Settings.UseMaterialDensity && s.Densities != nil && hit.Material != "" {
		if rho, ok := s.Densities.DensityOf(hit.Material); ok {
			return gomath.Max(0, rho)
		}
	}
	if s.Settings.TreatMissingAsAir {
		return s.Settings.AirDensity
	}
	return s.Settings.UnknownHitDensity
}
