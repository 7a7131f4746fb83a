package occlusion

import "github.com/Faultbox/thermoforge/pkg/math"

// hemisphere is the fixed upward sample set used for sky openness. It must
// stay the same between bakes so results are reproducible.
var hemisphere = func() []math.Vec3 {
	base := []math.Vec3{
		{X: 0, Y: 0, Z: 1},
		{X: 0.5, Y: 0, Z: 0.866},
		{X: -0.5, Y: 0, Z: 0.866},
		{X: 0, Y: 0.5, Z: 0.866},
		{X: 0, Y: -0.5, Z: 0.866},
		{X: 0.707, Y: 0.707, Z: 0},
		{X: -0.707, Y: 0.707, Z: 0},
		{X: 0.707, Y: -0.707, Z: 0},
		{X: -0.707, Y: -0.707, Z: 0},
		{X: 0.923, Y: 0, Z: 0.382},
		{X: -0.923, Y: 0, Z: 0.382},
		{X: 0, Y: 0.923, Z: 0.382},
	}
	for i := range base {
		base[i] = base[i].Normalize()
	}
	return base
}()

// Hemisphere returns a copy of the sky sample directions.
func Hemisphere() []math.Vec3 {
	out := make([]math.Vec3, len(hemisphere))
	copy(out, hemisphere)
	return out
}

// SkyOpenness averages AmbientRay over the hemisphere set, clamped to [0, 1].
func (s *Sampler) SkyOpenness(p math.Vec3, maxLen float64) float64 {
	var sum float64
	for _, d := range hemisphere {
		sum += s.AmbientRay(p, d, maxLen)
	}
	return math.Clamp01(sum / float64(len(hemisphere)))
}
