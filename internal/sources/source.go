// Package sources holds dynamic heat emitters and the weakly-referencing
// registry that composition enumerates.
package sources

import (
	"fmt"
	gomath "math"
	"strings"
	"sync"

	"github.com/Faultbox/thermoforge/pkg/math"
)

// Falloff selects how a source's delta decays with distance.
type Falloff int

// Falloff shapes.
const (
	FalloffConstant      Falloff = iota // full intensity inside Radius, zero outside
	FalloffLinear                       // linear to zero at Radius
	FalloffSmooth                       // smoothstep to zero at Radius
	FalloffInverseSquare                // intensity / (1 + (d/Radius)^2), no cutoff
)

// String returns the falloff name.
func (f Falloff) String() string {
	switch f {
	case FalloffConstant:
		return "constant"
	case FalloffLinear:
		return "linear"
	case FalloffSmooth:
		return "smooth"
	case FalloffInverseSquare:
		return "inverse_square"
	default:
		return fmt.Sprintf("Falloff(%d)", int(f))
	}
}

// ParseFalloff parses a falloff name. Empty means linear.
func ParseFalloff(s string) (Falloff, error) {
	switch strings.ToLower(s) {
	case "", "linear":
		return FalloffLinear, nil
	case "constant":
		return FalloffConstant, nil
	case "smooth":
		return FalloffSmooth, nil
	case "inverse_square", "inverse-square":
		return FalloffInverseSquare, nil
	}
	return 0, fmt.Errorf("unknown falloff %q", s)
}

// Source is a movable emitter owned by gameplay code. The registry only
// holds weak references to it. All methods are safe for concurrent use.
type Source struct {
	Name string

	mu        sync.RWMutex
	enabled   bool
	attached  bool
	location  math.Vec3
	intensity float64 // °C delta at the emitter
	radius    float64
	falloff   Falloff
}

// NewSource creates an enabled source attached to the world.
func NewSource(name string, loc math.Vec3, intensity, radius float64, falloff Falloff) *Source {
	return &Source{
		Name:      name,
		enabled:   true,
		attached:  true,
		location:  loc,
		intensity: intensity,
		radius:    radius,
		falloff:   falloff,
	}
}

// Enabled reports whether the source contributes to composition.
func (s *Source) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// SetEnabled toggles the source.
func (s *Source) SetEnabled(on bool) {
	s.mu.Lock()
	s.enabled = on
	s.mu.Unlock()
}

// Attached reports whether the source still belongs to a live world.
func (s *Source) Attached() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attached
}

// Detach marks the source as removed from its world. Registries drop
// detached sources on their next compaction.
func (s *Source) Detach() {
	s.mu.Lock()
	s.attached = false
	s.mu.Unlock()
}

// Location returns the current world position.
func (s *Source) Location() math.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.location
}

// SetLocation moves the source.
func (s *Source) SetLocation(p math.Vec3) {
	s.mu.Lock()
	s.location = p
	s.mu.Unlock()
}

// SetIntensity changes the delta at the emitter.
func (s *Source) SetIntensity(c float64) {
	s.mu.Lock()
	s.intensity = c
	s.mu.Unlock()
}

// Intensity returns the delta at the emitter.
func (s *Source) Intensity() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.intensity
}

// Radius returns the falloff radius.
func (s *Source) Radius() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.radius
}

// Falloff returns the falloff curve.
func (s *Source) Falloff() Falloff {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.falloff
}

// SampleAt returns the temperature delta in °C this source adds at p,
// before any occlusion.
func (s *Source) SampleAt(p math.Vec3) float64 {
	s.mu.RLock()
	loc, c, r, fo := s.location, s.intensity, s.radius, s.falloff
	s.mu.RUnlock()

	d := p.Distance(loc)
	if r <= 0 {
		if d == 0 {
			return c
		}
		return 0
	}
	switch fo {
	case FalloffConstant:
		if d <= r {
			return c
		}
		return 0
	case FalloffSmooth:
		x := math.Clamp01(1 - d/r)
		return c * x * x * (3 - 2*x)
	case FalloffInverseSquare:
		q := d / r
		return c / (1 + q*q)
	default:
		return c * gomath.Max(0, 1-d/r)
	}
}
