package scene

import (
	"sync"

	"github.com/Faultbox/thermoforge/internal/occlusion"
	"github.com/Faultbox/thermoforge/pkg/math"
)

// Scene is a set of shapes answering segment queries. It is safe for
// concurrent use.
type Scene struct {
	mu       sync.RWMutex
	shapes   []Shape
	channel  string
	detailed bool
}

// New creates a scene from shapes.
func New(shapes ...Shape) *Scene {
	return &Scene{shapes: shapes}
}

// Add appends shapes.
func (s *Scene) Add(shapes ...Shape) {
	s.mu.Lock()
	s.shapes = append(s.shapes, shapes...)
	s.mu.Unlock()
}

// SetTrace implements occlusion.TraceConfigurer. With a non-empty channel,
// shapes tagged with a different channel are invisible to Intersect.
// detailed selects the detailed variant of shapes that have one.
func (s *Scene) SetTrace(channel string, detailed bool) {
	s.mu.Lock()
	s.channel = channel
	s.detailed = detailed
	s.mu.Unlock()
}

// Len returns the number of shapes.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shapes)
}

// Intersect implements occlusion.Intersector: the nearest hit along the
// segment origin→end wins. A zero-length segment never hits.
func (s *Scene) Intersect(origin, end math.Vec3) (occlusion.Hit, bool) {
	span := end.Sub(origin)
	length := span.Length()
	if length == 0 {
		return occlusion.Hit{}, false
	}
	r := Ray{Origin: origin, Direction: span.Div(length)}

	s.mu.RLock()
	defer s.mu.RUnlock()

	best := occlusion.Hit{Distance: length}
	found := false
	for _, sh := range s.shapes {
		if !s.traces(sh) {
			continue
		}
		if d, ok := sh.(Detailer); ok && s.detailed {
			sh = d.Detailed()
		}
		t, ok := sh.IntersectRay(r, length)
		if !ok || t > best.Distance || (found && t == best.Distance) {
			continue
		}
		best = occlusion.Hit{
			Distance: t,
			Point:    origin.Add(r.Direction.Scale(t)),
			Material: sh.MaterialName(),
		}
		found = true
	}
	return best, found
}

func (s *Scene) traces(sh Shape) bool {
	if s.channel == "" {
		return true
	}
	c, ok := sh.(Channeled)
	if !ok || c.TraceChannel() == "" {
		return true
	}
	return c.TraceChannel() == s.channel
}
