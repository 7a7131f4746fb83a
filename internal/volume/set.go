package volume

import "sync"

// Set is the collection of volumes known to one world.
type Set struct {
	mu   sync.RWMutex
	vols []*Volume
}

// NewSet creates a set.
func NewSet(vols ...*Volume) *Set {
	s := &Set{}
	s.Add(vols...)
	return s
}

// Add appends volumes, ignoring nil and duplicates by ID.
func (s *Set) Add(vols ...*Volume) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vols {
		if v == nil || s.indexLocked(v.ID) >= 0 {
			continue
		}
		s.vols = append(s.vols, v)
	}
}

// Remove drops the volume with the given ID and reports whether it existed.
func (s *Set) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.vols = append(s.vols[:i], s.vols[i+1:]...)
	return true
}

// Get returns the volume with the given ID.
func (s *Set) Get(id string) (*Volume, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return nil, false
	}
	return s.vols[i], true
}

// ByName returns the first volume with the given name.
func (s *Set) ByName(name string) (*Volume, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.vols {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// All returns a snapshot of the volumes in insertion order.
func (s *Set) All() []*Volume {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Volume, len(s.vols))
	copy(out, s.vols)
	return out
}

// Baked returns the volumes that currently have a field.
func (s *Set) Baked() []*Volume {
	var out []*Volume
	for _, v := range s.All() {
		if v.HasField() {
			out = append(out, v)
		}
	}
	return out
}

// Len returns the number of volumes.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vols)
}

func (s *Set) indexLocked(id string) int {
	for i, v := range s.vols {
		if v.ID == id {
			return i
		}
	}
	return -1
}
