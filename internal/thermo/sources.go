package thermo

import "github.com/Faultbox/thermoforge/internal/sources"

// RegisterSource adds s to the world. The engine does not keep s alive.
func (e *Engine) RegisterSource(s *sources.Source) {
	if e == nil {
		return
	}
	e.registry.Register(s)
}

// UnregisterSource removes s.
func (e *Engine) UnregisterSource(s *sources.Source) {
	if e == nil {
		return
	}
	e.registry.Unregister(s)
}

// MarkSourceDirty tells listeners that s moved or changed.
func (e *Engine) MarkSourceDirty(s *sources.Source) {
	if e == nil {
		return
	}
	e.registry.MarkDirty(s)
}

// SourceCount returns the number of live registered sources.
func (e *Engine) SourceCount() int {
	if e == nil {
		return 0
	}
	return e.registry.Count()
}

// AllSources returns the live registered sources.
func (e *Engine) AllSources() []*sources.Source {
	if e == nil {
		return nil
	}
	return e.registry.All()
}

// OnSourcesChanged registers fn to run when source membership changes or a
// source is marked dirty. The returned func unregisters it.
func (e *Engine) OnSourcesChanged(fn func()) (cancel func()) {
	if e == nil {
		return func() {}
	}
	return e.registry.OnChanged(fn)
}
