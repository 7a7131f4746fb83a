package sources

import (
	"sync"
	"weak"
)

// Registry is a set of weak references to sources, keyed by identity.
// Sources that are garbage collected or detached are dropped on the next
// compaction; enumeration skips them in the meantime. A source never needs
// the registry lock to go away.
type Registry struct {
	mu   sync.Mutex
	refs map[weak.Pointer[Source]]struct{}

	lmu       sync.Mutex
	listeners map[uint64]func()
	nextID    uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		refs:      make(map[weak.Pointer[Source]]struct{}),
		listeners: make(map[uint64]func()),
	}
}

// Register adds s and notifies listeners if it was not present.
// Nil or detached sources are ignored. Registering a source that is already
// present fires nothing unless compaction dropped a collected source.
func (r *Registry) Register(s *Source) {
	if r == nil || s == nil || !s.Attached() {
		return
	}
	ref := weak.Make(s)
	r.mu.Lock()
	_, present := r.refs[ref]
	r.refs[ref] = struct{}{}
	changed := r.compactLocked() > 0 || !present
	r.mu.Unlock()
	if changed {
		r.notify()
	}
}

// Unregister removes s and notifies listeners if membership changed.
// Unregistering a source that was never registered fires nothing.
func (r *Registry) Unregister(s *Source) {
	if r == nil || s == nil {
		return
	}
	ref := weak.Make(s)
	r.mu.Lock()
	_, present := r.refs[ref]
	delete(r.refs, ref)
	changed := r.compactLocked() > 0 || present
	r.mu.Unlock()
	if changed {
		r.notify()
	}
}

// MarkDirty notifies listeners that s changed without touching membership.
func (r *Registry) MarkDirty(*Source) {
	if r == nil {
		return
	}
	r.notify()
}

// Compact drops references whose source is gone or detached.
func (r *Registry) Compact() {
	r.mu.Lock()
	r.compactLocked()
	r.mu.Unlock()
}

func (r *Registry) compactLocked() (dropped int) {
	for ref := range r.refs {
		if s := ref.Value(); s == nil || !s.Attached() {
			delete(r.refs, ref)
			dropped++
		}
	}
	return dropped
}

// Count returns the number of live sources.
func (r *Registry) Count() int {
	return len(r.All())
}

// All returns strong references to the live sources. Order is unspecified.
func (r *Registry) All() []*Source {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Source, 0, len(r.refs))
	for ref := range r.refs {
		if s := ref.Value(); s != nil && s.Attached() {
			out = append(out, s)
		}
	}
	return out
}

// Clear removes every reference without notifying.
func (r *Registry) Clear() {
	r.mu.Lock()
	clear(r.refs)
	r.mu.Unlock()
}

// OnChanged registers fn to run synchronously on the calling goroutine
// after a membership change or a MarkDirty. The returned func removes it.
func (r *Registry) OnChanged(fn func()) (cancel func()) {
	r.lmu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.lmu.Unlock()

	return func() {
		r.lmu.Lock()
		delete(r.listeners, id)
		r.lmu.Unlock()
	}
}

func (r *Registry) notify() {
	r.lmu.Lock()
	fns := make([]func(), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.lmu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
