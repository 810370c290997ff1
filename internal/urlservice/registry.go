package urlservice

import (
	"reflect"
	"sync"
)

// Registry is the set of active handlers, enumerated in registration order.
//
// Registering the same comparable handler value twice returns a second token
// for the existing entry; either token removes it. Handlers of uncomparable
// types (HandlerFunc, for one) are always distinct entries.
type Registry struct {
	mu      sync.Mutex
	entries []*entry
}

type entry struct {
	handler Handler
}

type onceDisposable struct {
	once sync.Once
	fn   func()
}

func (d *onceDisposable) Dispose() {
	d.once.Do(d.fn)
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a handler and returns the token that removes it again.
func (r *Registry) Register(h Handler) Disposable {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e := r.find(h); e != nil {
		return DisposeFunc(func() { r.remove(e) })
	}

	e := &entry{handler: h}
	r.entries = append(r.entries, e)
	return DisposeFunc(func() { r.remove(e) })
}

// find returns the existing entry holding h; caller holds the lock.
func (r *Registry) find(h Handler) *entry {
	if h == nil || !reflect.TypeOf(h).Comparable() {
		return nil
	}
	for _, e := range r.entries {
		if e.handler == h {
			return e
		}
	}
	return nil
}

func (r *Registry) remove(target *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e == target {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return
		}
	}
}

// Snapshot returns a copy of the current handlers in registration order. Later
// registrations and removals do not affect the returned slice.
func (r *Registry) Snapshot() []Handler {
	r.mu.Lock()
	defer r.mu.Unlock()

	handlers := make([]Handler, len(r.entries))
	for i, e := range r.entries {
		handlers[i] = e.handler
	}
	return handlers
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
