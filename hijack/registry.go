package hijack

import (
	"fmt"
	"sync"

	"github.com/kordless/mystic/types"
)

// registry is a process-wide, thread-safe FunctionIdentity -> *Wrapper
// map, per spec.md §4.G's "Registry".
type registry struct {
	mu       sync.RWMutex
	wrappers map[types.FunctionIdentity]*Wrapper
}

var defaultRegistry = &registry{wrappers: make(map[types.FunctionIdentity]*Wrapper)}

func (r *registry) register(identity types.FunctionIdentity, w *Wrapper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wrappers[identity] = w
}

func (r *registry) lookup(identity types.FunctionIdentity) (*Wrapper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wrappers[identity]
	return w, ok
}

func (r *registry) list() []*Wrapper {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Wrapper, 0, len(r.wrappers))
	for _, w := range r.wrappers {
		out = append(out, w)
	}
	return out
}

func (r *registry) remove(identity types.FunctionIdentity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wrappers[identity]; !ok {
		return false
	}
	delete(r.wrappers, identity)
	return true
}

func (r *registry) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wrappers = make(map[types.FunctionIdentity]*Wrapper)
}

// Lookup returns the Wrapper registered for identity, if any.
func Lookup(identity types.FunctionIdentity) (*Wrapper, bool) {
	return defaultRegistry.lookup(identity)
}

// List returns every currently-hijacked Wrapper.
func List() []*Wrapper {
	return defaultRegistry.list()
}

// Unhijack removes identity's registry entry. Per spec.md §4.G, this does
// not attempt to restore the original binding in its source package — Go
// has no mutable "rebind this identifier" facility the way a dynamic
// language's module dict offers, so the wrapper's Func() value, if still
// held by some caller, remains live; only new Lookups stop seeing it.
func Unhijack(identity types.FunctionIdentity) error {
	if !defaultRegistry.remove(identity) {
		return fmt.Errorf("hijack: %s is not hijacked", identity)
	}
	return nil
}

// UnhijackAll removes every registry entry.
func UnhijackAll() {
	defaultRegistry.reset()
}
