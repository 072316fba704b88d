package timer

import (
	"fmt"
	"slices"
	"sync"
)

// Registry tracks the controllers whose tick loop is running, by key.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	running map[string]*Controller
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{running: make(map[string]*Controller)}
}

// Get returns the running controller for key, or nil.
func (r *Registry) Get(key string) *Controller {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running[key]
}

// Keys returns the keys of all running controllers, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.running))
	for k := range r.running {
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	slices.Sort(keys)
	return keys
}

// Len returns the number of running controllers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.running)
}

// add registers c. Re-adding the same instance is a no-op.
func (r *Registry) add(c *Controller) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if other, ok := r.running[c.key]; ok && other != c {
		return fmt.Errorf("%w: %q", ErrKeyInUse, c.key)
	}
	r.running[c.key] = c
	return nil
}

// remove deregisters c if it is the instance registered under its key.
func (r *Registry) remove(c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running[c.key] == c {
		delete(r.running, c.key)
	}
}
