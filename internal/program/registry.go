package program

import "sync"

// Registry maps kernel names to host implementations. Loading a program
// resolves every function body against the registry, so a program can
// only be cached on a worker that implements all of its kernels.
type Registry struct {
	mu      sync.RWMutex
	kernels map[string]Kernel
}

// NewRegistry creates an empty kernel registry.
func NewRegistry() *Registry {
	return &Registry{kernels: make(map[string]Kernel)}
}

// Register adds a kernel under the given name, replacing any previous
// registration.
func (r *Registry) Register(name string, k Kernel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kernels[name] = k
}

// Lookup returns the kernel registered under name.
func (r *Registry) Lookup(name string) (Kernel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kernels[name]
	return k, ok
}

// DefaultRegistry returns a registry preloaded with the builtin kernels.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	registerBuiltins(r)
	return r
}
