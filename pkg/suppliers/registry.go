package suppliers

import (
	"sync"

	"github.com/partforge/partsync/pkg/errors"
)

// Registry holds supplier adapters in registration order. The order
// matters: search results are processed supplier by supplier in exactly the
// order adapters were registered, even though the searches themselves run
// concurrently.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]Supplier
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Supplier)}
}

// defaultRegistry collects adapters registered from init functions.
var defaultRegistry = NewRegistry()

// Register adds a supplier adapter to the default registry.
// Adapter packages call this from init.
func Register(s Supplier) {
	defaultRegistry.Register(s)
}

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a supplier, replacing any previous adapter with the same
// name while keeping its original position.
func (r *Registry) Register(s Supplier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := s.Name()
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = s
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byName[name]
	if !ok {
		return nil, errors.NewNotFoundError("supplier", name)
	}
	return s, nil
}

// List returns all adapters in registration order.
func (r *Registry) List() []Supplier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Supplier, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Enabled returns the adapters named in names, in registration order.
// Unknown names are an error so a typo in configuration is caught early.
func (r *Registry) Enabled(names []string) ([]Supplier, error) {
	if len(names) == 0 {
		return r.List(), nil
	}
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		if _, err := r.Get(name); err != nil {
			return nil, err
		}
		wanted[name] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Supplier, 0, len(names))
	for _, name := range r.order {
		if wanted[name] {
			out = append(out, r.byName[name])
		}
	}
	return out, nil
}
