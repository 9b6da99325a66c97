package search

import "fmt"

// Registry is the static engine table. It is built once at startup and
// read-only afterwards, so lookups need no locking.
type Registry struct {
	names    []string
	adapters map[string]Engine
}

// NewRegistry builds a registry from the given adapters. Names keep
// registration order and are case-sensitive.
func NewRegistry(adapters ...Engine) *Registry {
	r := &Registry{adapters: make(map[string]Engine, len(adapters))}
	for _, a := range adapters {
		if _, ok := r.adapters[a.Name()]; ok {
			continue
		}
		r.names = append(r.names, a.Name())
		r.adapters[a.Name()] = a
	}
	return r
}

// Engines returns all registered names in registration order.
func (r *Registry) Engines() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Resolve returns the adapter registered under name, exact match only.
func (r *Registry) Resolve(name string) (Engine, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("engine %q: %w", name, ErrUnknownEngine)
	}
	return a, nil
}
