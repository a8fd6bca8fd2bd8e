package backend

import (
	"fmt"
	"slices"
)

// Registry maps backend names to implementations. It is built once at
// startup and read-only afterwards.
type Registry struct {
	backends map[string]Backend
	policies map[string][]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]Backend),
		policies: make(map[string][]string),
	}
}

// Register adds a backend. Extra ACLs are appended to every principal the
// backend returns (the backend policy).
func (r *Registry) Register(b Backend, policyACLs ...string) error {
	name := b.Name()
	if name == "" {
		return fmt.Errorf("backend: empty name")
	}
	if _, dup := r.backends[name]; dup {
		return fmt.Errorf("backend: %q registered twice", name)
	}
	r.backends[name] = b
	if len(policyACLs) > 0 {
		r.policies[name] = slices.Clone(policyACLs)
	}
	return nil
}

// Lookup returns the backend registered under name.
func (r *Registry) Lookup(name string) (Backend, error) {
	b, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return b, nil
}

// Policy returns the ACLs appended to principals of the named backend.
func (r *Registry) Policy(name string) []string {
	return r.policies[name]
}

// Names lists registered backends in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
