// Package tenant keeps a read-only, in-process view of the tenant forest and
// answers ancestry questions against it.
package tenant

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
)

// ErrDataIntegrity is returned alongside a false answer when the parent chain
// contains a cycle or a dangling reference.
var ErrDataIntegrity = errors.New("tenant: data integrity")

type snapshot struct {
	parent   map[string]string // child -> parent, roots map to ""
	children map[string][]string
}

// Index is safe for concurrent use. Readers never block: each Replace
// publishes a new immutable snapshot.
type Index struct {
	snap atomic.Pointer[snapshot]
}

// NewIndex builds an index from the given tenants.
func NewIndex(tenants []domain.Tenant) *Index {
	idx := &Index{}
	idx.Replace(tenants)
	return idx
}

// Replace swaps the whole view for a new one.
func (i *Index) Replace(tenants []domain.Tenant) {
	s := &snapshot{
		parent:   make(map[string]string, len(tenants)),
		children: make(map[string][]string),
	}
	for _, t := range tenants {
		if t.UUID == "" {
			continue
		}
		if t.IsRoot() {
			s.parent[t.UUID] = ""
			continue
		}
		s.parent[t.UUID] = t.ParentUUID
		s.children[t.ParentUUID] = append(s.children[t.ParentUUID], t.UUID)
	}
	for k := range s.children {
		slices.Sort(s.children[k])
	}
	i.snap.Store(s)
}

// Len returns the number of known tenants.
func (i *Index) Len() int {
	s := i.snap.Load()
	if s == nil {
		return 0
	}
	return len(s.parent)
}

// Contains reports whether the tenant is known.
func (i *Index) Contains(uuid string) bool {
	s := i.snap.Load()
	if s == nil {
		return false
	}
	_, ok := s.parent[uuid]
	return ok
}

// IsInSubtree reports whether requested equals tokenTenant or descends from
// it. An empty requested tenant or an empty tokenTenant (tenant-unscoped
// token) always succeeds. An unknown requested tenant is not in any subtree.
func (i *Index) IsInSubtree(tokenTenant, requested string) (bool, error) {
	if requested == "" || tokenTenant == "" {
		return true, nil
	}
	if requested == tokenTenant {
		return true, nil
	}

	s := i.snap.Load()
	if s == nil {
		return false, nil
	}
	if _, ok := s.parent[requested]; !ok {
		return false, nil
	}

	// Any chain longer than the number of nodes must loop.
	maxDepth := len(s.parent) + 1
	current := requested
	for depth := 0; depth < maxDepth; depth++ {
		parent, ok := s.parent[current]
		if !ok {
			return false, fmt.Errorf("%w: tenant %q references unknown parent", ErrDataIntegrity, current)
		}
		if parent == "" {
			return false, nil
		}
		if parent == tokenTenant {
			return true, nil
		}
		current = parent
	}
	return false, fmt.Errorf("%w: cycle above tenant %q", ErrDataIntegrity, requested)
}

// Subtree lists root and all its descendants, breadth first. It returns nil
// when root is unknown.
func (i *Index) Subtree(root string) []string {
	s := i.snap.Load()
	if s == nil {
		return nil
	}
	if _, ok := s.parent[root]; !ok {
		return nil
	}

	seen := map[string]struct{}{root: {}}
	out := []string{root}
	for next := 0; next < len(out); next++ {
		for _, child := range s.children[out[next]] {
			if _, dup := seen[child]; dup {
				continue
			}
			seen[child] = struct{}{}
			out = append(out, child)
		}
	}
	return out
}
