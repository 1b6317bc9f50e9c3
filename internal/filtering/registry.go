package filtering

import (
	"fmt"
	"slices"
	"sync"

	"github.com/stacklok/entries-server/internal/service"
)

// ErrScopeNotFound is returned when no scope is registered under a handle
var ErrScopeNotFound = fmt.Errorf("scope not found")

// Registry resolves scope filters by handle
type Registry struct {
	mu     sync.RWMutex
	scopes map[string]service.Scope
	order  []string
}

var _ service.ScopeRegistry = (*Registry)(nil)

// NewRegistry creates a registry holding the given scopes
func NewRegistry(scopes ...service.Scope) *Registry {
	r := &Registry{scopes: map[string]service.Scope{}}
	for _, s := range scopes {
		r.Register(s)
	}
	return r
}

// NewDefaultRegistry creates a registry with the built-in scopes
func NewDefaultRegistry() *Registry {
	return NewRegistry(
		statusScope{},
		siteScope{},
		blueprintScope{},
		fieldsScope{},
		slugScope{},
		tagsScope{},
	)
}

// Register adds or replaces a scope
func (r *Registry) Register(s service.Scope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.scopes[s.Handle()]; !exists {
		r.order = append(r.order, s.Handle())
	}
	r.scopes[s.Handle()] = s
}

// Find returns the scope registered under handle
func (r *Registry) Find(handle string) (service.Scope, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scopes[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrScopeNotFound, handle)
	}
	return s, nil
}

// ForCollection returns the scopes offered for the collection, in
// registration order. Scopes that only make sense for some collections
// implement collectionScope.
func (r *Registry) ForCollection(collection *service.Collection) []service.Scope {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]service.Scope, 0, len(r.order))
	for _, handle := range r.order {
		s := r.scopes[handle]
		if cs, ok := s.(collectionScope); ok && !cs.AppliesTo(collection) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// collectionScope is implemented by scopes limited to some collections
type collectionScope interface {
	AppliesTo(collection *service.Collection) bool
}

// Handles lists the registered scope handles in registration order
func (r *Registry) Handles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}
