// Package rerankers provides the rank fusion registry and the built-in
// fusion strategies.
package rerankers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// Ensure Registry implements the port.
var _ driven.RerankerRegistry = (*Registry)(nil)

// Registry maps reranker names to instances.
type Registry struct {
	mu        sync.RWMutex
	rerankers map[string]driven.Reranker
}

// NewRegistry creates a new reranker registry.
func NewRegistry() *Registry {
	return &Registry{
		rerankers: make(map[string]driven.Reranker),
	}
}

// Register adds a reranker to the registry, keyed by its Name().
func (r *Registry) Register(reranker driven.Reranker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rerankers[reranker.Name()] = reranker
}

// Get returns the named reranker.
func (r *Registry) Get(name string) (driven.Reranker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reranker, ok := r.rerankers[name]
	if !ok {
		return nil, fmt.Errorf("unknown reranker %q: %w", name, domain.ErrUnsupportedType)
	}
	return reranker, nil
}

// Names returns all registered reranker names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.rerankers))
	for name := range r.rerankers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
