// Package chunkers provides the chunking strategy registry and the
// built-in strategies.
package chunkers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// Ensure Registry implements the port.
var _ driven.ChunkerRegistry = (*Registry)(nil)

// Registry maps strategy names to their builders.
// It allows dynamic construction of chunkers from a settings snapshot.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]driven.ChunkerBuilder
}

// NewRegistry creates a new chunker registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]driven.ChunkerBuilder),
	}
}

// Register adds a strategy builder to the registry.
// Name should match the chunker's Name() return value.
func (r *Registry) Register(name string, builder driven.ChunkerBuilder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[name] = builder
}

// Build creates a chunker by name with the given settings.
func (r *Registry) Build(name string, settings domain.ChunkingSettings) (driven.Chunker, error) {
	r.mu.RLock()
	builder, ok := r.builders[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown chunking strategy %q: %w", name, domain.ErrUnsupportedType)
	}
	return builder(settings)
}

// Names returns all registered strategy names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
