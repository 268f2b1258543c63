package chunkers

import (
	"github.com/quarrydev/quarry/internal/chunkers/fixed"
	"github.com/quarrydev/quarry/internal/chunkers/recursive"
	"github.com/quarrydev/quarry/internal/chunkers/semantic"
	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// RegisterDefaults registers all built-in strategies with the registry.
// The semantic strategy is only registered when an embedding service is
// available, since it embeds sentence units to find topic boundaries.
func RegisterDefaults(r *Registry, embedder driven.EmbeddingService) {
	r.Register(domain.ChunkerFixed, func(settings domain.ChunkingSettings) (driven.Chunker, error) {
		return fixed.New(settings), nil
	})
	r.Register(domain.ChunkerRecursive, func(settings domain.ChunkingSettings) (driven.Chunker, error) {
		return recursive.New(settings), nil
	})

	if embedder == nil {
		return
	}
	r.Register(domain.ChunkerSemantic, func(settings domain.ChunkingSettings) (driven.Chunker, error) {
		return semantic.New(settings, embedder), nil
	})
}
