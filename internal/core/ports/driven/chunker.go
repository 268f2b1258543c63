package driven

import (
	"context"

	"github.com/quarrydev/quarry/internal/core/domain"
)

// Chunker splits parsed document content into ordered chunks.
// Implementations are stateless with respect to documents; all tuning
// comes from the ChunkingSettings captured when the chunker was built.
type Chunker interface {
	// Name returns the strategy name for provenance recording.
	Name() string

	// Chunk splits the parsed content. Returned chunks carry ordinal
	// Index, heuristic TokenCount and byte offsets into content.
	// Chunk IDs and document/scope linkage are assigned by the caller.
	Chunk(ctx context.Context, content string) ([]domain.Chunk, error)
}

// ChunkerBuilder creates a chunker from a settings snapshot.
type ChunkerBuilder func(settings domain.ChunkingSettings) (Chunker, error)

// ChunkerRegistry resolves chunking strategies by name.
type ChunkerRegistry interface {
	// Build creates the named strategy with the given settings.
	// Returns domain.ErrUnsupportedType for unknown names.
	Build(name string, settings domain.ChunkingSettings) (Chunker, error)

	// Register adds a strategy builder to the registry.
	Register(name string, builder ChunkerBuilder)

	// Names returns all registered strategy names.
	Names() []string
}
