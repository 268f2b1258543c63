package driven

import (
	"context"

	"github.com/quarrydev/quarry/internal/core/domain"
)

// VectorFilter confines a similarity search.
type VectorFilter struct {
	// ScopeID restricts candidates to one scope. Required.
	ScopeID string

	// PathPrefix optionally restricts candidates to documents whose
	// logical path starts with the prefix.
	PathPrefix string
}

// VectorHit is a similarity search candidate.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the chunk's parent document.
	DocumentID string

	// Similarity is the index's native similarity mapped into [0,1],
	// higher is better.
	Similarity float64
}

// VectorIndex provides vector storage and similarity search.
// Implementations report similarity, not distance: an adapter over a
// distance-metric index converts before returning hits.
type VectorIndex interface {
	// Upsert inserts or replaces vector entries.
	// Entries whose vector length disagrees with the index configuration
	// are rejected with domain.ErrDimensionMismatch.
	Upsert(ctx context.Context, entries []domain.VectorEntry) error

	// Search finds the topK nearest entries to the query vector within
	// the filter.
	Search(ctx context.Context, query []float32, topK int, filter VectorFilter) ([]VectorHit, error)

	// DeleteByDocument removes every entry belonging to the document.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Close releases resources.
	Close() error
}
