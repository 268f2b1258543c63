package driven

import (
	"context"

	"github.com/quarrydev/quarry/internal/core/domain"
)

// Reranker merges or re-scores candidate hits from one or more retrieval
// sources. Candidates keep their per-source grouping: rank-based fusion
// needs to know which list a hit came from.
type Reranker interface {
	// Name returns the reranker name for registry lookup.
	Name() string

	// Rerank fuses the per-source candidate lists for the query.
	// Each inner slice is one source's hits in rank order (best first).
	// The result is sorted by fused score descending, scores in [0,1].
	Rerank(ctx context.Context, query string, sources [][]domain.SearchHit) ([]domain.SearchHit, error)
}

// RerankerRegistry resolves rerankers by declared name.
type RerankerRegistry interface {
	// Get returns the named reranker, or domain.ErrUnsupportedType.
	Get(name string) (Reranker, error)

	// Register adds a reranker to the registry.
	Register(r Reranker)

	// Names returns all registered reranker names.
	Names() []string
}
