package driven

import "context"

// RelevanceScorer judges how well a candidate text answers a query.
// This backs the optional cross-encoder reranker: each (query, candidate)
// pair is scored jointly by an external model.
type RelevanceScorer interface {
	// Score returns a relevance score on a 0-10 scale.
	// Implementations should use low sampling variance so repeated calls
	// for the same pair agree.
	Score(ctx context.Context, query, candidate string) (float64, error)

	// Close releases resources.
	Close() error
}
