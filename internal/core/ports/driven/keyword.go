package driven

import (
	"context"

	"github.com/quarrydev/quarry/internal/core/domain"
)

// KeywordHit is a lexical search candidate.
type KeywordHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the chunk's parent document.
	DocumentID string

	// Score is the engine's raw relevance score, higher is better.
	// It is not normalised; the search engine maps it into [0,1].
	Score float64
}

// KeywordIndex provides lexical full-text search over chunks.
// Backed by SQLite FTS5.
type KeywordIndex interface {
	// Index adds or updates chunks in the search index.
	Index(ctx context.Context, chunks []domain.Chunk) error

	// Search runs a lexical query confined to the filter.
	Search(ctx context.Context, query string, topK int, filter VectorFilter) ([]KeywordHit, error)

	// DeleteByDocument removes every indexed chunk of the document.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Close releases resources.
	Close() error
}
