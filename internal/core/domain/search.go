package domain

import "time"

// SearchMode defines how a query combines retrieval methods.
type SearchMode string

// Available search modes.
const (
	// SearchModeSemantic uses only vector similarity search.
	SearchModeSemantic SearchMode = "semantic"

	// SearchModeKeyword uses only lexical full-text search.
	SearchModeKeyword SearchMode = "keyword"

	// SearchModeHybrid runs both and fuses the ranked lists.
	SearchModeHybrid SearchMode = "hybrid"
)

// IsValid returns true if the search mode is recognised.
func (m SearchMode) IsValid() bool {
	switch m {
	case SearchModeSemantic, SearchModeKeyword, SearchModeHybrid:
		return true
	default:
		return false
	}
}

// RequiresEmbedding returns true if this mode needs an embedding provider.
func (m SearchMode) RequiresEmbedding() bool {
	return m == SearchModeSemantic || m == SearchModeHybrid
}

// String returns the string representation.
func (m SearchMode) String() string {
	return string(m)
}

// Hit source values recorded in SearchHit metadata under MetaHitSource
// when the hybrid engine fans out.
const (
	MetaHitSource    = "source"
	HitSourceVector  = "vector"
	HitSourceKeyword = "keyword"
)

// SearchOptions configures a search query.
type SearchOptions struct {
	// ScopeID confines the search. Required.
	ScopeID string

	// PathPrefix optionally restricts hits to documents whose logical
	// path starts with the prefix.
	PathPrefix string

	// TopK is the maximum number of hits to return (default 10).
	TopK int

	// MinScore discards hits scoring below the threshold. Applied per
	// branch and re-applied after fusion.
	MinScore float64

	// Mode selects semantic, keyword, or hybrid retrieval.
	Mode SearchMode

	// Reranker names the rank fusion strategy (default "rrf").
	Reranker string
}

// SearchHit is a single scored retrieval result.
type SearchHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the chunk's parent document.
	DocumentID string

	// Content is the chunk text.
	Content string

	// Score is the normalised relevance score in [0,1].
	Score float64

	// Metadata carries hit annotations, including the retrieval source
	// tag when produced by hybrid fan-out.
	Metadata map[string]string
}

// SearchResults is the full response for one query.
type SearchResults struct {
	// Hits are the fused, truncated results sorted by score descending.
	Hits []SearchHit

	// Total is the candidate count before truncation.
	Total int

	// Duration is the wall-clock time the search took.
	Duration time.Duration
}
