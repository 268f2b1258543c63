package driving

import (
	"context"

	"github.com/quarrydev/quarry/internal/core/domain"
)

// SearchService answers queries over the indexed corpus.
type SearchService interface {
	// Search runs the query in the requested mode and returns ranked
	// hits plus the candidate total and wall-clock duration.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResults, error)
}
