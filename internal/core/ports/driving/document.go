package driving

import (
	"context"

	"github.com/quarrydev/quarry/internal/core/domain"
)

// DocumentService manages documents outside the ingestion pipeline.
type DocumentService interface {
	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// List returns documents in a scope, optionally filtered by logical
	// path prefix.
	List(ctx context.Context, scopeID, pathPrefix string) ([]domain.Document, error)

	// Delete removes a document, its chunks, and its index entries.
	// The document no longer appears in any subsequent search.
	Delete(ctx context.Context, documentID string) error
}
