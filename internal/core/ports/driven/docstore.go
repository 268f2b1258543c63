package driven

import (
	"context"

	"github.com/quarrydev/quarry/internal/core/domain"
)

// DocumentStore persists documents and chunks.
// Backed by SQLite for metadata storage.
type DocumentStore interface {
	// InsertDocument stores a new document.
	// Returns an error if the id already exists.
	InsertDocument(ctx context.Context, doc *domain.Document) error

	// UpdateDocument updates an existing document in place.
	// Returns domain.ErrNotFound if the id does not exist.
	UpdateDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns documents in a scope, optionally filtered by
	// logical path prefix. Empty scope lists the whole corpus.
	ListDocuments(ctx context.Context, scopeID, pathPrefix string) ([]domain.Document, error)

	// DeleteDocument removes a document and cascades to its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// SaveChunks upserts chunks for a document.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks retrieves all chunks for a document ordered by index.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// DeleteChunks removes all chunks for a document.
	DeleteChunks(ctx context.Context, documentID string) error
}
