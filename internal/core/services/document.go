package services

import (
	"context"
	"fmt"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
	"github.com/quarrydev/quarry/internal/core/ports/driving"
	"github.com/quarrydev/quarry/internal/logger"
)

// Ensure DocumentService implements the port.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages documents outside the ingestion pipeline.
type DocumentService struct {
	docs     driven.DocumentStore
	vectors  driven.VectorIndex
	keywords driven.KeywordIndex
}

// NewDocumentService creates a document service. Vector and keyword
// indexes are optional.
func NewDocumentService(docs driven.DocumentStore, vectors driven.VectorIndex, keywords driven.KeywordIndex) *DocumentService {
	return &DocumentService{docs: docs, vectors: vectors, keywords: keywords}
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docs.GetDocument(ctx, documentID)
}

// List returns documents in a scope, optionally filtered by path prefix.
func (s *DocumentService) List(ctx context.Context, scopeID, pathPrefix string) ([]domain.Document, error) {
	return s.docs.ListDocuments(ctx, scopeID, pathPrefix)
}

// Delete removes the document, its chunks, and its index entries. The
// index entries go first so a concurrent search cannot surface a chunk
// whose row is already gone.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	if s.vectors != nil {
		if err := s.vectors.DeleteByDocument(ctx, documentID); err != nil {
			return fmt.Errorf("deleting vectors: %w", err)
		}
	}
	if s.keywords != nil {
		if err := s.keywords.DeleteByDocument(ctx, documentID); err != nil {
			return fmt.Errorf("deleting keyword entries: %w", err)
		}
	}
	if err := s.docs.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	logger.Info("deleted document %s", documentID)
	return nil
}
