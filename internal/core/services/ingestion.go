package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
	"github.com/quarrydev/quarry/internal/core/ports/driving"
)

// Ensure IngestionService implements the port.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionService registers documents and feeds the background queue.
// Settings are captured per enqueue: a job carries its own chunking
// snapshot, so a configuration change never affects jobs already queued.
type IngestionService struct {
	queue    *Queue
	docs     driven.DocumentStore
	chunking domain.ChunkingSettings
}

// NewIngestionService creates an ingestion service. The chunking
// settings are the defaults applied when a request does not override them.
func NewIngestionService(queue *Queue, docs driven.DocumentStore, chunking domain.ChunkingSettings) *IngestionService {
	if chunking.Strategy == "" {
		chunking = domain.DefaultChunkingSettings()
	}
	return &IngestionService{
		queue:    queue,
		docs:     docs,
		chunking: chunking,
	}
}

// Enqueue registers the document and queues an ingestion job.
func (s *IngestionService) Enqueue(ctx context.Context, req driving.IngestRequest) (*domain.IngestionJob, error) {
	if strings.TrimSpace(req.Path) == "" {
		return nil, fmt.Errorf("path is required: %w", domain.ErrInvalidInput)
	}
	opts := req.Options
	if opts.ScopeID == "" {
		return nil, domain.ErrScopeRequired
	}
	opts.Chunking = s.mergeChunking(opts.Chunking)

	documentID := req.DocumentID
	if documentID == "" {
		documentID = uuid.NewString()
	}

	if err := s.registerDocument(ctx, documentID, req.Path, opts); err != nil {
		return nil, err
	}

	job := domain.IngestionJob{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Path:       req.Path,
		Options:    opts,
	}
	if err := s.queue.Enqueue(job); err != nil {
		return nil, err
	}
	return &job, nil
}

// JobStatus returns the current status of a job.
func (s *IngestionService) JobStatus(jobID string) (*domain.JobStatus, error) {
	return s.queue.JobStatus(jobID)
}

// CancelDocument cancels every job in flight for the document.
func (s *IngestionService) CancelDocument(documentID string) bool {
	return s.queue.CancelDocument(documentID)
}

// mergeChunking fills unset override fields from the service snapshot.
// A partial override (strategy set, sizes left zero) must not leak
// zeros into the provenance recorded at index time; the chunkers would
// silently fall back to defaults and the next reindex would report
// drift that never happened.
func (s *IngestionService) mergeChunking(override domain.ChunkingSettings) domain.ChunkingSettings {
	if override.Strategy == "" {
		override.Strategy = s.chunking.Strategy
	}
	if override.MaxTokens <= 0 {
		override.MaxTokens = s.chunking.MaxTokens
	}
	if override.OverlapTokens <= 0 {
		override.OverlapTokens = s.chunking.OverlapTokens
	}
	if override.MinTokens <= 0 {
		override.MinTokens = s.chunking.MinTokens
	}
	if override.SimilarityThreshold <= 0 {
		override.SimilarityThreshold = s.chunking.SimilarityThreshold
	}
	return override
}

// registerDocument creates the pending document row, or walks an
// existing one back to pending for re-ingestion. The same document id
// always updates in place, never inserts a duplicate.
func (s *IngestionService) registerDocument(ctx context.Context, documentID, path string, opts domain.IngestOptions) error {
	now := time.Now()

	doc, err := s.docs.GetDocument(ctx, documentID)
	if errors.Is(err, domain.ErrNotFound) {
		doc = &domain.Document{
			ID:          documentID,
			ScopeID:     opts.ScopeID,
			Path:        path,
			FileName:    filepath.Base(path),
			ContentType: opts.ContentType,
			Status:      domain.DocumentPending,
			Metadata:    opts.Metadata,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return s.docs.InsertDocument(ctx, doc)
	}
	if err != nil {
		return fmt.Errorf("loading document: %w", err)
	}

	doc.Path = path
	doc.FileName = filepath.Base(path)
	doc.Status = domain.DocumentPending
	doc.ErrorMessage = ""
	doc.UpdatedAt = now
	return s.docs.UpdateDocument(ctx, doc)
}
