package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
	"github.com/quarrydev/quarry/internal/core/ports/driving"
	"github.com/quarrydev/quarry/internal/logger"
)

// Ensure ReindexService implements the port.
var _ driving.ReindexService = (*ReindexService)(nil)

// ReindexService detects content and settings drift. Content drift is
// decided solely by the stored SHA-256 hash; settings drift by comparing
// the current configuration against the provenance snapshot recorded in
// the document's metadata at last index time.
type ReindexService struct {
	docs      driven.DocumentStore
	source    driven.ContentSource
	vectors   driven.VectorIndex
	keywords  driven.KeywordIndex
	ingestion driving.IngestionService
	chunking  domain.ChunkingSettings
	embedding domain.EmbeddingSettings
}

// ReindexDeps bundles the collaborators of a reindex service. Vector
// and keyword indexes are optional.
type ReindexDeps struct {
	Docs      driven.DocumentStore
	Source    driven.ContentSource
	Vectors   driven.VectorIndex
	Keywords  driven.KeywordIndex
	Ingestion driving.IngestionService
	Chunking  domain.ChunkingSettings
	Embedding domain.EmbeddingSettings
}

// NewReindexService creates a reindex service over the current
// configuration snapshot.
func NewReindexService(deps ReindexDeps) *ReindexService {
	return &ReindexService{
		docs:      deps.Docs,
		source:    deps.Source,
		vectors:   deps.Vectors,
		keywords:  deps.Keywords,
		ingestion: deps.Ingestion,
		chunking:  deps.Chunking,
		embedding: deps.Embedding,
	}
}

// Reindex examines the selected documents and re-enqueues the drifted
// ones. Per-document problems become reason codes and failure counts;
// nothing aborts the batch.
func (s *ReindexService) Reindex(ctx context.Context, req domain.ReindexRequest) (*domain.ReindexResult, error) {
	docs, err := s.selectDocuments(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &domain.ReindexResult{
		Reasons: make(map[domain.ReindexReason]int),
	}
	for i := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc := &docs[i]

		reason := s.inspect(ctx, doc, req.Force)
		result.Reasons[reason]++

		switch {
		case reason == domain.ReasonReadFailed:
			result.Failed++
		case !reason.NeedsReindex():
			result.Skipped++
		case s.requeue(ctx, doc) != nil:
			result.Failed++
		default:
			result.Enqueued++
		}
	}

	logger.Info("reindex: %d enqueued, %d skipped, %d failed",
		result.Enqueued, result.Skipped, result.Failed)
	return result, nil
}

// Inspect reports the reindex reason for one document without touching it.
func (s *ReindexService) Inspect(ctx context.Context, documentID string, force bool) (domain.ReindexReason, error) {
	doc, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	return s.inspect(ctx, doc, force), nil
}

// inspect applies the reason precedence: forced beats content drift,
// which beats embedding drift, which beats chunking drift.
func (s *ReindexService) inspect(ctx context.Context, doc *domain.Document, force bool) domain.ReindexReason {
	if force {
		return domain.ReasonForced
	}

	hash, err := s.hashContent(ctx, doc.Path)
	if err != nil {
		logger.Debug("hashing %s: %v", doc.Path, err)
		return domain.ReasonReadFailed
	}
	if hash != doc.ContentHash {
		return domain.ReasonContentChanged
	}
	if !s.embedding.MatchesProvenance(doc.Metadata) {
		return domain.ReasonEmbeddingSettingsChanged
	}
	if !s.chunking.MatchesProvenance(doc.Metadata) {
		return domain.ReasonChunkingSettingsChanged
	}
	return domain.ReasonUnchanged
}

// requeue deletes the document's stale chunks and index entries, then
// enqueues a fresh job carrying the same document id so the pipeline
// updates in place.
func (s *ReindexService) requeue(ctx context.Context, doc *domain.Document) error {
	if err := s.docs.DeleteChunks(ctx, doc.ID); err != nil {
		logger.Warn("reindex %s: deleting chunks: %v", doc.ID, err)
		return err
	}
	if s.vectors != nil {
		if err := s.vectors.DeleteByDocument(ctx, doc.ID); err != nil {
			logger.Warn("reindex %s: deleting vectors: %v", doc.ID, err)
			return err
		}
	}
	if s.keywords != nil {
		if err := s.keywords.DeleteByDocument(ctx, doc.ID); err != nil {
			logger.Warn("reindex %s: deleting keyword entries: %v", doc.ID, err)
			return err
		}
	}

	_, err := s.ingestion.Enqueue(ctx, driving.IngestRequest{
		DocumentID: doc.ID,
		Path:       doc.Path,
		Options: domain.IngestOptions{
			ScopeID:     doc.ScopeID,
			ContentType: doc.ContentType,
			Chunking:    s.chunking,
		},
	})
	if err != nil {
		logger.Warn("reindex %s: enqueue: %v", doc.ID, err)
	}
	return err
}

// selectDocuments resolves the request to concrete documents: an
// explicit id list, a scope, or the whole corpus.
func (s *ReindexService) selectDocuments(ctx context.Context, req domain.ReindexRequest) ([]domain.Document, error) {
	if len(req.DocumentIDs) == 0 {
		return s.docs.ListDocuments(ctx, req.ScopeID, "")
	}

	docs := make([]domain.Document, 0, len(req.DocumentIDs))
	for _, id := range req.DocumentIDs {
		doc, err := s.docs.GetDocument(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading document %s: %w", id, err)
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// hashContent reads the full content for a path and returns its SHA-256
// hex digest. Non-seekable sources are consumed entirely, same as the
// pipeline does before parsing.
func (s *ReindexService) hashContent(ctx context.Context, path string) (string, error) {
	reader, err := s.source.Fetch(ctx, path)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	h := sha256.New()
	if _, err := io.Copy(h, reader); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
