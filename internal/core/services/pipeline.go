// Package services contains the core business logic, independent of
// any specific adapter implementation.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
	"github.com/quarrydev/quarry/internal/logger"
)

// JobRunner executes the ingestion pipeline for one job. The worker
// pool depends on this narrow contract rather than the full pipeline.
type JobRunner interface {
	// Run processes the job, reporting phase transitions through report.
	// The returned error classifies the outcome for job bookkeeping;
	// document status is recorded inside the pipeline boundary.
	Run(ctx context.Context, job domain.IngestionJob, report func(domain.JobPhase)) error
}

// Ensure Pipeline implements JobRunner.
var _ JobRunner = (*Pipeline)(nil)

// Pipeline orchestrates parse, chunk, embed and store for one document.
// It is safe to run many instances concurrently, one per in-flight job.
// All failures are caught at this boundary and recorded on the document;
// cancellation is distinguished and resets the document to pending.
type Pipeline struct {
	source    driven.ContentSource
	parsers   driven.ParserRegistry
	chunkers  driven.ChunkerRegistry
	embedder  driven.EmbeddingService
	docs      driven.DocumentStore
	vectors   driven.VectorIndex
	keywords  driven.KeywordIndex
	embedding domain.EmbeddingSettings
}

// PipelineDeps bundles the collaborators of a pipeline. Embedder,
// vector index and keyword index are optional; missing ones disable the
// corresponding pipeline step.
type PipelineDeps struct {
	Source    driven.ContentSource
	Parsers   driven.ParserRegistry
	Chunkers  driven.ChunkerRegistry
	Embedder  driven.EmbeddingService
	Docs      driven.DocumentStore
	Vectors   driven.VectorIndex
	Keywords  driven.KeywordIndex
	Embedding domain.EmbeddingSettings
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:    deps.Source,
		parsers:   deps.Parsers,
		chunkers:  deps.Chunkers,
		embedder:  deps.Embedder,
		docs:      deps.Docs,
		vectors:   deps.Vectors,
		keywords:  deps.Keywords,
		embedding: deps.Embedding,
	}
}

// Run processes one ingestion job end to end.
func (p *Pipeline) Run(ctx context.Context, job domain.IngestionJob, report func(domain.JobPhase)) error {
	if report == nil {
		report = func(domain.JobPhase) {}
	}

	p.setStatus(ctx, job.DocumentID, domain.DocumentProcessing, "")

	err := p.run(ctx, job, report)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		// Cancelled work is not a document failure; the document goes
		// back to pending so a later job can pick it up cleanly.
		p.setStatus(ctx, job.DocumentID, domain.DocumentPending, "")
		return err
	default:
		p.setStatus(ctx, job.DocumentID, domain.DocumentFailed, err.Error())
		return err
	}
}

func (p *Pipeline) run(ctx context.Context, job domain.IngestionJob, report func(domain.JobPhase)) error {
	report(domain.PhaseParsing)

	// The source may hand back a non-seekable network stream; hashing
	// and parsing both re-read the same bytes, so buffer it fully.
	reader, err := p.source.Fetch(ctx, job.Path)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", job.Path, err)
	}
	raw, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", job.Path, err)
	}

	sum := sha256.Sum256(raw)
	contentHash := hex.EncodeToString(sum[:])
	fileName := filepath.Base(job.Path)

	parser, err := p.parsers.Resolve(fileName, job.Options.ContentType)
	if err != nil {
		return fmt.Errorf("selecting parser for %s: %w", fileName, err)
	}
	parsed, err := parser.Parse(ctx, raw, fileName)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", fileName, err)
	}
	for _, warning := range parsed.Warnings {
		logger.Warn("parse warning: %s", warning)
	}

	report(domain.PhaseChunking)

	chunking := job.Options.Chunking
	chunker, err := p.chunkers.Build(chunking.Strategy, chunking)
	if err != nil {
		return fmt.Errorf("building chunker: %w", err)
	}
	chunks, err := chunker.Chunk(ctx, parsed.Content)
	if err != nil {
		return fmt.Errorf("chunking %s: %w", fileName, err)
	}
	for i := range chunks {
		chunks[i].ID = uuid.NewString()
		chunks[i].DocumentID = job.DocumentID
		chunks[i].ScopeID = job.Options.ScopeID
	}
	logger.Debug("chunked %s into %d chunks via %s", fileName, len(chunks), chunker.Name())

	report(domain.PhaseEmbedding)

	var entries []domain.VectorEntry
	if p.embedder != nil && p.vectors != nil && len(chunks) > 0 {
		entries, err = p.embedChunks(ctx, job.Path, chunks)
		if err != nil {
			return fmt.Errorf("embedding %s: %w", fileName, err)
		}
	}

	report(domain.PhaseStoring)

	// Replace rather than accumulate: a re-ingestion with different
	// settings may produce fewer chunks than the previous run left behind.
	if err := p.docs.DeleteChunks(ctx, job.DocumentID); err != nil {
		return fmt.Errorf("clearing stale chunks: %w", err)
	}
	if p.vectors != nil {
		if err := p.vectors.DeleteByDocument(ctx, job.DocumentID); err != nil {
			return fmt.Errorf("clearing stale vectors: %w", err)
		}
	}
	if p.keywords != nil {
		if err := p.keywords.DeleteByDocument(ctx, job.DocumentID); err != nil {
			return fmt.Errorf("clearing stale keyword entries: %w", err)
		}
	}

	if len(chunks) > 0 {
		if err := p.docs.SaveChunks(ctx, chunks); err != nil {
			return fmt.Errorf("saving chunks: %w", err)
		}
		if len(entries) > 0 {
			if err := p.vectors.Upsert(ctx, entries); err != nil {
				return fmt.Errorf("upserting vectors: %w", err)
			}
		}
		if p.keywords != nil {
			if err := p.keywords.Index(ctx, chunks); err != nil {
				return fmt.Errorf("indexing keywords: %w", err)
			}
		}
	}

	if err := p.upsertDocument(ctx, job, fileName, contentHash, int64(len(raw)), parsed, chunking); err != nil {
		return err
	}

	report(domain.PhaseComplete)
	logger.Info("indexed %s (%d chunks)", fileName, len(chunks))
	return nil
}

// embedChunks batch-embeds chunk contents, respecting the configured
// batch size, and builds vector entries tagged with the model id.
func (p *Pipeline) embedChunks(ctx context.Context, path string, chunks []domain.Chunk) ([]domain.VectorEntry, error) {
	batchSize := p.embedding.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}

	entries := make([]domain.VectorEntry, 0, len(chunks))
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}
		vectors, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(batch))
		}

		for i, chunk := range batch {
			entries = append(entries, domain.VectorEntry{
				ChunkID:    chunk.ID,
				DocumentID: chunk.DocumentID,
				ScopeID:    chunk.ScopeID,
				Path:       path,
				Embedding:  vectors[i],
				ModelID:    p.embedder.ModelName(),
			})
		}
	}
	return entries, nil
}

// upsertDocument looks the document up by id and updates it in place,
// inserting only when it does not exist yet. Racing jobs for the same
// document id are not serialised here: the last job to reach this upsert
// wins, which is the documented reconciliation policy.
func (p *Pipeline) upsertDocument(ctx context.Context, job domain.IngestionJob, fileName, contentHash string, size int64, parsed *driven.ParseResult, chunking domain.ChunkingSettings) error {
	now := time.Now()

	inserting := false
	doc, err := p.docs.GetDocument(ctx, job.DocumentID)
	if errors.Is(err, domain.ErrNotFound) {
		inserting = true
		doc = &domain.Document{
			ID:        job.DocumentID,
			ScopeID:   job.Options.ScopeID,
			CreatedAt: now,
		}
	} else if err != nil {
		return fmt.Errorf("loading document: %w", err)
	}

	doc.Path = job.Path
	doc.FileName = fileName
	doc.ContentType = job.Options.ContentType
	doc.ContentHash = contentHash
	doc.Size = size
	doc.Status = domain.DocumentReady
	doc.ErrorMessage = ""
	doc.UpdatedAt = now
	doc.LastIndexedAt = now

	meta := make(map[string]string)
	for k, v := range job.Options.Metadata {
		meta[k] = v
	}
	for k, v := range parsed.Metadata {
		meta[k] = v
	}
	for k, v := range chunking.ProvenanceMetadata() {
		meta[k] = v
	}
	if p.embedder != nil {
		for k, v := range p.embedding.ProvenanceMetadata() {
			meta[k] = v
		}
	}
	doc.Metadata = meta

	if inserting {
		if err := p.docs.InsertDocument(ctx, doc); err != nil {
			return fmt.Errorf("inserting document: %w", err)
		}
		return nil
	}
	if err := p.docs.UpdateDocument(ctx, doc); err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	return nil
}

// setStatus records a lifecycle transition on the document row. It is
// best-effort: status bookkeeping must not mask the pipeline outcome,
// and it still runs when the job context is already cancelled.
func (p *Pipeline) setStatus(ctx context.Context, documentID string, status domain.DocumentStatus, message string) {
	ctx = context.WithoutCancel(ctx)

	doc, err := p.docs.GetDocument(ctx, documentID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Debug("loading document %s for status update: %v", documentID, err)
		}
		return
	}
	doc.Status = status
	doc.ErrorMessage = message
	doc.UpdatedAt = time.Now()
	if err := p.docs.UpdateDocument(ctx, doc); err != nil {
		logger.Debug("updating document %s status: %v", documentID, err)
	}
}
