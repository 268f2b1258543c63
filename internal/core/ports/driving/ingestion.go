package driving

import (
	"context"

	"github.com/quarrydev/quarry/internal/core/domain"
)

// IngestRequest registers a logical path for ingestion.
type IngestRequest struct {
	// DocumentID optionally pins the document id. When empty a new id is
	// generated; re-ingestion with an existing id updates in place.
	DocumentID string

	// Path is the logical path the content source resolves.
	Path string

	// Options overrides parts of the ingestion settings snapshot.
	// Zero-valued fields fall back to configured defaults.
	Options domain.IngestOptions
}

// IngestionService accepts documents into the background pipeline.
type IngestionService interface {
	// Enqueue registers the document (status pending) and queues a job.
	// Returns domain.ErrQueueFull when the queue is at capacity - a
	// backpressure signal, not a transient error.
	Enqueue(ctx context.Context, req IngestRequest) (*domain.IngestionJob, error)

	// JobStatus returns the current status of a job.
	JobStatus(jobID string) (*domain.JobStatus, error)

	// CancelDocument cancels every job currently running or queued for
	// the document. Returns true if at least one job was cancelled;
	// false when nothing was in flight (including the race where the
	// job finished just before cancellation was requested).
	CancelDocument(documentID string) bool
}
