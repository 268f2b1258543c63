package domain

import "time"

// JobState tracks an ingestion job through the queue.
type JobState string

// Ingestion job states.
const (
	// JobQueued means the job is waiting in the queue.
	JobQueued JobState = "queued"

	// JobProcessing means a worker is running the pipeline for this job.
	JobProcessing JobState = "processing"

	// JobCompleted means the pipeline finished successfully.
	JobCompleted JobState = "completed"

	// JobFailed means the pipeline returned an error.
	JobFailed JobState = "failed"

	// JobCancelled means the job's context was cancelled before completion.
	// Cancelled jobs are reported distinctly, never as failed.
	JobCancelled JobState = "cancelled"
)

// IsTerminal returns true once the job can no longer change state.
// At most one terminal outcome is recorded per job id.
func (s JobState) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// JobPhase identifies the pipeline step a processing job is in.
type JobPhase string

// Pipeline phases in execution order.
const (
	PhaseParsing   JobPhase = "parsing"
	PhaseChunking  JobPhase = "chunking"
	PhaseEmbedding JobPhase = "embedding"
	PhaseStoring   JobPhase = "storing"
	PhaseComplete  JobPhase = "complete"
)

// Percent returns the coarse completion percentage for the phase.
func (p JobPhase) Percent() int {
	switch p {
	case PhaseParsing:
		return 10
	case PhaseChunking:
		return 30
	case PhaseEmbedding:
		return 60
	case PhaseStoring:
		return 85
	case PhaseComplete:
		return 100
	default:
		return 0
	}
}

// IngestOptions is the settings snapshot an ingestion job carries.
// Workers use the snapshot, never live settings, so a settings change
// only affects jobs enqueued afterwards.
type IngestOptions struct {
	// ScopeID is the scope the document is ingested into.
	ScopeID string

	// ContentType is an optional MIME hint for parser selection.
	ContentType string

	// Chunking is the chunking configuration captured at enqueue time.
	Chunking ChunkingSettings

	// Metadata is merged into the document's metadata map.
	Metadata map[string]string
}

// IngestionJob is one unit of work for the worker pool.
type IngestionJob struct {
	// ID is the unique job identifier.
	ID string

	// DocumentID is the document the job creates or updates. Re-ingestion
	// reuses the same document id so the pipeline upserts in place.
	DocumentID string

	// Path is the logical path the content source resolves.
	Path string

	// Options is the snapshot of ingestion settings for this job.
	Options IngestOptions

	// BatchID groups jobs enqueued by one reindex run, if any.
	BatchID string
}

// JobStatus is the externally visible state of a job.
type JobStatus struct {
	// JobID identifies the job.
	JobID string

	// DocumentID identifies the document being processed.
	DocumentID string

	// State is the queue state.
	State JobState

	// Phase is the current pipeline phase while processing.
	Phase JobPhase

	// Percent is the coarse completion percentage (0-100).
	Percent int

	// Error holds the failure message when State is failed.
	Error string

	// StartedAt is when a worker dequeued the job.
	StartedAt time.Time

	// CompletedAt is when the job reached a terminal state.
	CompletedAt time.Time
}
