package domain

// ReindexReason explains why a document was (or was not) re-enqueued.
type ReindexReason string

// Reindex reasons, in precedence order. When several conditions hold at
// once the highest-precedence reason is reported:
// forced > content changed > embedding settings > chunking settings > unchanged.
const (
	// ReasonForced means the caller requested reindexing unconditionally.
	ReasonForced ReindexReason = "forced"

	// ReasonContentChanged means the source bytes no longer match the
	// stored content hash.
	ReasonContentChanged ReindexReason = "content_changed"

	// ReasonEmbeddingSettingsChanged means the configured embedding
	// provider, model or dimensions differ from the provenance snapshot.
	ReasonEmbeddingSettingsChanged ReindexReason = "embedding_settings_changed"

	// ReasonChunkingSettingsChanged means the configured chunking
	// strategy or parameters differ from the provenance snapshot.
	ReasonChunkingSettingsChanged ReindexReason = "chunking_settings_changed"

	// ReasonUnchanged means nothing drifted; the document is skipped.
	ReasonUnchanged ReindexReason = "unchanged"

	// ReasonReadFailed means the content source could not be read for
	// hashing. Counted as failed, never thrown out of the batch.
	ReasonReadFailed ReindexReason = "read_failed"
)

// NeedsReindex returns true when the reason requires re-processing.
func (r ReindexReason) NeedsReindex() bool {
	switch r {
	case ReasonForced, ReasonContentChanged, ReasonEmbeddingSettingsChanged, ReasonChunkingSettingsChanged:
		return true
	default:
		return false
	}
}

// ReindexRequest selects documents for drift detection.
type ReindexRequest struct {
	// DocumentIDs is an explicit set of documents. When empty, ScopeID
	// selects all documents in a scope; when that is also empty the
	// whole corpus is examined.
	DocumentIDs []string

	// ScopeID limits selection to one scope.
	ScopeID string

	// Force skips all comparisons and re-enqueues every selected document.
	Force bool
}

// ReindexResult summarises one batch run.
type ReindexResult struct {
	// Enqueued is the number of documents re-queued for ingestion.
	Enqueued int

	// Skipped is the number of documents left untouched.
	Skipped int

	// Failed is the number of documents that could not be handled
	// (unreadable source, full queue).
	Failed int

	// Reasons is a histogram of the per-document decisions.
	Reasons map[ReindexReason]int
}
