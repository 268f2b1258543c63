package driving

import (
	"context"

	"github.com/quarrydev/quarry/internal/core/domain"
)

// ReindexService detects content and settings drift and re-enqueues
// affected documents.
type ReindexService interface {
	// Reindex examines the selected documents, deletes stale chunks and
	// vectors for those that drifted, and enqueues fresh jobs carrying
	// the same document ids. It never throws out of the batch: per
	// document problems become reason codes in the result.
	Reindex(ctx context.Context, req domain.ReindexRequest) (*domain.ReindexResult, error)

	// Inspect reports the reindex reason for one document without
	// enqueueing anything.
	Inspect(ctx context.Context, documentID string, force bool) (domain.ReindexReason, error)
}
