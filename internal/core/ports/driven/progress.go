package driven

import "github.com/quarrydev/quarry/internal/core/domain"

// ProgressObserver receives job status snapshots as workers move through
// pipeline phases. Notifications are fire-and-forget: a slow or failing
// observer must never block or fail ingestion, so callers invoke it
// best-effort and drop errors.
type ProgressObserver interface {
	// Notify delivers a point-in-time copy of the job status.
	Notify(status domain.JobStatus)
}
