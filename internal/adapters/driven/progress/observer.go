// Package progress provides a ProgressObserver that writes job status
// transitions to the application log.
package progress

import (
	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
	"github.com/quarrydev/quarry/internal/logger"
)

// Ensure LogObserver implements the interface.
var _ driven.ProgressObserver = (*LogObserver)(nil)

// LogObserver logs job progress. Phase transitions are verbose-only;
// terminal outcomes always log.
type LogObserver struct{}

// NewLogObserver creates a logging progress observer.
func NewLogObserver() *LogObserver {
	return &LogObserver{}
}

// Notify logs the status snapshot.
func (o *LogObserver) Notify(status domain.JobStatus) {
	switch status.State {
	case domain.JobFailed:
		logger.Error("Job %s failed for document %s: %s", status.JobID, status.DocumentID, status.Error)
	case domain.JobCancelled:
		logger.Info("Job %s cancelled for document %s", status.JobID, status.DocumentID)
	case domain.JobCompleted:
		logger.Info("Job %s completed for document %s", status.JobID, status.DocumentID)
	case domain.JobProcessing:
		logger.Debug("Job %s: %s (%d%%)", status.JobID, status.Phase, status.Percent)
	default:
		logger.Debug("Job %s queued for document %s", status.JobID, status.DocumentID)
	}
}
