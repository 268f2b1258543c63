package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydev/quarry/internal/core/domain"
)

func queueJob(jobID, documentID string) domain.IngestionJob {
	return domain.IngestionJob{
		ID:         jobID,
		DocumentID: documentID,
		Path:       "docs/" + documentID + ".txt",
		Options:    domain.IngestOptions{ScopeID: "scope-1"},
	}
}

func waitForState(t *testing.T, q *Queue, jobID string, want domain.JobState) *domain.JobStatus {
	t.Helper()
	var status *domain.JobStatus
	require.Eventually(t, func() bool {
		var err error
		status, err = q.JobStatus(jobID)
		return err == nil && status.State == want
	}, 2*time.Second, 5*time.Millisecond, "job %s never reached %s", jobID, want)
	return status
}

func TestQueue_EnqueueBeyondCapacityReturnsBackpressure(t *testing.T) {
	q := NewQueue(&instantRunner{}, nil, domain.QueueSettings{Capacity: 2, Workers: 1})
	// Workers not started: jobs stay queued.

	require.NoError(t, q.Enqueue(queueJob("j1", "d1")))
	require.NoError(t, q.Enqueue(queueJob("j2", "d2")))

	err := q.Enqueue(queueJob("j3", "d3"))
	assert.ErrorIs(t, err, domain.ErrQueueFull)

	// The rejected job left no trace.
	_, err = q.JobStatus("j3")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQueue_JobCompletesThroughPhases(t *testing.T) {
	runner := &instantRunner{}
	observer := &mockObserver{}
	q := NewQueue(runner, observer, domain.QueueSettings{Capacity: 10, Workers: 2})
	q.Start()
	defer q.Stop()

	require.NoError(t, q.Enqueue(queueJob("j1", "d1")))

	status := waitForState(t, q, "j1", domain.JobCompleted)
	assert.Equal(t, domain.PhaseComplete, status.Phase)
	assert.Equal(t, 100, status.Percent)
	assert.Empty(t, status.Error)
	assert.False(t, status.StartedAt.IsZero())
	assert.False(t, status.CompletedAt.IsZero())

	// Observer saw at least the queued and terminal snapshots.
	require.Eventually(t, func() bool {
		observer.mu.Lock()
		defer observer.mu.Unlock()
		states := make(map[domain.JobState]bool)
		for _, s := range observer.statuses {
			states[s.State] = true
		}
		return states[domain.JobQueued] && states[domain.JobCompleted]
	}, 2*time.Second, 5*time.Millisecond)
}

func TestQueue_RunnerErrorMarksJobFailed(t *testing.T) {
	runner := &instantRunner{err: errors.New("parse exploded")}
	q := NewQueue(runner, nil, domain.QueueSettings{Capacity: 10, Workers: 1})
	q.Start()
	defer q.Stop()

	require.NoError(t, q.Enqueue(queueJob("j1", "d1")))

	status := waitForState(t, q, "j1", domain.JobFailed)
	assert.Equal(t, "parse exploded", status.Error)
}

func TestQueue_CancelQueuedJob(t *testing.T) {
	runner := &instantRunner{}
	q := NewQueue(runner, nil, domain.QueueSettings{Capacity: 10, Workers: 1})

	require.NoError(t, q.Enqueue(queueJob("j1", "d1")))
	assert.True(t, q.CancelDocument("d1"))

	status, err := q.JobStatus("j1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobCancelled, status.State)

	// The worker skips the cancelled job on dequeue.
	q.Start()
	q.Stop()
	assert.Empty(t, runner.jobs)
}

func TestQueue_CancelRunningJob(t *testing.T) {
	runner := newBlockingRunner()
	q := NewQueue(runner, nil, domain.QueueSettings{Capacity: 10, Workers: 1})
	q.Start()
	defer q.Stop()

	require.NoError(t, q.Enqueue(queueJob("j1", "d1")))
	<-runner.started

	assert.True(t, q.CancelDocument("d1"))

	status := waitForState(t, q, "j1", domain.JobCancelled)
	assert.Empty(t, status.Error)
}

func TestQueue_CancelAfterCompletionReturnsFalse(t *testing.T) {
	q := NewQueue(&instantRunner{}, nil, domain.QueueSettings{Capacity: 10, Workers: 1})
	q.Start()
	defer q.Stop()

	require.NoError(t, q.Enqueue(queueJob("j1", "d1")))
	waitForState(t, q, "j1", domain.JobCompleted)

	// The race where the job finished first: nothing left to cancel.
	assert.False(t, q.CancelDocument("d1"))
}

func TestQueue_CancelUnknownDocumentReturnsFalse(t *testing.T) {
	q := NewQueue(&instantRunner{}, nil, domain.QueueSettings{Capacity: 10, Workers: 1})
	assert.False(t, q.CancelDocument("nope"))
}

func TestQueue_CancelOnlyAffectsTargetDocument(t *testing.T) {
	runner := newBlockingRunner()
	q := NewQueue(runner, nil, domain.QueueSettings{Capacity: 10, Workers: 2})
	q.Start()
	defer q.Stop()

	require.NoError(t, q.Enqueue(queueJob("j1", "d1")))
	require.NoError(t, q.Enqueue(queueJob("j2", "d2")))
	<-runner.started
	<-runner.started

	assert.True(t, q.CancelDocument("d1"))
	waitForState(t, q, "j1", domain.JobCancelled)

	// The sibling keeps running, then completes when released.
	status, err := q.JobStatus("j2")
	require.NoError(t, err)
	assert.Equal(t, domain.JobProcessing, status.State)

	close(runner.release)
	waitForState(t, q, "j2", domain.JobCompleted)
}

func TestQueue_EnqueueAfterStopReturnsClosed(t *testing.T) {
	q := NewQueue(&instantRunner{}, nil, domain.QueueSettings{Capacity: 10, Workers: 1})
	q.Start()
	q.Stop()

	err := q.Enqueue(queueJob("j1", "d1"))
	assert.ErrorIs(t, err, domain.ErrQueueClosed)
}

func TestQueue_CancelDocumentCoversSupersededJob(t *testing.T) {
	runner := newBlockingRunner()
	q := NewQueue(runner, nil, domain.QueueSettings{Capacity: 10, Workers: 1})
	q.Start()
	defer q.Stop()

	require.NoError(t, q.Enqueue(queueJob("j1", "d1")))
	<-runner.started
	require.NoError(t, q.Enqueue(queueJob("j2", "d1")))

	// Cancelling the document takes out both the queued duplicate and
	// the older job still running for it.
	assert.True(t, q.CancelDocument("d1"))

	status, err := q.JobStatus("j2")
	require.NoError(t, err)
	assert.Equal(t, domain.JobCancelled, status.State)

	waitForState(t, q, "j1", domain.JobCancelled)

	// Everything for the document settled; nothing left to cancel.
	assert.False(t, q.CancelDocument("d1"))
}

func TestQueue_StatusIsACopy(t *testing.T) {
	q := NewQueue(&instantRunner{}, nil, domain.QueueSettings{Capacity: 10, Workers: 1})
	require.NoError(t, q.Enqueue(queueJob("j1", "d1")))

	status, err := q.JobStatus("j1")
	require.NoError(t, err)
	status.State = domain.JobFailed

	fresh, err := q.JobStatus("j1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobQueued, fresh.State)
}
