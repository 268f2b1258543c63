package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
	"github.com/quarrydev/quarry/internal/logger"
)

// jobHandle tracks one in-flight job for a document. Cancel is nil
// while the job is still queued; a worker installs it at dequeue time.
type jobHandle struct {
	jobID  string
	cancel context.CancelFunc
}

// Queue is a bounded FIFO job queue with a fixed worker pool.
//
// Each job runs under its own cancellation scope derived from the
// queue's shutdown scope, so one job can be cancelled without touching
// the others. The status map and the document-to-jobs map are the only
// shared mutable state; both are guarded by one mutex.
type Queue struct {
	runner   JobRunner
	observer driven.ProgressObserver
	jobs     chan domain.IngestionJob
	workers  int

	mu       sync.Mutex
	statuses map[string]*domain.JobStatus
	active   map[string][]*jobHandle
	closed   bool

	shutdown context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewQueue creates a queue with the given runner and settings.
// The observer is optional.
func NewQueue(runner JobRunner, observer driven.ProgressObserver, settings domain.QueueSettings) *Queue {
	defaults := domain.DefaultQueueSettings()
	if settings.Capacity <= 0 {
		settings.Capacity = defaults.Capacity
	}
	if settings.Workers <= 0 {
		settings.Workers = defaults.Workers
	}

	shutdown, cancel := context.WithCancel(context.Background())
	return &Queue{
		runner:   runner,
		observer: observer,
		jobs:     make(chan domain.IngestionJob, settings.Capacity),
		workers:  settings.Workers,
		statuses: make(map[string]*domain.JobStatus),
		active:   make(map[string][]*jobHandle),
		shutdown: shutdown,
		cancel:   cancel,
	}
}

// Start launches the worker pool.
func (q *Queue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	logger.Debug("ingestion queue started with %d workers", q.workers)
}

// Stop rejects further work, cancels in-flight jobs and waits for the
// workers to drain.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()
	logger.Debug("ingestion queue stopped")
}

// Enqueue adds a job to the queue. It never blocks: a full queue is
// reported as domain.ErrQueueFull, the backpressure signal for the
// caller to act on.
func (q *Queue) Enqueue(job domain.IngestionJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return domain.ErrQueueClosed
	}

	select {
	case q.jobs <- job:
	default:
		return domain.ErrQueueFull
	}

	status := &domain.JobStatus{
		JobID:      job.ID,
		DocumentID: job.DocumentID,
		State:      domain.JobQueued,
	}
	q.statuses[job.ID] = status
	// Every queued or running job for a document is a cancellation target.
	q.active[job.DocumentID] = append(q.active[job.DocumentID], &jobHandle{jobID: job.ID})

	q.notify(*status)
	return nil
}

// JobStatus returns a copy of the job's current status.
func (q *Queue) JobStatus(jobID string) (*domain.JobStatus, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	status, ok := q.statuses[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	snapshot := *status
	return &snapshot, nil
}

// CancelDocument cancels every job queued or running for the document,
// including an older job superseded by a duplicate enqueue. It returns
// false when nothing is in flight, including the race where the last
// job reached a terminal state just before the call.
func (q *Queue) CancelDocument(documentID string) bool {
	q.mu.Lock()

	var cancels []context.CancelFunc
	var snapshots []domain.JobStatus
	cancelled := false

	remaining := q.active[documentID][:0]
	for _, handle := range q.active[documentID] {
		status := q.statuses[handle.jobID]
		if status == nil || status.State.IsTerminal() {
			continue
		}
		if status.State == domain.JobQueued {
			// Not yet picked up: mark it terminal here and the worker
			// will skip it on dequeue.
			status.State = domain.JobCancelled
			status.CompletedAt = time.Now()
			snapshots = append(snapshots, *status)
			cancelled = true
			continue
		}
		if handle.cancel != nil {
			cancels = append(cancels, handle.cancel)
			cancelled = true
		}
		// Running jobs stay tracked until their worker sees the cancel.
		remaining = append(remaining, handle)
	}
	if len(remaining) == 0 {
		delete(q.active, documentID)
	} else {
		q.active[documentID] = remaining
	}
	q.mu.Unlock()

	for _, snapshot := range snapshots {
		q.notify(snapshot)
	}
	for _, cancel := range cancels {
		cancel()
	}
	return cancelled
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for job := range q.jobs {
		select {
		case <-q.shutdown.Done():
			return
		default:
		}
		q.process(job)
	}
}

func (q *Queue) process(job domain.IngestionJob) {
	q.mu.Lock()
	status := q.statuses[job.ID]
	if status == nil || status.State.IsTerminal() {
		// Cancelled while queued.
		q.mu.Unlock()
		return
	}
	status.State = domain.JobProcessing
	status.StartedAt = time.Now()

	jobCtx, cancel := context.WithCancel(q.shutdown)
	for _, handle := range q.active[job.DocumentID] {
		if handle.jobID == job.ID {
			handle.cancel = cancel
			break
		}
	}
	snapshot := *status
	q.mu.Unlock()

	q.notify(snapshot)
	defer cancel()

	report := func(phase domain.JobPhase) {
		q.mu.Lock()
		if status.State.IsTerminal() {
			q.mu.Unlock()
			return
		}
		status.Phase = phase
		status.Percent = phase.Percent()
		snapshot := *status
		q.mu.Unlock()
		q.notify(snapshot)
	}

	err := q.runner.Run(jobCtx, job, report)

	q.mu.Lock()
	if !status.State.IsTerminal() {
		status.CompletedAt = time.Now()
		switch {
		case err == nil:
			status.State = domain.JobCompleted
			status.Phase = domain.PhaseComplete
			status.Percent = domain.PhaseComplete.Percent()
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			status.State = domain.JobCancelled
		default:
			status.State = domain.JobFailed
			status.Error = err.Error()
		}
	}
	q.dropHandleLocked(job.DocumentID, job.ID)
	snapshot = *status
	q.mu.Unlock()

	q.notify(snapshot)
}

// dropHandleLocked removes one job's handle from the document's
// in-flight list. The caller holds q.mu.
func (q *Queue) dropHandleLocked(documentID, jobID string) {
	handles := q.active[documentID]
	for i, handle := range handles {
		if handle.jobID == jobID {
			handles = append(handles[:i], handles[i+1:]...)
			break
		}
	}
	if len(handles) == 0 {
		delete(q.active, documentID)
	} else {
		q.active[documentID] = handles
	}
}

// notify pushes a status snapshot to the observer, fire-and-forget. A
// slow observer must never block a worker.
func (q *Queue) notify(status domain.JobStatus) {
	if q.observer == nil {
		return
	}
	go q.observer.Notify(status)
}
