package dispatcher

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Job is one queued dispatch request
type Job struct {
	WorkspaceID string
	EventType   string
	Data        map[string]interface{}
}

// Background detaches webhook dispatch from the triggering request's
// lifecycle: callers enqueue without blocking and the workers run each
// dispatch to completion. The business transaction that raised an event
// commits and responds regardless of dispatch outcome or latency.
type Background struct {
	dispatcher *Dispatcher
	logger     *zap.Logger
	jobs       chan Job
	workers    int
	wg         sync.WaitGroup
	mu         sync.Mutex
	closed     bool
}

// NewBackground creates the dispatch queue. queueSize bounds how many events
// can wait; workers is the number of concurrent dispatch loops.
func NewBackground(dispatcher *Dispatcher, queueSize, workers int, logger *zap.Logger) *Background {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 4
	}
	return &Background{
		dispatcher: dispatcher,
		logger:     logger,
		jobs:       make(chan Job, queueSize),
		workers:    workers,
	}
}

// Start launches the worker goroutines
func (b *Background) Start() {
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.run()
	}
	b.logger.Info("Dispatch queue started",
		zap.Int("workers", b.workers),
		zap.Int("queue_size", cap(b.jobs)),
	)
}

// Enqueue hands a dispatch job to the workers without blocking. When the
// queue is full the event is dropped with a logged warning rather than
// stalling the caller.
func (b *Background) Enqueue(job Job) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		b.logger.Warn("Dispatch queue stopped, dropping event",
			zap.String("workspace_id", job.WorkspaceID),
			zap.String("event_type", job.EventType),
		)
		return
	}

	select {
	case b.jobs <- job:
	default:
		b.logger.Warn("Dispatch queue full, dropping event",
			zap.String("workspace_id", job.WorkspaceID),
			zap.String("event_type", job.EventType),
		)
	}
}

// Stop closes the queue and waits for in-flight dispatches to settle
func (b *Background) Stop() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.jobs)
	b.mu.Unlock()

	b.wg.Wait()
	b.logger.Info("Dispatch queue stopped")
}

func (b *Background) run() {
	defer b.wg.Done()
	for job := range b.jobs {
		b.dispatch(job)
	}
}

// dispatch runs one job with panic recovery so a bad payload cannot kill the
// worker loop
func (b *Background) dispatch(job Job) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Panic during webhook dispatch",
				zap.String("workspace_id", job.WorkspaceID),
				zap.String("event_type", job.EventType),
				zap.Any("panic", r),
			)
		}
	}()

	b.dispatcher.Dispatch(context.Background(), job.WorkspaceID, job.EventType, job.Data)
}
