// Package queue holds diagnosis jobs until a worker picks them up.
//
// The queue is bounded and never blocks the caller: a full queue refuses
// the job so the transport can answer with backpressure.
package queue

import (
	"context"
	"sync"

	"github.com/okian/birthprofile/internal/domain/types"
	"github.com/okian/birthprofile/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
)

// Result is the outcome of one job.
type Result struct {
	Profile types.Profile
	Err     error
}

// Job is one birth input waiting for a worker. Done receives exactly one
// Result and must have room for it.
type Job struct {
	Ctx   context.Context //nolint:containedctx // request context travels with the job
	Input types.BirthInput
	Done  chan<- Result
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job to the queue.
	// Returns false if the queue is full or closed and the job was not enqueued.
	Enqueue(ctx context.Context, j Job) bool

	// Dequeue returns the channel workers receive jobs from.
	// The channel is closed when the queue is closed.
	Dequeue() <-chan Job

	// Len returns the current number of queued jobs.
	Len() int

	// Close stops accepting jobs. Queued jobs stay readable.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.jobs = make(chan Job, q.capacity)
	metrics.UpdateQueueDepth(0)

	return q
}

// Enqueue adds a job to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejection("closed")
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordQueueRejection("context_cancelled")
		return false
	}

	select {
	case q.jobs <- j:
		metrics.UpdateQueueDepth(len(q.jobs))
		return true
	default:
		metrics.RecordQueueRejection("full")
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns the channel workers receive jobs from.
func (q *InMemoryQueue) Dequeue() <-chan Job {
	return q.jobs
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len() int {
	return len(q.jobs)
}

// Capacity returns the maximum number of queued jobs.
func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

// Close stops accepting jobs.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
