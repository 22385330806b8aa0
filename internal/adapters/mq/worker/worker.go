// Package worker computes queued diagnosis jobs on a fixed pool of goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/birthprofile/internal/adapters/mq/queue"
	"github.com/okian/birthprofile/internal/domain/types"
	"github.com/okian/birthprofile/pkg/logger"
	"github.com/okian/birthprofile/pkg/metrics"
)

// Default worker configuration constants.
const (
	poolShutdownTimeout = 30 * time.Second
)

// ErrUnavailable is returned when the queue refuses a job.
var ErrUnavailable = errors.New("diagnosis queue unavailable")

// Diagnoser computes a profile from a birth record.
type Diagnoser interface {
	Diagnose(ctx context.Context, in types.BirthInput) (types.Profile, error)
}

// Source defines how workers receive jobs.
type Source interface {
	Dequeue() <-chan queue.Job
}

// InMemoryWorker computes jobs read from a Source.
type InMemoryWorker struct {
	source    Source
	diagnoser Diagnoser
	name      string

	done chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(source Source, d Diagnoser, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		source:    source,
		diagnoser: d,
		name:      "worker",
		done:      make(chan struct{}),
		logger:    logger.Discard(),
	}

	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)

	return w
}

// Run computes jobs until the source is closed and drained or ctx is done.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.source.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			metrics.UpdateQueueDepth(len(jobs))
			w.process(job)
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// process answers one job. Jobs whose caller already gave up are skipped.
func (w *InMemoryWorker) process(job queue.Job) { //nolint:gocritic // hugeParam: Job is passed by value over the channel
	if err := job.Ctx.Err(); err != nil {
		job.Done <- queue.Result{Err: err}
		return
	}

	metrics.AddWorkersBusy(1)
	defer metrics.AddWorkersBusy(-1)

	p, err := w.diagnoser.Diagnose(job.Ctx, job.Input)
	if err != nil {
		w.logger.Debug(job.Ctx, "job failed", logger.String("name", job.Input.Name), logger.Error(err))
	}
	job.Done <- queue.Result{Profile: p, Err: err}
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   queue.Queue

	logger logger.Logger
}

// NewPool creates a new worker pool. A workerCount below one means one
// worker per CPU.
func NewPool(workerCount int, q queue.Queue, d Diagnoser, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	cfg := &InMemoryWorker{logger: logger.Discard()}
	for _, opt := range opts {
		opt(cfg)
	}
	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  cfg.logger.Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		workerOpts := append(append([]Option(nil), opts...), WithName("worker-"+strconv.Itoa(i)))
		pool.workers[i] = NewInMemoryWorker(q, d, workerOpts...)
	}

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Submit queues one input. The returned channel receives exactly one Result.
func (p *Pool) Submit(ctx context.Context, in types.BirthInput) (<-chan queue.Result, error) {
	done := make(chan queue.Result, 1)
	if !p.queue.Enqueue(ctx, queue.Job{Ctx: ctx, Input: in, Done: done}) {
		return nil, ErrUnavailable
	}
	return done, nil
}

// DiagnoseBatch computes every input on the pool and returns the results in
// input order. Per-input failures are reported in the results; the error is
// set only when the batch could not be queued or ctx ended.
func (p *Pool) DiagnoseBatch(ctx context.Context, inputs []types.BirthInput) ([]queue.Result, error) {
	metrics.RecordBatchSize(len(inputs))

	// Jobs already queued are skipped by the workers if queuing fails midway.
	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pending := make([]<-chan queue.Result, len(inputs))
	for i, in := range inputs {
		ch, err := p.Submit(batchCtx, in)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		pending[i] = ch
	}

	results := make([]queue.Result, len(inputs))
	for i, ch := range pending {
		select {
		case r := <-ch:
			results[i] = r
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return results, nil
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("shutdown timed out: %w", shutdownCtx.Err())
		}
	}
	return nil
}
