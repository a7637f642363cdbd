// Package worker drains the journal queue into the activity journal.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/agrisiti/agrikit/internal/adapters/repository"
	"github.com/agrisiti/agrikit/internal/domain/model"
	"github.com/agrisiti/agrikit/pkg/logger"
	"github.com/agrisiti/agrikit/pkg/metrics"
)

const (
	defaultWorkers      = 2
	poolShutdownTimeout = 30 * time.Second
)

// Journal persists events.
type Journal interface {
	AppendJournal(ctx context.Context, e model.Event) error
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Event
}

// Worker processes events until its queue closes or ctx ends.
type Worker interface {
	// Run blocks until the queue is drained and closed or ctx is canceled.
	Run(ctx context.Context)
}

// InMemoryWorker writes queued events to the journal.
type InMemoryWorker struct {
	queue   Queue
	journal Journal
	name    string
	logger  logger.Logger
}

// NewInMemoryWorker creates a worker reading q and writing j.
func NewInMemoryWorker(q Queue, j Journal, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:   q,
		journal: j,
		name:    "worker",
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	for event := range w.queue.Dequeue(ctx) {
		if err := w.process(ctx, event); err != nil {
			w.logger.Error(ctx, "journal write failed",
				logger.String("event_id", event.EventID), logger.Error(err))
		}
	}
}

func (w *InMemoryWorker) process(ctx context.Context, event model.Event) error { //nolint:gocritic // hugeParam: events travel by value
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	err := w.journal.AppendJournal(ctx, event)
	switch {
	case err == nil:
		metrics.RecordJournalEvent()
		return nil
	case errors.Is(err, repository.ErrDuplicateEvent):
		metrics.RecordJournalDuplicate()
		w.logger.Debug(ctx, "duplicate journal event", logger.String("event_id", event.EventID))
		return nil
	default:
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "journal_error")
		return fmt.Errorf("append %s: %w", event.EventID, err)
	}
}

// Pool runs a fixed number of workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	logger  logger.Logger
}

// NewPool creates count workers sharing q and j. count < 1 uses the default.
func NewPool(count int, q Queue, j Journal, opts ...Option) *Pool {
	if count < 1 {
		count = defaultWorkers
	}
	p := &Pool{workers: make([]*InMemoryWorker, count), logger: logger.Nop()}
	for i := range p.workers {
		wopts := append([]Option{WithName("journal-worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, j, wopts...)
	}
	if len(p.workers) > 0 {
		p.logger = p.workers[0].logger
	}
	return p
}

// Start launches the workers. They stop once the queue is closed and drained,
// or when ctx ends.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	metrics.UpdateWorkerActiveCount(len(p.workers))
	for _, w := range p.workers {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.Run(ctx)
		}()
	}
}

// Wait blocks until every worker has returned or ctx ends. The queue must be
// closed first for workers to drain and exit on their own.
func (p *Pool) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	ctx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()
	select {
	case <-done:
		metrics.UpdateWorkerActiveCount(0)
		return nil
	case <-ctx.Done():
		if p.cancel != nil {
			p.cancel()
		}
		p.logger.Warn(ctx, "journal workers did not drain in time")
		return fmt.Errorf("worker pool shutdown: %w", ctx.Err())
	}
}
