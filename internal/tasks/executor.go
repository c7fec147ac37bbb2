package tasks

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned when the task queue cannot accept more work
	ErrQueueFull = errors.New("task queue is full")
	// ErrStopped is returned when enqueueing after shutdown has begun
	ErrStopped = errors.New("task executor is stopped")
)

// Enqueuer submits work for asynchronous background execution. Webhook
// handlers and the reminder scanner enqueue sends through this interface so
// request paths never block on carrier I/O.
type Enqueuer interface {
	Enqueue(name string, run func(ctx context.Context) error) error
}

type task struct {
	id   string
	name string
	run  func(ctx context.Context) error
}

// Executor is an in-process worker-pool implementation of Enqueuer.
// Production deployments can swap it for a durable queue; the messaging
// core only depends on the interface.
type Executor struct {
	log     *zap.Logger
	queue   chan task
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

// NewExecutor creates an executor with the given worker count and queue depth
func NewExecutor(workers, queueSize int, log *zap.Logger) *Executor {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 256
	}

	e := &Executor{
		log:   log,
		queue: make(chan task, queueSize),
	}

	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}

	return e
}

func (e *Executor) worker() {
	defer e.wg.Done()

	for t := range e.queue {
		start := t
		err := start.run(context.Background())
		if err != nil {
			e.log.Error("Background task failed",
				zap.String("task_id", start.id),
				zap.String("task", start.name),
				zap.Error(err))
			continue
		}
		e.log.Debug("Background task completed",
			zap.String("task_id", start.id),
			zap.String("task", start.name))
	}
}

// Enqueue submits a task for background execution. It never blocks: a full
// queue is reported to the caller instead.
func (e *Executor) Enqueue(name string, run func(ctx context.Context) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return ErrStopped
	}

	select {
	case e.queue <- task{id: uuid.New().String(), name: name, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop drains the queue and waits for in-flight tasks to finish
func (e *Executor) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.queue)
	e.mu.Unlock()

	e.wg.Wait()
}
