package async

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/agentic-store/concierge/pkg/utils/logging"
)

// task is a unit of background work with a name for logging
type task struct {
	name string
	fn   func(ctx context.Context) error
}

// Dispatcher runs handlers on a bounded background worker pool. Unlike a bare
// goroutine, submitted tasks are tracked so that Shutdown can drain everything
// that was accepted before the process exits.
type Dispatcher struct {
	queue   chan task
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
	workers int
}

// New creates a Dispatcher with the given queue capacity and worker count.
func New(capacity, workers int) *Dispatcher {
	if capacity <= 0 {
		capacity = 64
	}
	if workers <= 0 {
		workers = 4
	}

	d := &Dispatcher{
		queue:   make(chan task, capacity),
		workers: workers,
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}

	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for t := range d.queue {
		d.run(t)
	}
}

func (d *Dispatcher) run(t task) {
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			logging.Default().Error("panic in async handler", "task", t.name, "panic", r)
		}
	}()

	if err := t.fn(ctx); err != nil {
		logging.Default().Error("async handler failed", "task", t.name, "error", goerr.Unwrap(err))
	}
}

// Submit enqueues a handler for background execution. The handler runs with a
// background context detached from the request, but the request logger is
// preserved. Submit blocks when the queue is full; after Shutdown it runs the
// handler synchronously so no accepted work is dropped.
func (d *Dispatcher) Submit(ctx context.Context, name string, handler func(ctx context.Context) error) {
	bgCtx := context.Background()
	if logger := logging.From(ctx); logger != nil {
		bgCtx = logging.With(bgCtx, logger)
	}

	t := task{
		name: name,
		fn: func(context.Context) error {
			return handler(bgCtx)
		},
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.run(t)
		return
	}
	d.queue <- t
	d.mu.Unlock()
}

// Shutdown stops accepting new tasks and waits until all queued tasks have
// finished, or until the context is done.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "async dispatcher drain interrupted")
	}
}
