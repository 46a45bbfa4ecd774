package timer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/neomorfeo/waterorder/internal/domain"
)

// Compile-time check: Executor implements domain.Executor.
var _ domain.Executor = (*Executor)(nil)

// ErrStopped is returned by Schedule after Stop has been called.
var ErrStopped = errors.New("executor stopped")

// Executor arms one runtime timer per callback and hands due callbacks to a
// fixed pool of workers. With one worker, callbacks run one at a time in the
// order they became due.
type Executor struct {
	queue  chan func()
	done   chan struct{}
	wg     sync.WaitGroup
	logger *slog.Logger

	mu      sync.Mutex
	stopped bool
}

// New starts an executor with the given number of workers (at least one).
func New(workers int, logger *slog.Logger) *Executor {
	if workers < 1 {
		workers = 1
	}
	e := &Executor{
		queue:  make(chan func()),
		done:   make(chan struct{}),
		logger: logger.With("component", "timer_executor"),
	}
	for range workers {
		e.wg.Add(1)
		go e.work()
	}
	return e
}

// Schedule runs fn once after delay. A non-positive delay fires immediately.
func (e *Executor) Schedule(delay time.Duration, fn func()) (domain.TimerHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return nil, ErrStopped
	}

	if delay < 0 {
		delay = 0
	}
	t := time.AfterFunc(delay, func() {
		select {
		case e.queue <- fn:
		case <-e.done:
		}
	})
	return handle{timer: t}, nil
}

// Stop refuses new callbacks, drops the ones not yet due, and waits for
// running callbacks to return or ctx to expire.
func (e *Executor) Stop(ctx context.Context) error {
	e.mu.Lock()
	if !e.stopped {
		e.stopped = true
		close(e.done)
	}
	e.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Executor) work() {
	defer e.wg.Done()
	for {
		select {
		case fn := <-e.queue:
			e.run(fn)
		case <-e.done:
			return
		}
	}
}

func (e *Executor) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("scheduled callback panicked", "panic", r)
		}
	}()
	fn()
}

type handle struct {
	timer *time.Timer
}

func (h handle) Cancel() bool {
	return h.timer.Stop()
}
