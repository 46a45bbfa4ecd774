package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/neomorfeo/waterorder/internal/domain"
)

// Compile-time check: DeliveryScheduler implements domain.DeliveryScheduler.
var _ domain.DeliveryScheduler = (*DeliveryScheduler)(nil)

// deliveryTask is the pair of timers armed for one order.
type deliveryTask struct {
	orderID string
	start   domain.TimerHandle
	end     domain.TimerHandle
}

// DeliveryScheduler drives orders through IN_PROGRESS and DELIVERED on
// wall-clock time. Tasks are tracked per order id until the end timer fires
// or the order is cancelled.
type DeliveryScheduler struct {
	changer  domain.StatusChanger
	executor domain.Executor
	clock    domain.Clock
	logger   *slog.Logger

	mu    sync.Mutex
	tasks map[string]*deliveryTask
}

// SchedulerOption configures a DeliveryScheduler.
type SchedulerOption func(*DeliveryScheduler)

// WithClock overrides the time source used to compute delays.
func WithClock(clock domain.Clock) SchedulerOption {
	return func(s *DeliveryScheduler) { s.clock = clock }
}

// WithLogger sets the scheduler logger.
func WithLogger(logger *slog.Logger) SchedulerOption {
	return func(s *DeliveryScheduler) { s.logger = logger }
}

// NewDeliveryScheduler creates a scheduler that applies transitions through
// changer and fires them on executor.
func NewDeliveryScheduler(changer domain.StatusChanger, executor domain.Executor, opts ...SchedulerOption) *DeliveryScheduler {
	s := &DeliveryScheduler{
		changer:  changer,
		executor: executor,
		clock:    time.Now,
		logger:   slog.Default(),
		tasks:    make(map[string]*deliveryTask),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "delivery_scheduler")
	return s
}

// Delays returns the time until delivery start and delivery end, both
// truncated to whole seconds. A start in the past yields a negative delay,
// which the executor fires immediately.
func Delays(order domain.Order, now time.Time) (toStart, toEnd time.Duration) {
	toStart = order.StartDateTime.Sub(now).Truncate(time.Second)
	toEnd = toStart + order.Duration.Truncate(time.Second)
	return toStart, toEnd
}

// Schedule arms the start and end timers for order. Both timers are armed
// and tracked before Schedule returns. Scheduling an already tracked order
// replaces its previous timers.
func (s *DeliveryScheduler) Schedule(ctx context.Context, order domain.Order) error {
	toStart, toEnd := Delays(order, s.clock())
	task := &deliveryTask{orderID: order.ID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.tasks[order.ID]; ok {
		s.logger.WarnContext(ctx, "replacing delivery task", "order_id", order.ID)
		prev.start.Cancel()
		prev.end.Cancel()
		delete(s.tasks, order.ID)
	}

	start, err := s.executor.Schedule(toStart, func() { s.startDelivery(task) })
	if err != nil {
		return fmt.Errorf("arming delivery start of order %q: %w", order.ID, err)
	}
	end, err := s.executor.Schedule(toEnd, func() { s.completeDelivery(task) })
	if err != nil {
		start.Cancel()
		return fmt.Errorf("arming delivery end of order %q: %w", order.ID, err)
	}

	task.start, task.end = start, end
	s.tasks[order.ID] = task

	s.logger.InfoContext(ctx, "delivery scheduled",
		"order_id", order.ID,
		"start_in", toStart,
		"end_in", toEnd,
	)
	return nil
}

// Cancel disarms both timers of the order and applies the cancel event.
// It fails with *domain.DeliveryTaskNotFoundError when the order has no
// tracked task, and with *domain.InvalidOrderError when delivery has
// already started.
func (s *DeliveryScheduler) Cancel(ctx context.Context, orderID string) error {
	s.mu.Lock()
	task, ok := s.tasks[orderID]
	if !ok {
		s.mu.Unlock()
		return &domain.DeliveryTaskNotFoundError{OrderID: orderID}
	}
	if !task.start.Cancel() {
		s.mu.Unlock()
		return &domain.InvalidOrderError{
			Action:  domain.ActionCancel,
			Message: fmt.Sprintf("delivery of order %s has already started", orderID),
		}
	}
	task.end.Cancel()
	delete(s.tasks, orderID)
	s.mu.Unlock()

	if _, err := s.changer.Change(ctx, orderID, domain.EventCancel); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.ErrorContext(ctx, "tracked order missing from store", "order_id", orderID)
		}
		return fmt.Errorf("cancelling order %q: %w", orderID, err)
	}

	s.logger.InfoContext(ctx, "delivery cancelled", "order_id", orderID)
	return nil
}

// Pending returns the number of tracked delivery tasks.
func (s *DeliveryScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *DeliveryScheduler) startDelivery(task *deliveryTask) {
	ctx := context.Background()
	if _, err := s.changer.Change(ctx, task.orderID, domain.EventStartDelivery); err != nil {
		s.logCallbackError(ctx, task.orderID, domain.EventStartDelivery, err)
	}
}

// completeDelivery also applies the start event when the end timer wins the
// race against the start timer, which happens for zero-length deliveries
// running on more than one worker.
func (s *DeliveryScheduler) completeDelivery(task *deliveryTask) {
	ctx := context.Background()

	s.mu.Lock()
	if s.tasks[task.orderID] == task {
		delete(s.tasks, task.orderID)
	}
	s.mu.Unlock()

	if _, err := s.changer.Change(ctx, task.orderID, domain.EventStartDelivery); err != nil {
		s.logCallbackError(ctx, task.orderID, domain.EventStartDelivery, err)
		return
	}
	if _, err := s.changer.Change(ctx, task.orderID, domain.EventCompleteDelivery); err != nil {
		s.logCallbackError(ctx, task.orderID, domain.EventCompleteDelivery, err)
	}
}

// Timed callbacks have no caller to report to and are never retried.
func (s *DeliveryScheduler) logCallbackError(ctx context.Context, orderID string, event domain.Event, err error) {
	var te *domain.TransitionError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.logger.ErrorContext(ctx, "scheduled order missing from store",
			"order_id", orderID, "event", event, "error", err)
	case errors.As(err, &te):
		s.logger.WarnContext(ctx, "skipping scheduled transition",
			"order_id", orderID, "event", event, "status", te.Current)
	default:
		s.logger.ErrorContext(ctx, "scheduled transition failed",
			"order_id", orderID, "event", event, "error", err)
	}
}
