package domain

import (
	"context"
	"time"
)

// OrderReader is the read-only view of the order store.
type OrderReader interface {
	Get(ctx context.Context, orderID string) (Order, error)
	List(ctx context.Context) ([]Order, error)
	// ListByFarm returns a *NotFoundError with IDKindFarm when the farm has no orders.
	ListByFarm(ctx context.Context, farmID string) ([]Order, error)
}

// OrderRepository defines the persistence contract for orders.
type OrderRepository interface {
	OrderReader
	// Add assigns the order id, sets REQUESTED and stores the order. It wraps
	// ErrDuplicateOrder when the id is already stored.
	Add(ctx context.Context, candidate Candidate) (Order, error)
	// Remove deletes an order that never got its deliveries armed.
	Remove(ctx context.Context, orderID string) error
	// SetStatus overwrites the status without checking transition legality.
	SetStatus(ctx context.Context, orderID string, status Status) (Order, error)
}

// ValidityChecker is a single business rule that may veto an action.
// A non-empty message is a violation; an error means the rule could not be evaluated.
type ValidityChecker interface {
	CheckValidity(ctx context.Context, order Order, action Action) (string, error)
}

// TransitionValidator checks that an event is legal from the current status
// and returns the destination status.
type TransitionValidator interface {
	Apply(ctx context.Context, current Status, event Event) (Status, error)
}

// StatusChanger applies a lifecycle event to a stored order.
type StatusChanger interface {
	Change(ctx context.Context, orderID string, event Event) (Order, error)
}

// DeliveryScheduler arms and disarms the timed transitions of an order.
type DeliveryScheduler interface {
	Schedule(ctx context.Context, order Order) error
	// Cancel returns a *DeliveryTaskNotFoundError if the order is not tracked.
	Cancel(ctx context.Context, orderID string) error
}

// EventPublisher defines the contract for emitting order status events.
type EventPublisher interface {
	Publish(ctx context.Context, event Event, order Order) error
}

// Clock returns the current time. Injected so delays are deterministic in tests.
type Clock func() time.Time

// Executor runs callbacks after a delay. Callbacks of different orders share
// the executor; each returned handle is cancelled independently.
type Executor interface {
	Schedule(delay time.Duration, fn func()) (TimerHandle, error)
}

// TimerHandle controls one scheduled callback.
type TimerHandle interface {
	// Cancel prevents the callback from firing. It reports false if the
	// callback already fired or was already cancelled.
	Cancel() bool
}
