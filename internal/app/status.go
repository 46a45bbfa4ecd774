package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/neomorfeo/waterorder/internal/domain"
)

// Compile-time check: StatusUpdater implements domain.StatusChanger.
var _ domain.StatusChanger = (*StatusUpdater)(nil)

// StatusUpdater applies lifecycle events to stored orders. The store itself
// accepts any status, so legality is checked here against the transition
// validator before the write. Changes are serialized so that the read of the
// current status and the write of the next one cannot interleave.
type StatusUpdater struct {
	repo      domain.OrderRepository
	validator domain.TransitionValidator
	publisher domain.EventPublisher
	logger    *slog.Logger

	mu sync.Mutex
}

// NewStatusUpdater creates an updater with the given adapters.
func NewStatusUpdater(repo domain.OrderRepository, validator domain.TransitionValidator, publisher domain.EventPublisher, logger *slog.Logger) *StatusUpdater {
	return &StatusUpdater{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		logger:    logger.With("component", "status_updater"),
	}
}

// Change moves the order along event. If the order already sits at the
// event's destination the call is a no-op and returns the order unchanged.
func (u *StatusUpdater) Change(ctx context.Context, orderID string, event domain.Event) (domain.Order, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	order, err := u.repo.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if dst, ok := event.Destination(); ok && order.Status == dst {
		return order, nil
	}

	next, err := u.validator.Apply(ctx, order.Status, event)
	if err != nil {
		return domain.Order{}, err
	}

	updated, err := u.repo.SetStatus(ctx, orderID, next)
	if err != nil {
		return domain.Order{}, fmt.Errorf("setting status %s: %w", next, err)
	}

	u.logger.InfoContext(ctx, "order status changed",
		"order_id", updated.ID,
		"farm_id", updated.FarmID,
		"from", order.Status,
		"to", updated.Status,
		"message", updated.Status.Message(),
	)

	// The stored status is authoritative; a lost notification is only logged.
	if err := u.publisher.Publish(ctx, event, updated); err != nil {
		u.logger.WarnContext(ctx, "publishing status event failed",
			"order_id", updated.ID,
			"event", event,
			"error", err,
		)
	}

	return updated, nil
}
