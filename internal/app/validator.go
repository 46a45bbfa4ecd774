package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/neomorfeo/waterorder/internal/domain"
)

// OrderValidator runs the business rules for an action.
type OrderValidator interface {
	Check(ctx context.Context, order domain.Order, action domain.Action) (string, error)
}

// Pipeline runs its checkers in registration order and stops at the first
// violation. An empty pipeline accepts everything.
type Pipeline struct {
	checkers []domain.ValidityChecker
}

// Compile-time check: Pipeline implements OrderValidator.
var _ OrderValidator = (*Pipeline)(nil)

// NewPipeline creates a pipeline over the given checkers.
func NewPipeline(checkers ...domain.ValidityChecker) *Pipeline {
	return &Pipeline{checkers: checkers}
}

// Check returns the first violation message, or "" if every checker passes.
func (p *Pipeline) Check(ctx context.Context, order domain.Order, action domain.Action) (string, error) {
	for _, c := range p.checkers {
		msg, err := c.CheckValidity(ctx, order, action)
		if err != nil {
			return "", err
		}
		if msg != "" {
			return msg, nil
		}
	}
	return "", nil
}

// OverlapChecker rejects a new order whose delivery window touches the window
// of any existing order for the same farm.
type OverlapChecker struct {
	orders domain.OrderReader
	logger *slog.Logger
}

// NewOverlapChecker creates a checker that reads existing orders from orders.
func NewOverlapChecker(orders domain.OrderReader, logger *slog.Logger) *OverlapChecker {
	return &OverlapChecker{
		orders: orders,
		logger: logger.With("component", "overlap_checker"),
	}
}

func (c *OverlapChecker) CheckValidity(ctx context.Context, order domain.Order, action domain.Action) (string, error) {
	if action != domain.ActionCreate {
		return "", nil
	}

	existing, err := c.orders.ListByFarm(ctx, order.FarmID)
	if err != nil {
		// A farm without orders cannot overlap anything.
		var nf *domain.NotFoundError
		if errors.As(err, &nf) && nf.IDKind == domain.IDKindFarm {
			c.logger.DebugContext(ctx, "no existing orders for farm", "farm_id", order.FarmID)
			return "", nil
		}
		return "", fmt.Errorf("loading orders of farm %q: %w", order.FarmID, err)
	}

	for _, e := range existing {
		if order.Overlaps(e) {
			return fmt.Sprintf("Delivery time of the new order overlaps existing order's delivery time. "+
				"Existing order's orderId: %s, startDateTime: %s, duration: %s",
				e.ID, e.StartDateTime.Format(time.RFC3339), e.Duration), nil
		}
	}
	return "", nil
}

// CancelEligibilityChecker rejects cancellation of orders that have left the
// REQUESTED status.
type CancelEligibilityChecker struct{}

// NewCancelEligibilityChecker creates the checker.
func NewCancelEligibilityChecker() *CancelEligibilityChecker {
	return &CancelEligibilityChecker{}
}

func (c *CancelEligibilityChecker) CheckValidity(_ context.Context, order domain.Order, action domain.Action) (string, error) {
	if action != domain.ActionCancel || order.Status == domain.StatusRequested {
		return "", nil
	}
	return fmt.Sprintf("Order cannot be cancelled. Current status of the order: %s, "+
		"orderId: %s, startDateTime: %s, duration: %s",
		order.Status, order.ID, order.StartDateTime.Format(time.RFC3339), order.Duration), nil
}
