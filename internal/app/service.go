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

// OrderService orchestrates the water order lifecycle.
type OrderService struct {
	repo      domain.OrderRepository
	validator OrderValidator
	scheduler domain.DeliveryScheduler
	publisher domain.EventPublisher
	clock     domain.Clock
	logger    *slog.Logger

	// createMu makes the overlap check, the insert and the arming of
	// timers one step.
	createMu sync.Mutex
}

// NewOrderService creates a service with the given adapters. A nil clock
// defaults to time.Now.
func NewOrderService(
	repo domain.OrderRepository,
	validator OrderValidator,
	scheduler domain.DeliveryScheduler,
	publisher domain.EventPublisher,
	clock domain.Clock,
	logger *slog.Logger,
) *OrderService {
	if clock == nil {
		clock = time.Now
	}
	return &OrderService{
		repo:      repo,
		validator: validator,
		scheduler: scheduler,
		publisher: publisher,
		clock:     clock,
		logger:    logger.With("component", "order_service"),
	}
}

// CreateOrder validates the candidate, stores it as REQUESTED and schedules
// its delivery.
func (s *OrderService) CreateOrder(ctx context.Context, candidate domain.Candidate) (domain.Order, error) {
	if err := candidate.Validate(s.clock()); err != nil {
		return domain.Order{}, err
	}

	order, err := s.place(ctx, candidate)
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.InfoContext(ctx, "order placed",
		"order_id", order.ID,
		"farm_id", order.FarmID,
		"message", order.Status.Message(),
	)

	if err := s.publisher.Publish(ctx, domain.EventPlace, order); err != nil {
		s.logger.WarnContext(ctx, "publishing place event failed", "order_id", order.ID, "error", err)
	}

	return order, nil
}

// place stores the order and arms its timers. An order whose timers cannot be
// armed is removed again.
func (s *OrderService) place(ctx context.Context, candidate domain.Candidate) (domain.Order, error) {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	msg, err := s.validator.Check(ctx, domain.Order{
		FarmID:        candidate.FarmID,
		StartDateTime: candidate.StartDateTime,
		Duration:      candidate.Duration,
	}, domain.ActionCreate)
	if err != nil {
		return domain.Order{}, fmt.Errorf("validating new order: %w", err)
	}
	if msg != "" {
		return domain.Order{}, &domain.InvalidOrderError{Action: domain.ActionCreate, Message: msg}
	}

	order, err := s.repo.Add(ctx, candidate)
	if errors.Is(err, domain.ErrDuplicateOrder) {
		return domain.Order{}, &domain.InvalidOrderError{
			Action:  domain.ActionCreate,
			Message: fmt.Sprintf("Order %s already exists.", domain.NewOrderID(candidate.FarmID, candidate.StartDateTime)),
		}
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("storing order: %w", err)
	}

	if err := s.scheduler.Schedule(ctx, order); err != nil {
		if rmErr := s.repo.Remove(ctx, order.ID); rmErr != nil {
			s.logger.ErrorContext(ctx, "removing unscheduled order failed",
				"order_id", order.ID,
				"error", rmErr,
			)
		}
		return domain.Order{}, fmt.Errorf("scheduling delivery: %w", err)
	}
	return order, nil
}

// CancelOrder cancels a REQUESTED order and disarms its delivery timers.
func (s *OrderService) CancelOrder(ctx context.Context, orderID string) (domain.Order, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	msg, err := s.validator.Check(ctx, order, domain.ActionCancel)
	if err != nil {
		return domain.Order{}, fmt.Errorf("validating cancellation: %w", err)
	}
	if msg != "" {
		return domain.Order{}, &domain.InvalidOrderError{Action: domain.ActionCancel, Message: msg}
	}

	if err := s.scheduler.Cancel(ctx, orderID); err != nil {
		return domain.Order{}, err
	}

	return s.repo.SetStatus(ctx, orderID, domain.StatusCancelled)
}

// ListOrders returns every order.
func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx)
}

// GetOrder returns one order by id.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return s.repo.Get(ctx, orderID)
}

// ListOrdersForFarm returns the orders of one farm.
func (s *OrderService) ListOrdersForFarm(ctx context.Context, farmID string) ([]domain.Order, error) {
	return s.repo.ListByFarm(ctx, farmID)
}
