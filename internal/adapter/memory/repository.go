package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/neomorfeo/waterorder/internal/domain"
)

// Compile-time check: OrderRepository implements domain.OrderRepository.
var _ domain.OrderRepository = (*OrderRepository)(nil)

// OrderRepository keeps orders in a map guarded by a RWMutex. Orders are
// stored and returned by value, so callers never share state with the map.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

// New returns an empty repository.
func New() *OrderRepository {
	return &OrderRepository{orders: make(map[string]domain.Order)}
}

func (r *OrderRepository) Add(_ context.Context, candidate domain.Candidate) (domain.Order, error) {
	order := domain.NewOrder(candidate)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.orders[order.ID]; taken {
		return domain.Order{}, fmt.Errorf("adding order %q: %w", order.ID, domain.ErrDuplicateOrder)
	}
	r.orders[order.ID] = order
	return order, nil
}

func (r *OrderRepository) Remove(_ context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[orderID]; !ok {
		return &domain.NotFoundError{IDKind: domain.IDKindOrder, IDValue: orderID}
	}
	delete(r.orders, orderID)
	return nil
}

func (r *OrderRepository) Get(_ context.Context, orderID string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderID]
	if !ok {
		return domain.Order{}, &domain.NotFoundError{IDKind: domain.IDKindOrder, IDValue: orderID}
	}
	return order, nil
}

func (r *OrderRepository) List(_ context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	list := make([]domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		list = append(list, order)
	}
	r.mu.RUnlock()

	sortByStart(list)
	return list, nil
}

func (r *OrderRepository) ListByFarm(_ context.Context, farmID string) ([]domain.Order, error) {
	r.mu.RLock()
	var list []domain.Order
	for _, order := range r.orders {
		if order.FarmID == farmID {
			list = append(list, order)
		}
	}
	r.mu.RUnlock()

	if len(list) == 0 {
		return nil, &domain.NotFoundError{IDKind: domain.IDKindFarm, IDValue: farmID}
	}
	sortByStart(list)
	return list, nil
}

func (r *OrderRepository) SetStatus(_ context.Context, orderID string, status domain.Status) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return domain.Order{}, &domain.NotFoundError{IDKind: domain.IDKindOrder, IDValue: orderID}
	}
	order.Status = status
	r.orders[orderID] = order
	return order, nil
}

func sortByStart(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].StartDateTime.Equal(orders[j].StartDateTime) {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].StartDateTime.Before(orders[j].StartDateTime)
	})
}
