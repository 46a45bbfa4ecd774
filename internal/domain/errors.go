package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every *NotFoundError through errors.Is.
var ErrNotFound = errors.New("not found")

// ErrDuplicateOrder is returned by a repository asked to store an order whose
// id is already taken.
var ErrDuplicateOrder = errors.New("order id already exists")

// Identifier kinds carried by NotFoundError.
const (
	IDKindOrder = "orderId"
	IDKindFarm  = "farmId"
)

// NotFoundError is returned when an order id is unknown or a farm has no
// orders. Both cases share this type; inspect IDKind to tell them apart.
type NotFoundError struct {
	IDKind  string
	IDValue string
}

func (e *NotFoundError) Error() string {
	if e.IDKind == IDKindFarm {
		return fmt.Sprintf("no orders for farm id %q", e.IDValue)
	}
	return fmt.Sprintf("order id %q does not exist", e.IDValue)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InvalidOrderError is a validation pipeline veto for the given action.
type InvalidOrderError struct {
	Action  Action
	Message string
}

func (e *InvalidOrderError) Error() string {
	return fmt.Sprintf("invalid %s request: %s", e.Action, e.Message)
}

// DeliveryTaskNotFoundError is returned when cancellation is requested for an
// order the scheduler is not tracking.
type DeliveryTaskNotFoundError struct {
	OrderID string
}

func (e *DeliveryTaskNotFoundError) Error() string {
	return fmt.Sprintf("cannot find delivery task for order %q", e.OrderID)
}

// TransitionError is returned when a status transition is not allowed.
type TransitionError struct {
	Event   Event
	Current Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from status %q", e.Event, e.Current)
}

// InputError is returned when a request field fails basic validation.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
