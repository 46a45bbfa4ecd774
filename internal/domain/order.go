package domain

import (
	"strings"
	"time"
)

// Status represents the lifecycle state of a water order.
//
//	REQUESTED ──start_delivery──> IN_PROGRESS ──complete_delivery──> DELIVERED
//	    │
//	    └──cancel──> CANCELLED
//
// DELIVERED and CANCELLED are terminal.
type Status string

const (
	StatusRequested  Status = "REQUESTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// Message returns a human-readable description of the status.
func (s Status) Message() string {
	switch s {
	case StatusRequested:
		return "Order has been placed but not yet delivered."
	case StatusInProgress:
		return "Order is being delivered right now."
	case StatusDelivered:
		return "Order has been delivered."
	case StatusCancelled:
		return "Order was cancelled before delivery."
	}
	return "Unknown status."
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Event represents an action that triggers a status transition.
type Event string

const (
	EventStartDelivery    Event = "start_delivery"
	EventCompleteDelivery Event = "complete_delivery"
	EventCancel           Event = "cancel"

	// EventPlace is published when an order is first stored. It has no
	// source status and is not part of Transitions.
	EventPlace Event = "place"
)

// Transition defines a valid status change: an event moves an order from Src to Dst.
type Transition struct {
	Event Event
	Src   Status
	Dst   Status
}

// Transitions defines all valid status changes in the order lifecycle.
// This is domain knowledge consumed by the FSM adapter.
var Transitions = []Transition{
	{Event: EventStartDelivery, Src: StatusRequested, Dst: StatusInProgress},
	{Event: EventCompleteDelivery, Src: StatusInProgress, Dst: StatusDelivered},
	{Event: EventCancel, Src: StatusRequested, Dst: StatusCancelled},
}

// Destination returns the status an event leads to, if the event is known.
func (e Event) Destination() (Status, bool) {
	for _, t := range Transitions {
		if t.Event == e {
			return t.Dst, true
		}
	}
	return "", false
}

// Action is the kind of state-changing request that validation rules key off.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionCancel Action = "CANCEL"
)

// orderIDLayout renders a start time as yyyyMMddHHmmss.
const orderIDLayout = "20060102150405"

// NewOrderID builds the deterministic identifier "{farmID}:{yyyyMMddHHmmss}".
// The timestamp is rendered in UTC, so the same instant always yields the same
// id and distinct instants never collide across offsets.
func NewOrderID(farmID string, start time.Time) string {
	return farmID + ":" + start.UTC().Format(orderIDLayout)
}

// Candidate is an order request that has not been stored yet.
type Candidate struct {
	FarmID        string
	StartDateTime time.Time
	Duration      time.Duration
}

// Validate checks request-level constraints: non-blank farm, start strictly
// after now, non-negative duration. Business rules run later in the pipeline.
func (c Candidate) Validate(now time.Time) error {
	if strings.TrimSpace(c.FarmID) == "" {
		return &InputError{Field: "farmId", Message: "farm id is required"}
	}
	if c.StartDateTime.IsZero() {
		return &InputError{Field: "startDateTime", Message: "start time is required"}
	}
	if !c.StartDateTime.After(now) {
		return &InputError{Field: "startDateTime", Message: "start time must be in the future"}
	}
	if c.Duration < 0 {
		return &InputError{Field: "duration", Message: "duration cannot be negative"}
	}
	return nil
}

// Order is one scheduled irrigation delivery for a farm.
type Order struct {
	ID            string
	FarmID        string
	StartDateTime time.Time
	Duration      time.Duration
	Status        Status
}

// NewOrder turns a candidate into a stored order in the REQUESTED state.
func NewOrder(c Candidate) Order {
	return Order{
		ID:            NewOrderID(c.FarmID, c.StartDateTime),
		FarmID:        c.FarmID,
		StartDateTime: c.StartDateTime.UTC(),
		Duration:      c.Duration,
		Status:        StatusRequested,
	}
}

// EndDateTime is the end of the delivery window.
func (o Order) EndDateTime() time.Time {
	return o.StartDateTime.Add(o.Duration)
}

// Overlaps reports whether the delivery windows of o and other intersect.
// Both windows are closed intervals, so sharing a boundary counts. Unlike an
// endpoint-only test, which only asks whether other's start or end falls
// inside o, a window that strictly contains o also overlaps it.
func (o Order) Overlaps(other Order) bool {
	return !o.StartDateTime.After(other.EndDateTime()) && !other.StartDateTime.After(o.EndDateTime())
}
