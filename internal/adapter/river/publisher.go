package river

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/waterorder/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// StatusEventJobArgs is a snapshot of an order taken when its status changed.
// River stores it as JSON, so the worker never reads the order store.
type StatusEventJobArgs struct {
	Event           string    `json:"event"`
	OrderID         string    `json:"order_id"`
	FarmID          string    `json:"farm_id"`
	StartDateTime   time.Time `json:"start"`
	DurationSeconds int64     `json:"duration_seconds"`
	Status          string    `json:"status"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (StatusEventJobArgs) Kind() string { return "order.status_changed" }

// InsertOpts bounds retries of a notification that keeps failing.
func (StatusEventJobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: 5}
}

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues the order snapshot as an async job.
func (p *Publisher) Publish(ctx context.Context, event domain.Event, order domain.Order) error {
	_, err := p.client.Insert(ctx, StatusEventJobArgs{
		Event:           string(event),
		OrderID:         order.ID,
		FarmID:          order.FarmID,
		StartDateTime:   order.StartDateTime.UTC(),
		DurationSeconds: int64(order.Duration / time.Second),
		Status:          string(order.Status),
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing status event job: %w", err)
	}
	return nil
}
