package memory

import (
	"context"
	"log/slog"

	"github.com/neomorfeo/waterorder/internal/domain"
)

// Compile-time check: LogPublisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*LogPublisher)(nil)

// LogPublisher writes status events straight to the log. It stands in for
// the River publisher when orders are not persisted.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher that logs through logger.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "log_publisher")}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.Event, order domain.Order) error {
	p.logger.InfoContext(ctx, "order status event",
		"event", event,
		"order_id", order.ID,
		"farm_id", order.FarmID,
		"status", order.Status,
		"message", order.Status.Message(),
	)
	return nil
}
