package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/waterorder/internal/domain"
)

// TracingScheduler wraps a domain.DeliveryScheduler with spans and counts
// armed and disarmed deliveries.
type TracingScheduler struct {
	next      domain.DeliveryScheduler
	tracer    trace.Tracer
	scheduled metric.Int64Counter
	cancelled metric.Int64Counter
}

// Compile-time check: TracingScheduler implements domain.DeliveryScheduler.
var _ domain.DeliveryScheduler = (*TracingScheduler)(nil)

// NewTracingScheduler creates the decorator and registers its counters on
// the global meter provider.
func NewTracingScheduler(next domain.DeliveryScheduler) (*TracingScheduler, error) {
	meter := otel.Meter(tracerName)

	scheduled, err := meter.Int64Counter("waterorder.deliveries.scheduled",
		metric.WithDescription("Deliveries whose start and end timers were armed."),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scheduled counter: %w", err)
	}
	cancelled, err := meter.Int64Counter("waterorder.deliveries.cancelled",
		metric.WithDescription("Deliveries disarmed before they started."),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cancelled counter: %w", err)
	}

	return &TracingScheduler{
		next:      next,
		tracer:    otel.Tracer(tracerName),
		scheduled: scheduled,
		cancelled: cancelled,
	}, nil
}

func (s *TracingScheduler) Schedule(ctx context.Context, order domain.Order) error {
	ctx, span := s.tracer.Start(ctx, "DeliveryScheduler.Schedule",
		trace.WithAttributes(
			attribute.String("order.id", order.ID),
			attribute.String("farm.id", order.FarmID),
		),
	)
	defer span.End()

	if err := s.next.Schedule(ctx, order); err != nil {
		recordError(span, err)
		return err
	}
	s.scheduled.Add(ctx, 1)
	return nil
}

func (s *TracingScheduler) Cancel(ctx context.Context, orderID string) error {
	ctx, span := s.tracer.Start(ctx, "DeliveryScheduler.Cancel",
		trace.WithAttributes(attribute.String("order.id", orderID)),
	)
	defer span.End()

	if err := s.next.Cancel(ctx, orderID); err != nil {
		recordError(span, err)
		return err
	}
	s.cancelled.Add(ctx, 1)
	return nil
}
