package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/waterorder/internal/domain"
)

// TracingPublisher records a producer span for every order status event
// handed to the wrapped publisher.
type TracingPublisher struct {
	next   domain.EventPublisher
	tracer trace.Tracer
}

// Compile-time check: TracingPublisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*TracingPublisher)(nil)

func NewTracingPublisher(next domain.EventPublisher) *TracingPublisher {
	return &TracingPublisher{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

// Publish names the span after the event, e.g. "order.cancel publish", and
// tags it with the order the event is about.
func (p *TracingPublisher) Publish(ctx context.Context, event domain.Event, order domain.Order) error {
	ctx, span := p.tracer.Start(ctx, "order."+string(event)+" publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(orderEventAttributes(event, order)...),
	)
	defer span.End()

	if err := p.next.Publish(ctx, event, order); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

func orderEventAttributes(event domain.Event, order domain.Order) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("messaging.operation.type", "publish"),
		attribute.String("order.event", string(event)),
		attribute.String("order.id", order.ID),
		attribute.String("farm.id", order.FarmID),
		attribute.String("order.status", string(order.Status)),
	}
	if order.Status.Terminal() {
		attrs = append(attrs, attribute.Bool("order.final", true))
	}
	return attrs
}
