package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/waterorder/internal/domain"
)

const tracerName = "github.com/neomorfeo/waterorder/internal/adapter/otel"

// TracingRepository wraps a domain.OrderRepository with OpenTelemetry tracing.
// Each method creates a span with order attributes and records errors.
type TracingRepository struct {
	next   domain.OrderRepository
	tracer trace.Tracer
}

// Compile-time check: TracingRepository implements domain.OrderRepository.
var _ domain.OrderRepository = (*TracingRepository)(nil)

// NewTracingRepository creates a tracing decorator around the given repository.
func NewTracingRepository(next domain.OrderRepository) *TracingRepository {
	return &TracingRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingRepository) Add(ctx context.Context, candidate domain.Candidate) (domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.Add",
		trace.WithAttributes(
			attribute.String("farm.id", candidate.FarmID),
			attribute.String("order.start", candidate.StartDateTime.UTC().Format("2006-01-02T15:04:05Z")),
			attribute.Int64("order.duration_seconds", int64(candidate.Duration.Seconds())),
		),
	)
	defer span.End()

	order, err := r.next.Add(ctx, candidate)
	if err != nil {
		recordError(span, err)
		return order, err
	}
	span.SetAttributes(attribute.String("order.id", order.ID))
	return order, nil
}

func (r *TracingRepository) Get(ctx context.Context, orderID string) (domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.Get",
		trace.WithAttributes(attribute.String("order.id", orderID)),
	)
	defer span.End()

	order, err := r.next.Get(ctx, orderID)
	if err != nil {
		recordError(span, err)
	}
	return order, err
}

func (r *TracingRepository) List(ctx context.Context) ([]domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.List")
	defer span.End()

	orders, err := r.next.List(ctx)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(orders)))
	}
	return orders, err
}

func (r *TracingRepository) ListByFarm(ctx context.Context, farmID string) ([]domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ListByFarm",
		trace.WithAttributes(attribute.String("farm.id", farmID)),
	)
	defer span.End()

	orders, err := r.next.ListByFarm(ctx, farmID)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(orders)))
	}
	return orders, err
}

func (r *TracingRepository) SetStatus(ctx context.Context, orderID string, status domain.Status) (domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.SetStatus",
		trace.WithAttributes(
			attribute.String("order.id", orderID),
			attribute.String("order.status", string(status)),
		),
	)
	defer span.End()

	order, err := r.next.SetStatus(ctx, orderID, status)
	if err != nil {
		recordError(span, err)
	}
	return order, err
}

func (r *TracingRepository) Remove(ctx context.Context, orderID string) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.Remove",
		trace.WithAttributes(attribute.String("order.id", orderID)),
	)
	defer span.End()

	err := r.next.Remove(ctx, orderID)
	if err != nil {
		recordError(span, err)
	}
	return err
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
