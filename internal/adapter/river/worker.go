package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/waterorder/internal/domain"
)

// StatusEventWorker processes order status events from the River queue.
// It writes the farmer-facing status message to the log.
type StatusEventWorker struct {
	river.WorkerDefaults[StatusEventJobArgs]
	logger *slog.Logger
}

// NewStatusEventWorker creates a worker that logs through logger.
func NewStatusEventWorker(logger *slog.Logger) *StatusEventWorker {
	return &StatusEventWorker{logger: logger.With("component", "status_event_worker")}
}

// Work processes a single status event job.
func (w *StatusEventWorker) Work(ctx context.Context, job *river.Job[StatusEventJobArgs]) error {
	status := domain.Status(job.Args.Status)
	w.logger.InfoContext(ctx, "order status event",
		"event", job.Args.Event,
		"order_id", job.Args.OrderID,
		"farm_id", job.Args.FarmID,
		"status", status,
		"message", status.Message(),
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}
