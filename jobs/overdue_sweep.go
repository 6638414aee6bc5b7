package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// InvoiceSweeper is the slice of the invoice service the sweep needs.
type InvoiceSweeper interface {
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

// SweepMetrics records sweep outcomes; nil-safe in the recorder.
type SweepMetrics interface {
	OverdueSwept(n int64)
}

// NewOverdueSweepHandler returns the asynq handler that runs the
// due-date sweep against the invoice service.
func NewOverdueSweepHandler(sweeper InvoiceSweeper, metrics SweepMetrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload OverdueSweepPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		asOf := payload.AsOf
		if asOf.IsZero() {
			asOf = time.Now()
		}
		n, err := sweeper.MarkOverdue(ctx, asOf)
		if err != nil {
			if logger != nil {
				logger.Error("overdue sweep failed", slog.Any("error", err))
			}
			return err
		}
		if metrics != nil {
			metrics.OverdueSwept(n)
		}
		if logger != nil {
			logger.Info("overdue sweep completed",
				slog.Int64("invoices_marked", n),
				slog.Time("as_of", asOf))
		}
		return nil
	}
}
