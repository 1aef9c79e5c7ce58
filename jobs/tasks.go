package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeMonthlyStatusRefresh recomputes overdue invoice statuses.
	TaskTypeMonthlyStatusRefresh = "billing:refresh_overdue"
)

// MonthlyStatusRefreshPayload carries the reference instant for the refresh.
type MonthlyStatusRefreshPayload struct {
	AsOf time.Time `json:"asOf"`
}

// NewMonthlyStatusRefreshTask constructs an Asynq task.
func NewMonthlyStatusRefreshTask(payload MonthlyStatusRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeMonthlyStatusRefresh, data), nil
}

// OverdueRefresher recomputes invoice statuses as of a given instant.
type OverdueRefresher interface {
	RefreshOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

// MonthlyStatusRefreshHandler builds the Asynq handler for
// TaskTypeMonthlyStatusRefresh tasks.
func MonthlyStatusRefreshHandler(refresher OverdueRefresher, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload MonthlyStatusRefreshPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		asOf := payload.AsOf
		if asOf.IsZero() {
			asOf = time.Now().UTC()
		}
		changed, err := refresher.RefreshOverdue(ctx, asOf)
		if err != nil {
			logger.Error("refresh overdue invoices", slog.Any("error", err))
			return err
		}
		logger.Info("refreshed overdue invoices",
			slog.String("job", TaskTypeMonthlyStatusRefresh),
			slog.Int64("changed", changed))
		return nil
	}
}
