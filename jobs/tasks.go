package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionCleanup removes expired session records.
	TaskSessionCleanup = "sessions:cleanup"
	// TaskAnalyticsWarmup precomputes dashboard and chart aggregates.
	TaskAnalyticsWarmup = "analytics:warmup"
)

// NewSessionCleanupTask constructs the cleanup task.
func NewSessionCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskSessionCleanup, nil)
}

// NewAnalyticsWarmupTask constructs the warmup task.
func NewAnalyticsWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskAnalyticsWarmup, nil)
}

// SessionStore deletes expired sessions, returning the removed count.
type SessionStore interface {
	CleanupSessions(ctx context.Context) (int64, error)
}

// HandleSessionCleanup builds the handler for TaskSessionCleanup.
func HandleSessionCleanup(logger *slog.Logger, store SessionStore) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		count, err := store.CleanupSessions(ctx)
		if err != nil {
			return err
		}
		logger.Info("expired sessions removed", slog.Int64("count", count))
		return nil
	}
}

// CacheWarmer precomputes one cached aggregate set.
type CacheWarmer interface {
	Warm(ctx context.Context) error
}

// HandleAnalyticsWarmup builds the handler for TaskAnalyticsWarmup. A single
// failing warmer fails the task so Asynq retries it.
func HandleAnalyticsWarmup(logger *slog.Logger, warmers ...CacheWarmer) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		for _, w := range warmers {
			if err := w.Warm(ctx); err != nil {
				return err
			}
		}
		logger.Info("analytics caches warmed", slog.Int("warmers", len(warmers)))
		return nil
	}
}
