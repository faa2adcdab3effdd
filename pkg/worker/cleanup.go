package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/care-portal/internal/repository"
	"github.com/jwalitptl/care-portal/pkg/logger"
)

// OutboxCleanupWorker deletes relayed events older than the retention period.
type OutboxCleanupWorker struct {
	repo      repository.OutboxRepository
	retention time.Duration
	interval  time.Duration
	logger    *logger.Logger
}

func NewOutboxCleanupWorker(repo repository.OutboxRepository, retention, interval time.Duration, logger *logger.Logger) *OutboxCleanupWorker {
	return &OutboxCleanupWorker{
		repo:      repo,
		retention: retention,
		interval:  interval,
		logger:    logger,
	}
}

func (w *OutboxCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Cleanup(ctx)
		}
	}
}

func (w *OutboxCleanupWorker) Cleanup(ctx context.Context) int64 {
	deleted, err := w.repo.DeleteProcessedBefore(ctx, time.Now().Add(-w.retention))
	if err != nil {
		w.logger.Error(err, "failed to clean up outbox events")
		return 0
	}
	if deleted > 0 {
		w.logger.Info("cleaned up outbox events", "deleted", deleted)
	}
	return deleted
}
