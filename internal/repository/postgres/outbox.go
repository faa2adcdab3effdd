package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/care-portal/internal/model"
	"github.com/jwalitptl/care-portal/internal/repository"
)

type outboxRepository struct {
	BaseRepository
}

func NewOutboxRepository(base BaseRepository) repository.OutboxRepository {
	return &outboxRepository{base}
}

func insertOutboxEvent(ctx context.Context, exec sqlx.ExtContext, event *model.OutboxEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if len(event.Payload) == 0 {
		return fmt.Errorf("event payload cannot be empty")
	}

	query := `
		INSERT INTO outbox_events (
			id, event_type, payload, status, retry_count, created_at, updated_at
		) VALUES (?, ?, ?, ?, 0, ?, ?)
	`
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	event.Status = model.OutboxStatusPending

	_, err := exec.ExecContext(ctx, exec.Rebind(query),
		event.ID,
		event.EventType,
		event.Payload,
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", classify(err))
	}
	return nil
}

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	return insertOutboxEvent(ctx, r.db, event)
}

// claimTimeout releases events whose worker died between claim and outcome.
const claimTimeout = 5 * time.Minute

// ClaimPending moves a batch to processing inside one transaction. On postgres the
// select uses SKIP LOCKED so parallel workers never claim the same event.
func (r *outboxRepository) ClaimPending(ctx context.Context, limit, maxRetries int) ([]*model.OutboxEvent, error) {
	query := `
		SELECT id, event_type, payload, status, error_message, retry_count,
			created_at, processed_at, updated_at
		FROM outbox_events
		WHERE status = ?
		OR (status = ? AND retry_count < ?)
		OR (status = ? AND updated_at < ?)
		ORDER BY created_at ASC
		LIMIT ?
	`
	if r.isPostgres() {
		query += " FOR UPDATE SKIP LOCKED"
	}
	claim := `UPDATE outbox_events SET status = ?, updated_at = ? WHERE id = ?`

	now := time.Now().UTC()
	events := []*model.OutboxEvent{}
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.SelectContext(ctx, &events, tx.Rebind(query),
			model.OutboxStatusPending,
			model.OutboxStatusFailed, maxRetries,
			model.OutboxStatusProcessing, now.Add(-claimTimeout),
			limit,
		)
		if err != nil {
			return err
		}
		for _, evt := range events {
			if _, err := tx.ExecContext(ctx, tx.Rebind(claim), model.OutboxStatusProcessing, now, evt.ID); err != nil {
				return err
			}
			evt.Status = model.OutboxStatusProcessing
			evt.UpdatedAt = now
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending events: %w", classify(err))
	}
	return events, nil
}

func (r *outboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE outbox_events
		SET status = ?, error_message = NULL, processed_at = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now().UTC()
	return r.updateOne(ctx, "mark event processed", query, model.OutboxStatusProcessed, now, now, id)
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE outbox_events
		SET status = ?, error_message = ?, retry_count = retry_count + 1, updated_at = ?
		WHERE id = ?
	`
	return r.updateOne(ctx, "mark event failed", query, model.OutboxStatusFailed, reason, time.Now().UTC(), id)
}

func (r *outboxRepository) updateOne(ctx context.Context, op, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, r.q(query), args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, classify(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("failed to %s: %w", op, repository.ErrNotFound)
	}
	return nil
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM outbox_events
		WHERE status = ? AND processed_at < ?
	`
	result, err := r.db.ExecContext(ctx, r.q(query), model.OutboxStatusProcessed, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed events: %w", classify(err))
	}
	return result.RowsAffected()
}
