package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/naijasafe/emergency-api/internal/model"
	"github.com/naijasafe/emergency-api/internal/repository"
)

type eventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *model.AlertEvent) error {
	if event.Payload == nil {
		return fmt.Errorf("event payload cannot be nil")
	}

	query := `
		INSERT INTO alert_events (id, event_type, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	event.ID = uuid.New()
	event.Status = model.EventStatusPending
	event.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		event.Payload,
		event.Status,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert event: %w", err)
	}
	return nil
}

// GetPending fetches up to limit due events. SKIP LOCKED keeps concurrent
// pollers from contending on the same rows, but the locks release when the
// statement returns, so delivery is at-least-once; consumers must tolerate
// a duplicate publish.
func (r *eventRepository) GetPending(ctx context.Context, limit int) ([]*model.AlertEvent, error) {
	query := `
		SELECT * FROM alert_events
		WHERE status IN ($1, $2) AND (retry_at IS NULL OR retry_at <= NOW())
		ORDER BY created_at ASC
		LIMIT $3
		FOR UPDATE SKIP LOCKED
	`
	var events []*model.AlertEvent
	err := r.db.SelectContext(ctx, &events, query, model.EventStatusPending, model.EventStatusRetry, limit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending alert events: %w", err)
	}
	return events, nil
}

func (r *eventRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE alert_events SET status = $1, error = NULL, processed_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, model.EventStatusProcessed, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark alert event processed: %w", err)
	}
	return nil
}

func (r *eventRepository) MarkRetry(ctx context.Context, id uuid.UUID, errMsg string, retryAt time.Time) error {
	query := `UPDATE alert_events SET status = $1, error = $2, retry_at = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, model.EventStatusRetry, errMsg, retryAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark alert event for retry: %w", err)
	}
	return nil
}

func (r *eventRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM alert_events WHERE status = $1 AND processed_at < $2`
	res, err := r.db.ExecContext(ctx, query, model.EventStatusProcessed, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune alert events: %w", err)
	}
	return res.RowsAffected()
}
