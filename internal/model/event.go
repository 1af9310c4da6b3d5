package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventAlertCreated       = "SOS_ALERT_CREATED"
	EventAlertStatusChanged = "SOS_ALERT_STATUS_CHANGED"
)

type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusProcessed EventStatus = "processed"
	EventStatusRetry     EventStatus = "retry"
)

// AlertEvent is an outbox row. Events are written alongside the alert
// mutation and drained to the broker by the worker; a publish failure never
// fails the originating request.
type AlertEvent struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	EventType   string          `db:"event_type" json:"event_type"`
	Payload     json.RawMessage `db:"payload" json:"payload"`
	Status      EventStatus     `db:"status" json:"status"`
	Error       *string         `db:"error" json:"error,omitempty"`
	RetryAt     *time.Time      `db:"retry_at" json:"retry_at,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}
