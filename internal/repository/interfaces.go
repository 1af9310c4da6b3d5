package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/naijasafe/emergency-api/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		// GetByEmail returns (nil, nil) when no such user exists.
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id int64) (*model.Patient, error)
		// GetByUser returns (nil, nil) when the identity has no profile.
		GetByUser(ctx context.Context, userID uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
	}

	AlertRepository interface {
		Create(ctx context.Context, alert *model.SOSAlert) error
		Get(ctx context.Context, id int64) (*model.SOSAlert, error)
		UpdateStatus(ctx context.Context, id int64, status model.AlertStatus) error
		List(ctx context.Context, filter *model.AlertFilter) ([]*model.SOSAlert, error)
		CountByStatus(ctx context.Context, status model.AlertStatus) (int, error)
		Count(ctx context.Context) (int, error)
	}

	TaskRepository interface {
		Create(ctx context.Context, task *model.Task) error
		Get(ctx context.Context, id int64) (*model.Task, error)
		Update(ctx context.Context, task *model.Task) error
		UpdateStatus(ctx context.Context, id int64, status model.TaskStatus) error
		SetActive(ctx context.Context, id int64, active bool) error
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context, filter *model.TaskFilter) ([]*model.Task, error)
		CountActive(ctx context.Context) (int, error)
	}

	VolunteerRepository interface {
		// Upsert creates or replaces the profile keyed by user_id atomically.
		Upsert(ctx context.Context, volunteer *model.Volunteer) error
		// GetByUser returns (nil, nil) when the identity has no profile.
		GetByUser(ctx context.Context, userID uuid.UUID) (*model.Volunteer, error)
		Count(ctx context.Context) (int, error)
	}

	EventRepository interface {
		Create(ctx context.Context, event *model.AlertEvent) error
		GetPending(ctx context.Context, limit int) ([]*model.AlertEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkRetry(ctx context.Context, id uuid.UUID, errMsg string, retryAt time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
