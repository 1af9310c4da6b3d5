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

type volunteerRepository struct {
	db *sqlx.DB
}

func NewVolunteerRepository(db *sqlx.DB) repository.VolunteerRepository {
	return &volunteerRepository{db: db}
}

// Upsert relies on the unique user_id constraint so that concurrent signup
// submissions for the same identity collapse into one row, last write wins.
func (r *volunteerRepository) Upsert(ctx context.Context, volunteer *model.Volunteer) error {
	query := `
		INSERT INTO volunteers (
			user_id, skills, medical_training, availability, location,
			vehicle_details, equipment, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			skills = EXCLUDED.skills,
			medical_training = EXCLUDED.medical_training,
			availability = EXCLUDED.availability,
			location = EXCLUDED.location,
			vehicle_details = EXCLUDED.vehicle_details,
			equipment = EXCLUDED.equipment,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	now := time.Now()
	volunteer.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		volunteer.UserID,
		volunteer.Skills,
		volunteer.MedicalTraining,
		volunteer.Availability,
		volunteer.Location,
		volunteer.VehicleDetails,
		volunteer.Equipment,
		volunteer.Notes,
		now,
		now,
	).Scan(&volunteer.ID, &volunteer.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert volunteer: %w", err)
	}
	return nil
}

func (r *volunteerRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*model.Volunteer, error) {
	query := `SELECT * FROM volunteers WHERE user_id = $1`
	var volunteer model.Volunteer
	err := r.db.GetContext(ctx, &volunteer, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get volunteer by user: %w", err)
	}
	return &volunteer, nil
}

func (r *volunteerRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM volunteers`)
	if err != nil {
		return 0, fmt.Errorf("failed to count volunteers: %w", err)
	}
	return count, nil
}
