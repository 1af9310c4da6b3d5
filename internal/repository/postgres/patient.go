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

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			user_id, full_name, date_of_birth, blood_type, weight, height,
			medical_conditions, allergies, medications, address, phone_number,
			emergency_contact_name, emergency_contact_phone, emergency_contact_email,
			emergency_contact_relationship, medical_record_number, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		patient.UserID,
		patient.FullName,
		patient.DateOfBirth,
		patient.BloodType,
		patient.Weight,
		patient.Height,
		patient.MedicalConditions,
		patient.Allergies,
		patient.Medications,
		patient.Address,
		patient.PhoneNumber,
		patient.EmergencyContactName,
		patient.EmergencyContactPhone,
		patient.EmergencyContactEmail,
		patient.EmergencyContactRelationship,
		patient.MedicalRecordNumber,
		patient.CreatedAt,
		patient.UpdatedAt,
	).Scan(&patient.ID)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE user_id = $1`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient by user: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	// The MRN and user link are immutable once set.
	query := `
		UPDATE patients SET
			full_name = $1, date_of_birth = $2, blood_type = $3, weight = $4,
			height = $5, medical_conditions = $6, allergies = $7, medications = $8,
			address = $9, phone_number = $10, emergency_contact_name = $11,
			emergency_contact_phone = $12, emergency_contact_email = $13,
			emergency_contact_relationship = $14, updated_at = $15
		WHERE id = $16
	`
	patient.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		patient.FullName,
		patient.DateOfBirth,
		patient.BloodType,
		patient.Weight,
		patient.Height,
		patient.MedicalConditions,
		patient.Allergies,
		patient.Medications,
		patient.Address,
		patient.PhoneNumber,
		patient.EmergencyContactName,
		patient.EmergencyContactPhone,
		patient.EmergencyContactEmail,
		patient.EmergencyContactRelationship,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}
