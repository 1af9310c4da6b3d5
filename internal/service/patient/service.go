package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/naijasafe/emergency-api/internal/model"
	"github.com/naijasafe/emergency-api/internal/repository"
	"github.com/naijasafe/emergency-api/pkg/token"
)

// mrnAttempts bounds MRN regeneration on a unique-constraint collision.
const mrnAttempts = 5

type Service interface {
	// GetProfile returns (nil, nil) when the identity has no profile.
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.Patient, error)
	// SaveProfile creates or updates the caller's own profile; created
	// reports whether a new record (and MRN) was produced.
	SaveProfile(ctx context.Context, userID uuid.UUID, fullName string, req *model.MedicalProfileRequest) (patient *model.Patient, created bool, err error)
}

type service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) Service {
	return &service{repo: repo}
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Patient, error) {
	return s.repo.GetByUser(ctx, userID)
}

func (s *service) SaveProfile(ctx context.Context, userID uuid.UUID, fullName string, req *model.MedicalProfileRequest) (*model.Patient, bool, error) {
	existing, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		applyProfile(existing, fullName, req)
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	patient := &model.Patient{UserID: &userID}
	applyProfile(patient, fullName, req)

	// The MRN space is small, so collisions are possible; regenerate and
	// retry instead of surfacing the constraint violation.
	for attempt := 0; attempt < mrnAttempts; attempt++ {
		patient.MedicalRecordNumber = token.NewMRN()
		err = s.repo.Create(ctx, patient)
		if err == nil {
			return patient, true, nil
		}
		if !isMRNCollision(err) {
			return nil, false, err
		}
	}
	return nil, false, fmt.Errorf("failed to allocate a unique MRN after %d attempts: %w", mrnAttempts, err)
}

func applyProfile(p *model.Patient, fullName string, req *model.MedicalProfileRequest) {
	p.FullName = fullName
	p.DateOfBirth = req.DateOfBirth
	p.BloodType = req.BloodType
	p.Weight = req.Weight
	p.Height = req.Height
	p.MedicalConditions = req.MedicalConditions
	p.Allergies = req.Allergies
	p.Medications = req.Medications
	p.Address = req.Address
	p.PhoneNumber = req.PhoneNumber
	p.EmergencyContactName = req.EmergencyContactName
	p.EmergencyContactPhone = req.EmergencyContactPhone
	p.EmergencyContactEmail = req.EmergencyContactEmail
	p.EmergencyContactRelationship = req.EmergencyContactRelationship
}

// isMRNCollision distinguishes an MRN collision from other unique-constraint
// failures (such as two concurrent creations for the same identity).
func isMRNCollision(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) &&
		pqErr.Code == "23505" &&
		pqErr.Constraint == "patients_medical_record_number_key"
}
