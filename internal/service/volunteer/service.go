package volunteer

import (
	"context"

	"github.com/google/uuid"

	"github.com/naijasafe/emergency-api/internal/model"
	"github.com/naijasafe/emergency-api/internal/repository"
	apperrors "github.com/naijasafe/emergency-api/pkg/errors"
)

type Service interface {
	// Signup upserts the caller's volunteer profile. Submissions without
	// consent are rejected; repeated submissions are last-write-wins.
	Signup(ctx context.Context, userID uuid.UUID, req *model.VolunteerSignupRequest) (*model.Volunteer, error)
	// GetProfile returns (nil, nil) when the identity has no profile.
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.Volunteer, error)
}

type service struct {
	repo repository.VolunteerRepository
}

func NewService(repo repository.VolunteerRepository) Service {
	return &service{repo: repo}
}

func (s *service) Signup(ctx context.Context, userID uuid.UUID, req *model.VolunteerSignupRequest) (*model.Volunteer, error) {
	if !req.Consent {
		return nil, apperrors.Validation("you must consent to volunteer", nil)
	}

	availability := req.Availability
	if availability == "" {
		availability = model.DefaultAvailability
	}

	volunteer := &model.Volunteer{
		UserID:          userID,
		Skills:          req.Skills,
		MedicalTraining: req.MedicalTraining,
		Availability:    availability,
		Location:        req.Location,
		VehicleDetails:  req.VehicleDetails,
		Equipment:       req.Equipment,
		Notes:           req.Notes,
	}
	if err := s.repo.Upsert(ctx, volunteer); err != nil {
		return nil, err
	}
	return volunteer, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Volunteer, error) {
	return s.repo.GetByUser(ctx, userID)
}
