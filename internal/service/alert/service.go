package alert

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/naijasafe/emergency-api/internal/email"
	"github.com/naijasafe/emergency-api/internal/model"
	"github.com/naijasafe/emergency-api/internal/repository"
	apperrors "github.com/naijasafe/emergency-api/pkg/errors"
)

type Service interface {
	// Ingest records a distress signal. callerID may be uuid.Nil for
	// anonymous callers; a caller without a patient profile is not an error.
	Ingest(ctx context.Context, req *model.IngestRequest, callerID uuid.UUID) (*model.SOSAlert, error)
	// UpdateStatus overwrites the alert status. Any of the three states may
	// move to any other; an unknown id is NotFound, an unknown status is a
	// validation error and leaves the row untouched.
	UpdateStatus(ctx context.Context, id int64, status model.AlertStatus) (*model.SOSAlert, error)
	Get(ctx context.Context, id int64) (*model.SOSAlert, error)
	List(ctx context.Context, filter *model.AlertFilter) ([]*model.SOSAlert, error)
	// Notify sends the emergency email for the given coordinates,
	// synchronously with the request.
	Notify(ctx context.Context, req *model.NotifyRequest, callerID uuid.UUID) (string, error)
}

type service struct {
	repo          repository.AlertRepository
	patientRepo   repository.PatientRepository
	eventRepo     repository.EventRepository
	emailSvc      email.Service
	fallbackEmail string
	logger        zerolog.Logger
}

func NewService(
	repo repository.AlertRepository,
	patientRepo repository.PatientRepository,
	eventRepo repository.EventRepository,
	emailSvc email.Service,
	fallbackEmail string,
	logger zerolog.Logger,
) Service {
	return &service{
		repo:          repo,
		patientRepo:   patientRepo,
		eventRepo:     eventRepo,
		emailSvc:      emailSvc,
		fallbackEmail: fallbackEmail,
		logger:        logger,
	}
}

func (s *service) Ingest(ctx context.Context, req *model.IngestRequest, callerID uuid.UUID) (*model.SOSAlert, error) {
	lat, lon, ok := req.Coords()
	if !ok {
		return nil, apperrors.Validation("Missing coordinates", nil)
	}

	alert := &model.SOSAlert{
		Latitude:  lat,
		Longitude: lon,
		Message:   req.Message,
		Phone:     req.Phone,
	}

	if callerID != uuid.Nil {
		patient, err := s.patientRepo.GetByUser(ctx, callerID)
		if err != nil {
			return nil, err
		}
		if patient != nil {
			alert.PatientID = &patient.ID
		}
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, model.EventAlertCreated, alert)
	return alert, nil
}

func (s *service) UpdateStatus(ctx context.Context, id int64, status model.AlertStatus) (*model.SOSAlert, error) {
	if !model.ValidAlertStatus(status) {
		return nil, apperrors.Validation(fmt.Sprintf("invalid status %q", status), nil)
	}

	alert, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("alert", err)
		}
		return nil, err
	}

	if alert.Status == status {
		return alert, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	alert.Status = status

	s.recordEvent(ctx, model.EventAlertStatusChanged, alert)
	return alert, nil
}

func (s *service) Get(ctx context.Context, id int64) (*model.SOSAlert, error) {
	alert, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("alert", err)
		}
		return nil, err
	}
	return alert, nil
}

func (s *service) List(ctx context.Context, filter *model.AlertFilter) ([]*model.SOSAlert, error) {
	if filter != nil && filter.Status != "" && !model.ValidAlertStatus(filter.Status) {
		return nil, apperrors.Validation(fmt.Sprintf("invalid status %q", filter.Status), nil)
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Notify(ctx context.Context, req *model.NotifyRequest, callerID uuid.UUID) (string, error) {
	if req.Latitude == nil || req.Longitude == nil {
		return "", apperrors.Validation("Missing coordinates", nil)
	}

	mapLink := fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.6f&mlon=%.6f",
		float64(*req.Latitude), float64(*req.Longitude))

	recipient := s.fallbackEmail
	patientName := "an unidentified caller"
	if callerID != uuid.Nil {
		patient, err := s.patientRepo.GetByUser(ctx, callerID)
		if err != nil {
			return "", err
		}
		if patient != nil {
			patientName = patient.FullName
			if patient.EmergencyContactEmail != nil && *patient.EmergencyContactEmail != "" {
				recipient = *patient.EmergencyContactEmail
			}
		}
	}

	if err := s.emailSvc.SendEmergency(ctx, recipient, patientName, mapLink); err != nil {
		return "", err
	}
	return recipient, nil
}

// recordEvent writes an outbox row for the monitor feed. A failure here is
// logged and swallowed so the alert mutation still succeeds.
func (s *service) recordEvent(ctx context.Context, eventType string, alert *model.SOSAlert) {
	payload, err := json.Marshal(alert)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal alert for event")
		return
	}
	if err := s.eventRepo.Create(ctx, &model.AlertEvent{
		EventType: eventType,
		Payload:   payload,
	}); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to create alert event")
	}
}
