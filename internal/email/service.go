package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/naijasafe/emergency-api/internal/config"
)

type Service interface {
	// SendEmergency delivers the distress notice for the given map link.
	// Delivery is synchronous; the caller decides whether failure is fatal.
	SendEmergency(ctx context.Context, to, patientName, mapLink string) error
	SendCustom(ctx context.Context, to, subject, body string) error
}

type smtpService struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *smtpService) SendEmergency(ctx context.Context, to, patientName, mapLink string) error {
	subject := "EMERGENCY: SOS alert"
	body := fmt.Sprintf(
		"An SOS alert was raised for %s.\n\nLast known location: %s\n\nPlease respond immediately.",
		patientName, mapLink,
	)
	return s.SendCustom(ctx, to, subject, body)
}

func (s *smtpService) SendCustom(_ context.Context, to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// logService logs instead of dialing SMTP, for local runs and tests.
type logService struct {
	logger zerolog.Logger
}

func NewLogService(logger zerolog.Logger) Service {
	return &logService{logger: logger}
}

func (s *logService) SendEmergency(ctx context.Context, to, patientName, mapLink string) error {
	s.logger.Info().Str("to", to).Str("patient", patientName).Str("map_link", mapLink).Msg("emergency email (log only)")
	return nil
}

func (s *logService) SendCustom(_ context.Context, to, subject, _ string) error {
	s.logger.Info().Str("to", to).Str("subject", subject).Msg("email (log only)")
	return nil
}
