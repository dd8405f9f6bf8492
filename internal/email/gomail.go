package email

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/opdbook/booking-api/internal/config"
	"github.com/opdbook/booking-api/internal/model"
)

type gomailService struct {
	dialer *gomail.Dialer
	from   string
	logger *zerolog.Logger
}

func NewGomailService(cfg config.SMTPConfig, logger *zerolog.Logger) Service {
	if !cfg.Enabled {
		return Noop{}
	}
	return &gomailService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (s *gomailService) SendConfirmation(ctx context.Context, apt *model.Appointment) error {
	if apt.PatientEmail == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", apt.PatientEmail)
	m.SetHeader("Subject", "Appointment confirmed")
	m.SetBody("text/plain", confirmationBody(apt))

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error().Err(err).
			Str("appointment_id", apt.ID.String()).
			Msg("Failed to send confirmation email")
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}

func confirmationBody(apt *model.Appointment) string {
	displayDate := apt.Date
	if t, err := time.Parse(model.DateLayout, apt.Date); err == nil {
		displayDate = t.Format(model.DisplayDateLayout)
	}
	return fmt.Sprintf(
		"Dear %s,\n\nYour %s consultation at %s is confirmed for %s at %s.\n\nPlease arrive ten minutes early and carry any previous medical records.\n",
		apt.PatientName, apt.Mode, apt.Facility, displayDate, apt.Time,
	)
}
