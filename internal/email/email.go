package email

import (
	"context"

	"github.com/opdbook/booking-api/internal/model"
)

// Service sends patient-facing notifications. Sending is best-effort: a
// failed send is logged and never fails the booking that triggered it.
type Service interface {
	SendConfirmation(ctx context.Context, apt *model.Appointment) error
}

// Noop is used when SMTP is disabled in config.
type Noop struct{}

func (Noop) SendConfirmation(ctx context.Context, apt *model.Appointment) error {
	return nil
}
