package appointment

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/opdbook/booking-api/internal/model"
	"github.com/opdbook/booking-api/internal/repository"
	"github.com/opdbook/booking-api/pkg/errors"
)

// Service is the staff-facing view over the appointment book.
type Service struct {
	appointments repository.AppointmentRepository
	logger       *zerolog.Logger
}

func NewService(appointments repository.AppointmentRepository, logger *zerolog.Logger) *Service {
	return &Service{appointments: appointments, logger: logger}
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	filters.Normalize(100)
	appointments, total, err := s.appointments.List(ctx, filters)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return appointments, total, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NewNotFound("appointment", err)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return apt, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) error {
	err := s.appointments.Cancel(ctx, id, reason)
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NewNotFound("appointment", err)
	}
	if err != nil {
		return errors.NewInternal(err)
	}

	s.logger.Info().Str("appointment_id", id.String()).Str("reason", reason).Msg("Appointment cancelled")
	return nil
}
