package slot

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opdbook/booking-api/internal/config"
	"github.com/opdbook/booking-api/internal/model"
	apperrors "github.com/opdbook/booking-api/pkg/errors"
)

type fakeAppointmentRepo struct {
	booked map[string]map[string]int
}

func (f *fakeAppointmentRepo) Create(ctx context.Context, apt *model.Appointment) error { return nil }
func (f *fakeAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return nil, nil
}
func (f *fakeAppointmentRepo) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	return nil, 0, nil
}
func (f *fakeAppointmentRepo) Cancel(ctx context.Context, id uuid.UUID, reason string) error {
	return nil
}
func (f *fakeAppointmentRepo) MarkPaid(ctx context.Context, id uuid.UUID, paymentID string) error {
	return nil
}
func (f *fakeAppointmentRepo) BookedCounts(ctx context.Context, date string) (map[string]int, error) {
	return f.booked[date], nil
}
func (f *fakeAppointmentRepo) RecordPaymentFailure(ctx context.Context, failure *model.PaymentFailure) error {
	return nil
}

func newTestService(booked map[string]map[string]int) *Service {
	logger := zerolog.Nop()
	svc := NewService(&fakeAppointmentRepo{booked: booked}, config.ClinicConfig{
		OpeningTime:  "10:00",
		ClosingTime:  "13:00",
		SlotInterval: 30 * time.Minute,
		SlotCapacity: 1,
	}, &logger)
	svc.now = func() time.Time {
		return time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestSlotsExpandOpeningHours(t *testing.T) {
	svc := newTestService(nil)

	slots, err := svc.Slots(context.Background(), "2025-03-11")
	require.NoError(t, err)
	require.Len(t, slots, 6)

	assert.Equal(t, "10:00 AM", slots[0].Time)
	assert.Equal(t, "12:30 PM", slots[5].Time)
	for _, s := range slots {
		assert.True(t, s.Available)
	}
}

func TestSlotsMarkBookedTimes(t *testing.T) {
	svc := newTestService(map[string]map[string]int{
		"2025-03-11": {"10:30 AM": 1},
	})

	slots, err := svc.Slots(context.Background(), "2025-03-11")
	require.NoError(t, err)

	for _, s := range slots {
		if s.Time == "10:30 AM" {
			assert.False(t, s.Available)
		} else {
			assert.True(t, s.Available)
		}
	}
}

func TestSlotsRejectTodayAndPast(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.Slots(context.Background(), "2025-03-10")
	assert.Equal(t, apperrors.ErrValidation, apperrors.CodeOf(err))

	_, err = svc.Slots(context.Background(), "2025-03-09")
	assert.Equal(t, apperrors.ErrValidation, apperrors.CodeOf(err))
}

func TestSlotsRejectNonWorkingDay(t *testing.T) {
	logger := zerolog.Nop()
	svc := NewService(&fakeAppointmentRepo{}, config.ClinicConfig{
		OpeningTime:  "10:00",
		ClosingTime:  "13:00",
		SlotInterval: 30 * time.Minute,
		SlotCapacity: 1,
		WorkingDays:  []int{1, 2, 3, 4, 5, 6},
	}, &logger)
	svc.now = func() time.Time {
		return time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	}

	// 2025-03-16 is a Sunday
	_, err := svc.Slots(context.Background(), "2025-03-16")
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func TestAvailable(t *testing.T) {
	svc := newTestService(map[string]map[string]int{
		"2025-03-11": {"11:00 AM": 1},
	})

	assert.NoError(t, svc.Available(context.Background(), "2025-03-11", "10:00 AM"))

	err := svc.Available(context.Background(), "2025-03-11", "11:00 AM")
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))

	err = svc.Available(context.Background(), "2025-03-11", "09:00 PM")
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}
