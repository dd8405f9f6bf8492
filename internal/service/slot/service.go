package slot

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/opdbook/booking-api/internal/config"
	"github.com/opdbook/booking-api/internal/model"
	"github.com/opdbook/booking-api/internal/repository"
	"github.com/opdbook/booking-api/pkg/errors"
)

const (
	slotTimeLayout = "03:04 PM"
	monthLayout    = "2006-01"
	slotCacheTTL   = time.Minute
	slotCacheSweep = 5 * time.Minute
)

// Service computes the bookable calendar and day schedule from the clinic's
// configured hours and the appointments already on the book.
type Service struct {
	appointments repository.AppointmentRepository
	cfg          config.ClinicConfig
	cache        *gocache.Cache
	logger       *zerolog.Logger

	// now is swapped in tests to pin the calendar
	now func() time.Time
}

func NewService(appointments repository.AppointmentRepository, cfg config.ClinicConfig, logger *zerolog.Logger) *Service {
	return &Service{
		appointments: appointments,
		cfg:          cfg,
		cache:        gocache.New(slotCacheTTL, slotCacheSweep),
		logger:       logger,
		now:          time.Now,
	}
}

// Calendar returns the 42-cell grid for a month given as yyyy-mm.
func (s *Service) Calendar(month string) ([]model.CalendarDay, error) {
	ref, err := time.Parse(monthLayout, month)
	if err != nil {
		return nil, errors.NewBadRequest("invalid month, expected yyyy-mm", err)
	}
	return monthGrid(ref, s.now(), s.cfg.WorkingDays), nil
}

// Slots lists the day's schedule with per-slot availability. Results are
// cached briefly; the authoritative check happens again at selection time.
func (s *Service) Slots(ctx context.Context, date string) ([]model.Slot, error) {
	if err := s.checkBookableDate(date); err != nil {
		return nil, err
	}

	if cached, ok := s.cache.Get(date); ok {
		return cached.([]model.Slot), nil
	}

	slots, err := s.daySchedule(ctx, date)
	if err != nil {
		return nil, err
	}

	s.cache.Set(date, slots, gocache.DefaultExpiration)
	return slots, nil
}

// Available reports whether a specific slot can still be booked. It always
// reads fresh counts so two patients cannot race into the last opening
// through a stale cache.
func (s *Service) Available(ctx context.Context, date, slotTime string) error {
	if err := s.checkBookableDate(date); err != nil {
		return err
	}

	slots, err := s.daySchedule(ctx, date)
	if err != nil {
		return err
	}

	for _, slot := range slots {
		if slot.Time != slotTime {
			continue
		}
		if !slot.Available {
			return errors.NewConflict("slot is no longer available", nil)
		}
		return nil
	}
	return errors.NewNotFound("slot", nil)
}

func (s *Service) checkBookableDate(date string) error {
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return errors.NewBadRequest("invalid date, expected yyyy-mm-dd", err)
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !d.After(today) {
		return errors.NewValidation("bookings open from tomorrow", map[string]string{"date": "must be after today"})
	}
	if !isWorkingDay(s.cfg.WorkingDays, d) {
		return errors.NewNotFound("working day", nil)
	}
	return nil
}

func (s *Service) daySchedule(ctx context.Context, date string) ([]model.Slot, error) {
	times, err := s.slotTimes()
	if err != nil {
		return nil, err
	}

	booked, err := s.appointments.BookedCounts(ctx, date)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	slots := make([]model.Slot, 0, len(times))
	for _, t := range times {
		slots = append(slots, model.Slot{
			Time:      t,
			Available: booked[t] < s.cfg.SlotCapacity,
		})
	}
	return slots, nil
}

// slotTimes expands opening hours into the slot grid, for example 10:00 to
// 13:00 at 30 minutes giving six entries.
func (s *Service) slotTimes() ([]string, error) {
	open, err := time.Parse("15:04", s.cfg.OpeningTime)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("invalid opening time %q: %w", s.cfg.OpeningTime, err))
	}
	closing, err := time.Parse("15:04", s.cfg.ClosingTime)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("invalid closing time %q: %w", s.cfg.ClosingTime, err))
	}

	var times []string
	for t := open; t.Before(closing); t = t.Add(s.cfg.SlotInterval) {
		times = append(times, t.Format(slotTimeLayout))
	}
	return times, nil
}
