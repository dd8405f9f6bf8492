package booking

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/opdbook/booking-api/internal/config"
	"github.com/opdbook/booking-api/internal/email"
	"github.com/opdbook/booking-api/internal/model"
	"github.com/opdbook/booking-api/internal/repository"
	"github.com/opdbook/booking-api/pkg/errors"
	"github.com/opdbook/booking-api/pkg/gateway"
)

// sessionLockTTL bounds how long a wizard transition may hold a session. It
// has to outlive the slowest step, which is the gateway order call.
const sessionLockTTL = 30 * time.Second

// SlotChecker answers whether a slot is still bookable. The slot service
// implements it; the indirection keeps this package testable without one.
type SlotChecker interface {
	Available(ctx context.Context, date, slotTime string) error
}

type Service struct {
	sessions     repository.SessionRepository
	appointments repository.AppointmentRepository
	payments     repository.PaymentRepository
	slots        SlotChecker
	gateway      gateway.Gateway
	email        email.Service
	cfg          *config.Config
	logger       *zerolog.Logger
}

func NewService(
	sessions repository.SessionRepository,
	appointments repository.AppointmentRepository,
	payments repository.PaymentRepository,
	slots SlotChecker,
	gw gateway.Gateway,
	mailer email.Service,
	cfg *config.Config,
	logger *zerolog.Logger,
) *Service {
	return &Service{
		sessions:     sessions,
		appointments: appointments,
		payments:     payments,
		slots:        slots,
		gateway:      gw,
		email:        mailer,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start opens a fresh wizard session at the slot selection step.
func (s *Service) Start(ctx context.Context, req *model.StartBookingRequest) (*model.BookingContext, error) {
	facility := req.Facility
	if facility == "" {
		facility = s.cfg.Clinic.Facility
	}

	bc := &model.BookingContext{
		SessionID: uuid.New(),
		Facility:  facility,
		Stage:     model.StageSlotSelection,
		Payment:   model.PaymentProgress{State: model.PaymentNotStarted},
		CreatedAt: time.Now(),
	}
	if err := s.sessions.Save(ctx, bc, s.cfg.Booking.SessionTTL); err != nil {
		return nil, errors.NewUnavailable("session store", err)
	}
	return bc, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.BookingContext, error) {
	bc, err := s.sessions.Get(ctx, id)
	if stderrors.Is(err, repository.ErrSessionExpired) {
		return nil, errors.NewNotFound("booking session", err)
	}
	if err != nil {
		return nil, errors.NewUnavailable("session store", err)
	}
	return bc, nil
}

// mutate runs one wizard transition under the per-session lock. Concurrent
// requests for the same session are rejected rather than queued; a rejected
// duplicate tap is the behaviour we want.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(*model.BookingContext) error) (*model.BookingContext, error) {
	locked, err := s.sessions.TryLock(ctx, id, sessionLockTTL)
	if err != nil {
		return nil, errors.NewUnavailable("session store", err)
	}
	if !locked {
		return nil, errors.NewConflict("another request is updating this booking", nil)
	}
	defer func() {
		if err := s.sessions.Unlock(ctx, id); err != nil {
			s.logger.Warn().Err(err).Str("session_id", id.String()).Msg("Failed to release session lock")
		}
	}()

	bc, err := s.sessions.Get(ctx, id)
	if stderrors.Is(err, repository.ErrSessionExpired) {
		return nil, errors.NewNotFound("booking session", err)
	}
	if err != nil {
		return nil, errors.NewUnavailable("session store", err)
	}

	if err := fn(bc); err != nil {
		return nil, err
	}

	if err := s.sessions.Save(ctx, bc, s.cfg.Booking.SessionTTL); err != nil {
		return nil, errors.NewUnavailable("session store", err)
	}
	return bc, nil
}

func (s *Service) SelectSlot(ctx context.Context, id uuid.UUID, req *model.SelectSlotRequest) (*model.BookingContext, error) {
	if err := s.slots.Available(ctx, req.Date, req.Time); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(bc *model.BookingContext) error {
		return selectSlot(bc, req.Date, req.Time)
	})
}

func (s *Service) SubmitDetails(ctx context.Context, id uuid.UUID, req *model.SubmitDetailsRequest) (*model.BookingContext, error) {
	patient, err := validateDetails(req, s.cfg.Booking.EmailRequired[string(req.Mode)])
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(bc *model.BookingContext) error {
		return submitDetails(bc, patient, req.Mode)
	})
}

// UpsertCaseForm saves intake answers. Partial saves are accepted; a complete
// form moves the wizard forward. When the form is edited after the
// appointment exists, the stored record is updated too.
func (s *Service) UpsertCaseForm(ctx context.Context, id uuid.UUID, form *model.CaseForm) (*model.BookingContext, error) {
	return s.mutate(ctx, id, func(bc *model.BookingContext) error {
		return applyCaseForm(bc, form)
	})
}

func (s *Service) SkipCaseForm(ctx context.Context, id uuid.UUID, req *model.SkipCaseFormRequest) (*model.BookingContext, error) {
	return s.mutate(ctx, id, func(bc *model.BookingContext) error {
		return skipCaseForm(bc, req.Confirm)
	})
}

func (s *Service) Back(ctx context.Context, id uuid.UUID) (*model.BookingContext, error) {
	return s.mutate(ctx, id, goBack)
}

// Confirm anchors the booking server-side: it creates the appointment row
// exactly once. The creation latch is persisted before the insert so a
// racing duplicate sees it even if this request dies mid-flight.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*model.BookingContext, error) {
	bc, err := s.mutate(ctx, id, beginCreate)
	if err != nil {
		return nil, err
	}

	apt := s.buildAppointment(bc)
	if err := s.appointments.Create(ctx, apt); err != nil {
		if _, uerr := s.mutate(ctx, id, func(bc *model.BookingContext) error {
			failCreate(bc)
			return nil
		}); uerr != nil {
			s.logger.Error().Err(uerr).Str("session_id", id.String()).Msg("Failed to release creation latch")
		}
		return nil, errors.NewInternal(err)
	}

	return s.mutate(ctx, id, func(bc *model.BookingContext) error {
		completeCreate(bc, apt.ID)
		return nil
	})
}

func (s *Service) buildAppointment(bc *model.BookingContext) *model.Appointment {
	apt := &model.Appointment{
		Facility:     bc.Facility,
		PatientName:  bc.Patient.Name,
		PatientPhone: bc.Patient.Phone,
		PatientEmail: bc.Patient.Email,
		Mode:         bc.Mode,
		Date:         bc.Slot.Date,
		Time:         bc.Slot.Time,
		Status:       model.AppointmentStatusPending,
	}
	if bc.Mode == model.ConsultationOffline {
		if bc.CaseForm != nil && !bc.CaseForm.Empty() {
			apt.FormData = bc.CaseForm
		}
		if s.cfg.Booking.FlagSkippedIntake {
			apt.FormSkipped = bc.FormSkipped
		}
	}
	return apt
}

// Quote prices a consultation without touching any session.
func (s *Service) Quote(region model.PatientRegion, visit model.VisitType) (*model.Quote, error) {
	return quoteFee(s.cfg.Pricing, region, visit)
}

// CreateOrder opens a payment attempt: price the visit, create a gateway
// order for the total, persist the attempt and bind it to the session. Every
// retry lands here again and gets a brand-new order ID.
func (s *Service) CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.CreateOrderResponse, error) {
	id, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, errors.NewBadRequest("invalid booking id", err)
	}

	quote, err := quoteFee(s.cfg.Pricing, req.Region, req.VisitType)
	if err != nil {
		return nil, err
	}

	var resp *model.CreateOrderResponse
	_, err = s.mutate(ctx, id, func(bc *model.BookingContext) error {
		if err := canStartPayment(bc); err != nil {
			return err
		}

		order, err := s.gateway.CreateOrder(ctx, bc.AppointmentID.String(), quote.Total, quote.Currency)
		if err != nil {
			return errors.NewUnavailable("payment gateway", err)
		}

		if err := s.payments.CreateOrder(ctx, &model.PaymentOrder{
			AppointmentID: *bc.AppointmentID,
			OrderID:       order.ID,
			Amount:        quote.Total,
			Currency:      quote.Currency,
			Status:        model.PaymentOrderCreatedStatus,
		}); err != nil {
			return errors.NewInternal(err)
		}

		if err := attachOrder(bc, order.ID, req.Region, req.VisitType); err != nil {
			return err
		}

		deadline := time.Now().Add(s.cfg.Booking.VerifyTimeout)
		if err := s.sessions.MarkVerifying(ctx, bc.SessionID, deadline); err != nil {
			s.logger.Warn().Err(err).Str("session_id", bc.SessionID.String()).Msg("Failed to index payment deadline")
		}

		resp = &model.CreateOrderResponse{
			OrderID:     order.ID,
			AmountMinor: order.AmountMinor,
			Currency:    order.Currency,
			Key:         order.Key,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// VerifyPayment settles a checkout callback. The gateway signature decides:
// valid means the appointment is paid and confirmed, anything else fails the
// attempt and the stored order, and the patient must start a fresh one.
func (s *Service) VerifyPayment(ctx context.Context, req *model.VerifyPaymentRequest) (*model.BookingContext, error) {
	id, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, errors.NewBadRequest("invalid booking id", err)
	}

	return s.mutate(ctx, id, func(bc *model.BookingContext) error {
		if err := beginVerification(bc, req.OrderID); err != nil {
			return err
		}

		genuine := s.gateway.VerifySignature(gateway.CheckoutResult{
			OrderID:   req.OrderID,
			PaymentID: req.PaymentID,
			Signature: req.Signature,
		})
		if !genuine {
			if err := markFailed(bc, "signature_mismatch"); err != nil {
				return err
			}
			s.settleOrder(ctx, bc, req.OrderID, model.PaymentOrderFailedStatus, nil, "signature_mismatch")
			// persist the failed attempt here: mutate only saves on success
			// and this transition must survive the rejection
			if err := s.sessions.Save(ctx, bc, s.cfg.Booking.SessionTTL); err != nil {
				s.logger.Error().Err(err).Str("session_id", bc.SessionID.String()).Msg("Failed to persist failed payment attempt")
			}
			return errors.NewPaymentVerification("payment could not be verified", nil)
		}

		if err := markVerified(bc); err != nil {
			return err
		}
		paymentID := req.PaymentID
		s.settleOrder(ctx, bc, req.OrderID, model.PaymentOrderVerifiedStatus, &paymentID, "")

		if err := s.appointments.MarkPaid(ctx, *bc.AppointmentID, req.PaymentID); err != nil {
			return errors.NewInternal(err)
		}

		s.sendConfirmation(*bc.AppointmentID)
		return nil
	})
}

// RecordFailure handles the explicit failure callback, which includes the
// patient dismissing the checkout without paying.
func (s *Service) RecordFailure(ctx context.Context, req *model.PaymentFailureRequest) (*model.BookingContext, error) {
	id, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, errors.NewBadRequest("invalid booking id", err)
	}

	reason := req.Reason
	if reason == "" {
		reason = "checkout_dismissed"
	}

	return s.mutate(ctx, id, func(bc *model.BookingContext) error {
		orderID := bc.Payment.OrderID
		if err := markFailed(bc, reason); err != nil {
			return err
		}
		s.settleOrder(ctx, bc, orderID, model.PaymentOrderFailedStatus, nil, reason)
		return nil
	})
}

// settleOrder finalizes the persisted order record and the deadline index.
// Both writes are best-effort: the session is the source of truth for the
// wizard and the order table is reconciliation data.
func (s *Service) settleOrder(ctx context.Context, bc *model.BookingContext, orderID string, status model.PaymentOrderStatus, paymentID *string, failureReason string) {
	if err := s.sessions.ClearVerifying(ctx, bc.SessionID); err != nil {
		s.logger.Warn().Err(err).Str("session_id", bc.SessionID.String()).Msg("Failed to clear payment deadline")
	}
	if orderID == "" {
		return
	}
	if err := s.payments.UpdateStatus(ctx, orderID, status, paymentID); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("Failed to update payment order status")
	}
	if failureReason != "" && bc.HasAppointment() {
		if err := s.appointments.RecordPaymentFailure(ctx, &model.PaymentFailure{
			AppointmentID: *bc.AppointmentID,
			OrderID:       orderID,
			Reason:        failureReason,
		}); err != nil {
			s.logger.Error().Err(err).Str("order_id", orderID).Msg("Failed to record payment failure")
		}
	}
}

func (s *Service) sendConfirmation(appointmentID uuid.UUID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		apt, err := s.appointments.Get(ctx, appointmentID)
		if err != nil {
			s.logger.Error().Err(err).Str("appointment_id", appointmentID.String()).Msg("Failed to load appointment for confirmation email")
			return
		}
		if err := s.email.SendConfirmation(ctx, apt); err != nil {
			// the email service already logged the details
			return
		}
	}()
}

// FailOverdueVerifications force-fails payment attempts whose deadline
// passed without a verdict. The worker calls this on a ticker.
func (s *Service) FailOverdueVerifications(ctx context.Context) (int, error) {
	due, err := s.sessions.DueVerifications(ctx, time.Now())
	if err != nil {
		return 0, errors.NewUnavailable("session store", err)
	}

	failed := 0
	for _, id := range due {
		_, err := s.mutate(ctx, id, func(bc *model.BookingContext) error {
			orderID := bc.Payment.OrderID
			if err := markTimedOut(bc); err != nil {
				// already settled elsewhere; drop the index entry
				return s.sessions.ClearVerifying(ctx, bc.SessionID)
			}
			s.settleOrder(ctx, bc, orderID, model.PaymentOrderFailedStatus, nil, "verification_timeout")
			return nil
		})
		if stderrors.Is(err, repository.ErrSessionExpired) || errors.CodeOf(err) == errors.ErrNotFound {
			// session evaporated; nothing left to fail
			if cerr := s.sessions.ClearVerifying(ctx, id); cerr != nil {
				s.logger.Warn().Err(cerr).Str("session_id", id.String()).Msg("Failed to clear payment deadline")
			}
			continue
		}
		if err != nil {
			s.logger.Error().Err(err).Str("session_id", id.String()).Msg("Failed to time out payment attempt")
			continue
		}
		failed++
	}
	return failed, nil
}
