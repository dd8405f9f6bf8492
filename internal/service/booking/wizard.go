package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/opdbook/booking-api/internal/model"
	"github.com/opdbook/booking-api/pkg/errors"
)

// The wizard transitions below mutate a BookingContext in memory and return
// an error when the move is not legal from the current stage. They are pure
// with respect to I/O so the state machine can be tested without a store.

func selectSlot(bc *model.BookingContext, date, slotTime string) error {
	if bc.HasAppointment() {
		return errors.NewConflict("slot cannot change once the appointment is created", nil)
	}
	if bc.Stage == model.StagePaymentVerifying || bc.Stage == model.StageConfirmed {
		return errors.NewConflict("booking is past slot selection", nil)
	}

	parsed, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return errors.NewValidation("invalid slot date", map[string]string{"date": "must be yyyy-mm-dd"})
	}

	bc.Slot = &model.SelectedSlot{
		Date:          date,
		Time:          slotTime,
		DateFormatted: parsed.Format(model.DisplayDateLayout),
	}
	bc.Stage = model.StageDetailsEntry
	return nil
}

func submitDetails(bc *model.BookingContext, patient *model.PatientDetails, mode model.ConsultationMode) error {
	if bc.Slot == nil {
		return errors.NewConflict("select a slot before entering details", nil)
	}
	if bc.HasAppointment() {
		return errors.NewConflict("details cannot change once the appointment is created", nil)
	}
	if bc.Stage == model.StagePaymentVerifying || bc.Stage == model.StageConfirmed {
		return errors.NewConflict("booking is past details entry", nil)
	}

	bc.Patient = patient
	bc.Mode = mode
	if mode == model.ConsultationOffline {
		bc.Stage = model.StageCaseIntake
	} else {
		bc.Stage = model.StagePaymentPending
	}
	return nil
}

// applyCaseForm stores a partial or complete intake form. A complete form
// advances the wizard; a partial one is kept so the patient can resume. Once
// an appointment exists the form stays editable while everything else is
// frozen.
func applyCaseForm(bc *model.BookingContext, form *model.CaseForm) error {
	if bc.Mode != model.ConsultationOffline {
		return errors.NewConflict("intake form applies to in-person consultations only", nil)
	}
	switch bc.Stage {
	case model.StageCaseIntake, model.StagePaymentPending:
	default:
		return errors.NewConflict("booking is not at the intake step", nil)
	}

	bc.CaseForm = form
	bc.FormSkipped = false
	if bc.Stage == model.StageCaseIntake && form.Complete() {
		bc.Stage = model.StagePaymentPending
	}
	return nil
}

func skipCaseForm(bc *model.BookingContext, confirm bool) error {
	if bc.Mode != model.ConsultationOffline {
		return errors.NewConflict("intake form applies to in-person consultations only", nil)
	}
	if bc.Stage != model.StageCaseIntake {
		return errors.NewConflict("booking is not at the intake step", nil)
	}
	if !confirm {
		return errors.NewBadRequest("skipping the intake form requires explicit confirmation", nil)
	}

	bc.FormSkipped = true
	bc.Stage = model.StagePaymentPending
	return nil
}

// goBack steps the wizard one page towards the start. Free movement ends the
// moment an appointment exists; after that only the intake form may be
// revisited.
func goBack(bc *model.BookingContext) error {
	if bc.HasAppointment() {
		if bc.Mode == model.ConsultationOffline && bc.Stage == model.StagePaymentPending {
			bc.Stage = model.StageCaseIntake
			return nil
		}
		return errors.NewConflict("only the intake form can be revisited after the appointment is created", nil)
	}

	switch bc.Stage {
	case model.StageDetailsEntry:
		bc.Stage = model.StageSlotSelection
	case model.StageCaseIntake:
		bc.Stage = model.StageDetailsEntry
	case model.StagePaymentPending:
		if bc.Mode == model.ConsultationOffline {
			bc.Stage = model.StageCaseIntake
		} else {
			bc.Stage = model.StageDetailsEntry
		}
	default:
		return errors.NewConflict("nothing to go back to", nil)
	}
	return nil
}

// beginCreate latches the context for appointment creation. The latch plus
// the session lock is what keeps a double-tapped confirm button down to one
// appointment row.
func beginCreate(bc *model.BookingContext) error {
	if bc.HasAppointment() {
		return errors.NewConflict("appointment already created", nil)
	}
	if bc.Creating {
		return errors.NewConflict("appointment creation already in progress", nil)
	}
	if bc.Stage != model.StagePaymentPending {
		return errors.NewConflict("booking is not ready to confirm", nil)
	}
	if bc.Slot == nil || bc.Patient == nil {
		return errors.NewConflict("booking is missing slot or patient details", nil)
	}

	bc.Creating = true
	return nil
}

func completeCreate(bc *model.BookingContext, id uuid.UUID) {
	bc.Creating = false
	bc.AppointmentID = &id
}

func failCreate(bc *model.BookingContext) {
	bc.Creating = false
}

// attachOrder binds a freshly created gateway order to the booking. A failed
// attempt re-enters here with a new order ID; the old one is dead from this
// point on.
func attachOrder(bc *model.BookingContext, orderID string, region model.PatientRegion, visit model.VisitType) error {
	if err := canStartPayment(bc); err != nil {
		return err
	}

	bc.Payment.State = model.PaymentOrderCreated
	bc.Payment.OrderID = orderID
	bc.Payment.Attempts++
	bc.Region = region
	bc.VisitType = visit
	return nil
}

// beginVerification moves the current order into verifying. Order IDs from
// superseded attempts are rejected here, which is the stale-retry guard.
func beginVerification(bc *model.BookingContext, orderID string) error {
	if bc.Payment.State != model.PaymentOrderCreated {
		return errors.NewConflict("no payment order awaiting verification", nil)
	}
	if bc.Payment.OrderID != orderID {
		return errors.NewConflict("payment order is no longer current", nil)
	}

	bc.Payment.State = model.PaymentVerifying
	bc.Stage = model.StagePaymentVerifying
	return nil
}

func markVerified(bc *model.BookingContext) error {
	if bc.Payment.State != model.PaymentVerifying {
		return errors.NewConflict("payment is not being verified", nil)
	}
	bc.Payment.State = model.PaymentVerified
	bc.Stage = model.StageConfirmed
	return nil
}

// markFailed records a failed or abandoned attempt and reopens the payment
// step. The session keeps its appointment; only the payment restarts.
func markFailed(bc *model.BookingContext, reason string) error {
	switch bc.Payment.State {
	case model.PaymentOrderCreated, model.PaymentVerifying:
	default:
		return errors.NewConflict("no payment attempt to fail", nil)
	}

	bc.Payment.State = model.PaymentFailed
	bc.Payment.LastFailure = reason
	bc.Stage = model.StagePaymentPending
	return nil
}

// canStartPayment mirrors attachOrder's preconditions so callers can check
// before creating a gateway order that would otherwise be orphaned.
func canStartPayment(bc *model.BookingContext) error {
	if !bc.HasAppointment() {
		return errors.NewConflict("confirm the booking before starting payment", nil)
	}
	if bc.Payment.ContactSupport {
		return errors.NewConflict("payment is under review, please contact support", nil)
	}
	switch bc.Payment.State {
	case model.PaymentVerified:
		return errors.NewConflict("payment already completed", nil)
	case model.PaymentVerifying:
		return errors.NewConflict("payment verification in progress", nil)
	}
	if bc.Stage != model.StagePaymentPending {
		return errors.NewConflict("booking is not awaiting payment", nil)
	}
	return nil
}

// markTimedOut is markFailed for the ambiguous case: the attempt never
// resolved inside the deadline, so the patient is routed to support instead
// of a retry.
func markTimedOut(bc *model.BookingContext) error {
	switch bc.Payment.State {
	case model.PaymentOrderCreated, model.PaymentVerifying:
	default:
		return errors.NewConflict("no payment attempt to time out", nil)
	}

	bc.Payment.State = model.PaymentFailed
	bc.Payment.LastFailure = "verification_timeout"
	bc.Payment.ContactSupport = true
	bc.Stage = model.StagePaymentPending
	return nil
}
