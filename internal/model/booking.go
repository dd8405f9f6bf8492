package model

import (
	"time"

	"github.com/google/uuid"
)

// BookingStage is the wizard page the session currently sits on.
type BookingStage string

const (
	StageSlotSelection     BookingStage = "slot_selection"
	StageDetailsEntry      BookingStage = "details_entry"
	StageCaseIntake        BookingStage = "case_intake"
	StagePaymentPending    BookingStage = "payment_pending"
	StagePaymentVerifying  BookingStage = "payment_verifying"
	StageConfirmed         BookingStage = "confirmed"
)

// PaymentState only ever advances; Failed loops back through a fresh order,
// never back to NotStarted once an appointment exists.
type PaymentState string

const (
	PaymentNotStarted   PaymentState = "not_started"
	PaymentOrderCreated PaymentState = "order_created"
	PaymentVerifying    PaymentState = "verifying"
	PaymentVerified     PaymentState = "verified"
	PaymentFailed       PaymentState = "failed"
)

// SelectedSlot is the chosen appointment slot, immutable once confirmed.
type SelectedSlot struct {
	Date          string `json:"date"`
	Time          string `json:"time"`
	DateFormatted string `json:"date_formatted"`
}

// PatientDetails are the identity fields captured on the details page.
type PatientDetails struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// PaymentProgress tracks the reconciliation of the current payment attempt.
type PaymentProgress struct {
	State       PaymentState `json:"state"`
	OrderID     string       `json:"order_id,omitempty"`
	Attempts    int          `json:"attempts"`
	LastFailure string       `json:"last_failure,omitempty"`
	// ContactSupport is set when an attempt timed out while verifying: the
	// charge is ambiguous and must not be retried automatically.
	ContactSupport bool `json:"contact_support,omitempty"`
}

// BookingContext is the accumulating record a wizard session carries from
// slot selection through confirmation. It lives in the session store as a
// whole value; every transition loads, mutates and stores it atomically.
type BookingContext struct {
	SessionID uuid.UUID        `json:"session_id"`
	Facility  string           `json:"facility"`
	Stage     BookingStage     `json:"stage"`
	Slot      *SelectedSlot    `json:"slot,omitempty"`
	Mode      ConsultationMode `json:"mode,omitempty"`
	Patient   *PatientDetails  `json:"patient,omitempty"`
	CaseForm  *CaseForm        `json:"case_form,omitempty"`
	// FormSkipped records the explicit skip acknowledgement on the offline
	// branch. Distinguishable from "never offered" only when the deployment
	// flags skipped intakes (config choice).
	FormSkipped bool `json:"form_skipped,omitempty"`
	// AppointmentID is assigned by the server exactly once; its absence is
	// the signal that no appointment exists yet.
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
	// Creating latches while the appointment-creation call is in flight so a
	// double submit cannot produce two appointments.
	Creating bool            `json:"creating,omitempty"`
	Payment  PaymentProgress `json:"payment"`

	Region    PatientRegion `json:"region,omitempty"`
	VisitType VisitType     `json:"visit_type,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasAppointment reports whether the booking was anchored server-side.
func (bc *BookingContext) HasAppointment() bool {
	return bc.AppointmentID != nil && *bc.AppointmentID != uuid.Nil
}

// Request DTOs for the wizard endpoints.

type StartBookingRequest struct {
	Facility string `json:"facility" binding:"required,max=120"`
}

type SelectSlotRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

type SubmitDetailsRequest struct {
	Name  string           `json:"name" binding:"required"`
	Phone string           `json:"phone" binding:"required"`
	Email string           `json:"email"`
	Mode  ConsultationMode `json:"mode" binding:"required,oneof=online offline"`
}

type SkipCaseFormRequest struct {
	// Confirm must be an explicit true; the skip dialog is not the default
	// action and the server re-checks the acknowledgement.
	Confirm bool `json:"confirm"`
}
