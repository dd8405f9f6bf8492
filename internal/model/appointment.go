package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusBooked    AppointmentStatus = "booked"
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

type ConsultationMode string

const (
	ConsultationOnline  ConsultationMode = "online"
	ConsultationOffline ConsultationMode = "offline"
)

type Appointment struct {
	Base
	Facility     string            `db:"facility" json:"facility"`
	PatientName  string            `db:"patient_name" json:"patient_name"`
	PatientPhone string            `db:"patient_phone" json:"patient_phone"`
	PatientEmail string            `db:"patient_email" json:"patient_email,omitempty"`
	Mode         ConsultationMode  `db:"mode" json:"mode"`
	Date         string            `db:"date" json:"date"`
	Time         string            `db:"time" json:"time"`
	Status       AppointmentStatus `db:"status" json:"status"`
	PaymentID    *string           `db:"payment_id" json:"payment_id,omitempty"`
	FormData     *CaseForm         `db:"-" json:"form_data,omitempty"`
	FormSkipped  bool              `db:"form_skipped" json:"form_skipped"`
	CancelReason *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

// IsFormSubmitted reports whether the intake questionnaire was filled in,
// as opposed to skipped or never offered.
func (a *Appointment) IsFormSubmitted() bool {
	return a.FormData != nil && !a.FormData.Empty()
}

type AppointmentFilters struct {
	Status AppointmentStatus
	Mode   ConsultationMode
	Date   string
	Pagination
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// PaymentFailure is the best-effort record the wizard files when a payment
// attempt dies. Losing one of these must never block the patient's retry.
type PaymentFailure struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	OrderID       string    `db:"order_id" json:"order_id"`
	Reason        string    `db:"reason" json:"reason"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
