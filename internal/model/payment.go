package model

import (
	"time"

	"github.com/google/uuid"
)

// PatientRegion selects the fee schedule branch. Tax applies to the domestic
// branch only.
type PatientRegion string

const (
	RegionDomestic      PatientRegion = "domestic"
	RegionInternational PatientRegion = "international"
)

// VisitType distinguishes the priced consultation kinds.
type VisitType string

const (
	VisitOfflineConsult VisitType = "offline"
	VisitOnlineFirst    VisitType = "online_first"
	VisitOnlineFollowup VisitType = "online_followup"
)

// Quote is a priced consultation: total = base + round(base × tax rate),
// in whole currency units.
type Quote struct {
	Base     int64  `json:"base"`
	Tax      int64  `json:"tax"`
	Total    int64  `json:"total"`
	Currency string `json:"currency"`
}

type PaymentOrderStatus string

const (
	PaymentOrderCreatedStatus  PaymentOrderStatus = "created"
	PaymentOrderVerifiedStatus PaymentOrderStatus = "verified"
	PaymentOrderFailedStatus   PaymentOrderStatus = "failed"
)

// PaymentOrder is the persisted record of one payment attempt against the
// external gateway. Every retry gets a fresh row; order IDs are never reused.
type PaymentOrder struct {
	ID            uuid.UUID          `db:"id" json:"id"`
	AppointmentID uuid.UUID          `db:"appointment_id" json:"appointment_id"`
	OrderID       string             `db:"order_id" json:"order_id"`
	Amount        int64              `db:"amount" json:"amount"`
	Currency      string             `db:"currency" json:"currency"`
	Status        PaymentOrderStatus `db:"status" json:"status"`
	PaymentID     *string            `db:"gateway_payment_id" json:"payment_id,omitempty"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updated_at"`
}

// Payment endpoint DTOs.

type CreateOrderRequest struct {
	BookingID string        `json:"booking_id" binding:"required,uuid"`
	Region    PatientRegion `json:"region" binding:"required,oneof=domestic international"`
	VisitType VisitType     `json:"visit_type" binding:"required,oneof=offline online_first online_followup"`
}

type CreateOrderResponse struct {
	OrderID string `json:"order_id"`
	// AmountMinor is in the currency's minor units, as checkout widgets want.
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Key         string `json:"key"`
}

type VerifyPaymentRequest struct {
	BookingID string `json:"booking_id" binding:"required,uuid"`
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

type PaymentFailureRequest struct {
	BookingID string `json:"booking_id" binding:"required,uuid"`
	Reason    string `json:"reason" binding:"max=300"`
}
