package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/opdbook/booking-api/internal/model"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrSessionExpired = errors.New("booking session not found or expired")
)

type AppointmentRepository interface {
	Create(ctx context.Context, apt *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) error
	MarkPaid(ctx context.Context, id uuid.UUID, paymentID string) error
	// BookedCounts returns, per slot time, how many non-cancelled
	// appointments already occupy the given date.
	BookedCounts(ctx context.Context, date string) (map[string]int, error)
	RecordPaymentFailure(ctx context.Context, failure *model.PaymentFailure) error
}

type PaymentRepository interface {
	CreateOrder(ctx context.Context, order *model.PaymentOrder) error
	GetByOrderID(ctx context.Context, orderID string) (*model.PaymentOrder, error)
	UpdateStatus(ctx context.Context, orderID string, status model.PaymentOrderStatus, gatewayPaymentID *string) error
}

type AdminUserRepository interface {
	GetByEmail(ctx context.Context, email string) (*model.AdminUser, error)
	Get(ctx context.Context, id uuid.UUID) (*model.AdminUser, error)
	Update(ctx context.Context, user *model.AdminUser) error
	StoreResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	ValidateResetToken(ctx context.Context, token string) (uuid.UUID, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

// SessionRepository stores in-flight booking wizards. Contexts are TTL'd
// whole values: every transition loads, mutates and saves one atomically
// under the per-session lock.
type SessionRepository interface {
	Save(ctx context.Context, bc *model.BookingContext, ttl time.Duration) error
	Get(ctx context.Context, id uuid.UUID) (*model.BookingContext, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// TryLock takes the short-lived mutation lock for a session. A false
	// return means another request is mid-transition; callers reject rather
	// than wait, which is what makes the duplicate-submit guard hold.
	TryLock(ctx context.Context, id uuid.UUID, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, id uuid.UUID) error

	// MarkVerifying indexes a session whose payment entered verification,
	// with the deadline after which it must be force-failed.
	MarkVerifying(ctx context.Context, id uuid.UUID, deadline time.Time) error
	ClearVerifying(ctx context.Context, id uuid.UUID) error
	DueVerifications(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}
