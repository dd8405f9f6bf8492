package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/opdbook/booking-api/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

type paymentRepository struct {
	db *sqlx.DB
}

type adminUserRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func NewPaymentRepository(db *sqlx.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func NewAdminUserRepository(db *sqlx.DB) repository.AdminUserRepository {
	return &adminUserRepository{db: db}
}
