package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opdbook/booking-api/internal/model"
	"github.com/opdbook/booking-api/internal/repository"
)

func (r *paymentRepository) CreateOrder(ctx context.Context, order *model.PaymentOrder) error {
	query := `
		INSERT INTO payment_orders (
			id, appointment_id, order_id, amount, currency, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.AppointmentID,
		order.OrderID,
		order.Amount,
		order.Currency,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment order: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByOrderID(ctx context.Context, orderID string) (*model.PaymentOrder, error) {
	query := `
		SELECT id, appointment_id, order_id, amount, currency, status,
			   gateway_payment_id, created_at, updated_at
		FROM payment_orders
		WHERE order_id = $1
	`
	var order model.PaymentOrder
	err := r.db.GetContext(ctx, &order, query, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment order: %w", err)
	}
	return &order, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, orderID string, status model.PaymentOrderStatus, gatewayPaymentID *string) error {
	query := `
		UPDATE payment_orders
		SET status = $1, gateway_payment_id = COALESCE($2, gateway_payment_id), updated_at = $3
		WHERE order_id = $4
	`
	result, err := r.db.ExecContext(ctx, query, status, gatewayPaymentID, time.Now(), orderID)
	if err != nil {
		return fmt.Errorf("failed to update payment order: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
