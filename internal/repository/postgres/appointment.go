package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opdbook/booking-api/internal/model"
	"github.com/opdbook/booking-api/internal/repository"
)

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, facility, patient_name, patient_phone, patient_email,
			mode, date, time, status, form_data, form_skipped,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	apt.ID = uuid.New()
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = time.Now()

	formData, err := marshalFormData(apt.FormData)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		apt.ID,
		apt.Facility,
		apt.PatientName,
		apt.PatientPhone,
		apt.PatientEmail,
		apt.Mode,
		apt.Date,
		apt.Time,
		apt.Status,
		formData,
		apt.FormSkipped,
		apt.CreatedAt,
		apt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, facility, patient_name, patient_phone, patient_email,
			   mode, date, time, status, form_data, form_skipped,
			   payment_id, cancel_reason, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	row := struct {
		model.Appointment
		RawFormData []byte `db:"form_data"`
	}{}
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	apt := row.Appointment
	if apt.FormData, err = unmarshalFormData(row.RawFormData); err != nil {
		return nil, err
	}
	return &apt, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argCount := 1

	if filters.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}
	if filters.Mode != "" {
		where += fmt.Sprintf(" AND mode = $%d", argCount)
		args = append(args, filters.Mode)
		argCount++
	}
	if filters.Date != "" {
		where += fmt.Sprintf(" AND date = $%d", argCount)
		args = append(args, filters.Date)
		argCount++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM appointments"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	query := `
		SELECT id, facility, patient_name, patient_phone, patient_email,
			   mode, date, time, status, form_data, form_skipped,
			   payment_id, cancel_reason, created_at, updated_at
		FROM appointments` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows := []struct {
		model.Appointment
		RawFormData []byte `db:"form_data"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}

	appointments := make([]*model.Appointment, 0, len(rows))
	for i := range rows {
		apt := rows[i].Appointment
		formData, err := unmarshalFormData(rows[i].RawFormData)
		if err != nil {
			return nil, 0, err
		}
		apt.FormData = formData
		appointments = append(appointments, &apt)
	}
	return appointments, total, nil
}

func (r *appointmentRepository) Cancel(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE appointments
		SET status = $1, cancel_reason = $2, updated_at = $3
		WHERE id = $4 AND status NOT IN ('cancelled', 'completed')
	`
	result, err := r.db.ExecContext(ctx, query, model.AppointmentStatusCancelled, reason, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
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

func (r *appointmentRepository) MarkPaid(ctx context.Context, id uuid.UUID, paymentID string) error {
	query := `
		UPDATE appointments
		SET status = $1, payment_id = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query, model.AppointmentStatusBooked, paymentID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark appointment paid: %w", err)
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

func (r *appointmentRepository) BookedCounts(ctx context.Context, date string) (map[string]int, error) {
	query := `
		SELECT time, COUNT(*) AS booked
		FROM appointments
		WHERE date = $1 AND status NOT IN ('cancelled')
		GROUP BY time
	`
	rows := []struct {
		Time   string `db:"time"`
		Booked int    `db:"booked"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("failed to count booked slots: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Time] = row.Booked
	}
	return counts, nil
}

func (r *appointmentRepository) RecordPaymentFailure(ctx context.Context, failure *model.PaymentFailure) error {
	query := `
		INSERT INTO payment_failures (id, appointment_id, order_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	failure.ID = uuid.New()
	failure.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		failure.ID,
		failure.AppointmentID,
		failure.OrderID,
		failure.Reason,
		failure.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record payment failure: %w", err)
	}
	return nil
}

func marshalFormData(form *model.CaseForm) ([]byte, error) {
	if form == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal form data: %w", err)
	}
	return data, nil
}

func unmarshalFormData(raw []byte) (*model.CaseForm, error) {
	if len(raw) == 0 || string(raw) == "{}" {
		return nil, nil
	}
	var form model.CaseForm
	if err := json.Unmarshal(raw, &form); err != nil {
		return nil, fmt.Errorf("failed to unmarshal form data: %w", err)
	}
	return &form, nil
}
