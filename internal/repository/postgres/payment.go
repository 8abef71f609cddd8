package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/meditrack/clinic-api/internal/model"
	"github.com/meditrack/clinic-api/internal/repository"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	// The unique index on appointment_id makes concurrent reconciliation
	// passes collapse into a single payment per appointment.
	query := `
		INSERT INTO payments (
			id, patient_id, appointment_id, value, method,
			status, date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (appointment_id) WHERE appointment_id IS NOT NULL DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.PatientID,
		payment.AppointmentID,
		payment.Value,
		payment.Method,
		payment.Status,
		payment.Date,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrDuplicatePayment
	}
	return nil
}

func (r *paymentRepository) List(ctx context.Context, providerID uuid.UUID) ([]*model.Payment, error) {
	query := `
		SELECT p.id, p.patient_id, p.appointment_id, p.value, p.method,
			   p.status, p.date, p.created_at, p.updated_at
		FROM payments p
		JOIN patients pa ON pa.id = p.patient_id
		WHERE pa.provider_id = $1
		ORDER BY p.date DESC
	`
	var payments []*model.Payment
	err := r.db.SelectContext(ctx, &payments, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
