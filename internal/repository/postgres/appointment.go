package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/meditrack/clinic-api/internal/model"
	"github.com/meditrack/clinic-api/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, provider_id, patient_id, date, slot,
			status, value, reminder_sent, reminder_sent_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		apt.ID,
		apt.ProviderID,
		apt.PatientID,
		apt.Date,
		apt.Slot,
		apt.Status,
		apt.Value,
		apt.ReminderSent,
		apt.ReminderSentAt,
		apt.CreatedAt,
		apt.UpdatedAt,
	)
	if err != nil {
		// The partial unique index on (provider_id, date, slot) for
		// non-cancelled rows is the backstop against concurrent bookings.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return repository.ErrSlotTaken
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, provider_id, patient_id, date, slot,
			   status, value, reminder_sent, reminder_sent_at,
			   created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var apt model.Appointment
	err := r.db.GetContext(ctx, &apt, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

func (r *appointmentRepository) Update(ctx context.Context, apt *model.Appointment) error {
	query := `
		UPDATE appointments
		SET date = $1, slot = $2, status = $3, value = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		apt.Date,
		apt.Slot,
		apt.Status,
		apt.Value,
		apt.UpdatedAt,
		apt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrAppointmentNotFound
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, providerID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, provider_id, patient_id, date, slot,
			   status, value, reminder_sent, reminder_sent_at,
			   created_at, updated_at
		FROM appointments
		WHERE provider_id = $1
	`
	args := []interface{}{providerID}
	argCount := 2

	if filters != nil {
		if filters.PatientID != uuid.Nil {
			query += fmt.Sprintf(" AND patient_id = $%d", argCount)
			args = append(args, filters.PatientID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if !filters.StartDate.IsZero() {
			query += fmt.Sprintf(" AND date >= $%d", argCount)
			args = append(args, filters.StartDate)
			argCount++
		}
		if !filters.EndDate.IsZero() {
			query += fmt.Sprintf(" AND date <= $%d", argCount)
			args = append(args, filters.EndDate)
			argCount++
		}
	}

	query += " ORDER BY date ASC, slot ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByDate(ctx context.Context, providerID uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT id, provider_id, patient_id, date, slot,
			   status, value, reminder_sent, reminder_sent_at,
			   created_at, updated_at
		FROM appointments
		WHERE provider_id = $1 AND date = $2
		ORDER BY slot ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, providerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments by date: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) MarkReminderSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	// COALESCE keeps the original timestamp on repeated calls.
	query := `
		UPDATE appointments
		SET reminder_sent = TRUE,
			reminder_sent_at = COALESCE(reminder_sent_at, $1),
			updated_at = $1
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, sentAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrAppointmentNotFound
	}
	return nil
}
