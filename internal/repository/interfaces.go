package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/meditrack/clinic-api/internal/model"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrProviderNotFound    = errors.New("provider not found")

	// ErrDuplicatePayment is returned by payment stores that enforce the
	// one-payment-per-appointment constraint at write time.
	ErrDuplicatePayment = errors.New("payment already exists for appointment")

	// ErrSlotTaken is returned by appointment stores that enforce slot
	// uniqueness at write time.
	ErrSlotTaken = errors.New("slot already booked")
)

// All repository interfaces in one file
type (
	AppointmentRepository interface {
		Create(ctx context.Context, apt *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, apt *model.Appointment) error
		List(ctx context.Context, providerID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListByDate(ctx context.Context, providerID uuid.UUID, date time.Time) ([]*model.Appointment, error)
		// MarkReminderSent sets the reminder flag and timestamp. It is a
		// plain overwrite: calling it on an already-sent appointment leaves
		// the original timestamp in place and is not an error.
		MarkReminderSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	}

	PaymentRepository interface {
		Create(ctx context.Context, payment *model.Payment) error
		List(ctx context.Context, providerID uuid.UUID) ([]*model.Payment, error)
	}

	PatientRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	}

	ProviderRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Provider, error)
		List(ctx context.Context) ([]*model.Provider, error)
	}
)
