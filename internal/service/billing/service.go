package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/meditrack/clinic-api/internal/clock"
	"github.com/meditrack/clinic-api/internal/model"
	"github.com/meditrack/clinic-api/internal/repository"
	"github.com/meditrack/clinic-api/internal/service/scheduling"
	"github.com/meditrack/clinic-api/pkg/logger"
)

type Service struct {
	appointments repository.AppointmentRepository
	payments     repository.PaymentRepository
	patients     repository.PatientRepository
	providers    repository.ProviderRepository
	clock        clock.Clock
	logger       *logger.Logger
}

func NewService(
	appointments repository.AppointmentRepository,
	payments repository.PaymentRepository,
	patients repository.PatientRepository,
	providers repository.ProviderRepository,
	clk clock.Clock,
	log *logger.Logger,
) *Service {
	return &Service{
		appointments: appointments,
		payments:     payments,
		patients:     patients,
		providers:    providers,
		clock:        clk,
		logger:       log,
	}
}

// Reconcile ensures exactly one pending payment exists per billable
// appointment for the provider and returns how many it created. It is a
// set reconciliation (candidates minus already-billed) and is safe to
// run any number of times; a pass over an already reconciled schedule
// writes nothing.
//
// A write failure for one appointment is logged and does not block the
// rest; partial success is a normal outcome.
func (s *Service) Reconcile(ctx context.Context, providerID uuid.UUID) (int, error) {
	appointments, err := s.appointments.List(ctx, providerID, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to list appointments: %w", err)
	}

	payments, err := s.payments.List(ctx, providerID)
	if err != nil {
		return 0, fmt.Errorf("failed to list payments: %w", err)
	}

	billed := make(map[uuid.UUID]bool, len(payments))
	for _, p := range payments {
		if p.AppointmentID != nil {
			billed[*p.AppointmentID] = true
		}
	}

	now := s.clock.Now()
	created := 0
	for _, apt := range appointments {
		if scheduling.EffectiveStatus(apt, now) != model.AppointmentStatusCompleted {
			continue
		}
		if billed[apt.ID] {
			continue
		}

		value, err := s.resolveValue(ctx, apt)
		if err != nil {
			s.logger.Error(err, "skipping appointment during reconciliation",
				"appointment_id", apt.ID.String())
			continue
		}

		aptID := apt.ID
		payment := &model.Payment{
			ID:            uuid.New(),
			PatientID:     apt.PatientID,
			AppointmentID: &aptID,
			Value:         value,
			Method:        model.DefaultPaymentMethod,
			Status:        model.PaymentStatusPending,
			Date:          apt.Date,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.payments.Create(ctx, payment); err != nil {
			// A concurrent pass billed it first; not a failure.
			if errors.Is(err, repository.ErrDuplicatePayment) {
				continue
			}
			s.logger.Error(err, "failed to create payment",
				"appointment_id", apt.ID.String())
			continue
		}
		created++
	}
	return created, nil
}

// resolveValue picks the payment amount: the appointment's stored
// value, then the patient override, then the provider default.
func (s *Service) resolveValue(ctx context.Context, apt *model.Appointment) (float64, error) {
	if apt.Value != nil {
		return *apt.Value, nil
	}

	patient, err := s.patients.Get(ctx, apt.PatientID)
	switch {
	case err == nil:
		if patient.OverridePrice != nil {
			return *patient.OverridePrice, nil
		}
	case errors.Is(err, repository.ErrPatientNotFound):
		// Data-integrity problem; the appointment is still billed at the
		// provider default rather than dropped from the pass.
		s.logger.Warn("patient missing during value resolution",
			"patient_id", apt.PatientID.String(),
			"appointment_id", apt.ID.String())
	default:
		return 0, fmt.Errorf("failed to get patient: %w", err)
	}

	provider, err := s.providers.Get(ctx, apt.ProviderID)
	if err != nil {
		return 0, fmt.Errorf("failed to get provider: %w", err)
	}
	return provider.DefaultPrice, nil
}
