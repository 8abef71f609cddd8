package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meditrack/clinic-api/internal/clock"
	"github.com/meditrack/clinic-api/internal/lock"
	"github.com/meditrack/clinic-api/internal/model"
	"github.com/meditrack/clinic-api/internal/repository"
)

var (
	// ErrSlotUnavailable means the requested slot already holds a
	// non-cancelled appointment. The caller picks another slot; the
	// booking is never retried automatically.
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrCannotCancel means the appointment is already past, completed,
	// or cancelled.
	ErrCannotCancel = errors.New("appointment can no longer be cancelled")

	ErrCannotComplete = errors.New("appointment cannot be completed")
)

type Service struct {
	appointments repository.AppointmentRepository
	patients     repository.PatientRepository
	providers    repository.ProviderRepository
	locker       lock.Locker
	clock        clock.Clock
}

func NewService(
	appointments repository.AppointmentRepository,
	patients repository.PatientRepository,
	providers repository.ProviderRepository,
	locker lock.Locker,
	clk clock.Clock,
) *Service {
	return &Service{
		appointments: appointments,
		patients:     patients,
		providers:    providers,
		locker:       locker,
		clock:        clk,
	}
}

// IsSlotAvailable reports whether a new appointment may be created at
// the given (provider, date, slot). Cancelled appointments do not block
// the slot; they are kept for history and a re-booking creates a fresh
// record.
func (s *Service) IsSlotAvailable(ctx context.Context, providerID uuid.UUID, date time.Time, slot string) (bool, error) {
	appointments, err := s.appointments.ListByDate(ctx, providerID, dateOnly(date))
	if err != nil {
		return false, fmt.Errorf("failed to list appointments: %w", err)
	}
	for _, apt := range appointments {
		if apt.Slot == slot && apt.Status != model.AppointmentStatusCancelled {
			return false, nil
		}
	}
	return true, nil
}

// Book creates an appointment after checking availability. The check
// and the insert run inside a per-slot critical section so concurrent
// requests for the same slot cannot both pass the check; the store's
// uniqueness constraint is the backstop.
func (s *Service) Book(ctx context.Context, req *model.BookingRequest) (*model.Appointment, error) {
	if _, err := model.ParseSlot(req.Slot); err != nil {
		return nil, fmt.Errorf("invalid booking request: %w", err)
	}

	if _, err := s.patients.Get(ctx, req.PatientID); err != nil {
		if errors.Is(err, repository.ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	date := dateOnly(req.Date)
	key := slotKey(req.ProviderID, date, req.Slot)

	var created *model.Appointment
	err := s.locker.WithLock(ctx, key, func(ctx context.Context) error {
		available, err := s.IsSlotAvailable(ctx, req.ProviderID, date, req.Slot)
		if err != nil {
			return err
		}
		if !available {
			return ErrSlotUnavailable
		}

		now := s.clock.Now()
		apt := &model.Appointment{
			ID:         uuid.New(),
			ProviderID: req.ProviderID,
			PatientID:  req.PatientID,
			Date:       date,
			Slot:       req.Slot,
			Status:     model.AppointmentStatusScheduled,
			Value:      req.Value,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.appointments.Create(ctx, apt); err != nil {
			if errors.Is(err, repository.ErrSlotTaken) {
				return ErrSlotUnavailable
			}
			return fmt.Errorf("failed to create appointment: %w", err)
		}
		created = apt
		return nil
	})
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}
	return created, nil
}

// Cancel marks an appointment cancelled. Cancellation is terminal and
// only permitted while the appointment moment is still in the future.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get appointment: %w", err)
	}

	if !CanCancel(apt, s.clock.Now()) {
		return ErrCannotCancel
	}

	apt.Status = model.AppointmentStatusCancelled
	apt.UpdatedAt = s.clock.Now()
	if err := s.appointments.Update(ctx, apt); err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}
	return nil
}

// Complete records an explicit operator completion.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) error {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get appointment: %w", err)
	}

	if apt.Status != model.AppointmentStatusScheduled {
		return ErrCannotComplete
	}

	apt.Status = model.AppointmentStatusCompleted
	apt.UpdatedAt = s.clock.Now()
	if err := s.appointments.Update(ctx, apt); err != nil {
		return fmt.Errorf("failed to complete appointment: %w", err)
	}
	return nil
}

// Get returns a single appointment with its derived status attached.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.AppointmentView, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &model.AppointmentView{
		Appointment:     *apt,
		EffectiveStatus: EffectiveStatus(apt, s.clock.Now()),
	}, nil
}

// List returns a provider's appointments with derived statuses attached
// to each row. Display status is always computed here, never read from
// storage.
func (s *Service) List(ctx context.Context, providerID uuid.UUID, filters *model.AppointmentFilters) ([]*model.AppointmentView, error) {
	appointments, err := s.appointments.List(ctx, providerID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	now := s.clock.Now()
	views := make([]*model.AppointmentView, 0, len(appointments))
	for _, apt := range appointments {
		views = append(views, &model.AppointmentView{
			Appointment:     *apt,
			EffectiveStatus: EffectiveStatus(apt, now),
		})
	}
	return views, nil
}

func slotKey(providerID uuid.UUID, date time.Time, slot string) string {
	return fmt.Sprintf("%s:%s:%s", providerID, date.Format("2006-01-02"), slot)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
