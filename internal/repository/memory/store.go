// Package memory holds an in-memory implementation of the repository
// interfaces, used by the service tests and as a scratch store for
// local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meditrack/clinic-api/internal/model"
	"github.com/meditrack/clinic-api/internal/repository"
)

type Store struct {
	mu sync.RWMutex

	appointments map[uuid.UUID]model.Appointment
	payments     map[uuid.UUID]model.Payment
	patients     map[uuid.UUID]model.Patient
	providers    map[uuid.UUID]model.Provider

	// FailPaymentCreate, when set, makes payment writes for the given
	// appointment IDs fail. Lets tests exercise partial reconciliation.
	FailPaymentCreate map[uuid.UUID]error
}

func NewStore() *Store {
	return &Store{
		appointments:      make(map[uuid.UUID]model.Appointment),
		payments:          make(map[uuid.UUID]model.Payment),
		patients:          make(map[uuid.UUID]model.Patient),
		providers:         make(map[uuid.UUID]model.Provider),
		FailPaymentCreate: make(map[uuid.UUID]error),
	}
}

func (s *Store) SeedPatient(p model.Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients[p.ID] = p
}

func (s *Store) SeedProvider(p model.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers[p.ID] = p
}

// Appointments

func (s *Store) Create(_ context.Context, apt *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.appointments {
		if existing.ProviderID == apt.ProviderID &&
			existing.Date.Equal(apt.Date) &&
			existing.Slot == apt.Slot &&
			existing.Status != model.AppointmentStatusCancelled {
			return repository.ErrSlotTaken
		}
	}
	s.appointments[apt.ID] = *apt
	return nil
}

func (s *Store) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	apt, ok := s.appointments[id]
	if !ok {
		return nil, repository.ErrAppointmentNotFound
	}
	return &apt, nil
}

func (s *Store) Update(_ context.Context, apt *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[apt.ID]; !ok {
		return repository.ErrAppointmentNotFound
	}
	s.appointments[apt.ID] = *apt
	return nil
}

func (s *Store) List(_ context.Context, providerID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Appointment
	for _, apt := range s.appointments {
		if apt.ProviderID != providerID {
			continue
		}
		if filters != nil {
			if filters.PatientID != uuid.Nil && apt.PatientID != filters.PatientID {
				continue
			}
			if filters.Status != "" && apt.Status != filters.Status {
				continue
			}
			if !filters.StartDate.IsZero() && apt.Date.Before(filters.StartDate) {
				continue
			}
			if !filters.EndDate.IsZero() && apt.Date.After(filters.EndDate) {
				continue
			}
		}
		apt := apt
		out = append(out, &apt)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Slot < out[j].Slot
	})
	return out, nil
}

func (s *Store) ListByDate(_ context.Context, providerID uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Appointment
	for _, apt := range s.appointments {
		if apt.ProviderID == providerID && apt.Date.Equal(date) {
			apt := apt
			out = append(out, &apt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

func (s *Store) MarkReminderSent(_ context.Context, id uuid.UUID, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	apt, ok := s.appointments[id]
	if !ok {
		return repository.ErrAppointmentNotFound
	}
	if !apt.ReminderSent {
		apt.ReminderSent = true
		apt.ReminderSentAt = &sentAt
	}
	apt.UpdatedAt = sentAt
	s.appointments[id] = apt
	return nil
}

// Payments

func (s *Store) CreatePayment(_ context.Context, payment *model.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if payment.AppointmentID != nil {
		if err, ok := s.FailPaymentCreate[*payment.AppointmentID]; ok {
			return err
		}
		for _, existing := range s.payments {
			if existing.AppointmentID != nil && *existing.AppointmentID == *payment.AppointmentID {
				return repository.ErrDuplicatePayment
			}
		}
	}
	s.payments[payment.ID] = *payment
	return nil
}

func (s *Store) ListPayments(_ context.Context, providerID uuid.UUID) ([]*model.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Payment
	for _, p := range s.payments {
		patient, ok := s.patients[p.PatientID]
		if !ok || patient.ProviderID != providerID {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// Patients / Providers

func (s *Store) GetPatient(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	if !ok {
		return nil, repository.ErrPatientNotFound
	}
	return &p, nil
}

func (s *Store) GetProvider(_ context.Context, id uuid.UUID) (*model.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.providers[id]
	if !ok {
		return nil, repository.ErrProviderNotFound
	}
	return &p, nil
}

func (s *Store) ListProviders(_ context.Context) ([]*model.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Provider
	for _, p := range s.providers {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Typed views so the store satisfies the repository interfaces without
// method name clashes.

func (s *Store) Appointments() repository.AppointmentRepository { return (*appointmentView)(s) }
func (s *Store) Payments() repository.PaymentRepository         { return (*paymentView)(s) }
func (s *Store) Patients() repository.PatientRepository         { return (*patientView)(s) }
func (s *Store) Providers() repository.ProviderRepository       { return (*providerView)(s) }

type appointmentView Store

func (v *appointmentView) Create(ctx context.Context, apt *model.Appointment) error {
	return (*Store)(v).Create(ctx, apt)
}
func (v *appointmentView) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return (*Store)(v).Get(ctx, id)
}
func (v *appointmentView) Update(ctx context.Context, apt *model.Appointment) error {
	return (*Store)(v).Update(ctx, apt)
}
func (v *appointmentView) List(ctx context.Context, providerID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return (*Store)(v).List(ctx, providerID, filters)
}
func (v *appointmentView) ListByDate(ctx context.Context, providerID uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	return (*Store)(v).ListByDate(ctx, providerID, date)
}
func (v *appointmentView) MarkReminderSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	return (*Store)(v).MarkReminderSent(ctx, id, sentAt)
}

type paymentView Store

func (v *paymentView) Create(ctx context.Context, payment *model.Payment) error {
	return (*Store)(v).CreatePayment(ctx, payment)
}
func (v *paymentView) List(ctx context.Context, providerID uuid.UUID) ([]*model.Payment, error) {
	return (*Store)(v).ListPayments(ctx, providerID)
}

type patientView Store

func (v *patientView) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return (*Store)(v).GetPatient(ctx, id)
}

type providerView Store

func (v *providerView) Get(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	return (*Store)(v).GetProvider(ctx, id)
}
func (v *providerView) List(ctx context.Context) ([]*model.Provider, error) {
	return (*Store)(v).ListProviders(ctx)
}
