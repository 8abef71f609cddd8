package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meditrack/clinic-api/internal/clock"
	"github.com/meditrack/clinic-api/internal/lock"
	"github.com/meditrack/clinic-api/internal/model"
	"github.com/meditrack/clinic-api/internal/repository/memory"
	"github.com/meditrack/clinic-api/internal/service/scheduling"
	"github.com/meditrack/clinic-api/pkg/logger"
)

type testEnv struct {
	store      *memory.Store
	clock      *clock.Fake
	billing    *Service
	scheduling *scheduling.Service
	provider   model.Provider
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()

	store := memory.NewStore()
	clk := clock.NewFake(now)
	log := logger.NewLogger(nil)

	provider := model.Provider{
		ID:           uuid.New(),
		Name:         "Dr. Souza",
		DefaultPrice: 150,
		SlotMinutes:  60,
		WorkStart:    "08:00",
		WorkEnd:      "18:00",
	}
	store.SeedProvider(provider)

	return &testEnv{
		store: store,
		clock: clk,
		billing: NewService(
			store.Appointments(), store.Payments(), store.Patients(), store.Providers(), clk, log,
		),
		scheduling: scheduling.NewService(
			store.Appointments(), store.Patients(), store.Providers(), lock.NewLocal(), clk,
		),
		provider: provider,
	}
}

func (env *testEnv) seedPatient(t *testing.T, name string, override *float64) model.Patient {
	t.Helper()
	p := model.Patient{
		ID:            uuid.New(),
		ProviderID:    env.provider.ID,
		Name:          name,
		OverridePrice: override,
		Status:        model.PatientStatusActive,
	}
	env.store.SeedPatient(p)
	return p
}

func (env *testEnv) book(t *testing.T, patientID uuid.UUID, day time.Time, slot string, value *float64) *model.Appointment {
	t.Helper()
	apt, err := env.scheduling.Book(context.Background(), &model.BookingRequest{
		ProviderID: env.provider.ID,
		PatientID:  patientID,
		Date:       day,
		Slot:       slot,
		Value:      value,
	})
	require.NoError(t, err)
	return apt
}

func floatPtr(v float64) *float64 { return &v }

func TestReconcileIsIdempotent(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(t, day.Add(-24*time.Hour))
	patient := env.seedPatient(t, "Ana Lima", nil)

	env.book(t, patient.ID, day, "10:00", nil)
	env.book(t, patient.ID, day, "11:00", nil)

	// Both appointments have passed.
	env.clock.Set(day.Add(48 * time.Hour))

	created, err := env.billing.Reconcile(context.Background(), env.provider.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = env.billing.Reconcile(context.Background(), env.provider.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, created, "second pass writes nothing")

	payments, err := env.store.Payments().List(context.Background(), env.provider.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestReconcileSkipsFutureAndCancelled(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(t, day.Add(-24*time.Hour))
	patient := env.seedPatient(t, "Ana Lima", nil)

	past := env.book(t, patient.ID, day, "10:00", nil)
	cancelled := env.book(t, patient.ID, day, "11:00", nil)
	require.NoError(t, env.scheduling.Cancel(context.Background(), cancelled.ID))
	env.book(t, patient.ID, day.Add(30*24*time.Hour), "10:00", nil) // far future

	env.clock.Set(day.Add(24 * time.Hour))

	created, err := env.billing.Reconcile(context.Background(), env.provider.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, created, "only the past non-cancelled appointment is billed")

	payments, err := env.store.Payments().List(context.Background(), env.provider.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, past.ID, *payments[0].AppointmentID)
	assert.Equal(t, model.PaymentStatusPending, payments[0].Status)
	assert.Equal(t, model.DefaultPaymentMethod, payments[0].Method)
	assert.True(t, payments[0].Date.Equal(day))
}

func TestReconcileValuePriority(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(t, day.Add(-24*time.Hour))

	withOverride := env.seedPatient(t, "Ana Lima", floatPtr(120))
	noOverride := env.seedPatient(t, "Bruno Dias", nil)

	stored := env.book(t, withOverride.ID, day, "09:00", floatPtr(99))
	overridden := env.book(t, withOverride.ID, day, "10:00", nil)
	defaulted := env.book(t, noOverride.ID, day, "11:00", nil)

	env.clock.Set(day.Add(24 * time.Hour))
	created, err := env.billing.Reconcile(context.Background(), env.provider.ID)
	require.NoError(t, err)
	require.Equal(t, 3, created)

	payments, err := env.store.Payments().List(context.Background(), env.provider.ID)
	require.NoError(t, err)

	values := make(map[uuid.UUID]float64, len(payments))
	for _, p := range payments {
		values[*p.AppointmentID] = p.Value
	}
	assert.Equal(t, 99.0, values[stored.ID], "stored appointment value wins")
	assert.Equal(t, 120.0, values[overridden.ID], "patient override is next")
	assert.Equal(t, 150.0, values[defaulted.ID], "provider default is the fallback")
}

func TestReconcilePartialFailure(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(t, day.Add(-24*time.Hour))
	patient := env.seedPatient(t, "Ana Lima", nil)

	broken := env.book(t, patient.ID, day, "10:00", nil)
	env.book(t, patient.ID, day, "11:00", nil)
	env.book(t, patient.ID, day, "12:00", nil)

	env.store.FailPaymentCreate[broken.ID] = errors.New("write failed")
	env.clock.Set(day.Add(24 * time.Hour))

	created, err := env.billing.Reconcile(context.Background(), env.provider.ID)
	require.NoError(t, err, "one bad record must not fail the pass")
	assert.Equal(t, 2, created)

	// Once the write succeeds again, the missed appointment is picked up.
	delete(env.store.FailPaymentCreate, broken.ID)
	created, err = env.billing.Reconcile(context.Background(), env.provider.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestReconcileMissingPatientFallsBackToDefault(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(t, day.Add(24*time.Hour))

	// Appointment referencing a patient that no longer exists; seeded
	// directly since booking validates the reference.
	ghost := uuid.New()
	now := env.clock.Now()
	apt := &model.Appointment{
		ID:         uuid.New(),
		ProviderID: env.provider.ID,
		PatientID:  ghost,
		Date:       day,
		Slot:       "10:00",
		Status:     model.AppointmentStatusScheduled,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, env.store.Appointments().Create(context.Background(), apt))

	created, err := env.billing.Reconcile(context.Background(), env.provider.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, created, "the item is still billed, not dropped")
}

// The end-to-end flow: booking conflicts, cancellation freeing the
// slot, and a reconciliation pass billing exactly the realized
// appointment at the right price.
func TestBookingCancelReconcileFlow(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(t, day.Add(8*time.Hour))

	patientA := env.seedPatient(t, "Ana Lima", nil)
	patientB := env.seedPatient(t, "Bruno Dias", floatPtr(200))

	aptA := env.book(t, patientA.ID, day, "10:00", nil)

	_, err := env.scheduling.Book(context.Background(), &model.BookingRequest{
		ProviderID: env.provider.ID,
		PatientID:  patientB.ID,
		Date:       day,
		Slot:       "10:00",
	})
	require.ErrorIs(t, err, scheduling.ErrSlotUnavailable)

	require.NoError(t, env.scheduling.Cancel(context.Background(), aptA.ID))

	aptB := env.book(t, patientB.ID, day, "10:00", nil)

	// Next day: reconcile.
	env.clock.Set(day.Add(24 * time.Hour))
	created, err := env.billing.Reconcile(context.Background(), env.provider.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	payments, err := env.store.Payments().List(context.Background(), env.provider.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, aptB.ID, *payments[0].AppointmentID)
	assert.Equal(t, 200.0, payments[0].Value, "patient B's override price")
	assert.Equal(t, model.PaymentStatusPending, payments[0].Status)

	created, err = env.billing.Reconcile(context.Background(), env.provider.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}
