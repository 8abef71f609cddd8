package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meditrack/clinic-api/internal/clock"
	"github.com/meditrack/clinic-api/internal/model"
	"github.com/meditrack/clinic-api/internal/repository/memory"
	"github.com/meditrack/clinic-api/pkg/logger"
)

const testTemplate = "Hello {patient}, this is a reminder of your appointment on {date} at {time}."

type testEnv struct {
	store    *memory.Store
	clock    *clock.Fake
	service  *Service
	provider model.Provider
	patient  model.Patient
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()

	store := memory.NewStore()
	clk := clock.NewFake(now)

	provider := model.Provider{
		ID:           uuid.New(),
		Name:         "Dr. Souza",
		DefaultPrice: 150,
		SlotMinutes:  60,
		WorkStart:    "08:00",
		WorkEnd:      "18:00",
	}
	store.SeedProvider(provider)

	patient := model.Patient{
		ID:         uuid.New(),
		ProviderID: provider.ID,
		Name:       "Ana Lima",
		Status:     model.PatientStatusActive,
	}
	store.SeedPatient(patient)

	return &testEnv{
		store:    store,
		clock:    clk,
		service:  NewService(store.Appointments(), store.Patients(), clk, logger.NewLogger(nil)),
		provider: provider,
		patient:  patient,
	}
}

func (env *testEnv) addAppointment(t *testing.T, patientID uuid.UUID, day time.Time, slot string) *model.Appointment {
	t.Helper()
	now := env.clock.Now()
	apt := &model.Appointment{
		ID:         uuid.New(),
		ProviderID: env.provider.ID,
		PatientID:  patientID,
		Date:       day,
		Slot:       slot,
		Status:     model.AppointmentStatusScheduled,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, env.store.Appointments().Create(context.Background(), apt))
	return apt
}

func TestWorklistOrderedByDispatchTime(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	env := newTestEnv(t, now)

	tomorrow := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	dayAfter := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)

	// Inserted out of dispatch order on purpose.
	late := env.addAppointment(t, env.patient.ID, tomorrow, "14:00")
	early := env.addAppointment(t, env.patient.ID, dayAfter, "09:00")
	first := env.addAppointment(t, env.patient.ID, tomorrow, "10:00")

	items, err := env.service.Worklist(context.Background(), env.provider.ID, testTemplate, 24)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, first.ID, items[0].Appointment.ID)
	assert.Equal(t, late.ID, items[1].Appointment.ID)
	assert.Equal(t, early.ID, items[2].Appointment.ID)

	// Dispatch time is the appointment moment minus the lead.
	assert.Equal(t, time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC), items[0].DispatchAt)
	assert.Equal(t, time.Date(2024, 6, 11, 9, 0, 0, 0, time.UTC), items[2].DispatchAt)
}

func TestWorklistStates(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	env := newTestEnv(t, now)

	tomorrow := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)

	due := env.addAppointment(t, env.patient.ID, tomorrow, "10:00")       // dispatch 10:00 today, passed
	scheduled := env.addAppointment(t, env.patient.ID, tomorrow, "16:00") // dispatch 16:00 today
	sent := env.addAppointment(t, env.patient.ID, tomorrow, "11:00")
	require.NoError(t, env.service.MarkSent(context.Background(), sent.ID))

	items, err := env.service.Worklist(context.Background(), env.provider.ID, testTemplate, 24)
	require.NoError(t, err)
	require.Len(t, items, 3)

	states := make(map[uuid.UUID]State, len(items))
	for _, item := range items {
		states[item.Appointment.ID] = item.State
	}
	assert.Equal(t, StateDue, states[due.ID])
	assert.Equal(t, StateScheduled, states[scheduled.ID])
	assert.Equal(t, StateSent, states[sent.ID], "sent wins even though the dispatch time has passed")
}

func TestWorklistDispatchBoundaryIsDue(t *testing.T) {
	now := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	env := newTestEnv(t, now)

	tomorrow := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	env.addAppointment(t, env.patient.ID, tomorrow, "10:00") // dispatch exactly now

	items, err := env.service.Worklist(context.Background(), env.provider.ID, testTemplate, 24)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, StateDue, items[0].State)
}

func TestWorklistSkipsCancelledAndPast(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	env := newTestEnv(t, now)

	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	tomorrow := today.Add(24 * time.Hour)

	env.addAppointment(t, env.patient.ID, today, "09:00") // already past
	cancelled := env.addAppointment(t, env.patient.ID, tomorrow, "10:00")
	cancelled.Status = model.AppointmentStatusCancelled
	require.NoError(t, env.store.Appointments().Update(context.Background(), cancelled))
	kept := env.addAppointment(t, env.patient.ID, tomorrow, "11:00")

	items, err := env.service.Worklist(context.Background(), env.provider.ID, testTemplate, 24)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, kept.ID, items[0].Appointment.ID)
}

func TestWorklistRendersTemplate(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	env := newTestEnv(t, now)

	tomorrow := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	env.addAppointment(t, env.patient.ID, tomorrow, "10:00")

	items, err := env.service.Worklist(context.Background(), env.provider.ID, testTemplate, 24)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "Ana Lima", items[0].PatientName)
	assert.Equal(t,
		"Hello Ana Lima, this is a reminder of your appointment on 11/06/2024 at 10:00.",
		items[0].Message)
}

func TestWorklistUnknownPatientKept(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	env := newTestEnv(t, now)

	tomorrow := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	env.addAppointment(t, uuid.New(), tomorrow, "10:00") // no such patient

	items, err := env.service.Worklist(context.Background(), env.provider.ID, testTemplate, 24)
	require.NoError(t, err)
	require.Len(t, items, 1, "unresolvable patient never drops the item")

	assert.Equal(t, UnknownPatientName, items[0].PatientName)
	assert.Contains(t, items[0].Message, UnknownPatientName)
}

func TestMarkSentIsIdempotent(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	env := newTestEnv(t, now)

	tomorrow := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	apt := env.addAppointment(t, env.patient.ID, tomorrow, "10:00")

	require.NoError(t, env.service.MarkSent(context.Background(), apt.ID))

	got, err := env.store.Appointments().Get(context.Background(), apt.ID)
	require.NoError(t, err)
	require.True(t, got.ReminderSent)
	require.NotNil(t, got.ReminderSentAt)
	firstSentAt := *got.ReminderSentAt

	env.clock.Advance(time.Hour)
	require.NoError(t, env.service.MarkSent(context.Background(), apt.ID))

	got, err = env.store.Appointments().Get(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.True(t, got.ReminderSent)
	assert.Equal(t, firstSentAt, *got.ReminderSentAt, "re-marking keeps the original timestamp")
}

func TestRenderUnknownPlaceholdersPassThrough(t *testing.T) {
	got := Render("{patient} {when} {time}", "Ana", time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC), "10:00")
	assert.Equal(t, "Ana {when} 10:00", got)
}
