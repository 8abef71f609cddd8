package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/meditrack/clinic-api/internal/model"
)

func makeAppointment(status model.AppointmentStatus, date time.Time, slot string) *model.Appointment {
	return &model.Appointment{
		ID:         uuid.New(),
		ProviderID: uuid.New(),
		PatientID:  uuid.New(),
		Date:       date,
		Slot:       slot,
		Status:     status,
	}
}

func TestEffectiveStatus(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	moment := day.Add(10 * time.Hour)

	tests := []struct {
		name   string
		stored model.AppointmentStatus
		now    time.Time
		want   model.AppointmentStatus
	}{
		{"cancelled stays cancelled in the past", model.AppointmentStatusCancelled, moment.Add(48 * time.Hour), model.AppointmentStatusCancelled},
		{"cancelled stays cancelled in the future", model.AppointmentStatusCancelled, moment.Add(-48 * time.Hour), model.AppointmentStatusCancelled},
		{"explicit completion wins before the moment", model.AppointmentStatusCompleted, moment.Add(-time.Hour), model.AppointmentStatusCompleted},
		{"scheduled before the moment", model.AppointmentStatusScheduled, moment.Add(-time.Minute), model.AppointmentStatusScheduled},
		{"scheduled rolls into completed at the moment", model.AppointmentStatusScheduled, moment, model.AppointmentStatusCompleted},
		{"scheduled rolls into completed after the moment", model.AppointmentStatusScheduled, moment.Add(time.Minute), model.AppointmentStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apt := makeAppointment(tt.stored, day, "10:00")
			assert.Equal(t, tt.want, EffectiveStatus(apt, tt.now))
		})
	}
}

func TestEffectiveStatusIsPure(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	apt := makeAppointment(model.AppointmentStatusScheduled, day, "10:00")
	now := day.Add(12 * time.Hour)

	first := EffectiveStatus(apt, now)
	second := EffectiveStatus(apt, now)

	assert.Equal(t, first, second)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status, "resolver must not mutate the stored status")
}

func TestCanCancelCutoff(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	apt := makeAppointment(model.AppointmentStatusScheduled, day, "10:00")
	moment := apt.Moment()

	assert.True(t, CanCancel(apt, moment.Add(-30*24*time.Hour)))
	assert.True(t, CanCancel(apt, moment.Add(-time.Second)))
	assert.False(t, CanCancel(apt, moment))
	assert.False(t, CanCancel(apt, moment.Add(time.Second)))
	assert.False(t, CanCancel(apt, moment.Add(365*24*time.Hour)))
}

func TestCanCancelTerminalStates(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	before := day.Add(9 * time.Hour)

	cancelled := makeAppointment(model.AppointmentStatusCancelled, day, "10:00")
	assert.False(t, CanCancel(cancelled, before))

	completed := makeAppointment(model.AppointmentStatusCompleted, day, "10:00")
	assert.False(t, CanCancel(completed, before))
}
