package scheduling

import (
	"time"

	"github.com/meditrack/clinic-api/internal/model"
)

// EffectiveStatus derives the status an appointment should display at a
// given instant. Stored cancellations and explicit completions win;
// otherwise any appointment whose moment has passed counts as completed
// even though nothing was ever written back. There is no no-show state:
// a past, non-cancelled appointment is treated as having occurred.
//
// The resolver is a pure function and never persists what it derives.
func EffectiveStatus(apt *model.Appointment, now time.Time) model.AppointmentStatus {
	switch apt.Status {
	case model.AppointmentStatusCancelled:
		return model.AppointmentStatusCancelled
	case model.AppointmentStatusCompleted:
		return model.AppointmentStatusCompleted
	}
	if !apt.Moment().After(now) {
		return model.AppointmentStatusCompleted
	}
	return model.AppointmentStatusScheduled
}

// CanCancel reports whether an appointment may still be cancelled:
// only while it is stored as scheduled and its moment is in the future.
// An appointment the clock has rolled into completed can no longer be
// cancelled, even though no one explicitly marked it so.
func CanCancel(apt *model.Appointment, now time.Time) bool {
	return apt.Status == model.AppointmentStatusScheduled && apt.Moment().After(now)
}
