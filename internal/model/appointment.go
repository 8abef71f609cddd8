package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Appointment occupies exactly one named slot on a provider's day. The
// stored status stays "scheduled" for most appointments forever; the
// displayed status is derived from the clock at read time.
type Appointment struct {
	ID             uuid.UUID         `db:"id" json:"id"`
	ProviderID     uuid.UUID         `db:"provider_id" json:"provider_id"`
	PatientID      uuid.UUID         `db:"patient_id" json:"patient_id"`
	Date           time.Time         `db:"date" json:"date"`
	Slot           string            `db:"slot" json:"slot"`
	Status         AppointmentStatus `db:"status" json:"status"`
	Value          *float64          `db:"value" json:"value,omitempty"`
	ReminderSent   bool              `db:"reminder_sent" json:"reminder_sent"`
	ReminderSentAt *time.Time        `db:"reminder_sent_at" json:"reminder_sent_at,omitempty"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updated_at"`
}

// Moment is the absolute instant the appointment takes place, composed
// from the calendar date and the slot time. Slots are validated on the
// way in; a malformed slot resolves to midnight.
func (a *Appointment) Moment() time.Time {
	offset, err := ParseSlot(a.Slot)
	if err != nil {
		return a.Date
	}
	return a.Date.Add(offset)
}

// ParseSlot converts an "HH:MM" slot label into an offset from midnight.
func ParseSlot(slot string) (time.Duration, error) {
	var h, m int
	if _, err := fmt.Sscanf(slot, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid slot %q: %w", slot, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid slot %q: out of range", slot)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

// FormatSlot renders an offset from midnight back into an "HH:MM" label.
func FormatSlot(offset time.Duration) string {
	h := int(offset / time.Hour)
	m := int(offset % time.Hour / time.Minute)
	return fmt.Sprintf("%02d:%02d", h, m)
}

type BookingRequest struct {
	ProviderID uuid.UUID `json:"provider_id" binding:"required"`
	PatientID  uuid.UUID `json:"patient_id" binding:"required"`
	Date       time.Time `json:"date" binding:"required"`
	Slot       string    `json:"slot" binding:"required,slot"`
	Value      *float64  `json:"value" binding:"omitempty,gte=0"`
}

type AppointmentFilters struct {
	PatientID uuid.UUID
	Status    AppointmentStatus
	StartDate time.Time
	EndDate   time.Time
}

// AppointmentView is an appointment plus its clock-derived status, the
// shape handed to the API layer.
type AppointmentView struct {
	Appointment
	EffectiveStatus AppointmentStatus `json:"effective_status"`
}
