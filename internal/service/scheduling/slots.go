package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meditrack/clinic-api/internal/model"
)

// OpenSlots returns the slot labels still bookable for a provider on a
// date: the working-hours window divided into fixed-duration slots,
// minus occupied slots, minus slots whose moment has already passed.
func (s *Service) OpenSlots(ctx context.Context, providerID uuid.UUID, date time.Time) ([]string, error) {
	provider, err := s.providers.Get(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}

	workStart, err := model.ParseSlot(provider.WorkStart)
	if err != nil {
		return nil, fmt.Errorf("invalid working hours: %w", err)
	}
	workEnd, err := model.ParseSlot(provider.WorkEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid working hours: %w", err)
	}
	step := time.Duration(provider.SlotMinutes) * time.Minute
	if step <= 0 || !(workStart < workEnd) {
		return nil, fmt.Errorf("provider %s has no bookable window", providerID)
	}

	day := dateOnly(date)
	appointments, err := s.appointments.ListByDate(ctx, providerID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	taken := make(map[string]bool, len(appointments))
	for _, apt := range appointments {
		if apt.Status != model.AppointmentStatusCancelled {
			taken[apt.Slot] = true
		}
	}

	now := s.clock.Now()
	var open []string
	for offset := workStart; offset < workEnd; offset += step {
		slot := model.FormatSlot(offset)
		if taken[slot] {
			continue
		}
		if !day.Add(offset).After(now) {
			continue
		}
		open = append(open, slot)
	}
	return open, nil
}
