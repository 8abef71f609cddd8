package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlot(t *testing.T) {
	tests := []struct {
		slot    string
		want    time.Duration
		wantErr bool
	}{
		{slot: "00:00", want: 0},
		{slot: "08:30", want: 8*time.Hour + 30*time.Minute},
		{slot: "23:59", want: 23*time.Hour + 59*time.Minute},
		{slot: "9:00", want: 9 * time.Hour},
		{slot: "24:00", wantErr: true},
		{slot: "10:60", wantErr: true},
		{slot: "", wantErr: true},
		{slot: "morning", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.slot, func(t *testing.T) {
			got, err := ParseSlot(tt.slot)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatSlotRoundTrip(t *testing.T) {
	for _, slot := range []string{"00:00", "08:00", "09:30", "14:00", "23:59"} {
		offset, err := ParseSlot(slot)
		require.NoError(t, err)
		assert.Equal(t, slot, FormatSlot(offset))
	}
}

func TestMoment(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	apt := Appointment{Date: day, Slot: "10:30"}
	assert.Equal(t, time.Date(2024, 6, 10, 10, 30, 0, 0, time.UTC), apt.Moment())

	// A malformed slot falls back to midnight rather than panicking.
	bad := Appointment{Date: day, Slot: "bogus"}
	assert.Equal(t, day, bad.Moment())
}
