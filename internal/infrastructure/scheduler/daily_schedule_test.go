package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailySchedule_NextSameDay(t *testing.T) {
	s, err := NewDailySchedule(18, 30)
	require.NoError(t, err)

	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	next := s.Next(now)

	assert.Equal(t, time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC), next)
}

func TestDailySchedule_NextRollsToTomorrow(t *testing.T) {
	s, err := NewDailySchedule(8, 0)
	require.NoError(t, err)

	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	next := s.Next(now)

	assert.Equal(t, time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC), next)
}

func TestDailySchedule_NextExactlyBeforeFiringTime(t *testing.T) {
	s, err := NewDailySchedule(23, 59)
	require.NoError(t, err)

	now := time.Date(2024, 12, 31, 23, 58, 59, 0, time.UTC)
	next := s.Next(now)

	assert.Equal(t, time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC), next)
}

func TestParseDailySchedule(t *testing.T) {
	tests := []struct {
		input   string
		hour    int
		minute  int
		wantErr bool
	}{
		{input: "18:30", hour: 18, minute: 30},
		{input: "00:00", hour: 0, minute: 0},
		{input: "9:05", hour: 9, minute: 5},
		{input: "24:00", wantErr: true},
		{input: "12:60", wantErr: true},
		{input: "noon", wantErr: true},
		{input: "12", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s, err := ParseDailySchedule(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hour, s.Hour)
			assert.Equal(t, tt.minute, s.Minute)
		})
	}
}

func TestDailySchedule_String(t *testing.T) {
	s, err := NewDailySchedule(7, 5)
	require.NoError(t, err)
	assert.Equal(t, "daily at 07:05", s.String())
}
