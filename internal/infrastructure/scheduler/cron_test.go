package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCronExpression(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{input: "0 21 * * *"},
		{input: "*/5 * * * *"},
		{input: "0 9-17 * * 1-5"},
		{input: "0,30 * * * *"},
		{input: "0 21 * *", wantErr: true},
		{input: "61 * * * *", wantErr: true},
		{input: "a * * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseCronExpression(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCronExpression_NextDaily(t *testing.T) {
	ce, err := ParseCronExpression("0 21 * * *")
	require.NoError(t, err)

	now := time.Date(2024, 3, 10, 9, 15, 0, 0, time.UTC)
	next := ce.Next(now)

	assert.Equal(t, time.Date(2024, 3, 10, 21, 0, 0, 0, time.UTC), next)
}

func TestCronExpression_NextRollsToTomorrow(t *testing.T) {
	ce, err := ParseCronExpression("0 8 * * *")
	require.NoError(t, err)

	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	next := ce.Next(now)

	assert.Equal(t, time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC), next)
}

func TestCronExpression_NextEveryFiveMinutes(t *testing.T) {
	ce, err := ParseCronExpression("*/5 * * * *")
	require.NoError(t, err)

	now := time.Date(2024, 3, 10, 9, 3, 30, 0, time.UTC)
	next := ce.Next(now)

	assert.Equal(t, time.Date(2024, 3, 10, 9, 5, 0, 0, time.UTC), next)
}

func TestCronExpression_NextWeekday(t *testing.T) {
	// March 10, 2024 is a Sunday.
	ce, err := ParseCronExpression("0 0 * * 1")
	require.NoError(t, err)

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	next := ce.Next(now)

	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), next)
	assert.Equal(t, time.Monday, next.Weekday())
}

func TestCronExpression_String(t *testing.T) {
	ce, err := ParseCronExpression("0 21 * * *")
	require.NoError(t, err)
	assert.Equal(t, "0 21 * * *", ce.String())
}
