package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DailySchedule runs a job once per day at a fixed wall-clock time.
type DailySchedule struct {
	Hour   int
	Minute int
}

// NewDailySchedule creates a DailySchedule for the given hour and minute.
func NewDailySchedule(hour, minute int) (*DailySchedule, error) {
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("daily schedule: hour %d out of range", hour)
	}
	if minute < 0 || minute > 59 {
		return nil, fmt.Errorf("daily schedule: minute %d out of range", minute)
	}
	return &DailySchedule{Hour: hour, Minute: minute}, nil
}

// ParseDailySchedule parses a "HH:MM" string.
func ParseDailySchedule(s string) (*DailySchedule, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("daily schedule: invalid time %q, expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("daily schedule: invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("daily schedule: invalid minute in %q", s)
	}
	return NewDailySchedule(hour, minute)
}

// Next implements Schedule. The next occurrence is computed in t's location.
func (d *DailySchedule) Next(t time.Time) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), d.Hour, d.Minute, 0, 0, t.Location())
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// String implements Schedule.
func (d *DailySchedule) String() string {
	return fmt.Sprintf("daily at %02d:%02d", d.Hour, d.Minute)
}
