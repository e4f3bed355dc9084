package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SlotDurationMinutes is the fixed booking granularity.
const SlotDurationMinutes = 30

// TimeOfDay represents a wall-clock time within a day as minutes since
// midnight. No timezone is attached; values are stored and compared exactly
// as provided.
type TimeOfDay int

// NewTimeOfDay creates a TimeOfDay from an hour and minute.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %02d:%02d", ErrInvalidTimeOfDay, hour, minute)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// MustTimeOfDay creates a TimeOfDay and panics on invalid input. Intended for
// constants and tests.
func MustTimeOfDay(hour, minute int) TimeOfDay {
	t, err := NewTimeOfDay(hour, minute)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTimeOfDay parses a "HH:mm" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return NewTimeOfDay(hour, minute)
}

// TimeOfDayFromClock extracts the time-of-day component of a time.Time.
func TimeOfDayFromClock(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// Hour returns the hour component (0-23).
func (t TimeOfDay) Hour() int {
	return int(t) / 60
}

// Minute returns the minute component (0-59).
func (t TimeOfDay) Minute() int {
	return int(t) % 60
}

// Minutes returns the total minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return int(t)
}

// AddMinutes returns the time-of-day n minutes later.
func (t TimeOfDay) AddMinutes(n int) TimeOfDay {
	return t + TimeOfDay(n)
}

// Before reports whether t is strictly earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t < other
}

// String formats the time as "HH:mm".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// MarshalJSON encodes the time as a "HH:mm" string.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

// UnmarshalJSON decodes a "HH:mm" string.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimeOfDay, data)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// SlotInterval is a (start,end) pair produced by expanding a pricing range.
type SlotInterval struct {
	Start TimeOfDay
	End   TimeOfDay
}

// String formats the interval as "HH:mm-HH:mm".
func (s SlotInterval) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// ExpandRange validates a pricing range and walks it in fixed 30-minute
// steps, returning the ordered sub-intervals it covers.
func ExpandRange(start, end TimeOfDay) ([]SlotInterval, error) {
	if start.Minute()%SlotDurationMinutes != 0 || end.Minute()%SlotDurationMinutes != 0 {
		return nil, fmt.Errorf("%w: minutes must be aligned to %d-minute boundaries", ErrInvalidRange, SlotDurationMinutes)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start time %s must be before end time %s", ErrInvalidRange, start, end)
	}
	span := end.Minutes() - start.Minutes()
	if span%SlotDurationMinutes != 0 {
		return nil, fmt.Errorf("%w: duration must be divisible by %d minutes", ErrInvalidRange, SlotDurationMinutes)
	}

	intervals := make([]SlotInterval, 0, span/SlotDurationMinutes)
	for cur := start; cur.Before(end); cur = cur.AddMinutes(SlotDurationMinutes) {
		intervals = append(intervals, SlotInterval{Start: cur, End: cur.AddMinutes(SlotDurationMinutes)})
	}
	return intervals, nil
}
