package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{name: "midnight", input: "00:00", want: MustTimeOfDay(0, 0)},
		{name: "morning", input: "09:30", want: MustTimeOfDay(9, 30)},
		{name: "last minute", input: "23:59", want: MustTimeOfDay(23, 59)},
		{name: "missing colon", input: "0930", wantErr: true},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minute out of range", input: "09:60", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeOfDay)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "09:00", MustTimeOfDay(9, 0).String())
	assert.Equal(t, "00:05", MustTimeOfDay(0, 5).String())
	assert.Equal(t, "23:30", MustTimeOfDay(23, 30).String())
}

func TestTimeOfDayJSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(MustTimeOfDay(17, 30))
	require.NoError(t, err)
	assert.Equal(t, `"17:30"`, string(raw))

	var parsed TimeOfDay
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Equal(t, MustTimeOfDay(17, 30), parsed)
}

func TestTimeOfDayFromClock(t *testing.T) {
	now := time.Date(2026, 3, 2, 14, 45, 59, 0, time.UTC)
	assert.Equal(t, MustTimeOfDay(14, 45), TimeOfDayFromClock(now))
}

func TestExpandRange(t *testing.T) {
	tests := []struct {
		name      string
		start     TimeOfDay
		end       TimeOfDay
		wantCount int
		wantErr   bool
	}{
		{name: "single slot", start: MustTimeOfDay(9, 0), end: MustTimeOfDay(9, 30), wantCount: 1},
		{name: "one hour", start: MustTimeOfDay(9, 0), end: MustTimeOfDay(10, 0), wantCount: 2},
		{name: "three hours", start: MustTimeOfDay(17, 0), end: MustTimeOfDay(20, 0), wantCount: 6},
		{name: "half aligned", start: MustTimeOfDay(9, 30), end: MustTimeOfDay(11, 0), wantCount: 3},
		{name: "start after end", start: MustTimeOfDay(10, 0), end: MustTimeOfDay(9, 0), wantErr: true},
		{name: "start equals end", start: MustTimeOfDay(9, 0), end: MustTimeOfDay(9, 0), wantErr: true},
		{name: "unaligned start", start: MustTimeOfDay(9, 15), end: MustTimeOfDay(10, 15), wantErr: true},
		{name: "unaligned end", start: MustTimeOfDay(9, 0), end: MustTimeOfDay(9, 45), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intervals, err := ExpandRange(tt.start, tt.end)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRange)
				return
			}
			require.NoError(t, err)
			require.Len(t, intervals, tt.wantCount)

			// Intervals tile the range without gaps
			assert.Equal(t, tt.start, intervals[0].Start)
			assert.Equal(t, tt.end, intervals[len(intervals)-1].End)
			for i, interval := range intervals {
				assert.Equal(t, SlotDurationMinutes, interval.End.Minutes()-interval.Start.Minutes())
				if i > 0 {
					assert.Equal(t, intervals[i-1].End, interval.Start)
				}
			}
		})
	}
}

func TestSlotIntervalString(t *testing.T) {
	interval := SlotInterval{Start: MustTimeOfDay(9, 0), End: MustTimeOfDay(9, 30)}
	assert.Equal(t, "09:00-09:30", interval.String())
}
