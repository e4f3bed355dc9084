package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DayOfWeek is an ordinal day index, 0 = Sunday through 6 = Saturday.
type DayOfWeek int

// Day ordinals
const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// dayOfWeekIndex maps time.Weekday values to their ordinal day index.
var dayOfWeekIndex = [7]DayOfWeek{
	time.Sunday:    Sunday,
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
}

// DayOfWeekOf returns the ordinal day index for a calendar date.
func DayOfWeekOf(date time.Time) DayOfWeek {
	return dayOfWeekIndex[date.Weekday()]
}

// IsValid reports whether the day ordinal is within 0..6.
func (d DayOfWeek) IsValid() bool {
	return d >= Sunday && d <= Saturday
}

// Validate returns an error if the day ordinal is out of range.
func (d DayOfWeek) Validate() error {
	if !d.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidDayOfWeek, d)
	}
	return nil
}

// Pricing assigns a price to a (field, time slot, day of week) triple. Each
// row also records the bounds of the admin range that produced it, so a whole
// range can be updated or soft-deleted as one unit. At most one active row
// may exist per (field, slot, day) key.
type Pricing struct {
	ID         string          `json:"id"`
	FieldID    string          `json:"field_id"`
	TimeSlotID string          `json:"time_slot_id"`
	DayOfWeek  DayOfWeek       `json:"day_of_week"`
	Price      decimal.Decimal `json:"price"`
	RangeStart TimeOfDay       `json:"range_start"`
	RangeEnd   TimeOfDay       `json:"range_end"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
