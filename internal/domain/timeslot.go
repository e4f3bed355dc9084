package domain

import "time"

// TimeSlot represents a canonical 30-minute booking unit. A slot is unique
// per (start,end) pair and immutable once referenced by a pricing rule or a
// booking. Slots are created on demand by the pricing range engine.
type TimeSlot struct {
	ID        string    `json:"id"`
	StartTime TimeOfDay `json:"start_time"`
	EndTime   TimeOfDay `json:"end_time"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Interval returns the slot's (start,end) pair.
func (s *TimeSlot) Interval() SlotInterval {
	return SlotInterval{Start: s.StartTime, End: s.EndTime}
}
