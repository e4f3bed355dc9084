package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

// Booking statuses. Cancelled and Completed are terminal.
const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// IsValid checks if the booking status is valid
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is accepted from s.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

// String returns the string representation of the status
func (s BookingStatus) String() string {
	return string(s)
}

// blockingStatuses are the statuses under which a booking holds its slots
// against other bookings for the same field and date.
var blockingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCompleted,
}

// BlockingStatuses returns the statuses that make a slot unavailable.
func BlockingStatuses() []BookingStatus {
	return blockingStatuses
}

// Booking represents a reservation of one or more time slots on a field for
// a calendar date. Bookings are never physically deleted.
type Booking struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	FieldID     string          `json:"field_id"`
	BookingDate time.Time       `json:"booking_date"`
	Status      BookingStatus   `json:"status"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	PaymentID   *string         `json:"payment_id,omitempty"`
	TimeSlotIDs []string        `json:"time_slot_ids,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsPending checks if the booking is awaiting payment
func (b *Booking) IsPending() bool {
	return b.Status == BookingStatusPending
}

// CanCancel reports whether the booking may transition to cancelled.
func (b *Booking) CanCancel() bool {
	return b.Status != BookingStatusCancelled
}

// CanComplete reports whether a payment may complete the booking.
func (b *Booking) CanComplete() bool {
	return b.Status == BookingStatusPending
}

// Cancel transitions the booking to cancelled at the given time.
func (b *Booking) Cancel(now time.Time) error {
	if b.Status == BookingStatusCancelled {
		return ErrBookingAlreadyCancelled
	}
	b.Status = BookingStatusCancelled
	b.UpdatedAt = now
	return nil
}

// Complete transitions a pending booking to completed, attaching the payment
// that settled it.
func (b *Booking) Complete(paymentID string, now time.Time) error {
	if !b.CanComplete() {
		switch b.Status {
		case BookingStatusCancelled:
			return ErrBookingAlreadyCancelled
		case BookingStatusCompleted:
			return ErrBookingAlreadyCompleted
		default:
			return ErrBookingNotPending
		}
	}
	b.Status = BookingStatusCompleted
	b.PaymentID = &paymentID
	b.UpdatedAt = now
	return nil
}

// BookingTimeSlot is the join row reserving one time slot for a booking.
// FieldID and BookingDate are carried on the row so a partial unique index
// over (field, date, slot) can serialize concurrent reservations. Released
// is set when the parent booking is cancelled, freeing the slot.
type BookingTimeSlot struct {
	BookingID   string    `json:"booking_id"`
	TimeSlotID  string    `json:"time_slot_id"`
	FieldID     string    `json:"field_id"`
	BookingDate time.Time `json:"booking_date"`
	Released    bool      `json:"released"`
	CreatedAt   time.Time `json:"created_at"`
}

// SameDate reports whether two timestamps fall on the same calendar date,
// ignoring the time-of-day component.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DateOnly truncates a timestamp to midnight of its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
