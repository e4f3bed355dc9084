package repository

import (
	"context"
	"time"

	"github.com/courtside/field-booking/internal/domain"
)

// BookingRepository provides access to bookings and their reserved slots.
// The partial unique index over (field, date, slot) on the join table is the
// authoritative serialization point for concurrent reservations; Create maps
// violations of it to domain.ErrSlotsConflict.
type BookingRepository interface {
	// Create inserts the booking and one join row per reserved slot in a
	// single transaction. Returns domain.ErrSlotsConflict (wrapping the
	// contested state) when another booking already holds one of the slots.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID returns a booking with its reserved slot ids, or
	// domain.ErrBookingNotFound
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// ListByUser returns the user's bookings, newest first
	ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error)

	// FindBookedSlotIDs returns which of the given slots are held for the
	// field and date by a booking in a blocking status. Used as the
	// optimistic conflict pre-check and by availability queries.
	FindBookedSlotIDs(ctx context.Context, fieldID string, date time.Time, timeSlotIDs []string) ([]string, error)

	// Cancel transitions a booking to cancelled and releases its join rows.
	// Returns domain.ErrBookingNotFound or domain.ErrBookingAlreadyCancelled.
	Cancel(ctx context.Context, bookingID string, now time.Time) error

	// CancelStalePending cancels every pending booking created at or before
	// the cutoff, releasing its slots, and returns the cancelled bookings.
	CancelStalePending(ctx context.Context, cutoff, now time.Time) ([]*domain.Booking, error)
}
