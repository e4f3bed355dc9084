package repository

import (
	"context"

	"github.com/courtside/field-booking/internal/domain"
)

// TimeSlotRepository provides access to canonical time slots
type TimeSlotRepository interface {
	// GetByID returns a time slot by id, or domain.ErrTimeSlotNotFound
	GetByID(ctx context.Context, id string) (*domain.TimeSlot, error)

	// GetByIDs returns the time slots matching the given ids. Missing ids are
	// simply absent from the result; the caller decides whether that is an
	// error.
	GetByIDs(ctx context.Context, ids []string) ([]*domain.TimeSlot, error)

	// GetByInterval returns the slot with the exact (start,end) pair, or
	// domain.ErrTimeSlotNotFound
	GetByInterval(ctx context.Context, start, end domain.TimeOfDay) (*domain.TimeSlot, error)
}
