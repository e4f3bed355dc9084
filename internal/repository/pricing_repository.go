package repository

import (
	"context"
	"time"

	"github.com/courtside/field-booking/internal/domain"
)

// UpsertResult reports how a pricing range upsert landed
type UpsertResult struct {
	Updated  int
	Inserted int
}

// PricingRepository provides access to pricing rules. Write operations that
// touch several rows run in a single transaction; the unique constraint on
// (field, slot, day) is the authoritative guard against concurrent range
// creation.
type PricingRepository interface {
	// GetByKey returns the pricing row for (field, slot, day) regardless of
	// its active flag, or domain.ErrPricingNotFound
	GetByKey(ctx context.Context, fieldID, timeSlotID string, day domain.DayOfWeek) (*domain.Pricing, error)

	// GetActiveForSlots returns active pricing rows for the given field, day
	// and slot set
	GetActiveForSlots(ctx context.Context, fieldID string, timeSlotIDs []string, day domain.DayOfWeek) ([]*domain.Pricing, error)

	// GetActiveByFieldAndDay returns active pricing rows for a field and day,
	// ordered by slot start time
	GetActiveByFieldAndDay(ctx context.Context, fieldID string, day domain.DayOfWeek) ([]*domain.Pricing, error)

	// GetActiveByField returns all active pricing rows for a field, optionally
	// filtered by day when day is non-nil
	GetActiveByField(ctx context.Context, fieldID string, day *domain.DayOfWeek) ([]*domain.Pricing, error)

	// CreateRangeBatch inserts the missing time slots and all pricing rows in
	// one transaction. Returns domain.ErrPricingConflict if any row already
	// exists for one of the (field, slot, day) keys.
	CreateRangeBatch(ctx context.Context, newSlots []*domain.TimeSlot, pricings []*domain.Pricing) error

	// UpsertRangeBatch inserts the missing time slots, then inserts or
	// overwrites pricing rows per (field, slot, day) key, forcing them
	// active. Runs in one transaction and reports updated vs inserted counts.
	UpsertRangeBatch(ctx context.Context, newSlots []*domain.TimeSlot, pricings []*domain.Pricing) (*UpsertResult, error)

	// DeactivateRange soft-deletes every pricing row exactly matching the
	// (field, day, range start, range end) tuple and returns the number of
	// rows affected. Zero affected rows is not an error.
	DeactivateRange(ctx context.Context, fieldID string, day domain.DayOfWeek, rangeStart, rangeEnd domain.TimeOfDay, now time.Time) (int64, error)
}
