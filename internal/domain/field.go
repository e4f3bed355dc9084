package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field represents a bookable sports field. Fields are managed by an admin
// workflow; the booking core treats them as read-only.
type Field struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	PricePerHour  decimal.Decimal `json:"price_per_hour"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CanBeBooked reports whether the field accepts new bookings.
func (f *Field) CanBeBooked() bool {
	return f.IsActive
}
