package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Constraint names the repositories map to domain errors
const (
	constraintSlotHold       = "uq_booking_time_slots_hold"
	constraintPricingKey     = "uq_pricings_field_slot_day"
	constraintSlotInterval   = "uq_time_slots_interval"
	constraintPaymentPerBook = "uq_payments_booking"
)

// isUniqueViolation reports whether err is a unique constraint violation,
// optionally restricted to a named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
