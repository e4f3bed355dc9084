package repository

import (
	"context"

	"github.com/courtside/field-booking/internal/domain"
)

// PaymentRepository provides access to payment records
type PaymentRepository interface {
	// GetByBookingID returns the payment settling a booking, or
	// domain.ErrPaymentNotFound
	GetByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error)

	// SettleBooking inserts the payment and completes its booking in one
	// transaction. The booking update is guarded on status=pending; if the
	// booking was cancelled or completed in the meantime the transaction is
	// rolled back and a state error is returned.
	SettleBooking(ctx context.Context, payment *domain.Payment) error
}
