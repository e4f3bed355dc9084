package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how a payment was made
type PaymentMethod string

// Payment methods
const (
	PaymentMethodWallet PaymentMethod = "wallet"
)

// PaymentStatus represents the state of a payment record
type PaymentStatus string

// Payment statuses
const (
	PaymentStatusSucceeded PaymentStatus = "succeeded"
)

// Payment records a successful wallet transaction settling a booking.
// Exactly one payment is created per successful callback; the transaction
// code is unique per settled transaction.
type Payment struct {
	ID              string          `json:"id"`
	BookingID       string          `json:"booking_id"`
	Amount          decimal.Decimal `json:"amount"`
	Method          PaymentMethod   `json:"method"`
	Status          PaymentStatus   `json:"status"`
	TransactionCode string          `json:"transaction_code"`
	PaidAt          time.Time       `json:"paid_at"`
	CreatedAt       time.Time       `json:"created_at"`
}
