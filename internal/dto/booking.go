package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/courtside/field-booking/internal/domain"
)

// CreateBookingRequest reserves a set of slots on a field for a date
type CreateBookingRequest struct {
	FieldID     string   `json:"field_id" binding:"required"`
	BookingDate string   `json:"booking_date" binding:"required"`
	TimeSlotIDs []string `json:"time_slot_ids" binding:"required,min=1"`
}

// BookingResponse is the API view of a booking
type BookingResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	FieldID     string          `json:"field_id"`
	BookingDate string          `json:"booking_date"`
	Status      string          `json:"status"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	PaymentID   *string         `json:"payment_id,omitempty"`
	TimeSlotIDs []string        `json:"time_slot_ids"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BookingFromDomain converts a booking to its response form
func BookingFromDomain(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:          b.ID,
		UserID:      b.UserID,
		FieldID:     b.FieldID,
		BookingDate: b.BookingDate.Format(DateLayout),
		Status:      string(b.Status),
		TotalPrice:  b.TotalPrice,
		PaymentID:   b.PaymentID,
		TimeSlotIDs: b.TimeSlotIDs,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// SlotAvailability is one slot's availability and price for a field and date
type SlotAvailability struct {
	TimeSlotID string          `json:"time_slot_id"`
	StartTime  string          `json:"start_time"`
	EndTime    string          `json:"end_time"`
	Price      decimal.Decimal `json:"price"`
	Available  bool            `json:"available"`
}

// AvailabilityResponse lists the priced slots for a field and date
type AvailabilityResponse struct {
	FieldID string              `json:"field_id"`
	Date    string              `json:"date"`
	Slots   []*SlotAvailability `json:"slots"`
}
