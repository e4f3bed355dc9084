package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/courtside/field-booking/internal/domain"
)

// CreatePricingRangeRequest is the admin request to price a day-of-week time
// range on a field
type CreatePricingRangeRequest struct {
	FieldID   string          `json:"field_id" binding:"required"`
	DayOfWeek int             `json:"day_of_week"`
	StartTime string          `json:"start_time" binding:"required"`
	EndTime   string          `json:"end_time" binding:"required"`
	Price     decimal.Decimal `json:"price" binding:"required"`
}

// UpdatePricingRangeRequest is the admin request to overwrite a priced range
type UpdatePricingRangeRequest struct {
	FieldID   string          `json:"field_id" binding:"required"`
	DayOfWeek int             `json:"day_of_week"`
	StartTime string          `json:"start_time" binding:"required"`
	EndTime   string          `json:"end_time" binding:"required"`
	Price     decimal.Decimal `json:"price" binding:"required"`
}

// DeletePricingRangeRequest is the admin request to retire a priced range
type DeletePricingRangeRequest struct {
	FieldID   string `json:"field_id" binding:"required"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// PricingResponse is one 30-minute pricing row
type PricingResponse struct {
	ID         string          `json:"id"`
	FieldID    string          `json:"field_id"`
	TimeSlotID string          `json:"time_slot_id"`
	DayOfWeek  int             `json:"day_of_week"`
	Price      decimal.Decimal `json:"price"`
	StartTime  string          `json:"start_time"`
	EndTime    string          `json:"end_time"`
	RangeStart string          `json:"range_start"`
	RangeEnd   string          `json:"range_end"`
	IsActive   bool            `json:"is_active"`
}

// CreatePricingRangeResponse reports the rows a range creation produced
type CreatePricingRangeResponse struct {
	PricingIDs []string `json:"pricing_ids"`
	SlotCount  int      `json:"slot_count"`
}

// UpdatePricingRangeResponse reports upsert counts for a range update
type UpdatePricingRangeResponse struct {
	Updated  int `json:"updated"`
	Inserted int `json:"inserted"`
}

// PricingFromDomain converts a pricing row to its response form
func PricingFromDomain(p *domain.Pricing, slot *domain.TimeSlot) *PricingResponse {
	resp := &PricingResponse{
		ID:         p.ID,
		FieldID:    p.FieldID,
		TimeSlotID: p.TimeSlotID,
		DayOfWeek:  int(p.DayOfWeek),
		Price:      p.Price,
		RangeStart: p.RangeStart.String(),
		RangeEnd:   p.RangeEnd.String(),
		IsActive:   p.IsActive,
	}
	if slot != nil {
		resp.StartTime = slot.StartTime.String()
		resp.EndTime = slot.EndTime.String()
	}
	return resp
}

// DateLayout is the wire format for booking dates
const DateLayout = "2006-01-02"

// ParseDate parses a wire-format date
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}
