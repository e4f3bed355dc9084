package domain

import "time"

// BookingEventType identifies a booking lifecycle event
type BookingEventType string

// Booking event types
const (
	BookingEventCreated   BookingEventType = "booking.created"
	BookingEventCancelled BookingEventType = "booking.cancelled"
	BookingEventCompleted BookingEventType = "booking.completed"
	BookingEventExpired   BookingEventType = "booking.expired"
)

// BookingEvent is the payload published to the event stream when a booking
// changes state.
type BookingEvent struct {
	EventID     string           `json:"event_id"`
	EventType   BookingEventType `json:"event_type"`
	BookingID   string           `json:"booking_id"`
	UserID      string           `json:"user_id"`
	FieldID     string           `json:"field_id"`
	BookingDate time.Time        `json:"booking_date"`
	Status      BookingStatus    `json:"status"`
	TotalPrice  string           `json:"total_price"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

// NewBookingEvent builds an event from a booking snapshot.
func NewBookingEvent(eventType BookingEventType, booking *Booking, eventID string) *BookingEvent {
	return &BookingEvent{
		EventID:     eventID,
		EventType:   eventType,
		BookingID:   booking.ID,
		UserID:      booking.UserID,
		FieldID:     booking.FieldID,
		BookingDate: booking.BookingDate,
		Status:      booking.Status,
		TotalPrice:  booking.TotalPrice.String(),
		OccurredAt:  time.Now(),
	}
}

// Key returns the partition key for the event. Events for the same booking
// share a key so consumers see them in order.
func (e *BookingEvent) Key() string {
	return e.BookingID
}
