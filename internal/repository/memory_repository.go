package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/courtside/field-booking/internal/domain"
)

// In-memory repository implementations backed by maps. They mirror the
// transactional semantics of the PostgreSQL repositories closely enough for
// service and worker tests: slot holds, status guards and all-or-nothing
// range writes.

// MemoryFieldRepository is an in-memory FieldRepository
type MemoryFieldRepository struct {
	mu     sync.RWMutex
	fields map[string]*domain.Field
}

// NewMemoryFieldRepository creates an empty in-memory field repository
func NewMemoryFieldRepository() *MemoryFieldRepository {
	return &MemoryFieldRepository{fields: make(map[string]*domain.Field)}
}

// Add stores a field
func (r *MemoryFieldRepository) Add(field *domain.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fields[field.ID] = field
}

// GetByID returns a field by id
func (r *MemoryFieldRepository) GetByID(ctx context.Context, id string) (*domain.Field, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	field, ok := r.fields[id]
	if !ok {
		return nil, domain.ErrFieldNotFound
	}
	return field, nil
}

// MemoryTimeSlotRepository is an in-memory TimeSlotRepository
type MemoryTimeSlotRepository struct {
	mu    sync.RWMutex
	slots map[string]*domain.TimeSlot
}

// NewMemoryTimeSlotRepository creates an empty in-memory time slot repository
func NewMemoryTimeSlotRepository() *MemoryTimeSlotRepository {
	return &MemoryTimeSlotRepository{slots: make(map[string]*domain.TimeSlot)}
}

// Add stores a time slot
func (r *MemoryTimeSlotRepository) Add(slot *domain.TimeSlot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[slot.ID] = slot
}

// GetByID returns a time slot by id
func (r *MemoryTimeSlotRepository) GetByID(ctx context.Context, id string) (*domain.TimeSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slot, ok := r.slots[id]
	if !ok {
		return nil, domain.ErrTimeSlotNotFound
	}
	return slot, nil
}

// GetByIDs returns the time slots matching the given ids
func (r *MemoryTimeSlotRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.TimeSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var slots []*domain.TimeSlot
	for _, id := range ids {
		if slot, ok := r.slots[id]; ok {
			slots = append(slots, slot)
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].StartTime < slots[j].StartTime })
	return slots, nil
}

// GetByInterval returns the slot with the exact (start,end) pair
func (r *MemoryTimeSlotRepository) GetByInterval(ctx context.Context, start, end domain.TimeOfDay) (*domain.TimeSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, slot := range r.slots {
		if slot.StartTime == start && slot.EndTime == end {
			return slot, nil
		}
	}
	return nil, domain.ErrTimeSlotNotFound
}

// MemoryPricingRepository is an in-memory PricingRepository. It shares a
// MemoryTimeSlotRepository so range writes register the slots they create.
type MemoryPricingRepository struct {
	mu       sync.RWMutex
	rows     map[string]*domain.Pricing
	slotRepo *MemoryTimeSlotRepository
}

// NewMemoryPricingRepository creates an empty in-memory pricing repository
func NewMemoryPricingRepository(slotRepo *MemoryTimeSlotRepository) *MemoryPricingRepository {
	return &MemoryPricingRepository{
		rows:     make(map[string]*domain.Pricing),
		slotRepo: slotRepo,
	}
}

func pricingKey(fieldID, timeSlotID string, day domain.DayOfWeek) string {
	return fmt.Sprintf("%s|%s|%d", fieldID, timeSlotID, day)
}

// GetByKey returns the pricing row for (field, slot, day) regardless of its
// active flag
func (r *MemoryPricingRepository) GetByKey(ctx context.Context, fieldID, timeSlotID string, day domain.DayOfWeek) (*domain.Pricing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[pricingKey(fieldID, timeSlotID, day)]
	if !ok {
		return nil, domain.ErrPricingNotFound
	}
	return row, nil
}

// GetActiveForSlots returns active pricing rows for the given field, day and
// slot set
func (r *MemoryPricingRepository) GetActiveForSlots(ctx context.Context, fieldID string, timeSlotIDs []string, day domain.DayOfWeek) ([]*domain.Pricing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.Pricing
	for _, slotID := range timeSlotIDs {
		if row, ok := r.rows[pricingKey(fieldID, slotID, day)]; ok && row.IsActive {
			result = append(result, row)
		}
	}
	return result, nil
}

// slotStart looks up the start time of a pricing row's slot for ordering
func (r *MemoryPricingRepository) slotStart(timeSlotID string) domain.TimeOfDay {
	r.slotRepo.mu.RLock()
	defer r.slotRepo.mu.RUnlock()
	if slot, ok := r.slotRepo.slots[timeSlotID]; ok {
		return slot.StartTime
	}
	return 0
}

// GetActiveByFieldAndDay returns active pricing rows for a field and day,
// ordered by slot start time
func (r *MemoryPricingRepository) GetActiveByFieldAndDay(ctx context.Context, fieldID string, day domain.DayOfWeek) ([]*domain.Pricing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.Pricing
	for _, row := range r.rows {
		if row.FieldID == fieldID && row.DayOfWeek == day && row.IsActive {
			result = append(result, row)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return r.slotStart(result[i].TimeSlotID) < r.slotStart(result[j].TimeSlotID)
	})
	return result, nil
}

// GetActiveByField returns all active pricing rows for a field
func (r *MemoryPricingRepository) GetActiveByField(ctx context.Context, fieldID string, day *domain.DayOfWeek) ([]*domain.Pricing, error) {
	if day != nil {
		return r.GetActiveByFieldAndDay(ctx, fieldID, *day)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.Pricing
	for _, row := range r.rows {
		if row.FieldID == fieldID && row.IsActive {
			result = append(result, row)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DayOfWeek != result[j].DayOfWeek {
			return result[i].DayOfWeek < result[j].DayOfWeek
		}
		return r.slotStart(result[i].TimeSlotID) < r.slotStart(result[j].TimeSlotID)
	})
	return result, nil
}

// CreateRangeBatch inserts the missing time slots and all pricing rows
// atomically; any existing (field, slot, day) key fails the whole batch.
func (r *MemoryPricingRepository) CreateRangeBatch(ctx context.Context, newSlots []*domain.TimeSlot, pricings []*domain.Pricing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range pricings {
		if _, exists := r.rows[pricingKey(p.FieldID, p.TimeSlotID, p.DayOfWeek)]; exists {
			return fmt.Errorf("%w: field %s, day %d", domain.ErrPricingConflict, p.FieldID, p.DayOfWeek)
		}
	}

	for _, slot := range newSlots {
		r.slotRepo.Add(slot)
	}
	for _, p := range pricings {
		r.rows[pricingKey(p.FieldID, p.TimeSlotID, p.DayOfWeek)] = p
	}
	return nil
}

// UpsertRangeBatch inserts or overwrites pricing rows per (field, slot, day)
// key, forcing them active
func (r *MemoryPricingRepository) UpsertRangeBatch(ctx context.Context, newSlots []*domain.TimeSlot, pricings []*domain.Pricing) (*UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, slot := range newSlots {
		r.slotRepo.Add(slot)
	}

	result := &UpsertResult{}
	for _, p := range pricings {
		key := pricingKey(p.FieldID, p.TimeSlotID, p.DayOfWeek)
		if existing, ok := r.rows[key]; ok {
			existing.Price = p.Price
			existing.RangeStart = p.RangeStart
			existing.RangeEnd = p.RangeEnd
			existing.IsActive = true
			existing.UpdatedAt = p.UpdatedAt
			result.Updated++
		} else {
			p.IsActive = true
			r.rows[key] = p
			result.Inserted++
		}
	}
	return result, nil
}

// DeactivateRange soft-deletes every pricing row exactly matching the range
func (r *MemoryPricingRepository) DeactivateRange(ctx context.Context, fieldID string, day domain.DayOfWeek, rangeStart, rangeEnd domain.TimeOfDay, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected int64
	for _, row := range r.rows {
		if row.FieldID == fieldID && row.DayOfWeek == day &&
			row.RangeStart == rangeStart && row.RangeEnd == rangeEnd && row.IsActive {
			row.IsActive = false
			row.UpdatedAt = now
			affected++
		}
	}
	return affected, nil
}

// MemoryBookingRepository is an in-memory BookingRepository
type MemoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking
	// holds maps (field, date, slot) to the booking currently holding it
	holds map[string]string
}

// NewMemoryBookingRepository creates an empty in-memory booking repository
func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{
		bookings: make(map[string]*domain.Booking),
		holds:    make(map[string]string),
	}
}

func holdKey(fieldID string, date time.Time, slotID string) string {
	return fmt.Sprintf("%s|%s|%s", fieldID, date.Format("2006-01-02"), slotID)
}

// Create inserts the booking, rejecting slots already held
func (r *MemoryBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, slotID := range booking.TimeSlotIDs {
		if _, held := r.holds[holdKey(booking.FieldID, booking.BookingDate, slotID)]; held {
			return fmt.Errorf("%w: time slot %s", domain.ErrSlotsConflict, slotID)
		}
	}

	r.bookings[booking.ID] = booking
	for _, slotID := range booking.TimeSlotIDs {
		r.holds[holdKey(booking.FieldID, booking.BookingDate, slotID)] = booking.ID
	}
	return nil
}

// GetByID returns a booking by id
func (r *MemoryBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return booking, nil
}

// ListByUser returns the user's bookings, newest first
func (r *MemoryBookingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// FindBookedSlotIDs returns which of the given slots are held for the field
// and date
func (r *MemoryBookingRepository) FindBookedSlotIDs(ctx context.Context, fieldID string, date time.Time, timeSlotIDs []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	check := timeSlotIDs
	if len(check) == 0 {
		seen := make(map[string]bool)
		for _, bookingID := range r.holds {
			b := r.bookings[bookingID]
			if b.FieldID == fieldID && domain.SameDate(b.BookingDate, date) {
				for _, slotID := range b.TimeSlotIDs {
					seen[slotID] = true
				}
			}
		}
		var booked []string
		for slotID := range seen {
			booked = append(booked, slotID)
		}
		sort.Strings(booked)
		return booked, nil
	}

	var booked []string
	for _, slotID := range check {
		if _, held := r.holds[holdKey(fieldID, date, slotID)]; held {
			booked = append(booked, slotID)
		}
	}
	return booked, nil
}

// Cancel transitions a booking to cancelled and releases its holds
func (r *MemoryBookingRepository) Cancel(ctx context.Context, bookingID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking, ok := r.bookings[bookingID]
	if !ok {
		return domain.ErrBookingNotFound
	}
	if booking.Status == domain.BookingStatusCancelled {
		return domain.ErrBookingAlreadyCancelled
	}

	booking.Status = domain.BookingStatusCancelled
	booking.UpdatedAt = now
	r.releaseLocked(booking)
	return nil
}

// CancelStalePending cancels every pending booking created at or before the
// cutoff
func (r *MemoryBookingRepository) CancelStalePending(ctx context.Context, cutoff, now time.Time) ([]*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cancelled []*domain.Booking
	for _, booking := range r.bookings {
		if booking.Status == domain.BookingStatusPending && !booking.CreatedAt.After(cutoff) {
			booking.Status = domain.BookingStatusCancelled
			booking.UpdatedAt = now
			r.releaseLocked(booking)
			cancelled = append(cancelled, booking)
		}
	}
	return cancelled, nil
}

func (r *MemoryBookingRepository) releaseLocked(booking *domain.Booking) {
	for _, slotID := range booking.TimeSlotIDs {
		delete(r.holds, holdKey(booking.FieldID, booking.BookingDate, slotID))
	}
}

// MemoryPaymentRepository is an in-memory PaymentRepository. It shares a
// MemoryBookingRepository so settling a payment completes its booking under
// the same status guard as the PostgreSQL implementation.
type MemoryPaymentRepository struct {
	mu          sync.RWMutex
	payments    map[string]*domain.Payment
	bookingRepo *MemoryBookingRepository
}

// NewMemoryPaymentRepository creates an empty in-memory payment repository
func NewMemoryPaymentRepository(bookingRepo *MemoryBookingRepository) *MemoryPaymentRepository {
	return &MemoryPaymentRepository{
		payments:    make(map[string]*domain.Payment),
		bookingRepo: bookingRepo,
	}
}

// GetByBookingID returns the payment settling a booking
func (r *MemoryPaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	payment, ok := r.payments[bookingID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return payment, nil
}

// SettleBooking inserts the payment and completes its booking atomically
func (r *MemoryPaymentRepository) SettleBooking(ctx context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bookingRepo.mu.Lock()
	defer r.bookingRepo.mu.Unlock()

	booking, ok := r.bookingRepo.bookings[payment.BookingID]
	if !ok {
		return domain.ErrBookingNotFound
	}
	switch booking.Status {
	case domain.BookingStatusPending:
	case domain.BookingStatusCancelled:
		return domain.ErrBookingAlreadyCancelled
	case domain.BookingStatusCompleted:
		return domain.ErrBookingAlreadyCompleted
	default:
		return domain.ErrBookingNotPending
	}
	if _, exists := r.payments[payment.BookingID]; exists {
		return domain.ErrPaymentAlreadyRecorded
	}

	booking.Status = domain.BookingStatusCompleted
	booking.PaymentID = &payment.ID
	booking.UpdatedAt = payment.PaidAt
	r.payments[payment.BookingID] = payment
	return nil
}

var (
	_ FieldRepository    = (*MemoryFieldRepository)(nil)
	_ TimeSlotRepository = (*MemoryTimeSlotRepository)(nil)
	_ PricingRepository  = (*MemoryPricingRepository)(nil)
	_ BookingRepository  = (*MemoryBookingRepository)(nil)
	_ PaymentRepository  = (*MemoryPaymentRepository)(nil)
)
