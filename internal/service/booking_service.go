package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/courtside/field-booking/internal/domain"
	"github.com/courtside/field-booking/internal/dto"
	"github.com/courtside/field-booking/internal/repository"
	"github.com/courtside/field-booking/pkg/logger"
	"github.com/courtside/field-booking/pkg/telemetry"
)

// BookingService defines the interface for booking business logic
type BookingService interface {
	// CreateBooking validates, prices and reserves a slot selection
	CreateBooking(ctx context.Context, userID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)

	// CancelBooking cancels a booking and frees its slots
	CancelBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error)

	// GetBooking retrieves a booking by ID
	GetBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error)

	// ListUserBookings retrieves all bookings for a user, newest first
	ListUserBookings(ctx context.Context, userID string) ([]*dto.BookingResponse, error)

	// GetAvailability lists the priced slots for a field and date with
	// their availability
	GetAvailability(ctx context.Context, fieldID, date string) (*dto.AvailabilityResponse, error)
}

// bookingService implements BookingService
type bookingService struct {
	fieldRepo      repository.FieldRepository
	timeSlotRepo   repository.TimeSlotRepository
	pricingRepo    repository.PricingRepository
	bookingRepo    repository.BookingRepository
	eventPublisher EventPublisher
	clock          Clock
}

// NewBookingService creates a new booking service
func NewBookingService(
	fieldRepo repository.FieldRepository,
	timeSlotRepo repository.TimeSlotRepository,
	pricingRepo repository.PricingRepository,
	bookingRepo repository.BookingRepository,
	eventPublisher EventPublisher,
	clock Clock,
) BookingService {
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	if clock == nil {
		clock = NewClock()
	}
	return &bookingService{
		fieldRepo:      fieldRepo,
		timeSlotRepo:   timeSlotRepo,
		pricingRepo:    pricingRepo,
		bookingRepo:    bookingRepo,
		eventPublisher: eventPublisher,
		clock:          clock,
	}
}

// CreateBooking validates the request, prices the slots and reserves them as
// one pending booking
func (s *bookingService) CreateBooking(ctx context.Context, userID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.create")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("field.id", req.FieldID),
	)

	if userID == "" {
		span.SetStatus(codes.Error, "invalid user id")
		return nil, domain.ErrInvalidUserID
	}
	if req.FieldID == "" {
		span.SetStatus(codes.Error, "invalid field id")
		return nil, domain.ErrInvalidFieldID
	}
	if len(req.TimeSlotIDs) == 0 {
		span.SetStatus(codes.Error, "no time slots")
		return nil, domain.ErrNoTimeSlots
	}
	date, err := dto.ParseDate(req.BookingDate)
	if err != nil {
		span.SetStatus(codes.Error, "invalid booking date")
		return nil, fmt.Errorf("%w: booking date must be %s", domain.ErrInvalidRange, dto.DateLayout)
	}
	date = domain.DateOnly(date)

	field, err := s.fieldRepo.GetByID(ctx, req.FieldID)
	if err != nil {
		span.SetStatus(codes.Error, "field not found")
		return nil, err
	}
	if !field.CanBeBooked() {
		span.SetStatus(codes.Error, "field inactive")
		return nil, fmt.Errorf("%w: field %s", domain.ErrFieldInactive, field.ID)
	}

	slots, err := s.resolveSlots(ctx, req.TimeSlotIDs)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := s.clock.Now()
	if err := s.rejectPastSlots(slots, date, now); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Optimistic conflict pre-check so the caller gets the contested slot
	// ids by name. The partial unique index on the join table remains the
	// authoritative guard against a concurrent winner.
	booked, err := s.bookingRepo.FindBookedSlotIDs(ctx, field.ID, date, req.TimeSlotIDs)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(booked) > 0 {
		span.SetStatus(codes.Error, "slots conflict")
		return nil, fmt.Errorf("%w: %s", domain.ErrSlotsConflict, strings.Join(booked, ", "))
	}

	totalPrice, err := s.priceSlots(ctx, field.ID, req.TimeSlotIDs, date)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	booking := &domain.Booking{
		ID:          uuid.New().String(),
		UserID:      userID,
		FieldID:     field.ID,
		BookingDate: date,
		Status:      domain.BookingStatusPending,
		TotalPrice:  totalPrice,
		TimeSlotIDs: req.TimeSlotIDs,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.eventPublisher.PublishBookingCreated(ctx, booking); err != nil {
		logger.Get().Warn("failed to publish booking created event",
			zap.String("booking_id", booking.ID),
			zap.Error(err),
		)
	}

	span.SetAttributes(attribute.String("booking.id", booking.ID))
	return dto.BookingFromDomain(booking), nil
}

// CancelBooking cancels a booking, freeing its slots for future availability
func (s *bookingService) CancelBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("booking.id", bookingID))

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, "booking not found")
		return nil, err
	}
	if userID != "" && booking.UserID != userID {
		span.SetStatus(codes.Error, "booking not found")
		return nil, domain.ErrBookingNotFound
	}

	now := s.clock.Now()
	if err := s.bookingRepo.Cancel(ctx, bookingID, now); err != nil {
		if !errors.Is(err, domain.ErrBookingAlreadyCancelled) {
			span.RecordError(err)
		}
		return nil, err
	}

	booking.Status = domain.BookingStatusCancelled
	booking.UpdatedAt = now

	if err := s.eventPublisher.PublishBookingCancelled(ctx, booking); err != nil {
		logger.Get().Warn("failed to publish booking cancelled event",
			zap.String("booking_id", booking.ID),
			zap.Error(err),
		)
	}

	return dto.BookingFromDomain(booking), nil
}

// GetBooking retrieves a booking owned by the user
func (s *bookingService) GetBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get")
	defer span.End()
	span.SetAttributes(attribute.String("booking.id", bookingID))

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, "booking not found")
		return nil, err
	}
	if userID != "" && booking.UserID != userID {
		span.SetStatus(codes.Error, "booking not found")
		return nil, domain.ErrBookingNotFound
	}
	return dto.BookingFromDomain(booking), nil
}

// ListUserBookings lists the user's bookings, newest first
func (s *bookingService) ListUserBookings(ctx context.Context, userID string) ([]*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.list_by_user")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if userID == "" {
		span.SetStatus(codes.Error, "invalid user id")
		return nil, domain.ErrInvalidUserID
	}

	bookings, err := s.bookingRepo.ListByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	responses := make([]*dto.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		responses = append(responses, dto.BookingFromDomain(b))
	}
	return responses, nil
}

// GetAvailability lists the field's priced slots for the date's day of week,
// marking held slots unavailable
func (s *bookingService) GetAvailability(ctx context.Context, fieldID, date string) (*dto.AvailabilityResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.availability")
	defer span.End()
	span.SetAttributes(attribute.String("field.id", fieldID))

	if fieldID == "" {
		span.SetStatus(codes.Error, "invalid field id")
		return nil, domain.ErrInvalidFieldID
	}
	day, err := dto.ParseDate(date)
	if err != nil {
		span.SetStatus(codes.Error, "invalid date")
		return nil, fmt.Errorf("%w: date must be %s", domain.ErrInvalidRange, dto.DateLayout)
	}
	day = domain.DateOnly(day)

	if _, err := s.fieldRepo.GetByID(ctx, fieldID); err != nil {
		span.SetStatus(codes.Error, "field not found")
		return nil, err
	}

	pricings, err := s.pricingRepo.GetActiveByFieldAndDay(ctx, fieldID, domain.DayOfWeekOf(day))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	slotIDs := make([]string, 0, len(pricings))
	for _, p := range pricings {
		slotIDs = append(slotIDs, p.TimeSlotID)
	}
	slots, err := s.timeSlotRepo.GetByIDs(ctx, slotIDs)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	slotByID := make(map[string]*domain.TimeSlot, len(slots))
	for _, slot := range slots {
		slotByID[slot.ID] = slot
	}

	booked, err := s.bookingRepo.FindBookedSlotIDs(ctx, fieldID, day, slotIDs)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	bookedSet := make(map[string]bool, len(booked))
	for _, id := range booked {
		bookedSet[id] = true
	}

	resp := &dto.AvailabilityResponse{
		FieldID: fieldID,
		Date:    day.Format(dto.DateLayout),
		Slots:   make([]*dto.SlotAvailability, 0, len(pricings)),
	}
	for _, p := range pricings {
		slot, ok := slotByID[p.TimeSlotID]
		if !ok {
			continue
		}
		resp.Slots = append(resp.Slots, &dto.SlotAvailability{
			TimeSlotID: slot.ID,
			StartTime:  slot.StartTime.String(),
			EndTime:    slot.EndTime.String(),
			Price:      p.Price,
			Available:  !bookedSet[slot.ID],
		})
	}
	return resp, nil
}

// resolveSlots loads the requested slots, failing with the missing ids named
func (s *bookingService) resolveSlots(ctx context.Context, timeSlotIDs []string) ([]*domain.TimeSlot, error) {
	slots, err := s.timeSlotRepo.GetByIDs(ctx, timeSlotIDs)
	if err != nil {
		return nil, err
	}
	if len(slots) != len(timeSlotIDs) {
		found := make(map[string]bool, len(slots))
		for _, slot := range slots {
			found[slot.ID] = true
		}
		var missing []string
		for _, id := range timeSlotIDs {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrTimeSlotNotFound, strings.Join(missing, ", "))
	}
	return slots, nil
}

// rejectPastSlots rejects slots whose start already passed when booking for
// today
func (s *bookingService) rejectPastSlots(slots []*domain.TimeSlot, date time.Time, now time.Time) error {
	if !domain.SameDate(date, now) {
		return nil
	}
	current := domain.TimeOfDayFromClock(now)
	for _, slot := range slots {
		if slot.StartTime.Before(current) {
			return fmt.Errorf("%w: slot %s already started", domain.ErrPastTimeSlot, slot.Interval())
		}
	}
	return nil
}

// priceSlots sums active pricing for the slots on the date's day of week
func (s *bookingService) priceSlots(ctx context.Context, fieldID string, timeSlotIDs []string, date time.Time) (decimal.Decimal, error) {
	day := domain.DayOfWeekOf(date)
	pricings, err := s.pricingRepo.GetActiveForSlots(ctx, fieldID, timeSlotIDs, day)
	if err != nil {
		return decimal.Zero, err
	}
	if len(pricings) == 0 {
		return decimal.Zero, fmt.Errorf("%w: no active pricing for field %s on day %d", domain.ErrPricingNotFound, fieldID, day)
	}

	total := decimal.Zero
	for _, p := range pricings {
		total = total.Add(p.Price)
	}
	return total, nil
}

var _ BookingService = (*bookingService)(nil)
