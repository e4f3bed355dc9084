package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/courtside/field-booking/internal/domain"
	"github.com/courtside/field-booking/internal/dto"
	"github.com/courtside/field-booking/internal/repository"
	"github.com/courtside/field-booking/pkg/telemetry"
)

// PricingService defines the interface for pricing range administration
type PricingService interface {
	// CreateRange prices a day-of-week time range in 30-minute units,
	// failing whole if any unit is already priced
	CreateRange(ctx context.Context, req *dto.CreatePricingRangeRequest) (*dto.CreatePricingRangeResponse, error)

	// UpdateRange overwrites or inserts the 30-minute units of a range
	UpdateRange(ctx context.Context, req *dto.UpdatePricingRangeRequest) (*dto.UpdatePricingRangeResponse, error)

	// DeleteRange retires every pricing row exactly matching the range
	DeleteRange(ctx context.Context, req *dto.DeletePricingRangeRequest) error

	// GetPricingsByField lists a field's active pricing rows, optionally
	// filtered to one day of week
	GetPricingsByField(ctx context.Context, fieldID string, day *domain.DayOfWeek) ([]*dto.PricingResponse, error)
}

// pricingService implements PricingService
type pricingService struct {
	fieldRepo    repository.FieldRepository
	timeSlotRepo repository.TimeSlotRepository
	pricingRepo  repository.PricingRepository
	clock        Clock
}

// NewPricingService creates a new pricing service
func NewPricingService(
	fieldRepo repository.FieldRepository,
	timeSlotRepo repository.TimeSlotRepository,
	pricingRepo repository.PricingRepository,
	clock Clock,
) PricingService {
	if clock == nil {
		clock = NewClock()
	}
	return &pricingService{
		fieldRepo:    fieldRepo,
		timeSlotRepo: timeSlotRepo,
		pricingRepo:  pricingRepo,
		clock:        clock,
	}
}

// rangeUnit pairs one 30-minute interval with its time slot, which is either
// an existing row or one to be created with the batch.
type rangeUnit struct {
	interval domain.SlotInterval
	slot     *domain.TimeSlot
	isNew    bool
}

// CreateRange prices a range, all units or none
func (s *pricingService) CreateRange(ctx context.Context, req *dto.CreatePricingRangeRequest) (*dto.CreatePricingRangeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.pricing.create_range")
	defer span.End()
	span.SetAttributes(
		attribute.String("field.id", req.FieldID),
		attribute.Int("pricing.day_of_week", req.DayOfWeek),
	)

	day, intervals, err := s.expandRequest(ctx, req.FieldID, req.DayOfWeek, req.StartTime, req.EndTime)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !req.Price.IsPositive() {
		span.SetStatus(codes.Error, "invalid price")
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrInvalidPrice)
	}

	units, err := s.resolveSlots(ctx, intervals)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// Optimistic pre-check so the caller gets every conflicting
	// sub-interval by name. The unique constraint inside the batch insert
	// remains the authoritative guard.
	var conflicts []string
	for _, unit := range units {
		if unit.isNew {
			continue
		}
		_, err := s.pricingRepo.GetByKey(ctx, req.FieldID, unit.slot.ID, day)
		if err == nil {
			conflicts = append(conflicts, unit.interval.String())
			continue
		}
		if !errors.Is(err, domain.ErrPricingNotFound) {
			span.RecordError(err)
			return nil, err
		}
	}
	if len(conflicts) > 0 {
		span.SetStatus(codes.Error, "pricing conflict")
		return nil, fmt.Errorf("%w: %s", domain.ErrPricingConflict, strings.Join(conflicts, ", "))
	}

	now := s.clock.Now()
	rangeStart := intervals[0].Start
	rangeEnd := intervals[len(intervals)-1].End

	newSlots := make([]*domain.TimeSlot, 0, len(units))
	pricings := make([]*domain.Pricing, 0, len(units))
	ids := make([]string, 0, len(units))
	for _, unit := range units {
		if unit.isNew {
			newSlots = append(newSlots, unit.slot)
		}
		p := &domain.Pricing{
			ID:         uuid.New().String(),
			FieldID:    req.FieldID,
			TimeSlotID: unit.slot.ID,
			DayOfWeek:  day,
			Price:      req.Price,
			RangeStart: rangeStart,
			RangeEnd:   rangeEnd,
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		pricings = append(pricings, p)
		ids = append(ids, p.ID)
	}

	if err := s.pricingRepo.CreateRangeBatch(ctx, newSlots, pricings); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &dto.CreatePricingRangeResponse{PricingIDs: ids, SlotCount: len(ids)}, nil
}

// UpdateRange upserts the units of a range and reports counts
func (s *pricingService) UpdateRange(ctx context.Context, req *dto.UpdatePricingRangeRequest) (*dto.UpdatePricingRangeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.pricing.update_range")
	defer span.End()
	span.SetAttributes(
		attribute.String("field.id", req.FieldID),
		attribute.Int("pricing.day_of_week", req.DayOfWeek),
	)

	day, intervals, err := s.expandRequest(ctx, req.FieldID, req.DayOfWeek, req.StartTime, req.EndTime)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !req.Price.IsPositive() {
		span.SetStatus(codes.Error, "invalid price")
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrInvalidPrice)
	}

	units, err := s.resolveSlots(ctx, intervals)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	now := s.clock.Now()
	rangeStart := intervals[0].Start
	rangeEnd := intervals[len(intervals)-1].End

	newSlots := make([]*domain.TimeSlot, 0, len(units))
	pricings := make([]*domain.Pricing, 0, len(units))
	for _, unit := range units {
		if unit.isNew {
			newSlots = append(newSlots, unit.slot)
		}
		pricings = append(pricings, &domain.Pricing{
			ID:         uuid.New().String(),
			FieldID:    req.FieldID,
			TimeSlotID: unit.slot.ID,
			DayOfWeek:  day,
			Price:      req.Price,
			RangeStart: rangeStart,
			RangeEnd:   rangeEnd,
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	result, err := s.pricingRepo.UpsertRangeBatch(ctx, newSlots, pricings)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("pricing.updated", result.Updated),
		attribute.Int("pricing.inserted", result.Inserted),
	)
	return &dto.UpdatePricingRangeResponse{Updated: result.Updated, Inserted: result.Inserted}, nil
}

// DeleteRange retires matching rows, succeeding even when none match
func (s *pricingService) DeleteRange(ctx context.Context, req *dto.DeletePricingRangeRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "service.pricing.delete_range")
	defer span.End()
	span.SetAttributes(
		attribute.String("field.id", req.FieldID),
		attribute.Int("pricing.day_of_week", req.DayOfWeek),
	)

	day := domain.DayOfWeek(req.DayOfWeek)
	if err := day.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	start, end, err := parseInterval(req.StartTime, req.EndTime)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	affected, err := s.pricingRepo.DeactivateRange(ctx, req.FieldID, day, start, end, s.clock.Now())
	if err != nil {
		span.RecordError(err)
		return err
	}

	span.SetAttributes(attribute.Int64("pricing.deactivated", affected))
	return nil
}

// GetPricingsByField lists active pricing rows with their slot times
func (s *pricingService) GetPricingsByField(ctx context.Context, fieldID string, day *domain.DayOfWeek) ([]*dto.PricingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.pricing.get_by_field")
	defer span.End()
	span.SetAttributes(attribute.String("field.id", fieldID))

	if _, err := s.fieldRepo.GetByID(ctx, fieldID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	pricings, err := s.pricingRepo.GetActiveByField(ctx, fieldID, day)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	slotIDs := make([]string, 0, len(pricings))
	seen := make(map[string]bool, len(pricings))
	for _, p := range pricings {
		if !seen[p.TimeSlotID] {
			seen[p.TimeSlotID] = true
			slotIDs = append(slotIDs, p.TimeSlotID)
		}
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

	responses := make([]*dto.PricingResponse, 0, len(pricings))
	for _, p := range pricings {
		responses = append(responses, dto.PricingFromDomain(p, slotByID[p.TimeSlotID]))
	}
	return responses, nil
}

// expandRequest validates the field and range and expands it to 30-minute
// intervals
func (s *pricingService) expandRequest(ctx context.Context, fieldID string, dayOfWeek int, startTime, endTime string) (domain.DayOfWeek, []domain.SlotInterval, error) {
	if fieldID == "" {
		return 0, nil, domain.ErrInvalidFieldID
	}
	day := domain.DayOfWeek(dayOfWeek)
	if err := day.Validate(); err != nil {
		return 0, nil, err
	}

	field, err := s.fieldRepo.GetByID(ctx, fieldID)
	if err != nil {
		return 0, nil, err
	}
	if !field.CanBeBooked() {
		return 0, nil, fmt.Errorf("%w: field %s", domain.ErrFieldInactive, fieldID)
	}

	start, end, err := parseInterval(startTime, endTime)
	if err != nil {
		return 0, nil, err
	}
	intervals, err := domain.ExpandRange(start, end)
	if err != nil {
		return 0, nil, err
	}
	return day, intervals, nil
}

// resolveSlots maps each interval to its existing slot or a freshly built one
func (s *pricingService) resolveSlots(ctx context.Context, intervals []domain.SlotInterval) ([]rangeUnit, error) {
	now := s.clock.Now()
	units := make([]rangeUnit, 0, len(intervals))
	for _, interval := range intervals {
		slot, err := s.timeSlotRepo.GetByInterval(ctx, interval.Start, interval.End)
		switch {
		case err == nil:
			units = append(units, rangeUnit{interval: interval, slot: slot})
		case errors.Is(err, domain.ErrTimeSlotNotFound):
			units = append(units, rangeUnit{
				interval: interval,
				slot: &domain.TimeSlot{
					ID:        uuid.New().String(),
					StartTime: interval.Start,
					EndTime:   interval.End,
					IsActive:  true,
					CreatedAt: now,
				},
				isNew: true,
			})
		default:
			return nil, err
		}
	}
	return units, nil
}

func parseInterval(startTime, endTime string) (domain.TimeOfDay, domain.TimeOfDay, error) {
	start, err := domain.ParseTimeOfDay(startTime)
	if err != nil {
		return 0, 0, err
	}
	end, err := domain.ParseTimeOfDay(endTime)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

var _ PricingService = (*pricingService)(nil)
