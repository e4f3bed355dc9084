package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/courtside/field-booking/internal/domain"
	"github.com/courtside/field-booking/pkg/telemetry"
)

// PostgresPricingRepository implements PricingRepository using PostgreSQL
type PostgresPricingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPricingRepository creates a new PostgreSQL pricing repository
func NewPostgresPricingRepository(pool *pgxpool.Pool) PricingRepository {
	return &PostgresPricingRepository{pool: pool}
}

// GetByKey returns the pricing row for (field, slot, day) regardless of its
// active flag
func (r *PostgresPricingRepository) GetByKey(ctx context.Context, fieldID, timeSlotID string, day domain.DayOfWeek) (*domain.Pricing, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresPricingRepository.GetByKey")
	defer span.End()
	span.SetAttributes(
		attribute.String("field.id", fieldID),
		attribute.String("time_slot.id", timeSlotID),
		attribute.Int("pricing.day_of_week", int(day)),
	)

	query := pricingSelect + `
		WHERE field_id = $1 AND time_slot_id = $2 AND day_of_week = $3
	`

	pricing, err := scanPricing(r.pool.QueryRow(ctx, query, fieldID, timeSlotID, int(day)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPricingNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get pricing: %w", err)
	}

	return pricing, nil
}

// GetActiveForSlots returns active pricing rows for the given field, day and
// slot set
func (r *PostgresPricingRepository) GetActiveForSlots(ctx context.Context, fieldID string, timeSlotIDs []string, day domain.DayOfWeek) ([]*domain.Pricing, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresPricingRepository.GetActiveForSlots")
	defer span.End()
	span.SetAttributes(
		attribute.String("field.id", fieldID),
		attribute.Int("time_slot.count", len(timeSlotIDs)),
	)

	if len(timeSlotIDs) == 0 {
		return nil, nil
	}

	query := pricingSelect + `
		WHERE field_id = $1 AND time_slot_id = ANY($2) AND day_of_week = $3 AND is_active = TRUE
	`

	return r.queryPricings(ctx, query, fieldID, timeSlotIDs, int(day))
}

// GetActiveByFieldAndDay returns active pricing rows for a field and day,
// ordered by slot start time
func (r *PostgresPricingRepository) GetActiveByFieldAndDay(ctx context.Context, fieldID string, day domain.DayOfWeek) ([]*domain.Pricing, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresPricingRepository.GetActiveByFieldAndDay")
	defer span.End()
	span.SetAttributes(
		attribute.String("field.id", fieldID),
		attribute.Int("pricing.day_of_week", int(day)),
	)

	query := `
		SELECT p.id, p.field_id, p.time_slot_id, p.day_of_week, p.price,
		       p.range_start_minute, p.range_end_minute, p.is_active,
		       p.created_at, p.updated_at
		FROM pricings p
		JOIN time_slots ts ON ts.id = p.time_slot_id
		WHERE p.field_id = $1 AND p.day_of_week = $2 AND p.is_active = TRUE
		ORDER BY ts.start_minute
	`

	return r.queryPricings(ctx, query, fieldID, int(day))
}

// GetActiveByField returns all active pricing rows for a field, optionally
// filtered by day
func (r *PostgresPricingRepository) GetActiveByField(ctx context.Context, fieldID string, day *domain.DayOfWeek) ([]*domain.Pricing, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresPricingRepository.GetActiveByField")
	defer span.End()
	span.SetAttributes(attribute.String("field.id", fieldID))

	if day != nil {
		return r.GetActiveByFieldAndDay(ctx, fieldID, *day)
	}

	query := `
		SELECT p.id, p.field_id, p.time_slot_id, p.day_of_week, p.price,
		       p.range_start_minute, p.range_end_minute, p.is_active,
		       p.created_at, p.updated_at
		FROM pricings p
		JOIN time_slots ts ON ts.id = p.time_slot_id
		WHERE p.field_id = $1 AND p.is_active = TRUE
		ORDER BY p.day_of_week, ts.start_minute
	`

	return r.queryPricings(ctx, query, fieldID)
}

// CreateRangeBatch inserts the missing time slots and all pricing rows in
// one transaction
func (r *PostgresPricingRepository) CreateRangeBatch(ctx context.Context, newSlots []*domain.TimeSlot, pricings []*domain.Pricing) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresPricingRepository.CreateRangeBatch")
	defer span.End()
	span.SetAttributes(
		attribute.Int("time_slot.new_count", len(newSlots)),
		attribute.Int("pricing.count", len(pricings)),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := ensureTimeSlots(ctx, tx, newSlots, pricings); err != nil {
		span.RecordError(err)
		return err
	}

	insertQuery := `
		INSERT INTO pricings (id, field_id, time_slot_id, day_of_week, price,
		                      range_start_minute, range_end_minute, is_active,
		                      created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for _, p := range pricings {
		_, err := tx.Exec(ctx, insertQuery,
			p.ID, p.FieldID, p.TimeSlotID, int(p.DayOfWeek), p.Price,
			p.RangeStart.Minutes(), p.RangeEnd.Minutes(), p.IsActive,
			p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err, constraintPricingKey) {
				return fmt.Errorf("%w: field %s, day %d", domain.ErrPricingConflict, p.FieldID, p.DayOfWeek)
			}
			span.RecordError(err)
			return fmt.Errorf("failed to insert pricing: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpsertRangeBatch inserts the missing time slots, then inserts or
// overwrites pricing rows per (field, slot, day) key
func (r *PostgresPricingRepository) UpsertRangeBatch(ctx context.Context, newSlots []*domain.TimeSlot, pricings []*domain.Pricing) (*UpsertResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresPricingRepository.UpsertRangeBatch")
	defer span.End()
	span.SetAttributes(
		attribute.Int("time_slot.new_count", len(newSlots)),
		attribute.Int("pricing.count", len(pricings)),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := ensureTimeSlots(ctx, tx, newSlots, pricings); err != nil {
		span.RecordError(err)
		return nil, err
	}

	upsertQuery := `
		INSERT INTO pricings (id, field_id, time_slot_id, day_of_week, price,
		                      range_start_minute, range_end_minute, is_active,
		                      created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8, $9)
		ON CONFLICT ON CONSTRAINT uq_pricings_field_slot_day DO UPDATE
		SET price = EXCLUDED.price,
		    range_start_minute = EXCLUDED.range_start_minute,
		    range_end_minute = EXCLUDED.range_end_minute,
		    is_active = TRUE,
		    updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0) AS inserted
	`

	result := &UpsertResult{}
	for _, p := range pricings {
		var inserted bool
		err := tx.QueryRow(ctx, upsertQuery,
			p.ID, p.FieldID, p.TimeSlotID, int(p.DayOfWeek), p.Price,
			p.RangeStart.Minutes(), p.RangeEnd.Minutes(),
			p.CreatedAt, p.UpdatedAt,
		).Scan(&inserted)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to upsert pricing: %w", err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

// DeactivateRange soft-deletes every pricing row exactly matching the range
func (r *PostgresPricingRepository) DeactivateRange(ctx context.Context, fieldID string, day domain.DayOfWeek, rangeStart, rangeEnd domain.TimeOfDay, now time.Time) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresPricingRepository.DeactivateRange")
	defer span.End()
	span.SetAttributes(
		attribute.String("field.id", fieldID),
		attribute.Int("pricing.day_of_week", int(day)),
		attribute.String("pricing.range", domain.SlotInterval{Start: rangeStart, End: rangeEnd}.String()),
	)

	query := `
		UPDATE pricings
		SET is_active = FALSE, updated_at = $5
		WHERE field_id = $1 AND day_of_week = $2
		  AND range_start_minute = $3 AND range_end_minute = $4
		  AND is_active = TRUE
	`

	tag, err := r.pool.Exec(ctx, query, fieldID, int(day), rangeStart.Minutes(), rangeEnd.Minutes(), now)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to deactivate pricing range: %w", err)
	}

	span.SetAttributes(attribute.Int64("pricing.deactivated", tag.RowsAffected()))
	return tag.RowsAffected(), nil
}

// ensureTimeSlots inserts missing slots inside the transaction. A concurrent
// creator may have inserted the same interval first; in that case the
// existing slot id is adopted and the pending pricing rows are remapped to it.
func ensureTimeSlots(ctx context.Context, tx pgx.Tx, newSlots []*domain.TimeSlot, pricings []*domain.Pricing) error {
	insertQuery := `
		INSERT INTO time_slots (id, start_minute, end_minute, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT uq_time_slots_interval DO NOTHING
	`
	selectQuery := `
		SELECT id FROM time_slots WHERE start_minute = $1 AND end_minute = $2
	`

	for _, slot := range newSlots {
		tag, err := tx.Exec(ctx, insertQuery,
			slot.ID, slot.StartTime.Minutes(), slot.EndTime.Minutes(), slot.IsActive, slot.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert time slot: %w", err)
		}
		if tag.RowsAffected() > 0 {
			continue
		}

		var existingID string
		if err := tx.QueryRow(ctx, selectQuery, slot.StartTime.Minutes(), slot.EndTime.Minutes()).Scan(&existingID); err != nil {
			return fmt.Errorf("failed to resolve existing time slot: %w", err)
		}
		for _, p := range pricings {
			if p.TimeSlotID == slot.ID {
				p.TimeSlotID = existingID
			}
		}
		slot.ID = existingID
	}

	return nil
}

const pricingSelect = `
	SELECT id, field_id, time_slot_id, day_of_week, price,
	       range_start_minute, range_end_minute, is_active,
	       created_at, updated_at
	FROM pricings
`

func (r *PostgresPricingRepository) queryPricings(ctx context.Context, query string, args ...interface{}) ([]*domain.Pricing, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pricings: %w", err)
	}
	defer rows.Close()

	var pricings []*domain.Pricing
	for rows.Next() {
		pricing, err := scanPricing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pricing: %w", err)
		}
		pricings = append(pricings, pricing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pricings: %w", err)
	}

	return pricings, nil
}

// scanPricing scans a pricing row, converting stored minute offsets into
// TimeOfDay values.
func scanPricing(row pgx.Row) (*domain.Pricing, error) {
	pricing := &domain.Pricing{}
	var day int16
	var rangeStart, rangeEnd int16
	if err := row.Scan(
		&pricing.ID,
		&pricing.FieldID,
		&pricing.TimeSlotID,
		&day,
		&pricing.Price,
		&rangeStart,
		&rangeEnd,
		&pricing.IsActive,
		&pricing.CreatedAt,
		&pricing.UpdatedAt,
	); err != nil {
		return nil, err
	}
	pricing.DayOfWeek = domain.DayOfWeek(day)
	pricing.RangeStart = domain.TimeOfDay(rangeStart)
	pricing.RangeEnd = domain.TimeOfDay(rangeEnd)
	return pricing, nil
}

var _ PricingRepository = (*PostgresPricingRepository)(nil)
