package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/courtside/field-booking/internal/domain"
	"github.com/courtside/field-booking/pkg/telemetry"
)

// PostgresTimeSlotRepository implements TimeSlotRepository using PostgreSQL
type PostgresTimeSlotRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTimeSlotRepository creates a new PostgreSQL time slot repository
func NewPostgresTimeSlotRepository(pool *pgxpool.Pool) TimeSlotRepository {
	return &PostgresTimeSlotRepository{pool: pool}
}

// GetByID returns a time slot by id
func (r *PostgresTimeSlotRepository) GetByID(ctx context.Context, id string) (*domain.TimeSlot, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresTimeSlotRepository.GetByID")
	defer span.End()
	span.SetAttributes(attribute.String("time_slot.id", id))

	query := `
		SELECT id, start_minute, end_minute, is_active, created_at
		FROM time_slots
		WHERE id = $1
	`

	slot, err := scanTimeSlot(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTimeSlotNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get time slot: %w", err)
	}

	return slot, nil
}

// GetByIDs returns the time slots matching the given ids
func (r *PostgresTimeSlotRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.TimeSlot, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresTimeSlotRepository.GetByIDs")
	defer span.End()
	span.SetAttributes(attribute.Int("time_slot.count", len(ids)))

	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, start_minute, end_minute, is_active, created_at
		FROM time_slots
		WHERE id = ANY($1)
		ORDER BY start_minute
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query time slots: %w", err)
	}
	defer rows.Close()

	var slots []*domain.TimeSlot
	for rows.Next() {
		slot, err := scanTimeSlot(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan time slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate time slots: %w", err)
	}

	return slots, nil
}

// GetByInterval returns the slot with the exact (start,end) pair
func (r *PostgresTimeSlotRepository) GetByInterval(ctx context.Context, start, end domain.TimeOfDay) (*domain.TimeSlot, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresTimeSlotRepository.GetByInterval")
	defer span.End()
	span.SetAttributes(attribute.String("time_slot.interval", domain.SlotInterval{Start: start, End: end}.String()))

	query := `
		SELECT id, start_minute, end_minute, is_active, created_at
		FROM time_slots
		WHERE start_minute = $1 AND end_minute = $2
	`

	slot, err := scanTimeSlot(r.pool.QueryRow(ctx, query, start.Minutes(), end.Minutes()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTimeSlotNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get time slot by interval: %w", err)
	}

	return slot, nil
}

// scanTimeSlot scans a time slot row, converting the stored minute offsets
// into TimeOfDay values.
func scanTimeSlot(row pgx.Row) (*domain.TimeSlot, error) {
	slot := &domain.TimeSlot{}
	var startMinute, endMinute int16
	if err := row.Scan(
		&slot.ID,
		&startMinute,
		&endMinute,
		&slot.IsActive,
		&slot.CreatedAt,
	); err != nil {
		return nil, err
	}
	slot.StartTime = domain.TimeOfDay(startMinute)
	slot.EndTime = domain.TimeOfDay(endMinute)
	return slot, nil
}

var _ TimeSlotRepository = (*PostgresTimeSlotRepository)(nil)
