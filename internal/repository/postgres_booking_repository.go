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

// PostgresBookingRepository implements BookingRepository using PostgreSQL
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBookingRepository creates a new PostgreSQL booking repository
func NewPostgresBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &PostgresBookingRepository{pool: pool}
}

// Create inserts the booking and one join row per reserved slot in a single
// transaction. The partial unique index over (field, date, slot) rejects a
// concurrent reservation of the same slot.
func (r *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresBookingRepository.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("booking.id", booking.ID),
		attribute.String("field.id", booking.FieldID),
		attribute.Int("time_slot.count", len(booking.TimeSlotIDs)),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertBooking := `
		INSERT INTO bookings (id, user_id, field_id, booking_date, status,
		                      total_price, payment_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.Exec(ctx, insertBooking,
		booking.ID, booking.UserID, booking.FieldID, booking.BookingDate,
		booking.Status.String(), booking.TotalPrice, booking.PaymentID,
		booking.IsActive, booking.CreatedAt, booking.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	insertSlot := `
		INSERT INTO booking_time_slots (booking_id, time_slot_id, field_id, booking_date, released, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
	`
	for _, slotID := range booking.TimeSlotIDs {
		_, err := tx.Exec(ctx, insertSlot,
			booking.ID, slotID, booking.FieldID, booking.BookingDate, booking.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err, constraintSlotHold) {
				return fmt.Errorf("%w: time slot %s", domain.ErrSlotsConflict, slotID)
			}
			span.RecordError(err)
			return fmt.Errorf("failed to insert booking time slot: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByID returns a booking with its reserved slot ids
func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresBookingRepository.GetByID")
	defer span.End()
	span.SetAttributes(attribute.String("booking.id", id))

	query := bookingSelect + ` WHERE id = $1`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	slotQuery := `
		SELECT time_slot_id FROM booking_time_slots WHERE booking_id = $1 ORDER BY time_slot_id
	`
	rows, err := r.pool.Query(ctx, slotQuery, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query booking time slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var slotID string
		if err := rows.Scan(&slotID); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan booking time slot: %w", err)
		}
		booking.TimeSlotIDs = append(booking.TimeSlotIDs, slotID)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate booking time slots: %w", err)
	}

	return booking, nil
}

// ListByUser returns the user's bookings, newest first
func (r *PostgresBookingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresBookingRepository.ListByUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	query := bookingSelect + ` WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}

	return bookings, nil
}

// FindBookedSlotIDs returns which of the given slots are held for the field
// and date by a booking in a blocking status
func (r *PostgresBookingRepository) FindBookedSlotIDs(ctx context.Context, fieldID string, date time.Time, timeSlotIDs []string) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresBookingRepository.FindBookedSlotIDs")
	defer span.End()
	span.SetAttributes(
		attribute.String("field.id", fieldID),
		attribute.Int("time_slot.count", len(timeSlotIDs)),
	)

	query := `
		SELECT DISTINCT bts.time_slot_id
		FROM booking_time_slots bts
		JOIN bookings b ON b.id = bts.booking_id
		WHERE bts.field_id = $1
		  AND bts.booking_date = $2
		  AND bts.released = FALSE
		  AND b.status IN ('pending', 'confirmed', 'completed')
	`
	args := []interface{}{fieldID, date}
	if len(timeSlotIDs) > 0 {
		query += ` AND bts.time_slot_id = ANY($3)`
		args = append(args, timeSlotIDs)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query booked slots: %w", err)
	}
	defer rows.Close()

	var booked []string
	for rows.Next() {
		var slotID string
		if err := rows.Scan(&slotID); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan booked slot: %w", err)
		}
		booked = append(booked, slotID)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate booked slots: %w", err)
	}

	return booked, nil
}

// Cancel transitions a booking to cancelled and releases its join rows
func (r *PostgresBookingRepository) Cancel(ctx context.Context, bookingID string, now time.Time) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresBookingRepository.Cancel")
	defer span.End()
	span.SetAttributes(attribute.String("booking.id", bookingID))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updateQuery := `
		UPDATE bookings
		SET status = 'cancelled', updated_at = $2
		WHERE id = $1 AND status <> 'cancelled'
	`
	tag, err := tx.Exec(ctx, updateQuery, bookingID, now)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Either the booking does not exist or it is already cancelled
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM bookings WHERE id = $1`, bookingID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBookingNotFound
		}
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to check booking status: %w", err)
		}
		return domain.ErrBookingAlreadyCancelled
	}

	releaseQuery := `
		UPDATE booking_time_slots SET released = TRUE WHERE booking_id = $1
	`
	if _, err := tx.Exec(ctx, releaseQuery, bookingID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to release booking time slots: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CancelStalePending cancels every pending booking created at or before the
// cutoff, releasing its slots
func (r *PostgresBookingRepository) CancelStalePending(ctx context.Context, cutoff, now time.Time) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresBookingRepository.CancelStalePending")
	defer span.End()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Re-filters on pending so a booking completed between read and write
	// time is left alone.
	updateQuery := `
		UPDATE bookings
		SET status = 'cancelled', updated_at = $2
		WHERE status = 'pending' AND created_at <= $1
		RETURNING id, user_id, field_id, booking_date, status, total_price,
		          payment_id, is_active, created_at, updated_at
	`

	rows, err := tx.Query(ctx, updateQuery, cutoff, now)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to cancel stale bookings: %w", err)
	}

	var cancelled []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			rows.Close()
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan cancelled booking: %w", err)
		}
		cancelled = append(cancelled, booking)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate cancelled bookings: %w", err)
	}

	if len(cancelled) > 0 {
		ids := make([]string, len(cancelled))
		for i, b := range cancelled {
			ids[i] = b.ID
		}
		releaseQuery := `
			UPDATE booking_time_slots SET released = TRUE WHERE booking_id = ANY($1)
		`
		if _, err := tx.Exec(ctx, releaseQuery, ids); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to release stale booking time slots: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	span.SetAttributes(attribute.Int("booking.cancelled_count", len(cancelled)))
	return cancelled, nil
}

const bookingSelect = `
	SELECT id, user_id, field_id, booking_date, status, total_price,
	       payment_id, is_active, created_at, updated_at
	FROM bookings
`

// scanBooking scans a booking row
func scanBooking(row pgx.Row) (*domain.Booking, error) {
	booking := &domain.Booking{}
	var status string
	var paymentID *string
	if err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.FieldID,
		&booking.BookingDate,
		&status,
		&booking.TotalPrice,
		&paymentID,
		&booking.IsActive,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	); err != nil {
		return nil, err
	}
	booking.Status = domain.BookingStatus(status)
	booking.PaymentID = paymentID
	return booking, nil
}

var _ BookingRepository = (*PostgresBookingRepository)(nil)
