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

// PostgresPaymentRepository implements PaymentRepository using PostgreSQL
type PostgresPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPaymentRepository creates a new PostgreSQL payment repository
func NewPostgresPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &PostgresPaymentRepository{pool: pool}
}

// GetByBookingID returns the payment settling a booking
func (r *PostgresPaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresPaymentRepository.GetByBookingID")
	defer span.End()
	span.SetAttributes(attribute.String("booking.id", bookingID))

	query := `
		SELECT id, booking_id, amount, method, status, transaction_code, paid_at, created_at
		FROM payments
		WHERE booking_id = $1
	`

	payment := &domain.Payment{}
	var method, status string
	err := r.pool.QueryRow(ctx, query, bookingID).Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.Amount,
		&method,
		&status,
		&payment.TransactionCode,
		&payment.PaidAt,
		&payment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	payment.Method = domain.PaymentMethod(method)
	payment.Status = domain.PaymentStatus(status)

	return payment, nil
}

// SettleBooking inserts the payment and completes its booking in one
// transaction. The status guard on the booking update makes the loser of a
// race with cancellation or a replayed callback roll back cleanly.
func (r *PostgresPaymentRepository) SettleBooking(ctx context.Context, payment *domain.Payment) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresPaymentRepository.SettleBooking")
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.id", payment.ID),
		attribute.String("booking.id", payment.BookingID),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updateQuery := `
		UPDATE bookings
		SET status = 'completed', payment_id = $2, updated_at = $3
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := tx.Exec(ctx, updateQuery, payment.BookingID, payment.ID, payment.PaidAt)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to complete booking: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Disambiguate: missing booking vs a booking no longer pending
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM bookings WHERE id = $1`, payment.BookingID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBookingNotFound
		}
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to check booking status: %w", err)
		}
		switch domain.BookingStatus(status) {
		case domain.BookingStatusCancelled:
			return domain.ErrBookingAlreadyCancelled
		case domain.BookingStatusCompleted:
			return domain.ErrBookingAlreadyCompleted
		default:
			return domain.ErrBookingNotPending
		}
	}

	insertQuery := `
		INSERT INTO payments (id, booking_id, amount, method, status, transaction_code, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.Exec(ctx, insertQuery,
		payment.ID, payment.BookingID, payment.Amount,
		string(payment.Method), string(payment.Status),
		payment.TransactionCode, payment.PaidAt, payment.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, constraintPaymentPerBook) {
			return domain.ErrPaymentAlreadyRecorded
		}
		span.RecordError(err)
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

var _ PaymentRepository = (*PostgresPaymentRepository)(nil)
