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

// PostgresFieldRepository implements FieldRepository using PostgreSQL
type PostgresFieldRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresFieldRepository creates a new PostgreSQL field repository
func NewPostgresFieldRepository(pool *pgxpool.Pool) FieldRepository {
	return &PostgresFieldRepository{pool: pool}
}

// GetByID returns a field by id
func (r *PostgresFieldRepository) GetByID(ctx context.Context, id string) (*domain.Field, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresFieldRepository.GetByID")
	defer span.End()
	span.SetAttributes(attribute.String("field.id", id))

	query := `
		SELECT id, name, price_per_hour, is_active, created_at, updated_at
		FROM fields
		WHERE id = $1
	`

	field := &domain.Field{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&field.ID,
		&field.Name,
		&field.PricePerHour,
		&field.IsActive,
		&field.CreatedAt,
		&field.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFieldNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get field: %w", err)
	}

	return field, nil
}

var _ FieldRepository = (*PostgresFieldRepository)(nil)
