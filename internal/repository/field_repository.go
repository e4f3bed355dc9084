package repository

import (
	"context"

	"github.com/courtside/field-booking/internal/domain"
)

// FieldRepository provides read access to fields. Fields are managed by an
// admin surface outside this service.
type FieldRepository interface {
	// GetByID returns a field by id, or domain.ErrFieldNotFound
	GetByID(ctx context.Context, id string) (*domain.Field, error)
}
