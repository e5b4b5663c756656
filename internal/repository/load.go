package repository

import (
	"context"

	"loadhitch/internal/domain"
)

// LoadRepository defines read access to loads. The payment core only ever
// reads loads; it never creates or mutates them.
type LoadRepository interface {
	// GetByID retrieves a load by ID.
	GetByID(ctx context.Context, id string) (*domain.Load, error)
}
