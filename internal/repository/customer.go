package repository

import (
	"context"

	"loadhitch/internal/domain"
)

// CustomerRepository defines read access to customers.
type CustomerRepository interface {
	// GetByID retrieves a customer by ID.
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}
