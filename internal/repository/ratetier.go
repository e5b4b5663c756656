package repository

import (
	"context"

	"loadhitch/internal/domain"
)

// RateTierRepository defines access to operator-configured rate tiers.
type RateTierRepository interface {
	// ListByCategory retrieves the tiers for a category ordered by
	// ascending minimum weight.
	ListByCategory(ctx context.Context, category string) ([]*domain.RateTier, error)

	// Count returns the total number of configured tiers.
	Count(ctx context.Context) (int, error)

	// Create persists a new rate tier.
	Create(ctx context.Context, tier *domain.RateTier) error
}
