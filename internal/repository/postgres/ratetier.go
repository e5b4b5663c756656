package postgres

import (
	"context"
	"database/sql"

	"loadhitch/internal/domain"
)

// RateTierRepository is a PostgreSQL implementation of repository.RateTierRepository.
type RateTierRepository struct {
	db *sql.DB
}

// NewRateTierRepository creates a new PostgreSQL rate tier repository.
func NewRateTierRepository(db *sql.DB) *RateTierRepository {
	return &RateTierRepository{db: db}
}

// ListByCategory retrieves the tiers for a category ordered by ascending
// minimum weight.
func (r *RateTierRepository) ListByCategory(ctx context.Context, category string) ([]*domain.RateTier, error) {
	query := `
		SELECT id, category, base_fare, price_per_km, price_per_kg,
		       min_weight_kg, max_weight_kg, surge_baseline, created_at, updated_at
		FROM rate_tiers
		WHERE category = $1
		ORDER BY min_weight_kg ASC
	`

	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []*domain.RateTier
	for rows.Next() {
		var (
			tier        domain.RateTier
			maxWeightKg sql.NullInt64
			updatedAt   sql.NullTime
		)
		err := rows.Scan(
			&tier.ID,
			&tier.Category,
			&tier.BaseFare,
			&tier.PricePerKm,
			&tier.PricePerKg,
			&tier.MinWeightKg,
			&maxWeightKg,
			&tier.SurgeBaseline,
			&tier.CreatedAt,
			&updatedAt,
		)
		if err != nil {
			return nil, err
		}
		if maxWeightKg.Valid {
			max := int(maxWeightKg.Int64)
			tier.MaxWeightKg = &max
		}
		if updatedAt.Valid {
			tier.UpdatedAt = &updatedAt.Time
		}
		tiers = append(tiers, &tier)
	}
	return tiers, rows.Err()
}

// Count returns the total number of configured tiers.
func (r *RateTierRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rate_tiers`).Scan(&count)
	return count, err
}

// Create persists a new rate tier.
func (r *RateTierRepository) Create(ctx context.Context, tier *domain.RateTier) error {
	query := `
		INSERT INTO rate_tiers (
			id, category, base_fare, price_per_km, price_per_kg,
			min_weight_kg, max_weight_kg, surge_baseline, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var maxWeightKg sql.NullInt64
	if tier.MaxWeightKg != nil {
		maxWeightKg = sql.NullInt64{Int64: int64(*tier.MaxWeightKg), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		tier.ID,
		tier.Category,
		tier.BaseFare,
		tier.PricePerKm,
		tier.PricePerKg,
		tier.MinWeightKg,
		maxWeightKg,
		tier.SurgeBaseline,
		tier.CreatedAt,
	)

	return err
}
