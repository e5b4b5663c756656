package postgres

import (
	"context"
	"database/sql"
	"errors"

	"loadhitch/internal/domain"
	"loadhitch/internal/repository"
)

// LoadRepository is a PostgreSQL implementation of repository.LoadRepository.
type LoadRepository struct {
	db *sql.DB
}

// NewLoadRepository creates a new PostgreSQL load repository.
func NewLoadRepository(db *sql.DB) *LoadRepository {
	return &LoadRepository{db: db}
}

// GetByID retrieves a load by ID.
func (r *LoadRepository) GetByID(ctx context.Context, id string) (*domain.Load, error) {
	query := `
		SELECT id, customer_id, assigned_driver_id, title, description,
		       category, weight_kg, pickup_lat, pickup_lng,
		       delivery_lat, delivery_lng, created_at
		FROM loads WHERE id = $1
	`

	var (
		load     domain.Load
		driverID sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&load.ID,
		&load.CustomerID,
		&driverID,
		&load.Title,
		&load.Description,
		&load.Category,
		&load.WeightKg,
		&load.PickupLat,
		&load.PickupLng,
		&load.DeliveryLat,
		&load.DeliveryLng,
		&load.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	load.AssignedDriverID = driverID.String
	return &load, nil
}
