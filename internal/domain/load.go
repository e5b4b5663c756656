package domain

import "time"

// Load categories with configured pricing tiers.
const (
	CategoryElectronics  = "Electronics"
	CategoryFurniture    = "Furniture"
	CategoryFood         = "Food"
	CategoryConstruction = "Construction"
	CategoryVehicles     = "Vehicles"
	CategoryChemicals    = "Chemicals"
	CategoryGeneral      = "General"
	CategoryFragile      = "Fragile"
)

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Load represents a freight delivery job. The payment core reads loads but
// never mutates them; they are owned by the listings side of the platform.
type Load struct {
	ID               string
	CustomerID       string
	AssignedDriverID string // empty until a driver takes the load

	Title       string
	Description string
	Category    string
	WeightKg    int

	PickupLat   float64
	PickupLng   float64
	DeliveryLat float64
	DeliveryLng float64

	CreatedAt time.Time
}
