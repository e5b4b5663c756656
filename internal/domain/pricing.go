package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RateTier is an operator-configured pricing row for a load category and
// weight band. Bands are half-open [MinWeightKg, MaxWeightKg); a nil max
// means the band is unbounded above.
type RateTier struct {
	ID          string
	Category    string
	BaseFare    decimal.Decimal
	PricePerKm  decimal.Decimal
	PricePerKg  decimal.Decimal
	MinWeightKg int
	MaxWeightKg *int
	// SurgeBaseline is the tier's baseline multiplier before the
	// time-of-day rule applies. Operators keep it at 1.0.
	SurgeBaseline decimal.Decimal

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Contains reports whether the tier's weight band covers the given weight.
func (t *RateTier) Contains(weightKg int) bool {
	if weightKg < t.MinWeightKg {
		return false
	}
	return t.MaxWeightKg == nil || weightKg < *t.MaxWeightKg
}

// PriceEstimate is the result of a quote. It is a pure computation output;
// callers may persist it onto a load but the pricing core never does.
type PriceEstimate struct {
	BaseFare       decimal.Decimal
	DistanceCost   decimal.Decimal
	WeightCost     decimal.Decimal
	SurgeCharge    decimal.Decimal
	SubTotal       decimal.Decimal
	PlatformFee    decimal.Decimal
	TotalPrice     decimal.Decimal
	DriverEarnings decimal.Decimal

	DistanceKm      float64
	WeightKg        int
	Category        string
	SurgeMultiplier decimal.Decimal
}

// Breakdown renders the estimate as a customer-facing text block.
func (e *PriceEstimate) Breakdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Base Fare: R%s\n", e.BaseFare.StringFixed(2))
	fmt.Fprintf(&b, "Distance (%.1f km): R%s\n", e.DistanceKm, e.DistanceCost.StringFixed(2))
	fmt.Fprintf(&b, "Weight (%d kg): R%s\n", e.WeightKg, e.WeightCost.StringFixed(2))
	if e.SurgeCharge.IsPositive() {
		fmt.Fprintf(&b, "Surge (%sx): R%s\n", e.SurgeMultiplier.StringFixed(2), e.SurgeCharge.StringFixed(2))
	}
	fmt.Fprintf(&b, "Subtotal: R%s\n", e.SubTotal.StringFixed(2))
	fmt.Fprintf(&b, "Platform Fee (15%%): R%s\n", e.PlatformFee.StringFixed(2))
	fmt.Fprintf(&b, "TOTAL: R%s\n", e.TotalPrice.StringFixed(2))
	fmt.Fprintf(&b, "Driver Earns: R%s", e.DriverEarnings.StringFixed(2))
	return b.String()
}
