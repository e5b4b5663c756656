package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"loadhitch/internal/domain"
	"loadhitch/internal/redis"
	"loadhitch/internal/repository"
)

// Surge multipliers for the time-of-day rule.
var (
	surgeNone    = decimal.NewFromInt(1)
	surgeMorning = decimal.NewFromFloat(1.3) // weekdays 07:00-08:59
	surgeEvening = decimal.NewFromFloat(1.5) // weekdays 16:00-18:59
)

// PricingService produces reproducible price quotes from the rate table,
// a road-distance estimate and the time-of-day surge rule.
type PricingService struct {
	tierRepo        repository.RateTierRepository
	cache           *redis.CacheStore
	estimator       *DistanceEstimator
	defaultCategory string
	now             func() time.Time
	location        *time.Location
	logger          *logrus.Logger
}

// NewPricingService creates a new PricingService. cache may be nil. The
// clock and timezone are injected so the surge rule is deterministic under
// test; now defaults to time.Now and location to UTC.
func NewPricingService(
	tierRepo repository.RateTierRepository,
	cache *redis.CacheStore,
	estimator *DistanceEstimator,
	defaultCategory string,
	now func() time.Time,
	location *time.Location,
	logger *logrus.Logger,
) *PricingService {
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PricingService{
		tierRepo:        tierRepo,
		cache:           cache,
		estimator:       estimator,
		defaultCategory: defaultCategory,
		now:             now,
		location:        location,
		logger:          logger,
	}
}

// QuoteRequest contains the inputs for a price quote.
type QuoteRequest struct {
	PickupLat   float64
	PickupLng   float64
	DeliveryLat float64
	DeliveryLng float64
	Category    string
	WeightKg    int
}

// Quote computes a price estimate for a load. Monetary rounding to 2
// decimal places happens only on the final output fields; intermediate
// sums keep full precision.
func (s *PricingService) Quote(ctx context.Context, req QuoteRequest) (*domain.PriceEstimate, error) {
	if req.WeightKg <= 0 {
		return nil, ErrInvalidWeight
	}
	if !finite(req.PickupLat, req.PickupLng, req.DeliveryLat, req.DeliveryLng) {
		return nil, ErrEstimationFailure
	}

	tier, err := s.selectTier(ctx, req.Category, req.WeightKg)
	if err != nil {
		return nil, err
	}

	pickup := domain.Coordinate{Lat: req.PickupLat, Lng: req.PickupLng}
	delivery := domain.Coordinate{Lat: req.DeliveryLat, Lng: req.DeliveryLng}
	distanceKm := s.estimator.Estimate(ctx, pickup, delivery)

	baseFare := tier.BaseFare
	distanceCost := decimal.NewFromFloat(distanceKm).Mul(tier.PricePerKm)
	weightCost := decimal.NewFromInt(int64(req.WeightKg)).Mul(tier.PricePerKg)

	multiplier := SurgeMultiplier(s.now().In(s.location))
	if tier.SurgeBaseline.GreaterThan(multiplier) {
		multiplier = tier.SurgeBaseline
	}

	subTotal := baseFare.Add(distanceCost).Add(weightCost)
	surgeCharge := decimal.Zero
	if multiplier.GreaterThan(surgeNone) {
		surgeCharge = subTotal.Mul(multiplier.Sub(surgeNone))
		subTotal = subTotal.Add(surgeCharge)
	}

	total := subTotal.Round(2)
	platformFee := subTotal.Mul(domain.PlatformFeeRate).Round(2)

	return &domain.PriceEstimate{
		BaseFare:       baseFare.Round(2),
		DistanceCost:   distanceCost.Round(2),
		WeightCost:     weightCost.Round(2),
		SurgeCharge:    surgeCharge.Round(2),
		SubTotal:       total,
		PlatformFee:    platformFee,
		TotalPrice:     total,
		DriverEarnings: total.Sub(platformFee),

		DistanceKm:      distanceKm,
		WeightKg:        req.WeightKg,
		Category:        tier.Category,
		SurgeMultiplier: multiplier,
	}, nil
}

// SurgeMultiplier evaluates the time-of-day surge rule against local
// wall-clock time: no surge on weekends, 1.3x during the 07:00-08:59
// morning rush, 1.5x during the 16:00-18:59 evening rush.
func SurgeMultiplier(local time.Time) decimal.Decimal {
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return surgeNone
	}

	hour := local.Hour()
	switch {
	case hour >= 7 && hour < 9:
		return surgeMorning
	case hour >= 16 && hour < 19:
		return surgeEvening
	default:
		return surgeNone
	}
}

// selectTier picks the first tier whose weight band contains the weight,
// retrying with the default category before giving up.
func (s *PricingService) selectTier(ctx context.Context, category string, weightKg int) (*domain.RateTier, error) {
	tiers, err := s.tiersForCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	for _, tier := range tiers {
		if tier.Contains(weightKg) {
			return tier, nil
		}
	}

	if category != s.defaultCategory {
		s.logger.WithFields(logrus.Fields{
			"category": category,
			"fallback": s.defaultCategory,
		}).Warn("no rate tier for category, trying default")
		return s.selectTier(ctx, s.defaultCategory, weightKg)
	}

	return nil, ErrNoRateTier
}

// tiersForCategory loads a category's tiers, consulting the Redis cache
// first. Cache failures degrade to the repository.
func (s *PricingService) tiersForCategory(ctx context.Context, category string) ([]*domain.RateTier, error) {
	if s.cache != nil {
		cached, err := s.cache.GetRateTiers(ctx, category)
		if err == nil && cached != nil {
			if tiers, ok := tiersFromCache(cached); ok {
				return tiers, nil
			}
		}
	}

	tiers, err := s.tierRepo.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(tiers) > 0 {
		_ = s.cache.SetRateTiers(ctx, category, tiersToCache(tiers))
	}

	return tiers, nil
}

func tiersFromCache(cached []redis.CachedRateTier) ([]*domain.RateTier, bool) {
	tiers := make([]*domain.RateTier, 0, len(cached))
	for _, c := range cached {
		baseFare, err1 := decimal.NewFromString(c.BaseFare)
		perKm, err2 := decimal.NewFromString(c.PricePerKm)
		perKg, err3 := decimal.NewFromString(c.PricePerKg)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, false
		}
		tiers = append(tiers, &domain.RateTier{
			ID:            c.ID,
			Category:      c.Category,
			BaseFare:      baseFare,
			PricePerKm:    perKm,
			PricePerKg:    perKg,
			MinWeightKg:   c.MinWeightKg,
			MaxWeightKg:   c.MaxWeightKg,
			SurgeBaseline: surgeNone,
		})
	}
	return tiers, true
}

func tiersToCache(tiers []*domain.RateTier) []redis.CachedRateTier {
	cached := make([]redis.CachedRateTier, 0, len(tiers))
	for _, t := range tiers {
		cached = append(cached, redis.CachedRateTier{
			ID:          t.ID,
			Category:    t.Category,
			BaseFare:    t.BaseFare.String(),
			PricePerKm:  t.PricePerKm.String(),
			PricePerKg:  t.PricePerKg.String(),
			MinWeightKg: t.MinWeightKg,
			MaxWeightKg: t.MaxWeightKg,
		})
	}
	return cached
}

// SeedDefaultTiers populates the default rate table when no tiers are
// configured yet.
func (s *PricingService) SeedDefaultTiers(ctx context.Context) error {
	count, err := s.tierRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	type seed struct {
		category string
		baseFare string
		perKm    string
		perKg    string
		maxKg    int
		minKg    int
	}

	seeds := []seed{
		{domain.CategoryElectronics, "150.00", "8.50", "2.00", 500, 0},
		{domain.CategoryFurniture, "200.00", "10.00", "1.50", 2000, 0},
		{domain.CategoryFood, "100.00", "7.00", "2.50", 1000, 0},
		{domain.CategoryConstruction, "250.00", "12.00", "1.00", 5000, 0},
		{domain.CategoryVehicles, "500.00", "15.00", "0.50", 10000, 1000},
		{domain.CategoryChemicals, "300.00", "14.00", "3.00", 2000, 0},
		{domain.CategoryGeneral, "120.00", "8.00", "1.50", 10000, 0},
		{domain.CategoryFragile, "180.00", "9.50", "2.20", 800, 0},
	}

	for _, sd := range seeds {
		maxKg := sd.maxKg
		tier := &domain.RateTier{
			ID:            uuid.New().String(),
			Category:      sd.category,
			BaseFare:      decimal.RequireFromString(sd.baseFare),
			PricePerKm:    decimal.RequireFromString(sd.perKm),
			PricePerKg:    decimal.RequireFromString(sd.perKg),
			MinWeightKg:   sd.minKg,
			MaxWeightKg:   &maxKg,
			SurgeBaseline: surgeNone,
			CreatedAt:     s.now(),
		}
		if err := s.tierRepo.Create(ctx, tier); err != nil {
			return err
		}
	}

	// A previous deployment may have cached empty tier lists; drop them so
	// the seeds are visible immediately.
	if s.cache != nil {
		for _, sd := range seeds {
			if err := s.cache.InvalidateRateTiers(ctx, sd.category); err != nil {
				s.logger.WithError(err).WithField("category", sd.category).
					Warn("failed to invalidate cached rate tiers")
			}
		}
	}

	s.logger.WithField("count", len(seeds)).Info("seeded default rate tiers")
	return nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
