package service

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"loadhitch/internal/domain"
)

const (
	earthRadiusKm = 6371.0

	// roadFactor scales straight-line distance up to an approximate road
	// distance when the routing provider is unavailable.
	roadFactor = 1.3

	defaultRouteTimeout = 5 * time.Second
)

// RouteSource resolves road distance through an external routing provider.
type RouteSource interface {
	RoadDistanceKm(ctx context.Context, pickup, delivery domain.Coordinate) (float64, error)
}

// DistanceEstimator returns a road-distance estimate between two points.
// The external provider is best-effort: any error or timeout falls back to
// a haversine estimate, so Estimate never fails for finite inputs.
type DistanceEstimator struct {
	source  RouteSource
	timeout time.Duration
	logger  *logrus.Logger
}

// NewDistanceEstimator creates a new DistanceEstimator. source may be nil,
// in which case every estimate uses the geometric fallback.
func NewDistanceEstimator(source RouteSource, timeout time.Duration, logger *logrus.Logger) *DistanceEstimator {
	if timeout <= 0 {
		timeout = defaultRouteTimeout
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DistanceEstimator{source: source, timeout: timeout, logger: logger}
}

// Estimate returns the estimated road distance in kilometers.
func (e *DistanceEstimator) Estimate(ctx context.Context, pickup, delivery domain.Coordinate) float64 {
	if e.source != nil {
		routeCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		km, err := e.source.RoadDistanceKm(routeCtx, pickup, delivery)
		if err == nil && km >= 0 {
			return km
		}
		e.logger.WithFields(logrus.Fields{
			"pickup":   pickup,
			"delivery": delivery,
			"error":    err,
		}).Warn("routing provider failed, falling back to haversine estimate")
	}

	return Haversine(pickup, delivery) * roadFactor
}

// Haversine returns the great-circle distance in kilometers between two
// coordinates.
func Haversine(a, b domain.Coordinate) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}
