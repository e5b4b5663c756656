package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// RateTierCacheTTL bounds staleness of cached tiers. Tiers are
// operator-configured reference data and change rarely.
const RateTierCacheTTL = 5 * time.Minute

const rateTierCachePrefix = "cache:tiers:"

// CachedRateTier is the cache representation of a rate tier.
type CachedRateTier struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	BaseFare    string `json:"base_fare"`
	PricePerKm  string `json:"price_per_km"`
	PricePerKg  string `json:"price_per_kg"`
	MinWeightKg int    `json:"min_weight_kg"`
	MaxWeightKg *int   `json:"max_weight_kg,omitempty"`
}

// GetRateTiers retrieves the cached tier list for a category. A nil slice
// with nil error is a cache miss.
func (s *CacheStore) GetRateTiers(ctx context.Context, category string) ([]CachedRateTier, error) {
	key := rateTierCachePrefix + category
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var tiers []CachedRateTier
	if err := json.Unmarshal(data, &tiers); err != nil {
		return nil, err
	}
	return tiers, nil
}

// SetRateTiers stores the tier list for a category.
func (s *CacheStore) SetRateTiers(ctx context.Context, category string, tiers []CachedRateTier) error {
	key := rateTierCachePrefix + category
	data, err := json.Marshal(tiers)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, RateTierCacheTTL).Err()
}

// InvalidateRateTiers removes the cached tier list for a category.
func (s *CacheStore) InvalidateRateTiers(ctx context.Context, category string) error {
	key := rateTierCachePrefix + category
	return s.client.Del(ctx, key).Err()
}
