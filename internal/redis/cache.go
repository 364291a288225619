package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fleetflow/internal/domain"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	DriverCacheTTL = 30 * time.Second // Driver status can change frequently
)

// Key prefixes
const (
	carrierCachePrefix = "cache:carrier:"
	driverCachePrefix  = "cache:driver:"
)

// CachedDriver represents a cached driver entity.
type CachedDriver struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Phone            string  `json:"phone"`
	Status           string  `json:"status"`
	EquipmentType    string  `json:"equipment_type"`
	MaxDistanceMiles float64 `json:"max_distance_miles"`
	MinRatePerMile   float64 `json:"min_rate_per_mile"`
}

// GetCarrier retrieves a carrier lookup from cache. A miss returns nil, nil.
func (s *CacheStore) GetCarrier(ctx context.Context, key string) (*domain.CarrierData, error) {
	data, err := s.client.Get(ctx, carrierCachePrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var carrier domain.CarrierData
	if err := json.Unmarshal(data, &carrier); err != nil {
		return nil, err
	}
	return &carrier, nil
}

// SetCarrier stores a carrier lookup in cache.
func (s *CacheStore) SetCarrier(ctx context.Context, key string, carrier *domain.CarrierData, ttl time.Duration) error {
	data, err := json.Marshal(carrier)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, carrierCachePrefix+key, data, ttl).Err()
}

// SetDriver stores a driver in cache.
func (s *CacheStore) SetDriver(ctx context.Context, driver *CachedDriver) error {
	data, err := json.Marshal(driver)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, driverCachePrefix+driver.ID, data, DriverCacheTTL).Err()
}

// InvalidateDriver removes a driver from cache.
func (s *CacheStore) InvalidateDriver(ctx context.Context, driverID string) error {
	return s.client.Del(ctx, driverCachePrefix+driverID).Err()
}

// GetDriversBatch retrieves multiple drivers from cache using pipeline.
// Returns a map of driverID -> CachedDriver, and a slice of missing IDs.
func (s *CacheStore) GetDriversBatch(ctx context.Context, driverIDs []string) (map[string]*CachedDriver, []string, error) {
	if len(driverIDs) == 0 {
		return make(map[string]*CachedDriver), nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make(map[string]*redis.StringCmd, len(driverIDs))
	for _, id := range driverIDs {
		cmds[id] = pipe.Get(ctx, driverCachePrefix+id)
	}

	// Missing keys surface as redis.Nil on the individual commands.
	_, _ = pipe.Exec(ctx)

	result := make(map[string]*CachedDriver)
	var missing []string

	for id, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			missing = append(missing, id)
			continue
		}

		var driver CachedDriver
		if err := json.Unmarshal(data, &driver); err != nil {
			missing = append(missing, id)
			continue
		}
		result[id] = &driver
	}

	return result, missing, nil
}

// AcquireLoadLock attempts to acquire a lock for load matching.
// This prevents concurrent matchers from offering the same load twice.
func (s *CacheStore) AcquireLoadLock(ctx context.Context, loadID string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, fmt.Sprintf("lock:load:%s", loadID), "1", ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// ReleaseLoadLock releases the lock for a load.
func (s *CacheStore) ReleaseLoadLock(ctx context.Context, loadID string) error {
	return s.client.Del(ctx, fmt.Sprintf("lock:load:%s", loadID)).Err()
}
