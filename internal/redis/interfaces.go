package redis

import (
	"context"
	"time"

	"fleetflow/internal/domain"
)

// LocationStoreInterface defines the interface for driver location operations.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error
	FindNearbyDrivers(ctx context.Context, lat, lng, radiusMiles float64) ([]DriverLocation, error)
	RemoveLocation(ctx context.Context, driverID string) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireDriverLock(ctx context.Context, driverID string, ttl time.Duration) (bool, error)
	ReleaseDriverLock(ctx context.Context, driverID string) error
	AcquireAccountLock(ctx context.Context, email string, ttl time.Duration) (bool, error)
	ReleaseAccountLock(ctx context.Context, email string) error
}

// CarrierCacheInterface defines the interface for caching carrier lookups.
type CarrierCacheInterface interface {
	GetCarrier(ctx context.Context, key string) (*domain.CarrierData, error)
	SetCarrier(ctx context.Context, key string, carrier *domain.CarrierData, ttl time.Duration) error
}

// DriverCacheInterface defines the interface for short-lived driver and load-lock caching.
type DriverCacheInterface interface {
	SetDriver(ctx context.Context, driver *CachedDriver) error
	InvalidateDriver(ctx context.Context, driverID string) error
	GetDriversBatch(ctx context.Context, driverIDs []string) (map[string]*CachedDriver, []string, error)
	AcquireLoadLock(ctx context.Context, loadID string, ttl time.Duration) (bool, error)
	ReleaseLoadLock(ctx context.Context, loadID string) error
}

// QuotaStoreInterface defines the interface for upstream API quota windows.
type QuotaStoreInterface interface {
	Reserve(ctx context.Context, name string, limits []QuotaWindow) (bool, error)
	Usage(ctx context.Context, name string, limits []QuotaWindow) (map[string]int64, error)
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
	_ CarrierCacheInterface  = (*CacheStore)(nil)
	_ DriverCacheInterface   = (*CacheStore)(nil)
	_ QuotaStoreInterface    = (*QuotaStore)(nil)
)
