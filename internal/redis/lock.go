package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireDriverLock attempts to acquire a lock for the given driver.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireDriverLock(ctx context.Context, driverID string, ttl time.Duration) (bool, error) {
	return s.acquire(ctx, fmt.Sprintf("lock:driver:%s", driverID), ttl)
}

// ReleaseDriverLock releases the lock for the given driver.
func (s *LockStore) ReleaseDriverLock(ctx context.Context, driverID string) error {
	return s.client.Del(ctx, fmt.Sprintf("lock:driver:%s", driverID)).Err()
}

// AcquireAccountLock serializes account upserts for one email address.
func (s *LockStore) AcquireAccountLock(ctx context.Context, email string, ttl time.Duration) (bool, error) {
	return s.acquire(ctx, accountLockKey(email), ttl)
}

// ReleaseAccountLock releases the account lock for an email address.
func (s *LockStore) ReleaseAccountLock(ctx context.Context, email string) error {
	return s.client.Del(ctx, accountLockKey(email)).Err()
}

func (s *LockStore) acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func accountLockKey(email string) string {
	return "lock:account:" + strings.ToLower(strings.TrimSpace(email))
}
