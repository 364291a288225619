package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// QuotaWindow is a fixed request budget over a time window.
type QuotaWindow struct {
	Name   string // minute, hour, day
	Period time.Duration
	Limit  int64
}

// QuotaStore tracks fixed-window request counters in Redis.
type QuotaStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewQuotaStore creates a new QuotaStore.
func NewQuotaStore(client *redis.Client) *QuotaStore {
	return &QuotaStore{client: client, now: time.Now}
}

// Reserve counts one request against every window. It returns false when
// any window is already exhausted; in that case nothing is counted.
func (s *QuotaStore) Reserve(ctx context.Context, name string, limits []QuotaWindow) (bool, error) {
	usage, err := s.Usage(ctx, name, limits)
	if err != nil {
		return false, err
	}
	for _, w := range limits {
		if w.Limit > 0 && usage[w.Name] >= w.Limit {
			return false, nil
		}
	}

	pipe := s.client.TxPipeline()
	for _, w := range limits {
		key := s.windowKey(name, w)
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, w.Period)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return true, nil
}

// Usage returns the current count for each window keyed by window name.
func (s *QuotaStore) Usage(ctx context.Context, name string, limits []QuotaWindow) (map[string]int64, error) {
	pipe := s.client.Pipeline()
	cmds := make(map[string]*redis.StringCmd, len(limits))
	for _, w := range limits {
		cmds[w.Name] = pipe.Get(ctx, s.windowKey(name, w))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	usage := make(map[string]int64, len(limits))
	for window, cmd := range cmds {
		n, err := cmd.Int64()
		if err != nil && err != redis.Nil {
			return nil, err
		}
		usage[window] = n
	}

	return usage, nil
}

func (s *QuotaStore) windowKey(name string, w QuotaWindow) string {
	bucket := s.now().UnixNano() / int64(w.Period)
	return fmt.Sprintf("quota:%s:%s:%d", name, w.Name, bucket)
}
