package fmcsa

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Client health states.
const (
	StatusHealthy       = "HEALTHY"
	StatusRateLimited   = "RATE_LIMITED"
	StatusNotConfigured = "NOT_CONFIGURED"
)

// Metrics are per-process request counters.
type Metrics struct {
	TotalRequests      int64         `json:"total_requests"`
	SuccessfulRequests int64         `json:"successful_requests"`
	FailedRequests     int64         `json:"failed_requests"`
	CacheHits          int64         `json:"cache_hits"`
	CacheMisses        int64         `json:"cache_misses"`
	AvgResponseTime    time.Duration `json:"avg_response_time"`
	LastError          string        `json:"last_error,omitempty"`
	LastErrorAt        time.Time     `json:"last_error_at,omitempty"`
}

// QuotaStatus reports usage against one request window.
type QuotaStatus struct {
	Limit     int64 `json:"limit"`
	Used      int64 `json:"used"`
	Remaining int64 `json:"remaining"`
}

// Status is a snapshot of the client's configuration, quota and metrics.
type Status struct {
	Status       string                 `json:"status"`
	Configured   bool                   `json:"configured"`
	APIKeyPrefix string                 `json:"api_key_prefix,omitempty"`
	Metrics      Metrics                `json:"metrics"`
	Quota        map[string]QuotaStatus `json:"quota"`
	CacheHitRate float64                `json:"cache_hit_rate"`
}

// Status returns the current client status.
func (c *Client) Status(ctx context.Context) Status {
	c.mu.Lock()
	metrics := c.metrics
	c.mu.Unlock()

	st := Status{
		Status:     StatusHealthy,
		Configured: c.cfg.Configured(),
		Metrics:    metrics,
		Quota:      make(map[string]QuotaStatus),
	}
	if !st.Configured {
		st.Status = StatusNotConfigured
	} else if len(c.cfg.APIKey) > 8 {
		st.APIKeyPrefix = c.cfg.APIKey[:8] + "..."
	}

	if lookups := metrics.CacheHits + metrics.CacheMisses; lookups > 0 {
		st.CacheHitRate = float64(metrics.CacheHits) / float64(lookups)
	}

	if c.quota == nil {
		return st
	}
	usage, err := c.quota.Usage(ctx, quotaName, c.windows())
	if err != nil {
		c.logger.Warn("fmcsa quota usage unavailable", zap.Error(err))
		return st
	}
	for _, w := range c.windows() {
		used := usage[w.Name]
		remaining := w.Limit - used
		if remaining < 0 {
			remaining = 0
		}
		st.Quota[w.Name] = QuotaStatus{Limit: w.Limit, Used: used, Remaining: remaining}
		if st.Configured && w.Limit > 0 && remaining == 0 {
			st.Status = StatusRateLimited
		}
	}
	return st
}

func (c *Client) record(err error, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.TotalRequests++
	if err != nil {
		c.metrics.FailedRequests++
		c.metrics.LastError = err.Error()
		c.metrics.LastErrorAt = time.Now().UTC()
	} else {
		c.metrics.SuccessfulRequests++
	}
	total := c.metrics.AvgResponseTime*time.Duration(c.metrics.TotalRequests-1) + elapsed
	c.metrics.AvgResponseTime = total / time.Duration(c.metrics.TotalRequests)
}
