package fmcsa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"fleetflow/internal/config"
	"fleetflow/internal/domain"
	"fleetflow/internal/redis"
)

const quotaName = "fmcsa"

// Cache stores carrier lookups between requests.
type Cache interface {
	GetCarrier(ctx context.Context, key string) (*domain.CarrierData, error)
	SetCarrier(ctx context.Context, key string, carrier *domain.CarrierData, ttl time.Duration) error
}

// Quota enforces request windows across service instances.
type Quota interface {
	Reserve(ctx context.Context, name string, limits []redis.QuotaWindow) (bool, error)
	Usage(ctx context.Context, name string, limits []redis.QuotaWindow) (map[string]int64, error)
}

// Client queries the FMCSA QC carrier API.
type Client struct {
	cfg          config.FMCSAConfig
	httpClient   *http.Client
	cache        Cache
	quota        Quota
	logger       *zap.Logger
	retryInitial time.Duration
	retryMax     time.Duration

	mu      sync.Mutex
	metrics Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryInterval overrides the initial and maximum retry backoff.
func WithRetryInterval(initial, max time.Duration) Option {
	return func(c *Client) {
		c.retryInitial = initial
		c.retryMax = max
	}
}

// NewClient creates a new FMCSA client. cache and quota may be nil.
func NewClient(cfg config.FMCSAConfig, cache Cache, quota Quota, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		cache:        cache,
		quota:        quota,
		logger:       logger,
		retryInitial: time.Second,
		retryMax:     10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if !cfg.Configured() {
		logger.Warn("FMCSA API key not configured, serving mock carrier data")
	}
	return c
}

// SearchByDOT looks up a carrier by USDOT number.
func (c *Client) SearchByDOT(ctx context.Context, dotNumber string) (*domain.CarrierData, error) {
	cleaned, err := cleanIdentifier(dotNumber)
	if err != nil {
		return nil, err
	}
	return c.search(ctx, "dot:"+cleaned, cleaned, false, "/services/carriers/"+cleaned)
}

// SearchByMC looks up a carrier by MC docket number.
func (c *Client) SearchByMC(ctx context.Context, mcNumber string) (*domain.CarrierData, error) {
	cleaned, err := cleanIdentifier(mcNumber)
	if err != nil {
		return nil, err
	}
	return c.search(ctx, "mc:"+cleaned, cleaned, true, "/services/carriers/docket-number/"+cleaned)
}

func (c *Client) search(ctx context.Context, cacheKey, identifier string, byMC bool, path string) (*domain.CarrierData, error) {
	if !c.cfg.Configured() {
		return mockCarrier(identifier, byMC), nil
	}

	if carrier := c.fromCache(ctx, cacheKey); carrier != nil {
		return carrier, nil
	}

	if c.quota != nil {
		ok, err := c.quota.Reserve(ctx, quotaName, c.windows())
		if err != nil {
			// Quota store unavailable - proceed without throttling.
			c.logger.Warn("fmcsa quota check failed", zap.Error(err))
		} else if !ok {
			return nil, ErrQuotaExceeded
		}
	}

	start := time.Now()
	carrier, err := c.fetchWithRetry(ctx, path)
	c.record(err, time.Since(start))
	if err != nil {
		return nil, err
	}

	carrier.RetrievedAt = time.Now().UTC()
	if c.cache != nil {
		if err := c.cache.SetCarrier(ctx, cacheKey, carrier, c.cfg.CacheTTL); err != nil {
			c.logger.Warn("failed to cache carrier", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return carrier, nil
}

func (c *Client) fromCache(ctx context.Context, key string) *domain.CarrierData {
	if c.cache == nil {
		return nil
	}
	carrier, err := c.cache.GetCarrier(ctx, key)
	if err != nil {
		c.logger.Warn("carrier cache read failed", zap.String("key", key), zap.Error(err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if carrier == nil {
		c.metrics.CacheMisses++
		return nil
	}
	c.metrics.CacheHits++
	carrier.DataSource = domain.DataSourceCache
	return carrier
}

// fetchWithRetry retries transient failures with exponential backoff
// (1s doubling, capped at 10s) up to MaxRetries attempts.
func (c *Client) fetchWithRetry(ctx context.Context, path string) (*domain.CarrierData, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.retryInitial
	eb.MaxInterval = c.retryMax
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0

	attempts := c.cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(attempts-1)), ctx)

	var carrier *domain.CarrierData
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		var err error
		carrier, err = c.fetch(ctx, path)
		if err != nil && !errors.Is(err, ErrCarrierNotFound) {
			c.logger.Warn("fmcsa request failed",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		return err
	}, policy)
	if err != nil {
		if errors.Is(err, ErrCarrierNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return carrier, nil
}

func (c *Client) fetch(ctx context.Context, path string) (*domain.CarrierData, error) {
	endpoint := c.cfg.BaseURL + path + "?webKey=" + url.QueryEscape(c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "FleetFlow/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(ErrCarrierNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("fmcsa returned status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, backoff.Permanent(fmt.Errorf("fmcsa returned status %d", resp.StatusCode))
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to decode fmcsa response: %w", err))
	}
	if len(body.Content) == 0 {
		return nil, backoff.Permanent(ErrCarrierNotFound)
	}

	raw, err := decodeCarrier(body.Content[0])
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	return parseCarrier(raw), nil
}

// decodeCarrier accepts both a bare record and the {"carrier": {...}} wrapper.
func decodeCarrier(data json.RawMessage) (rawCarrier, error) {
	var wrapped struct {
		Carrier *rawCarrier `json:"carrier"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Carrier != nil {
		return *wrapped.Carrier, nil
	}
	var raw rawCarrier
	if err := json.Unmarshal(data, &raw); err != nil {
		return rawCarrier{}, fmt.Errorf("failed to decode carrier record: %w", err)
	}
	return raw, nil
}

func (c *Client) windows() []redis.QuotaWindow {
	return []redis.QuotaWindow{
		{Name: "minute", Period: time.Minute, Limit: int64(c.cfg.PerMinute)},
		{Name: "hour", Period: time.Hour, Limit: int64(c.cfg.PerHour)},
		{Name: "day", Period: 24 * time.Hour, Limit: int64(c.cfg.PerDay)},
	}
}
