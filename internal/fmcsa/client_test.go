package fmcsa

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"fleetflow/internal/config"
	"fleetflow/internal/domain"
	"fleetflow/internal/redis"
)

type memoryCache struct {
	mu       sync.Mutex
	carriers map[string]*domain.CarrierData
}

func newMemoryCache() *memoryCache {
	return &memoryCache{carriers: make(map[string]*domain.CarrierData)}
}

func (m *memoryCache) GetCarrier(ctx context.Context, key string) (*domain.CarrierData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carriers[key]
	if !ok {
		return nil, nil
	}
	copy := *c
	return &copy, nil
}

func (m *memoryCache) SetCarrier(ctx context.Context, key string, carrier *domain.CarrierData, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *carrier
	m.carriers[key] = &copy
	return nil
}

type fixedQuota struct {
	allow bool
	calls int32
}

func (q *fixedQuota) Reserve(ctx context.Context, name string, limits []redis.QuotaWindow) (bool, error) {
	atomic.AddInt32(&q.calls, 1)
	return q.allow, nil
}

func (q *fixedQuota) Usage(ctx context.Context, name string, limits []redis.QuotaWindow) (map[string]int64, error) {
	used := int64(0)
	if !q.allow {
		used = limits[0].Limit
	}
	return map[string]int64{"minute": used}, nil
}

const carrierJSON = `{"content":[{"carrier":{
	"dotNumber": 1234567,
	"legalName": "Acme Freight LLC",
	"phyStreet": "1 Main St", "phyCity": "Dallas", "phyState": "TX", "phyZipcode": "75001",
	"telephone": "(214) 555-0100",
	"operatingStatus": "AUTHORIZED FOR Property",
	"safetyRating": "Conditional",
	"totalPowerUnits": "10",
	"totalDrivers": 12,
	"crashTotal": "3",
	"crashFatal": 0,
	"inspectionTotal": 10,
	"inspectionOOS": "1",
	"cargoCarried": "General Freight, Machinery"
}}]}`

func testConfig(baseURL string) config.FMCSAConfig {
	return config.FMCSAConfig{
		APIKey:     "test-key-123456",
		BaseURL:    baseURL,
		Timeout:    time.Second,
		MaxRetries: 3,
		CacheTTL:   time.Hour,
		PerMinute:  60,
		PerHour:    1000,
		PerDay:     10000,
	}
}

func newTestClient(cfg config.FMCSAConfig, cache Cache, quota Quota) *Client {
	return NewClient(cfg, cache, quota, zap.NewNop(), WithRetryInterval(time.Millisecond, 5*time.Millisecond))
}

func TestSearchByDOT_ParsesCarrier(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("webKey")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(carrierJSON))
	}))
	defer srv.Close()

	client := newTestClient(testConfig(srv.URL), nil, nil)
	carrier, err := client.SearchByDOT(context.Background(), "USDOT 1234567")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/services/carriers/1234567" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if gotKey != "test-key-123456" {
		t.Errorf("expected webKey to be sent, got %q", gotKey)
	}
	if carrier.CompanyName != "Acme Freight LLC" {
		t.Errorf("unexpected company name %q", carrier.CompanyName)
	}
	if carrier.DOTNumber != "1234567" {
		t.Errorf("unexpected dot number %q", carrier.DOTNumber)
	}
	if carrier.PhysicalAddress != "1 Main St, Dallas, TX 75001" {
		t.Errorf("unexpected address %q", carrier.PhysicalAddress)
	}
	if carrier.OperatingStatus != domain.OperatingStatusActive {
		t.Errorf("expected ACTIVE, got %s", carrier.OperatingStatus)
	}
	if carrier.SafetyRating != domain.SafetyRatingConditional {
		t.Errorf("expected CONDITIONAL, got %s", carrier.SafetyRating)
	}
	if carrier.PowerUnits != 10 || carrier.Drivers != 12 {
		t.Errorf("unexpected fleet size %d/%d", carrier.PowerUnits, carrier.Drivers)
	}
	// Conditional +20, crash rate 0.3 +15.
	if carrier.SafetyRiskScore != 35 || carrier.SafetyRiskLevel != domain.SafetyRiskMedium {
		t.Errorf("expected score 35 MEDIUM, got %d %s", carrier.SafetyRiskScore, carrier.SafetyRiskLevel)
	}
	if len(carrier.CargoCarried) != 2 {
		t.Errorf("expected 2 cargo entries, got %v", carrier.CargoCarried)
	}
	if carrier.DataSource != domain.DataSourceFMCSA {
		t.Errorf("expected FMCSA_API source, got %s", carrier.DataSource)
	}
}

func TestSearchByMC_UsesDocketEndpoint(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(carrierJSON))
	}))
	defer srv.Close()

	client := newTestClient(testConfig(srv.URL), nil, nil)
	if _, err := client.SearchByMC(context.Background(), "MC-987654"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/services/carriers/docket-number/987654" {
		t.Errorf("unexpected path %s", gotPath)
	}
}

func TestSearch_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(carrierJSON))
	}))
	defer srv.Close()

	client := newTestClient(testConfig(srv.URL), nil, nil)
	if _, err := client.SearchByDOT(context.Background(), "1234567"); err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestSearch_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(testConfig(srv.URL), nil, nil)
	_, err := client.SearchByDOT(context.Background(), "1234567")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}

	st := client.Status(context.Background())
	if st.Metrics.FailedRequests != 1 || st.Metrics.LastError == "" {
		t.Errorf("expected failure to be recorded, got %+v", st.Metrics)
	}
}

func TestSearch_NotFoundIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(testConfig(srv.URL), nil, nil)
	_, err := client.SearchByDOT(context.Background(), "1234567")
	if !errors.Is(err, ErrCarrierNotFound) {
		t.Fatalf("expected ErrCarrierNotFound, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}

func TestSearch_ServesFromCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(carrierJSON))
	}))
	defer srv.Close()

	client := newTestClient(testConfig(srv.URL), newMemoryCache(), nil)
	ctx := context.Background()

	if _, err := client.SearchByDOT(ctx, "1234567"); err != nil {
		t.Fatalf("first lookup failed: %v", err)
	}
	carrier, err := client.SearchByDOT(ctx, "1234567")
	if err != nil {
		t.Fatalf("second lookup failed: %v", err)
	}

	if calls != 1 {
		t.Errorf("expected one upstream call, got %d", calls)
	}
	if carrier.DataSource != domain.DataSourceCache {
		t.Errorf("expected CACHE source, got %s", carrier.DataSource)
	}
}

func TestSearch_QuotaExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should not be called when quota is exhausted")
	}))
	defer srv.Close()

	quota := &fixedQuota{allow: false}
	client := newTestClient(testConfig(srv.URL), nil, quota)

	_, err := client.SearchByDOT(context.Background(), "1234567")
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if st := client.Status(context.Background()); st.Status != StatusRateLimited {
		t.Errorf("expected RATE_LIMITED status, got %s", st.Status)
	}
}

func TestSearch_UnconfiguredServesMock(t *testing.T) {
	client := newTestClient(config.FMCSAConfig{APIKey: "your_fmcsa_api_key_here"}, nil, nil)

	carrier, err := client.SearchByMC(context.Background(), "MC-555")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if carrier.DataSource != domain.DataSourceMock {
		t.Errorf("expected MOCK source, got %s", carrier.DataSource)
	}
	if carrier.MCNumber != "555" {
		t.Errorf("expected mock to echo MC number, got %s", carrier.MCNumber)
	}
	if st := client.Status(context.Background()); st.Status != StatusNotConfigured {
		t.Errorf("expected NOT_CONFIGURED, got %s", st.Status)
	}
}

func TestSearch_InvalidIdentifier(t *testing.T) {
	client := newTestClient(testConfig("http://unused"), nil, nil)
	for _, id := range []string{"", "MC-", "123456789"} {
		if _, err := client.SearchByDOT(context.Background(), id); !errors.Is(err, ErrInvalidIdentifier) {
			t.Errorf("%q: expected ErrInvalidIdentifier, got %v", id, err)
		}
	}
}

func TestMapSafetyRating(t *testing.T) {
	tests := map[string]domain.SafetyRating{
		"Satisfactory":   domain.SafetyRatingSatisfactory,
		"UNSATISFACTORY": domain.SafetyRatingUnsatisfactory,
		"conditional":    domain.SafetyRatingConditional,
		"":               domain.SafetyRatingNotRated,
		"None":           domain.SafetyRatingNotRated,
	}
	for in, want := range tests {
		if got := mapSafetyRating(in); got != want {
			t.Errorf("mapSafetyRating(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestApplySafetyScore_Critical(t *testing.T) {
	c := &domain.CarrierData{
		SafetyRating:    domain.SafetyRatingUnsatisfactory,
		OperatingStatus: domain.OperatingStatusOutOfService,
		PowerUnits:      5,
	}
	ApplySafetyScore(c)
	if c.SafetyRiskScore != 90 || c.SafetyRiskLevel != domain.SafetyRiskCritical {
		t.Errorf("expected 90 CRITICAL, got %d %s", c.SafetyRiskScore, c.SafetyRiskLevel)
	}
	if len(c.SafetyRecommendations) != 2 {
		t.Errorf("expected 2 recommendations, got %v", c.SafetyRecommendations)
	}
}
