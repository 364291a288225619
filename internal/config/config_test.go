package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.FMCSA.MaxRetries != 3 {
		t.Errorf("expected 3 FMCSA retries, got %d", cfg.FMCSA.MaxRetries)
	}
	if cfg.FMCSA.CacheTTL != time.Hour {
		t.Errorf("expected 1h FMCSA cache TTL, got %v", cfg.FMCSA.CacheTTL)
	}
	if cfg.Redis.PoolSize != 20 || cfg.Redis.DialTimeout != 5*time.Second {
		t.Errorf("expected redis pool 20 / dial 5s, got %d / %v", cfg.Redis.PoolSize, cfg.Redis.DialTimeout)
	}
	if cfg.Matching.OfferTTL != 5*time.Minute {
		t.Errorf("expected 5m offer TTL, got %v", cfg.Matching.OfferTTL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("FMCSA_API_KEY", "abc123")
	t.Setenv("FMCSA_LIMIT_PER_MINUTE", "5")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("MATCHING_INTERVAL", "2s")
	t.Setenv("NEW_RELIC_ENABLED", "true")

	cfg := Load()

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if !cfg.FMCSA.Configured() {
		t.Error("expected FMCSA to be configured")
	}
	if cfg.FMCSA.PerMinute != 5 {
		t.Errorf("expected per-minute limit 5, got %d", cfg.FMCSA.PerMinute)
	}
	if diff := cmp.Diff([]string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers); diff != "" {
		t.Errorf("kafka brokers mismatch (-want +got):\n%s", diff)
	}
	if cfg.Matching.Interval != 2*time.Second {
		t.Errorf("expected 2s matching interval, got %v", cfg.Matching.Interval)
	}
	if !cfg.NewRelic.Enabled {
		t.Error("expected New Relic to be enabled")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("SERVER_READ_TIMEOUT", "soon")

	cfg := Load()

	if cfg.Redis.DB != 0 {
		t.Errorf("expected fallback redis db 0, got %d", cfg.Redis.DB)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("expected fallback read timeout, got %v", cfg.Server.ReadTimeout)
	}
}

func TestFMCSAConfig_PlaceholderKeyIsNotConfigured(t *testing.T) {
	cfg := FMCSAConfig{APIKey: "your_fmcsa_api_key_here"}
	if cfg.Configured() {
		t.Error("placeholder key should not count as configured")
	}
}
