package brokersnapshot

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"fleetflow/internal/config"
)

func TestProfile_DeterministicPerMCNumber(t *testing.T) {
	client := NewClient(config.BrokerSnapshotConfig{Enabled: true})
	ctx := context.Background()

	first, err := client.Profile(ctx, "MC-123456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := client.Profile(ctx, "123456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("profiles differ for the same MC number (-first +second):\n%s", diff)
	}
	if first.CreditScore < 550 || first.CreditScore > 800 {
		t.Errorf("credit score out of range: %d", first.CreditScore)
	}
	if first.AveragePaymentDays < 20 || first.AveragePaymentDays > 65 {
		t.Errorf("payment days out of range: %d", first.AveragePaymentDays)
	}
}

func TestProfile_Disabled(t *testing.T) {
	client := NewClient(config.BrokerSnapshotConfig{Enabled: false})
	if _, err := client.Profile(context.Background(), "MC-1"); !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
}

func TestProfile_InvalidMCNumber(t *testing.T) {
	client := NewClient(config.BrokerSnapshotConfig{Enabled: true})
	if _, err := client.Profile(context.Background(), "MC-"); !errors.Is(err, ErrInvalidMCNumber) {
		t.Errorf("expected ErrInvalidMCNumber, got %v", err)
	}
}
