// Package brokersnapshot provides carrier credit and payment data.
//
// The upstream integration is not available yet; Client returns a
// deterministic profile derived from the MC number so the same carrier
// always gets the same answer.
package brokersnapshot

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"

	"fleetflow/internal/config"
	"fleetflow/internal/domain"
)

var (
	// ErrDisabled is returned when the integration is turned off.
	ErrDisabled = errors.New("brokersnapshot disabled")

	// ErrInvalidMCNumber is returned for an MC number without digits.
	ErrInvalidMCNumber = errors.New("invalid mc number")
)

var paymentHistories = []string{"Excellent", "Good", "Good", "Fair", "Poor"}

// Client fetches BrokerSnapshot financial profiles.
type Client struct {
	enabled bool
}

// NewClient creates a new BrokerSnapshot client.
func NewClient(cfg config.BrokerSnapshotConfig) *Client {
	return &Client{enabled: cfg.Enabled}
}

// Profile returns the financial profile for an MC number.
func (c *Client) Profile(ctx context.Context, mcNumber string) (*domain.FinancialProfile, error) {
	if !c.enabled {
		return nil, ErrDisabled
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, mcNumber)
	if digits == "" {
		return nil, ErrInvalidMCNumber
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(digits))
	seed := h.Sum32()

	return &domain.FinancialProfile{
		CreditScore:        550 + int(seed%251), // 550-800
		PaymentHistory:     paymentHistories[(seed>>8)%uint32(len(paymentHistories))],
		AveragePaymentDays: 20 + int((seed>>16)%46), // 20-65
		TrackingEnabled:    (seed>>24)%4 != 0,
	}, nil
}
