package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fleetflow/internal/messaging"
)

// Domain event types.
const (
	EventLoadRequested          = "load.requested"
	EventLoadOffered            = "load.offered"
	EventLoadAccepted           = "load.accepted"
	EventLoadDeclined           = "load.declined"
	EventOfferExpired           = "load.offer_expired"
	EventShipperAccountUpserted = "shipper.account_upserted"
	EventCarrierAssessed        = "carrier.assessed"
)

// Event is the envelope written to the event stream.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// EventBus publishes domain events. Failures are logged and never
// returned to the caller.
type EventBus struct {
	publisher messaging.Publisher
	logger    *zap.Logger
}

// NewEventBus creates a new EventBus.
func NewEventBus(publisher messaging.Publisher, logger *zap.Logger) *EventBus {
	return &EventBus{publisher: publisher, logger: logger}
}

// Emit publishes an event keyed by the aggregate ID.
func (b *EventBus) Emit(ctx context.Context, eventType, key string, payload any) {
	if b == nil || b.publisher == nil {
		return
	}
	evt := Event{Type: eventType, Key: key, OccurredAt: time.Now().UTC(), Payload: payload}
	if err := b.publisher.Publish(ctx, key, evt); err != nil {
		b.logger.Warn("failed to publish event",
			zap.String("type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
