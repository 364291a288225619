// Package messaging publishes domain events and notifications to brokers.
package messaging

import (
	"context"

	"go.uber.org/zap"
)

// Publisher is the interface used by services to publish messages.
type Publisher interface {
	Publish(ctx context.Context, key string, value any) error
	Close() error
}

// NopPublisher discards every message.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, key string, value any) error { return nil }
func (NopPublisher) Close() error                                             { return nil }

// LogPublisher writes messages to a structured log instead of a broker.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the message at info level.
func (p *LogPublisher) Publish(ctx context.Context, key string, value any) error {
	p.logger.Info("message published", zap.String("key", key), zap.Any("value", value))
	return nil
}

// Close is a no-op.
func (p *LogPublisher) Close() error { return nil }

var (
	_ Publisher = NopPublisher{}
	_ Publisher = (*LogPublisher)(nil)
	_ Publisher = (*KafkaPublisher)(nil)
	_ Publisher = (*RabbitMQPublisher)(nil)
)
