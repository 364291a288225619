package app

import (
	"go.uber.org/zap"

	"fleetflow/internal/config"
	"fleetflow/internal/messaging"
)

// NewEventPublisher returns the Kafka domain event publisher when
// enabled, otherwise a no-op publisher.
func NewEventPublisher(cfg config.KafkaConfig, logger *zap.Logger) messaging.Publisher {
	if !cfg.Enabled {
		logger.Info("kafka disabled, domain events are dropped")
		return messaging.NopPublisher{}
	}
	logger.Info("publishing domain events to kafka",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic),
	)
	return messaging.NewKafkaPublisher(cfg.Brokers, cfg.Topic)
}

// NewNotificationDispatcher returns the RabbitMQ notification publisher
// when enabled and reachable, otherwise a structured-log dispatcher.
func NewNotificationDispatcher(cfg config.RabbitMQConfig, logger *zap.Logger) messaging.Publisher {
	if !cfg.Enabled {
		return messaging.NewLogPublisher(logger)
	}

	pub, err := messaging.NewRabbitMQPublisher(cfg.URL, cfg.Queue)
	if err != nil {
		logger.Warn("rabbitmq unavailable, logging notifications instead", zap.Error(err))
		return messaging.NewLogPublisher(logger)
	}
	logger.Info("dispatching notifications to rabbitmq", zap.String("queue", cfg.Queue))
	return pub
}
