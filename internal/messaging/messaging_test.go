package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	skafka "github.com/segmentio/kafka-go"
)

type recordingWriter struct {
	msgs []skafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...skafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

type recordingChannel struct {
	key string
	msg amqp.Publishing
}

func (c *recordingChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	c.key = key
	c.msg = msg
	return nil
}

func (c *recordingChannel) Close() error { return nil }

func TestKafkaPublisher_WritesKeyedJSON(t *testing.T) {
	w := &recordingWriter{}
	p := NewKafkaPublisherWithWriter(w)

	if err := p.Publish(context.Background(), "GWF-1", map[string]string{"type": "load.requested"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "GWF-1" {
		t.Errorf("unexpected key %s", w.msgs[0].Key)
	}
	var body map[string]string
	if err := json.Unmarshal(w.msgs[0].Value, &body); err != nil || body["type"] != "load.requested" {
		t.Errorf("unexpected value %s", w.msgs[0].Value)
	}
}

func TestKafkaPublisher_PropagatesWriteErrors(t *testing.T) {
	p := NewKafkaPublisherWithWriter(&recordingWriter{err: errors.New("broker down")})
	if err := p.Publish(context.Background(), "k", 1); err == nil {
		t.Error("expected write error")
	}
}

func TestRabbitMQPublisher_PublishesPersistentMessage(t *testing.T) {
	chn := &recordingChannel{}
	p := NewRabbitMQPublisherWithChannel(chn, "fleetflow.notifications")

	if err := p.Publish(context.Background(), "n-1", map[string]string{"title": "Load offered"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chn.key != "fleetflow.notifications" {
		t.Errorf("expected queue routing key, got %s", chn.key)
	}
	if chn.msg.DeliveryMode != amqp.Persistent {
		t.Error("expected persistent delivery")
	}
	if chn.msg.MessageId != "n-1" {
		t.Errorf("expected message id n-1, got %s", chn.msg.MessageId)
	}
}
