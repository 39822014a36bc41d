package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dwikikusuma/cosmo-market/pkg/tracing"
	"github.com/segmentio/kafka-go"
)

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher writes events keyed by aggregate id so each aggregate's
// events land on one partition in order.
type KafkaPublisher struct {
	producer Producer
	topic    string
}

func NewKafkaPublisher(producer Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// NewKafkaWriter builds the writer used in production. Topic is set per message.
func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, events ...Event) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msg, err := p.message(ctx, e)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := p.producer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d events: %w", len(msgs), err)
	}
	return nil
}

func (p *KafkaPublisher) message(ctx context.Context, e Event) (kafka.Message, error) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal %s: %w", e.Type, err)
	}

	headers := []kafka.Header{{Key: "event_type", Value: []byte(e.Type)}}
	headers = tracing.InjectKafkaHeaders(ctx, headers)

	return kafka.Message{
		Topic:   p.topic,
		Key:     []byte(e.AggregateID.String()),
		Value:   payload,
		Headers: headers,
		Time:    e.OccurredAt,
	}, nil
}
