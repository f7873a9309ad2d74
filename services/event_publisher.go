package services

import (
	"context"
	"strconv"

	"github.com/segmentio/kafka-go"

	"runcrew-api/models"
)

// EventPublisher writes domain events to the message broker. The outbox
// relayer job is its only caller, so broker downtime never blocks an
// engine operation.
type EventPublisher struct {
	writer *kafka.Writer
	topic  string
}

func NewEventPublisher(brokers []string, topic string) *EventPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return &EventPublisher{writer: w, topic: topic}
}

func (p *EventPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// Publish sends one outbox row, keyed by event id so replays land on the
// same partition.
func (p *EventPublisher) Publish(ctx context.Context, event *models.DomainEvent) error {
	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(event.ID, 10)),
		Value: []byte(event.Payload),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
