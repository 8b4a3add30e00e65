package producer

import (
	"context"

	"go-expense/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
)

// publishEvent mengirim satu event approval lifecycle. Key memakai
// expense id (aggregate) supaya urutan event per expense terjaga
// dalam satu partisi.
func publishEvent(ctx context.Context, writer *kafkago.Writer, event kafka.OutboxEvent) error {
	if err := kafka.ValidateOutboxEvent(event); err != nil {
		return err
	}

	msg := kafkago.Message{
		Topic: event.Topic,
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "aggregate_type", Value: []byte(event.AggregateType)},
		},
	}

	return writer.WriteMessages(ctx, msg)
}
