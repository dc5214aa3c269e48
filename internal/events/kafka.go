package events

import (
	"context"
	"fmt"

	"vizin/pkg/kafka"
	"vizin/pkg/middleware"
)

// MessageWriter is satisfied by *kafka.Producer.
type MessageWriter interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaPublisher struct {
	writer MessageWriter
	source string
}

func NewKafkaPublisher(writer MessageWriter, source string) Publisher {
	return &kafkaPublisher{
		writer: writer,
		source: source,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventID(event.ID).
		WithEventType(string(event.Type)).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		return err
	}

	if err := p.writer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}
