package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	"flowdocs/internal/models"
)

// AuditPublisher records portal events on a Kafka topic. Auditing is optional:
// callers that do not need it should use NopPublisher instead of a nil value.
type AuditPublisher interface {
	Publish(ctx context.Context, event *models.AuditEvent) error
}

// Publisher sends audit events to the configured Kafka topic.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Publisher on top of an initialized KafkaClient.
func NewPublisher(client *KafkaClient) *Publisher {
	return &Publisher{writer: client.Writer}
}

// Publish serializes the event as JSON and writes it, keyed by user so that
// one user's trail stays ordered within a partition.
func (p *Publisher) Publish(ctx context.Context, event *models.AuditEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.UserID), 10)),
		Value: jsonData,
	})
	if err != nil {
		return fmt.Errorf("failed to write audit event to kafka: %w", err)
	}

	return nil
}

// NopPublisher discards every event. Used when auditing is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *models.AuditEvent) error { return nil }
