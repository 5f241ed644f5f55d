package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Message headers set on every forwarded event
const (
	HeaderEventType     = "event_type"
	HeaderAggregateType = "aggregate_type"
)

// Envelope is the JSON value written to Kafka for one domain event
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope serializes event into an Envelope
func NewEnvelope(event shared.DomainEvent) (Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s: %w", event.EventType(), err)
	}
	return Envelope{
		EventID:       event.EventID().String(),
		EventType:     event.EventType(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID().String(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
	}, nil
}

// MessageWriter is the part of kafka.Writer the publisher needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures the Kafka writer
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

// KafkaPublisher forwards domain events to a Kafka topic, keyed by aggregate
// ID so events of one aggregate stay ordered within a partition.
type KafkaPublisher struct {
	writer MessageWriter
	topic  string
	logger *zap.Logger
}

// NewKafkaPublisher creates a publisher backed by a kafka.Writer
func NewKafkaPublisher(cfg KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           cfg.BatchTimeout,
		WriteTimeout:           10 * time.Second,
		AllowAutoTopicCreation: true,
	}
	return NewKafkaPublisherWithWriter(writer, cfg.Topic, logger)
}

// NewKafkaPublisherWithWriter creates a publisher over an existing writer
func NewKafkaPublisherWithWriter(writer MessageWriter, topic string, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaPublisher{
		writer: writer,
		topic:  topic,
		logger: logger.Named("kafka"),
	}
}

// Publish writes events as one batch
func (p *KafkaPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		envelope, err := NewEnvelope(event)
		if err != nil {
			return err
		}
		value, err := json.Marshal(envelope)
		if err != nil {
			return fmt.Errorf("failed to marshal envelope: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(envelope.AggregateID),
			Value: value,
			Time:  envelope.OccurredAt,
			Headers: []kafka.Header{
				{Key: HeaderEventType, Value: []byte(envelope.EventType)},
				{Key: HeaderAggregateType, Value: []byte(envelope.AggregateType)},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.Error("Failed to forward events",
			zap.String("topic", p.topic),
			zap.Int("count", len(msgs)),
			zap.Error(err),
		)
		return fmt.Errorf("failed to write events to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Ensure KafkaPublisher implements EventPublisher
var _ shared.EventPublisher = (*KafkaPublisher)(nil)
