// Package events publishes pipeline lifecycle events to Kafka so other
// services can follow paper processing without polling the API.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Event types emitted over the pipeline topic.
const (
	TypePipelineStarted   = "pipeline.started"
	TypePipelineCompleted = "pipeline.completed"
	TypePipelineFailed    = "pipeline.failed"
	TypePipelineCancelled = "pipeline.cancelled"
	TypePaperRegistered   = "paper.registered"
	TypePaperFailed       = "paper.failed"
	TypeSummaryCreated    = "summary.created"
	TypeSynthesisCreated  = "synthesis.created"
	TypeAudioGenerated    = "audio.generated"
)

// Event is a pipeline lifecycle event. PipelineID keys the Kafka partition
// so one pipeline's events stay ordered.
type Event struct {
	// EventID uniquely identifies the event.
	EventID string `json:"event_id"`
	// EventType is one of the Type* constants.
	EventType string `json:"event_type"`
	// PipelineID identifies the pipeline run the event belongs to.
	PipelineID string `json:"pipeline_id"`
	// PaperID is set for paper-scoped events.
	PaperID string `json:"paper_id,omitempty"`
	// TopicID is set for topic-scoped events.
	TopicID string `json:"topic_id,omitempty"`
	// OccurredAt is when the event happened.
	OccurredAt time.Time `json:"occurred_at"`
	// Detail carries event-specific fields.
	Detail map[string]string `json:"detail,omitempty"`
}

// NewEvent creates an event with a generated ID and the current time.
func NewEvent(eventType, pipelineID string) Event {
	return Event{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		PipelineID: pipelineID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher publishes pipeline events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Config holds Kafka publisher settings.
type Config struct {
	// Brokers is the list of broker addresses.
	Brokers []string
	// Topic is the topic events are written to.
	Topic string
	// BatchSize is the maximum messages per batch.
	BatchSize int
	// BatchTimeout is the longest a batch waits to fill.
	BatchTimeout time.Duration
}

// KafkaPublisher publishes events through a kafka-go writer.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher for the configured topic.
func NewKafkaPublisher(cfg Config, logger zerolog.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one Kafka broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("Kafka topic is required")
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}, nil
}

// Publish writes one event, keyed by pipeline ID.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if event.PipelineID == "" {
		return fmt.Errorf("pipeline_id is required")
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.PipelineID),
		Value: value,
		Time:  event.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing event %s: %w", event.EventType, err)
	}

	p.logger.Debug().
		Str("event_type", event.EventType).
		Str("pipeline_id", event.PipelineID).
		Msg("published pipeline event")
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops all events. Used when event publishing is disabled.
type NopPublisher struct{}

var _ Publisher = (*NopPublisher)(nil)

// NewNopPublisher creates a NopPublisher.
func NewNopPublisher() *NopPublisher { return &NopPublisher{} }

// Publish drops the event.
func (*NopPublisher) Publish(context.Context, Event) error { return nil }

// Close is a no-op.
func (*NopPublisher) Close() error { return nil }
