package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	event := NewEvent(TypePipelineStarted, "pipeline-123")

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, TypePipelineStarted, event.EventType)
	assert.Equal(t, "pipeline-123", event.PipelineID)
	assert.False(t, event.OccurredAt.IsZero())
}

func TestEvent_JSONShape(t *testing.T) {
	event := NewEvent(TypePaperFailed, "pipeline-123")
	event.PaperID = "paper-456"
	event.Detail = map[string]string{"cause": "no source"}

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "paper.failed", decoded["event_type"])
	assert.Equal(t, "paper-456", decoded["paper_id"])
	assert.NotContains(t, decoded, "topic_id")
}

func TestNewKafkaPublisher_Validation(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("requires brokers", func(t *testing.T) {
		_, err := NewKafkaPublisher(Config{Topic: "events"}, logger)
		require.Error(t, err)
	})

	t.Run("requires topic", func(t *testing.T) {
		_, err := NewKafkaPublisher(Config{Brokers: []string{"localhost:9092"}}, logger)
		require.Error(t, err)
	})
}

func TestKafkaPublisher_RejectsIncompleteEvents(t *testing.T) {
	publisher, err := NewKafkaPublisher(Config{
		Brokers: []string{"localhost:9092"},
		Topic:   "events.paper_pipeline",
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { publisher.Close() })

	err = publisher.Publish(context.Background(), Event{PipelineID: "p"})
	require.ErrorContains(t, err, "event_type")

	err = publisher.Publish(context.Background(), Event{EventType: TypePipelineStarted})
	require.ErrorContains(t, err, "pipeline_id")
}

func TestNopPublisher(t *testing.T) {
	publisher := NewNopPublisher()
	require.NoError(t, publisher.Publish(context.Background(), NewEvent(TypePipelineStarted, "p")))
	require.NoError(t, publisher.Close())
}
