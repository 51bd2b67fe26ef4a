package activities

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/events"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/observability"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/repository"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/tts"
)

// maxNarrationChars caps how much summary text is narrated. Long syntheses
// are clipped rather than rejected; the audio is a convenience artifact.
const maxNarrationChars = 4000

// AudioActivities provides Temporal activities for the narration stage.
// Methods on this struct are registered as Temporal activities via the worker.
type AudioActivities struct {
	summaryRepo repository.SummaryRepository
	synthesizer tts.Synthesizer
	audioDir    string
	publisher   events.Publisher
	metrics     *observability.Metrics
}

// NewAudioActivities creates a new AudioActivities instance with the given
// dependencies. Rendered audio is written under audioDir. The metrics
// parameter may be nil (metrics recording will be skipped); the publisher
// may be a NopPublisher.
func NewAudioActivities(
	summaryRepo repository.SummaryRepository,
	synthesizer tts.Synthesizer,
	audioDir string,
	publisher events.Publisher,
	metrics *observability.Metrics,
) *AudioActivities {
	return &AudioActivities{
		summaryRepo: summaryRepo,
		synthesizer: synthesizer,
		audioDir:    audioDir,
		publisher:   publisher,
		metrics:     metrics,
	}
}

// RenderSummaryAudio renders a summary's content as narration audio, stores
// the file, and records the path on the summary.
//
// Narration is a non-critical stage: the workflow logs failures and moves
// on, so this activity returns plain errors and never marks anything failed.
func (a *AudioActivities) RenderSummaryAudio(ctx context.Context, input RenderAudioInput) (*RenderAudioOutput, error) {
	logger := activity.GetLogger(ctx)
	start := time.Now()

	summary, err := a.summaryRepo.GetByID(ctx, input.SummaryID)
	if err != nil {
		return nil, fmt.Errorf("load summary %s: %w", input.SummaryID, err)
	}

	logger.Info("rendering summary audio",
		"summaryID", summary.ID,
		"summaryType", summary.Type,
		"contentLength", len(summary.Content),
	)

	audio, err := a.synthesizer.Synthesize(ctx, truncateText(summary.Content, maxNarrationChars))
	if err != nil {
		return nil, fmt.Errorf("synthesize audio for summary %s: %w", summary.ID, err)
	}

	if err := os.MkdirAll(a.audioDir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio directory: %w", err)
	}

	path := filepath.Join(a.audioDir, summary.ID.String()+a.synthesizer.FileExtension())
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return nil, fmt.Errorf("write audio file for summary %s: %w", summary.ID, err)
	}

	if err := a.summaryRepo.SetAudioPath(ctx, summary.ID, path); err != nil {
		return nil, fmt.Errorf("record audio path for summary %s: %w", summary.ID, err)
	}

	event := events.NewEvent(events.TypeAudioGenerated, input.PipelineID.String())
	event.Detail = map[string]string{
		"summary_id": summary.ID.String(),
		"audio_path": path,
	}
	if a.publisher != nil {
		if err := a.publisher.Publish(ctx, event); err != nil {
			logger.Warn("failed to publish event",
				"eventType", event.EventType,
				"error", err,
			)
		}
	}

	logger.Info("summary audio rendered",
		"summaryID", summary.ID,
		"audioPath", path,
		"audioBytes", len(audio),
		"duration", time.Since(start),
	)

	return &RenderAudioOutput{
		SummaryID: summary.ID,
		AudioPath: path,
	}, nil
}
