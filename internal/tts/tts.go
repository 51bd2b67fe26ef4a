// Package tts renders narration audio for generated summaries.
package tts

import (
	"context"
	"fmt"
	"time"
)

// Synthesizer converts text to spoken audio.
type Synthesizer interface {
	// Synthesize renders the text as audio and returns the encoded bytes.
	Synthesize(ctx context.Context, text string) ([]byte, error)

	// Provider returns the provider name.
	Provider() string

	// FileExtension returns the file extension for the audio format,
	// including the dot.
	FileExtension() string
}

// FactoryConfig holds the parameters needed to create a Synthesizer.
type FactoryConfig struct {
	// Provider is the provider name ("google" or "static").
	Provider string
	// BaseURL overrides the provider API base URL.
	BaseURL string
	// Language is the narration language code (e.g. "en").
	Language string
	// Timeout is the timeout for provider API calls.
	Timeout time.Duration
}

// NewSynthesizer creates a Synthesizer based on the configuration.
func NewSynthesizer(cfg FactoryConfig) (Synthesizer, error) {
	switch cfg.Provider {
	case "google":
		return NewGoogleSynthesizer(cfg.Language,
			WithGoogleBaseURL(cfg.BaseURL),
			WithGoogleTimeout(cfg.Timeout),
		), nil
	case "static":
		return NewStaticSynthesizer(), nil
	default:
		return nil, fmt.Errorf("unsupported TTS provider: %q", cfg.Provider)
	}
}
