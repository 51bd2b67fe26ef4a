package tts

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

// StaticSynthesizer is a deterministic Synthesizer for local development and
// tests. It produces a small WAV-tagged payload derived from the text, not
// real speech.
type StaticSynthesizer struct{}

var _ Synthesizer = (*StaticSynthesizer)(nil)

// NewStaticSynthesizer creates a StaticSynthesizer.
func NewStaticSynthesizer() *StaticSynthesizer { return &StaticSynthesizer{} }

// Provider returns "static".
func (s *StaticSynthesizer) Provider() string { return "static" }

// FileExtension returns ".wav".
func (s *StaticSynthesizer) FileExtension() string { return ".wav" }

// Synthesize returns a deterministic payload for the text.
func (s *StaticSynthesizer) Synthesize(_ context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is empty", domain.ErrInvalidInput)
	}
	sum := sha256.Sum256([]byte(text))
	payload := append([]byte("RIFFWAVE"), sum[:]...)
	return payload, nil
}
