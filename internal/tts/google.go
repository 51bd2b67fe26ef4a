package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

const (
	defaultGoogleTTSBaseURL = "https://translate.google.com"

	// maxChunkChars is the longest text fragment the endpoint accepts per
	// request; longer texts are split on sentence boundaries.
	maxChunkChars = 200
)

// GoogleSynthesizer renders speech through the Google Translate TTS
// endpoint, producing MP3 audio. Long texts are synthesized in chunks and
// concatenated, which MP3 framing tolerates.
type GoogleSynthesizer struct {
	httpClient *http.Client
	baseURL    string
	language   string
}

var _ Synthesizer = (*GoogleSynthesizer)(nil)

// GoogleOption configures a GoogleSynthesizer.
type GoogleOption func(*GoogleSynthesizer)

// WithGoogleBaseURL overrides the endpoint base URL.
func WithGoogleBaseURL(baseURL string) GoogleOption {
	return func(s *GoogleSynthesizer) {
		if baseURL != "" {
			s.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithGoogleTimeout sets the per-request timeout.
func WithGoogleTimeout(d time.Duration) GoogleOption {
	return func(s *GoogleSynthesizer) {
		if d > 0 {
			s.httpClient.Timeout = d
		}
	}
}

// WithGoogleHTTPClient overrides the HTTP client.
func WithGoogleHTTPClient(client *http.Client) GoogleOption {
	return func(s *GoogleSynthesizer) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// NewGoogleSynthesizer creates a GoogleSynthesizer for the given language
// code. An empty language defaults to "en".
func NewGoogleSynthesizer(language string, opts ...GoogleOption) *GoogleSynthesizer {
	if language == "" {
		language = "en"
	}
	s := &GoogleSynthesizer{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultGoogleTTSBaseURL,
		language:   language,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider returns "google".
func (s *GoogleSynthesizer) Provider() string { return "google" }

// FileExtension returns ".mp3".
func (s *GoogleSynthesizer) FileExtension() string { return ".mp3" }

// Synthesize renders the text as MP3 audio.
func (s *GoogleSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is empty", domain.ErrInvalidInput)
	}

	var audio bytes.Buffer
	for _, chunk := range ChunkText(text, maxChunkChars) {
		data, err := s.fetchChunk(ctx, chunk)
		if err != nil {
			return nil, err
		}
		audio.Write(data)
	}
	return audio.Bytes(), nil
}

func (s *GoogleSynthesizer) fetchChunk(ctx context.Context, chunk string) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", s.language)
	q.Set("q", chunk)

	endpoint := s.baseURL + "/translate_tts?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: tts: %v", domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.NewRateLimitError("tts", 30*time.Second)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: tts returned %s", domain.ErrServiceUnavailable, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, domain.NewExternalAPIError("tts", resp.StatusCode, "synthesizing speech", nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 50<<20))
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: tts returned empty audio", domain.ErrServiceUnavailable)
	}
	return data, nil
}

// ChunkText splits text into fragments no longer than limit runes,
// preferring sentence boundaries and falling back to word boundaries.
func ChunkText(text string, limit int) []string {
	if limit <= 0 {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	flush := func() {
		if c := strings.TrimSpace(current.String()); c != "" {
			chunks = append(chunks, c)
		}
		current.Reset()
	}

	for _, sentence := range splitSentences(text) {
		if len([]rune(sentence)) > limit {
			flush()
			for _, word := range splitByWords(sentence, limit) {
				chunks = append(chunks, word)
			}
			continue
		}
		if current.Len() > 0 && len([]rune(current.String()))+len([]rune(sentence))+1 > limit {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	flush()
	return chunks
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func splitByWords(sentence string, limit int) []string {
	var parts []string
	var current strings.Builder
	for _, word := range strings.Fields(sentence) {
		if current.Len() > 0 && len([]rune(current.String()))+len([]rune(word))+1 > limit {
			parts = append(parts, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}
