package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

func TestChunkText(t *testing.T) {
	t.Run("short text is one chunk", func(t *testing.T) {
		chunks := ChunkText("One sentence.", 200)
		assert.Equal(t, []string{"One sentence."}, chunks)
	})

	t.Run("splits on sentence boundaries", func(t *testing.T) {
		text := strings.Repeat("This sentence has some words in it. ", 10)
		chunks := ChunkText(text, 100)
		require.Greater(t, len(chunks), 1)
		for _, c := range chunks {
			assert.LessOrEqual(t, len([]rune(c)), 100)
			assert.True(t, strings.HasSuffix(c, "."))
		}
	})

	t.Run("overlong sentence falls back to word splits", func(t *testing.T) {
		text := strings.Repeat("word ", 100)
		chunks := ChunkText(text, 50)
		require.Greater(t, len(chunks), 1)
		for _, c := range chunks {
			assert.LessOrEqual(t, len([]rune(c)), 50)
		}
	})
}

func TestGoogleSynthesizer(t *testing.T) {
	t.Run("fetches audio for each chunk", func(t *testing.T) {
		var requests int
		var languages []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			languages = append(languages, r.URL.Query().Get("tl"))
			w.Write([]byte("MP3DATA"))
		}))
		t.Cleanup(server.Close)

		synth := NewGoogleSynthesizer("en",
			WithGoogleBaseURL(server.URL),
			WithGoogleHTTPClient(server.Client()),
		)

		long := strings.Repeat("A sentence for the narrator to read aloud. ", 10)
		audio, err := synth.Synthesize(context.Background(), long)
		require.NoError(t, err)

		assert.Greater(t, requests, 1)
		assert.Equal(t, requests*len("MP3DATA"), len(audio))
		for _, l := range languages {
			assert.Equal(t, "en", l)
		}
	})

	t.Run("empty text is rejected", func(t *testing.T) {
		synth := NewGoogleSynthesizer("en")
		_, err := synth.Synthesize(context.Background(), "   ")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("server error maps to service unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		t.Cleanup(server.Close)

		synth := NewGoogleSynthesizer("en",
			WithGoogleBaseURL(server.URL),
			WithGoogleHTTPClient(server.Client()),
		)
		_, err := synth.Synthesize(context.Background(), "Some text.")
		require.ErrorIs(t, err, domain.ErrServiceUnavailable)
	})
}

func TestStaticSynthesizer(t *testing.T) {
	synth := NewStaticSynthesizer()

	a, err := synth.Synthesize(context.Background(), "same text")
	require.NoError(t, err)
	b, err := synth.Synthesize(context.Background(), "same text")
	require.NoError(t, err)
	c, err := synth.Synthesize(context.Background(), "different text")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, ".wav", synth.FileExtension())
}

func TestNewSynthesizer(t *testing.T) {
	t.Run("google", func(t *testing.T) {
		synth, err := NewSynthesizer(FactoryConfig{Provider: "google", Language: "en"})
		require.NoError(t, err)
		assert.Equal(t, "google", synth.Provider())
	})

	t.Run("static", func(t *testing.T) {
		synth, err := NewSynthesizer(FactoryConfig{Provider: "static"})
		require.NoError(t, err)
		assert.Equal(t, "static", synth.Provider())
	})

	t.Run("unknown provider is rejected", func(t *testing.T) {
		_, err := NewSynthesizer(FactoryConfig{Provider: "espeak"})
		require.Error(t, err)
	})
}
