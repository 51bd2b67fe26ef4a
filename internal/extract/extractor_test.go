package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

const samplePaperText = `Deep Residual Learning for Image Recognition

Abstract
Deeper neural networks are more difficult to train. We present a residual
learning framework to ease the training of networks.

Introduction
Deep convolutional neural networks have led to a series of breakthroughs for
image classification. Network depth is of crucial importance.

3. Results
Our residual networks achieve lower error than plain networks on ImageNet.

Conclusion
Residual learning eases optimization of very deep networks.
`

func TestDetectSections(t *testing.T) {
	t.Run("finds headed sections and preamble", func(t *testing.T) {
		sections := DetectSections(samplePaperText)

		require.Contains(t, sections, "abstract")
		assert.Contains(t, sections["abstract"], "residual learning framework")
		assert.Contains(t, sections, "introduction")
		assert.Contains(t, sections, "results")
		assert.Contains(t, sections["conclusion"], "very deep networks")
		assert.Contains(t, sections["preamble"], "Deep Residual Learning")
	})

	t.Run("numbered headings are recognized", func(t *testing.T) {
		sections := DetectSections(samplePaperText)
		assert.Contains(t, sections["results"], "lower error")
	})

	t.Run("text without headings yields empty map", func(t *testing.T) {
		sections := DetectSections("just a plain sentence with no structure")
		assert.Empty(t, sections)
	})
}

func TestExtractKeywords(t *testing.T) {
	t.Run("ranks by frequency", func(t *testing.T) {
		text := "networks networks networks training training residual"
		keywords := ExtractKeywords(text, 2)
		assert.Equal(t, []string{"networks", "training"}, keywords)
	})

	t.Run("drops stopwords and short words", func(t *testing.T) {
		keywords := ExtractKeywords("this that with from the a an is of", 10)
		assert.Empty(t, keywords)
	})

	t.Run("ties break alphabetically", func(t *testing.T) {
		keywords := ExtractKeywords("zebra apple zebra apple", 2)
		assert.Equal(t, []string{"apple", "zebra"}, keywords)
	})
}

func TestExtractHTML(t *testing.T) {
	t.Run("extracts article text and title", func(t *testing.T) {
		html := `<html><head><title>Page Title</title></head><body>
			<nav>skip this</nav>
			<article>
				<h1>Attention Is All You Need</h1>
				<p>We propose the Transformer, a model architecture.</p>
				<p>Experiments show superior quality.</p>
			</article>
			<footer>copyright</footer>
		</body></html>`

		result, err := extractHTML(strings.NewReader(html))
		require.NoError(t, err)

		assert.Equal(t, "Attention Is All You Need", result.Title)
		assert.Contains(t, result.Text, "Transformer")
		assert.NotContains(t, result.Text, "skip this")
		assert.NotContains(t, result.Text, "copyright")
	})

	t.Run("empty page yields no extracted text error", func(t *testing.T) {
		_, err := extractHTML(strings.NewReader("<html><body><script>x()</script></body></html>"))
		require.ErrorIs(t, err, domain.ErrNoExtractedText)
	})
}

func TestExtractor_FromFile(t *testing.T) {
	logger := zerolog.Nop()
	extractor := NewExtractor(logger)

	t.Run("plain text file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "paper.txt")
		require.NoError(t, os.WriteFile(path, []byte(samplePaperText), 0o644))

		result, err := extractor.FromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "Deep Residual Learning for Image Recognition", result.Title)
		assert.Contains(t, result.Sections, "abstract")
		assert.NotEmpty(t, result.Keywords)
	})

	t.Run("empty file is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.txt")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		_, err := extractor.FromFile(path)
		require.ErrorIs(t, err, domain.ErrNoExtractedText)
	})

	t.Run("unsupported extension is rejected", func(t *testing.T) {
		_, err := extractor.FromFile("paper.docx")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestExtractor_FromURL(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("HTML response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<html><body><article><h1>A Survey</h1><p>Survey body text goes here.</p></article></body></html>`))
		}))
		t.Cleanup(server.Close)

		extractor := NewExtractor(logger, WithHTTPClient(server.Client()))
		result, err := extractor.FromURL(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "A Survey", result.Title)
		assert.Contains(t, result.Text, "Survey body text")
	})

	t.Run("404 maps to not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		t.Cleanup(server.Close)

		extractor := NewExtractor(logger, WithHTTPClient(server.Client()))
		_, err := extractor.FromURL(context.Background(), server.URL)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("429 maps to rate limited", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		t.Cleanup(server.Close)

		extractor := NewExtractor(logger, WithHTTPClient(server.Client()))
		_, err := extractor.FromURL(context.Background(), server.URL)
		require.ErrorIs(t, err, domain.ErrRateLimited)
	})

	t.Run("500 maps to service unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(server.Close)

		extractor := NewExtractor(logger, WithHTTPClient(server.Client()))
		_, err := extractor.FromURL(context.Background(), server.URL)
		require.ErrorIs(t, err, domain.ErrServiceUnavailable)
	})
}

func TestTextFromContentStream(t *testing.T) {
	stream := []byte("BT\n(Deep Residual Learning) Tj\nT*\n[(for Image ) -250 (Recognition)] TJ\nET")
	text := textFromContentStream(stream)
	assert.Equal(t, "Deep Residual Learning\nfor Image Recognition", text)
}

func TestDecodePDFString(t *testing.T) {
	assert.Equal(t, "a(b)c", decodePDFString([]byte(`a\(b\)c`)))
	assert.Equal(t, "tab\there", decodePDFString([]byte(`tab\there`)))
	assert.Equal(t, " ", decodePDFString([]byte(`\040`)))
}
