package extract

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

func newCrossrefTestClient(t *testing.T, handler http.HandlerFunc) *CrossrefClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewCrossrefClient(server.Client()).WithBaseURL(server.URL)
}

func TestCrossrefClient_Work(t *testing.T) {
	t.Run("parses work metadata", func(t *testing.T) {
		var requestedPath string
		client := newCrossrefTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			requestedPath = r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{
				"message": {
					"DOI": "10.1000/xyz123",
					"title": ["Deep Residual Learning for Image Recognition"],
					"abstract": "<jats:p>Deeper neural networks are more difficult to train.</jats:p>",
					"author": [
						{"given": "Kaiming", "family": "He"},
						{"given": "Xiangyu", "family": "Zhang"}
					],
					"container-title": ["CVPR"],
					"issued": {"date-parts": [[2016, 6, 27]]},
					"URL": "https://doi.org/10.1000/xyz123"
				}
			}`)
		})

		work, err := client.Work(context.Background(), "https://doi.org/10.1000/XYZ123")
		require.NoError(t, err)

		assert.Equal(t, "10.1000/xyz123", work.DOI)
		assert.Equal(t, "Deep Residual Learning for Image Recognition", work.Title)
		assert.Equal(t, "Deeper neural networks are more difficult to train.", work.Abstract)
		assert.Equal(t, 2016, work.Year)
		assert.Equal(t, "CVPR", work.Venue)
		require.Len(t, work.Authors, 2)
		assert.Equal(t, "Kaiming He", work.Authors[0].Name)
		assert.Contains(t, requestedPath, "10.1000")
	})

	t.Run("404 maps to not found", func(t *testing.T) {
		client := newCrossrefTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := client.Work(context.Background(), "10.9999/missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("429 maps to rate limited", func(t *testing.T) {
		client := newCrossrefTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := client.Work(context.Background(), "10.1000/xyz123")
		require.ErrorIs(t, err, domain.ErrRateLimited)
	})

	t.Run("empty DOI is rejected", func(t *testing.T) {
		client := NewCrossrefClient(nil)
		_, err := client.Work(context.Background(), "   ")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestStripJATS(t *testing.T) {
	assert.Equal(t, "Plain words here.",
		stripJATS("<jats:p>Plain   words\nhere.</jats:p>"))
	assert.Equal(t, "No markup", stripJATS("No markup"))
}
