package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newOpenAITestServer creates an httptest server that responds with the given handler.
func newOpenAITestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// newOpenAITestProvider creates an OpenAIProvider configured to use the test server.
func newOpenAITestProvider(t *testing.T, serverURL string) *OpenAIProvider {
	t.Helper()
	provider, err := NewOpenAIProvider("test-api-key",
		WithOpenAIModel("gpt-4o-mini"),
		WithOpenAIBaseURL(serverURL),
		WithOpenAITimeout(10*time.Second),
	)
	require.NoError(t, err)
	return provider
}

func TestOpenAIProvider_Generate(t *testing.T) {
	t.Run("successful generation returns content and usage", func(t *testing.T) {
		var receivedReq openAIChatRequest
		var receivedAuthHeader string

		server := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
			receivedAuthHeader = r.Header.Get("Authorization")

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			defer r.Body.Close()
			require.NoError(t, json.Unmarshal(body, &receivedReq))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			io.WriteString(w, `{
				"model": "gpt-4o-mini",
				"choices": [{"message": {"content": "A concise summary."}, "finish_reason": "stop"}],
				"usage": {"prompt_tokens": 120, "completion_tokens": 30}
			}`)
		})

		provider := newOpenAITestProvider(t, server.URL)
		result, err := provider.Generate(context.Background(), Request{
			System: "You are a scientific writer.",
			Prompt: "Summarize this paper.",
		})
		require.NoError(t, err)

		assert.Equal(t, "A concise summary.", result.Content)
		assert.Equal(t, "gpt-4o-mini", result.Model)
		assert.Equal(t, 120, result.InputTokens)
		assert.Equal(t, 30, result.OutputTokens)

		assert.Equal(t, "Bearer test-api-key", receivedAuthHeader)
		require.Len(t, receivedReq.Messages, 2)
		assert.Equal(t, "system", receivedReq.Messages[0].Role)
		assert.Equal(t, "user", receivedReq.Messages[1].Role)
	})

	t.Run("rate limit error is transient", func(t *testing.T) {
		server := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			io.WriteString(w, `{"error": {"message": "Rate limit reached", "type": "rate_limit_error"}}`)
		})

		provider := newOpenAITestProvider(t, server.URL)
		_, err := provider.Generate(context.Background(), Request{Prompt: "hello"})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
		assert.Equal(t, "Rate limit reached", apiErr.Message)
		assert.True(t, apiErr.Transient())
	})

	t.Run("invalid request error is not transient", func(t *testing.T) {
		server := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error": {"message": "Invalid API key", "type": "invalid_request_error"}}`)
		})

		provider := newOpenAITestProvider(t, server.URL)
		_, err := provider.Generate(context.Background(), Request{Prompt: "hello"})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.False(t, apiErr.Transient())
	})

	t.Run("connection failure yields transient error with zero status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		provider := newOpenAITestProvider(t, server.URL)
		_, err := provider.Generate(context.Background(), Request{Prompt: "hello"})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 0, apiErr.StatusCode)
		assert.True(t, apiErr.Transient())
	})

	t.Run("empty choices is an error", func(t *testing.T) {
		server := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"model": "gpt-4o-mini", "choices": []}`)
		})

		provider := newOpenAITestProvider(t, server.URL)
		_, err := provider.Generate(context.Background(), Request{Prompt: "hello"})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Contains(t, apiErr.Message, "no choices")
	})

	t.Run("context cancellation aborts the request", func(t *testing.T) {
		server := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		})

		provider := newOpenAITestProvider(t, server.URL)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := provider.Generate(ctx, Request{Prompt: "hello"})
		require.Error(t, err)
		var apiErr *APIError
		assert.True(t, errors.As(err, &apiErr))
	})
}

func TestNewOpenAIProvider_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIProvider("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}
