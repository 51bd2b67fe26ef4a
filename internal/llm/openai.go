package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"

	// maxResponseBytes caps how much of a provider response body is read.
	maxResponseBytes = 10 << 20
)

// OpenAIProvider generates text via the OpenAI chat completions API.
type OpenAIProvider struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

var _ Generator = (*OpenAIProvider)(nil)

// OpenAIOption configures an OpenAIProvider.
type OpenAIOption func(*OpenAIProvider)

// WithOpenAIModel overrides the default model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(p *OpenAIProvider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithOpenAIBaseURL overrides the API base URL.
func WithOpenAIBaseURL(baseURL string) OpenAIOption {
	return func(p *OpenAIProvider) {
		if baseURL != "" {
			p.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithOpenAIHTTPClient overrides the HTTP client.
func WithOpenAIHTTPClient(client *http.Client) OpenAIOption {
	return func(p *OpenAIProvider) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// WithOpenAITemperature sets the sampling temperature.
func WithOpenAITemperature(t float64) OpenAIOption {
	return func(p *OpenAIProvider) { p.temperature = t }
}

// WithOpenAIMaxTokens sets the default completion cap.
func WithOpenAIMaxTokens(n int) OpenAIOption {
	return func(p *OpenAIProvider) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// WithOpenAITimeout sets the per-request timeout.
func WithOpenAITimeout(d time.Duration) OpenAIOption {
	return func(p *OpenAIProvider) {
		if d > 0 {
			p.httpClient.Timeout = d
		}
	}
}

// NewOpenAIProvider creates an OpenAI-backed Generator.
func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}

	p := &OpenAIProvider{
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		apiKey:      apiKey,
		model:       defaultOpenAIModel,
		baseURL:     defaultOpenAIBaseURL,
		temperature: 0.3,
		maxTokens:   1024,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Provider returns "openai".
func (p *OpenAIProvider) Provider() string { return "openai" }

// Model returns the configured model identifier.
func (p *OpenAIProvider) Model() string { return p.model }

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type openAIChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Generate runs a single chat completion.
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Result, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.maxTokens
	}

	body := openAIChatRequest{
		Model:       p.model,
		Temperature: p.temperature,
		MaxTokens:   maxTokens,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, openAIChatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, openAIChatMessage{Role: "user", Content: req.Prompt})

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("openai: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("openai: creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, &APIError{Provider: "openai", Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &APIError{Provider: "openai", Message: fmt.Sprintf("reading response: %v", err)}
	}

	var parsed openAIChatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &APIError{
				Provider:   "openai",
				StatusCode: resp.StatusCode,
				Message:    truncate(string(raw), 512),
			}
		}
		return nil, fmt.Errorf("openai: decoding response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Provider: "openai", StatusCode: resp.StatusCode}
		if parsed.Error != nil {
			apiErr.Message = parsed.Error.Message
			apiErr.Type = parsed.Error.Type
			apiErr.Code = parsed.Error.Code
		} else {
			apiErr.Message = truncate(string(raw), 512)
		}
		return nil, apiErr
	}

	if len(parsed.Choices) == 0 {
		return nil, &APIError{
			Provider:   "openai",
			StatusCode: resp.StatusCode,
			Message:    "response contained no choices",
		}
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return nil, &APIError{
			Provider:   "openai",
			StatusCode: resp.StatusCode,
			Message:    "response contained empty content",
		}
	}

	model := parsed.Model
	if model == "" {
		model = p.model
	}
	return &Result{
		Content:      content,
		Model:        model,
		InputTokens:  parsed.Usage.PromptTokens,
		OutputTokens: parsed.Usage.CompletionTokens,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
