package llm

import (
	"fmt"
	"time"
)

// FactoryConfig holds the parameters needed to create a Generator. It is
// defined in the llm package to avoid importing the config package, keeping
// the llm package free of infrastructure dependencies.
type FactoryConfig struct {
	// Provider is the provider name ("openai", "anthropic", or "static").
	Provider string
	// Temperature is the sampling temperature.
	Temperature float64
	// MaxTokens is the default completion cap.
	MaxTokens int
	// Timeout is the timeout for provider API calls.
	Timeout time.Duration
	// OpenAIAPIKey is the OpenAI API key.
	OpenAIAPIKey string
	// OpenAIModel is the OpenAI model to use.
	OpenAIModel string
	// OpenAIBaseURL overrides the OpenAI API base URL.
	OpenAIBaseURL string
	// AnthropicAPIKey is the Anthropic API key.
	AnthropicAPIKey string
	// AnthropicModel is the Anthropic model to use.
	AnthropicModel string
	// AnthropicBaseURL overrides the Anthropic API base URL.
	AnthropicBaseURL string
}

// NewGenerator creates a Generator based on the configuration. Supports
// "openai", "anthropic", and "static" providers. Returns an error for
// unsupported or empty provider values.
func NewGenerator(cfg FactoryConfig) (Generator, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg.OpenAIAPIKey,
			WithOpenAIModel(cfg.OpenAIModel),
			WithOpenAIBaseURL(cfg.OpenAIBaseURL),
			WithOpenAITemperature(cfg.Temperature),
			WithOpenAIMaxTokens(cfg.MaxTokens),
			WithOpenAITimeout(cfg.Timeout),
		)
	case "anthropic":
		return NewAnthropicProvider(cfg.AnthropicAPIKey,
			WithAnthropicModel(cfg.AnthropicModel),
			WithAnthropicBaseURL(cfg.AnthropicBaseURL),
			WithAnthropicTemperature(cfg.Temperature),
			WithAnthropicMaxTokens(cfg.MaxTokens),
			WithAnthropicTimeout(cfg.Timeout),
		)
	case "static":
		return NewStaticProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
}
