package llm

import "fmt"

// APIError represents an error returned by a provider API.
type APIError struct {
	// Provider is the provider name (e.g. "openai", "anthropic").
	Provider string
	// StatusCode is the HTTP status code. Zero means the request never
	// reached the provider (network error, timeout).
	StatusCode int
	// Message is the provider's error message.
	Message string
	// Type is the provider's error type, if reported.
	Type string
	// Code is the provider's error code, if reported.
	Code string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: request failed: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// Transient reports whether the error is worth retrying. Network failures,
// rate limits, and server-side errors are transient; client errors such as
// invalid requests or bad credentials are not.
func (e *APIError) Transient() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}
