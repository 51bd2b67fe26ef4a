// Package resilience provides workflow-level error classification and
// stage execution with bounded retry for the paper pipeline Temporal
// workflows.
package resilience

import (
	"errors"
	"strings"

	"go.temporal.io/sdk/temporal"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

// ErrorCategory classifies errors into the two categories that determine
// stage retry behaviour.
type ErrorCategory int

const (
	// Transient errors are temporary failures that should be retried
	// after the stage's fixed delay (e.g. network timeouts, rate limits).
	Transient ErrorCategory = iota

	// Permanent errors are non-recoverable. The stage fails immediately
	// without consuming the remaining retry budget.
	Permanent
)

// String returns a human-readable name for the category.
func (c ErrorCategory) String() string {
	switch c {
	case Transient:
		return "transient"
	case Permanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// transientClassifier is implemented by structured errors that carry their
// own retry classification, such as LLM and paper source API errors.
type transientClassifier interface {
	Transient() bool
}

// transientSubstrings are error message substrings that indicate a
// transient failure when the error carries no structured classification.
var transientSubstrings = []string{
	"timeout",
	"network",
	"connection refused",
	"connection reset",
	"rate limit",
	"rate_limit",
	"server_error",
	"service unavailable",
	"temporary",
	"deadline exceeded",
	"i/o timeout",
	"too many requests",
}

// permanentSubstrings indicate a permanent failure. Substrings are chosen
// to avoid false positives: "unauthorized" instead of "auth" (which would
// match "author"), "invalid request" instead of bare "invalid".
var permanentSubstrings = []string{
	"unauthorized",
	"authentication failed",
	"forbidden",
	"bad_request",
	"bad request",
	"not_found",
	"not found",
	"invalid request",
	"invalid parameter",
	"validation",
	"no source",
	"no extracted text",
	"unsupported format",
}

// Classify inspects err and returns its ErrorCategory.
//
// Classification priority:
//  1. Nil errors: Permanent (callers should not retry nil)
//  2. Structured errors implementing Transient() bool
//  3. Temporal ApplicationError NonRetryable flag
//  4. Domain sentinel errors
//  5. Error message substring matching, transient patterns checked first
//  6. Default: Transient
func Classify(err error) ErrorCategory {
	if err == nil {
		return Permanent
	}

	var tc transientClassifier
	if errors.As(err, &tc) {
		if tc.Transient() {
			return Transient
		}
		return Permanent
	}

	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) && appErr.NonRetryable() {
		return Permanent
	}

	if errors.Is(err, domain.ErrRateLimited) || errors.Is(err, domain.ErrServiceUnavailable) {
		return Transient
	}
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrNoSource) || errors.Is(err, domain.ErrNoExtractedText) ||
		errors.Is(err, domain.ErrStatusRegression) {
		return Permanent
	}

	msg := strings.ToLower(err.Error())

	for _, sub := range transientSubstrings {
		if strings.Contains(msg, sub) {
			return Transient
		}
	}

	for _, sub := range permanentSubstrings {
		if strings.Contains(msg, sub) {
			return Permanent
		}
	}

	return Transient
}
