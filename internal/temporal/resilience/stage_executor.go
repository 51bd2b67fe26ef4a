package resilience

import (
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// StageResult contains the outcome of a stage execution.
type StageResult struct {
	// Failed is true when a critical stage has exhausted retries or hit a
	// permanent error. The workflow should mark the affected item failed.
	Failed bool

	// Degraded is true when an important stage has exhausted retries.
	// The workflow should record the partial result and continue.
	Degraded bool

	// Skipped is true when a non-critical stage has exhausted retries.
	// The workflow should silently continue.
	Skipped bool

	// Err is the last error encountered. Non-nil when Failed, Degraded,
	// or Skipped is true.
	Err error

	// Attempts is the total number of executions (1 = succeeded first try).
	Attempts int
}

// Progress tracks retry state for query visibility. The workflow embeds a
// pointer to this struct in its progress snapshot so the query handler can
// report retry information to external observers.
type Progress struct {
	// RetryAttempt is the current attempt number (0 = first execution).
	RetryAttempt int

	// RetryStage is the name of the stage currently being retried.
	RetryStage string

	// LastRetryError is the string form of the last transient error.
	LastRetryError string
}

// ExecuteStage runs fn with bounded fixed-delay retry using deterministic
// workflow.Sleep for the backoff. Errors are classified before each retry
// decision: transient errors consume the retry budget, permanent errors
// end the stage immediately.
func ExecuteStage(ctx workflow.Context, cfg StageConfig, progress *Progress, fn func() error) StageResult {
	logger := workflow.GetLogger(ctx)

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if progress != nil {
			progress.RetryAttempt = attempt
			progress.RetryStage = cfg.Name
		}

		err := fn()
		if err == nil {
			if progress != nil {
				progress.RetryAttempt = 0
				progress.RetryStage = ""
				progress.LastRetryError = ""
			}
			return StageResult{Attempts: attempt + 1}
		}

		// Never retry cancelled operations.
		var canceledErr *temporal.CanceledError
		if temporal.IsCanceledError(err) || errors.As(err, &canceledErr) {
			return StageResult{
				Failed:   true,
				Err:      fmt.Errorf("%s: %w", cfg.Name, err),
				Attempts: attempt + 1,
			}
		}
		if ctx.Err() != nil {
			return StageResult{
				Failed:   true,
				Err:      fmt.Errorf("%s: context cancelled: %w", cfg.Name, err),
				Attempts: attempt + 1,
			}
		}

		category := Classify(err)

		if progress != nil {
			progress.LastRetryError = err.Error()
		}

		logger.Info("stage execution failed",
			"stage", cfg.Name,
			"attempt", attempt+1,
			"maxAttempts", cfg.MaxAttempts(),
			"errorCategory", category.String(),
			"error", err,
		)

		if category == Permanent {
			return permanentResult(cfg, err, attempt+1)
		}

		if attempt < cfg.MaxRetries {
			logger.Info("retrying stage after delay",
				"stage", cfg.Name,
				"attempt", attempt+1,
				"delay", cfg.RetryDelay,
			)
			if sleepErr := workflow.Sleep(ctx, cfg.RetryDelay); sleepErr != nil {
				return StageResult{
					Failed:   true,
					Err:      fmt.Errorf("%s: cancelled during retry delay: %w", cfg.Name, sleepErr),
					Attempts: attempt + 1,
				}
			}
			continue
		}

		return exhaustedResult(cfg, err, attempt+1)
	}

	return StageResult{Failed: true, Err: fmt.Errorf("%s: unexpected retry loop exit", cfg.Name), Attempts: cfg.MaxAttempts()}
}

// permanentResult maps a permanent error to the outcome dictated by the
// stage's criticality.
func permanentResult(cfg StageConfig, err error, attempts int) StageResult {
	switch cfg.Criticality {
	case Critical:
		return StageResult{Failed: true, Err: fmt.Errorf("%s: permanent error: %w", cfg.Name, err), Attempts: attempts}
	case Important:
		return StageResult{Degraded: true, Err: fmt.Errorf("%s: degraded (permanent error): %w", cfg.Name, err), Attempts: attempts}
	default: // NonCritical
		return StageResult{Skipped: true, Err: fmt.Errorf("%s: skipped (permanent error): %w", cfg.Name, err), Attempts: attempts}
	}
}

// exhaustedResult maps an exhausted retry budget to the outcome dictated
// by the stage's criticality.
func exhaustedResult(cfg StageConfig, err error, attempts int) StageResult {
	switch cfg.Criticality {
	case Critical:
		return StageResult{Failed: true, Err: fmt.Errorf("%s: retries exhausted: %w", cfg.Name, err), Attempts: attempts}
	case Important:
		return StageResult{Degraded: true, Err: fmt.Errorf("%s: degraded (retries exhausted): %w", cfg.Name, err), Attempts: attempts}
	default: // NonCritical
		return StageResult{Skipped: true, Err: fmt.Errorf("%s: skipped (retries exhausted): %w", cfg.Name, err), Attempts: attempts}
	}
}
