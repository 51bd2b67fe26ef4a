package resilience

import "time"

// Stage names used across the pipeline workflow.
const (
	StageDiscovery      = "discovery"
	StageExtraction     = "extraction"
	StageClassification = "classification"
	StageSummarization  = "summarization"
	StageSynthesis      = "synthesis"
	StageNarration      = "narration"
)

// StageCriticality determines how the workflow handles exhausted retries
// for a given stage.
type StageCriticality int

const (
	// Critical stages mark the affected paper as failed when retries are
	// exhausted. The pipeline continues with the remaining papers.
	Critical StageCriticality = iota

	// Important stages degrade to partial results when retries are
	// exhausted. The workflow continues to the next stage.
	Important

	// NonCritical stages are silently skipped when retries are exhausted.
	NonCritical
)

// String returns a human-readable name for the criticality level.
func (c StageCriticality) String() string {
	switch c {
	case Critical:
		return "critical"
	case Important:
		return "important"
	case NonCritical:
		return "non-critical"
	default:
		return "unknown"
	}
}

// StageConfig holds the retry and criticality configuration for a single
// pipeline stage. Retries use a fixed delay rather than exponential
// backoff; each stage has a delay tuned to the upstream it calls.
type StageConfig struct {
	// Name is the stage identifier (e.g. "extraction", "synthesis").
	Name string

	// Criticality determines behaviour when retries are exhausted.
	Criticality StageCriticality

	// MaxRetries is the number of retries after the first attempt, so a
	// stage executes at most MaxRetries+1 times.
	MaxRetries int

	// RetryDelay is the fixed delay between attempts.
	RetryDelay time.Duration
}

// MaxAttempts returns the total number of executions the stage may use.
func (c StageConfig) MaxAttempts() int {
	return c.MaxRetries + 1
}

// DefaultStageConfigs returns the standard stage configurations for the
// paper pipeline workflow.
func DefaultStageConfigs() map[string]StageConfig {
	return map[string]StageConfig{
		StageDiscovery: {
			Name:        StageDiscovery,
			Criticality: Important,
			MaxRetries:  3,
			RetryDelay:  30 * time.Second,
		},
		StageExtraction: {
			Name:        StageExtraction,
			Criticality: Critical,
			MaxRetries:  3,
			RetryDelay:  60 * time.Second,
		},
		StageClassification: {
			Name:        StageClassification,
			Criticality: Critical,
			MaxRetries:  3,
			RetryDelay:  60 * time.Second,
		},
		StageSummarization: {
			Name:        StageSummarization,
			Criticality: Critical,
			MaxRetries:  3,
			RetryDelay:  60 * time.Second,
		},
		StageSynthesis: {
			Name:        StageSynthesis,
			Criticality: Important,
			MaxRetries:  3,
			RetryDelay:  120 * time.Second,
		},
		StageNarration: {
			Name:        StageNarration,
			Criticality: NonCritical,
			MaxRetries:  1,
			RetryDelay:  15 * time.Second,
		},
	}
}
