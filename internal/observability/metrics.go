package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the paper summarization
// service. Metrics are organized by subsystem: pipelines, stages, papers,
// summaries, sources, and LLM operations. Everything is registered via
// promauto against the default registry.
type Metrics struct {
	// PipelinesStarted counts the total number of pipeline runs initiated.
	PipelinesStarted prometheus.Counter

	// PipelinesCompleted counts pipeline runs that finished successfully.
	PipelinesCompleted prometheus.Counter

	// PipelinesFailed counts pipeline runs that ended in failure.
	PipelinesFailed prometheus.Counter

	// PipelinesCancelled counts pipeline runs cancelled by user or system.
	PipelinesCancelled prometheus.Counter

	// PipelineDuration observes end-to-end pipeline duration in seconds.
	PipelineDuration prometheus.Histogram

	// StageAttempts counts stage executions, labeled by stage.
	StageAttempts *prometheus.CounterVec

	// StageFailures counts stage failures, labeled by stage and error class.
	StageFailures *prometheus.CounterVec

	// StageRetries counts stage retries after transient failures, labeled by stage.
	StageRetries *prometheus.CounterVec

	// StageDuration observes stage duration in seconds, labeled by stage.
	StageDuration *prometheus.HistogramVec

	// PapersRegistered counts papers admitted into the pipeline, labeled by source kind.
	PapersRegistered *prometheus.CounterVec

	// PapersDeduplicated counts papers skipped because the DOI was already known.
	PapersDeduplicated prometheus.Counter

	// PapersFailed counts papers that reached the failed terminal status.
	PapersFailed prometheus.Counter

	// SummariesGenerated counts summaries produced, labeled by summary type.
	SummariesGenerated *prometheus.CounterVec

	// SynthesesSkipped counts topics skipped at synthesis for lack of papers.
	SynthesesSkipped prometheus.Counter

	// SourceRequestsTotal counts HTTP requests to paper source APIs,
	// labeled by source and endpoint.
	SourceRequestsTotal *prometheus.CounterVec

	// SourceRequestsFailed counts failed requests to paper source APIs,
	// labeled by source, endpoint, and error type.
	SourceRequestsFailed *prometheus.CounterVec

	// SourceRequestDuration observes request duration to paper source APIs in seconds.
	SourceRequestDuration *prometheus.HistogramVec

	// LLMRequestsTotal counts LLM API requests, labeled by operation and model.
	LLMRequestsTotal *prometheus.CounterVec

	// LLMRequestsFailed counts failed LLM requests, labeled by operation, model, and error type.
	LLMRequestsFailed *prometheus.CounterVec

	// LLMRequestDuration observes LLM request duration in seconds.
	LLMRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// Pipelines
		PipelinesStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipelines_started_total",
			Help:      "Total number of paper pipelines started",
		}),
		PipelinesCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipelines_completed_total",
			Help:      "Total number of paper pipelines completed successfully",
		}),
		PipelinesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipelines_failed_total",
			Help:      "Total number of paper pipelines that failed",
		}),
		PipelinesCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipelines_cancelled_total",
			Help:      "Total number of paper pipelines cancelled",
		}),
		PipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "End-to-end duration of paper pipelines in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200, 1800, 3600},
		}),

		// Stages
		StageAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_attempts_total",
			Help:      "Total number of stage executions by stage",
		}, []string{"stage"}),
		StageFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Total number of stage failures by stage and error class",
		}, []string{"stage", "error_class"}),
		StageRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_retries_total",
			Help:      "Total number of stage retries by stage",
		}, []string{"stage"}),
		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of stage executions in seconds by stage",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"stage"}),

		// Papers
		PapersRegistered: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_registered_total",
			Help:      "Total number of papers registered by source kind",
		}, []string{"source"}),
		PapersDeduplicated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_deduplicated_total",
			Help:      "Total number of papers skipped as DOI duplicates",
		}),
		PapersFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_failed_total",
			Help:      "Total number of papers that reached the failed status",
		}),

		// Summaries
		SummariesGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_generated_total",
			Help:      "Total number of summaries generated by type",
		}, []string{"type"}),
		SynthesesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syntheses_skipped_total",
			Help:      "Total number of topics skipped at synthesis for lack of papers",
		}),

		// Sources
		SourceRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Total number of requests to paper sources",
		}, []string{"source", "endpoint"}),
		SourceRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_failed_total",
			Help:      "Total number of failed requests to paper sources",
		}, []string{"source", "endpoint", "error_type"}),
		SourceRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_request_duration_seconds",
			Help:      "Duration of requests to paper sources in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source", "endpoint"}),

		// LLM
		LLMRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM requests by operation",
		}, []string{"operation", "model"}),
		LLMRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_failed_total",
			Help:      "Total number of failed LLM requests by operation",
		}, []string{"operation", "model", "error_type"}),
		LLMRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Duration of LLM requests in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"operation", "model"}),
	}
}

// RecordPipelineStarted records that a pipeline run has started.
func (m *Metrics) RecordPipelineStarted() {
	m.PipelinesStarted.Inc()
}

// RecordPipelineCompleted records that a pipeline run has completed.
func (m *Metrics) RecordPipelineCompleted(durationSeconds float64) {
	m.PipelinesCompleted.Inc()
	m.PipelineDuration.Observe(durationSeconds)
}

// RecordPipelineFailed records that a pipeline run has failed.
func (m *Metrics) RecordPipelineFailed(durationSeconds float64) {
	m.PipelinesFailed.Inc()
	m.PipelineDuration.Observe(durationSeconds)
}

// RecordPipelineCancelled records that a pipeline run was cancelled.
func (m *Metrics) RecordPipelineCancelled() {
	m.PipelinesCancelled.Inc()
}

// RecordStageAttempt records a stage execution.
func (m *Metrics) RecordStageAttempt(stage string, durationSeconds float64) {
	m.StageAttempts.WithLabelValues(stage).Inc()
	m.StageDuration.WithLabelValues(stage).Observe(durationSeconds)
}

// RecordStageFailure records a stage failure with its error classification.
func (m *Metrics) RecordStageFailure(stage, errorClass string) {
	m.StageFailures.WithLabelValues(stage, errorClass).Inc()
}

// RecordStageRetry records a retry of a stage after a transient failure.
func (m *Metrics) RecordStageRetry(stage string) {
	m.StageRetries.WithLabelValues(stage).Inc()
}

// RecordPaperRegistered records a paper admitted into the pipeline.
func (m *Metrics) RecordPaperRegistered(source string) {
	m.PapersRegistered.WithLabelValues(source).Inc()
}

// RecordPaperDeduplicated records a paper skipped as a DOI duplicate.
func (m *Metrics) RecordPaperDeduplicated() {
	m.PapersDeduplicated.Inc()
}

// RecordPaperFailed records a paper that reached the failed status.
func (m *Metrics) RecordPaperFailed() {
	m.PapersFailed.Inc()
}

// RecordSummaryGenerated records a generated summary.
func (m *Metrics) RecordSummaryGenerated(summaryType string) {
	m.SummariesGenerated.WithLabelValues(summaryType).Inc()
}

// RecordSynthesisSkipped records a topic skipped at synthesis.
func (m *Metrics) RecordSynthesisSkipped() {
	m.SynthesesSkipped.Inc()
}

// RecordSourceRequest records a request to a paper source.
func (m *Metrics) RecordSourceRequest(source, endpoint string, durationSeconds float64) {
	m.SourceRequestsTotal.WithLabelValues(source, endpoint).Inc()
	m.SourceRequestDuration.WithLabelValues(source, endpoint).Observe(durationSeconds)
}

// RecordSourceRequestFailed records a failed request to a paper source.
func (m *Metrics) RecordSourceRequestFailed(source, endpoint, errorType string) {
	m.SourceRequestsFailed.WithLabelValues(source, endpoint, errorType).Inc()
}

// RecordLLMRequest records an LLM request.
func (m *Metrics) RecordLLMRequest(operation, model string, durationSeconds float64) {
	m.LLMRequestsTotal.WithLabelValues(operation, model).Inc()
	m.LLMRequestDuration.WithLabelValues(operation, model).Observe(durationSeconds)
}

// RecordLLMRequestFailed records a failed LLM request.
func (m *Metrics) RecordLLMRequestFailed(operation, model, errorType string) {
	m.LLMRequestsFailed.WithLabelValues(operation, model, errorType).Inc()
}
