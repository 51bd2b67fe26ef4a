// Package httpserver provides the HTTP REST API for the paper
// summarization service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/database"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/extract"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/repository"
	pstemporal "github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/temporal"
)

// WorkflowClient defines the workflow operations the HTTP server uses.
// Satisfied by *pstemporal.PipelineWorkflowClient.
type WorkflowClient interface {
	StartPipelineWorkflow(ctx context.Context, input pstemporal.PipelineWorkflowInput, workflowFunc interface{}) (workflowID, runID string, err error)
	SignalWorkflow(ctx context.Context, workflowID, runID, signalName string, arg interface{}) error
	QueryWorkflow(ctx context.Context, workflowID, runID, queryType string, result interface{}, args ...interface{}) error
	DescribeWorkflow(ctx context.Context, workflowID, runID string) (*pstemporal.WorkflowDescription, error)
	CancelWorkflow(ctx context.Context, workflowID, runID string) error
	GetWorkflowResult(ctx context.Context, workflowID, runID string, result interface{}) error
}

// MetadataResolver resolves a DOI to its bibliographic metadata. Satisfied
// by *extract.CrossrefClient.
type MetadataResolver interface {
	Work(ctx context.Context, doi string) (*extract.Work, error)
}

// HealthChecker reports backing-store health. Satisfied by *database.DB.
type HealthChecker interface {
	Health(ctx context.Context) database.HealthStatus
}

// Server is the HTTP REST API server.
type Server struct {
	router         chi.Router
	httpServer     *http.Server
	workflowClient WorkflowClient
	workflowFunc   interface{} // The Temporal workflow function reference.
	paperRepo      repository.PaperRepository
	topicRepo      repository.TopicRepository
	summaryRepo    repository.SummaryRepository
	resolver       MetadataResolver
	db             HealthChecker
	uploadsDir     string
	maxPapers      int
	validate       *validator.Validate
	logger         zerolog.Logger
	metricsPath    string
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// UploadsDir is where uploaded paper files are stored.
	UploadsDir string

	// MaxPapers caps max_results on search-driven pipeline requests.
	MaxPapers int

	// MetricsPath exposes the Prometheus handler when non-empty.
	MetricsPath string
}

// NewServer creates a new HTTP server with all dependencies.
// workflowFunc is the Temporal workflow function reference
// (workflows.PaperPipelineWorkflow) passed to StartPipelineWorkflow.
func NewServer(
	cfg Config,
	workflowClient WorkflowClient,
	workflowFunc interface{},
	paperRepo repository.PaperRepository,
	topicRepo repository.TopicRepository,
	summaryRepo repository.SummaryRepository,
	resolver MetadataResolver,
	db HealthChecker,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		workflowClient: workflowClient,
		workflowFunc:   workflowFunc,
		paperRepo:      paperRepo,
		topicRepo:      topicRepo,
		summaryRepo:    summaryRepo,
		resolver:       resolver,
		db:             db,
		uploadsDir:     cfg.UploadsDir,
		maxPapers:      cfg.MaxPapers,
		validate:       validator.New(),
		logger:         logger.With().Str("component", "http-server").Logger(),
		metricsPath:    cfg.MetricsPath,
	}
	if s.maxPapers <= 0 {
		s.maxPapers = 20
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)
	r.Use(s.requestLogMiddleware)

	// Health endpoints
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	if s.metricsPath != "" {
		r.Handle(s.metricsPath, promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jsonContentTypeMiddleware)

		r.Post("/pipelines", s.startPipeline)
		r.Get("/pipelines/{pipelineID}", s.getPipelineProgress)
		r.Get("/pipelines/{pipelineID}/result", s.getPipelineResult)
		r.Delete("/pipelines/{pipelineID}", s.cancelPipeline)

		r.Post("/papers", s.submitPaper)
		r.Get("/papers", s.listPapers)
		r.Get("/papers/{paperID}", s.getPaper)
		r.Get("/papers/{paperID}/summary", s.getPaperSummary)

		r.Get("/topics", s.listTopics)
		r.Get("/topics/{topicID}/synthesis", s.getTopicSynthesis)

		r.Get("/summaries", s.listSummaries)
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Router returns the configured router, used by tests to drive requests
// without a listening socket.
func (s *Server) Router() chi.Router {
	return s.router
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status == "healthy" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": health.Status})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status":   "unhealthy",
		"database": health.Status,
		"error":    health.Error,
	})
}

// readinessHandler returns readiness status.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "healthy",
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
