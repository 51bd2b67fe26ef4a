package httpserver

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
	pstemporal "github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/temporal"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/temporal/resilience"
)

// startPipelineRequest starts a search-driven pipeline run.
type startPipelineRequest struct {
	Query         string   `json:"query" validate:"required,min=3,max=500"`
	MaxResults    int      `json:"max_results" validate:"omitempty,min=1"`
	YearFrom      int      `json:"year_from" validate:"omitempty,min=1900,max=2100"`
	YearTo        int      `json:"year_to" validate:"omitempty,min=1900,max=2100"`
	Topics        []string `json:"topics" validate:"omitempty,max=20,dive,min=1,max=100"`
	GenerateAudio bool     `json:"generate_audio"`
}

// progressQueryResult mirrors the workflow progress query payload.
type progressQueryResult struct {
	Phase            string
	PapersTotal      int
	PapersExtracted  int
	PapersClassified int
	PapersSummarized int
	PapersFailed     int
	SynthesesCreated int
	Retry            *resilience.Progress
}

// startPipeline handles POST /api/v1/pipelines.
func (s *Server) startPipeline(w http.ResponseWriter, r *http.Request) {
	var req startPipelineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.YearFrom != 0 && req.YearTo != 0 && req.YearTo < req.YearFrom {
		writeDomainError(w, domain.NewValidationError("year_to", "must not precede year_from"))
		return
	}

	maxResults := req.MaxResults
	if maxResults == 0 || maxResults > s.maxPapers {
		maxResults = s.maxPapers
	}

	input := pstemporal.PipelineWorkflowInput{
		PipelineID:    uuid.New(),
		Query:         req.Query,
		MaxResults:    maxResults,
		YearFrom:      req.YearFrom,
		YearTo:        req.YearTo,
		Topics:        req.Topics,
		GenerateAudio: req.GenerateAudio,
	}

	workflowID, runID, err := s.workflowClient.StartPipelineWorkflow(r.Context(), input, s.workflowFunc)
	if err != nil {
		s.logger.Error().Err(err).Str("query", req.Query).Msg("failed to start pipeline workflow")
		writeDomainError(w, err)
		return
	}

	s.logger.Info().
		Str("pipeline_id", input.PipelineID.String()).
		Str("workflow_id", workflowID).
		Str("query", req.Query).
		Msg("pipeline started")

	writeJSON(w, http.StatusAccepted, pipelineResponse{
		PipelineID: input.PipelineID.String(),
		WorkflowID: workflowID,
		RunID:      runID,
		Status:     "running",
	})
}

// getPipelineProgress handles GET /api/v1/pipelines/{pipelineID}.
func (s *Server) getPipelineProgress(w http.ResponseWriter, r *http.Request) {
	pipelineID, err := parseUUID(r, "pipelineID")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	workflowID := pstemporal.PipelineWorkflowID(pipelineID)
	desc, err := s.workflowClient.DescribeWorkflow(r.Context(), workflowID, "")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := descriptionToProgressResponse(pipelineID.String(), desc)

	// The progress query is best effort: a workflow torn down between the
	// describe and the query still yields the description.
	var progress progressQueryResult
	if qErr := s.workflowClient.QueryWorkflow(r.Context(), workflowID, "", pstemporal.QueryProgress, &progress); qErr == nil {
		resp.Phase = progress.Phase
		resp.PapersTotal = progress.PapersTotal
		resp.PapersExtracted = progress.PapersExtracted
		resp.PapersClassified = progress.PapersClassified
		resp.PapersSummarized = progress.PapersSummarized
		resp.PapersFailed = progress.PapersFailed
		resp.SynthesesCreated = progress.SynthesesCreated
		if progress.Retry != nil {
			resp.Retry = &retryStateResponse{
				Stage:     progress.Retry.RetryStage,
				Attempt:   progress.Retry.RetryAttempt,
				LastError: progress.Retry.LastRetryError,
			}
		}
	} else {
		s.logger.Warn().Err(qErr).Str("workflow_id", workflowID).Msg("progress query failed")
	}

	writeJSON(w, http.StatusOK, resp)
}

// workflowResultPayload mirrors the workflow result payload.
type workflowResultPayload struct {
	PipelineID         uuid.UUID
	Status             string
	PapersDiscovered   int
	PapersRegistered   int
	PapersDeduplicated int
	PapersProcessed    int
	PapersClassified   int
	PapersSummarized   int
	PapersFailed       int
	SynthesesCreated   int
	SynthesesSkipped   int
	AudioRendered      int
	Duration           float64
}

// getPipelineResult handles GET /api/v1/pipelines/{pipelineID}/result.
// The result is only available once the run has completed; callers polling
// a running pipeline get 409 and should use the progress endpoint instead.
func (s *Server) getPipelineResult(w http.ResponseWriter, r *http.Request) {
	pipelineID, err := parseUUID(r, "pipelineID")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	workflowID := pstemporal.PipelineWorkflowID(pipelineID)
	desc, err := s.workflowClient.DescribeWorkflow(r.Context(), workflowID, "")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if desc.CloseTime == nil {
		writeError(w, http.StatusConflict, "pipeline is still running")
		return
	}
	if desc.Status != "Completed" {
		writeError(w, http.StatusConflict, "pipeline did not complete: "+desc.Status)
		return
	}

	var result workflowResultPayload
	if err := s.workflowClient.GetWorkflowResult(r.Context(), workflowID, desc.RunID, &result); err != nil {
		s.logger.Error().Err(err).Str("workflow_id", workflowID).Msg("failed to fetch pipeline result")
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pipelineResultResponse{
		PipelineID:         pipelineID.String(),
		Status:             result.Status,
		PapersDiscovered:   result.PapersDiscovered,
		PapersRegistered:   result.PapersRegistered,
		PapersDeduplicated: result.PapersDeduplicated,
		PapersProcessed:    result.PapersProcessed,
		PapersClassified:   result.PapersClassified,
		PapersSummarized:   result.PapersSummarized,
		PapersFailed:       result.PapersFailed,
		SynthesesCreated:   result.SynthesesCreated,
		SynthesesSkipped:   result.SynthesesSkipped,
		AudioRendered:      result.AudioRendered,
		DurationSeconds:    result.Duration,
	})
}

// cancelPipeline handles DELETE /api/v1/pipelines/{pipelineID}.
//
// The default path sends the cooperative cancel signal and lets the workflow
// publish its cancellation event. force=true cancels the workflow through
// the Temporal server instead, for runs whose signal handling is stuck.
func (s *Server) cancelPipeline(w http.ResponseWriter, r *http.Request) {
	pipelineID, err := parseUUID(r, "pipelineID")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	workflowID := pstemporal.PipelineWorkflowID(pipelineID)

	if r.URL.Query().Get("force") == "true" {
		if err := s.workflowClient.CancelWorkflow(r.Context(), workflowID, ""); err != nil {
			writeDomainError(w, err)
			return
		}

		s.logger.Info().Str("pipeline_id", pipelineID.String()).Msg("pipeline force-cancelled")

		writeJSON(w, http.StatusAccepted, map[string]string{
			"pipeline_id": pipelineID.String(),
			"status":      "cancelling",
		})
		return
	}

	if err := s.workflowClient.SignalWorkflow(r.Context(), workflowID, "", pstemporal.SignalCancel, nil); err != nil {
		writeDomainError(w, err)
		return
	}

	s.logger.Info().Str("pipeline_id", pipelineID.String()).Msg("pipeline cancellation requested")

	writeJSON(w, http.StatusAccepted, map[string]string{
		"pipeline_id": pipelineID.String(),
		"status":      "cancelling",
	})
}
