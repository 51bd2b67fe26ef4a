package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/repository"
	pstemporal "github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/temporal"
)

// allowedUploadExtensions lists the file types accepted for paper uploads.
var allowedUploadExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
}

// submitPaperRequest submits a single paper by reference. Exactly one of
// doi or url must be set; url submissions must carry a title because no
// metadata lookup is possible for a bare URL.
type submitPaperRequest struct {
	Title         string   `json:"title" validate:"omitempty,min=1,max=500"`
	Abstract      string   `json:"abstract" validate:"omitempty,max=10000"`
	DOI           string   `json:"doi" validate:"omitempty,max=255"`
	URL           string   `json:"url" validate:"omitempty,url,max=2048"`
	Topics        []string `json:"topics" validate:"omitempty,max=20,dive,min=1,max=100"`
	GenerateAudio bool     `json:"generate_audio"`
}

// submitPaper handles POST /api/v1/papers. The endpoint accepts either a
// multipart file upload or a JSON reference submission, and starts a
// single-paper pipeline run for the result.
func (s *Server) submitPaper(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		s.submitPaperUpload(w, r)
		return
	}
	s.submitPaperReference(w, r)
}

// submitPaperUpload ingests an uploaded document.
func (s *Server) submitPaperUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeDomainError(w, domain.NewValidationError("body", "malformed multipart request"))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		writeDomainError(w, domain.NewValidationError("title", "title is required for uploads"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDomainError(w, domain.NewValidationError("file", "file is required"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedUploadExtensions[ext] {
		writeDomainError(w, domain.NewValidationError("file", "unsupported file type, expected .pdf or .txt"))
		return
	}

	localPath, err := s.saveUpload(file, ext)
	if err != nil {
		s.logger.Error().Err(err).Str("filename", header.Filename).Msg("failed to store uploaded paper")
		writeError(w, http.StatusInternalServerError, "failed to store uploaded file")
		return
	}

	submission := pstemporal.PaperSubmission{
		Title:     title,
		Abstract:  strings.TrimSpace(r.FormValue("abstract")),
		DOI:       strings.TrimSpace(r.FormValue("doi")),
		LocalPath: localPath,
		Source:    domain.SourceKindUpload,
	}

	s.startSinglePaperPipeline(w, r, submission, splitTopicsField(r.FormValue("topics")), r.FormValue("generate_audio") == "true")
}

// submitPaperReference ingests a JSON submission referencing a DOI or URL.
func (s *Server) submitPaperReference(w http.ResponseWriter, r *http.Request) {
	var req submitPaperRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	switch {
	case req.DOI != "":
		work, err := s.resolver.Work(r.Context(), req.DOI)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeDomainError(w, domain.NewValidationError("doi", "DOI could not be resolved"))
				return
			}
			writeDomainError(w, err)
			return
		}

		submission := pstemporal.PaperSubmission{
			Title:           work.Title,
			Abstract:        work.Abstract,
			Authors:         work.Authors,
			PublicationYear: work.Year,
			DOI:             work.DOI,
			SourceURL:       work.URL,
			Source:          domain.SourceKindDOI,
		}
		if req.Title != "" {
			submission.Title = req.Title
		}
		if req.Abstract != "" {
			submission.Abstract = req.Abstract
		}
		s.startSinglePaperPipeline(w, r, submission, req.Topics, req.GenerateAudio)

	case req.URL != "":
		if req.Title == "" {
			writeDomainError(w, domain.NewValidationError("title", "title is required for URL submissions"))
			return
		}
		submission := pstemporal.PaperSubmission{
			Title:     req.Title,
			Abstract:  req.Abstract,
			SourceURL: req.URL,
			Source:    domain.SourceKindURL,
		}
		s.startSinglePaperPipeline(w, r, submission, req.Topics, req.GenerateAudio)

	default:
		writeDomainError(w, domain.NewValidationError("doi", "one of doi or url is required"))
	}
}

// startSinglePaperPipeline starts a pipeline run carrying one direct
// submission and no discovery query.
func (s *Server) startSinglePaperPipeline(w http.ResponseWriter, r *http.Request, submission pstemporal.PaperSubmission, topics []string, generateAudio bool) {
	input := pstemporal.PipelineWorkflowInput{
		PipelineID:    uuid.New(),
		Topics:        topics,
		Papers:        []pstemporal.PaperSubmission{submission},
		GenerateAudio: generateAudio,
	}

	workflowID, runID, err := s.workflowClient.StartPipelineWorkflow(r.Context(), input, s.workflowFunc)
	if err != nil {
		s.logger.Error().Err(err).Str("title", submission.Title).Msg("failed to start paper pipeline")
		writeDomainError(w, err)
		return
	}

	s.logger.Info().
		Str("pipeline_id", input.PipelineID.String()).
		Str("title", submission.Title).
		Str("source", string(submission.Source)).
		Msg("paper submitted")

	writeJSON(w, http.StatusAccepted, paperSubmitResponse{
		PipelineID: input.PipelineID.String(),
		WorkflowID: workflowID,
		RunID:      runID,
		Title:      submission.Title,
		Status:     "running",
	})
}

// saveUpload writes the uploaded document under the uploads directory with
// a generated name, returning the stored path.
func (s *Server) saveUpload(src io.Reader, ext string) (string, error) {
	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads directory: %w", err)
	}

	path := filepath.Join(s.uploadsDir, uuid.New().String()+ext)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, maxUploadSize)); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return path, nil
}

// splitTopicsField parses the comma-separated topics form field.
func splitTopicsField(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	topics := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			topics = append(topics, t)
		}
	}
	return topics
}

// listPapers handles GET /api/v1/papers.
func (s *Server) listPapers(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePaginationParams(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	filter := repository.PaperFilter{Limit: limit, Offset: offset}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.PaperStatus(raw)
		if status.Rank() < 0 {
			writeDomainError(w, domain.NewValidationError("status", "unknown paper status"))
			return
		}
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("topic_id"); raw != "" {
		topicID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			writeDomainError(w, domain.NewValidationError("topic_id", "must be a valid UUID"))
			return
		}
		filter.TopicID = &topicID
	}

	papers, total, err := s.paperRepo.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := paperListResponse{
		Papers:        make([]paperResponse, 0, len(papers)),
		TotalCount:    total,
		NextPageToken: encodePageToken(offset, limit, total),
	}
	for _, p := range papers {
		resp.Papers = append(resp.Papers, domainPaperToResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// getPaper handles GET /api/v1/papers/{paperID}.
func (s *Server) getPaper(w http.ResponseWriter, r *http.Request) {
	paperID, err := parseUUID(r, "paperID")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	paper, err := s.paperRepo.GetByID(r.Context(), paperID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domainPaperToResponse(paper))
}

// getPaperSummary handles GET /api/v1/papers/{paperID}/summary.
func (s *Server) getPaperSummary(w http.ResponseWriter, r *http.Request) {
	paperID, err := parseUUID(r, "paperID")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	summary, err := s.summaryRepo.GetForPaper(r.Context(), paperID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domainSummaryToResponse(summary))
}
