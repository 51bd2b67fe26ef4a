package httpserver

import (
	"time"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
	pstemporal "github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/temporal"
)

// pipelineResponse is returned when a pipeline run is started.
type pipelineResponse struct {
	PipelineID string `json:"pipeline_id"`
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
	Status     string `json:"status"`
}

// pipelineProgressResponse reports the state of a running or finished
// pipeline, combining the workflow description with the progress query.
type pipelineProgressResponse struct {
	PipelineID       string               `json:"pipeline_id"`
	WorkflowID       string               `json:"workflow_id"`
	RunID            string               `json:"run_id"`
	Status           string               `json:"status"`
	Phase            string               `json:"phase,omitempty"`
	PapersTotal      int                  `json:"papers_total"`
	PapersExtracted  int                  `json:"papers_extracted"`
	PapersClassified int                  `json:"papers_classified"`
	PapersSummarized int                  `json:"papers_summarized"`
	PapersFailed     int                  `json:"papers_failed"`
	SynthesesCreated int                  `json:"syntheses_created"`
	Retry            *retryStateResponse  `json:"retry,omitempty"`
	StartTime        time.Time            `json:"start_time"`
	CloseTime        *time.Time           `json:"close_time,omitempty"`
}

// pipelineResultResponse reports the final counts of a completed run.
type pipelineResultResponse struct {
	PipelineID         string  `json:"pipeline_id"`
	Status             string  `json:"status"`
	PapersDiscovered   int     `json:"papers_discovered"`
	PapersRegistered   int     `json:"papers_registered"`
	PapersDeduplicated int     `json:"papers_deduplicated"`
	PapersProcessed    int     `json:"papers_processed"`
	PapersClassified   int     `json:"papers_classified"`
	PapersSummarized   int     `json:"papers_summarized"`
	PapersFailed       int     `json:"papers_failed"`
	SynthesesCreated   int     `json:"syntheses_created"`
	SynthesesSkipped   int     `json:"syntheses_skipped"`
	AudioRendered      int     `json:"audio_rendered"`
	DurationSeconds    float64 `json:"duration_seconds"`
}

// retryStateResponse surfaces the retry state of a stage mid-backoff.
type retryStateResponse struct {
	Stage     string `json:"stage"`
	Attempt   int    `json:"attempt"`
	LastError string `json:"last_error,omitempty"`
}

// paperResponse is the wire representation of a paper.
type paperResponse struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Abstract        string          `json:"abstract,omitempty"`
	Authors         []domain.Author `json:"authors,omitempty"`
	PublicationYear int             `json:"publication_year,omitempty"`
	DOI             string          `json:"doi,omitempty"`
	SourceURL       string          `json:"source_url,omitempty"`
	Status          string          `json:"status"`
	FailureCause    string          `json:"failure_cause,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// paperListResponse is a paginated paper listing.
type paperListResponse struct {
	Papers        []paperResponse `json:"papers"`
	TotalCount    int64           `json:"total_count"`
	NextPageToken string          `json:"next_page_token,omitempty"`
}

// topicResponse is the wire representation of a topic.
type topicResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// topicListResponse is a topic listing.
type topicListResponse struct {
	Topics []topicResponse `json:"topics"`
}

// summaryResponse is the wire representation of a summary or synthesis.
type summaryResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	PaperID   string    `json:"paper_id,omitempty"`
	TopicID   string    `json:"topic_id,omitempty"`
	AudioPath string    `json:"audio_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// summaryListResponse is a paginated summary listing.
type summaryListResponse struct {
	Summaries     []summaryResponse `json:"summaries"`
	NextPageToken string            `json:"next_page_token,omitempty"`
}

// paperSubmitResponse is returned after a direct paper submission.
type paperSubmitResponse struct {
	PipelineID string `json:"pipeline_id"`
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
}

func domainPaperToResponse(p *domain.Paper) paperResponse {
	return paperResponse{
		ID:              p.ID.String(),
		Title:           p.Title,
		Abstract:        p.Abstract,
		Authors:         p.Authors,
		PublicationYear: p.PublicationYear,
		DOI:             p.DOI,
		SourceURL:       p.SourceURL,
		Status:          string(p.Status),
		FailureCause:    p.FailureCause,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func domainTopicToResponse(t *domain.Topic) topicResponse {
	return topicResponse{
		ID:        t.ID.String(),
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
	}
}

func domainSummaryToResponse(s *domain.Summary) summaryResponse {
	resp := summaryResponse{
		ID:        s.ID.String(),
		Type:      string(s.Type),
		Content:   s.Content,
		AudioPath: s.AudioPath,
		CreatedAt: s.CreatedAt,
	}
	if s.PaperID != nil {
		resp.PaperID = s.PaperID.String()
	}
	if s.TopicID != nil {
		resp.TopicID = s.TopicID.String()
	}
	return resp
}

func descriptionToProgressResponse(pipelineID string, desc *pstemporal.WorkflowDescription) pipelineProgressResponse {
	return pipelineProgressResponse{
		PipelineID: pipelineID,
		WorkflowID: desc.WorkflowID,
		RunID:      desc.RunID,
		Status:     desc.Status,
		StartTime:  desc.StartTime,
		CloseTime:  desc.CloseTime,
	}
}
