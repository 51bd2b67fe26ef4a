package httpserver

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/repository"
)

// listTopics handles GET /api/v1/topics.
func (s *Server) listTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := s.topicRepo.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := topicListResponse{Topics: make([]topicResponse, 0, len(topics))}
	for _, t := range topics {
		resp.Topics = append(resp.Topics, domainTopicToResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

// getTopicSynthesis handles GET /api/v1/topics/{topicID}/synthesis.
func (s *Server) getTopicSynthesis(w http.ResponseWriter, r *http.Request) {
	topicID, err := parseUUID(r, "topicID")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	synthesis, err := s.summaryRepo.GetForTopic(r.Context(), topicID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domainSummaryToResponse(synthesis))
}

// listSummaries handles GET /api/v1/summaries.
func (s *Server) listSummaries(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePaginationParams(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	filter := repository.SummaryFilter{Limit: limit, Offset: offset}
	if raw := r.URL.Query().Get("type"); raw != "" {
		summaryType := domain.SummaryType(raw)
		if summaryType != domain.SummaryTypeIndividual && summaryType != domain.SummaryTypeSynthesis {
			writeDomainError(w, domain.NewValidationError("type", "unknown summary type"))
			return
		}
		filter.Type = &summaryType
	}
	if raw := r.URL.Query().Get("topic_id"); raw != "" {
		topicID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			writeDomainError(w, domain.NewValidationError("topic_id", "must be a valid UUID"))
			return
		}
		filter.TopicID = &topicID
	}

	summaries, err := s.summaryRepo.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := summaryListResponse{Summaries: make([]summaryResponse, 0, len(summaries))}
	// The summary listing has no total count, so the next page token is
	// emitted whenever the current page came back full.
	if len(summaries) == limit {
		resp.NextPageToken = encodePageToken(offset, limit, int64(offset+limit+1))
	}
	for _, sum := range summaries {
		resp.Summaries = append(resp.Summaries, domainSummaryToResponse(sum))
	}
	writeJSON(w, http.StatusOK, resp)
}
