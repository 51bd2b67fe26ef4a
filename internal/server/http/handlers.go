package httpserver

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
	pstemporal "github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/temporal"
)

const (
	// maxRequestBodySize caps JSON request bodies at 1MB.
	maxRequestBodySize = 1 << 20

	// maxUploadSize caps multipart paper uploads at 32MB.
	maxUploadSize = 32 << 20

	defaultPageSize = 50
	maxPageSize     = 100
)

// decodeJSON reads and decodes a JSON request body into v, enforcing the
// body size cap and rejecting unknown fields.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.NewValidationError("body", fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

// writeDomainError maps domain and workflow errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, validationErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, pstemporal.ErrWorkflowNotFound):
		writeError(w, http.StatusNotFound, "pipeline not found")
	case errors.Is(err, pstemporal.ErrWorkflowAlreadyStarted):
		writeError(w, http.StatusConflict, "pipeline already running")
	case errors.Is(err, pstemporal.ErrResourceExhausted):
		writeError(w, http.StatusTooManyRequests, "workflow service overloaded")
	case errors.Is(err, pstemporal.ErrConnectionFailed):
		writeError(w, http.StatusServiceUnavailable, "workflow service unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseUUID parses the named chi URL parameter as a UUID.
func parseUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(param, "must be a valid UUID")
	}
	return id, nil
}

// parsePaginationParams reads page_size and page_token query parameters.
// The token is the base64-encoded offset of the next page.
func parsePaginationParams(r *http.Request) (limit, offset int, err error) {
	limit = defaultPageSize
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return 0, 0, domain.NewValidationError("page_size", "must be a positive integer")
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}
	}

	if raw := r.URL.Query().Get("page_token"); raw != "" {
		decoded, decErr := base64.URLEncoding.DecodeString(raw)
		if decErr != nil {
			return 0, 0, domain.NewValidationError("page_token", "malformed page token")
		}
		offset, err = strconv.Atoi(string(decoded))
		if err != nil || offset < 0 {
			return 0, 0, domain.NewValidationError("page_token", "malformed page token")
		}
	}

	return limit, offset, nil
}

// encodePageToken builds the opaque token for the next page, or an empty
// string when the listing is exhausted.
func encodePageToken(offset, limit int, total int64) string {
	next := offset + limit
	if int64(next) >= total {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(strconv.Itoa(next)))
}
