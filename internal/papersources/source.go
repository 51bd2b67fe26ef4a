// Package papersources provides clients for discovering papers in academic
// databases. Each source implements the PaperSource interface so discovery
// can query several databases through one API.
package papersources

import (
	"context"
	"time"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

// SearchParams defines the parameters for a paper search.
type SearchParams struct {
	// Query is the search query string (required).
	Query string

	// MaxResults limits the number of papers returned in a single request.
	// A value of 0 uses the source's default limit.
	MaxResults int

	// Offset is the starting position for paginated results.
	Offset int

	// YearFrom filters papers published in or after this year. Zero means
	// no lower bound.
	YearFrom int

	// YearTo filters papers published in or before this year. Zero means
	// no upper bound.
	YearTo int

	// OpenAccessOnly filters results to papers with an open access PDF.
	OpenAccessOnly bool
}

// SearchResult contains the results of one search against one source.
type SearchResult struct {
	// Papers are the matching papers. May be empty.
	Papers []*domain.Paper

	// TotalResults is the source's reported total match count, which may
	// be an estimate.
	TotalResults int

	// HasMore indicates additional pages are available.
	HasMore bool

	// NextOffset is the offset for the next page. Meaningful only when
	// HasMore is true.
	NextOffset int

	// Source names the source that produced these results.
	Source string

	// SearchDuration is the time the search took, including network
	// latency and parsing.
	SearchDuration time.Duration
}

// PaperSource is a searchable academic paper database.
//
// Implementations should respect context cancellation, apply their own rate
// limiting, and convert source responses to domain.Paper values.
type PaperSource interface {
	// Search queries the source for papers matching the parameters.
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)

	// Name returns the source name used for logging and attribution.
	Name() string

	// IsEnabled reports whether the source is available for searches.
	IsEnabled() bool
}
