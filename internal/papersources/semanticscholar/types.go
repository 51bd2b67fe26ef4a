// Package semanticscholar provides a client for the Semantic Scholar Graph
// API, implementing the papersources.PaperSource interface.
//
// API documentation: https://api.semanticscholar.org/api-docs/
package semanticscholar

// SearchResponse represents the paper search endpoint response.
type SearchResponse struct {
	// Total is the total number of papers matching the query.
	Total int `json:"total"`

	// Offset is the current offset in the result set.
	Offset int `json:"offset"`

	// Next is the offset for the next page. Zero means no more results.
	Next int `json:"next"`

	// Data contains the papers returned by the search.
	Data []PaperResult `json:"data"`
}

// PaperResult represents a single paper in an API response.
type PaperResult struct {
	// PaperID is the Semantic Scholar identifier.
	PaperID string `json:"paperId"`

	// Title is the paper title.
	Title string `json:"title"`

	// Abstract is the abstract text.
	Abstract string `json:"abstract"`

	// Year is the publication year.
	Year int `json:"year"`

	// Venue is the publication venue.
	Venue string `json:"venue"`

	// Authors is the author list.
	Authors []Author `json:"authors"`

	// IsOpenAccess indicates whether the paper is open access.
	IsOpenAccess bool `json:"isOpenAccess"`

	// OpenAccessPDF describes the open access PDF when available.
	OpenAccessPDF *OpenAccessPDF `json:"openAccessPdf,omitempty"`

	// ExternalIDs carries external identifiers (DOI, arXiv, PubMed).
	ExternalIDs *ExternalIDs `json:"externalIds,omitempty"`
}

// ExternalIDs contains external identifiers for a paper.
type ExternalIDs struct {
	DOI           string `json:"DOI,omitempty"`
	ArXiv         string `json:"ArXiv,omitempty"`
	PubMed        string `json:"PubMed,omitempty"`
	PubMedCentral string `json:"PubMedCentral,omitempty"`
}

// Author represents a paper author in the API.
type Author struct {
	AuthorID string `json:"authorId,omitempty"`
	Name     string `json:"name"`
}

// OpenAccessPDF describes an open access PDF.
type OpenAccessPDF struct {
	URL    string `json:"url,omitempty"`
	Status string `json:"status,omitempty"`
}

// ErrorResponse represents an API error payload.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
