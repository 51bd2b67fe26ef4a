package semanticscholar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/papersources"
)

const (
	// DefaultBaseURL is the Semantic Scholar Graph API base URL.
	DefaultBaseURL = "https://api.semanticscholar.org/graph/v1"

	// DefaultRateLimit is the request rate for unauthenticated clients.
	DefaultRateLimit = 1.0

	// DefaultBurstSize is the default rate limiter burst.
	DefaultBurstSize = 2

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default page size.
	DefaultMaxResults = 20

	// apiKeyHeader carries the Semantic Scholar API key.
	apiKeyHeader = "x-api-key"

	// paperFields lists the fields requested from the API.
	paperFields = "paperId,externalIds,title,abstract,year,venue,authors,isOpenAccess,openAccessPdf"

	// sourceName is the registry name for this source.
	sourceName = "semantic_scholar"
)

// Config contains configuration for the Semantic Scholar client.
type Config struct {
	// BaseURL overrides the API base URL.
	BaseURL string

	// APIKey is an optional key; authenticated requests get higher limits.
	APIKey string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the rate limiter burst.
	BurstSize int

	// MaxResults caps the page size.
	MaxResults int

	// Enabled controls whether the source participates in searches.
	Enabled bool
}

// Client implements papersources.PaperSource for Semantic Scholar.
type Client struct {
	httpClient *papersources.HTTPClient
	config     Config
}

var _ papersources.PaperSource = (*Client)(nil)

// NewClient creates a Semantic Scholar client. A nil httpClient gets a new
// one built from the configuration.
func NewClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = DefaultBurstSize
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = DefaultMaxResults
	}

	if httpClient == nil {
		httpClient = papersources.NewHTTPClient(papersources.HTTPClientConfig{
			Timeout:      cfg.Timeout,
			RateLimit:    cfg.RateLimit,
			BurstSize:    cfg.BurstSize,
			APIKey:       cfg.APIKey,
			APIKeyHeader: apiKeyHeader,
		})
	}

	return &Client{httpClient: httpClient, config: cfg}
}

// Name returns the registry name for this source.
func (c *Client) Name() string { return sourceName }

// IsEnabled reports whether the source participates in searches.
func (c *Client) IsEnabled() bool { return c.config.Enabled }

// Search queries Semantic Scholar for papers matching the parameters.
func (c *Client) Search(ctx context.Context, params papersources.SearchParams) (*papersources.SearchResult, error) {
	start := time.Now()

	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrServiceUnavailable, sourceName, err)
	}
	defer resp.Body.Close()

	if err := c.handleErrorResponse(resp); err != nil {
		return nil, err
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &papersources.SearchResult{
		Papers:         convertPapers(searchResp.Data),
		TotalResults:   searchResp.Total,
		HasMore:        searchResp.Next > 0,
		NextOffset:     searchResp.Next,
		Source:         sourceName,
		SearchDuration: time.Since(start),
	}, nil
}

func (c *Client) buildSearchURL(params papersources.SearchParams) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	searchURL := baseURL.JoinPath("paper", "search")
	q := searchURL.Query()
	q.Set("query", params.Query)
	q.Set("fields", paperFields)

	limit := params.MaxResults
	if limit <= 0 || limit > c.config.MaxResults {
		limit = c.config.MaxResults
	}
	q.Set("limit", strconv.Itoa(limit))

	if params.Offset > 0 {
		q.Set("offset", strconv.Itoa(params.Offset))
	}
	if params.OpenAccessOnly {
		q.Set("openAccessPdf", "")
	}

	// Year filtering uses the "from-to" range syntax; either bound may be
	// open.
	switch {
	case params.YearFrom > 0 && params.YearTo > 0:
		q.Set("year", fmt.Sprintf("%d-%d", params.YearFrom, params.YearTo))
	case params.YearFrom > 0:
		q.Set("year", fmt.Sprintf("%d-", params.YearFrom))
	case params.YearTo > 0:
		q.Set("year", fmt.Sprintf("-%d", params.YearTo))
	}

	searchURL.RawQuery = q.Encode()
	return searchURL.String(), nil
}

func (c *Client) handleErrorResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return domain.NewRateLimitError(sourceName, 30*time.Second)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.NewExternalAPIError(sourceName, resp.StatusCode, "failed to read error response", err)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		message := errResp.Error
		if message == "" {
			message = errResp.Message
		}
		if message == "" {
			message = string(body)
		}
		return domain.NewExternalAPIError(sourceName, resp.StatusCode, message, nil)
	}
	return domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body), nil)
}

func convertPapers(results []PaperResult) []*domain.Paper {
	papers := make([]*domain.Paper, 0, len(results))
	for _, result := range results {
		papers = append(papers, convertPaper(result))
	}
	return papers
}

func convertPaper(result PaperResult) *domain.Paper {
	paper := &domain.Paper{
		Title:           strings.TrimSpace(result.Title),
		Abstract:        strings.TrimSpace(result.Abstract),
		PublicationYear: result.Year,
	}
	if result.ExternalIDs != nil {
		paper.DOI = domain.NormalizeDOI(result.ExternalIDs.DOI)
	}
	if result.OpenAccessPDF != nil {
		paper.SourceURL = result.OpenAccessPDF.URL
	}
	for _, a := range result.Authors {
		if a.Name != "" {
			paper.Authors = append(paper.Authors, domain.Author{Name: a.Name})
		}
	}
	return paper
}
