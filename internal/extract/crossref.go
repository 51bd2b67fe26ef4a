package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

const defaultCrossrefBaseURL = "https://api.crossref.org"

// Work holds the Crossref metadata for a DOI.
type Work struct {
	DOI      string
	Title    string
	Abstract string
	Authors  []domain.Author
	Year     int
	Venue    string
	URL      string
}

// CrossrefClient resolves DOIs against the Crossref works API.
type CrossrefClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewCrossrefClient creates a CrossrefClient. A nil client gets a default
// with a 30 second timeout.
func NewCrossrefClient(client *http.Client) *CrossrefClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &CrossrefClient{httpClient: client, baseURL: defaultCrossrefBaseURL}
}

// WithBaseURL overrides the API base URL and returns the client.
func (c *CrossrefClient) WithBaseURL(baseURL string) *CrossrefClient {
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

type crossrefResponse struct {
	Message struct {
		DOI      string     `json:"DOI"`
		Title    []string   `json:"title"`
		Abstract string     `json:"abstract"`
		Author   []struct {
			Given  string `json:"given"`
			Family string `json:"family"`
		} `json:"author"`
		ContainerTitle []string `json:"container-title"`
		Issued         struct {
			DateParts [][]int `json:"date-parts"`
		} `json:"issued"`
		URL string `json:"URL"`
	} `json:"message"`
}

// Work fetches the metadata registered for a DOI.
func (c *CrossrefClient) Work(ctx context.Context, doi string) (*Work, error) {
	doi = domain.NormalizeDOI(doi)
	if doi == "" {
		return nil, fmt.Errorf("%w: empty DOI", domain.ErrInvalidInput)
	}

	endpoint := c.baseURL + "/works/" + url.PathEscape(doi)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: crossref: %v", domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.NewNotFoundError("doi", doi)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.NewRateLimitError("crossref", retryAfter(resp))
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: crossref returned %s", domain.ErrServiceUnavailable, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, domain.NewExternalAPIError("crossref", resp.StatusCode,
			fmt.Sprintf("resolving DOI %s", doi), nil)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("reading crossref response: %w", err)
	}

	var parsed crossrefResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decoding crossref response: %w", err)
	}

	msg := parsed.Message
	work := &Work{
		DOI:      domain.NormalizeDOI(msg.DOI),
		Abstract: stripJATS(msg.Abstract),
		URL:      msg.URL,
	}
	if work.DOI == "" {
		work.DOI = doi
	}
	if len(msg.Title) > 0 {
		work.Title = strings.TrimSpace(msg.Title[0])
	}
	if len(msg.ContainerTitle) > 0 {
		work.Venue = strings.TrimSpace(msg.ContainerTitle[0])
	}
	if len(msg.Issued.DateParts) > 0 && len(msg.Issued.DateParts[0]) > 0 {
		work.Year = msg.Issued.DateParts[0][0]
	}
	for _, a := range msg.Author {
		name := strings.TrimSpace(strings.TrimSpace(a.Given) + " " + strings.TrimSpace(a.Family))
		if name != "" {
			work.Authors = append(work.Authors, domain.Author{Name: name})
		}
	}
	return work, nil
}

var jatsTagRe = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)

// stripJATS removes the JATS XML markup Crossref wraps abstracts in.
func stripJATS(s string) string {
	s = jatsTagRe.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimPrefix(s, "Abstract ")
	return strings.TrimSpace(s)
}
