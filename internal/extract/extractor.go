// Package extract turns paper sources (local PDFs, web pages, DOIs) into
// plain text with detected sections and keywords.
package extract

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

// Result is the output of a text extraction.
type Result struct {
	// Title is the detected document title, empty when undetectable.
	Title string
	// Text is the full extracted plain text.
	Text string
	// Sections maps detected section names to their text.
	Sections map[string]string
	// Keywords are frequency-ranked content words from the text.
	Keywords []string
}

// Extractor extracts text from the sources a paper can carry.
type Extractor struct {
	httpClient *http.Client
	crossref   *CrossrefClient
	logger     zerolog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithHTTPClient overrides the HTTP client used for URL fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Extractor) {
		if client != nil {
			e.httpClient = client
		}
	}
}

// WithCrossrefClient overrides the Crossref client used for DOI resolution.
func WithCrossrefClient(client *CrossrefClient) Option {
	return func(e *Extractor) {
		if client != nil {
			e.crossref = client
		}
	}
}

// NewExtractor creates an Extractor.
func NewExtractor(logger zerolog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With().Str("component", "extractor").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.crossref == nil {
		e.crossref = NewCrossrefClient(e.httpClient)
	}
	return e
}

// FromFile extracts text from a local file. Only PDF files are supported.
func (e *Extractor) FromFile(path string) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return extractPDF(path)
	case ".txt", ".text":
		return extractPlainFile(path)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", domain.ErrInvalidInput, ext)
	}
}

// FromURL fetches a URL and extracts text from the response. PDF responses
// are parsed as PDF, everything else as HTML.
func (e *Extractor) FromURL(ctx context.Context, rawURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid URL %q", domain.ErrInvalidInput, rawURL)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.NewNotFoundError("document", rawURL)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.NewRateLimitError("url", retryAfter(resp))
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s returned %s", domain.ErrServiceUnavailable, rawURL, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, domain.NewExternalAPIError("url", resp.StatusCode,
			fmt.Sprintf("fetching %s", rawURL), nil)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/pdf") {
		return extractPDFReader(resp.Body)
	}
	return extractHTML(resp.Body)
}

// FromDOI resolves a DOI through Crossref and builds a result from the
// registered metadata. The text is the abstract; full text is not fetched.
func (e *Extractor) FromDOI(ctx context.Context, doi string) (*Result, error) {
	work, err := e.crossref.Work(ctx, doi)
	if err != nil {
		return nil, err
	}

	text := work.Abstract
	if text == "" {
		text = work.Title
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: DOI %s has no abstract or title", domain.ErrNoExtractedText, doi)
	}

	sections := map[string]string{}
	if work.Abstract != "" {
		sections["abstract"] = work.Abstract
	}
	return &Result{
		Title:    work.Title,
		Text:     text,
		Sections: sections,
		Keywords: ExtractKeywords(text, defaultKeywordCount),
	}, nil
}

const userAgent = "papersum/1.0"

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			return d
		}
	}
	return 30 * time.Second
}

// sectionHeadings are the canonical section names looked for in paper text,
// in the order they typically appear.
var sectionHeadings = []string{
	"abstract",
	"introduction",
	"related work",
	"background",
	"methods",
	"methodology",
	"experiments",
	"results",
	"discussion",
	"conclusion",
	"references",
}

var headingRe = buildHeadingRe()

func buildHeadingRe() *regexp.Regexp {
	alts := make([]string, len(sectionHeadings))
	for i, h := range sectionHeadings {
		alts[i] = regexp.QuoteMeta(h)
	}
	// Matches a heading at a line start, optionally numbered ("3. Results").
	return regexp.MustCompile(`(?im)^\s*(?:\d+\.?\s+)?(` + strings.Join(alts, "|") + `)\s*$`)
}

// DetectSections splits text into named sections based on common paper
// headings. Text before the first heading is keyed "preamble". Returns an
// empty map when no headings are found.
func DetectSections(text string) map[string]string {
	matches := headingRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return map[string]string{}
	}

	sections := make(map[string]string, len(matches)+1)
	if pre := strings.TrimSpace(text[:matches[0][0]]); pre != "" {
		sections["preamble"] = pre
	}
	for i, m := range matches {
		name := strings.ToLower(text[m[2]:m[3]])
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(text[m[1]:end])
		if body != "" {
			sections[name] = body
		}
	}
	return sections
}

const defaultKeywordCount = 10

var wordRe = regexp.MustCompile(`[a-zA-Z][a-zA-Z-]{3,}`)

// stopwords are common words excluded from keyword ranking.
var stopwords = map[string]bool{
	"this": true, "that": true, "with": true, "from": true, "which": true,
	"these": true, "those": true, "have": true, "been": true, "were": true,
	"their": true, "there": true, "where": true, "when": true, "then": true,
	"than": true, "also": true, "such": true, "into": true, "over": true,
	"using": true, "used": true, "based": true, "results": true, "paper": true,
	"propose": true, "proposed": true, "show": true, "shown": true,
	"however": true, "between": true, "both": true, "each": true, "more": true,
	"most": true, "other": true, "only": true, "some": true, "while": true,
	"about": true, "after": true, "first": true, "second": true, "table": true,
	"figure": true, "section": true, "present": true, "approach": true,
}

// ExtractKeywords returns the top content words of the text by frequency,
// ties broken alphabetically for determinism.
func ExtractKeywords(text string, limit int) []string {
	if limit <= 0 {
		limit = defaultKeywordCount
	}

	counts := make(map[string]int)
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if stopwords[w] {
			continue
		}
		counts[w]++
	}
	if len(counts) == 0 {
		return nil
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > limit {
		words = words[:limit]
	}
	return words
}
