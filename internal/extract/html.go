package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

// extractHTML extracts the readable text of an HTML page. Script, style,
// and navigation chrome are stripped; the main article body is preferred
// when the page marks one up.
func extractHTML(r io.Reader) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	doc.Find("script, style, nav, header, footer, aside, noscript").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		title = h1
	}

	body := doc.Find("article").First()
	if body.Length() == 0 {
		body = doc.Find("main").First()
	}
	if body.Length() == 0 {
		body = doc.Find("body").First()
	}

	var sb strings.Builder
	body.Find("h1, h2, h3, p, li, blockquote").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	})

	text := sb.String()
	if text == "" {
		text = strings.TrimSpace(body.Text())
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: page contains no readable text", domain.ErrNoExtractedText)
	}

	return &Result{
		Title:    title,
		Text:     text,
		Sections: DetectSections(text),
		Keywords: ExtractKeywords(text, defaultKeywordCount),
	}, nil
}
