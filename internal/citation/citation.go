// Package citation formats bibliographic citations for papers and builds
// the references block appended to syntheses.
package citation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

// Style identifies a citation format.
type Style string

const (
	StyleAPA Style = "apa"
	StyleMLA Style = "mla"

	// DefaultStyle is used when the caller does not pick one.
	DefaultStyle = StyleAPA

	// unknownAuthors substitutes for papers with no author list.
	unknownAuthors = "Unknown Authors"

	// unknownYear substitutes for papers without a publication year.
	unknownYear = "n.d."
)

// Format renders a citation for a paper in the given style. Unknown styles
// fall back to APA.
func Format(paper *domain.Paper, style Style) string {
	year := unknownYear
	if paper.PublicationYear > 0 {
		year = fmt.Sprintf("%d", paper.PublicationYear)
	}
	title := strings.TrimSpace(paper.Title)
	if title == "" {
		title = "Unknown Title"
	}

	switch style {
	case StyleMLA:
		citation := fmt.Sprintf("%s. %q %s.", mlaAuthors(paper.AuthorNames()), title+".", year)
		return appendLocator(citation, paper)
	default:
		citation := fmt.Sprintf("%s (%s). %s.", apaAuthors(paper.AuthorNames()), year, title)
		return appendLocator(citation, paper)
	}
}

// apaAuthors renders the author list in simplified APA form: one author as
// is, two joined with an ampersand, three or more as "First et al."
func apaAuthors(names []string) string {
	switch len(names) {
	case 0:
		return unknownAuthors
	case 1:
		return names[0]
	case 2:
		return names[0] + " & " + names[1]
	default:
		return names[0] + " et al."
	}
}

// mlaAuthors renders the author list in simplified MLA form.
func mlaAuthors(names []string) string {
	switch len(names) {
	case 0:
		return unknownAuthors
	case 1:
		return names[0]
	default:
		return names[0] + ", et al."
	}
}

// appendLocator adds the DOI when present, otherwise the source URL.
func appendLocator(citation string, paper *domain.Paper) string {
	if paper.DOI != "" {
		return citation + " doi:" + paper.DOI
	}
	if paper.SourceURL != "" {
		return citation + " " + paper.SourceURL
	}
	return citation
}

// ToRecord builds the stored citation row for a paper, formatted in the
// default style.
func ToRecord(paper *domain.Paper) *domain.Citation {
	return &domain.Citation{
		PaperID:      paper.ID,
		CitationText: Format(paper, DefaultStyle),
		Authors:      strings.Join(paper.AuthorNames(), ", "),
		Title:        paper.Title,
		Year:         paper.PublicationYear,
		DOI:          paper.DOI,
	}
}

// ReferencesBlock joins citation texts into a deduplicated, sorted
// references section for appending to a synthesis. Returns empty string
// when there are no citations.
func ReferencesBlock(citations []string) string {
	seen := make(map[string]bool, len(citations))
	unique := make([]string, 0, len(citations))
	for _, c := range citations {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		unique = append(unique, c)
	}
	if len(unique) == 0 {
		return ""
	}
	sort.Strings(unique)
	return "References:\n" + strings.Join(unique, "\n")
}
