package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeTopicName normalizes a topic name for case-insensitive
// uniqueness: lowercase, trimmed, internal whitespace collapsed.
func NormalizeTopicName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// NewTopic creates a Topic with a generated ID. The display name keeps the
// caller's casing; uniqueness is enforced on the normalized form.
func NewTopic(name string) *Topic {
	return &Topic{
		ID:   uuid.New(),
		Name: strings.TrimSpace(name),
	}
}

// doiRegex matches the DOI syntax used by Crossref and publishers.
var doiRegex = regexp.MustCompile(`(10\.\d{4,9}/[^\s"<>]+)`)

// NormalizeDOI extracts and lowercases the DOI from a raw string, which may
// be a bare DOI or a doi.org URL. Returns empty string when the input does
// not contain a DOI.
func NormalizeDOI(raw string) string {
	m := doiRegex.FindString(strings.TrimSpace(raw))
	if m == "" {
		return ""
	}
	return strings.ToLower(strings.TrimRight(m, "."))
}
