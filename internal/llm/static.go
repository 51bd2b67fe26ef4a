package llm

import (
	"context"
	"strings"
)

// StaticProvider is a deterministic Generator for local development and
// tests. It answers classification prompts with the first offered topic and
// everything else with a short canned text derived from the prompt.
type StaticProvider struct{}

var _ Generator = (*StaticProvider)(nil)

// NewStaticProvider creates a StaticProvider.
func NewStaticProvider() *StaticProvider { return &StaticProvider{} }

// Provider returns "static".
func (p *StaticProvider) Provider() string { return "static" }

// Model returns "static".
func (p *StaticProvider) Model() string { return "static" }

// Generate produces a deterministic response.
func (p *StaticProvider) Generate(_ context.Context, req Request) (*Result, error) {
	content := p.respond(req.Prompt)
	return &Result{
		Content:      content,
		Model:        "static",
		InputTokens:  len(strings.Fields(req.Prompt)),
		OutputTokens: len(strings.Fields(content)),
	}, nil
}

func (p *StaticProvider) respond(prompt string) string {
	if topic := firstOfferedTopic(prompt); topic != "" {
		return topic
	}
	if strings.Contains(prompt, "cross-paper synthesis") {
		return "The papers on this topic share a focus on improving accuracy " +
			"and efficiency. Approaches differ in architecture and training " +
			"procedure. Scaling behavior and evaluation methodology remain " +
			"open problems."
	}
	title := promptField(prompt, "Title: ")
	if title == "" {
		title = "the paper"
	}
	return "This paper, " + title + ", presents a method for its stated " +
		"problem, evaluates it against prior work, and reports improved results."
}

// firstOfferedTopic extracts the first "- topic" line after a "Topics:"
// header, which is how classification prompts list their taxonomy.
func firstOfferedTopic(prompt string) string {
	_, after, found := strings.Cut(prompt, "Topics:\n")
	if !found {
		return ""
	}
	for _, line := range strings.Split(after, "\n") {
		if name, ok := strings.CutPrefix(line, "- "); ok {
			return strings.TrimSpace(name)
		}
		break
	}
	return ""
}

func promptField(prompt, prefix string) string {
	_, after, found := strings.Cut(prompt, prefix)
	if !found {
		return ""
	}
	line, _, _ := strings.Cut(after, "\n")
	return strings.TrimSpace(line)
}
