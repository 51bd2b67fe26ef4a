// Package llm provides language model clients for paper classification,
// summarization, and cross-paper synthesis.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// NoTopic is the sentinel the classification prompt instructs the model to
// return when a paper matches none of the offered topics.
const NoTopic = "none"

// Request is a single generation request.
type Request struct {
	// System is the system prompt establishing the model's role.
	System string
	// Prompt is the user prompt.
	Prompt string
	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int
}

// Result is the outcome of a generation request.
type Result struct {
	// Content is the generated text.
	Content string
	// Model is the model that produced the content.
	Model string
	// InputTokens is the prompt token count reported by the provider.
	InputTokens int
	// OutputTokens is the completion token count reported by the provider.
	OutputTokens int
}

// Generator produces text completions. Implementations wrap a specific
// provider API and surface *APIError for provider failures so callers can
// classify them for retry.
type Generator interface {
	// Generate runs a single completion request.
	Generate(ctx context.Context, req Request) (*Result, error)

	// Provider returns the provider name (e.g. "openai").
	Provider() string

	// Model returns the model identifier being used.
	Model() string
}

// BuildClassificationPrompt builds the prompt pair for assigning a paper to
// topics from a fixed taxonomy. The model must answer with a comma-separated
// subset of the offered topics, or the literal "none" when nothing fits.
func BuildClassificationPrompt(title, abstract string, topics []string) (system, user string) {
	system = "You are a research librarian who classifies academic papers " +
		"into a fixed set of topics. Respond only with topic names from the " +
		"provided list, separated by commas. If no topic fits, respond with " +
		"exactly \"none\"."

	user = fmt.Sprintf(
		"Topics:\n%s\n\nTitle: %s\n\nAbstract: %s\n\n"+
			"Which of the listed topics does this paper belong to?",
		"- "+strings.Join(topics, "\n- "), title, abstract)
	return system, user
}

// ParseClassification parses a classification response into the subset of
// offered topics the model selected. Unknown names are dropped. Returns an
// empty slice for the "none" answer.
func ParseClassification(response string, offered []string) []string {
	response = strings.TrimSpace(response)
	if response == "" || strings.EqualFold(response, NoTopic) {
		return nil
	}

	known := make(map[string]string, len(offered))
	for _, t := range offered {
		known[strings.ToLower(strings.TrimSpace(t))] = t
	}

	var selected []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(response, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" || name == NoTopic {
			continue
		}
		if canonical, ok := known[name]; ok && !seen[canonical] {
			selected = append(selected, canonical)
			seen[canonical] = true
		}
	}
	return selected
}

// BuildSummaryPrompt builds the prompt pair for summarizing a single paper
// from its extracted text.
func BuildSummaryPrompt(title string, text string) (system, user string) {
	system = "You are a scientific writer. Summarize academic papers " +
		"accurately and concisely for a technical audience. Cover the " +
		"problem, method, and key findings in plain prose."

	user = fmt.Sprintf("Title: %s\n\nPaper text:\n%s\n\nWrite a summary of this paper.", title, text)
	return system, user
}

// BuildSynthesisPrompt builds the prompt pair for synthesizing common
// themes across the summaries of papers sharing a topic.
func BuildSynthesisPrompt(topic string, summaries []string) (system, user string) {
	system = "You are a scientific writer. Given summaries of several " +
		"papers on one topic, write a synthesis that identifies common " +
		"themes, contrasts the approaches, and notes open problems."

	var b strings.Builder
	for i, s := range summaries {
		fmt.Fprintf(&b, "Paper %d summary:\n%s\n\n", i+1, s)
	}
	user = fmt.Sprintf("Topic: %s\n\n%sWrite a cross-paper synthesis for this topic.", topic, b.String())
	return system, user
}
