package papersources

import (
	"context"
	"sync"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

// SourceResult holds the outcome of one source's search. Exactly one of
// Result and Error is set.
type SourceResult struct {
	// Source names the source that ran the search.
	Source string

	// Result contains the search results when the search succeeded.
	Result *SearchResult

	// Error is set when the search failed.
	Error error
}

// Registry manages paper sources and coordinates concurrent searches.
// Thread-safe.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]PaperSource
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]PaperSource)}
}

// Register adds a source, replacing any source with the same name.
func (r *Registry) Register(source PaperSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[source.Name()] = source
}

// Get returns a source by name, or nil when not registered.
func (r *Registry) Get(name string) PaperSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sources[name]
}

// EnabledSources returns a snapshot of the sources whose IsEnabled reports
// true.
func (r *Registry) EnabledSources() []PaperSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]PaperSource, 0, len(r.sources))
	for _, source := range r.sources {
		if source.IsEnabled() {
			sources = append(sources, source)
		}
	}
	return sources
}

// SearchAll searches every enabled source concurrently and returns one
// SourceResult per source, errors included. The caller decides how to treat
// partial failures.
func (r *Registry) SearchAll(ctx context.Context, params SearchParams) []SourceResult {
	sources := r.EnabledSources()
	if len(sources) == 0 {
		return nil
	}

	resultChan := make(chan SourceResult, len(sources))
	var wg sync.WaitGroup
	for _, source := range sources {
		wg.Add(1)
		go func(s PaperSource) {
			defer wg.Done()
			result, err := s.Search(ctx, params)
			resultChan <- SourceResult{Source: s.Name(), Result: result, Error: err}
		}(source)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]SourceResult, 0, len(sources))
	for result := range resultChan {
		results = append(results, result)
	}
	return results
}

// MergePapers flattens successful results into one paper list, dropping
// duplicate DOIs. Papers without a DOI are always kept; DOI-level
// deduplication against the store happens at registration.
func MergePapers(results []SourceResult) []*domain.Paper {
	var merged []*domain.Paper
	seen := make(map[string]bool)
	for _, sr := range results {
		if sr.Error != nil || sr.Result == nil {
			continue
		}
		for _, paper := range sr.Result.Papers {
			doi := domain.NormalizeDOI(paper.DOI)
			if doi != "" {
				if seen[doi] {
					continue
				}
				seen[doi] = true
			}
			merged = append(merged, paper)
		}
	}
	return merged
}
