package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/querygate/internal/domain"
)

// Summary is the kind of per-hit summary the backend generates.
type Summary string

// Summary kinds.
const (
	SummaryOff     Summary = "off"
	SummaryContext Summary = "context"
	SummaryConcept Summary = "concept"
	SummaryQuick   Summary = "quick"
)

// IsValid reports whether s is a supported summary kind.
func (s Summary) IsValid() bool {
	switch s {
	case SummaryOff, SummaryContext, SummaryConcept, SummaryQuick:
		return true
	}
	return false
}

// Output holds pagination and presentation options shared by result-producing requests.
type Output struct {
	start      int
	maxResults int
	summary    Summary
	characters int
	sort       string
	highlight  bool
}

// NewOutput validates and normalizes output options.
// Defaults: start=1, maxResults=DefaultMaxResults, summary=context,
// characters=DefaultSummaryCharacters.
func NewOutput(start, maxResults int, summary Summary, characters int, sort string, highlight bool) (Output, error) {
	if start <= 0 {
		start = 1
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if maxResults > MaxMaxResults {
		return Output{}, fmt.Errorf("%w: max_results exceeds %d", domain.ErrInvalidRequest, MaxMaxResults)
	}
	if summary == "" {
		summary = SummaryContext
	}
	summary = Summary(strings.ToLower(string(summary)))
	if !summary.IsValid() {
		return Output{}, fmt.Errorf("%w: invalid summary %q", domain.ErrInvalidRequest, summary)
	}
	if characters <= 0 {
		characters = DefaultSummaryCharacters
	}
	return Output{
		start:      start,
		maxResults: maxResults,
		summary:    summary,
		characters: characters,
		sort:       strings.TrimSpace(sort),
		highlight:  highlight,
	}, nil
}

// Start returns the 1-based index of the first result.
func (o Output) Start() int { return o.start }

// MaxResults returns the page size.
func (o Output) MaxResults() int { return o.maxResults }

// End returns the 1-based index of the last result on the page.
func (o Output) End() int { return o.start + o.maxResults - 1 }

// Summary returns the summary kind.
func (o Output) Summary() Summary { return o.summary }

// Characters returns the maximum summary length.
func (o Output) Characters() int { return o.characters }

// Sort returns the sort order (empty for backend default).
func (o Output) Sort() string { return o.sort }

// Highlight reports whether query terms are highlighted.
func (o Output) Highlight() bool { return o.highlight }
