package result

// Spelling records an auto-correction: the backend's alternatives, the text
// that was actually executed and the text the caller submitted.
type Spelling struct {
	Alternatives []string
	Corrected    string
	Original     string
}

// Warnings are non-fatal problems reported alongside a result set.
type Warnings struct {
	InvalidDatabases []string
}

// Documents is a page of results plus the metadata of the query that produced it.
type Documents[T any] struct {
	results       []T
	totalResults  int
	expandedQuery string
	warnings      *Warnings
	spelling      *Spelling
	parseErrors   int
}

// NewDocuments creates a result envelope.
func NewDocuments[T any](results []T, totalResults int, expandedQuery string, warnings *Warnings, spelling *Spelling) Documents[T] {
	return Documents[T]{
		results:       results,
		totalResults:  totalResults,
		expandedQuery: expandedQuery,
		warnings:      warnings,
		spelling:      spelling,
	}
}

// Empty returns an envelope with no results and a zero total.
func Empty[T any]() Documents[T] {
	return Documents[T]{results: []T{}}
}

// Results returns the results in backend order.
func (d Documents[T]) Results() []T { return d.results }

// TotalResults returns the backend's total for the executed query.
func (d Documents[T]) TotalResults() int { return d.totalResults }

// ExpandedQuery returns the query text as rewritten by the backend, if any.
func (d Documents[T]) ExpandedQuery() string { return d.expandedQuery }

// Warnings returns non-fatal warnings (nil when none).
func (d Documents[T]) Warnings() *Warnings { return d.warnings }

// Spelling returns the auto-correction record (nil when no correction ran).
func (d Documents[T]) Spelling() *Spelling { return d.spelling }

// ParseErrors returns how many hits were skipped as malformed.
func (d Documents[T]) ParseErrors() int { return d.parseErrors }

// WithSpelling returns a copy carrying the given correction record.
func (d Documents[T]) WithSpelling(s *Spelling) Documents[T] {
	d.spelling = s
	return d
}

// WithWarnings returns a copy carrying the given warnings.
func (d Documents[T]) WithWarnings(w *Warnings) Documents[T] {
	d.warnings = w
	return d
}

// WithParseErrors returns a copy reporting n skipped hits.
func (d Documents[T]) WithParseErrors(n int) Documents[T] {
	d.parseErrors = n
	return d
}
