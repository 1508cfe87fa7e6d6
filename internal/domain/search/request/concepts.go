package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/querygate/internal/domain"
)

// Related concepts defaults.
const (
	DefaultConceptMaxResults  = 50
	DefaultQuerySummaryLength = 30
	MaxQuerySummaryLength     = 500
)

// RelatedConceptsRequest asks for the concepts that summarize a result set.
type RelatedConceptsRequest struct {
	restrictions       Restrictions
	maxResults         int
	querySummaryLength int
}

// NewRelatedConcepts validates a related concepts request.
func NewRelatedConcepts(restrictions Restrictions, maxResults, querySummaryLength int) (RelatedConceptsRequest, error) {
	if strings.TrimSpace(restrictions.QueryText()) == "" {
		return RelatedConceptsRequest{}, fmt.Errorf("%w: query text is required", domain.ErrInvalidRequest)
	}
	if maxResults <= 0 {
		maxResults = DefaultConceptMaxResults
	}
	if maxResults > MaxMaxResults {
		return RelatedConceptsRequest{}, fmt.Errorf("%w: max_results exceeds %d", domain.ErrInvalidRequest, MaxMaxResults)
	}
	if querySummaryLength <= 0 {
		querySummaryLength = DefaultQuerySummaryLength
	}
	if querySummaryLength > MaxQuerySummaryLength {
		return RelatedConceptsRequest{}, fmt.Errorf("%w: query_summary_length exceeds %d", domain.ErrInvalidRequest, MaxQuerySummaryLength)
	}
	return RelatedConceptsRequest{
		restrictions:       restrictions,
		maxResults:         maxResults,
		querySummaryLength: querySummaryLength,
	}, nil
}

// Restrictions returns what to summarize.
func (r RelatedConceptsRequest) Restrictions() Restrictions { return r.restrictions }

// MaxResults returns how many documents the summary is computed over.
func (r RelatedConceptsRequest) MaxResults() int { return r.maxResults }

// QuerySummaryLength returns the maximum number of concepts.
func (r RelatedConceptsRequest) QuerySummaryLength() int { return r.querySummaryLength }
