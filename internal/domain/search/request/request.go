// Package request holds validated, immutable search requests.
package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/querygate/internal/domain"
	"github.com/kailas-cloud/querygate/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength           = 4096
	MaxDatabases             = 64
	DefaultMaxResults        = 30
	MaxMaxResults            = 500
	DefaultSummaryCharacters = 250
)

// Request is a validated search query.
type Request struct {
	restrictions Restrictions
	output       Output
	autoCorrect  bool
	queryType    mode.Mode
}

// New validates a search request. Query text is required; query type defaults to ENHANCED.
func New(restrictions Restrictions, output Output, autoCorrect bool, queryType mode.Mode) (Request, error) {
	if strings.TrimSpace(restrictions.QueryText()) == "" {
		return Request{}, fmt.Errorf("%w: query text is required", domain.ErrInvalidRequest)
	}
	if queryType == "" {
		queryType = mode.Enhanced
	}
	if !queryType.IsValid() {
		return Request{}, fmt.Errorf("%w: invalid query type %q", domain.ErrInvalidRequest, queryType)
	}
	return Request{
		restrictions: restrictions,
		output:       output,
		autoCorrect:  autoCorrect,
		queryType:    queryType,
	}, nil
}

// Restrictions returns what to search.
func (r Request) Restrictions() Restrictions { return r.restrictions }

// Output returns pagination and presentation options.
func (r Request) Output() Output { return r.output }

// AutoCorrect reports whether a backend spelling suggestion triggers a retry.
func (r Request) AutoCorrect() bool { return r.autoCorrect }

// QueryType returns the query type.
func (r Request) QueryType() mode.Mode { return r.queryType }
