package chi

import (
	"time"

	"github.com/kailas-cloud/querygate/internal/domain/field"
)

// ErrorCode is a machine-readable error classification.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeNotFound           ErrorCode = "not_found"
	ErrorCodeBackendError       ErrorCode = "backend_error"
	ErrorCodeChannelUnavailable ErrorCode = "channel_unavailable"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// RangeFilter bounds a numeric field.
type RangeFilter struct {
	Gt  *float64 `json:"gt,omitempty"`
	Gte *float64 `json:"gte,omitempty"`
	Lt  *float64 `json:"lt,omitempty"`
	Lte *float64 `json:"lte,omitempty"`
}

// FilterCondition is a match or range condition on one field.
type FilterCondition struct {
	Key   string       `json:"key"`
	Match []string     `json:"match,omitempty"`
	Range *RangeFilter `json:"range,omitempty"`
}

// FilterExpression groups conditions.
type FilterExpression struct {
	Must    []FilterCondition `json:"must,omitempty"`
	Should  []FilterCondition `json:"should,omitempty"`
	MustNot []FilterCondition `json:"must_not,omitempty"`
}

// Restrictions selects what to search.
type Restrictions struct {
	Text         string            `json:"text"`
	FieldText    string            `json:"field_text,omitempty"`
	Filters      *FilterExpression `json:"filters,omitempty"`
	Databases    []string          `json:"databases,omitempty"`
	MinDate      *time.Time        `json:"min_date,omitempty"`
	MaxDate      *time.Time        `json:"max_date,omitempty"`
	LanguageType string            `json:"language_type,omitempty"`
	AnyLanguage  bool              `json:"any_language,omitempty"`
}

// Output selects pagination and presentation.
type Output struct {
	Start             int    `json:"start,omitempty"`
	MaxResults        int    `json:"max_results,omitempty"`
	Summary           string `json:"summary,omitempty"`
	SummaryCharacters int    `json:"summary_characters,omitempty"`
	Sort              string `json:"sort,omitempty"`
	Highlight         bool   `json:"highlight,omitempty"`
}

// QueryRequest is the body of POST /search/query and /search/promotions.
type QueryRequest struct {
	Restrictions
	Output
	AutoCorrect bool   `json:"auto_correct,omitempty"`
	QueryType   string `json:"query_type,omitempty"`
}

// SimilarRequest is the body of POST /search/similar.
type SimilarRequest struct {
	Restrictions
	Output
	Reference string `json:"reference"`
}

// ContentGroup names documents of one index.
type ContentGroup struct {
	Index      string   `json:"index,omitempty"`
	References []string `json:"references"`
}

// ContentRequest is the body of POST /search/content.
type ContentRequest struct {
	Groups []ContentGroup `json:"groups"`
}

// StateTokenRequest is the body of POST /search/state-token.
type StateTokenRequest struct {
	Restrictions
	MaxResults int `json:"max_results,omitempty"`
}

// StateTokenResponse carries the stored state token.
type StateTokenResponse struct {
	Token string `json:"token"`
}

// RelatedConceptsRequest is the body of POST /search/related-concepts.
type RelatedConceptsRequest struct {
	Restrictions
	MaxResults         int `json:"max_results,omitempty"`
	QuerySummaryLength int `json:"query_summary_length,omitempty"`
}

// Concept is one related concept.
type Concept struct {
	Text    string `json:"text"`
	Cluster int    `json:"cluster"`
	Docs    int    `json:"docs"`
}

// RelatedConceptsResponse lists related concepts.
type RelatedConceptsResponse struct {
	Concepts []Concept `json:"concepts"`
}

// ResultItem is one search hit.
type ResultItem struct {
	Reference     string                 `json:"reference"`
	Index         string                 `json:"index,omitempty"`
	Title         string                 `json:"title,omitempty"`
	Summary       string                 `json:"summary,omitempty"`
	Date          *time.Time             `json:"date,omitempty"`
	Weight        float64                `json:"weight"`
	PromotionName string                 `json:"promotion_name,omitempty"`
	Promotion     string                 `json:"promotion"`
	Fields        map[string]field.Value `json:"fields,omitempty"`
}

// Spelling describes an applied auto-correction.
type Spelling struct {
	Alternatives []string `json:"alternatives"`
	Corrected    string   `json:"corrected"`
	Original     string   `json:"original"`
}

// Warnings reports non-fatal problems with the request.
type Warnings struct {
	InvalidDatabases []string `json:"invalid_databases,omitempty"`
}

// DocumentsResponse is a page of search results.
type DocumentsResponse struct {
	Results       []ResultItem `json:"results"`
	TotalResults  int          `json:"total_results"`
	ExpandedQuery string       `json:"expanded_query,omitempty"`
	Spelling      *Spelling    `json:"spelling,omitempty"`
	Warnings      *Warnings    `json:"warnings,omitempty"`
	ParseErrors   int          `json:"parse_errors,omitempty"`
}

// DatabasesResponse lists available databases.
type DatabasesResponse struct {
	Databases []string `json:"databases"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Commit  string            `json:"commit"`
	Checks  map[string]string `json:"checks"`
}
