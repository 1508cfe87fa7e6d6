package querygate

import "time"

// QueryType selects how a query is routed.
type QueryType string

// Query types.
const (
	// QueryRaw always runs on the content backend.
	QueryRaw QueryType = "RAW"
	// QueryEnhanced runs through query manipulation when enabled.
	QueryEnhanced QueryType = "ENHANCED"
	// QueryPromotions returns promoted documents only.
	QueryPromotions QueryType = "PROMOTIONS"
)

// FieldType is the declared type of a field.
type FieldType string

// Field types.
const (
	FieldString  FieldType = "STRING"
	FieldNumber  FieldType = "NUMBER"
	FieldDate    FieldType = "DATE"
	FieldBoolean FieldType = "BOOLEAN"
)

// Summary kinds.
const (
	SummaryOff     = "off"
	SummaryContext = "context"
	SummaryConcept = "concept"
	SummaryQuick   = "quick"
)

// KnownValue maps a raw backend value onto its display form.
type KnownValue struct {
	Value   string
	Display string
}

// FieldConfig declares one logical field and the document paths it is read from.
type FieldConfig struct {
	ID            string
	DisplayName   string
	Names         []string
	Type          FieldType
	RedactUnknown bool
	Values        []KnownValue
}

// RangeFilter bounds a numeric field.
type RangeFilter struct {
	GT  *float64
	GTE *float64
	LT  *float64
	LTE *float64
}

// FilterCondition is either a value match or a numeric range on one field.
type FilterCondition struct {
	Key   string
	Match []string
	Range *RangeFilter
}

// FilterExpression combines conditions: every Must, any Should, no MustNot.
type FilterExpression struct {
	Must    []FilterCondition
	Should  []FilterCondition
	MustNot []FilterCondition
}

// Restrictions selects what to search.
type Restrictions struct {
	Text         string
	FieldText    string
	Filters      *FilterExpression
	Databases    []string
	MinDate      *time.Time
	MaxDate      *time.Time
	LanguageType string
	AnyLanguage  bool
}

// Output selects pagination and presentation. Zero values take the defaults.
type Output struct {
	Start             int
	MaxResults        int
	Summary           string
	SummaryCharacters int
	Sort              string
	Highlight         bool
}

// QueryRequest is a text query.
type QueryRequest struct {
	Restrictions
	Output
	AutoCorrect bool
	QueryType   QueryType
}

// SimilarRequest finds documents similar to Reference.
type SimilarRequest struct {
	Reference string
	Restrictions
	Output
}

// ContentGroup names documents to fetch, optionally scoped to one database.
type ContentGroup struct {
	Index      string
	References []string
}

// Result is one search hit. Field values are string, float64, time.Time,
// bool or []any for multi-valued fields.
type Result struct {
	Reference     string
	Index         string
	Title         string
	Summary       string
	Date          time.Time
	Weight        float64
	PromotionName string
	Promotion     string
	Fields        map[string]any
}

// Spelling records an applied auto-correction.
type Spelling struct {
	Alternatives []string
	Corrected    string
	Original     string
}

// Documents is a page of results.
type Documents struct {
	Results          []Result
	TotalResults     int
	ExpandedQuery    string
	Spelling         *Spelling
	InvalidDatabases []string
	ParseErrors      int
}

// Concept is one entry of a query summary.
type Concept struct {
	Text    string
	Cluster int
	Docs    int
}
