package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/querygate/internal/domain"
	"github.com/kailas-cloud/querygate/internal/domain/search/filter"
)

// Restrictions identifies what to search: query text, field restrictions,
// databases, date bounds and language.
type Restrictions struct {
	queryText    string
	fieldText    string
	filters      filter.Expression
	databases    []string
	minDate      *time.Time
	maxDate      *time.Time
	languageType string
	anyLanguage  bool
}

// NewRestrictions validates search restrictions.
// Query text may be empty here; operations that need it check for it.
// Database names are trimmed and blank entries rejected, order is preserved.
func NewRestrictions(
	queryText, fieldText string,
	filters filter.Expression,
	databases []string,
	minDate, maxDate *time.Time,
	languageType string,
	anyLanguage bool,
) (Restrictions, error) {
	if len(queryText) > MaxQueryLength {
		return Restrictions{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	if len(databases) > MaxDatabases {
		return Restrictions{}, fmt.Errorf("%w: too many databases (max %d)", domain.ErrInvalidRequest, MaxDatabases)
	}
	dbs := make([]string, 0, len(databases))
	for _, db := range databases {
		db = strings.TrimSpace(db)
		if db == "" {
			return Restrictions{}, fmt.Errorf("%w: database name must not be blank", domain.ErrInvalidRequest)
		}
		dbs = append(dbs, db)
	}
	if minDate != nil && maxDate != nil && minDate.After(*maxDate) {
		return Restrictions{}, fmt.Errorf("%w: min_date is after max_date", domain.ErrInvalidRequest)
	}

	return Restrictions{
		queryText:    queryText,
		fieldText:    strings.TrimSpace(fieldText),
		filters:      filters,
		databases:    dbs,
		minDate:      copyTime(minDate),
		maxDate:      copyTime(maxDate),
		languageType: strings.TrimSpace(languageType),
		anyLanguage:  anyLanguage,
	}, nil
}

// QueryText returns the query text.
func (r Restrictions) QueryText() string { return r.queryText }

// FieldText returns the raw FieldText expression supplied by the caller.
func (r Restrictions) FieldText() string { return r.fieldText }

// Filters returns the structured field filter.
func (r Restrictions) Filters() filter.Expression { return r.filters }

// Databases returns the requested databases in request order.
func (r Restrictions) Databases() []string { return r.databases }

// MinDate returns the lower date bound (nil when unbounded).
func (r Restrictions) MinDate() *time.Time { return r.minDate }

// MaxDate returns the upper date bound (nil when unbounded).
func (r Restrictions) MaxDate() *time.Time { return r.maxDate }

// LanguageType returns the language filter.
func (r Restrictions) LanguageType() string { return r.languageType }

// AnyLanguage reports whether documents in every language match.
func (r Restrictions) AnyLanguage() bool { return r.anyLanguage }

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := t.UTC()
	return &c
}
