// Package result holds the typed, display-ready search output model.
package result

import (
	"time"

	"github.com/kailas-cloud/querygate/internal/domain/field"
)

// PromotionCategory classifies whether and how a result was placed manually.
type PromotionCategory string

// Promotion categories.
const (
	PromotionNone     PromotionCategory = "NONE"
	StaticContent     PromotionCategory = "STATIC_CONTENT_PROMOTION"
	CardinalPlacement PromotionCategory = "CARDINAL_PLACEMENT"
)

// Meta is the scalar metadata the backend reports for every hit.
type Meta struct {
	Reference     string
	Index         string
	Title         string
	Summary       string
	Date          time.Time
	Weight        float64
	PromotionName string
}

// Result is a single normalized search hit.
type Result struct {
	meta      Meta
	fields    map[string]field.Value
	promotion PromotionCategory
}

// New creates a search result. An empty promotion category is NONE.
func New(meta Meta, fields map[string]field.Value, promotion PromotionCategory) Result {
	if promotion == "" {
		promotion = PromotionNone
	}
	return Result{meta: meta, fields: fields, promotion: promotion}
}

// Meta returns the scalar metadata.
func (r Result) Meta() Meta { return r.meta }

// Reference returns the document reference.
func (r Result) Reference() string { return r.meta.Reference }

// Index returns the database the hit came from.
func (r Result) Index() string { return r.meta.Index }

// Fields returns the typed field map keyed by logical field id.
func (r Result) Fields() map[string]field.Value { return r.fields }

// Field returns one typed field value.
func (r Result) Field(id string) (field.Value, bool) {
	v, ok := r.fields[id]
	return v, ok
}

// Promotion returns the promotion category.
func (r Result) Promotion() PromotionCategory { return r.promotion }
