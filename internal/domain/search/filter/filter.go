// Package filter models structured field restrictions and renders them as
// backend FieldText expressions.
package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 32

// Expression is a structured filter with must/should/must_not boolean semantics.
type Expression struct {
	must    []Condition
	should  []Condition
	mustNot []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, should, mustNot []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(should) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many should conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(mustNot) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must_not conditions (max %d)", MaxConditionsPerGroup)
	}
	return Expression{must: must, should: should, mustNot: mustNot}, nil
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// Should returns the should conditions.
func (e Expression) Should() []Condition { return e.should }

// MustNot returns the must-not conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0 && len(e.mustNot) == 0
}

// FieldText renders the expression in backend FieldText syntax.
// Must conditions are ANDed, should conditions form one OR group and every
// must_not condition is negated. An empty expression renders as "".
func (e Expression) FieldText() string { return e.Render(nil) }

// Render is FieldText with every condition key mapped through resolve first.
func (e Expression) Render(resolve func(key string) string) string {
	parts := make([]string, 0, len(e.must)+len(e.mustNot)+1)
	for _, c := range e.must {
		parts = append(parts, c.Render(resolve))
	}
	if len(e.should) > 0 {
		or := make([]string, len(e.should))
		for i, c := range e.should {
			or[i] = c.Render(resolve)
		}
		if len(or) == 1 {
			parts = append(parts, or[0])
		} else {
			parts = append(parts, "("+strings.Join(or, " OR ")+")")
		}
	}
	for _, c := range e.mustNot {
		parts = append(parts, "NOT "+c.Render(resolve))
	}
	return strings.Join(parts, " AND ")
}

// Condition is a single filter clause: either a value match or a numeric range.
type Condition struct {
	key       string
	match     []string
	rangeExpr *Range
}

// NewMatch creates a match condition satisfied by any of the given values.
func NewMatch(key string, values ...string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	for _, v := range values {
		if v == "" {
			return Condition{}, fmt.Errorf("match value is required for key %q", key)
		}
	}
	return Condition{key: key, match: append([]string(nil), values...)}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the accepted values.
func (c Condition) Match() []string { return c.match }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return len(c.match) > 0 }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// FieldText renders the condition, e.g. MATCH{a,b}:CATEGORY or NRANGE{1,5}:PRICE.
func (c Condition) FieldText() string { return c.Render(nil) }

// Render is FieldText with the key mapped through resolve first.
func (c Condition) Render(resolve func(key string) string) string {
	key := c.key
	if resolve != nil {
		key = resolve(key)
	}
	field := strings.ToUpper(key)
	if c.IsMatch() {
		vals := make([]string, len(c.match))
		for i, v := range c.match {
			vals[i] = escapeValue(v)
		}
		return "MATCH{" + strings.Join(vals, ",") + "}:" + field
	}
	if c.rangeExpr == nil {
		return ""
	}
	return c.rangeExpr.fieldText(field)
}

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }

// fieldText maps inclusive bounds onto NRANGE and exclusive ones onto GREATER/LESS.
func (r Range) fieldText(field string) string {
	var parts []string
	if r.gte != nil || r.lte != nil {
		lo, hi := "-infinity", "infinity"
		if r.gte != nil {
			lo = formatNumber(*r.gte)
		}
		if r.lte != nil {
			hi = formatNumber(*r.lte)
		}
		parts = append(parts, "NRANGE{"+lo+","+hi+"}:"+field)
	}
	if r.gt != nil {
		parts = append(parts, "GREATER{"+formatNumber(*r.gt)+"}:"+field)
	}
	if r.lt != nil {
		parts = append(parts, "LESS{"+formatNumber(*r.lt)+"}:"+field)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var valueEscaper = strings.NewReplacer("%", "%25", ",", "%2C", "{", "%7B", "}", "%7D")

func escapeValue(v string) string {
	return valueEscaper.Replace(v)
}
