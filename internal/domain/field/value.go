package field

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Kind discriminates the variants of Value.
type Kind uint8

// Value kinds. The zero Value is an empty string.
const (
	KindString Kind = iota
	KindNumber
	KindDate
	KindBoolean
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindBoolean:
		return "boolean"
	case KindList:
		return "list"
	}
	return "unknown"
}

// Value is a field value: a string, number, date, boolean or an ordered list of values.
type Value struct {
	kind Kind
	str  string
	num  float64
	date time.Time
	b    bool
	list []Value
}

// StringValue creates a string value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue creates a numeric value.
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }

// DateValue creates a date value normalized to UTC.
func DateValue(t time.Time) Value { return Value{kind: KindDate, date: t.UTC()} }

// BooleanValue creates a boolean value.
func BooleanValue(b bool) Value { return Value{kind: KindBoolean, b: b} }

// ListValue creates a list value holding vs in order.
func ListValue(vs ...Value) Value {
	return Value{kind: KindList, list: append([]Value(nil), vs...)}
}

// Kind returns the variant.
func (v Value) Kind() Kind { return v.kind }

// AsString returns the string payload.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the numeric payload.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsDate returns the date payload.
func (v Value) AsDate() (time.Time, bool) { return v.date, v.kind == KindDate }

// AsBoolean returns the boolean payload.
func (v Value) AsBoolean() (bool, bool) { return v.b, v.kind == KindBoolean }

// Values returns the elements of a list, or v itself as a single element.
func (v Value) Values() []Value {
	if v.kind == KindList {
		return v.list
	}
	return []Value{v}
}

// Append returns a list holding v's values followed by next.
func (v Value) Append(next Value) Value {
	if v.kind == KindList {
		out := make([]Value, len(v.list), len(v.list)+1)
		copy(out, v.list)
		return Value{kind: KindList, list: append(out, next)}
	}
	return ListValue(v, next)
}

// String renders the value as display text.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		return v.date.Format(time.RFC3339)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}
		return strings.Join(parts, ", ")
	}
	return v.str
}

// Equal reports whether two values hold the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindDate:
		return v.date.Equal(o.date)
	case KindBoolean:
		return v.b == o.b
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	}
	return v.str == o.str
}

// MarshalJSON encodes the payload as its natural JSON type; dates use RFC 3339.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindDate:
		return json.Marshal(v.date.Format(time.RFC3339))
	case KindBoolean:
		return json.Marshal(v.b)
	case KindList:
		return json.Marshal(v.list)
	}
	return json.Marshal(v.str)
}
