// Package field describes per-deployment field configuration and the typed
// values produced when backend field text is coerced through it.
package field

import (
	"fmt"
	"strings"
)

// Type is the declared type of a configured field.
type Type string

// Field type constants.
const (
	String  Type = "STRING"
	Date    Type = "DATE"
	Number  Type = "NUMBER"
	Boolean Type = "BOOLEAN"
)

// IsValid reports whether t is a known field type.
func (t Type) IsValid() bool {
	switch t {
	case String, Date, Number, Boolean:
		return true
	}
	return false
}

// RestrictedValue replaces the raw text of a redact-unknown field when the
// text matches none of the field's known values.
const RestrictedValue = "restricted value"

// KnownValue is an enumerated field value and the form it is displayed in.
type KnownValue struct {
	value   string
	display string
}

// NewKnownValue creates a known value. An empty display falls back to the value itself.
func NewKnownValue(value, display string) KnownValue {
	if display == "" {
		display = value
	}
	return KnownValue{value: value, display: display}
}

// Value returns the raw backend value.
func (v KnownValue) Value() string { return v.value }

// Display returns the display form.
func (v KnownValue) Display() string { return v.display }

// Config is the immutable configuration of one logical field.
type Config struct {
	id            string
	displayName   string
	names         []string
	fieldType     Type
	values        []KnownValue
	redactUnknown bool
}

// New validates and creates a field configuration.
// Names are the backend tag paths mapped onto the field; an empty list maps
// the id itself. An empty type defaults to String.
func New(
	id, displayName string,
	names []string,
	ft Type,
	values []KnownValue,
	redactUnknown bool,
) (Config, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Config{}, fmt.Errorf("field id is required")
	}
	if ft == "" {
		ft = String
	}
	ft = Type(strings.ToUpper(string(ft)))
	if !ft.IsValid() {
		return Config{}, fmt.Errorf("invalid field type %q for %q", ft, id)
	}

	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			cleaned = append(cleaned, n)
		}
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, id)
	}

	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		key := strings.ToLower(v.value)
		if _, dup := seen[key]; dup {
			return Config{}, fmt.Errorf("field %q: duplicate known value %q", id, v.value)
		}
		seen[key] = struct{}{}
	}

	return Config{
		id:            id,
		displayName:   displayName,
		names:         cleaned,
		fieldType:     ft,
		values:        append([]KnownValue(nil), values...),
		redactUnknown: redactUnknown,
	}, nil
}

// ID returns the logical field identifier.
func (c Config) ID() string { return c.id }

// DisplayName returns the configured display name (may be empty).
func (c Config) DisplayName() string { return c.displayName }

// Names returns the backend tag paths mapped onto the field.
func (c Config) Names() []string { return c.names }

// Type returns the declared type.
func (c Config) Type() Type { return c.fieldType }

// Values returns the enumerated known values.
func (c Config) Values() []KnownValue { return c.values }

// RedactUnknown reports whether unmatched values must be replaced by RestrictedValue.
func (c Config) RedactUnknown() bool { return c.redactUnknown }

// Match finds the known value equal to raw, ignoring case.
func (c Config) Match(raw string) (KnownValue, bool) {
	for _, v := range c.values {
		if strings.EqualFold(v.value, raw) {
			return v, true
		}
	}
	return KnownValue{}, false
}
