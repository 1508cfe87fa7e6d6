package field

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order after epoch seconds.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"15:04:05 02/01/2006",
	"2006-01-02",
	"02/01/2006",
}

// Coerce converts raw backend text into a value of the field's declared type.
//
// A case-insensitive match against a known value yields that value's display
// form. Otherwise a redact-unknown field yields RestrictedValue. Text that does
// not parse as the declared type is kept as a string so nothing is dropped.
func Coerce(cfg Config, raw string) Value {
	if kv, ok := cfg.Match(raw); ok {
		return StringValue(kv.Display())
	}
	if cfg.RedactUnknown() {
		return StringValue(RestrictedValue)
	}

	switch cfg.Type() {
	case Date:
		if t, ok := ParseDate(raw); ok {
			return DateValue(t)
		}
	case Number:
		if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return NumberValue(n)
		}
	case Boolean:
		if b, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
			return BooleanValue(b)
		}
	}
	return StringValue(raw)
}

// ParseDate parses epoch seconds or one of the supported layouts, in UTC.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
