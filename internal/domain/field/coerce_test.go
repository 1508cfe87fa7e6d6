package field

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func mustConfig(t *testing.T, ft Type, values []KnownValue, redact bool) Config {
	t.Helper()
	c, err := New("f", "", nil, ft, values, redact)
	if err != nil {
		t.Fatalf("field.New: %v", err)
	}
	return c
}

func TestCoerce_ByDeclaredType(t *testing.T) {
	tests := []struct {
		name string
		ft   Type
		raw  string
		want Value
	}{
		{"string", String, "hello", StringValue("hello")},
		{"number", Number, " 42.5 ", NumberValue(42.5)},
		{"number fallback", Number, "n/a", StringValue("n/a")},
		{"boolean", Boolean, "TRUE", BooleanValue(true)},
		{"boolean fallback", Boolean, "maybe", StringValue("maybe")},
		{"date iso local", Date, "2016-02-03T11:42:00", DateValue(time.Date(2016, 2, 3, 11, 42, 0, 0, time.UTC))},
		{"date epoch", Date, "1454499720", DateValue(time.Unix(1454499720, 0))},
		{"date aci", Date, "11:42:00 03/02/2016", DateValue(time.Date(2016, 2, 3, 11, 42, 0, 0, time.UTC))},
		{"date fallback", Date, "yesterday", StringValue("yesterday")},
		{"empty string", String, "", StringValue("")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Coerce(mustConfig(t, tc.ft, nil, false), tc.raw)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Coerce(%q) mismatch (-want +got):\n%s", tc.raw, diff)
			}
		})
	}
}

func TestCoerce_KnownValueAnyCase(t *testing.T) {
	c := mustConfig(t, Number, []KnownValue{NewKnownValue("hi", "High priority")}, false)
	for _, raw := range []string{"hi", "HI", "Hi", "hI"} {
		got := Coerce(c, raw)
		if diff := cmp.Diff(StringValue("High priority"), got); diff != "" {
			t.Errorf("Coerce(%q) mismatch (-want +got):\n%s", raw, diff)
		}
	}
}

func TestCoerce_RedactUnknown(t *testing.T) {
	c := mustConfig(t, String, []KnownValue{NewKnownValue("public", "Public")}, true)

	for _, raw := range []string{"secret", "", "PUBLIC-ish"} {
		got := Coerce(c, raw)
		if s, _ := got.AsString(); s != RestrictedValue {
			t.Errorf("Coerce(%q) = %q, want %q", raw, s, RestrictedValue)
		}
	}
	if s, _ := Coerce(c, "PUBLIC").AsString(); s != "Public" {
		t.Errorf("known value should still resolve, got %q", s)
	}
}

func TestParseDate_Empty(t *testing.T) {
	if _, ok := ParseDate("  "); ok {
		t.Error("expected blank date to fail")
	}
}
