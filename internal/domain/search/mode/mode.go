// Package mode defines the query types a search request can carry.
package mode

import "strings"

// Mode is the query type; it drives backend channel selection.
type Mode string

// Query type constants.
const (
	// Raw always goes to the content channel, bypassing query manipulation.
	Raw      Mode = "RAW"
	Enhanced Mode = "ENHANCED"
	// Promotions only exist on the query manipulation channel.
	Promotions Mode = "PROMOTIONS"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Raw || m == Enhanced || m == Promotions
}

// Parse normalizes s case-insensitively. An empty string is Enhanced.
func Parse(s string) (Mode, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Enhanced, true
	}
	m := Mode(strings.ToUpper(s))
	return m, m.IsValid()
}
