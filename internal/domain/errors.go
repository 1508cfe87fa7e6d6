package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals a request that failed validation.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrBackend signals a failure reported by the search backend.
	ErrBackend = errors.New("backend error")
	// ErrChannelUnavailable signals a backend channel that is not configured.
	ErrChannelUnavailable = errors.New("backend channel unavailable")
	// ErrMalformedHit signals a hit record that cannot be normalized.
	ErrMalformedHit = errors.New("malformed hit")
	// ErrMalformedResponse signals a backend response without the expected envelope.
	ErrMalformedResponse = errors.New("malformed backend response")
)

// MissingRuleError is the error string the enrichment channel reports when a
// request names a rule or ruleset it does not hold.
const MissingRuleError = "Missing rule"

// BackendError is a failure reported by the backend inside its response envelope.
type BackendError struct {
	Action      string
	Code        string
	ErrorString string
	Description string
}

func (e *BackendError) Error() string {
	var b strings.Builder
	b.WriteString(ErrBackend.Error())
	if e.Action != "" {
		fmt.Fprintf(&b, " (%s)", e.Action)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " [%s]", e.Code)
	}
	if e.ErrorString != "" {
		b.WriteString(": ")
		b.WriteString(e.ErrorString)
	}
	if e.Description != "" {
		b.WriteString(": ")
		b.WriteString(e.Description)
	}
	return b.String()
}

func (e *BackendError) Unwrap() error { return ErrBackend }

// IsMissingRule reports whether err carries the enrichment missing-rule signal.
func IsMissingRule(err error) bool {
	var be *BackendError
	if !errors.As(err, &be) {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(be.ErrorString), MissingRuleError)
}
