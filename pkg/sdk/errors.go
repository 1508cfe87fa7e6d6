package querygate

import "github.com/kailas-cloud/querygate/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest     = domain.ErrInvalidRequest
	ErrNotFound           = domain.ErrNotFound
	ErrBackend            = domain.ErrBackend
	ErrChannelUnavailable = domain.ErrChannelUnavailable
	ErrMalformedResponse  = domain.ErrMalformedResponse
)
