package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/querygate/internal/domain"
)

// SimilarRequest is a validated "find similar" query seeded by a document reference.
type SimilarRequest struct {
	reference    string
	restrictions Restrictions
	output       Output
}

// NewSimilar validates a find-similar request. The reference is required.
func NewSimilar(reference string, restrictions Restrictions, output Output) (SimilarRequest, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return SimilarRequest{}, fmt.Errorf("%w: reference is required", domain.ErrInvalidRequest)
	}
	return SimilarRequest{reference: reference, restrictions: restrictions, output: output}, nil
}

// Reference returns the seed document reference.
func (r SimilarRequest) Reference() string { return r.reference }

// Restrictions returns the restrictions applied to similar documents.
func (r SimilarRequest) Restrictions() Restrictions { return r.restrictions }

// Output returns pagination and presentation options.
func (r SimilarRequest) Output() Output { return r.output }
