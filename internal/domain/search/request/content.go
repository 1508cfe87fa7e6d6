package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/querygate/internal/domain"
)

// MaxContentGroups limits how many backend calls one content request may cause.
const MaxContentGroups = 50

// ContentGroup is a set of references to fetch, optionally scoped to one database.
type ContentGroup struct {
	index      string
	references []string
}

// NewContentGroup validates a content group. At least one reference is required.
func NewContentGroup(index string, references []string) (ContentGroup, error) {
	if len(references) == 0 {
		return ContentGroup{}, fmt.Errorf("%w: content group needs at least one reference", domain.ErrInvalidRequest)
	}
	refs := make([]string, 0, len(references))
	for _, ref := range references {
		if strings.TrimSpace(ref) == "" {
			return ContentGroup{}, fmt.Errorf("%w: reference must not be blank", domain.ErrInvalidRequest)
		}
		refs = append(refs, ref)
	}
	return ContentGroup{index: strings.TrimSpace(index), references: refs}, nil
}

// Index returns the database the references live in ("" for any).
func (g ContentGroup) Index() string { return g.index }

// References returns the document references.
func (g ContentGroup) References() []string { return g.references }

// ContentRequest fetches full documents group by group, in order.
type ContentRequest struct {
	groups []ContentGroup
}

// NewContent validates a content request.
func NewContent(groups []ContentGroup) (ContentRequest, error) {
	if len(groups) == 0 {
		return ContentRequest{}, fmt.Errorf("%w: at least one content group is required", domain.ErrInvalidRequest)
	}
	if len(groups) > MaxContentGroups {
		return ContentRequest{}, fmt.Errorf("%w: too many content groups (max %d)", domain.ErrInvalidRequest, MaxContentGroups)
	}
	return ContentRequest{groups: append([]ContentGroup(nil), groups...)}, nil
}

// Groups returns the groups in request order.
func (r ContentRequest) Groups() []ContentGroup { return r.groups }
