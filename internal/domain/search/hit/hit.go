// Package hit holds the backend's per-result record before normalization.
package hit

import (
	"strings"

	"github.com/kailas-cloud/querygate/internal/domain/search/result"
)

// Tag is one (name, text) pair from a hit's document content, in document order.
// A multi-valued field appears as several tags with the same name. Value is the
// tag's own text only; a tag that nests elements instead of text has an empty Value.
type Tag struct {
	Name  string
	Value string
}

// Raw is one backend hit: scalar metadata plus the ordered tag list.
type Raw struct {
	Meta result.Meta
	Tags []Tag
}

// Values returns the values of every tag named name (ignoring case), in order.
func (r Raw) Values(name string) []string {
	var out []string
	for _, t := range r.Tags {
		if strings.EqualFold(t.Name, name) {
			out = append(out, t.Value)
		}
	}
	return out
}
