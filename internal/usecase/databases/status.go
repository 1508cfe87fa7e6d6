package databases

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/querygate/internal/aci"
)

// StatusSource reads the database list from the content channel's GetStatus action.
type StatusSource struct {
	backend Backend
}

// NewStatusSource creates a StatusSource.
func NewStatusSource(backend Backend) *StatusSource {
	return &StatusSource{backend: backend}
}

// List returns the public databases in the order the backend reports them.
// Databases flagged internal are left out.
func (s *StatusSource) List(ctx context.Context) ([]string, error) {
	data, err := s.backend.Execute(ctx, aci.Content, aci.NewParameters(aci.ActionGetStatus))
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	nodes := data.Path("databases").ChildrenNamed("database")
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		name := n.ChildText("name")
		if name == "" {
			continue
		}
		if internal, _ := strconv.ParseBool(n.ChildText("internal")); internal {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
