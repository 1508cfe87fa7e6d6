package databases

import (
	"context"

	"github.com/kailas-cloud/querygate/internal/aci"
)

// Backend executes ACI actions.
type Backend interface {
	Execute(ctx context.Context, ch aci.Channel, p *aci.Parameters) (*aci.Node, error)
}

// Source lists the databases currently available on the backend.
type Source interface {
	List(ctx context.Context) ([]string, error)
}
