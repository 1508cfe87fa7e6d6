package search

import (
	"context"

	"github.com/kailas-cloud/querygate/internal/aci"
	"github.com/kailas-cloud/querygate/internal/domain"
	"github.com/kailas-cloud/querygate/internal/domain/field"
)

// Backend executes actions on a backend channel.
type Backend interface {
	Execute(ctx context.Context, ch aci.Channel, params *aci.Parameters) (*aci.Node, error)
	Has(ch aci.Channel) bool
}

// FieldsSource returns the current field configuration snapshot.
// It is called once per parse, never cached by the service.
type FieldsSource interface {
	Fields() *field.Registry
}

// Settings returns the current query manipulation settings.
type Settings interface {
	QueryManipulation() domain.QueryManipulation
}

// DatabaseLister lists the databases the backend currently serves.
type DatabaseLister interface {
	List(ctx context.Context) ([]string, error)
}
