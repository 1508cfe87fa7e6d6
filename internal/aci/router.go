package aci

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/querygate/internal/domain"
)

// Executor runs one action against a single channel.
type Executor interface {
	Execute(ctx context.Context, params *Parameters) (*Node, error)
}

// Router dispatches actions to the executor registered for a channel.
type Router struct {
	executors map[Channel]Executor
}

// NewRouter creates a router with the content channel registered.
func NewRouter(content Executor) *Router {
	return &Router{executors: map[Channel]Executor{Content: content}}
}

// Register adds or replaces the executor for ch.
func (r *Router) Register(ch Channel, e Executor) *Router {
	r.executors[ch] = e
	return r
}

// Has reports whether ch has an executor.
func (r *Router) Has(ch Channel) bool {
	_, ok := r.executors[ch]
	return ok
}

// Execute runs params on ch. An unregistered channel fails with domain.ErrChannelUnavailable.
func (r *Router) Execute(ctx context.Context, ch Channel, params *Parameters) (*Node, error) {
	e, ok := r.executors[ch]
	if !ok || e == nil {
		return nil, fmt.Errorf("%s: %w", ch, domain.ErrChannelUnavailable)
	}
	return e.Execute(ctx, params)
}
