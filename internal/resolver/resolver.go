package resolver

import (
	"context"
	"iter"

	"github.com/anvil-platform/forge/internal/model"
)

// Resolver computes the Resolution of every known component for a target.
//
// *Registry is the implementation. The project layer and everything above it
// depend on this interface.
type Resolver interface {
	Resolve(ctx context.Context, target *model.Target) (*Resolution, error)
	Reresolve(ctx context.Context, target *model.Target) (*Resolution, error)
	Validate(target *model.Target) error
	Lookup(id string, kind model.Kind) (*model.Component, error)
	Components() iter.Seq[*model.Component]
	Len() int
}

var _ Resolver = (*Registry)(nil)
