// Package project ties configuration, manifests and the resolver together:
// it is what the CLI and the query server open.
package project

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/spf13/afero"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/anvil-platform/forge/internal/config"
	"github.com/anvil-platform/forge/internal/manifest"
	"github.com/anvil-platform/forge/internal/model"
	"github.com/anvil-platform/forge/internal/resolver"
)

// ErrInvalidTarget marks strict-mode routing failures.
var ErrInvalidTarget = errors.New("invalid target")

type Project struct {
	Config   config.Config
	Resolver resolver.Resolver

	fs     afero.Fs
	loader *manifest.Loader
}

// Open discovers every component manifest under cfg.ProjectDir.
func Open(ctx context.Context, fsys afero.Fs, cfg config.Config) (*Project, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	logger := log.FromContext(ctx).WithValues("project", cfg.ProjectDir)

	loader := manifest.NewLoader(fsys, cfg.BuildPath())
	components, err := loader.Components(cfg.ProjectDir)
	if err != nil {
		return nil, fmt.Errorf("loading components: %w", err)
	}
	reg, err := resolver.New(components...)
	if err != nil {
		return nil, err
	}
	logger.V(1).Info("opened project", "components", reg.Len())

	return &Project{Config: cfg, Resolver: reg, fs: fsys, loader: loader}, nil
}

// Fs is the filesystem the project was opened on.
func (p *Project) Fs() afero.Fs { return p.fs }

// Target loads the target manifest with the given id; "" means the
// configured default.
func (p *Project) Target(id string) (*model.Target, error) {
	if id == "" {
		id = p.Config.Target
	}
	return p.loader.Target(p.Config.TargetsPath(), id)
}

func (p *Project) TargetIDs() ([]string, error) {
	return p.loader.TargetIDs(p.Config.TargetsPath())
}

// Resolve loads target id and resolves the component set against it.
//
// Strict mode is opt-in through Config.Strict. By default a route naming a
// component that does not exist is not an error: every consumer of that
// interface is disabled with a reason and the rest of the target resolves
// normally. With Strict set such routes fail the call with ErrInvalidTarget.
//
// Resolutions are cached per target id. When the target manifest on disk no
// longer matches the cached resolution it is resolved again.
func (p *Project) Resolve(ctx context.Context, id string) (*resolver.Resolution, error) {
	target, err := p.Target(id)
	if err != nil {
		return nil, err
	}
	if p.Config.Strict {
		if err := p.Resolver.Validate(target); err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidTarget, target.ID, err)
		}
	}
	res, err := p.Resolver.Resolve(ctx, target)
	if err != nil {
		return nil, err
	}
	if !sameTarget(res.Target(), target) {
		log.FromContext(ctx).V(1).Info("target changed on disk, resolving again", "target", target.ID)
		return p.Resolver.Reresolve(ctx, target)
	}
	return res, nil
}

func sameTarget(a, b *model.Target) bool {
	return a.ID == b.ID &&
		a.BuildDir == b.BuildDir &&
		maps.Equal(a.Routing, b.Routing) &&
		maps.Equal(a.Constraints, b.Constraints) &&
		maps.Equal(a.Props, b.Props)
}
