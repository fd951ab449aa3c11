package resolver

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"sync"
	"time"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/anvil-platform/forge/internal/model"
)

// Registry owns every parsed component and the per-target resolution cache.
//
// It is the explicit context object for resolution and queries; there is no
// package-level registry. A Registry is safe for concurrent use.
type Registry struct {
	components []*model.Component
	index      map[string]int

	// mu guards entries only; passes run outside it.
	mu      sync.Mutex
	entries map[string]*entry
}

// entry memoizes one target's Resolution. once makes concurrent callers for
// the same target wait for a single pass.
type entry struct {
	once sync.Once
	res  *Resolution
}

// New builds a Registry. Declaration order of components is preserved and
// becomes the iteration order of every query.
func New(components ...*model.Component) (*Registry, error) {
	r := &Registry{
		components: make([]*model.Component, 0, len(components)),
		index:      make(map[string]int, len(components)),
		entries:    make(map[string]*entry),
	}

	var errs []error
	for i, c := range components {
		switch {
		case c == nil:
			errs = append(errs, fmt.Errorf("component #%d is nil", i))
			continue
		case c.ID == "":
			errs = append(errs, fmt.Errorf("component #%d has an empty id", i))
			continue
		case c.Kind != model.Library && c.Kind != model.Executable:
			errs = append(errs, fmt.Errorf("component %q has invalid kind %s", c.ID, c.Kind))
			continue
		}
		if _, dup := r.index[c.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate component id %q", c.ID))
			continue
		}
		r.index[c.ID] = len(r.components)
		r.components = append(r.components, c)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("registry: %w", utilerrors.NewAggregate(errs))
	}
	return r, nil
}

// Len returns the number of registered components.
func (r *Registry) Len() int { return len(r.components) }

// Components iterates every component in declaration order.
func (r *Registry) Components() iter.Seq[*model.Component] {
	return func(yield func(*model.Component) bool) {
		for _, c := range r.components {
			if !yield(c) {
				return
			}
		}
	}
}

// Lookup returns the component with the given id. kind filters by capability;
// model.AnyKind accepts every component.
func (r *Registry) Lookup(id string, kind model.Kind) (*model.Component, error) {
	i, ok := r.index[id]
	if !ok {
		return nil, notFound(id, "")
	}
	c := r.components[i]
	if !c.Kind.Matches(kind) {
		return nil, &LookupError{ID: id, Want: kind, Got: c.Kind, Err: ErrKindMismatch}
	}
	return c, nil
}

// Providers iterates, in declaration order, every component that declares
// iface in its provisions. Whether one of them is the chosen route is a
// property of the target: see model.Target.IsChosen.
func (r *Registry) Providers(iface string) iter.Seq[*model.Component] {
	return Filter(r.Components(), func(c *model.Component) bool {
		return c.ProvidesInterface(iface)
	})
}

// Resolve returns the Resolution for target, computing it on first access.
//
// Targets are cached by ID. Use Reresolve after changing a target's routing.
// Different targets resolve concurrently; callers racing on one target share
// a single pass.
func (r *Registry) Resolve(ctx context.Context, target *model.Target) (*Resolution, error) {
	if err := checkTarget(target); err != nil {
		return nil, err
	}

	r.mu.Lock()
	e, ok := r.entries[target.ID]
	if !ok {
		e = &entry{}
		r.entries[target.ID] = e
	}
	r.mu.Unlock()

	hit := true
	e.once.Do(func() {
		hit = false
		e.res = r.runPass(ctx, target)
	})
	if hit {
		resolverCacheHitsTotal.WithLabelValues(target.ID).Inc()
	}
	return e.res, nil
}

// Reresolve discards any cached Resolution for target.ID and recomputes it.
func (r *Registry) Reresolve(ctx context.Context, target *model.Target) (*Resolution, error) {
	if err := checkTarget(target); err != nil {
		return nil, err
	}

	e := &entry{}
	e.once.Do(func() { e.res = r.runPass(ctx, target) })

	r.mu.Lock()
	r.entries[target.ID] = e
	r.mu.Unlock()
	return e.res, nil
}

// IterEnabled resolves target if needed and iterates its enabled components.
func (r *Registry) IterEnabled(ctx context.Context, target *model.Target) (iter.Seq[*model.Component], error) {
	res, err := r.Resolve(ctx, target)
	if err != nil {
		return nil, err
	}
	return res.IterEnabled(), nil
}

// Validate reports routing entries of target that name unknown components.
// Resolution itself treats those as disablement; Validate is for callers that
// want them to be hard configuration errors.
func (r *Registry) Validate(target *model.Target) error {
	if err := checkTarget(target); err != nil {
		return err
	}

	ifaces := make([]string, 0, len(target.Routing))
	for iface := range target.Routing {
		ifaces = append(ifaces, iface)
	}
	sort.Strings(ifaces)

	var errs []error
	for _, iface := range ifaces {
		id := target.Routing[iface]
		if _, ok := r.index[id]; !ok {
			errs = append(errs, notFound(id, fmt.Sprintf("target %q routing of %q", target.ID, iface)))
		}
	}
	return utilerrors.NewAggregate(errs)
}

func (r *Registry) runPass(ctx context.Context, target *model.Target) *Resolution {
	logger := log.FromContext(ctx).WithValues("target", target.ID)
	start := time.Now()

	p := newPass(r, target, logger)
	for i := range r.components {
		p.resolve(i)
	}
	res := &Resolution{registry: r, target: target, states: p.states}

	resolverResolutionsTotal.WithLabelValues(target.ID).Inc()
	resolverResolutionDuration.Observe(time.Since(start).Seconds())
	resolverDisabledComponents.WithLabelValues(target.ID).Set(float64(res.DisabledCount()))

	logger.Info("resolved target",
		"componentCount", len(r.components),
		"enabledCount", len(r.components)-res.DisabledCount(),
		"disabledCount", res.DisabledCount(),
	)
	return res
}

var errNilTarget = errors.New("target is nil")

func checkTarget(target *model.Target) error {
	if target == nil {
		return errNilTarget
	}
	if target.ID == "" {
		return errors.New("target has an empty id")
	}
	return nil
}
