package resolver

import (
	"iter"

	"github.com/anvil-platform/forge/internal/model"
)

// Resolution is the resolved state of every component for one target.
// It is read-only; consumers never mutate it.
type Resolution struct {
	registry *Registry
	target   *model.Target
	// states is indexed like registry.components.
	states []State
}

// Target returns the target this resolution was computed for.
func (res *Resolution) Target() *model.Target { return res.target }

// State returns the resolved state of the component with the given id.
func (res *Resolution) State(id string) (*State, error) {
	i, ok := res.registry.index[id]
	if !ok {
		return nil, notFound(id, "state")
	}
	return &res.states[i], nil
}

// Lookup is Registry.Lookup, for callers that only hold a Resolution.
func (res *Resolution) Lookup(id string, kind model.Kind) (*model.Component, error) {
	return res.registry.Lookup(id, kind)
}

// Components iterates every component, enabled or not, in declaration order.
func (res *Resolution) Components() iter.Seq[*model.Component] {
	return res.registry.Components()
}

// All iterates every component with its state, in declaration order.
func (res *Resolution) All() iter.Seq2[*model.Component, *State] {
	return func(yield func(*model.Component, *State) bool) {
		for i, c := range res.registry.components {
			if !yield(c, &res.states[i]) {
				return
			}
		}
	}
}

// IterEnabled iterates enabled components in declaration order. The sequence
// is restartable.
func (res *Resolution) IterEnabled() iter.Seq[*model.Component] {
	return func(yield func(*model.Component) bool) {
		for c, st := range res.All() {
			if !st.Enabled {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// InScope iterates the enabled components that belong to scope: the scope
// component itself and every member of its requirement closure.
func (res *Resolution) InScope(scope string) (iter.Seq[*model.Component], error) {
	if _, err := res.Lookup(scope, model.AnyKind); err != nil {
		return nil, err
	}
	st, err := res.State(scope)
	if err != nil {
		return nil, err
	}
	return Scoped(res.IterEnabled(), scope, st), nil
}

// Providers iterates every component that declares iface, in declaration
// order, paired with its state under this target. Use Target().IsChosen to
// tell the routed provider from the others.
func (res *Resolution) Providers(iface string) iter.Seq2[*model.Component, *State] {
	return func(yield func(*model.Component, *State) bool) {
		for c := range res.registry.Providers(iface) {
			if !yield(c, &res.states[res.registry.index[c.ID]]) {
				return
			}
		}
	}
}

// DisabledCount returns how many components are disabled for this target.
func (res *Resolution) DisabledCount() int {
	n := 0
	for i := range res.states {
		if !res.states[i].Enabled {
			n++
		}
	}
	return n
}

// Filter lazily keeps the elements of seq for which keep returns true.
func Filter[T any](seq iter.Seq[T], keep func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range seq {
			if !keep(v) {
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Scoped narrows seq to the scope component and the members of its closure.
// scopeState is only consulted for set membership.
func Scoped(seq iter.Seq[*model.Component], scope string, scopeState *State) iter.Seq[*model.Component] {
	return Filter(seq, func(c *model.Component) bool {
		return c.ID == scope || scopeState.Requires(c.ID)
	})
}

// OfKind narrows seq to components of the given kind.
func OfKind(seq iter.Seq[*model.Component], kind model.Kind) iter.Seq[*model.Component] {
	return Filter(seq, func(c *model.Component) bool {
		return c.Kind.Matches(kind)
	})
}
