package resolver

import (
	"fmt"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"k8s.io/apimachinery/pkg/util/sets"
	"pgregory.net/rapid"

	"github.com/anvil-platform/forge/internal/model"
)

var propertyInterfaces = []string{"i0", "i1", "i2", "i3", "i4", "i5"}

type snapshot struct {
	Enabled  bool
	Reason   string
	Required []string
}

func drawProject(t *rapid.T) ([]*model.Component, *model.Target) {
	n := rapid.IntRange(1, 8).Draw(t, "componentCount")

	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("c%d", i)
	}

	components := make([]*model.Component, n)
	for i, id := range ids {
		components[i] = &model.Component{
			ID:       id,
			Kind:     rapid.SampledFrom([]model.Kind{model.Library, model.Executable}).Draw(t, id+".kind"),
			Requires: rapid.SliceOfN(rapid.SampledFrom(propertyInterfaces), 0, 3).Draw(t, id+".requires"),
			Provides: rapid.SliceOfN(rapid.SampledFrom(propertyInterfaces), 0, 2).Draw(t, id+".provides"),
		}
	}

	// "" leaves the interface unrouted; "ghost" is a dangling route.
	choices := append([]string{"", "ghost"}, ids...)
	routing := map[string]string{}
	for _, iface := range propertyInterfaces {
		if to := rapid.SampledFrom(choices).Draw(t, "route."+iface); to != "" {
			routing[iface] = to
		}
	}
	return components, &model.Target{ID: "prop", Routing: routing}
}

func snapshotOf(res *Resolution) map[string]snapshot {
	out := map[string]snapshot{}
	for c, st := range res.All() {
		out[c.ID] = snapshot{Enabled: st.Enabled, Reason: st.Reason, Required: st.Required()}
	}
	return out
}

func TestProperty_ResolutionInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		components, target := drawProject(rt)

		r, err := New(components...)
		if err != nil {
			rt.Fatalf("New error: %v", err)
		}
		res, err := r.Resolve(testContext(), target)
		if err != nil {
			rt.Fatalf("Resolve error: %v", err)
		}

		// Determinism: an independent registry over the same input agrees.
		other, err := New(components...)
		if err != nil {
			rt.Fatalf("New error: %v", err)
		}
		otherRes, err := other.Resolve(testContext(), target)
		if err != nil {
			rt.Fatalf("Resolve error: %v", err)
		}
		if diff := cmp.Diff(snapshotOf(res), snapshotOf(otherRes)); diff != "" {
			rt.Fatalf("non-deterministic resolution (-first +second):\n%s", diff)
		}

		for c, st := range res.All() {
			if st.Enabled && st.Reason != "" {
				rt.Fatalf("%s: enabled with reason %q", c.ID, st.Reason)
			}
			if !st.Enabled && st.Reason == "" {
				rt.Fatalf("%s: disabled without reason", c.ID)
			}

			want := sets.New[string]()
			for _, iface := range c.Requires {
				providerID, routed := target.Route(iface)
				if !routed {
					if st.Enabled {
						rt.Fatalf("%s: enabled with unrouted %s", c.ID, iface)
					}
					continue
				}
				ps, err := res.State(providerID)
				if err != nil {
					if st.Enabled {
						rt.Fatalf("%s: enabled with dangling route %s -> %s", c.ID, iface, providerID)
					}
					continue
				}
				if !ps.Enabled && st.Enabled {
					rt.Fatalf("%s: enabled although provider %s is disabled", c.ID, providerID)
				}
				want.Insert(providerID)
				want = want.Union(sets.New(ps.Required()...))
			}

			if st.Enabled && !want.Equal(sets.New(st.Required()...)) {
				rt.Fatalf("%s: closure %v, want %v", c.ID, st.Required(), sets.List(want))
			}
			if st.Requires(c.ID) {
				rt.Fatalf("%s: enabled component requires itself", c.ID)
			}
		}

		var first, second []string
		for c := range res.IterEnabled() {
			first = append(first, c.ID)
		}
		for c := range res.IterEnabled() {
			second = append(second, c.ID)
		}
		if !slices.Equal(first, second) {
			rt.Fatalf("iteration not idempotent: %v vs %v", first, second)
		}
	})
}
