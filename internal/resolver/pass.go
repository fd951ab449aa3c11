package resolver

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/anvil-platform/forge/internal/model"
	"github.com/anvil-platform/forge/internal/semver"
)

// pass is the arena for a single resolution of one target. Its status and
// stack slices are discarded with it, so in-progress markers never leak into
// another target's resolution.
type pass struct {
	registry *Registry
	target   *model.Target
	logger   logr.Logger

	status []Status
	states []State
	// stack holds component indexes currently InProgress, outermost first.
	stack []int
}

func newPass(r *Registry, target *model.Target, logger logr.Logger) *pass {
	return &pass{
		registry: r,
		target:   target,
		logger:   logger,
		status:   make([]Status, len(r.components)),
		states:   make([]State, len(r.components)),
	}
}

// resolve returns the state of component i, computing it if needed.
// Callers must not invoke it on an InProgress component.
func (p *pass) resolve(i int) *State {
	if p.status[i] == Resolved {
		return &p.states[i]
	}

	p.status[i] = InProgress
	p.stack = append(p.stack, i)

	st := p.evaluate(p.registry.components[i])

	p.stack = p.stack[:len(p.stack)-1]
	p.status[i] = Resolved
	p.states[i] = st

	if !st.Enabled {
		p.logger.V(1).Info("component disabled", "component", p.registry.components[i].ID, "reason", st.Reason)
	}
	return &p.states[i]
}

// evaluate walks requirements in declaration order and stops at the first
// failing one, so the reason always cites that requirement.
func (p *pass) evaluate(c *model.Component) State {
	required := sets.New[string]()

	for _, iface := range c.Requires {
		providerID, ok := p.target.Route(iface)
		if !ok {
			return disabled(fmt.Sprintf("requires unrouted interface %q", iface))
		}

		j, ok := p.registry.index[providerID]
		if !ok {
			return disabled(fmt.Sprintf("interface %q is routed to %q which does not exist", iface, providerID))
		}
		provider := p.registry.components[j]

		if constraint, ok := p.target.Constraint(iface); ok {
			if err := semver.Check(provider.Version, constraint); err != nil {
				return disabled(fmt.Sprintf("provider %q of interface %q: %v", providerID, iface, err))
			}
		}

		if p.status[j] == InProgress {
			return disabled(fmt.Sprintf("dependency cycle: %s", p.cyclePath(j)))
		}

		ps := p.resolve(j)
		if !ps.Enabled {
			return disabled(fmt.Sprintf("transitively disabled via %q (interface %q): %s", providerID, iface, ps.Reason))
		}

		required.Insert(providerID)
		required = required.Union(ps.required)
	}

	return enabled(required)
}

// cyclePath renders the in-progress chain from component j back to itself.
func (p *pass) cyclePath(j int) string {
	ids := make([]string, 0, len(p.stack)+1)
	seen := false
	for _, i := range p.stack {
		if i == j {
			seen = true
		}
		if seen {
			ids = append(ids, p.registry.components[i].ID)
		}
	}
	ids = append(ids, p.registry.components[j].ID)
	return strings.Join(ids, " -> ")
}
