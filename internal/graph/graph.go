// Package graph builds the dependency graph view of a resolved target and
// renders it as Graphviz DOT.
//
// Components and interfaces are both nodes. A requirement edge points from a
// component to an interface; a provider edge joins an interface to a
// component that declares it, and is marked Chosen when the target routes the
// interface to that component.
package graph

import (
	"fmt"

	"github.com/anvil-platform/forge/internal/model"
	"github.com/anvil-platform/forge/internal/resolver"
)

type NodeKind int

const (
	ComponentNode NodeKind = iota
	InterfaceNode
)

type EdgeKind int

const (
	RequirementEdge EdgeKind = iota
	ProviderEdge
)

type Node struct {
	ID            string
	Kind          NodeKind
	ComponentKind model.Kind
	Description   string
	Enabled       bool
	// Reason is set for disabled component nodes.
	Reason string
	// Scope marks the component the graph was scoped to.
	Scope bool
}

type Edge struct {
	From   string
	To     string
	Kind   EdgeKind
	Chosen bool
	// Disabled is set when the component end of the edge is disabled.
	Disabled bool
}

type DependencyGraph struct {
	Target string
	Scope  string
	Nodes  []Node
	Edges  []Edge
}

// Options control which components appear.
type Options struct {
	// Scope restricts the graph to one component and its requirement closure.
	Scope string
	// HideExecutables leaves only libraries.
	HideExecutables bool
	// ShowDisabled includes disabled components with their reason.
	ShowDisabled bool
}

// Build assembles the graph for res. It fails only when Scope names an
// unknown component.
func Build(res *resolver.Resolution, opts Options) (*DependencyGraph, error) {
	target := res.Target()
	g := &DependencyGraph{Target: target.ID, Scope: opts.Scope}

	var scopeState *resolver.State
	if opts.Scope != "" {
		if _, err := res.Lookup(opts.Scope, model.AnyKind); err != nil {
			return nil, fmt.Errorf("graph: scope: %w", err)
		}
		st, err := res.State(opts.Scope)
		if err != nil {
			return nil, fmt.Errorf("graph: scope: %w", err)
		}
		scopeState = st
	}

	ifaceSeen := map[string]bool{}
	var ifaces []string
	addIface := func(id string) {
		if !ifaceSeen[id] {
			ifaceSeen[id] = true
			ifaces = append(ifaces, id)
		}
	}

	components := res.Components()
	if opts.HideExecutables {
		components = resolver.OfKind(components, model.Library)
	}
	if scopeState != nil {
		components = resolver.Scoped(components, opts.Scope, scopeState)
	}

	for c := range components {
		st, err := res.State(c.ID)
		if err != nil {
			return nil, fmt.Errorf("graph: %w", err)
		}
		if !st.Enabled && !opts.ShowDisabled {
			continue
		}

		g.Nodes = append(g.Nodes, Node{
			ID:            c.ID,
			Kind:          ComponentNode,
			ComponentKind: c.Kind,
			Description:   c.Description,
			Enabled:       st.Enabled,
			Reason:        st.Reason,
			Scope:         c.ID == opts.Scope,
		})

		for _, iface := range c.Requires {
			addIface(iface)
			g.Edges = append(g.Edges, Edge{From: c.ID, To: iface, Kind: RequirementEdge, Disabled: !st.Enabled})
		}
		for _, iface := range c.Provides {
			addIface(iface)
			g.Edges = append(g.Edges, Edge{
				From:     iface,
				To:       c.ID,
				Kind:     ProviderEdge,
				Chosen:   st.Enabled && target.IsChosen(iface, c.ID),
				Disabled: !st.Enabled,
			})
		}
	}

	for _, iface := range ifaces {
		g.Nodes = append(g.Nodes, Node{ID: iface, Kind: InterfaceNode, Enabled: true})
	}
	return g, nil
}

// Node returns the node with the given id.
func (g *DependencyGraph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
