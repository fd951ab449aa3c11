package graph

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/emicklei/dot"
	"github.com/muesli/reflow/wordwrap"

	"github.com/anvil-platform/forge/internal/model"
)

const labelWidth = 40

// DOT converts g into a Graphviz graph. Every label is an HTML label, so ids
// and descriptions reach the output escaped regardless of their content.
func (g *DependencyGraph) DOT() *dot.Graph {
	d := dot.NewGraph(dot.Directed)

	title := g.Scope
	if title == "" {
		title = "Full Dependency Graph"
	}
	d.Attr("splines", "ortho")
	d.Attr("rankdir", "BT")
	d.Attr("ranksep", "1.5")
	d.Attr("labelloc", "t")
	d.Attr("label", dot.HTML(fmt.Sprintf("<B>%s</B><BR/>%s", html.EscapeString(title), html.EscapeString(g.Target))))

	nodes := make(map[string]dot.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		node := d.Node(n.ID)
		if n.Kind == InterfaceNode {
			node.Attr("label", dot.HTML(html.EscapeString(n.ID)))
			node.Attr("shape", "ellipse")
		} else {
			componentAttrs(node, n)
		}
		nodes[n.ID] = node
	}

	for _, e := range g.Edges {
		edge := d.Edge(nodes[e.From], nodes[e.To])
		if e.Kind == ProviderEdge {
			edge.Attr("arrowhead", "none")
		}
		switch {
		case e.Disabled:
			edge.Attr("color", "#aaaaaa")
		case e.Kind == ProviderEdge && e.Chosen:
			edge.Attr("color", "blue")
		case e.Kind == ProviderEdge:
			edge.Attr("color", "black")
		}
	}
	return d
}

// WriteDOT renders g in the Graphviz DOT language.
func (g *DependencyGraph) WriteDOT(w io.Writer) error {
	_, err := io.WriteString(w, g.DOT().String())
	return err
}

func componentAttrs(node dot.Node, n Node) {
	label := fmt.Sprintf("<B>%s</B><BR/>%s", html.EscapeString(n.ID), wrap(n.Description))
	node.Attr("style", "filled")

	if !n.Enabled {
		label += fmt.Sprintf("<BR/><BR/><I>%s</I>", wrap(n.Reason))
		node.Attr("label", dot.HTML(label))
		node.Attr("shape", "plaintext")
		node.Attr("fontcolor", "#999999")
		node.Attr("fillcolor", "#eeeeee")
		return
	}

	shape := "plaintext"
	if n.Scope {
		shape = "box"
	}
	fill := "lightgrey"
	if n.ComponentKind == model.Executable {
		fill = "lightblue"
	}
	node.Attr("label", dot.HTML(label))
	node.Attr("shape", shape)
	node.Attr("fillcolor", fill)
}

// wrap escapes s for an HTML label and breaks it into lines.
func wrap(s string) string {
	wrapped := wordwrap.String(html.EscapeString(s), labelWidth)
	return strings.ReplaceAll(wrapped, "\n", "<BR/>")
}
