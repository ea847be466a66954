package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Exporter provides methods to export graph definitions in different formats
type Exporter struct {
	graph *GraphDefinition
}

// NewExporter creates a new graph exporter for the given graph
func NewExporter(graph *GraphDefinition) *Exporter {
	return &Exporter{graph: graph}
}

// MermaidOptions defines configuration for Mermaid diagram generation
type MermaidOptions struct {
	// Direction of the flowchart (e.g., "TD", "LR")
	Direction string
}

// sortedNodes returns node names in a stable order.
func (ge *Exporter) sortedNodes() []string {
	return slices.Sorted(maps.Keys(ge.graph.Nodes))
}

// DrawMermaid generates a Mermaid diagram representation of the graph
func (ge *Exporter) DrawMermaid() string {
	return ge.DrawMermaidWithOptions(MermaidOptions{
		Direction: "TD",
	})
}

// DrawMermaidWithOptions generates a Mermaid diagram with custom options.
// Default edges are solid; nodes without one get a dashed arrow to END
// since the run ends there unless the node overrides its successor.
func (ge *Exporter) DrawMermaidWithOptions(opts MermaidOptions) string {
	var sb strings.Builder

	direction := opts.Direction
	if direction == "" {
		direction = "TD"
	}
	fmt.Fprintf(&sb, "flowchart %s\n", direction)

	start := ge.graph.StartNode
	if start != "" {
		sb.WriteString("    START([\"START\"])\n")
		sb.WriteString("    style START fill:#90EE90\n")
		fmt.Fprintf(&sb, "    START --> %s\n", start)
	}

	for _, name := range ge.sortedNodes() {
		fmt.Fprintf(&sb, "    %s[\"%s<br/><i>%s</i>\"]\n", name, name, ge.graph.Nodes[name])
	}

	hasEnd := false
	for _, name := range ge.sortedNodes() {
		if next := ge.graph.Next(name); next != "" {
			fmt.Fprintf(&sb, "    %s --> %s\n", name, next)
		} else {
			fmt.Fprintf(&sb, "    %s -.-> END\n", name)
			hasEnd = true
		}
	}

	if hasEnd {
		sb.WriteString("    END([\"END\"])\n")
		sb.WriteString("    style END fill:#FFB6C1\n")
	}

	if start != "" {
		fmt.Fprintf(&sb, "    style %s fill:#87CEEB\n", start)
	}

	return sb.String()
}

// DrawDOT generates a DOT (Graphviz) representation of the graph
func (ge *Exporter) DrawDOT() string {
	var sb strings.Builder

	sb.WriteString("digraph G {\n")
	sb.WriteString("    rankdir=TD;\n")
	sb.WriteString("    node [shape=box];\n")

	start := ge.graph.StartNode
	if start != "" {
		sb.WriteString("    START [label=\"START\", shape=ellipse, style=filled, fillcolor=lightgreen];\n")
		fmt.Fprintf(&sb, "    START -> %q;\n", start)
		fmt.Fprintf(&sb, "    %q [style=filled, fillcolor=lightblue];\n", start)
	}

	hasEnd := false
	for _, name := range ge.sortedNodes() {
		if next := ge.graph.Next(name); next != "" {
			fmt.Fprintf(&sb, "    %q -> %q;\n", name, next)
		} else {
			fmt.Fprintf(&sb, "    %q -> END [style=dashed];\n", name)
			hasEnd = true
		}
	}

	if hasEnd {
		sb.WriteString("    END [label=\"END\", shape=ellipse, style=filled, fillcolor=lightpink];\n")
	}

	sb.WriteString("}\n")
	return sb.String()
}

// DrawASCII generates an ASCII path of the default edges from the start node
func (ge *Exporter) DrawASCII() string {
	if ge.graph.StartNode == "" {
		return "No start node set\n"
	}

	var sb strings.Builder
	sb.WriteString("Graph Execution Flow:\n")
	sb.WriteString("├── START\n")

	visited := make(map[string]bool)
	node := ge.graph.StartNode
	for node != "" {
		if visited[node] {
			fmt.Fprintf(&sb, "└── %s (cycle)\n", node)
			return sb.String()
		}
		visited[node] = true
		fmt.Fprintf(&sb, "├── %s\n", node)
		node = ge.graph.Next(node)
	}
	sb.WriteString("└── END\n")
	return sb.String()
}

// DrawMermaid is a shorthand for NewExporter(g).DrawMermaid().
func DrawMermaid(g *GraphDefinition) string {
	return NewExporter(g).DrawMermaid()
}

// DrawDOT is a shorthand for NewExporter(g).DrawDOT().
func DrawDOT(g *GraphDefinition) string {
	return NewExporter(g).DrawDOT()
}
