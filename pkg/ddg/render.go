package ddg

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/l3aro/go-trace-deps/pkg/graph"
)

// formatLabels renders edge labels as "k=v" pairs sorted by key.
func formatLabels(labels graph.Labels) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, labels[k]))
	}
	return strings.Join(parts, " ")
}

func writeEdgeList[N comparable](w io.Writer, g *graph.Directed[N]) error {
	lines := make([]string, 0, g.NumEdges())
	for _, e := range g.Edges() {
		line := fmt.Sprintf("%v -> %v", e.Src, e.Dst)
		if labels := formatLabels(e.Labels); labels != "" {
			line += "  [" + labels + "]"
		}
		lines = append(lines, line)
	}
	sort.Strings(lines)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeDot[N comparable](w io.Writer, name string, g *graph.Directed[N]) error {
	if _, err := fmt.Fprintf(w, "digraph %s {\n", name); err != nil {
		return err
	}

	lines := make([]string, 0, g.NumEdges())
	for _, e := range g.Edges() {
		label := formatLabels(e.Labels)
		lines = append(lines, fmt.Sprintf("  %q -> %q [label=%q];", fmt.Sprint(e.Src), fmt.Sprint(e.Dst), label))
	}
	sort.Strings(lines)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}

// WriteStatementGraph writes the statement dependence graph as a sorted
// edge list, one "src -> dst [labels]" line per edge.
func (a *Analysis) WriteStatementGraph(w io.Writer) error {
	return writeEdgeList(w, a.stmtGraph)
}

// WriteDataGraph writes the data dependence graph as a sorted edge list.
// With simplified set, the temporary-free derived graph is written instead.
func (a *Analysis) WriteDataGraph(w io.Writer, simplified bool) error {
	if simplified {
		return writeEdgeList(w, a.SimplifiedDataGraph())
	}
	return writeEdgeList(w, a.dataGraph)
}

// WriteStatementDot writes the statement dependence graph in Graphviz dot
// format.
func (a *Analysis) WriteStatementDot(w io.Writer) error {
	return writeDot(w, "statements", a.stmtGraph)
}

// WriteDataDot writes the data dependence graph in Graphviz dot format.
func (a *Analysis) WriteDataDot(w io.Writer, simplified bool) error {
	if simplified {
		return writeDot(w, "data", a.SimplifiedDataGraph())
	}
	return writeDot(w, "data", a.dataGraph)
}
