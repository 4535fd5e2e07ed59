package ddg

import (
	"github.com/l3aro/go-trace-deps/pkg/graph"
	"github.com/l3aro/go-trace-deps/pkg/vars"
)

// simplifyDataGraph copies the data graph and splices out every node whose
// variable is a temporary: each predecessor is wired directly to each
// successor with the out-edge's labels overlaid on the in-edge's labels,
// then the temporary and its original edges are dropped. Temporaries are
// local to one node's trace, so the removal order does not affect the
// final edge set. The input graph is never mutated.
func simplifyDataGraph(data *graph.Directed[vars.ProgramVariable]) *graph.Directed[vars.ProgramVariable] {
	out := data.Clone()

	for _, n := range out.Nodes() {
		if n.Variable.Kind() != vars.KindTemporary {
			continue
		}

		inEdges := out.InEdges(n)
		outEdges := out.OutEdges(n)

		for _, ie := range inEdges {
			if ie.Src == n {
				continue
			}
			for _, oe := range outEdges {
				if oe.Dst == n {
					continue
				}
				out.AddEdge(ie.Src, oe.Dst, ie.Labels.Overlay(oe.Labels))
			}
		}

		out.RemoveNode(n)
	}

	return out
}
