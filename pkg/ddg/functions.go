package ddg

import (
	"github.com/l3aro/go-trace-deps/pkg/cfg"
	"github.com/l3aro/go-trace-deps/pkg/graph"
	"github.com/l3aro/go-trace-deps/pkg/vars"
)

// FunctionGraph returns the statement-dependence subgraph attributed to
// one function. An edge belongs to every function owning either endpoint's
// block, so an edge crossing two functions shows up in both subgraphs.
// The projection is built once, lazily, from the final statement graph;
// it reports false for functions with no attributed edges or when no
// function index was supplied.
func (a *Analysis) FunctionGraph(f *cfg.Function) (*graph.Directed[vars.CodeLocation], bool) {
	if a.perFunction == nil {
		a.buildFunctionGraphs()
	}
	g, ok := a.perFunction[f]
	return g, ok
}

func (a *Analysis) buildFunctionGraphs() {
	a.perFunction = make(map[*cfg.Function]*graph.Directed[vars.CodeLocation])
	if a.functions == nil {
		return
	}

	for _, e := range a.stmtGraph.Edges() {
		var srcFunc *cfg.Function
		if f, ok := a.ownerOf(e.Src); ok {
			srcFunc = f
			a.functionSubgraph(f).AddEdge(e.Src, e.Dst, e.Labels)
		}
		if f, ok := a.ownerOf(e.Dst); ok && f != srcFunc {
			a.functionSubgraph(f).AddEdge(e.Src, e.Dst, e.Labels)
		}
	}
}

func (a *Analysis) ownerOf(loc vars.CodeLocation) (*cfg.Function, bool) {
	if loc.External() {
		return nil, false
	}
	return a.functions.OwnerOf(loc.BlockAddr)
}

func (a *Analysis) functionSubgraph(f *cfg.Function) *graph.Directed[vars.CodeLocation] {
	g, ok := a.perFunction[f]
	if !ok {
		g = graph.NewDirected[vars.CodeLocation]()
		a.perFunction[f] = g
	}
	return g
}
