// Package graph provides a directed graph with label-accumulating edges,
// generic over any comparable node type. The dependence analysis uses it
// twice: once keyed by code locations (statement graph) and once keyed by
// program variables (data graph).
package graph

// Labels carries the annotations attached to an edge. Values are either
// scalars set at insertion time or tuples ([]interface{}) grown through
// Annotate.
type Labels map[string]interface{}

// Clone returns a shallow copy of the labels.
func (l Labels) Clone() Labels {
	if l == nil {
		return Labels{}
	}
	out := make(Labels, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Overlay returns a copy of l with other's entries written over it.
// Keys present in both take other's value.
func (l Labels) Overlay(other Labels) Labels {
	out := l.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Edge is one directed edge together with its labels.
type Edge[N comparable] struct {
	Src    N
	Dst    N
	Labels Labels
}

// Directed is a directed graph over comparable nodes. Adjacency is kept in
// both directions so predecessor queries and node removal stay cheap.
type Directed[N comparable] struct {
	succs map[N]map[N]Labels
	preds map[N]map[N]Labels
	edges int
}

// NewDirected creates an empty directed graph.
func NewDirected[N comparable]() *Directed[N] {
	return &Directed[N]{
		succs: make(map[N]map[N]Labels),
		preds: make(map[N]map[N]Labels),
	}
}

// AddNode inserts a node. Adding an existing node is a no-op.
func (g *Directed[N]) AddNode(n N) {
	if _, ok := g.succs[n]; ok {
		return
	}
	g.succs[n] = make(map[N]Labels)
	g.preds[n] = make(map[N]Labels)
}

// AddEdge inserts a directed edge with the given labels, creating the
// endpoints as needed. If the edge already exists the call is a no-op and
// the existing labels are kept untouched; it reports whether the edge was
// actually inserted.
func (g *Directed[N]) AddEdge(src, dst N, labels Labels) bool {
	if _, ok := g.succs[src][dst]; ok {
		return false
	}
	g.AddNode(src)
	g.AddNode(dst)
	if labels == nil {
		labels = Labels{}
	}
	g.succs[src][dst] = labels
	g.preds[dst][src] = labels
	g.edges++
	return true
}

// HasNode reports whether the node is in the graph.
func (g *Directed[N]) HasNode(n N) bool {
	_, ok := g.succs[n]
	return ok
}

// HasEdge reports whether the directed edge src->dst exists.
func (g *Directed[N]) HasEdge(src, dst N) bool {
	_, ok := g.succs[src][dst]
	return ok
}

// EdgeLabels returns the labels of the edge src->dst.
func (g *Directed[N]) EdgeLabels(src, dst N) (Labels, bool) {
	labels, ok := g.succs[src][dst]
	return labels, ok
}

// Annotate extends tuple-valued labels on an existing edge. Each value is
// appended to the tuple stored under its key, starting a new tuple if the
// key is absent and converting a scalar already present into a tuple. It
// reports whether the edge existed; annotating a missing edge is a no-op.
func (g *Directed[N]) Annotate(src, dst N, labels Labels) bool {
	existing, ok := g.succs[src][dst]
	if !ok {
		return false
	}
	for k, v := range labels {
		switch cur := existing[k].(type) {
		case nil:
			existing[k] = []interface{}{v}
		case []interface{}:
			existing[k] = append(cur, v)
		default:
			existing[k] = []interface{}{cur, v}
		}
	}
	return true
}

// NumNodes returns the number of nodes.
func (g *Directed[N]) NumNodes() int { return len(g.succs) }

// NumEdges returns the number of edges.
func (g *Directed[N]) NumEdges() int { return g.edges }

// Nodes returns all nodes in unspecified order.
func (g *Directed[N]) Nodes() []N {
	out := make([]N, 0, len(g.succs))
	for n := range g.succs {
		out = append(out, n)
	}
	return out
}

// Edges returns all edges in unspecified order.
func (g *Directed[N]) Edges() []Edge[N] {
	out := make([]Edge[N], 0, g.edges)
	for src, dsts := range g.succs {
		for dst, labels := range dsts {
			out = append(out, Edge[N]{Src: src, Dst: dst, Labels: labels})
		}
	}
	return out
}

// Successors returns the direct successors of a node.
func (g *Directed[N]) Successors(n N) []N {
	out := make([]N, 0, len(g.succs[n]))
	for s := range g.succs[n] {
		out = append(out, s)
	}
	return out
}

// Predecessors returns the direct predecessors of a node.
func (g *Directed[N]) Predecessors(n N) []N {
	out := make([]N, 0, len(g.preds[n]))
	for p := range g.preds[n] {
		out = append(out, p)
	}
	return out
}

// InEdges returns the incoming edges of a node.
func (g *Directed[N]) InEdges(n N) []Edge[N] {
	out := make([]Edge[N], 0, len(g.preds[n]))
	for p, labels := range g.preds[n] {
		out = append(out, Edge[N]{Src: p, Dst: n, Labels: labels})
	}
	return out
}

// OutEdges returns the outgoing edges of a node.
func (g *Directed[N]) OutEdges(n N) []Edge[N] {
	out := make([]Edge[N], 0, len(g.succs[n]))
	for s, labels := range g.succs[n] {
		out = append(out, Edge[N]{Src: n, Dst: s, Labels: labels})
	}
	return out
}

// RemoveNode deletes a node and all its incident edges. Removing an absent
// node is a no-op.
func (g *Directed[N]) RemoveNode(n N) {
	if _, ok := g.succs[n]; !ok {
		return
	}
	for s := range g.succs[n] {
		delete(g.preds[s], n)
		g.edges--
	}
	for p := range g.preds[n] {
		// A self-loop was already counted on the successor side.
		if p == n {
			continue
		}
		delete(g.succs[p], n)
		g.edges--
	}
	delete(g.succs, n)
	delete(g.preds, n)
}

// Clone returns a deep copy of the graph structure. Edge label maps are
// copied shallowly per edge, so annotating the copy does not touch the
// original.
func (g *Directed[N]) Clone() *Directed[N] {
	out := NewDirected[N]()
	for n := range g.succs {
		out.AddNode(n)
	}
	for src, dsts := range g.succs {
		for dst, labels := range dsts {
			out.AddEdge(src, dst, labels.Clone())
		}
	}
	return out
}
