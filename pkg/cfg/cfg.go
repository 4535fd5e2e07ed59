// Package cfg models the control flow graph consumed by the dependence
// analysis: basic-block nodes carrying the final execution states recorded
// for them, edges tagged with their jump kind, and the function index and
// register-layout collaborators. The package only describes a previously
// computed CFG; it performs no disassembly or execution itself.
package cfg

// JumpKind classifies a control transfer.
type JumpKind string

const (
	JumpOrdinary   JumpKind = "ordinary"    // fallthrough, branch, plain jump
	JumpCall       JumpKind = "call"        // call into a procedure
	JumpReturn     JumpKind = "return"      // return from a procedure
	JumpFakeReturn JumpKind = "fake_return" // speculative post-call continuation
)

// Node is a basic block together with the final execution states the
// engine recorded for it. A node usually has one state per successor
// outcome (e.g. the call target and the fallthrough continuation).
type Node struct {
	Addr        uint64        // block start address
	FinalStates []*FinalState // recorded outcomes, in engine order
}

// Edge is a directed CFG edge tagged with its jump kind.
type Edge struct {
	Src  *Node
	Dst  *Node
	Kind JumpKind
}

// Graph is the CFG handed to the analysis. KeepState asserts that full
// execution state was retained while the CFG was built; the analysis
// refuses to run without it.
type Graph struct {
	KeepState bool

	nodes []*Node
	out   map[*Node][]Edge
	in    map[*Node][]Edge
}

// NewGraph creates an empty CFG. keepState records whether the builder
// retained full execution state on every node.
func NewGraph(keepState bool) *Graph {
	return &Graph{
		KeepState: keepState,
		out:       make(map[*Node][]Edge),
		in:        make(map[*Node][]Edge),
	}
}

// AddNode inserts a node into the graph.
func (g *Graph) AddNode(n *Node) {
	if _, ok := g.out[n]; ok {
		return
	}
	g.nodes = append(g.nodes, n)
	g.out[n] = nil
	g.in[n] = nil
}

// AddEdge inserts a directed edge, adding the endpoints as needed.
func (g *Graph) AddEdge(src, dst *Node, kind JumpKind) {
	g.AddNode(src)
	g.AddNode(dst)
	e := Edge{Src: src, Dst: dst, Kind: kind}
	g.out[src] = append(g.out[src], e)
	g.in[dst] = append(g.in[dst], e)
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// InDegree returns the number of incoming edges of a node.
func (g *Graph) InDegree(n *Node) int { return len(g.in[n]) }

// OutEdges returns the outgoing edges of a node.
func (g *Graph) OutEdges(n *Node) []Edge { return g.out[n] }

// Successors returns the direct successor nodes of a node.
func (g *Graph) Successors(n *Node) []*Node {
	out := make([]*Node, 0, len(g.out[n]))
	for _, e := range g.out[n] {
		out = append(out, e.Dst)
	}
	return out
}

// RegisterSizer is the architecture collaborator: it reports the size in
// bytes of the register at a given offset in the register file.
type RegisterSizer interface {
	// RegisterSize returns the register size and whether the offset is a
	// known register.
	RegisterSize(offset uint64) (int, bool)
}

// RegisterMap is a RegisterSizer backed by a plain offset->size map.
type RegisterMap map[uint64]int

// RegisterSize implements RegisterSizer.
func (m RegisterMap) RegisterSize(offset uint64) (int, bool) {
	size, ok := m[offset]
	return size, ok
}
