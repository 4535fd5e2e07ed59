package ddg

import (
	"container/list"

	"github.com/l3aro/go-trace-deps/pkg/cfg"
)

// job is one unit of scheduling work: a CFG node and the call depth it was
// reached at. Depth is a context tag bounding exploration, not a call
// stack; worklist membership is deduplicated by node only, so only the most
// recently scheduled depth per node is honored.
type job struct {
	node      *cfg.Node
	callDepth int
}

// construct runs the interprocedural fixpoint: it drains a FIFO worklist
// seeded with the zero-in-degree nodes, tracks every node's action traces
// against its entering reaching definitions, and propagates the resulting
// definitions to concrete successors until nothing changes.
func (a *Analysis) construct() error {
	worklist := list.New()
	pending := make(map[*cfg.Node]struct{})

	for _, n := range a.cfg.Nodes() {
		if a.cfg.InDegree(n) == 0 {
			a.worklistAppend(worklist, pending, job{node: n, callDepth: 0})
		}
	}

	liveDefsPerNode := make(map[*cfg.Node]LiveDefs)

	for worklist.Len() > 0 {
		jb := worklist.Remove(worklist.Front()).(job)
		node, callDepth := jb.node, jb.callDepth
		delete(pending, node)

		liveDefs, ok := liveDefsPerNode[node]
		if !ok {
			liveDefs = LiveDefs{}
			liveDefsPerNode[node] = liveDefs
		}

		states := node.FinalStates
		for _, state := range states {
			if state.JumpKind == cfg.JumpFakeReturn && len(states) > 1 {
				// A speculative post-call continuation next to real
				// successors would double-count the call.
				continue
			}

			newCallDepth := callDepth
			switch state.JumpKind {
			case cfg.JumpCall:
				newCallDepth++
			case cfg.JumpReturn:
				newCallDepth--
			}

			if a.callDepth != nil && callDepth > *a.callDepth {
				a.logger.Debug("call depth limit hit, not tracing state", "block", node.Addr)
				continue
			}

			newDefs, err := a.track(state, liveDefs)
			if err != nil {
				return err
			}

			if state.NextIP.Symbolic {
				// Indeterminate control flow: no synthetic successor edges.
				continue
			}
			var succ *cfg.Node
			for _, s := range a.cfg.Successors(node) {
				if s.Addr == state.NextIP.Concrete {
					succ = s
					break
				}
			}
			if succ == nil {
				continue
			}

			defsForNext, ok := liveDefsPerNode[succ]
			if !ok {
				defsForNext = LiveDefs{}
				liveDefsPerNode[succ] = defsForNext
			}

			if mergeDefs(defsForNext, newDefs) && a.depthInBounds(newCallDepth) {
				a.worklistAppend(worklist, pending, job{node: succ, callDepth: newCallDepth})
			}
		}
	}
	return nil
}

// mergeDefs unions the tracked definitions into a successor's entering
// definitions and reports whether anything changed. Unlike the tracker's
// kill-on-write, propagation only ever accumulates.
func mergeDefs(dst, src LiveDefs) bool {
	changed := false
	for v, locs := range src {
		existing, ok := dst[v]
		if !ok {
			dst[v] = locs.clone()
			changed = true
			continue
		}
		for loc := range locs {
			if _, ok := existing[loc]; !ok {
				existing[loc] = struct{}{}
				changed = true
			}
		}
	}
	return changed
}

// worklistAppend enqueues a job and eagerly pre-populates the worklist
// with every CFG node reachable from it under the call-depth bound,
// applying call/return depth arithmetic along the way. Pre-expansion only
// seeds the queue; it never runs the tracker. Nodes already pending are
// left alone, which keeps the membership check O(1) later.
func (a *Analysis) worklistAppend(worklist *list.List, pending map[*cfg.Node]struct{}, jb job) {
	if _, ok := pending[jb.node]; ok {
		return
	}
	worklist.PushBack(jb)
	pending[jb.node] = struct{}{}

	stack := []job{jb}
	traversed := map[*cfg.Node]struct{}{jb.node: {}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, e := range a.cfg.OutEdges(cur.node) {
			dst := e.Dst
			if _, seen := traversed[dst]; seen {
				continue
			}
			if _, ok := pending[dst]; ok {
				continue
			}
			traversed[dst] = struct{}{}

			var next job
			switch e.Kind {
			case cfg.JumpCall:
				if a.callDepth != nil && cur.callDepth >= *a.callDepth {
					continue
				}
				next = job{node: dst, callDepth: cur.callDepth + 1}
			case cfg.JumpReturn:
				if cur.callDepth <= 0 {
					continue
				}
				next = job{node: dst, callDepth: cur.callDepth - 1}
			default:
				next = job{node: dst, callDepth: cur.callDepth}
			}

			worklist.PushBack(next)
			pending[dst] = struct{}{}
			stack = append(stack, next)
		}
	}
}
