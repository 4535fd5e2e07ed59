// Package trace defines the serialized form of a recorded control flow
// graph with execution traces, as produced by an external CFG builder, and
// turns it into the collaborator objects the dependence analysis consumes.
// Documents are stored as JSON or msgpack, keyed on file extension.
package trace

import (
	"fmt"

	"github.com/l3aro/go-trace-deps/pkg/cfg"
)

// Operand is the serialized form of one side of an action: the concrete
// evaluation (absent when symbolic) and the dependency sets the engine
// computed for it.
type Operand struct {
	Value   *uint64  `json:"value,omitempty" msgpack:"value,omitempty"`
	Size    int      `json:"size" msgpack:"size"`
	RegDeps []uint64 `json:"reg_deps,omitempty" msgpack:"reg_deps,omitempty"`
	TmpDeps []int    `json:"tmp_deps,omitempty" msgpack:"tmp_deps,omitempty"`
}

// Action is one serialized action-trace entry.
type Action struct {
	Kind string `json:"kind" msgpack:"kind"`
	Op   string `json:"op" msgpack:"op"`

	BlockAddr uint64 `json:"block_addr,omitempty" msgpack:"block_addr,omitempty"`
	StmtIdx   int    `json:"stmt_idx" msgpack:"stmt_idx"`
	InsAddr   uint64 `json:"ins_addr,omitempty" msgpack:"ins_addr,omitempty"`
	Procedure string `json:"procedure,omitempty" msgpack:"procedure,omitempty"`

	RegOffset uint64 `json:"reg_offset,omitempty" msgpack:"reg_offset,omitempty"`
	Tmp       int    `json:"tmp,omitempty" msgpack:"tmp,omitempty"`

	Addr        Operand  `json:"addr,omitempty" msgpack:"addr,omitempty"`
	Data        Operand  `json:"data,omitempty" msgpack:"data,omitempty"`
	ActualAddrs []uint64 `json:"actual_addrs,omitempty" msgpack:"actual_addrs,omitempty"`
	TmpDeps     []int    `json:"tmp_deps,omitempty" msgpack:"tmp_deps,omitempty"`
	RegDeps     []uint64 `json:"reg_deps,omitempty" msgpack:"reg_deps,omitempty"`
}

// State is one serialized final execution state of a block.
type State struct {
	JumpKind string   `json:"jump_kind" msgpack:"jump_kind"`
	NextIP   *uint64  `json:"next_ip,omitempty" msgpack:"next_ip,omitempty"` // nil means symbolic
	Actions  []Action `json:"actions" msgpack:"actions"`
}

// Block is one serialized basic block with its recorded states.
type Block struct {
	Addr   uint64  `json:"addr" msgpack:"addr"`
	States []State `json:"states" msgpack:"states"`
}

// Edge is one serialized CFG edge, referencing blocks by start address.
type Edge struct {
	Src  uint64 `json:"src" msgpack:"src"`
	Dst  uint64 `json:"dst" msgpack:"dst"`
	Kind string `json:"kind" msgpack:"kind"`
}

// Function is one serialized function with its member blocks.
type Function struct {
	Name   string   `json:"name" msgpack:"name"`
	Addr   uint64   `json:"addr" msgpack:"addr"`
	Blocks []uint64 `json:"blocks" msgpack:"blocks"`
}

// Document is a complete recorded trace: the CFG, the per-block execution
// states, the function boundaries, and the register layout.
type Document struct {
	KeepState bool           `json:"keep_state" msgpack:"keep_state"`
	Blocks    []Block        `json:"blocks" msgpack:"blocks"`
	Edges     []Edge         `json:"edges" msgpack:"edges"`
	Functions []Function     `json:"functions,omitempty" msgpack:"functions,omitempty"`
	Registers map[uint64]int `json:"registers,omitempty" msgpack:"registers,omitempty"`
}

// Build converts the document into the CFG, function index and register
// map consumed by the analysis. Edges referencing unknown blocks are an
// error: the document is supposed to be self-contained.
func (d *Document) Build() (*cfg.Graph, *cfg.FunctionIndex, cfg.RegisterMap, error) {
	g := cfg.NewGraph(d.KeepState)
	byAddr := make(map[uint64]*cfg.Node, len(d.Blocks))

	for _, b := range d.Blocks {
		if _, ok := byAddr[b.Addr]; ok {
			return nil, nil, nil, fmt.Errorf("duplicate block %#x", b.Addr)
		}
		node := &cfg.Node{Addr: b.Addr}
		for _, s := range b.States {
			state, err := buildState(s)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("block %#x: %w", b.Addr, err)
			}
			node.FinalStates = append(node.FinalStates, state)
		}
		byAddr[b.Addr] = node
		g.AddNode(node)
	}

	for _, e := range d.Edges {
		src, ok := byAddr[e.Src]
		if !ok {
			return nil, nil, nil, fmt.Errorf("edge references unknown block %#x", e.Src)
		}
		dst, ok := byAddr[e.Dst]
		if !ok {
			return nil, nil, nil, fmt.Errorf("edge references unknown block %#x", e.Dst)
		}
		kind, err := jumpKind(e.Kind)
		if err != nil {
			return nil, nil, nil, err
		}
		g.AddEdge(src, dst, kind)
	}

	funcs := make([]*cfg.Function, 0, len(d.Functions))
	for _, f := range d.Functions {
		funcs = append(funcs, &cfg.Function{Name: f.Name, Addr: f.Addr, Blocks: f.Blocks})
	}

	return g, cfg.NewFunctionIndex(funcs), cfg.RegisterMap(d.Registers), nil
}

func buildState(s State) (*cfg.FinalState, error) {
	kind, err := jumpKind(s.JumpKind)
	if err != nil {
		return nil, err
	}

	state := &cfg.FinalState{
		JumpKind: kind,
		NextIP:   toValue(s.NextIP),
	}
	for _, a := range s.Actions {
		action, err := buildAction(a)
		if err != nil {
			return nil, err
		}
		state.Actions = append(state.Actions, action)
	}
	return state, nil
}

func buildAction(a Action) (cfg.Action, error) {
	kind, err := actionKind(a.Kind)
	if err != nil {
		return cfg.Action{}, err
	}
	op, err := actionOp(a.Op)
	if err != nil {
		return cfg.Action{}, err
	}

	return cfg.Action{
		Kind:        kind,
		Op:          op,
		BlockAddr:   a.BlockAddr,
		StmtIdx:     a.StmtIdx,
		InsAddr:     a.InsAddr,
		Procedure:   a.Procedure,
		RegOffset:   a.RegOffset,
		Tmp:         a.Tmp,
		Addr:        toOperand(a.Addr),
		Data:        toOperand(a.Data),
		ActualAddrs: a.ActualAddrs,
		TmpDeps:     a.TmpDeps,
		RegDeps:     a.RegDeps,
	}, nil
}

func toOperand(o Operand) cfg.Operand {
	return cfg.Operand{
		Value:   toValue(o.Value),
		Size:    o.Size,
		RegDeps: o.RegDeps,
		TmpDeps: o.TmpDeps,
	}
}

func toValue(v *uint64) cfg.Value {
	if v == nil {
		return cfg.Symbolic
	}
	return cfg.Concrete(*v)
}

func jumpKind(s string) (cfg.JumpKind, error) {
	switch k := cfg.JumpKind(s); k {
	case cfg.JumpOrdinary, cfg.JumpCall, cfg.JumpReturn, cfg.JumpFakeReturn:
		return k, nil
	default:
		return "", fmt.Errorf("unknown jump kind %q", s)
	}
}

func actionKind(s string) (cfg.ActionKind, error) {
	switch k := cfg.ActionKind(s); k {
	case cfg.ActionReg, cfg.ActionMem, cfg.ActionTmp, cfg.ActionExit:
		return k, nil
	default:
		return "", fmt.Errorf("unknown action kind %q", s)
	}
}

func actionOp(s string) (cfg.ActionOp, error) {
	switch o := cfg.ActionOp(s); o {
	case cfg.OpRead, cfg.OpWrite:
		return o, nil
	default:
		return "", fmt.Errorf("unknown action op %q", s)
	}
}
