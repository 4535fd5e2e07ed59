package cfg

// Value is a possibly-symbolic machine word. The analysis only ever uses
// concretely resolvable values; symbolic ones degrade to skips or the
// sentinel memory address.
type Value struct {
	Symbolic bool
	Concrete uint64
}

// Concrete builds a concrete value.
func Concrete(v uint64) Value { return Value{Concrete: v} }

// Symbolic is the unresolvable value.
var Symbolic = Value{Symbolic: true}

// FinalState is one recorded outcome of executing a block: the jump kind
// it exits with, the next-instruction pointer, and the ordered action
// trace produced while evaluating the block.
type FinalState struct {
	JumpKind JumpKind
	NextIP   Value
	Actions  []Action
}

// ActionKind is the event class of one action-trace entry.
type ActionKind string

const (
	ActionReg  ActionKind = "reg"  // register access
	ActionMem  ActionKind = "mem"  // memory access
	ActionTmp  ActionKind = "tmp"  // temporary access
	ActionExit ActionKind = "exit" // branch-condition evaluation
)

// ActionOp is the read/write polarity of an action.
type ActionOp string

const (
	OpRead  ActionOp = "read"
	OpWrite ActionOp = "write"
)

// Operand is one side of an action (the address expression of a memory
// access, or the data being moved), with the dependency sets the engine
// computed for it.
type Operand struct {
	Value   Value    // concrete evaluation, if the engine could resolve it
	Size    int      // size in bytes
	RegDeps []uint64 // register offsets the operand depends on
	TmpDeps []int    // temporaries the operand depends on
}

// Action is one entry in a block's action trace: a register, memory or
// temporary read/write, or a branch-condition evaluation. Actions that
// originate from a modeled external procedure carry Procedure instead of a
// block address.
type Action struct {
	Kind ActionKind
	Op   ActionOp

	BlockAddr uint64 // owning block; ignored when Procedure is set
	StmtIdx   int    // statement index within the block
	InsAddr   uint64 // instruction address, 0 if not recorded
	Procedure string // modeled procedure name, "" for in-block events

	RegOffset uint64 // register actions: offset into the register file
	Tmp       int    // temporary and exit actions: temporary id

	Addr        Operand  // memory actions: the address expression
	Data        Operand  // the value being read or written
	ActualAddrs []uint64 // memory actions: engine-reported concrete addresses
	TmpDeps     []int    // register-write and exit actions: temporary deps
	RegDeps     []uint64 // register-write actions: register deps
}
