// Package vars defines the storage-location and program-point value types
// used as node identities in the dependence graphs. All types here are
// immutable comparable values: equality and map-key hashing are structural,
// never based on pointer identity.
package vars

import "fmt"

// Variable identifies a storage location observed in an execution trace.
// It is implemented by the comparable value types RegisterVariable,
// MemoryVariable, TemporaryVariable and ConstantVariable, so a Variable
// can be used directly as a map key.
type Variable interface {
	// Kind reports which storage class the variable belongs to.
	Kind() VarKind

	fmt.Stringer
}

// VarKind represents the storage class of a Variable.
type VarKind string

const (
	KindRegister  VarKind = "reg"   // CPU register, identified by offset and size
	KindMemory    VarKind = "mem"   // Memory cell, identified by address and size
	KindTemporary VarKind = "tmp"   // Per-block temporary, never visible outside one trace
	KindConstant  VarKind = "const" // Synthetic source for immediate loads
)

// RegisterVariable is a register slice identified by its offset in the
// architecture's register file and its size in bytes.
type RegisterVariable struct {
	Offset uint64 // offset into the register file
	Size   int    // size in bytes
}

// Kind implements Variable.
func (RegisterVariable) Kind() VarKind { return KindRegister }

func (v RegisterVariable) String() string {
	return fmt.Sprintf("reg(%d:%d)", v.Offset, v.Size)
}

// MemoryVariable is a memory cell identified by a concrete address and a
// size in bytes. Accesses whose address could not be resolved concretely
// all share the fixed sentinel address (see SentinelAddr).
type MemoryVariable struct {
	Addr uint64 // concrete address, or SentinelAddr for unresolved accesses
	Size int    // size in bytes
}

// Kind implements Variable.
func (MemoryVariable) Kind() VarKind { return KindMemory }

func (v MemoryVariable) String() string {
	return fmt.Sprintf("mem(%#x:%d)", v.Addr, v.Size)
}

// SentinelAddr is the placeholder address standing in for "unknown memory".
// Every memory access whose address is symbolic collapses onto this single
// location, deliberately merging all unresolved accesses.
const SentinelAddr uint64 = 0x60000000

// TemporaryVariable is a value scoped to a single block's evaluation. Its
// ID is only meaningful within the trace of the block that produced it.
type TemporaryVariable struct {
	ID int
}

// Kind implements Variable.
func (TemporaryVariable) Kind() VarKind { return KindTemporary }

func (v TemporaryVariable) String() string {
	return fmt.Sprintf("tmp(%d)", v.ID)
}

// ConstantVariable is the singleton marker used as the synthetic source of
// "load immediate" data edges.
type ConstantVariable struct{}

// Kind implements Variable.
func (ConstantVariable) Kind() VarKind { return KindConstant }

func (ConstantVariable) String() string { return "const" }

// CodeLocation identifies a program point: a statement inside a basic
// block, optionally refined with the instruction address, or an external
// modeled procedure when the event did not originate from a disassembled
// block. The zero InsAddr means "no instruction address recorded".
type CodeLocation struct {
	BlockAddr uint64 // start address of the owning block
	StmtIdx   int    // statement index within the block
	InsAddr   uint64 // instruction address, 0 if unknown
	Procedure string // modeled procedure name; set iff the event has no block
}

// External reports whether the location refers to a modeled external
// procedure rather than a statement in a disassembled block.
func (l CodeLocation) External() bool { return l.Procedure != "" }

func (l CodeLocation) String() string {
	if l.External() {
		return fmt.Sprintf("<%s>", l.Procedure)
	}
	if l.InsAddr != 0 {
		return fmt.Sprintf("%#x[%d] @ %#x", l.BlockAddr, l.StmtIdx, l.InsAddr)
	}
	return fmt.Sprintf("%#x[%d]", l.BlockAddr, l.StmtIdx)
}

// ProgramVariable is a variable as defined or read at a specific location.
// It is the node identity of the data dependence graph.
type ProgramVariable struct {
	Variable Variable
	Location CodeLocation
}

func (pv ProgramVariable) String() string {
	return fmt.Sprintf("<%s @ %s>", pv.Variable, pv.Location)
}
