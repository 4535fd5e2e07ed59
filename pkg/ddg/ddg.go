// Package ddg builds statement and data dependence graphs from a control
// flow graph whose nodes carry recorded execution traces. The analysis is a
// fast approximation: it reuses whatever the upstream CFG and execution
// engine already computed and makes no soundness or completeness promises.
// Symbolic memory addresses collapse onto a single sentinel location and
// indeterminate control flow is simply not followed.
package ddg

import (
	"errors"
	"fmt"

	"github.com/l3aro/go-trace-deps/internal/log"
	"github.com/l3aro/go-trace-deps/pkg/cfg"
	"github.com/l3aro/go-trace-deps/pkg/graph"
	"github.com/l3aro/go-trace-deps/pkg/vars"
)

// ErrStateNotKept is returned when the CFG was built without retaining the
// full execution state per node. The analysis cannot run on such a CFG.
var ErrStateNotKept = errors.New("cfg was built without full state retention")

// ErrUnknownVariable signals a contract break between the tracker and the
// variable model: a reaching-definition lookup saw a variable kind that can
// never carry reaching definitions.
var ErrUnknownVariable = errors.New("unknown variable kind in definition lookup")

// Edge label keys and values used on both dependence graphs.
const (
	LabelType    = "type"    // edge kind: reg, mem, tmp, exit, mem_addr, mem_data
	LabelSubtype = "subtype" // annotation: mem_addr or mem_data, tuple-valued
	LabelData    = "data"    // variable payload (keep-data mode) or tmp id
	LabelCount   = "count"   // duplicate-definition counter (default mode)

	TypeReg     = "reg"
	TypeMem     = "mem"
	TypeTmp     = "tmp"
	TypeExit    = "exit"
	TypeMemAddr = "mem_addr"
	TypeMemData = "mem_data"
)

// LocationSet is a set of code locations.
type LocationSet map[vars.CodeLocation]struct{}

func (s LocationSet) clone() LocationSet {
	out := make(LocationSet, len(s))
	for loc := range s {
		out[loc] = struct{}{}
	}
	return out
}

// LiveDefs maps each variable to the set of locations that may currently
// define it: the reaching definitions entering a CFG node. A write inside
// the tracker replaces a variable's whole set (kill is total); merging
// across CFG edges unions sets instead.
type LiveDefs map[vars.Variable]LocationSet

func (d LiveDefs) clone() LiveDefs {
	out := make(LiveDefs, len(d))
	for v, locs := range d {
		out[v] = locs
	}
	return out
}

// Options configures the analysis.
type Options struct {
	// CallDepth bounds how deep the analysis traces through call edges.
	// nil disables the bound.
	CallDepth *int

	// KeepData stores the full variable on reaching-definition edge labels
	// instead of just a duplicate counter.
	KeepData bool

	// Arch resolves register sizes. Unknown offsets fall back to size 1
	// with a logged warning; a nil Arch treats every offset as unknown.
	Arch cfg.RegisterSizer

	// Functions indexes block addresses to their owning function, enabling
	// per-function subgraph lookups. Optional.
	Functions *cfg.FunctionIndex

	// Logger receives warnings and debug traces. Defaults to log.Default().
	Logger log.Logger
}

// Analysis holds the dependence graphs built from one CFG. It owns its
// graphs and caches exclusively; the CFG and its traces are only read.
type Analysis struct {
	cfg       *cfg.Graph
	callDepth *int
	keepData  bool
	arch      cfg.RegisterSizer
	functions *cfg.FunctionIndex
	logger    log.Logger

	stmtGraph  *graph.Directed[vars.CodeLocation]
	dataGraph  *graph.Directed[vars.ProgramVariable]
	simplified *graph.Directed[vars.ProgramVariable]

	perFunction map[*cfg.Function]*graph.Directed[vars.CodeLocation]
}

// New runs the analysis over the given CFG and returns the populated
// result. It fails up front if the CFG did not retain execution state, and
// during construction only on an internal invariant violation.
func New(g *cfg.Graph, opts Options) (*Analysis, error) {
	if !g.KeepState {
		return nil, fmt.Errorf("dependence analysis: %w", ErrStateNotKept)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	a := &Analysis{
		cfg:       g,
		callDepth: opts.CallDepth,
		keepData:  opts.KeepData,
		arch:      opts.Arch,
		functions: opts.Functions,
		logger:    logger,
		stmtGraph: graph.NewDirected[vars.CodeLocation](),
		dataGraph: graph.NewDirected[vars.ProgramVariable](),
	}

	if err := a.construct(); err != nil {
		return nil, err
	}
	return a, nil
}

// Graph returns the statement dependence graph: nodes are code locations,
// edges mean "a value observed at src is used at dst".
func (a *Analysis) Graph() *graph.Directed[vars.CodeLocation] { return a.stmtGraph }

// DataGraph returns the data dependence graph over program variables.
func (a *Analysis) DataGraph() *graph.Directed[vars.ProgramVariable] { return a.dataGraph }

// SimplifiedDataGraph returns the data graph with all temporary-variable
// nodes spliced out. The result is computed lazily and cached until the
// next data-graph mutation.
func (a *Analysis) SimplifiedDataGraph() *graph.Directed[vars.ProgramVariable] {
	if a.simplified == nil {
		a.simplified = simplifyDataGraph(a.dataGraph)
	}
	return a.simplified
}

// Contains reports whether the code location appears in the statement
// dependence graph.
func (a *Analysis) Contains(loc vars.CodeLocation) bool {
	return a.stmtGraph.HasNode(loc)
}

// Predecessors returns the statement-graph predecessors of a location.
func (a *Analysis) Predecessors(loc vars.CodeLocation) []vars.CodeLocation {
	return a.stmtGraph.Predecessors(loc)
}

func (a *Analysis) depthInBounds(depth int) bool {
	return a.callDepth == nil || (0 <= depth && depth <= *a.callDepth)
}

func (a *Analysis) registerSize(offset uint64) int {
	if a.arch != nil {
		if size, ok := a.arch.RegisterSize(offset); ok {
			return size
		}
	}
	a.logger.Warn("unsupported register offset, assuming size 1", "offset", offset)
	return 1
}

// defLookup resolves the reaching definitions of a variable into one label
// set per defining location. Only registers and memory can carry reaching
// definitions; any other kind is a broken contract.
func (a *Analysis) defLookup(defs LiveDefs, variable vars.Variable) (map[vars.CodeLocation]graph.Labels, error) {
	prev := make(map[vars.CodeLocation]graph.Labels)

	locs, ok := defs[variable]
	if !ok {
		return prev, nil
	}

	var kind string
	switch variable.Kind() {
	case vars.KindMemory:
		kind = TypeMem
	case vars.KindRegister:
		kind = TypeReg
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariable, variable.Kind())
	}

	for loc := range locs {
		if a.keepData {
			prev[loc] = graph.Labels{LabelType: kind, LabelData: variable}
			continue
		}
		count := 0
		if existing, ok := prev[loc]; ok {
			count = existing[LabelCount].(int) + 1
		}
		prev[loc] = graph.Labels{LabelType: kind, LabelCount: count}
	}
	return prev, nil
}

// kill replaces the variable's whole reaching set with the single new
// defining location. No merging happens here, even across overlapping
// approximate addresses.
func kill(defs LiveDefs, variable vars.Variable, loc vars.CodeLocation) {
	defs[variable] = LocationSet{loc: {}}
}

func (a *Analysis) stmtGraphAddEdge(src, dst vars.CodeLocation, labels graph.Labels) {
	a.stmtGraph.AddEdge(src, dst, labels)
}

func (a *Analysis) dataGraphAddNode(n vars.ProgramVariable) {
	a.dataGraph.AddNode(n)
	a.simplified = nil
}

func (a *Analysis) dataGraphAddEdge(src, dst vars.ProgramVariable, labels graph.Labels) {
	if a.dataGraph.AddEdge(src, dst, labels) {
		a.simplified = nil
	}
}

type stmtEdge struct {
	src, dst vars.CodeLocation
}

func (a *Analysis) annotateStmtEdges(edges []stmtEdge, labels graph.Labels) {
	for _, e := range edges {
		a.stmtGraph.Annotate(e.src, e.dst, labels)
	}
}
