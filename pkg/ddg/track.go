package ddg

import (
	"github.com/l3aro/go-trace-deps/pkg/cfg"
	"github.com/l3aro/go-trace-deps/pkg/graph"
	"github.com/l3aro/go-trace-deps/pkg/vars"
)

// track scans one final state's action trace against the definitions
// entering the node, returns the definitions leaving it, and inserts the
// resulting edges into the statement and data graphs as a side effect.
func (a *Analysis) track(state *cfg.FinalState, liveDefs LiveDefs) (LiveDefs, error) {
	defs := liveDefs.clone()

	// Temporaries are scoped to this one trace.
	tempDefs := make(map[int]vars.CodeLocation)
	tempVars := make(map[int]vars.ProgramVariable)

	// Edges already inserted this trace, indexed so later events can
	// retroactively annotate them (a memory access whose address depends
	// on register R annotates the edge that recorded R's last read).
	tempsToEdges := make(map[int][]stmtEdge)
	regsToEdges := make(map[uint64][]stmtEdge)

	// Program variables read during the current statement; the next
	// temporary write in the same statement consumes them.
	var dataRead []vars.ProgramVariable
	haveStmt := false
	lastStmt := 0

	for i := range state.Actions {
		act := &state.Actions[i]

		if !haveStmt || lastStmt != act.StmtIdx {
			dataRead = nil
			haveStmt = true
			lastStmt = act.StmtIdx
		}

		var cur vars.CodeLocation
		if act.Procedure != "" {
			cur = vars.CodeLocation{Procedure: act.Procedure}
		} else {
			cur = vars.CodeLocation{BlockAddr: act.BlockAddr, StmtIdx: act.StmtIdx, InsAddr: act.InsAddr}
		}

		switch act.Kind {
		case cfg.ActionMem:
			read, err := a.trackMem(act, cur, defs, tempVars, tempsToEdges, regsToEdges)
			if err != nil {
				return nil, err
			}
			dataRead = append(dataRead, read...)

		case cfg.ActionReg:
			read, err := a.trackReg(act, cur, defs, tempVars, regsToEdges)
			if err != nil {
				return nil, err
			}
			dataRead = append(dataRead, read...)

		case cfg.ActionTmp:
			pv := vars.ProgramVariable{Variable: vars.TemporaryVariable{ID: act.Tmp}, Location: cur}
			if act.Op == cfg.OpRead {
				prevLoc, ok := tempDefs[act.Tmp]
				if !ok {
					a.logger.Debug("temporary read without in-block definition", "tmp", act.Tmp)
					continue
				}
				a.stmtGraphAddEdge(prevLoc, cur, graph.Labels{LabelType: TypeTmp, LabelData: act.Tmp})
				tempsToEdges[act.Tmp] = append(tempsToEdges[act.Tmp], stmtEdge{prevLoc, cur})
			} else {
				tempDefs[act.Tmp] = cur
				tempVars[act.Tmp] = pv
				// Annotation indices for the previous value are stale now.
				delete(tempsToEdges, act.Tmp)

				for _, dep := range act.TmpDeps {
					if tv, ok := tempVars[dep]; ok {
						a.dataGraphAddEdge(tv, pv, graph.Labels{})
					}
				}
				for _, read := range dataRead {
					a.dataGraphAddEdge(read, pv, graph.Labels{})
				}
			}

		case cfg.ActionExit:
			// Exits only ever depend on temporaries.
			for _, tmp := range act.TmpDeps {
				prevLoc, ok := tempDefs[tmp]
				if !ok {
					a.logger.Debug("exit depends on undefined temporary", "tmp", tmp)
					continue
				}
				a.stmtGraphAddEdge(prevLoc, cur, graph.Labels{LabelType: TypeExit, LabelData: TypeTmp})
				tempsToEdges[tmp] = append(tempsToEdges[tmp], stmtEdge{prevLoc, cur})
			}
		}
	}

	return defs, nil
}

// trackMem handles one memory action: resolve the concrete address set
// (falling back to the sentinel for symbolic addresses), wire reaching
// definitions on reads, kill on writes, and attribute the address and data
// dependencies of the access on both graphs.
func (a *Analysis) trackMem(
	act *cfg.Action,
	cur vars.CodeLocation,
	defs LiveDefs,
	tempVars map[int]vars.ProgramVariable,
	tempsToEdges map[int][]stmtEdge,
	regsToEdges map[uint64][]stmtEdge,
) ([]vars.ProgramVariable, error) {
	var addrs []uint64
	switch {
	case act.ActualAddrs != nil:
		addrs = act.ActualAddrs
	case !act.Addr.Value.Symbolic:
		addrs = []uint64{act.Addr.Value.Concrete}
	default:
		addrs = []uint64{vars.SentinelAddr}
	}

	var read []vars.ProgramVariable

	for _, addr := range addrs {
		variable := vars.MemoryVariable{Addr: addr, Size: act.Data.Size}
		pv := vars.ProgramVariable{Variable: variable, Location: cur}

		if act.Op == cfg.OpRead {
			prevDefs, err := a.defLookup(defs, variable)
			if err != nil {
				return nil, err
			}
			for prevLoc, labels := range prevDefs {
				a.stmtGraphAddEdge(prevLoc, cur, labels)
			}
			read = append(read, pv)
		} else {
			kill(defs, variable, cur)
		}

		if err := a.linkMemDeps(act.Addr, pv, TypeMemAddr, defs, tempVars, tempsToEdges, regsToEdges); err != nil {
			return nil, err
		}
		if err := a.linkMemDeps(act.Data, pv, TypeMemData, defs, tempVars, tempsToEdges, regsToEdges); err != nil {
			return nil, err
		}
	}

	return read, nil
}

// linkMemDeps attributes one operand's register and temporary dependencies
// to a memory program variable: statement-graph edges recorded for those
// registers/temporaries earlier in the trace get a subtype annotation, and
// the data graph gets an edge from each dependency's current definition.
func (a *Analysis) linkMemDeps(
	op cfg.Operand,
	pv vars.ProgramVariable,
	depType string,
	defs LiveDefs,
	tempVars map[int]vars.ProgramVariable,
	tempsToEdges map[int][]stmtEdge,
	regsToEdges map[uint64][]stmtEdge,
) error {
	for _, regOffset := range op.RegDeps {
		a.annotateStmtEdges(regsToEdges[regOffset], graph.Labels{LabelSubtype: depType})

		regVar := vars.RegisterVariable{Offset: regOffset, Size: a.registerSize(regOffset)}
		prevDefs, err := a.defLookup(defs, regVar)
		if err != nil {
			return err
		}
		for loc := range prevDefs {
			src := vars.ProgramVariable{Variable: regVar, Location: loc}
			a.dataGraphAddEdge(src, pv, graph.Labels{LabelType: depType})
		}
	}

	for _, tmp := range op.TmpDeps {
		a.annotateStmtEdges(tempsToEdges[tmp], graph.Labels{LabelSubtype: depType})
		if tv, ok := tempVars[tmp]; ok {
			a.dataGraphAddEdge(tv, pv, graph.Labels{LabelType: depType})
		}
	}
	return nil
}

// trackReg handles one register action. Reads wire reaching definitions
// into the statement graph and record the register as an implicit input
// when it was never defined; writes kill the live definition and link the
// new value's sources on the data graph.
func (a *Analysis) trackReg(
	act *cfg.Action,
	cur vars.CodeLocation,
	defs LiveDefs,
	tempVars map[int]vars.ProgramVariable,
	regsToEdges map[uint64][]stmtEdge,
) ([]vars.ProgramVariable, error) {
	variable := vars.RegisterVariable{Offset: act.RegOffset, Size: act.Data.Size}

	if act.Op == cfg.OpRead {
		prevDefs, err := a.defLookup(defs, variable)
		if err != nil {
			return nil, err
		}

		var read []vars.ProgramVariable
		for prevLoc, labels := range prevDefs {
			a.stmtGraphAddEdge(prevLoc, cur, labels)
			regsToEdges[act.RegOffset] = append(regsToEdges[act.RegOffset], stmtEdge{prevLoc, cur})
			read = append(read, vars.ProgramVariable{Variable: variable, Location: prevLoc})
		}
		if len(prevDefs) == 0 {
			// Never defined in the analysis window: the value arrived from
			// outside, anchor it at the read site.
			read = append(read, vars.ProgramVariable{Variable: variable, Location: cur})
		}
		return read, nil
	}

	kill(defs, variable, cur)
	delete(regsToEdges, act.RegOffset)

	pv := vars.ProgramVariable{Variable: variable, Location: cur}
	a.dataGraphAddNode(pv)

	if len(act.RegDeps) == 0 && len(act.TmpDeps) == 0 {
		// Load immediate: the value has no source but the constant pool.
		constPV := vars.ProgramVariable{Variable: vars.ConstantVariable{}, Location: cur}
		a.dataGraphAddEdge(constPV, pv, graph.Labels{})
	}
	for _, tmp := range act.TmpDeps {
		if tv, ok := tempVars[tmp]; ok {
			a.dataGraphAddEdge(tv, pv, graph.Labels{})
		}
	}
	return nil, nil
}
