package cfg

// Function is a function identity known to the function-index
// collaborator, with the start addresses of its member blocks.
type Function struct {
	Name   string
	Addr   uint64
	Blocks []uint64
}

// FunctionIndex maps block start addresses to their owning function. It is
// built once from whatever function-boundary detection produced the CFG.
type FunctionIndex struct {
	funcs   []*Function
	byBlock map[uint64]*Function
}

// NewFunctionIndex builds an index over the given functions. A block
// claimed by more than one function keeps the first owner.
func NewFunctionIndex(funcs []*Function) *FunctionIndex {
	idx := &FunctionIndex{
		funcs:   funcs,
		byBlock: make(map[uint64]*Function),
	}
	for _, f := range funcs {
		for _, block := range f.Blocks {
			if _, ok := idx.byBlock[block]; !ok {
				idx.byBlock[block] = f
			}
		}
	}
	return idx
}

// OwnerOf returns the function owning the block at the given address.
func (idx *FunctionIndex) OwnerOf(blockAddr uint64) (*Function, bool) {
	f, ok := idx.byBlock[blockAddr]
	return f, ok
}

// Functions returns all known functions.
func (idx *FunctionIndex) Functions() []*Function { return idx.funcs }
