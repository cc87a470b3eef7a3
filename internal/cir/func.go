package cir

import (
	"fmt"

	"fortio.org/safecast"

	"cinder/internal/source"
	"cinder/internal/types"
)

// FuncID identifies a function within a module.
type FuncID uint32

// BlockID identifies a block within a function.
type BlockID uint32

// NoBlockID marks an invalid block.
const NoBlockID BlockID = ^BlockID(0)

// ValueID identifies an SSA value within a function. Entry-block arguments
// and instruction results are values.
type ValueID uint32

// NoValueID marks the absence of a value.
const NoValueID ValueID = 0

// ValueInfo records the static facts of one SSA value.
type ValueInfo struct {
	Type types.TypeID
	Addr bool // the value is an address, not a loadable value
	Name string
}

// Func is one function under construction. Its entry block accumulates
// arguments and prologue instructions in emission order.
type Func struct {
	ID   FuncID
	Name string
	Span source.Span

	// Params is the lowered parameter-convention sequence: one entry per
	// flattened scalar leaf, consumed front to back during prologue
	// generation.
	Params []ParamInfo

	Result types.TypeID
	Throws bool

	Blocks []Block
	Entry  BlockID

	vals []ValueInfo
}

// Block is a basic block: ordered arguments followed by instructions.
type Block struct {
	ID     BlockID
	Args   []ValueID
	Instrs []Instr
}

// NewFunc creates a function with an empty entry block.
func NewFunc(id FuncID, name string, result types.TypeID, throws bool) *Func {
	f := &Func{
		ID:     id,
		Name:   name,
		Result: result,
		Throws: throws,
	}
	f.Entry = f.addBlock()
	return f
}

func (f *Func) addBlock() BlockID {
	n, err := safecast.Conv[uint32](len(f.Blocks))
	if err != nil {
		panic(fmt.Errorf("cir: block id overflow: %w", err))
	}
	id := BlockID(n)
	f.Blocks = append(f.Blocks, Block{ID: id})
	return id
}

// EntryBlock returns the function's entry block.
func (f *Func) EntryBlock() *Block {
	return &f.Blocks[f.Entry]
}

func (f *Func) newValue(info ValueInfo) ValueID {
	f.vals = append(f.vals, info)
	n, err := safecast.Conv[uint32](len(f.vals))
	if err != nil {
		panic(fmt.Errorf("cir: value id overflow: %w", err))
	}
	return ValueID(n)
}

// ValueInfo returns the record for a value, or false for NoValueID and
// out-of-range IDs.
func (f *Func) ValueInfo(v ValueID) (ValueInfo, bool) {
	if v == NoValueID || int(v) > len(f.vals) {
		return ValueInfo{}, false
	}
	return f.vals[v-1], true
}

// TypeOf returns the type of a value, or NoTypeID for invalid IDs.
func (f *Func) TypeOf(v ValueID) types.TypeID {
	info, ok := f.ValueInfo(v)
	if !ok {
		return types.NoTypeID
	}
	return info.Type
}

// IsAddress reports whether a value is an address.
func (f *Func) IsAddress(v ValueID) bool {
	info, ok := f.ValueInfo(v)
	return ok && info.Addr
}

// NumValues returns how many values the function has materialized.
func (f *Func) NumValues() int {
	return len(f.vals)
}
