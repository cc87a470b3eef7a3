package cir

import (
	"cinder/internal/source"
	"cinder/internal/types"
)

// Builder is the append-only emission authority for one function. It
// creates entry-block arguments and appends instructions; it never rewrites
// what it has already emitted.
type Builder struct {
	F *Func

	block BlockID
}

// NewBuilder returns a builder positioned at the function's entry block.
func NewBuilder(f *Func) *Builder {
	return &Builder{F: f, block: f.Entry}
}

func (b *Builder) append(in Instr) {
	blk := &b.F.Blocks[b.block]
	blk.Instrs = append(blk.Instrs, in)
}

// CreateFuncArg materializes a new entry-block argument of the given type.
// Addr marks arguments that arrive as addresses (indirect and in-out
// conventions). Name is for diagnostics only.
func (b *Builder) CreateFuncArg(t types.TypeID, addr bool, name string) ValueID {
	v := b.F.newValue(ValueInfo{Type: t, Addr: addr, Name: name})
	blk := &b.F.Blocks[b.block]
	blk.Args = append(blk.Args, v)
	return v
}

// EmitRetain increments the reference count of val.
func (b *Builder) EmitRetain(loc source.Loc, val ValueID) {
	b.append(Instr{Kind: InstrRetain, Loc: loc, Retain: RetainInstr{Val: val}})
}

// EmitRelease decrements the reference count of val.
func (b *Builder) EmitRelease(loc source.Loc, val ValueID) {
	b.append(Instr{Kind: InstrRelease, Loc: loc, Release: ReleaseInstr{Val: val}})
}

// EmitDestroyAddr releases the value stored at addr.
func (b *Builder) EmitDestroyAddr(loc source.Loc, addr ValueID) {
	b.append(Instr{Kind: InstrDestroyAddr, Loc: loc, DestroyAddr: DestroyAddrInstr{Addr: addr}})
}

// EmitCopyValue copies src into a fresh value and returns it.
func (b *Builder) EmitCopyValue(loc source.Loc, src ValueID) ValueID {
	dst := b.F.newValue(ValueInfo{Type: b.F.TypeOf(src)})
	b.append(Instr{Kind: InstrCopyValue, Loc: loc, CopyValue: CopyValueInstr{Dst: dst, Src: src}})
	return dst
}

// EmitCopyBlock copies the foreign block src onto the heap.
func (b *Builder) EmitCopyBlock(loc source.Loc, src ValueID) ValueID {
	dst := b.F.newValue(ValueInfo{Type: b.F.TypeOf(src)})
	b.append(Instr{Kind: InstrCopyBlock, Loc: loc, CopyBlock: CopyBlockInstr{Dst: dst, Src: src}})
	return dst
}

// EmitStore writes src to addr. init marks an initializing store.
func (b *Builder) EmitStore(loc source.Loc, src, addr ValueID, init bool) {
	b.append(Instr{Kind: InstrStore, Loc: loc, Store: StoreInstr{Src: src, Addr: addr, Init: init}})
}

// EmitCopyAddr copies the value at src to dst.
func (b *Builder) EmitCopyAddr(loc source.Loc, src, dst ValueID, take, init bool) {
	b.append(Instr{Kind: InstrCopyAddr, Loc: loc, CopyAddr: CopyAddrInstr{Src: src, Dst: dst, Take: take, Init: init}})
}

// EmitAllocStack reserves a stack slot for t and returns its address.
func (b *Builder) EmitAllocStack(loc source.Loc, t types.TypeID, argNo int) ValueID {
	dst := b.F.newValue(ValueInfo{Type: t, Addr: true})
	b.append(Instr{Kind: InstrAllocStack, Loc: loc, AllocStack: AllocStackInstr{Dst: dst, Type: t, ArgNo: argNo}})
	return dst
}

// EmitDeallocStack releases the slot at addr.
func (b *Builder) EmitDeallocStack(loc source.Loc, addr ValueID) {
	b.append(Instr{Kind: InstrDeallocStack, Loc: loc, DeallocStack: DeallocStackInstr{Addr: addr}})
}

// EmitTuple aggregates elems into a tuple value of type t.
func (b *Builder) EmitTuple(loc source.Loc, t types.TypeID, elems []ValueID) ValueID {
	dst := b.F.newValue(ValueInfo{Type: t})
	b.append(Instr{Kind: InstrTuple, Loc: loc, Tuple: TupleInstr{Dst: dst, Type: t, Elems: elems}})
	return dst
}

// EmitTupleElemAddr projects the address of element idx of the tuple at addr.
func (b *Builder) EmitTupleElemAddr(loc source.Loc, addr ValueID, idx int, elemT types.TypeID) ValueID {
	dst := b.F.newValue(ValueInfo{Type: elemT, Addr: true})
	b.append(Instr{Kind: InstrTupleElemAddr, Loc: loc, TupleElemAddr: TupleElemAddrInstr{Dst: dst, Addr: addr, Index: idx}})
	return dst
}

// EmitProjectBox projects the storage address inside the heap cell box.
func (b *Builder) EmitProjectBox(loc source.Loc, box ValueID, elemT types.TypeID) ValueID {
	dst := b.F.newValue(ValueInfo{Type: elemT, Addr: true})
	b.append(Instr{Kind: InstrProjectBox, Loc: loc, ProjectBox: ProjectBoxInstr{Dst: dst, Box: box}})
	return dst
}

// EmitBitcast reinterprets src at type t.
func (b *Builder) EmitBitcast(loc source.Loc, src ValueID, t types.TypeID) ValueID {
	dst := b.F.newValue(ValueInfo{Type: t, Addr: b.F.IsAddress(src)})
	b.append(Instr{Kind: InstrBitcast, Loc: loc, Bitcast: BitcastInstr{Dst: dst, Src: src, Type: t}})
	return dst
}

// EmitDebugValue names val for debug info.
func (b *Builder) EmitDebugValue(loc source.Loc, val ValueID, name string, argNo int) {
	b.append(Instr{
		Kind:       InstrDebugValue,
		Loc:        loc,
		DebugValue: DebugValueInstr{Val: val, Name: name, ArgNo: argNo, Addr: b.F.IsAddress(val)},
	})
}
