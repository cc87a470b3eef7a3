package cir

import (
	"fmt"

	"cinder/internal/source"
	"cinder/internal/types"
)

// InstrKind enumerates instruction kinds in CIR.
type InstrKind uint8

const (
	// InstrRetain increments the reference count of a loadable value.
	InstrRetain InstrKind = iota
	// InstrRelease decrements the reference count of a loadable value.
	InstrRelease
	// InstrDestroyAddr releases the value stored at an address.
	InstrDestroyAddr
	// InstrCopyValue produces an independently-owned copy of a value.
	InstrCopyValue
	// InstrCopyBlock copies a foreign block object onto the heap.
	InstrCopyBlock
	// InstrStore writes a loadable value to an address.
	InstrStore
	// InstrCopyAddr copies between addresses with take/init qualifiers.
	InstrCopyAddr
	// InstrAllocStack reserves a stack slot and yields its address.
	InstrAllocStack
	// InstrDeallocStack releases a stack slot.
	InstrDeallocStack
	// InstrTuple aggregates loadable element values.
	InstrTuple
	// InstrTupleElemAddr projects the address of one tuple element.
	InstrTupleElemAddr
	// InstrProjectBox projects the storage address inside a heap cell.
	InstrProjectBox
	// InstrBitcast reinterprets a value as another representation.
	InstrBitcast
	// InstrDebugValue attaches a debug-observable name to a value.
	InstrDebugValue
)

func (k InstrKind) String() string {
	switch k {
	case InstrRetain:
		return "retain"
	case InstrRelease:
		return "release"
	case InstrDestroyAddr:
		return "destroy_addr"
	case InstrCopyValue:
		return "copy_value"
	case InstrCopyBlock:
		return "copy_block"
	case InstrStore:
		return "store"
	case InstrCopyAddr:
		return "copy_addr"
	case InstrAllocStack:
		return "alloc_stack"
	case InstrDeallocStack:
		return "dealloc_stack"
	case InstrTuple:
		return "tuple"
	case InstrTupleElemAddr:
		return "tuple_elem_addr"
	case InstrProjectBox:
		return "project_box"
	case InstrBitcast:
		return "bitcast"
	case InstrDebugValue:
		return "debug_value"
	default:
		return fmt.Sprintf("InstrKind(%d)", k)
	}
}

// Instr is one CIR instruction: a kind plus its payload.
type Instr struct {
	Kind InstrKind
	Loc  source.Loc

	Retain        RetainInstr
	Release       ReleaseInstr
	DestroyAddr   DestroyAddrInstr
	CopyValue     CopyValueInstr
	CopyBlock     CopyBlockInstr
	Store         StoreInstr
	CopyAddr      CopyAddrInstr
	AllocStack    AllocStackInstr
	DeallocStack  DeallocStackInstr
	Tuple         TupleInstr
	TupleElemAddr TupleElemAddrInstr
	ProjectBox    ProjectBoxInstr
	Bitcast       BitcastInstr
	DebugValue    DebugValueInstr
}

// RetainInstr increments the reference count of Val.
type RetainInstr struct {
	Val ValueID
}

// ReleaseInstr decrements the reference count of Val.
type ReleaseInstr struct {
	Val ValueID
}

// DestroyAddrInstr releases whatever is stored at Addr.
type DestroyAddrInstr struct {
	Addr ValueID
}

// CopyValueInstr copies Src into the new value Dst.
type CopyValueInstr struct {
	Dst ValueID
	Src ValueID
}

// CopyBlockInstr copies the foreign block Src onto the heap as Dst.
type CopyBlockInstr struct {
	Dst ValueID
	Src ValueID
}

// StoreInstr writes Src to Addr.
type StoreInstr struct {
	Src  ValueID
	Addr ValueID
	Init bool // initializing store, not an assignment over a live value
}

// CopyAddrInstr copies the value at Src to Dst. Take consumes the source;
// Init treats the destination as uninitialized.
type CopyAddrInstr struct {
	Src  ValueID
	Dst  ValueID
	Take bool
	Init bool
}

// AllocStackInstr reserves a stack slot for Type; Dst is its address.
type AllocStackInstr struct {
	Dst   ValueID
	Type  types.TypeID
	ArgNo int // debug: ordinal of the variable the slot shadows, 0 if none
}

// DeallocStackInstr releases the slot at Addr.
type DeallocStackInstr struct {
	Addr ValueID
}

// TupleInstr aggregates Elems into the tuple value Dst.
type TupleInstr struct {
	Dst   ValueID
	Type  types.TypeID
	Elems []ValueID
}

// TupleElemAddrInstr projects element Index of the tuple at Addr.
type TupleElemAddrInstr struct {
	Dst   ValueID
	Addr  ValueID
	Index int
}

// ProjectBoxInstr projects the storage address inside the heap cell Box.
type ProjectBoxInstr struct {
	Dst ValueID
	Box ValueID
}

// BitcastInstr reinterprets Src at Type without changing its bits.
type BitcastInstr struct {
	Dst  ValueID
	Src  ValueID
	Type types.TypeID
}

// DebugValueInstr names Val for debug info; no runtime effect. Addr marks
// address-carrying values.
type DebugValueInstr struct {
	Val   ValueID
	Name  string
	ArgNo int
	Addr  bool
}
