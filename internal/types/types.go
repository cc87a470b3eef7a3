package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindBool
	KindInt
	KindFloat
	KindString
	KindTuple
	KindRef
	KindOptional
	KindFunc
	KindMetatype
	KindInOut
	KindBox
	KindUnsafeBuffer
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTuple:
		return "tuple"
	case KindRef:
		return "ref"
	case KindOptional:
		return "optional"
	case KindFunc:
		return "func"
	case KindMetatype:
		return "metatype"
	case KindInOut:
		return "inout"
	case KindBox:
		return "box"
	case KindUnsafeBuffer:
		return "unsafe_buffer"
	case KindOpaque:
		return "opaque"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// FuncRep distinguishes how a function value is represented at runtime.
type FuncRep uint8

const (
	// RepThick is the native closure representation: code pointer plus
	// reference-counted context.
	RepThick FuncRep = iota
	// RepBlock is the foreign block representation: a single heap object
	// with reference semantics, received from interop boundaries.
	RepBlock
)

func (r FuncRep) String() string {
	switch r {
	case RepThick:
		return "thick"
	case RepBlock:
		return "block"
	default:
		return fmt.Sprintf("FuncRep(%d)", r)
	}
}

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind    Kind
	Elem    TypeID // Optional/InOut/Box/Metatype/Ref element
	DynSelf bool   // for metatypes over the dynamic Self type
	Payload uint32 // slot into a per-kind side table (tuple, func, opaque)
}

// Descriptor helpers ---------------------------------------------------------

// MakeRef describes a reference-counted class reference.
func MakeRef(elem TypeID) Type {
	return Type{Kind: KindRef, Elem: elem}
}

// MakeOptional describes an optional wrapper around elem.
func MakeOptional(elem TypeID) Type {
	return Type{Kind: KindOptional, Elem: elem}
}

// MakeInOut describes an in-out parameter slot over elem.
func MakeInOut(elem TypeID) Type {
	return Type{Kind: KindInOut, Elem: elem}
}

// MakeBox describes a heap cell owning a value of elem, used for
// by-reference closure captures.
func MakeBox(elem TypeID) Type {
	return Type{Kind: KindBox, Elem: elem}
}

// MakeMetatype describes a metatype over the instance type. dynSelf marks
// metatypes over the dynamically-derived Self type.
func MakeMetatype(instance TypeID, dynSelf bool) Type {
	return Type{Kind: KindMetatype, Elem: instance, DynSelf: dynSelf}
}
