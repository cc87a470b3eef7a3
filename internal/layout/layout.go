package layout

import (
	"cinder/internal/types"
)

// TypeLayout is the ABI layout of a type for a specific Target.
type TypeLayout struct {
	Size  int
	Align int

	// AddressOnly marks types whose values cannot be held in registers and
	// must live in addressable memory.
	AddressOnly bool

	// Trivial marks types whose values carry no ownership obligation:
	// copying and discarding them needs no reference-count traffic.
	Trivial bool

	// Tuple-only: byte offset of each element.
	ElemOffsets []int
}

// Engine computes memory layout and lowering classification for types.
// It is the single authority other stages consult; answers are cached.
type Engine struct {
	Target Target
	Types  *types.Interner

	cache *cache
}

// New creates a new Engine for the specified target.
func New(target Target, typesIn *types.Interner) *Engine {
	return &Engine{
		Target: target,
		Types:  typesIn,
		cache:  newCache(),
	}
}

// LayoutOf computes and caches the layout of a type.
func (e *Engine) LayoutOf(t types.TypeID) TypeLayout {
	if e == nil {
		return TypeLayout{Size: 0, Align: 1, Trivial: true}
	}
	if e.cache == nil {
		e.cache = newCache()
	}
	if cached, ok := e.cache.get(t); ok {
		return cached
	}
	l := e.computeLayout(t)
	e.cache.put(t, l)
	return l
}

// SizeOf returns the size of a type in bytes.
func (e *Engine) SizeOf(t types.TypeID) int {
	return e.LayoutOf(t).Size
}

// AlignOf returns the alignment requirement of a type in bytes.
func (e *Engine) AlignOf(t types.TypeID) int {
	return e.LayoutOf(t).Align
}

// IsLoadable reports whether values of t fit the register representation.
func (e *Engine) IsLoadable(t types.TypeID) bool {
	return !e.LayoutOf(t).AddressOnly
}

// IsAddressOnly reports whether values of t must live in addressable memory.
func (e *Engine) IsAddressOnly(t types.TypeID) bool {
	return e.LayoutOf(t).AddressOnly
}

// IsTrivial reports whether values of t carry no ownership obligation.
func (e *Engine) IsTrivial(t types.TypeID) bool {
	return e.LayoutOf(t).Trivial
}

// IsReturnedIndirectly reports whether values of t are returned through a
// caller-supplied output address rather than in registers.
func (e *Engine) IsReturnedIndirectly(t types.TypeID) bool {
	l := e.LayoutOf(t)
	return l.AddressOnly || l.Size > e.Target.MaxDirectBytes
}

// ElemOffset returns the byte offset of a tuple element.
func (e *Engine) ElemOffset(tupleT types.TypeID, idx int) int {
	l := e.LayoutOf(tupleT)
	if idx < 0 || idx >= len(l.ElemOffsets) {
		return 0
	}
	return l.ElemOffsets[idx]
}
