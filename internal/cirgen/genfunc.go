package cirgen

import (
	"fmt"

	"cinder/internal/cir"
	"cinder/internal/decl"
	"cinder/internal/layout"
	"cinder/internal/source"
	"cinder/internal/types"
)

// VarLoc is the IR location of one declared variable: a plain value, an
// address, or an address paired with the heap cell that owns it.
type VarLoc struct {
	Value cir.ValueID

	// Box is the owning cell when the variable's storage lives inside a
	// by-reference capture cell. Kept for release, not ownership transfer.
	Box cir.ValueID
}

// FuncGen is the per-function generation context: the function under
// construction, its builder, its variable-location table, and its cleanup
// stack. It lives for one function's IR generation and is discarded at the
// end; every prologue routine threads it explicitly.
type FuncGen struct {
	Types  *types.Interner
	Layout *layout.Engine
	F      *cir.Func
	B      *cir.Builder

	// VarLocs maps declared variables to their IR locations. Entries are
	// insert-once per function activation.
	VarLocs map[decl.VarID]VarLoc

	Cleanups *CleanupStack

	// ArgNo is the running argument ordinal, shared across composed
	// prologues so numbering stays contiguous. Indirect results are not
	// counted.
	ArgNo int

	// ErrorSlot is the ordinal recorded for the synthetic $error marker of
	// throwing functions, 0 when absent.
	ErrorSlot int

	// params is the lowered convention sequence, consumed front to back,
	// one entry per flattened scalar leaf.
	params []cir.ParamInfo
}

// NewFuncGen creates the generation context for one function. The
// function's lowered parameter sequence seeds the consumption queue.
func NewFuncGen(typesIn *types.Interner, eng *layout.Engine, f *cir.Func) *FuncGen {
	return &FuncGen{
		Types:    typesIn,
		Layout:   eng,
		F:        f,
		B:        cir.NewBuilder(f),
		VarLocs:  make(map[decl.VarID]VarLoc, 8),
		Cleanups: &CleanupStack{},
		params:   f.Params,
	}
}

func (g *FuncGen) popParamInfo() cir.ParamInfo {
	if len(g.params) == 0 {
		panic(fmt.Errorf("cirgen: parameter leaf with no matching convention entry"))
	}
	p := g.params[0]
	g.params = g.params[1:]
	return p
}

func (g *FuncGen) assertParamsConsumed() {
	if len(g.params) != 0 {
		panic(fmt.Errorf("cirgen: %d convention entries left after binding all parameter leaves", len(g.params)))
	}
}

// bindVar records a variable's IR location. Binding the same variable twice
// within one activation is an internal invariant violation.
func (g *FuncGen) bindVar(v *decl.VarDecl, loc VarLoc) {
	if _, dup := g.VarLocs[v.ID]; dup {
		panic(fmt.Errorf("cirgen: variable %q bound twice", v.Name))
	}
	g.VarLocs[v.ID] = loc
}

// ManagedRValue attaches a release obligation to a loadable value. Trivial
// values need none and come back unmanaged.
func (g *FuncGen) ManagedRValue(loc source.Loc, v cir.ValueID) ManagedValue {
	if g.Layout.IsTrivial(g.F.TypeOf(v)) {
		return Unmanaged(v)
	}
	h := g.Cleanups.Register(Cleanup{Kind: CleanupReleaseValue, Loc: loc, Val: v})
	return Managed(v, h)
}

// ManagedAddr attaches a destroy obligation to an owned address.
func (g *FuncGen) ManagedAddr(loc source.Loc, addr cir.ValueID) ManagedValue {
	if g.Layout.IsTrivial(g.F.TypeOf(addr)) {
		return Unmanaged(addr)
	}
	h := g.Cleanups.Register(Cleanup{Kind: CleanupDestroyAddr, Loc: loc, Val: addr})
	return Managed(addr, h)
}

// ManagedRetain retains a +0 value the caller does not keep alive and
// attaches the matching release.
func (g *FuncGen) ManagedRetain(loc source.Loc, v cir.ValueID) ManagedValue {
	if g.Layout.IsTrivial(g.F.TypeOf(v)) {
		return Unmanaged(v)
	}
	g.B.EmitRetain(loc, v)
	return g.ManagedRValue(loc, v)
}

// EmitTemporary allocates a stack slot and registers its deallocation. The
// dealloc is registered before any destroy so a scope pop destroys contents
// first, then frees the slot.
func (g *FuncGen) EmitTemporary(loc source.Loc, t types.TypeID) cir.ValueID {
	return g.emitTemporary(loc, t, 0)
}

func (g *FuncGen) emitTemporary(loc source.Loc, t types.TypeID, argNo int) cir.ValueID {
	addr := g.B.EmitAllocStack(loc, t, argNo)
	g.Cleanups.Register(Cleanup{Kind: CleanupDeallocStack, Loc: loc, Val: addr})
	return addr
}
