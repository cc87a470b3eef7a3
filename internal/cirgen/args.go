package cirgen

import (
	"fmt"

	"cinder/internal/cir"
	"cinder/internal/source"
	"cinder/internal/types"
)

// argEmitter destructures one declared parameter type into entry-block
// arguments, depth-first, consuming the function's convention sequence one
// entry per scalar leaf. It reassembles composite values so the result is a
// single managed value per declared parameter.
type argEmitter struct {
	g   *FuncGen
	loc source.Loc

	// functionArgs is true at a real function entry point, where foreign
	// block values must be defensively copied before anything trusts them.
	functionArgs bool
}

func (ae *argEmitter) visit(t types.TypeID) ManagedValue {
	if _, ok := ae.g.Types.TupleInfo(t); ok {
		return ae.visitTuple(t)
	}
	return ae.visitLeaf(t)
}

func (ae *argEmitter) visitLeaf(t types.TypeID) ManagedValue {
	g := ae.g
	p := g.popParamInfo()

	if want := g.Types.EraseDynamicSelf(t); want != p.Type {
		panic(fmt.Errorf("cirgen: argument type disagrees with convention entry: %d vs %d", want, p.Type))
	}

	// In-out leaves materialize as the address of the instance type; every
	// other leaf materializes its lowered type directly.
	argT := g.Types.EraseDynamicSelf(t)
	if inst, ok := g.Types.InOutObject(t); ok {
		argT = inst
	}
	arg := g.B.CreateFuncArg(argT, leafIsAddress(g.Types, t, p), "")
	mv := g.resolveConvention(ae.loc, arg, p)

	// A (possibly optional) foreign block entering the function is copied
	// immediately so later stages may assume sole ownership of a heap
	// object. Optimization may elide the copy; nothing may require it to.
	if ae.functionArgs && g.Types.IsBlockFunc(t) {
		blockCopy := g.B.EmitCopyBlock(ae.loc, mv.Value())
		mv = g.ManagedRValue(ae.loc, blockCopy)
	}
	return mv
}

// leafIsAddress reports whether the raw argument for a leaf arrives as an
// address under its convention.
func leafIsAddress(typesIn *types.Interner, t types.TypeID, p cir.ParamInfo) bool {
	if typesIn.Kind(t) == types.KindInOut {
		return true
	}
	switch p.Convention {
	case cir.ConvIndirectGuaranteed, cir.ConvIndirectOwned, cir.ConvInOut, cir.ConvInOutAliasable:
		return true
	default:
		return false
	}
}

func (ae *argEmitter) visitTuple(t types.TypeID) ManagedValue {
	g := ae.g
	info, ok := g.Types.TupleInfo(t)
	if !ok {
		panic(fmt.Errorf("cirgen: visitTuple on non-tuple"))
	}

	loadable := g.Layout.IsLoadable(t)

	// Collect the exploded elements. One element owning a cleanup forces
	// the whole aggregate to +1.
	canBeGuaranteed := loadable
	elements := make([]ManagedValue, 0, len(info.Elems))
	for _, elemT := range info.Elems {
		elt := ae.visit(elemT)
		if elt.HasCleanup() {
			canBeGuaranteed = false
		}
		elements = append(elements, elt)
	}

	if loadable {
		elemVals := make([]cir.ValueID, 0, len(elements))
		if canBeGuaranteed {
			// Every element is borrowed or trivial: the aggregate is too.
			for _, elt := range elements {
				elemVals = append(elemVals, elt.Value())
			}
			return Unmanaged(g.B.EmitTuple(ae.loc, t, elemVals))
		}
		for _, elt := range elements {
			if elt.HasCleanup() {
				elemVals = append(elemVals, elt.Forward(g))
			} else {
				elemVals = append(elemVals, elt.CopyUnmanaged(g, ae.loc).Forward(g))
			}
		}
		tuple := g.B.EmitTuple(ae.loc, t, elemVals)
		return g.ManagedRValue(ae.loc, tuple)
	}

	// Address-only: move or copy the elements into a stack buffer and own
	// the buffer as a whole.
	buffer := g.EmitTemporary(ae.loc, t)
	for i, elt := range elements {
		elemAddr := g.B.EmitTupleElemAddr(ae.loc, buffer, i, info.Elems[i])
		if elt.HasCleanup() {
			ae.forwardInto(elt, elemAddr)
		} else {
			ae.copyInto(elt, elemAddr)
		}
	}
	return g.ManagedAddr(ae.loc, buffer)
}

// forwardInto moves a +1 element into its slot of the aggregate buffer.
func (ae *argEmitter) forwardInto(elt ManagedValue, dest cir.ValueID) {
	g := ae.g
	v := elt.Forward(g)
	if g.F.IsAddress(v) {
		g.B.EmitCopyAddr(ae.loc, v, dest, true, true)
	} else {
		g.B.EmitStore(ae.loc, v, dest, true)
	}
}

// copyInto copies a borrowed element into its slot without consuming it.
func (ae *argEmitter) copyInto(elt ManagedValue, dest cir.ValueID) {
	g := ae.g
	v := elt.Value()
	if g.F.IsAddress(v) {
		g.B.EmitCopyAddr(ae.loc, v, dest, false, true)
		return
	}
	if g.Layout.IsTrivial(g.F.TypeOf(v)) {
		g.B.EmitStore(ae.loc, v, dest, true)
		return
	}
	copied := g.B.EmitCopyValue(ae.loc, v)
	g.B.EmitStore(ae.loc, copied, dest, true)
}

// makeArgument destructures one declared parameter type at a true function
// entry and yields its reassembled managed value.
func (g *FuncGen) makeArgument(loc source.Loc, t types.TypeID) ManagedValue {
	if t == types.NoTypeID {
		panic(fmt.Errorf("cirgen: parameter with no type"))
	}
	ae := &argEmitter{g: g, loc: loc, functionArgs: true}
	return ae.visit(t)
}
