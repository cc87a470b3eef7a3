package cirgen

import (
	"fmt"

	"cinder/internal/cir"
	"cinder/internal/decl"
	"cinder/internal/source"
	"cinder/internal/types"
)

// EmitSelfParam binds the implicit receiver argument ahead of the main
// prologue. The receiver is always argument one; EmitProlog continues the
// numbering from there.
func (g *FuncGen) EmitSelfParam(p *decl.ParamDecl) cir.ValueID {
	loc := source.LocOf(p.Var.Span).AsPrologue()
	selfV := g.B.CreateFuncArg(p.Type, g.Layout.IsAddressOnly(p.Type), p.Var.Name)
	g.bindVar(p.Var, VarLoc{Value: selfV})
	g.ArgNo = 1
	g.B.EmitDebugValue(loc, selfV, p.Var.Name, g.ArgNo)
	return selfV
}

// EmitProlog materializes the function's entry block in the fixed protocol
// order: indirect results, explicit parameters (clauses innermost first),
// captures, then the error slot for throwing functions. It returns the
// running ordinal count so composed prologues keep numbering contiguous.
func (g *FuncGen) EmitProlog(fd *decl.FuncDecl) int {
	loc := source.LocOf(fd.Span).AsPrologue()

	// Phase 1: hidden output addresses for indirectly-returned result
	// leaves, ahead of everything explicit.
	g.emitIndirectResults(fd.Result)

	// Phase 2: explicit parameters. Clauses are processed innermost to
	// outermost, matching the curried convention layout where the
	// outermost application is bound last; within a clause, declaration
	// order holds.
	for i := len(fd.Lists) - 1; i >= 0; i-- {
		list := &fd.Lists[i]
		for pi := range list.Params {
			g.emitParam(loc, &list.Params[pi])
		}
	}
	g.assertParamsConsumed()

	// Phase 3: captures, in stable capture-list order.
	for _, c := range fd.Captures {
		if c.DynamicSelfMetadata {
			// The enclosing context's dynamic Self metadata is bound as a
			// bare argument and ends capture processing for this function.
			// No further capture records are read.
			selfT := g.Types.RegisterOpaque("Self", 0)
			metaT := g.Types.Intern(types.MakeMetatype(selfT, false))
			g.B.CreateFuncArg(metaT, false, "")
			break
		}
		g.ArgNo++
		g.emitCaptureArgs(fd, c, g.ArgNo)
	}

	// Phase 4: the $error slot for throwing functions. A debug-observable
	// placeholder only; no real argument is materialized.
	if fd.Throws {
		g.ArgNo++
		g.ErrorSlot = g.ArgNo
		g.B.EmitDebugValue(loc.AsAutoGenerated(), cir.NoValueID, "$error", g.ArgNo)
	}

	return g.ArgNo
}

func (g *FuncGen) emitParam(protoLoc source.Loc, p *decl.ParamDecl) {
	g.ArgNo++
	if p.Named() {
		g.bindParamValue(p)
		return
	}
	g.emitAnonymousParam(protoLoc, p.Type, true)
}

// bindParamValue materializes a named parameter's arguments and records the
// variable's location.
func (g *FuncGen) bindParamValue(p *decl.ParamDecl) {
	v := p.Var
	loc := source.LocOf(v.Span).AsPrologue()

	argrv := g.makeArgument(loc, p.Type)

	if inst, ok := g.Types.InOutObject(p.Type); ok {
		addr := argrv.Value()
		// A non-copyable low-level buffer has no shadow cell: the address
		// binds directly.
		if g.Types.Kind(inst) == types.KindUnsafeBuffer {
			g.bindVar(v, VarLoc{Value: addr})
			g.B.EmitDebugValue(loc, addr, v.Name, g.ArgNo)
			return
		}
		if !g.F.IsAddress(addr) {
			panic(fmt.Errorf("cirgen: in-out argument %q is not an address", v.Name))
		}
		// Shadow copies for closure capture are a capture-time concern,
		// not a binding-time one; nothing further happens here.
	} else if tt, found := g.Types.Lookup(p.Type); found && tt.Kind == types.KindMetatype && tt.DynSelf {
		// The raw argument carries the erased static metatype; rebind at
		// the dynamic Self representation the body expects.
		if g.F.TypeOf(argrv.Value()) != p.Type {
			argrv = Unmanaged(g.B.EmitBitcast(loc, argrv.Value(), p.Type))
		}
	}
	// Any cleanup on the argument stays in place: the function consumes
	// the value if the convention made it responsible for it.

	g.bindVar(v, VarLoc{Value: argrv.Value()})
	g.B.EmitDebugValue(loc, argrv.Value(), v.Name, g.ArgNo)
}

// emitAnonymousParam materializes an unnamed parameter purely to keep the
// convention shape: the value is produced inside a discard scope and
// released immediately. Non-materializable tuples split into independently
// discarded leaves.
func (g *FuncGen) emitAnonymousParam(loc source.Loc, t types.TypeID, top bool) {
	if !isMaterializable(g.Types, t) {
		if info, ok := g.Types.TupleInfo(t); ok {
			for _, elemT := range info.Elems {
				g.emitAnonymousParam(loc, elemT, false)
			}
			return
		}
	}

	scope := g.OpenScope()
	defer scope.Close(loc)

	argrv := g.makeArgument(loc, t)

	// Only the declared parameter itself gets a debug marker; split-off
	// tuple leaves are anonymous all the way down.
	if !top {
		return
	}
	g.B.EmitDebugValue(loc, argrv.Value(), "_", g.ArgNo)
}

// isMaterializable reports whether values of t can exist as a single
// materialized value. In-out slots cannot, and a tuple containing one
// cannot either.
func isMaterializable(typesIn *types.Interner, t types.TypeID) bool {
	if typesIn.Kind(t) == types.KindInOut {
		return false
	}
	if info, ok := typesIn.TupleInfo(t); ok {
		for _, elemT := range info.Elems {
			if !isMaterializable(typesIn, elemT) {
				return false
			}
		}
	}
	return true
}
