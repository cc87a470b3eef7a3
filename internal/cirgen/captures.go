package cirgen

import (
	"fmt"

	"cinder/internal/cir"
	"cinder/internal/decl"
	"cinder/internal/source"
	"cinder/internal/types"
)

// emitCaptureArgs materializes one captured variable per its capture kind
// and binds it into the variable table, registering release obligations
// where the closure owns the incoming storage.
func (g *FuncGen) emitCaptureArgs(fd *decl.FuncDecl, c decl.CapturedValue, argNo int) {
	v := c.Var
	loc := source.LocOf(v.Span).AsPrologue()

	switch c.Kind {
	case decl.CaptureNone:
		// Carries no runtime value.
		return

	case decl.CaptureByValue:
		g.emitByValueCapture(fd, c, loc, argNo)

	case decl.CaptureMutableCell:
		// The closure receives the heap cell that owns the captured
		// storage. The variable binds to the cell's interior address; the
		// cell itself is remembered only so it can be released.
		boxT := g.Types.Intern(types.MakeBox(c.Type))
		box := g.B.CreateFuncArg(boxT, false, v.Name)
		addr := g.B.EmitProjectBox(loc, box, c.Type)
		g.bindVar(v, VarLoc{Value: addr, Box: box})
		g.B.EmitDebugValue(loc, addr, v.Name, argNo)
		if !fd.GuaranteedContext {
			g.Cleanups.Register(Cleanup{Kind: CleanupReleaseBox, Loc: loc, Val: box})
		}

	case decl.CaptureAddressAlias:
		// Caller-owned, non-escaping storage arrives by address; its
		// lifetime is guaranteed for the call's duration.
		addr := g.B.CreateFuncArg(c.Type, true, v.Name)
		g.bindVar(v, VarLoc{Value: addr})
		g.B.EmitDebugValue(loc, addr, v.Name, argNo)

	default:
		panic(fmt.Errorf("cirgen: bad capture kind %d", c.Kind))
	}
}

func (g *FuncGen) emitByValueCapture(fd *decl.FuncDecl, c decl.CapturedValue, loc source.Loc, argNo int) {
	v := c.Var
	t := c.Type
	val := g.B.CreateFuncArg(t, g.Layout.IsAddressOnly(t), v.Name)

	needDestroy := !fd.GuaranteedContext

	var bound cir.ValueID
	if v.Mutable {
		// The binding was mutable in its defining scope, so in-closure
		// mutation must stay expressible: store the incoming value into a
		// local cell and bind the cell's address.
		addr := g.emitTemporary(loc, t, argNo)
		if fd.GuaranteedContext {
			// The incoming value is borrowed; the cell needs its own copy.
			val = g.copyCaptured(loc, val)
			needDestroy = true
		}
		g.storeCaptured(loc, val, addr)
		bound = addr
		g.bindVar(v, VarLoc{Value: addr})
		// The stack slot carries the argument ordinal; no separate debug
		// marker is needed.
	} else {
		bound = val
		g.bindVar(v, VarLoc{Value: val})
		g.B.EmitDebugValue(loc, val, v.Name, argNo)
	}

	if needDestroy && !g.Layout.IsTrivial(t) {
		kind := CleanupReleaseValue
		if g.F.IsAddress(bound) {
			kind = CleanupDestroyAddr
		}
		g.Cleanups.Register(Cleanup{Kind: kind, Loc: loc, Val: bound})
	}
}

func (g *FuncGen) copyCaptured(loc source.Loc, val cir.ValueID) cir.ValueID {
	if !g.F.IsAddress(val) {
		return g.B.EmitCopyValue(loc, val)
	}
	buf := g.EmitTemporary(loc, g.F.TypeOf(val))
	g.B.EmitCopyAddr(loc, val, buf, false, true)
	return buf
}

func (g *FuncGen) storeCaptured(loc source.Loc, val, addr cir.ValueID) {
	if g.F.IsAddress(val) {
		g.B.EmitCopyAddr(loc, val, addr, true, true)
		return
	}
	g.B.EmitStore(loc, val, addr, true)
}
