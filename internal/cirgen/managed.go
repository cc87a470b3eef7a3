package cirgen

import (
	"fmt"

	"cinder/internal/cir"
	"cinder/internal/source"
)

// ManagedValue pairs an SSA value with at most one pending release
// obligation. An unmanaged value is borrowed or trivial: discarding it costs
// nothing. Ownership is forwarded at most once; forwarding clears the
// obligation.
type ManagedValue struct {
	value   cir.ValueID
	cleanup CleanupHandle
}

// Unmanaged wraps a value that carries no release obligation.
func Unmanaged(v cir.ValueID) ManagedValue {
	return ManagedValue{value: v}
}

// Managed wraps a value together with its registered cleanup.
func Managed(v cir.ValueID, h CleanupHandle) ManagedValue {
	return ManagedValue{value: v, cleanup: h}
}

// Value returns the underlying SSA value.
func (mv ManagedValue) Value() cir.ValueID {
	return mv.value
}

// HasCleanup reports whether the subsystem currently owes a release for the
// value.
func (mv ManagedValue) HasCleanup() bool {
	return mv.cleanup != NoCleanup
}

// Forward transfers ownership out of the managed value: the pending cleanup
// is deactivated and the raw value returned. A value is forwarded at most
// once.
func (mv ManagedValue) Forward(g *FuncGen) cir.ValueID {
	if mv.cleanup != NoCleanup {
		g.Cleanups.Deactivate(mv.cleanup)
	}
	return mv.value
}

// CopyUnmanaged produces an independently-owned copy of a borrowed value,
// with a fresh release obligation attached.
func (mv ManagedValue) CopyUnmanaged(g *FuncGen, loc source.Loc) ManagedValue {
	if mv.cleanup != NoCleanup {
		panic(fmt.Errorf("cirgen: copying a value that already owns a cleanup"))
	}
	if g.F.IsAddress(mv.value) {
		t := g.F.TypeOf(mv.value)
		buf := g.EmitTemporary(loc, t)
		g.B.EmitCopyAddr(loc, mv.value, buf, false, true)
		return g.ManagedAddr(loc, buf)
	}
	copied := g.B.EmitCopyValue(loc, mv.value)
	return g.ManagedRValue(loc, copied)
}
