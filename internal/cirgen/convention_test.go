package cirgen_test

import (
	"testing"

	"cinder/internal/cir"
	"cinder/internal/decl"
	"cinder/internal/source"
	"cinder/internal/types"
)

// An owned reference parameter is released exactly once, at function scope
// exit, and never retained.
func TestConvention_OwnedReleasedOnce(t *testing.T) {
	e := newTestEnv()
	fd := &decl.FuncDecl{
		Name:   "consume",
		Result: e.types.Builtins().Unit,
		Lists: []decl.ParamList{{Params: []decl.ParamDecl{
			namedParam("r", e.mustType(t, "ref Obj"), decl.PassOwned),
		}}},
	}

	f, g, scope, _ := e.lower(t, fd)
	if pending := g.Cleanups.Pending(); pending != 1 {
		t.Fatalf("pending cleanups = %d, want 1", pending)
	}
	scope.Close(source.Loc{})

	if n := len(entryInstrs(f, cir.InstrRetain)); n != 0 {
		t.Errorf("retains = %d, want 0 for an owned argument", n)
	}
	if n := len(entryInstrs(f, cir.InstrRelease)); n != 1 {
		t.Errorf("releases = %d, want exactly 1", n)
	}
}

// A guaranteed reference is borrowed: no retain, no release, no cleanup.
func TestConvention_GuaranteedIsBorrowed(t *testing.T) {
	e := newTestEnv()
	fd := &decl.FuncDecl{
		Name:   "borrow",
		Result: e.types.Builtins().Unit,
		Lists: []decl.ParamList{{Params: []decl.ParamDecl{
			namedParam("r", e.mustType(t, "ref Obj"), decl.PassGuaranteed),
		}}},
	}

	f, g, scope, _ := e.lower(t, fd)
	if pending := g.Cleanups.Pending(); pending != 0 {
		t.Fatalf("pending cleanups = %d, want 0", pending)
	}
	scope.Close(source.Loc{})

	if n := len(entryInstrs(f, cir.InstrRetain)) + len(entryInstrs(f, cir.InstrRelease)); n != 0 {
		t.Errorf("retain/release count = %d, want 0 for a borrowed argument", n)
	}
}

// An unowned reference is retained immediately, then released at exit.
func TestConvention_UnownedRetainedOnEntry(t *testing.T) {
	e := newTestEnv()
	fd := &decl.FuncDecl{
		Name:   "pin",
		Result: e.types.Builtins().Unit,
		Lists: []decl.ParamList{{Params: []decl.ParamDecl{
			namedParam("r", e.mustType(t, "ref Obj"), decl.PassUnowned),
		}}},
	}

	f, _, scope, _ := e.lower(t, fd)
	if n := len(entryInstrs(f, cir.InstrRetain)); n != 1 {
		t.Fatalf("retains = %d, want 1 on entry", n)
	}
	scope.Close(source.Loc{})
	if n := len(entryInstrs(f, cir.InstrRelease)); n != 1 {
		t.Errorf("releases = %d, want 1 to balance the retain", n)
	}
}

// An owned address-only parameter arrives as an address and is destroyed
// through it, not released as a value.
func TestConvention_OwnedAddressOnlyDestroyedInPlace(t *testing.T) {
	e := newTestEnv()
	fd := &decl.FuncDecl{
		Name:   "consume_big",
		Result: e.types.Builtins().Unit,
		Lists: []decl.ParamList{{Params: []decl.ParamDecl{
			namedParam("s", e.mustType(t, "opaque Payload"), decl.PassOwned),
		}}},
	}

	f, g, scope, _ := e.lower(t, fd)
	arg := f.EntryBlock().Args[0]
	if !f.IsAddress(arg) {
		t.Fatal("address-only argument did not arrive as an address")
	}
	bound, ok := g.VarLocs[fd.Lists[0].Params[0].Var.ID]
	if !ok || bound.Value != arg {
		t.Error("parameter not bound to the incoming address")
	}
	scope.Close(source.Loc{})
	if n := len(entryInstrs(f, cir.InstrDestroyAddr)); n != 1 {
		t.Errorf("destroy_addr = %d, want 1", n)
	}
	if n := len(entryInstrs(f, cir.InstrRelease)); n != 0 {
		t.Errorf("releases = %d, want 0 for an address-only value", n)
	}
}

// A foreign block argument is copied on entry; the copy is what gets bound
// and eventually released.
func TestConvention_BlockArgumentCopiedOnEntry(t *testing.T) {
	e := newTestEnv()
	blockT := e.mustType(t, "block(int) -> int")
	fd := &decl.FuncDecl{
		Name:   "with_block",
		Result: e.types.Builtins().Unit,
		Lists: []decl.ParamList{{Params: []decl.ParamDecl{
			namedParam("cb", blockT, decl.PassGuaranteed),
		}}},
	}

	f, g, scope, _ := e.lower(t, fd)
	copies := entryInstrs(f, cir.InstrCopyBlock)
	if len(copies) != 1 {
		t.Fatalf("copy_block instrs = %d, want 1", len(copies))
	}
	raw := f.EntryBlock().Args[0]
	bound := g.VarLocs[fd.Lists[0].Params[0].Var.ID]
	if bound.Value == raw {
		t.Error("variable bound to the raw block, not the copy")
	}
	if bound.Value != copies[0].CopyBlock.Dst {
		t.Error("variable not bound to the block copy")
	}
	if pending := g.Cleanups.Pending(); pending != 1 {
		t.Errorf("pending cleanups = %d, want 1 for the copy", pending)
	}
	scope.Close(source.Loc{})
}

// An optional block is still recognized and copied.
func TestConvention_OptionalBlockStillCopied(t *testing.T) {
	e := newTestEnv()
	fd := &decl.FuncDecl{
		Name:   "maybe_block",
		Result: e.types.Builtins().Unit,
		Lists: []decl.ParamList{{Params: []decl.ParamDecl{
			namedParam("cb", e.mustType(t, "block() -> unit ?"), decl.PassGuaranteed),
		}}},
	}

	f, _, scope, _ := e.lower(t, fd)
	defer scope.Close(source.Loc{})
	if n := len(entryInstrs(f, cir.InstrCopyBlock)); n != 1 {
		t.Errorf("copy_block instrs = %d, want 1 through the optional", n)
	}
}

// A loadable tuple whose elements are all borrowed reassembles as a
// borrowed aggregate: no copies, no cleanup.
func TestAggregate_AllBorrowedStaysBorrowed(t *testing.T) {
	e := newTestEnv()
	refT := e.mustType(t, "ref Obj")
	pairT := e.types.RegisterTuple([]types.TypeID{refT, refT})
	fd := &decl.FuncDecl{
		Name:   "pair",
		Result: e.types.Builtins().Unit,
		Lists: []decl.ParamList{{Params: []decl.ParamDecl{
			namedParam("p", pairT, decl.PassGuaranteed),
		}}},
	}

	f, g, scope, _ := e.lower(t, fd)
	defer scope.Close(source.Loc{})

	if n := len(entryInstrs(f, cir.InstrCopyValue)); n != 0 {
		t.Errorf("copy_value instrs = %d, want 0 for an all-borrowed tuple", n)
	}
	if pending := g.Cleanups.Pending(); pending != 0 {
		t.Errorf("pending cleanups = %d, want 0", pending)
	}
	if n := len(entryInstrs(f, cir.InstrTuple)); n != 1 {
		t.Errorf("tuple instrs = %d, want 1", n)
	}
}

// One owning element forces the whole aggregate to +1: borrowed siblings
// are copied so the tuple owns every element uniformly.
func TestAggregate_OneOwnedElementForcesOwnership(t *testing.T) {
	e := newTestEnv()
	refT := e.mustType(t, "ref Obj")
	blockT := e.mustType(t, "block() -> unit")
	mixT := e.types.RegisterTuple([]types.TypeID{refT, blockT})
	fd := &decl.FuncDecl{
		Name:   "mixed",
		Result: e.types.Builtins().Unit,
		Lists: []decl.ParamList{{Params: []decl.ParamDecl{
			// Guaranteed, but the block element gains a cleanup through its
			// entry copy, so the aggregate cannot stay borrowed.
			namedParam("p", mixT, decl.PassGuaranteed),
		}}},
	}

	f, g, scope, _ := e.lower(t, fd)

	if n := len(entryInstrs(f, cir.InstrCopyBlock)); n != 1 {
		t.Fatalf("copy_block instrs = %d, want 1", n)
	}
	if n := len(entryInstrs(f, cir.InstrCopyValue)); n != 1 {
		t.Errorf("copy_value instrs = %d, want 1 (the borrowed ref sibling)", n)
	}
	if pending := g.Cleanups.Pending(); pending != 1 {
		t.Errorf("pending cleanups = %d, want 1 on the reassembled tuple", pending)
	}
	scope.Close(source.Loc{})
	if err := cir.Validate(f, e.types); err != nil {
		t.Errorf("validate: %v", err)
	}
}

// An address-only tuple reassembles into a stack buffer: owned elements
// move in, trivial ones store, and the buffer is destroyed then freed.
func TestAggregate_AddressOnlyReassemblesInBuffer(t *testing.T) {
	e := newTestEnv()
	intT := e.types.Builtins().Int
	opqT := e.mustType(t, "opaque Payload")
	bigT := e.types.RegisterTuple([]types.TypeID{intT, opqT})
	fd := &decl.FuncDecl{
		Name:   "big_pair",
		Result: e.types.Builtins().Unit,
		Lists: []decl.ParamList{{Params: []decl.ParamDecl{
			namedParam("p", bigT, decl.PassOwned),
		}}},
	}

	f, g, scope, _ := e.lower(t, fd)

	if n := len(entryInstrs(f, cir.InstrAllocStack)); n != 1 {
		t.Fatalf("alloc_stack instrs = %d, want 1 aggregate buffer", n)
	}
	if n := len(entryInstrs(f, cir.InstrTupleElemAddr)); n != 2 {
		t.Errorf("tuple_elem_addr instrs = %d, want 2", n)
	}
	if n := len(entryInstrs(f, cir.InstrStore)); n != 1 {
		t.Errorf("stores = %d, want 1 (the trivial int element)", n)
	}
	copies := entryInstrs(f, cir.InstrCopyAddr)
	if len(copies) != 1 || !copies[0].CopyAddr.Take || !copies[0].CopyAddr.Init {
		t.Errorf("owned address-only element must move in with take+init, got %+v", copies)
	}
	bound := g.VarLocs[fd.Lists[0].Params[0].Var.ID]
	if !f.IsAddress(bound.Value) {
		t.Error("aggregate not bound by address")
	}

	scope.Close(source.Loc{})
	kinds := instrKinds(f)
	// The buffer's destroy must precede its dealloc.
	sawDestroy := false
	for _, k := range kinds {
		if k == cir.InstrDestroyAddr {
			sawDestroy = true
		}
		if k == cir.InstrDeallocStack && !sawDestroy {
			t.Fatal("buffer freed before its contents were destroyed")
		}
	}
	if err := cir.Validate(f, e.types); err != nil {
		t.Errorf("validate: %v", err)
	}
}

// In-out parameters bind the caller's address unmanaged; nothing is
// destroyed at exit.
func TestConvention_InOutBindsCallerStorage(t *testing.T) {
	e := newTestEnv()
	fd := &decl.FuncDecl{
		Name:   "bump",
		Result: e.types.Builtins().Unit,
		Lists: []decl.ParamList{{Params: []decl.ParamDecl{
			namedParam("x", e.mustType(t, "inout string"), decl.PassInOut),
		}}},
	}

	f, g, scope, _ := e.lower(t, fd)
	arg := f.EntryBlock().Args[0]
	if !f.IsAddress(arg) {
		t.Fatal("in-out argument is not an address")
	}
	if f.TypeOf(arg) != e.types.Builtins().String {
		t.Error("in-out argument not typed at the instance type")
	}
	bound := g.VarLocs[fd.Lists[0].Params[0].Var.ID]
	if bound.Value != arg {
		t.Error("in-out variable not bound to the caller's address")
	}
	if pending := g.Cleanups.Pending(); pending != 0 {
		t.Errorf("pending cleanups = %d, want 0 for caller-owned storage", pending)
	}
	scope.Close(source.Loc{})
}
