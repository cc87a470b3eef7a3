package types_test

import (
	"testing"

	"cinder/internal/types"
)

func TestInterner_StructuralDedup(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	a := in.Intern(types.MakeOptional(b.Int))
	c := in.Intern(types.MakeOptional(b.Int))
	if a != c {
		t.Errorf("optional int interned twice: %d vs %d", a, c)
	}
	if d := in.Intern(types.MakeOptional(b.Bool)); d == a {
		t.Error("distinct optionals share a TypeID")
	}
	if in.Intern(types.MakeInOut(b.Int)) == a {
		t.Error("inout and optional share a TypeID")
	}
}

func TestInterner_BuiltinsStable(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	if b.Invalid != types.NoTypeID {
		t.Errorf("invalid builtin = %d, want the reserved zero ID", b.Invalid)
	}
	for name, id := range map[string]types.TypeID{
		"unit": b.Unit, "bool": b.Bool, "int": b.Int,
		"float": b.Float, "string": b.String, "buffer": b.UnsafeBuffer,
	} {
		if id == types.NoTypeID {
			t.Errorf("builtin %s has no ID", name)
		}
	}
	if in.Intern(types.Type{Kind: types.KindInt}) != b.Int {
		t.Error("re-interning int did not hit the builtin")
	}
}

func TestInterner_LookupBounds(t *testing.T) {
	in := types.NewInterner()
	if _, ok := in.Lookup(types.NoTypeID); ok {
		t.Error("NoTypeID resolved")
	}
	if _, ok := in.Lookup(types.TypeID(9999)); ok {
		t.Error("out-of-range ID resolved")
	}
	if in.Kind(types.TypeID(9999)) != types.KindInvalid {
		t.Error("out-of-range kind is not invalid")
	}
}

func TestInterner_TupleInfo(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	id := in.RegisterTuple([]types.TypeID{b.Int, b.String})
	info, ok := in.TupleInfo(id)
	if !ok || len(info.Elems) != 2 || info.Elems[1] != b.String {
		t.Fatalf("tuple info = %+v", info)
	}
	if _, ok := in.TupleInfo(b.Int); ok {
		t.Error("non-tuple has tuple info")
	}
}

func TestInterner_CompositeDedup(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	pair := in.RegisterTuple([]types.TypeID{b.Int, b.String})
	again := in.RegisterTuple([]types.TypeID{b.Int, b.String})
	if pair != again {
		t.Errorf("identical tuple registered twice: %d vs %d", pair, again)
	}
	if swapped := in.RegisterTuple([]types.TypeID{b.String, b.Int}); swapped == pair {
		t.Error("element order not part of tuple identity")
	}

	fn := in.RegisterFunc([]types.TypeID{b.Int}, b.Bool, types.RepThick)
	if again := in.RegisterFunc([]types.TypeID{b.Int}, b.Bool, types.RepThick); again != fn {
		t.Errorf("identical function type registered twice: %d vs %d", fn, again)
	}
	if other := in.RegisterFunc([]types.TypeID{b.Int}, b.Int, types.RepThick); other == fn {
		t.Error("result type not part of function identity")
	}
}

func TestInterner_FuncInfoAndBlocks(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	thick := in.RegisterFunc([]types.TypeID{b.Int}, b.Bool, types.RepThick)
	block := in.RegisterFunc([]types.TypeID{b.Int}, b.Bool, types.RepBlock)
	if thick == block {
		t.Fatal("representation not part of function identity")
	}
	if in.IsBlockFunc(thick) {
		t.Error("thick function reported as block")
	}
	if !in.IsBlockFunc(block) {
		t.Error("block function not recognized")
	}
	if !in.IsBlockFunc(in.Intern(types.MakeOptional(block))) {
		t.Error("optional block not recognized")
	}
	if in.IsBlockFunc(b.Int) {
		t.Error("int reported as block")
	}
}

func TestInterner_OpaqueDedupByName(t *testing.T) {
	in := types.NewInterner()

	a := in.RegisterOpaque("Payload", 0)
	c := in.RegisterOpaque("Payload", 64)
	if a != c {
		t.Errorf("same name registered twice: %d vs %d", a, c)
	}
	info, ok := in.OpaqueInfo(a)
	if !ok || info.Name != "Payload" {
		t.Fatalf("opaque info = %+v", info)
	}
	if info.Size != 0 {
		t.Error("second registration overwrote the original descriptor")
	}
	if in.RegisterOpaque("Other", 0) == a {
		t.Error("distinct names share a TypeID")
	}
}

func TestInterner_EraseDynamicSelf(t *testing.T) {
	in := types.NewInterner()
	selfT := in.RegisterOpaque("Self", 0)
	dyn := in.Intern(types.MakeMetatype(selfT, true))
	static := in.Intern(types.MakeMetatype(selfT, false))

	if got := in.EraseDynamicSelf(dyn); got != static {
		t.Errorf("erased = %d, want static metatype %d", got, static)
	}
	// Idempotent on everything else.
	if got := in.EraseDynamicSelf(static); got != static {
		t.Error("static metatype changed by erasure")
	}
	if got := in.EraseDynamicSelf(selfT); got != selfT {
		t.Error("non-metatype changed by erasure")
	}
}

func TestInterner_InOutObject(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	slot := in.Intern(types.MakeInOut(b.String))
	inst, ok := in.InOutObject(slot)
	if !ok || inst != b.String {
		t.Fatalf("InOutObject = %d, %v", inst, ok)
	}
	if _, ok := in.InOutObject(b.String); ok {
		t.Error("plain string reported as in-out")
	}
}
