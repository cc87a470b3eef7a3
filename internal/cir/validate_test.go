package cir_test

import (
	"strings"
	"testing"

	"cinder/internal/cir"
	"cinder/internal/source"
	"cinder/internal/types"
)

func demoRef(in *types.Interner, name string) types.TypeID {
	return in.Intern(types.MakeRef(in.RegisterOpaque(name, 0)))
}

func TestValidate_WellFormedFunc(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	refT := demoRef(in, "Obj")

	f := cir.NewFunc(1, "ok", b.Unit, false)
	bld := cir.NewBuilder(f)
	r := bld.CreateFuncArg(refT, false, "r")
	bld.EmitRetain(source.Loc{}, r)
	slot := bld.EmitAllocStack(source.Loc{}, b.String, 0)
	bld.EmitDeallocStack(source.Loc{}, slot)
	bld.EmitRelease(source.Loc{}, r)

	if err := cir.Validate(f, in); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidate_UseOfUnknownValue(t *testing.T) {
	in := types.NewInterner()
	f := cir.NewFunc(1, "bad", in.Builtins().Unit, false)
	blk := f.EntryBlock()
	blk.Instrs = append(blk.Instrs, cir.Instr{
		Kind:    cir.InstrRelease,
		Release: cir.ReleaseInstr{Val: 42},
	})

	err := cir.Validate(f, in)
	if err == nil {
		t.Fatal("release of unknown value passed validation")
	}
	if !strings.Contains(err.Error(), "unknown value") {
		t.Errorf("error = %q, want mention of unknown value", err)
	}
}

func TestValidate_UseBeforeDefinition(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	f := cir.NewFunc(1, "early", b.Unit, false)
	bld := cir.NewBuilder(f)

	// Emit the use first, then materialize the value it refers to.
	blk := f.EntryBlock()
	blk.Instrs = append(blk.Instrs, cir.Instr{
		Kind:   cir.InstrRetain,
		Retain: cir.RetainInstr{Val: 1},
	})
	bld.CreateFuncArg(b.Int, false, "late")

	err := cir.Validate(f, in)
	if err == nil || !strings.Contains(err.Error(), "used before definition") {
		t.Fatalf("err = %v, want use-before-definition", err)
	}
}

func TestValidate_StackDiscipline(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	f := cir.NewFunc(1, "twisted", b.Unit, false)
	bld := cir.NewBuilder(f)
	s1 := bld.EmitAllocStack(source.Loc{}, b.Int, 0)
	s2 := bld.EmitAllocStack(source.Loc{}, b.Int, 0)
	// Freeing the outer slot first breaks LIFO.
	bld.EmitDeallocStack(source.Loc{}, s1)
	bld.EmitDeallocStack(source.Loc{}, s2)

	err := cir.Validate(f, in)
	if err == nil || !strings.Contains(err.Error(), "stack discipline") {
		t.Fatalf("err = %v, want a stack-discipline violation", err)
	}
}

func TestValidate_DeallocWithNoLiveSlot(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	f := cir.NewFunc(1, "underflow", b.Unit, false)
	bld := cir.NewBuilder(f)
	v := bld.CreateFuncArg(b.Int, true, "")
	bld.EmitDeallocStack(source.Loc{}, v)

	err := cir.Validate(f, in)
	if err == nil || !strings.Contains(err.Error(), "no live slot") {
		t.Fatalf("err = %v, want dealloc underflow", err)
	}
}

func TestValidate_DebugValueAllowsUndef(t *testing.T) {
	in := types.NewInterner()
	f := cir.NewFunc(1, "marker", in.Builtins().Unit, true)
	bld := cir.NewBuilder(f)
	bld.EmitDebugValue(source.Loc{}, cir.NoValueID, "$error", 1)

	if err := cir.Validate(f, in); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
