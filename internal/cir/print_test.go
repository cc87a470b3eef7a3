package cir_test

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"cinder/internal/cir"
	"cinder/internal/source"
	"cinder/internal/types"
)

func dumpGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestDumpFunc_Prologue(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	refT := demoRef(in, "Obj")

	f := cir.NewFunc(1, "demo", b.Unit, true)
	f.Params = []cir.ParamInfo{
		{Convention: cir.ConvGuaranteed, Type: refT},
		{Convention: cir.ConvOwned, Type: b.Int},
	}
	bld := cir.NewBuilder(f)
	r := bld.CreateFuncArg(refT, false, "r")
	x := bld.CreateFuncArg(b.Int, false, "x")
	bld.EmitRetain(source.Loc{}, r)
	slot := bld.EmitAllocStack(source.Loc{}, b.String, 0)
	bld.EmitDebugValue(source.Loc{}, r, "r", 1)
	bld.EmitDebugValue(source.Loc{}, x, "x", 2)
	bld.EmitDebugValue(source.Loc{}, cir.NoValueID, "$error", 3)
	bld.EmitDeallocStack(source.Loc{}, slot)
	bld.EmitRelease(source.Loc{}, r)
	require.NoError(t, cir.Validate(f, in))

	var buf bytes.Buffer
	require.NoError(t, cir.DumpFunc(&buf, f, in, cir.DumpOptions{}))
	dumpGoldie(t).Assert(t, "dump_prologue", buf.Bytes())
}

func TestDumpFunc_InstructionForms(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	refT := demoRef(in, "Obj")
	pairT := in.RegisterTuple([]types.TypeID{b.Int, refT})
	boxT := in.Intern(types.MakeBox(b.Int))
	selfT := in.RegisterOpaque("Self", 0)
	metaStatic := in.Intern(types.MakeMetatype(selfT, false))
	metaDyn := in.Intern(types.MakeMetatype(selfT, true))
	resultT := in.RegisterOpaque("Payload", 0)

	f := cir.NewFunc(2, "forms", resultT, false)
	f.Params = []cir.ParamInfo{{Convention: cir.ConvInOut, Type: b.Int}}
	bld := cir.NewBuilder(f)
	xaddr := bld.CreateFuncArg(b.Int, true, "x")
	box := bld.CreateFuncArg(boxT, false, "c")
	ty := bld.CreateFuncArg(metaStatic, false, "ty")
	i := bld.CreateFuncArg(b.Int, false, "i")

	loc := source.Loc{}
	buf := bld.EmitAllocStack(loc, pairT, 0)
	e0 := bld.EmitTupleElemAddr(loc, buf, 0, b.Int)
	bld.EmitStore(loc, i, e0, true)
	e1 := bld.EmitTupleElemAddr(loc, buf, 1, refT)
	bld.EmitCopyAddr(loc, xaddr, e1, true, true)
	bld.EmitProjectBox(loc, box, b.Int)
	cast := bld.EmitBitcast(loc, ty, metaDyn)
	bld.EmitTuple(loc, pairT, []cir.ValueID{i, cast})
	bld.EmitDebugValue(loc, xaddr, "x", 1)
	bld.EmitDeallocStack(loc, buf)
	require.NoError(t, cir.Validate(f, in))

	var out bytes.Buffer
	require.NoError(t, cir.DumpFunc(&out, f, in, cir.DumpOptions{}))
	dumpGoldie(t).Assert(t, "dump_instruction_forms", out.Bytes())
}

func TestDumpFunc_NilInputs(t *testing.T) {
	in := types.NewInterner()
	require.NoError(t, cir.DumpFunc(nil, nil, in, cir.DumpOptions{}))

	var buf bytes.Buffer
	require.NoError(t, cir.DumpFunc(&buf, nil, in, cir.DumpOptions{}))
	require.Zero(t, buf.Len())
}

func TestTypeString_Forms(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	refT := demoRef(in, "Node")

	cases := []struct {
		id   types.TypeID
		want string
	}{
		{b.Unit, "()"},
		{b.Int, "int"},
		{b.UnsafeBuffer, "buffer"},
		{refT, "ref Node"},
		{in.Intern(types.MakeOptional(refT)), "ref Node?"},
		{in.Intern(types.MakeInOut(b.String)), "inout string"},
		{in.Intern(types.MakeBox(b.Int)), "box int"},
		{in.RegisterTuple([]types.TypeID{b.Int, b.Bool}), "(int, bool)"},
		{in.RegisterFunc([]types.TypeID{b.Int}, b.Bool, types.RepThick), "fn(int) -> bool"},
		{in.RegisterFunc(nil, b.Unit, types.RepBlock), "block() -> ()"},
		{in.Intern(types.MakeMetatype(in.RegisterOpaque("Self", 0), true)), "dynself"},
		{types.NoTypeID, "<invalid>"},
	}
	for _, tc := range cases {
		if got := cir.TypeString(in, tc.id); got != tc.want {
			t.Errorf("TypeString(%d) = %q, want %q", tc.id, got, tc.want)
		}
	}
}
