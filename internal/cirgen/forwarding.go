package cirgen

import (
	"cinder/internal/cir"
	"cinder/internal/decl"
	"cinder/internal/types"
)

// BindParamsForForwarding materializes a parameter list as flat, unmanaged
// entry arguments for a thunk that re-forwards them: tuples destructure
// recursively, nothing is bound into the variable table, and no ownership
// obligations are registered.
func (g *FuncGen) BindParamsForForwarding(list *decl.ParamList, out []cir.ValueID) []cir.ValueID {
	for _, p := range list.Params {
		out = g.forwardArgument(p.Type, out)
	}
	return out
}

func (g *FuncGen) forwardArgument(t types.TypeID, out []cir.ValueID) []cir.ValueID {
	if info, ok := g.Types.TupleInfo(t); ok {
		for _, elemT := range info.Elems {
			out = g.forwardArgument(elemT, out)
		}
		return out
	}
	argT := g.Types.EraseDynamicSelf(t)
	addr := false
	if inst, ok := g.Types.InOutObject(t); ok {
		argT = inst
		addr = true
	}
	return append(out, g.B.CreateFuncArg(argT, addr, ""))
}
