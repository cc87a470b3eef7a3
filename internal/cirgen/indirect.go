package cirgen

import (
	"cinder/internal/types"
)

// emitIndirectResults plans the hidden output-address parameters for the
// result type: tuples expand depth-first, exactly as parameter
// destructuring does, and every leaf the layout authority returns
// indirectly gets one synthesized out-address argument ahead of all
// explicit parameters. The caller owns the storage; no cleanup attaches.
func (g *FuncGen) emitIndirectResults(resultT types.TypeID) {
	if info, ok := g.Types.TupleInfo(resultT); ok {
		for _, elemT := range info.Elems {
			g.emitIndirectResults(elemT)
		}
		return
	}

	if !g.Layout.IsReturnedIndirectly(resultT) {
		return
	}
	g.B.CreateFuncArg(resultT, true, "$return_value")
}
