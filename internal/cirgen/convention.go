package cirgen

import (
	"fmt"

	"cinder/internal/cir"
	"cinder/internal/source"
)

// resolveConvention classifies a raw incoming argument by its lowered
// parameter convention and returns the matching managed value.
//
// The mapping is fixed by the calling convention, not by this stage:
//   - guaranteed arguments are borrowed for the call's duration;
//   - unowned arguments are not kept alive by the caller and must be
//     retained immediately;
//   - owned arguments arrive with a +1 claim this stage must release;
//   - in-out arguments are addresses aliasing caller storage.
func (g *FuncGen) resolveConvention(loc source.Loc, arg cir.ValueID, p cir.ParamInfo) ManagedValue {
	switch p.Convention {
	case cir.ConvGuaranteed, cir.ConvIndirectGuaranteed:
		return Unmanaged(arg)

	case cir.ConvUnowned:
		return g.ManagedRetain(loc, arg)

	case cir.ConvOwned:
		return g.ManagedRValue(loc, arg)

	case cir.ConvIndirectOwned:
		return g.ManagedAddr(loc, arg)

	case cir.ConvInOut, cir.ConvInOutAliasable:
		// An lvalue: mutations through the address stay visible to the
		// caller after the call returns.
		return Unmanaged(arg)

	case cir.ConvInConstant:
		panic(fmt.Errorf("cirgen: in_constant convention is reserved"))

	default:
		panic(fmt.Errorf("cirgen: bad parameter convention %d", p.Convention))
	}
}
