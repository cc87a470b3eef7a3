package cir

import (
	"fmt"

	"cinder/internal/decl"
	"cinder/internal/layout"
	"cinder/internal/types"
)

// ParamConvention is the contractual ownership rule for one lowered
// parameter leaf.
type ParamConvention uint8

const (
	// ConvGuaranteed lends a loadable value at +0 for the call's duration.
	ConvGuaranteed ParamConvention = iota
	// ConvIndirectGuaranteed lends an address-only value at +0.
	ConvIndirectGuaranteed
	// ConvUnowned passes at +0 without keeping the value alive.
	ConvUnowned
	// ConvOwned transfers a +1 claim on a loadable value.
	ConvOwned
	// ConvIndirectOwned transfers a +1 claim on an address-only value.
	ConvIndirectOwned
	// ConvInOut passes the address of exclusively-accessed caller storage.
	ConvInOut
	// ConvInOutAliasable passes the address of caller storage that may
	// alias other access.
	ConvInOutAliasable
	// ConvInConstant is reserved and rejected when encountered.
	ConvInConstant
)

func (c ParamConvention) String() string {
	switch c {
	case ConvGuaranteed:
		return "guaranteed"
	case ConvIndirectGuaranteed:
		return "in_guaranteed"
	case ConvUnowned:
		return "unowned"
	case ConvOwned:
		return "owned"
	case ConvIndirectOwned:
		return "in"
	case ConvInOut:
		return "inout"
	case ConvInOutAliasable:
		return "inout_aliasable"
	case ConvInConstant:
		return "in_constant"
	default:
		return fmt.Sprintf("ParamConvention(%d)", c)
	}
}

// ParamInfo is one entry of a function's lowered parameter sequence.
type ParamInfo struct {
	Convention ParamConvention
	Type       types.TypeID
}

// EncodeParams flattens the declared parameter clauses into the lowered
// convention sequence, innermost clause first, one ParamInfo per scalar
// leaf in depth-first left-to-right order. Prologue generation walks the
// same declared types in the same order; the two traversals must agree
// leaf for leaf.
func EncodeParams(typesIn *types.Interner, eng *layout.Engine, lists []decl.ParamList) []ParamInfo {
	var out []ParamInfo
	for i := len(lists) - 1; i >= 0; i-- {
		for _, p := range lists[i].Params {
			out = encodeParamType(typesIn, eng, p.Type, p.Passing, out)
		}
	}
	return out
}

func encodeParamType(typesIn *types.Interner, eng *layout.Engine, t types.TypeID, passing decl.Passing, out []ParamInfo) []ParamInfo {
	if info, ok := typesIn.TupleInfo(t); ok {
		for _, elem := range info.Elems {
			out = encodeParamType(typesIn, eng, elem, passing, out)
		}
		return out
	}
	// Lowered parameter types always carry the erased (static) form of
	// dynamic Self metatypes; binding casts back when needed.
	lowered := typesIn.EraseDynamicSelf(t)
	return append(out, ParamInfo{Convention: leafConvention(typesIn, eng, t, passing), Type: lowered})
}

func leafConvention(typesIn *types.Interner, eng *layout.Engine, t types.TypeID, passing decl.Passing) ParamConvention {
	if typesIn.Kind(t) == types.KindInOut {
		if passing == decl.PassInOutAliasable {
			return ConvInOutAliasable
		}
		return ConvInOut
	}
	switch passing {
	case decl.PassGuaranteed:
		if eng.IsAddressOnly(t) {
			return ConvIndirectGuaranteed
		}
		return ConvGuaranteed
	case decl.PassUnowned:
		return ConvUnowned
	case decl.PassOwned:
		if eng.IsAddressOnly(t) {
			return ConvIndirectOwned
		}
		return ConvOwned
	case decl.PassInOut:
		return ConvInOut
	case decl.PassInOutAliasable:
		return ConvInOutAliasable
	case decl.PassInConstant:
		return ConvInConstant
	default:
		panic(fmt.Errorf("cir: bad passing %d", passing))
	}
}
