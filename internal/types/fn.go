package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// FuncInfo stores the signature and representation of a function type.
type FuncInfo struct {
	Params []TypeID
	Result TypeID
	Rep    FuncRep
}

// RegisterFunc creates or finds a function type with the given signature.
func (in *Interner) RegisterFunc(params []TypeID, result TypeID, rep FuncRep) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindFunc {
			continue
		}
		if int(tt.Payload) >= len(in.funcs) {
			continue
		}
		info := in.funcs[tt.Payload]
		if info.Result == result && info.Rep == rep && slices.Equal(info.Params, params) {
			return id
		}
	}
	slot := in.appendFuncInfo(FuncInfo{
		Params: slices.Clone(params),
		Result: result,
		Rep:    rep,
	})
	return in.internRaw(Type{Kind: KindFunc, Payload: slot})
}

// FuncInfo returns the signature for a function TypeID.
func (in *Interner) FuncInfo(id TypeID) (*FuncInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFunc {
		return nil, false
	}
	if int(tt.Payload) >= len(in.funcs) {
		return nil, false
	}
	return &in.funcs[tt.Payload], true
}

// IsBlockFunc reports whether id is a function type (possibly wrapped in one
// level of optional) with the foreign block representation.
func (in *Interner) IsBlockFunc(id TypeID) bool {
	info, ok := in.FuncInfo(in.OptionalObject(id))
	return ok && info.Rep == RepBlock
}

func (in *Interner) appendFuncInfo(info FuncInfo) uint32 {
	if in.funcs == nil {
		in.funcs = append(in.funcs, FuncInfo{}) // reserve 0 as invalid sentinel
	}
	in.funcs = append(in.funcs, info)
	slot, err := safecast.Conv[uint32](len(in.funcs) - 1)
	if err != nil {
		panic(fmt.Errorf("types: func info overflow: %w", err))
	}
	return slot
}
