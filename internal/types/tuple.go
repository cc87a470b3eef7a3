package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// TupleInfo stores the element types for a tuple type.
type TupleInfo struct {
	Elems []TypeID
}

// RegisterTuple creates or finds a tuple type with the given elements.
func (in *Interner) RegisterTuple(elems []TypeID) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindTuple {
			continue
		}
		if int(tt.Payload) >= len(in.tuples) {
			continue
		}
		if slices.Equal(in.tuples[tt.Payload].Elems, elems) {
			return id
		}
	}
	slot := in.appendTupleInfo(TupleInfo{Elems: slices.Clone(elems)})
	return in.internRaw(Type{Kind: KindTuple, Payload: slot})
}

// TupleInfo returns the element types for a tuple TypeID.
func (in *Interner) TupleInfo(id TypeID) (*TupleInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTuple {
		return nil, false
	}
	if int(tt.Payload) >= len(in.tuples) {
		return nil, false
	}
	return &in.tuples[tt.Payload], true
}

func (in *Interner) appendTupleInfo(info TupleInfo) uint32 {
	if in.tuples == nil {
		in.tuples = append(in.tuples, TupleInfo{}) // reserve 0 as invalid sentinel
	}
	in.tuples = append(in.tuples, info)
	slot, err := safecast.Conv[uint32](len(in.tuples) - 1)
	if err != nil {
		panic(fmt.Errorf("types: tuple info overflow: %w", err))
	}
	return slot
}
