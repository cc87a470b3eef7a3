package types

import (
	"fmt"

	"fortio.org/safecast"
)

// OpaqueInfo names an opaque type: a nominal type whose concrete layout is
// not visible to this compilation, so its values must live in memory.
type OpaqueInfo struct {
	Name string
	Size int // conservative size estimate in bytes, 0 for unknown
}

// RegisterOpaque creates or finds the opaque (address-only) type with the
// given name. Names are unique within one compilation.
func (in *Interner) RegisterOpaque(name string, size int) TypeID {
	if id, ok := in.opaqueIndex[name]; ok {
		return id
	}
	slot := in.appendOpaqueInfo(OpaqueInfo{Name: name, Size: size})
	id := in.internRaw(Type{Kind: KindOpaque, Payload: slot})
	if in.opaqueIndex == nil {
		in.opaqueIndex = make(map[string]TypeID, 8)
	}
	in.opaqueIndex[name] = id
	return id
}

// OpaqueInfo returns the descriptor for an opaque TypeID.
func (in *Interner) OpaqueInfo(id TypeID) (*OpaqueInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindOpaque {
		return nil, false
	}
	if int(tt.Payload) >= len(in.opaques) {
		return nil, false
	}
	return &in.opaques[tt.Payload], true
}

func (in *Interner) appendOpaqueInfo(info OpaqueInfo) uint32 {
	if in.opaques == nil {
		in.opaques = append(in.opaques, OpaqueInfo{}) // reserve 0 as invalid sentinel
	}
	in.opaques = append(in.opaques, info)
	slot, err := safecast.Conv[uint32](len(in.opaques) - 1)
	if err != nil {
		panic(fmt.Errorf("types: opaque info overflow: %w", err))
	}
	return slot
}
