package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid      TypeID
	Unit         TypeID
	Bool         TypeID
	Int          TypeID
	Float        TypeID
	String       TypeID
	UnsafeBuffer TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	tuples   []TupleInfo
	funcs    []FuncInfo
	opaques  []OpaqueInfo

	opaqueIndex map[string]TypeID
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	DynSelf bool
	Payload uint32
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 64),
	}
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.Float = in.Intern(Type{Kind: KindFloat})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.UnsafeBuffer = in.Intern(Type{Kind: KindUnsafeBuffer})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey{Kind: t.Kind, Elem: t.Elem, DynSelf: t.DynSelf, Payload: t.Payload}
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("types: len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	key := typeKey{Kind: t.Kind, Elem: t.Elem, DynSelf: t.DynSelf, Payload: t.Payload}
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Kind returns the kind for a TypeID, or KindInvalid for unknown IDs.
func (in *Interner) Kind(id TypeID) Kind {
	tt, ok := in.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return tt.Kind
}

// OptionalObject unwraps one level of optional. Returns the input unchanged
// when the type is not optional.
func (in *Interner) OptionalObject(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindOptional {
		return id
	}
	return tt.Elem
}

// EraseDynamicSelf rewrites a metatype over the dynamic Self type to its
// static counterpart. All other types pass through unchanged. Raw incoming
// arguments always carry the erased representation.
func (in *Interner) EraseDynamicSelf(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindMetatype || !tt.DynSelf {
		return id
	}
	return in.Intern(MakeMetatype(tt.Elem, false))
}

// InOutObject returns the instance type behind an in-out slot.
func (in *Interner) InOutObject(id TypeID) (TypeID, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindInOut {
		return NoTypeID, false
	}
	return tt.Elem, true
}
