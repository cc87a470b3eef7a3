package layout

import (
	"cinder/internal/types"
)

func (e *Engine) computeLayout(id types.TypeID) TypeLayout {
	if id == types.NoTypeID || e.Types == nil {
		return TypeLayout{Size: 0, Align: 1, Trivial: true}
	}
	tt, ok := e.Types.Lookup(id)
	if !ok {
		return TypeLayout{Size: 0, Align: 1, Trivial: true}
	}

	switch tt.Kind {
	case types.KindUnit:
		return TypeLayout{Size: 0, Align: 1, Trivial: true}

	case types.KindBool:
		return TypeLayout{Size: 1, Align: 1, Trivial: true}

	case types.KindInt, types.KindFloat:
		return TypeLayout{Size: 8, Align: 8, Trivial: true}

	case types.KindString:
		// Pointer + length; the payload is reference counted.
		return TypeLayout{Size: 2 * e.Target.PtrSize, Align: e.Target.PtrAlign}

	case types.KindRef, types.KindBox:
		return e.ptrLayout(false)

	case types.KindMetatype:
		return e.ptrLayout(true)

	case types.KindUnsafeBuffer:
		// Opaque fixed-size storage; trivial but pinned in memory.
		return TypeLayout{Size: 4 * e.Target.PtrSize, Align: e.Target.PtrAlign, AddressOnly: true, Trivial: true}

	case types.KindInOut:
		// The slot itself is passed as an address.
		return e.ptrLayout(true)

	case types.KindOptional:
		elem := e.LayoutOf(tt.Elem)
		// Spare-bit packing is a backend concern; one extra tag byte here.
		l := TypeLayout{
			Size:        roundUp(elem.Size+1, maxInt(elem.Align, 1)),
			Align:       maxInt(elem.Align, 1),
			AddressOnly: elem.AddressOnly,
			Trivial:     elem.Trivial,
		}
		return l

	case types.KindFunc:
		info, ok := e.Types.FuncInfo(id)
		if ok && info.Rep == types.RepBlock {
			return e.ptrLayout(false)
		}
		// Thick: code pointer + context reference.
		return TypeLayout{Size: 2 * e.Target.PtrSize, Align: e.Target.PtrAlign}

	case types.KindTuple:
		return e.tupleLayout(id)

	case types.KindOpaque:
		info, _ := e.Types.OpaqueInfo(id)
		size := e.Target.PtrSize
		if info != nil && info.Size > 0 {
			size = info.Size
		}
		return TypeLayout{Size: size, Align: e.Target.PtrAlign, AddressOnly: true}

	default:
		return TypeLayout{Size: 0, Align: 1, Trivial: true}
	}
}

// ptrLayout is the layout of one pointer-sized slot. Trivial pointers carry
// no ownership; managed ones are reference counted.
func (e *Engine) ptrLayout(trivial bool) TypeLayout {
	return TypeLayout{
		Size:    e.Target.PtrSize,
		Align:   e.Target.PtrAlign,
		Trivial: trivial,
	}
}

func (e *Engine) tupleLayout(id types.TypeID) TypeLayout {
	info, ok := e.Types.TupleInfo(id)
	if !ok {
		return TypeLayout{Size: 0, Align: 1, Trivial: true}
	}
	out := TypeLayout{Align: 1, Trivial: true}
	out.ElemOffsets = make([]int, 0, len(info.Elems))
	offset := 0
	for _, elem := range info.Elems {
		el := e.LayoutOf(elem)
		offset = roundUp(offset, maxInt(el.Align, 1))
		out.ElemOffsets = append(out.ElemOffsets, offset)
		offset += el.Size
		out.Align = maxInt(out.Align, el.Align)
		if el.AddressOnly {
			out.AddressOnly = true
		}
		if !el.Trivial {
			out.Trivial = false
		}
	}
	out.Size = roundUp(offset, out.Align)
	return out
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	rem := n % align
	if rem == 0 {
		return n
	}
	return n + align - rem
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
