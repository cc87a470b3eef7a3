package cir

import (
	"errors"
	"fmt"

	"cinder/internal/types"
)

// Validate checks structural invariants of a function: every operand is
// defined before use, every value has a type, and stack slots are released
// in LIFO order. Returns a joined error listing all violations.
func Validate(f *Func, typesIn *types.Interner) error {
	if f == nil {
		return nil
	}
	var errs []error

	defined := make(map[ValueID]bool, f.NumValues())
	var stackSlots []ValueID

	use := func(v ValueID, what string) {
		if v == NoValueID {
			return
		}
		if _, ok := f.ValueInfo(v); !ok {
			errs = append(errs, fmt.Errorf("%s: unknown value %d", what, v))
			return
		}
		if !defined[v] {
			errs = append(errs, fmt.Errorf("%s: value %d used before definition", what, v))
		}
	}
	def := func(v ValueID, what string) {
		if v == NoValueID {
			errs = append(errs, fmt.Errorf("%s: missing result value", what))
			return
		}
		if defined[v] {
			errs = append(errs, fmt.Errorf("%s: value %d defined twice", what, v))
		}
		defined[v] = true
		if info, ok := f.ValueInfo(v); ok {
			if _, found := typesIn.Lookup(info.Type); !found && info.Type != types.NoTypeID {
				errs = append(errs, fmt.Errorf("%s: value %d has unknown type", what, v))
			}
		}
	}

	for bi := range f.Blocks {
		blk := &f.Blocks[bi]
		for _, a := range blk.Args {
			def(a, fmt.Sprintf("bb%d arg", blk.ID))
		}
		for ii := range blk.Instrs {
			in := &blk.Instrs[ii]
			what := fmt.Sprintf("bb%d[%d] %v", blk.ID, ii, in.Kind)
			switch in.Kind {
			case InstrRetain:
				use(in.Retain.Val, what)
			case InstrRelease:
				use(in.Release.Val, what)
			case InstrDestroyAddr:
				use(in.DestroyAddr.Addr, what)
			case InstrCopyValue:
				use(in.CopyValue.Src, what)
				def(in.CopyValue.Dst, what)
			case InstrCopyBlock:
				use(in.CopyBlock.Src, what)
				def(in.CopyBlock.Dst, what)
			case InstrStore:
				use(in.Store.Src, what)
				use(in.Store.Addr, what)
			case InstrCopyAddr:
				use(in.CopyAddr.Src, what)
				use(in.CopyAddr.Dst, what)
			case InstrAllocStack:
				def(in.AllocStack.Dst, what)
				stackSlots = append(stackSlots, in.AllocStack.Dst)
			case InstrDeallocStack:
				use(in.DeallocStack.Addr, what)
				if len(stackSlots) == 0 {
					errs = append(errs, fmt.Errorf("%s: dealloc with no live slot", what))
				} else {
					top := stackSlots[len(stackSlots)-1]
					if top != in.DeallocStack.Addr {
						errs = append(errs, fmt.Errorf("%s: dealloc of %d breaks stack discipline (top is %d)", what, in.DeallocStack.Addr, top))
					}
					stackSlots = stackSlots[:len(stackSlots)-1]
				}
			case InstrTuple:
				for _, e := range in.Tuple.Elems {
					use(e, what)
				}
				def(in.Tuple.Dst, what)
			case InstrTupleElemAddr:
				use(in.TupleElemAddr.Addr, what)
				def(in.TupleElemAddr.Dst, what)
			case InstrProjectBox:
				use(in.ProjectBox.Box, what)
				def(in.ProjectBox.Dst, what)
			case InstrBitcast:
				use(in.Bitcast.Src, what)
				def(in.Bitcast.Dst, what)
			case InstrDebugValue:
				use(in.DebugValue.Val, what)
			default:
				errs = append(errs, fmt.Errorf("%s: unknown instruction kind", what))
			}
		}
	}

	return errors.Join(errs...)
}
