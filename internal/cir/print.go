package cir

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"cinder/internal/types"
)

// DumpOptions configures function dumping.
type DumpOptions struct {
	// Color enables ANSI mnemonic coloring for terminal output.
	Color bool
}

// DumpFunc writes a deterministic textual form of a function. The output is
// stable across runs and is what golden tests pin.
func DumpFunc(w io.Writer, f *Func, typesIn *types.Interner, opts DumpOptions) error {
	if w == nil || f == nil {
		return nil
	}

	mnem := func(s string) string { return s }
	if opts.Color {
		c := color.New(color.FgCyan)
		mnem = func(s string) string { return c.Sprint(s) }
	}

	convs := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		convs = append(convs, fmt.Sprintf("%s %s", p.Convention, TypeString(typesIn, p.Type)))
	}
	throws := ""
	if f.Throws {
		throws = " throws"
	}
	if _, err := fmt.Fprintf(w, "func @%s: (%s) -> %s%s\n",
		f.Name, strings.Join(convs, ", "), TypeString(typesIn, f.Result), throws); err != nil {
		return err
	}

	for bi := range f.Blocks {
		blk := &f.Blocks[bi]
		argStrs := make([]string, 0, len(blk.Args))
		for _, a := range blk.Args {
			argStrs = append(argStrs, fmt.Sprintf("%s: %s", valStr(f, a), TypeString(typesIn, f.TypeOf(a))))
		}
		name := fmt.Sprintf("bb%d", blk.ID)
		if blk.ID == f.Entry {
			name = "entry"
		}
		if _, err := fmt.Fprintf(w, "%s(%s):\n", name, strings.Join(argStrs, ", ")); err != nil {
			return err
		}
		for i := range blk.Instrs {
			if _, err := fmt.Fprintf(w, "  %s\n", instrStr(f, typesIn, &blk.Instrs[i], mnem)); err != nil {
				return err
			}
		}
	}
	return nil
}

func valStr(f *Func, v ValueID) string {
	if v == NoValueID {
		return "undef"
	}
	info, ok := f.ValueInfo(v)
	if ok && info.Addr {
		return fmt.Sprintf("a%d", v)
	}
	return fmt.Sprintf("v%d", v)
}

func instrStr(f *Func, typesIn *types.Interner, in *Instr, mnem func(string) string) string {
	switch in.Kind {
	case InstrRetain:
		return fmt.Sprintf("%s %s", mnem("retain"), valStr(f, in.Retain.Val))
	case InstrRelease:
		return fmt.Sprintf("%s %s", mnem("release"), valStr(f, in.Release.Val))
	case InstrDestroyAddr:
		return fmt.Sprintf("%s %s", mnem("destroy_addr"), valStr(f, in.DestroyAddr.Addr))
	case InstrCopyValue:
		return fmt.Sprintf("%s = %s %s", valStr(f, in.CopyValue.Dst), mnem("copy_value"), valStr(f, in.CopyValue.Src))
	case InstrCopyBlock:
		return fmt.Sprintf("%s = %s %s", valStr(f, in.CopyBlock.Dst), mnem("copy_block"), valStr(f, in.CopyBlock.Src))
	case InstrStore:
		q := ""
		if in.Store.Init {
			q = " [init]"
		}
		return fmt.Sprintf("%s %s to %s%s", mnem("store"), valStr(f, in.Store.Src), valStr(f, in.Store.Addr), q)
	case InstrCopyAddr:
		var quals []string
		if in.CopyAddr.Take {
			quals = append(quals, "take")
		}
		if in.CopyAddr.Init {
			quals = append(quals, "init")
		}
		q := ""
		if len(quals) > 0 {
			q = " [" + strings.Join(quals, ",") + "]"
		}
		return fmt.Sprintf("%s %s to %s%s", mnem("copy_addr"), valStr(f, in.CopyAddr.Src), valStr(f, in.CopyAddr.Dst), q)
	case InstrAllocStack:
		return fmt.Sprintf("%s = %s %s", valStr(f, in.AllocStack.Dst), mnem("alloc_stack"), TypeString(typesIn, in.AllocStack.Type))
	case InstrDeallocStack:
		return fmt.Sprintf("%s %s", mnem("dealloc_stack"), valStr(f, in.DeallocStack.Addr))
	case InstrTuple:
		elems := make([]string, 0, len(in.Tuple.Elems))
		for _, e := range in.Tuple.Elems {
			elems = append(elems, valStr(f, e))
		}
		return fmt.Sprintf("%s = %s (%s)", valStr(f, in.Tuple.Dst), mnem("tuple"), strings.Join(elems, ", "))
	case InstrTupleElemAddr:
		return fmt.Sprintf("%s = %s %s, %d", valStr(f, in.TupleElemAddr.Dst), mnem("tuple_elem_addr"), valStr(f, in.TupleElemAddr.Addr), in.TupleElemAddr.Index)
	case InstrProjectBox:
		return fmt.Sprintf("%s = %s %s", valStr(f, in.ProjectBox.Dst), mnem("project_box"), valStr(f, in.ProjectBox.Box))
	case InstrBitcast:
		return fmt.Sprintf("%s = %s %s to %s", valStr(f, in.Bitcast.Dst), mnem("bitcast"), valStr(f, in.Bitcast.Src), TypeString(typesIn, in.Bitcast.Type))
	case InstrDebugValue:
		mn := "debug_value"
		if in.DebugValue.Addr {
			mn = "debug_value_addr"
		}
		return fmt.Sprintf("%s %s, name %q, argno %d", mnem(mn), valStr(f, in.DebugValue.Val), in.DebugValue.Name, in.DebugValue.ArgNo)
	default:
		return fmt.Sprintf("<unknown instr %d>", in.Kind)
	}
}

// TypeString renders a type for dumps and diagnostics.
func TypeString(in *types.Interner, id types.TypeID) string {
	if in == nil || id == types.NoTypeID {
		return "<invalid>"
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch tt.Kind {
	case types.KindUnit:
		return "()"
	case types.KindBool:
		return "bool"
	case types.KindInt:
		return "int"
	case types.KindFloat:
		return "float"
	case types.KindString:
		return "string"
	case types.KindUnsafeBuffer:
		return "buffer"
	case types.KindRef:
		if info, ok := in.OpaqueInfo(tt.Elem); ok {
			return "ref " + info.Name
		}
		return "ref " + TypeString(in, tt.Elem)
	case types.KindOptional:
		return TypeString(in, tt.Elem) + "?"
	case types.KindInOut:
		return "inout " + TypeString(in, tt.Elem)
	case types.KindBox:
		return "box " + TypeString(in, tt.Elem)
	case types.KindMetatype:
		if tt.DynSelf {
			return "dynself"
		}
		return "metatype " + TypeString(in, tt.Elem)
	case types.KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			return "(?)"
		}
		elems := make([]string, 0, len(info.Elems))
		for _, e := range info.Elems {
			elems = append(elems, TypeString(in, e))
		}
		return "(" + strings.Join(elems, ", ") + ")"
	case types.KindFunc:
		info, ok := in.FuncInfo(id)
		if !ok {
			return "fn(?)"
		}
		params := make([]string, 0, len(info.Params))
		for _, p := range info.Params {
			params = append(params, TypeString(in, p))
		}
		head := "fn"
		if info.Rep == types.RepBlock {
			head = "block"
		}
		return fmt.Sprintf("%s(%s) -> %s", head, strings.Join(params, ", "), TypeString(in, info.Result))
	case types.KindOpaque:
		if info, ok := in.OpaqueInfo(id); ok {
			return "opaque " + info.Name
		}
		return "opaque"
	default:
		return tt.Kind.String()
	}
}
