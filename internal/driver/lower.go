// Package driver orchestrates lowering a set of function declarations to
// CIR. Each function's prologue is generated in one uninterrupted
// single-threaded pass; independent functions fan out across goroutines.
package driver

import (
	"context"
	"fmt"
	"runtime"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"cinder/internal/cir"
	"cinder/internal/cirgen"
	"cinder/internal/decl"
	"cinder/internal/layout"
	"cinder/internal/source"
	"cinder/internal/types"
)

// LoweredFunc is the per-function product later stages consume: the
// function with its completed entry block, the variable-location table, the
// final argument ordinal, and the error-slot ordinal for throwing
// functions (0 when absent).
type LoweredFunc struct {
	Func      *cir.Func
	VarLocs   map[decl.VarID]cirgen.VarLoc
	Ordinal   int
	ErrorSlot int
}

// LowerFuncs lowers every declaration, preserving input order in the
// result. An internal invariant violation in any function aborts the whole
// unit; there is no partial recovery.
func LowerFuncs(ctx context.Context, typesIn *types.Interner, eng *layout.Engine, funcs []*decl.FuncDecl) ([]*LoweredFunc, error) {
	// Interning is not synchronized, so every type the parallel phase will
	// touch is interned up front; after this, workers only read the
	// interner. The layout cache they share carries its own lock.
	sigs := make([][]cir.ParamInfo, len(funcs))
	for i, fd := range funcs {
		sigs[i] = prepare(typesIn, eng, fd)
	}

	out := make([]*LoweredFunc, len(funcs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, fd := range funcs {
		g.Go(func() (err error) {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("driver: internal error lowering %s: %v", fd.Name, r)
				}
			}()
			lf, err := lowerOne(typesIn, eng, fd, sigs[i], funcID(i))
			if err != nil {
				return fmt.Errorf("driver: lowering %s: %w", fd.Name, err)
			}
			out[i] = lf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func funcID(i int) cir.FuncID {
	id, err := safecast.Conv[uint32](i + 1)
	if err != nil {
		panic(fmt.Errorf("driver: func id overflow: %w", err))
	}
	return cir.FuncID(id)
}

// prepare interns everything prologue emission will ask the interner for:
// the lowered signature, capture cell types, and the dynamic Self metatype.
func prepare(typesIn *types.Interner, eng *layout.Engine, fd *decl.FuncDecl) []cir.ParamInfo {
	for _, c := range fd.Captures {
		if c.DynamicSelfMetadata {
			selfT := typesIn.RegisterOpaque("Self", 0)
			typesIn.Intern(types.MakeMetatype(selfT, false))
			continue
		}
		if c.Kind == decl.CaptureMutableCell {
			typesIn.Intern(types.MakeBox(c.Type))
		}
	}
	return cir.EncodeParams(typesIn, eng, fd.Lists)
}

func lowerOne(typesIn *types.Interner, eng *layout.Engine, fd *decl.FuncDecl, sig []cir.ParamInfo, id cir.FuncID) (*LoweredFunc, error) {
	f := cir.NewFunc(id, fd.Name, fd.Result, fd.Throws)
	f.Params = sig

	g := cirgen.NewFuncGen(typesIn, eng, f)

	// The function-level scope owns every obligation the prologue
	// registers; closing it releases them all on the way out, exactly
	// once. With body lowering out of scope the close follows the
	// prologue directly.
	scope := g.OpenScope()
	if fd.Self != nil {
		g.EmitSelfParam(fd.Self)
	}
	ordinal := g.EmitProlog(fd)
	scope.Close(source.LocOf(fd.Span).AsAutoGenerated())

	if err := cir.Validate(f, typesIn); err != nil {
		return nil, err
	}
	return &LoweredFunc{
		Func:      f,
		VarLocs:   g.VarLocs,
		Ordinal:   ordinal,
		ErrorSlot: g.ErrorSlot,
	}, nil
}
