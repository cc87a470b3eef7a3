package decl

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"cinder/internal/types"
)

// Fixture is a declarative description of functions to lower, loaded from a
// TOML file. It stands in for the front end: every field mirrors what name
// resolution and type checking would hand this stage.
type Fixture struct {
	Funcs []fixtureFunc `toml:"func"`
}

type fixtureFunc struct {
	Name              string           `toml:"name"`
	Result            string           `toml:"result"`
	Throws            bool             `toml:"throws"`
	GuaranteedContext bool             `toml:"guaranteed_context"`
	SelfType          string           `toml:"self_type"`
	Clauses           []fixtureClause  `toml:"clause"`
	Captures          []fixtureCapture `toml:"capture"`
}

type fixtureClause struct {
	Params []fixtureParam `toml:"param"`
}

type fixtureParam struct {
	Name       string `toml:"name"` // empty for unnamed parameters
	Type       string `toml:"type"`
	Convention string `toml:"convention"` // defaults to "owned"
	Mutable    bool   `toml:"mutable"`
}

type fixtureCapture struct {
	Name        string `toml:"name"`
	Type        string `toml:"type"`
	Kind        string `toml:"kind"`
	Mutable     bool   `toml:"mutable"`
	DynamicSelf bool   `toml:"dynamic_self"`
}

// LoadFixture reads a fixture file and resolves it against the interner.
func LoadFixture(path string, in *types.Interner) ([]*FuncDecl, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("decl: read fixture: %w", err)
	}
	return ParseFixture(data, in)
}

// ParseFixture resolves fixture TOML into function declarations.
func ParseFixture(data []byte, in *types.Interner) ([]*FuncDecl, error) {
	var fx Fixture
	if err := toml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("decl: decode fixture: %w", err)
	}

	nextVar := VarID(1)
	newVar := func(name string, mutable bool) *VarDecl {
		v := &VarDecl{ID: nextVar, Name: name, Mutable: mutable}
		nextVar++
		return v
	}

	out := make([]*FuncDecl, 0, len(fx.Funcs))
	for fi := range fx.Funcs {
		ff := &fx.Funcs[fi]
		if ff.Name == "" {
			return nil, fmt.Errorf("decl: func #%d has no name", fi)
		}
		fd := &FuncDecl{
			Name:              ff.Name,
			Throws:            ff.Throws,
			GuaranteedContext: ff.GuaranteedContext,
			Result:            in.Builtins().Unit,
		}
		if ff.Result != "" {
			t, err := ParseType(in, ff.Result)
			if err != nil {
				return nil, fmt.Errorf("decl: func %s result: %w", ff.Name, err)
			}
			fd.Result = t
		}
		if ff.SelfType != "" {
			t, err := ParseType(in, ff.SelfType)
			if err != nil {
				return nil, fmt.Errorf("decl: func %s self: %w", ff.Name, err)
			}
			fd.Self = &ParamDecl{
				Var:     newVar("self", false),
				Type:    t,
				Passing: PassGuaranteed,
			}
		}
		for ci := range ff.Clauses {
			var list ParamList
			for pi := range ff.Clauses[ci].Params {
				fp := &ff.Clauses[ci].Params[pi]
				pd, err := resolveParam(in, fp, newVar)
				if err != nil {
					return nil, fmt.Errorf("decl: func %s clause %d param %d: %w", ff.Name, ci, pi, err)
				}
				list.Params = append(list.Params, pd)
			}
			fd.Lists = append(fd.Lists, list)
		}
		for i := range ff.Captures {
			fc := &ff.Captures[i]
			cv, err := resolveCapture(in, fc, newVar)
			if err != nil {
				return nil, fmt.Errorf("decl: func %s capture %d: %w", ff.Name, i, err)
			}
			fd.Captures = append(fd.Captures, cv)
		}
		out = append(out, fd)
	}
	return out, nil
}

func resolveParam(in *types.Interner, fp *fixtureParam, newVar func(string, bool) *VarDecl) (ParamDecl, error) {
	t, err := ParseType(in, fp.Type)
	if err != nil {
		return ParamDecl{}, err
	}
	passing, err := parsePassing(fp.Convention)
	if err != nil {
		return ParamDecl{}, err
	}
	if in.Kind(t) == types.KindInOut && passing != PassInOutAliasable {
		passing = PassInOut
	}
	pd := ParamDecl{Type: t, Passing: passing}
	if fp.Name != "" && fp.Name != "_" {
		pd.Var = newVar(fp.Name, fp.Mutable)
	}
	return pd, nil
}

func resolveCapture(in *types.Interner, fc *fixtureCapture, newVar func(string, bool) *VarDecl) (CapturedValue, error) {
	cv := CapturedValue{DynamicSelfMetadata: fc.DynamicSelf}
	if fc.DynamicSelf {
		// The reserved metadata capture carries no variable.
		return cv, nil
	}
	t, err := ParseType(in, fc.Type)
	if err != nil {
		return CapturedValue{}, err
	}
	switch fc.Kind {
	case "", "by_value":
		cv.Kind = CaptureByValue
	case "none":
		cv.Kind = CaptureNone
	case "mutable_cell":
		cv.Kind = CaptureMutableCell
	case "address_alias":
		cv.Kind = CaptureAddressAlias
	default:
		return CapturedValue{}, fmt.Errorf("unknown capture kind %q", fc.Kind)
	}
	cv.Type = t
	cv.Var = newVar(fc.Name, fc.Mutable)
	return cv, nil
}

func parsePassing(s string) (Passing, error) {
	switch s {
	case "", "owned":
		return PassOwned, nil
	case "guaranteed":
		return PassGuaranteed, nil
	case "unowned":
		return PassUnowned, nil
	case "inout":
		return PassInOut, nil
	case "inout_aliasable":
		return PassInOutAliasable, nil
	case "in_constant":
		return PassInConstant, nil
	default:
		return PassOwned, fmt.Errorf("unknown convention %q", s)
	}
}
