// Package decl is the read-only source declaration model consumed by CIR
// generation: parameter lists, captured variables, and variable identities.
// Generation stages never mutate it.
package decl

import (
	"fmt"

	"cinder/internal/source"
	"cinder/internal/types"
)

// VarID identifies a declared variable within one compilation.
type VarID uint32

// NoVarID marks the absence of a variable.
const NoVarID VarID = 0

// VarDecl is a declared variable or named parameter.
type VarDecl struct {
	ID      VarID
	Name    string
	Mutable bool
	Span    source.Span
}

// Passing is the declared ownership family of a parameter. The convention
// encoder maps it to a concrete direct or indirect calling convention per
// flattened scalar leaf.
type Passing uint8

const (
	// PassOwned transfers a +1 claim to the callee.
	PassOwned Passing = iota
	// PassGuaranteed lends the value for the call's duration.
	PassGuaranteed
	// PassUnowned passes at +0 without keeping the value alive.
	PassUnowned
	// PassInOut passes the address of caller storage for mutation.
	PassInOut
	// PassInOutAliasable is PassInOut without exclusivity guarantees.
	PassInOutAliasable
	// PassInConstant is reserved and unused by current conventions.
	PassInConstant
)

func (p Passing) String() string {
	switch p {
	case PassOwned:
		return "owned"
	case PassGuaranteed:
		return "guaranteed"
	case PassUnowned:
		return "unowned"
	case PassInOut:
		return "inout"
	case PassInOutAliasable:
		return "inout_aliasable"
	case PassInConstant:
		return "in_constant"
	default:
		return fmt.Sprintf("Passing(%d)", p)
	}
}

// ParamDecl is one declared parameter. Unnamed parameters have Var == nil;
// their values are materialized and immediately discarded.
type ParamDecl struct {
	Var     *VarDecl
	Type    types.TypeID
	Passing Passing
}

// Named reports whether the parameter binds a variable.
func (p ParamDecl) Named() bool {
	return p.Var != nil
}

// ParamList is one level of a (possibly curried) parameter clause.
type ParamList struct {
	Params []ParamDecl
}

// CaptureKind classifies how a closure accesses a variable from its
// defining scope.
type CaptureKind uint8

const (
	// CaptureNone carries no runtime value.
	CaptureNone CaptureKind = iota
	// CaptureByValue copies the value into the closure.
	CaptureByValue
	// CaptureMutableCell passes a heap cell owning the captured storage.
	CaptureMutableCell
	// CaptureAddressAlias passes the address of caller-owned, non-escaping
	// storage.
	CaptureAddressAlias
)

func (k CaptureKind) String() string {
	switch k {
	case CaptureNone:
		return "none"
	case CaptureByValue:
		return "by_value"
	case CaptureMutableCell:
		return "mutable_cell"
	case CaptureAddressAlias:
		return "address_alias"
	default:
		return fmt.Sprintf("CaptureKind(%d)", k)
	}
}

// CapturedValue is one entry of a closure's capture list.
type CapturedValue struct {
	Var  *VarDecl
	Kind CaptureKind
	Type types.TypeID

	// DynamicSelfMetadata marks the reserved capture carrying the enclosing
	// context's dynamic Self metatype. It is not a general capture kind.
	DynamicSelfMetadata bool
}

// FuncDecl describes one function to lower: its curried parameter clauses
// (outermost first), result type, throwing flag, and capture list.
type FuncDecl struct {
	Name   string
	Span   source.Span
	Lists  []ParamList
	Result types.TypeID
	Throws bool

	Captures []CapturedValue

	// GuaranteedContext marks closures whose caller promises the capture
	// storage outlives the call, so captures arrive borrowed.
	GuaranteedContext bool

	// Self, when set, is the implicit receiver bound ahead of the main
	// prologue (methods and accessors).
	Self *ParamDecl
}
