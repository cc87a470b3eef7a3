package source

// Loc is a span plus emission context, attached to IR instructions and to
// deferred cleanups for diagnostics.
type Loc struct {
	Span Span

	// Prologue marks locations emitted while materializing a function's
	// entry arguments, before any user statement.
	Prologue bool

	// AutoGenerated marks locations on compiler-synthesized instructions
	// with no direct source counterpart.
	AutoGenerated bool
}

// LocOf wraps a span in a plain location.
func LocOf(s Span) Loc {
	return Loc{Span: s}
}

// AsPrologue returns the location marked as prologue emission.
func (l Loc) AsPrologue() Loc {
	l.Prologue = true
	return l
}

// AsAutoGenerated returns the location marked as compiler-synthesized.
func (l Loc) AsAutoGenerated() Loc {
	l.AutoGenerated = true
	return l
}
