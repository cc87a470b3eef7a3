package cirgen

import (
	"fmt"

	"cinder/internal/cir"
	"cinder/internal/source"
)

// CleanupKind enumerates the deferred release actions the prologue can owe.
type CleanupKind uint8

const (
	// CleanupReleaseValue releases a loadable managed value.
	CleanupReleaseValue CleanupKind = iota
	// CleanupDestroyAddr destroys the value stored at an address.
	CleanupDestroyAddr
	// CleanupReleaseBox releases a heap cell that owns captured storage.
	CleanupReleaseBox
	// CleanupDeallocStack releases a stack slot.
	CleanupDeallocStack
	// CleanupWriteBack copies a shadow cell back to its in-out address.
	CleanupWriteBack
)

func (k CleanupKind) String() string {
	switch k {
	case CleanupReleaseValue:
		return "release_value"
	case CleanupDestroyAddr:
		return "destroy_addr"
	case CleanupReleaseBox:
		return "release_box"
	case CleanupDeallocStack:
		return "dealloc_stack"
	case CleanupWriteBack:
		return "write_back"
	default:
		return fmt.Sprintf("CleanupKind(%d)", k)
	}
}

type cleanupState uint8

const (
	cleanupActive cleanupState = iota
	cleanupForwarded
	cleanupPopped
)

// Cleanup is one deferred release action. Loc is kept for diagnostics; the
// action fires exactly once, when its owning scope closes, unless ownership
// is forwarded first.
type Cleanup struct {
	Kind CleanupKind
	Loc  source.Loc

	Val  cir.ValueID // the resource: value, address, box, or stack slot
	Dest cir.ValueID // write-back target address (CleanupWriteBack only)

	state cleanupState
}

// CleanupHandle refers to a registered cleanup. The zero handle is invalid.
type CleanupHandle int

// NoCleanup marks the absence of a cleanup obligation.
const NoCleanup CleanupHandle = 0

// CleanupStack is the LIFO stack of deferred release actions, bracketed by
// scope markers. Registrations land above the innermost open scope; closing
// a scope fires everything registered since its open, in strict reverse
// registration order.
type CleanupStack struct {
	entries []Cleanup
	scopes  []int // entry count at each open scope
}

// PushScope opens a scope bracket.
func (cs *CleanupStack) PushScope() {
	cs.scopes = append(cs.scopes, len(cs.entries))
}

// Register appends a cleanup above the current scope marker and returns its
// handle.
func (cs *CleanupStack) Register(c Cleanup) CleanupHandle {
	c.state = cleanupActive
	cs.entries = append(cs.entries, c)
	return CleanupHandle(len(cs.entries)) // handle is index+1
}

// Deactivate marks a cleanup as forwarded so it will not fire. Forwarding a
// dead cleanup is an internal invariant violation.
func (cs *CleanupStack) Deactivate(h CleanupHandle) {
	c := cs.lookup(h)
	if c.state != cleanupActive {
		panic(fmt.Errorf("cirgen: cleanup %d forwarded or popped twice", h))
	}
	c.state = cleanupForwarded
}

// IsActive reports whether a handle refers to a pending cleanup.
func (cs *CleanupStack) IsActive(h CleanupHandle) bool {
	if h == NoCleanup {
		return false
	}
	return cs.lookup(h).state == cleanupActive
}

// PopScope closes the innermost scope: every cleanup registered since the
// matching PushScope fires in reverse registration order, exactly once,
// then is marked popped. Inner entries stay in place (popped) so stale
// handles are detected rather than misread.
func (cs *CleanupStack) PopScope(g *FuncGen, loc source.Loc) {
	if len(cs.scopes) == 0 {
		panic(fmt.Errorf("cirgen: scope pop with no open scope"))
	}
	mark := cs.scopes[len(cs.scopes)-1]
	cs.scopes = cs.scopes[:len(cs.scopes)-1]
	for i := len(cs.entries) - 1; i >= mark; i-- {
		c := &cs.entries[i]
		if c.state == cleanupActive {
			cs.fire(g, c, loc)
		}
		// Entries stay in place once popped so stale handles are detected
		// rather than misread after later registrations.
		c.state = cleanupPopped
	}
}

// Depth returns the number of open scopes.
func (cs *CleanupStack) Depth() int {
	return len(cs.scopes)
}

// Pending returns how many active cleanups sit above the innermost open
// scope marker (or above the bottom when no scope is open).
func (cs *CleanupStack) Pending() int {
	mark := 0
	if len(cs.scopes) > 0 {
		mark = cs.scopes[len(cs.scopes)-1]
	}
	n := 0
	for i := mark; i < len(cs.entries); i++ {
		if cs.entries[i].state == cleanupActive {
			n++
		}
	}
	return n
}

func (cs *CleanupStack) lookup(h CleanupHandle) *Cleanup {
	if h <= 0 || int(h) > len(cs.entries) {
		panic(fmt.Errorf("cirgen: bad cleanup handle %d", h))
	}
	return &cs.entries[h-1]
}

func (cs *CleanupStack) fire(g *FuncGen, c *Cleanup, loc source.Loc) {
	l := loc.AsAutoGenerated()
	switch c.Kind {
	case CleanupReleaseValue:
		g.B.EmitRelease(l, c.Val)
	case CleanupDestroyAddr:
		g.B.EmitDestroyAddr(l, c.Val)
	case CleanupReleaseBox:
		g.B.EmitRelease(l, c.Val)
	case CleanupDeallocStack:
		g.B.EmitDeallocStack(l, c.Val)
	case CleanupWriteBack:
		g.B.EmitCopyAddr(l, c.Val, c.Dest, false, false)
	default:
		panic(fmt.Errorf("cirgen: bad cleanup kind %d", c.Kind))
	}
}

// Scope is a defer-friendly bracket over the cleanup stack. Every Open must
// reach exactly one Close on every path out of the owning region.
type Scope struct {
	g      *FuncGen
	closed bool
}

// OpenScope brackets a region of cleanup registrations.
func (g *FuncGen) OpenScope() *Scope {
	g.Cleanups.PushScope()
	return &Scope{g: g}
}

// Close pops the scope, firing its cleanups. Closing twice is an internal
// invariant violation.
func (s *Scope) Close(loc source.Loc) {
	if s.closed {
		panic(fmt.Errorf("cirgen: scope closed twice"))
	}
	s.closed = true
	s.g.Cleanups.PopScope(s.g, loc)
}
