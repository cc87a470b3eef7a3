package layout

// Target describes the ABI target triple and its register properties.
//
// Only x86_64-linux-gnu is implemented.
type Target struct {
	Triple   string // e.g. "x86_64-linux-gnu"
	PtrSize  int    // bytes
	PtrAlign int    // bytes

	// MaxDirectBytes is the largest value the ABI returns in registers;
	// anything bigger goes through a caller-supplied output address.
	MaxDirectBytes int
}

func X86_64LinuxGNU() Target {
	return Target{
		Triple:         "x86_64-linux-gnu",
		PtrSize:        8,
		PtrAlign:       8,
		MaxDirectBytes: 16,
	}
}
