// Package host declares the host-link collaborator: the build
// lifecycle notifications and pause relay that reach back across the
// transport link. The transport itself is out of scope for the core
// (spec.md §1).
package host

// State is an opaque snapshot returned by GetHostState; the core never
// interprets it, only forwards it to callers of Host.
type State any

// Host is the collaborator surface named in spec.md §6.
type Host interface {
	PauseBuild(on bool)
	// HandleBuildStart receives the build name that the dispatcher has
	// already drained from the command buffer, with its NUL terminator
	// stripped.
	HandleBuildStart(nameBuffer []byte)
	HandleBuildStop(flags uint8)
	GetHostState() State
}
