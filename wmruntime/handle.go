package wmruntime

import (
	"errors"
	"fmt"
)

// Kind discriminates the kind of object a Handle refers to.
type Kind uint8

const (
	// KindServer identifies the singleton server object, always rep 0.
	KindServer Kind = iota
	// KindToplevel identifies a toplevel window.
	KindToplevel
	// KindOutput identifies a display output.
	KindOutput
	// KindSnapshot identifies a captured surface image for a given size
	// and scale.
	KindSnapshot
	// KindView identifies a surface/snapshot pair presentable on an
	// output.
	KindView
)

// String returns a lowercase label for the kind.
func (k Kind) String() string {
	switch k {
	case KindServer:
		return "server"
	case KindToplevel:
		return "toplevel"
	case KindOutput:
		return "output"
	case KindSnapshot:
		return "snapshot"
	case KindView:
		return "view"
	default:
		return "unknown"
	}
}

// Handle is a stable id referencing an object the WM is allowed to see.
// The server handle is the singleton Rep 0; every other Rep is allocated
// from the IDAllocator range [1, 2^32-1] and reused lowest-first on free.
type Handle struct {
	Rep  uint32
	Kind Kind
}

// ServerHandle is the well-known singleton handle for the server object.
var ServerHandle = Handle{Rep: 0, Kind: KindServer}

// ErrZeroID names the reserved rep 0 error. No function in this package
// returns it: a non-server handle carrying rep 0 fails validation with
// *InvalidIDError instead.
var ErrZeroID = errors.New("wmruntime: zero id")

// HandleAllocator mints Handles for the compositor side of the boundary:
// the compositor is the allocation authority for every WM-visible object
// (SPEC_FULL.md §1 "the compositor publishes toplevel lifecycles"), so it
// chooses the rep embedded in each Event before the corresponding Table
// on the WM side ever sees it. Reps are shared across all non-server
// kinds from one [1, 2^32-1] freelist, matching SPEC_FULL.md §3.
type HandleAllocator struct {
	ids *IDAllocator
}

// NewHandleAllocator returns an allocator over the full non-server rep
// range.
func NewHandleAllocator() *HandleAllocator {
	return &HandleAllocator{ids: NewIDAllocator(1, ^uint32(0))}
}

// Alloc mints a fresh handle of kind.
func (a *HandleAllocator) Alloc(kind Kind) (Handle, error) {
	rep, err := a.ids.Alloc()
	if err != nil {
		return Handle{}, err
	}
	return Handle{Rep: rep, Kind: kind}, nil
}

// Free returns h's rep to the freelist for reuse.
func (a *HandleAllocator) Free(h Handle) error {
	return a.ids.Free(h.Rep)
}

// InvalidIDError reports a handle that failed validation: either its slot
// is not live, or the live slot's kind does not match the handle's claimed
// kind. It is never produced by a panic.
type InvalidIDError struct {
	Rep  uint32
	Kind Kind
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("wmruntime: invalid id: Id{rep: %d, ty: %s}", e.Rep, e.Kind)
}
