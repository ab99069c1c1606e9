package scene

import "github.com/aerugo-project/compositor-core/forest"

// SurfaceIndex, SurfaceTreeIndex, BranchIndex, and OutputIndex are
// distinct, non-interchangeable handle types by construction (each is a
// separate instantiation of forest.Index[T]), per SPEC_FULL.md §9 "Typed
// indices".
type (
	SurfaceIndex     = forest.Index[Surface]
	SurfaceTreeIndex = forest.Index[SurfaceTree]
	BranchIndex      = forest.Index[Branch]
	OutputIndex      = forest.Index[Output]
)

// SurfaceIdentity is the stable object identity of a client surface, as
// handed to the scene by the surface-protocol collaborator. The core
// treats it as opaque (SPEC_FULL.md §1 non-goals exclude wire protocol
// dispatch); a real deployment sources it from the client connection and
// wl_surface object id.
type SurfaceIdentity string

// OutputIdentity is the stable identity of a physical or virtual display,
// analogous to SurfaceIdentity.
type OutputIdentity string

// Role names the Wayland shell role, if any, a surface currently holds.
// Only role-bearing surfaces (everything but RoleNone and RoleSubsurface)
// are the root of their own SurfaceTree.
type Role uint8

const (
	RoleNone Role = iota
	RoleSubsurface
	RoleToplevel
	RolePopup
	RoleLayer
	RoleForeign
)

// Point is an offset in physical pixels.
type Point struct {
	X, Y int32
}

// BufferState is the client-assigned buffer attached to a surface:
// dimensions and scale as submitted, plus the renderer-assigned texture
// handle once uploaded (0 if not yet uploaded). Buffer allocation and
// upload are external-renderer concerns (SPEC_FULL.md §1 non-goals); this
// struct only records the bookkeeping the scene needs.
type BufferState struct {
	Assigned  bool
	TextureID uint64
	Width     int32
	Height    int32
	Scale     float64
}

// Surface is one client surface: a leaf in rendering. Relations within
// the parent subsurface tree are carried by the surfaces forest itself,
// not by this struct (SPEC_FULL.md §3 "Forest node (generic)").
type Surface struct {
	Identity SurfaceIdentity
	Role     Role
	Offset   Point
	Current  BufferState
	Pending  BufferState

	// Synchronized marks a RoleSubsurface surface as synchronized per the
	// wl_subsurface sync mode: its commits have no observable effect until
	// an ancestor non-synchronized surface commits (SPEC_FULL.md §4.4).
	// Meaningless for non-subsurface roles.
	Synchronized bool
}

// SurfaceTree is a rooted tree of surface nodes belonging to one
// top-level client-side window. Root is the role-bearing surface; Base is
// the bottom-most Z surface, reachable from Root by following "first
// subsurface child" zero or more times.
type SurfaceTree struct {
	Root SurfaceIndex
	Base SurfaceIndex
}

// Branch is an invisible grouping/transform node the WM can insert
// between an output and its content. Its own parent/sibling/child
// relations are carried by the branches forest; a branch's children may
// be surface-trees or other branches, mediated by NodeIndex.
type Branch struct {
	Offset Point
}

// NodeKind tags which arena a NodeIndex's payload resolves against.
type NodeKind uint8

const (
	NodeKindSurfaceTree NodeKind = iota
	NodeKindBranch
)

// NodeIndex is the tagged union "anything presentable on an output":
// either a SurfaceTreeIndex or a BranchIndex, per SPEC_FULL.md §9.
type NodeIndex struct {
	Kind        NodeKind
	SurfaceTree SurfaceTreeIndex
	Branch      BranchIndex
}

// SurfaceTreeNode builds a NodeIndex tagged as a surface tree.
func SurfaceTreeNode(idx SurfaceTreeIndex) NodeIndex {
	return NodeIndex{Kind: NodeKindSurfaceTree, SurfaceTree: idx}
}

// BranchNode builds a NodeIndex tagged as a branch.
func BranchNode(idx BranchIndex) NodeIndex {
	return NodeIndex{Kind: NodeKindBranch, Branch: idx}
}

// Output represents one physical or virtual display. PresentedRoot is nil
// when nothing is currently bound to this output.
type Output struct {
	Identity      OutputIdentity
	PresentedRoot *NodeIndex
}
