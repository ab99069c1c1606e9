package scene

import "github.com/aerugo-project/compositor-core/forest"

// Scene is the union of the four typed forests plus the lookup tables
// mapping client-visible identities onto scene indices (SPEC_FULL.md §3
// "Scene"). The Scene exclusively owns all scene nodes; every other
// subsystem references nodes by index only.
type Scene struct {
	surfaces     *forest.Forest[Surface]
	surfaceTrees *forest.Forest[SurfaceTree]
	branches     *forest.Forest[Branch]
	outputs      *forest.Forest[Output]

	surfaceByIdentity map[SurfaceIdentity]SurfaceIndex
	surfaceTreeByRoot map[SurfaceIdentity]SurfaceTreeIndex
	outputByIdentity  map[OutputIdentity]OutputIndex

	// branchParent and branchChildren track the heterogeneous
	// "presentation" containment described in SPEC_FULL.md §3 ("children
	// may be surface-trees or other branches"): a forest.Forest[Branch]
	// alone cannot express branch-to-surface-tree edges, so containment
	// is tracked alongside the branches arena instead of inside it.
	branchParent   map[BranchIndex]BranchIndex
	branchChildren map[BranchIndex][]NodeIndex
}

// New returns an empty Scene.
func New() *Scene {
	return &Scene{
		surfaces:          forest.New[Surface](),
		surfaceTrees:      forest.New[SurfaceTree](),
		branches:          forest.New[Branch](),
		outputs:           forest.New[Output](),
		surfaceByIdentity: make(map[SurfaceIdentity]SurfaceIndex),
		surfaceTreeByRoot: make(map[SurfaceIdentity]SurfaceTreeIndex),
		outputByIdentity:  make(map[OutputIdentity]OutputIndex),
		branchParent:      make(map[BranchIndex]BranchIndex),
		branchChildren:    make(map[BranchIndex][]NodeIndex),
	}
}

// CommitRequest carries what the surface-protocol collaborator knows
// about a surface at commit time: its role, its subsurface parent (if
// any), the desired full ordering of its own direct subsurface children,
// and the finalized offset/buffer state. SPEC_FULL.md §1 treats the wire
// protocol as an external collaborator; CommitRequest is the logical
// event that collaborator hands to the scene.
type CommitRequest struct {
	Identity     SurfaceIdentity
	Role         Role
	Parent       *SurfaceIdentity
	ChildOrder   []SurfaceIdentity
	Offset       Point
	Buffer       BufferState
	Synchronized bool
}

// Commit reconciles one client commit into the scene, per SPEC_FULL.md
// §4.3. If no surface node exists for req.Identity, one is created with
// default offset and detached relations. The pending buffer is promoted
// to current, the node is (re)parented under req.Parent if req.Parent is
// set and differs from its current parent, its declared child ordering is lowered into the forest
// sibling chain, and — for role-bearing surfaces — the surface's
// SurfaceTree is created (first commit) or has its Base recomputed.
func (s *Scene) Commit(req CommitRequest) (SurfaceIndex, error) {
	idx, existed := s.surfaceByIdentity[req.Identity]
	if !existed {
		idx = s.surfaces.Insert(Surface{Identity: req.Identity})
		s.surfaceByIdentity[req.Identity] = idx
	}

	node, _ := s.surfaces.GetMut(idx)
	node.Role = req.Role
	node.Offset = req.Offset
	node.Pending = req.Buffer
	node.Current = req.Buffer
	node.Synchronized = req.Synchronized

	if req.Parent != nil {
		parentIdx, ok := s.surfaceByIdentity[*req.Parent]
		if !ok {
			return idx, ErrParentNotFound
		}
		if s.surfaces.Parent(idx) != parentIdx {
			if err := s.surfaces.AddChild(parentIdx, idx); err != nil {
				return idx, err
			}
		}
	}

	for _, childIdentity := range req.ChildOrder {
		childIdx, ok := s.surfaceByIdentity[childIdentity]
		if !ok {
			// The child has not committed yet; it will reparent itself
			// (and take its place at the end of the order) on its own
			// first commit.
			continue
		}
		// AddChild rejects a node already in the parent's subtree, so an
		// existing child is detached first and then re-appended in order.
		if s.surfaces.Parent(childIdx) == idx {
			s.surfaces.Detach(childIdx)
		}
		_ = s.surfaces.AddChild(idx, childIdx)
	}

	if req.Role != RoleSubsurface && req.Role != RoleNone {
		if treeIdx, ok := s.surfaceTreeByRoot[req.Identity]; ok {
			s.recomputeBase(treeIdx)
		} else {
			treeIdx := s.surfaceTrees.Insert(SurfaceTree{Root: idx, Base: idx})
			s.surfaceTreeByRoot[req.Identity] = treeIdx
		}
	}

	return idx, nil
}

// recomputeBase walks the first-child chain from a tree's root to find
// the new bottom-most-Z surface, per the invariant in SPEC_FULL.md §3.
func (s *Scene) recomputeBase(treeIdx SurfaceTreeIndex) {
	tree, ok := s.surfaceTrees.GetMut(treeIdx)
	if !ok {
		return
	}
	base := tree.Root
	for {
		fc := s.surfaces.FirstChild(base)
		if fc.IsNil() {
			break
		}
		base = fc
	}
	tree.Base = base
}

// SurfaceDestroyed removes the surface node for identity. If it was the
// root of its subsurface tree, a surviving child is promoted to root, or
// the tree is removed entirely if no child survives it; any output
// presenting the removed tree has its presented slot cleared. A stale or
// absent identity is a silent no-op (SPEC_FULL.md §4.3 failure
// semantics).
func (s *Scene) SurfaceDestroyed(identity SurfaceIdentity) {
	idx, ok := s.surfaceByIdentity[identity]
	if !ok {
		return
	}
	delete(s.surfaceByIdentity, identity)

	firstChild := s.surfaces.FirstChild(idx)
	_, _ = s.surfaces.Remove(idx)

	treeIdx, wasRoot := s.surfaceTreeByRoot[identity]
	if wasRoot {
		delete(s.surfaceTreeByRoot, identity)
		s.promoteOrRemoveTree(treeIdx, firstChild)
		return
	}

	// Not a tree root: if it was some tree's current Base, that tree's
	// Base must be recomputed (the former Base is always a leaf, so
	// removing it cannot orphan further descendants).
	for _, ti := range s.surfaceTreeByRoot {
		tree, ok := s.surfaceTrees.Get(ti)
		if ok && tree.Base == idx {
			s.recomputeBase(ti)
		}
	}
}

// promoteOrRemoveTree handles the loss of a tree's root surface. If the
// root had a surviving first child, that child becomes the new root
// (everything still reachable from it stays in the tree); otherwise the
// tree record itself is removed and any output presenting it is cleared.
func (s *Scene) promoteOrRemoveTree(treeIdx SurfaceTreeIndex, survivingChild SurfaceIndex) {
	if !survivingChild.IsNil() {
		tree, ok := s.surfaceTrees.GetMut(treeIdx)
		if ok {
			tree.Root = survivingChild
			if childSurf, ok := s.surfaces.Get(survivingChild); ok {
				s.surfaceTreeByRoot[childSurf.Identity] = treeIdx
			}
			s.recomputeBase(treeIdx)
			return
		}
	}

	_, _ = s.surfaceTrees.Remove(treeIdx)
	s.clearPresentedRootMatching(func(n NodeIndex) bool {
		return n.Kind == NodeKindSurfaceTree && n.SurfaceTree == treeIdx
	})
}

// CreateOutput registers output and returns its index. Calling it again
// for an already-registered identity returns the existing index
// unchanged, matching the "rewiring operations are idempotent" failure
// semantics of SPEC_FULL.md §4.3.
func (s *Scene) CreateOutput(identity OutputIdentity) OutputIndex {
	if idx, ok := s.outputByIdentity[identity]; ok {
		return idx
	}
	idx := s.outputs.Insert(Output{Identity: identity})
	s.outputByIdentity[identity] = idx
	return idx
}

// DestroyOutput unregisters output. Any presented-root binding it held is
// discarded with it. Absent identities are a silent no-op.
func (s *Scene) DestroyOutput(identity OutputIdentity) {
	idx, ok := s.outputByIdentity[identity]
	if !ok {
		return
	}
	delete(s.outputByIdentity, identity)
	_, _ = s.outputs.Remove(idx)
}

// GetOutputIndex looks up the index registered for identity.
func (s *Scene) GetOutputIndex(identity OutputIdentity) (OutputIndex, bool) {
	idx, ok := s.outputByIdentity[identity]
	return idx, ok
}

// GetOutput returns the output node at idx.
func (s *Scene) GetOutput(idx OutputIndex) (Output, bool) {
	return s.outputs.Get(idx)
}

// GetSurfaceIndex looks up the index registered for identity.
func (s *Scene) GetSurfaceIndex(identity SurfaceIdentity) (SurfaceIndex, bool) {
	idx, ok := s.surfaceByIdentity[identity]
	return idx, ok
}

// GetSurface returns the surface node at idx.
func (s *Scene) GetSurface(idx SurfaceIndex) (Surface, bool) {
	return s.surfaces.Get(idx)
}

// GetSurfaceTreeIndex looks up the tree rooted at the role-bearing
// surface identified by rootIdentity.
func (s *Scene) GetSurfaceTreeIndex(rootIdentity SurfaceIdentity) (SurfaceTreeIndex, bool) {
	idx, ok := s.surfaceTreeByRoot[rootIdentity]
	return idx, ok
}

// GetSurfaceTree returns the tree node at idx.
func (s *Scene) GetSurfaceTree(idx SurfaceTreeIndex) (SurfaceTree, bool) {
	return s.surfaceTrees.Get(idx)
}

// SetOutputRoot binds node as the composition root for output, replacing
// any previous binding. Reports false if output does not resolve to a
// live node (stale-handle lookups are a silent no-op, per SPEC_FULL.md
// §4.3 failure semantics).
func (s *Scene) SetOutputRoot(output OutputIndex, node NodeIndex) bool {
	out, ok := s.outputs.GetMut(output)
	if !ok {
		return false
	}
	n := node
	out.PresentedRoot = &n
	return true
}

// clearPresentedRootMatching nils out PresentedRoot on every output for
// which match reports true.
func (s *Scene) clearPresentedRootMatching(match func(NodeIndex) bool) {
	for _, idx := range s.outputByIdentity {
		out, ok := s.outputs.GetMut(idx)
		if !ok || out.PresentedRoot == nil {
			continue
		}
		if match(*out.PresentedRoot) {
			out.PresentedRoot = nil
		}
	}
}
