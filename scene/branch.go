package scene

import "errors"

// ErrBranchCycle is returned by AttachToBranch when attaching child to
// parent would make a branch its own descendant.
var ErrBranchCycle = errors.New("scene: branch attachment would create a cycle")

// CreateBranch allocates a new, unattached branch node.
func (s *Scene) CreateBranch() BranchIndex {
	return s.branches.Insert(Branch{})
}

// GetBranch returns the branch node at idx.
func (s *Scene) GetBranch(idx BranchIndex) (Branch, bool) {
	return s.branches.Get(idx)
}

// BranchChildren returns the ordered presentation children of branch, or
// nil if it has none.
func (s *Scene) BranchChildren(branch BranchIndex) []NodeIndex {
	return s.branchChildren[branch]
}

// AttachToBranch appends child as the new last presentation child of
// parent, detaching it from any prior branch parent first. Rejects
// attaching a branch to itself or to one of its own descendants.
func (s *Scene) AttachToBranch(parent BranchIndex, child NodeIndex) error {
	if _, ok := s.branches.Get(parent); !ok {
		return ErrNotPresent
	}
	if child.Kind == NodeKindBranch {
		if child.Branch == parent {
			return ErrBranchCycle
		}
		for anc, ok := s.branchParent[parent]; ok; anc, ok = s.branchParent[anc] {
			if anc == child.Branch {
				return ErrBranchCycle
			}
		}
		s.detachFromBranch(child)
		s.branchParent[child.Branch] = parent
	} else {
		s.detachFromBranch(child)
	}

	s.branchChildren[parent] = append(s.branchChildren[parent], child)
	return nil
}

// detachFromBranch removes child from whichever branch currently contains
// it, if any.
func (s *Scene) detachFromBranch(child NodeIndex) {
	for parent, children := range s.branchChildren {
		for i, c := range children {
			if c == child {
				s.branchChildren[parent] = append(children[:i], children[i+1:]...)
				if child.Kind == NodeKindBranch {
					delete(s.branchParent, child.Branch)
				}
				return
			}
		}
	}
}

// DestroyBranch removes branch, detaching it from its parent branch (if
// any) and orphaning its own presentation children — they are left
// unattached; the WM is expected to reattach them (SPEC_FULL.md §4.3).
// Any output presenting branch directly has its presented slot cleared.
// Absent indices are a silent no-op.
func (s *Scene) DestroyBranch(branch BranchIndex) {
	if _, ok := s.branches.Get(branch); !ok {
		return
	}

	s.detachFromBranch(NodeIndex{Kind: NodeKindBranch, Branch: branch})

	for _, child := range s.branchChildren[branch] {
		if child.Kind == NodeKindBranch {
			delete(s.branchParent, child.Branch)
		}
	}
	delete(s.branchChildren, branch)
	delete(s.branchParent, branch)

	_, _ = s.branches.Remove(branch)

	s.clearPresentedRootMatching(func(n NodeIndex) bool {
		return n.Kind == NodeKindBranch && n.Branch == branch
	})
}
