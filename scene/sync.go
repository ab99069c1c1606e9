package scene

// EffectiveCommitTarget implements the sync-subsurface rule of
// SPEC_FULL.md §4.4: a commit to a synchronized subsurface has no
// observable effect until an ancestor non-synchronized surface commits,
// so the shell must walk from the committed surface up to the nearest
// non-synchronized ancestor (or the tree root) and apply state there
// instead. Returns the identity to actually commit shell state against,
// and false if identity does not resolve to a live surface.
func (s *Scene) EffectiveCommitTarget(identity SurfaceIdentity) (SurfaceIdentity, bool) {
	idx, ok := s.surfaceByIdentity[identity]
	if !ok {
		return "", false
	}

	cur := idx
	target := identity
	for {
		surf, ok := s.surfaces.Get(cur)
		if !ok {
			break
		}
		if !surf.Synchronized {
			target = surf.Identity
			break
		}
		parent := s.surfaces.Parent(cur)
		if parent.IsNil() {
			target = surf.Identity
			break
		}
		cur = parent
	}
	return target, true
}
