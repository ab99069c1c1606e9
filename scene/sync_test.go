package scene_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aerugo-project/compositor-core/scene"
)

func TestEffectiveCommitTargetWalksPastSynchronizedAncestors(t *testing.T) {
	sc := scene.New()

	_, err := sc.Commit(scene.CommitRequest{Identity: "root", Role: scene.RoleToplevel})
	require.NoError(t, err)

	root := scene.SurfaceIdentity("root")
	_, err = sc.Commit(scene.CommitRequest{
		Identity:     "sync-child",
		Role:         scene.RoleSubsurface,
		Parent:       &root,
		Synchronized: true,
	})
	require.NoError(t, err)

	syncChild := scene.SurfaceIdentity("sync-child")
	_, err = sc.Commit(scene.CommitRequest{
		Identity:     "sync-grandchild",
		Role:         scene.RoleSubsurface,
		Parent:       &syncChild,
		Synchronized: true,
	})
	require.NoError(t, err)

	target, ok := sc.EffectiveCommitTarget("sync-grandchild")
	require.True(t, ok)
	require.Equal(t, root, target, "walks past every synchronized ancestor up to the non-synchronized root")
}

func TestEffectiveCommitTargetStopsAtNonSynchronizedAncestor(t *testing.T) {
	sc := scene.New()

	_, err := sc.Commit(scene.CommitRequest{Identity: "root", Role: scene.RoleToplevel})
	require.NoError(t, err)

	root := scene.SurfaceIdentity("root")
	_, err = sc.Commit(scene.CommitRequest{
		Identity:     "desync-child",
		Role:         scene.RoleSubsurface,
		Parent:       &root,
		Synchronized: false,
	})
	require.NoError(t, err)

	desyncChild := scene.SurfaceIdentity("desync-child")
	_, err = sc.Commit(scene.CommitRequest{
		Identity:     "leaf",
		Role:         scene.RoleSubsurface,
		Parent:       &desyncChild,
		Synchronized: true,
	})
	require.NoError(t, err)

	target, ok := sc.EffectiveCommitTarget("leaf")
	require.True(t, ok)
	require.Equal(t, desyncChild, target, "stops at the nearest non-synchronized ancestor, not the tree root")
}

func TestEffectiveCommitTargetUnknownIdentity(t *testing.T) {
	sc := scene.New()
	_, ok := sc.EffectiveCommitTarget("missing")
	require.False(t, ok)
}
