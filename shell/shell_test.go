package shell_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aerugo-project/compositor-core/scene"
	"github.com/aerugo-project/compositor-core/shell"
	"github.com/aerugo-project/compositor-core/transaction"
	"github.com/aerugo-project/compositor-core/wmruntime"
)

// TestInitialConfigureHandshake implements SPEC_FULL.md §8 scenario 5:
// client creates a toplevel-role surface and commits; shell sends a
// configure with empty size and serial S0; client acks S0 and commits;
// shell marks the transaction bound to S0 finished; the scene exposes a
// mapped surface-tree whose root is the toplevel.
func TestInitialConfigureHandshake(t *testing.T) {
	events := make(chan wmruntime.Event, 8)
	tracker := transaction.NewTracker()
	sh := shell.NewShell(tracker, events)
	sc := scene.New()

	surface := scene.SurfaceIdentity("xdg-toplevel-1")
	id, err := sh.CreateToplevel(surface, wmruntime.Features{CanResize: true})
	require.NoError(t, err)

	newEvt := <-events
	newToplevel, ok := newEvt.(wmruntime.NewToplevelEvent)
	require.True(t, ok)
	require.True(t, newToplevel.Features.CanResize)

	// Client creates the toplevel-role surface and commits.
	_, err = sc.Commit(scene.CommitRequest{Identity: surface, Role: scene.RoleToplevel})
	require.NoError(t, err)
	require.NoError(t, sh.OnCommit(sc, surface))

	tl, ok := sh.Get(id)
	require.True(t, ok)
	require.True(t, tl.Surface == surface)

	// No configure was submitted through SubmitConfigure, only the implicit
	// initial one OnCommit issues; its serial is S0 == 0.
	const s0 = uint32(0)

	require.NoError(t, sh.AckConfigure(id, s0))

	ackEvt := <-events
	ack, ok := ackEvt.(wmruntime.AckToplevelEvent)
	require.True(t, ok)
	require.Equal(t, s0, ack.Serial)

	// Client commits again: the acked state is promoted to current.
	_, err = sc.Commit(scene.CommitRequest{Identity: surface, Role: scene.RoleToplevel})
	require.NoError(t, err)
	require.NoError(t, sh.OnCommit(sc, surface))

	treeIdx, ok := sc.GetSurfaceTreeIndex(surface)
	require.True(t, ok, "scene exposes a mapped surface-tree for the toplevel")
	tree, ok := sc.GetSurfaceTree(treeIdx)
	require.True(t, ok)
	rootSurf, ok := sc.GetSurface(tree.Root)
	require.True(t, ok)
	require.Equal(t, surface, rootSurf.Identity)
}

func TestCreateToplevelRejectsDoubleManagement(t *testing.T) {
	events := make(chan wmruntime.Event, 8)
	sh := shell.NewShell(transaction.NewTracker(), events)

	surface := scene.SurfaceIdentity("dup")
	_, err := sh.CreateToplevel(surface, wmruntime.Features{})
	require.NoError(t, err)

	_, err = sh.CreateToplevel(surface, wmruntime.Features{})
	require.ErrorIs(t, err, shell.ErrAlreadyManaged)
}

func TestAckConfigureRejectsUnknownSerial(t *testing.T) {
	events := make(chan wmruntime.Event, 8)
	sh := shell.NewShell(transaction.NewTracker(), events)

	id, err := sh.CreateToplevel("surf", wmruntime.Features{})
	require.NoError(t, err)
	<-events // drain NewToplevelEvent

	err = sh.AckConfigure(id, 42)
	require.ErrorIs(t, err, shell.ErrUnknownSerial)
}

func TestOnCommitIsNoOpForUnmanagedSurface(t *testing.T) {
	events := make(chan wmruntime.Event, 8)
	sh := shell.NewShell(transaction.NewTracker(), events)
	sc := scene.New()

	_, err := sc.Commit(scene.CommitRequest{Identity: "plain", Role: scene.RoleToplevel})
	require.NoError(t, err)

	require.NoError(t, sh.OnCommit(sc, "plain"))
}

func TestOnCommitWithUnknownSurfaceReturnsError(t *testing.T) {
	events := make(chan wmruntime.Event, 8)
	sh := shell.NewShell(transaction.NewTracker(), events)
	sc := scene.New()

	err := sh.OnCommit(sc, "never-committed")
	require.ErrorIs(t, err, shell.ErrUnknownSurface)
}

// TestSyncSubsurfaceCommitAppliesAtAncestor implements the sync-subsurface
// rule of SPEC_FULL.md §4.4: a commit targeting a synchronized subsurface
// resolves, through the scene, to its nearest non-synchronized ancestor
// (here the toplevel root) before any shell state is touched.
func TestSyncSubsurfaceCommitAppliesAtAncestor(t *testing.T) {
	events := make(chan wmruntime.Event, 8)
	sh := shell.NewShell(transaction.NewTracker(), events)
	sc := scene.New()

	root := scene.SurfaceIdentity("root")
	id, err := sh.CreateToplevel(root, wmruntime.Features{})
	require.NoError(t, err)
	<-events

	_, err = sc.Commit(scene.CommitRequest{Identity: root, Role: scene.RoleToplevel})
	require.NoError(t, err)

	child := scene.SurfaceIdentity("sync-child")
	_, err = sc.Commit(scene.CommitRequest{
		Identity:     child,
		Role:         scene.RoleSubsurface,
		Parent:       &root,
		Synchronized: true,
	})
	require.NoError(t, err)

	require.NoError(t, sh.OnCommit(sc, child))

	tl, ok := sh.Get(id)
	require.True(t, ok)
	require.True(t, tl.Surface == root)
}

func TestRequestMaximizeForwardsStateAndSurvivesInvalidID(t *testing.T) {
	events := make(chan wmruntime.Event, 8)
	sh := shell.NewShell(transaction.NewTracker(), events)

	id, err := sh.CreateToplevel("surf", wmruntime.Features{CanMaximize: true})
	require.NoError(t, err)
	<-events

	require.NoError(t, sh.RequestMaximize(id))
	updEvt := <-events
	upd, ok := updEvt.(wmruntime.UpdateToplevelEvent)
	require.True(t, ok)
	require.NotNil(t, upd.Update.State)
	require.True(t, upd.Update.State.Has(wmruntime.StateMaximized))

	tl, _ := sh.Get(id)
	require.True(t, tl.State.Has(wmruntime.StateMaximized))

	err = sh.RequestMaximize(shell.ToplevelID(9999))
	require.ErrorIs(t, err, shell.ErrUnknownToplevel)
}

func TestDestroyToplevelReleasesHandleAndNotifies(t *testing.T) {
	events := make(chan wmruntime.Event, 8)
	sh := shell.NewShell(transaction.NewTracker(), events)

	id, err := sh.CreateToplevel("surf", wmruntime.Features{})
	require.NoError(t, err)
	newEvt := <-events
	handle := newEvt.(wmruntime.NewToplevelEvent).ID

	sh.DestroyToplevel(id)

	closedEvt := <-events
	closed, ok := closedEvt.(wmruntime.ClosedToplevelEvent)
	require.True(t, ok)
	require.Equal(t, handle, closed.ID)

	_, stillThere := sh.Get(id)
	require.False(t, stillThere)
}

// TestCreateToplevelRejectsBeyondInFlightLimit implements the semaphore
// admission control noted in SPEC_FULL.md §2B: once the configured cap on
// concurrently WM-visible toplevels is reached, further creates fail
// without sending on the Events channel, and freeing one slot (via
// DestroyToplevel) admits the next create.
func TestCreateToplevelRejectsBeyondInFlightLimit(t *testing.T) {
	events := make(chan wmruntime.Event, 8)
	sh := shell.NewShellWithLimit(transaction.NewTracker(), events, 1)

	first, err := sh.CreateToplevel("surf-1", wmruntime.Features{})
	require.NoError(t, err)
	<-events // drain the NewToplevelEvent for surf-1

	_, err = sh.CreateToplevel("surf-2", wmruntime.Features{})
	require.ErrorIs(t, err, shell.ErrTooManyInFlight)

	sh.DestroyToplevel(first)
	<-events // drain the ClosedToplevelEvent for surf-1

	_, err = sh.CreateToplevel("surf-2", wmruntime.Features{})
	require.NoError(t, err)
}
