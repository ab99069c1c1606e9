package clientspawn_test

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/aerugo-project/compositor-core/clientspawn"
)

func withEnv(t *testing.T, key, value string) {
	t.Helper()
	prev, had := os.LookupEnv(key)
	require.NoError(t, os.Setenv(key, value))
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, prev)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func envValue(t *testing.T, env []string, key string) (string, bool) {
	t.Helper()
	for _, kv := range env {
		if len(kv) > len(key) && kv[:len(key)] == key && kv[len(key)] == '=' {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

func TestPrepareClearsAlternateDisplayVarsByDefault(t *testing.T) {
	withEnv(t, "WAYLAND_DISPLAY", "wayland-0")
	withEnv(t, "WAYLAND_SOCKET", "9")
	withEnv(t, "DISPLAY", ":1")

	cmd, release, err := clientspawn.Prepare("true", nil, clientspawn.Target{})
	require.NoError(t, err)
	defer release()

	_, hasWaylandDisplay := envValue(t, cmd.Env, "WAYLAND_DISPLAY")
	_, hasWaylandSocket := envValue(t, cmd.Env, "WAYLAND_SOCKET")
	_, hasDisplay := envValue(t, cmd.Env, "DISPLAY")
	require.False(t, hasWaylandDisplay)
	require.False(t, hasWaylandSocket)
	require.False(t, hasDisplay)
}

func TestPrepareSetsDisplayNameOnly(t *testing.T) {
	name := "wayland-2"
	cmd, release, err := clientspawn.Prepare("true", nil, clientspawn.Target{DisplayName: &name})
	require.NoError(t, err)
	defer release()

	v, ok := envValue(t, cmd.Env, "WAYLAND_DISPLAY")
	require.True(t, ok)
	require.Equal(t, "wayland-2", v)

	_, hasSocket := envValue(t, cmd.Env, "WAYLAND_SOCKET")
	require.False(t, hasSocket)
}

// TestPrepareSocketFDTakesPriorityOverDisplayName implements SPEC_FULL.md
// §6's precedence rule: when both a socket descriptor and a display name
// are set, WAYLAND_SOCKET wins and WAYLAND_DISPLAY is not set.
func TestPrepareSocketFDTakesPriorityOverDisplayName(t *testing.T) {
	name := "wayland-2"
	fd := 7
	cmd, release, err := clientspawn.Prepare("true", nil, clientspawn.Target{
		DisplayName: &name,
		SocketFD:    &fd,
	})
	require.NoError(t, err)
	defer release()

	v, ok := envValue(t, cmd.Env, "WAYLAND_SOCKET")
	require.True(t, ok)
	require.Equal(t, "7", v)

	_, hasDisplayName := envValue(t, cmd.Env, "WAYLAND_DISPLAY")
	require.False(t, hasDisplayName)
}

func TestPrepareSetsXDisplayNumOnly(t *testing.T) {
	n := 3
	cmd, release, err := clientspawn.Prepare("true", nil, clientspawn.Target{XDisplayNum: &n})
	require.NoError(t, err)
	defer release()

	v, ok := envValue(t, cmd.Env, "DISPLAY")
	require.True(t, ok)
	require.Equal(t, ":3", v)
}

func TestPrepareRedirectsStandardDescriptorsToNullDevice(t *testing.T) {
	cmd, release, err := clientspawn.Prepare("true", nil, clientspawn.Target{})
	require.NoError(t, err)
	defer release()

	require.NotNil(t, cmd.Stdin)
	require.NotNil(t, cmd.Stdout)
	require.NotNil(t, cmd.Stderr)
}

func TestSpawnAssignsDistinctCorrelationIDsAndStartsProcess(t *testing.T) {
	cmd1, id1, release1, err := clientspawn.Spawn("true", nil, clientspawn.Target{})
	require.NoError(t, err)
	defer release1()
	require.NotEqual(t, uuid.Nil, id1)
	require.NoError(t, cmd1.Wait())

	cmd2, id2, release2, err := clientspawn.Spawn("true", nil, clientspawn.Target{})
	require.NoError(t, err)
	defer release2()
	require.NotEqual(t, id1, id2)
	require.NoError(t, cmd2.Wait())
}

func TestSpawnFailureReportsCorrelationID(t *testing.T) {
	_, id, release, err := clientspawn.Spawn("clientspawn-nonexistent-binary", nil, clientspawn.Target{})
	require.Error(t, err)
	require.Nil(t, release)
	require.Contains(t, err.Error(), id.String())
}
