package clientspawn

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/uuid"
)

const (
	envWaylandDisplay = "WAYLAND_DISPLAY"
	envWaylandSocket  = "WAYLAND_SOCKET"
	envXDisplay       = "DISPLAY"
)

// Target selects which alternate-display environment variable a spawned
// client should see. Callers should set exactly one field; if more than
// one is set, SocketFD takes priority over DisplayName, which in turn
// takes priority over XDisplayNum, matching SPEC_FULL.md §6's "this
// takes priority over a display name" rule for WAYLAND_SOCKET.
type Target struct {
	// DisplayName sets WAYLAND_DISPLAY on the child.
	DisplayName *string
	// SocketFD sets WAYLAND_SOCKET to the given descriptor number. The
	// other end of the connection is expected to already be registered
	// as a client by the caller.
	SocketFD *int
	// XDisplayNum sets DISPLAY to ":N" on the child.
	XDisplayNum *int
}

// Prepare builds an *exec.Cmd for program, scoped per SPEC_FULL.md §6:
// WAYLAND_DISPLAY, WAYLAND_SOCKET, and DISPLAY are cleared from the
// inherited environment, at most one is re-set per target's precedence
// rule, and the child's stdin/stdout/stderr are redirected to the null
// device.
//
// release closes the null-device handle backing the child's standard
// descriptors; the caller must invoke it (typically via defer) on every
// exit path once the spawn attempt has either started or been abandoned.
func Prepare(program string, args []string, target Target) (cmd *exec.Cmd, release func(), err error) {
	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("clientspawn: open null device: %w", err)
	}
	release = func() { _ = devnull.Close() }

	cmd = exec.Command(program, args...)
	cmd.Stdin = devnull
	cmd.Stdout = devnull
	cmd.Stderr = devnull
	cmd.Env = scopedEnv(target)

	return cmd, release, nil
}

// Spawn prepares and starts program as a scoped client process. It returns
// a correlation id minted fresh for this spawn attempt; callers should
// include it in any spawn-failure log line (SPEC_FULL.md §2B) so a failure
// can be traced back to the attempt that produced it even when several
// spawns race concurrently.
//
// On success, release must be called by the caller (typically via defer)
// once the child has exited. On error, release is nil and the null-device
// handle has already been closed.
func Spawn(program string, args []string, target Target) (cmd *exec.Cmd, correlationID uuid.UUID, release func(), err error) {
	correlationID = uuid.New()

	cmd, release, err = Prepare(program, args, target)
	if err != nil {
		return nil, correlationID, nil, fmt.Errorf("clientspawn: spawn %s (correlation %s): %w", program, correlationID, err)
	}

	if err := cmd.Start(); err != nil {
		release()
		return nil, correlationID, nil, fmt.Errorf("clientspawn: spawn %s (correlation %s): %w", program, correlationID, err)
	}

	return cmd, correlationID, release, nil
}

// scopedEnv returns the parent's environment with WAYLAND_DISPLAY,
// WAYLAND_SOCKET, and DISPLAY removed, then at most one of target's
// fields re-applied per its precedence rule.
func scopedEnv(target Target) []string {
	src := os.Environ()
	env := make([]string, 0, len(src)+1)
	for _, kv := range src {
		if strings.HasPrefix(kv, envWaylandDisplay+"=") ||
			strings.HasPrefix(kv, envWaylandSocket+"=") ||
			strings.HasPrefix(kv, envXDisplay+"=") {
			continue
		}
		env = append(env, kv)
	}

	switch {
	case target.SocketFD != nil:
		env = append(env, fmt.Sprintf("%s=%d", envWaylandSocket, *target.SocketFD))
	case target.DisplayName != nil:
		env = append(env, fmt.Sprintf("%s=%s", envWaylandDisplay, *target.DisplayName))
	case target.XDisplayNum != nil:
		env = append(env, fmt.Sprintf("%s=:%d", envXDisplay, *target.XDisplayNum))
	}

	return env
}
