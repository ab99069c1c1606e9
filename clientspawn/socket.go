package clientspawn

import (
	"fmt"
	"os"
	"path/filepath"
)

// maxSocketScan bounds AllocateSocketName's search so a runtime directory
// wedged full of stale sockets fails fast instead of scanning forever.
const maxSocketScan = 32

// AllocateSocketName returns the first name of the form "wayland-N"
// (N starting at 0) for which neither the socket path nor its companion
// lock file exists under dir, per SPEC_FULL.md §6. It does not create or
// bind anything; binding the returned name is the external collaborator
// surface's responsibility (§1).
func AllocateSocketName(dir string) (string, error) {
	for n := 0; n < maxSocketScan; n++ {
		name := fmt.Sprintf("wayland-%d", n)
		socketPath := filepath.Join(dir, name)
		lockPath := socketPath + ".lock"
		if !exists(socketPath) && !exists(lockPath) {
			return name, nil
		}
	}
	return "", ErrNoFreeSocketName
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
