package config

import "fmt"

// InvalidBackendError is returned when a config file or flag names a
// backend outside the set CLISpec names in SPEC_FULL.md §6.
type InvalidBackendError struct {
	Value string
}

func (e *InvalidBackendError) Error() string {
	return fmt.Sprintf("config: invalid backend %q (want one of auto, kms, tty, windowed, wayland, wl, x11, x)", e.Value)
}
