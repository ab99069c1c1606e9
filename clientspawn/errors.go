package clientspawn

import "errors"

// ErrNoFreeSocketName is returned by AllocateSocketName when every
// wayland-N name up to maxSocketScan is already taken.
var ErrNoFreeSocketName = errors.New("clientspawn: no free wayland-N socket name")
