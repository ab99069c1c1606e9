package scene

import "errors"

// ErrParentNotFound is returned by Commit when a subsurface commit names a
// parent identity the scene has no surface node for.
var ErrParentNotFound = errors.New("scene: parent surface not found")

// ErrNotPresent is returned when an operation names a branch index that
// does not resolve to a live node.
var ErrNotPresent = errors.New("scene: index not present")
