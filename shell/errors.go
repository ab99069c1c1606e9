package shell

import "errors"

// ErrUnknownToplevel is returned when a ToplevelID does not refer to a
// live record.
var ErrUnknownToplevel = errors.New("shell: unknown toplevel")

// ErrUnknownSerial is returned by AckConfigure when serial was never
// issued (or was already acked) for the given toplevel.
var ErrUnknownSerial = errors.New("shell: unknown or already-acknowledged configure serial")

// ErrUnknownSurface is returned when a surface identity does not resolve
// to a live scene surface.
var ErrUnknownSurface = errors.New("shell: surface identity has no committed scene node")

// ErrAlreadyManaged is returned by CreateToplevel/CreatePopup when the
// surface identity is already bound to a toplevel record.
var ErrAlreadyManaged = errors.New("shell: surface identity is already bound to a toplevel")

// ErrTooManyInFlight is returned by CreateToplevel/CreatePopup when the
// shell's bound on concurrently WM-visible toplevels is already saturated.
var ErrTooManyInFlight = errors.New("shell: too many toplevels in flight to the wm runtime")
