package wmruntime

import "fmt"

// MissingGlobalKind distinguishes why a required Wayland global was
// rejected at startup.
type MissingGlobalKind uint8

const (
	// GlobalMissing means the interface was not advertised at all.
	GlobalMissing MissingGlobalKind = iota
	// GlobalIncompatibleVersion means the interface was advertised but at
	// a version outside the compatible range.
	GlobalIncompatibleVersion
)

// MissingGlobal describes one startup global-binding failure.
type MissingGlobal struct {
	Kind      MissingGlobalKind
	Interface string

	// Advertised and CompatibleMin/CompatibleMax are only meaningful when
	// Kind == GlobalIncompatibleVersion.
	Advertised    uint32
	CompatibleMin uint32
	CompatibleMax uint32
}

func (m MissingGlobal) Error() string {
	switch m.Kind {
	case GlobalIncompatibleVersion:
		return fmt.Sprintf(
			"global %q advertised version %d, compatible range is [%d, %d]",
			m.Interface, m.Advertised, m.CompatibleMin, m.CompatibleMax,
		)
	default:
		return fmt.Sprintf("global %q is missing", m.Interface)
	}
}

// SetupError is returned when the compositor cannot complete startup. It
// is either a collection of missing/incompatible required globals, or an
// I/O failure (e.g. the listening socket could not be bound).
type SetupError struct {
	MissingGlobals []MissingGlobal
	Cause          error
}

func (e *SetupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("setup failed: %v", e.Cause)
	}
	msg := "setup failed: missing or incompatible globals:"
	for _, mg := range e.MissingGlobals {
		msg += " [" + mg.Error() + "]"
	}
	return msg
}

func (e *SetupError) Unwrap() error {
	return e.Cause
}

// RequiredGlobal names a Wayland/compositor-extension global this module
// depends on, and the version range it knows how to speak.
type RequiredGlobal struct {
	Interface  string
	MinVersion uint32
	MaxVersion uint32
}

// DefaultRequiredGlobals lists the globals aerugo-core's own WM-side
// extensions (SPEC_FULL.md §1/§2) need a compatible backend to advertise
// before a WM runtime session is allowed to start. A backend that cannot
// advertise these has nothing for the Runner to drive and Setup should
// abort per the documented failure mode (b) rather than start degraded.
var DefaultRequiredGlobals = []RequiredGlobal{
	{Interface: "aerugo_wm_v1", MinVersion: 1, MaxVersion: 1},
	{Interface: "ext_foreign_toplevel_list_v1", MinVersion: 1, MaxVersion: 1},
}

// CheckGlobals validates that advertised (interface name -> version)
// satisfies every entry in required, returning a populated *SetupError
// enumerating every failure found, or nil if all of them are satisfied.
//
// It deliberately collects every failure instead of stopping at the
// first one, so the startup-abort report named in SPEC_FULL.md §7's
// failure mode (b) ("exit with an enumerated report") lists everything
// wrong with the backend in one pass.
func CheckGlobals(advertised map[string]uint32, required []RequiredGlobal) *SetupError {
	var missing []MissingGlobal
	for _, req := range required {
		version, ok := advertised[req.Interface]
		if !ok {
			missing = append(missing, MissingGlobal{
				Kind:      GlobalMissing,
				Interface: req.Interface,
			})
			continue
		}
		if version < req.MinVersion || version > req.MaxVersion {
			missing = append(missing, MissingGlobal{
				Kind:          GlobalIncompatibleVersion,
				Interface:     req.Interface,
				Advertised:    version,
				CompatibleMin: req.MinVersion,
				CompatibleMax: req.MaxVersion,
			})
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &SetupError{MissingGlobals: missing}
}
