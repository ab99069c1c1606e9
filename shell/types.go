package shell

import (
	"github.com/aerugo-project/compositor-core/scene"
	"github.com/aerugo-project/compositor-core/transaction"
	"github.com/aerugo-project/compositor-core/wmruntime"
)

// ToplevelID is the shell's own stable identity for a toplevel or popup
// record, independent of the WM-visible wmruntime.Handle bound to it.
type ToplevelID uint64

// proposedConfigure is one outstanding configure the shell has sent but
// not yet had acknowledged: the size/state tuple that becomes current once
// its serial is acked and the client commits again.
type proposedConfigure struct {
	size  *wmruntime.Size
	state *wmruntime.ToplevelState
}

// Toplevel is one toplevel or popup record (SPEC_FULL.md §3 "Toplevel
// record"). Popups reuse the same record shape; Role records which of the
// two a record is. The initial configure is the same for both roles.
type Toplevel struct {
	ID      ToplevelID
	Surface scene.SurfaceIdentity
	Role    scene.Role
	Parent  *ToplevelID

	WMHandle wmruntime.Handle

	AppID      *string
	Title      *string
	MinSize    *wmruntime.Size
	MaxSize    *wmruntime.Size
	Geometry   wmruntime.Geometry
	State      wmruntime.ToplevelState
	Decoration wmruntime.DecorationMode
	ResizeEdge wmruntime.ResizeEdge

	// configureSerial is the shell's own monotonically increasing serial
	// counter for the client handshake (SPEC_FULL.md §8 scenario 5),
	// distinct from the serial wmruntime.Host.SubmitConfigure assigns on
	// the WM side of the boundary.
	configureSerial      uint32
	initialConfigureSent bool

	transactionBySerial map[uint32]transaction.ID
	pendingBySerial     map[uint32]proposedConfigure
	ackedSerial         *uint32
}
