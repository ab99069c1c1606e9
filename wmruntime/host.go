package wmruntime

// toplevelShadow is the WM runtime's own last-known copy of one toplevel's
// attributes. It is distinct from the shell's toplevel record (see
// shell.Toplevel). initialCommit is set once the first UpdateToplevel diff
// has been folded in; no code in this package reads it.
type toplevelShadow struct {
	handle        Handle
	initialCommit bool
	features      Features
	appID         *string
	title         *string
	minSize       *Size
	maxSize       *Size
	geometry      *Geometry
	parent        *Handle
	state         ToplevelState
	decorations   DecorationMode
	resizeEdge    *ResizeEdge
	nextSerial    uint32
}

// outputShadow is the WM runtime's own last-known copy of one output's
// attributes.
type outputShadow struct {
	handle      Handle
	name        *string
	geometry    Geometry
	refreshRate uint32
}

// Host is the WM-side state that answers every capability-validated call
// the guest makes back into the compositor (HostToplevel/HostOutput/
// HostServer in the original source's wm.wit-derived bindings). It owns
// the capability Table and the shadow copies of every object currently
// visible to the WM.
type Host struct {
	table     *Table
	toplevels map[uint32]*toplevelShadow
	outputs   map[uint32]*outputShadow
	requests  chan<- Request
}

// NewHost returns a Host that reports WM requests on requests.
func NewHost(requests chan<- Request) *Host {
	return &Host{
		table:     NewTable(),
		toplevels: make(map[uint32]*toplevelShadow),
		outputs:   make(map[uint32]*outputShadow),
		requests:  requests,
	}
}

// RegisterToplevel records handle — already minted by the compositor's
// HandleAllocator and carried on the inbound NewToplevelEvent — as live,
// and seeds its shadow state. Runner holds no Host and does not call this
// on dispatch; the handle resolves only once the Host's owner has
// registered it.
func (h *Host) RegisterToplevel(handle Handle, features Features) error {
	if handle.Kind != KindToplevel {
		return &InvalidIDError{Rep: handle.Rep, Kind: handle.Kind}
	}
	if err := h.table.Register(handle); err != nil {
		return err
	}
	h.toplevels[handle.Rep] = &toplevelShadow{handle: handle, features: features}
	return nil
}

// ApplyToplevelUpdate folds an UpdateToplevel diff into the shadow state
// for handle.
func (h *Host) ApplyToplevelUpdate(handle Handle, update ToplevelUpdate) error {
	shadow, err := h.getToplevel(handle)
	if err != nil {
		return err
	}

	if update.AppID != nil {
		shadow.appID = update.AppID
	}
	if update.Title != nil {
		shadow.title = update.Title
	}
	if v, ok := update.MinSize.Value(); update.MinSize.Changed() {
		if ok {
			shadow.minSize = &v
		} else {
			shadow.minSize = nil
		}
	}
	if v, ok := update.MaxSize.Value(); update.MaxSize.Changed() {
		if ok {
			shadow.maxSize = &v
		} else {
			shadow.maxSize = nil
		}
	}
	if v, ok := update.Geometry.Value(); update.Geometry.Changed() {
		if ok {
			shadow.geometry = &v
		} else {
			shadow.geometry = nil
		}
	}
	if v, ok := update.Parent.Value(); update.Parent.Changed() {
		if ok {
			shadow.parent = &v
		} else {
			shadow.parent = nil
		}
	}
	if update.State != nil {
		shadow.state = *update.State
	}
	if update.Decorations != nil {
		shadow.decorations = *update.Decorations
	}
	if v, ok := update.ResizeEdge.Value(); update.ResizeEdge.Changed() {
		if ok {
			shadow.resizeEdge = &v
		} else {
			shadow.resizeEdge = nil
		}
	}

	shadow.initialCommit = true
	return nil
}

// DropToplevel releases the handle's slot and discards its shadow state.
// Runner does not call it when a ClosedToplevelEvent is dispatched.
func (h *Host) DropToplevel(handle Handle) error {
	if err := h.table.Release(handle); err != nil {
		return err
	}
	delete(h.toplevels, handle.Rep)
	return nil
}

// Features returns the features advertised for handle.
func (h *Host) Features(handle Handle) (Features, error) {
	shadow, err := h.getToplevel(handle)
	if err != nil {
		return Features{}, err
	}
	return shadow.features, nil
}

// AppID returns the toplevel's current app-id, or ("", false) if unset.
func (h *Host) AppID(handle Handle) (string, bool, error) {
	shadow, err := h.getToplevel(handle)
	if err != nil {
		return "", false, err
	}
	if shadow.appID == nil {
		return "", false, nil
	}
	return *shadow.appID, true, nil
}

// Title returns the toplevel's current title, or ("", false) if unset.
func (h *Host) Title(handle Handle) (string, bool, error) {
	shadow, err := h.getToplevel(handle)
	if err != nil {
		return "", false, err
	}
	if shadow.title == nil {
		return "", false, nil
	}
	return *shadow.title, true, nil
}

// State returns the toplevel's current state bitset.
func (h *Host) State(handle Handle) (ToplevelState, error) {
	shadow, err := h.getToplevel(handle)
	if err != nil {
		return 0, err
	}
	return shadow.state, nil
}

// RequestClose asks the compositor to close the toplevel referenced by
// handle.
func (h *Host) RequestClose(handle Handle) error {
	if _, err := h.getToplevel(handle); err != nil {
		return err
	}
	select {
	case h.requests <- ToplevelRequestCloseRequest{ID: handle}:
	default:
		// Requests is bounded; a full channel here means the compositor
		// is not draining it promptly. The request is dropped rather than
		// blocking the WM's dispatch thread indefinitely.
	}
	return nil
}

// SubmitConfigure assigns the next serial for handle's toplevel, folds
// cfg's cumulative attributes into the shadow state, reports the new
// configure to the compositor via the requests channel, and returns the
// assigned serial. Serials issued for one toplevel are strictly
// increasing (SPEC_FULL.md §8).
func (h *Host) SubmitConfigure(handle Handle, cfg ToplevelConfigure) (uint32, error) {
	shadow, err := h.getToplevel(handle)
	if err != nil {
		return 0, err
	}

	shadow.nextSerial++
	serial := shadow.nextSerial

	if cfg.Decorations != nil {
		shadow.decorations = *cfg.Decorations
	}
	if cfg.Parent != nil {
		shadow.parent = cfg.Parent
	}
	if cfg.State != nil {
		shadow.state = *cfg.State
	}
	if cfg.Size != nil {
		shadow.geometry = &Geometry{X: 0, Y: 0, Width: cfg.Size.Width, Height: cfg.Size.Height}
	}

	select {
	case h.requests <- SubmitConfigureRequest{ID: handle, Serial: serial, Configure: cfg}:
	default:
	}

	return serial, nil
}

// RegisterOutput records handle — already minted by the compositor — as
// live and seeds its shadow state.
func (h *Host) RegisterOutput(handle Handle, geometry Geometry) error {
	if handle.Kind != KindOutput {
		return &InvalidIDError{Rep: handle.Rep, Kind: handle.Kind}
	}
	if err := h.table.Register(handle); err != nil {
		return err
	}
	h.outputs[handle.Rep] = &outputShadow{handle: handle, geometry: geometry}
	return nil
}

// DisconnectOutput releases the handle's slot.
func (h *Host) DisconnectOutput(handle Handle) error {
	if err := h.table.Release(handle); err != nil {
		return err
	}
	delete(h.outputs, handle.Rep)
	return nil
}

// OutputGeometry returns the output's current geometry.
func (h *Host) OutputGeometry(handle Handle) (Geometry, error) {
	shadow, err := h.getOutput(handle)
	if err != nil {
		return Geometry{}, err
	}
	return shadow.geometry, nil
}

func (h *Host) getToplevel(handle Handle) (*toplevelShadow, error) {
	if handle.Kind != KindToplevel {
		return nil, &InvalidIDError{Rep: handle.Rep, Kind: handle.Kind}
	}
	if err := h.table.Validate(handle); err != nil {
		return nil, err
	}
	shadow, ok := h.toplevels[handle.Rep]
	if !ok {
		return nil, &InvalidIDError{Rep: handle.Rep, Kind: handle.Kind}
	}
	return shadow, nil
}

func (h *Host) getOutput(handle Handle) (*outputShadow, error) {
	if handle.Kind != KindOutput {
		return nil, &InvalidIDError{Rep: handle.Rep, Kind: handle.Kind}
	}
	if err := h.table.Validate(handle); err != nil {
		return nil, err
	}
	shadow, ok := h.outputs[handle.Rep]
	if !ok {
		return nil, &InvalidIDError{Rep: handle.Rep, Kind: handle.Kind}
	}
	return shadow, nil
}
