package shell

import (
	"golang.org/x/sync/semaphore"
	"golang.org/x/text/unicode/norm"

	"github.com/aerugo-project/compositor-core/scene"
	"github.com/aerugo-project/compositor-core/transaction"
	"github.com/aerugo-project/compositor-core/wmruntime"
)

// DefaultMaxInFlight bounds the number of toplevels simultaneously visible
// to the WM runtime when a shell is constructed with NewShell. Tune with
// NewShellWithLimit for deployments expecting heavier client load.
const DefaultMaxInFlight = 4096

// Shell is the exclusive owner of every toplevel/popup record, per
// SPEC_FULL.md §3's ownership summary. It mints the wmruntime.Handle
// embedded in every outbound NewToplevelEvent itself (SPEC_FULL.md §1 "the
// compositor publishes toplevel lifecycles"), and binds every configure it
// issues to a transaction.ID on the shared tracker.
type Shell struct {
	tracker  *transaction.Tracker
	wmEvents chan<- wmruntime.Event
	handles  *wmruntime.HandleAllocator
	inFlight *semaphore.Weighted

	toplevels  map[ToplevelID]*Toplevel
	byIdentity map[scene.SurfaceIdentity]ToplevelID
	nextID     ToplevelID
}

// NewShell returns a Shell that binds configure transactions on tracker
// and emits wmruntime Events on wmEvents, admitting up to
// DefaultMaxInFlight toplevels to the WM runtime concurrently.
func NewShell(tracker *transaction.Tracker, wmEvents chan<- wmruntime.Event) *Shell {
	return NewShellWithLimit(tracker, wmEvents, DefaultMaxInFlight)
}

// NewShellWithLimit is NewShell with an explicit cap on the number of
// toplevels concurrently visible to the WM runtime. Once the cap is
// reached, CreateToplevel/CreatePopup fail with ErrTooManyInFlight instead
// of blocking the caller or the Events channel sender (SPEC_FULL.md §2B's
// semaphore-backed admission control, distinct from the Events channel's
// own fixed buffer size).
func NewShellWithLimit(tracker *transaction.Tracker, wmEvents chan<- wmruntime.Event, maxInFlight int64) *Shell {
	return &Shell{
		tracker:    tracker,
		wmEvents:   wmEvents,
		handles:    wmruntime.NewHandleAllocator(),
		inFlight:   semaphore.NewWeighted(maxInFlight),
		toplevels:  make(map[ToplevelID]*Toplevel),
		byIdentity: make(map[scene.SurfaceIdentity]ToplevelID),
	}
}

// CreateToplevel mints a toplevel record and WM handle for a surface that
// just adopted the toplevel role, and notifies the WM runtime with a
// NewToplevelEvent. Surface must not already be managed by this shell.
func (s *Shell) CreateToplevel(surface scene.SurfaceIdentity, features wmruntime.Features) (ToplevelID, error) {
	return s.createManaged(surface, scene.RoleToplevel, nil, features)
}

// CreatePopup mints a popup record parented to an existing toplevel or
// popup. The WM runtime boundary has no distinct popup event kind, so
// popups are represented through the same NewToplevelEvent vocabulary as
// toplevels; Role distinguishes them for shell-internal policy.
func (s *Shell) CreatePopup(surface scene.SurfaceIdentity, parent ToplevelID, features wmruntime.Features) (ToplevelID, error) {
	if _, ok := s.toplevels[parent]; !ok {
		return 0, ErrUnknownToplevel
	}
	return s.createManaged(surface, scene.RolePopup, &parent, features)
}

func (s *Shell) createManaged(surface scene.SurfaceIdentity, role scene.Role, parent *ToplevelID, features wmruntime.Features) (ToplevelID, error) {
	if _, managed := s.byIdentity[surface]; managed {
		return 0, ErrAlreadyManaged
	}
	if !s.inFlight.TryAcquire(1) {
		return 0, ErrTooManyInFlight
	}

	handle, err := s.handles.Alloc(wmruntime.KindToplevel)
	if err != nil {
		s.inFlight.Release(1)
		return 0, err
	}

	s.nextID++
	id := s.nextID
	s.toplevels[id] = &Toplevel{
		ID:                  id,
		Surface:             surface,
		Role:                role,
		Parent:              parent,
		WMHandle:            handle,
		transactionBySerial: make(map[uint32]transaction.ID),
		pendingBySerial:     make(map[uint32]proposedConfigure),
	}
	s.byIdentity[surface] = id

	s.wmEvents <- wmruntime.NewToplevelEvent{ID: handle, Features: features}

	return id, nil
}

// DestroyToplevel tears down the record for id: releases its WM handle
// back to the allocator and notifies the WM runtime with a
// ClosedToplevelEvent. A stale or absent id is a no-op, matching the
// scene's own stale-handle failure semantics.
func (s *Shell) DestroyToplevel(id ToplevelID) {
	tl, ok := s.toplevels[id]
	if !ok {
		return
	}
	delete(s.toplevels, id)
	delete(s.byIdentity, tl.Surface)
	_ = s.handles.Free(tl.WMHandle)
	s.inFlight.Release(1)
	s.wmEvents <- wmruntime.ClosedToplevelEvent{ID: tl.WMHandle}
}

// Get returns the toplevel record for id.
func (s *Shell) Get(id ToplevelID) (*Toplevel, bool) {
	tl, ok := s.toplevels[id]
	return tl, ok
}

// ToplevelFor returns the ToplevelID managing surface, if any.
func (s *Shell) ToplevelFor(surface scene.SurfaceIdentity) (ToplevelID, bool) {
	id, ok := s.byIdentity[surface]
	return id, ok
}

// OnCommit is called after the surface-protocol collaborator has already
// lowered a client commit into sc (via scene.Scene.Commit) for identity.
// It implements the sync-subsurface rule (SPEC_FULL.md §4.4) by resolving
// the effective commit target through the scene before touching any
// toplevel state, applies the acked-state-becomes-current rule, and drives
// the initial-configure handshake on a toplevel's first commit.
//
// Surfaces not managed by this shell (plain subsurfaces with no toplevel
// ancestor yet, or unrelated role-bearing surfaces) are a silent no-op.
func (s *Shell) OnCommit(sc *scene.Scene, identity scene.SurfaceIdentity) error {
	target, ok := sc.EffectiveCommitTarget(identity)
	if !ok {
		return ErrUnknownSurface
	}

	id, managed := s.byIdentity[target]
	if !managed {
		return nil
	}
	tl := s.toplevels[id]

	if tl.ackedSerial != nil {
		s.applyAcked(tl)
	}

	if !tl.initialConfigureSent {
		tl.initialConfigureSent = true
		// Empty size, role-appropriate defaults: the client is left to pick
		// its own preferred size on the first configure.
		s.issueConfigure(tl, nil, nil)
	}

	return nil
}

// SubmitConfigure issues a new configure for id with the given proposed
// size and state (the WM-driven "configure builder" capability of
// SPEC_FULL.md §4.5, surfaced here for the shell's own client-facing
// serial space). Returns the assigned serial.
func (s *Shell) SubmitConfigure(id ToplevelID, size *wmruntime.Size, state *wmruntime.ToplevelState) (uint32, error) {
	tl, ok := s.toplevels[id]
	if !ok {
		return 0, ErrUnknownToplevel
	}
	return s.issueConfigure(tl, size, state), nil
}

func (s *Shell) issueConfigure(tl *Toplevel, size *wmruntime.Size, state *wmruntime.ToplevelState) uint32 {
	serial := tl.configureSerial
	tl.configureSerial++

	txID := s.tracker.CreateID()
	tl.transactionBySerial[serial] = txID
	tl.pendingBySerial[serial] = proposedConfigure{size: size, state: state}

	return serial
}

// AckConfigure records the client's acknowledgement of serial for id: it
// finishes the transaction bound to that serial (cascading to any
// dependents the compositor chained onto it) and forwards the
// acknowledgement to the WM runtime via an AckToplevelEvent. The proposed
// size/state tuple becomes current on the toplevel's next OnCommit call,
// not immediately (SPEC_FULL.md §4.4 "acked-state-becomes-current").
func (s *Shell) AckConfigure(id ToplevelID, serial uint32) error {
	tl, ok := s.toplevels[id]
	if !ok {
		return ErrUnknownToplevel
	}
	txID, ok := tl.transactionBySerial[serial]
	if !ok {
		return ErrUnknownSerial
	}

	s.tracker.Finish(txID)
	delete(tl.transactionBySerial, serial)
	tl.ackedSerial = &serial

	s.wmEvents <- wmruntime.AckToplevelEvent{ID: tl.WMHandle, Serial: serial}

	return nil
}

// applyAcked promotes the proposed size/state bound to tl's most recently
// acked serial to current, and discards every pending configure up to and
// including that serial (older unacked proposals are superseded).
func (s *Shell) applyAcked(tl *Toplevel) {
	serial := *tl.ackedSerial
	if cfg, ok := tl.pendingBySerial[serial]; ok {
		if cfg.size != nil {
			tl.Geometry.Width = cfg.size.Width
			tl.Geometry.Height = cfg.size.Height
		}
		if cfg.state != nil {
			tl.State = *cfg.state
		}
	}
	for pending := range tl.pendingBySerial {
		if pending <= serial {
			delete(tl.pendingBySerial, pending)
		}
	}
	tl.ackedSerial = nil
}

// ForwardUpdate folds update into id's own record (mirroring
// wmruntime.Host.ApplyToplevelUpdate's diff application on the WM side of
// the boundary) and forwards it to the WM runtime as an
// UpdateToplevelEvent. This is the single channel through which every
// user-policy-bearing client request (move, resize, maximize, fullscreen,
// minimize, show-window-menu, reposition) reaches the WM runtime boundary,
// per SPEC_FULL.md §4.4 — the wire-protocol specifics of each request are
// out of this module's scope (SPEC_FULL.md §1 non-goals), but the
// resulting attribute diff is not.
func (s *Shell) ForwardUpdate(id ToplevelID, update wmruntime.ToplevelUpdate) error {
	tl, ok := s.toplevels[id]
	if !ok {
		return ErrUnknownToplevel
	}

	if update.AppID != nil {
		normalized := normalizeIdentity(*update.AppID)
		update.AppID = &normalized
		tl.AppID = update.AppID
	}
	if update.Title != nil {
		normalized := normalizeIdentity(*update.Title)
		update.Title = &normalized
		tl.Title = update.Title
	}
	if v, has := update.MinSize.Value(); update.MinSize.Changed() {
		if has {
			tl.MinSize = &v
		} else {
			tl.MinSize = nil
		}
	}
	if v, has := update.MaxSize.Value(); update.MaxSize.Changed() {
		if has {
			tl.MaxSize = &v
		} else {
			tl.MaxSize = nil
		}
	}
	if v, has := update.Geometry.Value(); update.Geometry.Changed() {
		if has {
			tl.Geometry = v
		}
	}
	if update.State != nil {
		tl.State = *update.State
	}
	if update.Decorations != nil {
		tl.Decoration = *update.Decorations
	}
	if v, has := update.ResizeEdge.Value(); update.ResizeEdge.Changed() {
		if has {
			tl.ResizeEdge = v
		} else {
			tl.ResizeEdge = wmruntime.ResizeEdgeNone
		}
	}

	s.wmEvents <- wmruntime.UpdateToplevelEvent{ID: tl.WMHandle, Update: update}
	return nil
}

// RequestMaximize sets the maximized state bit and forwards the change.
func (s *Shell) RequestMaximize(id ToplevelID) error {
	return s.toggleState(id, wmruntime.StateMaximized, true)
}

// RequestUnmaximize clears the maximized state bit and forwards the change.
func (s *Shell) RequestUnmaximize(id ToplevelID) error {
	return s.toggleState(id, wmruntime.StateMaximized, false)
}

// RequestFullscreen sets the fullscreen state bit and forwards the change.
func (s *Shell) RequestFullscreen(id ToplevelID) error {
	return s.toggleState(id, wmruntime.StateFullscreen, true)
}

// RequestUnfullscreen clears the fullscreen state bit and forwards the
// change.
func (s *Shell) RequestUnfullscreen(id ToplevelID) error {
	return s.toggleState(id, wmruntime.StateFullscreen, false)
}

// RequestResize forwards an interactive resize request carrying the grab
// edge.
func (s *Shell) RequestResize(id ToplevelID, edge wmruntime.ResizeEdge) error {
	tl, ok := s.toplevels[id]
	if !ok {
		return ErrUnknownToplevel
	}
	state := tl.State | wmruntime.StateResizing
	return s.ForwardUpdate(id, wmruntime.ToplevelUpdate{
		State:      &state,
		ResizeEdge: wmruntime.UpdateTo(edge),
	})
}

// normalizeIdentity applies NFC normalization to a client-supplied app-id
// or title before it crosses the WM boundary, so two clients that spell
// the same string with different Unicode decompositions are not treated
// as distinct identities on the wire.
func normalizeIdentity(s string) string {
	return norm.NFC.String(s)
}

func (s *Shell) toggleState(id ToplevelID, flag wmruntime.ToplevelState, set bool) error {
	tl, ok := s.toplevels[id]
	if !ok {
		return ErrUnknownToplevel
	}
	state := tl.State
	if set {
		state |= flag
	} else {
		state &^= flag
	}
	return s.ForwardUpdate(id, wmruntime.ToplevelUpdate{State: &state})
}
