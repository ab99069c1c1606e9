package wmruntime

import "errors"

// ErrServerSingleton is returned by Table.Register when asked to register
// a server-kind handle; the server is always the fixed singleton rep 0.
var ErrServerSingleton = errors.New("wmruntime: server handle is a fixed singleton, not registrable")

// ErrAlreadyRegistered is returned by Table.Register when rep is already
// live, under any kind.
var ErrAlreadyRegistered = errors.New("wmruntime: rep already registered")

// Table is the capability table backing the WM boundary: it tracks which
// (rep, kind) pairs are currently live so every call from the WM into the
// host can be validated before touching any compositor state.
//
// The compositor is the allocation authority for WM-visible handles (it
// "publishes" toplevel/output lifecycles, per SPEC_FULL.md §1): it mints
// reps with its own HandleAllocator and embeds them in the Events it
// sends. Table only records which compositor-minted reps are currently
// live, for validating calls the WM makes back in.
type Table struct {
	kinds map[uint32]Kind
}

// NewTable returns a Table with the server singleton already registered.
func NewTable() *Table {
	return &Table{
		kinds: map[uint32]Kind{0: KindServer},
	}
}

// Register records handle as live. kind must not be KindServer and rep
// must not already be registered.
func (t *Table) Register(handle Handle) error {
	if handle.Kind == KindServer {
		return ErrServerSingleton
	}
	if _, live := t.kinds[handle.Rep]; live {
		return ErrAlreadyRegistered
	}
	t.kinds[handle.Rep] = handle.Kind
	return nil
}

// Release marks h's slot dead. The compositor is responsible for
// returning the rep to its own HandleAllocator once it observes the
// release.
func (t *Table) Release(h Handle) error {
	if h.Rep == 0 {
		return errors.New("wmruntime: cannot release the server handle")
	}
	if err := t.Validate(h); err != nil {
		return err
	}
	delete(t.kinds, h.Rep)
	return nil
}

// Validate reports whether h currently resolves: its slot must be live and
// must carry exactly the kind h claims.
func (t *Table) Validate(h Handle) error {
	kind, ok := t.kinds[h.Rep]
	if !ok || kind != h.Kind {
		return &InvalidIDError{Rep: h.Rep, Kind: h.Kind}
	}
	return nil
}
