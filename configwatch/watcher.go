package configwatch

import (
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// EventKind discriminates the three cases DirWatcher's original source
// exposes; fsnotify's richer Op bitset is collapsed onto this taxonomy.
type EventKind uint8

const (
	Created EventKind = iota
	Modified
	Removed
)

// String returns a lowercase label for the kind.
func (k EventKind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is one observed change underneath the watched directory.
type Event struct {
	Kind EventKind
	Path string
}

// Watcher watches a single directory (non-recursively, matching the
// original's single DirWatcher-per-directory design) and emits a
// normalized Event per underlying filesystem notification.
type Watcher struct {
	fsw    *fsnotify.Watcher
	events chan Event
	errs   chan error
	logger *slog.Logger
}

// New starts watching dir. The caller must call Close when done.
func New(dir string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("configwatch: create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("configwatch: watch %s: %w", dir, err)
	}

	w := &Watcher{
		fsw:    fsw,
		events: make(chan Event, 16),
		errs:   make(chan error, 1),
		logger: logger,
	}
	go w.run()
	return w, nil
}

// Events returns the channel of normalized events. It is closed when Close
// is called and the underlying watcher has finished draining.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of underlying fsnotify errors.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Close stops watching and releases the underlying OS resources.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) run() {
	defer close(w.events)
	defer close(w.errs)

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			kind, ok := translate(ev.Op)
			if !ok {
				continue
			}
			w.logger.Debug("config directory event", "path", ev.Name, "kind", kind)
			w.events <- Event{Kind: kind, Path: ev.Name}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

// translate collapses fsnotify's Op bitset onto the Created/Modified/
// Removed taxonomy. Rename is treated as Removed: the watched name no
// longer resolves to the old path, matching the original source's
// DirWatcher semantics for the directory it watches.
func translate(op fsnotify.Op) (EventKind, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return Created, true
	case op.Has(fsnotify.Write), op.Has(fsnotify.Chmod):
		return Modified, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return Removed, true
	default:
		return 0, false
	}
}
