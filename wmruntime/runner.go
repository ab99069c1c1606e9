package wmruntime

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"github.com/google/uuid"
)

// ErrFuelExhausted is returned by a GuestInvoker when a dispatch call
// consumed its entire metering budget without the guest returning. Per
// SPEC_FULL.md §4.5/§5, this is always fatal to the WM runtime.
var ErrFuelExhausted = errors.New("wmruntime: fuel budget exhausted")

// GuestInvoker delivers one Event to the guest policy program and reports
// how much of the fuel budget it consumed. Real deployments back this with
// a metered WASM Component Model host call; this module defines the
// interface so the dispatch loop, fuel accounting, and degraded-mode
// transition are exercised independently of any particular guest runtime
// (see DESIGN.md for why no WASM engine dependency is present in the
// retrieved pack).
type GuestInvoker interface {
	Dispatch(ctx context.Context, ev Event, fuelBudget uint64) (fuelUsed uint64, err error)
}

// Runner is the dedicated dispatch loop described in SPEC_FULL.md §4.5:
// one goroutine, pinned for the WM session's lifetime, that receives
// Events in FIFO order and performs one metered GuestInvoker.Dispatch call
// per event.
type Runner struct {
	sessionID  uuid.UUID
	events     <-chan Event
	requests   chan<- Request
	invoker    GuestInvoker
	fuelBudget uint64
	logger     *slog.Logger
}

// NewRunner constructs a Runner identified by a freshly minted WM session
// id (distinct from the generational handle rep space: this id survives
// across the WM thread's lifetime and is carried on every log line so a
// restarted session cannot be confused with its predecessor). logger may
// be nil, in which case slog.Default() is used.
func NewRunner(events <-chan Event, requests chan<- Request, invoker GuestInvoker, fuelBudget uint64, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		sessionID:  uuid.New(),
		events:     events,
		requests:   requests,
		invoker:    invoker,
		fuelBudget: fuelBudget,
		logger:     logger,
	}
}

// SessionID returns the WM session identifier assigned at construction.
func (r *Runner) SessionID() uuid.UUID {
	return r.sessionID
}

// Run drains events until the channel is closed, ctx is cancelled, or a
// dispatch exhausts its fuel budget. It always closes requests before
// returning, so the compositor observes termination via the outbound
// channel's closed state (SPEC_FULL.md §4.5 "Cancellation").
func (r *Runner) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(r.requests)

	r.logger.Info("wm runtime session starting", "session_id", r.sessionID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-r.events:
			if !ok {
				return nil
			}

			used, err := r.invoker.Dispatch(ctx, ev, r.fuelBudget)
			if err != nil {
				if errors.Is(err, ErrFuelExhausted) {
					// SPEC_FULL.md §7 failure mode (c) calls for a single
					// warning line here, not process death: the caller is
					// expected to keep the compositor running WM-less.
					r.logger.Warn("wm runtime exhausted fuel budget, entering degraded mode",
						"fuel_budget", r.fuelBudget, "fuel_used", used)
					r.sendBestEffort(TerminateWmRequest{})
					return ErrFuelExhausted
				}

				r.logger.Error("wm guest dispatch returned an error", "error", err)
				continue
			}

			r.logger.Debug("wm dispatch completed", "fuel_used", used)
		}
	}
}

// sendBestEffort attempts to enqueue req without blocking; Requests is a
// bounded channel and the runner must never deadlock against a compositor
// that has already started tearing down.
func (r *Runner) sendBestEffort(req Request) {
	select {
	case r.requests <- req:
	default:
	}
}
