package wmruntime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/aerugo-project/compositor-core/wmruntime"
)

type countingInvoker struct {
	dispatched int
	failAt     int // 0 means never fail
}

func (c *countingInvoker) Dispatch(_ context.Context, _ wmruntime.Event, budget uint64) (uint64, error) {
	c.dispatched++
	if c.failAt != 0 && c.dispatched == c.failAt {
		return budget, wmruntime.ErrFuelExhausted
	}
	return 1, nil
}

func TestNewRunnerAssignsDistinctSessionIDs(t *testing.T) {
	events := make(chan wmruntime.Event)
	requests := make(chan wmruntime.Request)

	a := wmruntime.NewRunner(events, requests, &countingInvoker{}, 10, nil)
	b := wmruntime.NewRunner(events, requests, &countingInvoker{}, 10, nil)

	require.NotEqual(t, uuid.Nil, a.SessionID())
	require.NotEqual(t, a.SessionID(), b.SessionID())
}

func TestRunnerDeliversEventsInOrderAndClosesRequestsOnChannelClose(t *testing.T) {
	events := make(chan wmruntime.Event, 4)
	requests := make(chan wmruntime.Request, 4)
	invoker := &countingInvoker{}

	runner := wmruntime.NewRunner(events, requests, invoker, 10000, nil)

	done := make(chan error, 1)
	go func() {
		done <- runner.Run(context.Background())
	}()

	events <- wmruntime.NewToplevelEvent{ID: wmruntime.Handle{Rep: 1, Kind: wmruntime.KindToplevel}}
	events <- wmruntime.ClosedToplevelEvent{ID: wmruntime.Handle{Rep: 1, Kind: wmruntime.KindToplevel}}
	close(events)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not exit after events channel closed")
	}

	require.Equal(t, 2, invoker.dispatched)

	_, open := <-requests
	require.False(t, open, "requests channel must be closed once the runner exits")
}

func TestRunnerFuelExhaustionTerminatesAndSignalsDegradedMode(t *testing.T) {
	events := make(chan wmruntime.Event, 4)
	requests := make(chan wmruntime.Request, 4)
	invoker := &countingInvoker{failAt: 1}

	runner := wmruntime.NewRunner(events, requests, invoker, 10, nil)

	done := make(chan error, 1)
	go func() {
		done <- runner.Run(context.Background())
	}()

	events <- wmruntime.NewToplevelEvent{ID: wmruntime.Handle{Rep: 1, Kind: wmruntime.KindToplevel}}

	select {
	case err := <-done:
		require.ErrorIs(t, err, wmruntime.ErrFuelExhausted)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not terminate on fuel exhaustion")
	}

	var sawTerminate bool
	for {
		select {
		case req, ok := <-requests:
			if !ok {
				goto done
			}
			if _, isTerm := req.(wmruntime.TerminateWmRequest); isTerm {
				sawTerminate = true
			}
		default:
			goto done
		}
	}
done:
	require.True(t, sawTerminate, "expected a TerminateWmRequest before the requests channel closed")
}

func TestRunnerStopsOnContextCancellation(t *testing.T) {
	events := make(chan wmruntime.Event)
	requests := make(chan wmruntime.Request, 1)
	invoker := &countingInvoker{}

	runner := wmruntime.NewRunner(events, requests, invoker, 10, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runner.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after context cancellation")
	}
}

func TestRunnerNonFatalGuestErrorContinues(t *testing.T) {
	events := make(chan wmruntime.Event, 2)
	requests := make(chan wmruntime.Request, 2)
	invoker := &erroringThenOKInvoker{}

	runner := wmruntime.NewRunner(events, requests, invoker, 10, nil)

	done := make(chan error, 1)
	go func() {
		done <- runner.Run(context.Background())
	}()

	events <- wmruntime.NewToplevelEvent{ID: wmruntime.Handle{Rep: 1, Kind: wmruntime.KindToplevel}}
	events <- wmruntime.NewToplevelEvent{ID: wmruntime.Handle{Rep: 2, Kind: wmruntime.KindToplevel}}
	close(events)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not exit")
	}

	require.Equal(t, 2, invoker.calls)
}

type erroringThenOKInvoker struct {
	calls int
}

func (e *erroringThenOKInvoker) Dispatch(_ context.Context, _ wmruntime.Event, _ uint64) (uint64, error) {
	e.calls++
	if e.calls == 1 {
		return 0, errors.New("guest returned a typed error string")
	}
	return 1, nil
}
