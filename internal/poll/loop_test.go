package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomsync/internal/core"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestLoopFeedsReconcilerEveryTick(t *testing.T) {
	var pulls atomic.Int32
	fetch := func(context.Context) (*core.RoomState, error) {
		pulls.Add(1)
		return &core.RoomState{ID: "r1", Turn: core.MarkX}, nil
	}

	rec := core.NewReconciler(nopLogger())
	l := New(10*time.Millisecond, fetch, rec, nopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	waitFor(t, "several pulls", func() bool { return pulls.Load() >= 3 })
	if s := rec.State(); s == nil || s.ID != "r1" {
		t.Fatalf("reconciler not fed: %+v", s)
	}
}

func TestLoopRetriesAfterFetchError(t *testing.T) {
	var pulls atomic.Int32
	fetch := func(context.Context) (*core.RoomState, error) {
		if pulls.Add(1) < 3 {
			return nil, errors.New("connection refused")
		}
		return &core.RoomState{ID: "r1"}, nil
	}

	rec := core.NewReconciler(nopLogger())
	l := New(10*time.Millisecond, fetch, rec, nopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	// Errors are absorbed; the loop keeps pulling until one succeeds.
	waitFor(t, "recovery after failed pulls", func() bool { return rec.State() != nil })
}

func TestLoopStopsOnCancel(t *testing.T) {
	var pulls atomic.Int32
	fetch := func(context.Context) (*core.RoomState, error) {
		pulls.Add(1)
		return &core.RoomState{ID: "r1"}, nil
	}

	rec := core.NewReconciler(nopLogger())
	l := New(5*time.Millisecond, fetch, rec, nopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(ctx)
	}()

	waitFor(t, "first pull", func() bool { return pulls.Load() > 0 })
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on cancel")
	}

	// No stale producer may keep pulling after teardown.
	settled := pulls.Load()
	time.Sleep(50 * time.Millisecond)
	if pulls.Load() != settled {
		t.Fatal("loop pulled after cancellation")
	}
}
