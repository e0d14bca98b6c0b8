package main

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatchBoundsInFlightChecks(t *testing.T) {
	var running, peak atomic.Int32
	release := make(chan struct{})
	d := newDispatcher(2, func(string) {
		n := running.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		<-release
		running.Add(-1)
	})

	var callers sync.WaitGroup
	for _, id := range []string{"a", "b", "c", "d"} {
		callers.Add(1)
		go func() {
			defer callers.Done()
			if err := d.dispatch(context.Background(), id); err != nil {
				t.Errorf("dispatch(%s) error = %v", id, err)
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	callers.Wait()
	d.wait()

	if got := peak.Load(); got != 2 {
		t.Fatalf("peak in-flight checks = %d, want 2", got)
	}
}

func TestDispatchRefusesAfterCancel(t *testing.T) {
	var calls atomic.Int32
	d := newDispatcher(4, func(string) { calls.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for range 100 {
		if err := d.dispatch(ctx, "sub-1"); !errors.Is(err, context.Canceled) {
			t.Fatalf("dispatch() error = %v, want context.Canceled", err)
		}
	}
	d.wait()
	if calls.Load() != 0 {
		t.Fatalf("no check should start on a cancelled context, got %d", calls.Load())
	}
}

func TestDispatchAfterWaitIsRejected(t *testing.T) {
	var calls atomic.Int32
	d := newDispatcher(1, func(string) { calls.Add(1) })

	if err := d.dispatch(context.Background(), "sub-1"); err != nil {
		t.Fatalf("dispatch() error = %v", err)
	}
	d.wait()
	if calls.Load() != 1 {
		t.Fatalf("wait() returned before the accepted check finished")
	}

	if err := d.dispatch(context.Background(), "sub-2"); !errors.Is(err, errDispatcherClosed) {
		t.Fatalf("dispatch() after wait error = %v, want errDispatcherClosed", err)
	}
	if len(d.slots) != 0 {
		t.Fatalf("rejected dispatch must give its slot back")
	}
	if calls.Load() != 1 {
		t.Fatalf("no check should start after wait, got %d calls", calls.Load())
	}
}

func TestNewDispatcherDefaultsToOneSlot(t *testing.T) {
	if got := cap(newDispatcher(0, func(string) {}).slots); got != 1 {
		t.Fatalf("slots = %d, want 1", got)
	}
}
