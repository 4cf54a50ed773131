package server

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerIgnoresStaleTimerCallback(t *testing.T) {
	origAfterFunc := afterFunc
	t.Cleanup(func() { afterFunc = origAfterFunc })

	var callbacks []func()
	afterFunc = func(_ time.Duration, f func()) *time.Timer {
		callbacks = append(callbacks, f)
		timer := time.NewTimer(time.Hour)
		timer.Stop()
		return timer
	}

	var called atomic.Int32
	d := newDebouncer(time.Second, func() {
		called.Add(1)
	})

	d.Trigger()
	d.Trigger()

	if len(callbacks) != 2 {
		t.Fatalf("expected 2 scheduled callbacks, got %d", len(callbacks))
	}

	callbacks[0]()
	callbacks[1]()

	if got := called.Load(); got != 1 {
		t.Fatalf("expected only latest callback to run, got %d calls", got)
	}
}

func TestDebouncerStopIgnoresPendingTimerCallback(t *testing.T) {
	origAfterFunc := afterFunc
	t.Cleanup(func() { afterFunc = origAfterFunc })

	var callback func()
	afterFunc = func(_ time.Duration, f func()) *time.Timer {
		callback = f
		timer := time.NewTimer(time.Hour)
		timer.Stop()
		return timer
	}

	var called atomic.Int32
	d := newDebouncer(time.Second, func() {
		called.Add(1)
	})

	d.Trigger()
	d.Stop()

	if callback == nil {
		t.Fatal("expected a scheduled callback")
	}
	callback()

	if got := called.Load(); got != 0 {
		t.Fatalf("expected callback to be ignored after stop, got %d calls", got)
	}
}

func TestDebouncerCoalescesTriggers(t *testing.T) {
	var count atomic.Int32
	done := make(chan struct{})
	d := newDebouncer(10*time.Millisecond, func() {
		count.Add(1)
		close(done)
	})

	d.Trigger()
	d.Trigger()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debouncer did not fire")
	}
	if got := count.Load(); got != 1 {
		t.Fatalf("expected one invocation, got %d", got)
	}
}

func TestDebouncerStopPreventsFiring(t *testing.T) {
	var count atomic.Int32
	d := newDebouncer(20*time.Millisecond, func() {
		count.Add(1)
	})

	d.Trigger()
	d.Stop()

	time.Sleep(40 * time.Millisecond)
	if got := count.Load(); got != 0 {
		t.Fatalf("expected no invocations after stop, got %d", got)
	}
}
