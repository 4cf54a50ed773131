package server

import (
	"sync"
	"time"
)

// afterFunc is swapped in tests to control timer firing.
var afterFunc = time.AfterFunc

// debouncer coalesces bursts of triggers into one callback after a quiet
// period. Retriggering restarts the delay; a generation counter keeps a
// stopped timer that already fired from running a stale callback.
type debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func()
	timer *time.Timer
	gen   uint64
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

// Trigger schedules the callback, replacing any pending schedule.
func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = afterFunc(d.delay, func() {
		d.mu.Lock()
		stale := gen != d.gen
		d.mu.Unlock()
		if stale {
			return
		}
		d.fn()
	})
}

// Stop cancels any pending callback.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
