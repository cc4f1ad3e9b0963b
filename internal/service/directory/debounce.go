package directory

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Debouncer coalesces bursts of triggers: only the last function scheduled
// within the quiet period runs, once the period has passed without a new trigger.
type Debouncer struct {
	clock clockwork.Clock
	delay time.Duration

	mu    sync.Mutex
	seq   uint64
	timer clockwork.Timer
	fn    func()
}

// NewDebouncer creates a Debouncer with the given quiet period.
func NewDebouncer(clock clockwork.Clock, delay time.Duration) *Debouncer {
	return &Debouncer{clock: clock, delay: delay}
}

// Trigger schedules fn, replacing any function that has not run yet.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.fn = fn
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(seq) })
}

// Flush runs the pending function now, on the caller's goroutine.
// It reports whether anything was pending.
func (d *Debouncer) Flush() bool {
	fn := d.take(0)
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Stop drops the pending function.
func (d *Debouncer) Stop() {
	_ = d.take(0)
}

// Pending reports whether a function is waiting for its quiet period.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fn != nil
}

func (d *Debouncer) fire(seq uint64) {
	if fn := d.take(seq); fn != nil {
		fn()
	}
}

// take removes the pending function. A non-zero seq only matches the trigger
// that scheduled it, so a timer that fired late cannot run a newer function.
func (d *Debouncer) take(seq uint64) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if seq != 0 && seq != d.seq {
		return nil
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	fn := d.fn
	d.fn = nil
	return fn
}
