// Package debounce coalesces bursts of events into a single delayed call.
//
// Every Trigger disarms the pending timer and arms a new one, so only the
// last event of a burst fires, one quiet interval after it arrived.
package debounce

import (
	"sync"
	"time"
)

// DefaultInterval is the quiet interval used when none is configured
const DefaultInterval = 500 * time.Millisecond

// Timer is the part of *time.Timer the debouncer needs
type Timer interface {
	Stop() bool
}

// AfterFunc arms a timer that calls f after d. time.AfterFunc satisfies it
// once wrapped; tests substitute a manual clock.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer holds at most one armed timer
type Debouncer struct {
	mu        sync.Mutex
	interval  time.Duration
	fn        func()
	afterFunc AfterFunc
	timer     Timer
	gen       uint64
	stopped   bool
}

// Option configures a Debouncer
type Option func(*Debouncer)

// WithAfterFunc replaces the timer factory
func WithAfterFunc(af AfterFunc) Option {
	return func(d *Debouncer) { d.afterFunc = af }
}

// New returns a debouncer calling fn one interval after the last Trigger.
// fn runs on the timer's goroutine.
func New(interval time.Duration, fn func(), opts ...Option) *Debouncer {
	if interval < 0 {
		interval = 0
	}
	d := &Debouncer{
		interval:  interval,
		fn:        fn,
		afterFunc: realAfterFunc,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Trigger (re)arms the timer
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.disarmLocked()

	gen := d.gen
	d.timer = d.afterFunc(d.interval, func() { d.fire(gen) })
}

// Cancel disarms a pending timer. Safe to call when nothing is armed.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disarmLocked()
}

// Pending reports whether a timer is armed
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// SetInterval changes the quiet interval for subsequent triggers
func (d *Debouncer) SetInterval(interval time.Duration) {
	if interval < 0 {
		interval = 0
	}
	d.mu.Lock()
	d.interval = interval
	d.mu.Unlock()
}

// Interval returns the current quiet interval
func (d *Debouncer) Interval() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.interval
}

// Stop disarms the timer and ignores further triggers
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disarmLocked()
	d.stopped = true
}

// disarmLocked stops the timer and bumps the generation so a callback that
// already started cannot fire for a superseded trigger.
func (d *Debouncer) disarmLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.stopped {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	fn := d.fn
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}
