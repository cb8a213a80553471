package store

import "time"

// Debouncer delays saving until changes stop. Every Arm pushes the
// deadline out again; Due fires once per armed period.
type Debouncer struct {
	delay     time.Duration
	notBefore time.Time
	deadline  time.Time
	armed     bool
}

// NewDebouncer returns a debouncer that fires delay after the last Arm,
// never before notBefore.
func NewDebouncer(delay time.Duration, notBefore time.Time) *Debouncer {
	return &Debouncer{delay: delay, notBefore: notBefore}
}

// Arm restarts the countdown.
func (d *Debouncer) Arm(now time.Time) {
	d.deadline = now.Add(d.delay)
	d.armed = true
}

// Cancel drops a pending save.
func (d *Debouncer) Cancel() {
	d.armed = false
}

// Pending reports whether a save is waiting.
func (d *Debouncer) Pending() bool {
	return d.armed
}

// Due reports whether the countdown has elapsed, disarming it.
func (d *Debouncer) Due(now time.Time) bool {
	if !d.armed || now.Before(d.deadline) || now.Before(d.notBefore) {
		return false
	}
	d.armed = false
	return true
}
