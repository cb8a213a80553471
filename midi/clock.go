package midi

import (
	"math"
	"time"
)

const (
	// PPQN is the MIDI timing clock resolution.
	PPQN = 24
	// deltaWindow is how many tick intervals are averaged per tempo estimate.
	deltaWindow = 32
	// bpmUndershoot is subtracted from each estimate so the free-running
	// clock never overtakes the external one.
	bpmUndershoot = 7
)

// ClockTracker turns 24 ppqn timing clock into soft syncs, periodic hard
// resets and a tempo estimate.
type ClockTracker struct {
	// Multiplier is how many instrument beats fit in a quarter note.
	Multiplier int
	// ResetEvery is how many quarter notes pass between hard resets.
	ResetEvery int

	count    int
	last     time.Time
	deltaSum time.Duration
	deltas   int
}

// ClockResult is what a single timing tick asks of the beat clock
type ClockResult struct {
	SoftSync  bool
	HardReset bool
	BPM       int
	BPMReady  bool // a new tempo estimate is available in BPM
}

// NewClockTracker returns a tracker primed so the first tick after a start
// hard-resets.
func NewClockTracker(multiplier, resetEvery int) *ClockTracker {
	ct := &ClockTracker{
		Multiplier: max(1, multiplier),
		ResetEvery: max(1, resetEvery),
	}
	ct.Start()
	return ct
}

// Start re-primes the tick counter; called on start, continue and stop.
func (ct *ClockTracker) Start() {
	ct.count = PPQN*ct.ResetEvery - 1
}

// Tick processes one timing clock message received at t.
func (ct *ClockTracker) Tick(t time.Time) ClockResult {
	var r ClockResult
	ct.count++
	if ct.count%(PPQN*ct.ResetEvery) == 0 {
		r.HardReset = true
	} else if ct.count%max(1, PPQN/ct.Multiplier) == 0 {
		r.SoftSync = true
	}

	if !ct.last.IsZero() {
		ct.deltaSum += t.Sub(ct.last)
		ct.deltas++
		if ct.deltas == deltaWindow {
			if us := ct.deltaSum.Microseconds(); us > 0 {
				// 2.5e6 µs per 24 ticks per minute at one beat per eighth
				bpm := int(math.Round(1250000 * float64(ct.Multiplier) * deltaWindow / float64(us)))
				r.BPM, r.BPMReady = bpm-bpmUndershoot, true
			}
			ct.deltas = 0
			ct.deltaSum = 0
		}
	}
	ct.last = t
	return r
}

// Count returns the running tick count.
func (ct *ClockTracker) Count() int {
	return ct.count
}
