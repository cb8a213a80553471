package engine

// BeatClock counts ticks towards the next onset.
type BeatClock struct {
	counter int64
	// Beat counts onsets since the last hard reset, Total is the running
	// count the sequencer indexes with. Both are zeroed by a hard reset.
	Beat  uint32
	Total uint32
}

// Advance counts one tick and reports whether an onset fires. While
// syncing the threshold is ignored and only softSync or hardReset fire.
// At most one onset fires per call.
func (c *BeatClock) Advance(threshold int64, syncing, softSync, hardReset bool) bool {
	c.counter++
	if !(!syncing && c.counter >= threshold) && !softSync && !hardReset {
		return false
	}
	c.counter = 0
	c.Beat++
	c.Total++
	if hardReset {
		c.Beat = 0
		c.Total = 0
	}
	return true
}

// Counter returns the ticks since the last onset.
func (c BeatClock) Counter() int64 {
	return c.counter
}

// SampleClock divides ticks down to sample steps.
type SampleClock struct {
	count int
}

// Advance counts one tick and reports whether a sample step is due.
func (c *SampleClock) Advance(threshold int) bool {
	c.count++
	if c.count >= max(1, threshold) {
		c.count = 0
		return true
	}
	return false
}

// Prime makes the next Advance step.
func (c *SampleClock) Prime() {
	c.count = 1 << 30
}

// Reset restarts the count.
func (c *SampleClock) Reset() {
	c.count = 0
}
