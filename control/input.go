package control

import "math"

const (
	// KnobMax is the top of the knob range.
	KnobMax = 4095
	// knobJitter is the smallest movement that counts as a change.
	knobJitter = 100
)

// Button is a debounced momentary input. After an edge, further reads are
// ignored for a few reads.
type Button struct {
	on       bool
	rising   bool
	falling  bool
	changed  bool
	debounce int
	settle   int
}

// NewButton returns a released button that ignores reads for settle reads
// after each edge.
func NewButton(settle int) Button {
	return Button{settle: settle}
}

// Read samples the raw level.
func (b *Button) Read(level bool) {
	if b.debounce > 0 {
		b.debounce--
		b.rising, b.falling, b.changed = false, false, false
		return
	}
	b.Set(level)
}

// Set forces the level, bypassing the debounce.
func (b *Button) Set(level bool) {
	b.rising = level && !b.on
	b.falling = !level && b.on
	b.changed = b.rising || b.falling
	if b.changed {
		b.debounce = b.settle
	}
	b.on = level
}

func (b *Button) On() bool      { return b.on }
func (b *Button) Rising() bool  { return b.rising }
func (b *Button) Falling() bool { return b.falling }

// ChangedHigh reports a rising edge once.
func (b *Button) ChangedHigh() bool {
	if b.changed {
		b.changed = false
		return b.on
	}
	return false
}

// Knob is an analog control with jitter suppression. Changes are not
// reported until the knob has settled after startup or a Reset.
type Knob struct {
	val     int
	changed bool
	startup int
	settle  int
}

// NewKnob returns a knob at value that stays quiet for settle reads.
func NewKnob(value, settle int) Knob {
	return Knob{val: value, startup: settle, settle: settle}
}

// Read samples the raw value (0..KnobMax).
func (k *Knob) Read(v int) {
	v = max(0, min(v, KnobMax))
	d := v - k.val
	k.changed = d > knobJitter || d < -knobJitter
	if k.changed {
		k.val = v
	}
}

// Changed reports whether the last read moved the knob. Nothing is
// reported while the knob is settling.
func (k *Knob) Changed() bool {
	if k.startup > 0 {
		k.startup--
		return false
	}
	return k.changed
}

// Reset starts a new settle period, so that moving to another page does
// not apply stale positions.
func (k *Knob) Reset()     { k.startup = k.settle }
func (k *Knob) Value() int { return k.val }

// RunningAverage is the rounded mean of the last n values.
type RunningAverage struct {
	vals []int
	has  []bool
	i    int
	cur  int
}

func NewRunningAverage(n int) *RunningAverage {
	n = max(1, n)
	return &RunningAverage{vals: make([]int, n), has: make([]bool, n)}
}

// Update adds v and returns the new average.
func (r *RunningAverage) Update(v int) int {
	if r.i >= len(r.vals) {
		r.i = 0
	}
	r.vals[r.i] = v
	r.has[r.i] = true
	r.i++

	var total, count float64
	for j, ok := range r.has {
		if ok {
			total += float64(r.vals[j])
			count++
		}
	}
	r.cur = int(math.Round(total / count))
	return r.cur
}

func (r *RunningAverage) Value() int { return r.cur }

// TriggerOut counts down a pulse of fixed length in loop iterations.
type TriggerOut struct {
	length int
	count  int
}

// NewTriggerOut returns a trigger whose pulse lasts length iterations.
func NewTriggerOut(length int) TriggerOut {
	return TriggerOut{length: max(1, length)}
}

func (t *TriggerOut) Fire()      { t.count = t.length }
func (t *TriggerOut) High() bool { return t.count > 0 }

// Update advances one iteration and reports whether the output is high.
func (t *TriggerOut) Update() bool {
	if t.count > 0 {
		t.count--
	}
	return t.count > 0
}
