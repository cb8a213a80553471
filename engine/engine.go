package engine

import (
	"sync/atomic"

	"go-pikocore/bank"
	"go-pikocore/sequencer"
)

// restartDebounce is how many onsets held buttons are ignored after a
// restart, so the mute combo does not select beats.
const restartDebounce = 8

// Telemetry is a snapshot of what the engine is doing, for the control
// loop and the UI.
type Telemetry struct {
	Beat    int
	Sample  int
	Total   uint32
	Onsets  uint64
	Strikes uint64
	Retrig  RetrigState
	Held    int // first held button, -1 for none
	Held2   int
	Forward bool
	Level   uint8
	// Random is set while the retrigger session was armed by chance.
	Random bool
}

// Engine is the audio-rate core. Tick and Render must be called from a
// single goroutine; everything else it shares is atomic.
type Engine struct {
	bank  bank.Bank
	c     *Controls
	track *sequencer.Track
	rng   *Rand

	clock   BeatClock
	sclock  SampleClock
	heads   HeadPair
	sel     Selector
	session Session
	gate    Gate
	dsp     *DSP

	intervals    [NumRetrigIntervals]int
	spb          int
	phaseRetrig  int
	muteDebounce int
	resetPending bool
	out          uint8

	tBeat    atomic.Int32
	tSample  atomic.Int32
	tTotal   atomic.Uint32
	tOnsets  atomic.Uint64
	tStrikes atomic.Uint64
	tRetrig  atomic.Uint32
	tHeld    atomic.Int32
	tHeld2   atomic.Int32
	tForward atomic.Bool
	tLevel   atomic.Uint32
	tRandom  atomic.Bool
}

// NewEngine wires the core to a bank, the shared controls and the
// sequencer track. seed fixes every random decision.
func NewEngine(b bank.Bank, c *Controls, track *sequencer.Track, seed uint64) *Engine {
	e := &Engine{
		bank:  b,
		c:     c,
		track: track,
		rng:   NewRand(seed),
		heads: NewHeadPair(),
		sel:   NewSelector(),
		dsp:   NewDSP(b.SampleRate()),
		spb:   b.SamplesPerBeat(),
		out:   128,
	}
	e.intervals = RetrigIntervals(e.spb)
	e.gate.Threshold = c.GateThreshold()
	e.tHeld.Store(-1)
	e.tHeld2.Store(-1)
	e.tForward.Store(true)
	e.tLevel.Store(128)
	return e
}

// Render fills buf with output samples, running Oversample ticks for each.
func (e *Engine) Render(buf []byte) {
	for i := range buf {
		v := e.out
		for k := 0; k < Oversample; k++ {
			v = e.Tick()
		}
		buf[i] = v
	}
}

// Tick runs one interrupt: beat clock, selection or retrigger, heads and
// the DSP chain. It returns the current output level.
func (e *Engine) Tick() uint8 {
	c := e.c
	if c.restart.Swap(false) {
		e.restart()
	}
	if c.Muted() || (c.Syncing() && !c.SyncPlay()) {
		e.out = 128
		return e.out
	}
	if c.cancel.Swap(false) {
		e.session.Cancel()
	}

	hard := c.hardReset.Swap(false)
	onset := e.clock.Advance(c.BeatThreshold(), c.Syncing(), c.softSync.Swap(false), hard)
	if onset {
		e.beginBeat(hard)
	}
	if e.session.Active() {
		onset = false
	}

	threshold := c.SampleClockThreshold() + e.session.Pitch + c.Stretch()
	if !e.sclock.Advance(threshold) && !onset {
		return e.out
	}
	e.sclock.Reset()

	if onset {
		e.selectBeat()
	} else {
		e.gate.Step()
		e.heads.Step(e.bank.Len(e.sel.Sample))
	}
	if e.session.Active() {
		e.strike()
	}

	e.out = e.render()
	e.tLevel.Store(uint32(e.out))
	return e.out
}

func (e *Engine) restart() {
	e.sel.Release()
	e.session.Reset()
	e.muteDebounce = restartDebounce
}

// beginBeat handles an onset before selection: held buttons, arming and
// cancelling retrigger sessions.
func (e *Engine) beginBeat(hard bool) {
	c := e.c
	e.tOnsets.Add(1)
	e.gate.Onset()
	if hard {
		e.resetPending = true
	}
	if e.muteDebounce > 0 {
		e.muteDebounce--
	}

	mask := c.Buttons()
	e.sel.UpdateHeld(mask, e.muteDebounce == 0)
	held, held2 := e.sel.Held()

	switch e.session.State {
	case RetrigIdle:
		if held >= 0 {
			if e.muteDebounce == 0 && e.sel.SecondButton(mask) {
				e.session.Arm(false)
			}
		} else if e.rng.Chance(c.Probability(ProbRetrig)) {
			e.session.Arm(true)
		}
	default:
		if held < 0 || held2 < 0 {
			e.session.Cancel()
		}
	}

	if e.session.State == RetrigArmed {
		_, held2 = e.sel.Held()
		e.session.Activate(e.rng, held2)
		e.sclock.Prime()
		e.phaseRetrig = e.session.Interval(&e.intervals) - 1
	}
	e.publish()
}

// selectBeat picks sample, beat, gate and direction for a new beat.
func (e *Engine) selectBeat() {
	c := e.c
	n := e.bank.NumSamples()
	add := 0
	if e.rng.Chance(c.Probability(ProbTunnel)) {
		add = e.rng.Between(0, n-1)
	}
	e.sel.Sample = (c.Sample()%n + add) % n
	beats := e.bank.Beats(e.sel.Sample)

	reset := e.resetPending
	e.resetPending = false
	switchHeads := e.sel.Pick(beats, e.track, e.clock.Total, reset)

	if e.rng.Chance(c.Probability(ProbJump)) {
		e.sel.Beat = e.rng.Between(0, beats-1)
		switchHeads = true
	}

	if e.rng.Chance(c.Probability(ProbGate)) {
		e.gate.Threshold = e.spb * e.rng.Between(800, 1000) / 1000
	} else {
		e.gate.Threshold = c.GateThreshold()
	}

	offset := e.offset(e.sel.Beat)
	if switchHeads {
		e.heads.Switch(offset)
	} else {
		e.heads.Jump(offset)
	}

	fwd := c.BaseForward()
	if e.rng.Chance(c.Probability(ProbDirection)) {
		fwd = !fwd
	}
	e.heads.Active().Forward = fwd
	e.publish()
}

// strike advances the retrigger interval and re-strikes the beat at each
// boundary.
func (e *Engine) strike() {
	e.phaseRetrig++
	e.gate.Reset()
	if e.phaseRetrig < e.session.Interval(&e.intervals) {
		return
	}
	e.session.Strike()
	e.tStrikes.Add(1)
	e.heads.Switch(e.offset(e.sel.Beat))
	e.phaseRetrig = 0
	e.publish()
}

func (e *Engine) offset(beat int) int {
	off := beat * e.spb
	if l := e.bank.Len(e.sel.Sample); l > 0 && off >= l {
		off %= l
	}
	return off
}

func (e *Engine) render() uint8 {
	c := e.c
	s := e.sel.Sample
	a := e.heads.Mix(e.bank.At(s, e.heads.Active().Phase), e.bank.At(s, e.heads.Idle().Phase))

	cutoff := c.Filter() - e.session.FilterOffset()
	if _, held2 := e.sel.Held(); held2 >= 0 {
		cutoff -= c.HoldFilter()
	}
	return e.dsp.Process(a, Params{
		Distortion:   c.Distortion(),
		VolumeReduce: c.VolumeReduce(),
		Shift:        c.VolumeMod() + e.session.Volume + e.gate.Fade(),
		Cutoff:       max(cutoff, 0),
		Resonance:    c.Resonance(),
	})
}

func (e *Engine) publish() {
	e.tBeat.Store(int32(e.sel.Beat))
	e.tSample.Store(int32(e.sel.Sample))
	e.tTotal.Store(e.clock.Total)
	e.tRetrig.Store(uint32(e.session.State))
	h1, h2 := e.sel.Held()
	e.tHeld.Store(int32(h1))
	e.tHeld2.Store(int32(h2))
	e.tForward.Store(e.heads.Active().Forward)
	e.tRandom.Store(e.session.Random)
}

// Telemetry reads the published state. Safe from any goroutine.
func (e *Engine) Telemetry() Telemetry {
	return Telemetry{
		Beat:    int(e.tBeat.Load()),
		Sample:  int(e.tSample.Load()),
		Total:   e.tTotal.Load(),
		Onsets:  e.tOnsets.Load(),
		Strikes: e.tStrikes.Load(),
		Retrig:  RetrigState(e.tRetrig.Load()),
		Held:    int(e.tHeld.Load()),
		Held2:   int(e.tHeld2.Load()),
		Forward: e.tForward.Load(),
		Level:   uint8(e.tLevel.Load()),
		Random:  e.tRandom.Load(),
	}
}

// Session exposes the retrigger session for inspection on the audio
// goroutine.
func (e *Engine) Session() Session {
	return e.session
}

// Clock exposes the beat clock for inspection on the audio goroutine.
func (e *Engine) Clock() BeatClock {
	return e.clock
}
