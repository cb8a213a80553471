package engine

import (
	"math"
	"sync/atomic"

	"go-pikocore/bank"
)

const (
	// Oversample is the number of ticks per output sample, the PWM wrap
	// ratio of the hardware (264 MHz / 250 = 32 × 33 kHz).
	Oversample = 32
	NumButtons = 8

	MaxBPM = 360

	HeadShift    = 10
	CrossfadeLen = 1 << HeadShift

	DistortionMax   = 30
	VolumeReduceMax = 30
	// VolumeReduceTop is the largest volume reduction the knob produces;
	// anything from VolumeReduceMax up is silence.
	VolumeReduceTop = VolumeReduceMax + 3
	VolumeModMax    = 7

	// LPFMax is the highest cutoff index that still engages the filter.
	// FilterOff (LPFMax+10) bypasses it.
	LPFMax    = 50
	FilterOff = LPFMax + 10

	ResonanceMax = 200
	GateLevels   = 8
)

// tempo calibration: samples-per-beat = rate × 960 / (bpm × k1 − k2)
const (
	tempoK1 = 1.054234344
	tempoK2 = 1.420118655
)

// Prob names one of the probability weights.
type Prob int

const (
	ProbJump Prob = iota
	ProbDirection
	ProbRetrig
	ProbGate
	ProbTunnel
	numProbs
)

var probNames = [numProbs]string{"jump", "direction", "retrig", "gate", "tunnel"}

func (p Prob) String() string {
	if p < 0 || p >= numProbs {
		return "unknown"
	}
	return probNames[p]
}

// Probs lists every weight in persistence order.
var Probs = []Prob{ProbJump, ProbDirection, ProbRetrig, ProbGate, ProbTunnel}

func calibrated(bpm int) float64 {
	return float64(bpm)*tempoK1 - tempoK2
}

// BeatThreshold returns the number of ticks per beat at bpm. ok is false for
// tempos outside 1..MaxBPM or where the calibration is not positive.
func BeatThreshold(sampleRate, bpm int) (ticks int64, ok bool) {
	f := calibrated(bpm)
	if bpm > MaxBPM || f <= 0 {
		return 0, false
	}
	ticks = int64(math.Round(float64(sampleRate) * 960 / f))
	return ticks, ticks > 0
}

// SampleClockThreshold returns how many ticks pass between sample steps so
// that a bank rendered at bankBPM plays back at bpm.
func SampleClockThreshold(bankBPM, bpm int) int {
	f := calibrated(bpm)
	if f <= 0 {
		return Oversample
	}
	return max(1, int(math.Round(Oversample*float64(bankBPM)/f)))
}

// Controls holds everything the control loop writes and the engine reads.
// Each field is a single atomic so writes land on some later tick without
// any lock.
type Controls struct {
	sampleRate int
	bankBPM    int
	spb        int

	bpm        atomic.Int32
	beatThresh atomic.Int64
	clkThresh  atomic.Int32

	probs [numProbs]atomic.Uint32

	filter       atomic.Int32
	resonance    atomic.Int32
	distortion   atomic.Int32
	volumeReduce atomic.Int32
	volumeMod    atomic.Int32
	holdFilter   atomic.Int32
	stretch      atomic.Int32

	sample      atomic.Int32
	gateThresh  atomic.Int32
	baseForward atomic.Bool
	buttons     atomic.Uint32

	syncing  atomic.Bool
	syncPlay atomic.Bool
	muted    atomic.Bool

	// one-shot requests, consumed by the engine
	softSync  atomic.Bool
	hardReset atomic.Bool
	restart   atomic.Bool
	cancel    atomic.Bool
}

// NewControls returns controls at their startup defaults for a bank
// rendered at sampleRate and bankBPM.
func NewControls(sampleRate, bankBPM int) *Controls {
	c := &Controls{
		sampleRate: sampleRate,
		bankBPM:    bankBPM,
		spb:        bank.SamplesPerBeat(sampleRate, bankBPM),
	}
	c.SetBpm(bankBPM)
	c.filter.Store(FilterOff)
	c.gateThresh.Store(int32(c.spb * 4))
	c.baseForward.Store(true)
	return c
}

func (c *Controls) SampleRate() int     { return c.sampleRate }
func (c *Controls) BankBPM() int        { return c.bankBPM }
func (c *Controls) SamplesPerBeat() int { return c.spb }

// SetBpm retunes the beat clock. Tempos above MaxBPM (or too low to
// calibrate) are rejected and the previous tempo stays.
func (c *Controls) SetBpm(bpm int) bool {
	ticks, ok := BeatThreshold(c.sampleRate, bpm)
	if !ok {
		return false
	}
	c.bpm.Store(int32(bpm))
	c.beatThresh.Store(ticks)
	c.clkThresh.Store(int32(SampleClockThreshold(c.bankBPM, bpm)))
	return true
}

func (c *Controls) Bpm() int                  { return int(c.bpm.Load()) }
func (c *Controls) BeatThreshold() int64      { return c.beatThresh.Load() }
func (c *Controls) SampleClockThreshold() int { return int(c.clkThresh.Load()) }

// SetProbability stores a weight clamped to 0..255.
func (c *Controls) SetProbability(p Prob, v int) {
	if p < 0 || p >= numProbs {
		return
	}
	c.probs[p].Store(uint32(clamp(v, 0, 255)))
}

func (c *Controls) Probability(p Prob) uint8 {
	if p < 0 || p >= numProbs {
		return 0
	}
	return uint8(c.probs[p].Load())
}

// SetFilter sets the base cutoff index; values above LPFMax bypass the filter.
func (c *Controls) SetFilter(v int)    { c.filter.Store(int32(clamp(v, 0, FilterOff))) }
func (c *Controls) Filter() int        { return int(c.filter.Load()) }
func (c *Controls) SetResonance(v int) { c.resonance.Store(int32(clamp(v, 0, ResonanceMax))) }
func (c *Controls) Resonance() int     { return int(c.resonance.Load()) }

func (c *Controls) SetDistortion(v int) { c.distortion.Store(int32(clamp(v, 0, DistortionMax))) }
func (c *Controls) Distortion() int     { return int(c.distortion.Load()) }

func (c *Controls) SetVolumeReduce(v int) { c.volumeReduce.Store(int32(clamp(v, 0, VolumeReduceTop))) }
func (c *Controls) VolumeReduce() int     { return int(c.volumeReduce.Load()) }

// SetVolumeMod sets the manual attenuation shift.
func (c *Controls) SetVolumeMod(v int) { c.volumeMod.Store(int32(clamp(v, 0, VolumeModMax))) }
func (c *Controls) VolumeMod() int     { return int(c.volumeMod.Load()) }

// SetHoldFilter sets the cutoff offset applied while a button combo is held.
func (c *Controls) SetHoldFilter(v int) { c.holdFilter.Store(int32(clamp(v, 0, FilterOff))) }
func (c *Controls) HoldFilter() int     { return int(c.holdFilter.Load()) }

// SetStretch slows sample playback by v extra ticks per step, up to twice
// the current sample clock threshold.
func (c *Controls) SetStretch(v int) {
	c.stretch.Store(int32(clamp(v, 0, 2*c.SampleClockThreshold())))
}
func (c *Controls) Stretch() int { return int(c.stretch.Load()) }

// SetSample selects the sample; it takes effect on the next onset.
func (c *Controls) SetSample(s int) { c.sample.Store(int32(max(0, s))) }
func (c *Controls) Sample() int     { return int(c.sample.Load()) }

// SetGateThreshold sets how many sample steps after an onset the gate
// starts to fade out.
func (c *Controls) SetGateThreshold(v int) { c.gateThresh.Store(int32(clamp(v, 0, 65535))) }
func (c *Controls) GateThreshold() int     { return int(c.gateThresh.Load()) }

func (c *Controls) SetBaseForward(fwd bool) { c.baseForward.Store(fwd) }
func (c *Controls) BaseForward() bool       { return c.baseForward.Load() }

// SetButtons publishes the held buttons as a bitmask.
func (c *Controls) SetButtons(mask uint8) { c.buttons.Store(uint32(mask)) }
func (c *Controls) Buttons() uint8        { return uint8(c.buttons.Load()) }

// SetSyncing puts the beat clock under external control: onsets only
// come from SoftSync and HardReset.
func (c *Controls) SetSyncing(on bool) { c.syncing.Store(on) }
func (c *Controls) Syncing() bool      { return c.syncing.Load() }

// SetSyncPlay is false while an external clock has gone quiet.
func (c *Controls) SetSyncPlay(on bool) { c.syncPlay.Store(on) }
func (c *Controls) SyncPlay() bool      { return c.syncPlay.Load() }

func (c *Controls) SetMuted(on bool) { c.muted.Store(on) }
func (c *Controls) Muted() bool      { return c.muted.Load() }

// SoftSync forces an onset on the next tick.
func (c *Controls) SoftSync() { c.softSync.Store(true) }

// HardReset forces an onset and zeroes the beat counters.
func (c *Controls) HardReset() { c.hardReset.Store(true) }

// CancelRetrig cuts an active retrigger session at its next strike.
func (c *Controls) CancelRetrig() { c.cancel.Store(true) }

// CancelPending reports a cancel the engine has not consumed yet.
func (c *Controls) CancelPending() bool { return c.cancel.Load() }

// Restart unmutes, leaves external sync and starts again from beat zero
// with held buttons ignored for a few beats.
func (c *Controls) Restart() {
	c.syncing.Store(false)
	c.muted.Store(false)
	c.restart.Store(true)
	c.hardReset.Store(true)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
