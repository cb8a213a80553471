package control

import (
	"math"

	"go-pikocore/engine"
)

// NumPages is how many pages the selector knob divides its range into.
const NumPages = 8

// Page names, one per selector position.
const (
	PageSample = iota
	PageFilter
	PageGate
	PageJump
	PageTunnel
	PageSequencer
	PageStore
	PageVolume
)

// PageInfo labels the two knobs of a page.
type PageInfo struct {
	Name string
	A, B string
}

var Pages = [NumPages]PageInfo{
	{"sample", "sample", "break"},
	{"filter", "cutoff", "stretch"},
	{"gate", "gate", "gate prob"},
	{"jump", "jump prob", "retrig prob"},
	{"tunnel", "tunnel prob", "reverse prob"},
	{"sequencer", "record", "play"},
	{"store", "save", "load"},
	{"volume", "volume", "tempo"},
}

// PageOf maps a selector position to a page.
func PageOf(v int) int {
	return min(NumPages-1, max(0, v)*NumPages/(KnobMax+1))
}

// ProbabilityOf maps a knob position to a probability weight. The bottom
// of the range is a dead zone.
func ProbabilityOf(v int) int {
	if v < 200 {
		return 0
	}
	return v * 254 / KnobMax
}

// CutoffOf maps a knob position to a filter index; the top of the range
// bypasses the filter.
func CutoffOf(v int) int {
	return v * engine.FilterOff / KnobMax
}

// GateOf maps a knob position to a gate threshold in sample steps. Near
// the top the gate stays open for four beats.
func GateOf(v, samplesPerBeat int) int {
	if v > 3700 {
		return samplesPerBeat * 4
	}
	return samplesPerBeat * (v * 1000 / KnobMax) / 1000
}

// StretchOf maps a knob position to extra sample clock ticks.
func StretchOf(v, clockThreshold int) int {
	if v < 100 {
		return 0
	}
	return v * clockThreshold * 2 / KnobMax
}

// TempoOf maps a knob position to a tempo in steps of 5 from 50.
func TempoOf(v int) int {
	bpm := int(math.Round(float64(v)*255/KnobMax/5))*5 + 50
	return min(bpm, engine.MaxBPM)
}

// VolumeOf splits the volume knob into a reduction below 2000 and
// distortion above 3000, with a neutral band between.
func VolumeOf(v int) (distortion, reduce int) {
	switch {
	case v < 2000:
		return 0, (2000 - v) * engine.VolumeReduceTop / 2000
	case v > 3000:
		return (v - 3000) * engine.DistortionMax / (KnobMax - 3000), 0
	}
	return 0, 0
}

// volumeForDistortion is the volume knob position that yields distortion.
func volumeForDistortion(distortion int) int {
	return distortion*(KnobMax-3000)/engine.DistortionMax + 3000
}

// Break macro: one knob sweeps every perturbation along its own curve.
const breakOff = 50

const breakSteps = 64

type breakTarget int

const (
	breakDistortion breakTarget = iota
	breakJump
	breakRetrig
	breakGate
	breakDirection
	breakTunnel
	numBreakTargets
)

// breakCurves holds the eased weights (0..255) per target and step.
var breakCurves = func() (t [numBreakTargets][breakSteps]uint8) {
	curves := [numBreakTargets]struct {
		start, power, top float64
	}{
		breakDistortion: {0.6, 2, 255},
		breakJump:       {0, 2, 200},
		breakRetrig:     {0.2, 3, 180},
		breakGate:       {0.1, 1.5, 160},
		breakDirection:  {0.3, 2, 140},
		breakTunnel:     {0.7, 3, 120},
	}
	for target, c := range curves {
		for i := 0; i < breakSteps; i++ {
			x := float64(i) / (breakSteps - 1)
			if x <= c.start {
				continue
			}
			u := (x - c.start) / (1 - c.start)
			t[target][i] = uint8(math.Round(c.top * math.Pow(u, c.power)))
		}
	}
	return t
}()

// BreakSettings is what the break macro sets.
type BreakSettings struct {
	Distortion int
	Probs      map[engine.Prob]int
}

// BreakOf evaluates the break macro at a knob position. Below breakOff
// every perturbation is off.
func BreakOf(v int) BreakSettings {
	s := BreakSettings{Probs: make(map[engine.Prob]int, len(engine.Probs))}
	if v < breakOff {
		for _, p := range engine.Probs {
			s.Probs[p] = 0
		}
		return s
	}
	i := min(breakSteps-1, (v-breakOff)*breakSteps/(KnobMax+1-breakOff))
	s.Distortion = int(breakCurves[breakDistortion][i]) * engine.DistortionMax / 255
	s.Probs[engine.ProbJump] = int(breakCurves[breakJump][i])
	s.Probs[engine.ProbRetrig] = int(breakCurves[breakRetrig][i])
	s.Probs[engine.ProbGate] = int(breakCurves[breakGate][i])
	s.Probs[engine.ProbDirection] = int(breakCurves[breakDirection][i])
	s.Probs[engine.ProbTunnel] = int(breakCurves[breakTunnel][i])
	return s
}
