package engine

import "math"

const (
	filterLowHz  = 40.0
	filterHighNy = 0.45 // top cutoff as a fraction of the sample rate
)

// Filter is a one-pole low-pass with a resonance term feeding back the
// last change of the output. State is kept in 8.8 fixed point.
type Filter struct {
	alpha [LPFMax + 1]int32 // Q16 per cutoff index
	y     int32
	prev  int32
}

// NewFilter builds the coefficient table for sampleRate. Cutoff indices
// 0..LPFMax map exponentially from 40 Hz up to 45% of the sample rate.
func NewFilter(sampleRate int) *Filter {
	f := &Filter{y: 128 << 8, prev: 128 << 8}
	high := filterHighNy * float64(sampleRate)
	for i := range f.alpha {
		hz := filterLowHz * math.Pow(high/filterLowHz, float64(i)/LPFMax)
		a := 1 - math.Exp(-2*math.Pi*hz/float64(sampleRate))
		f.alpha[i] = int32(math.Round(a * 65536))
	}
	return f
}

// Process filters one sample at the given cutoff index and resonance
// (0..ResonanceMax, in 1/256 steps).
func (f *Filter) Process(x uint8, cutoff, resonance int) uint8 {
	a := int64(f.alpha[clamp(cutoff, 0, LPFMax)])
	q := int32(clamp(resonance, 0, ResonanceMax))
	in := int32(x) << 8
	d := f.y - f.prev
	f.prev = f.y
	f.y += int32((a*int64(in-f.y))>>16) + (d*q)>>8
	f.y = int32(clamp(int(f.y), 0, 255<<8))
	return uint8(clamp(int(f.y+128)>>8, 0, 255))
}

// Reset returns the filter to rest at mid-scale.
func (f *Filter) Reset() {
	f.y, f.prev = 128<<8, 128<<8
}
