package bank

import "math"

// drum hits per eighth note; k = kick, s = snare, h = hat, . = rest
var syntheticPatterns = []struct {
	name    string
	pattern string
}{
	{"synth break", "k.hsk.hskkhs.khs"},
	{"synth halftime", "k.h.h.h.s.h.hkh."},
	{"synth four", "khshkhshkhshkhsh"},
}

// Synthetic renders a small built-in bank of drum loops so the instrument
// makes sound without a sample bank on disk.
func Synthetic(sampleRate, bpm int) *Memory {
	spb := SamplesPerBeat(sampleRate, bpm)
	samples := make([]Sample, 0, len(syntheticPatterns))
	seed := uint32(1)
	for _, p := range syntheticPatterns {
		mix := make([]float64, spb*len(p.pattern))
		for beat, c := range p.pattern {
			start := beat * spb
			switch c {
			case 'k':
				renderKick(mix[start:], sampleRate)
			case 's':
				seed = renderNoise(mix[start:], sampleRate, 0.18, 0.5, seed)
			case 'h':
				seed = renderNoise(mix[start:], sampleRate, 0.03, 0.25, seed)
			}
		}
		data := make([]uint8, len(mix))
		for i, v := range mix {
			data[i] = uint8(math.Round(128 + 127*math.Tanh(v)))
		}
		samples = append(samples, Sample{Name: p.name, Beats: len(p.pattern), Data: data})
	}
	m, _ := NewMemory(sampleRate, bpm, samples)
	return m
}

func renderKick(dst []float64, rate int) {
	n := min(len(dst), rate/4)
	phase := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) / float64(rate)
		freq := 50 + 100*math.Exp(-t*30)
		phase += 2 * math.Pi * freq / float64(rate)
		dst[i] += 0.9 * math.Sin(phase) * math.Exp(-t*12)
	}
}

func renderNoise(dst []float64, rate int, decay, gain float64, seed uint32) uint32 {
	n := min(len(dst), int(float64(rate)*decay*4))
	for i := 0; i < n; i++ {
		seed = seed*1664525 + 1013904223
		v := float64(seed>>16)/32768 - 1
		t := float64(i) / float64(rate)
		dst[i] += gain * v * math.Exp(-t/decay)
	}
	return seed
}
