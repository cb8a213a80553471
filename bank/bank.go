package bank

import (
	"errors"
	"math"
)

// Defaults match the rate and tempo the sample bank is rendered at.
const (
	DefaultSampleRate = 33000
	DefaultBPM        = 165
)

var ErrNoSamples = errors.New("bank has no samples")

// Bank is a read-only set of 8-bit unsigned mono samples, all rendered at
// the same rate and tempo. A beat is an eighth note.
type Bank interface {
	NumSamples() int
	Len(s int) int
	Beats(s int) int
	At(s, i int) uint8
	SampleRate() int
	BPM() int
	SamplesPerBeat() int
}

// Sample is one loop of the bank
type Sample struct {
	Name  string
	Beats int
	Data  []uint8
}

// Memory is a Bank held entirely in memory
type Memory struct {
	rate    int
	bpm     int
	spb     int
	samples []Sample
}

// NewMemory builds a bank from already converted samples.
func NewMemory(sampleRate, bpm int, samples []Sample) (*Memory, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	for i := range samples {
		if len(samples[i].Data) < 2 {
			return nil, errors.New("sample " + samples[i].Name + " is too short")
		}
		if samples[i].Beats < 1 {
			samples[i].Beats = 1
		}
	}
	return &Memory{
		rate:    sampleRate,
		bpm:     bpm,
		spb:     SamplesPerBeat(sampleRate, bpm),
		samples: samples,
	}, nil
}

// SamplesPerBeat returns the length of one eighth note in samples.
func SamplesPerBeat(sampleRate, bpm int) int {
	return int(math.Round(60 / float64(bpm) * float64(sampleRate) / 2))
}

func (m *Memory) NumSamples() int     { return len(m.samples) }
func (m *Memory) SampleRate() int     { return m.rate }
func (m *Memory) BPM() int            { return m.bpm }
func (m *Memory) SamplesPerBeat() int { return m.spb }

func (m *Memory) Len(s int) int {
	return len(m.samples[m.index(s)].Data)
}

func (m *Memory) Beats(s int) int {
	return m.samples[m.index(s)].Beats
}

// At returns mid-scale for positions outside the sample.
func (m *Memory) At(s, i int) uint8 {
	data := m.samples[m.index(s)].Data
	if i < 0 || i >= len(data) {
		return 128
	}
	return data[i]
}

// Name returns the display name of sample s.
func (m *Memory) Name(s int) string {
	return m.samples[m.index(s)].Name
}

func (m *Memory) index(s int) int {
	if s < 0 || s >= len(m.samples) {
		return 0
	}
	return s
}
