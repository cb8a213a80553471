package bank

import (
	"io"

	"github.com/youpy/go-wav"
)

// WriteWAV writes unsigned 8-bit mono samples as a PCM WAV file.
func WriteWAV(w io.Writer, data []uint8, sampleRate int) error {
	ww := wav.NewWriter(w, uint32(len(data)), 1, uint32(sampleRate), 8)
	const chunk = 4096
	samples := make([]wav.Sample, 0, chunk)
	for start := 0; start < len(data); start += chunk {
		samples = samples[:0]
		for _, v := range data[start:min(start+chunk, len(data))] {
			samples = append(samples, wav.Sample{Values: [2]int{int(v), int(v)}})
		}
		if err := ww.WriteSamples(samples); err != nil {
			return err
		}
	}
	return nil
}
