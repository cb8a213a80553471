package bank

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		fname string
		beats int
		bpm   float64
	}{
		{"flacs/cold_sweat_bpm150_beats16.flac", 16, 150},
		{"flacs/amen_5c063f57_beats8_bpm146.flac", 8, 146},
		{"loop_BPM92.5.wav", 0, 92.5},
		{"test.flac", 0, 0},
	}
	for _, tc := range tests {
		bpm, beats := ParseTags(tc.fname)
		assert.Equal(t, tc.bpm, bpm, tc.fname)
		assert.Equal(t, tc.beats, beats, tc.fname)
	}
}

func TestSamplesPerBeat(t *testing.T) {
	assert.Equal(t, 6000, SamplesPerBeat(33000, 165))
	assert.Equal(t, 11025, SamplesPerBeat(44100, 120))
}

func TestMemoryOutOfRange(t *testing.T) {
	m, err := NewMemory(33000, 165, []Sample{{Name: "a", Beats: 0, Data: []uint8{1, 2, 3}}})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Beats(0), "beats are at least one")
	assert.Equal(t, uint8(128), m.At(0, 7))
	assert.Equal(t, uint8(2), m.At(5, 1), "unknown sample falls back to the first")

	_, err = NewMemory(33000, 165, nil)
	assert.ErrorIs(t, err, ErrNoSamples)
}

func TestResample(t *testing.T) {
	data := []uint8{0, 100, 200}
	out := Resample(data, 2)
	require.Len(t, out, 6)
	assert.Equal(t, uint8(0), out[0])
	assert.Equal(t, uint8(50), out[1])
	assert.Equal(t, uint8(100), out[2])
	assert.Equal(t, uint8(200), out[5])

	assert.Len(t, Resample(data, 0.5), 2)
}

func TestSynthetic(t *testing.T) {
	m := Synthetic(DefaultSampleRate, DefaultBPM)
	require.Equal(t, len(syntheticPatterns), m.NumSamples())
	for s := 0; s < m.NumSamples(); s++ {
		assert.Equal(t, 16, m.Beats(s))
		assert.Equal(t, 16*m.SamplesPerBeat(), m.Len(s))
	}
}

func TestManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yml")
	in := &Manifest{
		SampleRate: 22050,
		BPM:        120,
		Samples:    []Entry{{File: "a_bpm100_beats4.wav"}, {File: "b.wav", BPM: 90, Beats: 8}},
	}
	require.NoError(t, WriteManifest(path, in))

	out, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	require.NoError(t, os.WriteFile(path, []byte("samples: []\n"), 0644))
	out, err = ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSampleRate, out.SampleRate)
	assert.Equal(t, DefaultBPM, out.BPM)
}

func TestTo8bit(t *testing.T) {
	assert.Equal(t, 200, to8bit(200, 8))
	assert.Equal(t, 128, to8bit(0, 16))
	assert.Equal(t, 255, to8bit(32767, 16))
	assert.Equal(t, 0, to8bit(-32768, 16))
}

func TestWriteWAVReadsBack(t *testing.T) {
	data := make([]uint8, 5000)
	for i := range data {
		data[i] = uint8(i)
	}
	var buf bytes.Buffer
	require.NoError(t, WriteWAV(&buf, data, 22050))
	assert.Greater(t, buf.Len(), len(data))

	got, rate, err := DecodeWAV(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 22050, rate)
	assert.Len(t, got, len(data))
}

func TestLoadManifestFromWAV(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "loop_bpm120_beats2.wav"))
	require.NoError(t, err)
	require.NoError(t, WriteWAV(f, make([]uint8, 8000), 8000))
	require.NoError(t, f.Close())

	path := filepath.Join(dir, "bank.yml")
	require.NoError(t, WriteManifest(path, &Manifest{
		SampleRate: 8000,
		BPM:        120,
		Samples:    []Entry{{File: "loop_bpm120_beats2.wav"}},
	}))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Equal(t, 1, m.NumSamples())
	assert.Equal(t, 4, m.Beats(0))
	assert.Equal(t, 8000, m.Len(0))
	assert.Equal(t, "loop_bpm120_beats2", m.Name(0))
}
