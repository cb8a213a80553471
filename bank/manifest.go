package bank

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/youpy/go-wav"
	"gopkg.in/yaml.v3"
)

// Manifest describes a bank on disk. File paths are relative to the
// manifest unless absolute.
type Manifest struct {
	SampleRate int     `yaml:"sampleRate"`
	BPM        int     `yaml:"bpm"`
	Samples    []Entry `yaml:"samples"`
}

// Entry is one source file. BPM and Beats describe the source recording,
// with Beats counted in quarter notes; zero means "take it from the file
// name tags".
type Entry struct {
	File  string  `yaml:"file"`
	Name  string  `yaml:"name,omitempty"`
	BPM   float64 `yaml:"bpm,omitempty"`
	Beats int     `yaml:"beats,omitempty"`
}

var (
	bpmTag   = regexp.MustCompile(`(?i)bpm(\d+(?:\.\d+)?)`)
	beatsTag = regexp.MustCompile(`(?i)beats(\d+)`)
)

// ParseTags extracts the source tempo and quarter-note beat count from a
// file name like "amen_beats8_bpm146.wav". Missing tags are returned as 0.
func ParseTags(name string) (bpm float64, beats int) {
	base := filepath.Base(name)
	if m := bpmTag.FindStringSubmatch(base); m != nil {
		bpm, _ = strconv.ParseFloat(m[1], 64)
	}
	if m := beatsTag.FindStringSubmatch(base); m != nil {
		beats, _ = strconv.Atoi(m[1])
	}
	return bpm, beats
}

// ReadManifest parses a YAML manifest and fills in defaults.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.SampleRate <= 0 {
		m.SampleRate = DefaultSampleRate
	}
	if m.BPM <= 0 {
		m.BPM = DefaultBPM
	}
	return &m, nil
}

// WriteManifest stores m as YAML.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadManifest reads a manifest and decodes every sample it lists.
func LoadManifest(path string) (*Memory, error) {
	m, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	var samples []Sample
	for _, e := range m.Samples {
		file := e.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(dir, file)
		}
		s, err := loadEntry(file, e, m.SampleRate, m.BPM)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", e.File, err)
		}
		samples = append(samples, s)
	}
	return NewMemory(m.SampleRate, m.BPM, samples)
}

func loadEntry(file string, e Entry, rate, bpm int) (Sample, error) {
	srcBPM, srcBeats := ParseTags(file)
	if e.BPM > 0 {
		srcBPM = e.BPM
	}
	if e.Beats > 0 {
		srcBeats = e.Beats
	}
	if srcBPM <= 0 {
		srcBPM = float64(bpm)
	}

	f, err := os.Open(file)
	if err != nil {
		return Sample{}, err
	}
	defer f.Close()
	data, srcRate, err := DecodeWAV(f)
	if err != nil {
		return Sample{}, err
	}
	if srcBeats <= 0 {
		seconds := float64(len(data)) / float64(srcRate)
		srcBeats = int(math.Max(1, math.Round(seconds*srcBPM/60)))
	}

	ratio := float64(rate) / float64(srcRate) * srcBPM / float64(bpm)
	name := e.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
	return Sample{
		Name:  name,
		Beats: srcBeats * 2,
		Data:  Resample(data, ratio),
	}, nil
}

// DecodeWAV reads a PCM WAV file and returns it as mono unsigned 8-bit
// samples along with its sample rate.
func DecodeWAV(r interface {
	io.Reader
	io.ReaderAt
}) ([]uint8, int, error) {
	reader := wav.NewReader(r)
	format, err := reader.Format()
	if err != nil {
		return nil, 0, fmt.Errorf("read wav format: %w", err)
	}
	channels := int(format.NumChannels)
	if channels < 1 {
		return nil, 0, errors.New("wav has no channels")
	}
	if channels > 2 {
		channels = 2
	}
	var out []uint8
	for {
		samples, err := reader.ReadSamples()
		for _, s := range samples {
			sum := 0
			for c := 0; c < channels; c++ {
				sum += to8bit(reader.IntValue(s, uint(c)), format.BitsPerSample)
			}
			out = append(out, uint8(sum/channels))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read wav samples: %w", err)
		}
	}
	if len(out) == 0 {
		return nil, 0, ErrNoSamples
	}
	return out, int(format.SampleRate), nil
}

func to8bit(v int, bits uint16) int {
	switch {
	case bits <= 8:
	case bits <= 16:
		v = (v >> 8) + 128
	case bits <= 24:
		v = (v >> 16) + 128
	default:
		v = (v >> 24) + 128
	}
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// Resample stretches data by ratio using linear interpolation. ratio > 1
// makes the result longer.
func Resample(data []uint8, ratio float64) []uint8 {
	if ratio <= 0 || len(data) == 0 {
		return data
	}
	n := int(math.Round(float64(len(data)) * ratio))
	if n < 2 {
		n = 2
	}
	out := make([]uint8, n)
	for i := range out {
		pos := float64(i) / ratio
		j := int(pos)
		if j >= len(data)-1 {
			out[i] = data[len(data)-1]
			continue
		}
		frac := pos - float64(j)
		v := float64(data[j])*(1-frac) + float64(data[j+1])*frac
		out[i] = uint8(math.Round(v))
	}
	return out
}
