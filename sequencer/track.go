package sequencer

import "sync/atomic"

// Capacity is the number of beat indices a track can hold.
const Capacity = 128

// Empty is returned by Last when nothing has been recorded.
const Empty = 255

// Track records the beat indices chosen by held buttons and replays them.
// Record and Next run on the audio side, the mode flags are flipped by the
// control loop, so every field is atomic.
type Track struct {
	playing   atomic.Bool
	recording atomic.Bool
	length    atomic.Int32
	mem       [Capacity]atomic.Uint32
}

// NewTrack returns an empty, stopped track.
func NewTrack() *Track {
	return &Track{}
}

// Reset forgets the recording but keeps the mode flags.
func (t *Track) Reset() {
	t.length.Store(0)
}

// Record appends a beat while recording. A full track ignores further beats.
func (t *Track) Record(beat uint8) {
	if !t.recording.Load() {
		return
	}
	n := t.length.Load()
	if n >= Capacity {
		return
	}
	t.mem[n].Store(uint32(beat))
	t.length.Store(n + 1)
}

// IsPlaying reports playback mode; a track without content never plays.
func (t *Track) IsPlaying() bool {
	return t.playing.Load() && t.length.Load() > 0
}

func (t *Track) IsRecording() bool {
	return t.recording.Load()
}

// SetRecording turns recording on or off. Recording stops playback.
func (t *Track) SetRecording(on bool) {
	t.recording.Store(on)
	if on {
		t.playing.Store(false)
	}
}

// SetPlaying switches playback and always stops recording.
func (t *Track) SetPlaying(on bool) {
	t.recording.Store(false)
	t.playing.Store(on)
}

// Len returns the number of recorded beats.
func (t *Track) Len() int {
	return int(t.length.Load())
}

// Last returns the most recently recorded beat, or Empty.
func (t *Track) Last() uint8 {
	n := t.length.Load()
	if n == 0 {
		return Empty
	}
	return uint8(t.mem[n-1].Load())
}

// Next returns the recorded beat for the given running beat total.
func (t *Track) Next(total uint32) uint8 {
	n := t.length.Load()
	if !t.playing.Load() || n == 0 {
		return 0
	}
	return uint8(t.mem[total%uint32(n)].Load())
}

// Pattern copies out the recorded beats.
func (t *Track) Pattern() []uint8 {
	n := t.Len()
	out := make([]uint8, n)
	for i := range out {
		out[i] = uint8(t.mem[i].Load())
	}
	return out
}

// Restore replaces the track contents, for loading a saved pattern.
// Beats past Capacity are dropped.
func (t *Track) Restore(pattern []uint8, playing bool) {
	n := min(len(pattern), Capacity)
	for i := 0; i < Capacity; i++ {
		var v uint32
		if i < n {
			v = uint32(pattern[i])
		}
		t.mem[i].Store(v)
	}
	t.length.Store(int32(n))
	t.recording.Store(false)
	t.playing.Store(playing)
}
