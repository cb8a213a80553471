package store

import (
	"encoding/binary"
	"errors"
)

// Block layout. Multi-byte fields are big-endian.
const (
	PageSize   = 256
	SectorSize = 4096

	offVolume        = 0 // 2 bytes
	offBPM           = 2 // 2 bytes
	offFilter        = 4
	offSample        = 5
	offGate          = 6 // 2 bytes
	offProbDirection = 8
	offProbRetrig    = 9
	offProbJump      = 10
	offProbGate      = 11
	offProbTunnel    = 12
	offSeqLen        = 98
	offSeqPlaying    = 99
	offSeqMem        = 100
	offTrailer       = PageSize - 4

	// PatternCapacity matches the sequencer track.
	PatternCapacity = 128
)

var trailer = [4]byte{0x04, 0x03, 0x02, 0x01}

// ErrBadTrailer means the page was never written or is corrupt.
var ErrBadTrailer = errors.New("store: bad trailer")

// Block is one persisted page.
type Block [PageSize]byte

// Snapshot is the persisted configuration.
type Snapshot struct {
	// Volume is the raw volume knob position (0..4095); distortion and
	// volume reduction are derived from it.
	Volume uint16 `json:"volume"`
	BPM    uint16 `json:"bpm"`
	Filter uint8  `json:"filter"`
	Sample uint8  `json:"sample"`
	Gate   uint16 `json:"gate"`

	ProbDirection uint8 `json:"probDirection"`
	ProbRetrig    uint8 `json:"probRetrig"`
	ProbJump      uint8 `json:"probJump"`
	ProbGate      uint8 `json:"probGate"`
	ProbTunnel    uint8 `json:"probTunnel"`

	Pattern []uint8 `json:"pattern"`
	Playing bool    `json:"playing"`
}

// Encode lays the snapshot out in a page with a valid trailer. Unused
// bytes are zero. The playing flag is only stored for a non-empty pattern.
func (s Snapshot) Encode() Block {
	var b Block
	binary.BigEndian.PutUint16(b[offVolume:], s.Volume)
	binary.BigEndian.PutUint16(b[offBPM:], s.BPM)
	b[offFilter] = s.Filter
	b[offSample] = s.Sample
	binary.BigEndian.PutUint16(b[offGate:], s.Gate)

	b[offProbDirection] = s.ProbDirection
	b[offProbRetrig] = s.ProbRetrig
	b[offProbJump] = s.ProbJump
	b[offProbGate] = s.ProbGate
	b[offProbTunnel] = s.ProbTunnel

	n := min(len(s.Pattern), PatternCapacity)
	b[offSeqLen] = uint8(n)
	if s.Playing && n > 0 {
		b[offSeqPlaying] = 1
	}
	copy(b[offSeqMem:offSeqMem+PatternCapacity], s.Pattern[:n])

	copy(b[offTrailer:], trailer[:])
	return b
}

// Valid reports whether the page carries the trailer.
func (b *Block) Valid() bool {
	return [4]byte(b[offTrailer:]) == trailer
}

// Decode reads a page. Nothing is trusted unless the trailer matches.
func Decode(b Block) (Snapshot, error) {
	if !b.Valid() {
		return Snapshot{}, ErrBadTrailer
	}
	s := Snapshot{
		Volume: binary.BigEndian.Uint16(b[offVolume:]),
		BPM:    binary.BigEndian.Uint16(b[offBPM:]),
		Filter: b[offFilter],
		Sample: b[offSample],
		Gate:   binary.BigEndian.Uint16(b[offGate:]),

		ProbDirection: b[offProbDirection],
		ProbRetrig:    b[offProbRetrig],
		ProbJump:      b[offProbJump],
		ProbGate:      b[offProbGate],
		ProbTunnel:    b[offProbTunnel],
	}
	n := min(int(b[offSeqLen]), PatternCapacity)
	s.Pattern = make([]uint8, n)
	copy(s.Pattern, b[offSeqMem:offSeqMem+n])
	s.Playing = b[offSeqPlaying] == 1 && n > 0
	return s, nil
}
