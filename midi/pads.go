package midi

import (
	"fmt"
	"time"

	"go-pikocore/debug"

	"github.com/lucasb-eyer/go-colorful"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// NumPads is how many grid pads act as buttons (the bottom row).
const NumPads = 8

// statusPad is the right-hand scene button of the bottom row.
const statusPad = NumPads

// Pads drives a Launchpad X in programmer mode as the button surface: the
// bottom row presses become NoteOn/NoteOff events with the pad index as
// note, and the same row shows the LED levels.
type Pads struct {
	id       string
	send     func(msg gomidi.Message) error
	stopFunc func()
	events   chan Event

	prev [NumPads + 1]uint8
}

// NewPads configures the Launchpad on outPort and listens on inPort.
func NewPads(id string, inPort drivers.In, outPort drivers.Out) (*Pads, error) {
	p := &Pads{
		id:     id,
		events: make(chan Event, 32),
	}
	for i := range p.prev {
		p.prev[i] = 0xFF
	}

	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		p.send = send

		// Programmer mode: F0 00 20 29 02 0C 00 7F F7
		p.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}))
		// Full brightness: F0 00 20 29 02 0C 08 7F F7
		p.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}))
	}

	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		ev, ok := Decode(msg, time.Now())
		if !ok || (ev.Type != NoteOn && ev.Type != NoteOff) {
			return
		}
		pad := noteToPad(ev.Note)
		if pad < 0 {
			return
		}
		ev.Note = uint8(pad)
		select {
		case p.events <- ev:
		default:
		}
	})
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	p.stopFunc = stop
	return p, nil
}

func (p *Pads) ID() string           { return p.id }
func (p *Pads) Kind() DeviceKind     { return KindPads }
func (p *Pads) Events() <-chan Event { return p.events }

// Show lights the bottom row with levels (0..255, tinted by tint) and the
// status pad with status. Only pads whose colour changed are sent.
func (p *Pads) Show(levels [NumPads]uint8, tint, status [3]uint8) {
	if p.send == nil {
		return
	}
	var colors [NumPads + 1]uint8
	for i, lv := range levels {
		colors[i] = NearestColor(scaleRGB(tint, lv))
	}
	colors[statusPad] = NearestColor(status)

	sent := 0
	for i, c := range colors {
		if p.prev[i] == c {
			continue
		}
		p.send(gomidi.NoteOn(0, padToNote(i), c))
		p.prev[i] = c
		sent++
	}
	if sent > 0 {
		debug.LogEvery(100, "pads", "sent %d pad colours", sent)
	}
}

func (p *Pads) Close() error {
	if p.send != nil {
		for i := range p.prev {
			p.send(gomidi.NoteOn(0, padToNote(i), 0))
		}
	}
	if p.stopFunc != nil {
		p.stopFunc()
	}
	close(p.events)
	return nil
}

func scaleRGB(rgb [3]uint8, level uint8) [3]uint8 {
	var out [3]uint8
	for i, c := range rgb {
		out[i] = uint8(int(c) * int(level) / 255)
	}
	return out
}

// Launchpad X palette velocities with their approximate colours
var padPalette = []struct {
	velocity uint8
	color    colorful.Color
}{
	{0, rgb(0, 0, 0)},
	{5, rgb(255, 0, 0)},
	{7, rgb(180, 60, 60)},
	{9, rgb(255, 100, 0)},
	{11, rgb(180, 80, 40)},
	{13, rgb(255, 200, 0)},
	{17, rgb(0, 180, 0)},
	{19, rgb(0, 100, 0)},
	{21, rgb(0, 255, 0)},
	{37, rgb(0, 200, 200)},
	{43, rgb(40, 60, 120)},
	{45, rgb(0, 100, 255)},
	{49, rgb(150, 0, 200)},
	{53, rgb(255, 80, 180)},
	{97, rgb(180, 180, 60)},
	{1, rgb(60, 60, 60)},
	{3, rgb(255, 255, 255)},
}

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// NearestColor maps an RGB value to the closest palette velocity, compared
// in Lab space.
func NearestColor(c [3]uint8) uint8 {
	target := rgb(c[0], c[1], c[2])
	best := padPalette[0].velocity
	bestDist := target.DistanceLab(padPalette[0].color)
	for _, p := range padPalette[1:] {
		if d := target.DistanceLab(p.color); d < bestDist {
			best, bestDist = p.velocity, d
		}
	}
	return best
}

// Bottom row: notes 11-18, scene button 19.
func padToNote(pad int) uint8 {
	return uint8(11 + pad)
}

func noteToPad(note uint8) int {
	if note < 11 || note > 18 {
		return -1
	}
	return int(note - 11)
}
