package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// NoteOut sends one note per beat onset. In monophonic mode the previous
// note is released before the next one starts.
type NoteOut struct {
	send       func(msg gomidi.Message) error
	channel    uint8
	monophonic bool
	last       int
}

// NewNoteOut opens outPort for sending on channel (0-based).
func NewNoteOut(outPort drivers.Out, channel uint8, monophonic bool) (*NoteOut, error) {
	send, err := gomidi.SendTo(outPort)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return newNoteOut(send, channel, monophonic), nil
}

func newNoteOut(send func(gomidi.Message) error, channel uint8, monophonic bool) *NoteOut {
	return &NoteOut{send: send, channel: channel & 0x0F, monophonic: monophonic, last: -1}
}

// On starts note, releasing the held one first in monophonic mode.
func (n *NoteOut) On(note, velocity uint8) error {
	if n.monophonic && n.last >= 0 {
		if err := n.send(gomidi.NoteOff(n.channel, uint8(n.last))); err != nil {
			return err
		}
	}
	n.last = int(note)
	return n.send(gomidi.NoteOn(n.channel, note, velocity))
}

// Off releases note.
func (n *NoteOut) Off(note uint8) error {
	if n.last == int(note) {
		n.last = -1
	}
	return n.send(gomidi.NoteOff(n.channel, note))
}

// Release releases whatever note is held.
func (n *NoteOut) Release() error {
	if n.last < 0 {
		return nil
	}
	return n.Off(uint8(n.last))
}
