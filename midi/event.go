package midi

import (
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// EventType identifies a message the instrument reacts to
type EventType uint8

const (
	Clock EventType = iota
	Start
	Continue
	Stop
	NoteOn
	NoteOff
	CC
)

var eventNames = [...]string{"clock", "start", "continue", "stop", "note-on", "note-off", "cc"}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event is an incoming message stamped with the host time it arrived
type Event struct {
	Type     EventType
	Channel  uint8
	Note     uint8 // note number, or controller number for CC
	Velocity uint8 // velocity, or controller value for CC
	Time     time.Time
}

// Decode converts a raw message. ok is false for messages the instrument
// ignores.
func Decode(msg gomidi.Message, at time.Time) (ev Event, ok bool) {
	ev.Time = at
	var channel, key, velocity, cc, value uint8
	switch {
	case msg.Is(gomidi.TimingClockMsg):
		ev.Type = Clock
	case msg.Is(gomidi.StartMsg):
		ev.Type = Start
	case msg.Is(gomidi.ContinueMsg):
		ev.Type = Continue
	case msg.Is(gomidi.StopMsg):
		ev.Type = Stop
	case msg.GetNoteOn(&channel, &key, &velocity):
		ev.Type = NoteOn
		if velocity == 0 {
			ev.Type = NoteOff
		}
		ev.Channel, ev.Note, ev.Velocity = channel, key, velocity
	case msg.GetNoteOff(&channel, &key, &velocity):
		ev.Type = NoteOff
		ev.Channel, ev.Note = channel, key
	case msg.GetControlChange(&channel, &cc, &value):
		ev.Type = CC
		ev.Channel, ev.Note, ev.Velocity = channel, cc, value
	default:
		return Event{}, false
	}
	return ev, true
}
