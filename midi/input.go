package midi

import (
	"fmt"
	"time"

	"go-pikocore/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// DeviceKind identifies what a connected port is used for
type DeviceKind int

const (
	KindInput DeviceKind = iota
	KindPads
)

func (k DeviceKind) String() string {
	if k == KindPads {
		return "pads"
	}
	return "input"
}

// Device is a connected MIDI source
type Device interface {
	ID() string
	Kind() DeviceKind
	Events() <-chan Event
	Close() error
}

// Input listens to a MIDI input port for clock, transport, notes and CCs
type Input struct {
	id       string
	inPort   drivers.In
	stopFunc func()
	events   chan Event
}

// NewInput opens inPort. Timing clock is filtered out by the driver unless
// time code is requested, so the listener asks for it.
func NewInput(id string, inPort drivers.In) (*Input, error) {
	in := &Input{
		id:     id,
		inPort: inPort,
		events: make(chan Event, 256),
	}

	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		ev, ok := Decode(msg, time.Now())
		if !ok {
			return
		}
		select {
		case in.events <- ev:
		default:
			debug.LogEvery(100, "midi-in", "dropped %s from %s", ev.Type, id)
		}
	}, gomidi.UseTimeCode(), gomidi.HandleError(func(err error) {
		debug.Log("midi-in", "listen %s: %v", id, err)
	}))
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", id, err)
	}
	in.stopFunc = stop
	return in, nil
}

func (in *Input) ID() string           { return in.id }
func (in *Input) Kind() DeviceKind     { return KindInput }
func (in *Input) Events() <-chan Event { return in.events }

func (in *Input) Close() error {
	if in.stopFunc != nil {
		in.stopFunc()
	}
	close(in.events)
	return nil
}
