package control

import (
	"go-pikocore/debug"
	"go-pikocore/midi"
)

// Attach forwards a device's events into the loop until the device is
// closed. A device that can show colours also mirrors the LEDs.
func (m *Manager) Attach(d midi.Device) {
	if p, ok := d.(PadSink); ok {
		m.outMu.Lock()
		m.pads, m.padsID = p, d.ID()
		m.outMu.Unlock()
	}
	debug.Log("control", "attached %s (%s)", d.ID(), d.Kind())
	go func() {
		for ev := range d.Events() {
			m.HandleMIDI(ev)
		}
	}()
}

// Detach forgets the device with id.
func (m *Manager) Detach(id string) {
	m.outMu.Lock()
	defer m.outMu.Unlock()
	if m.padsID == id {
		m.pads, m.padsID = nil, ""
	}
}
