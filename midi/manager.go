package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-pikocore/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// DeviceEvent is emitted when devices connect/disconnect
type DeviceEvent struct {
	Type   DeviceEventType
	Device Device
	ID     string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug detection of the clock/note input and of
// a Launchpad used as button pads
type DeviceManager struct {
	inputName string
	usePads   bool

	devices  map[string]Device
	mu       sync.RWMutex
	events   chan DeviceEvent
	pollRate time.Duration
}

// NewDeviceManager watches for an input whose name contains inputName
// (any non-Launchpad input when empty) and, with usePads, for a Launchpad.
func NewDeviceManager(inputName string, usePads bool) *DeviceManager {
	return &DeviceManager{
		inputName: strings.ToLower(inputName),
		usePads:   usePads,
		devices:   make(map[string]Device),
		events:    make(chan DeviceEvent, 16),
		pollRate:  time.Second,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Devices returns a snapshot of connected devices
func (dm *DeviceManager) Devices() map[string]Device {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]Device, len(dm.devices))
	for k, v := range dm.devices {
		out[k] = v
	}
	return out
}

// Pads returns the connected Launchpad (or nil)
func (dm *DeviceManager) Pads() *Pads {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	for _, d := range dm.devices {
		if p, ok := d.(*Pads); ok {
			return p
		}
	}
	return nil
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

// ports lists MIDI ports with a timeout (CoreMIDI can hang)
func ports() (ins []drivers.In, outs []drivers.Out, ok bool) {
	type portsResult struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		return r.ins, r.outs, true
	case <-time.After(3 * time.Second):
		return nil, nil, false
	}
}

func (dm *DeviceManager) scan() {
	inPorts, outPorts, ok := ports()
	if !ok {
		debug.Log("midi", "port scan timed out")
		return
	}

	seenIDs := make(map[string]bool)
	for _, inPort := range inPorts {
		id := inPort.String()
		name := strings.ToLower(id)
		pads := IsLaunchpad(name)
		if pads && !dm.usePads {
			continue
		}
		if !pads && dm.inputName != "" && !strings.Contains(name, dm.inputName) {
			continue
		}
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.devices[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		var dev Device
		var err error
		if pads {
			dev, err = NewPads(id, inPort, matchingOut(outPorts, name))
		} else {
			dev, err = NewInput(id, inPort)
		}
		if err != nil {
			debug.Log("midi", "connect %s: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.devices[id] = dev
		dm.mu.Unlock()
		debug.Log("midi", "connected %s (%s)", id, dev.Kind())
		dm.events <- DeviceEvent{Type: DeviceConnected, Device: dev, ID: id}
	}

	dm.mu.Lock()
	var toRemove []string
	for id := range dm.devices {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		dm.devices[id].Close()
		delete(dm.devices, id)
		debug.Log("midi", "disconnected %s", id)
		dm.events <- DeviceEvent{Type: DeviceDisconnected, ID: id}
	}
	dm.mu.Unlock()
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, d := range dm.devices {
		d.Close()
	}
	dm.devices = make(map[string]Device)
}

func matchingOut(outs []drivers.Out, name string) drivers.Out {
	for _, op := range outs {
		if strings.ToLower(op.String()) == name {
			return op
		}
	}
	return nil
}

// FindOut returns the first output port whose name contains name.
func FindOut(name string) drivers.Out {
	_, outs, ok := ports()
	if !ok || name == "" {
		return nil
	}
	name = strings.ToLower(name)
	for _, op := range outs {
		if strings.Contains(strings.ToLower(op.String()), name) {
			return op
		}
	}
	return nil
}

// IsLaunchpad reports whether a port name belongs to a Launchpad.
func IsLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
