package control

import (
	"errors"
	"time"

	"go-pikocore/debug"
	"go-pikocore/engine"
	"go-pikocore/store"
)

// Snapshot captures the persisted configuration.
func (m *Manager) Snapshot() store.Snapshot {
	c := m.c
	return store.Snapshot{
		Volume:        uint16(m.volume),
		BPM:           uint16(m.bpm),
		Filter:        uint8(c.Filter()),
		Sample:        uint8(c.Sample()),
		Gate:          uint16(c.GateThreshold()),
		ProbDirection: c.Probability(engine.ProbDirection),
		ProbRetrig:    c.Probability(engine.ProbRetrig),
		ProbJump:      c.Probability(engine.ProbJump),
		ProbGate:      c.Probability(engine.ProbGate),
		ProbTunnel:    c.Probability(engine.ProbTunnel),
		Pattern:       m.track.Pattern(),
		Playing:       m.track.IsPlaying(),
	}
}

// Restore applies a snapshot to the controls and the sequencer track.
func (m *Manager) Restore(s store.Snapshot) {
	c := m.c
	m.setVolume(int(s.Volume))
	if c.SetBpm(int(s.BPM)) {
		m.bpm = int(s.BPM)
	}
	c.SetFilter(int(s.Filter))
	c.SetSample(min(int(s.Sample), m.bank.NumSamples()-1))
	c.SetGateThreshold(int(s.Gate))
	c.SetProbability(engine.ProbDirection, int(s.ProbDirection))
	c.SetProbability(engine.ProbRetrig, int(s.ProbRetrig))
	c.SetProbability(engine.ProbJump, int(s.ProbJump))
	c.SetProbability(engine.ProbGate, int(s.ProbGate))
	c.SetProbability(engine.ProbTunnel, int(s.ProbTunnel))
	m.track.Restore(s.Pattern, s.Playing)
}

func (m *Manager) save(now time.Time) {
	m.saver.Cancel()
	if m.store == nil {
		return
	}
	if err := m.store.Save(m.Snapshot()); err != nil {
		m.message = "save failed: " + err.Error()
		debug.Log("store", "save: %v", err)
		return
	}
	m.saveUntil = now.Add(flashShow)
	m.histBack = 0
	m.message = "saved"
	debug.Log("store", "saved bpm=%d pattern=%d", m.bpm, m.track.Len())
}

// load restores the saved configuration. A missing or corrupt block keeps
// the current settings.
func (m *Manager) load(now time.Time) {
	m.saver.Cancel()
	if m.store == nil {
		return
	}
	snap, err := m.store.Load()
	switch {
	case errors.Is(err, store.ErrNoSave):
		m.message = "nothing saved"
		return
	case errors.Is(err, store.ErrBadTrailer):
		m.message = "saved block invalid, using defaults"
		debug.Log("store", "load: %v", err)
		return
	case err != nil:
		m.message = "load failed: " + err.Error()
		debug.Log("store", "load: %v", err)
		return
	}
	m.Restore(snap)
	m.loadUntil = now.Add(flashShow)
	m.message = "loaded"
	debug.Log("store", "loaded bpm=%d pattern=%d", snap.BPM, len(snap.Pattern))
}

// loadPrevious restores the history copy one step older than the last one
// restored. The oldest copy stays put.
func (m *Manager) loadPrevious(now time.Time) {
	h, ok := m.store.(History)
	if !ok {
		m.message = "no history"
		return
	}
	saves, err := h.ListSnapshots()
	if err != nil {
		m.message = "history failed: " + err.Error()
		debug.Log("store", "list: %v", err)
		return
	}
	if len(saves) < 2 {
		m.message = "no earlier save"
		return
	}
	back := min(m.histBack+1, len(saves)-1)
	snap, err := h.LoadSnapshot(saves[back].Filename)
	if err != nil {
		m.message = "history failed: " + err.Error()
		debug.Log("store", "load %s: %v", saves[back].Filename, err)
		return
	}
	m.saver.Cancel()
	m.histBack = back
	m.Restore(snap)
	m.loadUntil = now.Add(flashShow)
	m.message = "restored " + saves[back].Timestamp.Format("Jan 2 15:04:05")
	debug.Log("store", "restored %s", saves[back].Filename)
}
