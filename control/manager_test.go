package control

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pikocore/bank"
	"go-pikocore/engine"
	"go-pikocore/midi"
	"go-pikocore/sequencer"
	"go-pikocore/store"
)

type fakeEngine struct {
	tel engine.Telemetry
}

func (f *fakeEngine) Telemetry() engine.Telemetry { return f.tel }

type memStore struct {
	snap    *store.Snapshot
	err     error
	saves   int
	history []store.Snapshot // newest first
}

func (s *memStore) Load() (store.Snapshot, error) {
	if s.err != nil {
		return store.Snapshot{}, s.err
	}
	if s.snap == nil {
		return store.Snapshot{}, store.ErrNoSave
	}
	return *s.snap, nil
}

func (s *memStore) Save(snap store.Snapshot) error {
	s.snap = &snap
	s.saves++
	return nil
}

func (s *memStore) ListSnapshots() ([]store.SaveInfo, error) {
	saves := make([]store.SaveInfo, len(s.history))
	for i := range s.history {
		saves[i] = store.SaveInfo{
			Filename:  strconv.Itoa(i),
			Timestamp: time.Unix(int64(5000-i), 0),
		}
	}
	return saves, nil
}

func (s *memStore) LoadSnapshot(filename string) (store.Snapshot, error) {
	i, err := strconv.Atoi(filename)
	if err != nil {
		return store.Snapshot{}, err
	}
	return s.history[i], nil
}

type fakeNotes struct {
	notes    []uint8
	released int
}

func (f *fakeNotes) On(note, velocity uint8) error {
	f.notes = append(f.notes, note)
	return nil
}

func (f *fakeNotes) Release() error {
	f.released++
	return nil
}

type rig struct {
	m     *Manager
	c     *engine.Controls
	eng   *fakeEngine
	track *sequencer.Track
	st    *memStore
	now   time.Time
}

func newRig(t *testing.T, st *memStore) *rig {
	t.Helper()
	var samples []bank.Sample
	for i := 0; i < 4; i++ {
		samples = append(samples, bank.Sample{Name: "s", Beats: 8, Data: make([]uint8, 8*500)})
	}
	b, err := bank.NewMemory(2000, 120, samples)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.ReadEvery = 1
	cfg.KnobSettle = 0
	cfg.SaveHoldoff = 0
	cfg.SaveDelay = 100 * time.Millisecond

	if st == nil {
		st = &memStore{}
	}
	r := &rig{
		c:     engine.NewControls(2000, 120),
		eng:   &fakeEngine{tel: engine.Telemetry{Held: -1, Held2: -1}},
		track: sequencer.NewTrack(),
		st:    st,
		now:   time.Unix(1000, 0),
	}
	r.m = NewManager(cfg, r.c, r.eng, r.track, b, st)
	r.m.Start(r.now)
	return r
}

func (r *rig) step(n int) {
	for i := 0; i < n; i++ {
		r.now = r.now.Add(time.Millisecond)
		r.m.Step(r.now)
	}
}

// page moves the selector knob to the middle of page p.
func (r *rig) page(p int) {
	r.m.SetKnob(KnobSelect, p*512+256)
	r.step(1)
}

func TestKnobPages(t *testing.T) {
	r := newRig(t, nil)

	r.page(PageJump)
	assert.Equal(t, PageJump, r.m.page)
	r.m.SetKnob(KnobA, KnobMax)
	r.m.SetKnob(KnobB, 1000)
	r.step(1)
	assert.Equal(t, uint8(254), r.c.Probability(engine.ProbJump))
	assert.Equal(t, uint8(1000*254/KnobMax), r.c.Probability(engine.ProbRetrig))

	r.page(PageFilter)
	r.m.SetKnob(KnobA, 0)
	r.step(1)
	assert.Equal(t, 0, r.c.Filter())

	r.page(PageSample)
	r.m.SetKnob(KnobA, KnobMax)
	r.step(1)
	assert.Equal(t, 3, r.c.Sample())
}

func TestKnobsIgnoredDuringRetrigger(t *testing.T) {
	r := newRig(t, nil)
	r.page(PageTunnel)

	r.eng.tel.Retrig = engine.RetrigActive
	r.m.SetKnob(KnobA, KnobMax)
	r.step(3)
	assert.Equal(t, uint8(0), r.c.Probability(engine.ProbTunnel))

	r.eng.tel.Retrig = engine.RetrigIdle
	r.step(1)
	assert.Equal(t, uint8(254), r.c.Probability(engine.ProbTunnel))
}

func TestVolumeAndTempoKnobs(t *testing.T) {
	r := newRig(t, nil)
	r.page(PageVolume)

	r.m.SetKnob(KnobA, 1000)
	r.step(1)
	assert.Equal(t, 16, r.c.VolumeReduce())
	assert.Equal(t, 0, r.c.Distortion())

	r.m.SetKnob(KnobA, 3500)
	r.step(1)
	assert.Equal(t, 13, r.c.Distortion())
	assert.Equal(t, 0, r.c.VolumeReduce())

	r.m.SetKnob(KnobB, KnobMax)
	r.step(1)
	assert.Equal(t, 305, r.c.Bpm())
	for _, lv := range r.m.leds.Levels() {
		assert.Equal(t, uint8(255), lv, "tempo shown in binary")
	}
}

func TestTempoKnobLockedByExternalClock(t *testing.T) {
	r := newRig(t, nil)
	r.page(PageVolume)
	r.m.ClockPulse(r.now)
	r.step(1)
	bpm := r.c.Bpm()

	r.m.SetKnob(KnobB, KnobMax)
	r.step(1)
	assert.Equal(t, bpm, r.c.Bpm())

	r.now = r.now.Add(tempoLockout + time.Second)
	r.m.SetKnob(KnobB, 0)
	r.step(1)
	assert.Equal(t, 50, r.c.Bpm())
}

func TestMuteCombo(t *testing.T) {
	r := newRig(t, nil)
	press := func(on bool) {
		for _, b := range muteCombo {
			r.m.SetButton(b, on)
		}
		r.step(buttonSettle + 2)
	}

	press(true)
	assert.True(t, r.c.Muted())
	press(false)
	assert.True(t, r.c.Muted())
	press(true)
	assert.False(t, r.c.Muted())
	assert.False(t, r.c.Syncing())
}

func TestButtonsPublishMask(t *testing.T) {
	r := newRig(t, nil)
	r.m.SetButton(2, true)
	r.m.HandleMIDI(midi.Event{Type: midi.NoteOn, Note: 13, Velocity: 100})
	r.step(1)
	assert.Equal(t, uint8(1<<2|1<<5), r.c.Buttons())

	r.m.HandleMIDI(midi.Event{Type: midi.NoteOff, Note: 13})
	r.m.SetButton(2, false)
	r.step(buttonSettle + 1)
	assert.Equal(t, uint8(0), r.c.Buttons())
}

func TestClockInput(t *testing.T) {
	r := newRig(t, nil)
	for i := 0; i < 6; i++ {
		r.m.ClockPulse(r.now)
		r.step(250)
	}
	assert.True(t, r.c.Syncing())
	assert.True(t, r.c.SyncPlay())
	assert.Equal(t, 120-bpmUndershoot, r.c.Bpm())

	r.now = r.now.Add(syncTimeout)
	r.step(1)
	assert.False(t, r.c.SyncPlay(), "silent while the clock is gone")

	r.m.ClockPulse(r.now)
	r.step(1)
	assert.True(t, r.c.SyncPlay())
}

func TestClockInputIgnoresGlitch(t *testing.T) {
	r := newRig(t, nil)
	for i := 0; i < 6; i++ {
		r.m.ClockPulse(r.now)
		r.step(250)
	}
	require.Equal(t, 120-bpmUndershoot, r.c.Bpm())

	// a pulse 1ms after the last one is capped before averaging
	r.m.ClockPulse(r.now)
	r.step(1)
	r.m.ClockPulse(r.now)
	r.step(1)
	capped := engine.MaxBPM + bpmUndershoot
	want := (4*120+capped+2)/5 - bpmUndershoot
	assert.Equal(t, want, r.c.Bpm())

	for i := 0; i < 5; i++ {
		r.step(250)
		r.m.ClockPulse(r.now)
	}
	r.step(1)
	assert.Equal(t, 120-bpmUndershoot, r.c.Bpm())
}

func TestReleaseCancelsRetrigger(t *testing.T) {
	r := newRig(t, nil)
	tap := func(on bool) {
		r.m.SetButton(0, on)
		r.m.SetButton(7, on)
		r.step(buttonSettle + 1)
	}

	tap(true)
	tap(false)
	assert.False(t, r.c.CancelPending(), "nothing to cancel while idle")

	tap(true)
	r.eng.tel.Retrig = engine.RetrigActive
	tap(false)
	assert.True(t, r.c.CancelPending())
}

func TestMIDITransportAndClock(t *testing.T) {
	r := newRig(t, nil)
	r.m.HandleMIDI(midi.Event{Type: midi.Stop})
	r.step(1)
	assert.True(t, r.c.Muted())

	r.m.HandleMIDI(midi.Event{Type: midi.Start})
	r.step(1)
	assert.False(t, r.c.Muted())

	tick := time.Minute / (120 * midi.PPQN)
	at := r.now
	for i := 0; i <= 32; i++ {
		r.m.HandleMIDI(midi.Event{Type: midi.Clock, Time: at})
		at = at.Add(tick)
	}
	r.step(1)
	assert.Equal(t, 113, r.c.Bpm())
}

func TestMIDIControlChanges(t *testing.T) {
	r := newRig(t, nil)
	r.m.HandleMIDI(midi.Event{Type: midi.CC, Note: 7, Velocity: 0})
	r.m.HandleMIDI(midi.Event{Type: midi.CC, Note: 71, Velocity: 127})
	r.m.HandleMIDI(midi.Event{Type: midi.CC, Note: 20, Velocity: 127})
	r.step(1)
	assert.Equal(t, engine.VolumeModMax, r.c.VolumeMod())
	assert.Equal(t, engine.ResonanceMax, r.c.Resonance())
	assert.Equal(t, PageVolume, r.m.page)
}

func TestSaveDebounced(t *testing.T) {
	r := newRig(t, nil)
	r.page(PageGate)
	r.m.SetKnob(KnobB, KnobMax)
	r.step(50)
	assert.Equal(t, 0, r.st.saves)
	r.step(60)
	require.Equal(t, 1, r.st.saves)
	assert.Equal(t, uint8(254), r.st.snap.ProbGate)
	r.step(200)
	assert.Equal(t, 1, r.st.saves)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := &memStore{}
	r := newRig(t, st)
	r.c.SetProbability(engine.ProbJump, 11)
	r.c.SetProbability(engine.ProbDirection, 22)
	r.c.SetProbability(engine.ProbRetrig, 33)
	r.c.SetProbability(engine.ProbGate, 44)
	r.c.SetProbability(engine.ProbTunnel, 55)
	r.c.SetSample(2)
	r.c.SetFilter(30)
	r.track.Restore([]uint8{3, 1, 4, 1, 5}, true)
	r.page(PageVolume)
	r.m.SetKnob(KnobB, 2007)
	r.step(1)
	r.m.RequestSave()
	r.step(1)
	require.Equal(t, 1, st.saves)

	r2 := newRig(t, st)
	assert.Equal(t, 175, r2.c.Bpm())
	assert.Equal(t, 2, r2.c.Sample())
	assert.Equal(t, 30, r2.c.Filter())
	for p, w := range map[engine.Prob]uint8{
		engine.ProbJump:      11,
		engine.ProbDirection: 22,
		engine.ProbRetrig:    33,
		engine.ProbGate:      44,
		engine.ProbTunnel:    55,
	} {
		assert.Equal(t, w, r2.c.Probability(p), p.String())
	}
	assert.Equal(t, []uint8{3, 1, 4, 1, 5}, r2.track.Pattern())
	assert.True(t, r2.track.IsPlaying())
	assert.Equal(t, "loaded", r2.m.View().Message)
}

func TestCorruptStoreKeepsDefaults(t *testing.T) {
	r := newRig(t, &memStore{err: store.ErrBadTrailer})
	def := engine.NewControls(2000, 120)
	assert.Equal(t, def.Bpm(), r.c.Bpm())
	assert.Equal(t, def.Filter(), r.c.Filter())
	assert.Equal(t, def.GateThreshold(), r.c.GateThreshold())
	for _, p := range engine.Probs {
		assert.Equal(t, uint8(0), r.c.Probability(p))
	}
	assert.Equal(t, 0, r.track.Len())
}

func TestOnsetDrivesTriggerAndNotes(t *testing.T) {
	r := newRig(t, nil)
	notes := &fakeNotes{}
	r.m.SetNoteOut(notes)

	r.eng.tel.Onsets = 1
	r.eng.tel.Beat = 3
	r.step(1)
	assert.True(t, r.m.trigger.High())
	assert.Equal(t, []uint8{36 + 3}, notes.notes)

	r.step(20)
	assert.False(t, r.m.trigger.High())
	assert.Len(t, notes.notes, 1, "one note per onset")

	r.m.ToggleMute()
	r.step(1)
	assert.True(t, r.c.Muted())
	assert.Equal(t, 1, notes.released)
}

func TestLEDPriority(t *testing.T) {
	r := newRig(t, nil)
	r.eng.tel.Beat = 5
	r.step(1)
	assert.Equal(t, uint8(63), r.m.leds.Levels()[5])

	r.eng.tel.Held, r.eng.tel.Held2 = 1, 2
	r.step(1)
	lv := r.m.leds.Levels()
	assert.Equal(t, uint8(63), lv[1])
	assert.Equal(t, uint8(63), lv[2])
	assert.Equal(t, uint8(0), lv[5])

	r.page(PageSequencer)
	assert.Equal(t, uint8(242), r.m.leds.Levels()[PageSequencer])

	r.m.SetKnob(KnobA, KnobMax)
	r.step(1)
	require.True(t, r.track.IsRecording())
	r.track.Record(6)
	r.step(1)
	assert.Equal(t, uint8(255), r.m.leds.Levels()[6])
}

func TestLoadPreviousSave(t *testing.T) {
	st := &memStore{history: []store.Snapshot{
		{BPM: 150, Volume: 2500},
		{BPM: 100, Volume: 2500},
		{BPM: 90, Volume: 2500},
	}}
	r := newRig(t, st)

	r.m.RequestPrevious()
	r.step(1)
	assert.Equal(t, 100, r.c.Bpm())
	assert.Contains(t, r.m.message, "restored")

	r.m.RequestPrevious()
	r.step(1)
	assert.Equal(t, 90, r.c.Bpm())

	r.m.RequestPrevious()
	r.step(1)
	assert.Equal(t, 90, r.c.Bpm(), "the oldest save stays put")

	r.m.RequestSave()
	r.step(1)
	r.m.RequestPrevious()
	r.step(1)
	assert.Equal(t, 100, r.c.Bpm(), "a save starts again from the newest")
}

func TestLoadPreviousNeedsHistory(t *testing.T) {
	r := newRig(t, &memStore{history: []store.Snapshot{{BPM: 150}}})
	r.m.RequestPrevious()
	r.step(1)
	assert.Equal(t, "no earlier save", r.m.message)
	assert.Equal(t, 120, r.c.Bpm())
}
