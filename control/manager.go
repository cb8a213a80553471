// Package control runs the polling loop: it reads buttons, knobs, the clock
// input and MIDI, turns them into engine controls, drives the trigger
// output and LEDs, and persists the configuration.
package control

import (
	"context"
	"sync"
	"time"

	"go-pikocore/bank"
	"go-pikocore/debug"
	"go-pikocore/display"
	"go-pikocore/engine"
	"go-pikocore/midi"
	"go-pikocore/sequencer"
	"go-pikocore/store"
)

// Knob indices
const (
	KnobSelect = iota
	KnobA
	KnobB
	NumKnobs
)

// muteCombo is the set of buttons that toggles mute when held together.
var muteCombo = [...]int{0, 3, 4, 7}

const (
	syncClicksMax  = 10
	syncTimeout    = 10 * time.Second
	tempoLockout   = 60 * time.Second
	clockAvgWidth  = 5
	bpmUndershoot  = 7
	sampleHold     = 125 * time.Millisecond
	pageShow       = 4 * time.Second
	binaryShow     = 4 * time.Second
	flashShow      = 2 * time.Second
	uiFPS          = 30
	buttonSettle   = 4
	ledHeldLevel   = 250
	ledPageLevel   = 950
	ledRecordLevel = display.FullScale
)

// Config tunes the polling loop.
type Config struct {
	Period       time.Duration // loop period
	ReadEvery    int           // inputs are read every ReadEvery iterations
	KnobSettle   int           // reads ignored after a page change
	SaveDelay    time.Duration
	SaveHoldoff  time.Duration // no saves this soon after start
	TriggerPulse time.Duration

	ClockMultiplier int // instrument beats per MIDI quarter note
	ResetEvery      int // MIDI quarter notes between hard resets

	KnobCC       [NumKnobs]uint8 // CC numbers driving the three knobs
	VolumeModCC  uint8
	ResonanceCC  uint8
	HoldFilterCC uint8

	NoteBase     uint8 // note sent for beat 0 on the note output
	NoteVelocity uint8
}

// DefaultConfig returns the loop settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Period:          time.Millisecond,
		ReadEvery:       4,
		KnobSettle:      50,
		SaveDelay:       8 * time.Second,
		SaveHoldoff:     16 * time.Second,
		TriggerPulse:    10 * time.Millisecond,
		ClockMultiplier: 2,
		ResetEvery:      8,
		KnobCC:          [NumKnobs]uint8{20, 21, 22},
		VolumeModCC:     7,
		ResonanceCC:     71,
		HoldFilterCC:    74,
		NoteBase:        36,
		NoteVelocity:    100,
	}
}

// Persister loads and saves the configuration block.
type Persister interface {
	Load() (store.Snapshot, error)
	Save(store.Snapshot) error
}

// History is a Persister that also keeps earlier saves.
type History interface {
	ListSnapshots() ([]store.SaveInfo, error)
	LoadSnapshot(filename string) (store.Snapshot, error)
}

// TelemetrySource is the engine as seen from the loop.
type TelemetrySource interface {
	Telemetry() engine.Telemetry
}

// NoteSink receives a note per beat onset.
type NoteSink interface {
	On(note, velocity uint8) error
	Release() error
}

// PadSink mirrors the LEDs and status colour on a pad controller.
type PadSink interface {
	Show(levels [display.NumLEDs]uint8, tint, status [3]uint8)
}

// View is what the loop publishes for the UI.
type View struct {
	Telemetry  engine.Telemetry
	BPM        int
	Page       int
	Knobs      [NumKnobs]int
	Buttons    uint8
	LEDs       [display.NumLEDs]uint8
	Status     display.RGB
	Trigger    bool
	Muted      bool
	Syncing    bool
	SyncPlay   bool
	Recording  bool
	SeqPlaying bool
	SeqLen     int
	Probs      map[engine.Prob]uint8
	Filter     int
	Distortion int
	Reduce     int
	Stretch    int
	Samples    int
	Message    string
}

type inputKind int

const (
	inButton inputKind = iota
	inKnob
	inNudge
	inPulse
	inMIDI
	inSave
	inLoad
	inPrevious
	inMute
)

type input struct {
	kind  inputKind
	index int
	value int
	at    time.Time
	ev    midi.Event
}

// Manager owns the polling loop. Input methods are safe from any
// goroutine; they queue work for the loop.
type Manager struct {
	cfg   Config
	c     *engine.Controls
	eng   TelemetrySource
	track *sequencer.Track
	bank  bank.Bank
	store Persister

	inputs     chan input
	UpdateChan chan struct{}

	outMu   sync.Mutex
	noteOut NoteSink
	pads    PadSink
	padsID  string

	viewMu sync.RWMutex
	view   View

	// loop state
	iter       int
	started    bool
	rawButtons [engine.NumButtons]bool
	rawKnobs   [NumKnobs]int
	buttons    [engine.NumButtons]Button
	knobs      [NumKnobs]Knob
	page       int
	bpm        int // tempo that gets persisted
	volume     int
	hasSaved   bool
	hasLoaded  bool
	histBack   int // history copies stepped back from the newest
	saver      *store.Debouncer
	clock      *midi.ClockTracker
	clockAvg   *RunningAverage
	syncClicks int
	lastPulse  time.Time
	lastSync   time.Time
	trigger    TriggerOut
	lastOnsets uint64
	leds       display.LEDArray
	bar        display.Bar
	barLevel   int
	binary     uint8
	message    string
	lastNotify time.Time

	binaryUntil time.Time
	pageUntil   time.Time
	sampleUntil time.Time
	saveUntil   time.Time
	loadUntil   time.Time
	seqUntil    time.Time
}

// NewManager wires the loop to the engine controls, its telemetry, the
// sequencer track, the bank and the store.
func NewManager(cfg Config, c *engine.Controls, eng TelemetrySource, track *sequencer.Track, b bank.Bank, st Persister) *Manager {
	cfg.ReadEvery = max(1, cfg.ReadEvery)
	cfg.Period = max(time.Microsecond, cfg.Period)
	m := &Manager{
		cfg:        cfg,
		c:          c,
		eng:        eng,
		track:      track,
		bank:       b,
		store:      st,
		inputs:     make(chan input, 256),
		UpdateChan: make(chan struct{}, 1),
		bpm:        c.Bpm(),
		volume:     2500,
		clock:      midi.NewClockTracker(cfg.ClockMultiplier, cfg.ResetEvery),
		clockAvg:   NewRunningAverage(clockAvgWidth),
		trigger:    NewTriggerOut(int(cfg.TriggerPulse / cfg.Period)),
	}
	for i := range m.buttons {
		m.buttons[i] = NewButton(buttonSettle)
	}
	m.rawKnobs = [NumKnobs]int{0, KnobMax / 2, KnobMax / 2}
	for i := range m.knobs {
		m.knobs[i] = NewKnob(m.rawKnobs[i], cfg.KnobSettle)
	}
	return m
}

// SetNoteOut attaches (or with nil detaches) the note output.
func (m *Manager) SetNoteOut(n NoteSink) {
	m.outMu.Lock()
	defer m.outMu.Unlock()
	if m.noteOut != nil {
		m.noteOut.Release()
	}
	m.noteOut = n
}

// SetPads attaches (or with nil detaches) a pad controller.
func (m *Manager) SetPads(p PadSink) {
	m.outMu.Lock()
	m.pads = p
	m.outMu.Unlock()
}

func (m *Manager) send(in input) {
	select {
	case m.inputs <- in:
	default:
		debug.LogEvery(100, "control", "input queue full, dropped kind=%d", in.kind)
	}
}

// SetButton sets the raw level of a button.
func (m *Manager) SetButton(i int, on bool) {
	v := 0
	if on {
		v = 1
	}
	m.send(input{kind: inButton, index: i, value: v})
}

// SetKnob sets the raw position of a knob (0..KnobMax).
func (m *Manager) SetKnob(k, v int) { m.send(input{kind: inKnob, index: k, value: v}) }

// NudgeKnob moves a knob by delta.
func (m *Manager) NudgeKnob(k, delta int) { m.send(input{kind: inNudge, index: k, value: delta}) }

// ClockPulse feeds a rising edge of the clock input.
func (m *Manager) ClockPulse(t time.Time) { m.send(input{kind: inPulse, at: t}) }

// HandleMIDI feeds an incoming MIDI event.
func (m *Manager) HandleMIDI(ev midi.Event) { m.send(input{kind: inMIDI, ev: ev}) }

// RequestSave saves at once, bypassing the countdown.
func (m *Manager) RequestSave() { m.send(input{kind: inSave}) }

// RequestLoad reloads the saved configuration.
func (m *Manager) RequestLoad() { m.send(input{kind: inLoad}) }

// RequestPrevious steps back one save in the history.
func (m *Manager) RequestPrevious() { m.send(input{kind: inPrevious}) }

// ToggleMute stops or restarts playback like the button combo does.
func (m *Manager) ToggleMute() { m.send(input{kind: inMute}) }

// View returns the latest published state.
func (m *Manager) View() View {
	m.viewMu.RLock()
	defer m.viewMu.RUnlock()
	return m.view
}

// Run drives the loop until ctx is cancelled (blocking - run in goroutine)
func (m *Manager) Run(ctx context.Context) {
	m.Start(time.Now())
	ticker := time.NewTicker(m.cfg.Period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.flush()
			return
		case now := <-ticker.C:
			m.Step(now)
		}
	}
}

// Start loads the saved configuration and arms the save holdoff. Run
// calls it; tests driving Step call it directly.
func (m *Manager) Start(now time.Time) {
	if m.started {
		return
	}
	m.started = true
	m.saver = store.NewDebouncer(m.cfg.SaveDelay, now.Add(m.cfg.SaveHoldoff))
	m.load(now)
	m.publish(now, true)
}

// flush writes a pending save before shutdown.
func (m *Manager) flush() {
	if m.saver != nil && m.saver.Pending() {
		m.save(time.Now())
	}
	m.outMu.Lock()
	if m.noteOut != nil {
		m.noteOut.Release()
	}
	m.outMu.Unlock()
}

// Step runs one loop iteration at now.
func (m *Manager) Step(now time.Time) {
	if !m.started {
		m.Start(now)
	}
	m.drain(now)

	if m.c.Syncing() && !m.lastPulse.IsZero() && now.Sub(m.lastPulse) > syncTimeout {
		m.c.SetSyncPlay(false)
	}

	tel := m.eng.Telemetry()
	if tel.Onsets != m.lastOnsets {
		m.lastOnsets = tel.Onsets
		m.onset(tel)
	}
	m.trigger.Update()

	if m.iter%m.cfg.ReadEvery == 0 {
		m.readButtons(tel)
		if tel.Retrig == engine.RetrigIdle {
			m.readKnobs(now)
		}
	}
	m.iter++

	if m.saver.Due(now) {
		m.save(now)
	}

	m.updateLEDs(now, tel)
	m.publish(now, false)
}

func (m *Manager) drain(now time.Time) {
	for {
		select {
		case in := <-m.inputs:
			m.apply(in, now)
		default:
			return
		}
	}
}

func (m *Manager) apply(in input, now time.Time) {
	switch in.kind {
	case inButton:
		if in.index >= 0 && in.index < engine.NumButtons {
			m.rawButtons[in.index] = in.value != 0
		}
	case inKnob:
		if in.index >= 0 && in.index < NumKnobs {
			m.rawKnobs[in.index] = max(0, min(in.value, KnobMax))
		}
	case inNudge:
		if in.index >= 0 && in.index < NumKnobs {
			m.rawKnobs[in.index] = max(0, min(m.rawKnobs[in.index]+in.value, KnobMax))
		}
	case inPulse:
		m.clockPulse(in.at)
	case inMIDI:
		m.handleMIDI(in.ev)
	case inSave:
		m.save(now)
	case inLoad:
		m.load(now)
	case inPrevious:
		m.loadPrevious(now)
	case inMute:
		m.toggleMute()
	}
}

// onset fires the trigger output and the note output.
func (m *Manager) onset(tel engine.Telemetry) {
	m.trigger.Fire()
	m.outMu.Lock()
	defer m.outMu.Unlock()
	if m.noteOut == nil {
		return
	}
	note := m.cfg.NoteBase + uint8(tel.Beat%engine.NumButtons)
	if err := m.noteOut.On(note, m.cfg.NoteVelocity); err != nil {
		debug.LogEvery(50, "control", "note out: %v", err)
	}
}

func (m *Manager) readButtons(tel engine.Telemetry) {
	var mask uint8
	combo, released := false, false
	for i := range m.buttons {
		m.buttons[i].Read(m.rawButtons[i])
		if m.buttons[i].On() {
			mask |= 1 << i
		}
		if m.buttons[i].Falling() {
			released = true
		}
	}
	// a released button cuts a running session at its next strike
	if released && tel.Retrig == engine.RetrigActive {
		m.c.CancelRetrig()
	}
	for _, i := range muteCombo {
		if m.buttons[i].ChangedHigh() {
			combo = true
		}
	}
	if combo && m.comboHeld() {
		m.toggleMute()
	}
	m.c.SetButtons(mask)
}

func (m *Manager) comboHeld() bool {
	for _, i := range muteCombo {
		if !m.buttons[i].On() {
			return false
		}
	}
	return true
}

func (m *Manager) toggleMute() {
	if m.c.Muted() {
		m.restart()
		debug.Log("control", "start")
		return
	}
	m.c.SetMuted(true)
	m.outMu.Lock()
	if m.noteOut != nil {
		m.noteOut.Release()
	}
	m.outMu.Unlock()
	debug.Log("control", "stop")
}

// restart leaves external sync and starts from beat zero.
func (m *Manager) restart() {
	m.syncClicks = 0
	m.c.Restart()
}

func (m *Manager) readKnobs(now time.Time) {
	for i := range m.knobs {
		m.knobs[i].Read(m.rawKnobs[i])
		if !m.knobs[i].Changed() {
			continue
		}
		v := m.knobs[i].Value()
		switch i {
		case KnobSelect:
			m.selectPage(PageOf(v), now)
		case KnobA:
			m.bar, m.barLevel = display.BarA, v*display.FullScale/KnobMax
			m.pageUntil = time.Time{}
			m.knobA(v, now)
		case KnobB:
			m.bar, m.barLevel = display.BarB, v*display.FullScale/KnobMax
			m.pageUntil = time.Time{}
			m.knobB(v, now)
		}
	}
}

func (m *Manager) selectPage(page int, now time.Time) {
	if page != m.page {
		m.page = page
		m.hasSaved = false
		m.knobs[KnobA].Reset()
		m.knobs[KnobB].Reset()
	}
	m.pageUntil = now.Add(pageShow)
	m.bar = display.BarNone
	m.track.SetRecording(false)
}

func (m *Manager) knobA(v int, now time.Time) {
	c := m.c
	switch m.page {
	case PageSample:
		if now.Before(m.sampleUntil) {
			return
		}
		m.sampleUntil = now.Add(sampleHold)
		c.SetSample(min(v*m.bank.NumSamples()/(KnobMax+1), m.bank.NumSamples()-1))
	case PageFilter:
		c.SetFilter(CutoffOf(v))
	case PageGate:
		c.SetGateThreshold(GateOf(v, c.SamplesPerBeat()))
	case PageJump:
		c.SetProbability(engine.ProbJump, ProbabilityOf(v))
	case PageTunnel:
		c.SetProbability(engine.ProbTunnel, ProbabilityOf(v))
	case PageSequencer:
		switch {
		case v > 3500:
			m.track.SetRecording(true)
		case v < 1000:
			m.track.SetRecording(false)
			m.track.Reset()
		default:
			m.track.SetRecording(false)
		}
	case PageStore:
		if v > 2040 {
			if !m.hasSaved {
				m.hasSaved = true
				m.save(now)
			}
		} else {
			m.hasSaved = false
		}
		return
	case PageVolume:
		m.bar = display.BarVolume
		m.setVolume(v)
	}
	m.saver.Arm(now)
}

func (m *Manager) knobB(v int, now time.Time) {
	c := m.c
	switch m.page {
	case PageSample:
		m.applyBreak(v)
	case PageFilter:
		c.SetStretch(StretchOf(v, c.SampleClockThreshold()))
		return
	case PageGate:
		c.SetProbability(engine.ProbGate, ProbabilityOf(v))
	case PageJump:
		c.SetProbability(engine.ProbRetrig, ProbabilityOf(v))
	case PageTunnel:
		c.SetProbability(engine.ProbDirection, ProbabilityOf(v))
	case PageSequencer:
		m.track.SetPlaying(v > 2200)
		if m.track.IsPlaying() {
			m.seqUntil = now.Add(flashShow)
		}
	case PageStore:
		if v > 4000 {
			if !m.hasLoaded {
				m.hasLoaded = true
				m.load(now)
			}
		} else {
			m.hasLoaded = false
		}
		return
	case PageVolume:
		if !m.lastSync.IsZero() && now.Sub(m.lastSync) <= tempoLockout {
			return
		}
		bpm := TempoOf(v)
		m.binary = uint8(bpm - 50)
		m.binaryUntil = now.Add(binaryShow)
		if bpm == m.bpm || !c.SetBpm(bpm) {
			return
		}
		m.bpm = bpm
	}
	m.saver.Arm(now)
}

func (m *Manager) applyBreak(v int) {
	s := BreakOf(v)
	for p, w := range s.Probs {
		m.c.SetProbability(p, w)
	}
	m.c.SetDistortion(s.Distortion)
	m.c.SetVolumeReduce(0)
	m.volume = volumeForDistortion(s.Distortion)
}

func (m *Manager) setVolume(v int) {
	m.volume = v
	d, r := VolumeOf(v)
	m.c.SetDistortion(d)
	m.c.SetVolumeReduce(r)
}

// clockPulse handles a rising edge on the clock input. Two pulses make a
// quarter note, so each pulse is one beat.
func (m *Manager) clockPulse(t time.Time) {
	if m.syncClicks < syncClicksMax {
		m.syncClicks++
		m.c.SetSyncing(true)
	}
	m.c.SetSyncPlay(true)

	gap := t.Sub(m.lastPulse)
	if m.lastPulse.IsZero() || gap > syncTimeout {
		m.c.HardReset()
	} else if ms := gap.Milliseconds(); ms > 0 {
		bpm := m.clockAvg.Update(min(int(30000/ms), engine.MaxBPM+bpmUndershoot))
		if bpm-bpmUndershoot != m.c.Bpm() {
			m.c.SetBpm(bpm - bpmUndershoot)
		}
		m.c.SoftSync()
	}
	m.lastPulse = t
	m.lastSync = t
}

func (m *Manager) handleMIDI(ev midi.Event) {
	switch ev.Type {
	case midi.Start, midi.Continue:
		m.restart()
		m.clock.Start()
	case midi.Stop:
		m.c.SetMuted(true)
		m.clock.Start()
	case midi.Clock:
		r := m.clock.Tick(ev.Time)
		if r.HardReset {
			m.c.HardReset()
		} else if r.SoftSync {
			m.c.SoftSync()
		}
		if r.BPMReady && r.BPM != m.c.Bpm() {
			m.c.SetBpm(r.BPM)
		}
		m.lastSync = ev.Time
	case midi.NoteOn:
		m.rawButtons[int(ev.Note)%engine.NumButtons] = true
	case midi.NoteOff:
		m.rawButtons[int(ev.Note)%engine.NumButtons] = false
	case midi.CC:
		m.handleCC(ev.Note, int(ev.Velocity))
	}
}

func (m *Manager) handleCC(cc uint8, v int) {
	for k, n := range m.cfg.KnobCC {
		if cc == n {
			m.rawKnobs[k] = v * KnobMax / 127
			return
		}
	}
	switch cc {
	case m.cfg.VolumeModCC:
		m.c.SetVolumeMod((127 - v) * engine.VolumeModMax / 127)
	case m.cfg.ResonanceCC:
		m.c.SetResonance(v * engine.ResonanceMax / 127)
	case m.cfg.HoldFilterCC:
		m.c.SetHoldFilter(v * engine.FilterOff / 127)
	}
}

func (m *Manager) updateLEDs(now time.Time, tel engine.Telemetry) {
	m.leds.Clear()
	switch {
	case now.Before(m.binaryUntil):
		m.leds.SetBinary(m.binary)
	case m.track.IsRecording():
		if last := m.track.Last(); last != sequencer.Empty {
			m.leds.Set(int(last)%display.NumLEDs, ledRecordLevel)
		}
	case now.Before(m.pageUntil):
		m.leds.Set(m.page, ledPageLevel)
	case tel.Held >= 0:
		m.leds.Add(tel.Held, ledHeldLevel)
		if tel.Held2 >= 0 {
			m.leds.Add(tel.Held2, ledHeldLevel)
		}
	default:
		m.leds.Add(tel.Beat%display.NumLEDs, ledHeldLevel)
	}
}

func (m *Manager) status(now time.Time) display.RGB {
	return display.Status(display.StatusInput{
		Saving:        now.Before(m.saveUntil),
		Muted:         m.c.Muted(),
		Recording:     m.track.IsRecording(),
		SeqPlaying:    m.track.IsPlaying() && now.Before(m.seqUntil),
		Loaded:        now.Before(m.loadUntil),
		Bar:           m.bar,
		BarLevel:      m.barLevel,
		Distortion:    m.c.Distortion(),
		Reduce:        m.c.VolumeReduce(),
		DistortionMax: engine.DistortionMax,
		ReduceMax:     engine.VolumeReduceMax,
	})
}

// publish refreshes the view and notifies the UI at most uiFPS times a
// second.
func (m *Manager) publish(now time.Time, force bool) {
	if !force && now.Sub(m.lastNotify) < time.Second/uiFPS {
		return
	}
	m.lastNotify = now
	c := m.c

	v := View{
		Telemetry:  m.eng.Telemetry(),
		BPM:        c.Bpm(),
		Page:       m.page,
		Buttons:    c.Buttons(),
		LEDs:       m.leds.Levels(),
		Status:     m.status(now),
		Trigger:    m.trigger.High(),
		Muted:      c.Muted(),
		Syncing:    c.Syncing(),
		SyncPlay:   c.SyncPlay(),
		Recording:  m.track.IsRecording(),
		SeqPlaying: m.track.IsPlaying(),
		SeqLen:     m.track.Len(),
		Probs:      make(map[engine.Prob]uint8, len(engine.Probs)),
		Filter:     c.Filter(),
		Distortion: c.Distortion(),
		Reduce:     c.VolumeReduce(),
		Stretch:    c.Stretch(),
		Samples:    m.bank.NumSamples(),
		Message:    m.message,
	}
	for i := range m.knobs {
		v.Knobs[i] = m.rawKnobs[i]
	}
	for _, p := range engine.Probs {
		v.Probs[p] = c.Probability(p)
	}

	m.viewMu.Lock()
	m.view = v
	m.viewMu.Unlock()

	m.outMu.Lock()
	if m.pads != nil {
		m.pads.Show(v.LEDs, padTint, v.Status)
	}
	m.outMu.Unlock()

	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}

var padTint = [3]uint8{255, 40, 0}
