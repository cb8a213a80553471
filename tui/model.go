package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-pikocore/control"
	"go-pikocore/engine"
	"go-pikocore/midi"
	"go-pikocore/theme"
	"go-pikocore/widgets"
)

type Model struct {
	Manager   *control.Manager
	DeviceMgr *midi.DeviceManager // may be nil
	Theme     *theme.Theme
	keys      keyMap
	help      help.Model
	latched   [engine.NumButtons]bool
	devices   map[string]midi.DeviceKind
	quitting  bool
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

func NewModel(manager *control.Manager, deviceMgr *midi.DeviceManager, th *theme.Theme) Model {
	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(th.Accent())
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(th.Muted())
	h.Styles.FullKey = h.Styles.ShortKey
	h.Styles.FullDesc = h.Styles.ShortDesc
	return Model{
		Manager:   manager,
		DeviceMgr: deviceMgr,
		Theme:     th,
		keys:      defaultKeys(),
		help:      h,
		devices:   make(map[string]midi.DeviceKind),
	}
}

func ListenForUpdates(manager *control.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	if deviceMgr == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Manager),
		ListenForDevices(m.DeviceMgr),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			m.devices[event.ID] = event.Device.Kind()
			m.Manager.Attach(event.Device)
		case midi.DeviceDisconnected:
			delete(m.devices, event.ID)
			m.Manager.Detach(event.ID)
		}
		return m, ListenForDevices(m.DeviceMgr)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mgr := m.Manager
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Buttons):
		i := int(msg.String()[0] - '1')
		m.latched[i] = !m.latched[i]
		mgr.SetButton(i, m.latched[i])
	case key.Matches(msg, m.keys.Release):
		for i := range m.latched {
			if m.latched[i] {
				m.latched[i] = false
				mgr.SetButton(i, false)
			}
		}
	case key.Matches(msg, m.keys.PageUp):
		mgr.NudgeKnob(control.KnobSelect, pageStep)
	case key.Matches(msg, m.keys.PageDown):
		mgr.NudgeKnob(control.KnobSelect, -pageStep)
	case key.Matches(msg, m.keys.AUp):
		mgr.NudgeKnob(control.KnobA, knobStep)
	case key.Matches(msg, m.keys.ADown):
		mgr.NudgeKnob(control.KnobA, -knobStep)
	case key.Matches(msg, m.keys.AFineUp):
		mgr.NudgeKnob(control.KnobA, fineStep)
	case key.Matches(msg, m.keys.AFineDn):
		mgr.NudgeKnob(control.KnobA, -fineStep)
	case key.Matches(msg, m.keys.BUp):
		mgr.NudgeKnob(control.KnobB, knobStep)
	case key.Matches(msg, m.keys.BDown):
		mgr.NudgeKnob(control.KnobB, -knobStep)
	case key.Matches(msg, m.keys.BFineUp):
		mgr.NudgeKnob(control.KnobB, fineStep)
	case key.Matches(msg, m.keys.BFineDn):
		mgr.NudgeKnob(control.KnobB, -fineStep)
	case key.Matches(msg, m.keys.Tap):
		mgr.ClockPulse(time.Now())
	case key.Matches(msg, m.keys.Mute):
		mgr.ToggleMute()
	case key.Matches(msg, m.keys.Save):
		mgr.RequestSave()
	case key.Matches(msg, m.keys.Load):
		mgr.RequestLoad()
	case key.Matches(msg, m.keys.Previous):
		mgr.RequestPrevious()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	th := m.Theme
	v := m.Manager.View()
	tel := v.Telemetry

	headerStyle := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(th.Warning())

	state := "PLAY"
	switch {
	case v.Muted:
		state = "STOP"
	case v.Syncing && !v.SyncPlay:
		state = "WAIT"
	}
	dir := "fwd"
	if !tel.Forward {
		dir = "rev"
	}
	header := headerStyle.Render(fmt.Sprintf("pikocore  %s  %3dbpm  sample %d/%d  beat %d %s",
		state, v.BPM, tel.Sample+1, v.Samples, tel.Beat, dir))

	var flags []string
	if v.Syncing {
		flags = append(flags, "SYNC")
	}
	if v.Recording {
		flags = append(flags, fmt.Sprintf("REC %d", v.SeqLen))
	} else if v.SeqPlaying {
		flags = append(flags, fmt.Sprintf("SEQ %d", v.SeqLen))
	}
	if tel.Retrig == engine.RetrigActive {
		if tel.Random {
			flags = append(flags, "RETRIG~")
		} else {
			flags = append(flags, "RETRIG")
		}
	}
	if v.Trigger {
		flags = append(flags, "TRIG")
	}
	for id, kind := range m.devices {
		flags = append(flags, fmt.Sprintf("%s:%s", kind, shortName(id)))
	}
	flagLine := warnStyle.Render(strings.Join(flags, "  "))

	page := control.Pages[v.Page]
	knobs := strings.Join([]string{
		widgets.RenderKnob(th, "page "+page.Name, v.Knobs[control.KnobSelect], control.KnobMax, 24),
		widgets.RenderKnob(th, page.A, v.Knobs[control.KnobA], control.KnobMax, 24),
		widgets.RenderKnob(th, page.B, v.Knobs[control.KnobB], control.KnobMax, 24),
	}, "\n")

	names := make([]string, len(engine.Probs))
	weights := make([]uint8, len(engine.Probs))
	for i, p := range engine.Probs {
		names[i] = p.String()
		weights[i] = v.Probs[p]
	}
	dsp := dimStyle.Render(fmt.Sprintf("filter %2d  dist %2d  reduce %2d  stretch %2d",
		v.Filter, v.Distortion, v.Reduce, v.Stretch))

	status := widgets.RenderPad(v.Status, th.Symbols.Pad) + " " + dimStyle.Render(v.Message)

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(flagLine)
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderLEDRow(th, v.LEDs, tel.Beat%engine.NumButtons))
	out.WriteString("\n\n")
	out.WriteString(knobs)
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderWeights(th, names, weights))
	out.WriteString("\n")
	out.WriteString(dsp)
	out.WriteString("\n\n")
	out.WriteString(status)
	out.WriteString("\n\n")
	out.WriteString(m.help.View(m.keys))
	return out.String()
}

func shortName(id string) string {
	if len(id) > 16 {
		return id[:16]
	}
	return id
}
