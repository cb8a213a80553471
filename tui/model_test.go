package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pikocore/bank"
	"go-pikocore/control"
	"go-pikocore/engine"
	"go-pikocore/midi"
	"go-pikocore/sequencer"
	"go-pikocore/theme"
)

func newTestModel(t *testing.T) (Model, *engine.Controls) {
	t.Helper()
	b := bank.Synthetic(8000, 120)
	c := engine.NewControls(b.SampleRate(), b.BPM())
	tr := sequencer.NewTrack()
	e := engine.NewEngine(b, c, tr, 1)
	cfg := control.DefaultConfig()
	cfg.ReadEvery = 1
	cfg.KnobSettle = 0
	mgr := control.NewManager(cfg, c, e, tr, b, nil)
	return NewModel(mgr, nil, theme.New(nil)), c
}

func press(m Model, keys string) Model {
	for _, r := range keys {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func TestButtonKeysLatch(t *testing.T) {
	m, c := newTestModel(t)
	now := time.Unix(0, 0)
	m.Manager.Start(now)

	m = press(m, "38")
	now = now.Add(time.Millisecond)
	m.Manager.Step(now)
	assert.Equal(t, uint8(1<<2|1<<7), c.Buttons())

	m = press(m, "0")
	for i := 0; i < 6; i++ {
		now = now.Add(time.Millisecond)
		m.Manager.Step(now)
	}
	assert.Equal(t, uint8(0), c.Buttons())
}

func TestPageKeysAndView(t *testing.T) {
	m, _ := newTestModel(t)
	now := time.Unix(0, 0)
	m.Manager.Start(now)

	m = press(m, "]")
	m.Manager.Step(now.Add(time.Second))
	require.Equal(t, control.PageFilter, m.Manager.View().Page)

	out := m.View()
	assert.Contains(t, out, "pikocore")
	assert.Contains(t, out, "page filter")
	assert.Contains(t, out, "cutoff")
	assert.Contains(t, out, "jump")
}

func TestMuteKey(t *testing.T) {
	m, c := newTestModel(t)
	now := time.Unix(0, 0)
	m.Manager.Start(now)
	m = press(m, "m")
	m.Manager.Step(now.Add(time.Millisecond))
	assert.True(t, c.Muted())
}

func TestDeviceEvents(t *testing.T) {
	m, _ := newTestModel(t)
	next, cmd := m.Update(DeviceEventMsg{Type: midi.DeviceDisconnected, ID: "gone"})
	assert.Nil(t, cmd)
	assert.Empty(t, next.(Model).devices)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.NotNil(t, cmd)
	assert.Equal(t, "", next.View())
}
