package tui

import "github.com/charmbracelet/bubbles/key"

const (
	knobStep = 128
	fineStep = 16
	pageStep = 512
)

type keyMap struct {
	Buttons  key.Binding
	Release  key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	AUp      key.Binding
	ADown    key.Binding
	AFineUp  key.Binding
	AFineDn  key.Binding
	BUp      key.Binding
	BDown    key.Binding
	BFineUp  key.Binding
	BFineDn  key.Binding
	Tap      key.Binding
	Mute     key.Binding
	Save     key.Binding
	Load     key.Binding
	Previous key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Buttons:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8"), key.WithHelp("1-8", "hold/release button")),
		Release:  key.NewBinding(key.WithKeys("0", "`"), key.WithHelp("0", "release all")),
		PageUp:   key.NewBinding(key.WithKeys("]", "right"), key.WithHelp("]", "next page")),
		PageDown: key.NewBinding(key.WithKeys("[", "left"), key.WithHelp("[", "prev page")),
		AUp:      key.NewBinding(key.WithKeys("w"), key.WithHelp("w/s", "knob A")),
		ADown:    key.NewBinding(key.WithKeys("s")),
		AFineUp:  key.NewBinding(key.WithKeys("W"), key.WithHelp("W/S", "knob A fine")),
		AFineDn:  key.NewBinding(key.WithKeys("S")),
		BUp:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e/d", "knob B")),
		BDown:    key.NewBinding(key.WithKeys("d")),
		BFineUp:  key.NewBinding(key.WithKeys("E"), key.WithHelp("E/D", "knob B fine")),
		BFineDn:  key.NewBinding(key.WithKeys("D")),
		Tap:      key.NewBinding(key.WithKeys("t", " "), key.WithHelp("t", "clock pulse")),
		Mute:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "stop/start")),
		Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Load:     key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "load")),
		Previous: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "previous save")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Buttons, k.PageUp, k.AUp, k.BUp, k.Mute, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Buttons, k.Release, k.Tap, k.Mute},
		{k.PageUp, k.PageDown, k.AUp, k.AFineUp, k.BUp, k.BFineUp},
		{k.Save, k.Load, k.Previous, k.Help, k.Quit},
	}
}
