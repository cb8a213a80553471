package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	LEDOn    rune // ● lit LED
	LEDOff   rune // ○ dark LED
	Pad      rune // ■ status pad
	BarFull  rune // █ knob bar
	BarEmpty rune // ░ knob bar remainder
	Beat     rune // ▶ playing beat
	Held     rune // ◆ held button
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Default()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			LEDOn:    '●',
			LEDOff:   '○',
			Pad:      '■',
			BarFull:  '█',
			BarEmpty: '░',
			Beat:     '▶',
			Held:     '◆',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleSurface = 0.1
	RoleMuted   = 0.25
	RoleFG      = 0.9
	RoleAccent  = 0.6
	RoleActive  = 0.7
	RoleWarning = 0.8
	RoleSuccess = 1.0
)

func (t *Theme) BG() lipgloss.Color      { return t.Color(RoleBG) }
func (t *Theme) Surface() lipgloss.Color { return t.Color(RoleSurface) }
func (t *Theme) FG() lipgloss.Color      { return t.Color(RoleFG) }
func (t *Theme) Accent() lipgloss.Color  { return t.Color(RoleAccent) }
func (t *Theme) Muted() lipgloss.Color   { return t.Color(RoleMuted) }
func (t *Theme) Active() lipgloss.Color  { return t.Color(RoleActive) }
func (t *Theme) Warning() lipgloss.Color { return t.Color(RoleWarning) }
func (t *Theme) Success() lipgloss.Color { return t.Color(RoleSuccess) }

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return lipgloss.Color(t.Palette.Lookup(norm).Hex())
}

// RGB returns raw RGB for any normalized value
func (t *Theme) RGB(norm float64) RGB {
	return t.Palette.Lookup(norm)
}

// LED returns the colour of an LED at level (0-255): the surface colour
// brightening towards the active one.
func (t *Theme) LED(level uint8) lipgloss.Color {
	off := t.RGB(RoleSurface).color()
	on := t.RGB(RoleActive).color()
	return lipgloss.Color(off.BlendLab(on, float64(level)/255).Clamped().Hex())
}

// Swatch renders an arbitrary device colour.
func Swatch(c [3]uint8) lipgloss.Color {
	return lipgloss.Color(colorful.Color{R: float64(c[0]) / 255, G: float64(c[1]) / 255, B: float64(c[2]) / 255}.Hex())
}
