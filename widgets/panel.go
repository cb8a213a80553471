package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-pikocore/theme"
)

// RenderPad renders a single colored pad
func RenderPad(color [3]uint8, sym rune) string {
	return lipgloss.NewStyle().Foreground(theme.Swatch(color)).Render(string(sym))
}

// RenderLEDRow renders the eight LEDs with their numbers underneath.
// The playing beat is marked above its LED.
func RenderLEDRow(th *theme.Theme, levels [8]uint8, beat int) string {
	var marks, leds, nums strings.Builder
	for i, lv := range levels {
		if i > 0 {
			marks.WriteString(" ")
			leds.WriteString(" ")
			nums.WriteString(" ")
		}
		if i == beat {
			marks.WriteString(lipgloss.NewStyle().Foreground(th.Accent()).Render(string(th.Symbols.Beat)))
		} else {
			marks.WriteString(" ")
		}
		sym := th.Symbols.LEDOff
		if lv > 0 {
			sym = th.Symbols.LEDOn
		}
		leds.WriteString(lipgloss.NewStyle().Foreground(th.LED(lv)).Render(string(sym)))
		nums.WriteString(lipgloss.NewStyle().Foreground(th.Muted()).Render(fmt.Sprint(i + 1)))
	}
	return marks.String() + "\n" + leds.String() + "\n" + nums.String()
}

// RenderKnob renders a labelled bar for a knob position (0..top).
func RenderKnob(th *theme.Theme, label string, value, top, width int) string {
	if top <= 0 || width <= 0 {
		return label
	}
	value = max(0, min(value, top))
	fill := value * width / top
	bar := strings.Repeat(string(th.Symbols.BarFull), fill) +
		strings.Repeat(string(th.Symbols.BarEmpty), width-fill)
	labelStyle := lipgloss.NewStyle().Foreground(th.FG()).Width(12)
	barStyle := lipgloss.NewStyle().Foreground(th.Accent())
	return labelStyle.Render(label) + barStyle.Render(bar) + fmt.Sprintf(" %4d", value)
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color [3]uint8, sym rune, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderPad(color, sym), name, desc)
}

// RenderWeights renders probability weights as short labelled gauges.
func RenderWeights(th *theme.Theme, names []string, weights []uint8) string {
	var parts []string
	dim := lipgloss.NewStyle().Foreground(th.Muted())
	for i, n := range names {
		if i >= len(weights) {
			break
		}
		w := weights[i]
		style := dim
		if w > 0 {
			style = lipgloss.NewStyle().Foreground(th.Color(0.5 + float64(w)/510))
		}
		parts = append(parts, style.Render(fmt.Sprintf("%s %3d", n, w)))
	}
	return strings.Join(parts, "  ")
}
