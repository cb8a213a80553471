package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"go-pikocore/theme"
)

func TestRenderKnob(t *testing.T) {
	th := theme.New(nil)
	out := RenderKnob(th, "cutoff", 2048, 4096, 8)
	assert.Contains(t, out, "cutoff")
	assert.Equal(t, 4, strings.Count(out, "█"))
	assert.Equal(t, 4, strings.Count(out, "░"))
	assert.Contains(t, out, "2048")

	full := RenderKnob(th, "x", 9999, 4095, 4)
	assert.Equal(t, 4, strings.Count(full, "█"))
	assert.Equal(t, "x", RenderKnob(th, "x", 1, 0, 4))
}

func TestRenderLEDRow(t *testing.T) {
	th := theme.New(nil)
	out := RenderLEDRow(th, [8]uint8{255, 0, 0, 63, 0, 0, 0, 0}, 3)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, 1, strings.Count(lines[0], "▶"))
	assert.Equal(t, 2, strings.Count(lines[1], "●"))
	assert.Equal(t, 6, strings.Count(lines[1], "○"))
	assert.Contains(t, lines[2], "8")
	assert.Equal(t, lipgloss.Width(lines[1]), lipgloss.Width(lines[2]))
}

func TestRenderWeights(t *testing.T) {
	th := theme.New(nil)
	out := RenderWeights(th, []string{"jump", "gate", "extra"}, []uint8{0, 200})
	assert.Contains(t, out, "jump   0")
	assert.Contains(t, out, "gate 200")
	assert.NotContains(t, out, "extra")
}
