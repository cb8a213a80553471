package display

import (
	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit colour.
type RGB [3]uint8

// Bar identifies which knob was last moved, for the status colour.
type Bar int

const (
	BarNone Bar = iota
	BarA
	BarB
	BarVolume
)

// StatusInput is the state the status colour is chosen from, in priority
// order.
type StatusInput struct {
	Saving     bool
	Muted      bool
	Recording  bool
	SeqPlaying bool // only while the "sequencer on" flash lasts
	Loaded     bool
	Bar        Bar
	BarLevel   int // 0..FullScale
	Distortion int
	Reduce     int
	// DistortionMax and ReduceMax scale the volume colours.
	DistortionMax int
	ReduceMax     int
}

var (
	ColorSaving  = RGB{150, 100, 0}
	ColorMuted   = RGB{255, 0, 50}
	ColorRecord  = RGB{80, 80, 0}
	ColorSeqPlay = RGB{0, 80, 0}
	ColorLoaded  = RGB{0, 150, 50}
	ColorVolume  = RGB{0, 80, 0}
	ColorOff     = RGB{}
)

// Status picks the status colour.
func Status(in StatusInput) RGB {
	switch {
	case in.Saving:
		return ColorSaving
	case in.Muted:
		return ColorMuted
	case in.Recording:
		return ColorRecord
	case in.SeqPlaying:
		return ColorSeqPlay
	case in.Loaded:
		return ColorLoaded
	case in.Bar == BarA:
		return RGB{uint8(clampLevel(in.BarLevel) * 80 / FullScale), 0, 0}
	case in.Bar == BarB:
		return RGB{0, 0, uint8(clampLevel(in.BarLevel) * 80 / FullScale)}
	case in.Bar == BarVolume:
		return volumeColor(in)
	}
	return ColorOff
}

// volumeColor fades from green to red with distortion and dims cyan with
// volume reduction.
func volumeColor(in StatusInput) RGB {
	switch {
	case in.Distortion > 0 && in.DistortionMax > 0:
		t := float64(min(in.Distortion, in.DistortionMax)) / float64(in.DistortionMax)
		green := colorful.Color{G: 60.0 / 255}
		red := colorful.Color{R: 90.0 / 255}
		return fromColorful(green.BlendRgb(red, t))
	case in.Reduce > 0:
		vv := (in.ReduceMax - in.Reduce) * 4
		if vv < 0 || vv > 200 {
			vv = 0
		}
		return RGB{0, uint8(vv), uint8(vv)}
	}
	return ColorVolume
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{r, g, b}
}

func clampLevel(v int) int {
	return max(0, min(v, FullScale))
}

// Hex formats the colour for terminal styles.
func (c RGB) Hex() string {
	return colorful.Color{R: float64(c[0]) / 255, G: float64(c[1]) / 255, B: float64(c[2]) / 255}.Hex()
}
