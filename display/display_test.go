package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLEDArraySetAdd(t *testing.T) {
	var a LEDArray
	a.Set(0, 1000)
	a.Set(1, 500)
	a.Set(2, 10000)
	a.Set(9, 1000)
	assert.Equal(t, [NumLEDs]uint8{255, 127, 255}, a.Levels())

	a.Clear()
	a.Add(3, 250)
	a.Add(3, 250)
	assert.Equal(t, uint8(126), a.Levels()[3])
	a.Add(3, 1000)
	assert.Equal(t, uint8(255), a.Levels()[3])
}

func TestLEDArraySetBinary(t *testing.T) {
	var a LEDArray
	a.SetBinary(0b10100001)
	assert.Equal(t, [NumLEDs]uint8{255, 0, 255, 0, 0, 0, 0, 255}, a.Levels())
}

func TestLEDArraySetAll(t *testing.T) {
	var a LEDArray
	a.SetAll(500)
	assert.Equal(t, [NumLEDs]uint8{255, 255, 255, 255}, a.Levels())

	a.SetAll(1000)
	for _, v := range a.Levels() {
		assert.Equal(t, uint8(255), v)
	}

	a.SetAll(100)
	assert.Equal(t, [NumLEDs]uint8{204}, a.Levels())
}

func TestStatusPriority(t *testing.T) {
	assert.Equal(t, ColorSaving, Status(StatusInput{Saving: true, Muted: true}))
	assert.Equal(t, ColorMuted, Status(StatusInput{Muted: true, Recording: true}))
	assert.Equal(t, ColorRecord, Status(StatusInput{Recording: true, Loaded: true}))
	assert.Equal(t, ColorSeqPlay, Status(StatusInput{SeqPlaying: true, Loaded: true}))
	assert.Equal(t, ColorLoaded, Status(StatusInput{Loaded: true, Bar: BarA}))
	assert.Equal(t, RGB{40, 0, 0}, Status(StatusInput{Bar: BarA, BarLevel: 500}))
	assert.Equal(t, RGB{0, 0, 80}, Status(StatusInput{Bar: BarB, BarLevel: 1000}))
	assert.Equal(t, ColorOff, Status(StatusInput{}))
}

func TestStatusVolume(t *testing.T) {
	in := StatusInput{Bar: BarVolume, DistortionMax: 30, ReduceMax: 30}
	assert.Equal(t, ColorVolume, Status(in))

	in.Reduce = 10
	assert.Equal(t, RGB{0, 80, 80}, Status(in))
	in.Reduce = 33
	assert.Equal(t, RGB{0, 0, 0}, Status(in))

	in.Reduce = 0
	in.Distortion = 30
	assert.Equal(t, RGB{90, 0, 0}, Status(in))
	in.Distortion = 1
	c := Status(in)
	assert.Greater(t, c[1], c[0])
}

func TestHex(t *testing.T) {
	assert.Equal(t, "#ff0032", ColorMuted.Hex())
}
