// Package display computes what the instrument shows: eight LED levels and
// a status colour.
package display

// NumLEDs is the number of LEDs in the array.
const NumLEDs = 8

// FullScale is the input range of Set, Add and SetAll.
const FullScale = 1000

// LEDArray holds eight brightness levels (0..255).
type LEDArray struct {
	vals [NumLEDs]uint8
}

func (a *LEDArray) Clear() {
	a.vals = [NumLEDs]uint8{}
}

// Set sets LED i to v on a 0..FullScale scale. Larger values saturate.
func (a *LEDArray) Set(i int, v int) {
	if i < 0 || i >= NumLEDs {
		return
	}
	a.vals[i] = scale(v)
}

// Add brightens LED i by v, saturating at full brightness.
func (a *LEDArray) Add(i int, v int) {
	if i < 0 || i >= NumLEDs {
		return
	}
	a.vals[i] = uint8(min(255, int(a.vals[i])+int(scale(v))))
}

// SetBinary shows v in binary, most significant bit on LED 0.
func (a *LEDArray) SetBinary(v uint8) {
	for j := 0; j < NumLEDs; j++ {
		if v&(0x80>>j) != 0 {
			a.vals[j] = 255
		} else {
			a.vals[j] = 0
		}
	}
}

// SetAll fills the array as a bar graph of v (0..FullScale).
func (a *LEDArray) SetAll(v int) {
	rest := max(0, min(v, FullScale)) * NumLEDs * 255 / FullScale
	for i := range a.vals {
		lv := min(rest, 255)
		a.vals[i] = uint8(lv)
		rest -= lv
	}
}

// Levels returns a copy of the brightness levels.
func (a *LEDArray) Levels() [NumLEDs]uint8 {
	return a.vals
}

func scale(v int) uint8 {
	return uint8(min(max(v, 0)*255/FullScale, 255))
}
