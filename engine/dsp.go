package engine

// Params are the per-tick settings of the DSP chain.
type Params struct {
	Distortion   int
	VolumeReduce int
	// Shift is the total attenuation: volume mod, retrigger volume and
	// gate fade.
	Shift int
	// Cutoff is the effective filter index; above LPFMax the filter is
	// bypassed.
	Cutoff    int
	Resonance int
}

// DSP applies the chain: mute, wave-fold distortion, volume reduction,
// shift attenuation, low-pass filter.
type DSP struct {
	filter *Filter
}

func NewDSP(sampleRate int) *DSP {
	return &DSP{filter: NewFilter(sampleRate)}
}

// Process runs one sample through the chain.
func (d *DSP) Process(a uint8, p Params) uint8 {
	a = Shape(a, p)
	if p.Cutoff <= LPFMax {
		a = d.filter.Process(a, p.Cutoff, p.Resonance)
	}
	return a
}

// Shape applies everything before the filter. Mid-scale (128) is silence
// and passes through unchanged.
func Shape(in uint8, p Params) uint8 {
	if p.VolumeReduce >= VolumeReduceMax {
		return 128
	}
	a := int(in)
	if a == 128 {
		return 128
	}

	if dist := clamp(p.Distortion, 0, DistortionMax); dist > 0 {
		div := dist>>4 + 1
		if a > 128 {
			if a < 255-dist {
				a += dist
			} else {
				a = 255 - dist
			}
			a = 128 + (a-128)/div
		} else {
			if a > dist {
				a -= dist
			} else {
				a = dist - a
			}
			a = 128 - (128-a)/div
		}
	}

	if vr := max(p.VolumeReduce, 0); vr > 0 {
		if a > 128 {
			a = max(a-vr, 128)
		} else {
			a = min(a+vr, 128)
		}
	}

	if s := max(p.Shift, 0); s > 0 && a != 128 {
		if a > 128 {
			a = 128 + (a-128)>>s
		} else {
			a = 128 - (128-a)>>s
		}
	}
	return uint8(clamp(a, 0, 255))
}
