package engine

// Head is one read position into the current sample.
type Head struct {
	Phase   int
	Forward bool
}

// HeadPair holds the two playback heads. Switching moves the idle head to
// the new position and crossfades to it over CrossfadeLen steps.
type HeadPair struct {
	heads  [2]Head
	active int
	xfade  int
}

func NewHeadPair() HeadPair {
	return HeadPair{heads: [2]Head{{Forward: true}, {Forward: true}}}
}

// Active returns the live head.
func (h *HeadPair) Active() *Head {
	return &h.heads[h.active]
}

// Idle returns the head being faded out.
func (h *HeadPair) Idle() *Head {
	return &h.heads[1-h.active]
}

// Switch makes the idle head live at offset and starts a crossfade.
func (h *HeadPair) Switch(offset int) {
	h.active = 1 - h.active
	h.heads[h.active].Phase = offset
	h.xfade = CrossfadeLen
}

// Jump repositions the live head without a crossfade.
func (h *HeadPair) Jump(offset int) {
	h.heads[h.active].Phase = offset
}

// Fading reports the remaining crossfade steps.
func (h *HeadPair) Fading() int {
	return h.xfade
}

// Step moves both heads one sample in their direction. Forward heads wrap
// from length-1 to 0; reverse heads wrap from 0 to length-2 so the last
// sample is never read going backwards.
func (h *HeadPair) Step(length int) {
	if length < 2 {
		h.heads[0].Phase, h.heads[1].Phase = 0, 0
		return
	}
	for i := range h.heads {
		hd := &h.heads[i]
		if hd.Forward {
			hd.Phase++
			if hd.Phase >= length {
				hd.Phase = 0
			}
			continue
		}
		switch {
		case hd.Phase <= 0:
			hd.Phase = length - 2
		case hd.Phase > length-2:
			hd.Phase = length - 2
		default:
			hd.Phase--
		}
	}
}

// Mix blends the live value in with the idle value out and advances the
// crossfade. Once it has run out the live value is returned unchanged.
func (h *HeadPair) Mix(in, out uint8) uint8 {
	if h.xfade == 0 {
		return in
	}
	h.xfade--
	v := int(in)*(CrossfadeLen-h.xfade) + int(out)*h.xfade
	return uint8(v >> HeadShift)
}
