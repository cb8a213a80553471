package engine

import "go-pikocore/sequencer"

const noButton = NumButtons

// Selector tracks held buttons across onsets and picks the next beat.
type Selector struct {
	Beat   int
	Sample int

	held   int // first held button, noButton when none
	held2  int // second held button
	freeze int // bank of eight beats the held buttons address
}

func NewSelector() Selector {
	return Selector{held: noButton, held2: noButton}
}

// Held returns the first and second held buttons, -1 when not held.
func (s *Selector) Held() (int, int) {
	a, b := s.held, s.held2
	if a >= noButton {
		a = -1
	}
	if b >= noButton {
		b = -1
	}
	return a, b
}

// Release forgets both held buttons.
func (s *Selector) Release() {
	s.held, s.held2, s.freeze = noButton, noButton, 0
}

// UpdateHeld follows the button mask at an onset. A new first button
// freezes the bank of eight around the current beat. When acceptNew is
// false only releases are tracked.
func (s *Selector) UpdateHeld(mask uint8, acceptNew bool) {
	if s.held < noButton {
		if mask&(1<<s.held) == 0 {
			s.Release()
		}
	} else if acceptNew {
		for i := 0; i < NumButtons; i++ {
			if mask&(1<<i) != 0 {
				s.freeze = (s.Beat / NumButtons) * NumButtons
				s.held = i
				break
			}
		}
	}
	if s.held2 < noButton && mask&(1<<s.held2) == 0 {
		s.held2 = noButton
	}
}

// SecondButton looks for a button held alongside the first one and
// records it. The last match wins.
func (s *Selector) SecondButton(mask uint8) bool {
	if s.held >= noButton {
		return false
	}
	found := false
	for i := 0; i < NumButtons; i++ {
		if i != s.held && mask&(1<<i) != 0 {
			s.held2 = i
			found = true
		}
	}
	return found
}

// Pick chooses the next beat of a sample with the given beat count:
// a held button first, then the playing sequencer, then a reset to zero,
// then the next beat. switchHeads is false when the plain advance wrapped
// back to the start, so the loop continues without a crossfade.
func (s *Selector) Pick(beats int, track *sequencer.Track, total uint32, reset bool) (switchHeads bool) {
	beats = max(beats, 1)
	switch {
	case s.held < noButton:
		s.Beat = (s.held + s.freeze) % beats
		if track != nil {
			track.Record(uint8(s.Beat))
		}
	case track != nil && track.IsPlaying():
		s.Beat = int(track.Next(total)) % beats
	case reset:
		s.Beat = 0
	default:
		s.Beat++
		if s.Beat >= beats || s.Beat < 0 {
			s.Beat = 0
			return false
		}
	}
	return true
}
