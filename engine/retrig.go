package engine

import "math"

// retrigMultipliers are the strike intervals in beats, longest first.
var retrigMultipliers = [...]float64{
	4, 3.66666666, 3, 2.666666, 2.5, 2, 1.5, 1.333333333, 1, 0.75,
	0.666666666, 0.5, 0.375, 0.333333, 0.25, 0.1875, 0.125, 0.09375, 0.0625,
}

// NumRetrigIntervals is the size of the strike interval table.
const NumRetrigIntervals = len(retrigMultipliers)

// RetrigIntervals returns the strike interval table in sample steps.
func RetrigIntervals(samplesPerBeat int) [NumRetrigIntervals]int {
	var out [NumRetrigIntervals]int
	for i, m := range retrigMultipliers {
		out[i] = max(1, int(math.Round(m*float64(samplesPerBeat))))
	}
	return out
}

// RetrigState is the phase of a retrigger session.
type RetrigState uint8

const (
	RetrigIdle RetrigState = iota
	RetrigArmed
	RetrigActive
)

func (s RetrigState) String() string {
	switch s {
	case RetrigArmed:
		return "armed"
	case RetrigActive:
		return "active"
	default:
		return "idle"
	}
}

// VolumeRamp is the direction the retrigger volume reduction moves.
type VolumeRamp uint8

const (
	RampNone VolumeRamp = iota
	// RampSwell starts quiet and gets louder each strike.
	RampSwell
	// RampFade gets quieter, like a delay tail.
	RampFade
)

// maxRetrigVolume caps the fade ramp's attenuation shift.
const maxRetrigVolume = 8

// Session is a burst of re-strikes of the current beat. Outside
// RetrigActive every delta is neutral.
type Session struct {
	State RetrigState
	// Sel indexes the strike interval table.
	Sel   int
	Count int
	Limit int

	PitchStep int // +1 or -1 per strike, 0 for none
	Pitch     int

	Filter       int
	FilterChange int

	Volume int
	Ramp   VolumeRamp

	// Random sessions were armed by chance rather than by a button pair.
	Random bool
}

// Arm flags a session to start on this onset.
func (s *Session) Arm(random bool) {
	if s.State != RetrigIdle {
		return
	}
	s.State = RetrigArmed
	s.Random = random
}

// Activate rolls the session parameters. second is the second held
// button, or -1 for a randomly armed session; higher buttons pick
// shorter intervals.
func (s *Session) Activate(r *Rand, second int) {
	if s.State != RetrigArmed {
		return
	}
	r1 := r.Between(0, 100)
	r2 := r.Between(0, 100)
	r3 := r.Between(0, 100)
	r4 := r.Between(0, 100)

	if second < 0 || second >= NumButtons {
		s.Sel = r.Between(2, 16)
	} else {
		s.Sel = r.Between(2*second, 2*second+2)
	}

	s.Limit = r.Between(3, 16)
	switch {
	case s.Sel < 6:
		s.Limit /= 2
	case s.Sel > 11:
		s.Limit *= 2
	}

	s.Count = 0
	s.Pitch = 0
	s.PitchStep = 0
	switch {
	case r1 <= 15:
		s.PitchStep = 1
	case r2 <= 15:
		s.PitchStep = -1
	}

	s.Filter, s.FilterChange = 0, 0
	if r3 < 30 {
		s.Filter = s.Limit
		s.FilterChange = (LPFMax - 10) / s.Limit
	}

	s.Volume, s.Ramp = 0, RampNone
	if r4 < 20 && s.Sel > 6 {
		s.Volume = min(s.Limit, 5)
		s.Ramp = RampSwell
		if r.Between(1, 100) < 30 {
			s.Ramp = RampFade
			s.Volume = 1
		}
	}
	s.State = RetrigActive
}

// Active reports whether strikes are running.
func (s Session) Active() bool {
	return s.State == RetrigActive
}

// Interval returns the strike interval in sample steps.
func (s *Session) Interval(table *[NumRetrigIntervals]int) int {
	return table[clamp(s.Sel, 0, NumRetrigIntervals-1)]
}

// Strike counts one re-strike and steps the ramps. It returns true when
// the session has reached its limit and gone back to idle.
func (s *Session) Strike() bool {
	if s.State != RetrigActive {
		return true
	}
	s.Count++
	if s.Filter > 0 {
		s.Filter--
	}
	switch s.Ramp {
	case RampSwell:
		if s.Volume > 0 && (s.Sel <= 11 || s.Count%2 == 0) {
			s.Volume--
		}
	case RampFade:
		if s.Volume < maxRetrigVolume && s.Count%2 == 0 && (s.Sel <= 11 || s.Count%4 == 0) {
			s.Volume++
		}
	}
	s.Pitch += s.PitchStep
	return s.Finish()
}

// Finish ends the session if the strike count has reached the limit. It is
// safe to call any number of times.
func (s *Session) Finish() bool {
	if s.Count >= s.Limit || s.State != RetrigActive {
		s.Reset()
		return true
	}
	return false
}

// Cancel cuts the session short: an armed session is dropped, an active
// one ends on its next strike.
func (s *Session) Cancel() {
	switch s.State {
	case RetrigArmed:
		s.Reset()
	case RetrigActive:
		s.Limit = s.Count
	}
}

// Reset returns to idle with neutral deltas.
func (s *Session) Reset() {
	*s = Session{}
}

// FilterOffset is how far the session pulls the cutoff down.
func (s *Session) FilterOffset() int {
	return s.Filter * s.FilterChange
}
