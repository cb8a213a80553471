package engine

// Gate fades each beat in over its first steps and out once it runs past
// the threshold, one level per 100 steps up to GateLevels.
type Gate struct {
	val       int
	fade      int
	Threshold int
}

// Onset restarts the step count for a new beat.
func (g *Gate) Onset() {
	g.val = 0
}

// Reset reopens the gate fully.
func (g *Gate) Reset() {
	g.val = 0
	g.fade = 0
}

// Step advances one sample step.
func (g *Gate) Step() {
	g.val++
	switch {
	case g.val < 10 && g.fade > 0:
		g.fade--
	case g.val > g.Threshold && g.val%100 == 0 && g.fade < GateLevels:
		g.fade++
	}
}

// Fade is the attenuation shift contributed by the gate.
func (g *Gate) Fade() int {
	return g.fade
}
