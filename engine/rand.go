package engine

import "math/rand/v2"

// Rand is the seeded source behind every probabilistic decision. A fixed
// seed replays the same performance.
type Rand struct {
	r *rand.Rand
}

func NewRand(seed uint64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Between returns a uniform integer in [lo, hi], both ends included.
func (r *Rand) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.r.IntN(hi-lo+1)
}

// Chance is true with probability weight/255. Weight 0 never fires and
// 255 always does.
func (r *Rand) Chance(weight uint8) bool {
	if weight == 0 {
		return false
	}
	return r.Between(0, 254) < int(weight)
}
