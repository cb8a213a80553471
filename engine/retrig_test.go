package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrigIntervals(t *testing.T) {
	iv := RetrigIntervals(6000)
	assert.Equal(t, 24000, iv[0])
	assert.Equal(t, 6000, iv[8])
	assert.Equal(t, 375, iv[NumRetrigIntervals-1])
	for i := 1; i < NumRetrigIntervals; i++ {
		assert.Less(t, iv[i], iv[i-1])
	}
}

func TestSessionBounded(t *testing.T) {
	for seed := uint64(0); seed < 500; seed++ {
		r := NewRand(seed)
		var s Session
		second := int(seed%9) - 1
		s.Arm(second < 0)
		s.Activate(r, second)
		require.Equal(t, RetrigActive, s.State)
		require.GreaterOrEqual(t, s.Limit, 1)
		require.GreaterOrEqual(t, s.Sel, 0)
		require.Less(t, s.Sel, NumRetrigIntervals)
		if second >= 0 {
			require.GreaterOrEqual(t, s.Sel, 2*second)
			require.LessOrEqual(t, s.Sel, 2*second+2)
		}

		limit := s.Limit
		for i := 1; i < limit; i++ {
			require.False(t, s.Strike(), "seed %d strike %d", seed, i)
			require.LessOrEqual(t, s.Count, s.Limit)
			require.GreaterOrEqual(t, s.Volume, 0)
			require.LessOrEqual(t, s.Volume, maxRetrigVolume)
		}
		require.True(t, s.Strike())
		require.Equal(t, Session{}, s, "deltas are neutral after the last strike")
		require.True(t, s.Finish(), "finishing twice is harmless")
		require.Equal(t, Session{}, s)
	}
}

func TestSessionRamps(t *testing.T) {
	s := Session{State: RetrigActive, Sel: 8, Limit: 10, PitchStep: -1, Filter: 10, FilterChange: 4, Volume: 5, Ramp: RampSwell}
	assert.Equal(t, 40, s.FilterOffset())
	s.Strike()
	assert.Equal(t, 36, s.FilterOffset())
	assert.Equal(t, -1, s.Pitch)
	assert.Equal(t, 4, s.Volume)

	fade := Session{State: RetrigActive, Sel: 14, Limit: 20, Volume: 1, Ramp: RampFade}
	for i := 0; i < 8; i++ {
		fade.Strike()
	}
	assert.Equal(t, 3, fade.Volume, "extreme intervals ramp every fourth strike")
}

func TestSessionCancel(t *testing.T) {
	var s Session
	s.Arm(false)
	s.Cancel()
	assert.Equal(t, RetrigIdle, s.State)

	s.Arm(false)
	s.Activate(NewRand(1), 3)
	s.Strike()
	if !s.Active() {
		return
	}
	s.Cancel()
	assert.Equal(t, s.Count, s.Limit)
	assert.True(t, s.Strike())
	assert.Equal(t, RetrigIdle, s.State)
}

func TestArmOnlyFromIdle(t *testing.T) {
	s := Session{State: RetrigActive, Limit: 4}
	s.Arm(true)
	assert.Equal(t, RetrigActive, s.State)
	assert.False(t, s.Random)
}
