package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardHeadCycles(t *testing.T) {
	const length = 37
	for start := 0; start < length; start++ {
		h := NewHeadPair()
		h.Jump(start)
		for i := 0; i < length; i++ {
			h.Step(length)
			require.Less(t, h.Active().Phase, length)
		}
		assert.Equal(t, start, h.Active().Phase)
	}
}

func TestReverseHeadSkipsLastSample(t *testing.T) {
	const length = 20
	h := NewHeadPair()
	h.Active().Forward = false
	h.Idle().Forward = false
	h.Jump(5)
	seen := map[int]bool{}
	for i := 0; i < 3*length; i++ {
		h.Step(length)
		p := h.Active().Phase
		require.GreaterOrEqual(t, p, 0)
		require.NotEqual(t, length-1, p)
		seen[p] = true
	}
	assert.Len(t, seen, length-1)

	// reverse cycle is length-1 long
	h.Jump(5)
	for i := 0; i < length-1; i++ {
		h.Step(length)
	}
	assert.Equal(t, 5, h.Active().Phase)
}

func TestCrossfadeConverges(t *testing.T) {
	h := NewHeadPair()
	h.Switch(100)
	require.Equal(t, CrossfadeLen, h.Fading())

	first := h.Mix(200, 40)
	assert.Equal(t, uint8((200*1+40*(CrossfadeLen-1))>>HeadShift), first)

	var last uint8
	for i := 1; i < CrossfadeLen; i++ {
		last = h.Mix(200, 40)
		require.GreaterOrEqual(t, last, first)
	}
	assert.Equal(t, uint8(200), last, "after the fade only the new head is heard")
	assert.Equal(t, 0, h.Fading())
	assert.Equal(t, uint8(77), h.Mix(77, 250))
}

func TestSwitchAlternatesHeads(t *testing.T) {
	h := NewHeadPair()
	h.Jump(10)
	h.Switch(500)
	assert.Equal(t, 500, h.Active().Phase)
	assert.Equal(t, 10, h.Idle().Phase)
	h.Switch(3)
	assert.Equal(t, 3, h.Active().Phase)
	assert.Equal(t, 500, h.Idle().Phase)
}

func TestGateFades(t *testing.T) {
	g := Gate{Threshold: 250}
	for i := 0; i < 250; i++ {
		g.Step()
	}
	assert.Equal(t, 0, g.Fade())
	for i := 0; i < 2000; i++ {
		g.Step()
	}
	assert.Equal(t, GateLevels, g.Fade(), "fade saturates")

	g.Onset()
	for i := 0; i < 9; i++ {
		g.Step()
	}
	assert.Equal(t, 0, g.Fade(), "fades back in over the first steps")
}
