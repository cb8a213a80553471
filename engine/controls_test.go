package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestControlsDefaults(t *testing.T) {
	c := NewControls(33000, 165)
	assert.Equal(t, 165, c.Bpm())
	assert.Equal(t, FilterOff, c.Filter())
	assert.Equal(t, 6000*4, c.GateThreshold())
	assert.True(t, c.BaseForward())
	for _, p := range Probs {
		assert.Equal(t, uint8(0), c.Probability(p), p.String())
	}
}

func TestControlsClamp(t *testing.T) {
	c := NewControls(33000, 165)
	c.SetProbability(ProbJump, 300)
	c.SetProbability(ProbGate, -4)
	assert.Equal(t, uint8(255), c.Probability(ProbJump))
	assert.Equal(t, uint8(0), c.Probability(ProbGate))

	c.SetDistortion(99)
	c.SetVolumeReduce(99)
	c.SetVolumeMod(-1)
	c.SetFilter(1000)
	assert.Equal(t, DistortionMax, c.Distortion())
	assert.Equal(t, VolumeReduceTop, c.VolumeReduce())
	assert.Equal(t, 0, c.VolumeMod())
	assert.Equal(t, FilterOff, c.Filter())

	c.SetStretch(1000)
	assert.Equal(t, 2*c.SampleClockThreshold(), c.Stretch())
}

func TestControlsOneShots(t *testing.T) {
	c := NewControls(33000, 165)
	c.SetMuted(true)
	c.SetSyncing(true)
	c.Restart()
	assert.False(t, c.Muted())
	assert.False(t, c.Syncing())
	assert.True(t, c.hardReset.Swap(false))
	assert.True(t, c.restart.Swap(false))
	assert.False(t, c.hardReset.Load())
}
