package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestButtonDebounce(t *testing.T) {
	b := NewButton(2)
	b.Read(true)
	assert.True(t, b.On())
	assert.True(t, b.Rising())
	assert.True(t, b.ChangedHigh())
	assert.False(t, b.ChangedHigh(), "reported once")

	// bounce is ignored while settling
	b.Read(false)
	b.Read(false)
	assert.True(t, b.On())
	b.Read(false)
	assert.False(t, b.On())
	assert.True(t, b.Falling())
	assert.False(t, b.ChangedHigh())
}

func TestKnobJitterAndSettle(t *testing.T) {
	k := NewKnob(2000, 2)
	k.Read(3000)
	assert.False(t, k.Changed(), "settling")
	k.Read(3050)
	assert.False(t, k.Changed(), "settling")
	k.Read(3080)
	assert.False(t, k.Changed(), "within jitter of 3000")
	assert.Equal(t, 3000, k.Value())
	k.Read(3200)
	assert.True(t, k.Changed())
	assert.Equal(t, 3200, k.Value())

	k.Reset()
	k.Read(100)
	assert.False(t, k.Changed())
	assert.Equal(t, 100, k.Value(), "value still tracks while settling")

	k.Read(9000)
	assert.Equal(t, KnobMax, k.Value())
}

func TestRunningAverage(t *testing.T) {
	r := NewRunningAverage(3)
	assert.Equal(t, 100, r.Update(100))
	assert.Equal(t, 150, r.Update(200))
	assert.Equal(t, 200, r.Update(300))
	assert.Equal(t, 300, r.Update(400), "oldest dropped")
	assert.Equal(t, 300, r.Value())
}

func TestTriggerOut(t *testing.T) {
	tr := NewTriggerOut(3)
	assert.False(t, tr.High())
	tr.Fire()
	assert.True(t, tr.High())
	assert.True(t, tr.Update())
	assert.True(t, tr.Update())
	assert.False(t, tr.Update())
	assert.False(t, tr.Update())
}
