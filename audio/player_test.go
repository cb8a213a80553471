package audio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countRenderer struct{ calls, bytes int }

func (c *countRenderer) Render(buf []byte) {
	c.calls++
	for i := range buf {
		buf[i] = uint8(c.bytes)
		c.bytes++
	}
}

func TestStreamReadsRenderer(t *testing.T) {
	r := &countRenderer{}
	s := NewStream(r)
	buf := make([]byte, 4)
	n, err := s.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{0, 1, 2, 3}, buf)
	assert.Equal(t, uint64(4), s.Frames())
}

func TestStreamSilentWithoutRenderer(t *testing.T) {
	s := NewStream(nil)
	buf := []byte{1, 2, 3}
	s.Read(buf)
	assert.Equal(t, []byte{128, 128, 128}, buf)

	r := &countRenderer{}
	s.Set(r)
	s.Read(buf)
	assert.Equal(t, 1, r.calls)
}

func TestRunHeadlessStopsOnCancel(t *testing.T) {
	s := NewStream(&countRenderer{})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	RunHeadless(ctx, s, 8000, 5*time.Millisecond)
	assert.Greater(t, s.Frames(), uint64(0))
	assert.LessOrEqual(t, s.Frames(), uint64(8000))
}
