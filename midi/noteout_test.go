package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestNoteOutMonophonic(t *testing.T) {
	var sent []gomidi.Message
	n := newNoteOut(func(msg gomidi.Message) error {
		sent = append(sent, msg)
		return nil
	}, 3, true)

	require.NoError(t, n.On(36, 100))
	require.NoError(t, n.On(38, 90))
	require.NoError(t, n.Release())
	require.NoError(t, n.Release())

	assert.Equal(t, []gomidi.Message{
		gomidi.NoteOn(3, 36, 100),
		gomidi.NoteOff(3, 36),
		gomidi.NoteOn(3, 38, 90),
		gomidi.NoteOff(3, 38),
	}, sent)
}

func TestNoteOutPolyphonic(t *testing.T) {
	var sent int
	n := newNoteOut(func(gomidi.Message) error {
		sent++
		return nil
	}, 0, false)
	n.On(36, 100)
	n.On(38, 100)
	assert.Equal(t, 2, sent)
}
