package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "debug.log")
	require.NoError(t, EnableFile(path))
	defer Disable()
	assert.True(t, Enabled())

	Log("store", "saved bpm=%d", 120)
	for i := 0; i < 10; i++ {
		LogEvery(5, "midi", "clock")
	}
	Disable()
	Log("store", "dropped")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "store")
	assert.Contains(t, lines[1], "saved bpm=120")
	assert.Contains(t, lines[2], "clock (every 5, count=5)")
	assert.Contains(t, lines[3], "count=10")
}

func TestLogDisabledIsSilent(t *testing.T) {
	assert.False(t, Enabled())
	Log("engine", "nothing")
	LogEvery(1, "engine", "nothing")
}
