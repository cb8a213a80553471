package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPalette(t *testing.T) {
	p := Default()
	require.Len(t, p.Colors, 21)
	assert.Equal(t, "#1a0f1f", p.Lookup(0).Hex())
	assert.Equal(t, "#ffd66b", p.Lookup(1).Hex())
	assert.Equal(t, p.Colors[20], p.Index(99))
	assert.Equal(t, p.Colors[0], p.Index(-1))
}

func TestLookupBlends(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {255, 255, 255}}}
	assert.Equal(t, RGB{128, 128, 128}, p.Lookup(0.5))
	assert.Equal(t, RGB{0, 0, 0}, p.Lookup(-3))
}

func TestLoadGPL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.gpl")
	data := "GIMP Palette\nName: test\nColumns: 2\n# comment\n255 0 0 red\n  0 255   0\nbad line\n300 0 0\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	p, err := LoadGPL(path)
	require.NoError(t, err)
	assert.Equal(t, "test", p.Name)
	assert.Equal(t, []RGB{{255, 0, 0}, {0, 255, 0}}, p.Colors)

	empty := filepath.Join(t.TempDir(), "empty.gpl")
	require.NoError(t, os.WriteFile(empty, []byte("GIMP Palette\n"), 0644))
	_, err = LoadGPL(empty)
	assert.Error(t, err)
}

func TestThemeDefaults(t *testing.T) {
	th := New(nil)
	require.NotNil(t, th.Palette)
	assert.Equal(t, '●', th.Symbols.LEDOn)
	assert.NotEqual(t, th.LED(0), th.LED(255))
}
