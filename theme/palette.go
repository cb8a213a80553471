package theme

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

type RGB [3]uint8

func (c RGB) color() colorful.Color {
	return colorful.Color{R: float64(c[0]) / 255, G: float64(c[1]) / 255, B: float64(c[2]) / 255}
}

func (c RGB) Hex() string { return c.color().Hex() }

func fromColor(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{r, g, b}
}

type Palette struct {
	Name   string
	Colors []RGB
}

// Default is the built-in palette: ember on a dark plum background,
// blended in Lab space from a handful of stops.
func Default() *Palette {
	stops := []string{"#1a0f1f", "#3b1d3a", "#7a2e4d", "#c8464b", "#f08a3c", "#ffd66b"}
	p := &Palette{Name: "ember"}
	const steps = 4
	for i := 0; i < len(stops)-1; i++ {
		a, _ := colorful.Hex(stops[i])
		b, _ := colorful.Hex(stops[i+1])
		for s := 0; s < steps; s++ {
			p.Colors = append(p.Colors, fromColor(a.BlendLab(b, float64(s)/steps)))
		}
	}
	last, _ := colorful.Hex(stops[len(stops)-1])
	p.Colors = append(p.Colors, fromColor(last))
	return p
}

// LoadGPL reads a GIMP palette file.
func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p := &Palette{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if name, ok := strings.CutPrefix(line, "Name:"); ok {
			p.Name = strings.TrimSpace(name)
			continue
		}
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "GIMP") || strings.HasPrefix(line, "Columns") {
			continue
		}

		// R G B [name]
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		var rgb RGB
		ok := true
		for i := range rgb {
			v, err := strconv.Atoi(fields[i])
			if err != nil || v < 0 || v > 255 {
				ok = false
				break
			}
			rgb[i] = uint8(v)
		}
		if ok {
			p.Colors = append(p.Colors, rgb)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("no colors found in palette %s", path)
	}
	return p, nil
}

// Lookup returns the colour at norm (0-1), blended between neighbouring
// entries.
func (p *Palette) Lookup(norm float64) RGB {
	if norm <= 0 || len(p.Colors) == 1 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}
	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	return fromColor(p.Colors[i].color().BlendRgb(p.Colors[i+1].color(), pos-float64(i)))
}

// Index returns the entry at i, clamped to the palette.
func (p *Palette) Index(i int) RGB {
	return p.Colors[max(0, min(i, len(p.Colors)-1))]
}
