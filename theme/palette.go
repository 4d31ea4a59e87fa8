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

type Palette struct {
	Name   string
	Colors []RGB
}

// NoteColors has one color per pitch class, C first
var NoteColors = [12]string{
	"rgb(255,   0,   0)",
	"rgb(255, 127,   0)",
	"rgb(255, 255,   0)",
	"rgb(127, 255,   0)",
	"rgb(  0, 255,   0)",
	"rgb(  0, 255, 127)",
	"rgb(  0, 255, 255)",
	"rgb(  0, 127, 255)",
	"rgb(  0,   0, 255)",
	"rgb(127,   0, 255)",
	"rgb(255,   0, 255)",
	"rgb(255,   0, 127)",
}

// plasma-ish default for UI chrome when no GPL file is configured
var defaultUIColors = []RGB{
	{13, 8, 135},
	{84, 2, 163},
	{139, 10, 165},
	{185, 50, 137},
	{219, 92, 104},
	{244, 136, 73},
	{254, 188, 43},
	{240, 249, 33},
}

// ParseRGB parses a CSS-style "rgb(r, g, b)" string
func ParseRGB(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "rgb(") || !strings.HasSuffix(s, ")") {
		return RGB{}, fmt.Errorf("not an rgb() color: %q", s)
	}
	parts := strings.Split(s[4:len(s)-1], ",")
	if len(parts) != 3 {
		return RGB{}, fmt.Errorf("want 3 components in %q", s)
	}
	var c RGB
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return RGB{}, fmt.Errorf("bad component in %q: %w", s, err)
		}
		if v < 0 || v > 255 {
			return RGB{}, fmt.Errorf("component %d out of range in %q", v, s)
		}
		c[i] = uint8(v)
	}
	return c, nil
}

// NotePalette returns the built-in pitch-class palette
func NotePalette() *Palette {
	p := &Palette{Name: "Pitch classes"}
	for _, s := range NoteColors {
		c, err := ParseRGB(s)
		if err != nil {
			panic(err) // table is static
		}
		p.Colors = append(p.Colors, c)
	}
	return p
}

// DefaultUIPalette returns the built-in UI palette
func DefaultUIPalette() *Palette {
	return &Palette{Name: "Default", Colors: append([]RGB(nil), defaultUIColors...)}
}

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

		if strings.HasPrefix(line, "Name:") {
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			continue
		}

		// Skip headers and comments
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "GIMP") || strings.HasPrefix(line, "Columns") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) >= 3 {
			r, err1 := strconv.Atoi(fields[0])
			g, err2 := strconv.Atoi(fields[1])
			b, err3 := strconv.Atoi(fields[2])
			if err1 == nil && err2 == nil && err3 == nil {
				p.Colors = append(p.Colors, RGB{uint8(r), uint8(g), uint8(b)})
			}
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

// LoadGPLOr loads path, falling back to def when path is empty or unreadable
func LoadGPLOr(path string, def *Palette) *Palette {
	if path == "" {
		return def
	}
	p, err := LoadGPL(path)
	if err != nil {
		return def
	}
	return p
}

// Lookup returns interpolated color for normalized value 0-1
func (p *Palette) Lookup(norm float64) RGB {
	if norm <= 0 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}

	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	frac := pos - float64(i)

	c0 := toColorful(p.Colors[i])
	c1 := toColorful(p.Colors[i+1])
	return fromColorful(c0.BlendRgb(c1, frac))
}

// Index returns color at specific index (no interpolation)
func (p *Palette) Index(i int) RGB {
	if i < 0 {
		return p.Colors[0]
	}
	if i >= len(p.Colors) {
		return p.Colors[len(p.Colors)-1]
	}
	return p.Colors[i]
}

// PitchColor picks the color for a MIDI pitch by pitch class. Palettes
// with exactly 12 entries are indexed; others are sampled evenly.
func (p *Palette) PitchColor(midi int) RGB {
	pc := ((midi % 12) + 12) % 12
	if len(p.Colors) == 12 {
		return p.Colors[pc]
	}
	return p.Lookup(float64(pc) / 11)
}

// Hex returns "#rrggbb"
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

func toColorful(c RGB) colorful.Color {
	return colorful.Color{R: float64(c[0]) / 255, G: float64(c[1]) / 255, B: float64(c[2]) / 255}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{r, g, b}
}
