// Package colormap maps normalized escape counts to colors.
package colormap

import (
	"fmt"
	"image/color"
	"math"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Map turns t in [0,1] into a color. Values outside the range are clamped.
type Map interface {
	At(t float64) color.RGBA
}

// Gradient interpolates between evenly spaced stops in CIE L*a*b* space.
type Gradient struct {
	stops []colorful.Color
}

// NewGradient builds a gradient from hex color stops ("#rrggbb").
func NewGradient(hexStops ...string) (*Gradient, error) {
	if len(hexStops) < 2 {
		return nil, fmt.Errorf("colormap: need at least 2 stops, got %d", len(hexStops))
	}
	stops := make([]colorful.Color, len(hexStops))
	for i, h := range hexStops {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("colormap: stop %d: %w", i, err)
		}
		stops[i] = c
	}
	return &Gradient{stops: stops}, nil
}

func mustGradient(hexStops ...string) *Gradient {
	g, err := NewGradient(hexStops...)
	if err != nil {
		panic(err)
	}
	return g
}

// At implements Map.
func (g *Gradient) At(t float64) color.RGBA {
	t = clamp01(t)
	pos := t * float64(len(g.stops)-1)
	i := int(pos)
	if i >= len(g.stops)-1 {
		return toRGBA(g.stops[len(g.stops)-1])
	}
	return toRGBA(g.stops[i].BlendLab(g.stops[i+1], pos-float64(i)))
}

func toRGBA(c colorful.Color) color.RGBA {
	r, gr, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: gr, B: b, A: 255}
}

func clamp01(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	return min(t, 1)
}

// Perceptually ordered maps, sampled at tenths.
var (
	Inferno = mustGradient(
		"#000004", "#160b39", "#420a68", "#6a176e", "#932667", "#bc3754",
		"#dd513a", "#f37819", "#fca50a", "#f6d746", "#fcffa4")

	Cividis = mustGradient(
		"#00224e", "#123570", "#3b496c", "#575d6d", "#707173", "#8a8678",
		"#a59c74", "#c3b369", "#e1cc55", "#fee838")

	Viridis = mustGradient(
		"#440154", "#482878", "#3e4989", "#31688e", "#26828e", "#1f9e89",
		"#35b779", "#6ece58", "#b5de2b", "#fde725")

	Gray = mustGradient("#000000", "#ffffff")
)

// HSV cycles through hues. t == 0 (a bounded orbit) is black.
type HSV struct {
	// Cycles is how many times the hue wheel repeats over [0,1].
	Cycles float64
}

// At implements Map.
func (h HSV) At(t float64) color.RGBA {
	t = clamp01(t)
	if t == 0 {
		return color.RGBA{A: 255}
	}
	cycles := h.Cycles
	if cycles <= 0 {
		cycles = 1
	}
	return hsv(t*cycles, 1, 1)
}

// hsv converts a hue in turns, saturation and value to RGB.
func hsv(h, s, v float64) color.RGBA {
	h = math.Mod(h, 1)
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return color.RGBA{uint8(r * 255), uint8(g * 255), uint8(b * 255), 255}
}

var byName = map[string]Map{
	"inferno": Inferno,
	"cividis": Cividis,
	"viridis": Viridis,
	"gray":    Gray,
	"hsv":     HSV{Cycles: 4},
}

// Names returns the names accepted by ByName, sorted.
func Names() []string {
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// ByName looks up a colormap.
func ByName(name string) (Map, error) {
	m, ok := byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("colormap: unknown map %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return m, nil
}
