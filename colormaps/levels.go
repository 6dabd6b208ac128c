package colormaps

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot/palette"
)

// Levels is a discrete colormap: len(Bounds) == len(colors)+1 and every
// value in [Bounds[i], Bounds[i+1]) maps to colors[i]. Values outside
// the bounds clamp into the end bands, matching an "extend both ends"
// colorbar.
//
// Levels implements both palette.Palette and palette.ColorMap so it can
// drive filled fields and colorbars alike.
type Levels struct {
	Name   string
	Bounds []float64

	colors []color.Color
	alpha  float64
}

func newLevels(name string, bounds []float64, colors []color.Color) *Levels {
	if len(bounds) != len(colors)+1 {
		panic(fmt.Sprintf("colormaps: %s: %d bounds for %d colors", name, len(bounds), len(colors)))
	}
	return &Levels{Name: name, Bounds: bounds, colors: colors, alpha: 1}
}

// N returns the number of color bands.
func (l *Levels) N() int { return len(l.colors) }

// BinIndex returns the index of the band containing v, clamped to the
// end bands for out-of-range values.
func (l *Levels) BinIndex(v float64) int {
	if v < l.Bounds[0] {
		return 0
	}
	for i := 1; i < len(l.Bounds)-1; i++ {
		if v < l.Bounds[i] {
			return i - 1
		}
	}
	return len(l.colors) - 1
}

// At implements palette.ColorMap by boundary lookup.
func (l *Levels) At(v float64) (color.Color, error) {
	if math.IsNaN(v) {
		return nil, palette.ErrNaN
	}
	return l.applyAlpha(l.colors[l.BinIndex(v)]), nil
}

// Colors implements palette.Palette.
func (l *Levels) Colors() []color.Color {
	out := make([]color.Color, len(l.colors))
	for i, c := range l.colors {
		out[i] = l.applyAlpha(c)
	}
	return out
}

// Palette implements palette.ColorMap. The band colors are fixed, so
// the requested size is ignored.
func (l *Levels) Palette(int) palette.Palette { return l }

// Min implements palette.ColorMap.
func (l *Levels) Min() float64 { return l.Bounds[0] }

// Max implements palette.ColorMap.
func (l *Levels) Max() float64 { return l.Bounds[len(l.Bounds)-1] }

// SetMin implements palette.ColorMap. Band boundaries are fixed by the
// variable family, so the range cannot be changed.
func (l *Levels) SetMin(float64) {}

// SetMax implements palette.ColorMap. See SetMin.
func (l *Levels) SetMax(float64) {}

// Alpha implements palette.ColorMap.
func (l *Levels) Alpha() float64 { return l.alpha }

// SetAlpha implements palette.ColorMap. It panics if alpha is outside [0, 1].
func (l *Levels) SetAlpha(a float64) {
	if a < 0 || a > 1 {
		panic("colormaps: alpha out of range")
	}
	l.alpha = a
}

func (l *Levels) applyAlpha(c color.Color) color.Color {
	if l.alpha == 1 {
		return c
	}
	r, g, b, a := c.RGBA()
	return color.NRGBA64{
		R: uint16(r),
		G: uint16(g),
		B: uint16(b),
		A: uint16(float64(a) * l.alpha),
	}
}

// clone returns an independent copy so callers can adjust alpha without
// affecting the package-level tables.
func (l *Levels) clone() *Levels {
	colors := make([]color.Color, len(l.colors))
	copy(colors, l.colors)
	bounds := make([]float64, len(l.Bounds))
	copy(bounds, l.Bounds)
	return &Levels{Name: l.Name, Bounds: bounds, colors: colors, alpha: l.alpha}
}
