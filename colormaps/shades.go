package colormaps

import (
	"image/color"
	"math"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// Ramp is a continuous colormap that interpolates linearly between a
// list of anchor colors spread evenly over [Min, Max]. Out-of-range
// values clamp to the end colors.
type Ramp struct {
	Name string

	anchors  []color.Color
	min, max float64
	alpha    float64
}

// NewRamp builds a continuous colormap from at least two anchor colors.
// The range is unset; callers must SetMin/SetMax before use.
func NewRamp(name string, anchors ...color.Color) *Ramp {
	if len(anchors) < 2 {
		panic("colormaps: ramp needs at least two anchor colors")
	}
	return &Ramp{Name: name, anchors: anchors, min: math.NaN(), max: math.NaN(), alpha: 1}
}

// At implements palette.ColorMap.
func (r *Ramp) At(v float64) (color.Color, error) {
	if math.IsNaN(v) {
		return nil, palette.ErrNaN
	}
	if math.IsNaN(r.min) || math.IsNaN(r.max) || r.min >= r.max {
		return nil, palette.ErrUnderflow
	}
	t := (v - r.min) / (r.max - r.min)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	segs := float64(len(r.anchors) - 1)
	pos := t * segs
	i := int(pos)
	if i >= len(r.anchors)-1 {
		i = len(r.anchors) - 2
		pos = segs
	}
	return lerpColor(r.anchors[i], r.anchors[i+1], pos-float64(i), r.alpha), nil
}

// Min implements palette.ColorMap.
func (r *Ramp) Min() float64 { return r.min }

// Max implements palette.ColorMap.
func (r *Ramp) Max() float64 { return r.max }

// SetMin implements palette.ColorMap.
func (r *Ramp) SetMin(v float64) { r.min = v }

// SetMax implements palette.ColorMap.
func (r *Ramp) SetMax(v float64) { r.max = v }

// Alpha implements palette.ColorMap.
func (r *Ramp) Alpha() float64 { return r.alpha }

// SetAlpha implements palette.ColorMap.
func (r *Ramp) SetAlpha(a float64) {
	if a < 0 || a > 1 {
		panic("colormaps: alpha out of range")
	}
	r.alpha = a
}

// Palette implements palette.ColorMap by sampling n evenly spaced colors.
func (r *Ramp) Palette(n int) palette.Palette {
	if n < 2 {
		n = 2
	}
	cs := make([]color.Color, n)
	for i := range cs {
		segs := float64(len(r.anchors) - 1)
		pos := float64(i) / float64(n-1) * segs
		j := int(pos)
		if j >= len(r.anchors)-1 {
			j = len(r.anchors) - 2
			pos = segs
		}
		cs[i] = lerpColor(r.anchors[j], r.anchors[j+1], pos-float64(j), r.alpha)
	}
	return sampled(cs)
}

type sampled []color.Color

func (s sampled) Colors() []color.Color { return s }

func lerpColor(a, b color.Color, t, alpha float64) color.Color {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	lerp := func(x, y uint32) uint16 {
		return uint16(float64(x) + t*(float64(y)-float64(x)))
	}
	return color.NRGBA64{
		R: lerp(ar, br),
		G: lerp(ag, bg),
		B: lerp(ab, bb),
		A: uint16(float64(lerp(aa, ba)) * alpha),
	}
}

// Rainbow returns the blue-to-red hue sweep used for temperature shading.
func Rainbow() palette.ColorMap {
	return NewRamp("rainbow", palette.Rainbow(16, palette.Blue, palette.Red, 1, 1, 1).Colors()...)
}

// Spring returns the magenta-to-yellow ramp used for wind shading.
func Spring() palette.ColorMap {
	return NewRamp("spring",
		color.NRGBA{R: 255, G: 0, B: 255, A: 255},
		color.NRGBA{R: 255, G: 255, B: 0, A: 255},
	)
}

// Diverging returns the blue-white-red map used for difference fields.
// The converge point sits at zero once the range is set symmetrically.
func Diverging() palette.ColorMap {
	return moreland.SmoothBlueRed()
}

// Sequential returns the perceptually uniform default map for variable
// families without a dedicated colormap.
func Sequential() palette.ColorMap {
	return moreland.Kindlmann()
}

// Cyclic returns a twilight-style cyclic map whose endpoints share a
// color, used to shade quantile fans so that the q and 1-q bands match
// in tone.
func Cyclic() palette.ColorMap {
	light := color.NRGBA{R: 226, G: 217, B: 226, A: 255}
	return NewRamp("cyclic",
		light,
		color.NRGBA{R: 75, G: 90, B: 180, A: 255},
		color.NRGBA{R: 40, G: 40, B: 60, A: 255},
		color.NRGBA{R: 170, G: 75, B: 80, A: 255},
		light,
	)
}
