package charts

import (
	"errors"
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/windvane/metplot/colormaps"
	"github.com/windvane/metplot/grid"
)

// DefaultQuantiles are the fan-chart quantiles drawn when none are given.
var DefaultQuantiles = []float64{0.1, 0.25, 0.5, 0.75, 0.9}

// plumeColor is the default member-line color (cornflower blue).
var plumeColor = color.NRGBA{R: 100, G: 149, B: 237, A: 255}

// SeriesOptions configures the ensemble time-series charts.
type SeriesOptions struct {
	Title  string
	XLabel string
	YLabel string
}

// PlumeOptions configures Plumes.
type PlumeOptions struct {
	SeriesOptions
	// Color is the member line color; default cornflower blue.
	Color color.Color
	// Alpha is the member line opacity; default 0.2.
	Alpha float64
}

// QuantileOptions configures Quantiles.
type QuantileOptions struct {
	SeriesOptions
	// Quantiles to draw, in (0, 1). Default DefaultQuantiles.
	Quantiles []float64
	// ColorMap shades each quantile by its value; cyclic maps keep the
	// q and 1-q curves in matching tones. Default colormaps.Cyclic.
	ColorMap palette.ColorMap
}

// Plumes draws every ensemble member as a faint dashed line against the
// lead-time axis, showing the dispersion of the forecast.
func Plumes(e *grid.Ensemble, o PlumeOptions) (*Figure, error) {
	if e == nil || e.NMembers() == 0 {
		return nil, errors.New("charts: empty ensemble")
	}

	lineColor := o.Color
	if lineColor == nil {
		lineColor = plumeColor
	}
	alpha := o.Alpha
	if alpha == 0 {
		alpha = 0.2
	}
	faded := withAlpha(lineColor, alpha)

	p := newSeriesPlot(o.SeriesOptions)
	for m := 0; m < e.NMembers(); m++ {
		l, err := plotter.NewLine(seriesXYs(e.Steps, e.Member(m)))
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = faded
		l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(l)
	}

	f := newFigure(1, 1)
	f.setPanel(0, 0, p, nil)
	return f, nil
}

// Quantiles draws a fan chart of the ensemble: symmetric quantile pairs
// as dashed lines with a shaded band between them, and the middle
// quantile (if the count is odd) as a solid center line.
func Quantiles(e *grid.Ensemble, o QuantileOptions) (*Figure, error) {
	if e == nil || e.NMembers() == 0 {
		return nil, errors.New("charts: empty ensemble")
	}

	qs := o.Quantiles
	if qs == nil {
		qs = DefaultQuantiles
	}
	qs = append([]float64(nil), qs...)
	sort.Float64s(qs)
	for _, q := range qs {
		if q <= 0 || q >= 1 {
			return nil, fmt.Errorf("charts: quantile %g out of (0, 1)", q)
		}
	}

	cm := o.ColorMap
	if cm == nil {
		cm = colormaps.Cyclic()
	}
	cm.SetMin(0)
	cm.SetMax(1)

	p := newSeriesPlot(o.SeriesOptions)

	for i := 0; i < len(qs)/2; i++ {
		lo, hi := qs[i], qs[len(qs)-1-i]
		loVals := e.Quantile(lo)
		hiVals := e.Quantile(hi)

		band, err := quantileBand(e.Steps, loVals, hiVals)
		if err != nil {
			return nil, err
		}
		bandColor, err := cm.At(lo)
		if err != nil {
			return nil, err
		}
		band.Color = withAlpha(bandColor, 0.2)
		band.LineStyle.Color = color.Transparent
		p.Add(band)

		for _, side := range []struct {
			q    float64
			vals []float64
		}{{lo, loVals}, {hi, hiVals}} {
			l, err := plotter.NewLine(seriesXYs(e.Steps, side.vals))
			if err != nil {
				return nil, err
			}
			c, err := cm.At(side.q)
			if err != nil {
				return nil, err
			}
			l.LineStyle.Color = c
			l.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
			p.Add(l)
			p.Legend.Add(fmt.Sprintf("Quantile %g", side.q), l)
		}
	}

	if len(qs)%2 == 1 {
		mid := qs[len(qs)/2]
		l, err := plotter.NewLine(seriesXYs(e.Steps, e.Quantile(mid)))
		if err != nil {
			return nil, err
		}
		c, err := cm.At(mid)
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = c
		l.LineStyle.Width = vg.Points(1.5)
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("Quantile %g", mid), l)
	}

	f := newFigure(1, 1)
	f.setPanel(0, 0, p, nil)
	return f, nil
}

// quantileBand builds the filled polygon between a lower and an upper
// quantile curve.
func quantileBand(steps, lo, hi []float64) (*plotter.Polygon, error) {
	ring := make(plotter.XYs, 0, 2*len(steps))
	for i := range steps {
		ring = append(ring, plotter.XY{X: steps[i], Y: lo[i]})
	}
	for i := len(steps) - 1; i >= 0; i-- {
		ring = append(ring, plotter.XY{X: steps[i], Y: hi[i]})
	}
	poly, err := plotter.NewPolygon(ring)
	if err != nil {
		return nil, fmt.Errorf("charts: quantile band: %w", err)
	}
	return poly, nil
}

func newSeriesPlot(o SeriesOptions) *plot.Plot {
	p := plot.New()
	p.Title.Text = o.Title
	p.X.Label.Text = o.XLabel
	p.Y.Label.Text = o.YLabel
	p.Add(plotter.NewGrid())
	return p
}

func seriesXYs(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	return pts
}

func withAlpha(c color.Color, alpha float64) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA64{
		R: uint16(r),
		G: uint16(g),
		B: uint16(b),
		A: uint16(alpha * 0xffff),
	}
}
