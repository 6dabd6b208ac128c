package charts

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/windvane/metplot/colormaps"
	"github.com/windvane/metplot/geo"
	"github.com/windvane/metplot/grid"
)

// defaultIsolineTarget is the approximate number of contour lines drawn
// when no explicit levels are given.
const defaultIsolineTarget = 8

// IsolineOptions configures AddIsolines.
type IsolineOptions struct {
	// Levels are the contour values. Nil picks round-number levels
	// from the data range.
	Levels []float64
	// HideLabels suppresses the level-value labels.
	HideLabels bool
	FigCRS     *geo.CRS
	DatCRS     *geo.CRS
}

// FillOptions configures AddColorLevels and AddColorShades.
type FillOptions struct {
	FigCRS *geo.CRS
	DatCRS *geo.CRS
}

// AddIsolines draws black contour lines of the field onto the plot,
// labelled with their level values. Used for quantities read off by
// value, such as mean sea-level pressure.
func AddIsolines(p *plot.Plot, g *grid.Grid, o IsolineOptions) error {
	xyz, err := newXYZGrid(g, o.DatCRS, o.FigCRS)
	if err != nil {
		return err
	}

	levels := o.Levels
	if levels == nil {
		min, max := g.Range()
		levels = niceLevels(min, max, defaultIsolineTarget)
	}
	if len(levels) == 0 {
		return fmt.Errorf("charts: no isoline levels for field range")
	}

	c := plotter.NewContour(xyz, levels, monoPalette{color.Black})
	p.Add(c)

	if !o.HideLabels {
		labels, err := levelLabels(xyz, levels)
		if err != nil {
			return err
		}
		if labels != nil {
			p.Add(labels)
		}
	}
	return nil
}

// AddColorLevels fills the field with the discrete color bands of the
// given variable family. The returned Levels feed LevelsBar for the
// matching colorbar.
func AddColorLevels(p *plot.Plot, g *grid.Grid, family string, o FillOptions) (*colormaps.Levels, error) {
	lvl, err := colormaps.LevelsFor(family)
	if err != nil {
		return nil, err
	}
	xyz, err := newXYZGrid(g, o.DatCRS, o.FigCRS)
	if err != nil {
		return nil, err
	}

	h := plotter.NewHeatMap(&binnedGrid{xyz, lvl}, lvl)
	// Bin k occupies [k-0.5, k+0.5] so each band gets exactly one color.
	h.Min = -0.5
	h.Max = float64(lvl.N()) - 0.5
	p.Add(h)
	return lvl, nil
}

// AddColorShades fills the field with the continuous colormap of the
// given variable family. Family "diff" centers the range symmetrically
// on zero. The returned colormap feeds ShadesBar.
func AddColorShades(p *plot.Plot, g *grid.Grid, family string, o FillOptions) (palette.ColorMap, error) {
	xyz, err := newXYZGrid(g, o.DatCRS, o.FigCRS)
	if err != nil {
		return nil, err
	}

	cm := colormaps.ShadeFor(family)
	min, max := g.Range()
	if colormaps.Canonical(family) == colormaps.FamilyDiff {
		absmax := g.AbsMax()
		min, max = -absmax, absmax
	}
	if min == max {
		// A constant field still needs a nonempty range.
		min, max = min-0.5, max+0.5
	}
	cm.SetMin(min)
	cm.SetMax(max)

	h := plotter.NewHeatMap(xyz, cm.Palette(255))
	h.Min = min
	h.Max = max
	p.Add(h)
	return cm, nil
}

// LevelsBar builds the vertical colorbar plot for a discrete Levels
// colormap: one uniform patch per band, ticked with the boundary
// values.
func LevelsBar(lvl *colormaps.Levels, label string) *plot.Plot {
	p := plot.New()
	p.HideX()
	p.Add(&plotter.ColorBar{ColorMap: &bandColorMap{levels: lvl}, Vertical: true})

	ticks := make([]plot.Tick, len(lvl.Bounds))
	for i, b := range lvl.Bounds {
		ticks[i] = plot.Tick{
			Value: float64(i) - 0.5,
			Label: strconv.FormatFloat(b, 'g', -1, 64),
		}
	}
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Label.Text = label
	p.Y.Tick.Label.Font.Size = vg.Points(10)
	return p
}

// ShadesBar builds the vertical colorbar plot for a continuous colormap.
func ShadesBar(cm palette.ColorMap, label string) *plot.Plot {
	p := plot.New()
	p.HideX()
	p.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true})
	p.Y.Label.Text = label
	p.Y.Tick.Label.Font.Size = vg.Points(10)
	return p
}

// levelLabels places one value label per contour level, at the grid
// cell whose value comes closest to the level. Returns nil when no
// level has a close enough cell.
func levelLabels(xyz *xyzGrid, levels []float64) (*plotter.Labels, error) {
	var (
		pts  plotter.XYs
		strs []string
	)
	nc, nr := xyz.Dims()
	for _, level := range levels {
		best := math.Inf(1)
		var bx, by float64
		for r := 0; r < nr; r++ {
			for c := 0; c < nc; c++ {
				d := math.Abs(xyz.Z(c, r) - level)
				if d < best {
					best = d
					bx, by = xyz.X(c), xyz.Y(r)
				}
			}
		}
		if math.IsInf(best, 1) {
			continue
		}
		pts = append(pts, plotter.XY{X: bx, Y: by})
		strs = append(strs, fmt.Sprintf("%.0f", level))
	}
	if len(pts) == 0 {
		return nil, nil
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: strs})
	if err != nil {
		return nil, fmt.Errorf("charts: contour labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Font.Size = vg.Points(10)
	}
	return labels, nil
}

// monoPalette paints every contour line the same color.
type monoPalette struct{ c color.Color }

func (m monoPalette) Colors() []color.Color { return []color.Color{m.c} }

// bandColorMap exposes a Levels table in band-index space [-0.5, N-0.5]
// so a colorbar shows uniform patches regardless of boundary spacing.
type bandColorMap struct {
	levels *colormaps.Levels
}

func (b *bandColorMap) At(v float64) (color.Color, error) {
	if math.IsNaN(v) {
		return nil, palette.ErrNaN
	}
	i := int(math.Floor(v + 0.5))
	if i < 0 {
		i = 0
	}
	if n := b.levels.N(); i >= n {
		i = n - 1
	}
	return b.levels.Colors()[i], nil
}

func (b *bandColorMap) Min() float64 { return -0.5 }

func (b *bandColorMap) Max() float64 { return float64(b.levels.N()) - 0.5 }

func (b *bandColorMap) SetMin(float64) {}

func (b *bandColorMap) SetMax(float64) {}

func (b *bandColorMap) Alpha() float64 { return b.levels.Alpha() }

func (b *bandColorMap) SetAlpha(a float64) { b.levels.SetAlpha(a) }

func (b *bandColorMap) Palette(int) palette.Palette { return b.levels }
