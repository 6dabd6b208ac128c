package charts

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/windvane/metplot/basemap"
	"github.com/windvane/metplot/colormaps"
	"github.com/windvane/metplot/geo"
	"github.com/windvane/metplot/grid"
)

// MapOptions configures single-panel map charts.
type MapOptions struct {
	FigCRS *geo.CRS
	DatCRS *geo.CRS
	// Coast overrides the built-in coastline, e.g. with a loaded
	// Natural Earth file.
	Coast         *basemap.Coastline
	Title         string
	ColorbarLabel string
	// IsolineLevels overrides the automatic contour levels.
	IsolineLevels []float64
}

func (o MapOptions) coast() *basemap.Coastline {
	if o.Coast != nil {
		return o.Coast
	}
	return basemap.Builtin()
}

// ComparisonOptions configures TwoVarComparison. Titles and colorbar
// labels address the four panels as [row][column].
type ComparisonOptions struct {
	FigCRS         *geo.CRS
	DatCRS         *geo.CRS
	Coast          *basemap.Coastline
	Titles         [2][2]string
	ColorbarLabels [2][2]string
	IsolineLevels  []float64
}

// ScatterOptions configures Scatter.
type ScatterOptions struct {
	FigCRS        *geo.CRS
	DatCRS        *geo.CRS
	Coast         *basemap.Coastline
	Title         string
	ColorbarLabel string
	// MarkerRadius defaults to 1.5pt.
	MarkerRadius vg.Length
}

// TwoVar draws two fields on one map: fill as the discrete color bands
// of the variable family, iso as labelled black isolines on top. The
// classic use is temperature bands under mean sea-level pressure
// contours.
func TwoVar(iso, fill *grid.Grid, family string, o MapOptions) (*Figure, error) {
	p, bar, err := twoVarPanel(iso, fill, family, o.Title, o.ColorbarLabel, o.IsolineLevels, o)
	if err != nil {
		return nil, err
	}
	f := newFigure(1, 1)
	f.setPanel(0, 0, p, bar)
	return f, nil
}

// twoVarPanel builds one isolines-over-colorlevels map panel plus its
// colorbar.
func twoVarPanel(iso, fill *grid.Grid, family, title, clabel string, isoLevels []float64, o MapOptions) (*plot.Plot, *plot.Plot, error) {
	if iso == nil || fill == nil {
		return nil, nil, errors.New("charts: two-variable plot needs both fields")
	}
	p := newMapPlot(title)

	lvl, err := AddColorLevels(p, fill, family, FillOptions{FigCRS: o.FigCRS, DatCRS: o.DatCRS})
	if err != nil {
		return nil, nil, err
	}
	if err := AddIsolines(p, iso, IsolineOptions{
		Levels: isoLevels,
		FigCRS: o.FigCRS,
		DatCRS: o.DatCRS,
	}); err != nil {
		return nil, nil, err
	}
	if err := basemap.AddCoastlines(p, o.coast(), o.FigCRS, basemap.LineStyle{}); err != nil {
		return nil, nil, err
	}
	return p, LevelsBar(lvl, clabel), nil
}

// TwoVarComparison builds the 2x2 comparison figure for two states of
// an isoline/fill variable pair. The top row shows both states, the
// bottom row the state-0 minus state-1 differences of each variable in
// diverging shades.
func TwoVarComparison(iso0, iso1, fill0, fill1 *grid.Grid, family string, o ComparisonOptions) (*Figure, error) {
	mapOpts := MapOptions{FigCRS: o.FigCRS, DatCRS: o.DatCRS, Coast: o.Coast}

	f := newFigure(2, 2)

	for i, state := range [][2]*grid.Grid{{iso0, fill0}, {iso1, fill1}} {
		p, bar, err := twoVarPanel(state[0], state[1], family,
			o.Titles[0][i], o.ColorbarLabels[0][i], o.IsolineLevels, mapOpts)
		if err != nil {
			return nil, fmt.Errorf("charts: comparison state %d: %w", i, err)
		}
		if err := basemap.AddLand(p, mapOpts.coast(), o.FigCRS, 0.5); err != nil {
			return nil, err
		}
		f.setPanel(0, i, p, bar)
	}

	isoDiff, err := grid.Sub(iso0, iso1)
	if err != nil {
		return nil, fmt.Errorf("charts: isoline difference: %w", err)
	}
	fillDiff, err := grid.Sub(fill0, fill1)
	if err != nil {
		return nil, fmt.Errorf("charts: fill difference: %w", err)
	}

	for i, diff := range []*grid.Grid{isoDiff, fillDiff} {
		p := newMapPlot(o.Titles[1][i])
		if err := basemap.AddLand(p, mapOpts.coast(), o.FigCRS, 0.5); err != nil {
			return nil, err
		}
		cm, err := AddColorShades(p, diff, colormaps.FamilyDiff, FillOptions{FigCRS: o.FigCRS, DatCRS: o.DatCRS})
		if err != nil {
			return nil, err
		}
		if err := basemap.AddCoastlines(p, mapOpts.coast(), o.FigCRS, basemap.LineStyle{}); err != nil {
			return nil, err
		}
		f.setPanel(1, i, p, ShadesBar(cm, o.ColorbarLabels[1][i]))
	}

	return f, nil
}

// Scatter draws point observations on a coastline map, colored by value
// through the continuous colormap of the variable family.
func Scatter(values, lons, lats []float64, family string, o ScatterOptions) (*Figure, error) {
	if len(values) == 0 {
		return nil, errors.New("charts: no scatter points")
	}
	if len(lons) != len(values) || len(lats) != len(values) {
		return nil, fmt.Errorf("charts: %d values with %d/%d coordinates", len(values), len(lons), len(lats))
	}

	project, err := geo.Transform(o.DatCRS, o.FigCRS)
	if err != nil {
		return nil, err
	}

	cm := colormaps.ShadeFor(family)
	min, max := floatsRange(values)
	if colormaps.Canonical(family) == colormaps.FamilyDiff {
		absmax := absMax(values)
		min, max = -absmax, absmax
	}
	if min == max {
		min, max = min-0.5, max+0.5
	}
	cm.SetMin(min)
	cm.SetMax(max)

	pts := make(plotter.XYs, 0, len(values))
	kept := make([]float64, 0, len(values))
	for i := range values {
		x, y, err := project(lons[i], lats[i])
		if err != nil {
			// Points outside the projection's domain are dropped.
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
		kept = append(kept, values[i])
	}
	if len(pts) == 0 {
		return nil, errors.New("charts: no scatter points inside the projection domain")
	}

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	radius := o.MarkerRadius
	if radius == 0 {
		radius = vg.Points(1.5)
	}
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		c, err := cm.At(kept[i])
		if err != nil {
			c = color.Black
		}
		return draw.GlyphStyle{Color: c, Radius: radius, Shape: draw.CircleGlyph{}}
	}

	p := newMapPlot(o.Title)
	p.Add(s)
	if err := basemap.AddCoastlines(p, o.coast(), o.FigCRS, basemap.LineStyle{}); err != nil {
		return nil, err
	}

	f := newFigure(1, 1)
	f.setPanel(0, 0, p, ShadesBar(cm, o.ColorbarLabel))
	return f, nil
}

func (o ScatterOptions) coast() *basemap.Coastline {
	if o.Coast != nil {
		return o.Coast
	}
	return basemap.Builtin()
}

// newMapPlot builds a plot styled for maps: dashed graticule-like grid
// lines and a title.
func newMapPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	g := plotter.NewGrid()
	g.Vertical.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	g.Horizontal.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(g)
	return p
}

func floatsRange(xs []float64) (min, max float64) {
	min, max = xs[0], xs[0]
	for _, v := range xs[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func absMax(xs []float64) float64 {
	min, max := floatsRange(xs)
	if -min > max {
		return -min
	}
	return max
}
