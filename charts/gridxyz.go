package charts

import (
	"math"

	"github.com/windvane/metplot/colormaps"
	"github.com/windvane/metplot/geo"
	"github.com/windvane/metplot/grid"
)

// xyzGrid adapts a Grid with projected axes to plotter.GridXYZ. Axes
// are normalized to ascending order (NetCDF latitudes often descend).
type xyzGrid struct {
	xs, ys []float64
	values [][]float64
}

func newXYZGrid(g *grid.Grid, datCRS, figCRS *geo.CRS) (*xyzGrid, error) {
	xs, ys, err := geo.ProjectAxes(g.Lons, g.Lats, datCRS, figCRS)
	if err != nil {
		return nil, err
	}

	values := g.Values
	if len(xs) > 1 && xs[1] < xs[0] {
		xs = reversed(xs)
		values = reverseCols(values)
	}
	if len(ys) > 1 && ys[1] < ys[0] {
		ys = reversed(ys)
		values = reverseRows(values)
	}
	return &xyzGrid{xs: xs, ys: ys, values: values}, nil
}

func (g *xyzGrid) Dims() (c, r int)   { return len(g.xs), len(g.ys) }
func (g *xyzGrid) Z(c, r int) float64 { return g.values[r][c] }
func (g *xyzGrid) X(c int) float64    { return g.xs[c] }
func (g *xyzGrid) Y(r int) float64    { return g.ys[r] }

// binnedGrid reports the color-band index of each cell instead of its
// value, so a heat map with the band palette reproduces discrete
// filled contour levels with non-uniform boundaries.
type binnedGrid struct {
	*xyzGrid
	levels *colormaps.Levels
}

func (g *binnedGrid) Z(c, r int) float64 {
	return float64(g.levels.BinIndex(g.xyzGrid.Z(c, r)))
}

func reversed(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[len(xs)-1-i] = v
	}
	return out
}

func reverseRows(values [][]float64) [][]float64 {
	out := make([][]float64, len(values))
	for j, row := range values {
		out[len(values)-1-j] = row
	}
	return out
}

func reverseCols(values [][]float64) [][]float64 {
	out := make([][]float64, len(values))
	for j, row := range values {
		out[j] = reversed(row)
	}
	return out
}

// niceLevels chooses round-number contour levels covering [min, max],
// aiming for about target lines using a 1-2-5 step ladder.
func niceLevels(min, max float64, target int) []float64 {
	if target < 1 || max <= min {
		return nil
	}
	step := niceStep((max - min) / float64(target))
	var levels []float64
	for v := math.Ceil(min/step) * step; v <= max+step/1e6; v += step {
		levels = append(levels, v)
	}
	return levels
}

func niceStep(raw float64) float64 {
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch norm := raw / mag; {
	case norm <= 1:
		return mag
	case norm <= 2:
		return 2 * mag
	case norm <= 5:
		return 5 * mag
	default:
		return 10 * mag
	}
}
