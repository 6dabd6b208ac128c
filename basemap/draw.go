package basemap

import (
	"image/color"
	"math"

	"github.com/ctessum/geom"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/windvane/metplot/geo"
)

// LineStyle controls how coastlines are stroked.
type LineStyle struct {
	Color color.Color
	Width vg.Length
}

func (s LineStyle) orDefault() LineStyle {
	if s.Color == nil {
		s.Color = color.Black
	}
	if s.Width == 0 {
		s.Width = vg.Points(0.5)
	}
	return s
}

// AddCoastlines strokes the coastline onto the plot in the given figure
// CRS. Segments that fail to project, or that jump across the
// antimeridian, are split rather than drawn through the map.
func AddCoastlines(p *plot.Plot, cl *Coastline, figCRS *geo.CRS, style LineStyle) error {
	style = style.orDefault()
	project, err := geo.Transform(geo.PlateCarree(), figCRS)
	if err != nil {
		return err
	}

	maxJump := jumpThreshold(project)
	for _, line := range cl.Lines {
		for _, seg := range projectSegments(line, project, maxJump) {
			l, err := plotter.NewLine(seg)
			if err != nil {
				return err
			}
			l.LineStyle.Color = style.Color
			l.LineStyle.Width = style.Width
			p.Add(l)
		}
	}
	return nil
}

// AddLand fills the closed built-in outlines at the given opacity,
// imitating a shaded land feature under a field. Open shorelines from
// loaded files are skipped.
func AddLand(p *plot.Plot, cl *Coastline, figCRS *geo.CRS, alpha float64) error {
	project, err := geo.Transform(geo.PlateCarree(), figCRS)
	if err != nil {
		return err
	}
	fill := color.NRGBA{R: 227, G: 217, B: 190, A: uint8(255 * alpha)}

	maxJump := jumpThreshold(project)
	for _, line := range cl.Lines {
		if len(line) < 4 || line[0] != line[len(line)-1] {
			continue
		}
		segs := projectSegments(line, project, maxJump)
		if len(segs) != 1 {
			// A ring split by the projection is no longer fillable.
			continue
		}
		poly, err := plotter.NewPolygon(segs[0])
		if err != nil {
			return err
		}
		poly.Color = fill
		poly.LineStyle.Color = color.Transparent
		p.Add(poly)
	}
	return nil
}

// jumpThreshold returns half the projected width of the world, the cut
// point for detecting antimeridian wraps in projected coordinates.
func jumpThreshold(project geo.PointFunc) float64 {
	xw, _, errW := project(-179, 0)
	xe, _, errE := project(179, 0)
	if errW != nil || errE != nil {
		return math.Inf(1)
	}
	return math.Abs(xe-xw) / 2
}

// projectSegments projects a polyline, breaking it where projection
// fails or where consecutive points jump farther than maxJump in x
// (wrap across the antimeridian).
func projectSegments(line geom.LineString, project geo.PointFunc, maxJump float64) []plotter.XYs {
	var segs []plotter.XYs
	var cur plotter.XYs

	flush := func() {
		if len(cur) > 1 {
			segs = append(segs, cur)
		}
		cur = nil
	}

	for _, pt := range line {
		x, y, err := project(pt.X, pt.Y)
		if err != nil {
			flush()
			continue
		}
		if len(cur) > 0 && math.Abs(x-cur[len(cur)-1].X) > maxJump {
			flush()
		}
		cur = append(cur, plotter.XY{X: x, Y: y})
	}
	flush()
	return segs
}
