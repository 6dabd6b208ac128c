// Package charts provides pre-composed chart functions for
// meteorological fields: isoline/filled-field overlays on geographic
// maps, side-by-side comparisons of two forecast states, and ensemble
// plume and quantile time series.
//
// Every entry point returns a Figure that renders to PNG or SVG. The
// hard work (contouring, color mapping, rendering) is delegated to
// gonum/plot; this package only selects colormaps, levels, labels and
// layout by meteorological convention.
package charts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"
)

// Default figure size, matching the 12x12 inch convention of the
// operational chart suite.
const (
	DefaultWidth  = 12 * vg.Inch
	DefaultHeight = 12 * vg.Inch
)

// barFraction is the share of a panel's width reserved for its colorbar.
const barFraction = 0.14

// panel is one tile of a figure: a main plot and an optional vertical
// colorbar strip on its right.
type panel struct {
	main *plot.Plot
	bar  *plot.Plot
}

// Figure is a grid of rendered chart panels.
type Figure struct {
	rows, cols int
	panels     [][]panel

	// Width and Height are the rendered canvas size.
	Width  vg.Length
	Height vg.Length
}

func newFigure(rows, cols int) *Figure {
	panels := make([][]panel, rows)
	for r := range panels {
		panels[r] = make([]panel, cols)
	}
	return &Figure{
		rows:   rows,
		cols:   cols,
		panels: panels,
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
}

func (f *Figure) setPanel(row, col int, main, bar *plot.Plot) {
	f.panels[row][col] = panel{main: main, bar: bar}
}

// Panel returns the plot at the given position for further styling
// before rendering.
func (f *Figure) Panel(row, col int) *plot.Plot {
	return f.panels[row][col].main
}

func (f *Figure) draw(dc draw.Canvas) {
	tiles := draw.Tiles{
		Rows:      f.rows,
		Cols:      f.cols,
		PadX:      vg.Points(10),
		PadY:      vg.Points(10),
		PadTop:    vg.Points(5),
		PadBottom: vg.Points(5),
		PadLeft:   vg.Points(5),
		PadRight:  vg.Points(5),
	}

	// Align the panel axes so rows and columns share data rectangles
	// even when tick label widths differ between panels.
	mains := make([][]*plot.Plot, f.rows)
	for r := range mains {
		mains[r] = make([]*plot.Plot, f.cols)
		for c := range mains[r] {
			mains[r][c] = f.panels[r][c].main
		}
	}
	aligned := plot.Align(mains, tiles, dc)

	for r := 0; r < f.rows; r++ {
		for c := 0; c < f.cols; c++ {
			pn := f.panels[r][c]
			if pn.main == nil {
				continue
			}
			tc := aligned[r][c]
			if pn.bar == nil {
				pn.main.Draw(tc)
				continue
			}
			tile := tiles.At(dc, c, r)
			w := tile.Rectangle.Size().X
			pn.main.Draw(draw.Crop(tc, 0, -w*barFraction, 0, 0))
			pn.bar.Draw(draw.Crop(tile, w*(1-barFraction)+vg.Points(2), 0, 0, 0))
		}
	}
}

// WritePNG renders the figure as PNG.
func (f *Figure) WritePNG(w io.Writer) error {
	c := vgimg.NewWith(vgimg.UseWH(f.Width, f.Height))
	f.draw(draw.New(c))
	png := vgimg.PngCanvas{Canvas: c}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("charts: write png: %w", err)
	}
	return nil
}

// WriteSVG renders the figure as SVG.
func (f *Figure) WriteSVG(w io.Writer) error {
	c := vgsvg.New(f.Width, f.Height)
	f.draw(draw.New(c))
	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("charts: write svg: %w", err)
	}
	return nil
}

// Save writes the figure to a file, choosing the format from the
// extension (.png or .svg).
func (f *Figure) Save(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("charts: save: %w", err)
	}
	defer out.Close()

	switch ext := filepath.Ext(path); ext {
	case ".png":
		err = f.WritePNG(out)
	case ".svg":
		err = f.WriteSVG(out)
	default:
		err = fmt.Errorf("charts: unsupported extension %q", ext)
	}
	if err != nil {
		return err
	}
	return out.Close()
}
