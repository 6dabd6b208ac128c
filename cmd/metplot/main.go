// Command metplot renders a single chart from the command line, either
// from a NetCDF file or from built-in demo fields.
//
// Usage:
//
//	go run ./cmd/metplot -demo -chart twovar -family temperature -out t2m.png
//	go run ./cmd/metplot -file era5.nc -var t2m -iso-var msl -family temperature -out t2m.png
//	go run ./cmd/metplot -file eps.nc -var t2m -chart quantiles -out plume.png
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/windvane/metplot/charts"
	"github.com/windvane/metplot/geo"
	"github.com/windvane/metplot/grid"
	"github.com/windvane/metplot/internal/ncdf"
	"github.com/windvane/metplot/internal/synth"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	file := flag.String("file", "", "NetCDF input file")
	varName := flag.String("var", "", "variable to plot")
	isoVar := flag.String("iso-var", "", "variable for isoline overlay (default: same as -var)")
	timeIdx := flag.Int("time", 0, "record index for (time, lat, lon) variables")
	scale := flag.Float64("scale", 0, "unpacking scale factor (0 = unpacked)")
	offset := flag.Float64("offset", 0, "unpacking offset")
	chart := flag.String("chart", "twovar", "chart kind: twovar, plumes, quantiles, scatter")
	family := flag.String("family", "temperature", "variable family for colors")
	title := flag.String("title", "", "chart title")
	label := flag.String("label", "", "colorbar or axis label")
	proj := flag.String("proj", "platecarree", "map projection: platecarree or mercator")
	centralLon := flag.Float64("central-lon", 0, "central longitude for mercator")
	out := flag.String("out", "chart.png", "output file (.png or .svg)")
	demo := flag.Bool("demo", false, "use built-in demo fields instead of -file")
	flag.Parse()

	if !*demo && *file == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -file (or -demo)")
	}
	if *file != "" && *varName == "" && *chart != "scatter" {
		return fmt.Errorf("missing required flag: -var")
	}

	crs, err := parseProjection(*proj, *centralLon)
	if err != nil {
		return err
	}

	fig, err := buildChart(chartInputs{
		file: *file, varName: *varName, isoVar: *isoVar,
		opts:  ncdf.FieldOptions{TimeIndex: *timeIdx, Scale: *scale, Offset: *offset},
		chart: *chart, family: *family, title: *title, label: *label,
		crs: crs, demo: *demo,
	})
	if err != nil {
		return err
	}

	if err := fig.Save(*out); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", *out)
	return nil
}

type chartInputs struct {
	file, varName, isoVar       string
	opts                        ncdf.FieldOptions
	chart, family, title, label string
	crs                         *geo.CRS
	demo                        bool
}

func buildChart(in chartInputs) (*charts.Figure, error) {
	switch in.chart {
	case "twovar":
		fill, iso, err := loadFields(in)
		if err != nil {
			return nil, err
		}
		return charts.TwoVar(iso, fill, in.family, charts.MapOptions{
			FigCRS:        in.crs,
			Title:         in.title,
			ColorbarLabel: in.label,
		})
	case "plumes":
		e, err := loadEnsemble(in)
		if err != nil {
			return nil, err
		}
		o := charts.PlumeOptions{}
		o.Title, o.YLabel = in.title, in.label
		return charts.Plumes(e, o)
	case "quantiles":
		e, err := loadEnsemble(in)
		if err != nil {
			return nil, err
		}
		o := charts.QuantileOptions{}
		o.Title, o.YLabel = in.title, in.label
		return charts.Quantiles(e, o)
	case "scatter":
		if !in.demo {
			return nil, fmt.Errorf("scatter needs -demo; point observations have no NetCDF loader")
		}
		values, lons, lats := synth.Points(60, 1)
		return charts.Scatter(values, lons, lats, in.family, charts.ScatterOptions{
			FigCRS:        in.crs,
			Title:         in.title,
			ColorbarLabel: in.label,
		})
	default:
		return nil, fmt.Errorf("unknown chart kind %q", in.chart)
	}
}

func loadFields(in chartInputs) (fill, iso *grid.Grid, err error) {
	if in.demo {
		t2m, mslp := synth.Fields(60, 50)
		return t2m, mslp, nil
	}
	fill, err = ncdf.ReadGrid(in.file, in.varName, in.opts)
	if err != nil {
		return nil, nil, err
	}
	iso = fill
	if in.isoVar != "" {
		if iso, err = ncdf.ReadGrid(in.file, in.isoVar, in.opts); err != nil {
			return nil, nil, err
		}
	}
	return fill, iso, nil
}

func loadEnsemble(in chartInputs) (*grid.Ensemble, error) {
	if in.demo {
		return synth.Ensemble(20, 72, 1), nil
	}
	return ncdf.ReadEnsemble(in.file, in.varName)
}

func parseProjection(name string, centralLon float64) (*geo.CRS, error) {
	switch name {
	case "platecarree":
		return geo.PlateCarree(), nil
	case "mercator":
		return geo.Mercator(centralLon), nil
	default:
		return nil, fmt.Errorf("unknown projection %q", name)
	}
}
