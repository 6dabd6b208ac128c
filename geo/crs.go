// Package geo wraps the proj4-style spatial reference machinery behind
// the small set of coordinate reference systems the chart functions
// support. All data coordinates are WGS-84 longitude/latitude degrees;
// a figure CRS only changes what the rendered map looks like.
package geo

import (
	"fmt"

	"github.com/ctessum/geom/proj"
)

// CRS is a named coordinate reference system.
//
// A CRS is separable when longitude maps to x independently of latitude
// and vice versa (cylindrical projections). Rectilinear grids stay
// rectilinear under a separable CRS, which is what lets filled fields
// and contours be drawn by axis projection alone.
type CRS struct {
	name      string
	proj4     string
	sr        *proj.SR
	separable bool
}

// PlateCarree returns the equirectangular CRS, the default for both
// data and figures.
func PlateCarree() *CRS {
	return mustCRS("PlateCarree", "+proj=longlat +datum=WGS84 +no_defs", true)
}

// Mercator returns the Mercator CRS centered on the given longitude.
func Mercator(centralLon float64) *CRS {
	return mustCRS("Mercator",
		fmt.Sprintf("+proj=merc +lon_0=%g +datum=WGS84 +no_defs", centralLon), true)
}

// LambertConformal returns a Lambert conformal conic CRS, the usual
// choice for mid-latitude limited-area models. Not separable, so only
// point data can be drawn in it.
func LambertConformal(centralLat, centralLon float64) *CRS {
	return mustCRS("LambertConformal",
		fmt.Sprintf("+proj=lcc +lat_1=%g +lat_2=%g +lat_0=%g +lon_0=%g +datum=WGS84 +no_defs",
			centralLat-5, centralLat+5, centralLat, centralLon), false)
}

func mustCRS(name, proj4 string, separable bool) *CRS {
	sr, err := proj.Parse(proj4)
	if err != nil {
		panic(fmt.Sprintf("geo: parse %q: %v", proj4, err))
	}
	return &CRS{name: name, proj4: proj4, sr: sr, separable: separable}
}

// Name returns the CRS name for logging and titles.
func (c *CRS) Name() string { return c.name }

// Separable reports whether the CRS projects axes independently.
func (c *CRS) Separable() bool { return c.separable }

// Equal reports whether two CRSs have the same definition.
func (c *CRS) Equal(o *CRS) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.proj4 == o.proj4
}

// PointFunc projects a single lon/lat-style coordinate pair.
type PointFunc func(x, y float64) (px, py float64, err error)

// Transform returns a point projector from one CRS to another. Equal
// CRSs get the identity fast path.
func Transform(from, to *CRS) (PointFunc, error) {
	if from == nil {
		from = PlateCarree()
	}
	if to == nil {
		to = PlateCarree()
	}
	if from.Equal(to) {
		return func(x, y float64) (float64, float64, error) { return x, y, nil }, nil
	}
	t, err := from.sr.NewTransform(to.sr)
	if err != nil {
		return nil, fmt.Errorf("geo: transform %s to %s: %w", from.name, to.name, err)
	}
	return func(x, y float64) (float64, float64, error) {
		px, py, err := t(x, y)
		if err != nil {
			return 0, 0, fmt.Errorf("geo: project (%g, %g): %w", x, y, err)
		}
		return px, py, nil
	}, nil
}

// ProjectAxes projects rectilinear lon/lat axes into a separable figure
// CRS. The target must be separable; use Transform for point data in
// arbitrary CRSs.
func ProjectAxes(lons, lats []float64, from, to *CRS) (xs, ys []float64, err error) {
	if to == nil {
		to = PlateCarree()
	}
	if !to.Separable() {
		return nil, nil, fmt.Errorf("geo: %s is not separable; gridded fields need a cylindrical figure CRS", to.name)
	}
	project, err := Transform(from, to)
	if err != nil {
		return nil, nil, err
	}

	// Anchor the off-axis coordinate at the grid midpoint; for a
	// separable CRS the choice does not change the result.
	midLat := lats[len(lats)/2]
	midLon := lons[len(lons)/2]

	xs = make([]float64, len(lons))
	for i, lon := range lons {
		xs[i], _, err = project(lon, midLat)
		if err != nil {
			return nil, nil, err
		}
	}
	ys = make([]float64, len(lats))
	for j, lat := range lats {
		_, ys[j], err = project(midLon, lat)
		if err != nil {
			return nil, nil, err
		}
	}
	return xs, ys, nil
}
