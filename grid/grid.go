// Package grid holds the gridded data model shared by the chart
// functions: rectilinear georeferenced scalar fields and ensemble time
// series.
package grid

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// axisTolerance bounds the spread allowed across mesh rows/columns when
// collapsing a 2-D meshgrid back to 1-D axes.
const axisTolerance = 1e-9

// Grid is a rectilinear scalar field on a longitude/latitude grid.
// Values is row-major: Values[j][i] is the value at (Lats[j], Lons[i]).
type Grid struct {
	Lons   []float64
	Lats   []float64
	Values [][]float64
}

// New builds a Grid after checking that the value matrix matches the
// axis lengths and that both axes are strictly monotonic.
func New(lons, lats []float64, values [][]float64) (*Grid, error) {
	if len(lons) == 0 || len(lats) == 0 {
		return nil, errors.New("grid: empty axes")
	}
	if len(values) != len(lats) {
		return nil, fmt.Errorf("grid: %d value rows for %d latitudes", len(values), len(lats))
	}
	for j, row := range values {
		if len(row) != len(lons) {
			return nil, fmt.Errorf("grid: row %d has %d values for %d longitudes", j, len(row), len(lons))
		}
	}
	if !monotonic(lons) {
		return nil, errors.New("grid: longitudes are not strictly monotonic")
	}
	if !monotonic(lats) {
		return nil, errors.New("grid: latitudes are not strictly monotonic")
	}
	return &Grid{Lons: lons, Lats: lats, Values: values}, nil
}

// Indexed builds a Grid whose axes are simple index ramps, for data
// with no georeference.
func Indexed(values [][]float64) (*Grid, error) {
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, errors.New("grid: empty values")
	}
	return New(ramp(len(values[0])), ramp(len(values)), values)
}

// FromMesh collapses regular 2-D meshgrid coordinate arrays to 1-D axes.
// Every row of lons must repeat the same longitudes and every column of
// lats the same latitudes, within tolerance.
func FromMesh(lons, lats, values [][]float64) (*Grid, error) {
	if len(lons) == 0 || len(lats) == 0 {
		return nil, errors.New("grid: empty mesh")
	}
	if len(lons) != len(lats) || len(lons[0]) != len(lats[0]) {
		return nil, errors.New("grid: meshgrid shape mismatch")
	}

	lon1d := make([]float64, len(lons[0]))
	copy(lon1d, lons[0])
	for j := 1; j < len(lons); j++ {
		if len(lons[j]) != len(lon1d) {
			return nil, errors.New("grid: ragged meshgrid")
		}
		for i, v := range lons[j] {
			if math.Abs(v-lon1d[i]) > axisTolerance {
				return nil, fmt.Errorf("grid: meshgrid longitudes vary across rows at (%d,%d)", j, i)
			}
		}
	}

	lat1d := make([]float64, len(lats))
	for j := range lats {
		lat1d[j] = lats[j][0]
		for i, v := range lats[j] {
			if math.Abs(v-lat1d[j]) > axisTolerance {
				return nil, fmt.Errorf("grid: meshgrid latitudes vary across columns at (%d,%d)", j, i)
			}
		}
	}

	return New(lon1d, lat1d, values)
}

// NX returns the number of longitudes.
func (g *Grid) NX() int { return len(g.Lons) }

// NY returns the number of latitudes.
func (g *Grid) NY() int { return len(g.Lats) }

// Range returns the smallest and largest values on the grid, ignoring NaNs.
func (g *Grid) Range() (min, max float64) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for _, row := range g.Values {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
	}
	return min, max
}

// AbsMax returns the largest absolute value on the grid, used to center
// difference fields symmetrically around zero.
func (g *Grid) AbsMax() float64 {
	min, max := g.Range()
	return math.Max(math.Abs(min), math.Abs(max))
}

// SameShape reports whether two grids share axes, within tolerance.
func (g *Grid) SameShape(o *Grid) bool {
	return floats.EqualApprox(g.Lons, o.Lons, axisTolerance) &&
		floats.EqualApprox(g.Lats, o.Lats, axisTolerance)
}

// Sub returns the pointwise difference a-b. The grids must share axes.
func Sub(a, b *Grid) (*Grid, error) {
	if !a.SameShape(b) {
		return nil, errors.New("grid: cannot subtract grids with different axes")
	}
	values := make([][]float64, len(a.Values))
	for j := range a.Values {
		values[j] = make([]float64, len(a.Values[j]))
		floats.SubTo(values[j], a.Values[j], b.Values[j])
	}
	return &Grid{Lons: a.Lons, Lats: a.Lats, Values: values}, nil
}

func monotonic(xs []float64) bool {
	if len(xs) < 2 {
		return true
	}
	up := xs[1] > xs[0]
	for i := 1; i < len(xs); i++ {
		if up && xs[i] <= xs[i-1] {
			return false
		}
		if !up && xs[i] >= xs[i-1] {
			return false
		}
	}
	return true
}

func ramp(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}
