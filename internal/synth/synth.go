// Package synth generates the synthetic demonstration fields used by
// the CLI demo mode, the fixture generator, and the test suites: smooth
// sinusoidal temperature and pressure fields over western Europe and a
// dispersive sinusoidal ensemble.
package synth

import (
	"math"
	"math/rand"

	"github.com/windvane/metplot/grid"
)

// Domain of the demo fields: western Europe and the nearby Atlantic.
const (
	LonMin = -20.0
	LonMax = 3.0
	LatMin = 45.0
	LatMax = 60.0
)

// Fields returns a 2 m temperature field and a mean sea-level pressure
// field on an nx by ny grid over the demo domain.
func Fields(nx, ny int) (t2m, mslp *grid.Grid) {
	lons := linspace(LonMin, LonMax, nx)
	lats := linspace(LatMin, LatMax, ny)

	tVals := make([][]float64, ny)
	pVals := make([][]float64, ny)
	for j, lat := range lats {
		tVals[j] = make([]float64, nx)
		pVals[j] = make([]float64, nx)
		for i, lon := range lons {
			tVals[j][i] = 30*math.Cos(math.Pi*lat/180) + math.Sin(20*math.Pi*lon/180)
			pVals[j][i] = 1015 + 10*(math.Sin(20*math.Pi*lon/180)+math.Cos(25*math.Pi*lat/180))
		}
	}

	t2m, err := grid.New(lons, lats, tVals)
	if err != nil {
		panic(err)
	}
	mslp, err = grid.New(lons, lats, pVals)
	if err != nil {
		panic(err)
	}
	return t2m, mslp
}

// Perturbed returns a copy of g with uniform noise of the given
// amplitude added, standing in for a second forecast state.
func Perturbed(g *grid.Grid, amplitude float64, seed int64) *grid.Grid {
	rng := rand.New(rand.NewSource(seed))
	values := make([][]float64, len(g.Values))
	for j, row := range g.Values {
		values[j] = make([]float64, len(row))
		for i, v := range row {
			values[j][i] = v + amplitude*rng.Float64()
		}
	}
	out, err := grid.New(g.Lons, g.Lats, values)
	if err != nil {
		panic(err)
	}
	return out
}

// Ensemble returns members sinusoidal temperature series over steps
// lead times, each member phase- and amplitude-shifted by the seeded
// random source.
func Ensemble(members, steps int, seed int64) *grid.Ensemble {
	rng := rand.New(rand.NewSource(seed))
	leadTimes := linspace(0, float64(steps-1), steps)

	series := make([][]float64, members)
	for m := range series {
		period := 24 + 1.5*rng.Float64()
		phase := 0.8 * rng.Float64()
		offset := 5 * rng.Float64()
		series[m] = make([]float64, steps)
		for t, lt := range leadTimes {
			series[m][t] = 15*math.Sin(math.Pi*lt/period+phase) + offset
		}
	}

	e, err := grid.NewEnsemble(leadTimes, series)
	if err != nil {
		panic(err)
	}
	return e
}

// Points returns n scattered observations over a wider European domain,
// with values following the demo temperature formula.
func Points(n int, seed int64) (values, lons, lats []float64) {
	rng := rand.New(rand.NewSource(seed))
	values = make([]float64, n)
	lons = make([]float64, n)
	lats = make([]float64, n)
	for i := 0; i < n; i++ {
		lons[i] = -20 + 70*rng.Float64()
		lats[i] = 30 + 40*rng.Float64()
		values[i] = 20 + 5*(math.Cos(lats[i]*math.Pi/45)+math.Sin(lons[i]*math.Pi/45))
	}
	return values, lons, lats
}

func linspace(lo, hi float64, n int) []float64 {
	xs := make([]float64, n)
	if n == 1 {
		xs[0] = lo
		return xs
	}
	step := (hi - lo) / float64(n-1)
	for i := range xs {
		xs[i] = lo + float64(i)*step
	}
	return xs
}
