package grid

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Ensemble is a set of forecast member time series over a shared
// lead-time axis. Members[m][t] is member m at Steps[t].
type Ensemble struct {
	Steps   []float64
	Members [][]float64
}

// NewEnsemble builds an Ensemble, checking that all members cover the
// step axis. A nil steps slice defaults to an index ramp.
func NewEnsemble(steps []float64, members [][]float64) (*Ensemble, error) {
	if len(members) == 0 || len(members[0]) == 0 {
		return nil, errors.New("grid: empty ensemble")
	}
	if steps == nil {
		steps = ramp(len(members[0]))
	}
	for m, series := range members {
		if len(series) != len(steps) {
			return nil, fmt.Errorf("grid: member %d has %d steps, want %d", m, len(series), len(steps))
		}
	}
	return &Ensemble{Steps: steps, Members: members}, nil
}

// NMembers returns the ensemble size.
func (e *Ensemble) NMembers() int { return len(e.Members) }

// NSteps returns the length of the lead-time axis.
func (e *Ensemble) NSteps() int { return len(e.Steps) }

// Quantile returns the empirical q-quantile across members at every
// lead time.
func (e *Ensemble) Quantile(q float64) []float64 {
	out := make([]float64, e.NSteps())
	column := make([]float64, e.NMembers())
	for t := range out {
		for m := range e.Members {
			column[m] = e.Members[m][t]
		}
		sort.Float64s(column)
		out[t] = stat.Quantile(q, stat.Empirical, column, nil)
	}
	return out
}

// Member returns the series of member m.
func (e *Ensemble) Member(m int) []float64 { return e.Members[m] }
