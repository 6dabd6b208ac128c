// Package ncdf loads gridded fields and ensemble series from NetCDF
// files into the chart data model. It understands the common layout of
// reanalysis and ensemble exports: 1-D longitude/latitude coordinate
// variables and data variables of shape (lat, lon), (time, lat, lon) or
// (member, time).
package ncdf

import (
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/windvane/metplot/grid"
)

var (
	lonNames = []string{"longitude", "lon"}
	latNames = []string{"latitude", "lat"}
)

// FieldOptions selects and unpacks a gridded variable.
type FieldOptions struct {
	// TimeIndex picks the record of a (time, lat, lon) variable.
	TimeIndex int
	// Scale and Offset unpack short-packed variables: v*Scale + Offset.
	// A zero Scale means unpacked data.
	Scale  float64
	Offset float64
}

func (o FieldOptions) unpack(v float64) float64 {
	if o.Scale == 0 {
		return v
	}
	return v*o.Scale + o.Offset
}

// ReadGrid loads one 2-D field from a NetCDF file.
func ReadGrid(path, varName string, o FieldOptions) (*grid.Grid, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ncdf: open %s: %w", path, err)
	}
	defer nc.Close()

	lons, err := axisValues(nc, lonNames)
	if err != nil {
		return nil, err
	}
	lats, err := axisValues(nc, latNames)
	if err != nil {
		return nil, err
	}

	values, err := fieldValues(nc, varName, o)
	if err != nil {
		return nil, err
	}

	g, err := grid.New(lons, lats, values)
	if err != nil {
		return nil, fmt.Errorf("ncdf: %s: %w", varName, err)
	}
	return g, nil
}

// ReadEnsemble loads a (member, time) variable as an ensemble. Lead
// times come from the "time" coordinate when present, otherwise an
// index ramp.
func ReadEnsemble(path, varName string) (*grid.Ensemble, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ncdf: open %s: %w", path, err)
	}
	defer nc.Close()

	vg, err := nc.GetVarGetter(varName)
	if err != nil {
		return nil, fmt.Errorf("ncdf: variable %s: %w", varName, err)
	}
	raw, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("ncdf: read %s: %w", varName, err)
	}
	members, err := toMatrix(raw)
	if err != nil {
		return nil, fmt.Errorf("ncdf: %s: %w", varName, err)
	}

	steps, err := axisValues(nc, []string{"time", "step", "leadtime"})
	if err != nil {
		steps = nil
	}
	if steps != nil && len(members) > 0 && len(steps) != len(members[0]) {
		steps = nil
	}

	e, err := grid.NewEnsemble(steps, members)
	if err != nil {
		return nil, fmt.Errorf("ncdf: %s: %w", varName, err)
	}
	return e, nil
}

// axisValues reads the first present coordinate variable among names.
func axisValues(nc api.Group, names []string) ([]float64, error) {
	for _, name := range names {
		vg, err := nc.GetVarGetter(name)
		if err != nil {
			continue
		}
		raw, err := vg.Values()
		if err != nil {
			return nil, fmt.Errorf("ncdf: read axis %s: %w", name, err)
		}
		return toVector(raw)
	}
	return nil, fmt.Errorf("ncdf: no coordinate variable among %v", names)
}

func fieldValues(nc api.Group, varName string, o FieldOptions) ([][]float64, error) {
	vg, err := nc.GetVarGetter(varName)
	if err != nil {
		return nil, fmt.Errorf("ncdf: variable %s: %w", varName, err)
	}

	raw, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("ncdf: read %s: %w", varName, err)
	}

	raw, err = selectRecord(raw, o.TimeIndex)
	if err != nil {
		return nil, fmt.Errorf("ncdf: %s: %w", varName, err)
	}

	m, err := toMatrix(raw)
	if err != nil {
		return nil, fmt.Errorf("ncdf: %s: %w", varName, err)
	}
	if o.Scale != 0 {
		for _, row := range m {
			for i, v := range row {
				row[i] = o.unpack(v)
			}
		}
	}
	return m, nil
}

// selectRecord reduces a 3-D (time, lat, lon) value block to the
// requested record. 2-D blocks pass through.
func selectRecord(raw any, timeIndex int) (any, error) {
	switch vals := raw.(type) {
	case [][][]float32:
		if timeIndex < 0 || timeIndex >= len(vals) {
			return nil, fmt.Errorf("time index %d out of %d records", timeIndex, len(vals))
		}
		return vals[timeIndex], nil
	case [][][]float64:
		if timeIndex < 0 || timeIndex >= len(vals) {
			return nil, fmt.Errorf("time index %d out of %d records", timeIndex, len(vals))
		}
		return vals[timeIndex], nil
	case [][][]int16:
		if timeIndex < 0 || timeIndex >= len(vals) {
			return nil, fmt.Errorf("time index %d out of %d records", timeIndex, len(vals))
		}
		return vals[timeIndex], nil
	default:
		return raw, nil
	}
}

func toVector(raw any) ([]float64, error) {
	switch vals := raw.(type) {
	case []float64:
		return vals, nil
	case []float32:
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = float64(v)
		}
		return out, nil
	case []int32:
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = float64(v)
		}
		return out, nil
	case []int16:
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = float64(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported axis type %T", raw)
	}
}

func toMatrix(raw any) ([][]float64, error) {
	switch vals := raw.(type) {
	case [][]float64:
		return vals, nil
	case [][]float32:
		out := make([][]float64, len(vals))
		for j, row := range vals {
			out[j] = make([]float64, len(row))
			for i, v := range row {
				out[j][i] = float64(v)
			}
		}
		return out, nil
	case [][]int16:
		out := make([][]float64, len(vals))
		for j, row := range vals {
			out[j] = make([]float64, len(row))
			for i, v := range row {
				out[j][i] = float64(v)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", raw)
	}
}
