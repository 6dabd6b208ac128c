package ncdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectRecord(t *testing.T) {
	cube := [][][]float32{
		{{1, 2}, {3, 4}},
		{{5, 6}, {7, 8}},
	}

	rec, err := selectRecord(cube, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{5, 6}, {7, 8}}, rec)

	_, err = selectRecord(cube, 2)
	assert.ErrorContains(t, err, "out of")

	flat := [][]float64{{1, 2}}
	rec, err = selectRecord(flat, 0)
	require.NoError(t, err)
	assert.Equal(t, flat, rec)
}

func TestToVector(t *testing.T) {
	v, err := toVector([]float32{1.5, 2.5})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.5}, v)

	v, err = toVector([]int32{-3, 4})
	require.NoError(t, err)
	assert.Equal(t, []float64{-3, 4}, v)

	_, err = toVector("nope")
	assert.ErrorContains(t, err, "unsupported axis type")
}

func TestToMatrix(t *testing.T) {
	m, err := toMatrix([][]int16{{10, 20}, {30, 40}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{10, 20}, {30, 40}}, m)

	_, err = toMatrix([]float64{1})
	assert.ErrorContains(t, err, "unsupported value type")
}

func TestUnpack(t *testing.T) {
	o := FieldOptions{Scale: 0.01, Offset: 273.15}
	assert.InDelta(t, 274.15, o.unpack(100), 1e-9)

	none := FieldOptions{}
	assert.Equal(t, 42.0, none.unpack(42))
}
