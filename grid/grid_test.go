package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGrid(t *testing.T, lons, lats []float64, values [][]float64) *Grid {
	t.Helper()
	g, err := New(lons, lats, values)
	require.NoError(t, err)
	return g
}

func TestNew(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		g := mustGrid(t,
			[]float64{-20, -10, 0},
			[]float64{45, 50},
			[][]float64{{1, 2, 3}, {4, 5, 6}},
		)
		assert.Equal(t, 3, g.NX())
		assert.Equal(t, 2, g.NY())
	})

	t.Run("row count mismatch", func(t *testing.T) {
		_, err := New([]float64{0, 1}, []float64{0, 1, 2}, [][]float64{{1, 2}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "value rows")
	})

	t.Run("row length mismatch", func(t *testing.T) {
		_, err := New([]float64{0, 1}, []float64{0}, [][]float64{{1, 2, 3}})
		require.Error(t, err)
	})

	t.Run("non-monotonic axis", func(t *testing.T) {
		_, err := New([]float64{0, 2, 1}, []float64{0}, [][]float64{{1, 2, 3}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "monotonic")
	})

	t.Run("descending latitudes allowed", func(t *testing.T) {
		_, err := New([]float64{0, 1}, []float64{60, 50}, [][]float64{{1, 2}, {3, 4}})
		assert.NoError(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := New(nil, nil, nil)
		require.Error(t, err)
	})
}

func TestIndexed(t *testing.T) {
	g, err := Indexed([][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, g.Lons)
	assert.Equal(t, []float64{0, 1}, g.Lats)
}

func TestFromMesh(t *testing.T) {
	lons := [][]float64{{-20, -10, 0}, {-20, -10, 0}}
	lats := [][]float64{{45, 45, 45}, {50, 50, 50}}
	values := [][]float64{{1, 2, 3}, {4, 5, 6}}

	t.Run("regular mesh collapses", func(t *testing.T) {
		g, err := FromMesh(lons, lats, values)
		require.NoError(t, err)
		assert.Equal(t, []float64{-20, -10, 0}, g.Lons)
		assert.Equal(t, []float64{45, 50}, g.Lats)
	})

	t.Run("irregular mesh rejected", func(t *testing.T) {
		bad := [][]float64{{-20, -10, 0}, {-20, -9, 0}}
		_, err := FromMesh(bad, lats, values)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vary across rows")
	})
}

func TestRangeAndAbsMax(t *testing.T) {
	g := mustGrid(t, []float64{0, 1}, []float64{0, 1}, [][]float64{{-3, 1}, {2, 0.5}})

	min, max := g.Range()
	assert.Equal(t, -3.0, min)
	assert.Equal(t, 2.0, max)
	assert.Equal(t, 3.0, g.AbsMax())
}

func TestSub(t *testing.T) {
	a := mustGrid(t, []float64{0, 1}, []float64{0}, [][]float64{{5, 7}})
	b := mustGrid(t, []float64{0, 1}, []float64{0}, [][]float64{{2, 10}})

	t.Run("pointwise difference", func(t *testing.T) {
		d, err := Sub(a, b)
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{3, -3}}, d.Values)
	})

	t.Run("axis mismatch", func(t *testing.T) {
		c := mustGrid(t, []float64{0, 2}, []float64{0}, [][]float64{{1, 1}})
		_, err := Sub(a, c)
		require.Error(t, err)
	})
}
