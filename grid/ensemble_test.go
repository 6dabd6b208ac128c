package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnsemble(t *testing.T) {
	t.Run("default steps are an index ramp", func(t *testing.T) {
		e, err := NewEnsemble(nil, [][]float64{{1, 2, 3}, {4, 5, 6}})
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 1, 2}, e.Steps)
		assert.Equal(t, 2, e.NMembers())
		assert.Equal(t, 3, e.NSteps())
	})

	t.Run("ragged member rejected", func(t *testing.T) {
		_, err := NewEnsemble([]float64{0, 6, 12}, [][]float64{{1, 2, 3}, {4, 5}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "member 1")
	})

	t.Run("empty ensemble rejected", func(t *testing.T) {
		_, err := NewEnsemble(nil, nil)
		require.Error(t, err)
	})
}

func TestEnsembleQuantile(t *testing.T) {
	// Five constant members so quantiles are easy to reason about.
	e, err := NewEnsemble(nil, [][]float64{
		{10, 10},
		{20, 20},
		{30, 30},
		{40, 40},
		{50, 50},
	})
	require.NoError(t, err)

	median := e.Quantile(0.5)
	assert.Equal(t, []float64{30, 30}, median)

	lo := e.Quantile(0.1)
	hi := e.Quantile(0.9)
	for i := range lo {
		assert.LessOrEqual(t, lo[i], median[i])
		assert.GreaterOrEqual(t, hi[i], median[i])
	}
}
