package basemap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"

	"github.com/windvane/metplot/geo"
)

func TestBuiltin(t *testing.T) {
	cl := Builtin()
	require.NotEmpty(t, cl.Lines)
	assert.Contains(t, cl.Names, "Africa")
	assert.Contains(t, cl.Names, "Eurasia")

	// Built-in continents are closed rings so they can be filled.
	closed := 0
	for _, line := range cl.Lines {
		if line[0] == line[len(line)-1] {
			closed++
		}
	}
	assert.Greater(t, closed, 4)

	for _, line := range cl.Lines {
		for _, pt := range line {
			assert.GreaterOrEqual(t, pt.X, -180.0)
			assert.LessOrEqual(t, pt.X, 180.0)
			assert.GreaterOrEqual(t, pt.Y, -90.0)
			assert.LessOrEqual(t, pt.Y, 90.0)
		}
	}
}

func TestLoadGeoJSON(t *testing.T) {
	t.Run("multilinestring file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "coast.json")
		data := `{
			"type": "FeatureCollection",
			"features": [{
				"type": "Feature",
				"properties": {"name": "test"},
				"geometry": {
					"type": "MultiLineString",
					"coordinates": [[[0, 0], [1, 1]], [[2, 2], [3, 3], [4, 4]]]
				}
			}]
		}`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		cl, err := LoadGeoJSON(path)
		require.NoError(t, err)
		assert.Len(t, cl.Lines, 2)
		assert.Equal(t, []string{"test", "test"}, cl.Names)
		assert.Equal(t, 3.0, cl.Lines[1][1].X)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadGeoJSON(filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
	})

	t.Run("unsupported geometry", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "points.json")
		data := `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[0,0]}}]}`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		_, err := LoadGeoJSON(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Point")
	})
}

func TestAddCoastlines(t *testing.T) {
	cl := Builtin()

	t.Run("plate carree", func(t *testing.T) {
		p := plot.New()
		require.NoError(t, AddCoastlines(p, cl, geo.PlateCarree(), LineStyle{}))
	})

	t.Run("mercator", func(t *testing.T) {
		p := plot.New()
		require.NoError(t, AddCoastlines(p, cl, geo.Mercator(0), LineStyle{}))
	})
}

func TestAddLand(t *testing.T) {
	p := plot.New()
	require.NoError(t, AddLand(p, Builtin(), geo.PlateCarree(), 0.5))
}
