// Package basemap provides the coastline and land features drawn under
// every map chart. A coarse built-in coastline ships with the package;
// Natural Earth GeoJSON files (110m, 50m, 10m) can be loaded for
// higher resolutions.
package basemap

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ctessum/geom"
)

//go:embed data/coastline.json
var builtinFS embed.FS

// Coastline is a set of named shoreline polylines in WGS-84 degrees.
// Built-in features are closed rings, so they double as land polygons.
type Coastline struct {
	Names []string
	Lines []geom.LineString
}

// Builtin returns the coarse built-in world coastline.
func Builtin() *Coastline {
	raw, err := builtinFS.ReadFile("data/coastline.json")
	if err != nil {
		panic("basemap: embedded coastline missing: " + err.Error())
	}
	cl, err := decodeGeoJSON(raw)
	if err != nil {
		panic("basemap: embedded coastline invalid: " + err.Error())
	}
	return cl
}

// LoadGeoJSON reads shoreline features from a GeoJSON file, e.g. a
// Natural Earth ne_110m_coastline download. LineString,
// MultiLineString, Polygon and MultiPolygon geometries are accepted.
func LoadGeoJSON(path string) (*Coastline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("basemap: read %s: %w", path, err)
	}
	cl, err := decodeGeoJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("basemap: %s: %w", path, err)
	}
	return cl, nil
}

type geoJSONFile struct {
	Type     string `json:"type"`
	Features []struct {
		Properties map[string]any  `json:"properties"`
		Geometry   geoJSONGeometry `json:"geometry"`
	} `json:"features"`
}

type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

func decodeGeoJSON(raw []byte) (*Coastline, error) {
	var file geoJSONFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	if file.Type != "FeatureCollection" {
		return nil, fmt.Errorf("decode geojson: unsupported type %q", file.Type)
	}

	cl := &Coastline{}
	for i, f := range file.Features {
		lines, err := geometryLines(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		name, _ := f.Properties["name"].(string)
		for _, line := range lines {
			cl.Names = append(cl.Names, name)
			cl.Lines = append(cl.Lines, line)
		}
	}
	if len(cl.Lines) == 0 {
		return nil, fmt.Errorf("decode geojson: no line features")
	}
	return cl, nil
}

func geometryLines(g geoJSONGeometry) ([]geom.LineString, error) {
	switch g.Type {
	case "LineString":
		var coords [][2]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil, err
		}
		return []geom.LineString{toLine(coords)}, nil
	case "MultiLineString", "Polygon":
		var multi [][][2]float64
		if err := json.Unmarshal(g.Coordinates, &multi); err != nil {
			return nil, err
		}
		lines := make([]geom.LineString, 0, len(multi))
		for _, coords := range multi {
			lines = append(lines, toLine(coords))
		}
		return lines, nil
	case "MultiPolygon":
		var multi [][][][2]float64
		if err := json.Unmarshal(g.Coordinates, &multi); err != nil {
			return nil, err
		}
		var lines []geom.LineString
		for _, poly := range multi {
			for _, ring := range poly {
				lines = append(lines, toLine(ring))
			}
		}
		return lines, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

func toLine(coords [][2]float64) geom.LineString {
	line := make(geom.LineString, len(coords))
	for i, c := range coords {
		line[i] = geom.Point{X: c[0], Y: c[1]}
	}
	return line
}
