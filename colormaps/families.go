// Package colormaps holds the preset colormaps and contour levels used
// by the chart functions, keyed by variable family.
//
// Two kinds of colormap exist per family:
//
//   - Levels: a discrete set of color bands with explicit boundaries,
//     used for filled contour fields (and their colorbars).
//   - Shades: a continuous colormap, used for smoothly shaded fields
//     such as member differences.
//
// Families accept the aliases meteorologists actually type: "T",
// "temp", "temperature" and any "air_temperature..." CF name select the
// temperature ladder; "FF", "wind", "wind_speed" the wind bands; "RR",
// "radar", "precipitation" the radar bands. "diff" selects the
// symmetric diverging map for difference fields.
package colormaps

import (
	"fmt"
	"strings"

	"gonum.org/v1/plot/palette"
)

// Family keys understood by LevelsFor and ShadeFor.
const (
	FamilyTemperature = "temperature"
	FamilyWind        = "wind"
	FamilyRadar       = "radar"
	FamilyDiff        = "diff"
)

var (
	temperatureLevels = newLevels(FamilyTemperature, temperatureBounds(), rgbColors(temperatureRGB))
	radarLevels       = newLevels(FamilyRadar, radarBounds, nrgbaColors(radarColors))
	windLevels        = newLevels(FamilyWind, windBounds, rgbColors(windRGB))
)

// Canonical resolves a variable family alias to its canonical key.
// It returns an empty string for unknown families.
func Canonical(family string) string {
	switch family {
	case "T", "temp", "temperature":
		return FamilyTemperature
	case "FF", "wind", "wind_speed":
		return FamilyWind
	case "RR", "radar", "precipitation":
		return FamilyRadar
	}
	if strings.HasPrefix(family, "air_temperature") {
		return FamilyTemperature
	}
	if strings.EqualFold(family, FamilyDiff) {
		return FamilyDiff
	}
	return ""
}

// LevelsFor returns an independent copy of the discrete color levels
// for the given variable family. Unknown families are an error: there
// is no sensible default for band boundaries.
func LevelsFor(family string) (*Levels, error) {
	switch Canonical(family) {
	case FamilyTemperature:
		return temperatureLevels.clone(), nil
	case FamilyWind:
		return windLevels.clone(), nil
	case FamilyRadar:
		return radarLevels.clone(), nil
	}
	return nil, fmt.Errorf("colormaps: no color levels for family %q", family)
}

// ShadeFor returns the continuous colormap for the given variable
// family. Unknown families fall back to the sequential default.
func ShadeFor(family string) palette.ColorMap {
	switch Canonical(family) {
	case FamilyTemperature:
		return Rainbow()
	case FamilyWind:
		return Spring()
	case FamilyDiff:
		return Diverging()
	}
	return Sequential()
}
