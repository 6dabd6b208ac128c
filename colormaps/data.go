package colormaps

import "image/color"

// ECMWF-style 2 m temperature ladder: one color per 2 degC band from
// -32 to +42. 37 colors, 38 bounds.
var temperatureRGB = [][3]uint8{
	{76, 76, 76},
	{102, 102, 102},
	{128, 128, 128},
	{153, 153, 153},
	{179, 179, 179},
	{204, 204, 204},
	{89, 0, 153},
	{128, 0, 230},
	{153, 51, 255},
	{191, 102, 255},
	{217, 153, 255},
	{0, 0, 191},
	{0, 0, 255},
	{51, 102, 255},
	{102, 179, 255},
	{153, 230, 255},
	{0, 140, 48},
	{38, 191, 25},
	{128, 217, 0},
	{166, 243, 0},
	{204, 255, 51},
	{166, 166, 0},
	{204, 204, 0},
	{235, 235, 0},
	{255, 255, 0},
	{255, 255, 153},
	{217, 115, 0},
	{255, 128, 0},
	{255, 158, 0},
	{255, 189, 0},
	{255, 217, 0},
	{153, 0, 0},
	{204, 0, 0},
	{255, 0, 0},
	{255, 102, 102},
	{255, 153, 153},
	{255, 191, 191},
}

// Radar reflectivity / accumulated precipitation bands in mm. The first
// band (no precipitation) is fully transparent so the base map shows
// through dry areas.
var radarBounds = []float64{0, 0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 200}

var radarColors = []color.NRGBA{
	{R: 255, G: 255, B: 255, A: 0},
	{R: 255, G: 163, B: 52, A: 255},
	{R: 116, G: 255, B: 78, A: 255},
	{R: 0, G: 205, B: 61, A: 255},
	{R: 0, G: 255, B: 254, A: 255},
	{R: 133, G: 207, B: 232, A: 255},
	{R: 30, G: 22, B: 246, A: 255},
	{R: 241, G: 129, B: 232, A: 255},
	{R: 211, G: 23, B: 140, A: 255},
	{R: 153, G: 153, B: 153, A: 255},
}

// 10 m wind speed bands in km/h, white through black. The last bound is
// an open-ended catch-all for storm-force values.
var windBounds = []float64{0, 20, 25, 30, 35, 40, 45, 50, 55, 60, 65, 70, 300}

var windRGB = [][3]uint8{
	{255, 255, 255}, // white
	{173, 216, 230}, // lightblue
	{176, 196, 222}, // lightsteelblue
	{100, 149, 237}, // cornflowerblue
	{65, 105, 225},  // royalblue
	{154, 205, 50},  // yellowgreen
	{50, 205, 50},   // limegreen
	{255, 255, 0},   // yellow
	{255, 165, 0},   // orange
	{255, 0, 0},     // red
	{165, 42, 42},   // brown
	{0, 0, 0},       // black
}

// temperatureBounds is the 2-degree ladder -32..42, one boundary more
// than the 37 ladder colors.
func temperatureBounds() []float64 {
	bounds := make([]float64, 0, 38)
	for b := -32.0; b <= 42; b += 2 {
		bounds = append(bounds, b)
	}
	return bounds
}

func rgbColors(rgb [][3]uint8) []color.Color {
	out := make([]color.Color, len(rgb))
	for i, c := range rgb {
		out[i] = color.NRGBA{R: c[0], G: c[1], B: c[2], A: 255}
	}
	return out
}

func nrgbaColors(cs []color.NRGBA) []color.Color {
	out := make([]color.Color, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out
}
