package annotation

import "strings"

// PinColor is a named entry in the pin palette.
type PinColor string

const (
	ColorRed    PinColor = "red"
	ColorOrange PinColor = "orange"
	ColorYellow PinColor = "yellow"
	ColorGreen  PinColor = "green"
	ColorBlue   PinColor = "blue"
	ColorIndigo PinColor = "indigo"
	ColorViolet PinColor = "violet"
	ColorGray   PinColor = "gray"
)

// Palette lists pin colors in picker order.
var Palette = []PinColor{
	ColorRed, ColorOrange, ColorYellow, ColorGreen,
	ColorBlue, ColorIndigo, ColorViolet, ColorGray,
}

// legacyHex maps hex colors stored by older clients onto the palette.
var legacyHex = map[string]PinColor{
	"#ef4444": ColorRed,
	"#ff033e": ColorRed,
	"#ffb05b": ColorOrange,
	"#eab308": ColorYellow,
	"#ffff01": ColorYellow,
	"#22c55e": ColorGreen,
	"#14ae00": ColorGreen,
	"#3b82f6": ColorBlue,
	"#00c8ff": ColorBlue,
	"#0000ff": ColorIndigo,
	"#a855f7": ColorViolet,
	"#f433fb": ColorViolet,
	"#848484": ColorGray,
}

// NormalizeColor maps a palette name or legacy hex value onto the palette.
// Anything unrecognized becomes red.
func NormalizeColor(s string) PinColor {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return ColorRed
	}
	for _, c := range Palette {
		if string(c) == v {
			return c
		}
	}
	if c, ok := legacyHex[v]; ok {
		return c
	}
	return ColorRed
}

// Next returns the following palette color, wrapping around.
func (c PinColor) Next() PinColor {
	for i, p := range Palette {
		if p == c {
			return Palette[(i+1)%len(Palette)]
		}
	}
	return ColorRed
}
