// Package colorutil provides shared color utilities for the floor-plan application.
package colorutil

import (
	"image/color"
	"math"
)

// Common marker colors used throughout the application.
var (
	Black       = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Placeholder = color.RGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 255}
	StatusText  = color.RGBA{R: 0xa0, G: 0xa0, B: 0xa0, A: 255}

	// Marker states. Default, hover and selected must stay visually distinct.
	MarkerDefault  = color.RGBA{R: 0x25, G: 0x63, B: 0xeb, A: 255}
	MarkerHover    = color.RGBA{R: 0xf5, G: 0x9e, B: 0x0b, A: 255}
	MarkerSelected = color.RGBA{R: 0xdc, G: 0x26, B: 0x26, A: 255}
	MarkerSold     = color.RGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 255}

	TooltipFill  = color.NRGBA{R: 0, G: 0, B: 0, A: 191}
	TooltipText  = White
	DraftOutline = color.RGBA{R: 0x10, G: 0xb9, B: 0x81, A: 255}
	DraftFill    = color.NRGBA{R: 0x10, G: 0xb9, B: 0x81, A: 51}
	BoxFillAlpha = uint8(77)
)

// WithAlpha returns c with its alpha channel replaced. The color channels
// are treated as straight (non-premultiplied) values.
func WithAlpha(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}

// HSLToRGB converts hue (0-360), saturation and lightness (0-1) to RGB.
func HSLToRGB(h, s, l float64) color.RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.RGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 255,
	}
}

// CategoryColor returns a stable color for a stall category name. The
// stall list tints its rows with it.
func CategoryColor(category string) color.RGBA {
	var hash uint32 = 2166136261
	for i := 0; i < len(category); i++ {
		hash ^= uint32(category[i])
		hash *= 16777619
	}
	return HSLToRGB(float64(hash%360), 0.65, 0.5)
}
