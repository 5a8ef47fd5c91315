// Package view holds the pan/zoom transform between screen pixels and
// floor-plan image pixels.
package view

import (
	"math"

	"expo-floorplan/pkg/geometry"
)

const (
	MinScale   = 0.1
	MaxScale   = 10.0
	ZoomFactor = 1.2
)

// Direction of a zoom step.
type Direction int

const (
	ZoomIn Direction = iota
	ZoomOut
)

// Transform maps image space to screen space:
// screen = image*Scale + (TranslateX, TranslateY).
type Transform struct {
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
}

// Identity returns the unit transform.
func Identity() Transform {
	return Transform{Scale: 1}
}

func clampScale(s float64) float64 {
	if math.IsNaN(s) || s <= 0 {
		return MinScale
	}
	return geometry.Clamp(s, MinScale, MaxScale)
}

// FitToContainer returns the largest scale at which the whole image fits
// the viewport, centered. Translation is never negative. Empty sizes yield
// the identity transform.
func FitToContainer(img, viewport geometry.Size) Transform {
	if img.Empty() || viewport.Empty() {
		return Identity()
	}
	scale := math.Min(viewport.Width/img.Width, viewport.Height/img.Height)
	return Transform{
		Scale:      scale,
		TranslateX: math.Max(0, (viewport.Width-img.Width*scale)/2),
		TranslateY: math.Max(0, (viewport.Height-img.Height*scale)/2),
	}
}

// Zoom multiplies (ZoomIn) or divides (ZoomOut) the scale by ZoomFactor,
// keeping the screen point center fixed.
func (t Transform) Zoom(dir Direction, center geometry.Point2D) Transform {
	factor := ZoomFactor
	if dir == ZoomOut {
		factor = 1 / ZoomFactor
	}
	return t.ZoomBy(factor, center)
}

// ZoomBy scales by an arbitrary factor around the screen point center.
// The resulting scale is clamped to [MinScale, MaxScale].
func (t Transform) ZoomBy(factor float64, center geometry.Point2D) Transform {
	old := t.Scale
	if old <= 0 {
		old = 1
	}
	ns := clampScale(old * factor)
	ratio := ns / old
	return Transform{
		Scale:      ns,
		TranslateX: center.X - (center.X-t.TranslateX)*ratio,
		TranslateY: center.Y - (center.Y-t.TranslateY)*ratio,
	}
}

// Pan moves the image by (dx, dy) screen pixels. It is not clamped.
func (t Transform) Pan(dx, dy float64) Transform {
	t.TranslateX += dx
	t.TranslateY += dy
	return t
}

// ScreenToImage maps a screen point into image space.
func (t Transform) ScreenToImage(p geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{
		X: (p.X - t.TranslateX) / t.Scale,
		Y: (p.Y - t.TranslateY) / t.Scale,
	}
}

// ImageToScreen maps an image point onto the screen.
func (t Transform) ImageToScreen(p geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{
		X: p.X*t.Scale + t.TranslateX,
		Y: p.Y*t.Scale + t.TranslateY,
	}
}

// Device converts a logical-pixel transform into a device-pixel transform
// for a surface whose pixel density is ratio device pixels per logical one.
func (t Transform) Device(ratio float64) Transform {
	if ratio <= 0 {
		ratio = 1
	}
	return Transform{
		Scale:      t.Scale * ratio,
		TranslateX: t.TranslateX * ratio,
		TranslateY: t.TranslateY * ratio,
	}
}

// Valid reports whether the transform can be inverted.
func (t Transform) Valid() bool {
	return t.Scale > 0 && !math.IsInf(t.Scale, 0) && !math.IsNaN(t.Scale)
}
