// Package hittest resolves which stall lies under a screen point.
package hittest

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"expo-floorplan/internal/exhibition"
	"expo-floorplan/internal/view"
	"expo-floorplan/pkg/geometry"
)

// Style selects how stalls are drawn and picked.
type Style string

const (
	StylePoint     Style = "point"
	StylePin       Style = "pin"
	StyleThumbnail Style = "thumbnail"
	StyleBox       Style = "box"
)

// Styles lists every marker style in menu order.
var Styles = []Style{StylePoint, StylePin, StyleThumbnail, StyleBox}

// Defaults for marker geometry.
const (
	DefaultPinSize    = 12.0
	DefaultMultiplier = 2.5

	// pinHeadOffset is how far above the stall point the pin head sits, in radii.
	pinHeadOffset = 1.6
	// thumbnailScale enlarges thumbnail markers relative to the pin size.
	thumbnailScale = 1.5
)

// ParseStyle validates a marker style name.
func ParseStyle(s string) (Style, error) {
	switch st := Style(strings.ToLower(strings.TrimSpace(s))); st {
	case StylePoint, StylePin, StyleThumbnail, StyleBox:
		return st, nil
	}
	return "", fmt.Errorf("unknown marker style %q", s)
}

// Geometry holds marker sizing shared by the renderer and the hit tester.
type Geometry struct {
	Style Style
	// Radius is the on-screen marker radius in pixels, independent of zoom.
	Radius float64
	// Multiplier enlarges the clickable disc beyond the drawn radius.
	Multiplier float64
}

// DefaultGeometry returns point markers with the standard size.
func DefaultGeometry() Geometry {
	return Geometry{Style: StylePoint, Radius: DefaultPinSize, Multiplier: DefaultMultiplier}
}

func (g Geometry) normalized() Geometry {
	if g.Style == "" {
		g.Style = StylePoint
	}
	if g.Radius <= 0 {
		g.Radius = DefaultPinSize
	}
	if g.Multiplier <= 0 {
		g.Multiplier = DefaultMultiplier
	}
	return g
}

// Shape is the image-space region a stall occupies.
type Shape struct {
	Box    bool
	Rect   geometry.Rect    // when Box
	Center geometry.Point2D // disc center otherwise
	Radius float64          // drawn disc radius in image pixels
	Anchor geometry.Point2D // stall point in image pixels
}

// Anchor returns the stall point in image pixels. Sized stalls anchor at
// the center of their box.
func Anchor(st *exhibition.Stall, frame geometry.Size) geometry.Point2D {
	if st.HasSize() {
		return frame.PercentToRect(st.Bounds()).Center()
	}
	return frame.PercentToPoint(st.X, st.Y)
}

// UsesBox reports whether st is drawn as a rectangle under this geometry.
func (g Geometry) UsesBox(st *exhibition.Stall) bool {
	return g.normalized().Style == StyleBox && st.HasSize()
}

// MarkerRadius is the drawn radius in image pixels at the given scale.
func (g Geometry) MarkerRadius(scale float64) float64 {
	g = g.normalized()
	r := g.Radius / scale
	if g.Style == StyleThumbnail {
		r *= thumbnailScale
	}
	return r
}

// ShapeOf computes the stall's region in image space. frame is the natural
// image size used to resolve percentages.
func (g Geometry) ShapeOf(st *exhibition.Stall, frame geometry.Size, scale float64) Shape {
	g = g.normalized()
	anchor := Anchor(st, frame)
	if g.UsesBox(st) {
		return Shape{Box: true, Rect: frame.PercentToRect(st.Bounds()), Anchor: anchor}
	}

	r := g.MarkerRadius(scale)
	center := anchor
	if g.Style == StylePin {
		center.Y -= pinHeadOffset * r
	}
	return Shape{Center: center, Radius: r, Anchor: anchor}
}

// Contains reports whether the image-space point p hits the shape.
func (s Shape) Contains(p geometry.Point2D, multiplier float64) bool {
	if s.Box {
		return s.Rect.Contains(p)
	}
	d := r2.Sub(r2.Vec{X: p.X, Y: p.Y}, r2.Vec{X: s.Center.X, Y: s.Center.Y})
	hr := s.Radius * multiplier
	return r2.Norm2(d) < hr*hr
}

// HitRadius is the clickable radius in image pixels at the given scale.
func (g Geometry) HitRadius(scale float64) float64 {
	g = g.normalized()
	return g.MarkerRadius(scale) * g.Multiplier
}

// FindStallAt returns the top-most stall under the screen point, or nil.
// stalls must be in draw order; they are tested last to first. frame is
// the natural image size, or the canvas size when no image is loaded.
func (g Geometry) FindStallAt(screen geometry.Point2D, xf view.Transform, stalls []*exhibition.Stall, frame geometry.Size) *exhibition.Stall {
	if !xf.Valid() || frame.Empty() {
		return nil
	}
	g = g.normalized()
	p := xf.ScreenToImage(screen)
	for i := len(stalls) - 1; i >= 0; i-- {
		st := stalls[i]
		if st == nil {
			continue
		}
		if g.ShapeOf(st, frame, xf.Scale).Contains(p, g.Multiplier) {
			return st
		}
	}
	return nil
}
