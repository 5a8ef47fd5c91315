// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Rect represents a rectangle with floating-point coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// RectFromCorners returns the rectangle spanned by two opposite corners,
// normalized so Width and Height are never negative.
func RectFromCorners(a, b Point2D) Rect {
	x1, x2 := math.Min(a.X, b.X), math.Max(a.X, b.X)
	y1, y2 := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Contains returns true if the point is inside the rectangle.
func (r Rect) Contains(p Point2D) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point2D {
	return Point2D{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// TopLeft returns the top-left corner.
func (r Rect) TopLeft() Point2D {
	return Point2D{X: r.X, Y: r.Y}
}

// BottomRight returns the bottom-right corner.
func (r Rect) BottomRight() Point2D {
	return Point2D{X: r.X + r.Width, Y: r.Y + r.Height}
}

// Intersect returns the overlapping part of two rectangles. The result has
// zero size when they do not overlap.
func (r Rect) Intersect(other Rect) Rect {
	x := math.Max(r.X, other.X)
	y := math.Max(r.Y, other.Y)
	x2 := math.Min(r.X+r.Width, other.X+other.Width)
	y2 := math.Min(r.Y+r.Height, other.Y+other.Height)
	if x2 < x || y2 < y {
		return Rect{X: x, Y: y}
	}
	return Rect{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

// Size represents a 2D size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewSize creates a new Size.
func NewSize(width, height float64) Size {
	return Size{Width: width, Height: height}
}

// Empty reports whether either dimension is zero or negative.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Center returns the midpoint of a size anchored at the origin.
func (s Size) Center() Point2D {
	return Point2D{X: s.Width / 2, Y: s.Height / 2}
}

// PercentToPoint converts a percentage position (0-100 on each axis) into
// absolute coordinates within a frame of the given size.
func (s Size) PercentToPoint(px, py float64) Point2D {
	return Point2D{X: px / 100 * s.Width, Y: py / 100 * s.Height}
}

// PointToPercent converts absolute coordinates within the frame into
// percentages of its size. An empty frame maps everything to the origin.
func (s Size) PointToPercent(p Point2D) Point2D {
	if s.Empty() {
		return Point2D{}
	}
	return Point2D{X: p.X / s.Width * 100, Y: p.Y / s.Height * 100}
}

// PercentToRect converts a percentage rectangle into absolute coordinates.
func (s Size) PercentToRect(r Rect) Rect {
	return Rect{
		X:      r.X / 100 * s.Width,
		Y:      r.Y / 100 * s.Height,
		Width:  r.Width / 100 * s.Width,
		Height: r.Height / 100 * s.Height,
	}
}

// RectToPercent converts an absolute rectangle into percentages of the frame.
func (s Size) RectToPercent(r Rect) Rect {
	if s.Empty() {
		return Rect{}
	}
	return Rect{
		X:      r.X / s.Width * 100,
		Y:      r.Y / s.Height * 100,
		Width:  r.Width / s.Width * 100,
		Height: r.Height / s.Height * 100,
	}
}

// Clamp limits v to the closed interval [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
