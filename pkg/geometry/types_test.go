package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectFromCornersNormalizes(t *testing.T) {
	r := RectFromCorners(Point2D{X: 10, Y: 40}, Point2D{X: 2, Y: 5})
	assert.Equal(t, Rect{X: 2, Y: 5, Width: 8, Height: 35}, r)
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 20, 20)
	assert.True(t, r.Contains(Point2D{X: 10, Y: 10}))
	assert.True(t, r.Contains(Point2D{X: 30, Y: 30}))
	assert.False(t, r.Contains(Point2D{X: 30.01, Y: 15}))
}

func TestRectIntersect(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(5, 5, 10, 10)
	assert.Equal(t, NewRect(5, 5, 5, 5), a.Intersect(b))
	assert.Equal(t, 0.0, a.Intersect(NewRect(20, 20, 1, 1)).Width)
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 5.0, Point2D{X: 1, Y: 1}.Distance(Point2D{X: 4, Y: 5}))
}

func TestPercentConversions(t *testing.T) {
	s := NewSize(200, 400)
	p := s.PercentToPoint(50, 25)
	assert.Equal(t, Point2D{X: 100, Y: 100}, p)
	assert.Equal(t, Point2D{X: 50, Y: 25}, s.PointToPercent(p))

	r := s.PercentToRect(NewRect(10, 10, 50, 50))
	assert.Equal(t, NewRect(20, 40, 100, 200), r)
	assert.Equal(t, NewRect(10, 10, 50, 50), s.RectToPercent(r))

	assert.Equal(t, Point2D{}, Size{}.PointToPercent(p))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.1, Clamp(0.01, 0.1, 10))
	assert.Equal(t, 10.0, Clamp(11, 0.1, 10))
	assert.Equal(t, 3.0, Clamp(3, 0.1, 10))
}
