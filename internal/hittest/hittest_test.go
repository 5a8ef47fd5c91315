package hittest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expo-floorplan/internal/exhibition"
	"expo-floorplan/internal/view"
	"expo-floorplan/pkg/geometry"
)

var frame200 = geometry.NewSize(200, 200)

func transforms() []view.Transform {
	return []view.Transform{
		view.Identity(),
		{Scale: 0.1, TranslateX: 5, TranslateY: 5},
		{Scale: 2.5, TranslateX: -120, TranslateY: 33},
		{Scale: 10, TranslateX: -900, TranslateY: -950},
	}
}

func TestFindStallAtCenterAndFarAway(t *testing.T) {
	st := &exhibition.Stall{ID: "a", X: 50, Y: 50}
	stalls := []*exhibition.Stall{st}

	for _, style := range []Style{StylePoint, StylePin, StyleThumbnail} {
		g := Geometry{Style: style, Radius: DefaultPinSize, Multiplier: DefaultMultiplier}
		for _, xf := range transforms() {
			shape := g.ShapeOf(st, frame200, xf.Scale)
			hit := xf.ImageToScreen(shape.Center)
			assert.Same(t, st, g.FindStallAt(hit, xf, stalls, frame200), "style %s scale %v", style, xf.Scale)

			// 3x the hit radius away, in screen pixels.
			away := hit
			away.X += 3 * g.HitRadius(xf.Scale) * xf.Scale
			assert.Nil(t, g.FindStallAt(away, xf, stalls, frame200), "style %s scale %v", style, xf.Scale)
		}
	}
}

func TestHitRadiusIsConstantOnScreen(t *testing.T) {
	g := DefaultGeometry()
	for _, xf := range transforms() {
		assert.InDelta(t, DefaultPinSize*DefaultMultiplier, g.HitRadius(xf.Scale)*xf.Scale, 1e-9)
	}
}

func TestPointStyleAnchorOnStall(t *testing.T) {
	g := DefaultGeometry()
	st := &exhibition.Stall{ID: "a", X: 50, Y: 50}
	xf := view.Identity()
	assert.NotNil(t, g.FindStallAt(geometry.Point2D{X: 100, Y: 100}, xf, []*exhibition.Stall{st}, frame200))
	// Just inside and just outside the enlarged radius of 30px.
	assert.NotNil(t, g.FindStallAt(geometry.Point2D{X: 129.9, Y: 100}, xf, []*exhibition.Stall{st}, frame200))
	assert.Nil(t, g.FindStallAt(geometry.Point2D{X: 130, Y: 100}, xf, []*exhibition.Stall{st}, frame200))
}

func TestPinHeadSitsAbovePoint(t *testing.T) {
	g := Geometry{Style: StylePin, Radius: 10, Multiplier: 1}
	st := &exhibition.Stall{ID: "a", X: 50, Y: 50}
	shape := g.ShapeOf(st, frame200, 1)
	assert.Equal(t, geometry.Point2D{X: 100, Y: 84}, shape.Center)
	assert.Equal(t, geometry.Point2D{X: 100, Y: 100}, shape.Anchor)
}

func TestReverseOrderResolution(t *testing.T) {
	g := DefaultGeometry()
	below := &exhibition.Stall{ID: "below", X: 50, Y: 50, Seq: 0}
	above := &exhibition.Stall{ID: "above", X: 52, Y: 50, Seq: 1}
	overlap := geometry.Point2D{X: 102, Y: 100}

	for _, xf := range transforms() {
		p := xf.ImageToScreen(overlap)
		got := g.FindStallAt(p, xf, []*exhibition.Stall{below, above}, frame200)
		require.NotNil(t, got)
		assert.Equal(t, "above", got.ID)

		got = g.FindStallAt(p, xf, []*exhibition.Stall{above, below}, frame200)
		require.NotNil(t, got)
		assert.Equal(t, "below", got.ID)
	}
}

func TestBoxStyle(t *testing.T) {
	g := Geometry{Style: StyleBox}
	box := exhibition.NewBoxStall(geometry.NewRect(10, 10, 20, 30))
	box.ID = "box"
	pin := &exhibition.Stall{ID: "pin", X: 80, Y: 80}
	stalls := []*exhibition.Stall{&box, pin}
	xf := view.Transform{Scale: 2, TranslateX: 10, TranslateY: 10}

	inside := xf.ImageToScreen(geometry.Point2D{X: 40, Y: 60})
	assert.Equal(t, "box", g.FindStallAt(inside, xf, stalls, frame200).ID)

	outside := xf.ImageToScreen(geometry.Point2D{X: 61, Y: 60})
	assert.Nil(t, g.FindStallAt(outside, xf, stalls, frame200))

	// Stalls without a size fall back to a disc.
	assert.Equal(t, "pin", g.FindStallAt(xf.ImageToScreen(geometry.Point2D{X: 160, Y: 160}), xf, stalls, frame200).ID)
}

func TestFindStallAtDegenerateInputs(t *testing.T) {
	g := DefaultGeometry()
	st := &exhibition.Stall{ID: "a", X: 50, Y: 50}
	assert.Nil(t, g.FindStallAt(geometry.Point2D{}, view.Transform{}, []*exhibition.Stall{st}, frame200))
	assert.Nil(t, g.FindStallAt(geometry.Point2D{}, view.Identity(), []*exhibition.Stall{st}, geometry.Size{}))
	assert.Nil(t, g.FindStallAt(geometry.Point2D{}, view.Identity(), nil, frame200))
}

func TestParseStyle(t *testing.T) {
	s, err := ParseStyle("Thumbnail")
	require.NoError(t, err)
	assert.Equal(t, StyleThumbnail, s)
	_, err = ParseStyle("star")
	assert.Error(t, err)
}
