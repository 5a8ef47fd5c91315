package render

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expo-floorplan/internal/exhibition"
	"expo-floorplan/internal/hittest"
	"expo-floorplan/internal/view"
	"expo-floorplan/pkg/colorutil"
	"expo-floorplan/pkg/geometry"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	return r
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func assertColorNear(t *testing.T, want, got color.Color, msgAndArgs ...interface{}) {
	t.Helper()
	wr, wg, wb, wa := want.RGBA()
	gr, gg, gb, ga := got.RGBA()
	const tol = 3 * 257
	near := func(a, b uint32) bool {
		if a > b {
			return a-b <= tol
		}
		return b-a <= tol
	}
	assert.True(t, near(wr, gr) && near(wg, gg) && near(wb, gb) && near(wa, ga),
		append([]interface{}{"want %v got %v", want, got}, msgAndArgs...)...)
}

type fakeThumbs map[string]image.Image

func (f fakeThumbs) Get(src string) image.Image { return f[src] }

func TestPlaceholderWhenNoImage(t *testing.T) {
	r := newRenderer(t)
	out := r.Render(200, 100, Scene{
		Transform:  view.Identity(),
		Frame:      geometry.NewSize(200, 100),
		StatusText: "No Floor Plan Available",
	})
	assertColorNear(t, colorutil.Placeholder, out.At(2, 2))
	assertColorNear(t, colorutil.Placeholder, out.At(197, 97))
}

func TestBackgroundImageFollowsTransform(t *testing.T) {
	r := newRenderer(t)
	red := color.RGBA{R: 255, A: 255}
	out := r.Render(300, 300, Scene{
		Transform: view.Transform{Scale: 2, TranslateX: 50, TranslateY: 50},
		Image:     solid(100, 100, red),
		Frame:     geometry.NewSize(100, 100),
	})
	assertColorNear(t, red, out.At(150, 150))
	assertColorNear(t, colorutil.White, out.At(20, 20))
	assertColorNear(t, colorutil.White, out.At(270, 270))
}

func pointScene(st *exhibition.Stall) Scene {
	return Scene{
		Transform: view.Identity(),
		Image:     solid(200, 200, colorutil.White),
		Frame:     geometry.NewSize(200, 200),
		Stalls:    []*exhibition.Stall{st},
		Geometry:  hittest.DefaultGeometry(),
		Mode:      exhibition.ModeVisitor,
	}
}

func TestPointMarkerStates(t *testing.T) {
	r := newRenderer(t)
	st := &exhibition.Stall{ID: "a", X: 50, Y: 50, Number: "A-1"}

	sc := pointScene(st)
	out := r.Render(200, 200, sc)
	assertColorNear(t, colorutil.White, out.At(100, 100), "inner dot")
	assertColorNear(t, colorutil.MarkerDefault, out.At(108, 100))

	sc.HoverID = "a"
	out = r.Render(200, 200, sc)
	assertColorNear(t, colorutil.MarkerHover, out.At(108, 100))

	sc.SelectedID = "a"
	out = r.Render(200, 200, sc)
	assertColorNear(t, colorutil.MarkerSelected, out.At(108, 100))

	// Ring sits 4px outside the disc.
	assertColorNear(t, colorutil.MarkerSelected, out.At(116, 100))

	st.Purchased = true
	sc.SelectedID, sc.HoverID = "", ""
	out = r.Render(200, 200, sc)
	assertColorNear(t, colorutil.MarkerSold, out.At(108, 100))
}

func TestMarkerSizeIsConstantOnScreen(t *testing.T) {
	r := newRenderer(t)
	st := &exhibition.Stall{ID: "a", X: 50, Y: 50}
	sc := pointScene(st)
	sc.Transform = view.Transform{Scale: 0.5, TranslateX: 50, TranslateY: 50}

	out := r.Render(200, 200, sc)
	// Stall at image (100,100) lands on screen (100,100); radius stays 12px.
	assertColorNear(t, colorutil.MarkerDefault, out.At(108, 100))
	assertColorNear(t, colorutil.White, out.At(115, 100))
}

func TestPixelRatioScalesOutput(t *testing.T) {
	r := newRenderer(t)
	st := &exhibition.Stall{ID: "a", X: 50, Y: 50}
	sc := pointScene(st)
	sc.PixelRatio = 2

	out := r.Render(400, 400, sc)
	assertColorNear(t, colorutil.White, out.At(200, 200))
	assertColorNear(t, colorutil.MarkerDefault, out.At(216, 200))
}

func TestBoxMarker(t *testing.T) {
	r := newRenderer(t)
	box := exhibition.NewBoxStall(geometry.NewRect(25, 25, 50, 50))
	box.ID = "box"
	sc := pointScene(&box)
	sc.Geometry = hittest.Geometry{Style: hittest.StyleBox}

	out := r.Render(200, 200, sc)
	inside := out.At(80, 120)
	assert.NotEqual(t, color.RGBAModel.Convert(colorutil.White), color.RGBAModel.Convert(inside))
	assertColorNear(t, colorutil.MarkerDefault, out.At(50, 100), "outline")
	assertColorNear(t, colorutil.White, out.At(20, 20))
}

func TestThumbnailMarkerAndFallback(t *testing.T) {
	r := newRenderer(t)
	green := color.RGBA{G: 200, A: 255}
	st := &exhibition.Stall{ID: "a", X: 50, Y: 50, Image: "thumb"}
	sc := pointScene(st)
	sc.Geometry = hittest.Geometry{Style: hittest.StyleThumbnail}
	sc.Thumbnails = fakeThumbs{"thumb": solid(40, 40, green)}

	out := r.Render(200, 200, sc)
	assertColorNear(t, green, out.At(100, 100))
	assertColorNear(t, green, out.At(110, 100))

	st.Image = "missing"
	out = r.Render(200, 200, sc)
	assertColorNear(t, colorutil.White, out.At(100, 100), "fallback inner dot")
	assertColorNear(t, colorutil.MarkerDefault, out.At(108, 100))
}

func TestPinMarkerHeadAboveTip(t *testing.T) {
	r := newRenderer(t)
	st := &exhibition.Stall{ID: "a", X: 50, Y: 50}
	sc := pointScene(st)
	sc.Geometry = hittest.Geometry{Style: hittest.StylePin}

	out := r.Render(200, 200, sc)
	// Head center at y = 100 - 1.6*12.
	assertColorNear(t, colorutil.White, out.At(100, 81))
	assertColorNear(t, colorutil.MarkerDefault, out.At(108, 81))
	assertColorNear(t, colorutil.MarkerDefault, out.At(100, 96))
}

func TestTooltipDrawnAboveHoveredStall(t *testing.T) {
	r := newRenderer(t)
	st := &exhibition.Stall{ID: "a", X: 50, Y: 80, Number: "A-1", Name: "ElectroWorld", Category: "Electronics"}
	sc := pointScene(st)
	sc.HoverID = "a"

	out := r.Render(200, 200, sc)
	// Tooltip bottom sits 30px above the stall point at y=160; its fill is
	// translucent black over white.
	c := color.GrayModel.Convert(out.At(100, 128)).(color.Gray)
	assert.Less(t, c.Y, uint8(100))
}

func TestDraftRectangle(t *testing.T) {
	r := newRenderer(t)
	sc := pointScene(&exhibition.Stall{ID: "a", X: 90, Y: 90})
	sc.Draft = &geometry.Rect{X: 10, Y: 10, Width: 40, Height: 40}
	out := r.Render(200, 200, sc)
	inside := color.RGBAModel.Convert(out.At(30, 30)).(color.RGBA)
	assert.Less(t, inside.R, uint8(255))
	assert.Equal(t, uint8(255), inside.A)
}

func TestWritePNG(t *testing.T) {
	r := newRenderer(t)
	var buf bytes.Buffer
	require.NoError(t, r.WritePNG(&buf, 64, 48, Scene{Transform: view.Identity(), Frame: geometry.NewSize(64, 48)}))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 48), img.Bounds())
}

func TestTooltipLines(t *testing.T) {
	st := &exhibition.Stall{Number: "A-1", Name: "Gem Palace", Category: "Jewelry",
		Extra: map[string]exhibition.FieldValue{"price": exhibition.NumberValue(120)}}

	assert.Equal(t, []string{"Stall: A-1", "Name: Gem Palace", "Category: Jewelry"}, TooltipLines(st, nil))
	assert.Equal(t, []string{"Price: 120", "Name: Gem Palace"}, TooltipLines(st, []TooltipField{
		{Key: "price", Label: "Price"},
		{Key: "contact", Label: "Contact"},
		{Key: "name", Label: "Name"},
	}))
}

func TestLayoutTooltip(t *testing.T) {
	lines := []string{"a", "b", "c"}
	widths := []float64{40, 80, 60}

	lay := LayoutTooltip(geometry.Point2D{X: 100, Y: 100}, lines, widths, 1, 12, 400)
	assert.Equal(t, geometry.NewRect(50, 100-30-64, 100, 64), lay.Rect)

	// Scale 2: everything halves in image space.
	lay = LayoutTooltip(geometry.Point2D{X: 100, Y: 100}, lines, widths, 2, 12, 400)
	assert.Equal(t, geometry.NewRect(75, 100-15-32, 50, 32), lay.Rect)

	// Clamped at the left and right edges.
	lay = LayoutTooltip(geometry.Point2D{X: 10, Y: 100}, lines, widths, 1, 12, 400)
	assert.Equal(t, 5.0, lay.Rect.X)
	lay = LayoutTooltip(geometry.Point2D{X: 395, Y: 100}, lines, widths, 1, 12, 400)
	assert.Equal(t, 400-100-5.0, lay.Rect.X)

	// Zoomed out on a narrow plan the box is wider than the image; it
	// starts at the left edge instead of spilling past it.
	lay = LayoutTooltip(geometry.Point2D{X: 100, Y: 100}, lines, []float64{150, 120, 140}, 0.5, 12, 200)
	assert.Equal(t, 0.0, lay.Rect.X)
	assert.Equal(t, 340.0, lay.Rect.Width)

	// Exactly fitting once the margins are counted.
	lay = LayoutTooltip(geometry.Point2D{X: 100, Y: 100}, lines, []float64{90}, 1, 12, 110)
	assert.Equal(t, 0.0, lay.Rect.X)
}

func TestPinTooltipClearsHead(t *testing.T) {
	r := newRenderer(t)
	st := &exhibition.Stall{ID: "a", X: 50, Y: 80, Number: "A-1", Name: "ElectroWorld", Category: "Electronics"}
	sc := pointScene(st)
	sc.Geometry = hittest.Geometry{Style: hittest.StylePin}
	sc.HoverID = "a"

	out := r.Render(200, 200, sc)
	// Tip at y=160, head center at 160-1.6*12=140.8; the ring reaches
	// about 140.8-12-4-1.5=123.3. The tooltip bottom is 30px above the
	// head center, so the ring just above the head stays visible.
	assertColorNear(t, colorutil.MarkerHover, out.At(100, 124))
	c := color.GrayModel.Convert(out.At(100, 108)).(color.Gray)
	assert.Less(t, c.Y, uint8(100))
}
