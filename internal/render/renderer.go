// Package render paints the floor plan, stall markers and hover tooltip.
package render

import (
	"image"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"

	"expo-floorplan/internal/exhibition"
	"expo-floorplan/internal/hittest"
	"expo-floorplan/internal/view"
	"expo-floorplan/pkg/colorutil"
	"expo-floorplan/pkg/geometry"
)

// Screen-pixel sizes of marker decorations.
const (
	ringGap        = 4.0
	ringWidth      = 3.0
	outlineWidth   = 2.0
	innerDotRatio  = 0.4
	labelFontSize  = 12.0
	statusFontSize = 16.0
	pinHeadOffset  = 1.6
)

// ImageSource returns a ready image for a source string, or nil.
type ImageSource interface {
	Get(src string) image.Image
}

// Scene is everything needed to paint one frame.
type Scene struct {
	// Transform maps image pixels to logical screen pixels.
	Transform view.Transform
	// PixelRatio is device pixels per logical pixel of the target surface.
	PixelRatio float64

	Image      image.Image
	StatusText string
	// Frame is the natural image size, or the canvas size when no image
	// is loaded. Stall percentages resolve against it.
	Frame geometry.Size

	Stalls     []*exhibition.Stall // draw order
	SelectedID string
	HoverID    string
	Mode       exhibition.Mode

	Geometry      hittest.Geometry
	Thumbnails    ImageSource
	TooltipFields []TooltipField

	// Draft is the box being drawn, in logical screen pixels.
	Draft *geometry.Rect

	Background color.Color
}

// Renderer paints scenes with fogleman/gg.
type Renderer struct {
	fonts *Fonts
}

// New creates a renderer.
func New() (*Renderer, error) {
	fonts, err := NewFonts()
	if err != nil {
		return nil, err
	}
	return &Renderer{fonts: fonts}, nil
}

// Render paints the scene into a new w×h device-pixel image.
func (r *Renderer) Render(w, h int, sc Scene) *image.RGBA {
	dc := gg.NewContext(max(1, w), max(1, h))
	r.Draw(dc, sc)
	return dc.Image().(*image.RGBA)
}

// WritePNG renders the scene and encodes it as PNG.
func (r *Renderer) WritePNG(out io.Writer, w, h int, sc Scene) error {
	dc := gg.NewContext(max(1, w), max(1, h))
	r.Draw(dc, sc)
	return dc.EncodePNG(out)
}

type frameState struct {
	sc    Scene
	xf    view.Transform // device transform
	ratio float64
	geo   hittest.Geometry
}

// Draw paints the scene onto dc. Layering: background, stalls, draft box,
// tooltip.
func (r *Renderer) Draw(dc *gg.Context, sc Scene) {
	ratio := sc.PixelRatio
	if ratio <= 0 {
		ratio = 1
	}
	geo := sc.Geometry
	if geo.Style == "" {
		geo = hittest.DefaultGeometry()
	}
	fs := frameState{sc: sc, xf: sc.Transform.Device(ratio), ratio: ratio, geo: geo}

	bg := sc.Background
	if bg == nil {
		bg = colorutil.White
	}
	dc.SetColor(bg)
	dc.Clear()

	if !fs.xf.Valid() {
		return
	}

	dc.Push()
	dc.Translate(fs.xf.TranslateX, fs.xf.TranslateY)
	dc.Scale(fs.xf.Scale, fs.xf.Scale)
	r.drawBackground(dc, fs)
	dc.Pop()

	if !sc.Frame.Empty() {
		for _, st := range sc.Stalls {
			if st != nil {
				r.drawStall(dc, fs, st)
			}
		}
	}

	if sc.Draft != nil {
		r.drawDraft(dc, fs, *sc.Draft)
	}

	if hover := fs.hovered(); hover != nil {
		r.drawTooltip(dc, fs, hover)
	}
}

func (fs frameState) hovered() *exhibition.Stall {
	if fs.sc.HoverID == "" || fs.sc.Frame.Empty() {
		return nil
	}
	for _, st := range fs.sc.Stalls {
		if st != nil && st.ID == fs.sc.HoverID {
			return st
		}
	}
	return nil
}

// drawBackground runs inside the image-space transform.
func (r *Renderer) drawBackground(dc *gg.Context, fs frameState) {
	if fs.sc.Image != nil {
		dc.DrawImage(fs.sc.Image, 0, 0)
		return
	}

	frame := fs.sc.Frame
	if frame.Empty() {
		return
	}
	dc.SetColor(colorutil.Placeholder)
	dc.DrawRectangle(0, 0, frame.Width, frame.Height)
	dc.Fill()

	if fs.sc.StatusText == "" {
		return
	}
	// The status text is sized in image space so it scales with the plan.
	c := fs.xf.ImageToScreen(frame.Center())
	dc.Push()
	dc.Identity()
	dc.SetFontFace(r.fonts.Face(Regular, statusFontSize*fs.xf.Scale))
	dc.SetColor(colorutil.StatusText)
	dc.DrawStringAnchored(fs.sc.StatusText, c.X, c.Y, 0.5, 0.5)
	dc.Pop()
}

func (fs frameState) markerColor(st *exhibition.Stall) color.RGBA {
	switch {
	case st.ID == fs.sc.SelectedID:
		return colorutil.MarkerSelected
	case st.ID == fs.sc.HoverID:
		return colorutil.MarkerHover
	case st.Purchased:
		return colorutil.MarkerSold
	default:
		return colorutil.MarkerDefault
	}
}

func (fs frameState) highlighted(st *exhibition.Stall) bool {
	return st.ID == fs.sc.SelectedID || st.ID == fs.sc.HoverID
}

func (r *Renderer) drawStall(dc *gg.Context, fs frameState, st *exhibition.Stall) {
	if fs.geo.UsesBox(st) {
		r.drawBox(dc, fs, st)
		return
	}

	style := fs.geo.Style
	if style == hittest.StyleThumbnail && fs.sc.Thumbnails != nil {
		if img := fs.sc.Thumbnails.Get(st.Image); img != nil {
			r.drawThumbnail(dc, fs, st, img)
			return
		}
	}
	if style == hittest.StylePin {
		r.drawPin(dc, fs, st)
		return
	}
	r.drawPoint(dc, fs, st)
}

// pointShape resolves a disc marker with the radius of a point marker,
// used for point markers and thumbnail fallbacks.
func (fs frameState) pointShape(st *exhibition.Stall) hittest.Shape {
	g := fs.geo
	g.Style = hittest.StylePoint
	return g.ShapeOf(st, fs.sc.Frame, fs.sc.Transform.Scale)
}

func (r *Renderer) drawPoint(dc *gg.Context, fs frameState, st *exhibition.Stall) {
	shape := fs.pointShape(st)
	r.drawDisc(dc, fs, st, shape.Center, shape.Radius)
	r.drawMarkerLabel(dc, fs, st, shape.Center, shape.Radius)
}

// drawDisc draws a filled disc with a white inner dot and an optional
// ring. center and radius are in image space.
func (r *Renderer) drawDisc(dc *gg.Context, fs frameState, st *exhibition.Stall, center geometry.Point2D, radius float64) {
	s := fs.sc.Transform.Scale
	fill := fs.markerColor(st)

	dc.Push()
	dc.Translate(fs.xf.TranslateX, fs.xf.TranslateY)
	dc.Scale(fs.xf.Scale, fs.xf.Scale)

	if fs.highlighted(st) {
		dc.SetColor(fill)
		dc.SetLineWidth(ringWidth * fs.ratio)
		dc.DrawCircle(center.X, center.Y, radius+ringGap/s)
		dc.Stroke()
	}

	dc.SetColor(fill)
	dc.DrawCircle(center.X, center.Y, radius)
	dc.Fill()

	dc.SetColor(colorutil.White)
	dc.DrawCircle(center.X, center.Y, radius*innerDotRatio)
	dc.Fill()

	dc.Pop()
}

func (r *Renderer) drawPin(dc *gg.Context, fs frameState, st *exhibition.Stall) {
	s := fs.sc.Transform.Scale
	tip := hittest.Anchor(st, fs.sc.Frame)
	rad := fs.geo.MarkerRadius(s)
	head := geometry.Point2D{X: tip.X, Y: tip.Y - pinHeadOffset*rad}
	fill := fs.markerColor(st)

	dc.Push()
	dc.Translate(fs.xf.TranslateX, fs.xf.TranslateY)
	dc.Scale(fs.xf.Scale, fs.xf.Scale)

	if fs.highlighted(st) {
		dc.SetColor(fill)
		dc.SetLineWidth(ringWidth * fs.ratio)
		dc.DrawCircle(head.X, head.Y, rad+ringGap/s)
		dc.Stroke()
	}

	// Teardrop: two curves from the tip to the sides of the head, joined
	// by the upper half circle.
	dc.MoveTo(tip.X, tip.Y)
	dc.CubicTo(tip.X-0.2*rad, tip.Y-0.6*rad, head.X-rad, head.Y+0.6*rad, head.X-rad, head.Y)
	dc.DrawArc(head.X, head.Y, rad, math.Pi, 2*math.Pi)
	dc.CubicTo(head.X+rad, head.Y+0.6*rad, tip.X+0.2*rad, tip.Y-0.6*rad, tip.X, tip.Y)
	dc.ClosePath()
	dc.SetColor(fill)
	dc.Fill()

	dc.SetColor(colorutil.White)
	dc.DrawCircle(head.X, head.Y, rad*innerDotRatio)
	dc.Fill()

	dc.Pop()

	r.drawMarkerLabel(dc, fs, st, head, rad)
}

func (r *Renderer) drawThumbnail(dc *gg.Context, fs frameState, st *exhibition.Stall, img image.Image) {
	anchor := hittest.Anchor(st, fs.sc.Frame)
	rad := fs.geo.MarkerRadius(fs.sc.Transform.Scale)
	c := fs.xf.ImageToScreen(anchor)
	rs := rad * fs.xf.Scale

	b := img.Bounds()
	side := math.Min(float64(b.Dx()), float64(b.Dy()))
	if side <= 0 {
		r.drawPoint(dc, fs, st)
		return
	}

	dc.Push()
	dc.Identity()
	dc.DrawCircle(c.X, c.Y, rs)
	dc.Clip()
	dc.Translate(c.X, c.Y)
	k := 2 * rs / side
	dc.Scale(k, k)
	dc.DrawImageAnchored(img, 0, 0, 0.5, 0.5)
	dc.ResetClip()
	dc.Pop()

	width := outlineWidth
	if fs.highlighted(st) {
		width = ringWidth
	}
	dc.Push()
	dc.Identity()
	dc.SetColor(fs.markerColor(st))
	dc.SetLineWidth(width * fs.ratio)
	dc.DrawCircle(c.X, c.Y, rs)
	dc.Stroke()
	dc.Pop()

	r.drawMarkerLabel(dc, fs, st, anchor, rad)
}

func (r *Renderer) drawBox(dc *gg.Context, fs frameState, st *exhibition.Stall) {
	rect := fs.sc.Frame.PercentToRect(st.Bounds())
	c := fs.markerColor(st)

	dc.Push()
	dc.Translate(fs.xf.TranslateX, fs.xf.TranslateY)
	dc.Scale(fs.xf.Scale, fs.xf.Scale)

	dc.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
	dc.SetColor(colorutil.WithAlpha(c, colorutil.BoxFillAlpha))
	dc.FillPreserve()
	dc.SetColor(c)
	lw := outlineWidth
	if fs.highlighted(st) {
		lw = ringWidth
	}
	dc.SetLineWidth(lw * fs.ratio)
	dc.Stroke()

	dc.Pop()

	if fs.sc.Mode == exhibition.ModeOrganizer && st.Number != "" {
		center := fs.xf.ImageToScreen(rect.Center())
		dc.Push()
		dc.Identity()
		dc.SetFontFace(r.fonts.Face(Bold, labelFontSize*fs.ratio))
		dc.SetColor(colorutil.Black)
		dc.DrawStringAnchored(st.Number, center.X, center.Y, 0.5, 0.5)
		dc.Pop()
	}
}

// drawMarkerLabel writes the stall number to the right of a disc marker in
// organizer mode.
func (r *Renderer) drawMarkerLabel(dc *gg.Context, fs frameState, st *exhibition.Stall, center geometry.Point2D, radius float64) {
	if fs.sc.Mode != exhibition.ModeOrganizer || st.Number == "" {
		return
	}
	c := fs.xf.ImageToScreen(center)
	x := c.X + radius*fs.xf.Scale + ringGap*fs.ratio

	dc.Push()
	dc.Identity()
	dc.SetFontFace(r.fonts.Face(Bold, labelFontSize*fs.ratio))
	dc.SetColor(colorutil.White)
	for _, d := range [][2]float64{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		dc.DrawStringAnchored(st.Number, x+d[0]*fs.ratio, c.Y+d[1]*fs.ratio, 0, 0.5)
	}
	dc.SetColor(colorutil.Black)
	dc.DrawStringAnchored(st.Number, x, c.Y, 0, 0.5)
	dc.Pop()
}

func (r *Renderer) drawDraft(dc *gg.Context, fs frameState, d geometry.Rect) {
	x, y := d.X*fs.ratio, d.Y*fs.ratio
	w, h := d.Width*fs.ratio, d.Height*fs.ratio

	dc.Push()
	dc.Identity()
	dc.DrawRectangle(x, y, w, h)
	dc.SetColor(colorutil.DraftFill)
	dc.FillPreserve()
	dc.SetColor(colorutil.DraftOutline)
	dc.SetLineWidth(1.5 * fs.ratio)
	dc.SetDash(4*fs.ratio, 3*fs.ratio)
	dc.Stroke()
	dc.SetDash()
	dc.Pop()
}

func (r *Renderer) drawTooltip(dc *gg.Context, fs frameState, st *exhibition.Stall) {
	lines := TooltipLines(st, fs.sc.TooltipFields)
	if len(lines) == 0 {
		return
	}

	face := r.fonts.Face(Medium, TooltipFontSize*fs.ratio)
	dc.Push()
	dc.Identity()
	dc.SetFontFace(face)

	widths := make([]float64, len(lines))
	for i, l := range lines {
		w, _ := dc.MeasureString(l)
		widths[i] = w / fs.ratio
	}

	s := fs.sc.Transform.Scale
	anchor := fs.tooltipAnchor(st)
	lay := LayoutTooltip(anchor, lines, widths, s, fs.geo.Radius, fs.sc.Frame.Width)

	tl := fs.xf.ImageToScreen(lay.Rect.TopLeft())
	k := fs.xf.Scale
	w, h := lay.Rect.Width*k, lay.Rect.Height*k

	dc.DrawRoundedRectangle(tl.X, tl.Y, w, h, lay.Radius*k)
	dc.SetColor(colorutil.TooltipFill)
	dc.FillPreserve()
	dc.SetColor(color.NRGBA{R: 255, G: 255, B: 255, A: 128})
	dc.SetLineWidth(fs.ratio)
	dc.Stroke()

	dc.SetColor(colorutil.TooltipText)
	for i, l := range lines {
		y := tl.Y + (lay.LineHeight*(float64(i)+0.5)+lay.PadY)*k
		dc.DrawStringAnchored(l, tl.X+lay.PadX*k, y, 0, 0.5)
	}
	dc.Pop()
}

// tooltipAnchor is the image-space point the tooltip sits above: the
// disc center for point and thumbnail markers, the head center for pins,
// the top center for boxes.
func (fs frameState) tooltipAnchor(st *exhibition.Stall) geometry.Point2D {
	if fs.geo.UsesBox(st) {
		rect := fs.sc.Frame.PercentToRect(st.Bounds())
		return geometry.Point2D{X: rect.Center().X, Y: rect.Y}
	}
	return fs.geo.ShapeOf(st, fs.sc.Frame, fs.sc.Transform.Scale).Center
}
