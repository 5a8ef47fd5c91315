// Package canvas provides the interactive floor-plan widget: pan, zoom,
// hover, selection and stall placement on top of the floor-plan image.
package canvas

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"expo-floorplan/internal/exhibition"
	"expo-floorplan/internal/floorplan"
	"expo-floorplan/internal/hittest"
	"expo-floorplan/internal/interaction"
	"expo-floorplan/internal/logging"
	"expo-floorplan/internal/render"
	"expo-floorplan/pkg/geometry"
)

// Options configure a FloorCanvas.
type Options struct {
	Mode          exhibition.Mode
	Geometry      hittest.Geometry
	MinBoxSize    float64
	ZoomFactor    float64
	TooltipFields []render.TooltipField
	Loader        floorplan.Options
	Logger        *zap.Logger
}

// FloorCanvas draws a floor plan and its stalls and turns pointer input
// into selection and placement callbacks.
type FloorCanvas struct {
	widget.BaseWidget

	mu       sync.Mutex
	ctrl     *interaction.Controller
	renderer *render.Renderer
	loader   *floorplan.Loader
	thumbs   *floorplan.Thumbnails
	fields   []render.TooltipField
	logger   *zap.Logger

	raster     *fynecanvas.Raster
	lastOutput *image.RGBA
	pending    []func()
	dirty      bool
	destroyed  bool

	// Callbacks
	onSelect      func(st *exhibition.Stall)
	onPinProposed func(x, y float64)
	onBoxProposed func(r geometry.Rect)
	onHover       func(st *exhibition.Stall)
}

var (
	_ fyne.Draggable     = (*FloorCanvas)(nil)
	_ fyne.Scrollable    = (*FloorCanvas)(nil)
	_ desktop.Mouseable  = (*FloorCanvas)(nil)
	_ desktop.Hoverable  = (*FloorCanvas)(nil)
	_ fyne.Widget        = (*FloorCanvas)(nil)
	_ render.ImageSource = (*floorplan.Thumbnails)(nil)
)

// New creates a floor canvas. The renderer's fonts are parsed once here.
func New(opts Options) (*FloorCanvas, error) {
	r, err := render.New()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	logger = logging.OrNop(logger)
	opts.Loader.Logger = logger

	fc := &FloorCanvas{
		renderer: r,
		loader:   floorplan.NewLoader(opts.Loader),
		thumbs:   floorplan.NewThumbnails(opts.Loader),
		fields:   opts.TooltipFields,
		logger:   logger,
	}
	fc.ctrl = interaction.New(interaction.Config{
		Mode:       opts.Mode,
		Geometry:   opts.Geometry,
		MinBoxSize: opts.MinBoxSize,
		ZoomFactor: opts.ZoomFactor,
	}, fc.controllerCallbacks())

	fc.loader.OnChange(fc.imageLoaded)
	fc.thumbs.OnChange(func() { fc.refreshRaster() })

	fc.raster = fynecanvas.NewRaster(fc.draw)
	fc.raster.ScaleMode = fynecanvas.ImageScalePixels
	fc.raster.SetMinSize(fyne.NewSize(320, 240))

	fc.ExtendBaseWidget(fc)
	return fc, nil
}

// controllerCallbacks queue user callbacks so they run after the widget
// lock is released.
func (fc *FloorCanvas) controllerCallbacks() interaction.Callbacks {
	return interaction.Callbacks{
		OnSelect: func(st *exhibition.Stall) {
			if fn := fc.onSelect; fn != nil {
				st := st.Clone()
				fc.pending = append(fc.pending, func() { fn(st) })
			}
		},
		OnPinProposed: func(x, y float64) {
			if fn := fc.onPinProposed; fn != nil {
				fc.pending = append(fc.pending, func() { fn(x, y) })
			}
		},
		OnBoxProposed: func(r geometry.Rect) {
			if fn := fc.onBoxProposed; fn != nil {
				fc.pending = append(fc.pending, func() { fn(r) })
			}
		},
		OnHover: func(st *exhibition.Stall) {
			if fn := fc.onHover; fn != nil {
				if st != nil {
					st = st.Clone()
				}
				fc.pending = append(fc.pending, func() { fn(st) })
			}
		},
		OnChange: func() { fc.dirty = true },
	}
}

// do runs fn under the widget lock, then delivers queued callbacks and
// repaints if anything changed.
func (fc *FloorCanvas) do(fn func(c *interaction.Controller)) {
	fc.mu.Lock()
	if fc.destroyed {
		fc.mu.Unlock()
		return
	}
	fn(fc.ctrl)
	pending := fc.pending
	fc.pending = nil
	dirty := fc.dirty
	fc.dirty = false
	fc.mu.Unlock()

	for _, cb := range pending {
		cb()
	}
	if dirty {
		fc.refreshRaster()
	}
}

func (fc *FloorCanvas) refreshRaster() {
	fc.raster.Refresh()
}

func (fc *FloorCanvas) imageLoaded() {
	size := fc.loader.Size()
	if err := fc.loader.Err(); err != nil {
		fc.logger.Debug("floor plan unavailable", zap.Error(err))
	}
	fc.do(func(c *interaction.Controller) { c.SetImageSize(size) })
	// The status text changes even when the size does not.
	fc.refreshRaster()
}

// OnSelect sets the callback for clicks on a stall.
func (fc *FloorCanvas) OnSelect(callback func(st *exhibition.Stall)) {
	fc.mu.Lock()
	fc.onSelect = callback
	fc.mu.Unlock()
}

// OnPinProposed sets the callback for organizer clicks on empty space.
// Coordinates are percentages of the image.
func (fc *FloorCanvas) OnPinProposed(callback func(x, y float64)) {
	fc.mu.Lock()
	fc.onPinProposed = callback
	fc.mu.Unlock()
}

// OnBoxProposed sets the callback for boxes drawn in organizer box mode.
func (fc *FloorCanvas) OnBoxProposed(callback func(r geometry.Rect)) {
	fc.mu.Lock()
	fc.onBoxProposed = callback
	fc.mu.Unlock()
}

// OnHover sets the callback for hover changes; nil means no stall.
func (fc *FloorCanvas) OnHover(callback func(st *exhibition.Stall)) {
	fc.mu.Lock()
	fc.onHover = callback
	fc.mu.Unlock()
}

// SetSource starts loading a floor-plan image.
func (fc *FloorCanvas) SetSource(src string) {
	fc.loader.Load(src)
	size := fc.loader.Size()
	fc.do(func(c *interaction.Controller) { c.SetImageSize(size) })
	fc.refreshRaster()
}

// Source returns the floor-plan image source.
func (fc *FloorCanvas) Source() string { return fc.loader.Source() }

// Status returns the floor-plan load status.
func (fc *FloorCanvas) Status() floorplan.Status {
	_, st := fc.loader.Image()
	return st
}

// SetStalls replaces the stalls shown.
func (fc *FloorCanvas) SetStalls(stalls []*exhibition.Stall) {
	copies := make([]*exhibition.Stall, 0, len(stalls))
	for _, st := range stalls {
		if st != nil {
			copies = append(copies, st.Clone())
		}
	}
	fc.do(func(c *interaction.Controller) { c.SetStalls(copies) })
}

// Select highlights a stall without firing OnSelect.
func (fc *FloorCanvas) Select(id string) {
	fc.do(func(c *interaction.Controller) { c.Select(id) })
}

// SelectedID returns the highlighted stall id.
func (fc *FloorCanvas) SelectedID() string {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.ctrl.SelectedID()
}

// SetMode switches between organizer, visitor and customer behavior.
func (fc *FloorCanvas) SetMode(m exhibition.Mode) {
	fc.do(func(c *interaction.Controller) {
		cfg := c.Config()
		cfg.Mode = m
		c.SetConfig(cfg)
	})
}

// SetGeometry switches the marker style and size.
func (fc *FloorCanvas) SetGeometry(g hittest.Geometry) {
	fc.do(func(c *interaction.Controller) {
		cfg := c.Config()
		cfg.Geometry = g
		c.SetConfig(cfg)
	})
}

// SetTooltipFields replaces the hover tooltip lines.
func (fc *FloorCanvas) SetTooltipFields(fields []render.TooltipField) {
	fc.mu.Lock()
	fc.fields = fields
	fc.mu.Unlock()
	fc.refreshRaster()
}

// ZoomIn zooms around the canvas center.
func (fc *FloorCanvas) ZoomIn() { fc.do((*interaction.Controller).ZoomIn) }

// ZoomOut zooms around the canvas center.
func (fc *FloorCanvas) ZoomOut() { fc.do((*interaction.Controller).ZoomOut) }

// ResetView fits the floor plan back into the canvas.
func (fc *FloorCanvas) ResetView() { fc.do((*interaction.Controller).Reset) }

// SetFullscreen tells the canvas the window entered or left fullscreen.
func (fc *FloorCanvas) SetFullscreen(on bool) {
	fc.do(func(c *interaction.Controller) { c.SetFullscreen(on) })
}

// Scale returns the current zoom scale.
func (fc *FloorCanvas) Scale() float64 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.ctrl.Transform().Scale
}

// Resize refits the floor plan to the new size synchronously.
func (fc *FloorCanvas) Resize(size fyne.Size) {
	fc.BaseWidget.Resize(size)
	vp := geometry.NewSize(float64(size.Width), float64(size.Height))
	fc.do(func(c *interaction.Controller) { c.SetViewport(vp) })
}

// GetRenderedOutput returns the last rendered frame.
func (fc *FloorCanvas) GetRenderedOutput() *image.RGBA {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.lastOutput
}

// Destroy stops image loading and detaches all callbacks.
func (fc *FloorCanvas) Destroy() {
	fc.mu.Lock()
	fc.destroyed = true
	fc.onSelect, fc.onPinProposed, fc.onBoxProposed, fc.onHover = nil, nil, nil, nil
	fc.ctrl.SetCallbacks(interaction.Callbacks{})
	fc.pending = nil
	fc.mu.Unlock()

	fc.loader.Close()
	fc.thumbs.Close()
}

// draw renders the current scene at the raster's pixel size.
func (fc *FloorCanvas) draw(w, h int) image.Image {
	img, _ := fc.loader.Image()
	status := fc.loader.StatusText()

	fc.mu.Lock()
	defer fc.mu.Unlock()

	ratio := 1.0
	if width := fc.Size().Width; width > 0 && w > 0 {
		ratio = float64(w) / float64(width)
	}
	cfg := fc.ctrl.Config()
	out := fc.renderer.Render(w, h, render.Scene{
		Transform:     fc.ctrl.Transform(),
		PixelRatio:    ratio,
		Image:         img,
		StatusText:    status,
		Frame:         fc.ctrl.Frame(),
		Stalls:        fc.ctrl.Stalls(),
		SelectedID:    fc.ctrl.SelectedID(),
		HoverID:       fc.ctrl.HoverID(),
		Mode:          cfg.Mode,
		Geometry:      cfg.Geometry,
		Thumbnails:    fc.thumbs,
		TooltipFields: fc.fields,
		Draft:         fc.ctrl.Draft(),
	})
	fc.lastOutput = out
	return out
}

func toPoint(p fyne.Position) geometry.Point2D {
	return geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
}

// MouseDown starts a gesture with the primary button.
func (fc *FloorCanvas) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	p := toPoint(ev.Position)
	fc.do(func(c *interaction.Controller) { c.PointerDown(p) })
}

// MouseUp ends a gesture that did not turn into a drag.
func (fc *FloorCanvas) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	p := toPoint(ev.Position)
	fc.do(func(c *interaction.Controller) {
		if c.State() != interaction.Idle {
			c.PointerUp(p)
		}
	})
}

// Dragged pans the view or extends the box being drawn.
func (fc *FloorCanvas) Dragged(ev *fyne.DragEvent) {
	p := toPoint(ev.Position)
	fc.do(func(c *interaction.Controller) { c.PointerMove(p) })
}

// DragEnd finishes a drag at the last pointer position.
func (fc *FloorCanvas) DragEnd() {
	fc.do(func(c *interaction.Controller) {
		if c.State() != interaction.Idle {
			c.PointerUp(c.LastPoint())
		}
	})
}

// Scrolled zooms around the pointer.
func (fc *FloorCanvas) Scrolled(ev *fyne.ScrollEvent) {
	p := toPoint(ev.Position)
	dy := float64(ev.Scrolled.DY)
	fc.do(func(c *interaction.Controller) { c.Scroll(p, dy) })
}

// MouseIn is part of desktop.Hoverable.
func (fc *FloorCanvas) MouseIn(ev *desktop.MouseEvent) {
	fc.MouseMoved(ev)
}

// MouseMoved updates the hovered stall.
func (fc *FloorCanvas) MouseMoved(ev *desktop.MouseEvent) {
	p := toPoint(ev.Position)
	fc.do(func(c *interaction.Controller) { c.PointerMove(p) })
}

// MouseOut cancels any gesture and clears hover.
func (fc *FloorCanvas) MouseOut() {
	fc.do((*interaction.Controller).PointerLeave)
}

// CreateRenderer is part of fyne.Widget.
func (fc *FloorCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &floorCanvasRenderer{fc: fc}
}

type floorCanvasRenderer struct {
	fc *FloorCanvas
}

func (r *floorCanvasRenderer) Layout(size fyne.Size) {
	r.fc.raster.Resize(size)
}

func (r *floorCanvasRenderer) MinSize() fyne.Size {
	return r.fc.raster.MinSize()
}

func (r *floorCanvasRenderer) Refresh() {
	r.fc.raster.Refresh()
}

func (r *floorCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.fc.raster}
}

func (r *floorCanvasRenderer) Destroy() {}
