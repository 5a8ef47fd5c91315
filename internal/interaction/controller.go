// Package interaction turns pointer input into pan, zoom, selection and
// stall proposals on the floor-plan canvas.
package interaction

import (
	"expo-floorplan/internal/exhibition"
	"expo-floorplan/internal/hittest"
	"expo-floorplan/internal/view"
	"expo-floorplan/pkg/geometry"
)

// State of the pointer state machine.
type State int

const (
	Idle State = iota
	Pressed
	Panning
	Drawing
)

func (s State) String() string {
	switch s {
	case Pressed:
		return "pressed"
	case Panning:
		return "panning"
	case Drawing:
		return "drawing"
	default:
		return "idle"
	}
}

// Defaults for Config.
const (
	DefaultMinBoxSize = 5.0
	DefaultClickSlop  = 3.0
)

// Config controls how input is interpreted.
type Config struct {
	Mode     exhibition.Mode
	Geometry hittest.Geometry
	// MinBoxSize is the smallest box, in screen pixels on each side, that
	// becomes a proposal.
	MinBoxSize float64
	// ClickSlop is how far the pointer may move between press and release
	// and still count as a click.
	ClickSlop float64
	// ZoomFactor is applied per wheel notch or zoom button press.
	ZoomFactor float64
}

// Callbacks receive the controller's outputs. Any may be nil.
type Callbacks struct {
	OnSelect      func(st *exhibition.Stall)
	OnPinProposed func(x, y float64)
	OnBoxProposed func(r geometry.Rect)
	OnHover       func(st *exhibition.Stall)
	// OnChange asks the host to repaint.
	OnChange func()
}

// Controller owns the view transform and pointer state for one canvas.
// It is not safe for concurrent use.
type Controller struct {
	cfg Config
	cb  Callbacks

	xf        view.Transform
	viewport  geometry.Size
	imageSize geometry.Size

	stalls     []*exhibition.Stall
	selectedID string
	hoverID    string

	state      State
	pressAt    geometry.Point2D
	lastAt     geometry.Point2D
	pressStall *exhibition.Stall
	moved      bool
	draft      *geometry.Rect

	fullscreen bool
}

// New creates an idle controller with the identity transform.
func New(cfg Config, cb Callbacks) *Controller {
	c := &Controller{xf: view.Identity(), cb: cb}
	c.SetConfig(cfg)
	return c
}

// SetConfig replaces the configuration. Any gesture in progress is dropped.
func (c *Controller) SetConfig(cfg Config) {
	if cfg.Mode == "" {
		cfg.Mode = exhibition.ModeVisitor
	}
	if cfg.Geometry.Style == "" {
		cfg.Geometry = hittest.DefaultGeometry()
	}
	if cfg.MinBoxSize <= 0 {
		cfg.MinBoxSize = DefaultMinBoxSize
	}
	if cfg.ClickSlop <= 0 {
		cfg.ClickSlop = DefaultClickSlop
	}
	if cfg.ZoomFactor <= 1 {
		cfg.ZoomFactor = view.ZoomFactor
	}
	c.cfg = cfg
	c.cancelGesture()
	c.changed()
}

// SetCallbacks replaces the callbacks.
func (c *Controller) SetCallbacks(cb Callbacks) {
	c.cb = cb
}

// Config returns the current configuration.
func (c *Controller) Config() Config { return c.cfg }

// Transform returns the current image-to-screen transform.
func (c *Controller) Transform() view.Transform { return c.xf }

// State returns the pointer state.
func (c *Controller) State() State { return c.state }

// SelectedID returns the selected stall id, or "".
func (c *Controller) SelectedID() string { return c.selectedID }

// HoverID returns the hovered stall id, or "".
func (c *Controller) HoverID() string { return c.hoverID }

// Fullscreen reports the last fullscreen state set.
func (c *Controller) Fullscreen() bool { return c.fullscreen }

// Draft returns the box being drawn in screen pixels, or nil.
func (c *Controller) Draft() *geometry.Rect {
	if c.draft == nil {
		return nil
	}
	d := *c.draft
	return &d
}

// LastPoint returns the last pointer position seen during a gesture.
func (c *Controller) LastPoint() geometry.Point2D { return c.lastAt }

// Stalls returns the stalls in draw order.
func (c *Controller) Stalls() []*exhibition.Stall { return c.stalls }

// Frame is the reference size stall percentages resolve against: the
// natural image size, or the viewport when no image is loaded.
func (c *Controller) Frame() geometry.Size {
	if !c.imageSize.Empty() {
		return c.imageSize
	}
	return c.viewport
}

// HasImage reports whether a floor-plan bitmap has been loaded.
func (c *Controller) HasImage() bool { return !c.imageSize.Empty() }

// SetViewport records the canvas size in screen pixels and refits.
func (c *Controller) SetViewport(size geometry.Size) {
	if size == c.viewport {
		return
	}
	c.viewport = size
	c.fit()
	c.changed()
}

// SetImageSize records the natural bitmap size (zero when there is no
// image) and refits when it changed.
func (c *Controller) SetImageSize(size geometry.Size) {
	if size == c.imageSize {
		return
	}
	c.imageSize = size
	c.fit()
	c.changed()
}

// SetStalls replaces the stall list. Selection and hover are dropped when
// their stall disappears.
func (c *Controller) SetStalls(stalls []*exhibition.Stall) {
	ordered := make([]*exhibition.Stall, 0, len(stalls))
	for _, st := range stalls {
		if st != nil {
			ordered = append(ordered, st)
		}
	}
	exhibition.SortStalls(ordered)
	c.stalls = ordered

	if c.selectedID != "" && c.find(c.selectedID) == nil {
		c.selectedID = ""
	}
	if c.hoverID != "" && c.find(c.hoverID) == nil {
		c.setHover(nil)
	}
	if c.pressStall != nil && c.find(c.pressStall.ID) == nil {
		c.pressStall = nil
	}
	c.changed()
}

// Select marks a stall as selected without invoking OnSelect. An unknown
// or empty id clears the selection.
func (c *Controller) Select(id string) {
	if c.find(id) == nil {
		id = ""
	}
	if id == c.selectedID {
		return
	}
	c.selectedID = id
	c.changed()
}

func (c *Controller) find(id string) *exhibition.Stall {
	if id == "" {
		return nil
	}
	for _, st := range c.stalls {
		if st.ID == id {
			return st
		}
	}
	return nil
}

// StallAt returns the top-most stall under a screen point.
func (c *Controller) StallAt(p geometry.Point2D) *exhibition.Stall {
	return c.cfg.Geometry.FindStallAt(p, c.xf, c.stalls, c.Frame())
}

func (c *Controller) boxMode() bool {
	return c.cfg.Mode == exhibition.ModeOrganizer && c.cfg.Geometry.Style == hittest.StyleBox
}

// PointerDown starts a gesture at screen point p.
func (c *Controller) PointerDown(p geometry.Point2D) {
	c.pressAt, c.lastAt = p, p
	c.moved = false
	c.pressStall = c.StallAt(p)

	if c.pressStall == nil && c.boxMode() && c.HasImage() {
		c.state = Drawing
		c.draft = &geometry.Rect{X: p.X, Y: p.Y}
		c.changed()
		return
	}
	c.state = Pressed
}

// PointerMove handles motion with the primary button held.
func (c *Controller) PointerMove(p geometry.Point2D) {
	if c.state == Idle {
		c.Hover(p)
		return
	}
	if !c.moved && p.Distance(c.pressAt) > c.cfg.ClickSlop {
		c.moved = true
	}

	switch c.state {
	case Pressed:
		if c.moved && c.pressStall == nil {
			c.state = Panning
			c.xf = c.xf.Pan(p.X-c.pressAt.X, p.Y-c.pressAt.Y)
			c.changed()
		}
	case Panning:
		c.xf = c.xf.Pan(p.X-c.lastAt.X, p.Y-c.lastAt.Y)
		c.changed()
	case Drawing:
		r := geometry.RectFromCorners(c.pressAt, p)
		c.draft = &r
		c.changed()
	}
	c.lastAt = p
}

// PointerUp ends the gesture at screen point p.
func (c *Controller) PointerUp(p geometry.Point2D) {
	if !c.moved && p.Distance(c.pressAt) > c.cfg.ClickSlop {
		c.moved = true
	}

	switch c.state {
	case Drawing:
		c.finishBox(geometry.RectFromCorners(c.pressAt, p))
	case Pressed:
		if !c.moved {
			c.click()
		}
	}

	c.cancelGesture()
	c.changed()
	c.Hover(p)
}

// PointerLeave ends any gesture without producing output and clears hover.
func (c *Controller) PointerLeave() {
	wasActive := c.state != Idle
	c.cancelGesture()
	hoverCleared := c.setHover(nil)
	if wasActive || hoverCleared {
		c.changed()
	}
}

func (c *Controller) cancelGesture() {
	c.state = Idle
	c.draft = nil
	c.pressStall = nil
	c.moved = false
}

func (c *Controller) click() {
	if st := c.pressStall; st != nil {
		c.selectedID = st.ID
		if c.cb.OnSelect != nil {
			c.cb.OnSelect(st)
		}
		return
	}
	if c.cfg.Mode != exhibition.ModeOrganizer || c.boxMode() || !c.HasImage() {
		return
	}

	pt := c.xf.ScreenToImage(c.pressAt)
	if pt.X < 0 || pt.Y < 0 || pt.X > c.imageSize.Width || pt.Y > c.imageSize.Height {
		return
	}
	pct := c.imageSize.PointToPercent(pt)
	if c.cb.OnPinProposed != nil {
		c.cb.OnPinProposed(pct.X, pct.Y)
	}
}

func (c *Controller) finishBox(screen geometry.Rect) {
	if screen.Width < c.cfg.MinBoxSize || screen.Height < c.cfg.MinBoxSize {
		return
	}
	a := c.xf.ScreenToImage(screen.TopLeft())
	b := c.xf.ScreenToImage(screen.BottomRight())
	img := geometry.RectFromCorners(a, b).Intersect(geometry.NewRect(0, 0, c.imageSize.Width, c.imageSize.Height))
	if img.Width <= 0 || img.Height <= 0 {
		return
	}
	if c.cb.OnBoxProposed != nil {
		c.cb.OnBoxProposed(c.imageSize.RectToPercent(img))
	}
}

// Hover updates the highlighted stall for a pointer at p with no button
// held.
func (c *Controller) Hover(p geometry.Point2D) {
	if c.state != Idle {
		return
	}
	if c.setHover(c.StallAt(p)) {
		c.changed()
	}
}

func (c *Controller) setHover(st *exhibition.Stall) bool {
	id := ""
	if st != nil {
		id = st.ID
	}
	if id == c.hoverID {
		return false
	}
	c.hoverID = id
	if c.cb.OnHover != nil {
		c.cb.OnHover(st)
	}
	return true
}

// Scroll zooms around the pointer: positive dy zooms in.
func (c *Controller) Scroll(p geometry.Point2D, dy float64) {
	switch {
	case dy > 0:
		c.zoom(view.ZoomIn, p)
	case dy < 0:
		c.zoom(view.ZoomOut, p)
	}
}

// ZoomIn zooms around the viewport center.
func (c *Controller) ZoomIn() { c.zoom(view.ZoomIn, c.viewport.Center()) }

// ZoomOut zooms around the viewport center.
func (c *Controller) ZoomOut() { c.zoom(view.ZoomOut, c.viewport.Center()) }

func (c *Controller) zoom(dir view.Direction, center geometry.Point2D) {
	factor := c.cfg.ZoomFactor
	if dir == view.ZoomOut {
		factor = 1 / factor
	}
	c.xf = c.xf.ZoomBy(factor, center)
	c.changed()
}

// Reset fits the image back into the viewport.
func (c *Controller) Reset() {
	c.fit()
	c.changed()
}

// SetFullscreen records a fullscreen change and refits.
func (c *Controller) SetFullscreen(on bool) {
	c.fullscreen = on
	c.fit()
	c.changed()
}

func (c *Controller) fit() {
	if c.imageSize.Empty() {
		c.xf = view.Identity()
		return
	}
	c.xf = view.FitToContainer(c.imageSize, c.viewport)
}

func (c *Controller) changed() {
	if c.cb.OnChange != nil {
		c.cb.OnChange()
	}
}
