// Package viewer embeds a floor-plan canvas with its toolbar and dialogs.
// The caller owns the returned handle; nothing is registered globally.
package viewer

import (
	"errors"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"expo-floorplan/internal/exhibition"
	"expo-floorplan/internal/floorplan"
	"expo-floorplan/internal/hittest"
	"expo-floorplan/internal/logging"
	"expo-floorplan/internal/render"
	"expo-floorplan/pkg/geometry"
	"expo-floorplan/ui/canvas"
	"expo-floorplan/ui/dialogs"
)

// Options configure a Viewer. Callbacks may be nil. The save, delete and
// purchase callbacks may veto a change by returning an error, which is
// shown to the user and leaves the viewer unchanged.
type Options struct {
	Mode          exhibition.Mode
	FloorPlanURL  string
	Stalls        []*exhibition.Stall
	Schema        *exhibition.Schema
	TooltipFields []render.TooltipField
	Geometry      hittest.Geometry
	MinBoxSize    float64
	ZoomFactor    float64
	Loader        floorplan.Options
	Logger        *zap.Logger

	// Recommend enables the recommendation action in visitor mode.
	Recommend dialogs.RecommendFunc

	OnFloorPlanUpdate func(stalls []*exhibition.Stall)
	OnSelectionChange func(st *exhibition.Stall)
	OnStallSave       func(st exhibition.Stall, isNew bool, all []*exhibition.Stall) error
	OnStallDelete     func(id string) error
	OnPurchase        func(st *exhibition.Stall) error
}

// Viewer is a floor-plan viewer bound to one window. It must be used from
// the UI goroutine.
type Viewer struct {
	win    fyne.Window
	opts   Options
	logger *zap.Logger

	canvas *canvas.FloorCanvas
	floor  *exhibition.Floor
	mode   exhibition.Mode
	// gen counts SetFloor calls so a host that resyncs from inside a
	// callback is not overwritten by the viewer's own copy.
	gen uint64

	styleSelect *widget.Select
	modeLabel   *widget.Label
	object      fyne.CanvasObject
	destroyed   bool
}

// New creates a viewer showing opts.FloorPlanURL and opts.Stalls.
func New(win fyne.Window, opts Options) (*Viewer, error) {
	logger := opts.Logger
	logger = logging.OrNop(logger)
	if opts.Schema == nil {
		opts.Schema = exhibition.DefaultSchema()
	}
	if opts.Mode == "" {
		opts.Mode = exhibition.ModeVisitor
	}
	if opts.Geometry.Style == "" {
		opts.Geometry = hittest.DefaultGeometry()
	}

	fc, err := canvas.New(canvas.Options{
		Mode:          opts.Mode,
		Geometry:      opts.Geometry,
		MinBoxSize:    opts.MinBoxSize,
		ZoomFactor:    opts.ZoomFactor,
		TooltipFields: opts.TooltipFields,
		Loader:        opts.Loader,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		win:    win,
		opts:   opts,
		logger: logger.Named("viewer"),
		canvas: fc,
		mode:   opts.Mode,
	}
	fc.OnSelect(v.handleSelect)
	fc.OnPinProposed(func(x, y float64) { v.editNew(exhibition.NewPinStall(x, y)) })
	fc.OnBoxProposed(func(r geometry.Rect) { v.editNew(exhibition.NewBoxStall(r)) })

	v.object = container.NewBorder(v.createToolbar(), nil, nil, nil, fc)
	v.SetFloor(opts.FloorPlanURL, opts.Stalls)
	return v, nil
}

func (v *Viewer) createToolbar() fyne.CanvasObject {
	styles := make([]string, len(hittest.Styles))
	for i, s := range hittest.Styles {
		styles[i] = string(s)
	}
	v.styleSelect = widget.NewSelect(styles, func(s string) {
		style, err := hittest.ParseStyle(s)
		if err != nil {
			return
		}
		g := v.opts.Geometry
		g.Style = style
		v.opts.Geometry = g
		v.canvas.SetGeometry(g)
	})
	v.styleSelect.SetSelected(string(v.opts.Geometry.Style))

	v.modeLabel = widget.NewLabel(modeTitle(v.mode))

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.ZoomInIcon(), v.canvas.ZoomIn),
		widget.NewToolbarAction(theme.ZoomOutIcon(), v.canvas.ZoomOut),
		widget.NewToolbarAction(theme.ZoomFitIcon(), v.canvas.ResetView),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ViewFullScreenIcon(), v.ToggleFullscreen),
	)
	return container.NewHBox(tb, widget.NewLabel("Markers:"), v.styleSelect, v.modeLabel)
}

func modeTitle(m exhibition.Mode) string {
	switch m {
	case exhibition.ModeOrganizer:
		return "Organizer mode: click to add a stall"
	case exhibition.ModeCustomer:
		return "Customer mode: click a stall to purchase"
	default:
		return "Visitor mode"
	}
}

// Object returns the viewer's root canvas object.
func (v *Viewer) Object() fyne.CanvasObject { return v.object }

// Canvas returns the floor canvas widget.
func (v *Viewer) Canvas() *canvas.FloorCanvas { return v.canvas }

// Geometry returns the marker geometry in use.
func (v *Viewer) Geometry() hittest.Geometry { return v.opts.Geometry }

// Mode returns the current mode.
func (v *Viewer) Mode() exhibition.Mode { return v.mode }

// SetFloor replaces the floor-plan image and stalls.
func (v *Viewer) SetFloor(url string, stalls []*exhibition.Stall) {
	f := &exhibition.Floor{FloorPlanURL: url, Stalls: make(map[string]*exhibition.Stall, len(stalls))}
	for _, st := range stalls {
		if st == nil {
			continue
		}
		f.Stalls[st.ID] = st.Clone()
		if st.Seq >= f.NextSeq {
			f.NextSeq = st.Seq + 1
		}
	}
	v.floor = f
	v.gen++
	v.canvas.SetSource(url)
	v.canvas.SetStalls(f.OrderedStalls())
}

// Stalls returns copies of the stalls in draw order.
func (v *Viewer) Stalls() []*exhibition.Stall {
	ordered := v.floor.OrderedStalls()
	out := make([]*exhibition.Stall, len(ordered))
	for i, st := range ordered {
		out[i] = st.Clone()
	}
	return out
}

// Select highlights a stall without opening it.
func (v *Viewer) Select(id string) {
	v.canvas.Select(id)
}

// SetMode switches between organizer, visitor and customer behavior.
func (v *Viewer) SetMode(m exhibition.Mode) {
	v.mode = m
	v.canvas.SetMode(m)
	if v.modeLabel != nil {
		v.modeLabel.SetText(modeTitle(m))
	}
}

// SetSchema replaces the stall field schema used by the dialogs.
func (v *Viewer) SetSchema(s *exhibition.Schema) {
	if s == nil {
		s = exhibition.DefaultSchema()
	}
	v.opts.Schema = s
}

// ToggleFullscreen flips the window's fullscreen state and refits.
func (v *Viewer) ToggleFullscreen() {
	on := !v.win.FullScreen()
	v.win.SetFullScreen(on)
	v.canvas.SetFullscreen(on)
}

// Destroy detaches all callbacks and stops image loading.
func (v *Viewer) Destroy() {
	if v.destroyed {
		return
	}
	v.destroyed = true
	v.opts.OnFloorPlanUpdate = nil
	v.opts.OnSelectionChange = nil
	v.opts.OnStallSave = nil
	v.opts.OnStallDelete = nil
	v.opts.OnPurchase = nil
	v.opts.Recommend = nil
	v.canvas.Destroy()
}

func (v *Viewer) handleSelect(st *exhibition.Stall) {
	if v.destroyed {
		return
	}
	if cb := v.opts.OnSelectionChange; cb != nil {
		cb(st.Clone())
	}

	if v.mode == exhibition.ModeOrganizer {
		id := st.ID
		dialogs.NewStallEditDialog(*st, false, v.opts.Schema, v.win,
			func(edited exhibition.Stall) error { return v.SaveStall(edited) },
			func() error { return v.DeleteStall(id) },
		).Show()
		return
	}

	var purchase func(*exhibition.Stall) error
	if v.mode == exhibition.ModeCustomer {
		purchase = func(st *exhibition.Stall) error { return v.Purchase(st.ID) }
	}
	dialogs.NewStallDetailsDialog(st, v.opts.Schema, v.mode, v.win, v.opts.Recommend, purchase).Show()
}

func (v *Viewer) editNew(st exhibition.Stall) {
	if v.destroyed || v.mode != exhibition.ModeOrganizer {
		return
	}
	dialogs.NewStallEditDialog(st, true, v.opts.Schema, v.win,
		func(edited exhibition.Stall) error { return v.SaveStall(edited) }, nil).Show()
}

// SaveStall validates and stores a stall on the viewer's floor, then
// notifies OnStallSave and OnFloorPlanUpdate. A stall with an unknown or
// empty id is created.
func (v *Viewer) SaveStall(st exhibition.Stall) error {
	working := v.floor.Clone()
	saved, created, err := working.SaveStall(v.opts.Schema, st)
	if err != nil {
		return err
	}
	gen := v.gen
	if cb := v.opts.OnStallSave; cb != nil {
		if err := cb(*saved, created, cloneAll(working.OrderedStalls())); err != nil {
			v.logger.Warn("stall save rejected", zap.String("id", saved.ID), zap.Error(err))
			return err
		}
	}
	if v.commit(gen, working) && created {
		v.canvas.Select(saved.ID)
	}
	return nil
}

// DeleteStall removes a stall after OnStallDelete accepts it.
func (v *Viewer) DeleteStall(id string) error {
	working := v.floor.Clone()
	if err := working.DeleteStall(id); err != nil {
		return err
	}
	gen := v.gen
	if cb := v.opts.OnStallDelete; cb != nil {
		if err := cb(id); err != nil {
			return err
		}
	}
	v.commit(gen, working)
	return nil
}

// Purchase marks a stall as bought after OnPurchase accepts it.
func (v *Viewer) Purchase(id string) error {
	if v.mode != exhibition.ModeCustomer {
		return errors.New("purchases are only available in customer mode")
	}
	working := v.floor.Clone()
	bought, err := working.MarkPurchased(id)
	if err != nil {
		return err
	}
	gen := v.gen
	if cb := v.opts.OnPurchase; cb != nil {
		if err := cb(bought); err != nil {
			return err
		}
	}
	v.commit(gen, working)
	dialog.ShowInformation("Stall Purchased", "Stall "+bought.Number+" is now yours.", v.win)
	return nil
}

// commit installs f unless the host replaced the floor meanwhile.
func (v *Viewer) commit(gen uint64, f *exhibition.Floor) bool {
	if gen != v.gen {
		return false
	}
	v.floor = f
	ordered := f.OrderedStalls()
	v.canvas.SetStalls(ordered)
	if cb := v.opts.OnFloorPlanUpdate; cb != nil {
		cb(cloneAll(ordered))
	}
	return true
}

func cloneAll(stalls []*exhibition.Stall) []*exhibition.Stall {
	out := make([]*exhibition.Stall, len(stalls))
	for i, st := range stalls {
		out[i] = st.Clone()
	}
	return out
}
