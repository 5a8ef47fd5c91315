// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"expo-floorplan/internal/app"
	"expo-floorplan/internal/exhibition"
	"expo-floorplan/internal/floorplan"
	"expo-floorplan/internal/hittest"
	"expo-floorplan/internal/logging"
	"expo-floorplan/internal/render"
	"expo-floorplan/internal/version"
	"expo-floorplan/ui/panels"
	"expo-floorplan/ui/prefs"
	"expo-floorplan/ui/viewer"
)

// Options configure the main window.
type Options struct {
	Geometry      hittest.Geometry
	MinBoxSize    float64
	ZoomFactor    float64
	TooltipFields []render.TooltipField
	Loader        floorplan.Options
	Prefs         *prefs.Prefs
	Logger        *zap.Logger
}

var modeNames = []string{"Organizer", "Visitor", "Customer"}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	state  *app.State
	prefs  *prefs.Prefs
	logger *zap.Logger

	viewer     *viewer.Viewer
	sidePanel  *panels.SidePanel
	statusBar  *widget.Label
	modeSelect *widget.RadioGroup
	uploadItem *fyne.MenuItem
}

// New creates the main window around a loaded application state.
func New(fyneApp fyne.App, state *app.State, opts Options) (*MainWindow, error) {
	logger := opts.Logger
	logger = logging.OrNop(logger)
	if opts.Prefs == nil {
		opts.Prefs = prefs.LoadFrom(filepath.Join(fyneApp.Storage().RootURI().Path(), version.Name))
	}
	if style, err := hittest.ParseStyle(opts.Prefs.String(prefs.KeyMarkerStyle, "")); err == nil {
		opts.Geometry.Style = style
	}

	win := fyneApp.NewWindow(version.Title)
	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  opts.Prefs,
		logger: logger.Named("ui"),
	}

	v, err := viewer.New(win, viewer.Options{
		Mode:              state.Mode(),
		FloorPlanURL:      state.FloorPlanURL(),
		Stalls:            state.Stalls(),
		Schema:            state.Schema(),
		TooltipFields:     opts.TooltipFields,
		Geometry:          opts.Geometry,
		MinBoxSize:        opts.MinBoxSize,
		ZoomFactor:        opts.ZoomFactor,
		Loader:            opts.Loader,
		Logger:            logger,
		Recommend:         state.Recommend,
		OnFloorPlanUpdate: mw.onFloorPlanUpdate,
		OnSelectionChange: mw.onSelectionChange,
		OnStallSave:       mw.onStallSave,
		OnStallDelete:     mw.onStallDelete,
		OnPurchase:        mw.onPurchase,
	})
	if err != nil {
		win.Close()
		return nil, err
	}
	mw.viewer = v

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.applyMode(state.Mode())
	mw.updateTitle()

	w, h := mw.prefs.WindowSize(1200, 800)
	mw.Resize(fyne.NewSize(float32(w), float32(h)))
	mw.SetOnClosed(mw.onClosed)
	return mw, nil
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.sidePanel = panels.NewSidePanel(mw.state)
	mw.sidePanel.SetWindow(mw.Window)
	mw.sidePanel.Stalls().OnPick(mw.viewer.Select)

	mw.statusBar = widget.NewLabel("Ready")

	mw.modeSelect = widget.NewRadioGroup(modeNames, func(s string) {
		if m, ok := exhibition.ParseMode(s); ok {
			mw.state.SetMode(m)
		}
	})
	mw.modeSelect.Horizontal = true
	mw.modeSelect.Required = true

	top := container.NewHBox(widget.NewLabel("Mode:"), mw.modeSelect)
	canvasArea := container.NewBorder(top, nil, nil, nil, mw.viewer.Object())

	split := container.NewHSplit(mw.sidePanel.Container(), canvasArea)
	split.SetOffset(0.25)

	mw.SetContent(container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		split,
	))
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	mw.uploadItem = fyne.NewMenuItem("Upload Floor Plan...", mw.onUploadFloorPlan)

	fileMenu := fyne.NewMenu("File",
		mw.uploadItem,
		fyne.NewMenuItem("Reload", mw.onReload),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.viewer.Canvas().ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.viewer.Canvas().ZoomOut),
		fyne.NewMenuItem("Reset View", mw.viewer.Canvas().ResetView),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Toggle Fullscreen", mw.viewer.ToggleFullscreen),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	resync := func(interface{}) {
		mw.viewer.SetFloor(mw.state.FloorPlanURL(), mw.state.Stalls())
	}
	mw.state.On(app.EventFloorChanged, func(data interface{}) {
		resync(data)
		mw.updateTitle()
	})
	mw.state.On(app.EventStallsChanged, resync)
	mw.state.On(app.EventFloorPlanChanged, resync)
	mw.state.On(app.EventHierarchyChanged, func(interface{}) { mw.updateTitle() })
	mw.state.On(app.EventExhibitionLoaded, func(interface{}) { mw.updateTitle() })

	mw.state.On(app.EventModeChanged, func(data interface{}) {
		if m, ok := data.(exhibition.Mode); ok {
			mw.applyMode(m)
			mw.prefs.SetString(prefs.KeyMode, string(m))
		}
	})
}

func (mw *MainWindow) applyMode(m exhibition.Mode) {
	mw.viewer.SetMode(m)
	title := modeNames[0]
	for _, name := range modeNames {
		if strings.EqualFold(name, string(m)) {
			title = name
		}
	}
	if mw.modeSelect.Selected != title {
		mw.modeSelect.SetSelected(title)
	}
	mw.uploadItem.Disabled = m != exhibition.ModeOrganizer
	mw.updateStatus(fmt.Sprintf("%s mode", title))
}

func (mw *MainWindow) updateTitle() {
	title := version.Title
	ex := mw.state.Exhibition()
	if ex == nil {
		mw.SetTitle(title)
		return
	}
	title += " - " + ex.Name
	if f, err := mw.state.Floor(); err == nil {
		if v, err := ex.Venue(mw.state.Current().VenueID); err == nil {
			title += " / " + v.Name
		}
		title += " / " + f.Name
	}
	mw.SetTitle(title)
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// StatusText returns the status bar text.
func (mw *MainWindow) StatusText() string {
	return mw.statusBar.Text
}

// Viewer returns the embedded floor-plan viewer.
func (mw *MainWindow) Viewer() *viewer.Viewer { return mw.viewer }

func (mw *MainWindow) onFloorPlanUpdate(stalls []*exhibition.Stall) {
	mw.updateStatus(fmt.Sprintf("%d stalls on this floor", len(stalls)))
}

func (mw *MainWindow) onSelectionChange(st *exhibition.Stall) {
	mw.sidePanel.Stalls().Select(st.ID)
	mw.updateStatus("Selected stall " + st.Number)
}

func (mw *MainWindow) onStallSave(st exhibition.Stall, isNew bool, _ []*exhibition.Stall) error {
	saved, err := mw.state.SaveStall(context.Background(), st, isNew)
	if err != nil {
		return err
	}
	verb := "Updated"
	if isNew {
		verb = "Added"
	}
	mw.updateStatus(verb + " stall " + saved.Number)
	if isNew {
		mw.viewer.Select(saved.ID)
		mw.sidePanel.Stalls().Select(saved.ID)
	}
	return nil
}

func (mw *MainWindow) onStallDelete(id string) error {
	if err := mw.state.DeleteStall(context.Background(), id); err != nil {
		return err
	}
	mw.updateStatus("Stall deleted")
	return nil
}

func (mw *MainWindow) onPurchase(st *exhibition.Stall) error {
	if _, err := mw.state.PurchaseStall(context.Background(), st.ID); err != nil {
		return err
	}
	mw.updateStatus("Purchased stall " + st.Number)
	return nil
}

// lastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) lastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDir, "")
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

func (mw *MainWindow) onUploadFloorPlan() {
	if mw.state.Mode() != exhibition.ModeOrganizer {
		return
	}
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(path))
		mw.UploadFloorPlan(path)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".tif", ".tiff"}))
	if loc := mw.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// UploadFloorPlan replaces the current floor's image with a local file.
func (mw *MainWindow) UploadFloorPlan(path string) {
	if _, err := mw.state.UploadFloorPlan(context.Background(), path); err != nil {
		mw.logger.Warn("floor plan upload failed", zap.String("path", path), zap.Error(err))
		msg := "Could not upload floor plan: " + err.Error()
		if errors.Is(err, floorplan.ErrNotImage) {
			msg = "The selected file is not an image."
		}
		dialog.ShowError(errors.New(msg), mw.Window)
		return
	}
	mw.updateStatus("Floor plan updated: " + filepath.Base(path))
}

func (mw *MainWindow) onReload() {
	if err := mw.state.Reload(context.Background()); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.updateStatus("Exhibition reloaded")
}

func (mw *MainWindow) onClosed() {
	size := mw.Canvas().Size()
	mw.prefs.SetWindowSize(float64(size.Width), float64(size.Height))
	mw.prefs.SetString(prefs.KeyMarkerStyle, string(mw.viewer.Geometry().Style))
	if err := mw.prefs.Save(); err != nil {
		mw.logger.Warn("failed to save preferences", zap.Error(err))
	}
	mw.viewer.Destroy()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+version.Title,
		fmt.Sprintf("%s v%s\n\n"+
			"Exhibition floor plans: place, browse and book stalls.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Title, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
