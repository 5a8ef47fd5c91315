package panels

import (
	"context"
	"errors"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"expo-floorplan/internal/app"
	"expo-floorplan/internal/exhibition"
	"expo-floorplan/ui/dialogs"
)

// NavigatorPanel picks the venue and floor shown and, for organizers,
// manages the venue/floor hierarchy.
type NavigatorPanel struct {
	state     *app.State
	window    fyne.Window
	container fyne.CanvasObject

	titleLabel  *widget.Label
	venueSelect *widget.Select
	floorSelect *widget.Select
	venues      []*exhibition.Venue
	floors      []*exhibition.Floor

	editButtons []*widget.Button
	updating    bool
}

// NewNavigatorPanel creates a navigator bound to state.
func NewNavigatorPanel(state *app.State) *NavigatorPanel {
	np := &NavigatorPanel{state: state}

	np.titleLabel = widget.NewLabel("")
	np.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	np.venueSelect = widget.NewSelect(nil, func(string) { np.onVenuePicked() })
	np.venueSelect.PlaceHolder = "(no venues)"
	np.floorSelect = widget.NewSelect(nil, func(string) { np.onFloorPicked() })
	np.floorSelect.PlaceHolder = "(no floors)"

	venueBar := np.actionBar(
		widget.NewButtonWithIcon("", theme.ContentAddIcon(), np.addVenue),
		widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), np.renameVenue),
		widget.NewButtonWithIcon("", theme.DeleteIcon(), np.deleteVenue),
	)
	floorBar := np.actionBar(
		widget.NewButtonWithIcon("", theme.ContentAddIcon(), np.addFloor),
		widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), np.renameFloor),
		widget.NewButtonWithIcon("", theme.DeleteIcon(), np.deleteFloor),
	)

	np.container = container.NewVBox(
		np.titleLabel,
		widget.NewForm(
			widget.NewFormItem("Venue", container.NewBorder(nil, nil, nil, venueBar, np.venueSelect)),
			widget.NewFormItem("Floor", container.NewBorder(nil, nil, nil, floorBar, np.floorSelect)),
		),
	)

	refresh := func(interface{}) { np.Refresh() }
	state.On(app.EventExhibitionLoaded, refresh)
	state.On(app.EventHierarchyChanged, refresh)
	state.On(app.EventFloorChanged, refresh)
	state.On(app.EventModeChanged, func(interface{}) { np.applyMode() })

	np.Refresh()
	return np
}

func (np *NavigatorPanel) actionBar(buttons ...*widget.Button) fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, len(buttons))
	for i, b := range buttons {
		b.Importance = widget.LowImportance
		np.editButtons = append(np.editButtons, b)
		objs[i] = b
	}
	return container.NewHBox(objs...)
}

// Container returns the panel container.
func (np *NavigatorPanel) Container() fyne.CanvasObject {
	return np.container
}

// SetWindow sets the parent window for dialogs.
func (np *NavigatorPanel) SetWindow(w fyne.Window) {
	np.window = w
}

// Refresh rebuilds both pickers from the state.
func (np *NavigatorPanel) Refresh() {
	np.updating = true
	defer func() { np.updating = false }()

	ex := np.state.Exhibition()
	cur := np.state.Current()
	np.venues, np.floors = nil, nil
	if ex == nil {
		np.titleLabel.SetText("No exhibition loaded")
	} else {
		np.titleLabel.SetText(ex.Name)
		np.venues = ex.SortedVenues()
	}

	np.venueSelect.Options = make([]string, len(np.venues))
	venueIdx := -1
	for i, v := range np.venues {
		np.venueSelect.Options[i] = v.Name
		if v.ID == cur.VenueID {
			venueIdx = i
			np.floors = v.SortedFloors()
		}
	}
	selectIndex(np.venueSelect, venueIdx)

	np.floorSelect.Options = make([]string, len(np.floors))
	floorIdx := -1
	for i, f := range np.floors {
		np.floorSelect.Options[i] = f.Name
		if f.ID == cur.FloorID {
			floorIdx = i
		}
	}
	selectIndex(np.floorSelect, floorIdx)
	np.applyMode()
}

func selectIndex(s *widget.Select, i int) {
	if i < 0 {
		s.ClearSelected()
	} else {
		s.SetSelectedIndex(i)
	}
	s.Refresh()
}

func (np *NavigatorPanel) applyMode() {
	organizer := np.state.Mode() == exhibition.ModeOrganizer
	for _, b := range np.editButtons {
		if organizer {
			b.Show()
		} else {
			b.Hide()
		}
	}
}

func (np *NavigatorPanel) currentVenue() *exhibition.Venue {
	i := np.venueSelect.SelectedIndex()
	if i < 0 || i >= len(np.venues) {
		return nil
	}
	return np.venues[i]
}

func (np *NavigatorPanel) currentFloor() *exhibition.Floor {
	i := np.floorSelect.SelectedIndex()
	if i < 0 || i >= len(np.floors) {
		return nil
	}
	return np.floors[i]
}

func (np *NavigatorPanel) onVenuePicked() {
	if np.updating {
		return
	}
	v := np.currentVenue()
	if v == nil {
		return
	}
	floors := v.SortedFloors()
	if len(floors) == 0 {
		// A venue without floors has nothing to show; keep the picker on it
		// so a floor can be added.
		np.floors = nil
		np.floorSelect.Options = nil
		selectIndex(np.floorSelect, -1)
		return
	}
	np.report(np.state.SelectFloor(exhibition.FloorRef{VenueID: v.ID, FloorID: floors[0].ID}))
}

func (np *NavigatorPanel) onFloorPicked() {
	if np.updating {
		return
	}
	v, f := np.currentVenue(), np.currentFloor()
	if v == nil || f == nil {
		return
	}
	np.report(np.state.SelectFloor(exhibition.FloorRef{VenueID: v.ID, FloorID: f.ID}))
}

func (np *NavigatorPanel) report(err error) {
	if err != nil && np.window != nil {
		dialog.ShowError(errors.New(exhibition.UserMessage(err)), np.window)
	}
}

func (np *NavigatorPanel) addVenue() {
	dialogs.ShowNameDialog("Add Venue", "", np.window, func(name string) error {
		_, err := np.state.AddVenue(context.Background(), name)
		return err
	})
}

func (np *NavigatorPanel) renameVenue() {
	v := np.currentVenue()
	if v == nil {
		return
	}
	dialogs.ShowNameDialog("Rename Venue", v.Name, np.window, func(name string) error {
		return np.state.RenameVenue(context.Background(), v.ID, name)
	})
}

func (np *NavigatorPanel) deleteVenue() {
	v := np.currentVenue()
	if v == nil {
		return
	}
	dialogs.ConfirmDelete("Venue", v.Name, np.window, func() {
		np.report(np.state.DeleteVenue(context.Background(), v.ID))
	})
}

func (np *NavigatorPanel) addFloor() {
	v := np.currentVenue()
	if v == nil {
		np.report(exhibition.ErrVenueNotFound)
		return
	}
	dialogs.ShowNameDialog("Add Floor", "", np.window, func(name string) error {
		ref, err := np.state.AddFloor(context.Background(), v.ID, name)
		if err != nil {
			return err
		}
		return np.state.SelectFloor(ref)
	})
}

func (np *NavigatorPanel) renameFloor() {
	v, f := np.currentVenue(), np.currentFloor()
	if v == nil || f == nil {
		return
	}
	dialogs.ShowNameDialog("Rename Floor", f.Name, np.window, func(name string) error {
		return np.state.RenameFloor(context.Background(), exhibition.FloorRef{VenueID: v.ID, FloorID: f.ID}, name)
	})
}

func (np *NavigatorPanel) deleteFloor() {
	v, f := np.currentVenue(), np.currentFloor()
	if v == nil || f == nil {
		return
	}
	dialogs.ConfirmDelete("Floor", f.Name, np.window, func() {
		np.report(np.state.DeleteFloor(context.Background(), exhibition.FloorRef{VenueID: v.ID, FloorID: f.ID}))
	})
}
