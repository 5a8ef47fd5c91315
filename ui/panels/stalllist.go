package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"expo-floorplan/internal/app"
	"expo-floorplan/internal/exhibition"
	"expo-floorplan/pkg/colorutil"
)

// StallListPanel lists the current floor's stalls with a search box.
type StallListPanel struct {
	state     *app.State
	container fyne.CanvasObject

	search     *widget.Entry
	list       *widget.List
	countLabel *widget.Label
	items      []*exhibition.Stall
	selectedID string
	updating   bool

	onPick func(id string)
}

// NewStallListPanel creates a stall list bound to state.
func NewStallListPanel(state *app.State) *StallListPanel {
	sp := &StallListPanel{state: state}

	sp.search = widget.NewEntry()
	sp.search.SetPlaceHolder("Search stalls...")
	sp.search.OnChanged = func(string) { sp.Refresh() }

	sp.countLabel = widget.NewLabel("")

	sp.list = widget.NewList(
		func() int { return len(sp.items) },
		newStallRow,
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(sp.items) {
				updateStallRow(obj, sp.items[id])
			}
		},
	)
	sp.list.OnSelected = func(id widget.ListItemID) {
		if sp.updating || id >= len(sp.items) {
			return
		}
		sp.selectedID = sp.items[id].ID
		if sp.onPick != nil {
			sp.onPick(sp.selectedID)
		}
	}

	sp.container = container.NewBorder(
		container.NewVBox(sp.search, sp.countLabel), nil, nil, nil,
		sp.list,
	)

	refresh := func(interface{}) { sp.Refresh() }
	state.On(app.EventFloorChanged, refresh)
	state.On(app.EventStallsChanged, refresh)
	state.On(app.EventExhibitionLoaded, refresh)

	sp.Refresh()
	return sp
}

// newStallRow is a list row: a category swatch and the stall label.
func newStallRow() fyne.CanvasObject {
	swatch := canvas.NewRectangle(colorutil.MarkerDefault)
	swatch.SetMinSize(fyne.NewSize(12, 12))
	swatch.CornerRadius = 6
	return container.NewHBox(container.NewCenter(swatch), widget.NewLabel("A-000  Template stall name"))
}

func updateStallRow(obj fyne.CanvasObject, st *exhibition.Stall) {
	row := obj.(*fyne.Container)
	swatch := row.Objects[0].(*fyne.Container).Objects[0].(*canvas.Rectangle)
	if st.Purchased {
		swatch.FillColor = colorutil.MarkerSold
	} else {
		swatch.FillColor = colorutil.CategoryColor(st.Category)
	}
	swatch.Refresh()
	row.Objects[1].(*widget.Label).SetText(stallLabel(st))
}

// Container returns the panel container.
func (sp *StallListPanel) Container() fyne.CanvasObject {
	return sp.container
}

// OnPick sets the callback for stalls chosen from the list.
func (sp *StallListPanel) OnPick(callback func(id string)) {
	sp.onPick = callback
}

// Items returns the stalls currently listed.
func (sp *StallListPanel) Items() []*exhibition.Stall {
	return sp.items
}

// Refresh reloads the list from the state and reapplies the search.
func (sp *StallListPanel) Refresh() {
	all := sp.state.Stalls()
	sp.items = filterStalls(all, sp.search.Text)

	sold := 0
	for _, st := range all {
		if st.Purchased {
			sold++
		}
	}
	sp.countLabel.SetText(fmt.Sprintf("%d stalls, %d sold", len(all), sold))
	sp.list.Refresh()
	sp.Select(sp.selectedID)
}

// Select highlights a stall without invoking OnPick.
func (sp *StallListPanel) Select(id string) {
	sp.updating = true
	defer func() { sp.updating = false }()

	sp.selectedID = id
	for i, st := range sp.items {
		if st.ID == id {
			sp.list.Select(i)
			return
		}
	}
	sp.list.UnselectAll()
}
