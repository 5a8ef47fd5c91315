// Package panels provides UI panels for the application.
package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"expo-floorplan/internal/app"
)

// SidePanel stacks the floor navigator above the stall list.
type SidePanel struct {
	state     *app.State
	container fyne.CanvasObject

	navigator *NavigatorPanel
	stalls    *StallListPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(state *app.State) *SidePanel {
	sp := &SidePanel{state: state}

	sp.navigator = NewNavigatorPanel(state)
	sp.stalls = NewStallListPanel(state)

	sp.container = container.NewBorder(
		widget.NewCard("Floors", "", sp.navigator.Container()), nil, nil, nil,
		widget.NewCard("Stalls", "", sp.stalls.Container()),
	)
	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.navigator.SetWindow(w)
}

// Navigator returns the venue/floor picker.
func (sp *SidePanel) Navigator() *NavigatorPanel { return sp.navigator }

// Stalls returns the stall list.
func (sp *SidePanel) Stalls() *StallListPanel { return sp.stalls }
