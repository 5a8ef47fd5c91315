package panels

import (
	"context"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expo-floorplan/internal/app"
	"expo-floorplan/internal/exhibition"
	"expo-floorplan/internal/store"
	"expo-floorplan/pkg/colorutil"
)

func loadedState(t *testing.T) *app.State {
	t.Helper()
	test.NewApp()
	s := app.NewState(app.Options{})
	require.NoError(t, s.Load(context.Background(), store.DemoEventID))
	return s
}

func TestNaturalLess(t *testing.T) {
	assert.True(t, naturalLess("A2", "A10"))
	assert.False(t, naturalLess("A10", "A2"))
	assert.True(t, naturalLess("a-1", "B-1"))
	assert.True(t, naturalLess("B", "B1"))
}

func TestFilterStalls(t *testing.T) {
	stalls := []*exhibition.Stall{
		{ID: "1", Number: "A-10", Name: "Gem Palace", Category: "Jewelry"},
		{ID: "2", Number: "A-2", Name: "ElectroWorld", Category: "Electronics"},
		{ID: "3", Number: "B-1", Name: "Gourmet Bites", Category: "Food"},
	}
	got := filterStalls(stalls, "")
	assert.Equal(t, "A-2", got[0].Number)
	assert.Equal(t, "A-10", got[1].Number)

	got = filterStalls(stalls, "  elec ")
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)

	assert.Len(t, filterStalls(stalls, "food"), 1)
	assert.Empty(t, filterStalls(stalls, "zzz"))
}

func TestStallLabel(t *testing.T) {
	st := &exhibition.Stall{Number: "A-1", Name: "Gem Palace"}
	assert.Equal(t, "A-1  Gem Palace", stallLabel(st))
	st.Purchased = true
	assert.Equal(t, "A-1  Gem Palace (sold)", stallLabel(st))
}

func TestStallRowTintsByCategory(t *testing.T) {
	test.NewApp()
	row := newStallRow()
	swatch := row.(*fyne.Container).Objects[0].(*fyne.Container).Objects[0].(*canvas.Rectangle)
	label := row.(*fyne.Container).Objects[1].(*widget.Label)

	st := &exhibition.Stall{Number: "B-201", Name: "Gem Palace", Category: "Jewelry"}
	updateStallRow(row, st)
	assert.Equal(t, colorutil.CategoryColor("Jewelry"), swatch.FillColor)
	assert.Equal(t, "B-201  Gem Palace", label.Text)

	st.Purchased = true
	updateStallRow(row, st)
	assert.Equal(t, colorutil.MarkerSold, swatch.FillColor)
}

func TestStallListFollowsState(t *testing.T) {
	s := loadedState(t)
	sp := NewStallListPanel(s)
	require.Len(t, sp.Items(), 6)
	assert.Equal(t, "A-101", sp.Items()[0].Number)
	assert.Equal(t, "6 stalls, 0 sold", sp.countLabel.Text)

	test.Type(sp.search, "gem")
	require.Len(t, sp.Items(), 1)
	assert.Equal(t, "stall-003", sp.Items()[0].ID)

	_, err := s.PurchaseStall(context.Background(), "stall-003")
	require.NoError(t, err)
	assert.Equal(t, "6 stalls, 1 sold", sp.countLabel.Text)
}

func TestStallListPickAndSelect(t *testing.T) {
	s := loadedState(t)
	sp := NewStallListPanel(s)

	var picked []string
	sp.OnPick(func(id string) { picked = append(picked, id) })

	sp.Select("stall-002")
	assert.Empty(t, picked)

	sp.list.Select(0)
	assert.Equal(t, []string{"stall-001"}, picked)
}

func TestNavigatorShowsCurrentFloor(t *testing.T) {
	s := loadedState(t)
	np := NewNavigatorPanel(s)

	assert.Equal(t, "Main Hall", np.venueSelect.Selected)
	assert.Equal(t, "Ground Floor", np.floorSelect.Selected)
	for _, b := range np.editButtons {
		assert.True(t, b.Visible())
	}

	s.SetMode(exhibition.ModeVisitor)
	for _, b := range np.editButtons {
		assert.False(t, b.Visible())
	}
}

func TestNavigatorSwitchesFloor(t *testing.T) {
	s := loadedState(t)
	np := NewNavigatorPanel(s)

	ref, err := s.AddFloor(context.Background(), store.DemoVenueID, "Mezzanine")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ground Floor", "Mezzanine"}, np.floorSelect.Options)

	np.floorSelect.SetSelectedIndex(1)
	assert.Equal(t, ref, s.Current())
	assert.Empty(t, s.Stalls())
}

func TestSidePanelWiresChildren(t *testing.T) {
	s := loadedState(t)
	sp := NewSidePanel(s)
	w := test.NewWindow(sp.Container())
	defer w.Close()
	sp.SetWindow(w)

	assert.Len(t, sp.Stalls().Items(), 6)
	assert.Equal(t, "Main Hall", sp.Navigator().venueSelect.Selected)
}
