package viewer

import (
	"errors"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expo-floorplan/internal/exhibition"
)

type events struct {
	updates [][]*exhibition.Stall
	saves   []exhibition.Stall
	created []bool
	deletes []string
	bought  []string
}

func newViewer(t *testing.T, mode exhibition.Mode, ev *events) *Viewer {
	t.Helper()
	test.NewApp()
	w := test.NewWindow(nil)
	t.Cleanup(w.Close)

	v, err := New(w, Options{
		Mode: mode,
		Stalls: []*exhibition.Stall{
			{ID: "a", X: 10, Y: 10, Number: "A-1", Name: "Gem Palace", Seq: 0},
			{ID: "b", X: 60, Y: 40, Number: "B-1", Name: "ElectroWorld", Seq: 1},
		},
		OnFloorPlanUpdate: func(all []*exhibition.Stall) { ev.updates = append(ev.updates, all) },
		OnStallSave: func(st exhibition.Stall, isNew bool, all []*exhibition.Stall) error {
			ev.saves = append(ev.saves, st)
			ev.created = append(ev.created, isNew)
			return nil
		},
		OnStallDelete: func(id string) error { ev.deletes = append(ev.deletes, id); return nil },
		OnPurchase:    func(st *exhibition.Stall) error { ev.bought = append(ev.bought, st.ID); return nil },
	})
	require.NoError(t, err)
	t.Cleanup(v.Destroy)
	w.SetContent(v.Object())
	w.Resize(fyne.NewSize(640, 480))
	return v
}

func ids(stalls []*exhibition.Stall) []string {
	out := make([]string, len(stalls))
	for i, st := range stalls {
		out[i] = st.ID
	}
	return out
}

func TestSaveNewStallNotifiesHost(t *testing.T) {
	ev := &events{}
	v := newViewer(t, exhibition.ModeOrganizer, ev)

	st := exhibition.NewPinStall(30, 30)
	st.Number = "C-1"
	require.NoError(t, v.SaveStall(st))

	require.Len(t, ev.saves, 1)
	assert.True(t, ev.created[0])
	assert.NotEmpty(t, ev.saves[0].ID)
	assert.Equal(t, int64(2), ev.saves[0].Seq)

	require.Len(t, ev.updates, 1)
	assert.Len(t, ev.updates[0], 3)
	assert.Len(t, v.Stalls(), 3)
	assert.Equal(t, ev.saves[0].ID, v.Canvas().SelectedID())
}

func TestEditKeepsCountAndOrder(t *testing.T) {
	ev := &events{}
	v := newViewer(t, exhibition.ModeOrganizer, ev)

	edited := *v.Stalls()[0]
	edited.Name = "Gem Palace II"
	require.NoError(t, v.SaveStall(edited))

	assert.False(t, ev.created[0])
	assert.Equal(t, []string{"a", "b"}, ids(v.Stalls()))
	assert.Equal(t, "Gem Palace II", v.Stalls()[0].Name)
}

func TestDuplicateNumberLeavesStallsUnchanged(t *testing.T) {
	ev := &events{}
	v := newViewer(t, exhibition.ModeOrganizer, ev)

	st := exhibition.NewPinStall(30, 30)
	st.Number = "B-1"
	err := v.SaveStall(st)
	require.ErrorIs(t, err, exhibition.ErrDuplicateNumber)
	assert.Empty(t, ev.saves)
	assert.Empty(t, ev.updates)
	assert.Len(t, v.Stalls(), 2)
}

func TestHostCanRejectSave(t *testing.T) {
	test.NewApp()
	w := test.NewWindow(nil)
	defer w.Close()

	v, err := New(w, Options{
		Mode:        exhibition.ModeOrganizer,
		OnStallSave: func(exhibition.Stall, bool, []*exhibition.Stall) error { return errors.New("offline") },
	})
	require.NoError(t, err)
	defer v.Destroy()

	st := exhibition.NewPinStall(5, 5)
	st.Number = "A-1"
	assert.EqualError(t, v.SaveStall(st), "offline")
	assert.Empty(t, v.Stalls())
}

func TestDeleteStall(t *testing.T) {
	ev := &events{}
	v := newViewer(t, exhibition.ModeOrganizer, ev)
	before := *v.Stalls()[1]

	require.NoError(t, v.DeleteStall("a"))
	assert.Equal(t, []string{"a"}, ev.deletes)
	require.Len(t, v.Stalls(), 1)
	assert.Equal(t, before, *v.Stalls()[0])

	assert.ErrorIs(t, v.DeleteStall("missing"), exhibition.ErrStallNotFound)
}

func TestPurchaseOnlyInCustomerMode(t *testing.T) {
	ev := &events{}
	v := newViewer(t, exhibition.ModeVisitor, ev)
	assert.Error(t, v.Purchase("a"))

	v.SetMode(exhibition.ModeCustomer)
	require.NoError(t, v.Purchase("a"))
	assert.Equal(t, []string{"a"}, ev.bought)
	assert.True(t, v.Stalls()[0].Purchased)

	assert.ErrorIs(t, v.Purchase("a"), exhibition.ErrAlreadyPurchased)
}

func TestSetFloorReplacesStalls(t *testing.T) {
	ev := &events{}
	v := newViewer(t, exhibition.ModeVisitor, ev)

	v.SetFloor("", []*exhibition.Stall{{ID: "z", Number: "Z-1", Seq: 7}})
	assert.Equal(t, []string{"z"}, ids(v.Stalls()))

	v.SetMode(exhibition.ModeOrganizer)
	st := exhibition.NewPinStall(1, 1)
	st.Number = "Z-2"
	require.NoError(t, v.SaveStall(st))
	assert.Equal(t, int64(8), ev.saves[0].Seq)
}

func TestSelectAndDestroy(t *testing.T) {
	ev := &events{}
	v := newViewer(t, exhibition.ModeVisitor, ev)

	v.Select("b")
	assert.Equal(t, "b", v.Canvas().SelectedID())

	v.Destroy()
	v.Destroy()
	v.SetMode(exhibition.ModeOrganizer)
	st := exhibition.NewPinStall(1, 1)
	st.Number = "Q-1"
	require.NoError(t, v.SaveStall(st))
	assert.Empty(t, ev.saves)
	assert.Empty(t, ev.updates)
}

func TestHostResyncInsideCallbackWins(t *testing.T) {
	test.NewApp()
	w := test.NewWindow(nil)
	defer w.Close()

	var v *Viewer
	var err error
	v, err = New(w, Options{
		Mode: exhibition.ModeOrganizer,
		OnStallSave: func(st exhibition.Stall, isNew bool, all []*exhibition.Stall) error {
			st.ID = "host-id"
			v.SetFloor("", []*exhibition.Stall{&st})
			return nil
		},
	})
	require.NoError(t, err)
	defer v.Destroy()

	st := exhibition.NewPinStall(5, 5)
	st.Number = "A-1"
	require.NoError(t, v.SaveStall(st))
	assert.Equal(t, []string{"host-id"}, ids(v.Stalls()))
}
