package store

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expo-floorplan/internal/exhibition"
	"expo-floorplan/internal/floorplan"
)

func adapters(t *testing.T) map[string]Adapter {
	t.Helper()
	dir := t.TempDir()

	file, err := NewFile(filepath.Join(dir, "docs"), nil, nil)
	require.NoError(t, err)
	db, err := NewSQLite(filepath.Join(dir, "floorplan.db"), nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]Adapter{
		DriverMemory: NewMemory(nil, nil),
		DriverFile:   file,
		DriverSQLite: db,
	}
}

func seeded(t *testing.T, a Adapter) *exhibition.Exhibition {
	t.Helper()
	ex, err := Seed(context.Background(), a, DemoEventID)
	require.NoError(t, err)
	return ex
}

func demoFloor(t *testing.T, a Adapter) *exhibition.Floor {
	t.Helper()
	ex, err := a.Load(context.Background(), DemoEventID)
	require.NoError(t, err)
	f, err := ex.Floor(DemoRef.FloorRef)
	require.NoError(t, err)
	return f
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestLoadUnknownEvent(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			_, err := a.Load(context.Background(), "nope")
			assert.ErrorIs(t, err, ErrEventNotFound)
		})
	}
}

func TestSeedInstallsDemo(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			ex := seeded(t, a)
			assert.Equal(t, "Tech & Art Expo", ex.Name)
			f, err := ex.Floor(DemoRef.FloorRef)
			require.NoError(t, err)
			assert.Equal(t, DemoPlanURL, f.FloorPlanURL)
			require.Len(t, f.Stalls, 6)

			ordered := f.OrderedStalls()
			assert.Equal(t, "A-101", ordered[0].Number)
			assert.Equal(t, "D-401", ordered[5].Number)

			// Seeding again keeps existing data.
			require.NoError(t, a.DeleteStall(context.Background(), DemoRef, "stall-001"))
			again := seeded(t, a)
			f2, _ := again.Floor(DemoRef.FloorRef)
			assert.Len(t, f2.Stalls, 5)
		})
	}
}

func TestSeedOnlyForDemoID(t *testing.T) {
	a := NewMemory(nil, nil)
	_, err := Seed(context.Background(), a, "other")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestCreateStall(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			seeded(t, a)
			ctx := context.Background()

			st, err := a.CreateStall(ctx, DemoRef, exhibition.Stall{ID: "ignored", X: 5, Y: 5, Number: "Z-1"})
			require.NoError(t, err)
			assert.NotEqual(t, "ignored", st.ID)
			assert.True(t, strings.HasPrefix(st.ID, "stall-"))
			assert.Equal(t, exhibition.DefaultStallName, st.Name)
			assert.Equal(t, int64(6), st.Seq)

			f := demoFloor(t, a)
			require.Len(t, f.Stalls, 7)
			assert.Equal(t, "Z-1", f.Stalls[st.ID].Number)
		})
	}
}

func TestCreateDuplicateLeavesStoreUnchanged(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			seeded(t, a)
			_, err := a.CreateStall(context.Background(), DemoRef, exhibition.Stall{X: 5, Y: 5, Number: "A-101"})
			assert.ErrorIs(t, err, exhibition.ErrDuplicateNumber)
			assert.Equal(t, `Stall number "A-101" already exists.`, err.Error())
			assert.Len(t, demoFloor(t, a).Stalls, 6)
		})
	}
}

func TestUpdateStall(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			seeded(t, a)
			ctx := context.Background()
			f := demoFloor(t, a)

			st := *f.Stalls["stall-003"]
			st.Name = "Gem Palace Deluxe"
			saved, err := a.UpdateStall(ctx, DemoRef, st)
			require.NoError(t, err)
			assert.Equal(t, int64(2), saved.Seq)

			f = demoFloor(t, a)
			assert.Len(t, f.Stalls, 6)
			assert.Equal(t, "Gem Palace Deluxe", f.Stalls["stall-003"].Name)

			st.ID = "stall-missing"
			_, err = a.UpdateStall(ctx, DemoRef, st)
			assert.ErrorIs(t, err, exhibition.ErrStallNotFound)
		})
	}
}

func TestDeleteStall(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			seeded(t, a)
			ctx := context.Background()
			require.NoError(t, a.DeleteStall(ctx, DemoRef, "stall-002"))

			f := demoFloor(t, a)
			assert.Len(t, f.Stalls, 5)
			assert.NotContains(t, f.Stalls, "stall-002")
			assert.ErrorIs(t, a.DeleteStall(ctx, DemoRef, "stall-002"), exhibition.ErrStallNotFound)
		})
	}
}

func TestPurchaseStall(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			seeded(t, a)
			ctx := context.Background()
			st, err := a.PurchaseStall(ctx, DemoRef, "stall-004")
			require.NoError(t, err)
			assert.True(t, st.Purchased)
			assert.True(t, demoFloor(t, a).Stalls["stall-004"].Purchased)

			_, err = a.PurchaseStall(ctx, DemoRef, "stall-004")
			assert.ErrorIs(t, err, exhibition.ErrAlreadyPurchased)
		})
	}
}

func TestUpdateFloorPlan(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			seeded(t, a)
			ctx := context.Background()

			url, err := a.UpdateFloorPlan(ctx, DemoRef, pngBytes(t), "")
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
			assert.Equal(t, url, demoFloor(t, a).FloorPlanURL)

			_, err = a.UpdateFloorPlan(ctx, DemoRef, []byte("just some text"), "")
			assert.ErrorIs(t, err, floorplan.ErrNotImage)
			_, err = a.UpdateFloorPlan(ctx, DemoRef, []byte("x"), "text/plain")
			assert.ErrorIs(t, err, floorplan.ErrNotImage)
			assert.Equal(t, url, demoFloor(t, a).FloorPlanURL)
		})
	}
}

func TestUnknownFloor(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			seeded(t, a)
			ref := DemoRef
			ref.FloorID = "floor-missing"
			_, err := a.CreateStall(context.Background(), ref, exhibition.Stall{X: 1, Y: 1, Number: "N"})
			assert.ErrorIs(t, err, exhibition.ErrFloorNotFound)

			ref = Ref{EventID: "missing", FloorRef: DemoRef.FloorRef}
			assert.ErrorIs(t, a.DeleteStall(context.Background(), ref, "x"), ErrEventNotFound)
		})
	}
}

func TestSaveRoundTripsHierarchy(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			ex := exhibition.New("spring-fair", "Spring Fair")
			v, err := ex.AddVenue("Hall B")
			require.NoError(t, err)
			fl, err := v.AddFloor("Mezzanine")
			require.NoError(t, err)
			w, h := 10.0, 5.0
			_, _, err = fl.SaveStall(nil, exhibition.Stall{X: 1, Y: 2, Width: &w, Height: &h, Number: "M-1",
				Extra: map[string]exhibition.FieldValue{"price": exhibition.NumberValue(99)}})
			require.NoError(t, err)
			require.NoError(t, a.Save(ctx, ex))

			got, err := a.Load(ctx, "spring-fair")
			require.NoError(t, err)
			assert.Equal(t, ex, got)
		})
	}
}

func TestMemoryHandsOutCopies(t *testing.T) {
	a := NewMemory(nil, nil)
	ex := seeded(t, a)
	f, _ := ex.Floor(DemoRef.FloorRef)
	f.Stalls["stall-001"].Name = "changed"

	assert.Equal(t, "ElectroWorld", demoFloor(t, a).Stalls["stall-001"].Name)
}

func TestFileWritesAtomically(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFile(dir, nil, nil)
	require.NoError(t, err)
	seeded(t, a)

	path := a.Path(DemoEventID)
	assert.FileExists(t, path)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	assert.True(t, a.IsOwnWrite(path))
	require.NoError(t, os.WriteFile(path, []byte(`{"id":"tech-art-expo","name":"Edited","venues":{}}`), 0o644))
	assert.False(t, a.IsOwnWrite(path))

	ex, err := a.Load(context.Background(), DemoEventID)
	require.NoError(t, err)
	assert.Equal(t, "Edited", ex.Name)
}

func TestFileOwnWriteWithRelativeDir(t *testing.T) {
	t.Chdir(t.TempDir())
	a, err := NewFile("data", nil, nil)
	require.NoError(t, err)
	seeded(t, a)
	require.NoError(t, a.DeleteStall(context.Background(), DemoRef, "stall-001"))

	abs, err := filepath.Abs(filepath.Join("data", DemoEventID+DocExt))
	require.NoError(t, err)
	assert.Equal(t, abs, a.Path(DemoEventID))
	assert.True(t, a.IsOwnWrite(abs))
	assert.True(t, a.IsOwnWrite(filepath.Join("data", DemoEventID+DocExt)))
}

func TestFileRejectsPathIDs(t *testing.T) {
	a, err := NewFile(t.TempDir(), nil, nil)
	require.NoError(t, err)
	_, err = a.Load(context.Background(), "../etc")
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.ErrorIs(t, a.Save(context.Background(), exhibition.New("", "x")), ErrInvalidID)
}

func TestSQLiteEvents(t *testing.T) {
	db, err := NewSQLite(filepath.Join(t.TempDir(), "x.db"), nil, nil)
	require.NoError(t, err)
	defer db.Close()

	seeded(t, db)
	require.NoError(t, db.Save(context.Background(), exhibition.New("another", "Another")))
	ids, err := db.Events(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"another", DemoEventID}, ids)
}

func TestOpen(t *testing.T) {
	a, err := Open(Options{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, a)

	a, err = Open(Options{Driver: "file", Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &File{}, a)

	_, err = Open(Options{Driver: "redis"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
