package app

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expo-floorplan/internal/store"
)

func TestWatcherReportsExternalEdits(t *testing.T) {
	fs, err := store.NewFile(t.TempDir(), nil, nil)
	require.NoError(t, err)
	_, err = store.Seed(context.Background(), fs, store.DemoEventID)
	require.NoError(t, err)
	path := fs.Path(store.DemoEventID)

	w, err := NewWatcher(path, 20*time.Millisecond, fs.IsOwnWrite, nil)
	require.NoError(t, err)
	changed := make(chan struct{}, 4)
	w.OnChange(func() { changed <- struct{}{} })
	w.Start()
	defer w.Stop()

	// A write through the store is not reported.
	require.NoError(t, fs.DeleteStall(context.Background(), store.DemoRef, "stall-001"))
	select {
	case <-changed:
		t.Fatal("own write reported")
	case <-time.After(300 * time.Millisecond):
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, append(data, '\n'), 0o644))
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("external write not reported")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/doc.json"
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	w, err := NewWatcher(path, 10*time.Millisecond, nil, nil)
	require.NoError(t, err)
	fired := make(chan struct{}, 1)
	w.OnChange(func() { fired <- struct{}{} })
	w.Start()

	require.NoError(t, os.WriteFile(dir+"/other.json", []byte("{}"), 0o644))
	select {
	case <-fired:
		t.Fatal("unrelated file reported")
	case <-time.After(200 * time.Millisecond):
	}

	w.Stop()
	w.Stop()
	assert.Equal(t, path, w.Path())
}
