package app

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"expo-floorplan/internal/logging"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reports changes to a single document on disk. The parent
// directory is watched because atomic saves replace the file.
type Watcher struct {
	path     string
	debounce time.Duration
	ignore   func(path string) bool
	logger   *zap.Logger

	fsw      *fsnotify.Watcher
	onChange func()
	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewWatcher creates a watcher for path. ignore, when non-nil, filters out
// changes the application made itself.
func NewWatcher(path string, debounce time.Duration, ignore func(string) bool, logger *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger = logging.OrNop(logger)
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		ignore:   ignore,
		logger:   logger,
		fsw:      fsw,
		stopCh:   make(chan struct{}),
	}, nil
}

// OnChange sets the callback. It runs on the watcher goroutine.
func (w *Watcher) OnChange(callback func()) {
	w.onChange = callback
}

// Path returns the watched document.
func (w *Watcher) Path() string { return w.path }

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.watchLoop()
}

// Stop ends the watcher and waits for its goroutine.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.fsw.Close()
	})
	w.wg.Wait()
}

func (w *Watcher) watchLoop() {
	defer w.wg.Done()

	var fire <-chan time.Time
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				fire = time.After(w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			if w.ignore != nil && w.ignore(w.path) {
				continue
			}
			w.logger.Info("Exhibition file changed on disk", zap.String("path", w.path))
			if w.onChange != nil {
				w.onChange()
			}
		}
	}
}
