package floorplan

import (
	"context"
	"image"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"expo-floorplan/internal/logging"
	"expo-floorplan/pkg/geometry"
)

// Placeholder texts shown while no bitmap is available.
const (
	LoadingText = "Loading Floor Plan..."
	NoImageText = "No Floor Plan Available"
)

// Status of the current floor-plan bitmap.
type Status int

const (
	StatusNone Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "none"
	}
}

// Options configures a Loader.
type Options struct {
	Client  *http.Client
	Timeout time.Duration
	Logger  *zap.Logger
}

// Loader decodes one floor-plan bitmap at a time in the background.
// Starting a new load cancels the previous one; a superseded load never
// publishes its result. OnChange fires exactly once per completed load.
type Loader struct {
	mu       sync.Mutex
	opts     Options
	log      *zap.Logger
	gen      uint64
	cancel   context.CancelFunc
	src      string
	img      image.Image
	status   Status
	err      error
	onChange func()
	wg       sync.WaitGroup
}

// NewLoader creates an idle loader.
func NewLoader(opts Options) *Loader {
	log := opts.Logger
	log = logging.OrNop(log)
	return &Loader{opts: opts, log: log.Named("floorplan")}
}

// OnChange sets the callback run when a load completes or fails. It runs
// on the loader's goroutine.
func (l *Loader) OnChange(fn func()) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// Load starts decoding src. Loading the source that is already loaded or
// in flight is a no-op. An empty source clears the image.
func (l *Loader) Load(src string) {
	l.mu.Lock()
	if src == l.src && (l.status == StatusLoading || l.status == StatusReady) {
		l.mu.Unlock()
		return
	}

	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
	gen := l.gen
	l.src = src
	l.img = nil
	l.err = nil

	if src == "" {
		l.status = StatusNone
		l.mu.Unlock()
		return
	}

	l.status = StatusLoading
	ctx, cancel := l.newContext()
	l.cancel = cancel
	l.wg.Add(1)
	l.mu.Unlock()

	go l.run(ctx, cancel, gen, src)
}

func (l *Loader) newContext() (context.Context, context.CancelFunc) {
	if l.opts.Timeout > 0 {
		return context.WithTimeout(context.Background(), l.opts.Timeout)
	}
	return context.WithCancel(context.Background())
}

func (l *Loader) run(ctx context.Context, cancel context.CancelFunc, gen uint64, src string) {
	defer l.wg.Done()
	defer cancel()

	img, err := Decode(ctx, l.opts.Client, src)

	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		return
	}
	l.cancel = nil
	if err != nil {
		l.status = StatusFailed
		l.err = err
		l.log.Warn("floor plan load failed", zap.String("kind", Kind(src)), zap.Error(err))
	} else {
		l.status = StatusReady
		l.img = img
		b := img.Bounds()
		l.log.Debug("floor plan loaded", zap.String("kind", Kind(src)),
			zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
	}
	fn := l.onChange
	l.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Image returns the decoded bitmap and the load status.
func (l *Loader) Image() (image.Image, Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.img, l.status
}

// Err returns the error of the last failed load.
func (l *Loader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Source returns the source currently loaded or loading.
func (l *Loader) Source() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src
}

// Size returns the natural size of the loaded bitmap, or zero.
func (l *Loader) Size() geometry.Size {
	img, _ := l.Image()
	return ImageSize(img)
}

// StatusText is the placeholder message for the current state, or ""
// when an image is ready.
func (l *Loader) StatusText() string {
	_, st := l.Image()
	return StatusText(st)
}

// StatusText maps a status to its placeholder message.
func StatusText(st Status) string {
	switch st {
	case StatusReady:
		return ""
	case StatusLoading:
		return LoadingText
	default:
		return NoImageText
	}
}

// Close cancels any load in flight and drops the image reference.
func (l *Loader) Close() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
	l.onChange = nil
	l.src = ""
	l.img = nil
	l.status = StatusNone
	l.mu.Unlock()
}

// Wait blocks until no load goroutine is running.
func (l *Loader) Wait() {
	l.wg.Wait()
}

// ImageSize returns the natural size of img, or zero for nil.
func ImageSize(img image.Image) geometry.Size {
	if img == nil {
		return geometry.Size{}
	}
	b := img.Bounds()
	return geometry.NewSize(float64(b.Dx()), float64(b.Dy()))
}
