package floorplan

import (
	"context"
	"image"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"expo-floorplan/internal/logging"
)

// ThumbnailSize is the edge length stall thumbnails are reduced to.
const ThumbnailSize = 96

type thumbEntry struct {
	img    image.Image
	status Status
}

// Thumbnails caches small per-stall images keyed by source string.
// Get never blocks: a missing entry starts a background load and returns nil.
type Thumbnails struct {
	mu       sync.Mutex
	client   *http.Client
	timeout  time.Duration
	log      *zap.Logger
	entries  map[string]*thumbEntry
	onChange func()
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewThumbnails creates an empty cache.
func NewThumbnails(opts Options) *Thumbnails {
	log := opts.Logger
	log = logging.OrNop(log)
	ctx, cancel := context.WithCancel(context.Background())
	return &Thumbnails{
		client:  opts.Client,
		timeout: opts.Timeout,
		log:     log.Named("thumbnails"),
		entries: make(map[string]*thumbEntry),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// OnChange sets the callback run whenever a thumbnail finishes loading.
func (t *Thumbnails) OnChange(fn func()) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// Get returns the cached thumbnail for src, or nil when it is not ready.
func (t *Thumbnails) Get(src string) image.Image {
	if src == "" {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entries[src]; ok {
		return e.img
	}
	if t.ctx.Err() != nil {
		return nil
	}
	t.entries[src] = &thumbEntry{status: StatusLoading}
	t.wg.Add(1)
	go t.load(src)
	return nil
}

// Status reports the load state for src.
func (t *Thumbnails) Status(src string) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[src]; ok {
		return e.status
	}
	return StatusNone
}

func (t *Thumbnails) load(src string) {
	defer t.wg.Done()

	ctx := t.ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	img, err := Decode(ctx, t.client, src)
	if err == nil {
		img = Shrink(img, ThumbnailSize)
	}

	t.mu.Lock()
	e, ok := t.entries[src]
	if !ok || t.ctx.Err() != nil {
		t.mu.Unlock()
		return
	}
	if err != nil {
		e.status = StatusFailed
		t.log.Debug("thumbnail load failed", zap.String("kind", Kind(src)), zap.Error(err))
	} else {
		e.status = StatusReady
		e.img = img
	}
	fn := t.onChange
	t.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Close cancels pending loads and empties the cache.
func (t *Thumbnails) Close() {
	t.cancel()
	t.mu.Lock()
	t.entries = make(map[string]*thumbEntry)
	t.onChange = nil
	t.mu.Unlock()
}

// Wait blocks until pending loads have finished.
func (t *Thumbnails) Wait() {
	t.wg.Wait()
}

// Shrink scales img so that its longer edge is at most size pixels. Smaller
// images are returned unchanged.
func Shrink(img image.Image, size int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= size && h <= size {
		return img
	}
	if w >= h {
		h = max(1, h*size/w)
		w = size
	} else {
		w = max(1, w*size/h)
		h = size
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
