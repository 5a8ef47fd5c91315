package render

import (
	"fmt"
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
)

// Weight picks one of the bundled Go fonts.
type Weight int

const (
	Regular Weight = iota
	Medium
	Bold
)

type faceKey struct {
	weight Weight
	size   float64
}

// Fonts parses the bundled fonts once and caches faces by weight and size.
type Fonts struct {
	mu    sync.Mutex
	fonts map[Weight]*truetype.Font
	faces map[faceKey]font.Face
}

// NewFonts parses the Go font family.
func NewFonts() (*Fonts, error) {
	f := &Fonts{
		fonts: make(map[Weight]*truetype.Font),
		faces: make(map[faceKey]font.Face),
	}
	for w, data := range map[Weight][]byte{
		Regular: goregular.TTF,
		Medium:  gomedium.TTF,
		Bold:    gobold.TTF,
	} {
		ttf, err := truetype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font: %w", err)
		}
		f.fonts[w] = ttf
	}
	return f, nil
}

// Face returns a face of the given pixel size. Sizes are rounded to a
// quarter pixel to bound the cache.
func (f *Fonts) Face(w Weight, size float64) font.Face {
	size = math.Max(1, math.Round(size*4)/4)
	key := faceKey{weight: w, size: size}

	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.faces[key]; ok {
		return face
	}
	face := truetype.NewFace(f.fonts[w], &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	f.faces[key] = face
	return face
}
