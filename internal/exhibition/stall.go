package exhibition

import (
	"crypto/rand"
	"math/big"
	"sort"
	"strings"

	"github.com/google/uuid"

	"expo-floorplan/pkg/geometry"
)

// Save defaults for empty stall fields.
const (
	DefaultStallName = "Unnamed Stall"
	DefaultCategory  = "Other"
	DefaultSegment   = "Basic"
)

// Stall is a booth placed on a floor plan. Position and size are
// percentages (0-100) of the floor plan's natural image size.
type Stall struct {
	ID          string                `json:"id"`
	X           float64               `json:"x"`
	Y           float64               `json:"y"`
	Width       *float64              `json:"width,omitempty"`
	Height      *float64              `json:"height,omitempty"`
	Number      string                `json:"number"`
	Name        string                `json:"name"`
	Category    string                `json:"category"`
	Segment     string                `json:"segment"`
	Contact     string                `json:"contact,omitempty"`
	Image       string                `json:"image,omitempty"`
	Description string                `json:"description,omitempty"`
	Purchased   bool                  `json:"purchased,omitempty"`
	Extra       map[string]FieldValue `json:"extra,omitempty"`

	// Seq is the draw order within the floor, assigned on creation.
	Seq int64 `json:"seq"`
}

// NewPinStall returns an unsaved stall at a percentage position.
func NewPinStall(x, y float64) Stall {
	return Stall{X: x, Y: y}
}

// NewBoxStall returns an unsaved stall covering a percentage rectangle.
func NewBoxStall(r geometry.Rect) Stall {
	w, h := r.Width, r.Height
	return Stall{X: r.X, Y: r.Y, Width: &w, Height: &h}
}

// HasSize reports whether the stall is a box rather than a point.
func (s *Stall) HasSize() bool {
	return s.Width != nil && s.Height != nil && *s.Width > 0 && *s.Height > 0
}

// Bounds returns the stall rectangle in percent. Point stalls have zero size.
func (s *Stall) Bounds() geometry.Rect {
	r := geometry.Rect{X: s.X, Y: s.Y}
	if s.HasSize() {
		r.Width, r.Height = *s.Width, *s.Height
	}
	return r
}

// Field returns a base field or an extra value by key, as display text.
func (s *Stall) Field(key string) string {
	switch key {
	case "id":
		return s.ID
	case "number":
		return s.Number
	case "name":
		return s.Name
	case "category":
		return s.Category
	case "segment":
		return s.Segment
	case "contact":
		return s.Contact
	case "description":
		return s.Description
	}
	if v, ok := s.Extra[key]; ok {
		return v.String()
	}
	return ""
}

// Clone returns a deep copy of the stall.
func (s *Stall) Clone() *Stall {
	c := *s
	if s.Width != nil {
		w := *s.Width
		c.Width = &w
	}
	if s.Height != nil {
		h := *s.Height
		c.Height = &h
	}
	if s.Extra != nil {
		c.Extra = make(map[string]FieldValue, len(s.Extra))
		for k, v := range s.Extra {
			if v.Number != nil {
				n := *v.Number
				v.Number = &n
			}
			c.Extra[k] = v
		}
	}
	return &c
}

func (s *Stall) validatePosition() error {
	if s.X < 0 || s.X > 100 || s.Y < 0 || s.Y > 100 {
		return ErrInvalidPosition
	}
	if s.Width == nil && s.Height == nil {
		return nil
	}
	if s.Width == nil || s.Height == nil || *s.Width <= 0 || *s.Height <= 0 {
		return ErrInvalidPosition
	}
	const eps = 1e-9
	if s.X+*s.Width > 100+eps || s.Y+*s.Height > 100+eps {
		return ErrInvalidPosition
	}
	return nil
}

// SortStalls orders stalls by draw order: ascending Seq, ties by ID.
func SortStalls(stalls []*Stall) {
	sort.SliceStable(stalls, func(i, j int) bool {
		if stalls[i].Seq != stalls[j].Seq {
			return stalls[i].Seq < stalls[j].Seq
		}
		return stalls[i].ID < stalls[j].ID
	})
}

// NewStallID returns a fresh stall identifier.
func NewStallID() string {
	return "stall-" + uuid.NewString()
}

const numberAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateNumber returns a stall number of the form S-xxxxx.
func GenerateNumber() string {
	var b strings.Builder
	b.WriteString("S-")
	base := big.NewInt(int64(len(numberAlphabet)))
	for i := 0; i < 5; i++ {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			b.WriteByte('0')
			continue
		}
		b.WriteByte(numberAlphabet[n.Int64()])
	}
	return b.String()
}
