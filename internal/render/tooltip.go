package render

import (
	"strings"

	"expo-floorplan/internal/exhibition"
	"expo-floorplan/pkg/geometry"
)

// Tooltip metrics in screen pixels.
const (
	TooltipFontSize   = 14.0
	TooltipLineHeight = 18.0
	TooltipPadX       = 10.0
	TooltipPadY       = 5.0
	TooltipRadius     = 5.0
	TooltipMargin     = 5.0
	// TooltipLift is the gap between the marker center and the tooltip's
	// bottom edge, in marker radii.
	TooltipLift = 2.5
)

// TooltipField names a stall field shown in the hover tooltip.
type TooltipField struct {
	Key   string `json:"key" mapstructure:"key"`
	Label string `json:"label" mapstructure:"label"`
}

// DefaultTooltipFields are shown when none are configured.
var DefaultTooltipFields = []TooltipField{
	{Key: "number", Label: "Stall"},
	{Key: "name", Label: "Name"},
	{Key: "category", Label: "Category"},
}

// TooltipLines formats the stall fields for the tooltip. Configured
// fields with empty values are skipped.
func TooltipLines(st *exhibition.Stall, fields []TooltipField) []string {
	if len(fields) == 0 {
		return []string{
			"Stall: " + st.Number,
			"Name: " + st.Name,
			"Category: " + st.Category,
		}
	}
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		v := strings.TrimSpace(st.Field(f.Key))
		if v == "" {
			continue
		}
		label := f.Label
		if label == "" {
			label = f.Key
		}
		lines = append(lines, label+": "+v)
	}
	return lines
}

// TooltipLayout is a tooltip box in image space.
type TooltipLayout struct {
	Rect       geometry.Rect
	Lines      []string
	LineHeight float64
	PadX       float64
	PadY       float64
	Radius     float64
}

// LayoutTooltip sizes the tooltip from the measured screen widths of its
// lines and places it above the marker at anchor (image space). The box
// is centered on the anchor and shifted horizontally so it stays within
// [0, frameWidth]. scale is the current zoom and markerRadius the
// on-screen marker radius.
func LayoutTooltip(anchor geometry.Point2D, lines []string, widths []float64, scale, markerRadius, frameWidth float64) TooltipLayout {
	maxW := 0.0
	for _, w := range widths {
		if w > maxW {
			maxW = w
		}
	}

	lh := TooltipLineHeight / scale
	padX := TooltipPadX / scale
	padY := TooltipPadY / scale
	margin := TooltipMargin / scale

	w := maxW/scale + 2*padX
	h := float64(len(lines))*lh + 2*padY
	x := anchor.X - w/2
	bottom := anchor.Y - (markerRadius/scale)*TooltipLift

	switch {
	case frameWidth > 0 && w+2*margin >= frameWidth:
		// Wider than the image: keep the left edge and the start of
		// each line visible.
		x = 0
	case x < 0:
		x = margin
	case frameWidth > 0 && x+w > frameWidth:
		x = frameWidth - w - margin
	}

	return TooltipLayout{
		Rect:       geometry.NewRect(x, bottom-h, w, h),
		Lines:      lines,
		LineHeight: lh,
		PadX:       padX,
		PadY:       padY,
		Radius:     TooltipRadius / scale,
	}
}
