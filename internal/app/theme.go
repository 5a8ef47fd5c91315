package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"expo-floorplan/pkg/colorutil"
)

// FloorPlanTheme tints the default theme with the marker palette.
type FloorPlanTheme struct{}

var _ fyne.Theme = (*FloorPlanTheme)(nil)

func (t *FloorPlanTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return colorutil.MarkerDefault
	case theme.ColorNameFocus:
		return colorutil.WithAlpha(colorutil.MarkerHover, 0xA0)
	case theme.ColorNameSelection:
		return colorutil.WithAlpha(colorutil.MarkerDefault, 0x40)
	case theme.ColorNameError:
		return colorutil.MarkerSelected
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *FloorPlanTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *FloorPlanTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *FloorPlanTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameScrollBar:
		return 12
	default:
		return theme.DefaultTheme().Size(name)
	}
}
