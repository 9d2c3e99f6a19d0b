package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"atlas-segment/pkg/colorutil"
)

// AtlasTheme is a dark theme whose accents match what is drawn on the
// slice canvas: the primary colour is the traced track overlay and focus
// uses the colour painted regions are rendered in.
type AtlasTheme struct{}

var _ fyne.Theme = (*AtlasTheme)(nil)

// sliceBackground is the canvas background behind the reference volume.
var sliceBackground = color.NRGBA{R: 0x12, G: 0x12, B: 0x14, A: 0xFF}

func withAlpha(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}

func (t *AtlasTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return withAlpha(colorutil.Cyan, 0xFF)
	case theme.ColorNameSelection:
		return withAlpha(colorutil.Cyan, 0x60)
	case theme.ColorNameFocus:
		return withAlpha(colorutil.LabelColor(RegionLabel), 0x80)
	case theme.ColorNameBackground:
		return sliceBackground
	case theme.ColorNameScrollBar:
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	default:
		return theme.DefaultTheme().Color(name, theme.VariantDark)
	}
}

func (t *AtlasTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *AtlasTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size keeps the side panel compact next to the slice view.
func (t *AtlasTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameScrollBar:
		return 16
	case theme.SizeNameScrollBarSmall:
		return 12
	default:
		return theme.DefaultTheme().Size(name)
	}
}
