package app

import (
	"image/color"
	"testing"

	"fyne.io/fyne/v2/theme"

	"atlas-segment/pkg/colorutil"
)

func TestThemeMatchesOverlayColors(t *testing.T) {
	th := &AtlasTheme{}

	r, g, b, a := th.Color(theme.ColorNamePrimary, theme.VariantDark).RGBA()
	cr, cg, cb, _ := colorutil.Cyan.RGBA()
	if r != cr || g != cg || b != cb || a != 0xFFFF {
		t.Fatalf("expected primary to be the track color, got %v", th.Color(theme.ColorNamePrimary, theme.VariantDark))
	}

	focus := th.Color(theme.ColorNameFocus, theme.VariantLight).(color.NRGBA)
	region := colorutil.LabelColor(RegionLabel)
	if focus.R != region.R || focus.G != region.G || focus.B != region.B {
		t.Fatalf("expected focus to use the region color %v, got %v", region, focus)
	}

	if th.Size(theme.SizeNameScrollBar) != 16 {
		t.Fatalf("expected wide scrollbar, got %v", th.Size(theme.SizeNameScrollBar))
	}
}
