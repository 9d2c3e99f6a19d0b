package render

import (
	"image/color"
	"testing"

	"atlas-segment/internal/viewer"
	"atlas-segment/internal/volume"
	"atlas-segment/pkg/colorutil"
	"atlas-segment/pkg/geometry"
)

func TestRenderImageWindowed(t *testing.T) {
	v := volume.New(1, 1, 2)
	v.Set(0, 0, 0, 100)
	v.Set(0, 0, 1, 300)
	img := &viewer.Layer{Kind: viewer.KindImage, Volume: v, Visible: true, Opacity: 1}

	out := NewComposite(2, 1).Render([]*viewer.Layer{img}, 0)
	if got := out.RGBAAt(0, 0); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("Expected black at the low end, got %v", got)
	}
	if got := out.RGBAAt(1, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("Expected white at the high end, got %v", got)
	}
}

func TestRenderSkipsHiddenAndBackground(t *testing.T) {
	v := volume.New(1, 1, 2)
	v.Set(0, 0, 1, 3)
	hidden := &viewer.Layer{Kind: viewer.KindLabels, Volume: v, Visible: false, Opacity: 1}
	shown := &viewer.Layer{Kind: viewer.KindLabels, Volume: v, Visible: true, Opacity: 1}

	c := NewComposite(2, 1)
	back := c.BackColor.(color.RGBA)
	if got := c.Render([]*viewer.Layer{hidden}, 0).RGBAAt(1, 0); got != back {
		t.Errorf("Expected hidden layer skipped, got %v", got)
	}
	out := c.Render([]*viewer.Layer{shown}, 0)
	if got := out.RGBAAt(0, 0); got != back {
		t.Errorf("Expected background label transparent, got %v", got)
	}
	if got := out.RGBAAt(1, 0); got != colorutil.LabelColor(3) {
		t.Errorf("Expected label color, got %v", got)
	}
}

func TestBlendModes(t *testing.T) {
	dst := color.RGBA{100, 100, 100, 255}
	src := color.RGBA{200, 0, 0, 255}

	if got := blend(dst, src, viewer.BlendTranslucent, 0.5); got.R != 150 || got.G != 50 {
		t.Errorf("Unexpected translucent blend %v", got)
	}
	if got := blend(dst, src, viewer.BlendAdditive, 1); got.R != 255 || got.G != 100 {
		t.Errorf("Unexpected additive blend %v", got)
	}
}

// TestRenderPoints draws points only near the displayed slice
func TestRenderPoints(t *testing.T) {
	l := &viewer.Layer{
		Kind:      viewer.KindPoints,
		Points:    []geometry.Point3D{{Z: 2, Y: 2, X: 2}},
		Visible:   true,
		Opacity:   1,
		PointSize: 50,
	}
	c := NewComposite(5, 5)
	c.Resolution = 25 // radius of one voxel

	on := c.Render([]*viewer.Layer{l}, 2)
	if got := on.RGBAAt(2, 2); got != colorutil.Cyan {
		t.Errorf("Expected point drawn, got %v", got)
	}
	off := c.Render([]*viewer.Layer{l}, 0)
	if got := off.RGBAAt(2, 2); got == colorutil.Cyan {
		t.Error("Expected point hidden two slices away")
	}
}
