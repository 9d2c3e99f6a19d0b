package canvas

import (
	"image"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	"atlas-segment/internal/viewer"
	"atlas-segment/internal/volume"
	"atlas-segment/pkg/colorutil"
	"atlas-segment/pkg/geometry"
)

func newTestCanvas(t *testing.T) (*SliceCanvas, *viewer.Model) {
	t.Helper()
	test.NewApp()

	model := viewer.NewModel(nil)
	vol := volume.New(5, 4, 6)
	vol.Set(2, 1, 3, 200)
	model.AddImage(vol, "image")
	return NewSliceCanvas(model), model
}

func TestZoomClamped(t *testing.T) {
	sc, _ := newTestCanvas(t)
	for i := 0; i < 100; i++ {
		sc.ZoomIn()
	}
	if sc.GetZoom() != maxZoom {
		t.Errorf("Expected zoom clamped to %v, got %v", maxZoom, sc.GetZoom())
	}
	for i := 0; i < 100; i++ {
		sc.ZoomOut()
	}
	if sc.GetZoom() != minZoom {
		t.Errorf("Expected zoom clamped to %v, got %v", minZoom, sc.GetZoom())
	}
}

func TestCanvasToVoxelUsesDisplayedSlice(t *testing.T) {
	sc, model := newTestCanvas(t)
	sc.SetZoom(2)
	model.SetDisplayedSlice(0, 3)

	pos := sc.CanvasToVoxel(9, 4)
	if pos != geometry.NewPoint3D(3, 1.5, 4) {
		t.Errorf("Unexpected voxel position %v", pos)
	}
	x, y := sc.VoxelToCanvas(1.5, 4)
	if x != 9 || y != 4 {
		t.Errorf("Expected (9, 4), got (%v, %v)", x, y)
	}
}

func TestSliderFollowsModel(t *testing.T) {
	sc, model := newTestCanvas(t)
	if sc.slider.Max != 4 {
		t.Errorf("Expected slider max 4, got %v", sc.slider.Max)
	}
	model.SetDisplayedSlice(0, 2)
	if sc.slider.Value != 2 {
		t.Errorf("Expected slider at 2, got %v", sc.slider.Value)
	}
	if sc.sliceLabel.Text != "Slice: 2/4" {
		t.Errorf("Unexpected slice label %q", sc.sliceLabel.Text)
	}

	sc.slider.SetValue(1)
	if model.DisplayedSlice(0) != 1 {
		t.Errorf("Expected slider to move model to slice 1, got %d", model.DisplayedSlice(0))
	}
}

func TestHoverDispatchesToLayers(t *testing.T) {
	sc, model := newTestCanvas(t)
	sc.SetZoom(1)
	model.SetDisplayedSlice(0, 2)

	var got []uint32
	l, _ := model.Layer("image")
	l.OnMouseMove(func(l *viewer.Layer, pos geometry.Point3D) {
		got = append(got, l.ValueAt(pos))
	})

	sc.content.MouseMoved(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(3.5, 1.5)}})
	if len(got) != 1 || got[0] != 200 {
		t.Fatalf("Expected one hover with value 200, got %v", got)
	}
	if sc.overlay.Cursor == nil {
		t.Error("Expected crosshair after hover")
	}
	sc.content.MouseOut()
	if sc.overlay.Cursor != nil {
		t.Error("Expected crosshair cleared on mouse out")
	}
}

func TestTapReportsVoxel(t *testing.T) {
	sc, _ := newTestCanvas(t)
	sc.SetZoom(2)

	var clicked []geometry.Point3D
	sc.OnLeftClick(func(pos geometry.Point3D) { clicked = append(clicked, pos) })
	sc.content.Tapped(&fyne.PointEvent{Position: fyne.NewPos(4, 2)})
	// Outside the content is ignored
	sc.content.Tapped(&fyne.PointEvent{Position: fyne.NewPos(-1, 2)})

	if len(clicked) != 1 || clicked[0] != geometry.NewPoint3D(0, 0.5, 1.5) {
		t.Errorf("Unexpected clicks %v", clicked)
	}
}

func TestDrawRendersSlice(t *testing.T) {
	sc, model := newTestCanvas(t)
	sc.SetZoom(2)
	model.SetDisplayedSlice(0, 2)

	out := sc.draw(12, 8).(*image.RGBA)
	bright := out.RGBAAt(6, 2)
	dark := out.RGBAAt(0, 0)
	if bright.R <= dark.R {
		t.Errorf("Expected labelled voxel brighter than background: %v vs %v", bright, dark)
	}
	// Voxel (1, 3) covers canvas pixels 6..7 x 2..3 at zoom 2
	if out.RGBAAt(7, 3) != bright {
		t.Error("Expected nearest-neighbour scaling to fill the voxel")
	}
	if sc.GetRenderedOutput() != out {
		t.Error("Expected last output to be kept")
	}
}

func TestDrawEmptyModel(t *testing.T) {
	test.NewApp()
	sc := NewSliceCanvas(viewer.NewModel(nil))
	out := sc.draw(4, 4).(*image.RGBA)
	if out.RGBAAt(1, 1).A != 255 {
		t.Error("Expected opaque empty canvas")
	}
	if sc.sliceLabel.Text != "Slice: -" {
		t.Errorf("Unexpected slice label %q", sc.sliceLabel.Text)
	}
}

func TestDrawLineClipsAndOverlay(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	drawLine(img, -5, 5, 20, 5, colorutil.Cyan, 1)
	if img.RGBAAt(0, 5) != colorutil.Cyan || img.RGBAAt(9, 5) != colorutil.Cyan {
		t.Error("Expected clipped horizontal line across the image")
	}

	img = image.NewRGBA(image.Rect(0, 0, 10, 10))
	drawOverlay(img, &Overlay{
		Color: colorutil.Yellow,
		Paths: []OverlayPath{{Points: []geometry.Point3D{{Y: 0, X: 0}, {Y: 4, X: 4}}}},
	}, 2)
	if img.RGBAAt(1, 1) != colorutil.Yellow || img.RGBAAt(5, 5) != colorutil.Yellow || img.RGBAAt(9, 9) != colorutil.Yellow {
		t.Error("Expected diagonal path through voxel centres scaled by zoom")
	}
}
