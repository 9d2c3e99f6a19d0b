// Package canvas provides the slice canvas: the viewer's displayed slice
// with zoom, hover, click and drag.
package canvas

import (
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"atlas-segment/internal/render"
	"atlas-segment/internal/viewer"
	"atlas-segment/pkg/colorutil"
	"atlas-segment/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const (
	minZoom  = 0.25
	maxZoom  = 32.0
	zoomStep = 1.25
)

// SliceCanvas displays one slice of the viewer's layer stack.
type SliceCanvas struct {
	widget.BaseWidget

	model     *viewer.Model
	composite *render.Composite
	overlay   *Overlay

	// Display state
	raster  *fynecanvas.Raster
	zoom    float64
	imgSize fyne.Size

	// Slice navigation
	slider     *widget.Slider
	sliceLabel *widget.Label
	syncing    bool

	// Container
	scroll  *zoomScroll
	content *draggableContent
	box     fyne.CanvasObject

	// Last rendered output for sampling
	lastOutput *image.RGBA

	// Callbacks, in voxel coordinates
	onLeftClick func(pos geometry.Point3D)
	onDrag      func(pos geometry.Point3D)
}

// zoomScroll is a widget that wraps a scroll container but intercepts wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *SliceCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *SliceCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// Offset returns the scroll container's current offset.
func (zs *zoomScroll) Offset() fyne.Position {
	return zs.scroll.Offset
}

// draggableContent wraps the raster to handle mouse events.
type draggableContent struct {
	widget.BaseWidget
	canvas *SliceCanvas
	raster *fynecanvas.Raster
}

var (
	_ fyne.Tappable     = (*draggableContent)(nil)
	_ fyne.Draggable    = (*draggableContent)(nil)
	_ desktop.Hoverable = (*draggableContent)(nil)
)

func newDraggableContent(sc *SliceCanvas, raster *fynecanvas.Raster) *draggableContent {
	dc := &draggableContent{canvas: sc, raster: raster}
	dc.ExtendBaseWidget(dc)
	return dc
}

func (dc *draggableContent) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(dc.raster)
}

func (dc *draggableContent) MinSize() fyne.Size {
	return dc.raster.MinSize()
}

// inside rejects positions outside the widget, which fyne can deliver.
func (dc *draggableContent) inside(p fyne.Position) bool {
	size := dc.Size()
	return p.X >= 0 && p.Y >= 0 && p.X <= size.Width && p.Y <= size.Height
}

// Tapped handles left-click events.
func (dc *draggableContent) Tapped(ev *fyne.PointEvent) {
	if dc.canvas.onLeftClick == nil || !dc.inside(ev.Position) {
		return
	}
	dc.canvas.onLeftClick(dc.canvas.CanvasToVoxel(float64(ev.Position.X), float64(ev.Position.Y)))
}

func (dc *draggableContent) Dragged(ev *fyne.DragEvent) {
	if dc.canvas.onDrag == nil || !dc.inside(ev.Position) {
		return
	}
	dc.canvas.onDrag(dc.canvas.CanvasToVoxel(float64(ev.Position.X), float64(ev.Position.Y)))
	dc.canvas.Refresh()
}

func (dc *draggableContent) DragEnd() {}

func (dc *draggableContent) MouseIn(ev *desktop.MouseEvent) {
	dc.MouseMoved(ev)
}

// MouseMoved reports the hovered voxel to the viewer's layer callbacks.
func (dc *draggableContent) MouseMoved(ev *desktop.MouseEvent) {
	if !dc.inside(ev.Position) {
		return
	}
	dc.canvas.Hover(float64(ev.Position.X), float64(ev.Position.Y))
}

func (dc *draggableContent) MouseOut() {
	dc.canvas.overlay.Cursor = nil
	dc.canvas.Refresh()
}

// NewSliceCanvas creates a canvas bound to model. It re-renders whenever
// the model changes.
func NewSliceCanvas(model *viewer.Model) *SliceCanvas {
	sc := &SliceCanvas{
		model:     model,
		composite: render.NewComposite(0, 0),
		overlay:   &Overlay{Color: colorutil.Yellow},
		zoom:      4.0,
		imgSize:   fyne.NewSize(400, 300),
	}

	sc.raster = fynecanvas.NewRaster(sc.draw)
	sc.raster.ScaleMode = fynecanvas.ImageScalePixels
	sc.raster.SetMinSize(sc.imgSize)
	sc.content = newDraggableContent(sc, sc.raster)
	sc.scroll = newZoomScroll(sc.content, sc)

	sc.sliceLabel = widget.NewLabel("Slice: -")
	sc.slider = widget.NewSlider(0, 1)
	sc.slider.Step = 1
	sc.slider.OnChanged = func(v float64) {
		if sc.syncing {
			return
		}
		sc.model.SetDisplayedSlice(0, int(v))
	}
	sc.box = container.NewBorder(
		nil,
		container.NewBorder(nil, nil, sc.sliceLabel, nil, sc.slider),
		nil,
		nil,
		sc.scroll,
	)

	model.OnChange(sc.sync)
	sc.ExtendBaseWidget(sc)
	sc.sync()
	return sc
}

// Container returns the canvas with its slice slider.
func (sc *SliceCanvas) Container() fyne.CanvasObject {
	return sc.box
}

// SetResolution sets microns per voxel, used to size points.
func (sc *SliceCanvas) SetResolution(res float64) {
	sc.composite.Resolution = res
	sc.Refresh()
}

// SetPaths replaces the polylines drawn over the slice.
func (sc *SliceCanvas) SetPaths(paths []OverlayPath) {
	sc.overlay.Paths = paths
	sc.Refresh()
}

// sync pulls slider range, slice and size from the model.
func (sc *SliceCanvas) sync() {
	extent := sc.model.Extent()
	z := sc.model.DisplayedSlice(0)

	sc.syncing = true
	sc.slider.Max = math.Max(float64(extent-1), 1)
	sc.slider.SetValue(float64(z))
	sc.syncing = false

	if extent == 0 {
		sc.sliceLabel.SetText("Slice: -")
	} else {
		sc.sliceLabel.SetText(fmt.Sprintf("Slice: %d/%d", z, extent-1))
	}
	sc.updateContentSize()
}

// Slice returns the displayed slice index.
func (sc *SliceCanvas) Slice() int {
	return sc.model.DisplayedSlice(0)
}

// SetZoom sets the zoom level.
func (sc *SliceCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	sc.zoom = zoom
	sc.updateContentSize()
}

// GetZoom returns the current zoom level.
func (sc *SliceCanvas) GetZoom() float64 {
	return sc.zoom
}

// ZoomIn increases the zoom level.
func (sc *SliceCanvas) ZoomIn() {
	sc.SetZoom(sc.zoom * zoomStep)
}

// ZoomOut decreases the zoom level.
func (sc *SliceCanvas) ZoomOut() {
	sc.SetZoom(sc.zoom / zoomStep)
}

// OnLeftClick sets a callback for left-click events, in voxel coordinates.
func (sc *SliceCanvas) OnLeftClick(callback func(pos geometry.Point3D)) {
	sc.onLeftClick = callback
}

// OnDrag sets a callback for drag events, in voxel coordinates.
func (sc *SliceCanvas) OnDrag(callback func(pos geometry.Point3D)) {
	sc.onDrag = callback
}

// Hover forwards a canvas position to the viewer and moves the crosshair.
func (sc *SliceCanvas) Hover(canvasX, canvasY float64) {
	sc.model.MouseMove(sc.CanvasToVoxel(canvasX, canvasY))
	sc.overlay.Cursor = &image.Point{X: int(canvasX), Y: int(canvasY)}
	sc.raster.Refresh()
}

// CanvasToVoxel converts canvas coordinates to a voxel position on the
// displayed slice. Voxel centres sit at integer coordinates.
func (sc *SliceCanvas) CanvasToVoxel(canvasX, canvasY float64) geometry.Point3D {
	return geometry.NewPoint3D(float64(sc.Slice()), canvasY/sc.zoom-0.5, canvasX/sc.zoom-0.5)
}

// VoxelToCanvas converts an in-plane voxel position to canvas coordinates.
func (sc *SliceCanvas) VoxelToCanvas(y, x float64) (canvasX, canvasY float64) {
	return (x + 0.5) * sc.zoom, (y + 0.5) * sc.zoom
}

// GetRenderedOutput returns the last rendered canvas output for sampling.
func (sc *SliceCanvas) GetRenderedOutput() *image.RGBA {
	return sc.lastOutput
}

// Refresh refreshes the canvas display.
func (sc *SliceCanvas) Refresh() {
	sc.raster.Refresh()
}

// planeSize returns the in-plane extent of the largest volume layer.
func (sc *SliceCanvas) planeSize() (width, height int) {
	for _, l := range sc.model.Layers() {
		if l.Volume == nil {
			continue
		}
		if l.Volume.Width > width {
			width = l.Volume.Width
		}
		if l.Volume.Height > height {
			height = l.Volume.Height
		}
	}
	return width, height
}

// updateContentSize updates the content size based on volume and zoom.
func (sc *SliceCanvas) updateContentSize() {
	w, h := sc.planeSize()
	if w == 0 || h == 0 {
		sc.imgSize = fyne.NewSize(400, 300)
	} else {
		sc.imgSize = fyne.NewSize(float32(float64(w)*sc.zoom), float32(float64(h)*sc.zoom))
	}

	sc.raster.SetMinSize(sc.imgSize)
	sc.raster.Resize(sc.imgSize)
	if sc.content != nil {
		sc.content.Resize(sc.imgSize)
		sc.content.Refresh()
	}
	sc.raster.Refresh()
	if sc.scroll != nil {
		sc.scroll.Refresh()
	}
}

// draw is the raster drawing function.
func (sc *SliceCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	vw, vh := sc.planeSize()
	if vw == 0 || vh == 0 || w == 0 || h == 0 {
		for i := 3; i < len(output.Pix); i += 4 {
			output.Pix[i] = 255
		}
		sc.lastOutput = output
		return output
	}

	sc.composite.Width, sc.composite.Height = vw, vh
	slice := sc.composite.Render(sc.model.Layers(), sc.Slice())

	// Scale voxel image to the zoomed canvas, keeping voxels square
	target := image.Rect(0, 0, int(float64(vw)*sc.zoom), int(float64(vh)*sc.zoom))
	xdraw.NearestNeighbor.Scale(output, target, slice, slice.Bounds(), xdraw.Src, nil)

	drawOverlay(output, sc.overlay, sc.zoom)
	sc.lastOutput = output
	return output
}

// CreateRenderer implements fyne.Widget.
func (sc *SliceCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(sc.box)
}
