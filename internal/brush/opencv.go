//go:build opencv

package brush

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"atlas-segment/internal/volume"
)

// Backend names the rasteriser compiled in.
const Backend = "opencv"

var maskColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// paint fills a circle into an 8-bit mask covering the brush bounds, then
// copies the label into every masked voxel of the slice.
func paint(v *volume.Volume, s Stroke) int {
	bounds := image.Rect(s.X-s.Radius, s.Y-s.Radius, s.X+s.Radius+1, s.Y+s.Radius+1).
		Intersect(image.Rect(0, 0, v.Width, v.Height))
	if bounds.Empty() {
		return 0
	}

	mask := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), bounds.Dy(), bounds.Dx(), gocv.MatTypeCV8UC1)
	defer mask.Close()
	center := image.Pt(s.X-bounds.Min.X, s.Y-bounds.Min.Y)
	gocv.Circle(&mask, center, s.Radius, maskColor, -1)

	n := 0
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			if mask.GetUCharAt(y, x) == 0 {
				continue
			}
			v.Set(s.Z, bounds.Min.Y+y, bounds.Min.X+x, s.Value)
			n++
		}
	}
	return n
}
