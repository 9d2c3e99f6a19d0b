//go:build !opencv

package brush

import "atlas-segment/internal/volume"

// Backend names the rasteriser compiled in.
const Backend = "disc"

func paint(v *volume.Volume, s Stroke) int {
	return v.PaintDisc(s.Z, s.Y, s.X, s.Radius, s.Value)
}
