// Package brush rasterises region paint strokes onto label volumes.
//
// Builds tagged opencv draw the brush footprint with gocv (and need a
// system OpenCV); other builds use volume.PaintDisc.
package brush

import "atlas-segment/internal/volume"

// Stroke is one brush dab on slice Z centred at (Y, X).
type Stroke struct {
	Z, Y, X int
	Radius  int
	Value   uint32
}

// Paint applies s to v and returns the number of voxels written.
func Paint(v *volume.Volume, s Stroke) int {
	if v == nil || s.Z < 0 || s.Z >= v.Depth {
		return 0
	}
	if s.Radius < 0 {
		s.Radius = 0
	}
	return paint(v, s)
}
