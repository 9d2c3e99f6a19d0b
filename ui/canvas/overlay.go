package canvas

import (
	"image"
	"image/color"

	"atlas-segment/pkg/colorutil"
	"atlas-segment/pkg/geometry"
)

// Overlay is drawn on top of the rendered slice, in canvas pixels.
type Overlay struct {
	Paths  []OverlayPath
	Cursor *image.Point
	Color  color.RGBA
}

// OverlayPath is a polyline through voxel positions, projected onto the slice.
type OverlayPath struct {
	Points []geometry.Point3D
	Color  color.RGBA
}

// drawOverlay draws paths through voxel centres and the cursor crosshair.
func drawOverlay(output *image.RGBA, ov *Overlay, zoom float64) {
	if ov == nil {
		return
	}
	for _, p := range ov.Paths {
		col := p.Color
		if col.A == 0 {
			col = ov.Color
		}
		for i := 1; i < len(p.Points); i++ {
			a, b := p.Points[i-1], p.Points[i]
			drawLine(output,
				int((a.X+0.5)*zoom), int((a.Y+0.5)*zoom),
				int((b.X+0.5)*zoom), int((b.Y+0.5)*zoom),
				col, 1)
		}
	}
	if ov.Cursor != nil {
		c := *ov.Cursor
		drawLine(output, c.X-4, c.Y, c.X+4, c.Y, colorutil.White, 1)
		drawLine(output, c.X, c.Y-4, c.X, c.Y+4, colorutil.White, 1)
	}
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	bounds := output.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				px, py := x1+s, y1+t
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					output.SetRGBA(px, py, col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}
