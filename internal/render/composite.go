// Package render composites the viewer's layers into a 2D slice image.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"atlas-segment/internal/viewer"
	"atlas-segment/pkg/colorutil"
)

// Composite renders one slice of a layer stack.
type Composite struct {
	Width     int
	Height    int
	BackColor color.Color

	// Resolution converts point sizes (microns) to voxels.
	Resolution float64

	// PointColors cycle over points layers, bottom first.
	PointColors []color.RGBA
}

// NewComposite creates a new Composite with the specified dimensions.
func NewComposite(width, height int) *Composite {
	return &Composite{
		Width:       width,
		Height:      height,
		BackColor:   color.RGBA{40, 40, 40, 255}, // Dark gray background
		Resolution:  1,
		PointColors: []color.RGBA{colorutil.Cyan, colorutil.Magenta, colorutil.Yellow},
	}
}

// Render draws slice z of every visible layer, bottom first.
func (c *Composite) Render(layers []*viewer.Layer, z int) *image.RGBA {
	result := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	draw.Draw(result, result.Bounds(), &image.Uniform{c.BackColor}, image.Point{}, draw.Src)

	points := 0
	for _, l := range layers {
		if l == nil || !l.Visible {
			continue
		}
		switch l.Kind {
		case viewer.KindImage:
			c.compositeImage(result, l, z)
		case viewer.KindLabels:
			c.compositeLabels(result, l, z)
		case viewer.KindPoints:
			col := colorutil.White
			if len(c.PointColors) > 0 {
				col = c.PointColors[points%len(c.PointColors)]
			}
			points++
			c.compositePoints(result, l, z, col)
		}
	}
	return result
}

// compositeImage windows intensities to the volume's range.
func (c *Composite) compositeImage(dst *image.RGBA, l *viewer.Layer, z int) {
	v := l.Volume
	if v == nil || z < 0 || z >= v.Depth {
		return
	}
	lo, hi := v.Range()
	span := float64(hi) - float64(lo)
	if span == 0 {
		span = 1
	}
	for y := 0; y < v.Height && y < c.Height; y++ {
		for x := 0; x < v.Width && x < c.Width; x++ {
			g := uint8(clamp((float64(v.At(z, y, x))-float64(lo))/span, 0, 1) * 255)
			c.blendAt(dst, x, y, color.RGBA{g, g, g, 255}, l.Blending, l.Opacity)
		}
	}
}

func (c *Composite) compositeLabels(dst *image.RGBA, l *viewer.Layer, z int) {
	v := l.Volume
	if v == nil || z < 0 || z >= v.Depth {
		return
	}
	for y := 0; y < v.Height && y < c.Height; y++ {
		for x := 0; x < v.Width && x < c.Width; x++ {
			label := v.At(z, y, x)
			if label == 0 {
				continue
			}
			c.blendAt(dst, x, y, colorutil.LabelColor(label), l.Blending, l.Opacity)
		}
	}
}

// compositePoints draws each point as a disc whose radius shrinks with
// distance from the displayed slice.
func (c *Composite) compositePoints(dst *image.RGBA, l *viewer.Layer, z int, col color.RGBA) {
	res := c.Resolution
	if res <= 0 {
		res = 1
	}
	radius := l.PointSize / 2 / res
	if radius < 0.5 {
		radius = 0.5
	}
	for _, p := range l.Points {
		dz := math.Abs(p.Z - float64(z))
		if dz > radius {
			continue
		}
		r := math.Sqrt(radius*radius - dz*dz)
		ri := int(math.Ceil(r))
		for dy := -ri; dy <= ri; dy++ {
			for dx := -ri; dx <= ri; dx++ {
				if float64(dx*dx+dy*dy) > r*r {
					continue
				}
				x := int(math.Round(p.X)) + dx
				y := int(math.Round(p.Y)) + dy
				if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
					continue
				}
				c.blendAt(dst, x, y, col, l.Blending, l.Opacity)
			}
		}
	}
}

func (c *Composite) blendAt(dst *image.RGBA, x, y int, src color.RGBA, mode viewer.Blending, opacity float64) {
	dst.SetRGBA(x, y, blend(dst.RGBAAt(x, y), src, mode, opacity))
}

// blend performs the blend operation between two colors.
func blend(dst, src color.RGBA, mode viewer.Blending, opacity float64) color.RGBA {
	sf := [4]float64{float64(src.R) / 255, float64(src.G) / 255, float64(src.B) / 255, float64(src.A) / 255}
	df := [4]float64{float64(dst.R) / 255, float64(dst.G) / 255, float64(dst.B) / 255, float64(dst.A) / 255}

	alpha := sf[3] * opacity
	var rf [3]float64
	switch mode {
	case viewer.BlendAdditive:
		for i := 0; i < 3; i++ {
			rf[i] = df[i] + sf[i]*alpha
		}
	default:
		for i := 0; i < 3; i++ {
			rf[i] = sf[i]*alpha + df[i]*(1-alpha)
		}
	}
	finalA := alpha + df[3]*(1-alpha)

	return color.RGBA{
		R: uint8(math.Round(clamp(rf[0], 0, 1) * 255)),
		G: uint8(math.Round(clamp(rf[1], 0, 1) * 255)),
		B: uint8(math.Round(clamp(rf[2], 0, 1) * 255)),
		A: uint8(math.Round(clamp(finalA, 0, 1) * 255)),
	}
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
