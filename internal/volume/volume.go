// Package volume provides dense 3D voxel volumes and slice-stack persistence.
package volume

import (
	"fmt"
	"image"
)

// Volume is a dense voxel grid stored in z, y, x order. Samples are 32-bit
// so that annotation volumes can carry full ontology ids; intensity images
// and drawn regions stay within 16 bits.
type Volume struct {
	Depth  int
	Height int
	Width  int
	Data   []uint32
}

// New creates a zero-filled volume.
func New(depth, height, width int) *Volume {
	return &Volume{
		Depth:  depth,
		Height: height,
		Width:  width,
		Data:   make([]uint32, depth*height*width),
	}
}

// NewLike creates a zero-filled volume with the same shape as v.
func NewLike(v *Volume) *Volume {
	return New(v.Depth, v.Height, v.Width)
}

// Shape returns the (depth, height, width) extent.
func (v *Volume) Shape() [3]int {
	return [3]int{v.Depth, v.Height, v.Width}
}

// SameShape reports whether two volumes have identical extents.
func (v *Volume) SameShape(other *Volume) bool {
	return other != nil && v.Shape() == other.Shape()
}

// Contains reports whether the voxel index lies inside the volume.
func (v *Volume) Contains(z, y, x int) bool {
	return z >= 0 && z < v.Depth && y >= 0 && y < v.Height && x >= 0 && x < v.Width
}

func (v *Volume) index(z, y, x int) int {
	return z*v.Width*v.Height + y*v.Width + x
}

// At returns the voxel value, or 0 outside the volume.
func (v *Volume) At(z, y, x int) uint32 {
	if !v.Contains(z, y, x) {
		return 0
	}
	return v.Data[v.index(z, y, x)]
}

// Set writes a voxel value. Out of range indices are ignored.
func (v *Volume) Set(z, y, x int, value uint32) {
	if !v.Contains(z, y, x) {
		return
	}
	v.Data[v.index(z, y, x)] = value
}

// Clone returns a deep copy.
func (v *Volume) Clone() *Volume {
	out := &Volume{Depth: v.Depth, Height: v.Height, Width: v.Width}
	out.Data = make([]uint32, len(v.Data))
	copy(out.Data, v.Data)
	return out
}

// MaxGray16 is the largest sample a 16-bit grayscale slice can hold.
const MaxGray16 = 0xFFFF

// Slice returns slice z as an image. Volumes whose samples fit in 16 bits
// produce *image.Gray16; wider label volumes are packed big-endian into
// the four channels of an *image.NRGBA so the slice round-trips losslessly.
func (v *Volume) Slice(z int) (image.Image, error) {
	if z < 0 || z >= v.Depth {
		return nil, fmt.Errorf("slice %d out of range [0, %d)", z, v.Depth)
	}
	_, hi := v.Range()
	return v.sliceImage(z, hi > MaxGray16), nil
}

func (v *Volume) sliceImage(z int, packed bool) image.Image {
	if packed {
		return v.packedSlice(z)
	}
	img := image.NewGray16(image.Rect(0, 0, v.Width, v.Height))
	for y := 0; y < v.Height; y++ {
		for x := 0; x < v.Width; x++ {
			val := v.Data[v.index(z, y, x)]
			off := img.PixOffset(x, y)
			img.Pix[off] = uint8(val >> 8)
			img.Pix[off+1] = uint8(val)
		}
	}
	return img
}

func (v *Volume) packedSlice(z int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, v.Width, v.Height))
	for y := 0; y < v.Height; y++ {
		for x := 0; x < v.Width; x++ {
			val := v.Data[v.index(z, y, x)]
			off := img.PixOffset(x, y)
			img.Pix[off] = uint8(val >> 24)
			img.Pix[off+1] = uint8(val >> 16)
			img.Pix[off+2] = uint8(val >> 8)
			img.Pix[off+3] = uint8(val)
		}
	}
	return img
}

// SetSlice copies a grayscale or packed label image into slice z.
func (v *Volume) SetSlice(z int, img image.Image) error {
	if z < 0 || z >= v.Depth {
		return fmt.Errorf("slice %d out of range [0, %d)", z, v.Depth)
	}
	b := img.Bounds()
	if b.Dx() != v.Width || b.Dy() != v.Height {
		return fmt.Errorf("slice is %dx%d, volume expects %dx%d", b.Dx(), b.Dy(), v.Width, v.Height)
	}
	for y := 0; y < v.Height; y++ {
		for x := 0; x < v.Width; x++ {
			v.Data[v.index(z, y, x)] = sampleValue(img, x+b.Min.X, y+b.Min.Y)
		}
	}
	return nil
}

// Count returns the number of voxels equal to value.
func (v *Volume) Count(value uint32) int {
	n := 0
	for _, d := range v.Data {
		if d == value {
			n++
		}
	}
	return n
}

// NonZero returns the number of labelled (non-background) voxels.
func (v *Volume) NonZero() int {
	return len(v.Data) - v.Count(0)
}

// Range returns the minimum and maximum voxel values.
func (v *Volume) Range() (lo, hi uint32) {
	if len(v.Data) == 0 {
		return 0, 0
	}
	lo, hi = v.Data[0], v.Data[0]
	for _, d := range v.Data[1:] {
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}
	return lo, hi
}

// PaintDisc sets every voxel of slice z within radius of (y, x) to value.
// It returns the number of voxels written.
func (v *Volume) PaintDisc(z, y, x, radius int, value uint32) int {
	if z < 0 || z >= v.Depth {
		return 0
	}
	if radius < 0 {
		radius = 0
	}
	r2 := radius * radius
	n := 0
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dy*dy+dx*dx > r2 || !v.Contains(z, y+dy, x+dx) {
				continue
			}
			v.Data[v.index(z, y+dy, x+dx)] = value
			n++
		}
	}
	return n
}

// sampleValue reads a raw sample. 8-bit gray images keep their raw value
// so that label slices saved as 8-bit PNG round-trip unchanged, and NRGBA
// images are unpacked as written by Slice.
func sampleValue(img image.Image, x, y int) uint32 {
	switch im := img.(type) {
	case *image.Gray16:
		return uint32(im.Gray16At(x, y).Y)
	case *image.Gray:
		return uint32(im.GrayAt(x, y).Y)
	case *image.NRGBA:
		c := im.NRGBAAt(x, y)
		return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
	default:
		r, _, _, _ := img.At(x, y).RGBA()
		return r
	}
}
