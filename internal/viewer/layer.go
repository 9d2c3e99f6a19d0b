// Package viewer provides the in-process layer viewer the segmentation
// workflow drives: a stack of image, labels and points layers, the
// displayed slice position, and per-layer mouse callbacks.
package viewer

import (
	"atlas-segment/internal/volume"
	"atlas-segment/pkg/geometry"
)

// Kind identifies what a layer holds.
type Kind int

const (
	KindImage Kind = iota
	KindLabels
	KindPoints
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "Image"
	case KindLabels:
		return "Labels"
	case KindPoints:
		return "Points"
	default:
		return "Unknown"
	}
}

// Blending controls how a layer is composited over the layers below it.
type Blending int

const (
	BlendTranslucent Blending = iota
	BlendAdditive
)

func (b Blending) String() string {
	switch b {
	case BlendAdditive:
		return "additive"
	default:
		return "translucent"
	}
}

// Metadata keys set on the base layer of an opened project.
const (
	MetadataAtlas     = "atlas"      // *atlas.Atlas
	MetadataAtlasName = "atlas_name" // name of the atlas labels layer
)

// MouseMoveFunc is called with the voxel position under the cursor.
type MouseMoveFunc func(l *Layer, pos geometry.Point3D)

// Layer is one entry of the viewer's layer stack. Image and labels layers
// carry a volume; points layers carry an ordered point list.
type Layer struct {
	Name     string
	Kind     Kind
	Volume   *volume.Volume
	Points   []geometry.Point3D
	Visible  bool
	Opacity  float64
	Blending Blending
	Metadata map[string]any

	// PointSize is the display diameter of points, in voxels.
	PointSize float64

	mouseMove []MouseMoveFunc
}

// LabelOptions configure a new labels layer.
type LabelOptions struct {
	Opacity  float64
	Blending Blending
	Hidden   bool
}

// DefaultLabelOptions returns the options used for user-drawn regions.
func DefaultLabelOptions() LabelOptions {
	return LabelOptions{Opacity: 0.7, Blending: BlendTranslucent}
}

// OnMouseMove appends a mouse-move callback.
func (l *Layer) OnMouseMove(fn MouseMoveFunc) {
	l.mouseMove = append(l.mouseMove, fn)
}

// ClearMouseMove removes all mouse-move callbacks.
func (l *Layer) ClearMouseMove() {
	l.mouseMove = nil
}

// MouseMoveCallbacks returns the number of installed callbacks.
func (l *Layer) MouseMoveCallbacks() int {
	return len(l.mouseMove)
}

// Depth returns the extent along the primary (slice) axis. Points layers
// report 0.
func (l *Layer) Depth() int {
	if l.Volume == nil {
		return 0
	}
	return l.Volume.Depth
}

// ValueAt returns the voxel value under pos, or 0 for points layers and
// positions outside the volume.
func (l *Layer) ValueAt(pos geometry.Point3D) uint32 {
	if l.Volume == nil {
		return 0
	}
	z, y, x := pos.Voxel()
	return l.Volume.At(z, y, x)
}

// AddPoint appends a point to a points layer.
func (l *Layer) AddPoint(p geometry.Point3D) {
	l.Points = append(l.Points, p)
}
