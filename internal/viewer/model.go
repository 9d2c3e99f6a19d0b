package viewer

import (
	"errors"
	"fmt"
	"math"

	"atlas-segment/internal/paths"
	"atlas-segment/internal/volume"
	"atlas-segment/pkg/geometry"
)

// ErrLayerNotFound is returned when a layer name is not in the stack.
var ErrLayerNotFound = errors.New("layer not found")

// ProjectOpener reads a registration output directory into layers.
type ProjectOpener interface {
	Open(dir string, mode paths.SpaceMode) (*Project, error)
}

// Model is the viewer's layer stack and dimension state. It is not safe
// for concurrent use; all calls happen on the UI goroutine.
type Model struct {
	layers []*Layer
	point  [3]int // displayed index per axis (z, y, x)
	opener ProjectOpener

	listeners []func()
}

// NewModel creates an empty viewer. opener may be nil if projects are
// never opened.
func NewModel(opener ProjectOpener) *Model {
	return &Model{opener: opener}
}

// OnChange registers a listener called after every layer or slice change.
func (m *Model) OnChange(fn func()) {
	m.listeners = append(m.listeners, fn)
}

func (m *Model) changed() {
	for _, fn := range m.listeners {
		fn()
	}
}

// Layers returns the stack, bottom first. The slice is a copy.
func (m *Model) Layers() []*Layer {
	return append([]*Layer(nil), m.layers...)
}

// Len returns the number of layers.
func (m *Model) Len() int {
	return len(m.layers)
}

// Layer finds a layer by name.
func (m *Model) Layer(name string) (*Layer, bool) {
	for _, l := range m.layers {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}

// AddImage adds an intensity image layer.
func (m *Model) AddImage(vol *volume.Volume, name string) *Layer {
	l := &Layer{
		Name:    m.uniqueName(name),
		Kind:    KindImage,
		Volume:  vol,
		Visible: true,
		Opacity: 1.0,
	}
	return m.add(l)
}

// AddLabels adds a labels layer.
func (m *Model) AddLabels(vol *volume.Volume, name string, opts LabelOptions) *Layer {
	l := &Layer{
		Name:     m.uniqueName(name),
		Kind:     KindLabels,
		Volume:   vol,
		Visible:  !opts.Hidden,
		Opacity:  opts.Opacity,
		Blending: opts.Blending,
	}
	return m.add(l)
}

// AddPoints adds a points layer. pointSize is the display diameter in voxels.
func (m *Model) AddPoints(points []geometry.Point3D, name string, pointSize float64) *Layer {
	l := &Layer{
		Name:      m.uniqueName(name),
		Kind:      KindPoints,
		Points:    append([]geometry.Point3D(nil), points...),
		Visible:   true,
		Opacity:   1.0,
		PointSize: pointSize,
	}
	return m.add(l)
}

func (m *Model) add(l *Layer) *Layer {
	if l.Metadata == nil {
		l.Metadata = make(map[string]any)
	}
	m.layers = append(m.layers, l)
	m.changed()
	return l
}

// RemoveLayer removes l from the stack. It reports whether l was present.
func (m *Model) RemoveLayer(l *Layer) bool {
	for i, existing := range m.layers {
		if existing == l {
			m.layers = append(m.layers[:i], m.layers[i+1:]...)
			m.changed()
			return true
		}
	}
	return false
}

// RemoveByName removes the named layer, failing with ErrLayerNotFound.
func (m *Model) RemoveByName(name string) error {
	l, ok := m.Layer(name)
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrLayerNotFound)
	}
	m.RemoveLayer(l)
	return nil
}

// OpenProject reads a registration directory and adds its layers.
// Failures wrap ErrInvalidProject.
func (m *Model) OpenProject(dir string, mode paths.SpaceMode) error {
	if m.opener == nil {
		return fmt.Errorf("%w: no project reader configured", ErrInvalidProject)
	}
	proj, err := m.opener.Open(dir, mode)
	if err != nil {
		return err
	}

	base := m.AddImage(proj.Base, BaseLayerName)
	base.Metadata[MetadataAtlas] = proj.Atlas
	base.Metadata[MetadataAtlasName] = proj.Atlas.Name()
	m.AddLabels(proj.Annotation, proj.Atlas.Name(), LabelOptions{
		Opacity:  0.3,
		Blending: BlendAdditive,
		Hidden:   true,
	})
	if proj.Boundaries != nil {
		m.AddLabels(proj.Boundaries, BoundariesLayerName, LabelOptions{
			Opacity:  0.5,
			Blending: BlendAdditive,
		})
	}
	return nil
}

// SetDisplayedSlice moves the displayed position along one axis.
func (m *Model) SetDisplayedSlice(axis, index int) {
	if axis < 0 || axis >= len(m.point) {
		return
	}
	if index < 0 {
		index = 0
	}
	m.point[axis] = index
	m.changed()
}

// DisplayedSlice returns the displayed index along axis.
func (m *Model) DisplayedSlice(axis int) int {
	if axis < 0 || axis >= len(m.point) {
		return 0
	}
	return m.point[axis]
}

// Extent returns the largest depth of any volume layer.
func (m *Model) Extent() int {
	depth := 0
	for _, l := range m.layers {
		if d := l.Depth(); d > depth {
			depth = d
		}
	}
	return depth
}

// MouseMove dispatches a cursor position to every layer's callbacks.
func (m *Model) MouseMove(pos geometry.Point3D) {
	if math.IsNaN(pos.Z) || math.IsNaN(pos.Y) || math.IsNaN(pos.X) {
		return
	}
	for _, l := range m.Layers() {
		for _, fn := range l.mouseMove {
			fn(l, pos)
		}
	}
}

// uniqueName appends " [n]" to names already present in the stack.
func (m *Model) uniqueName(name string) string {
	if _, taken := m.Layer(name); !taken {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s [%d]", name, i)
		if _, taken := m.Layer(candidate); !taken {
			return candidate
		}
	}
}
