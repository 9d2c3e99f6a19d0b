package app

import (
	"errors"
	"fmt"
	"math"

	"atlas-segment/internal/brush"
	"atlas-segment/internal/regions"
	"atlas-segment/internal/viewer"
	"atlas-segment/internal/volume"
)

// RegionLabel is the value painted into region layers.
const RegionLabel uint32 = 1

// ErrNoActiveLayer is returned when painting or adding points without a target.
var ErrNoActiveLayer = errors.New("no active layer")

// RegionPanel creates, paints and reloads region (labels) layers.
type RegionPanel struct {
	c      *Controller
	active *viewer.Layer
}

// TogglePanelVisibility shows or hides the region controls. Layers are
// not touched.
func (p *RegionPanel) TogglePanelVisibility() {
	v := p.c.session.View()
	p.c.session.SetRegionPanelVisible(!v.RegionPanelVisible)
}

// CheckForSavedRegions loads every region saved in the regions directory
// as a labels layer. Nothing saved is not an error.
func (p *RegionPanel) CheckForSavedRegions() error {
	if p.c.session.RootDirectory() == "" {
		return nil
	}
	dir := p.c.session.Paths().RegionsDirectory
	saved, err := regions.Load(dir)
	if err != nil {
		return err
	}
	if len(saved) == 0 {
		return nil
	}
	for _, r := range saved {
		l := p.c.viewer.AddLabels(r.Volume, r.Name, viewer.DefaultLabelOptions())
		p.c.registry.AddRegion(l)
	}
	p.c.logger.Info("loaded saved regions", "dir", dir, "count", len(saved))
	p.c.session.Emit(EventRegionsChanged, p.c.registry.RegionCount())
	return nil
}

// AddRegion creates an empty labels layer shaped like the base layer and
// makes it the paint target.
func (p *RegionPanel) AddRegion() (*viewer.Layer, error) {
	base := p.c.base
	if base == nil || base.Volume == nil {
		return nil, fmt.Errorf("add region: %w", ErrNoProject)
	}
	name := p.nextName()
	l := p.c.viewer.AddLabels(volume.NewLike(base.Volume), name, viewer.DefaultLabelOptions())
	p.c.registry.AddRegion(l)
	p.active = l
	p.c.session.Emit(EventRegionsChanged, p.c.registry.RegionCount())
	return l, nil
}

func (p *RegionPanel) nextName() string {
	for n := p.c.registry.RegionCount(); ; n++ {
		name := fmt.Sprintf("region_%d", n)
		if _, taken := p.c.viewer.Layer(name); !taken {
			return name
		}
	}
}

// Active returns the paint target, nil when none is selected.
func (p *RegionPanel) Active() *viewer.Layer {
	return p.active
}

// SetActive selects a registered region by name.
func (p *RegionPanel) SetActive(name string) error {
	l, ok := p.c.registry.Region(name)
	if !ok {
		return fmt.Errorf("region %q: %w", name, viewer.ErrLayerNotFound)
	}
	p.active = l
	return nil
}

// Remove deletes a region layer from the viewer and the registry.
func (p *RegionPanel) Remove(name string) error {
	l, ok := p.c.registry.Region(name)
	if !ok {
		return fmt.Errorf("region %q: %w", name, viewer.ErrLayerNotFound)
	}
	p.c.viewer.RemoveLayer(l)
	p.c.registry.Remove(l)
	if p.active == l {
		p.active = nil
	}
	p.c.session.Emit(EventRegionsChanged, p.c.registry.RegionCount())
	return nil
}

// BrushRadius converts the configured brush diameter (microns) to a radius
// in voxels using the atlas's in-plane resolution.
func (p *RegionPanel) BrushRadius() int {
	size := float64(p.c.Config().BrushSize)
	res := 1.0
	if p.c.atlas != nil && p.c.atlas.Resolution()[1] > 0 {
		res = p.c.atlas.Resolution()[1]
	}
	return int(math.Round(size / 2 / res))
}

// Paint labels a brush disc on slice z of the active region. It returns
// the number of voxels painted.
func (p *RegionPanel) Paint(z, y, x int) (int, error) {
	if p.active == nil || p.active.Volume == nil {
		return 0, ErrNoActiveLayer
	}
	n := brush.Paint(p.active.Volume, brush.Stroke{Z: z, Y: y, X: x, Radius: p.BrushRadius(), Value: RegionLabel})
	return n, nil
}

func (p *RegionPanel) reset() {
	p.active = nil
}
