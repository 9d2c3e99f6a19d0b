package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"atlas-segment/internal/atlas"
	"atlas-segment/internal/config"
	"atlas-segment/internal/layers"
	"atlas-segment/internal/paths"
	"atlas-segment/internal/regions"
	"atlas-segment/internal/task"
	"atlas-segment/internal/tracks"
	"atlas-segment/internal/viewer"
	"atlas-segment/internal/volume"
	"atlas-segment/pkg/geometry"
)

var (
	// ErrExportUnavailable is returned when exporting outside standard space.
	ErrExportUnavailable = errors.New("export is only available in standard space")
	// ErrNoProject is returned when an operation needs loaded data or a
	// project directory that is not there.
	ErrNoProject = errors.New("no project loaded")
)

// Viewer is the layer viewer the controller drives.
type Viewer interface {
	AddImage(vol *volume.Volume, name string) *viewer.Layer
	AddLabels(vol *volume.Volume, name string, opts viewer.LabelOptions) *viewer.Layer
	AddPoints(points []geometry.Point3D, name string, pointSize float64) *viewer.Layer
	OpenProject(dir string, mode paths.SpaceMode) error
	RemoveLayer(l *viewer.Layer) bool
	Layer(name string) (*viewer.Layer, bool)
	Layers() []*viewer.Layer
	SetDisplayedSlice(axis, index int)
}

// AtlasProvider lists and loads installed atlases.
type AtlasProvider interface {
	ListAvailableAtlases() ([]atlas.Descriptor, error)
	LoadAtlas(name string) (*atlas.Atlas, error)
}

// DirectoryChooser asks the user for a directory. done receives an empty
// string when the user cancels.
type DirectoryChooser interface {
	ChooseDirectory(title string, done func(dir string))
}

// Options configure a Controller. Session, Config and Logger default when nil.
type Options struct {
	Session *Session
	Viewer  Viewer
	Atlases AtlasProvider
	Chooser DirectoryChooser
	Config  *config.Config
	Logger  *slog.Logger
}

// Controller is the single authority for what is loaded and where it is
// saved. All methods run on the UI goroutine except SetConfig, which the
// config reloader calls from its own goroutine.
type Controller struct {
	session  *Session
	viewer   Viewer
	atlases  AtlasProvider
	chooser  DirectoryChooser
	cfg      atomic.Pointer[config.Config]
	logger   *slog.Logger
	registry *layers.Registry

	atlas      *atlas.Atlas
	base       *viewer.Layer
	atlasLayer *viewer.Layer

	Regions *RegionPanel
	Tracks  *TrackPanel
}

// NewController wires a controller to its collaborators.
func NewController(opts Options) *Controller {
	if opts.Session == nil {
		opts.Session = NewSession()
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	c := &Controller{
		session:  opts.Session,
		viewer:   opts.Viewer,
		atlases:  opts.Atlases,
		chooser:  opts.Chooser,
		logger:   opts.Logger.With("component", "controller"),
		registry: layers.NewRegistry(),
	}
	c.cfg.Store(opts.Config)
	c.Regions = &RegionPanel{c: c}
	c.Tracks = &TrackPanel{c: c}
	return c
}

// Session returns the controlled session.
func (c *Controller) Session() *Session {
	return c.session
}

// Registry returns the region and track layer references.
func (c *Controller) Registry() *layers.Registry {
	return c.registry
}

// Config returns the current configuration. Callers must not modify it.
func (c *Controller) Config() *config.Config {
	return c.cfg.Load()
}

// SetConfig replaces the configuration. Sizes and file options apply to
// the next layer created or saved; nil is ignored. It is safe to call from
// any goroutine.
func (c *Controller) SetConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	c.cfg.Store(cfg)
	c.logger.Info("configuration updated", "brushSize", cfg.BrushSize, "splinePoints", cfg.SplinePoints)
}

// Atlas returns the active atlas, nil before anything is loaded.
func (c *Controller) Atlas() *atlas.Atlas {
	return c.atlas
}

// BaseLayer returns the image layer segmentations are drawn over.
func (c *Controller) BaseLayer() *viewer.Layer {
	return c.base
}

// AtlasMenu returns the atlas selection entries, placeholder first.
func (c *Controller) AtlasMenu() ([]string, error) {
	if c.atlases == nil {
		return atlas.MenuEntries(nil), nil
	}
	list, err := c.atlases.ListAvailableAtlases()
	if err != nil {
		return atlas.MenuEntries(nil), fmt.Errorf("list atlases: %w", err)
	}
	return atlas.MenuEntries(list), nil
}

// SelectAtlasEntry selects the atlas named by a menu entry. The
// placeholder entry does nothing.
func (c *Controller) SelectAtlasEntry(entry string) error {
	name, ok := atlas.ParseMenuEntry(entry)
	if !ok {
		return nil
	}
	return c.SelectAtlas(name)
}

// SelectAtlas loads an atlas into the viewer in standard space and then
// asks for the output directory. Selecting a different atlas, or an atlas
// after a directory, resets all layers first. Unknown names fail with an
// error wrapping atlas.ErrNotFound.
func (c *Controller) SelectAtlas(name string) error {
	if err := c.loadAtlas(name); err != nil {
		return err
	}
	if c.chooser == nil {
		c.session.SetStatus(StatusReady)
		return nil
	}
	c.chooser.ChooseDirectory("Select output directory", func(dir string) {
		if err := c.SetOutputDirectory(dir); err != nil {
			c.logger.Error("failed to open output directory", "dir", dir, "error", err)
		}
	})
	return nil
}

func (c *Controller) loadAtlas(name string) error {
	if c.atlases == nil {
		return fmt.Errorf("select atlas %s: %w", name, atlas.ErrNotFound)
	}
	same := false
	if d, ok := c.session.SelectedAtlas(); ok && c.session.Source() == SourceAtlas {
		same = d.Name == name
	}
	if !same {
		if c.session.Source() != SourceNone {
			c.ClearLayers()
		}
		// the previous project's directory must not receive this atlas's layers
		if c.session.RootDirectory() != "" {
			c.session.SetRootDirectory("")
		}
	}

	c.session.SetStatus(StatusLoading)
	a, err := c.atlases.LoadAtlas(name)
	if err != nil {
		c.session.SetStatus(StatusReady)
		return fmt.Errorf("select atlas %s: %w", name, err)
	}
	c.logger.Info("loaded atlas", "atlas", a.Descriptor().String())

	if !same || c.base == nil {
		c.atlas = a
		c.base = c.viewer.AddImage(a.Reference, viewer.ReferenceLayerName)
		c.base.Metadata[viewer.MetadataAtlas] = a
		c.base.Metadata[viewer.MetadataAtlasName] = a.Name()
		c.atlasLayer = c.viewer.AddLabels(a.Annotation, a.Name(), viewer.LabelOptions{
			Opacity:  0.3,
			Blending: viewer.BlendAdditive,
			Hidden:   true,
		})
	}

	d := a.Descriptor()
	c.session.SetSource(SourceAtlas, &d)
	c.session.SetMode(paths.Standard)
	c.InitializeSegmentationInterface()
	return nil
}

// SetOutputDirectory finishes an atlas selection: the project root becomes
// <dir>/<atlas name> and saved segmentations there are loaded. An empty
// dir leaves the root as SelectAtlas left it: unset after switching atlas,
// unchanged when the loaded atlas was selected again. Choosing the current
// root again keeps the layers already loaded; choosing another root
// replaces them with that project's saved segmentations.
func (c *Controller) SetOutputDirectory(dir string) error {
	if dir == "" {
		c.logger.Info("no output directory chosen")
		c.session.SetStatus(StatusReady)
		return nil
	}
	if c.atlas == nil {
		return ErrNoProject
	}
	root := filepath.Join(dir, c.atlas.Name())
	if root == c.session.RootDirectory() {
		c.logger.Debug("output directory unchanged", "root", root)
		c.session.SetStatus(StatusReady)
		return nil
	}
	c.dropSegmentations()
	c.session.SetRootDirectory(root)
	c.checkForSaved()
	c.session.SetStatus(StatusReady)
	return nil
}

// LoadDirectory asks for a registration output directory and opens it in
// the given space.
func (c *Controller) LoadDirectory(mode paths.SpaceMode) {
	c.session.SetStatus(StatusLoading)
	if c.chooser == nil {
		c.session.SetStatus(StatusReady)
		return
	}
	c.chooser.ChooseDirectory("Select registration directory", func(dir string) {
		if err := c.OpenDirectory(dir, mode); err != nil {
			c.session.Emit(EventLoadFailed, err)
		}
	})
}

// OpenDirectory replaces everything loaded with the registration output in
// dir. An empty dir is a no-op. A directory the viewer rejects is reported
// with an error wrapping viewer.ErrInvalidProject; the root directory
// still records it.
func (c *Controller) OpenDirectory(dir string, mode paths.SpaceMode) error {
	if dir == "" {
		c.logger.Info("no directory chosen")
		c.session.SetStatus(StatusReady)
		return nil
	}
	c.session.SetStatus(StatusLoading)
	c.session.SetRootDirectory(dir)
	c.ClearLayers()
	c.session.SetMode(mode)

	if err := c.viewer.OpenProject(dir, mode); err != nil {
		c.session.SetStatus(StatusReady)
		if errors.Is(err, viewer.ErrInvalidProject) {
			c.logger.Warn(dir+" does not appear to be a registration directory", "error", err)
		}
		return fmt.Errorf("open %s: %w", dir, err)
	}

	c.initialiseLoadedData()
	var d *atlas.Descriptor
	if c.atlas != nil {
		desc := c.atlas.Descriptor()
		d = &desc
	}
	c.session.SetSource(SourceDirectory, d)
	c.InitializeSegmentationInterface()
	c.checkForSaved()
	c.session.SetStatus(StatusReady)
	return nil
}

// initialiseLoadedData drops the boundaries overlay and picks up the base
// layer and atlas the viewer added for the project.
func (c *Controller) initialiseLoadedData() {
	if l, ok := c.viewer.Layer(c.Config().BoundariesLayer); ok {
		c.viewer.RemoveLayer(l)
	}
	base, ok := c.viewer.Layer(viewer.BaseLayerName)
	if !ok {
		c.logger.Warn("project has no base layer")
		return
	}
	c.base = base
	if a, ok := base.Metadata[viewer.MetadataAtlas].(*atlas.Atlas); ok {
		c.atlas = a
	}
	if name, ok := base.Metadata[viewer.MetadataAtlasName].(string); ok {
		c.atlasLayer, _ = c.viewer.Layer(name)
	}
}

// InitializeSegmentationInterface centres the displayed slice, installs
// the hover lookup on the atlas layer and reveals the segmentation
// controls. It is safe to call repeatedly.
func (c *Controller) InitializeSegmentationInterface() {
	if c.base != nil {
		mid := int(math.Round(float64(c.base.Depth()) / 2))
		c.viewer.SetDisplayedSlice(0, mid)
	}
	if c.atlasLayer != nil && c.atlas != nil {
		structures := c.atlas.Structures
		c.atlasLayer.ClearMouseMove()
		c.atlasLayer.OnMouseMove(func(l *viewer.Layer, pos geometry.Point3D) {
			name := ""
			if st, ok := structures.Lookup(l.ValueAt(pos)); ok {
				name = st.Label()
			}
			c.session.SetHoveredRegion(name)
		})
	}
	c.session.ShowSegmentationInterface()
	c.session.SetStatus(StatusReady)
}

// ClearLayers removes every viewer layer and forgets all region and track
// references.
func (c *Controller) ClearLayers() {
	for _, l := range c.viewer.Layers() {
		c.viewer.RemoveLayer(l)
	}
	c.registry.Clear()
	c.base = nil
	c.atlasLayer = nil
	c.atlas = nil
	c.Regions.reset()
	c.Tracks.reset()
	c.session.SetHoveredRegion("")
	c.session.Emit(EventRegionsChanged, 0)
	c.session.Emit(EventTracksChanged, 0)
}

// dropSegmentations removes region, track and spline layers while keeping
// the atlas and base layers.
func (c *Controller) dropSegmentations() {
	if c.registry.Empty() && len(c.Tracks.fits) == 0 {
		return
	}
	for _, l := range c.registry.Regions() {
		c.viewer.RemoveLayer(l)
	}
	for _, l := range c.registry.Tracks() {
		c.viewer.RemoveLayer(l)
	}
	for _, l := range c.Tracks.fits {
		c.viewer.RemoveLayer(l)
	}
	c.registry.Clear()
	c.Regions.reset()
	c.Tracks.reset()
	c.session.Emit(EventRegionsChanged, 0)
	c.session.Emit(EventTracksChanged, 0)
}

func (c *Controller) checkForSaved() {
	if err := c.Regions.CheckForSavedRegions(); err != nil {
		c.logger.Error("failed to load saved regions", "error", err)
	}
	if err := c.Tracks.CheckForSavedTracks(); err != nil {
		c.logger.Error("failed to load saved tracks", "error", err)
	}
}

// Save writes all region and track layers in the background. With no
// layers registered it does nothing and returns a nil task.
func (c *Controller) Save() (*task.Task, error) {
	regionLayers := c.registry.Regions()
	trackLayers := c.registry.Tracks()
	if len(regionLayers) == 0 && len(trackLayers) == 0 {
		c.logger.Debug("nothing to save")
		return nil, nil
	}
	if c.session.RootDirectory() == "" {
		return nil, fmt.Errorf("save: %w", ErrNoProject)
	}

	p := c.session.Paths()
	regionSnap := snapshotRegions(regionLayers)
	trackSnap := snapshotTracks(trackLayers)
	a := c.atlas
	cfg := c.Config()
	ext := cfg.TrackFileExt
	calculateVolumes := cfg.CalculateVolumes
	logger := c.logger

	t := task.Go(context.Background(), "save", func(ctx context.Context) error {
		g, _ := errgroup.WithContext(ctx)
		if len(regionSnap) > 0 {
			g.Go(func() error {
				logger.Info("saving regions", "dir", p.RegionsDirectory, "count", len(regionSnap))
				if err := regions.Save(p.RegionsDirectory, regionSnap); err != nil {
					return err
				}
				if !calculateVolumes {
					return nil
				}
				summaries := make([]regions.Summary, 0, len(regionSnap))
				for _, r := range regionSnap {
					summaries = append(summaries, regions.Summarise(r, a))
				}
				return regions.WriteVolumes(p.RegionsDirectory, summaries)
			})
		}
		if len(trackSnap) > 0 {
			g.Go(func() error {
				logger.Info("saving tracks", "dir", p.TracksDirectory, "count", len(trackSnap))
				return tracks.Save(p.TracksDirectory, ext, trackSnap)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		logger.Info("finished saving")
		return nil
	}, c.logger)
	c.session.Emit(EventTaskStarted, t)
	return t, nil
}

// ExportToExternalRenderer writes region meshes and traced splines for an
// external 3D renderer in the background. It is only available in
// standard space.
func (c *Controller) ExportToExternalRenderer() (*task.Task, error) {
	if c.session.Mode() != paths.Standard {
		return nil, ErrExportUnavailable
	}
	if c.atlas == nil || c.base == nil || c.session.RootDirectory() == "" {
		return nil, fmt.Errorf("export: %w", ErrNoProject)
	}

	dir := c.session.Paths().ExportDirectory
	resolution := c.atlas.Resolution()[0]
	maxZ := c.base.Depth()
	regionSnap := snapshotRegions(c.registry.Regions())
	splines := c.Tracks.Splines()
	logger := c.logger

	t := task.Go(context.Background(), "export", func(ctx context.Context) error {
		logger.Info("exporting", "dir", dir, "regions", len(regionSnap), "splines", len(splines))
		g, _ := errgroup.WithContext(ctx)
		g.Go(func() error {
			_, err := regions.Export(dir, regionSnap, resolution, maxZ)
			return err
		})
		g.Go(func() error {
			_, err := tracks.Export(dir, splines, resolution, maxZ)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}
		logger.Info("finished exporting")
		return nil
	}, c.logger)
	c.session.Emit(EventTaskStarted, t)
	return t, nil
}

func snapshotRegions(list []*viewer.Layer) []regions.Region {
	out := make([]regions.Region, 0, len(list))
	for _, l := range list {
		if l.Volume == nil {
			continue
		}
		out = append(out, regions.Region{Name: l.Name, Volume: l.Volume.Clone()})
	}
	return out
}

func snapshotTracks(list []*viewer.Layer) []tracks.Track {
	out := make([]tracks.Track, 0, len(list))
	for _, l := range list {
		out = append(out, tracks.Track{
			Name:   l.Name,
			Points: append([]geometry.Point3D(nil), l.Points...),
		})
	}
	return out
}
