package app

import (
	"errors"
	"fmt"

	"atlas-segment/internal/tracks"
	"atlas-segment/internal/viewer"
	"atlas-segment/pkg/geometry"
)

// SplineLayerSuffix names the points layer showing a traced track.
const SplineLayerSuffix = "_fit"

// TrackPanel creates and reloads track (points) layers and keeps the
// splines traced through them.
type TrackPanel struct {
	c       *Controller
	active  *viewer.Layer
	splines []tracks.Spline
	fits    []*viewer.Layer
}

// TogglePanelVisibility shows or hides the track controls. Layers are not
// touched.
func (p *TrackPanel) TogglePanelVisibility() {
	v := p.c.session.View()
	p.c.session.SetTrackPanelVisible(!v.TrackPanelVisible)
}

// CheckForSavedTracks loads every saved track file as a points layer.
// Nothing saved is not an error.
func (p *TrackPanel) CheckForSavedTracks() error {
	if p.c.session.RootDirectory() == "" {
		return nil
	}
	cfg := p.c.Config()
	dir := p.c.session.Paths().TracksDirectory
	saved, err := tracks.Load(dir, cfg.TrackFileExt)
	if err != nil {
		return err
	}
	if len(saved) == 0 {
		return nil
	}
	for _, t := range saved {
		l := p.c.viewer.AddPoints(t.Points, t.Name, cfg.PointSize)
		p.c.registry.AddTrack(l)
	}
	p.c.logger.Info("loaded saved tracks", "dir", dir, "count", len(saved))
	p.c.session.Emit(EventTracksChanged, p.c.registry.TrackCount())
	return nil
}

// AddTrack creates an empty points layer and makes it the target for new
// points.
func (p *TrackPanel) AddTrack() (*viewer.Layer, error) {
	if p.c.base == nil {
		return nil, fmt.Errorf("add track: %w", ErrNoProject)
	}
	var name string
	for n := p.c.registry.TrackCount(); ; n++ {
		name = fmt.Sprintf("track_%d", n)
		if _, taken := p.c.viewer.Layer(name); !taken {
			break
		}
	}
	l := p.c.viewer.AddPoints(nil, name, p.c.Config().PointSize)
	p.c.registry.AddTrack(l)
	p.active = l
	p.c.session.Emit(EventTracksChanged, p.c.registry.TrackCount())
	return l, nil
}

// Active returns the track receiving points, nil when none is selected.
func (p *TrackPanel) Active() *viewer.Layer {
	return p.active
}

// SetActive selects a registered track by name.
func (p *TrackPanel) SetActive(name string) error {
	l, ok := p.c.registry.Track(name)
	if !ok {
		return fmt.Errorf("track %q: %w", name, viewer.ErrLayerNotFound)
	}
	p.active = l
	return nil
}

// Remove deletes a track layer from the viewer and the registry.
func (p *TrackPanel) Remove(name string) error {
	l, ok := p.c.registry.Track(name)
	if !ok {
		return fmt.Errorf("track %q: %w", name, viewer.ErrLayerNotFound)
	}
	p.c.viewer.RemoveLayer(l)
	p.c.registry.Remove(l)
	if p.active == l {
		p.active = nil
	}
	p.c.session.Emit(EventTracksChanged, p.c.registry.TrackCount())
	return nil
}

// AddPoint appends a point to the active track.
func (p *TrackPanel) AddPoint(z, y, x float64) error {
	if p.active == nil {
		return ErrNoActiveLayer
	}
	p.active.AddPoint(geometry.NewPoint3D(z, y, x))
	p.c.session.Emit(EventTracksChanged, p.c.registry.TrackCount())
	return nil
}

// TraceTracks fits a spline through every track with at least two points,
// shows each fit as a points layer and, when enabled, writes a per-track
// summary next to the saved tracks. The fitted splines replace any from a
// previous trace and feed the renderer export.
func (p *TrackPanel) TraceTracks() ([]tracks.Spline, error) {
	for _, l := range p.fits {
		p.c.viewer.RemoveLayer(l)
	}
	p.fits = nil
	p.splines = nil

	cfg := p.c.Config()
	var errs []error
	for _, l := range p.c.registry.Tracks() {
		t := tracks.Track{Name: l.Name, Points: l.Points}
		s, err := tracks.FitTrack(t, cfg.SplinePoints)
		if errors.Is(err, tracks.ErrTooFewPoints) {
			p.c.logger.Info("skipping track with too few points", "track", l.Name, "points", len(l.Points))
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("trace %s: %w", l.Name, err))
			continue
		}
		p.splines = append(p.splines, s)
		p.fits = append(p.fits, p.c.viewer.AddPoints(s.Points, l.Name+SplineLayerSuffix, cfg.SplineSize))

		if cfg.SummariseTracks && p.c.session.RootDirectory() != "" {
			rows := tracks.Summarise(s, p.c.atlas)
			path, err := tracks.WriteSummary(p.c.session.Paths().TracksDirectory, s.Name, rows)
			if err != nil {
				errs = append(errs, fmt.Errorf("summarise %s: %w", l.Name, err))
				continue
			}
			p.c.logger.Info("wrote track summary", "track", s.Name, "path", path)
		}
	}
	return p.Splines(), errors.Join(errs...)
}

// Splines returns a copy of the traced splines.
func (p *TrackPanel) Splines() []tracks.Spline {
	out := make([]tracks.Spline, len(p.splines))
	for i, s := range p.splines {
		out[i] = tracks.Spline{Name: s.Name, Points: append([]geometry.Point3D(nil), s.Points...)}
	}
	return out
}

func (p *TrackPanel) reset() {
	p.active = nil
	p.splines = nil
	p.fits = nil
}
