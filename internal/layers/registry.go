// Package layers tracks which viewer layers belong to the segmentation
// session: region (labels) layers and track (points) layers.
package layers

import (
	"sync"

	"atlas-segment/internal/viewer"
)

// Registry holds two ordered sets of layer references.
type Registry struct {
	mu sync.RWMutex

	regions []*viewer.Layer
	tracks  []*viewer.Layer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddRegion registers a region layer. Adding the same layer twice is a no-op.
func (r *Registry) AddRegion(l *viewer.Layer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regions = appendUnique(r.regions, l)
}

// AddTrack registers a track layer. Adding the same layer twice is a no-op.
func (r *Registry) AddTrack(l *viewer.Layer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracks = appendUnique(r.tracks, l)
}

// Remove drops l from whichever set holds it.
func (r *Registry) Remove(l *viewer.Layer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed bool
	r.regions, removed = without(r.regions, l)
	if removed {
		return true
	}
	r.tracks, removed = without(r.tracks, l)
	return removed
}

// Clear empties both sets.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regions = nil
	r.tracks = nil
}

// Regions returns a copy of the region layers in insertion order.
func (r *Registry) Regions() []*viewer.Layer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*viewer.Layer(nil), r.regions...)
}

// Tracks returns a copy of the track layers in insertion order.
func (r *Registry) Tracks() []*viewer.Layer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*viewer.Layer(nil), r.tracks...)
}

// RegionCount returns the number of region layers.
func (r *Registry) RegionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.regions)
}

// TrackCount returns the number of track layers.
func (r *Registry) TrackCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tracks)
}

// Empty reports whether neither set holds a layer.
func (r *Registry) Empty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.regions) == 0 && len(r.tracks) == 0
}

// Region finds a region layer by name.
func (r *Registry) Region(name string) (*viewer.Layer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return find(r.regions, name)
}

// Track finds a track layer by name.
func (r *Registry) Track(name string) (*viewer.Layer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return find(r.tracks, name)
}

func appendUnique(list []*viewer.Layer, l *viewer.Layer) []*viewer.Layer {
	for _, existing := range list {
		if existing == l {
			return list
		}
	}
	return append(list, l)
}

func without(list []*viewer.Layer, l *viewer.Layer) ([]*viewer.Layer, bool) {
	for i, existing := range list {
		if existing == l {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}

func find(list []*viewer.Layer, name string) (*viewer.Layer, bool) {
	for _, l := range list {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}
