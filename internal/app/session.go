// Package app holds the segmentation session and the controller that
// drives it: atlas and project loading, region and track panels, and
// background save and export.
package app

import (
	"sync"

	"atlas-segment/internal/atlas"
	"atlas-segment/internal/paths"
)

// Status texts shown to the user.
const (
	StatusReady   = "Ready"
	StatusLoading = "Loading..."
)

// Source records what the current layers were loaded from.
type Source int

const (
	SourceNone Source = iota
	SourceAtlas
	SourceDirectory
)

// EventType identifies session changes.
type EventType int

const (
	EventStatusChanged EventType = iota
	EventDirectoryChanged
	EventAtlasSelected
	EventInterfaceChanged
	EventRegionsChanged
	EventTracksChanged
	EventHoverChanged
	EventLoadFailed
	EventTaskStarted
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// View is a copy of the session's observable state.
type View struct {
	RootDirectory string
	Mode          paths.SpaceMode
	Paths         paths.Paths
	SelectedAtlas *atlas.Descriptor
	Source        Source
	Status        string

	SavePanelVisible   bool
	ExportVisible      bool
	TogglesEnabled     bool
	RegionPanelVisible bool
	TrackPanelVisible  bool

	HoveredRegion string
}

// Session is the state of one segmentation session. It is created at
// startup and lives for the process. Every mutation emits an event.
type Session struct {
	mu sync.RWMutex
	v  View

	listeners map[EventType][]EventListener
}

// NewSession creates an idle session.
func NewSession() *Session {
	return &Session{
		v:         View{Status: StatusReady},
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// View returns a snapshot of the session state.
func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := s.v
	if v.SelectedAtlas != nil {
		d := *v.SelectedAtlas
		v.SelectedAtlas = &d
	}
	return v
}

// RootDirectory returns the project root, empty when unset.
func (s *Session) RootDirectory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.RootDirectory
}

// Mode returns the current space mode.
func (s *Session) Mode() paths.SpaceMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.Mode
}

// Paths returns the layout derived from the root and mode.
func (s *Session) Paths() paths.Paths {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.Paths
}

// Source returns what the current layers came from.
func (s *Session) Source() Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.Source
}

// SelectedAtlas returns the active atlas, if any.
func (s *Session) SelectedAtlas() (atlas.Descriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.v.SelectedAtlas == nil {
		return atlas.Descriptor{}, false
	}
	return *s.v.SelectedAtlas, true
}

// Status returns the status text.
func (s *Session) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.Status
}

// HoveredRegion returns the region name under the cursor.
func (s *Session) HoveredRegion() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.HoveredRegion
}

// SetStatus updates the status text.
func (s *Session) SetStatus(status string) {
	s.mu.Lock()
	s.v.Status = status
	s.mu.Unlock()
	s.Emit(EventStatusChanged, status)
}

// SetRootDirectory records the project root and recomputes paths.
func (s *Session) SetRootDirectory(root string) {
	s.mu.Lock()
	s.v.RootDirectory = root
	s.v.Paths = paths.Resolve(root, s.v.Mode)
	p := s.v.Paths
	s.mu.Unlock()
	s.Emit(EventDirectoryChanged, p)
}

// SetMode switches space mode and recomputes paths.
func (s *Session) SetMode(mode paths.SpaceMode) {
	s.mu.Lock()
	s.v.Mode = mode
	s.v.Paths = paths.Resolve(s.v.RootDirectory, mode)
	p := s.v.Paths
	s.mu.Unlock()
	s.Emit(EventDirectoryChanged, p)
}

// SetSource records where the layers came from and the atlas in use.
// A nil descriptor clears the selection.
func (s *Session) SetSource(src Source, d *atlas.Descriptor) {
	s.mu.Lock()
	s.v.Source = src
	if d != nil {
		copied := *d
		d = &copied
	}
	s.v.SelectedAtlas = d
	s.mu.Unlock()
	s.Emit(EventAtlasSelected, d)
}

// ShowSegmentationInterface reveals the save panel and enables the panel
// toggles. Export is only offered in standard space.
func (s *Session) ShowSegmentationInterface() {
	s.mu.Lock()
	s.v.SavePanelVisible = true
	s.v.ExportVisible = s.v.Mode == paths.Standard
	s.v.TogglesEnabled = true
	v := s.v
	s.mu.Unlock()
	s.Emit(EventInterfaceChanged, v)
}

// SetRegionPanelVisible shows or hides the region controls.
func (s *Session) SetRegionPanelVisible(visible bool) {
	s.mu.Lock()
	s.v.RegionPanelVisible = visible
	v := s.v
	s.mu.Unlock()
	s.Emit(EventInterfaceChanged, v)
}

// SetTrackPanelVisible shows or hides the track controls.
func (s *Session) SetTrackPanelVisible(visible bool) {
	s.mu.Lock()
	s.v.TrackPanelVisible = visible
	v := s.v
	s.mu.Unlock()
	s.Emit(EventInterfaceChanged, v)
}

// SetHoveredRegion updates the region under the cursor. Repeated values
// are not re-emitted.
func (s *Session) SetHoveredRegion(name string) {
	s.mu.Lock()
	if s.v.HoveredRegion == name {
		s.mu.Unlock()
		return
	}
	s.v.HoveredRegion = name
	s.mu.Unlock()
	s.Emit(EventHoverChanged, name)
}
