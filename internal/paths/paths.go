// Package paths resolves the on-disk layout of a segmentation project.
package paths

import (
	"path/filepath"
)

// SpaceMode selects the coordinate space segmentations are drawn in.
type SpaceMode int

const (
	// Sample is the raw subject image space, before registration.
	Sample SpaceMode = iota
	// Standard is atlas space, after registration to a reference atlas.
	Standard
)

func (m SpaceMode) String() string {
	switch m {
	case Sample:
		return "sample"
	case Standard:
		return "standard"
	default:
		return "unknown"
	}
}

// Directory names under a project root.
const (
	SegmentationDir     = "segmentation"
	SampleSpaceDir      = "sample_space"
	AtlasSpaceDir       = "atlas_space"
	RegionsDir          = "regions"
	TracksDir           = "tracks"
	ExternalRendererDir = "external_renderer"
)

// Paths is the derived directory layout for one (root, mode) pair.
type Paths struct {
	Root             string
	Mode             SpaceMode
	Main             string // <root>/segmentation/<mode dir>
	RegionsDirectory string
	TracksDirectory  string
	ExportDirectory  string
}

// Resolve computes the project layout. It has no side effects; directories
// are created by whoever writes into them.
func Resolve(root string, mode SpaceMode) Paths {
	modeDir := SampleSpaceDir
	if mode == Standard {
		modeDir = AtlasSpaceDir
	}
	main := filepath.Join(root, SegmentationDir, modeDir)
	return Paths{
		Root:             root,
		Mode:             mode,
		Main:             main,
		RegionsDirectory: filepath.Join(main, RegionsDir),
		TracksDirectory:  filepath.Join(main, TracksDir),
		ExportDirectory:  filepath.Join(main, ExternalRendererDir),
	}
}

// RegionsFile returns the path of a named file in the regions directory.
func (p Paths) RegionsFile(name string) string {
	return filepath.Join(p.RegionsDirectory, name)
}

// TracksFile returns the path of a named file in the tracks directory.
func (p Paths) TracksFile(name string) string {
	return filepath.Join(p.TracksDirectory, name)
}
