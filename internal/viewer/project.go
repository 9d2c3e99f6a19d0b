package viewer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"atlas-segment/internal/atlas"
	"atlas-segment/internal/paths"
	"atlas-segment/internal/volume"
)

// ErrInvalidProject is returned when a directory is not a registration output.
var ErrInvalidProject = errors.New("not a valid registration directory")

// Layer names used for opened projects and atlases.
const (
	BaseLayerName       = "Registered image"
	ReferenceLayerName  = "Reference"
	BoundariesLayerName = "Boundaries"
)

// Files inside a registration output directory.
const (
	RegistrationFile       = "registration.json"
	DownsampledDir         = "downsampled"
	DownsampledStandardDir = "downsampled_standard"
	RegisteredAtlasDir     = "registered_atlas"
	BoundariesDir          = "boundaries"
)

// Registration is the content of registration.json.
type Registration struct {
	Atlas       string     `json:"atlas"`
	Orientation string     `json:"orientation,omitempty"`
	VoxelSizes  [3]float64 `json:"voxel_sizes,omitempty"`
}

// Project is the data read from a registration directory.
type Project struct {
	Dir          string
	Registration Registration
	Base         *volume.Volume
	Annotation   *volume.Volume
	Boundaries   *volume.Volume // nil when absent
	Atlas        *atlas.Atlas
}

// AtlasLoader loads atlases by name.
type AtlasLoader interface {
	LoadAtlas(name string) (*atlas.Atlas, error)
}

// RegistrationReader opens registration output directories.
type RegistrationReader struct {
	Atlases AtlasLoader
}

// Open reads dir. In sample space the base image and atlas annotation come
// from the registration output; in standard space the base is the
// standard-space image and the annotation comes from the atlas itself.
func (r RegistrationReader) Open(dir string, mode paths.SpaceMode) (*Project, error) {
	reg, err := ReadRegistration(dir)
	if err != nil {
		return nil, err
	}
	if r.Atlases == nil {
		return nil, fmt.Errorf("%w: no atlas source", ErrInvalidProject)
	}
	a, err := r.Atlases.LoadAtlas(reg.Atlas)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProject, err)
	}

	proj := &Project{Dir: dir, Registration: reg, Atlas: a}
	switch mode {
	case paths.Standard:
		proj.Base, err = loadRequired(dir, DownsampledStandardDir)
		if err != nil {
			return nil, err
		}
		proj.Annotation = a.Annotation
	default:
		proj.Base, err = loadRequired(dir, DownsampledDir)
		if err != nil {
			return nil, err
		}
		proj.Annotation, err = loadRequired(dir, RegisteredAtlasDir)
		if err != nil {
			return nil, err
		}
		if boundaries := filepath.Join(dir, BoundariesDir); volume.IsStack(boundaries) {
			proj.Boundaries, err = volume.LoadStack(boundaries)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidProject, err)
			}
		}
	}

	if !proj.Base.SameShape(proj.Annotation) {
		return nil, fmt.Errorf("%w: image %v and annotation %v differ in shape",
			ErrInvalidProject, proj.Base.Shape(), proj.Annotation.Shape())
	}
	return proj, nil
}

// ReadRegistration parses registration.json in dir.
func ReadRegistration(dir string) (Registration, error) {
	var reg Registration
	data, err := os.ReadFile(filepath.Join(dir, RegistrationFile))
	if err != nil {
		return reg, fmt.Errorf("%w: %w", ErrInvalidProject, err)
	}
	if err := json.Unmarshal(data, &reg); err != nil {
		return reg, fmt.Errorf("%w: parse %s: %w", ErrInvalidProject, RegistrationFile, err)
	}
	if reg.Atlas == "" {
		return reg, fmt.Errorf("%w: %s names no atlas", ErrInvalidProject, RegistrationFile)
	}
	return reg, nil
}

// WriteRegistration writes registration.json into dir.
func WriteRegistration(dir string, reg Registration) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, RegistrationFile), data, 0o644)
}

func loadRequired(dir, name string) (*volume.Volume, error) {
	v, err := volume.LoadStack(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProject, err)
	}
	return v, nil
}
