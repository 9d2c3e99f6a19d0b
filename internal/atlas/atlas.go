// Package atlas provides access to reference brain atlases: their catalog,
// reference and annotation volumes, and the structure ontology.
package atlas

import (
	"errors"
	"fmt"

	"atlas-segment/internal/volume"
)

// ErrNotFound is returned when an atlas name is unknown to the catalog.
var ErrNotFound = errors.New("atlas not found")

// Descriptor identifies one installed atlas.
type Descriptor struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// String formats the descriptor the way the selection menu shows it.
func (d Descriptor) String() string {
	return fmt.Sprintf("%s v%s", d.Name, d.Version)
}

// Metadata is the content of an atlas's metadata.json.
type Metadata struct {
	Name        string     `json:"name"`
	Version     string     `json:"version"`
	Species     string     `json:"species,omitempty"`
	Orientation string     `json:"orientation,omitempty"`
	Resolution  [3]float64 `json:"resolution"` // microns per voxel, z/y/x
	Shape       [3]int     `json:"shape"`
}

// Atlas bundles everything loaded for one atlas.
type Atlas struct {
	Metadata   Metadata
	Reference  *volume.Volume
	Annotation *volume.Volume
	Structures *Structures
}

// Descriptor returns the atlas identity.
func (a *Atlas) Descriptor() Descriptor {
	return Descriptor{Name: a.Metadata.Name, Version: a.Metadata.Version}
}

// Name returns the atlas name.
func (a *Atlas) Name() string {
	return a.Metadata.Name
}

// Resolution returns the voxel size in microns along z, y, x.
func (a *Atlas) Resolution() [3]float64 {
	return a.Metadata.Resolution
}

// VoxelVolume returns the volume of one voxel in cubic millimetres.
func (a *Atlas) VoxelVolume() float64 {
	r := a.Metadata.Resolution
	return (r[0] / 1000) * (r[1] / 1000) * (r[2] / 1000)
}

// RegionAt resolves the structure label under a voxel. Background and
// unknown labels return ok=false.
func (a *Atlas) RegionAt(z, y, x int) (Structure, bool) {
	if a.Annotation == nil || a.Structures == nil {
		return Structure{}, false
	}
	return a.Structures.Lookup(a.Annotation.At(z, y, x))
}
