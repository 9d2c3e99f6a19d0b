// Package atlastest builds small synthetic atlases for tests.
package atlastest

import (
	"testing"

	"atlas-segment/internal/atlas"
	"atlas-segment/internal/volume"
)

// Structure ids used by New. The annotation splits every slice into a left
// and right half along x.
const (
	LeftID  uint32 = 10
	RightID uint32 = 20
)

// New returns an in-memory atlas of the given shape with two labelled
// structures and a reference volume whose intensity grows with z.
func New(name, version string, depth, height, width int) *atlas.Atlas {
	ref := volume.New(depth, height, width)
	ann := volume.New(depth, height, width)
	for z := 0; z < depth; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				ref.Set(z, y, x, uint32(100*(z+1)))
				if x < width/2 {
					ann.Set(z, y, x, LeftID)
				} else {
					ann.Set(z, y, x, RightID)
				}
			}
		}
	}
	return &atlas.Atlas{
		Metadata: atlas.Metadata{
			Name:        name,
			Version:     version,
			Species:     "Mus musculus",
			Orientation: "asr",
			Resolution:  [3]float64{25, 25, 25},
			Shape:       [3]int{depth, height, width},
		},
		Reference:  ref,
		Annotation: ann,
		Structures: atlas.NewStructures([]atlas.Structure{
			{ID: LeftID, Acronym: "L", Name: "Left structure", StructureIDPath: []int{997, 10}},
			{ID: RightID, Acronym: "R", Name: "Right structure", StructureIDPath: []int{997, 20}},
		}),
	}
}

// Install writes a synthetic atlas into a fresh catalog under t.TempDir
// and returns the catalog.
func Install(t *testing.T, atlases ...*atlas.Atlas) *atlas.Catalog {
	t.Helper()
	cat := atlas.NewCatalog(t.TempDir())
	for _, a := range atlases {
		if err := cat.Install(a); err != nil {
			t.Fatalf("install atlas %s: %v", a.Name(), err)
		}
	}
	return cat
}
