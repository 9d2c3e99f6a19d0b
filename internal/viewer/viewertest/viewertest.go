// Package viewertest writes registration directories for tests.
package viewertest

import (
	"path/filepath"
	"testing"

	"atlas-segment/internal/atlas"
	"atlas-segment/internal/viewer"
	"atlas-segment/internal/volume"
)

// WriteProject creates a complete registration directory for a under dir,
// using the atlas volumes as stand-ins for the registered image.
func WriteProject(t *testing.T, dir string, a *atlas.Atlas, withBoundaries bool) {
	t.Helper()
	if err := viewer.WriteRegistration(dir, viewer.Registration{
		Atlas:       a.Name(),
		Orientation: a.Metadata.Orientation,
		VoxelSizes:  a.Resolution(),
	}); err != nil {
		t.Fatalf("write registration: %v", err)
	}

	stacks := map[string]*volume.Volume{
		viewer.DownsampledDir:         a.Reference,
		viewer.DownsampledStandardDir: a.Reference,
		viewer.RegisteredAtlasDir:     a.Annotation,
	}
	if withBoundaries {
		b := volume.NewLike(a.Annotation)
		b.Set(0, 0, 0, 1)
		stacks[viewer.BoundariesDir] = b
	}
	for name, v := range stacks {
		if err := volume.SaveStack(filepath.Join(dir, name), v); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}
