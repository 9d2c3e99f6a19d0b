package viewer_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"atlas-segment/internal/atlas"
	"atlas-segment/internal/atlas/atlastest"
	"atlas-segment/internal/paths"
	"atlas-segment/internal/viewer"
	"atlas-segment/internal/viewer/viewertest"
	"atlas-segment/internal/volume"
	"atlas-segment/pkg/geometry"
)

func TestAddAndRemoveLayers(t *testing.T) {
	m := viewer.NewModel(nil)
	changes := 0
	m.OnChange(func() { changes++ })

	img := m.AddImage(volume.New(2, 2, 2), "Reference")
	lbl := m.AddLabels(volume.New(2, 2, 2), "regions", viewer.LabelOptions{Opacity: 0.3, Hidden: true})
	pts := m.AddPoints([]geometry.Point3D{{Z: 1}}, "track", 5)

	if m.Len() != 3 {
		t.Fatalf("expected 3 layers, got %d", m.Len())
	}
	if img.Kind != viewer.KindImage || lbl.Kind != viewer.KindLabels || pts.Kind != viewer.KindPoints {
		t.Fatal("unexpected layer kinds")
	}
	if lbl.Visible {
		t.Fatal("expected hidden labels layer")
	}
	if changes != 3 {
		t.Fatalf("expected 3 change notifications, got %d", changes)
	}

	if !m.RemoveLayer(lbl) {
		t.Fatal("expected labels layer to be removed")
	}
	if m.RemoveLayer(lbl) {
		t.Fatal("expected second removal to report absence")
	}
	if err := m.RemoveByName("missing"); !errors.Is(err, viewer.ErrLayerNotFound) {
		t.Fatalf("expected ErrLayerNotFound, got %v", err)
	}
	if _, ok := m.Layer("track"); !ok {
		t.Fatal("expected track layer to remain")
	}
}

func TestUniqueNames(t *testing.T) {
	m := viewer.NewModel(nil)
	a := m.AddImage(volume.New(1, 1, 1), "Reference")
	b := m.AddImage(volume.New(1, 1, 1), "Reference")
	c := m.AddImage(volume.New(1, 1, 1), "Reference")
	if a.Name != "Reference" || b.Name != "Reference [1]" || c.Name != "Reference [2]" {
		t.Fatalf("unexpected names %q %q %q", a.Name, b.Name, c.Name)
	}
}

func TestMouseMoveDispatch(t *testing.T) {
	m := viewer.NewModel(nil)
	vol := volume.New(2, 2, 2)
	vol.Set(1, 1, 1, 7)
	l := m.AddLabels(vol, "atlas", viewer.LabelOptions{})

	var got uint32
	l.OnMouseMove(func(layer *viewer.Layer, pos geometry.Point3D) {
		got = layer.ValueAt(pos)
	})
	m.MouseMove(geometry.NewPoint3D(1.2, 0.9, 1.4))
	if got != 7 {
		t.Fatalf("expected value 7 under cursor, got %d", got)
	}

	l.ClearMouseMove()
	if l.MouseMoveCallbacks() != 0 {
		t.Fatal("expected callbacks to be cleared")
	}
}

func TestDisplayedSlice(t *testing.T) {
	m := viewer.NewModel(nil)
	m.SetDisplayedSlice(0, 12)
	if m.DisplayedSlice(0) != 12 {
		t.Fatalf("expected slice 12, got %d", m.DisplayedSlice(0))
	}
	m.SetDisplayedSlice(0, -3)
	if m.DisplayedSlice(0) != 0 {
		t.Fatalf("expected negative index to clamp to 0, got %d", m.DisplayedSlice(0))
	}
	m.SetDisplayedSlice(7, 1)
	if m.DisplayedSlice(7) != 0 {
		t.Fatal("expected invalid axis to be ignored")
	}
}

func TestOpenProjectSampleSpace(t *testing.T) {
	a := atlastest.New("allen_mouse_25um", "1.2", 4, 3, 6)
	cat := atlastest.Install(t, a)
	dir := filepath.Join(t.TempDir(), "brain1")
	viewertest.WriteProject(t, dir, a, true)

	m := viewer.NewModel(viewer.RegistrationReader{Atlases: cat})
	if err := m.OpenProject(dir, paths.Sample); err != nil {
		t.Fatalf("open project: %v", err)
	}

	base, ok := m.Layer(viewer.BaseLayerName)
	if !ok {
		t.Fatal("expected registered image layer")
	}
	loaded, ok := base.Metadata[viewer.MetadataAtlas].(*atlas.Atlas)
	if !ok || loaded.Name() != "allen_mouse_25um" {
		t.Fatalf("expected atlas in base metadata, got %v", base.Metadata)
	}
	if base.Metadata[viewer.MetadataAtlasName] != "allen_mouse_25um" {
		t.Fatalf("expected atlas layer name in metadata, got %v", base.Metadata)
	}
	annotation, ok := m.Layer("allen_mouse_25um")
	if !ok || annotation.Visible || annotation.Blending != viewer.BlendAdditive {
		t.Fatalf("expected hidden additive atlas layer, got %+v", annotation)
	}
	if _, ok := m.Layer(viewer.BoundariesLayerName); !ok {
		t.Fatal("expected boundaries layer")
	}
}

func TestOpenProjectStandardSpace(t *testing.T) {
	a := atlastest.New("allen_mouse_25um", "1.2", 4, 3, 6)
	cat := atlastest.Install(t, a)
	dir := t.TempDir()
	viewertest.WriteProject(t, dir, a, true)

	m := viewer.NewModel(viewer.RegistrationReader{Atlases: cat})
	if err := m.OpenProject(dir, paths.Standard); err != nil {
		t.Fatalf("open project: %v", err)
	}
	if _, ok := m.Layer(viewer.BoundariesLayerName); ok {
		t.Fatal("expected no boundaries layer in standard space")
	}
	if m.Extent() != 4 {
		t.Fatalf("expected depth 4, got %d", m.Extent())
	}
}

func TestOpenProjectInvalid(t *testing.T) {
	a := atlastest.New("allen_mouse_25um", "1.2", 2, 2, 2)
	cat := atlastest.Install(t, a)
	m := viewer.NewModel(viewer.RegistrationReader{Atlases: cat})

	// No registration.json at all
	if err := m.OpenProject(t.TempDir(), paths.Sample); !errors.Is(err, viewer.ErrInvalidProject) {
		t.Fatalf("expected ErrInvalidProject, got %v", err)
	}

	// Registration names an atlas that is not installed
	dir := t.TempDir()
	if err := viewer.WriteRegistration(dir, viewer.Registration{Atlas: "unknown"}); err != nil {
		t.Fatal(err)
	}
	err := m.OpenProject(dir, paths.Sample)
	if !errors.Is(err, viewer.ErrInvalidProject) || !errors.Is(err, atlas.ErrNotFound) {
		t.Fatalf("expected ErrInvalidProject wrapping ErrNotFound, got %v", err)
	}

	// Malformed metadata
	bad := t.TempDir()
	if err := os.WriteFile(filepath.Join(bad, viewer.RegistrationFile), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := m.OpenProject(bad, paths.Sample); !errors.Is(err, viewer.ErrInvalidProject) {
		t.Fatalf("expected ErrInvalidProject, got %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("expected no layers after failed opens, got %d", m.Len())
	}
}
