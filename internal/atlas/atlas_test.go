package atlas_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"atlas-segment/internal/atlas"
	"atlas-segment/internal/atlas/atlastest"
)

func TestListAvailableAtlasesSorted(t *testing.T) {
	cat := atlastest.Install(t,
		atlastest.New("kim_mouse_50um", "1.0", 2, 3, 4),
		atlastest.New("allen_mouse_25um", "1.2", 2, 3, 4),
	)

	list, err := cat.ListAvailableAtlases()
	if err != nil {
		t.Fatalf("list atlases: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 atlases, got %d", len(list))
	}
	if list[0].Name != "allen_mouse_25um" || list[0].Version != "1.2" {
		t.Fatalf("expected allen_mouse_25um v1.2 first, got %+v", list[0])
	}
	if list[1].Name != "kim_mouse_50um" {
		t.Fatalf("expected kim_mouse_50um second, got %+v", list[1])
	}
}

func TestListAvailableAtlasesMissingDir(t *testing.T) {
	cat := atlas.NewCatalog(filepath.Join(t.TempDir(), "missing"))
	list, err := cat.ListAvailableAtlases()
	if err != nil {
		t.Fatalf("expected no error for missing dir, got %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %v", list)
	}
}

func TestListSkipsNonAtlasDirs(t *testing.T) {
	cat := atlastest.Install(t, atlastest.New("allen_mouse_25um", "1.2", 2, 3, 4))
	if err := os.MkdirAll(filepath.Join(cat.Root(), "partial"), 0o755); err != nil {
		t.Fatal(err)
	}
	cat.Refresh()

	list, err := cat.ListAvailableAtlases()
	if err != nil {
		t.Fatalf("list atlases: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected partial dir to be skipped, got %v", list)
	}
}

func TestLoadAtlas(t *testing.T) {
	cat := atlastest.Install(t, atlastest.New("allen_mouse_25um", "1.2", 3, 4, 6))

	a, err := cat.LoadAtlas("allen_mouse_25um")
	if err != nil {
		t.Fatalf("load atlas: %v", err)
	}
	if a.Reference.Shape() != [3]int{3, 4, 6} {
		t.Fatalf("expected reference shape [3 4 6], got %v", a.Reference.Shape())
	}
	if a.Resolution()[0] != 25 {
		t.Fatalf("expected 25um resolution, got %v", a.Resolution())
	}
	st, ok := a.RegionAt(1, 1, 0)
	if !ok || st.ID != atlastest.LeftID {
		t.Fatalf("expected left structure at x=0, got %+v ok=%v", st, ok)
	}
	if got := a.Structures.Name(atlastest.RightID); got != "R - Right structure" {
		t.Fatalf("unexpected structure label %q", got)
	}
}

func TestLoadAtlasOntologyIDs(t *testing.T) {
	const deepID uint32 = 484682470
	a := atlastest.New("allen_mouse_25um", "1.2", 2, 3, 4)
	a.Annotation.Set(1, 2, 3, deepID)
	a.Structures = atlas.NewStructures(append(a.Structures.List(), atlas.Structure{
		ID:              deepID,
		Acronym:         "SSp-bfd6a",
		Name:            "Primary somatosensory area, barrel field, layer 6a",
		StructureIDPath: []int{997, 8, 567, 688, 695, 315, 453, 322, 329, 484682470},
	}))
	cat := atlastest.Install(t, a)

	loaded, err := cat.LoadAtlas("allen_mouse_25um")
	if err != nil {
		t.Fatalf("load atlas: %v", err)
	}
	st, ok := loaded.RegionAt(1, 2, 3)
	if !ok || st.ID != deepID || st.Acronym != "SSp-bfd6a" {
		t.Fatalf("expected structure %d under voxel, got %+v ok=%v", deepID, st, ok)
	}
	if st, ok := loaded.RegionAt(0, 0, 0); !ok || st.ID != atlastest.LeftID {
		t.Fatalf("expected small ids to survive packing, got %+v ok=%v", st, ok)
	}
}

func TestLoadAtlasNotFound(t *testing.T) {
	cat := atlastest.Install(t)
	for _, name := range []string{"nope", "", "../etc"} {
		_, err := cat.LoadAtlas(name)
		if !errors.Is(err, atlas.ErrNotFound) {
			t.Errorf("%q: expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestStructuresBackground(t *testing.T) {
	s := atlas.NewStructures([]atlas.Structure{{ID: 5, Name: "Five"}})
	if _, ok := s.Lookup(0); ok {
		t.Fatal("expected label 0 to be background")
	}
	if s.Name(99) != "" {
		t.Fatal("expected unknown label to have no name")
	}
	if s.Name(5) != "Five" {
		t.Fatalf("expected acronym-less label to use name, got %q", s.Name(5))
	}
}

func TestMenuEntries(t *testing.T) {
	entries := atlas.MenuEntries([]atlas.Descriptor{{Name: "allen_mouse_25um", Version: "1.2"}})
	if len(entries) != 2 || entries[0] != atlas.MenuPlaceholder {
		t.Fatalf("expected placeholder first, got %v", entries)
	}
	if entries[1] != "allen_mouse_25um v1.2" {
		t.Fatalf("unexpected entry %q", entries[1])
	}

	if got := atlas.MenuEntries(nil); len(got) != 1 || got[0] != atlas.MenuPlaceholder {
		t.Fatalf("expected only placeholder for empty catalog, got %v", got)
	}
}

func TestParseMenuEntry(t *testing.T) {
	name, ok := atlas.ParseMenuEntry("allen_mouse_25um v1.2")
	if !ok || name != "allen_mouse_25um" {
		t.Fatalf("expected allen_mouse_25um, got %q ok=%v", name, ok)
	}
	if _, ok := atlas.ParseMenuEntry(atlas.MenuPlaceholder); ok {
		t.Fatal("expected placeholder to be rejected")
	}
	if _, ok := atlas.ParseMenuEntry("  "); ok {
		t.Fatal("expected blank entry to be rejected")
	}
}

func TestVoxelVolume(t *testing.T) {
	a := atlastest.New("a", "1", 1, 1, 1)
	want := 0.025 * 0.025 * 0.025
	if got := a.VoxelVolume(); got < want*0.999 || got > want*1.001 {
		t.Fatalf("expected voxel volume %g, got %g", want, got)
	}
}
