package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"atlas-segment/internal/app"
	"atlas-segment/internal/atlas/atlastest"
	"atlas-segment/internal/paths"
	"atlas-segment/internal/tracks"
	"atlas-segment/internal/viewer/viewertest"
	"atlas-segment/pkg/geometry"
)

// run executes segtool with args against an isolated config and atlas dir.
func run(t *testing.T, atlasDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ATLAS_SEGMENT_ATLAS_DIR", atlasDir)
	t.Setenv("ATLAS_SEGMENT_LOG_LEVEL", "error")

	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestAtlasesCommand(t *testing.T) {
	cat := atlastest.Install(t,
		atlastest.New("allen_mouse_25um", "1", 2, 2, 2),
		atlastest.New("kim_mouse_25um", "2", 2, 2, 2),
	)
	out, err := run(t, cat.Root(), "atlases")
	if err != nil {
		t.Fatalf("atlases: %v", err)
	}
	if !strings.Contains(out, "allen_mouse_25um v1") || !strings.Contains(out, "kim_mouse_25um v2") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = run(t, t.TempDir(), "atlases")
	if err != nil {
		t.Fatalf("atlases: %v", err)
	}
	if !strings.HasPrefix(out, "No atlases installed") {
		t.Errorf("unexpected output for empty dir:\n%s", out)
	}
}

func TestPathsCommand(t *testing.T) {
	out, err := run(t, t.TempDir(), "paths", "/data/brain1", "--standard")
	if err != nil {
		t.Fatalf("paths: %v", err)
	}
	want := paths.Resolve("/data/brain1", paths.Standard)
	if !strings.Contains(out, want.RegionsDirectory) || !strings.Contains(out, "mode:    standard") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := run(t, t.TempDir(), "paths"); err == nil {
		t.Error("expected error without ROOT")
	}
}

// project writes a registration directory with one saved track in the
// given space.
func project(t *testing.T, mode paths.SpaceMode) (atlasDir, dir string) {
	t.Helper()
	a := atlastest.New("allen_mouse_25um", "1", 4, 6, 8)
	cat := atlastest.Install(t, a)
	dir = filepath.Join(t.TempDir(), "brain")
	viewertest.WriteProject(t, dir, a, false)

	p := paths.Resolve(dir, mode)
	err := tracks.Save(p.TracksDirectory, tracks.DefaultExt, []tracks.Track{{
		Name:   "track_0",
		Points: []geometry.Point3D{geometry.NewPoint3D(0, 1, 1), geometry.NewPoint3D(3, 4, 6)},
	}})
	if err != nil {
		t.Fatal(err)
	}
	return cat.Root(), dir
}

func TestSaveCommand(t *testing.T) {
	atlasDir, dir := project(t, paths.Sample)
	out, err := run(t, atlasDir, "save", dir)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.Contains(out, "save finished: 0 regions, 1 tracks, 1 splines") {
		t.Errorf("unexpected output:\n%s", out)
	}
	p := paths.Resolve(dir, paths.Sample)
	if _, err := os.Stat(filepath.Join(p.TracksDirectory, "track_0.csv")); err != nil {
		t.Errorf("expected track summary: %v", err)
	}
}

func TestSaveCommandNothingToSave(t *testing.T) {
	atlasDir, dir := project(t, paths.Sample)
	out, err := run(t, atlasDir, "save", dir, "--standard")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if strings.TrimSpace(out) != "Nothing to save." {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestExportCommand(t *testing.T) {
	atlasDir, dir := project(t, paths.Standard)
	if _, err := run(t, atlasDir, "export", dir, "--standard"); err != nil {
		t.Fatalf("export: %v", err)
	}
	p := paths.Resolve(dir, paths.Standard)
	if _, err := os.Stat(filepath.Join(p.ExportDirectory, "track_0"+tracks.SplineExt)); err != nil {
		t.Errorf("expected exported spline: %v", err)
	}

	_, err := run(t, atlasDir, "export", dir)
	if !errors.Is(err, app.ErrExportUnavailable) {
		t.Errorf("expected ErrExportUnavailable in sample space, got %v", err)
	}
}
