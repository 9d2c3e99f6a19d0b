package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.TrackFileExt != ".points" {
		t.Errorf("Expected .points, got %q", cfg.TrackFileExt)
	}
	if cfg.SplinePoints != 1000 || cfg.BrushSize != 250 || cfg.PointSize != 100 || cfg.SplineSize != 50 {
		t.Errorf("Unexpected sizes %+v", cfg)
	}
	if !cfg.SummariseTracks || !cfg.CalculateVolumes {
		t.Error("Expected summaries enabled by default")
	}
	if cfg.BoundariesLayer != "Boundaries" {
		t.Errorf("Unexpected boundaries layer %q", cfg.BoundariesLayer)
	}
}

// TestLoadConfigMissingFile falls back to defaults
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.SplinePoints != 1000 {
		t.Errorf("Expected default spline points, got %d", cfg.SplinePoints)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "atlasDir: /data/atlases\ntrackFileExt: pts\nsplinePoints: 200\ncalculateVolumes: false\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.AtlasDir != "/data/atlases" || cfg.SplinePoints != 200 || cfg.CalculateVolumes {
		t.Errorf("File values not applied: %+v", cfg)
	}
	if cfg.TrackFileExt != ".pts" {
		t.Errorf("Expected extension normalised to .pts, got %q", cfg.TrackFileExt)
	}
	if cfg.BrushSize != 250 {
		t.Errorf("Expected unset keys to keep defaults, got brush %d", cfg.BrushSize)
	}
}

// TestLoadConfigEnvOverrides checks env wins over the file
func TestLoadConfigEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("splinePoints: 200\n"), 0o644)
	t.Setenv("ATLAS_SEGMENT_SPLINE_POINTS", "50")
	t.Setenv("ATLAS_SEGMENT_ATLAS_DIR", "/env/atlases")
	t.Setenv("ATLAS_SEGMENT_SUMMARISE_TRACKS", "false")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.SplinePoints != 50 || cfg.AtlasDir != "/env/atlases" || cfg.SummariseTracks {
		t.Errorf("Env overrides not applied: %+v", cfg)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("splinePoints: [\n"), 0o644)
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected parse error")
	}

	os.WriteFile(path, []byte("splinePoints: 1\n"), 0o644)
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected validation error")
	}

	t.Setenv("ATLAS_SEGMENT_BRUSH_SIZE", "big")
	if _, err := LoadConfig(""); err == nil {
		t.Error("Expected env parse error")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.BrushSize = 12
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.BrushSize != 12 {
		t.Errorf("Expected brush 12, got %d", loaded.BrushSize)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")
	logger.Info("hidden")
	logger.Warn("shown", "component", "test")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("Unexpected log output %q", out)
	}
	if ParseLevel("DEBUG") != slog.LevelDebug || ParseLevel("bogus") != slog.LevelInfo {
		t.Error("Unexpected level parsing")
	}
}
