package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	p, err := LoadFrom(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if p.String(KeyLastDir) != "" {
		t.Error("Expected empty last dir")
	}
	if p.Float(KeyWindowWidth, 1200) != 1200 {
		t.Error("Expected fallback width")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", prefsFile)
	p, _ := LoadFrom(path)
	p.SetFloat(KeyWindowWidth, 800)
	p.SetString(KeyLastDir, "/data/brain1")
	if err := p.Save(); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	q, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Failed to reload: %v", err)
	}
	if q.Float(KeyWindowWidth, 0) != 800 {
		t.Errorf("Expected width 800, got %v", q.Float(KeyWindowWidth, 0))
	}
	if q.String(KeyLastDir) != "/data/brain1" {
		t.Errorf("Unexpected last dir %q", q.String(KeyLastDir))
	}

	q.SetString(KeyLastDir, "")
	if q.String(KeyLastDir) != "" {
		t.Error("Expected empty value to remove key")
	}
}

func TestCorruptFileIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadFrom(path)
	if err == nil {
		t.Error("Expected parse error")
	}
	p.SetString(KeyLastAtlas, "allen_mouse_25um")
	if p.String(KeyLastAtlas) != "allen_mouse_25um" {
		t.Error("Expected prefs usable after corrupt load")
	}
}
