package app

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"atlas-segment/internal/config"
)

func TestConfigReloaderCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("brushSize: 100\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewConfigReloader(path, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var got *config.Config
	r.OnReload(func(cfg *config.Config) { got = cfg })

	if r.Check() {
		t.Fatal("expected no reload before the file changes")
	}

	if err := os.WriteFile(path, []byte("brushSize: 300\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	if !r.Check() {
		t.Fatal("expected reload after change")
	}
	if got == nil || got.BrushSize != 300 {
		t.Fatalf("unexpected reloaded config %+v", got)
	}

	// invalid content is skipped
	if err := os.WriteFile(path, []byte("splinePoints: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	later = later.Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	if r.Check() {
		t.Fatal("expected invalid config to be ignored")
	}
}

func TestSetConfig(t *testing.T) {
	f := newFixture(t)
	cfg := config.DefaultConfig()
	cfg.BrushSize = 50
	f.ctrl.SetConfig(cfg)
	if f.ctrl.Config().BrushSize != 50 {
		t.Fatal("expected config replaced")
	}
	f.ctrl.SetConfig(nil)
	if f.ctrl.Config() != cfg {
		t.Fatal("expected nil config to be ignored")
	}
}
