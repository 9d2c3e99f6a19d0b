// Package tracks persists track points, fits splines through them and
// writes per-track summaries and renderer exports.
package tracks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"atlas-segment/pkg/geometry"
)

// ErrNameCollision is returned when two tracks map to the same file name.
var ErrNameCollision = errors.New("tracks share a file name")

// DefaultExt is the extension of saved track files.
const DefaultExt = ".points"

// Track is a named ordered list of points, detached from the viewer.
type Track struct {
	Name   string             `json:"name"`
	Points []geometry.Point3D `json:"points"`
}

// Save writes each track to dir/<name><ext> as JSON.
func Save(dir, ext string, tracks []Track) error {
	if len(tracks) == 0 {
		return nil
	}
	names := make([]string, len(tracks))
	for i, t := range tracks {
		names[i] = t.Name
	}
	if err := checkFileNames(names); err != nil {
		return err
	}
	ext = normalizeExt(ext)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create tracks dir: %w", err)
	}
	for _, t := range tracks {
		data, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal track %s: %w", t.Name, err)
		}
		path := filepath.Join(dir, FileName(t.Name)+ext)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write track %s: %w", t.Name, err)
		}
	}
	return nil
}

// Load reads every file with the given extension in dir, ordered by file
// name. A missing directory yields no tracks.
func Load(dir, ext string) ([]Track, error) {
	ext = normalizeExt(ext)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tracks dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ext) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	out := make([]Track, 0, len(files))
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read track %s: %w", name, err)
		}
		var t Track
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parse track %s: %w", name, err)
		}
		if t.Name == "" {
			t.Name = strings.TrimSuffix(name, filepath.Ext(name))
		}
		out = append(out, t)
	}
	return out, nil
}

// FileName maps a layer name to a filesystem-safe name.
func FileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "track"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, name)
}

func checkFileNames(names []string) error {
	seen := make(map[string]string, len(names))
	for _, name := range names {
		file := FileName(name)
		if other, ok := seen[file]; ok {
			return fmt.Errorf("%q and %q both map to %s: %w", other, name, file, ErrNameCollision)
		}
		seen[file] = name
	}
	return nil
}

func normalizeExt(ext string) string {
	if ext == "" {
		return DefaultExt
	}
	if !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}
