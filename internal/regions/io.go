// Package regions persists, measures and exports segmented region
// (labels) volumes.
package regions

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"atlas-segment/internal/volume"
)

// ErrNameCollision is returned when two regions map to the same file name.
var ErrNameCollision = errors.New("regions share a file name")

// Region is a named label volume, detached from the viewer.
type Region struct {
	Name   string
	Volume *volume.Volume
}

// Save writes every region as a slice stack named after the region.
func Save(dir string, regions []Region) error {
	if len(regions) == 0 {
		return nil
	}
	if err := checkFileNames(regions); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create regions dir: %w", err)
	}
	for _, r := range regions {
		if r.Volume == nil {
			continue
		}
		path := filepath.Join(dir, FileName(r.Name))
		if err := volume.SaveStack(path, r.Volume); err != nil {
			return fmt.Errorf("save region %s: %w", r.Name, err)
		}
	}
	return nil
}

// Load reads every saved region in dir, ordered by name. A missing
// directory is not an error and yields no regions.
func Load(dir string) ([]Region, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read regions dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && volume.IsStack(filepath.Join(dir, e.Name())) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]Region, 0, len(names))
	for _, name := range names {
		v, err := volume.LoadStack(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("load region %s: %w", name, err)
		}
		out = append(out, Region{Name: name, Volume: v})
	}
	return out, nil
}

func checkFileNames(regions []Region) error {
	seen := make(map[string]string, len(regions))
	for _, r := range regions {
		file := FileName(r.Name)
		if other, ok := seen[file]; ok {
			return fmt.Errorf("%q and %q both map to %s: %w", other, r.Name, file, ErrNameCollision)
		}
		seen[file] = r.Name
	}
	return nil
}

// FileName maps a layer name to a filesystem-safe name.
func FileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "region"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, name)
}
