package atlas

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"atlas-segment/internal/volume"
)

// Files and directories inside one atlas directory.
const (
	MetadataFile   = "metadata.json"
	StructuresFile = "structures.json"
	ReferenceDir   = "reference"
	AnnotationDir  = "annotation"
)

// Catalog serves atlases installed under a root directory, one
// subdirectory per atlas.
type Catalog struct {
	root string

	mu     sync.Mutex
	listed []Descriptor
}

// NewCatalog creates a catalog rooted at dir.
func NewCatalog(dir string) *Catalog {
	return &Catalog{root: dir}
}

// Root returns the catalog directory.
func (c *Catalog) Root() string {
	return c.root
}

// ListAvailableAtlases returns installed atlases ordered by name. The
// listing is cached after the first successful scan; Refresh drops it.
func (c *Catalog) ListAvailableAtlases() ([]Descriptor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listed != nil {
		return append([]Descriptor(nil), c.listed...), nil
	}

	entries, err := os.ReadDir(c.root)
	if errors.Is(err, os.ErrNotExist) {
		c.listed = []Descriptor{}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read atlas dir: %w", err)
	}

	var out []Descriptor
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := readMetadata(filepath.Join(c.root, e.Name()))
		if err != nil {
			// Not an atlas (or a partial download); skip it
			continue
		}
		out = append(out, Descriptor{Name: e.Name(), Version: meta.Version})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	c.listed = out
	return append([]Descriptor(nil), out...), nil
}

// Refresh forgets the cached listing.
func (c *Catalog) Refresh() {
	c.mu.Lock()
	c.listed = nil
	c.mu.Unlock()
}

// LoadAtlas reads the full atlas. Unknown names fail with ErrNotFound.
func (c *Catalog) LoadAtlas(name string) (*Atlas, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	dir := filepath.Join(c.root, name)
	meta, err := readMetadata(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("atlas %s: %w", name, err)
	}
	if meta.Name == "" {
		meta.Name = name
	}

	structures, err := loadStructures(filepath.Join(dir, StructuresFile))
	if err != nil {
		return nil, fmt.Errorf("atlas %s: %w", name, err)
	}
	reference, err := volume.LoadStack(filepath.Join(dir, ReferenceDir))
	if err != nil {
		return nil, fmt.Errorf("atlas %s reference: %w", name, err)
	}
	annotation, err := volume.LoadStack(filepath.Join(dir, AnnotationDir))
	if err != nil {
		return nil, fmt.Errorf("atlas %s annotation: %w", name, err)
	}
	if !reference.SameShape(annotation) {
		return nil, fmt.Errorf("atlas %s: reference %v and annotation %v differ in shape",
			name, reference.Shape(), annotation.Shape())
	}

	return &Atlas{
		Metadata:   meta,
		Reference:  reference,
		Annotation: annotation,
		Structures: structures,
	}, nil
}

// Install writes an atlas into the catalog directory, replacing any
// existing atlas of the same name.
func (c *Catalog) Install(a *Atlas) error {
	dir := filepath.Join(c.root, a.Metadata.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	meta := a.Metadata
	meta.Shape = a.Reference.Shape()
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, MetadataFile), data, 0o644); err != nil {
		return err
	}

	data, err = json.MarshalIndent(a.Structures.List(), "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, StructuresFile), data, 0o644); err != nil {
		return err
	}

	if err := volume.SaveStack(filepath.Join(dir, ReferenceDir), a.Reference); err != nil {
		return err
	}
	if err := volume.SaveStack(filepath.Join(dir, AnnotationDir), a.Annotation); err != nil {
		return err
	}

	c.Refresh()
	return nil
}

func readMetadata(dir string) (Metadata, error) {
	var meta Metadata
	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("parse metadata: %w", err)
	}
	return meta, nil
}
