package regions

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"atlas-segment/internal/volume"
)

// MeshExt is the extension of exported region meshes.
const MeshExt = ".obj"

// Mesh is a quad surface in world coordinates (microns).
type Mesh struct {
	Vertices [][3]float64
	Quads    [][4]int // zero-based vertex indices
}

// faceCorners lists, per neighbour direction, the offsets of the four
// corners of the shared face, ordered counter-clockwise seen from outside.
var faceCorners = []struct {
	dz, dy, dx int
	corners    [4][3]int
}{
	{0, 0, -1, [4][3]int{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}},
	{0, 0, 1, [4][3]int{{0, 0, 1}, {0, 1, 1}, {1, 1, 1}, {1, 0, 1}}},
	{0, -1, 0, [4][3]int{{0, 0, 0}, {0, 0, 1}, {1, 0, 1}, {1, 0, 0}}},
	{0, 1, 0, [4][3]int{{0, 1, 0}, {1, 1, 0}, {1, 1, 1}, {0, 1, 1}}},
	{-1, 0, 0, [4][3]int{{0, 0, 0}, {0, 1, 0}, {0, 1, 1}, {0, 0, 1}}},
	{1, 0, 0, [4][3]int{{1, 0, 0}, {1, 0, 1}, {1, 1, 1}, {1, 1, 0}}},
}

// BuildMesh extracts the boundary surface of all labelled voxels. Grid
// corners are scaled by resolution (microns per voxel) and the z axis is
// mirrored about maxZ so the surface matches the renderer's orientation.
func BuildMesh(v *volume.Volume, resolution float64, maxZ int) Mesh {
	var m Mesh
	index := make(map[[3]int]int)
	vertex := func(c [3]int) int {
		if i, ok := index[c]; ok {
			return i
		}
		i := len(m.Vertices)
		index[c] = i
		m.Vertices = append(m.Vertices, [3]float64{
			float64(c[2]) * resolution,
			float64(c[1]) * resolution,
			float64(maxZ-c[0]) * resolution,
		})
		return i
	}

	for z := 0; z < v.Depth; z++ {
		for y := 0; y < v.Height; y++ {
			for x := 0; x < v.Width; x++ {
				if v.At(z, y, x) == 0 {
					continue
				}
				for _, f := range faceCorners {
					if v.At(z+f.dz, y+f.dy, x+f.dx) != 0 {
						continue
					}
					var quad [4]int
					for i, c := range f.corners {
						quad[i] = vertex([3]int{z + c[0], y + c[1], x + c[2]})
					}
					m.Quads = append(m.Quads, quad)
				}
			}
		}
	}
	return m
}

// WriteOBJ writes the mesh as a Wavefront OBJ file.
func (m Mesh) WriteOBJ(path, name string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "o %s\n", name)
	for _, v := range m.Vertices {
		fmt.Fprintf(w, "v %.3f %.3f %.3f\n", v[0], v[1], v[2])
	}
	for _, q := range m.Quads {
		// OBJ indices are one-based
		fmt.Fprintf(w, "f %d %d %d %d\n", q[0]+1, q[1]+1, q[2]+1, q[3]+1)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Export writes one mesh per non-empty region into dir. It returns the
// paths written.
func Export(dir string, regions []Region, resolution float64, maxZ int) ([]string, error) {
	if err := checkFileNames(regions); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	var written []string
	for _, r := range regions {
		if r.Volume == nil || r.Volume.NonZero() == 0 {
			continue
		}
		mesh := BuildMesh(r.Volume, resolution, maxZ)
		path := filepath.Join(dir, FileName(r.Name)+MeshExt)
		if err := mesh.WriteOBJ(path, r.Name); err != nil {
			return written, fmt.Errorf("export region %s: %w", r.Name, err)
		}
		written = append(written, path)
	}
	return written, nil
}
