package regions

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"atlas-segment/internal/atlas"
)

// VolumesFile is written next to saved regions when volume summaries are enabled.
const VolumesFile = "volumes.csv"

// StructureShare is the part of a region falling inside one atlas structure.
type StructureShare struct {
	Structure atlas.Structure
	Voxels    int
	VolumeMM3 float64
}

// Summary describes the size and location of one region.
type Summary struct {
	Name       string
	Voxels     int
	VolumeMM3  float64
	Centroid   [3]float64 // voxel coordinates, z/y/x
	Structures []StructureShare
}

// Summarise measures a region against an atlas. The atlas may be nil, in
// which case physical volumes and the structure breakdown are omitted.
func Summarise(r Region, a *atlas.Atlas) Summary {
	s := Summary{Name: r.Name}
	v := r.Volume
	if v == nil {
		return s
	}

	var zs, ys, xs []float64
	counts := make(map[uint32]int)
	for z := 0; z < v.Depth; z++ {
		for y := 0; y < v.Height; y++ {
			for x := 0; x < v.Width; x++ {
				if v.At(z, y, x) == 0 {
					continue
				}
				zs = append(zs, float64(z))
				ys = append(ys, float64(y))
				xs = append(xs, float64(x))
				if a != nil && a.Annotation != nil {
					counts[a.Annotation.At(z, y, x)]++
				}
			}
		}
	}

	s.Voxels = len(zs)
	if s.Voxels > 0 {
		s.Centroid = [3]float64{stat.Mean(zs, nil), stat.Mean(ys, nil), stat.Mean(xs, nil)}
	}
	if a == nil {
		return s
	}

	voxelVolume := a.VoxelVolume()
	s.VolumeMM3 = float64(s.Voxels) * voxelVolume
	for id, n := range counts {
		st, ok := a.Structures.Lookup(id)
		if !ok {
			continue
		}
		s.Structures = append(s.Structures, StructureShare{
			Structure: st,
			Voxels:    n,
			VolumeMM3: float64(n) * voxelVolume,
		})
	}
	sort.Slice(s.Structures, func(i, j int) bool {
		if s.Structures[i].Voxels != s.Structures[j].Voxels {
			return s.Structures[i].Voxels > s.Structures[j].Voxels
		}
		return s.Structures[i].Structure.ID < s.Structures[j].Structure.ID
	})
	return s
}

// WriteVolumes writes one row per region total followed by its structure
// breakdown into dir/volumes.csv.
func WriteVolumes(dir string, summaries []Summary) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, VolumesFile))
	if err != nil {
		return fmt.Errorf("create volumes file: %w", err)
	}

	w := csv.NewWriter(f)
	rows := [][]string{{"region", "structure_id", "structure", "voxels", "volume_mm3"}}
	for _, s := range summaries {
		rows = append(rows, []string{s.Name, "", "total", strconv.Itoa(s.Voxels), formatFloat(s.VolumeMM3)})
		for _, share := range s.Structures {
			rows = append(rows, []string{
				s.Name,
				strconv.FormatUint(uint64(share.Structure.ID), 10),
				share.Structure.Name,
				strconv.Itoa(share.Voxels),
				formatFloat(share.VolumeMM3),
			})
		}
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write volumes: %w", err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
