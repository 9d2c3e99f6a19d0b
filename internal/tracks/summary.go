package tracks

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"atlas-segment/internal/atlas"
	"atlas-segment/pkg/geometry"
)

// SummaryRow describes one sampled spline point.
type SummaryRow struct {
	Index    int
	Distance float64 // microns from the start of the track
	Point    geometry.Point3D
	Region   string
}

// Summarise walks a spline and resolves the atlas structure under every
// sample. Distances are in microns when an atlas is given, voxels otherwise.
func Summarise(s Spline, a *atlas.Atlas) []SummaryRow {
	scale := [3]float64{1, 1, 1}
	if a != nil {
		scale = a.Resolution()
	}
	rows := make([]SummaryRow, len(s.Points))
	dist := 0.0
	for i, p := range s.Points {
		if i > 0 {
			prev := s.Points[i-1]
			d := geometry.NewPoint3D(
				(p.Z-prev.Z)*scale[0],
				(p.Y-prev.Y)*scale[1],
				(p.X-prev.X)*scale[2],
			)
			dist += d.Distance(geometry.Point3D{})
		}
		rows[i] = SummaryRow{Index: i, Distance: dist, Point: p}
		if a != nil {
			z, y, x := p.Voxel()
			if st, ok := a.RegionAt(z, y, x); ok {
				rows[i].Region = st.Name
			}
		}
	}
	return rows
}

// WriteSummary writes rows to dir/<name>.csv and returns the file path.
func WriteSummary(dir, name string, rows []SummaryRow) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(name)+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create summary: %w", err)
	}

	w := csv.NewWriter(f)
	records := [][]string{{"index", "distance_um", "z", "y", "x", "region"}}
	for _, r := range rows {
		records = append(records, []string{
			strconv.Itoa(r.Index),
			strconv.FormatFloat(r.Distance, 'f', 3, 64),
			strconv.FormatFloat(r.Point.Z, 'f', 3, 64),
			strconv.FormatFloat(r.Point.Y, 'f', 3, 64),
			strconv.FormatFloat(r.Point.X, 'f', 3, 64),
			r.Region,
		})
	}
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return "", fmt.Errorf("write summary: %w", err)
	}
	return path, f.Close()
}
