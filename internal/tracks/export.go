package tracks

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// SplineExt is the extension of exported spline point arrays.
const SplineExt = ".npy"

// WorldPoints converts spline samples to renderer coordinates: x and y
// scaled by resolution, z mirrored about maxZ and scaled.
func WorldPoints(s Spline, resolution float64, maxZ int) [][3]float64 {
	out := make([][3]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = [3]float64{
			p.X * resolution,
			p.Y * resolution,
			(float64(maxZ) - p.Z) * resolution,
		}
	}
	return out
}

// Export writes every spline as an (n, 3) float64 .npy array into dir and
// returns the files written.
func Export(dir string, splines []Spline, resolution float64, maxZ int) ([]string, error) {
	names := make([]string, len(splines))
	for i, s := range splines {
		names[i] = s.Name
	}
	if err := checkFileNames(names); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	var written []string
	for _, s := range splines {
		if len(s.Points) == 0 {
			continue
		}
		path := filepath.Join(dir, FileName(s.Name)+SplineExt)
		if err := WriteNPY(path, WorldPoints(s, resolution, maxZ)); err != nil {
			return written, fmt.Errorf("export spline %s: %w", s.Name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// npyMagic starts every version 1.0 .npy file.
var npyMagic = []byte{0x93, 'N', 'U', 'M', 'P', 'Y', 1, 0}

// npyHeader returns the padded header dict. Magic, length field and dict
// together are a multiple of 64 bytes and the dict ends in a newline.
func npyHeader(rows int) string {
	dict := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%d, 3), }", rows)
	total := len(npyMagic) + 2 + len(dict) + 1
	pad := (64 - total%64) % 64
	return dict + strings.Repeat(" ", pad) + "\n"
}

// WriteNPY writes little-endian float64 rows in C order.
func WriteNPY(path string, rows [][3]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	header := npyHeader(len(rows))

	w.Write(npyMagic)
	binary.Write(w, binary.LittleEndian, uint16(len(header)))
	w.WriteString(header)
	buf := make([]byte, 8)
	for _, r := range rows {
		for _, v := range r {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
			w.Write(buf)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
