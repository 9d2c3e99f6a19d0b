package volume

import (
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/image/tiff"
)

// ErrEmptyStack is returned when a stack directory holds no readable slices.
var ErrEmptyStack = errors.New("no slices found")

// SliceExt is the extension used when writing stacks.
const SliceExt = ".tiff"

// SupportedFormats returns the slice file extensions understood by LoadStack.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png"}
}

// IsSupportedFormat checks if the given path has a supported slice format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// IsStack reports whether dir exists and contains at least one slice file.
func IsStack(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && IsSupportedFormat(e.Name()) {
			return true
		}
	}
	return false
}

// LoadStack reads a directory of 2D slices into a volume.
// Slices are ordered by the number embedded in their file name.
func LoadStack(dir string) (*Volume, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read stack %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && IsSupportedFormat(e.Name()) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrEmptyStack)
	}
	sort.SliceStable(names, func(i, j int) bool {
		ni, nj := sliceNumber(names[i]), sliceNumber(names[j])
		if ni != nj {
			return ni < nj
		}
		return names[i] < names[j]
	})

	var vol *Volume
	for z, name := range names {
		img, err := loadSlice(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if vol == nil {
			b := img.Bounds()
			vol = New(len(names), b.Dy(), b.Dx())
		}
		if err := vol.SetSlice(z, img); err != nil {
			return nil, fmt.Errorf("slice %s: %w", name, err)
		}
	}
	return vol, nil
}

// SaveStack writes the volume as zero-padded, deflate-compressed TIFF slices:
// 16-bit grayscale, or packed NRGBA when a sample exceeds MaxGray16.
// Existing slice files in dir are replaced.
func SaveStack(dir string, v *Volume) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create stack dir: %w", err)
	}
	if err := removeSlices(dir); err != nil {
		return err
	}
	_, hi := v.Range()
	packed := hi > MaxGray16
	for z := 0; z < v.Depth; z++ {
		img := v.sliceImage(z, packed)
		path := filepath.Join(dir, fmt.Sprintf("%04d%s", z, SliceExt))
		if err := writeTIFF(path, img); err != nil {
			return err
		}
	}
	return nil
}

func writeTIFF(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create slice: %w", err)
	}
	if err := tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		f.Close()
		return fmt.Errorf("encode slice %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func loadSlice(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open slice: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode slice %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func removeSlices(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !IsSupportedFormat(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// sliceNumber extracts the digits of a file name, or -1 when there are none.
func sliceNumber(name string) int {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	var digits strings.Builder
	for _, c := range base {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return -1
	}
	return n
}
