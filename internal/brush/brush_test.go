package brush

import (
	"testing"

	"atlas-segment/internal/volume"
)

func TestPaintStaysOnSlice(t *testing.T) {
	v := volume.New(3, 11, 11)
	n := Paint(v, Stroke{Z: 1, Y: 5, X: 5, Radius: 2, Value: 7})
	if n == 0 || v.Count(7) != n {
		t.Fatalf("%s: expected %d voxels labelled, got %d", Backend, n, v.Count(7))
	}
	if v.At(1, 5, 5) != 7 || v.At(1, 5, 7) != 7 {
		t.Fatalf("%s: expected centre and rim painted", Backend)
	}
	if v.At(0, 5, 5) != 0 || v.At(2, 5, 5) != 0 || v.At(1, 5, 9) != 0 {
		t.Fatalf("%s: expected paint confined to the disc on slice 1", Backend)
	}
	// a radius 2 disc covers between the inscribed and bounding squares
	if n < 9 || n > 25 {
		t.Fatalf("%s: unexpected footprint %d", Backend, n)
	}
}

func TestPaintClipsAtEdges(t *testing.T) {
	v := volume.New(1, 4, 4)
	n := Paint(v, Stroke{Z: 0, Y: 0, X: 0, Radius: 1, Value: 484682470})
	if n == 0 || n > 4 {
		t.Fatalf("%s: expected a clipped quarter disc, got %d voxels", Backend, n)
	}
	if v.At(0, 0, 0) != 484682470 {
		t.Fatalf("%s: expected wide label written", Backend)
	}
	if Paint(v, Stroke{Z: 3, Y: 0, X: 0, Radius: 1, Value: 1}) != 0 {
		t.Fatal("expected out of range slice to paint nothing")
	}
	if Paint(v, Stroke{Z: 0, Y: -10, X: -10, Radius: 1, Value: 1}) != 0 {
		t.Fatal("expected off-slice stroke to paint nothing")
	}
}
