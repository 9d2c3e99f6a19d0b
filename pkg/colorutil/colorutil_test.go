package colorutil

import (
	"image/color"
	"testing"
)

func TestHSVToRGB(t *testing.T) {
	cases := []struct {
		h, s, v float64
		want    color.RGBA
	}{
		{0, 1, 1, color.RGBA{255, 0, 0, 255}},
		{120, 1, 1, color.RGBA{0, 255, 0, 255}},
		{240, 1, 1, color.RGBA{0, 0, 255, 255}},
		{-120, 1, 1, color.RGBA{0, 0, 255, 255}},
		{0, 0, 1, White},
	}
	for _, tc := range cases {
		if got := HSVToRGB(tc.h, tc.s, tc.v); got != tc.want {
			t.Errorf("HSVToRGB(%v, %v, %v) = %v, want %v", tc.h, tc.s, tc.v, got, tc.want)
		}
	}
}

func TestLabelColor(t *testing.T) {
	if LabelColor(0).A != 0 {
		t.Error("Expected background to be transparent")
	}
	if LabelColor(1) == LabelColor(2) {
		t.Error("Expected neighbouring labels to differ")
	}
	if LabelColor(7) != LabelColor(7) || LabelColor(7).A != 255 {
		t.Error("Expected stable opaque colors")
	}
}
