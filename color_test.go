package paintmatch

import (
	"image/color"
	"math"
	"testing"
)

func TestHex(t *testing.T) {
	tests := []struct {
		in   string
		want RGBA
	}{
		{"#FF4D4D", RGBA{R: 1, G: 77.0 / 255, B: 77.0 / 255, A: 1}},
		{"4CAF50", RGBA{R: 76.0 / 255, G: 175.0 / 255, B: 80.0 / 255, A: 1}},
		{"#fff", White},
		{"00000000", Transparent},
		{"bogus", Black},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Hex(tt.in)
			if !colorNear(got, tt.want) {
				t.Errorf("Hex(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromColorUnpremultiplies(t *testing.T) {
	// Half-transparent premultiplied red.
	got := FromColor(color.RGBA{R: 128, A: 128})
	if math.Abs(got.R-1) > 0.01 || math.Abs(got.A-128.0/255) > 0.01 {
		t.Errorf("FromColor = %+v, want R=1 A=0.5", got)
	}
}

func TestLuminance(t *testing.T) {
	if l := White.Luminance(); math.Abs(l-1) > 1e-9 {
		t.Errorf("White.Luminance() = %v, want 1", l)
	}
	if l := Black.Luminance(); l != 0 {
		t.Errorf("Black.Luminance() = %v, want 0", l)
	}
}

func colorNear(a, b RGBA) bool {
	const eps = 1e-6
	return math.Abs(a.R-b.R) < eps && math.Abs(a.G-b.G) < eps &&
		math.Abs(a.B-b.B) < eps && math.Abs(a.A-b.A) < eps
}
