package paintmatch

import (
	"image"
	"image/color"
	"image/png"
	"os"
)

// ColorSurface is a square grid of non-premultiplied RGBA samples,
// 4 bytes per sample, laid out row by row.
//
// The host paints into the surface in place; the difference kernel only
// reads it.
type ColorSurface struct {
	size int
	data []uint8
}

// NewColorSurface creates a transparent color surface with the given edge length.
func NewColorSurface(size int) *ColorSurface {
	if size < 0 {
		size = 0
	}
	return &ColorSurface{
		size: size,
		data: make([]uint8, size*size*4),
	}
}

// ColorSurfaceFromImage creates a color surface from the top-left square of img.
// The edge length is the smaller of the image width and height.
func ColorSurfaceFromImage(img image.Image) *ColorSurface {
	b := img.Bounds()
	s := NewColorSurface(min(b.Dx(), b.Dy()))
	for y := 0; y < s.size; y++ {
		for x := 0; x < s.size; x++ {
			n := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := (y*s.size + x) * 4
			s.data[i+0] = n.R
			s.data[i+1] = n.G
			s.data[i+2] = n.B
			s.data[i+3] = n.A
		}
	}
	return s
}

// Size returns the edge length of the surface.
func (s *ColorSurface) Size() int {
	return s.size
}

// Data returns the raw sample data (RGBA format).
func (s *ColorSurface) Data() []uint8 {
	return s.data
}

// SetPixel sets the color of a single sample.
// Out-of-range coordinates are ignored.
func (s *ColorSurface) SetPixel(x, y int, c RGBA) {
	if x < 0 || x >= s.size || y < 0 || y >= s.size {
		return
	}
	i := (y*s.size + x) * 4
	s.data[i+0] = uint8(clamp255(c.R * 255))
	s.data[i+1] = uint8(clamp255(c.G * 255))
	s.data[i+2] = uint8(clamp255(c.B * 255))
	s.data[i+3] = uint8(clamp255(c.A * 255))
}

// GetPixel returns the color of a single sample.
func (s *ColorSurface) GetPixel(x, y int) RGBA {
	if x < 0 || x >= s.size || y < 0 || y >= s.size {
		return Transparent
	}
	i := (y*s.size + x) * 4
	return RGBA{
		R: float64(s.data[i+0]) / 255,
		G: float64(s.data[i+1]) / 255,
		B: float64(s.data[i+2]) / 255,
		A: float64(s.data[i+3]) / 255,
	}
}

// Fill sets every sample to c.
func (s *ColorSurface) Fill(c RGBA) {
	r := uint8(clamp255(c.R * 255))
	g := uint8(clamp255(c.G * 255))
	b := uint8(clamp255(c.B * 255))
	a := uint8(clamp255(c.A * 255))

	for i := 0; i < len(s.data); i += 4 {
		s.data[i+0] = r
		s.data[i+1] = g
		s.data[i+2] = b
		s.data[i+3] = a
	}
}

// Clear resets every sample to transparent zero.
func (s *ColorSurface) Clear() {
	clear(s.data)
}

// CopyFrom copies the samples of src into s. Both surfaces must have the same size.
func (s *ColorSurface) CopyFrom(src *ColorSurface) bool {
	if src == nil || src.size != s.size {
		return false
	}
	copy(s.data, src.data)
	return true
}

// ToImage converts the surface to an image.NRGBA.
func (s *ColorSurface) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.size, s.size))
	copy(img.Pix, s.data)
	return img
}

// SavePNG saves the surface to a PNG file.
func (s *ColorSurface) SavePNG(path string) error {
	return savePNG(path, s.ToImage())
}

// HeightSurface is a square grid of scalar height samples in [0, 1].
type HeightSurface struct {
	size int
	data []float32
}

// NewHeightSurface creates a zero height surface with the given edge length.
func NewHeightSurface(size int) *HeightSurface {
	if size < 0 {
		size = 0
	}
	return &HeightSurface{
		size: size,
		data: make([]float32, size*size),
	}
}

// HeightSurfaceFromImage creates a height surface from the luminance of the
// top-left square of img.
func HeightSurfaceFromImage(img image.Image) *HeightSurface {
	b := img.Bounds()
	s := NewHeightSurface(min(b.Dx(), b.Dy()))
	for y := 0; y < s.size; y++ {
		for x := 0; x < s.size; x++ {
			c := FromColor(img.At(b.Min.X+x, b.Min.Y+y))
			s.data[y*s.size+x] = float32(clamp01(c.Luminance()))
		}
	}
	return s
}

// Size returns the edge length of the surface.
func (s *HeightSurface) Size() int {
	return s.size
}

// Data returns the raw height samples, row by row.
func (s *HeightSurface) Data() []float32 {
	return s.data
}

// Set sets a single height sample, clamped to [0, 1].
// Out-of-range coordinates are ignored.
func (s *HeightSurface) Set(x, y int, h float32) {
	if x < 0 || x >= s.size || y < 0 || y >= s.size {
		return
	}
	s.data[y*s.size+x] = float32(clamp01(float64(h)))
}

// At returns a single height sample.
func (s *HeightSurface) At(x, y int) float32 {
	if x < 0 || x >= s.size || y < 0 || y >= s.size {
		return 0
	}
	return s.data[y*s.size+x]
}

// Fill sets every sample to h, clamped to [0, 1].
func (s *HeightSurface) Fill(h float32) {
	v := float32(clamp01(float64(h)))
	for i := range s.data {
		s.data[i] = v
	}
}

// Clear resets every sample to zero.
func (s *HeightSurface) Clear() {
	clear(s.data)
}

// CopyFrom copies the samples of src into s. Both surfaces must have the same size.
func (s *HeightSurface) CopyFrom(src *HeightSurface) bool {
	if src == nil || src.size != s.size {
		return false
	}
	copy(s.data, src.data)
	return true
}

// ToImage converts the surface to an 8-bit grayscale image.
func (s *HeightSurface) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, s.size, s.size))
	for i, h := range s.data {
		img.Pix[i] = uint8(clamp255(float64(h) * 255))
	}
	return img
}

// SavePNG saves the surface to a grayscale PNG file.
func (s *HeightSurface) SavePNG(path string) error {
	return savePNG(path, s.ToImage())
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	return png.Encode(f, img)
}
