package paintmatch

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	// Register decoders for reference images.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LoadReference decodes a color image and a height image and resamples both
// to resolution x resolution. The reference name is derived from the color
// file name (see ReferenceName).
//
// PNG, JPEG, GIF, BMP, TIFF and WebP inputs are supported.
func LoadReference(colorPath, heightPath string, resolution int) (Reference, error) {
	c, err := LoadColorSurface(colorPath, resolution)
	if err != nil {
		return Reference{}, err
	}
	h, err := LoadHeightSurface(heightPath, resolution)
	if err != nil {
		return Reference{}, err
	}
	return Reference{Name: ReferenceName(colorPath), Color: c, Height: h}, nil
}

// LoadColorSurface decodes an image file into a resolution x resolution
// color surface.
func LoadColorSurface(path string, resolution int) (*ColorSurface, error) {
	img, err := decodeResampled(path, resolution)
	if err != nil {
		return nil, err
	}
	return ColorSurfaceFromImage(img), nil
}

// LoadHeightSurface decodes an image file into a resolution x resolution
// height surface using the image luminance.
func LoadHeightSurface(path string, resolution int) (*HeightSurface, error) {
	img, err := decodeResampled(path, resolution)
	if err != nil {
		return nil, err
	}
	return HeightSurfaceFromImage(img), nil
}

func decodeResampled(path string, resolution int) (image.Image, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("paintmatch: load %s: resolution %d: %w", path, resolution, ErrInvalidConfiguration)
	}
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, fmt.Errorf("paintmatch: load %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("paintmatch: decode %s: %w", path, err)
	}
	return Resample(src, resolution), nil
}

// Resample scales img to resolution x resolution with Catmull-Rom filtering.
// Images that already have that size are returned unchanged.
func Resample(img image.Image, resolution int) image.Image {
	b := img.Bounds()
	if b.Dx() == resolution && b.Dy() == resolution {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, resolution, resolution))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// ReferenceName derives a display name from a reference file path:
// "assets/red_flag_color.png" becomes "Red Flag".
func ReferenceName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, suffix := range []string{"_color", "-color", "_height", "-height"} {
		base = strings.TrimSuffix(base, suffix)
	}
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return cases.Title(language.English).String(strings.Join(strings.Fields(base), " "))
}
