// Package texture prepares the square RGBA image sampled through the per-object UV atlas.
package texture

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"go.uber.org/zap"

	"batch_renderer/logger"
	"batch_renderer/mesh"
)

// checkerCells is the number of checker squares along one edge of an object's cell.
const checkerCells = 4

// Load decodes an image file (png, jpeg, bmp, tiff or webp) and resamples it to a square of
// resolution x resolution pixels.
func Load(path string, resolution int) (*image.RGBA, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("atlas resolution must be positive, got %d", resolution)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open atlas image: %w", err)
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode atlas image %s: %w", path, err)
	}
	logger.Debug("Decoded atlas image",
		zap.String("path", path),
		zap.String("format", format),
		zap.Stringer("bounds", src.Bounds()),
	)
	return Resample(src, resolution), nil
}

// Resample scales src onto a resolution x resolution RGBA image.
func Resample(src image.Image, resolution int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, resolution, resolution))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Generate paints one checkered cell per object, laid out exactly like the UV atlas, so every object
// shows its own hue.
func Generate(objectCount int, resolution int) (*image.RGBA, error) {
	if objectCount <= 0 || resolution <= 0 {
		return nil, fmt.Errorf("cannot generate atlas for %d objects at %d px", objectCount, resolution)
	}
	g := mesh.GridSize(objectCount)
	img := image.NewRGBA(image.Rect(0, 0, resolution, resolution))
	for y := 0; y < resolution; y++ {
		cy := y * g / resolution
		for x := 0; x < resolution; x++ {
			cx := x * g / resolution
			id := cy*g + cx
			// position inside the cell, scaled to checker squares
			sx := (x*g - cx*resolution) * checkerCells / resolution
			sy := (y*g - cy*resolution) * checkerCells / resolution
			img.SetRGBA(x, y, cellColor(id, objectCount, (sx+sy)%2 == 0))
		}
	}
	return img, nil
}

// cellColor picks an evenly spaced hue per object, cells past the object count stay grey.
func cellColor(id int, n int, light bool) color.RGBA {
	if id >= n {
		return color.RGBA{R: 64, G: 64, B: 64, A: 255}
	}
	v := 0.75
	if light {
		v = 1.0
	}
	r, g, b := hsvToRGB(float64(id)/float64(n), 0.6, v)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return uint8(r * 255), uint8(g * 255), uint8(b * 255)
}

// Source returns the atlas image: the file at path when set, a generated one otherwise.
func Source(path string, objectCount int, resolution int) (*image.RGBA, error) {
	if path != "" {
		return Load(path, resolution)
	}
	return Generate(objectCount, resolution)
}
