// Package imageio moves images between files and clahe.Image buffers.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/Fepozopo/clahe/pkg/clahe"
)

// ErrUnsupportedOutput is returned by Save for formats that can be read but
// not written.
var ErrUnsupportedOutput = errors.New("imageio: unsupported output format")

// LoadOptions controls how Load prepares a decoded image.
type LoadOptions struct {
	// CropToTiles trims the right and bottom edges so both dimensions are
	// multiples of clahe.TileSize.
	CropToTiles bool
}

// Load decodes an image file (PNG, JPEG, GIF, BMP, TIFF or WebP), applies
// its EXIF orientation and converts it to 8-bit luminance.
func Load(path string, opts LoadOptions) (*clahe.Image, error) {
	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	if opts.CropToTiles {
		src = CropToTiles(src)
	}
	return FromImage(src), nil
}

// CropToTiles returns src cropped to the largest tile-aligned rectangle
// anchored at its top-left corner.
func CropToTiles(src image.Image) image.Image {
	b := src.Bounds()
	w := b.Dx() - b.Dx()%clahe.TileSize
	h := b.Dy() - b.Dy()%clahe.TileSize
	if w == b.Dx() && h == b.Dy() {
		return src
	}
	return imaging.Crop(src, image.Rect(b.Min.X, b.Min.Y, b.Min.X+w, b.Min.Y+h))
}

// FromImage converts any image to a single-channel clahe.Image.
func FromImage(src image.Image) *clahe.Image {
	b := src.Bounds()
	out := clahe.NewImage(b.Dx(), b.Dy())
	if g, ok := src.(*image.Gray); ok {
		for y := 0; y < out.Height; y++ {
			i := g.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[y*out.Width:(y+1)*out.Width], g.Pix[i:i+out.Width])
		}
		return out
	}
	// Grayscale writes the luma into R, G and B alike.
	gray := imaging.Grayscale(src)
	for i := range out.Pix {
		out.Pix[i] = gray.Pix[i*4]
	}
	return out
}

// ToGray wraps a copy of img as an *image.Gray.
func ToGray(img *clahe.Image) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
	copy(g.Pix, img.Pix)
	return g
}

// Save encodes img to path, choosing the format from the file extension.
func Save(path string, img *clahe.Image) error {
	if img == nil {
		return fmt.Errorf("source image is nil")
	}
	return saveImage(path, ToGray(img))
}

func saveImage(path string, img image.Image) error {
	if _, err := imaging.FormatFromFilename(path); err != nil {
		ext := strings.ToLower(filepath.Ext(path))
		return fmt.Errorf("%w: %q", ErrUnsupportedOutput, ext)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to write image %s: %w", path, err)
	}
	return nil
}
