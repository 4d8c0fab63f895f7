package imageio

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/Fepozopo/clahe/pkg/clahe"
)

// RenderHistogram draws a global histogram as dark bars on white.
// width/height choose the output image size.
func RenderHistogram(hist [clahe.PixelRange]uint64, width, height int) *image.Gray {
	if width <= 0 {
		width = 512
	}
	if height <= 0 {
		height = 120
	}
	out := image.NewGray(image.Rect(0, 0, width, height))
	for i := range out.Pix {
		out.Pix[i] = 255
	}
	var maxv uint64 = 1
	for _, v := range hist {
		maxv = max(maxv, v)
	}
	// draw each bin as a vertical line at x position
	for x := 0; x < width; x++ {
		bin := min(x*clahe.PixelRange/width, clahe.PixelRange-1)
		bh := int(math.Round(float64(hist[bin]) / float64(maxv) * float64(height-1)))
		for y := 0; y < bh; y++ {
			out.Pix[out.PixOffset(x, height-1-y)] = 40
		}
	}
	return out
}

// SaveHistograms renders the input and output histograms one above the
// other, separated by a grey rule, and writes them to path.
func SaveHistograms(path string, in, out [clahe.PixelRange]uint64) error {
	const w, h, gap = 512, 120, 4
	canvas := imaging.New(w, 2*h+gap, color.Gray{Y: 160})
	canvas = imaging.Paste(canvas, RenderHistogram(in, w, h), image.Pt(0, 0))
	canvas = imaging.Paste(canvas, RenderHistogram(out, w, h), image.Pt(0, h+gap))
	return saveImage(path, canvas)
}

// ImageHistogram counts the intensities of a whole image.
func ImageHistogram(img *clahe.Image) [clahe.PixelRange]uint64 {
	var hist [clahe.PixelRange]uint64
	for _, p := range img.Pix {
		hist[p]++
	}
	return hist
}
