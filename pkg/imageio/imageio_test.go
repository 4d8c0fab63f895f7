package imageio

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Fepozopo/clahe/pkg/clahe"
)

func TestCropToTiles(t *testing.T) {
	cases := []struct {
		w, h         int
		wantW, wantH int
	}{
		{64, 32, 64, 32},
		{70, 40, 64, 32},
		{33, 100, 32, 96},
	}
	for _, c := range cases {
		b := CropToTiles(image.NewGray(image.Rect(0, 0, c.w, c.h))).Bounds()
		if b.Dx() != c.wantW || b.Dy() != c.wantH {
			t.Fatalf("%dx%d cropped to %dx%d, want %dx%d", c.w, c.h, b.Dx(), b.Dy(), c.wantW, c.wantH)
		}
	}
}

func TestFromImageGraySubImage(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range g.Pix {
		g.Pix[i] = uint8(i)
	}
	sub := g.SubImage(image.Rect(2, 3, 6, 5)).(*image.Gray)
	img := FromImage(sub)
	want := []uint8{26, 27, 28, 29, 34, 35, 36, 37}
	if img.Width != 4 || img.Height != 2 {
		t.Fatalf("size %dx%d, want 4x2", img.Width, img.Height)
	}
	if diff := cmp.Diff(want, img.Pix); diff != "" {
		t.Fatalf("pixels differ (-want +got):\n%s", diff)
	}
}

func TestFromImageColour(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	src.Set(1, 0, color.NRGBA{A: 255})
	img := FromImage(src)
	if img.Pix[0] != 255 || img.Pix[1] != 0 {
		t.Fatalf("got %v, want [255 0]", img.Pix)
	}
}

func TestSaveLoadPNG(t *testing.T) {
	img := clahe.NewImage(2*clahe.TileSize, clahe.TileSize)
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}
	path := filepath.Join(t.TempDir(), "out.png")
	if err := Save(path, img); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path, LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(img, got); diff != "" {
		t.Fatalf("round trip differs (-saved +loaded):\n%s", diff)
	}
}

func TestLoadCrop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd.png")
	odd := clahe.NewImage(clahe.TileSize+5, clahe.TileSize+1)
	if err := Save(path, odd); err != nil {
		t.Fatalf("Save: %v", err)
	}
	img, err := Load(path, LoadOptions{CropToTiles: true})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := img.Validate(); err != nil {
		t.Fatalf("cropped image invalid: %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png"), LoadOptions{}); err == nil {
		t.Fatal("Load of a missing file succeeded")
	}
}

func TestSaveUnsupported(t *testing.T) {
	img := clahe.NewImage(clahe.TileSize, clahe.TileSize)
	err := Save(filepath.Join(t.TempDir(), "out.webp"), img)
	if !errors.Is(err, ErrUnsupportedOutput) {
		t.Fatalf("err = %v, want %v", err, ErrUnsupportedOutput)
	}
	if err := Save(filepath.Join(t.TempDir(), "out.png"), nil); err == nil {
		t.Fatal("Save(nil) succeeded")
	}
}

func TestHistograms(t *testing.T) {
	img := clahe.NewImage(4, 1)
	copy(img.Pix, []uint8{0, 0, 9, 255})
	hist := ImageHistogram(img)
	if hist[0] != 2 || hist[9] != 1 || hist[255] != 1 {
		t.Fatalf("unexpected histogram counts")
	}

	plot := RenderHistogram(hist, 256, 50)
	// the tallest bin fills the column up to height-1 rows
	if plot.GrayAt(0, 49).Y != 40 || plot.GrayAt(0, 0).Y != 255 {
		t.Fatalf("bin 0 column drawn wrong")
	}
	if plot.GrayAt(100, 49).Y != 255 {
		t.Fatalf("empty bin drawn")
	}

	path := filepath.Join(t.TempDir(), "hist.png")
	if err := SaveHistograms(path, hist, hist); err != nil {
		t.Fatalf("SaveHistograms: %v", err)
	}
}
