package clahe

import (
	"errors"
	"math/rand"
	"testing"
)

func makeFlat(w, h int, v uint8) *Image {
	img := NewImage(w, h)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func makeRandom(w, h int, seed int64) *Image {
	r := rand.New(rand.NewSource(seed))
	img := NewImage(w, h)
	for i := range img.Pix {
		img.Pix[i] = uint8(r.Intn(256))
	}
	return img
}

// makeGradient returns a smooth diagonal ramp with a narrow value range per
// tile, which exercises clipping more than random noise does.
func makeGradient(w, h int) *Image {
	img := NewImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Pix[y*w+x] = uint8((x + y) * 255 / (w + h - 2))
		}
	}
	return img
}

func TestBuildHistogramsConservation(t *testing.T) {
	for _, img := range []*Image{
		makeRandom(96, 64, 1),
		makeGradient(128, 96),
		makeFlat(32, 32, 7),
	} {
		hists, _, err := BuildHistograms(img)
		if err != nil {
			t.Fatalf("BuildHistograms: %v", err)
		}
		if len(hists) != img.TilesX()*img.TilesY() {
			t.Fatalf("got %d histograms, want %d", len(hists), img.TilesX()*img.TilesY())
		}
		for i := range hists {
			if s := hists[i].Sum(); s != TilePixels {
				t.Fatalf("tile %d sums to %d, want %d", i, s, TilePixels)
			}
		}
	}
}

func TestBuildHistogramsTileAddressing(t *testing.T) {
	// 3x2 tiles, each tile filled with its own index
	img := NewImage(3*TileSize, 2*TileSize)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			img.Pix[y*img.Width+x] = uint8((y/TileSize)*3 + x/TileSize)
		}
	}
	hists, _, err := BuildHistograms(img)
	if err != nil {
		t.Fatalf("BuildHistograms: %v", err)
	}
	for i := range hists {
		if hists[i][i] != TilePixels {
			t.Fatalf("tile %d: bin %d = %d, want %d", i, i, hists[i][i], TilePixels)
		}
	}
}

func TestBuildHistogramsModeTieBreak(t *testing.T) {
	// left tile all 200, right tile all 10: equal counts, smaller value wins
	img := NewImage(2*TileSize, TileSize)
	for y := 0; y < TileSize; y++ {
		for x := 0; x < 2*TileSize; x++ {
			if x < TileSize {
				img.Pix[y*img.Width+x] = 200
			} else {
				img.Pix[y*img.Width+x] = 10
			}
		}
	}
	_, mode, err := BuildHistograms(img)
	if err != nil {
		t.Fatalf("BuildHistograms: %v", err)
	}
	if mode != 10 {
		t.Fatalf("mode = %d, want 10", mode)
	}

	// one extra pixel of 200 breaks the tie the other way
	img.Pix[TileSize] = 200
	if _, mode, _ = BuildHistograms(img); mode != 200 {
		t.Fatalf("mode = %d, want 200", mode)
	}
}

func TestBuildHistogramsPreconditions(t *testing.T) {
	cases := []struct {
		name string
		img  *Image
		want error
	}{
		{"nil", nil, ErrEmptyImage},
		{"empty", NewImage(0, 0), ErrEmptyImage},
		{"width not aligned", NewImage(TileSize+1, TileSize), ErrTileAlignment},
		{"height not aligned", NewImage(TileSize, TileSize*2-3), ErrTileAlignment},
		{"short buffer", &Image{Pix: make([]uint8, 10), Width: TileSize, Height: TileSize}, ErrBufferSize},
	}
	for _, c := range cases {
		if _, _, err := BuildHistograms(c.img); !errors.Is(err, c.want) {
			t.Fatalf("%s: err = %v, want %v", c.name, err, c.want)
		}
	}
}

func BenchmarkBuildHistograms(b *testing.B) {
	img := makeRandom(512, 512, 42)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = BuildHistograms(img)
	}
}
