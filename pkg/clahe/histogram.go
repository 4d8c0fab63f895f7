package clahe

// Histogram holds one count per intensity value.
type Histogram [PixelRange]uint32

// Sum returns the total count across all bins.
func (h *Histogram) Sum() uint64 {
	var s uint64
	for _, v := range h {
		s += uint64(v)
	}
	return s
}

// BuildHistograms computes one histogram per tile and returns the most
// common intensity across the whole image. Ties resolve to the smallest
// intensity.
func BuildHistograms(img *Image) ([]Histogram, uint8, error) {
	if err := img.Validate(); err != nil {
		return nil, 0, err
	}
	tilesX := img.TilesX()
	hists := make([]Histogram, img.Tiles())
	var global [PixelRange]uint64
	for ty := 0; ty < img.TilesY(); ty++ {
		for tx := 0; tx < tilesX; tx++ {
			h := &hists[ty*tilesX+tx]
			histogramTile(img, tx, ty, h)
			for i, v := range h {
				global[i] += uint64(v)
			}
		}
	}
	return hists, modeOf(&global), nil
}

// histogramTile fills h with the counts of tile (tx, ty). h must be zeroed.
func histogramTile(img *Image, tx, ty int, h *Histogram) {
	off := img.tileOffset(tx, ty)
	for py := 0; py < TileSize; py++ {
		row := img.Pix[off+py*img.Width : off+py*img.Width+TileSize]
		for _, p := range row {
			h[p]++
		}
	}
}

// modeOf returns the first bin holding the maximum count.
func modeOf(global *[PixelRange]uint64) uint8 {
	best := 0
	for i := 1; i < PixelRange; i++ {
		if global[i] > global[best] {
			best = i
		}
	}
	return uint8(best)
}

// GlobalHistogram sums the tile histograms into one image-wide histogram.
func GlobalHistogram(hists []Histogram) [PixelRange]uint64 {
	var global [PixelRange]uint64
	for t := range hists {
		for i, v := range hists[t] {
			global[i] += uint64(v)
		}
	}
	return global
}

// MostCommon returns the most common intensity of a set of tile histograms,
// using the same tie-break as BuildHistograms.
func MostCommon(hists []Histogram) uint8 {
	global := GlobalHistogram(hists)
	return modeOf(&global)
}
