package clahe

import (
	"fmt"
	"math"
)

// Table maps an input intensity to its equalized output intensity.
type Table [PixelRange]uint8

// CumulativeHistograms returns the prefix sum of every limited histogram.
func CumulativeHistograms(limited []Histogram) []Histogram {
	cum := make([]Histogram, len(limited))
	for t := range limited {
		cumulateTile(&limited[t], &cum[t])
	}
	return cum
}

func cumulateTile(src, dst *Histogram) {
	dst[0] = src[0]
	for i := 1; i < PixelRange; i++ {
		dst[i] = dst[i-1] + src[i]
	}
}

// CDFMin returns the first nonzero value of a cumulative histogram, or zero
// when every bin is empty.
func CDFMin(cum *Histogram) uint32 {
	if cum[0] != 0 {
		return cum[0]
	}
	for i := 1; i < PixelRange; i++ {
		if cum[i-1] == 0 && cum[i] != 0 {
			return cum[i]
		}
	}
	return cum[0]
}

// EqualizationTables derives one remap table per tile from the original
// (unclipped) tile histograms. Limiting and prefix sums are recomputed here;
// callers that already hold them use TablesFromLimited or
// TablesFromCumulative.
func EqualizationTables(hists []Histogram) ([]Table, error) {
	tables := make([]Table, len(hists))
	for t := range hists {
		var limited, cum Histogram
		limitTile(&hists[t], &limited)
		cumulateTile(&limited, &cum)
		if err := equalizeTile(&hists[t], &cum, &tables[t]); err != nil {
			return nil, fmt.Errorf("tile %d: %w", t, err)
		}
	}
	return tables, nil
}

// TablesFromLimited derives remap tables from caller-supplied limited
// histograms. hists are the unclipped histograms they were limited from and
// supply the lost contrast correction.
func TablesFromLimited(hists, limited []Histogram) ([]Table, error) {
	if len(hists) != len(limited) {
		return nil, fmt.Errorf("%w: %d histograms, %d limited", ErrHistogramCount, len(hists), len(limited))
	}
	return TablesFromCumulative(hists, CumulativeHistograms(limited))
}

// TablesFromCumulative derives remap tables from caller-supplied cumulative
// histograms. The original histograms are still required for the lost
// contrast correction.
func TablesFromCumulative(hists, cumulative []Histogram) ([]Table, error) {
	if len(hists) != len(cumulative) {
		return nil, fmt.Errorf("%w: %d histograms, %d cumulative", ErrHistogramCount, len(hists), len(cumulative))
	}
	tables := make([]Table, len(hists))
	for t := range hists {
		if err := equalizeTile(&hists[t], &cumulative[t], &tables[t]); err != nil {
			return nil, fmt.Errorf("tile %d: %w", t, err)
		}
	}
	return tables, nil
}

func equalizeTile(original, cum *Histogram, dst *Table) error {
	lost := LostContrast(original)
	if TilePixels <= lost {
		return fmt.Errorf("%w: lost contrast %d of %d pixels", ErrDegenerateTile, lost, TilePixels)
	}
	denom := float32(TilePixels - lost)
	cdfMin := int64(CDFMin(cum))
	for i := range cum {
		// Bins below cdfMin go negative here and are clamped to 1.
		t := float32(math.Round(float64(float32(int64(cum[i])-cdfMin)/denom*(PixelRange-2)))) + 1
		switch {
		case t < 1:
			t = 1
		case t > PixelMax:
			t = PixelMax
		}
		dst[i] = uint8(t)
	}
	return nil
}
