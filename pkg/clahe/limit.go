package clahe

// LimitHistograms clips every tile histogram to AbsoluteContrastLimit and
// spreads the clipped surplus evenly over all bins. The surplus that does not
// divide evenly by PixelRange is dropped; LostContrast recovers it from the
// original histogram.
func LimitHistograms(hists []Histogram) []Histogram {
	limited := make([]Histogram, len(hists))
	for t := range hists {
		limitTile(&hists[t], &limited[t])
	}
	return limited
}

func limitTile(src, dst *Histogram) {
	var extra uint32
	for i, v := range src {
		if v > AbsoluteContrastLimit {
			extra += v - AbsoluteContrastLimit
			dst[i] = AbsoluteContrastLimit
		} else {
			dst[i] = v
		}
	}
	if bonus := extra / PixelRange; bonus > 0 {
		for i := range dst {
			dst[i] += bonus
		}
	}
}

// clippedExcess returns the total count above the contrast limit.
func clippedExcess(h *Histogram) uint32 {
	var extra uint32
	for _, v := range h {
		if v > AbsoluteContrastLimit {
			extra += v - AbsoluteContrastLimit
		}
	}
	return extra
}

// LostContrast is the part of the clipped surplus that redistribution could
// not hand back, computed from the unclipped histogram.
func LostContrast(original *Histogram) uint32 {
	return clippedExcess(original) % PixelRange
}
