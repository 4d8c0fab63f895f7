package clahetest

import (
	"fmt"

	"github.com/Fepozopo/clahe/pkg/clahe"
)

// SkipHistogram computes stage 1 with the reference implementation.
func (h *Harness) SkipHistogram(img *clahe.Image) ([]clahe.Histogram, uint8, error) {
	hists, mode, err := clahe.BuildHistograms(img)
	if err != nil {
		return nil, 0, err
	}
	h.skips[StageHistogram]++
	return hists, mode, nil
}

// ValidateHistogram checks candidate tile histograms and the most common
// intensity. Any intensity sharing the maximum global count is accepted.
func (h *Harness) ValidateHistogram(img *clahe.Image, test []clahe.Histogram, mode uint8) (Mismatch, error) {
	ref, _, err := clahe.BuildHistograms(img)
	if err != nil {
		return Mismatch{}, err
	}
	global := clahe.GlobalHistogram(ref)
	var best uint64
	for _, c := range global {
		best = max(best, c)
	}
	m := Mismatch{
		Stage:  StageHistogram,
		Bad:    countTiles(ref, test),
		Total:  len(ref),
		ModeOK: global[mode] == best,
	}
	h.report(m, "tiles")
	if h.w != nil {
		verdict := consoleGreen + "Pass"
		if !m.ModeOK {
			verdict = consoleRed + "Fail"
		}
		fmt.Fprintf(h.w, "validate_histogram() Most common contrast value: %s%s\n", verdict, consoleReset)
	}
	return m, nil
}

// SkipLimited computes the contrast-limited histograms.
func (h *Harness) SkipLimited(hists []clahe.Histogram) []clahe.Histogram {
	h.skips[StageLimited]++
	return clahe.LimitHistograms(hists)
}

// ValidateLimited checks candidate limited histograms against hists.
func (h *Harness) ValidateLimited(hists, test []clahe.Histogram) Mismatch {
	ref := clahe.LimitHistograms(hists)
	m := Mismatch{Stage: StageLimited, Bad: countTiles(ref, test), Total: len(ref)}
	h.report(m, "limited histograms")
	return m
}

// SkipCumulative computes the cumulative histograms.
func (h *Harness) SkipCumulative(limited []clahe.Histogram) []clahe.Histogram {
	h.skips[StageCumulative]++
	return clahe.CumulativeHistograms(limited)
}

// ValidateCumulative checks candidate cumulative histograms against limited.
func (h *Harness) ValidateCumulative(limited, test []clahe.Histogram) Mismatch {
	ref := clahe.CumulativeHistograms(limited)
	m := Mismatch{Stage: StageCumulative, Bad: countTiles(ref, test), Total: len(ref)}
	h.report(m, "cumulative histograms")
	return m
}

// SkipEqualised computes the remap tables straight from the stage 1
// histograms, covering all of stage 2.
func (h *Harness) SkipEqualised(hists []clahe.Histogram) ([]clahe.Table, error) {
	tables, err := clahe.EqualizationTables(hists)
	if err != nil {
		return nil, err
	}
	h.skips[StageEqualised]++
	return tables, nil
}

// ValidateEqualised checks candidate remap tables against hists.
func (h *Harness) ValidateEqualised(hists []clahe.Histogram, test []clahe.Table) (Mismatch, error) {
	ref, err := clahe.EqualizationTables(hists)
	if err != nil {
		return Mismatch{}, err
	}
	m := Mismatch{Stage: StageEqualised, Bad: countTiles(ref, test), Total: len(ref)}
	h.report(m, "equalised histograms")
	return m, nil
}

// SkipInterpolate computes the output image from the remap tables.
func (h *Harness) SkipInterpolate(img *clahe.Image, tables []clahe.Table) (*clahe.Image, error) {
	out, err := clahe.Interpolate(img, tables)
	if err != nil {
		return nil, err
	}
	h.skips[StageInterpolate]++
	return out, nil
}

// ValidateInterpolate checks a candidate output image. Pixels off by one
// intensity level are counted as Close, not Bad.
func (h *Harness) ValidateInterpolate(img *clahe.Image, tables []clahe.Table, test *clahe.Image) (Mismatch, error) {
	ref, err := clahe.Interpolate(img, tables)
	if err != nil {
		return Mismatch{}, err
	}
	m := Mismatch{Stage: StageInterpolate, Total: len(ref.Pix)}
	for i, want := range ref.Pix {
		if test == nil || i >= len(test.Pix) {
			m.Bad++
			continue
		}
		switch d := int(test.Pix[i]) - int(want); {
		case d == 0:
		case d == 1 || d == -1:
			m.Close++
		default:
			m.Bad++
		}
	}
	h.report(m, "pixels")
	return m, nil
}

// ValidateResult validates every stage product of a full run against img.
// Limited and Cumulative are optional and skipped when nil.
func (h *Harness) ValidateResult(img *clahe.Image, res *clahe.Result) ([]Mismatch, error) {
	var out []Mismatch
	m, err := h.ValidateHistogram(img, res.Histograms, res.Mode)
	if err != nil {
		return nil, err
	}
	out = append(out, m)
	if res.Limited != nil {
		out = append(out, h.ValidateLimited(res.Histograms, res.Limited))
	}
	if res.Cumulative != nil && res.Limited != nil {
		out = append(out, h.ValidateCumulative(res.Limited, res.Cumulative))
	}
	if m, err = h.ValidateEqualised(res.Histograms, res.Tables); err != nil {
		return nil, err
	}
	out = append(out, m)
	if m, err = h.ValidateInterpolate(img, res.Tables, res.Output); err != nil {
		return nil, err
	}
	return append(out, m), nil
}
