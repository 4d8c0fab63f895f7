// Package clahetest provides a stage-by-stage reference harness for the
// clahe pipeline.
//
// Each stage has a Skip method, which computes the stage with the reference
// implementation so a backend under development can leave it out, and a
// Validate method, which recomputes the stage and counts how many tiles (or
// pixels) of a candidate result disagree. Validation never fails fast.
//
//	h := clahetest.New(os.Stderr)
//	hists, mode := myBackend.Histograms(img)
//	h.ValidateHistogram(img, hists, mode)
//	tables := h.SkipEqualised(hists) // not implemented yet
//
// Skip counts are kept on the Harness so callers can tell whether a timed
// run leaned on the reference code.
package clahetest

import (
	"fmt"
	"io"

	"github.com/samber/lo"
)

const (
	consoleRed   = "\x1b[91m"
	consoleGreen = "\x1b[92m"
	consoleReset = "\x1b[39m"
)

// Stage names a pipeline step that can be skipped or validated.
type Stage int

const (
	StageHistogram Stage = iota
	StageLimited
	StageCumulative
	StageEqualised
	StageInterpolate
	numStages
)

var stageNames = [numStages]string{
	StageHistogram:   "histogram",
	StageLimited:     "limited_histogram",
	StageCumulative:  "cumulative_histogram",
	StageEqualised:   "equalised_histogram",
	StageInterpolate: "interpolate",
}

func (s Stage) String() string {
	if s < 0 || s >= numStages {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// Mismatch is the outcome of one validation.
type Mismatch struct {
	Stage Stage
	Bad   int // tiles or pixels that differ
	Close int // pixels within ±1, interpolation only
	Total int
	// ModeOK reports whether the candidate mode shares the global maximum
	// count. Only set by ValidateHistogram.
	ModeOK bool
}

// OK reports whether the candidate matched the reference.
func (m Mismatch) OK() bool {
	if m.Stage == StageHistogram {
		return m.Bad == 0 && m.ModeOK
	}
	return m.Bad == 0
}

// Harness runs the reference stages and keeps per-stage skip counts.
type Harness struct {
	w     io.Writer
	skips [numStages]int
}

// New returns a harness that reports each validation to w. A nil w
// disables reporting.
func New(w io.Writer) *Harness {
	return &Harness{w: w}
}

// SkipUsed returns how many stages were computed by the harness on the
// caller's behalf.
func (h *Harness) SkipUsed() int {
	return lo.Sum(h.skips[:])
}

// StageSkips returns the skip count of one stage.
func (h *Harness) StageSkips(s Stage) int {
	return h.skips[s]
}

// Stage1Skips counts skipped histogram builds.
func (h *Harness) Stage1Skips() int { return h.skips[StageHistogram] }

// Stage2Skips counts skipped limiting, cumulative and table steps.
func (h *Harness) Stage2Skips() int {
	return h.skips[StageLimited] + h.skips[StageCumulative] + h.skips[StageEqualised]
}

// Stage3Skips counts skipped interpolations.
func (h *Harness) Stage3Skips() int { return h.skips[StageInterpolate] }

func (h *Harness) report(m Mismatch, unit string) {
	if h.w == nil {
		return
	}
	name := fmt.Sprintf("validate_%s()", m.Stage)
	if m.Bad > 0 {
		fmt.Fprintf(h.w, "%s %sfound %d/%d incorrect %s.%s\n", name, consoleRed, m.Bad, m.Total, unit, consoleReset)
	} else {
		fmt.Fprintf(h.w, "%s %sfound no errors! (%d %s were correct)%s\n", name, consoleGreen, m.Total, unit, consoleReset)
	}
}

// countTiles counts indices where the candidate differs from the reference.
func countTiles[T comparable](ref, test []T) int {
	n := len(ref)
	bad := lo.CountBy(lo.Range(min(n, len(test))), func(t int) bool {
		return ref[t] != test[t]
	})
	// Missing candidate tiles count as wrong.
	return bad + max(0, n-len(test))
}
