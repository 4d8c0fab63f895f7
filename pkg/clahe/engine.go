package clahe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Fepozopo/clahe/pkg/workerpool"
)

// Mode selects the execution backend.
type Mode int

const (
	ModeSequential Mode = iota
	ModeParallel
)

func (m Mode) String() string {
	switch m {
	case ModeSequential:
		return "sequential"
	case ModeParallel:
		return "parallel"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts the names printed by Mode.String, plus the aliases
// "cpu" and "openmp".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sequential", "seq", "cpu", "":
		return ModeSequential, nil
	case "parallel", "par", "openmp":
		return ModeParallel, nil
	}
	return 0, fmt.Errorf("unknown mode %q (want sequential or parallel)", s)
}

// Timings records how long each stage of one run took.
type Timings struct {
	Init   time.Duration
	Stage1 time.Duration // tile histograms
	Stage2 time.Duration // limiting, cumulative histograms and tables
	Stage3 time.Duration // interpolation
	Total  time.Duration
}

// Result carries the output image and every intermediate stage product.
type Result struct {
	Output     *Image
	Mode       uint8 // most common input intensity
	Histograms []Histogram
	Limited    []Histogram
	Cumulative []Histogram
	Tables     []Table
	Timings    Timings
}

// Engine runs the full pipeline on the selected backend.
type Engine struct {
	Mode    Mode
	Workers int // parallel mode only; <= 0 means GOMAXPROCS
}

// Equalize runs the sequential reference pipeline and returns the output
// image.
func Equalize(img *Image) (*Image, error) {
	res, err := (&Engine{}).Run(context.Background(), img)
	if err != nil {
		return nil, err
	}
	return res.Output, nil
}

// Run executes the four stages with a barrier between each. ctx is only
// checked at those barriers; a stage that has started always completes.
func (e *Engine) Run(ctx context.Context, img *Image) (*Result, error) {
	start := time.Now()
	if err := img.Validate(); err != nil {
		return nil, err
	}
	var b backend = sequential{}
	if e.Mode == ModeParallel {
		pool := workerpool.New(e.Workers)
		defer pool.Close()
		b = parallel{pool: pool}
	}
	res := &Result{}
	res.Timings.Init = time.Since(start)

	mark := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.Histograms, res.Mode = b.histograms(img)
	res.Timings.Stage1 = time.Since(mark)

	mark = time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.Limited = b.limit(res.Histograms)
	res.Cumulative = b.cumulate(res.Limited)
	tables, err := b.tables(ctx, res.Histograms, res.Cumulative)
	if err != nil {
		return nil, err
	}
	res.Tables = tables
	res.Timings.Stage2 = time.Since(mark)

	mark = time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.Output = b.interpolate(img, res.Tables)
	res.Timings.Stage3 = time.Since(mark)

	res.Timings.Total = time.Since(start)
	return res, nil
}

// backend implements the stages on a validated image.
type backend interface {
	histograms(img *Image) ([]Histogram, uint8)
	limit(hists []Histogram) []Histogram
	cumulate(limited []Histogram) []Histogram
	tables(ctx context.Context, hists, cumulative []Histogram) ([]Table, error)
	interpolate(img *Image, tables []Table) *Image
}

type sequential struct{}

func (sequential) histograms(img *Image) ([]Histogram, uint8) {
	hists, mode, _ := BuildHistograms(img)
	return hists, mode
}

func (sequential) limit(hists []Histogram) []Histogram { return LimitHistograms(hists) }

func (sequential) cumulate(limited []Histogram) []Histogram { return CumulativeHistograms(limited) }

func (sequential) tables(_ context.Context, hists, cumulative []Histogram) ([]Table, error) {
	return TablesFromCumulative(hists, cumulative)
}

func (sequential) interpolate(img *Image, tables []Table) *Image {
	out := NewImage(img.Width, img.Height)
	interpolateRows(img, tables, out, 0, img.Height)
	return out
}

// parallel splits every stage over a worker pool. Tiles (or output rows) are
// the unit of work, so no two workers ever write the same location.
type parallel struct {
	pool *workerpool.Pool
}

func (p parallel) histograms(img *Image) ([]Histogram, uint8) {
	tilesX := img.TilesX()
	hists := make([]Histogram, img.Tiles())
	p.pool.ParallelFor(len(hists), func(start, end int) {
		for t := start; t < end; t++ {
			histogramTile(img, t%tilesX, t/tilesX, &hists[t])
		}
	})
	// The global reduction runs after the barrier, so the mode matches the
	// sequential scan exactly.
	return hists, MostCommon(hists)
}

func (p parallel) limit(hists []Histogram) []Histogram {
	limited := make([]Histogram, len(hists))
	p.pool.ParallelForAtomic(len(hists), func(t int) {
		limitTile(&hists[t], &limited[t])
	})
	return limited
}

func (p parallel) cumulate(limited []Histogram) []Histogram {
	cum := make([]Histogram, len(limited))
	p.pool.ParallelForAtomic(len(limited), func(t int) {
		cumulateTile(&limited[t], &cum[t])
	})
	return cum
}

func (p parallel) tables(ctx context.Context, hists, cumulative []Histogram) ([]Table, error) {
	tables := make([]Table, len(hists))
	err := p.pool.ParallelForErr(ctx, len(hists), func(start, end int) error {
		for t := start; t < end; t++ {
			if err := equalizeTile(&hists[t], &cumulative[t], &tables[t]); err != nil {
				return fmt.Errorf("tile %d: %w", t, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (p parallel) interpolate(img *Image, tables []Table) *Image {
	out := NewImage(img.Width, img.Height)
	p.pool.ParallelFor(img.Height, func(start, end int) {
		interpolateRows(img, tables, out, start, end)
	})
	return out
}
