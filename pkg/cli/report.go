package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sys/cpu"
	"gonum.org/v1/gonum/stat"

	"github.com/Fepozopo/clahe/pkg/clahe"
)

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func writeTimings(w io.Writer, t clahe.Timings) {
	fmt.Fprintf(w, "Init     Stage 1  Stage 2  Stage 3  Total (ms)\n")
	fmt.Fprintf(w, "%-8.3f %-8.3f %-8.3f %-8.3f %.3f\n", ms(t.Init), ms(t.Stage1), ms(t.Stage2), ms(t.Stage3), ms(t.Total))
}

// averageTimings returns the per-stage mean of several runs.
func averageTimings(runs []clahe.Timings) clahe.Timings {
	if len(runs) == 0 {
		return clahe.Timings{}
	}
	avg := func(f func(clahe.Timings) time.Duration) time.Duration {
		return lo.SumBy(runs, f) / time.Duration(len(runs))
	}
	return clahe.Timings{
		Init:   avg(func(t clahe.Timings) time.Duration { return t.Init }),
		Stage1: avg(func(t clahe.Timings) time.Duration { return t.Stage1 }),
		Stage2: avg(func(t clahe.Timings) time.Duration { return t.Stage2 }),
		Stage3: avg(func(t clahe.Timings) time.Duration { return t.Stage3 }),
		Total:  avg(func(t clahe.Timings) time.Duration { return t.Total }),
	}
}

func writeBenchReport(w io.Writer, cfg Config, avg clahe.Timings) {
	fmt.Fprintf(w, "Benchmark: %d runs, %s on %s/%s (%s)\n", cfg.BenchRuns, cfg.Mode, runtime.GOOS, runtime.GOARCH, cpuFeatures())
	writeTimings(w, avg)
}

// cpuFeatures lists the SIMD extensions visible to the process.
func cpuFeatures() string {
	var feats []string
	switch runtime.GOARCH {
	case "amd64", "386":
		feats = lo.Compact([]string{
			lo.Ternary(cpu.X86.HasSSE41, "sse4.1", ""),
			lo.Ternary(cpu.X86.HasAVX2, "avx2", ""),
			lo.Ternary(cpu.X86.HasAVX512F, "avx512f", ""),
		})
	case "arm64":
		feats = lo.Compact([]string{
			lo.Ternary(cpu.ARM64.HasASIMD, "asimd", ""),
			lo.Ternary(cpu.ARM64.HasSVE, "sve", ""),
		})
	}
	if len(feats) == 0 {
		return "no simd"
	}
	return strings.Join(feats, ",")
}

// luminance returns the mean and standard deviation of an image's pixels.
func luminance(img *clahe.Image) (mean, std float64) {
	xs := make([]float64, len(img.Pix))
	for i, p := range img.Pix {
		xs[i] = float64(p)
	}
	return stat.MeanStdDev(xs, nil)
}

func writeStats(w io.Writer, in, out *clahe.Image) {
	inMean, inStd := luminance(in)
	outMean, outStd := luminance(out)
	fmt.Fprintf(w, "Luminance mean %.2f -> %.2f, stddev %.2f -> %.2f\n", inMean, outMean, inStd, outStd)
}
