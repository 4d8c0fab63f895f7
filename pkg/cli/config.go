package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Fepozopo/clahe/pkg/clahe"
)

// Config holds the run settings gathered from .env, the environment and
// command-line flags, in increasing order of precedence.
type Config struct {
	Input     string
	Output    string
	Mode      clahe.Mode
	Workers   int
	BenchRuns int // 0 disables benchmark mode
	Validate  bool
	Crop      bool
	Histogram string // optional path for the histogram plot
	Preview   bool
}

// Debugging helper controlled by CLAHE_DEBUG=1
var debugEnabled bool

// LoadConfig reads an optional .env file from the working directory and
// applies CLAHE_MODE, CLAHE_WORKERS, CLAHE_BENCH_RUNS and CLAHE_DEBUG.
func LoadConfig() (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Config{}
	if v := os.Getenv("CLAHE_DEBUG"); v == "1" || strings.EqualFold(v, "true") {
		debugEnabled = true
	}
	if v := os.Getenv("CLAHE_MODE"); v != "" {
		m, err := clahe.ParseMode(v)
		if err != nil {
			return cfg, fmt.Errorf("CLAHE_MODE: %w", err)
		}
		cfg.Mode = m
	}
	if v := os.Getenv("CLAHE_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("CLAHE_WORKERS: invalid worker count: %w", err)
		}
		cfg.Workers = n
	}
	if v := os.Getenv("CLAHE_BENCH_RUNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("CLAHE_BENCH_RUNS: invalid run count %q", v)
		}
		cfg.BenchRuns = n
	}
	return cfg, nil
}

// Check reports settings that cannot be combined.
func (c Config) Check() error {
	if c.Input == "" || c.Output == "" {
		return fmt.Errorf("input and output paths are required")
	}
	if c.BenchRuns > 0 && c.Validate {
		return fmt.Errorf("validation cannot be combined with benchmark mode, it invalidates the timing")
	}
	return nil
}

func debugf(format string, args ...interface{}) {
	if debugEnabled {
		fmt.Fprintf(os.Stderr, "clahe: "+format+"\n", args...)
	}
}
