package cli

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/Fepozopo/clahe/pkg/clahe"
	"github.com/Fepozopo/clahe/pkg/clahe/clahetest"
	"github.com/Fepozopo/clahe/pkg/imageio"
)

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/Fepozopo/clahe/pkg/cli.Version=...".
var Version = "0.1.0"

// NewRootCommand builds the clahe command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "clahe",
		Short:         "Contrast-limited adaptive histogram equalization for greyscale images",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCommand(), newVersionCommand(), newUpdateCommand())
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func newRunCommand() *cobra.Command {
	var mode string
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "run <input> <output>",
		Short: "Equalize an image file",
		Long:  "Equalize an image file. An input of \"/\" opens an fzf picker over the images below the working directory.",
		Args:  cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			env, err := LoadConfig()
			if err != nil {
				return err
			}
			// flags win over the environment
			if !cmd.Flags().Changed("mode") {
				cfg.Mode = env.Mode
			} else if cfg.Mode, err = clahe.ParseMode(mode); err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				cfg.Workers = env.Workers
			}
			if !cmd.Flags().Changed("bench") {
				cfg.BenchRuns = env.BenchRuns
			}
			cfg.Input, cfg.Output = args[0], args[1]
			if cfg.Input == pickerInput {
				if cfg.Input, err = SelectImageWithFzf("."); err != nil {
					return err
				}
			}
			return cfg.Check()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVarP(&mode, "mode", "m", "sequential", "backend: sequential|parallel")
	f.IntVarP(&cfg.Workers, "workers", "w", 0, "worker goroutines for parallel mode (0 = GOMAXPROCS)")
	f.IntVarP(&cfg.BenchRuns, "bench", "b", 0, "benchmark: repeat the run N times and report average timings")
	f.BoolVar(&cfg.Validate, "validate", false, "diff every stage against the reference implementation")
	f.BoolVar(&cfg.Crop, "crop", false, "crop the input to a multiple of the tile size")
	f.StringVar(&cfg.Histogram, "histogram", "", "write input/output histograms to this image path")
	f.BoolVar(&cfg.Preview, "preview", false, "show the input and output side by side in the terminal")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseVersion(Version)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "clahe %s\n", v)
			return nil
		},
	}
}

func newUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Check GitHub for a newer release and update in place",
		RunE: func(cmd *cobra.Command, args []string) error {
			return CheckForUpdates()
		},
	}
}

// Run loads cfg.Input, equalizes it and writes cfg.Output. Progress and
// reports go to w.
func Run(ctx context.Context, cfg Config, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	img, err := imageio.Load(cfg.Input, imageio.LoadOptions{CropToTiles: cfg.Crop})
	if err != nil {
		return err
	}
	debugf("loaded %s: %dx%d, %d tiles", cfg.Input, img.Width, img.Height, img.Tiles())
	if err := img.Validate(); err != nil {
		return fmt.Errorf("%s: %w (use --crop to trim the image)", cfg.Input, err)
	}

	engine := &clahe.Engine{Mode: cfg.Mode, Workers: cfg.Workers}
	fmt.Fprintf(w, "Input: %s (%dx%d)  Mode: %s\n", cfg.Input, img.Width, img.Height, cfg.Mode)

	var res *clahe.Result
	if cfg.BenchRuns > 0 {
		runs := make([]clahe.Timings, 0, cfg.BenchRuns)
		for i := 0; i < cfg.BenchRuns; i++ {
			if res, err = engine.Run(ctx, img); err != nil {
				return err
			}
			runs = append(runs, res.Timings)
		}
		writeBenchReport(w, cfg, averageTimings(runs))
	} else {
		if res, err = engine.Run(ctx, img); err != nil {
			return err
		}
		writeTimings(w, res.Timings)
	}
	fmt.Fprintf(w, "Most common intensity: %d\n", res.Mode)
	writeStats(w, img, res.Output)

	if cfg.Validate {
		h := clahetest.New(w)
		checks, err := h.ValidateResult(img, res)
		if err != nil {
			return err
		}
		for _, m := range checks {
			if !m.OK() {
				debugf("stage %s: %d/%d mismatches", m.Stage, m.Bad, m.Total)
			}
		}
	}

	if err := imageio.Save(cfg.Output, res.Output); err != nil {
		return err
	}
	fmt.Fprintf(w, "Saved to %s\n", cfg.Output)

	if cfg.Histogram != "" {
		if err := imageio.SaveHistograms(cfg.Histogram, imageio.ImageHistogram(img), imageio.ImageHistogram(res.Output)); err != nil {
			return err
		}
		fmt.Fprintf(w, "Histograms saved to %s\n", cfg.Histogram)
	}

	if cfg.Preview {
		if err := Preview(w, sideBySide(img, res.Output)); err != nil {
			// a missing preview never fails the run
			fmt.Fprintf(w, "Preview unavailable: %v\n", err)
		}
	}
	return nil
}

// sideBySide joins the input and output horizontally with a small gap.
func sideBySide(in, out *clahe.Image) image.Image {
	const gap = 8
	canvas := imaging.New(in.Width+gap+out.Width, max(in.Height, out.Height), color.Gray{Y: 0})
	canvas = imaging.Paste(canvas, imageio.ToGray(in), image.Pt(0, 0))
	return imaging.Paste(canvas, imageio.ToGray(out), image.Pt(in.Width+gap, 0))
}
